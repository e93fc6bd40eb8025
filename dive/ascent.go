package dive

// Ascent Speed Analyzer
//
// Ascent speed is derived from consecutive sample diffs within a dive:
//
//	speed (m/min) = -(depth_diff / time_diff) * 60
//
// negative because a decreasing depth means the diver is moving up. The
// first sample of a dive has no predecessor and is defined as zero. A zero
// or negative time diff makes the ratio undefined; the defined policy is to
// treat it as zero ascent speed, never +/-Inf.
//
// Depth sensors misbehave near the surface: during surfacing they report
// spurious jumps that look like extreme ascent rates. Any sample where the
// current or the preceding depth reading is shallower than the configured
// threshold (default 2.0 m) has its ascent speed forced to zero so those
// readings never count as violations.

const (
	// DefaultShallowDepthThreshold is the depth (meters) below which
	// ascent-speed readings are discarded as surface sensor noise.
	DefaultShallowDepthThreshold = 2.0

	// ExcessiveAscentSpeed is the rate (m/min) above which a sample counts
	// toward HighAscendSpeedCount.
	ExcessiveAscentSpeed = 10.0
)

// AscentSpeeds computes the per-sample ascent speed series (m/min) for one
// dive's time-ordered samples, with the shallow mask already applied. The
// returned slice is parallel to samples; index 0 is always zero.
func AscentSpeeds(samples []Sample, shallowThreshold float64) []float64 {
	speeds := make([]float64, len(samples))
	for i := 1; i < len(samples); i++ {
		timeDiff := samples[i].Time - samples[i-1].Time
		if timeDiff <= 0 {
			continue // undefined ratio, defined as zero
		}
		if samples[i].Depth < shallowThreshold || samples[i-1].Depth < shallowThreshold {
			continue // surface sensor noise
		}
		depthDiff := samples[i].Depth - samples[i-1].Depth
		speeds[i] = -(depthDiff / timeDiff) * 60
	}
	return speeds
}

// ComputeAscentFeatures aggregates one dive's ascent-speed series into its
// per-dive features. MaxAscendSpeed never goes below zero because the first
// sample's zero diff participates in the maximum; HighAscendSpeedCount is
// zero, not missing, when no sample qualifies.
func ComputeAscentFeatures(diveNumber string, samples []Sample, shallowThreshold float64) AscentFeatures {
	features := AscentFeatures{DiveNumber: diveNumber}
	for _, speed := range AscentSpeeds(samples, shallowThreshold) {
		if speed > features.MaxAscendSpeed {
			features.MaxAscendSpeed = speed
		}
		if speed > ExcessiveAscentSpeed {
			features.HighAscendSpeedCount++
		}
	}
	return features
}
