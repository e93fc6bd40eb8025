package dive

// Feature Extraction Pipeline
//
// Turns the raw per-sample dive log into one DiveFeature row per dive:
//
//  1. Group samples by canonical dive number.
//  2. Per group, aggregate depth/temperature/pressure (mean, max, sample
//     standard deviation), the NDL minimum, and the first non-null value of
//     the dive-level constants (SAC rate, rating, site metadata).
//  3. Compute ascent-speed features and join them in by dive number.
//  4. Impute undefined values: variability columns, pressure aggregates and
//     SAC rate that are missing for a dive take the cross-dive mean of that
//     column; anything still undefined after that pass becomes zero. Rows
//     are never dropped for partial data.
//  5. A dive with no rating at all is excluded outright: defaulting the
//     rating would misclassify dives of unknown quality as safe.
//
// The whole pipeline is a pure function of its input snapshot. Nothing is
// cached between calls, so concurrent requests never share working state.

import (
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"dive-roast/utils"
)

// ExtractorConfig holds the tunables of the feature extraction pipeline.
type ExtractorConfig struct {
	// ShallowDepthThreshold masks ascent-speed readings shallower than this
	// many meters (see ascent.go).
	ShallowDepthThreshold float64
}

// DefaultExtractorConfig returns the standard pipeline configuration.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{ShallowDepthThreshold: DefaultShallowDepthThreshold}
}

// GroupByDive groups samples by canonical dive number, preserving sample
// order within each group. The returned key list is sorted numerically
// where possible so repeated runs produce identical ordering.
func GroupByDive(samples []Sample) ([]string, map[string][]Sample) {
	groups := make(map[string][]Sample)
	var order []string
	for _, s := range samples {
		key := utils.CanonicalDiveNumber(s.DiveNumber)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], s)
	}
	SortDiveNumbers(order)
	return order, groups
}

// SortDiveNumbers orders dive numbers numerically when both parse as
// integers, lexically otherwise.
func SortDiveNumbers(numbers []string) {
	sort.SliceStable(numbers, func(i, j int) bool {
		a, aErr := strconv.ParseInt(numbers[i], 10, 64)
		b, bErr := strconv.ParseInt(numbers[j], 10, 64)
		switch {
		case aErr == nil && bErr == nil:
			return a < b
		case aErr == nil:
			return true
		case bErr == nil:
			return false
		default:
			return numbers[i] < numbers[j]
		}
	})
}

// FilterDive returns the samples belonging to diveNumber, tolerating string
// and numeric representations of the same identifier. Returns ErrNoDiveData
// when nothing matches.
func FilterDive(samples []Sample, diveNumber string) ([]Sample, error) {
	key := utils.CanonicalDiveNumber(diveNumber)
	var matched []Sample
	for _, s := range samples {
		if utils.CanonicalDiveNumber(s.DiveNumber) == key {
			matched = append(matched, s)
		}
	}
	if len(matched) == 0 {
		return nil, ErrNoDiveData
	}
	return matched, nil
}

// ExtractFeatures aggregates samples into one DiveFeature per dive using
// the default configuration.
func ExtractFeatures(samples []Sample) []DiveFeature {
	return ExtractFeaturesWithConfig(samples, DefaultExtractorConfig())
}

// ExtractFeaturesWithConfig is ExtractFeatures with explicit tunables.
func ExtractFeaturesWithConfig(samples []Sample, cfg ExtractorConfig) []DiveFeature {
	order, groups := GroupByDive(samples)

	features := make([]DiveFeature, 0, len(order))
	for _, diveNumber := range order {
		group := groups[diveNumber]
		feature := aggregateDive(diveNumber, group)

		ascent := ComputeAscentFeatures(diveNumber, group, cfg.ShallowDepthThreshold)
		feature.MaxAscendSpeed = ascent.MaxAscendSpeed
		feature.HighAscendSpeedCount = ascent.HighAscendSpeedCount

		features = append(features, feature)
	}

	imputeMissing(features)

	// Rating has no sane default; dives without one are excluded rather
	// than classified as safe. This is the only row-dropping rule.
	kept := features[:0]
	for _, f := range features {
		if math.IsNaN(f.Rating) {
			continue
		}
		if f.Rating < 3 {
			f.AdverseConditions = 1
		}
		kept = append(kept, f)
	}
	return kept
}

// aggregateDive computes the raw per-dive aggregates, with NaN marking any
// value that is undefined for this dive.
func aggregateDive(diveNumber string, group []Sample) DiveFeature {
	depths := make([]float64, 0, len(group))
	temps := make([]float64, 0, len(group))
	pressures := make([]float64, 0, len(group))
	ndls := make([]float64, 0, len(group))
	for _, s := range group {
		depths = append(depths, s.Depth)
		if s.Temperature != nil {
			temps = append(temps, *s.Temperature)
		}
		if s.Pressure != nil {
			pressures = append(pressures, *s.Pressure)
		}
		if s.NDL != nil {
			ndls = append(ndls, *s.NDL)
		}
	}

	feature := DiveFeature{
		DiveNumber:          diveNumber,
		AvgDepth:            meanOf(depths),
		MaxDepth:            maxOf(depths),
		DepthVariability:    stddevOf(depths),
		AvgTemp:             meanOf(temps),
		MaxTemp:             maxOf(temps),
		TempVariability:     stddevOf(temps),
		AvgPressure:         meanOf(pressures),
		MaxPressure:         maxOf(pressures),
		PressureVariability: stddevOf(pressures),
		MinNDL:              minOf(ndls),
		SACRate:             math.NaN(),
		Rating:              math.NaN(),
	}

	// SAC rate, rating and site metadata are dive-level constants
	// replicated across samples; take the first non-null occurrence.
	for _, s := range group {
		if math.IsNaN(feature.SACRate) && s.SACRate != nil {
			feature.SACRate = *s.SACRate
		}
		if math.IsNaN(feature.Rating) && s.Rating != nil {
			feature.Rating = float64(*s.Rating)
		}
		if feature.DiveSiteName == "" && s.DiveSiteName != "" {
			feature.DiveSiteName = s.DiveSiteName
		}
		if feature.TripName == "" && s.TripName != "" {
			feature.TripName = s.TripName
		}
		if feature.Latitude == nil && s.Latitude != nil {
			feature.Latitude = s.Latitude
		}
		if feature.Longitude == nil && s.Longitude != nil {
			feature.Longitude = s.Longitude
		}
	}
	return feature
}

// imputedColumns are the fields whose undefined entries take the cross-dive
// column mean before the final zero fill.
func imputedColumns(f *DiveFeature) []*float64 {
	return []*float64{
		&f.DepthVariability,
		&f.TempVariability,
		&f.PressureVariability,
		&f.AvgPressure,
		&f.MaxPressure,
		&f.SACRate,
	}
}

// numericColumns are every float field subject to the final zero fill.
// Rating is deliberately absent: a missing rating excludes the dive.
func numericColumns(f *DiveFeature) []*float64 {
	return []*float64{
		&f.AvgDepth, &f.MaxDepth, &f.DepthVariability,
		&f.AvgTemp, &f.MaxTemp, &f.TempVariability,
		&f.AvgPressure, &f.MaxPressure, &f.PressureVariability,
		&f.MinNDL, &f.SACRate, &f.MaxAscendSpeed,
	}
}

// imputeMissing applies the two-stage missing-value policy: cross-dive mean
// for the designated columns, then zero for anything still undefined (e.g.
// a batch where every dive has a single sample, leaving the cross-dive mean
// itself undefined).
func imputeMissing(features []DiveFeature) {
	const colCount = 6
	for col := 0; col < colCount; col++ {
		var sum float64
		var n int
		for i := range features {
			if v := *imputedColumns(&features[i])[col]; !math.IsNaN(v) {
				sum += v
				n++
			}
		}
		if n == 0 {
			continue
		}
		mean := sum / float64(n)
		for i := range features {
			p := imputedColumns(&features[i])[col]
			if math.IsNaN(*p) {
				*p = mean
			}
		}
	}

	for i := range features {
		for _, p := range numericColumns(&features[i]) {
			if math.IsNaN(*p) {
				*p = 0
			}
		}
	}
}

// ComputeAggregateStats summarises the feature table for the dashboard.
func ComputeAggregateStats(features []DiveFeature) AggregateStats {
	stats := AggregateStats{TotalDives: len(features)}
	if len(features) == 0 {
		return stats
	}
	maxDepths := make([]float64, len(features))
	sacRates := make([]float64, len(features))
	ascents := make([]float64, len(features))
	for i, f := range features {
		maxDepths[i] = f.MaxDepth
		sacRates[i] = f.SACRate
		ascents[i] = f.MaxAscendSpeed
		if f.AdverseConditions == 1 {
			stats.DivesWithAdverseConditions++
		}
	}
	stats.AvgMaxDepth = round2(stat.Mean(maxDepths, nil))
	stats.AvgSACRate = round2(stat.Mean(sacRates, nil))
	stats.AvgMaxAscendSpeed = round2(stat.Mean(ascents, nil))
	return stats
}

func meanOf(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	return stat.Mean(xs, nil)
}

// stddevOf is the sample standard deviation; undefined below two values.
func stddevOf(xs []float64) float64 {
	if len(xs) < 2 {
		return math.NaN()
	}
	return stat.StdDev(xs, nil)
}

func maxOf(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	max := xs[0]
	for _, v := range xs[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

func minOf(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	min := xs[0]
	for _, v := range xs[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
