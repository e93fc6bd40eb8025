package dive

import "sort"

// Zone is the qualitative risk bucket for one metric value.
type Zone string

const (
	ZoneSafe    Zone = "safe"
	ZoneWarning Zone = "warning"
	ZoneDanger  Zone = "danger"
)

// NDL zones are inverted relative to the other metrics: lower is worse.
const (
	NDLSafeLower    = 10.0 // minutes; >= is safe
	NDLWarningLower = 5.0  // minutes; >= is warning, below is danger
)

// TempColdWarning is the informational cold-water boundary in Celsius;
// temperature has no danger zone.
const TempColdWarning = 10.0

// MetricThreshold describes one row of the safety threshold table.
type MetricThreshold struct {
	Metric       string
	Label        string
	Unit         string
	SafeUpper    float64
	WarningUpper float64
	// Inverted marks metrics where lower values are worse (min_ndl).
	Inverted bool
	// Informational marks metrics with no danger zone and no worst value
	// (avg_temp).
	Informational bool
}

// Thresholds is the fixed safety threshold table, in presentation order.
var Thresholds = []MetricThreshold{
	{Metric: "max_depth", Label: "Max Depth", Unit: "m", SafeUpper: 18.0, WarningUpper: 30.0},
	{Metric: "max_ascend_speed", Label: "Max Ascent Speed", Unit: "m/min", SafeUpper: 9.0, WarningUpper: 10.0},
	{Metric: "min_ndl", Label: "Min NDL", Unit: "min", SafeUpper: NDLSafeLower, WarningUpper: NDLWarningLower, Inverted: true},
	{Metric: "sac_rate", Label: "SAC Rate", Unit: "L/min", SafeUpper: 15.0, WarningUpper: 20.0},
	{Metric: "avg_temp", Label: "Avg Temperature", Unit: "°C", SafeUpper: TempColdWarning, Informational: true},
}

// ClassifyZone buckets a higher-is-worse metric value. Boundaries are
// closed toward the safer zone: exactly safeUpper is safe, exactly
// warningUpper is warning.
func ClassifyZone(value, safeUpper, warningUpper float64) Zone {
	if value <= safeUpper {
		return ZoneSafe
	}
	if value <= warningUpper {
		return ZoneWarning
	}
	return ZoneDanger
}

// ClassifyNDLZone buckets a minimum-NDL value; lower is worse.
func ClassifyNDLZone(value float64) Zone {
	if value >= NDLSafeLower {
		return ZoneSafe
	}
	if value >= NDLWarningLower {
		return ZoneWarning
	}
	return ZoneDanger
}

// ClassifyTempZone buckets an average temperature. Informational only:
// cold water is worth a warning but never a danger.
func ClassifyTempZone(value float64) Zone {
	if value >= TempColdWarning {
		return ZoneSafe
	}
	return ZoneWarning
}

func classifyMetricValue(t MetricThreshold, value float64) Zone {
	switch {
	case t.Inverted:
		return ClassifyNDLZone(value)
	case t.Informational:
		return ClassifyTempZone(value)
	default:
		return ClassifyZone(value, t.SafeUpper, t.WarningUpper)
	}
}

func metricValue(metric string, f DiveFeature) float64 {
	switch metric {
	case "max_depth":
		return f.MaxDepth
	case "max_ascend_speed":
		return f.MaxAscendSpeed
	case "min_ndl":
		return f.MinNDL
	case "sac_rate":
		return f.SACRate
	case "avg_temp":
		return f.AvgTemp
	default:
		return 0
	}
}

// BuildMetricSummaries derives the per-metric dashboard summaries: range
// statistics, the worst value across all dives with its zone, and the
// per-dive breakdown sorted ascending by value.
func BuildMetricSummaries(features []DiveFeature) []MetricSummary {
	if len(features) == 0 {
		return nil
	}

	summaries := make([]MetricSummary, 0, len(Thresholds))
	for _, t := range Thresholds {
		values := make([]float64, len(features))
		perDive := make([]DiveMetricPoint, len(features))
		for i, f := range features {
			v := metricValue(t.Metric, f)
			values[i] = v
			perDive[i] = DiveMetricPoint{
				DiveNumber: f.DiveNumber,
				Value:      round2(v),
				Zone:       classifyMetricValue(t, v),
			}
		}
		sort.SliceStable(perDive, func(i, j int) bool {
			return perDive[i].Value < perDive[j].Value
		})

		minVal := minOf(values)
		maxVal := maxOf(values)
		summary := MetricSummary{
			Metric:       t.Metric,
			Label:        t.Label,
			Unit:         t.Unit,
			MinVal:       minVal,
			MaxVal:       maxVal,
			AvgVal:       meanOf(values),
			SafeUpper:    t.SafeUpper,
			WarningUpper: t.WarningUpper,
			PerDive:      perDive,
		}

		switch {
		case t.Inverted:
			// Lower is worse, so the minimum is the worst value.
			worst := minVal
			summary.WorstVal = &worst
			summary.Zone = classifyMetricValue(t, minVal)
		case t.Informational:
			// No worst value; the zone reflects the coldest dive.
			summary.Zone = classifyMetricValue(t, minVal)
		default:
			worst := maxVal
			summary.WorstVal = &worst
			summary.Zone = classifyMetricValue(t, maxVal)
		}

		summaries = append(summaries, summary)
	}
	return summaries
}
