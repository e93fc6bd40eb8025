package dive

import "math"

// BuildDashboard computes every derived dashboard view from one feature
// table snapshot. Pure computation: the narrative summaries on the
// problematic dives are left empty for the caller to fill (or not) from
// the LLM boundary, so upstream failures can never alter the numbers here.
func BuildDashboard(features []DiveFeature) Dashboard {
	allDives := make([]DiveFeature, len(features))
	for i, f := range features {
		allDives[i] = presentFeature(f)
	}
	return Dashboard{
		AggregateStats:      ComputeAggregateStats(features),
		Metrics:             BuildMetricSummaries(features),
		AllDives:            allDives,
		TopProblematicDives: SelectProblematicDives(features),
		DiverProfile:        BuildDiverProfile(features),
	}
}

// presentFeature rounds a feature row for presentation. Coordinates keep
// six decimals; a zero coordinate reads as "no fix" and is dropped.
func presentFeature(f DiveFeature) DiveFeature {
	out := f
	out.AvgDepth = round2(f.AvgDepth)
	out.MaxDepth = round2(f.MaxDepth)
	out.DepthVariability = round2(f.DepthVariability)
	out.AvgTemp = round2(f.AvgTemp)
	out.MaxTemp = round2(f.MaxTemp)
	out.TempVariability = round2(f.TempVariability)
	out.AvgPressure = round2(f.AvgPressure)
	out.MaxPressure = round2(f.MaxPressure)
	out.PressureVariability = round2(f.PressureVariability)
	out.MinNDL = round2(f.MinNDL)
	out.SACRate = round2(f.SACRate)
	out.Rating = math.Round(f.Rating*10) / 10
	out.MaxAscendSpeed = round2(f.MaxAscendSpeed)
	if f.DiveSiteName == "" {
		out.DiveSiteName = "N/A"
	}
	if f.TripName == "" {
		out.TripName = "N/A"
	}
	out.Latitude = roundCoord(f.Latitude)
	out.Longitude = roundCoord(f.Longitude)
	return out
}

func roundCoord(v *float64) *float64 {
	if v == nil || *v == 0 {
		return nil
	}
	rounded := math.Round(*v*1e6) / 1e6
	return &rounded
}
