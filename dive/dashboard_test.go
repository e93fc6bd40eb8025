package dive

import "testing"

func TestBuildDashboardAssemblesAllViews(t *testing.T) {
	t.Parallel()

	features := []DiveFeature{
		{DiveNumber: "1", MaxDepth: 35, MaxAscendSpeed: 12, MinNDL: 4, SACRate: 22, Rating: 2, AdverseConditions: 1},
		{DiveNumber: "2", MaxDepth: 12, MaxAscendSpeed: 5, MinNDL: 40, SACRate: 13, Rating: 5},
	}
	d := BuildDashboard(features)

	if d.AggregateStats.TotalDives != 2 {
		t.Errorf("TotalDives = %d, want 2", d.AggregateStats.TotalDives)
	}
	if len(d.Metrics) != len(Thresholds) {
		t.Errorf("got %d metric summaries, want %d", len(d.Metrics), len(Thresholds))
	}
	if len(d.AllDives) != 2 {
		t.Errorf("AllDives has %d rows, want 2", len(d.AllDives))
	}
	if len(d.TopProblematicDives) != 1 {
		t.Fatalf("TopProblematicDives has %d entries, want 1", len(d.TopProblematicDives))
	}
	if d.TopProblematicDives[0].DiveNumber != "1" {
		t.Errorf("problematic dive = %s, want 1", d.TopProblematicDives[0].DiveNumber)
	}
	if d.TopProblematicDives[0].Summary != "" {
		t.Errorf("Summary = %q, want empty (filled by the caller)", d.TopProblematicDives[0].Summary)
	}
}

func TestPresentFeatureRoundingAndPlaceholders(t *testing.T) {
	t.Parallel()

	f := DiveFeature{
		DiveNumber: "1",
		AvgDepth:   12.3456,
		Rating:     3.6666,
		Latitude:   fptr(27.123456789),
		Longitude:  fptr(0),
	}
	out := presentFeature(f)

	if out.AvgDepth != 12.35 {
		t.Errorf("AvgDepth = %v, want 12.35", out.AvgDepth)
	}
	if out.Rating != 3.7 {
		t.Errorf("Rating = %v, want 3.7", out.Rating)
	}
	if out.DiveSiteName != "N/A" || out.TripName != "N/A" {
		t.Errorf("empty site/trip = %q/%q, want N/A placeholders", out.DiveSiteName, out.TripName)
	}
	if out.Latitude == nil || *out.Latitude != 27.123457 {
		t.Errorf("Latitude = %v, want 27.123457", out.Latitude)
	}
	if out.Longitude != nil {
		t.Errorf("Longitude = %v, want nil for a zero coordinate", out.Longitude)
	}
}
