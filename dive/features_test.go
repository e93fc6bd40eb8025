package dive

import (
	"math"
	"reflect"
	"testing"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

// ratedSample builds a sample with the dive-level constants filled in.
func ratedSample(diveNumber string, time, depth float64, rating int) Sample {
	return Sample{
		DiveNumber: diveNumber,
		Time:       time,
		Depth:      depth,
		Rating:     iptr(rating),
	}
}

func TestGroupByDiveCanonicalKeysAndNumericOrder(t *testing.T) {
	t.Parallel()

	samples := []Sample{
		ratedSample("10", 0, 5, 4),
		ratedSample("007", 0, 5, 4),
		ratedSample("2", 0, 5, 4),
		ratedSample("7", 60, 8, 4),
	}
	order, groups := GroupByDive(samples)

	if want := []string{"2", "7", "10"}; !reflect.DeepEqual(order, want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	if len(groups["7"]) != 2 {
		t.Fatalf("dive 7 has %d samples, want 2 (\"007\" and \"7\" must merge)", len(groups["7"]))
	}
}

func TestFilterDiveAcceptsNumericVariants(t *testing.T) {
	t.Parallel()

	samples := []Sample{ratedSample("007", 0, 10, 4)}
	matched, err := FilterDive(samples, "7")
	if err != nil {
		t.Fatalf("FilterDive returned error: %v", err)
	}
	if len(matched) != 1 {
		t.Fatalf("matched %d samples, want 1", len(matched))
	}
}

func TestFilterDiveNoData(t *testing.T) {
	t.Parallel()

	samples := []Sample{ratedSample("1", 0, 10, 4)}
	if _, err := FilterDive(samples, "99"); err != ErrNoDiveData {
		t.Fatalf("err = %v, want ErrNoDiveData", err)
	}
}

func TestExtractFeaturesAggregates(t *testing.T) {
	t.Parallel()

	samples := []Sample{
		{DiveNumber: "1", Time: 0, Depth: 10, Temperature: fptr(15), NDL: fptr(40), SACRate: fptr(18), Rating: iptr(4), DiveSiteName: "Blue Hole"},
		{DiveNumber: "1", Time: 60, Depth: 20, Temperature: fptr(16), NDL: fptr(25)},
		{DiveNumber: "1", Time: 120, Depth: 30, Temperature: fptr(17), NDL: fptr(12)},
	}
	features := ExtractFeatures(samples)
	if len(features) != 1 {
		t.Fatalf("got %d features, want 1", len(features))
	}

	f := features[0]
	if math.Abs(f.AvgDepth-20) > 1e-9 {
		t.Errorf("AvgDepth = %f, want 20", f.AvgDepth)
	}
	if f.MaxDepth != 30 {
		t.Errorf("MaxDepth = %f, want 30", f.MaxDepth)
	}
	// Sample standard deviation of 10, 20, 30.
	if math.Abs(f.DepthVariability-10) > 1e-9 {
		t.Errorf("DepthVariability = %f, want 10", f.DepthVariability)
	}
	if math.Abs(f.AvgTemp-16) > 1e-9 {
		t.Errorf("AvgTemp = %f, want 16", f.AvgTemp)
	}
	if f.MinNDL != 12 {
		t.Errorf("MinNDL = %f, want 12", f.MinNDL)
	}
	if f.SACRate != 18 {
		t.Errorf("SACRate = %f, want 18", f.SACRate)
	}
	if f.Rating != 4 {
		t.Errorf("Rating = %f, want 4", f.Rating)
	}
	if f.DiveSiteName != "Blue Hole" {
		t.Errorf("DiveSiteName = %q, want Blue Hole", f.DiveSiteName)
	}
	if f.AdverseConditions != 0 {
		t.Errorf("AdverseConditions = %d, want 0", f.AdverseConditions)
	}
}

func TestImputationUsesColumnMean(t *testing.T) {
	t.Parallel()

	// Dive 2 has no SAC rate anywhere; it takes the mean of the dives that
	// do (here a single dive, so its value).
	samples := []Sample{
		{DiveNumber: "1", Time: 0, Depth: 10, SACRate: fptr(14), Rating: iptr(4)},
		{DiveNumber: "1", Time: 60, Depth: 12, SACRate: fptr(14)},
		{DiveNumber: "2", Time: 0, Depth: 8, Rating: iptr(5)},
		{DiveNumber: "2", Time: 60, Depth: 9},
	}
	features := ExtractFeatures(samples)
	if len(features) != 2 {
		t.Fatalf("got %d features, want 2", len(features))
	}
	if features[1].SACRate != 14 {
		t.Errorf("imputed SACRate = %f, want 14 (cross-dive mean)", features[1].SACRate)
	}
}

func TestImputationFallsBackToZero(t *testing.T) {
	t.Parallel()

	// A single one-sample dive: variability is undefined, pressure, NDL and
	// temperature were never recorded, and no other dive exists to provide a
	// column mean. Everything must come out as zero, never NaN.
	samples := []Sample{ratedSample("1", 0, 10, 4)}
	features := ExtractFeatures(samples)
	if len(features) != 1 {
		t.Fatalf("got %d features, want 1", len(features))
	}

	f := features[0]
	checks := map[string]float64{
		"DepthVariability":    f.DepthVariability,
		"AvgTemp":             f.AvgTemp,
		"MaxTemp":             f.MaxTemp,
		"TempVariability":     f.TempVariability,
		"AvgPressure":         f.AvgPressure,
		"MaxPressure":         f.MaxPressure,
		"PressureVariability": f.PressureVariability,
		"MinNDL":              f.MinNDL,
		"SACRate":             f.SACRate,
	}
	for name, v := range checks {
		if v != 0 {
			t.Errorf("%s = %f, want 0", name, v)
		}
		if math.IsNaN(v) {
			t.Errorf("%s is NaN after imputation", name)
		}
	}
}

func TestMissingRatingExcludesDive(t *testing.T) {
	t.Parallel()

	samples := []Sample{
		ratedSample("1", 0, 10, 4),
		{DiveNumber: "2", Time: 0, Depth: 15},
	}
	features := ExtractFeatures(samples)
	if len(features) != 1 {
		t.Fatalf("got %d features, want 1 (unrated dive must be dropped)", len(features))
	}
	if features[0].DiveNumber != "1" {
		t.Fatalf("kept dive %s, want 1", features[0].DiveNumber)
	}
}

func TestAdverseConditionsFromLowRating(t *testing.T) {
	t.Parallel()

	samples := []Sample{
		ratedSample("1", 0, 10, 2),
		ratedSample("2", 0, 10, 3),
	}
	features := ExtractFeatures(samples)
	if features[0].AdverseConditions != 1 {
		t.Errorf("rating 2: AdverseConditions = %d, want 1", features[0].AdverseConditions)
	}
	if features[1].AdverseConditions != 0 {
		t.Errorf("rating 3: AdverseConditions = %d, want 0", features[1].AdverseConditions)
	}
}

func TestExtractFeaturesDeterministic(t *testing.T) {
	t.Parallel()

	samples := []Sample{
		ratedSample("3", 0, 18, 4),
		ratedSample("1", 0, 22, 3),
		ratedSample("2", 0, 31, 5),
	}
	first := ExtractFeatures(samples)
	for i := 0; i < 10; i++ {
		again := ExtractFeatures(samples)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d produced a different feature table", i)
		}
	}
	if first[0].DiveNumber != "1" || first[2].DiveNumber != "3" {
		t.Fatalf("feature table not in dive-number order: %s, %s, %s",
			first[0].DiveNumber, first[1].DiveNumber, first[2].DiveNumber)
	}
}

func TestComputeAggregateStats(t *testing.T) {
	t.Parallel()

	features := []DiveFeature{
		{MaxDepth: 20, SACRate: 14, MaxAscendSpeed: 6, AdverseConditions: 1},
		{MaxDepth: 30, SACRate: 18, MaxAscendSpeed: 8},
	}
	stats := ComputeAggregateStats(features)
	if stats.TotalDives != 2 {
		t.Errorf("TotalDives = %d, want 2", stats.TotalDives)
	}
	if stats.AvgMaxDepth != 25 {
		t.Errorf("AvgMaxDepth = %f, want 25", stats.AvgMaxDepth)
	}
	if stats.AvgSACRate != 16 {
		t.Errorf("AvgSACRate = %f, want 16", stats.AvgSACRate)
	}
	if stats.DivesWithAdverseConditions != 1 {
		t.Errorf("DivesWithAdverseConditions = %d, want 1", stats.DivesWithAdverseConditions)
	}
}
