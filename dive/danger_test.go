package dive

import "testing"

func safeFeature(diveNumber string) DiveFeature {
	return DiveFeature{
		DiveNumber:     diveNumber,
		MaxDepth:       15,
		MaxAscendSpeed: 6,
		MinNDL:         30,
		SACRate:        12,
		Rating:         4,
	}
}

func TestDangerScoreSafeDiveIsZero(t *testing.T) {
	t.Parallel()

	if score := DangerScore(safeFeature("1")); score != 0 {
		t.Fatalf("safe dive score = %f, want 0", score)
	}
}

func TestDangerScoreEscalation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		modify func(*DiveFeature)
		want   float64
	}{
		{"ndl danger", func(f *DiveFeature) { f.MinNDL = 4 }, 6},
		{"ndl warning", func(f *DiveFeature) { f.MinNDL = 7 }, 3},
		{"ascent danger", func(f *DiveFeature) { f.MaxAscendSpeed = 11 }, 4},
		{"ascent warning", func(f *DiveFeature) { f.MaxAscendSpeed = 9.5 }, 2},
		{"sac danger", func(f *DiveFeature) { f.SACRate = 21 }, 2},
		{"sac warning", func(f *DiveFeature) { f.SACRate = 16 }, 1},
		{"depth danger", func(f *DiveFeature) { f.MaxDepth = 31 }, 2},
		{"depth warning", func(f *DiveFeature) { f.MaxDepth = 19 }, 1},
		{"adverse conditions", func(f *DiveFeature) { f.AdverseConditions = 1 }, 5},
	}
	for _, c := range cases {
		f := safeFeature("1")
		c.modify(&f)
		if got := DangerScore(f); got != c.want {
			t.Errorf("%s: score = %f, want %f", c.name, got, c.want)
		}
	}
}

func TestDangerScoreBoundariesDoNotEscalate(t *testing.T) {
	t.Parallel()

	// Each value sits exactly on its safe boundary.
	f := safeFeature("1")
	f.MaxDepth = 18
	f.MaxAscendSpeed = 9
	f.MinNDL = 10
	f.SACRate = 15
	if score := DangerScore(f); score != 0 {
		t.Fatalf("boundary values score = %f, want 0", score)
	}
}

func TestIdentifyIssuesFlagsAtWarningLevel(t *testing.T) {
	t.Parallel()

	f := safeFeature("1")
	f.MaxAscendSpeed = 9.5
	f.MinNDL = 9
	f.SACRate = 16
	f.MaxDepth = 31
	f.AdverseConditions = 1

	issues := IdentifyIssues(f)
	want := []string{IssueRapidAscent, IssueLowNDL, IssueHighAirUse, IssueDeepDive, IssueAdverseWeather}
	if len(issues) != len(want) {
		t.Fatalf("issues = %v, want %v", issues, want)
	}
	for i := range want {
		if issues[i] != want[i] {
			t.Errorf("issues[%d] = %s, want %s", i, issues[i], want[i])
		}
	}
}

func TestSelectProblematicDivesExcludesZeroScore(t *testing.T) {
	t.Parallel()

	features := []DiveFeature{safeFeature("1"), safeFeature("2")}
	if picks := SelectProblematicDives(features); len(picks) != 0 {
		t.Fatalf("picked %d safe dives, want 0", len(picks))
	}
}

func TestSelectProblematicDivesCapsAtThree(t *testing.T) {
	t.Parallel()

	var features []DiveFeature
	for _, n := range []string{"1", "2", "3", "4", "5"} {
		f := safeFeature(n)
		f.MaxAscendSpeed = 12
		features = append(features, f)
	}
	if picks := SelectProblematicDives(features); len(picks) != 3 {
		t.Fatalf("picked %d dives, want 3", len(picks))
	}
}

func TestSelectProblematicDivesDiversity(t *testing.T) {
	t.Parallel()

	fastest := safeFeature("1")
	fastest.MaxAscendSpeed = 14

	lowNDL := safeFeature("2")
	lowNDL.MinNDL = 2

	gasGuzzler := safeFeature("3")
	gasGuzzler.SACRate = 25

	picks := SelectProblematicDives([]DiveFeature{fastest, lowNDL, gasGuzzler})
	if len(picks) != 3 {
		t.Fatalf("picked %d dives, want 3", len(picks))
	}

	pickIssueByDive := make(map[string]string)
	for _, p := range picks {
		pickIssueByDive[p.DiveNumber] = p.PickIssue
	}
	if pickIssueByDive["1"] != IssueRapidAscent {
		t.Errorf("dive 1 pick issue = %s, want %s", pickIssueByDive["1"], IssueRapidAscent)
	}
	if pickIssueByDive["2"] != IssueLowNDL {
		t.Errorf("dive 2 pick issue = %s, want %s", pickIssueByDive["2"], IssueLowNDL)
	}
	if pickIssueByDive["3"] != IssueHighAirUse {
		t.Errorf("dive 3 pick issue = %s, want %s", pickIssueByDive["3"], IssueHighAirUse)
	}

	for _, p := range picks {
		if p.PickReason != PickReasons[p.PickIssue] {
			t.Errorf("dive %s reason = %q, want %q", p.DiveNumber, p.PickReason, PickReasons[p.PickIssue])
		}
	}
}

func TestSelectProblematicDivesOrderedByScore(t *testing.T) {
	t.Parallel()

	mild := safeFeature("1")
	mild.MaxDepth = 19 // score 1

	severe := safeFeature("2")
	severe.MinNDL = 1
	severe.MaxAscendSpeed = 15
	severe.AdverseConditions = 1 // score 15

	medium := safeFeature("3")
	medium.MaxAscendSpeed = 12 // score 4

	picks := SelectProblematicDives([]DiveFeature{mild, severe, medium})
	if len(picks) != 3 {
		t.Fatalf("picked %d dives, want 3", len(picks))
	}
	for i := 1; i < len(picks); i++ {
		if picks[i].DangerScore > picks[i-1].DangerScore {
			t.Fatalf("picks not sorted by score descending: %v then %v",
				picks[i-1].DangerScore, picks[i].DangerScore)
		}
	}
	if picks[0].DiveNumber != "2" {
		t.Fatalf("top pick = dive %s, want 2", picks[0].DiveNumber)
	}
}

func TestSelectProblematicDivesCategoryRanksByMetric(t *testing.T) {
	t.Parallel()

	// Dive 2 scores higher overall but dive 1 has the faster ascent; the
	// rapid-ascent slot must go to dive 1.
	faster := safeFeature("1")
	faster.MaxAscendSpeed = 16

	scarier := safeFeature("2")
	scarier.MaxAscendSpeed = 11
	scarier.AdverseConditions = 1

	picks := SelectProblematicDives([]DiveFeature{faster, scarier})
	var rapidPick string
	for _, p := range picks {
		if p.PickIssue == IssueRapidAscent {
			rapidPick = p.DiveNumber
		}
	}
	if rapidPick != "1" {
		t.Fatalf("rapid ascent slot went to dive %s, want 1", rapidPick)
	}
}
