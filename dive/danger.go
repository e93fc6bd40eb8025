package dive

import "sort"

// Issue categories, in the fixed order used by the diversity pass.
const (
	IssueRapidAscent    = "rapid ascent"
	IssueLowNDL         = "low NDL"
	IssueHighAirUse     = "high air consumption"
	IssueDeepDive       = "deep dive"
	IssueAdverseWeather = "adverse conditions"
)

var issueOrder = []string{
	IssueRapidAscent,
	IssueLowNDL,
	IssueHighAirUse,
	IssueDeepDive,
	IssueAdverseWeather,
}

// PickReasons maps an issue category to the human-readable reason attached
// to a problematic-dive pick.
var PickReasons = map[string]string{
	IssueRapidAscent:    "Fastest ascent rate",
	IssueLowNDL:         "Closest to decompression limit",
	IssueHighAirUse:     "Highest air consumption",
	IssueDeepDive:       "Deepest dive with issues",
	IssueAdverseWeather: "Worst conditions",
}

// issueRank gives, per issue category, the metric that ranks candidates and
// whether a higher value is worse.
var issueRank = map[string]struct {
	metric        string
	higherIsWorse bool
}{
	IssueRapidAscent:    {"max_ascend_speed", true},
	IssueLowNDL:         {"min_ndl", false},
	IssueHighAirUse:     {"sac_rate", true},
	IssueDeepDive:       {"max_depth", true},
	IssueAdverseWeather: {"adverse_conditions", true},
}

// DangerScore computes the weighted additive danger score for one dive.
// Scoring escalates at the danger thresholds, one step earlier for the
// half-weight warning band.
func DangerScore(f DiveFeature) float64 {
	var score float64

	// NDL, weight 3: lower is worse.
	if f.MinNDL < NDLWarningLower {
		score += 3.0 * 2
	} else if f.MinNDL < NDLSafeLower {
		score += 3.0
	}

	// Ascent speed, weight 2.
	if f.MaxAscendSpeed > 10 {
		score += 2.0 * 2
	} else if f.MaxAscendSpeed > 9 {
		score += 2.0
	}

	// SAC rate, weight 1.
	if f.SACRate > 20 {
		score += 1.0 * 2
	} else if f.SACRate > 15 {
		score += 1.0
	}

	// Depth, weight 1.
	if f.MaxDepth > 30 {
		score += 1.0 * 2
	} else if f.MaxDepth > 18 {
		score += 1.0
	}

	// Adverse conditions, weight 5.
	if f.AdverseConditions == 1 {
		score += 5.0
	}

	return score
}

// IdentifyIssues lists a dive's issue categories. Flags trip at the warning
// boundary, deliberately looser than the danger-level escalation in
// DangerScore, so a dive can carry an issue label while scoring low.
func IdentifyIssues(f DiveFeature) []string {
	var issues []string
	if f.MaxAscendSpeed > 9 {
		issues = append(issues, IssueRapidAscent)
	}
	if f.MinNDL < NDLSafeLower {
		issues = append(issues, IssueLowNDL)
	}
	if f.SACRate > 15 {
		issues = append(issues, IssueHighAirUse)
	}
	if f.MaxDepth > 30 {
		issues = append(issues, IssueDeepDive)
	}
	if f.AdverseConditions == 1 {
		issues = append(issues, IssueAdverseWeather)
	}
	return issues
}

func rankValue(metric string, f DiveFeature) float64 {
	if metric == "adverse_conditions" {
		return float64(f.AdverseConditions)
	}
	return metricValue(metric, f)
}

type scoredDive struct {
	feature DiveFeature
	score   float64
	issues  []string
}

// SelectProblematicDives picks up to three dives for detailed callout,
// diversified across issue categories.
//
// Candidates are the dives with a danger score above zero, ordered by score
// descending (stable, preserving feature-table order on ties). The first
// pass walks the issue categories in fixed order and, per unused category,
// picks the not-yet-picked dive with the most extreme value of that
// category's ranking metric, first encountered winning ties. The second
// pass fills remaining slots straight from the score ranking, tagging each
// with its first identified issue. The final list is sorted by danger score
// descending, stable.
func SelectProblematicDives(features []DiveFeature) []ProblematicDive {
	var candidates []scoredDive
	for _, f := range features {
		score := DangerScore(f)
		if score <= 0 {
			continue
		}
		candidates = append(candidates, scoredDive{
			feature: f,
			score:   score,
			issues:  IdentifyIssues(f),
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	var picks []ProblematicDive
	usedDives := make(map[string]bool)
	usedIssues := make(map[string]bool)

	// Diversity pass: one representative per issue category, ranked by the
	// category's own metric rather than the overall score.
	for _, issue := range issueOrder {
		if len(picks) >= 3 {
			break
		}
		if usedIssues[issue] {
			continue
		}
		rank := issueRank[issue]
		bestIdx := -1
		var bestVal float64
		for i, c := range candidates {
			if usedDives[c.feature.DiveNumber] || !hasIssue(c.issues, issue) {
				continue
			}
			val := rankValue(rank.metric, c.feature)
			if bestIdx == -1 ||
				(rank.higherIsWorse && val > bestVal) ||
				(!rank.higherIsWorse && val < bestVal) {
				bestIdx = i
				bestVal = val
			}
		}
		if bestIdx >= 0 {
			best := candidates[bestIdx]
			usedDives[best.feature.DiveNumber] = true
			usedIssues[issue] = true
			picks = append(picks, newPick(best, issue))
		}
	}

	// Fallback pass: top up from the overall score ranking.
	for _, c := range candidates {
		if len(picks) >= 3 {
			break
		}
		if usedDives[c.feature.DiveNumber] {
			continue
		}
		// A dive can score without tripping any flag (e.g. depth in the
		// warning band); those default to the first category.
		primary := IssueRapidAscent
		if len(c.issues) > 0 {
			primary = c.issues[0]
		}
		usedDives[c.feature.DiveNumber] = true
		picks = append(picks, newPick(c, primary))
	}

	sort.SliceStable(picks, func(i, j int) bool {
		return picks[i].DangerScore > picks[j].DangerScore
	})
	return picks
}

func newPick(c scoredDive, pickIssue string) ProblematicDive {
	return ProblematicDive{
		DiveNumber:  c.feature.DiveNumber,
		DangerScore: round2(c.score),
		Features:    c.feature,
		Issues:      c.issues,
		PickIssue:   pickIssue,
		PickReason:  PickReasons[pickIssue],
	}
}

func hasIssue(issues []string, issue string) bool {
	for _, i := range issues {
		if i == issue {
			return true
		}
	}
	return false
}
