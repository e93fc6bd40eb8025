package dive

import (
	"fmt"
	"strings"
)

// DigestMaxDives caps the number of per-dive lines in the model-context
// digest; anything beyond is summarised in a single remaining-count note.
const DigestMaxDives = 200

// CreateTextReport renders one dive's features as a natural-language
// sentence, used when seeding LLM prompts with a dive's numbers.
func CreateTextReport(f DiveFeature) string {
	return fmt.Sprintf(
		"Average depth %.2f meters, Maximum depth %.2f meters, "+
			"Depth variability %.2f meters, SAC rate %.2f, "+
			"High Speed Ascend instances %d, Max Ascend Speed %.2f meters per min, "+
			"Minimal NDL %.0f minutes.",
		f.AvgDepth, f.MaxDepth, f.DepthVariability, f.SACRate,
		f.HighAscendSpeedCount, f.MaxAscendSpeed, f.MinNDL,
	)
}

// Digest renders the full feature table as a compact per-dive listing plus
// an aggregate line, suitable for seeding model context. One line per dive
// up to DigestMaxDives, then a remaining-count note.
func Digest(features []DiveFeature) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Dive log digest (%d dives):\n", len(features))
	for i, f := range features {
		if i >= DigestMaxDives {
			fmt.Fprintf(&b, "  ... and %d more dives\n", len(features)-DigestMaxDives)
			break
		}
		label := f.DiveSiteName
		if label == "" || label == "N/A" {
			label = "unknown site"
		}
		if f.TripName != "" && f.TripName != "N/A" {
			label += " (" + f.TripName + ")"
		}
		adverse := ""
		if f.AdverseConditions == 1 {
			adverse = ", ADVERSE CONDITIONS"
		}
		fmt.Fprintf(&b,
			"  #%s %s: max depth %.1fm, max ascent %.1f m/min, min NDL %.0f min, SAC %.1f L/min, avg temp %.1f°C%s\n",
			f.DiveNumber, label, f.MaxDepth, f.MaxAscendSpeed, f.MinNDL, f.SACRate, f.AvgTemp, adverse,
		)
	}

	stats := ComputeAggregateStats(features)
	fmt.Fprintf(&b,
		"Overall: %d dives, avg max depth %.1fm, avg SAC %.1f L/min, avg max ascent %.1f m/min, %d with adverse conditions.",
		stats.TotalDives, stats.AvgMaxDepth, stats.AvgSACRate, stats.AvgMaxAscendSpeed, stats.DivesWithAdverseConditions,
	)
	return b.String()
}
