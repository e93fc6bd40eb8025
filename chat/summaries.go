package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"dive-roast/dive"
	"dive-roast/utils"
)

// SummarizeProblematicDives fills the Summary field of each pick with a
// one-sentence explanation. All dives go out in a single batched model
// call; on any failure every pick falls back to the deterministic
// template, so the dashboard never blocks on the model.
func (g *GeminiClient) SummarizeProblematicDives(ctx context.Context, picks []dive.ProblematicDive) {
	if len(picks) == 0 {
		return
	}

	summaries, err := g.generateDiveSummaries(ctx, picks)
	if err != nil || len(summaries) != len(picks) {
		if err != nil {
			utils.LogError(ctx, "dive summary generation failed, using fallback", err)
		}
		for i := range picks {
			picks[i].Summary = FallbackSummary(picks[i])
		}
		return
	}
	for i := range picks {
		picks[i].Summary = strings.TrimSpace(summaries[i])
	}
}

func (g *GeminiClient) generateDiveSummaries(ctx context.Context, picks []dive.ProblematicDive) ([]string, error) {
	text, err := g.generateText(ctx, summaryPrompt(picks))
	if err != nil {
		return nil, err
	}

	var summaries []string
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &summaries); err != nil {
		return nil, fmt.Errorf("error parsing summary response: %s", err)
	}
	return summaries, nil
}

// summaryPrompt lays out the batched summary request. The adverse
// conditions flag is already reflected in the danger score, so it is kept
// out of the issue list handed to the model.
func summaryPrompt(picks []dive.ProblematicDive) string {
	var b strings.Builder
	b.WriteString(summaryPromptHeader)
	b.WriteString("\n\n")
	for i, p := range picks {
		issues := make([]string, 0, len(p.Issues))
		for _, issue := range p.Issues {
			if issue != dive.IssueAdverseWeather {
				issues = append(issues, issue)
			}
		}
		fmt.Fprintf(&b, "%d. Dive #%s (danger score %.1f, issues: %s): %s\n",
			i+1, p.DiveNumber, p.DangerScore, strings.Join(issues, ", "),
			dive.CreateTextReport(p.Features))
	}
	return b.String()
}

// FallbackSummary is the deterministic template used when the model is
// unavailable or returns something unparseable. Only the three most
// prominent issues are named.
func FallbackSummary(p dive.ProblematicDive) string {
	site := p.Features.DiveSiteName
	if site == "" {
		site = "an unknown site"
	}
	issues := "elevated risk indicators"
	if len(p.Issues) > 0 {
		top := p.Issues
		if len(top) > 3 {
			top = top[:3]
		}
		issues = strings.Join(top, ", ")
	}
	return fmt.Sprintf("Dive #%s at %s was flagged for %s.", p.DiveNumber, site, issues)
}

// stripCodeFence unwraps a markdown code fence the model sometimes adds
// around JSON output.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
