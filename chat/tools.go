package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"dive-roast/dive"
	"dive-roast/utils"
)

// Tool surface exposed to the model. Every tool returns a plain string;
// data problems come back as user-visible messages rather than errors so
// the model can relay them.

func toolDeclarations() []*genai.FunctionDeclaration {
	diveNumberParam := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"dive_number": {
				Type:        genai.TypeString,
				Description: "Dive number as it appears in the log, e.g. \"42\"",
			},
		},
		Required: []string{"dive_number"},
	}
	queryParam := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"query": {
				Type:        genai.TypeString,
				Description: "Free-text search query",
			},
		},
		Required: []string{"query"},
	}

	return []*genai.FunctionDeclaration{
		{
			Name:        "analyze_dive_profile",
			Description: "Compute safety metrics for a single dive: max depth, ascent speeds, NDL, air consumption, temperature.",
			Parameters:  diveNumberParam,
		},
		{
			Name:        "get_dive_summary",
			Description: "Get a one-paragraph text summary of a single dive's key statistics.",
			Parameters:  diveNumberParam,
		},
		{
			Name:        "list_dives",
			Description: "List every dive in the uploaded log with its dive site.",
			Parameters:  &genai.Schema{Type: genai.TypeObject, Properties: map[string]*genai.Schema{}},
		},
		{
			Name:        "analyze_all_dives",
			Description: "Get a digest of every dive in the log with per-dive safety metrics and overall statistics.",
			Parameters:  &genai.Schema{Type: genai.TypeObject, Properties: map[string]*genai.Schema{}},
		},
		{
			Name:        "search_dan_incidents",
			Description: "Search Divers Alert Network incident reports for real accidents matching the query.",
			Parameters:  queryParam,
		},
		{
			Name:        "search_dan_guidelines",
			Description: "Search Divers Alert Network safety guidelines and best-practice articles.",
			Parameters:  queryParam,
		},
	}
}

func (g *GeminiClient) dispatchTool(ctx context.Context, name string, args map[string]any, samples []dive.Sample) string {
	switch name {
	case "analyze_dive_profile":
		return toolAnalyzeDiveProfile(samples, utils.CanonicalDiveNumber(args["dive_number"]))
	case "get_dive_summary":
		return toolGetDiveSummary(samples, utils.CanonicalDiveNumber(args["dive_number"]))
	case "list_dives":
		return toolListDives(samples)
	case "analyze_all_dives":
		return toolAnalyzeAllDives(samples)
	case "search_dan_incidents":
		return g.toolSearchDAN(stringArg(args, "query"), "incident")
	case "search_dan_guidelines":
		return g.toolSearchDAN(stringArg(args, "query"), "guideline")
	default:
		return fmt.Sprintf("Unknown tool: %s", name)
	}
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func featureForDive(samples []dive.Sample, diveNumber string) (dive.DiveFeature, string) {
	diveSamples, err := dive.FilterDive(samples, diveNumber)
	if err != nil {
		if errors.Is(err, dive.ErrNoDiveData) {
			return dive.DiveFeature{}, fmt.Sprintf("No data found for dive number %s.", diveNumber)
		}
		return dive.DiveFeature{}, fmt.Sprintf("Error reading dive %s: %v", diveNumber, err)
	}

	features := dive.ExtractFeatures(diveSamples)
	if len(features) == 0 {
		return dive.DiveFeature{}, fmt.Sprintf("Could not extract features for dive %s.", diveNumber)
	}
	return features[0], ""
}

func toolAnalyzeDiveProfile(samples []dive.Sample, diveNumber string) string {
	f, msg := featureForDive(samples, diveNumber)
	if msg != "" {
		return msg
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Dive #%s safety metrics:\n", f.DiveNumber)
	fmt.Fprintf(&b, "- Max depth: %.1f m (avg %.1f m)\n", f.MaxDepth, f.AvgDepth)
	fmt.Fprintf(&b, "- Max ascent speed: %.1f m/min (%d samples over %.0f m/min)\n",
		f.MaxAscendSpeed, f.HighAscendSpeedCount, dive.ExcessiveAscentSpeed)
	fmt.Fprintf(&b, "- Min NDL: %.0f min\n", f.MinNDL)
	fmt.Fprintf(&b, "- SAC rate: %.1f L/min\n", f.SACRate)
	fmt.Fprintf(&b, "- Avg temperature: %.1f C (max %.1f C)\n", f.AvgTemp, f.MaxTemp)
	fmt.Fprintf(&b, "- Avg tank pressure: %.0f bar (max %.0f bar)\n", f.AvgPressure, f.MaxPressure)
	if f.AdverseConditions == 1 {
		b.WriteString("- Diver rated this dive poorly: adverse conditions flagged\n")
	}
	if f.DiveSiteName != "" {
		fmt.Fprintf(&b, "- Site: %s\n", f.DiveSiteName)
	}
	return b.String()
}

func toolGetDiveSummary(samples []dive.Sample, diveNumber string) string {
	f, msg := featureForDive(samples, diveNumber)
	if msg != "" {
		return msg
	}
	return fmt.Sprintf("Dive #%s: %s", f.DiveNumber, dive.CreateTextReport(f))
}

func toolListDives(samples []dive.Sample) string {
	order, groups := dive.GroupByDive(samples)
	if len(order) == 0 {
		return "The uploaded log contains no dives."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "The log contains %d dives:\n", len(order))
	for _, diveNumber := range order {
		site := ""
		for _, s := range groups[diveNumber] {
			if s.DiveSiteName != "" {
				site = s.DiveSiteName
				break
			}
		}
		if site == "" {
			site = "unknown site"
		}
		fmt.Fprintf(&b, "- Dive #%s at %s\n", diveNumber, site)
	}
	return b.String()
}

func toolAnalyzeAllDives(samples []dive.Sample) string {
	features := dive.ExtractFeatures(samples)
	if len(features) == 0 {
		return "Could not extract features from the uploaded log."
	}
	return dive.Digest(features)
}

func (g *GeminiClient) toolSearchDAN(query, kind string) string {
	if g.search == nil {
		return "The DAN search service is not configured."
	}

	articles, err := g.search.SearchArticles(fmt.Sprintf("%s %s", kind, query), 5)
	if err != nil {
		return fmt.Sprintf("DAN search is currently unavailable: %v", err)
	}
	if len(articles) == 0 {
		return fmt.Sprintf("No DAN %ss found for: %s", kind, query)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Top DAN %s results for %q:\n", kind, query)
	for _, a := range articles {
		title := a.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(&b, "- %s", title)
		if a.URL != "" {
			fmt.Fprintf(&b, " (%s)", a.URL)
		}
		if a.Snippet != "" {
			fmt.Fprintf(&b, ": %s", a.Snippet)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
