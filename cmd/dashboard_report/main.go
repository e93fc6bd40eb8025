package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"dive-roast/chat"
	"dive-roast/dive"
	"dive-roast/parser"
)

// dashboard_report builds the full safety dashboard for a dive log file
// offline. Narrative summaries use the deterministic templates, so no
// model access is needed.

func main() {
	filePath := flag.String("file", "", "Path to the dive log file (.ssrf/.xml)")
	format := flag.String("format", "text", "Output format: text or json")
	flag.Parse()

	if *filePath == "" {
		flag.Usage()
		os.Exit(1)
	}

	samples, err := parser.ParseFile(*filePath)
	if err != nil {
		log.Fatalf("failed to parse dive log: %v", err)
	}

	features := dive.ExtractFeatures(samples)
	if len(features) == 0 {
		log.Fatalf("%s: %v", *filePath, dive.ErrNoFeatures)
	}

	dashboard := dive.BuildDashboard(features)
	for i := range dashboard.TopProblematicDives {
		dashboard.TopProblematicDives[i].Summary = chat.FallbackSummary(dashboard.TopProblematicDives[i])
	}

	switch *format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(dashboard); err != nil {
			log.Fatalf("failed to encode dashboard: %v", err)
		}
	case "text":
		printTextReport(dashboard, features)
	default:
		log.Fatalf("unknown format %q", *format)
	}
}

func printTextReport(d dive.Dashboard, features []dive.DiveFeature) {
	fmt.Print(dive.Digest(features))
	fmt.Println()

	fmt.Println("Safety metrics:")
	for _, m := range d.Metrics {
		line := fmt.Sprintf("  %-18s min %.2f  avg %.2f  max %.2f", m.Label, m.MinVal, m.AvgVal, m.MaxVal)
		if m.WorstVal != nil {
			line += fmt.Sprintf("  worst %.2f [%s]", *m.WorstVal, m.Zone)
		}
		fmt.Println(line)
	}
	fmt.Println()

	if len(d.TopProblematicDives) > 0 {
		fmt.Println("Most problematic dives:")
		for _, p := range d.TopProblematicDives {
			fmt.Printf("  #%s (score %.1f, %s): %s\n",
				p.DiveNumber, p.DangerScore, strings.Join(p.Issues, ", "), p.Summary)
		}
		fmt.Println()
	}

	profile := d.DiverProfile
	fmt.Println("Diver profile:")
	fmt.Printf("  Experience: %s\n", profile.ExperienceLevel)
	if len(profile.WaterTypes) > 0 {
		fmt.Printf("  Water types: %s\n", strings.Join(profile.WaterTypes, ", "))
	}
	if len(profile.Regions) > 0 {
		fmt.Printf("  Regions: %s\n", strings.Join(profile.Regions, ", "))
	}
	if len(profile.DiveSites) > 0 {
		fmt.Printf("  Sites: %s\n", strings.Join(profile.DiveSites, ", "))
	}
}
