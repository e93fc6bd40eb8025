package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"dive-roast/dive"
	"dive-roast/parser"
)

// process_log parses a dive log file and prints the per-dive feature table
// as JSON. Useful for inspecting what the server derives from an upload
// without running it.

func main() {
	filePath := flag.String("file", "", "Path to the dive log file (.ssrf/.xml)")
	diveNumber := flag.String("dive", "", "Restrict output to a single dive number")
	pretty := flag.Bool("pretty", true, "Indent the JSON output")
	flag.Parse()

	if *filePath == "" {
		flag.Usage()
		os.Exit(1)
	}

	samples, err := parser.ParseFile(*filePath)
	if err != nil {
		log.Fatalf("failed to parse dive log: %v", err)
	}
	if len(samples) == 0 {
		log.Fatalf("no dive samples found in %s", *filePath)
	}

	if *diveNumber != "" {
		samples, err = dive.FilterDive(samples, *diveNumber)
		if err != nil {
			log.Fatalf("dive %s: %v", *diveNumber, err)
		}
	}

	features := dive.ExtractFeatures(samples)
	if len(features) == 0 {
		log.Fatalf("%s: %v", *filePath, dive.ErrNoFeatures)
	}

	enc := json.NewEncoder(os.Stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(features); err != nil {
		log.Fatalf("failed to encode features: %v", err)
	}
	fmt.Fprintf(os.Stderr, "%d dives, %d samples\n", len(features), len(samples))
}
