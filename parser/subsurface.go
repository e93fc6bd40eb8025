// Package parser turns dive-log files into the per-sample rows the
// analysis pipeline consumes.
package parser

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"dive-roast/dive"
)

// DiveLogParser is one supported dive-log format.
type DiveLogParser interface {
	Parse(r io.Reader) ([]dive.Sample, error)
	SupportedExtensions() []string
}

// ParseFile picks a parser by file extension and parses the file.
func ParseFile(path string) ([]dive.Sample, error) {
	ext := strings.ToLower(filepath.Ext(path))
	p := ForExtension(ext)
	if p == nil {
		return nil, fmt.Errorf("unsupported dive log format: %s", ext)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dive log: %w", err)
	}
	defer f.Close()
	return p.Parse(f)
}

// ForExtension returns the parser handling ext, or nil.
func ForExtension(ext string) DiveLogParser {
	for _, p := range []DiveLogParser{SubsurfaceParser{}} {
		for _, supported := range p.SupportedExtensions() {
			if supported == ext {
				return p
			}
		}
	}
	return nil
}

// SubsurfaceParser reads Subsurface XML exports (.ssrf/.xml). Values carry
// unit suffixes in the attributes ("32.5 m", "200.0 bar", "12:30 min")
// which are stripped during extraction.
type SubsurfaceParser struct{}

func (SubsurfaceParser) SupportedExtensions() []string {
	return []string{".ssrf", ".xml"}
}

type siteInfo struct {
	name     string
	lat, lon *float64
}

// Parse walks the document with the token decoder: sites and trips can
// appear at several nesting levels, and samples live under whichever dive
// element encloses them.
func (SubsurfaceParser) Parse(r io.Reader) ([]dive.Sample, error) {
	decoder := xml.NewDecoder(r)

	sites := make(map[string]siteInfo)
	var samples []dive.Sample

	var tripStack []string
	var current *diveContext

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed dive log XML: %w", err)
		}

		switch el := token.(type) {
		case xml.StartElement:
			attrs := attrMap(el)
			switch el.Name.Local {
			case "site":
				sites[attrs["uuid"]] = parseSite(attrs)
			case "trip":
				tripStack = append(tripStack, attrs["location"])
			case "dive":
				current = newDiveContext(attrs, tripStack, sites)
			case "sample":
				if current != nil {
					if s, ok := current.sample(attrs); ok {
						samples = append(samples, s)
					}
				}
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "trip":
				if len(tripStack) > 0 {
					tripStack = tripStack[:len(tripStack)-1]
				}
			case "dive":
				current = nil
			}
		}
	}

	return samples, nil
}

func attrMap(el xml.StartElement) map[string]string {
	attrs := make(map[string]string, len(el.Attr))
	for _, a := range el.Attr {
		attrs[a.Name.Local] = a.Value
	}
	return attrs
}

func parseSite(attrs map[string]string) siteInfo {
	info := siteInfo{name: attrs["name"]}
	if info.name == "" {
		info.name = "N/A"
	}
	parts := strings.Fields(attrs["gps"])
	if len(parts) == 2 {
		lat, latErr := strconv.ParseFloat(parts[0], 64)
		lon, lonErr := strconv.ParseFloat(parts[1], 64)
		if latErr == nil && lonErr == nil {
			info.lat, info.lon = &lat, &lon
		}
	}
	return info
}

// diveContext carries the dive-level constants replicated onto each of the
// dive's sample rows.
type diveContext struct {
	number   string
	tripName string
	siteName string
	lat, lon *float64
	sacRate  *float64
	rating   *int
}

func newDiveContext(attrs map[string]string, tripStack []string, sites map[string]siteInfo) *diveContext {
	ctx := &diveContext{
		number:   attrs["number"],
		tripName: "N/A",
		siteName: "N/A",
	}
	if ctx.number == "" {
		ctx.number = "N/A"
	}
	if len(tripStack) > 0 && tripStack[len(tripStack)-1] != "" {
		ctx.tripName = tripStack[len(tripStack)-1]
	}
	if site, ok := sites[attrs["divesiteid"]]; ok {
		ctx.siteName = site.name
		ctx.lat, ctx.lon = site.lat, site.lon
	}
	if sac := strings.TrimSuffix(attrs["sac"], " l/min"); sac != "" {
		if v, err := strconv.ParseFloat(sac, 64); err == nil {
			ctx.sacRate = &v
		}
	}
	if rating := attrs["rating"]; rating != "" {
		if v, err := strconv.Atoi(rating); err == nil {
			ctx.rating = &v
		}
	}
	return ctx
}

// sample converts one <sample> element into a row; rows without both time
// and depth are skipped.
func (c *diveContext) sample(attrs map[string]string) (dive.Sample, bool) {
	timeAttr, hasTime := attrs["time"]
	depthAttr, hasDepth := attrs["depth"]
	if !hasTime || !hasDepth {
		return dive.Sample{}, false
	}

	seconds, err := parseTimeSeconds(strings.TrimSuffix(timeAttr, " min"))
	if err != nil {
		return dive.Sample{}, false
	}
	depth, err := strconv.ParseFloat(strings.TrimSuffix(depthAttr, " m"), 64)
	if err != nil {
		return dive.Sample{}, false
	}

	s := dive.Sample{
		DiveNumber:   c.number,
		Time:         seconds,
		Depth:        depth,
		TripName:     c.tripName,
		DiveSiteName: c.siteName,
		Latitude:     c.lat,
		Longitude:    c.lon,
		SACRate:      c.sacRate,
		Rating:       c.rating,
	}
	s.Temperature = parseOptionalFloat(attrs, "temp", " C")
	s.Pressure = parseOptionalFloat(attrs, "pressure", " bar")
	s.RBT = parseOptionalFloat(attrs, "rbt", ":00 min")
	s.NDL = parseOptionalFloat(attrs, "ndl", ":00 min")
	return s, true
}

// parseTimeSeconds converts "MM:SS" (or a bare number) to seconds.
func parseTimeSeconds(value string) (float64, error) {
	if strings.Contains(value, ":") {
		parts := strings.SplitN(value, ":", 2)
		minutes, err := strconv.Atoi(parts[0])
		if err != nil {
			return 0, err
		}
		seconds, err := strconv.Atoi(parts[1])
		if err != nil {
			return 0, err
		}
		return float64(minutes*60 + seconds), nil
	}
	return strconv.ParseFloat(value, 64)
}

func parseOptionalFloat(attrs map[string]string, key, suffix string) *float64 {
	raw, ok := attrs[key]
	if !ok || raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(raw, suffix), 64)
	if err != nil {
		return nil
	}
	return &v
}
