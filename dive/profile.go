package dive

import (
	"sort"
	"strings"
)

// regionBox is a named geographic bounding box. Boxes overlap; the first
// match in table order wins.
type regionBox struct {
	name                           string
	latMin, latMax, lonMin, lonMax float64
}

var regionBoxes = []regionBox{
	{"Red Sea", 12.0, 30.0, 32.0, 44.0},
	{"Mediterranean", 30.0, 46.0, -6.0, 36.0},
	{"Southeast Asia", -11.0, 20.0, 95.0, 141.0},
	{"Caribbean", 10.0, 27.0, -90.0, -59.0},
	{"Central America", 7.0, 18.0, -92.0, -77.0},
	{"South Pacific", -25.0, 0.0, 150.0, 180.0},
	{"North Atlantic", 40.0, 65.0, -80.0, 0.0},
	{"Indian Ocean", -35.0, 10.0, 40.0, 95.0},
	{"East Africa", -30.0, 5.0, 30.0, 55.0},
	{"Australia", -45.0, -10.0, 110.0, 155.0},
	{"Japan", 24.0, 46.0, 122.0, 146.0},
	{"Hawaii", 18.0, 23.0, -162.0, -154.0},
}

// waterTypeKeywords maps a water type to the site/trip-name fragments that
// indicate it. "see" covers German lake names, "lac" French ones.
var waterTypeKeywords = []struct {
	waterType string
	keywords  []string
}{
	{"Quarry", []string{"quarry"}},
	{"Lake", []string{"lake", "lac", "see"}},
	{"Cave", []string{"cave", "cavern", "cenote"}},
	{"Wreck", []string{"wreck"}},
	{"River", []string{"river"}},
}

// ClassifyWaterType buckets an average water temperature.
func ClassifyWaterType(avgTemp float64) string {
	if avgTemp > 24 {
		return "Tropical"
	}
	if avgTemp >= 15 {
		return "Temperate"
	}
	return "Cold water"
}

// ClassifyRegion names the first bounding box containing (lat, lon), or ""
// when no box matches.
func ClassifyRegion(lat, lon float64) string {
	for _, box := range regionBoxes {
		if lat >= box.latMin && lat <= box.latMax && lon >= box.lonMin && lon <= box.lonMax {
			return box.name
		}
	}
	return ""
}

// ClassifyExperience derives an experience level from the dive count and
// the deepest recorded dive; either signal alone is enough to promote.
func ClassifyExperience(diveCount int, maxDepth float64) string {
	if diveCount >= 100 || maxDepth > 40 {
		return "advanced"
	}
	if diveCount >= 30 || maxDepth > 25 {
		return "intermediate"
	}
	return "beginner"
}

// BuildDiverProfile derives the qualitative diver summary from the full
// feature table.
func BuildDiverProfile(features []DiveFeature) DiverProfile {
	waterTypes := make(map[string]bool)
	regions := make(map[string]bool)
	var diveSites []string
	seenSites := make(map[string]bool)
	var maxDepth float64

	for _, f := range features {
		// Zero-filled temperatures mean "no sensor", not freezing water.
		if f.AvgTemp > 0 {
			waterTypes[ClassifyWaterType(f.AvgTemp)] = true
		}

		combined := strings.ToLower(f.DiveSiteName + " " + f.TripName)
		for _, family := range waterTypeKeywords {
			for _, kw := range family.keywords {
				if strings.Contains(combined, kw) {
					waterTypes[family.waterType] = true
					break
				}
			}
		}

		if f.DiveSiteName != "" && f.DiveSiteName != "N/A" && !seenSites[f.DiveSiteName] {
			seenSites[f.DiveSiteName] = true
			diveSites = append(diveSites, f.DiveSiteName)
		}

		// A zero coordinate means "no fix", not the equatorial Atlantic.
		if f.Latitude != nil && f.Longitude != nil && *f.Latitude != 0 && *f.Longitude != 0 {
			if region := ClassifyRegion(*f.Latitude, *f.Longitude); region != "" {
				regions[region] = true
			}
		}

		if f.MaxDepth > maxDepth {
			maxDepth = f.MaxDepth
		}
	}

	return DiverProfile{
		WaterTypes:      sortedKeys(waterTypes),
		Regions:         sortedKeys(regions),
		ExperienceLevel: ClassifyExperience(len(features), maxDepth),
		DiveSites:       diveSites,
	}
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
