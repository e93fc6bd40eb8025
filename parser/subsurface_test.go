package parser

import (
	"strings"
	"testing"
)

const sampleSSRF = `<divelog program="subsurface" version="3">
<divesites>
<site uuid="abc123" name="Ras Mohammed" gps="27.720000 34.250000"/>
<site uuid="nogps" name="House Reef"/>
</divesites>
<dives>
<trip location="Red Sea Liveaboard">
<dive number="1" rating="4" sac="14.2 l/min" divesiteid="abc123">
<divecomputer model="Suunto">
<sample time="0:00 min" depth="0.0 m" temp="26.0 C" pressure="200.0 bar" ndl="99:00 min"/>
<sample time="1:00 min" depth="12.5 m" temp="25.5 C" pressure="190.0 bar" ndl="45:00 min"/>
<sample time="2:30 min" depth="18.0 m" pressure="175.0 bar"/>
</divecomputer>
</dive>
</trip>
<dive number="2" divesiteid="nogps">
<sample time="0:30 min" depth="5.0 m"/>
<sample time="1:00 min"/>
</dive>
</dives>
</divelog>`

func TestSubsurfaceParse(t *testing.T) {
	t.Parallel()

	samples, err := SubsurfaceParser{}.Parse(strings.NewReader(sampleSSRF))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	// The depth-less sample of dive 2 is skipped.
	if len(samples) != 4 {
		t.Fatalf("got %d samples, want 4", len(samples))
	}

	first := samples[0]
	if first.DiveNumber != "1" {
		t.Errorf("DiveNumber = %s, want 1", first.DiveNumber)
	}
	if first.Time != 0 {
		t.Errorf("Time = %v, want 0", first.Time)
	}
	if first.DiveSiteName != "Ras Mohammed" {
		t.Errorf("DiveSiteName = %q, want Ras Mohammed", first.DiveSiteName)
	}
	if first.TripName != "Red Sea Liveaboard" {
		t.Errorf("TripName = %q, want Red Sea Liveaboard", first.TripName)
	}
	if first.Latitude == nil || *first.Latitude != 27.72 {
		t.Errorf("Latitude = %v, want 27.72", first.Latitude)
	}
	if first.SACRate == nil || *first.SACRate != 14.2 {
		t.Errorf("SACRate = %v, want 14.2", first.SACRate)
	}
	if first.Rating == nil || *first.Rating != 4 {
		t.Errorf("Rating = %v, want 4", first.Rating)
	}
	if first.Temperature == nil || *first.Temperature != 26.0 {
		t.Errorf("Temperature = %v, want 26", first.Temperature)
	}
	if first.NDL == nil || *first.NDL != 99 {
		t.Errorf("NDL = %v, want 99", first.NDL)
	}

	second := samples[1]
	if second.Time != 60 {
		t.Errorf("second sample Time = %v, want 60 (\"1:00 min\")", second.Time)
	}
	if second.Depth != 12.5 {
		t.Errorf("second sample Depth = %v, want 12.5", second.Depth)
	}

	third := samples[2]
	if third.Time != 150 {
		t.Errorf("third sample Time = %v, want 150 (\"2:30 min\")", third.Time)
	}
	if third.Temperature != nil {
		t.Errorf("third sample Temperature = %v, want nil (not recorded)", third.Temperature)
	}

	outside := samples[3]
	if outside.DiveNumber != "2" {
		t.Errorf("DiveNumber = %s, want 2", outside.DiveNumber)
	}
	if outside.TripName != "N/A" {
		t.Errorf("TripName = %q, want N/A outside a trip", outside.TripName)
	}
	if outside.DiveSiteName != "House Reef" {
		t.Errorf("DiveSiteName = %q, want House Reef", outside.DiveSiteName)
	}
	if outside.Latitude != nil {
		t.Errorf("Latitude = %v, want nil for a site without GPS", outside.Latitude)
	}
	if outside.Rating != nil {
		t.Errorf("Rating = %v, want nil when the dive has none", outside.Rating)
	}
}

func TestSubsurfaceParseMalformed(t *testing.T) {
	t.Parallel()

	if _, err := (SubsurfaceParser{}).Parse(strings.NewReader("<divelog><dive>")); err == nil {
		t.Fatal("expected error for unterminated XML")
	}
}

func TestForExtension(t *testing.T) {
	t.Parallel()

	if ForExtension(".ssrf") == nil {
		t.Error("no parser for .ssrf")
	}
	if ForExtension(".xml") == nil {
		t.Error("no parser for .xml")
	}
	if ForExtension(".csv") != nil {
		t.Error("unexpected parser for .csv")
	}
}
