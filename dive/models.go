package dive

// Sample is one telemetry reading within a dive, as produced by a log
// parser. Optional sensor channels are pointers so "not recorded" is
// distinguishable from zero. Samples are immutable once parsed.
type Sample struct {
	DiveNumber   string   `json:"dive_number"`
	Time         float64  `json:"time"`  // seconds from dive start
	Depth        float64  `json:"depth"` // meters
	Temperature  *float64 `json:"temperature,omitempty"` // Celsius
	Pressure     *float64 `json:"pressure,omitempty"`    // bar
	RBT          *float64 `json:"rbt,omitempty"`         // remaining bottom time, minutes
	NDL          *float64 `json:"ndl,omitempty"`         // no-decompression limit, minutes
	SACRate      *float64 `json:"sac_rate,omitempty"`    // L/min, constant per dive
	Rating       *int     `json:"rating,omitempty"`      // 1-5, constant per dive
	DiveSiteName string   `json:"dive_site_name,omitempty"`
	TripName     string   `json:"trip_name,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
}

// DiveFeature is the per-dive aggregate row derived from a dive's samples.
// It is recomputed from the sample snapshot on every request and never
// cached or mutated.
type DiveFeature struct {
	DiveNumber           string   `json:"dive_number"`
	AvgDepth             float64  `json:"avg_depth"`
	MaxDepth             float64  `json:"max_depth"`
	DepthVariability     float64  `json:"depth_variability"`
	AvgTemp              float64  `json:"avg_temp"`
	MaxTemp              float64  `json:"max_temp"`
	TempVariability      float64  `json:"temp_variability"`
	AvgPressure          float64  `json:"avg_pressure"`
	MaxPressure          float64  `json:"max_pressure"`
	PressureVariability  float64  `json:"pressure_variability"`
	MinNDL               float64  `json:"min_ndl"`
	SACRate              float64  `json:"sac_rate"`
	Rating               float64  `json:"rating"`
	MaxAscendSpeed       float64  `json:"max_ascend_speed"`
	HighAscendSpeedCount int      `json:"high_ascend_speed_count"`
	AdverseConditions    int      `json:"adverse_conditions"` // 1 if rating < 3
	DiveSiteName         string   `json:"dive_site_name"`
	TripName             string   `json:"trip_name"`
	Latitude             *float64 `json:"latitude,omitempty"`
	Longitude            *float64 `json:"longitude,omitempty"`
}

// AscentFeatures carries the ascent-speed aggregates for one dive.
type AscentFeatures struct {
	DiveNumber           string  `json:"dive_number"`
	MaxAscendSpeed       float64 `json:"max_ascend_speed"`       // m/min
	HighAscendSpeedCount int     `json:"high_ascend_speed_count"`
}

// DiveMetricPoint is one dive's value for a single safety metric.
type DiveMetricPoint struct {
	DiveNumber string  `json:"diveNumber"`
	Value      float64 `json:"value"`
	Zone       Zone    `json:"zone"`
}

// MetricSummary summarises one safety metric across all dives, with the
// per-dive breakdown sorted ascending by value.
type MetricSummary struct {
	Metric       string            `json:"metric"`
	Label        string            `json:"label"`
	Unit         string            `json:"unit"`
	MinVal       float64           `json:"minVal"`
	MaxVal       float64           `json:"maxVal"`
	AvgVal       float64           `json:"avgVal"`
	WorstVal     *float64          `json:"worstVal,omitempty"` // nil for informational metrics
	SafeUpper    float64           `json:"safeUpper"`
	WarningUpper float64           `json:"warningUpper"`
	Zone         Zone              `json:"zone"`
	PerDive      []DiveMetricPoint `json:"perDive"`
}

// AggregateStats is the whole-log statistics block for the dashboard.
type AggregateStats struct {
	TotalDives                 int     `json:"totalDives"`
	AvgMaxDepth                float64 `json:"avgMaxDepth"`
	AvgSACRate                 float64 `json:"avgSacRate"`
	AvgMaxAscendSpeed          float64 `json:"avgMaxAscendSpeed"`
	DivesWithAdverseConditions int     `json:"divesWithAdverseConditions"`
}

// ProblematicDive is one entry of the "most problematic dives" selection.
type ProblematicDive struct {
	DiveNumber  string      `json:"diveNumber"`
	DangerScore float64     `json:"dangerScore"`
	Features    DiveFeature `json:"features"`
	Issues      []string    `json:"issues"`
	Summary     string      `json:"summary"`
	PickIssue   string      `json:"pickIssue"`  // issue category that motivated the pick
	PickReason  string      `json:"pickReason"` // human-readable form of PickIssue
}

// DiverProfile is the qualitative summary derived from the feature table.
type DiverProfile struct {
	WaterTypes      []string `json:"waterTypes"`
	Regions         []string `json:"regions"`
	ExperienceLevel string   `json:"experienceLevel"`
	DiveSites       []string `json:"diveSites"`
}

// Dashboard packages every derived view of one dive log snapshot.
type Dashboard struct {
	AggregateStats      AggregateStats    `json:"aggregateStats"`
	Metrics             []MetricSummary   `json:"metrics"`
	AllDives            []DiveFeature     `json:"allDives"`
	TopProblematicDives []ProblematicDive `json:"topProblematicDives"`
	DiverProfile        DiverProfile      `json:"diverProfile"`
}
