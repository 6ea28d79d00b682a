package dashboard

import (
	"absentee/domain/attendance"
	"absentee/domain/verdict"
)

// Chart keys, also used as SVG file names under /charts
const (
	ChartBoxSex  = "box_sex"
	ChartHistSex = "hist_sex"
	ChartBoxAge  = "box_age"
	ChartHistAge = "hist_age"
)

// ChartNames lists the four charts in display order
var ChartNames = []string{ChartBoxSex, ChartHistSex, ChartBoxAge, ChartHistAge}

// Hypothesis keys
const (
	HypothesisSex = "sex"
	HypothesisAge = "age"
)

// Dashboard is the full result of one pass over a dataset with one set of thresholds
type Dashboard struct {
	Filename      string                `json:"filename"`
	Rows          int                   `json:"rows"`
	Thresholds    attendance.Thresholds `json:"thresholds"`
	AgeRange      attendance.Range      `json:"age_range"`
	SickDaysRange attendance.Range      `json:"sick_days_range"`
	Hypotheses    []Hypothesis          `json:"hypotheses"`
	SexComparison Comparison            `json:"sex_comparison"`
	AgeComparison Comparison            `json:"age_comparison"`
}

// Hypothesis pairs the stated claim with the verdict reached on it
type Hypothesis struct {
	Key       string          `json:"key"`
	Statement string          `json:"statement"`
	Verdict   verdict.Verdict `json:"verdict"`
}

// Comparison is the chart data for one segment pair after the sick-days filter
type Comparison struct {
	Title      string           `json:"title"`
	GroupLabel string           `json:"group_label"`
	Segments   []SegmentSummary `json:"segments"`
	BinEdges   []float64        `json:"bin_edges"`
}

// SegmentSummary describes one filtered segment for the box plot and histogram
type SegmentSummary struct {
	Name      string      `json:"name"`
	Label     string      `json:"label"`
	Count     int         `json:"count"`
	Values    []float64   `json:"values"`
	Box       *BoxSummary `json:"box,omitempty"`
	Frequency []int       `json:"frequency"`
}

// BoxSummary is a Tukey box: quartiles, whiskers at 1.5 IQR and the points beyond them
type BoxSummary struct {
	Min          float64   `json:"min"`
	Q1           float64   `json:"q1"`
	Median       float64   `json:"median"`
	Q3           float64   `json:"q3"`
	Max          float64   `json:"max"`
	LowerWhisker float64   `json:"lower_whisker"`
	UpperWhisker float64   `json:"upper_whisker"`
	Outliers     []float64 `json:"outliers"`
}

// Hypothesis returns the hypothesis with the given key
func (d *Dashboard) Hypothesis(key string) (Hypothesis, bool) {
	for _, h := range d.Hypotheses {
		if h.Key == key {
			return h, true
		}
	}
	return Hypothesis{}, false
}
