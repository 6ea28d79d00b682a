// Package attendance holds the employee attendance data model and the segment
// predicates shared by the hypothesis engine and the charts.
package attendance

import "fmt"

// Sex is the categorical sex label exactly as it appears in the source file
type Sex string

const (
	SexMale   Sex = "М"
	SexFemale Sex = "Ж"
)

// Column names expected in the header row
const (
	ColumnSex         = "Sex"
	ColumnAge         = "Age"
	ColumnNumSickDays = "Num_sick_days"
)

// RequiredColumns lists the headers a file must carry to be loaded
var RequiredColumns = []string{ColumnSex, ColumnAge, ColumnNumSickDays}

// Record is one employee row
type Record struct {
	Sex         Sex `json:"sex"`
	Age         int `json:"age"`
	NumSickDays int `json:"num_sick_days"`
}

// Range is an inclusive integer interval observed in a column
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains reports whether v lies within the range
func (r Range) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d]", r.Min, r.Max)
}

// Dataset is an immutable, ordered collection of records loaded from one file.
// Raw keeps every source cell (including extra columns) for the table echo.
type Dataset struct {
	Filename string
	Headers  []string
	Raw      [][]string

	records       []Record
	ageRange      Range
	sickDaysRange Range
}

// NewDataset builds a dataset over records. The slice is copied; callers keep ownership of theirs.
func NewDataset(filename string, headers []string, raw [][]string, records []Record) *Dataset {
	ds := &Dataset{
		Filename: filename,
		Headers:  headers,
		Raw:      raw,
		records:  append([]Record(nil), records...),
	}
	for i, r := range ds.records {
		if i == 0 {
			ds.ageRange = Range{Min: r.Age, Max: r.Age}
			ds.sickDaysRange = Range{Min: r.NumSickDays, Max: r.NumSickDays}
			continue
		}
		ds.ageRange.Min = min(ds.ageRange.Min, r.Age)
		ds.ageRange.Max = max(ds.ageRange.Max, r.Age)
		ds.sickDaysRange.Min = min(ds.sickDaysRange.Min, r.NumSickDays)
		ds.sickDaysRange.Max = max(ds.sickDaysRange.Max, r.NumSickDays)
	}
	return ds
}

// Len returns the number of records
func (d *Dataset) Len() int {
	return len(d.records)
}

// Records returns a copy of the records in file order
func (d *Dataset) Records() []Record {
	return append([]Record(nil), d.records...)
}

// AgeRange returns the observed min/max of the Age column
func (d *Dataset) AgeRange() Range {
	return d.ageRange
}

// SickDaysRange returns the observed min/max of the Num_sick_days column
func (d *Dataset) SickDaysRange() Range {
	return d.sickDaysRange
}

// SexCounts tallies rows per label, including labels outside the two admissible ones
func (d *Dataset) SexCounts() map[Sex]int {
	counts := make(map[Sex]int)
	for _, r := range d.records {
		counts[r.Sex]++
	}
	return counts
}

// Thresholds are the two user-chosen bounds of one dashboard pass
type Thresholds struct {
	AgeThreshold      int `json:"age_threshold" form:"age"`
	SickDaysThreshold int `json:"sick_days_threshold" form:"sick_days"`
}

// DefaultThresholds mirrors slider defaults: both start at the observed minimum
func (d *Dataset) DefaultThresholds() Thresholds {
	return Thresholds{
		AgeThreshold:      d.ageRange.Min,
		SickDaysThreshold: d.sickDaysRange.Min,
	}
}
