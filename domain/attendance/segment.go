package attendance

// Segment is a named subset of a dataset selected by one or more predicates
type Segment struct {
	Name    string
	Records []Record
}

// Len returns the number of records in the segment
func (s Segment) Len() int {
	return len(s.Records)
}

// SickDays returns the Num_sick_days column of the segment as float64, ready for stats code
func (s Segment) SickDays() []float64 {
	values := make([]float64, len(s.Records))
	for i, r := range s.Records {
		values[i] = float64(r.NumSickDays)
	}
	return values
}

// ExceedsSickDays is the single "exceeds threshold" predicate used everywhere
func ExceedsSickDays(r Record, sickDaysThreshold int) bool {
	return r.NumSickDays > sickDaysThreshold
}

// IsOlder is the age split predicate: strictly greater than the threshold
func IsOlder(r Record, ageThreshold int) bool {
	return r.Age > ageThreshold
}

// Segment names
const (
	SegmentMale    = "male"
	SegmentFemale  = "female"
	SegmentYounger = "younger_or_equal"
	SegmentOlder   = "older"
)

// SegmentBySex partitions by exact label match. Rows with any other label land in neither segment.
func SegmentBySex(ds *Dataset) (male, female Segment) {
	male = Segment{Name: SegmentMale}
	female = Segment{Name: SegmentFemale}
	for _, r := range ds.records {
		switch r.Sex {
		case SexMale:
			male.Records = append(male.Records, r)
		case SexFemale:
			female.Records = append(female.Records, r)
		}
	}
	return male, female
}

// SegmentByAge splits into age <= threshold and age > threshold
func SegmentByAge(ds *Dataset, ageThreshold int) (youngerOrEqual, older Segment) {
	youngerOrEqual = Segment{Name: SegmentYounger}
	older = Segment{Name: SegmentOlder}
	for _, r := range ds.records {
		if IsOlder(r, ageThreshold) {
			older.Records = append(older.Records, r)
		} else {
			youngerOrEqual.Records = append(youngerOrEqual.Records, r)
		}
	}
	return youngerOrEqual, older
}

// ApplySickDaysFilter keeps rows with Num_sick_days strictly above the threshold
func ApplySickDaysFilter(seg Segment, sickDaysThreshold int) Segment {
	filtered := Segment{Name: seg.Name}
	for _, r := range seg.Records {
		if ExceedsSickDays(r, sickDaysThreshold) {
			filtered.Records = append(filtered.Records, r)
		}
	}
	return filtered
}

// ExceedanceIndicators maps each record to 1 if it exceeds the threshold, else 0
func ExceedanceIndicators(seg Segment, sickDaysThreshold int) []float64 {
	indicators := make([]float64, len(seg.Records))
	for i, r := range seg.Records {
		if ExceedsSickDays(r, sickDaysThreshold) {
			indicators[i] = 1
		}
	}
	return indicators
}
