package hypothesis

import (
	"fmt"

	"absentee/domain/attendance"
	"absentee/domain/verdict"
	"absentee/internal/errors"
)

// Verdict texts
const (
	SexSignificantText    = "Men exceed the threshold significantly more often than women."
	SexNotSignificantText = "No significant difference between men and women."
	SexUndefinedText      = "The sex comparison is undefined for this data: %s."

	ageSignificantFormat    = "Employees older than %d exceed the threshold significantly more often than younger colleagues."
	ageNotSignificantFormat = "No significant difference between employees older than %d and younger colleagues."
	ageUndefinedFormat      = "The age comparison at %d is undefined for this data: %s."
)

// Engine runs the two fixed attendance hypotheses. It holds no state between calls.
type Engine struct{}

// NewEngine creates a new hypothesis engine
func NewEngine() *Engine {
	return &Engine{}
}

// ValidateThresholds rejects thresholds outside the observed column ranges
func ValidateThresholds(ds *attendance.Dataset, th attendance.Thresholds) error {
	if err := ValidateAgeThreshold(ds, th.AgeThreshold); err != nil {
		return err
	}
	return ValidateSickDaysThreshold(ds, th.SickDaysThreshold)
}

// ValidateAgeThreshold rejects an age threshold outside [min(Age), max(Age)]
func ValidateAgeThreshold(ds *attendance.Dataset, ageThreshold int) error {
	if r := ds.AgeRange(); ds.Len() == 0 || !r.Contains(ageThreshold) {
		return errors.RangeError(fmt.Sprintf("age threshold %d outside observed range %s", ageThreshold, r))
	}
	return nil
}

// ValidateSickDaysThreshold rejects a sick-days threshold outside [min(Num_sick_days), max(Num_sick_days)]
func ValidateSickDaysThreshold(ds *attendance.Dataset, sickDaysThreshold int) error {
	if r := ds.SickDaysRange(); ds.Len() == 0 || !r.Contains(sickDaysThreshold) {
		return errors.RangeError(fmt.Sprintf("sick-days threshold %d outside observed range %s", sickDaysThreshold, r))
	}
	return nil
}

// CompareBySex tests whether men and women exceed the sick-days threshold at different rates.
// A degenerate input yields an undefined verdict together with an UndefinedTest error.
func (e *Engine) CompareBySex(ds *attendance.Dataset, sickDaysThreshold int) (verdict.Verdict, error) {
	if err := ValidateSickDaysThreshold(ds, sickDaysThreshold); err != nil {
		return verdict.Verdict{}, err
	}

	result, err := e.TestBySex(ds, sickDaysThreshold)
	if err != nil {
		if errors.GetCode(err) == errors.CodeUndefinedTest {
			return verdict.Undefined(fmt.Sprintf(SexUndefinedText, errorMessage(err))), err
		}
		return verdict.Verdict{}, err
	}

	return verdict.FromPValue(result.PValue, SexSignificantText, SexNotSignificantText), nil
}

// TestBySex runs the t-test on the male and female exceedance indicators
func (e *Engine) TestBySex(ds *attendance.Dataset, sickDaysThreshold int) (TTestResult, error) {
	male, female := attendance.SegmentBySex(ds)
	if male.Len() == 0 || female.Len() == 0 {
		return TTestResult{}, errors.UndefinedTest(fmt.Sprintf("need both sexes, got %d male and %d female rows", male.Len(), female.Len()))
	}

	return PooledTTest(
		attendance.ExceedanceIndicators(male, sickDaysThreshold),
		attendance.ExceedanceIndicators(female, sickDaysThreshold),
	)
}

// CompareByAge tests whether employees older than ageThreshold exceed the sick-days
// threshold at a different rate than the rest.
func (e *Engine) CompareByAge(ds *attendance.Dataset, ageThreshold, sickDaysThreshold int) (verdict.Verdict, error) {
	if err := ValidateThresholds(ds, attendance.Thresholds{AgeThreshold: ageThreshold, SickDaysThreshold: sickDaysThreshold}); err != nil {
		return verdict.Verdict{}, err
	}

	result, err := e.TestByAge(ds, ageThreshold, sickDaysThreshold)
	if err != nil {
		if errors.GetCode(err) == errors.CodeUndefinedTest {
			return verdict.Undefined(fmt.Sprintf(ageUndefinedFormat, ageThreshold, errorMessage(err))), err
		}
		return verdict.Verdict{}, err
	}

	return verdict.FromPValue(
		result.PValue,
		fmt.Sprintf(ageSignificantFormat, ageThreshold),
		fmt.Sprintf(ageNotSignificantFormat, ageThreshold),
	), nil
}

// TestByAge runs the chi-square test on the age/exceedance contingency table
func (e *Engine) TestByAge(ds *attendance.Dataset, ageThreshold, sickDaysThreshold int) (ChiSquareResult, error) {
	return ChiSquareYates(BuildAgeContingency(ds, ageThreshold, sickDaysThreshold))
}

// BuildAgeContingency counts rows by (older than ageThreshold, exceeds sickDaysThreshold).
// Row 0 is older, row 1 younger-or-equal; column 0 exceeds, column 1 does not.
func BuildAgeContingency(ds *attendance.Dataset, ageThreshold, sickDaysThreshold int) ContingencyTable {
	var table ContingencyTable
	for _, r := range ds.Records() {
		row, col := 1, 1
		if attendance.IsOlder(r, ageThreshold) {
			row = 0
		}
		if attendance.ExceedsSickDays(r, sickDaysThreshold) {
			col = 0
		}
		table[row][col]++
	}
	return table
}

func errorMessage(err error) string {
	if appErr, ok := err.(*errors.AppError); ok {
		return appErr.Message
	}
	return err.Error()
}
