// Package dashboard computes everything one dashboard view shows from a dataset
// and a pair of thresholds: the two verdicts, their statements and the chart data.
package dashboard

import (
	"fmt"

	"absentee/domain/attendance"
	"absentee/domain/verdict"
	"absentee/internal/errors"
	"absentee/internal/hypothesis"
)

// DefaultBins is used when Options.Bins is unset
const DefaultBins = 10

const (
	sexStatementFormat = "Men are off sick for more than %d working days a year significantly more often than women."
	ageStatementFormat = "Employees older than %d are off sick for more than %d working days a year significantly more often than younger colleagues."

	sexTitle = "Sick days of men and women"
	ageTitle = "Sick days of older and younger employees"
)

// Options tunes the chart data
type Options struct {
	Bins int
}

// Compute builds the dashboard for ds under th. Out-of-range thresholds fail with
// RANGE_ERROR; an undefined test is reported through its verdict instead.
func Compute(ds *attendance.Dataset, th attendance.Thresholds, opts Options) (*Dashboard, error) {
	if ds == nil {
		return nil, errors.NotFound("dataset")
	}
	if err := hypothesis.ValidateThresholds(ds, th); err != nil {
		return nil, err
	}
	if opts.Bins < 1 {
		opts.Bins = DefaultBins
	}

	engine := hypothesis.NewEngine()
	sexVerdict, err := tolerateUndefined(engine.CompareBySex(ds, th.SickDaysThreshold))
	if err != nil {
		return nil, errors.Wrap(err, "sex comparison failed")
	}
	ageVerdict, err := tolerateUndefined(engine.CompareByAge(ds, th.AgeThreshold, th.SickDaysThreshold))
	if err != nil {
		return nil, errors.Wrap(err, "age comparison failed")
	}

	male, female := attendance.SegmentBySex(ds)
	youngerOrEqual, older := attendance.SegmentByAge(ds, th.AgeThreshold)

	sexComparison, err := compare(sexTitle, "Sex", opts.Bins, th.SickDaysThreshold,
		labelled{male, "Men"},
		labelled{female, "Women"},
	)
	if err != nil {
		return nil, err
	}
	ageComparison, err := compare(ageTitle, "Age group", opts.Bins, th.SickDaysThreshold,
		labelled{older, fmt.Sprintf("Older than %d", th.AgeThreshold)},
		labelled{youngerOrEqual, fmt.Sprintf("%d or younger", th.AgeThreshold)},
	)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Filename:      ds.Filename,
		Rows:          ds.Len(),
		Thresholds:    th,
		AgeRange:      ds.AgeRange(),
		SickDaysRange: ds.SickDaysRange(),
		Hypotheses: []Hypothesis{
			{Key: HypothesisSex, Statement: SexStatement(th), Verdict: sexVerdict},
			{Key: HypothesisAge, Statement: AgeStatement(th), Verdict: ageVerdict},
		},
		SexComparison: sexComparison,
		AgeComparison: ageComparison,
	}, nil
}

// SexStatement phrases the sex hypothesis for the given thresholds
func SexStatement(th attendance.Thresholds) string {
	return fmt.Sprintf(sexStatementFormat, th.SickDaysThreshold)
}

// AgeStatement phrases the age hypothesis for the given thresholds
func AgeStatement(th attendance.Thresholds) string {
	return fmt.Sprintf(ageStatementFormat, th.AgeThreshold, th.SickDaysThreshold)
}

func tolerateUndefined(v verdict.Verdict, err error) (verdict.Verdict, error) {
	if err != nil && errors.GetCode(err) == errors.CodeUndefinedTest {
		return v, nil
	}
	return v, err
}

type labelled struct {
	segment attendance.Segment
	label   string
}

// compare filters both segments by the sick-days threshold and summarizes them on shared bins
func compare(title, groupLabel string, bins, sickDaysThreshold int, pair ...labelled) (Comparison, error) {
	values := make([][]float64, len(pair))
	for i, p := range pair {
		values[i] = attendance.ApplySickDaysFilter(p.segment, sickDaysThreshold).SickDays()
	}

	edges := BinEdges(bins, values...)
	cmp := Comparison{
		Title:      title,
		GroupLabel: groupLabel,
		BinEdges:   edges,
		Segments:   make([]SegmentSummary, len(pair)),
	}
	for i, p := range pair {
		box, err := Summarize(values[i])
		if err != nil {
			return Comparison{}, errors.Wrapf(err, "failed to summarize segment %s", p.segment.Name)
		}
		cmp.Segments[i] = SegmentSummary{
			Name:      p.segment.Name,
			Label:     p.label,
			Count:     len(values[i]),
			Values:    values[i],
			Box:       box,
			Frequency: Frequencies(values[i], edges),
		}
	}
	return cmp, nil
}
