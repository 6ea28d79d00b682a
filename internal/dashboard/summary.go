package dashboard

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// whiskerReach is the Tukey fence multiplier
const whiskerReach = 1.5

// Summarize computes the box summary of values, or nil when values is empty
func Summarize(values []float64) (*BoxSummary, error) {
	if len(values) == 0 {
		return nil, nil
	}

	data := stats.Float64Data(values)
	lo, err := data.Min()
	if err != nil {
		return nil, err
	}
	hi, err := data.Max()
	if err != nil {
		return nil, err
	}
	median, err := data.Median()
	if err != nil {
		return nil, err
	}

	box := &BoxSummary{Min: lo, Max: hi, Median: median, Q1: median, Q3: median}
	// Quartile needs a non-empty lower half
	if len(values) > 1 {
		q, err := stats.Quartile(data)
		if err != nil {
			return nil, err
		}
		box.Q1, box.Median, box.Q3 = q.Q1, q.Q2, q.Q3
	}

	iqr := box.Q3 - box.Q1
	lowFence := box.Q1 - whiskerReach*iqr
	highFence := box.Q3 + whiskerReach*iqr

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	box.LowerWhisker, box.UpperWhisker = box.Q1, box.Q3
	for _, v := range sorted {
		if v >= lowFence {
			box.LowerWhisker = math.Min(v, box.Q1)
			break
		}
	}
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i] <= highFence {
			box.UpperWhisker = math.Max(sorted[i], box.Q3)
			break
		}
	}
	box.Outliers = []float64{}
	for _, v := range sorted {
		if v < lowFence || v > highFence {
			box.Outliers = append(box.Outliers, v)
		}
	}
	return box, nil
}

// BinEdges returns bins+1 equal-width edges spanning every value in groups.
// A single distinct value is widened to [v-0.5, v+0.5]. Nil when groups hold no values.
func BinEdges(bins int, groups ...[]float64) []float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, g := range groups {
		for _, v := range g {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if bins < 1 || math.IsInf(lo, 1) {
		return nil
	}
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}

	edges := make([]float64, bins+1)
	floats.Span(edges, lo, hi)
	return edges
}

// Frequencies counts values per bin. The last bin is closed on the right.
func Frequencies(values, edges []float64) []int {
	if len(edges) < 2 {
		return nil
	}
	counts := make([]int, len(edges)-1)
	if len(values) == 0 {
		return counts
	}

	// stat.Histogram wants sorted input and a right-open last divider
	dividers := append([]float64(nil), edges...)
	last := len(dividers) - 1
	dividers[last] = math.Nextafter(dividers[last], math.Inf(1))

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	for i, c := range stat.Histogram(nil, dividers, sorted, nil) {
		counts[i] = int(c)
	}
	return counts
}
