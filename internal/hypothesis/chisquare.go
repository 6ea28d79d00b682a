package hypothesis

import (
	"fmt"
	"math"

	"absentee/internal/errors"
)

// ContingencyTable is a 2x2 table of counts. Row 0 is the "yes" side of the row
// predicate, column 0 the "yes" side of the column predicate.
type ContingencyTable [2][2]int

// RowTotals returns the two row sums
func (t ContingencyTable) RowTotals() [2]int {
	return [2]int{t[0][0] + t[0][1], t[1][0] + t[1][1]}
}

// ColTotals returns the two column sums
func (t ContingencyTable) ColTotals() [2]int {
	return [2]int{t[0][0] + t[1][0], t[0][1] + t[1][1]}
}

// Total returns the grand total
func (t ContingencyTable) Total() int {
	rows := t.RowTotals()
	return rows[0] + rows[1]
}

func (t ContingencyTable) String() string {
	return fmt.Sprintf("[[%d %d] [%d %d]]", t[0][0], t[0][1], t[1][0], t[1][1])
}

// ChiSquareResult holds the statistics of a chi-square test of independence
type ChiSquareResult struct {
	ChiSquare float64
	DF        float64
	PValue    float64
	Expected  [2][2]float64
}

// ChiSquareYates runs a chi-square test of independence on a 2x2 table with
// Yates' continuity correction. A zero row or column total is reported as UndefinedTest.
func ChiSquareYates(table ContingencyTable) (ChiSquareResult, error) {
	rows, cols := table.RowTotals(), table.ColTotals()
	total := float64(table.Total())
	for i := 0; i < 2; i++ {
		if rows[i] == 0 {
			return ChiSquareResult{}, errors.UndefinedTest(fmt.Sprintf("contingency table %s has an empty row", table))
		}
		if cols[i] == 0 {
			return ChiSquareResult{}, errors.UndefinedTest(fmt.Sprintf("contingency table %s has an empty column", table))
		}
	}

	result := ChiSquareResult{DF: 1}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			expected := float64(rows[i]) * float64(cols[j]) / total
			result.Expected[i][j] = expected

			// Each |O-E| shrinks by 0.5 but never past zero
			deviation := math.Max(math.Abs(float64(table[i][j])-expected)-0.5, 0)
			result.ChiSquare += deviation * deviation / expected
		}
	}

	result.PValue = ChiSquarePValue(result.ChiSquare, result.DF)
	return result, nil
}
