package hypothesis

import (
	"math"

	"github.com/montanaflynn/stats"

	"absentee/internal/errors"
)

// TTestResult holds the pooled two-sample t-test statistics
type TTestResult struct {
	TStatistic float64
	DF         float64
	PValue     float64
	MeanX      float64
	MeanY      float64
}

// PooledTTest runs an independent two-sample Student t-test assuming equal variances.
// Pooled variance zero with different means gives an infinite statistic and p = 0;
// zero with equal means (0/0) is reported as UndefinedTest.
func PooledTTest(x, y []float64) (TTestResult, error) {
	if len(x) == 0 || len(y) == 0 {
		return TTestResult{}, errors.UndefinedTest("t-test needs two non-empty samples")
	}

	n1, n2 := float64(len(x)), float64(len(y))
	df := n1 + n2 - 2
	if df < 1 {
		return TTestResult{}, errors.UndefinedTest("t-test needs at least one degree of freedom")
	}

	meanX, ssX, err := meanAndSumSquares(x)
	if err != nil {
		return TTestResult{}, errors.Wrap(err, "failed to summarise first sample")
	}
	meanY, ssY, err := meanAndSumSquares(y)
	if err != nil {
		return TTestResult{}, errors.Wrap(err, "failed to summarise second sample")
	}

	pooledVar := (ssX + ssY) / df
	diff := meanX - meanY
	result := TTestResult{DF: df, MeanX: meanX, MeanY: meanY}

	if pooledVar == 0 {
		if diff == 0 {
			return result, errors.UndefinedTest("both samples are constant and equal")
		}
		result.TStatistic = math.Copysign(math.Inf(1), diff)
		result.PValue = 0
		return result, nil
	}

	result.TStatistic = diff / math.Sqrt(pooledVar*(1.0/n1+1.0/n2))
	result.PValue = TTestPValue(result.TStatistic, df)
	return result, nil
}

// meanAndSumSquares returns the mean and the sum of squared deviations from it
func meanAndSumSquares(data []float64) (mean, sumSquares float64, err error) {
	mean, err = stats.Mean(data)
	if err != nil {
		return 0, 0, err
	}
	if len(data) < 2 {
		return mean, 0, nil
	}

	variance, err := stats.PopulationVariance(data)
	if err != nil {
		return 0, 0, err
	}
	return mean, variance * float64(len(data)), nil
}
