package hypothesis

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// TTestPValue computes the two-tailed p-value of a t statistic with df degrees of freedom
func TTestPValue(tStatistic, degreesOfFreedom float64) float64 {
	if math.IsNaN(tStatistic) || degreesOfFreedom <= 0 {
		return math.NaN()
	}
	if math.IsInf(tStatistic, 0) {
		return 0
	}

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: degreesOfFreedom}
	return math.Min(1, 2*tDist.Survival(math.Abs(tStatistic)))
}

// ChiSquarePValue computes the upper-tail p-value of a chi-square statistic
func ChiSquarePValue(chiSquare, degreesOfFreedom float64) float64 {
	if math.IsNaN(chiSquare) || degreesOfFreedom <= 0 {
		return math.NaN()
	}
	if chiSquare <= 0 {
		return 1
	}

	chiDist := distuv.ChiSquared{K: degreesOfFreedom}
	return chiDist.Survival(chiSquare)
}
