package verdict

// VerdictStatus represents the outcome class of a hypothesis test
type VerdictStatus string

const (
	StatusSignificant    VerdictStatus = "significant"
	StatusNotSignificant VerdictStatus = "not_significant"
	StatusUndefined      VerdictStatus = "undefined"
)

// Alpha is the fixed significance level of both hypotheses
const Alpha = 0.05

// Verdict is the user-facing conclusion of one hypothesis test
type Verdict struct {
	Status VerdictStatus `json:"status"`
	Text   string        `json:"text"`
}

// IsSignificant reports whether the test rejected the null hypothesis
func (v Verdict) IsSignificant() bool {
	return v.Status == StatusSignificant
}

// IsUndefined reports whether the test statistic could not be computed
func (v Verdict) IsUndefined() bool {
	return v.Status == StatusUndefined
}

// FromPValue classifies a p-value against Alpha and picks the matching text
func FromPValue(pValue float64, significantText, notSignificantText string) Verdict {
	if pValue < Alpha {
		return Verdict{Status: StatusSignificant, Text: significantText}
	}
	return Verdict{Status: StatusNotSignificant, Text: notSignificantText}
}

// Undefined builds a verdict for a degenerate test
func Undefined(text string) Verdict {
	return Verdict{Status: StatusUndefined, Text: text}
}
