package ensemble

// ConfidenceLevel buckets the ensemble confidence
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// LevelOf returns high above 0.8, medium above 0.6 and low otherwise
func LevelOf(confidence float64) ConfidenceLevel {
	switch {
	case confidence > 0.8:
		return ConfidenceHigh
	case confidence > 0.6:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// Explanation is a descriptive block attached to every prediction. Only the confidence level
// depends on the prediction.
type Explanation struct {
	FeatureImportance []FeatureImportance `json:"feature_importance"`
	ConfidenceLevel   ConfidenceLevel     `json:"confidence_level"`
	Assumptions       []string            `json:"assumptions"`
	Limitations       []string            `json:"limitations"`
}

// NewExplanation returns the fixed explanation with the bucket of confidence
func NewExplanation(confidence float64) *Explanation {
	return &Explanation{
		FeatureImportance: []FeatureImportance{
			{Feature: "lag1", Importance: 0.4},
			{Feature: "trend", Importance: 0.3},
			{Feature: "seasonal", Importance: 0.2},
			{Feature: "volatility", Importance: 0.1},
		},
		ConfidenceLevel: LevelOf(confidence),
		Assumptions: []string{
			"Historical quarterly patterns continue into the forecast horizon",
			"The most recent quarter is the strongest predictor of the next quarter",
		},
		Limitations: []string{
			"Confidence reflects in-sample fit, not a calibrated probability",
			"Errors compound across multi-step forecasts",
			"External shocks absent from the history cannot be anticipated",
		},
	}
}
