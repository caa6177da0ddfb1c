package forecaster

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/aouyang1/go-ensemble-forecaster/seasonality"
	"github.com/aouyang1/go-ensemble-forecaster/util"
)

// Interval is the range around a forecast point prediction
type Interval struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Prediction is the forecast of a single future quarter
type Prediction struct {
	Period      string   `json:"period"`
	Predicted   float64  `json:"predicted"`
	Confidence  Interval `json:"confidence"`
	Probability float64  `json:"probability"`
}

// TrainingData describes the data the forecast models were trained on
type TrainingData struct {
	Samples      int      `json:"samples"`
	Periods      int      `json:"periods"`
	Features     int      `json:"features"`
	FeatureNames []string `json:"feature_names"`
}

type Metadata struct {
	GeneratedAt      time.Time                  `json:"generated_at"`
	LastPeriod       string                     `json:"last_period"`
	PeriodsAhead     int                        `json:"periods_ahead"`
	ModelIDs         []string                   `json:"model_ids"`
	HasSeasonality   bool                       `json:"has_seasonality"`
	SeasonalStrength float64                    `json:"seasonal_strength"`
	SeasonalPattern  []seasonality.PatternEntry `json:"seasonal_pattern,omitempty"`
}

// Results is the output of a forecast
type Results struct {
	Predictions   []Prediction `json:"predictions"`
	ModelAccuracy int          `json:"model_accuracy"`
	ModelType     string       `json:"model_type"`
	TrainingData  TrainingData `json:"training_data"`
	Metadata      Metadata     `json:"metadata"`
}

// TablePrint writes a human readable summary of the forecast
func (r *Results) TablePrint(w io.Writer, prefix, indent string, indentGrowth int) error {
	if r == nil {
		return nil
	}
	fmt.Fprintf(w, "%s%sForecast:\n", prefix, util.IndentExpand(indent, indentGrowth))
	fmt.Fprintf(w, "%s%sModel: %s\n", prefix, util.IndentExpand(indent, indentGrowth+1), r.ModelType)
	fmt.Fprintf(w, "%s%sModel Accuracy: %d%%\n", prefix, util.IndentExpand(indent, indentGrowth+1), r.ModelAccuracy)
	fmt.Fprintf(w, "%s%sTraining Data: %d samples, %d periods, %d features\n",
		prefix, util.IndentExpand(indent, indentGrowth+1),
		r.TrainingData.Samples, r.TrainingData.Periods, r.TrainingData.Features,
	)
	fmt.Fprintf(w, "%s%sLast Period: %s\n", prefix, util.IndentExpand(indent, indentGrowth+1), r.Metadata.LastPeriod)
	fmt.Fprintf(w, "%s%sSeasonality: %t (strength %.3f)\n",
		prefix, util.IndentExpand(indent, indentGrowth+1),
		r.Metadata.HasSeasonality, r.Metadata.SeasonalStrength,
	)

	noPred := " None"
	if len(r.Predictions) > 0 {
		noPred = ""
	}
	fmt.Fprintf(w, "%s%sPredictions:%s\n", prefix, util.IndentExpand(indent, indentGrowth+1), noPred)
	if len(r.Predictions) == 0 {
		return nil
	}

	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tbl, "%s%sPeriod\tPredicted\tLow\tHigh\tProbability\t\n", prefix, util.IndentExpand(indent, indentGrowth+2))
	for _, p := range r.Predictions {
		fmt.Fprintf(tbl, "%s%s%s\t%.2f\t%.2f\t%.2f\t%.3f\t\n",
			prefix, util.IndentExpand(indent, indentGrowth+2),
			p.Period, p.Predicted, p.Confidence.Low, p.Confidence.High, p.Probability,
		)
	}
	return tbl.Flush()
}
