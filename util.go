package forecaster

import (
	"errors"
	"fmt"
	"io"

	"github.com/aouyang1/go-ensemble-forecaster/period"
	"github.com/aouyang1/go-ensemble-forecaster/timedataset"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

var ErrNoResults = errors.New("no forecast results")

// missing is rendered by echarts as a gap in the line
const missing = "-"

// LineForecast generates an echart line chart of the observed series followed by the
// forecast and its interval
func LineForecast(td *timedataset.TimeDataset, res *Results) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: "Quarterly Forecast",
			},
		),
	)

	n := td.Len() + len(res.Predictions)
	xAxis := make([]string, 0, n)
	lineDataActual := make([]opts.LineData, 0, n)
	lineDataForecast := make([]opts.LineData, 0, n)
	lineDataUpper := make([]opts.LineData, 0, n)
	lineDataLower := make([]opts.LineData, 0, n)

	for i := 0; i < td.Len(); i++ {
		xAxis = append(xAxis, td.Periods[i].String())
		lineDataActual = append(lineDataActual, opts.LineData{Value: td.Y[i]})

		// connect the forecast to the final observation
		var fc interface{} = missing
		if i == td.Len()-1 {
			fc = td.Y[i]
		}
		lineDataForecast = append(lineDataForecast, opts.LineData{Value: fc})
		lineDataUpper = append(lineDataUpper, opts.LineData{Value: missing})
		lineDataLower = append(lineDataLower, opts.LineData{Value: missing})
	}
	for _, p := range res.Predictions {
		xAxis = append(xAxis, p.Period)
		lineDataActual = append(lineDataActual, opts.LineData{Value: missing})
		lineDataForecast = append(lineDataForecast, opts.LineData{Value: p.Predicted})
		lineDataUpper = append(lineDataUpper, opts.LineData{Value: p.Confidence.High})
		lineDataLower = append(lineDataLower, opts.LineData{Value: p.Confidence.Low})
	}

	line.SetXAxis(xAxis).
		AddSeries("Actual", lineDataActual).
		AddSeries("Forecast", lineDataForecast).
		AddSeries("Upper", lineDataUpper).
		AddSeries("Lower", lineDataLower)
	return line
}

// LineComponents generates an echart multi-line chart of the seasonal decomposition
func LineComponents(td *timedataset.TimeDataset, trend, seasonal, residual []float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: "Seasonal Decomposition",
			},
		),
	)

	xAxis := make([]string, 0, td.Len())
	for _, p := range td.Periods {
		xAxis = append(xAxis, p.String())
	}

	toLineData := func(y []float64) []opts.LineData {
		data := make([]opts.LineData, 0, len(y))
		for _, v := range y {
			data = append(data, opts.LineData{Value: v})
		}
		return data
	}

	line.SetXAxis(xAxis).
		AddSeries("Trend", toLineData(trend)).
		AddSeries("Seasonal", toLineData(seasonal)).
		AddSeries("Residual", toLineData(residual))
	return line
}

// PlotForecast uses the Apache Echarts library to write an html page showing the observations,
// forecast and seasonal decomposition
func (f *Forecaster) PlotForecast(w io.Writer, obs []timedataset.Observation, res *Results) error {
	if res == nil {
		return ErrNoResults
	}
	td, err := timedataset.NewQuarterlyDataset(obs)
	if err != nil {
		return fmt.Errorf("unable to create dataset, %w", err)
	}
	if len(res.Predictions) > 0 {
		first, err := period.Parse(res.Predictions[0].Period)
		if err != nil {
			return fmt.Errorf("unable to parse forecast period, %w", err)
		}
		if !td.LastPeriod().Before(first) {
			return fmt.Errorf("forecast starts at %s before last observation %s, %w",
				first, td.LastPeriod(), period.ErrInvalidPeriod)
		}
	}

	seas, err := f.decomposer.Decompose(td)
	if err != nil {
		return fmt.Errorf("unable to decompose seasonality, %w", err)
	}

	page := components.NewPage()
	page.AddCharts(
		LineForecast(td, res),
		LineComponents(td, seas.TrendComponent, seas.SeasonalComponent, seas.ResidualComponent),
	)
	return page.Render(w)
}
