package www

import (
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/angas/gridfees-go/calc"
	"github.com/angas/gridfees-go/export"
	"github.com/angas/gridfees-go/www/chartjs"
)

// NewChartHandler answers a calculation request with two charts: the fee
// breakdown in €/year and the cost sensitivity to the monthly peak.
func NewChartHandler(logger *slog.Logger, src DatasetSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost) {
			return
		}

		req, ok := decodeRequest(logger, w, r)
		if !ok {
			return
		}

		start := time.Now()
		ds := src.Dataset()
		res, err := calc.Calculate(req, ds)
		if err == nil {
			var points []calc.SensitivityPoint
			points, err = calc.PeakSensitivity(req, ds, nil)
			if err == nil {
				observe("chart", start, nil)
				writeJSON(logger, w, http.StatusOK, []chartjs.Chart{breakdownChart(res), sensitivityChart(points)})
				return
			}
		}
		observe("chart", start, err)
		writeCalcError(logger, w, err)
	}
}

func breakdownChart(res calc.Result) chartjs.Chart {
	items := res.Items()
	labels := make([]string, len(items))
	values := make([]float64, len(items))
	for i, it := range items {
		labels[i] = string(it.FeeType)
		values[i] = export.Euro(it.Total)
	}
	return chartjs.NewDoughnut("Fee Breakdown (€/year)", labels, values)
}

func sensitivityChart(points []calc.SensitivityPoint) chartjs.Chart {
	labels := make([]string, len(points))
	for i, p := range points {
		labels[i] = p.Label
	}

	chart := chartjs.NewLineChart("Peak Demand Sensitivity", labels)
	maxPeak := 0.0
	for i, p := range points {
		maxPeak = max(maxPeak, p.Peak)
		chart.Data.Datasets[0].Data[i] = chartjs.FixedFloat64(export.Euro(p.Total), 2)
		chart.Data.Datasets[1].Data[i] = chartjs.FixedFloat64(p.Peak, 2)
	}
	chart.Data.Datasets[0].Label = "Total Annual Cost (€/year)"
	chart.Data.Datasets[1].Label = "Monthly Peak (MW)"

	maxPeak = math.Ceil(maxPeak/2) * 2 // Round up to nearest even number
	chart.Options.Scales["YAxis1"] = chart.Options.Scales["YAxis1"].
		WithTitle("Total Annual Cost (€/year)")
	chart.Options.Scales["YAxis2"] = chart.Options.Scales["YAxis2"].
		WithTitle("Monthly Peak (MW)").
		WithMinAndMax(0, maxPeak)

	return chart
}
