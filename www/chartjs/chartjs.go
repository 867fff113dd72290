package chartjs

import (
	"math"
)

const ColorYellow = "#ffc107d4"
const ColorRed = "#f44336d4"

// Palette colours the slices of a doughnut, one per fee type.
var Palette = []string{
	"#ffc107d4", "#f44336d4", "#2196f3d4", "#4caf50d4",
	"#9c27b0d4", "#ff9800d4", "#00bcd4d4", "#795548d4",
	"#607d8bd4", "#e91e63d4", "#8bc34ad4", "#3f51b5d4",
}

// NewLineChart is a two axis line chart, the first dataset on the left
// axis and the second on the right.
func NewLineChart(title string, labels []string) Chart {
	n := len(labels)
	chart := Chart{
		Type: "line",
		Data: ChartData{
			Labels: labels,
			Datasets: []ChartDataset{
				{
					Data:        make([]*float64, n),
					BorderWidth: 1,
					Tension:     0.4,
					Fill:        true,
					BorderColor: ColorYellow,
					YAxisID:     "YAxis1",
				},
				{
					Data:        make([]*float64, n),
					BorderWidth: 1,
					Tension:     0.4,
					Fill:        true,
					BorderColor: ColorRed,
					YAxisID:     "YAxis2",
				},
			},
		},
		Options: ChartOptions{
			Responsive: true,
			Plugins: ChartPlugins{
				Legend: ChartLegend{Display: false},
				Title:  ChartTitle{Display: false},
			},
			Scales: map[string]ChartScale{
				"YAxis1": {
					Type:     "linear",
					Display:  true,
					Position: "left",
					Title:    ChartScaleTitle{Display: true, Text: "", Color: ColorYellow}},
				"YAxis2": {
					Type:     "linear",
					Display:  true,
					Position: "right",
					Title:    ChartScaleTitle{Display: true, Text: "", Color: ColorRed}},
			},
		},
	}

	if title != "" {
		chart.Options.Plugins.Title = ChartTitle{Display: true, Text: title}
	}

	return chart
}

// NewDoughnut has one slice per label, values rounded to two decimals.
func NewDoughnut(title string, labels []string, values []float64) Chart {
	data := make([]*float64, len(values))
	colors := make([]string, len(values))
	for i, v := range values {
		data[i] = FixedFloat64(v, 2)
		colors[i] = Palette[i%len(Palette)]
	}

	chart := Chart{
		Type: "doughnut",
		Data: ChartData{
			Labels: labels,
			Datasets: []ChartDataset{
				{
					Data:            data,
					BorderWidth:     1,
					BackgroundColor: colors,
				},
			},
		},
		Options: ChartOptions{
			Responsive: true,
			Plugins: ChartPlugins{
				Legend: ChartLegend{Display: true},
				Title:  ChartTitle{Display: false},
			},
		},
	}

	if title != "" {
		chart.Options.Plugins.Title = ChartTitle{Display: true, Text: title}
	}

	return chart
}

func (cs ChartScale) WithTitle(title string) ChartScale {
	cs.Title.Text = title
	return cs
}

func (cs ChartScale) WithMinAndMax(min, max float64) ChartScale {
	cs.Min = &min
	cs.Max = &max
	return cs
}

func FixedFloat64(num float64, precision int) *float64 {
	p := math.Pow(10, float64(precision))
	rounded := math.Round(num * p)
	result := rounded / p
	return &result
}
