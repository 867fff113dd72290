package calc

import (
	"fmt"

	"github.com/angas/gridfees-go/tariff"
)

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

type Insight struct {
	Severity Severity `json:"type"`
	Title    string   `json:"title"`
	Message  string   `json:"message"`
}

const (
	highCostPerMWh      = 50.0
	peakShareThreshold  = 0.3
	injectionRatioLimit = 0.8
)

// Insights derives advice from a successful calculation.
func Insights(req Request, res Result) []Insight {
	var insights []Insight

	if req.IsStorage && res.Total > 0 {
		insights = append(insights, Insight{
			Severity: SeveritySuccess,
			Title:    "BESS Exemptions Active",
			Message:  "Storage grid fee exemptions of the operator are applied to this calculation.",
		})
	}

	if req.OfftakeEnergy > 0 {
		costPerMWh := res.Total * 1000 / req.OfftakeEnergy
		if costPerMWh > highCostPerMWh {
			insights = append(insights, Insight{
				Severity: SeverityWarning,
				Title:    "High Cost Per MWh",
				Message:  fmt.Sprintf("Your grid fees are €%.2f/MWh. Consider optimizing peak demand to reduce costs.", costPerMWh),
			})
		}
	}

	peakCosts := 0.0
	for ft, li := range res.Breakdown {
		if ft.IsPeak() {
			peakCosts += li.Total
		}
	}
	if res.Total > 0 && peakCosts > res.Total*peakShareThreshold {
		insights = append(insights, Insight{
			Severity: SeverityInfo,
			Title:    fmt.Sprintf("Peak Demand Represents %.0f%% of Costs", peakCosts/res.Total*100),
			Message:  "Reducing peak demand could significantly lower your grid fees. Consider load shifting or demand response strategies.",
		})
	}

	if req.OfftakeEnergy > 0 && req.InjectionEnergy > req.OfftakeEnergy*injectionRatioLimit {
		insights = append(insights, Insight{
			Severity: SeverityInfo,
			Title:    "High Injection Ratio",
			Message:  fmt.Sprintf("Your injection is %.0f%% of offtake. Make sure you are benefiting from available exemptions.", req.InjectionEnergy/req.OfftakeEnergy*100),
		})
	}

	if ft, li, ok := largest(res); ok && res.Total > 0 {
		insights = append(insights, Insight{
			Severity: SeverityInfo,
			Title:    fmt.Sprintf("%s is Your Largest Cost (%.0f%%)", ft, li.Total/res.Total*100),
			Message:  fmt.Sprintf("This component costs €%.2f/year.", li.Total*1000),
		})
	}

	return insights
}

// largest returns the most expensive line item, the first in fee type
// order on ties.
func largest(res Result) (tariff.FeeType, LineItem, bool) {
	var (
		best  Item
		found bool
	)
	for _, it := range res.Items() {
		if !found || it.Total > best.Total {
			best, found = it, true
		}
	}
	return best.FeeType, best.LineItem, found
}
