package calc

import (
	"fmt"

	"github.com/angas/gridfees-go/tariff"
)

type Scenario struct {
	Name    string  `json:"name"`
	Request Request `json:"request"`
}

// ScenarioName is the label used for a scenario saved without a name.
func ScenarioName(req Request) string {
	req = req.Normalized()
	name := fmt.Sprintf("%s - %s", req.Operator, req.Voltage)
	if req.Region != "" {
		name += " - " + req.Region
	}
	return name
}

type ScenarioResult struct {
	Name   string         `json:"name"`
	Result *Result        `json:"result,omitempty"`
	Error  *ErrorResponse `json:"error,omitempty"`
}

type Comparison struct {
	Scenarios     []ScenarioResult `json:"scenarios"`
	Cheapest      string           `json:"cheapest,omitempty"`
	MostExpensive string           `json:"most_expensive,omitempty"`
	// Savings in €/year of the cheapest over the most expensive scenario.
	Savings float64 `json:"savings"`
}

// Compare calculates every scenario on its own. A failing scenario does not
// affect the others. Cheapest and most expensive are only reported when at
// least two scenarios succeed.
func Compare(scenarios []Scenario, ds *tariff.Dataset) Comparison {
	cmp := Comparison{Scenarios: make([]ScenarioResult, 0, len(scenarios))}

	var cheapest, expensive *ScenarioResult
	succeeded := 0
	for _, s := range scenarios {
		name := s.Name
		if name == "" {
			name = ScenarioName(s.Request)
		}

		res, err := Calculate(s.Request, ds)
		if err != nil {
			body := ErrorBody(err)
			cmp.Scenarios = append(cmp.Scenarios, ScenarioResult{Name: name, Error: &body})
			continue
		}
		cmp.Scenarios = append(cmp.Scenarios, ScenarioResult{Name: name, Result: &res})
		succeeded++
	}

	for i := range cmp.Scenarios {
		sr := &cmp.Scenarios[i]
		if sr.Result == nil {
			continue
		}
		if cheapest == nil || sr.Result.Total < cheapest.Result.Total {
			cheapest = sr
		}
		if expensive == nil || sr.Result.Total > expensive.Result.Total {
			expensive = sr
		}
	}

	if succeeded >= 2 {
		cmp.Cheapest = cheapest.Name
		cmp.MostExpensive = expensive.Name
		cmp.Savings = (expensive.Result.Total - cheapest.Result.Total) * 1000
	}

	return cmp
}
