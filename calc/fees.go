package calc

import (
	"fmt"

	"github.com/angas/gridfees-go/convert"
	"github.com/angas/gridfees-go/slice"
	"github.com/angas/gridfees-go/tariff"
)

type LineItem struct {
	Rate       float64 `json:"rate"`
	Quantity   float64 `json:"quantity"`
	Multiplier float64 `json:"multiplier"`
	Total      float64 `json:"total"`
}

// Configuration echoes the lookup keys of the request, not of the matched row.
type Configuration struct {
	Operator       string `json:"dso_tso"`
	Region         string `json:"region"`
	Voltage        string `json:"voltage"`
	ConnectionType string `json:"connection_type"`
	IsStorage      bool   `json:"is_bess"`
}

type Result struct {
	Success        bool                        `json:"success"`
	TotalInjection float64                     `json:"total_injection"`
	TotalOfftake   float64                     `json:"total_offtake"`
	Total          float64                     `json:"total"`
	Breakdown      map[tariff.FeeType]LineItem `json:"breakdown"`
	Configuration  Configuration               `json:"configuration"`
}

// Item is a line item with its fee type, for ordered listings.
type Item struct {
	FeeType tariff.FeeType
	LineItem
}

// Items returns the breakdown in fee type order.
func (r Result) Items() []Item {
	items := make([]Item, 0, len(r.Breakdown))
	for _, ft := range tariff.FeeTypes {
		if li, ok := r.Breakdown[ft]; ok {
			items = append(items, Item{FeeType: ft, LineItem: li})
		}
	}
	return items
}

// Calculate selects the tariff row for the request and computes the
// yearly fee breakdown. Errors are always *Error.
func Calculate(req Request, ds *tariff.Dataset) (Result, error) {
	if ds == nil {
		return Result{}, &Error{Kind: KindMalformedDataset, Message: "Malformed tariff dataset", Details: "no dataset loaded"}
	}

	req = req.Normalized()

	row, ok := slice.Find(ds.Fees, func(r tariff.Row) bool { return matches(r, req) })
	if !ok {
		return Result{}, &Error{
			Kind:    KindNoMatchingTariff,
			Message: "No matching fee configuration found",
			Details: fmt.Sprintf("DSO/TSO: %s, Region: %s, Voltage: %s, Connection: %s",
				req.Operator, req.Region, req.Voltage, req.ConnectionType),
		}
	}

	var exemptions map[tariff.FeeType]float64
	if req.IsStorage {
		exemptions = ds.ExemptionsFor(req.Operator)
	}

	res := Result{
		Success:   true,
		Breakdown: make(map[tariff.FeeType]LineItem),
		Configuration: Configuration{
			Operator:       req.Operator,
			Region:         req.Region,
			Voltage:        req.Voltage,
			ConnectionType: req.ConnectionType,
			IsStorage:      req.IsStorage,
		},
	}

	var totalInjection, totalOfftake float64
	for _, ft := range tariff.FeeTypes {
		multiplier := 1.0
		if m, ok := exemptions[ft]; ok {
			multiplier = m
		}

		rate := row.Rate(ft)
		qty := quantity(ft, req)
		total := rate * qty * multiplier
		if !(total > 0) {
			continue
		}

		res.Breakdown[ft] = LineItem{Rate: rate, Quantity: qty, Multiplier: multiplier, Total: total}
		if ft.IsInjection() {
			totalInjection += total
		} else {
			totalOfftake += total
		}
	}

	res.TotalInjection = convert.TwoDecimals(totalInjection)
	res.TotalOfftake = convert.TwoDecimals(totalOfftake)
	res.Total = convert.TwoDecimals(totalInjection + totalOfftake)

	return res, nil
}

func matches(row tariff.Row, req Request) bool {
	if row.Operator != req.Operator {
		return false
	}
	// A row without a region never matches, not even an empty request region.
	if req.Operator == tariff.RegionalOperator && (!row.Region.IsValid() || row.Region.Value() != req.Region) {
		return false
	}
	if row.VoltageLevel != req.Voltage {
		return false
	}
	if row.ConstrainsConnectionType() && row.ConnectionType.Value() != req.ConnectionType {
		return false
	}
	return true
}

// quantity is the billed amount a rate applies to.
func quantity(ft tariff.FeeType, req Request) float64 {
	switch ft {
	case tariff.InjectionFixed, tariff.OfftakeFixed, tariff.InjectionOther:
		return 1
	case tariff.InjectionContracted, tariff.OfftakeContracted:
		return req.ContractedCapacity
	case tariff.InjectionPeakMonthly, tariff.OfftakePeakMonthly:
		return req.PeakMonthly * 12
	case tariff.InjectionPeakYearly, tariff.OfftakePeakYearly:
		return req.PeakYearly
	case tariff.InjectionVolumetric:
		return req.InjectionEnergy
	case tariff.OfftakeVolumetric:
		return req.OfftakeEnergy
	case tariff.OfftakeOther:
		if req.OfftakeEnergy > 0 {
			return req.OfftakeEnergy
		}
		return 1
	}
	return 0
}
