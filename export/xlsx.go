package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/angas/gridfees-go/calc"
)

const (
	SummarySheet   = "summary"
	BreakdownSheet = "breakdown"
)

// XLSX renders a calculation as a workbook with a summary and a breakdown sheet.
func XLSX(req calc.Request, res calc.Result) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(BreakdownSheet); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}

	summary := [][]any{
		{"Grid Fee Calculation"},
		{},
		{"DSO/TSO", req.Operator},
		{"Region", orNA(req.Region)},
		{"Voltage Level", req.Voltage},
		{"Connection Type", orNA(req.ConnectionType)},
		{"BESS Exemptions", yesNo(req.IsStorage)},
		{"Offtake Energy (MWh/year)", req.OfftakeEnergy},
		{"Injection Energy (MWh/year)", req.InjectionEnergy},
		{"Monthly Peak (MW)", req.PeakMonthly},
		{"Annual Peak (MW)", req.PeakYearly},
		{"Contracted Capacity (MVA)", req.ContractedCapacity},
		{"Total Annual Cost (€/year)", Euro(res.Total)},
		{"Offtake Fees (€/year)", Euro(res.TotalOfftake)},
		{"Injection Fees (€/year)", Euro(res.TotalInjection)},
	}
	for i, row := range summary {
		if err := setRow(f, SummarySheet, i+1, row); err != nil {
			return nil, err
		}
	}

	if err := setRow(f, BreakdownSheet, 1, []any{"Component", "Rate (k€)", "Quantity", "Multiplier", "Amount (€/year)"}); err != nil {
		return nil, err
	}
	for i, it := range res.Items() {
		row := []any{string(it.FeeType), it.Rate, it.Quantity, it.Multiplier, Euro(it.Total)}
		if err := setRow(f, BreakdownSheet, i+2, row); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	if len(values) == 0 {
		return nil
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("set %s row %d: %w", sheet, row, err)
	}
	return nil
}
