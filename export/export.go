package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/angas/gridfees-go/calc"
)

// Format is a download format of a calculation.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXLSX, FormatPDF:
		return f, nil
	case "":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	}
	return "text/csv"
}

// FileName is the attachment name of an export, e.g. grid-fees-Elia-1700000000.csv.
func (f Format) FileName(operator string, unix int64) string {
	name := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == '"' || r == ' ' {
			return '_'
		}
		return r
	}, operator)
	if name == "" {
		name = "unknown"
	}
	return fmt.Sprintf("grid-fees-%s-%d.%s", name, unix, f)
}

// Render dispatches to the renderer of the format.
func Render(f Format, req calc.Request, res calc.Result) ([]byte, error) {
	switch f {
	case FormatXLSX:
		return XLSX(req, res)
	case FormatPDF:
		return PDF(req, res)
	}
	return CSV(req, res)
}

// Euro converts an amount in k€ to €.
func Euro(kEUR float64) float64 {
	return kEUR * 1000
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// CSV renders the configuration, inputs, totals and breakdown of a
// calculation. Amounts are in €/year.
func CSV(req calc.Request, res calc.Result) ([]byte, error) {
	rows := [][]string{
		{"Configuration"},
		{"DSO/TSO:", req.Operator},
		{"Region:", orNA(req.Region)},
		{"Voltage Level:", req.Voltage},
		{"Connection Type:", orNA(req.ConnectionType)},
		{"BESS Exemptions:", yesNo(req.IsStorage)},
		{""},
		{"Input Values"},
		{"Offtake Energy (MWh/year):", num(req.OfftakeEnergy)},
		{"Injection Energy (MWh/year):", num(req.InjectionEnergy)},
		{"Monthly Peak (MW):", num(req.PeakMonthly)},
		{"Annual Peak (MW):", num(req.PeakYearly)},
		{"Contracted Capacity (MVA):", num(req.ContractedCapacity)},
		{""},
		{"Results (€/year)"},
		{"Total Annual Cost:", fmt.Sprintf("%.2f", Euro(res.Total))},
		{"Offtake Fees:", fmt.Sprintf("%.2f", Euro(res.TotalOfftake))},
		{"Injection Fees:", fmt.Sprintf("%.2f", Euro(res.TotalInjection))},
		{""},
		{"Fee Breakdown"},
		{"Component", "Rate (k€)", "Quantity", "Multiplier", "Amount (€/year)"},
	}
	for _, it := range res.Items() {
		rows = append(rows, []string{
			string(it.FeeType),
			fmt.Sprintf("%.6f", it.Rate),
			fmt.Sprintf("%.2f", it.Quantity),
			fmt.Sprintf("%.2f", it.Multiplier),
			fmt.Sprintf("%.2f", Euro(it.Total)),
		})
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}
