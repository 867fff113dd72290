package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/angas/gridfees-go/calc"
)

// PDF renders a single page statement of a calculation.
func PDF(req calc.Request, res calc.Result) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Arial", "B", 14)
	pdf.AddPage()

	pdf.Cell(0, 8, "Grid Fee Calculation")
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)
	lines := []string{
		fmt.Sprintf("DSO/TSO: %s", req.Operator),
		fmt.Sprintf("Region: %s", orNA(req.Region)),
		fmt.Sprintf("Voltage Level: %s", req.Voltage),
		fmt.Sprintf("Connection Type: %s", orNA(req.ConnectionType)),
		fmt.Sprintf("BESS Exemptions: %s", yesNo(req.IsStorage)),
	}
	for _, line := range lines {
		pdf.Cell(0, 6, tr(line))
		pdf.Ln(5)
	}

	pdf.Ln(4)
	pdf.Cell(0, 6, fmt.Sprintf("Offtake Energy (MWh/year): %.2f", req.OfftakeEnergy))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Injection Energy (MWh/year): %.2f", req.InjectionEnergy))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Monthly Peak (MW): %.2f, Annual Peak (MW): %.2f", req.PeakMonthly, req.PeakYearly))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Contracted Capacity (MVA): %.2f", req.ContractedCapacity))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Total Annual Cost: € %.2f", Euro(res.Total))))
	pdf.Ln(5)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Offtake Fees: € %.2f", Euro(res.TotalOfftake))))
	pdf.Ln(5)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Injection Fees: € %.2f", Euro(res.TotalInjection))))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(50, 6, "Component", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, tr("Rate (k€)"), "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Quantity", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Multiplier", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, tr("Amount (€/year)"), "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, it := range res.Items() {
		pdf.CellFormat(50, 6, string(it.FeeType), "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 6, fmt.Sprintf("%.6f", it.Rate), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%.2f", it.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%.2f", it.Multiplier), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.2f", Euro(it.Total)), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
