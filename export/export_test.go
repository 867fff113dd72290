package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/angas/gridfees-go/calc"
	"github.com/angas/gridfees-go/tariff"
)

func sample() (calc.Request, calc.Result) {
	req := calc.Request{
		Operator:           "Elia",
		Voltage:            "HV",
		OfftakeEnergy:      100,
		ContractedCapacity: 10,
		IsStorage:          true,
	}
	res := calc.Result{
		Success:        true,
		TotalInjection: 50,
		TotalOfftake:   1.25,
		Total:          51.25,
		Breakdown: map[tariff.FeeType]calc.LineItem{
			tariff.OfftakeVolumetric:   {Rate: 0.0125, Quantity: 100, Multiplier: 1, Total: 1.25},
			tariff.InjectionContracted: {Rate: 5, Quantity: 10, Multiplier: 1, Total: 50},
		},
	}
	return req, res
}

func TestCSV(t *testing.T) {
	data, err := CSV(sample())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}

	find := func(label string) []string {
		for _, row := range rows {
			if row[0] == label {
				return row
			}
		}
		t.Fatalf("row %q not found", label)
		return nil
	}

	if got := find("Region:")[1]; got != "N/A" {
		t.Errorf("got region %q, wanted N/A", got)
	}
	if got := find("BESS Exemptions:")[1]; got != "Yes" {
		t.Errorf("got %q, wanted Yes", got)
	}
	if got := find("Total Annual Cost:")[1]; got != "51250.00" {
		t.Errorf("got total %q, wanted 51250.00", got)
	}

	last := rows[len(rows)-2:]
	if last[0][0] != string(tariff.InjectionContracted) || last[1][0] != string(tariff.OfftakeVolumetric) {
		t.Errorf("breakdown not in fee type order: %v", last)
	}
	if got := last[1][4]; got != "1250.00" {
		t.Errorf("got amount %q, wanted 1250.00", got)
	}
}

func TestXLSX(t *testing.T) {
	data, err := XLSX(sample())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	got, err := f.GetCellValue(SummarySheet, "B3")
	if err != nil || got != "Elia" {
		t.Errorf("got operator %q (%v), wanted Elia", got, err)
	}

	rows, err := f.GetRows(BreakdownSheet)
	if err != nil {
		t.Fatalf("read breakdown: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, wanted 3", len(rows))
	}
	if rows[1][0] != string(tariff.InjectionContracted) || rows[1][4] != "50000" {
		t.Errorf("unexpected first line %v", rows[1])
	}
}

func TestPDF(t *testing.T) {
	data, err := PDF(sample())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("output is not a pdf")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		err  bool
	}{
		{in: "", want: FormatCSV},
		{in: "CSV", want: FormatCSV},
		{in: " xlsx", want: FormatXLSX},
		{in: "pdf", want: FormatPDF},
		{in: "docx", err: true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.err {
			t.Errorf("%q: got error %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("%q: got %q, wanted %q", tt.in, got, tt.want)
		}
	}
}

func TestFileName(t *testing.T) {
	got := FormatXLSX.FileName("Ores Namur", 42)
	if got != "grid-fees-Ores_Namur-42.xlsx" {
		t.Errorf("got %q", got)
	}
	if !strings.HasSuffix(FormatPDF.ContentType(), "pdf") {
		t.Errorf("got %q", FormatPDF.ContentType())
	}
}
