package tariff

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	SheetFees            = "fees"
	SheetBessExemptions  = "bess_exemptions"
	SheetFluviusRegions  = "fluvius_regions"
	SheetVoltageLevels   = "voltage_levels"
	SheetConnectionTypes = "connection_types"
)

// Cells are read as stored, number formats would otherwise round rates.
var rawValues = excelize.Options{RawCellValue: true}

// ReadWorkbook reads the tariff workbook the dataset is maintained in.
// The first row of the fees and bess_exemptions sheets holds the column names.
func ReadWorkbook(r io.Reader) (*Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %v", ErrMalformed, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	var w wireDataset

	if !slices.Contains(sheets, SheetFees) {
		return nil, fmt.Errorf("%w: missing sheet %q", ErrMalformed, SheetFees)
	}
	if w.Fees, err = readRecords(f, SheetFees); err != nil {
		return nil, err
	}

	if !slices.Contains(sheets, SheetBessExemptions) {
		return nil, fmt.Errorf("%w: missing sheet %q", ErrMalformed, SheetBessExemptions)
	}
	if w.BessExemptions, err = readRecords(f, SheetBessExemptions); err != nil {
		return nil, err
	}

	if slices.Contains(sheets, SheetFluviusRegions) {
		rows, err := f.GetRows(SheetFluviusRegions, rawValues)
		if err != nil {
			return nil, fmt.Errorf("%w: read sheet %q: %v", ErrMalformed, SheetFluviusRegions, err)
		}
		w.FluviusRegions = []string{}
		for _, row := range skipHeader(rows) {
			if len(row) > 0 {
				w.FluviusRegions = append(w.FluviusRegions, row[0])
			}
		}
	}

	if slices.Contains(sheets, SheetVoltageLevels) {
		if w.VoltageLevels, err = readPairs(f, SheetVoltageLevels); err != nil {
			return nil, err
		}
	}

	if slices.Contains(sheets, SheetConnectionTypes) {
		if w.ConnectionTypeVariants, err = readPairs(f, SheetConnectionTypes); err != nil {
			return nil, err
		}
	}

	return w.toDataset()
}

// readRecords turns a sheet into records, leaving empty cells absent so
// they read as missing values.
func readRecords(f *excelize.File, sheet string) ([]record, error) {
	rows, err := f.GetRows(sheet, rawValues)
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %v", ErrMalformed, sheet, err)
	}
	if len(rows) == 0 {
		return []record{}, nil
	}

	header := rows[0]
	records := make([]record, 0, len(rows)-1)
	for _, cells := range rows[1:] {
		if isBlankRow(cells) {
			continue
		}
		rec := record{}
		for i, cell := range cells {
			if i >= len(header) || strings.TrimSpace(cell) == "" {
				continue
			}
			raw, _ := json.Marshal(cell)
			rec[strings.TrimSpace(header[i])] = raw
		}
		records = append(records, rec)
	}
	return records, nil
}

// readPairs reads an (operator, value) sheet into a per operator list.
func readPairs(f *excelize.File, sheet string) (map[string][]string, error) {
	rows, err := f.GetRows(sheet, rawValues)
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %v", ErrMalformed, sheet, err)
	}
	result := make(map[string][]string)
	for _, row := range skipHeader(rows) {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		operator := row[0]
		if _, ok := result[operator]; !ok {
			result[operator] = []string{}
		}
		if len(row) > 1 && strings.TrimSpace(row[1]) != "" {
			result[operator] = append(result[operator], row[1])
		}
	}
	return result, nil
}

func skipHeader(rows [][]string) [][]string {
	if len(rows) == 0 {
		return nil
	}
	return rows[1:]
}

func isBlankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
