package tariff

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/angas/gridfees-go/convert"
	"github.com/angas/gridfees-go/types/maybe"
)

// ErrMalformed marks every load failure caused by the dataset content.
var ErrMalformed = errors.New("malformed tariff dataset")

const (
	colOperator       = "DSO/TSO Selection"
	colRegion         = "Region"
	colVoltageLevel   = "Voltage Level"
	colConnectionType = "Connection Type"
	colFeeType        = "Fee Type"
	colMultiplier     = "Multiplier"
)

// record is one row as found in the source, keyed by column name.
type record map[string]json.RawMessage

type wireDataset struct {
	Fees                   []record            `json:"fees"`
	BessExemptions         []record            `json:"bess_exemptions"`
	FluviusRegions         []string            `json:"fluvius_regions,omitempty"`
	VoltageLevels          map[string][]string `json:"connection_types,omitempty"`
	ConnectionTypeVariants map[string][]string `json:"connection_type_variants,omitempty"`
}

// LoadFile reads a dataset from a JSON document or, for .xlsx files,
// from a workbook.
func LoadFile(path string) (*Dataset, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open tariff workbook: %w", err)
		}
		defer f.Close()
		return ReadWorkbook(f)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tariff dataset: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a JSON dataset.
func Parse(data []byte) (*Dataset, error) {
	var w wireDataset
	if err := json.Unmarshal(sanitizeNonFinite(data), &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return w.toDataset()
}

func (w wireDataset) toDataset() (*Dataset, error) {
	if w.Fees == nil {
		return nil, fmt.Errorf("%w: missing 'fees'", ErrMalformed)
	}
	if w.BessExemptions == nil {
		return nil, fmt.Errorf("%w: missing 'bess_exemptions'", ErrMalformed)
	}

	ds := &Dataset{
		Fees:            make([]Row, 0, len(w.Fees)),
		BessExemptions:  make([]BessExemption, 0, len(w.BessExemptions)),
		Regions:         trimAll(w.FluviusRegions),
		VoltageLevels:   trimMap(w.VoltageLevels),
		ConnectionTypes: trimMap(w.ConnectionTypeVariants),
	}

	for i, rec := range w.Fees {
		row, err := rec.toRow()
		if err != nil {
			return nil, fmt.Errorf("%w: fees[%d]: %v", ErrMalformed, i, err)
		}
		ds.Fees = append(ds.Fees, row)
	}

	for i, rec := range w.BessExemptions {
		e, err := rec.toExemption()
		if err != nil {
			return nil, fmt.Errorf("%w: bess_exemptions[%d]: %v", ErrMalformed, i, err)
		}
		ds.BessExemptions = append(ds.BessExemptions, e)
	}

	return ds, nil
}

func (rec record) toRow() (Row, error) {
	operator, err := rec.requiredString(colOperator)
	if err != nil {
		return Row{}, err
	}
	voltage, err := rec.requiredString(colVoltageLevel)
	if err != nil {
		return Row{}, err
	}
	region, err := rec.optionalString(colRegion)
	if err != nil {
		return Row{}, err
	}
	connType, err := rec.optionalString(colConnectionType)
	if err != nil {
		return Row{}, err
	}

	row := Row{
		Operator:       operator,
		Region:         region,
		VoltageLevel:   voltage,
		ConnectionType: connType,
		Rates:          make(map[FeeType]float64),
	}

	for _, ft := range FeeTypes {
		for _, col := range rateColumns(ft) {
			rate, err := rec.number(col)
			if err != nil {
				return Row{}, err
			}
			if rate.IsValid() {
				row.Rates[ft] = rate.Value()
				break
			}
		}
	}

	return row, nil
}

func rateColumns(ft FeeType) []string {
	if ft == InjectionVolumetric {
		return []string{string(ft), injectionVolumetricLegacyColumn}
	}
	return []string{string(ft)}
}

func (rec record) toExemption() (BessExemption, error) {
	operator, err := rec.requiredString(colOperator)
	if err != nil {
		return BessExemption{}, err
	}
	label, err := rec.requiredString(colFeeType)
	if err != nil {
		return BessExemption{}, err
	}
	ft, ok := ParseFeeType(label)
	if !ok {
		return BessExemption{}, fmt.Errorf("unknown fee type %q", label)
	}
	m, err := rec.number(colMultiplier)
	if err != nil {
		return BessExemption{}, err
	}
	if !m.IsValid() {
		return BessExemption{}, fmt.Errorf("missing %q", colMultiplier)
	}
	return BessExemption{Operator: operator, FeeType: ft, Multiplier: m.Value()}, nil
}

func (rec record) requiredString(key string) (string, error) {
	v, err := rec.optionalString(key)
	if err != nil {
		return "", err
	}
	if v.ValueOrDefault("") == "" {
		return "", fmt.Errorf("missing %q", key)
	}
	return v.Value(), nil
}

// optionalString returns None for absent and null values. Numbers are
// accepted since spreadsheet exports turn numeric-looking labels into numbers.
func (rec record) optionalString(key string) (maybe.Maybe[string], error) {
	raw, ok := rec[key]
	if !ok || isNull(raw) {
		return maybe.None[string](), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return maybe.Some(strings.TrimSpace(s)), nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return maybe.Some(strconv.FormatFloat(f, 'f', -1, 64)), nil
	}
	return maybe.None[string](), fmt.Errorf("%q is not a string: %s", key, raw)
}

// number returns None for absent, null and blank values.
func (rec record) number(key string) (maybe.Maybe[float64], error) {
	raw, ok := rec[key]
	if !ok || isNull(raw) {
		return maybe.None[float64](), nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return maybe.Some(f), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return maybe.None[float64](), fmt.Errorf("%q is not a number: %s", key, raw)
	}
	if strings.TrimSpace(s) == "" {
		return maybe.None[float64](), nil
	}
	f, err := convert.ParseFloat(s)
	if err != nil {
		return maybe.None[float64](), fmt.Errorf("%q: %w", key, err)
	}
	return maybe.Some(f), nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// sanitizeNonFinite replaces the NaN and Infinity literals written by
// Python's json module with null, outside of string literals.
func sanitizeNonFinite(data []byte) []byte {
	tokens := [][]byte{[]byte("-Infinity"), []byte("Infinity"), []byte("NaN")}
	var out []byte
	inString, escaped := false, false
	for i := 0; i < len(data); i++ {
		c := data[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			if out != nil {
				out = append(out, c)
			}
			continue
		}
		if c == '"' {
			inString = true
		}
		replaced := false
		for _, tok := range tokens {
			if bytes.HasPrefix(data[i:], tok) {
				if out == nil {
					out = append(make([]byte, 0, len(data)), data[:i]...)
				}
				out = append(out, "null"...)
				i += len(tok) - 1
				replaced = true
				break
			}
		}
		if !replaced && out != nil {
			out = append(out, c)
		}
	}
	if out == nil {
		return data
	}
	return out
}

func trimAll(values []string) []string {
	if values == nil {
		return nil
	}
	result := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}

func trimMap(m map[string][]string) map[string][]string {
	if m == nil {
		return nil
	}
	result := make(map[string][]string, len(m))
	for k, v := range m {
		values := trimAll(v)
		if values == nil {
			values = []string{}
		}
		result[strings.TrimSpace(k)] = values
	}
	return result
}

// MarshalJSON writes the dataset in the same document format Parse reads.
func (d *Dataset) MarshalJSON() ([]byte, error) {
	w := wireDataset{
		Fees:                   make([]record, 0, len(d.Fees)),
		BessExemptions:         make([]record, 0, len(d.BessExemptions)),
		FluviusRegions:         d.Regions,
		VoltageLevels:          d.VoltageLevels,
		ConnectionTypeVariants: d.ConnectionTypes,
	}

	for _, row := range d.Fees {
		rec := record{}
		rec.put(colOperator, row.Operator)
		rec.put(colRegion, row.Region)
		rec.put(colVoltageLevel, row.VoltageLevel)
		rec.put(colConnectionType, row.ConnectionType)
		for _, ft := range FeeTypes {
			if rate, ok := row.Rates[ft]; ok {
				rec.put(string(ft), rate)
			}
		}
		w.Fees = append(w.Fees, rec)
	}

	for _, e := range d.BessExemptions {
		rec := record{}
		rec.put(colOperator, e.Operator)
		rec.put(colFeeType, string(e.FeeType))
		rec.put(colMultiplier, e.Multiplier)
		w.BessExemptions = append(w.BessExemptions, rec)
	}

	return json.Marshal(w)
}

func (rec record) put(key string, v any) {
	// Values are strings, floats and maybe.Maybe[string], which always marshal.
	raw, _ := json.Marshal(v)
	rec[key] = raw
}
