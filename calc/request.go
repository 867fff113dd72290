package calc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/angas/gridfees-go/convert"
)

// Request holds the calculation inputs. Energies are in MWh/year, peaks
// in MW and contracted capacity in MVA.
type Request struct {
	Operator           string  `json:"dso_tso"`
	Region             string  `json:"region"`
	Voltage            string  `json:"voltage"`
	ConnectionType     string  `json:"connection_type"`
	OfftakeEnergy      float64 `json:"offtake_energy"`
	InjectionEnergy    float64 `json:"injection_energy"`
	PeakMonthly        float64 `json:"peak_monthly"`
	PeakYearly         float64 `json:"peak_yearly"`
	ContractedCapacity float64 `json:"contracted_capacity"`
	IsStorage          bool    `json:"is_bess"`
}

// wireRequest accepts numbers posted as strings and null for any field.
type wireRequest struct {
	Operator           *string         `json:"dso_tso"`
	Region             *string         `json:"region"`
	Voltage            *string         `json:"voltage"`
	ConnectionType     *string         `json:"connection_type"`
	OfftakeEnergy      convert.Number  `json:"offtake_energy"`
	InjectionEnergy    convert.Number  `json:"injection_energy"`
	PeakMonthly        convert.Number  `json:"peak_monthly"`
	PeakYearly         convert.Number  `json:"peak_yearly"`
	ContractedCapacity convert.Number  `json:"contracted_capacity"`
	IsStorage          json.RawMessage `json:"is_bess"`
}

func (r *Request) UnmarshalJSON(data []byte) error {
	var w wireRequest
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	isStorage := false
	if len(w.IsStorage) > 0 && !bytes.Equal(w.IsStorage, []byte("null")) {
		if err := json.Unmarshal(w.IsStorage, &isStorage); err != nil {
			return fmt.Errorf("is_bess must be a boolean: %s", w.IsStorage)
		}
	}

	*r = Request{
		Operator:           deref(w.Operator),
		Region:             deref(w.Region),
		Voltage:            deref(w.Voltage),
		ConnectionType:     deref(w.ConnectionType),
		OfftakeEnergy:      float64(w.OfftakeEnergy),
		InjectionEnergy:    float64(w.InjectionEnergy),
		PeakMonthly:        float64(w.PeakMonthly),
		PeakYearly:         float64(w.PeakYearly),
		ContractedCapacity: float64(w.ContractedCapacity),
		IsStorage:          isStorage,
	}
	return nil
}

// DecodeRequest reads one JSON request. Any decoding problem is an
// InvalidInput error.
func DecodeRequest(r io.Reader) (Request, error) {
	var req Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return Request{}, invalidInput(err.Error(), err)
	}
	return req.Normalized(), nil
}

// Normalized returns the request with the lookup keys trimmed.
func (r Request) Normalized() Request {
	r.Operator = strings.TrimSpace(r.Operator)
	r.Region = strings.TrimSpace(r.Region)
	r.Voltage = strings.TrimSpace(r.Voltage)
	r.ConnectionType = strings.TrimSpace(r.ConnectionType)
	return r
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
