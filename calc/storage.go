package calc

import (
	"fmt"
	"math"
)

// StorageParams describe a battery system. Power in MW, duration in hours,
// efficiency as a round-trip percentage.
type StorageParams struct {
	Power          float64 `json:"power"`
	Duration       float64 `json:"duration"`
	CyclesPerDay   float64 `json:"cycles"`
	RoundTripEffPc float64 `json:"efficiency"`
}

// StorageProfile is the yearly energy balance of a battery. Energies in MWh/year.
type StorageProfile struct {
	Power     float64 `json:"power"`
	Discharge float64 `json:"discharge"`
	OneWayEff float64 `json:"one_way_efficiency"`
	Offtake   float64 `json:"offtake"`
	Injection float64 `json:"injection"`
	Losses    float64 `json:"losses"`
}

func NewStorageProfile(p StorageParams) (StorageProfile, error) {
	if !(p.Power > 0 && p.Duration > 0 && p.CyclesPerDay > 0 && p.RoundTripEffPc > 0) {
		return StorageProfile{}, invalidInput(
			fmt.Sprintf("power, duration, cycles and efficiency must be positive, got %g, %g, %g, %g",
				p.Power, p.Duration, p.CyclesPerDay, p.RoundTripEffPc), nil)
	}

	discharge := p.Power * p.Duration * p.CyclesPerDay * 365
	oneWay := math.Sqrt(p.RoundTripEffPc / 100)
	offtake := discharge / oneWay
	injection := discharge * oneWay

	return StorageProfile{
		Power:     p.Power,
		Discharge: discharge,
		OneWayEff: oneWay,
		Offtake:   offtake,
		Injection: injection,
		Losses:    offtake - injection,
	}, nil
}

// Apply fills the energy and capacity inputs of req from the profile and
// marks the request as a storage connection.
func (sp StorageProfile) Apply(req Request) Request {
	req.OfftakeEnergy = sp.Offtake
	req.InjectionEnergy = sp.Injection
	req.PeakMonthly = sp.Power
	req.PeakYearly = sp.Power
	req.ContractedCapacity = sp.Power
	req.IsStorage = true
	return req
}
