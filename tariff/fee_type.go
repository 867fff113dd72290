package tariff

import "strings"

// FeeType is the label of one tariff component, as used both as a rate
// column in the fee table and as the key of an exemption.
type FeeType string

const (
	InjectionFixed       FeeType = "Injection Fixed"
	InjectionContracted  FeeType = "Injection Contracted"
	InjectionPeakMonthly FeeType = "Injection Peak Monthly"
	InjectionPeakYearly  FeeType = "Injection Peak Yearly"
	InjectionVolumetric  FeeType = "Injection Volumetric"
	InjectionOther       FeeType = "Injection Other"
	OfftakeFixed         FeeType = "Offtake Fixed"
	OfftakeContracted    FeeType = "Offtake Contracted"
	OfftakePeakMonthly   FeeType = "Offtake Peak Monthly"
	OfftakePeakYearly    FeeType = "Offtake Peak Yearly"
	OfftakeVolumetric    FeeType = "Offtake Volumetric"
	OfftakeOther         FeeType = "Offtake Other"
)

// FeeTypes lists all fee types in breakdown order, injection first.
var FeeTypes = []FeeType{
	InjectionFixed,
	InjectionContracted,
	InjectionPeakMonthly,
	InjectionPeakYearly,
	InjectionVolumetric,
	InjectionOther,
	OfftakeFixed,
	OfftakeContracted,
	OfftakePeakMonthly,
	OfftakePeakYearly,
	OfftakeVolumetric,
	OfftakeOther,
}

// The published tariff sheets misspell this column.
const injectionVolumetricLegacyColumn = "Injection Volumentric"

func (f FeeType) IsInjection() bool {
	return strings.HasPrefix(string(f), "Injection ")
}

func (f FeeType) IsOfftake() bool {
	return strings.HasPrefix(string(f), "Offtake ")
}

func (f FeeType) IsPeak() bool {
	return strings.Contains(string(f), "Peak")
}

// ParseFeeType accepts a fee type label or one of its known column aliases.
func ParseFeeType(s string) (FeeType, bool) {
	s = strings.TrimSpace(s)
	if s == injectionVolumetricLegacyColumn {
		return InjectionVolumetric, true
	}
	for _, ft := range FeeTypes {
		if string(ft) == s {
			return ft, true
		}
	}
	return "", false
}
