package tariff

import (
	"strings"

	"github.com/angas/gridfees-go/types/maybe"
)

// RegionalOperator is the only operator whose tariffs differ per region.
const RegionalOperator = "Fluvius"

// Row is one entry of the fee table.
type Row struct {
	Operator     string
	Region       maybe.Maybe[string] // None when the sheet has no region for the row
	VoltageLevel string
	// None or "" means the tariff applies to every connection type.
	ConnectionType maybe.Maybe[string]
	Rates          map[FeeType]float64
}

// Rate returns the rate for a fee type, 0 when the row has none.
func (r Row) Rate(ft FeeType) float64 {
	return r.Rates[ft]
}

// ConstrainsConnectionType reports whether the row only applies to one
// connection type.
func (r Row) ConstrainsConnectionType() bool {
	return strings.TrimSpace(r.ConnectionType.ValueOrDefault("")) != ""
}

type BessExemption struct {
	Operator   string
	FeeType    FeeType
	Multiplier float64
}

// Dataset is the typed, validated tariff table. A published Dataset is
// never mutated, so it can be shared between goroutines.
type Dataset struct {
	Fees           []Row
	BessExemptions []BessExemption
	// Option lists shipped with the dataset; nil when absent.
	Regions         []string
	VoltageLevels   map[string][]string
	ConnectionTypes map[string][]string
}

// ExemptionsFor maps fee types to storage multipliers for one operator.
// A fee type listed twice takes the last multiplier.
func (d *Dataset) ExemptionsFor(operator string) map[FeeType]float64 {
	operator = strings.TrimSpace(operator)
	m := make(map[FeeType]float64)
	for _, e := range d.BessExemptions {
		if e.Operator == operator {
			m[e.FeeType] = e.Multiplier
		}
	}
	return m
}

// Shadowed describes a fee row that can never be selected because an
// earlier row matches every request it would match.
type Shadowed struct {
	Index      int
	ShadowedBy int
	Row        Row
}

// Duplicates returns the rows hidden by an earlier row. Lookups still use
// the first match; this only exists to report dataset defects at load time.
func (d *Dataset) Duplicates() []Shadowed {
	var result []Shadowed
	for i, row := range d.Fees {
		for j := 0; j < i; j++ {
			if covers(d.Fees[j], row) {
				result = append(result, Shadowed{Index: i, ShadowedBy: j, Row: row})
				break
			}
		}
	}
	return result
}

// covers reports whether every request matching b also matches a.
func covers(a, b Row) bool {
	if a.Operator != b.Operator || a.VoltageLevel != b.VoltageLevel {
		return false
	}
	if a.Operator == RegionalOperator {
		if !a.Region.IsValid() || !b.Region.IsValid() || a.Region.Value() != b.Region.Value() {
			return false
		}
	}
	if !a.ConstrainsConnectionType() {
		return true
	}
	return b.ConstrainsConnectionType() && a.ConnectionType.Value() == b.ConnectionType.Value()
}
