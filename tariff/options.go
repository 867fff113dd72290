package tariff

import (
	"github.com/angas/gridfees-go/slice"
)

// Options lists the selectable lookup keys. JSON names follow the
// calculator front end.
type Options struct {
	Operators       []string            `json:"dsos"`
	Regions         []string            `json:"regions"`
	VoltageLevels   map[string][]string `json:"voltage_levels"`
	ConnectionTypes map[string][]string `json:"connection_types"`
}

// Options prefers the lists shipped with the dataset and derives the
// missing ones from the fee rows.
func (d *Dataset) Options() Options {
	opts := Options{
		Operators:       slice.Distinct(slice.Map(d.Fees, func(r Row) string { return r.Operator })),
		Regions:         d.Regions,
		VoltageLevels:   clone(d.VoltageLevels),
		ConnectionTypes: clone(d.ConnectionTypes),
	}

	if opts.Regions == nil {
		regional := slice.Filter(d.Fees, func(r Row) bool {
			return r.Operator == RegionalOperator && r.Region.ValueOrDefault("") != ""
		})
		opts.Regions = slice.Distinct(slice.Map(regional, func(r Row) string { return r.Region.Value() }))
	}

	if opts.VoltageLevels == nil {
		opts.VoltageLevels = d.perOperator(func(r Row) (string, bool) {
			return r.VoltageLevel, true
		})
	}

	if opts.ConnectionTypes == nil {
		opts.ConnectionTypes = d.perOperator(func(r Row) (string, bool) {
			return r.ConnectionType.Value(), r.ConstrainsConnectionType()
		})
	}

	for _, op := range opts.Operators {
		if _, ok := opts.VoltageLevels[op]; !ok {
			opts.VoltageLevels[op] = []string{}
		}
		if _, ok := opts.ConnectionTypes[op]; !ok {
			opts.ConnectionTypes[op] = []string{}
		}
	}

	return opts
}

func (d *Dataset) perOperator(value func(Row) (string, bool)) map[string][]string {
	result := make(map[string][]string)
	for _, r := range d.Fees {
		v, ok := value(r)
		if !ok {
			continue
		}
		result[r.Operator] = append(result[r.Operator], v)
	}
	for op, values := range result {
		result[op] = slice.Distinct(values)
	}
	return result
}

// clone copies the top level so filling in operators never touches the
// shared dataset.
func clone(m map[string][]string) map[string][]string {
	if m == nil {
		return nil
	}
	result := make(map[string][]string, len(m))
	for k, v := range m {
		result[k] = v
	}
	return result
}
