package tariff

import (
	"testing"

	"github.com/angas/gridfees-go/types/maybe"
)

func TestExemptionsFor(t *testing.T) {
	ds := &Dataset{
		BessExemptions: []BessExemption{
			{Operator: "Elia", FeeType: OfftakeVolumetric, Multiplier: 0},
			{Operator: "Fluvius", FeeType: OfftakeVolumetric, Multiplier: 0.2},
			{Operator: "Elia", FeeType: OfftakeOther, Multiplier: 0.5},
			{Operator: "Elia", FeeType: OfftakeOther, Multiplier: 0.25},
		},
	}

	m := ds.ExemptionsFor(" Elia ")
	if len(m) != 2 {
		t.Fatalf("got %d exemptions, wanted 2", len(m))
	}
	if m[OfftakeVolumetric] != 0 {
		t.Errorf("got %f, wanted 0", m[OfftakeVolumetric])
	}
	if m[OfftakeOther] != 0.25 {
		t.Errorf("last entry should win, got %f", m[OfftakeOther])
	}
	if len(ds.ExemptionsFor("Ores")) != 0 {
		t.Errorf("expected no exemptions for Ores")
	}
}

func TestDuplicates(t *testing.T) {
	row := func(op, region, voltage string, conn maybe.Maybe[string]) Row {
		r := Row{Operator: op, VoltageLevel: voltage, ConnectionType: conn}
		if region != "" {
			r.Region = maybe.Some(region)
		}
		return r
	}

	tests := []struct {
		name string
		rows []Row
		want []Shadowed
	}{
		{
			name: "distinct rows",
			rows: []Row{
				row("Fluvius", "Kempen", "1-26 kV", maybe.Some("Grid")),
				row("Fluvius", "Kempen", "1-26 kV", maybe.Some("Post")),
				row("Fluvius", "Limburg", "1-26 kV", maybe.Some("Grid")),
			},
		},
		{
			name: "exact duplicate",
			rows: []Row{
				row("Ores", "", "MT", maybe.Some("Grid")),
				row("Ores", "", "MT", maybe.Some("Grid")),
			},
			want: []Shadowed{{Index: 1, ShadowedBy: 0}},
		},
		{
			name: "wildcard connection type hides later rows",
			rows: []Row{
				row("Elia", "", "30-70 kV", maybe.None[string]()),
				row("Elia", "", "30-70 kV", maybe.Some("Post")),
			},
			want: []Shadowed{{Index: 1, ShadowedBy: 0}},
		},
		{
			name: "specific row before wildcard is fine",
			rows: []Row{
				row("Elia", "", "30-70 kV", maybe.Some("Post")),
				row("Elia", "", "30-70 kV", maybe.Some("")),
			},
		},
		{
			name: "regional rows without region shadow nothing",
			rows: []Row{
				row("Fluvius", "", "1-26 kV", maybe.Some("Grid")),
				row("Fluvius", "", "1-26 kV", maybe.Some("Grid")),
			},
		},
		{
			name: "region ignored for other operators",
			rows: []Row{
				row("Sibelga", "Brussel", "1-26 kV", maybe.Some("Main")),
				row("Sibelga", "Elsene", "1-26 kV", maybe.Some("Main")),
			},
			want: []Shadowed{{Index: 1, ShadowedBy: 0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := (&Dataset{Fees: tt.rows}).Duplicates()
			if len(got) != len(tt.want) {
				t.Fatalf("got %d shadowed rows, wanted %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].Index != tt.want[i].Index || got[i].ShadowedBy != tt.want[i].ShadowedBy {
					t.Errorf("got %d shadowed by %d, wanted %d by %d",
						got[i].Index, got[i].ShadowedBy, tt.want[i].Index, tt.want[i].ShadowedBy)
				}
			}
		})
	}
}

func TestFeeTypes(t *testing.T) {
	if len(FeeTypes) != 12 {
		t.Fatalf("got %d fee types, wanted 12", len(FeeTypes))
	}
	injection := 0
	for _, ft := range FeeTypes {
		if ft.IsInjection() == ft.IsOfftake() {
			t.Errorf("%s must be either injection or offtake", ft)
		}
		if ft.IsInjection() {
			injection++
		}
	}
	if injection != 6 {
		t.Errorf("got %d injection fee types, wanted 6", injection)
	}

	if ft, ok := ParseFeeType("Injection Volumentric"); !ok || ft != InjectionVolumetric {
		t.Errorf("legacy label should parse to %s, got %s", InjectionVolumetric, ft)
	}
	if _, ok := ParseFeeType("Offtake Magic"); ok {
		t.Errorf("unknown label should not parse")
	}
}
