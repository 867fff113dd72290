package convert

import (
	"encoding/json"
	"testing"
)

func TestTwoDecimals(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1.005001, 1.01},
		{12.344, 12.34},
		{0, 0},
		{-2.556, -2.56},
	}
	for _, tt := range tests {
		if got := TwoDecimals(tt.in); got != tt.want {
			t.Errorf("TwoDecimals(%f) got %f, wanted %f", tt.in, got, tt.want)
		}
	}
}

func TestNumberUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr bool
	}{
		{name: "number", input: `12.5`, want: 12.5},
		{name: "numeric string", input: `" 7 "`, want: 7},
		{name: "empty string", input: `""`, want: 0},
		{name: "null", input: `null`, want: 0},
		{name: "word", input: `"abc"`, wantErr: true},
		{name: "nan string", input: `"NaN"`, wantErr: true},
		{name: "bool", input: `true`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n Number
			err := json.Unmarshal([]byte(tt.input), &n)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %f", float64(n))
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if float64(n) != tt.want {
				t.Errorf("got %f, wanted %f", float64(n), tt.want)
			}
		})
	}
}
