package climate

import (
	"math"
	"testing"
)

func TestClassify_Tropical(t *testing.T) {
	tests := []struct {
		name string
		temp float64
		desc string
	}{
		{name: "boundary", temp: 30, desc: "clear sky"},
		{name: "hot", temp: 41.2, desc: "few clouds"},
		{name: "desert does not matter", temp: 33, desc: "desert haze"},
		{name: "empty description", temp: 30.01, desc: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.temp, tt.desc); got != Tropical {
				t.Errorf("Classify(%v, %q) = %v; want Tropical", tt.temp, tt.desc, got)
			}
		})
	}
}

func TestClassify_DryByRange(t *testing.T) {
	for _, temp := range []float64{25, 27.5, 29.99} {
		if got := Classify(temp, "scattered clouds"); got != Dry {
			t.Errorf("Classify(%v, no desert) = %v; want Dry", temp, got)
		}
	}
}

func TestClassify_DryByDescription(t *testing.T) {
	tests := []struct {
		temp float64
		desc string
	}{
		{temp: 20, desc: "desert dust"},
		{temp: 24.9, desc: "DESERT wind"},
		{temp: 16, desc: "sand/desert storm"},
	}
	for _, tt := range tests {
		if got := Classify(tt.temp, tt.desc); got != Dry {
			t.Errorf("Classify(%v, %q) = %v; want Dry", tt.temp, tt.desc, got)
		}
	}
}

func TestClassify_Temperate(t *testing.T) {
	for _, temp := range []float64{15, 18.3, 24.99} {
		if got := Classify(temp, "light rain"); got != Temperate {
			t.Errorf("Classify(%v) = %v; want Temperate", temp, got)
		}
	}
}

func TestClassify_Cold(t *testing.T) {
	for _, temp := range []float64{14.99, 0, -35} {
		if got := Classify(temp, "snow"); got != Cold {
			t.Errorf("Classify(%v) = %v; want Cold", temp, got)
		}
	}
}

func TestClassify_Precedence(t *testing.T) {
	// The description rule sits above the Temperate and Cold ranges.
	if got := Classify(10, "desert"); got != Dry {
		t.Errorf("Classify(10, desert) = %v; want Dry", got)
	}
	// The Tropical range sits above the description rule.
	if got := Classify(30, "desert"); got != Tropical {
		t.Errorf("Classify(30, desert) = %v; want Tropical", got)
	}
	if got := Classify(-5, "overcast clouds"); got != Cold {
		t.Errorf("Classify(-5, overcast) = %v; want Cold", got)
	}
}

func TestClassify_UnknownForNaN(t *testing.T) {
	if got := Classify(math.NaN(), "clear sky"); got != Unknown {
		t.Errorf("Classify(NaN) = %v; want Unknown", got)
	}
	// NaN with a desert description still matches the description rule.
	if got := Classify(math.NaN(), "desert"); got != Dry {
		t.Errorf("Classify(NaN, desert) = %v; want Dry", got)
	}
}

func TestSample_Classify(t *testing.T) {
	s := Sample{Country: "Spain", TemperatureC: 21, Description: "clear sky"}
	if got := s.Classify(); got != Temperate {
		t.Errorf("Sample.Classify() = %v; want Temperate", got)
	}
}

func TestParseLabel(t *testing.T) {
	tests := []struct {
		in      string
		want    Label
		wantErr bool
	}{
		{in: "Tropical", want: Tropical},
		{in: "dry", want: Dry},
		{in: "  TEMPERATE ", want: Temperate},
		{in: "Cold", want: Cold},
		{in: "Unknown", wantErr: true},
		{in: "", wantErr: true},
		{in: "Arctic", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLabel(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseLabel(%q) = %v, nil; want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLabel(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseLabel(%q) = %v; want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLabel_String(t *testing.T) {
	if Label(99).String() != "Unknown" {
		t.Errorf("Label(99).String() = %q; want Unknown", Label(99).String())
	}
	b, err := Temperate.MarshalText()
	if err != nil || string(b) != "Temperate" {
		t.Errorf("MarshalText() = %q, %v; want Temperate, nil", b, err)
	}
}

func TestLookupLabel(t *testing.T) {
	for _, l := range []Label{Unknown, Tropical, Dry, Temperate, Cold} {
		got, ok := LookupLabel(l.String())
		if !ok || got != l {
			t.Errorf("LookupLabel(%q) = %v, %v; want %v, true", l.String(), got, ok, l)
		}
	}
	if _, ok := LookupLabel("temperate"); ok {
		t.Errorf("LookupLabel(lowercase) ok = true; want false")
	}
}
