package suv

import (
	"math"
	"strings"
	"testing"
)

func TestScaleFactor(t *testing.T) {
	p := Parameters{WeightKg: 70, TotalDoseMBq: 350}
	got, err := p.ScaleFactor()
	if err != nil {
		t.Fatalf("ScaleFactor returned error: %v", err)
	}
	// 350 MBq / 70 kg = 5 MBq/kg, times 1000 gives 5000 kBq/mL.
	want := 1.0 / 5000.0
	if math.Abs(got-want) > 1e-15 {
		t.Errorf("scale factor = %g, want %g", got, want)
	}
}

func TestScaleFactorRoundTrip(t *testing.T) {
	p := Parameters{WeightKg: 82.5, TotalDoseMBq: 412.3}
	factor, err := p.ScaleFactor()
	if err != nil {
		t.Fatalf("ScaleFactor returned error: %v", err)
	}
	denominator := (p.TotalDoseMBq / p.WeightKg) * 1000
	if math.Abs(factor*denominator-1) > 1e-12 {
		t.Errorf("factor * denominator = %g, want 1", factor*denominator)
	}
}

func TestScaleFactorRejectsBadParameters(t *testing.T) {
	cases := []struct {
		name   string
		params Parameters
	}{
		{"zero weight", Parameters{WeightKg: 0, TotalDoseMBq: 300}},
		{"negative weight", Parameters{WeightKg: -70, TotalDoseMBq: 300}},
		{"zero dose", Parameters{WeightKg: 70, TotalDoseMBq: 0}},
		{"negative dose", Parameters{WeightKg: 70, TotalDoseMBq: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.params.ScaleFactor(); err == nil {
				t.Errorf("expected error for %+v", tc.params)
			}
		})
	}
}

func TestFirstFloat(t *testing.T) {
	cases := []struct {
		name   string
		values []interface{}
		want   float64
		ok     bool
	}{
		{"decimal string", []interface{}{"70.5"}, 70.5, true},
		{"float64", []interface{}{float64(68)}, 68, true},
		{"float32", []interface{}{float32(0.5)}, 0.5, true},
		{"skips junk", []interface{}{"n/a", "81"}, 81, true},
		{"empty", nil, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := firstFloat(tc.values)
			if ok != tc.ok || (ok && math.Abs(got-tc.want) > 1e-9) {
				t.Errorf("firstFloat(%v) = %g, %v; want %g, %v", tc.values, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestReadParametersRejectsGarbage(t *testing.T) {
	_, err := ReadParameters(strings.NewReader("not a dicom file"))
	if err == nil {
		t.Fatal("expected error for non-dicom input")
	}
}
