package domain

import (
	"errors"
	"math"
	"testing"
)

// TestStandardizeUnits_KelvinToCelsius tests temperature conversion.
func TestStandardizeUnits_KelvinToCelsius(t *testing.T) {
	f := testField(monthlyTimes(2000, 2), []float64{0}, []float64{0}, constSeries([]float64{273.15, 293.15}))
	f.Units = "K"

	if err := StandardizeUnits(f, "tas", testLogger()); err != nil {
		t.Fatalf("StandardizeUnits failed: %v", err)
	}
	if f.Units != "degC" {
		t.Errorf("Units: expected degC, got %q", f.Units)
	}
	if got := f.Data.Get(0, 0, 0); !almostEqual(got, 0.0, 1e-9) {
		t.Errorf("273.15 K: expected 0 degC, got %g", got)
	}
	if got := f.Data.Get(1, 0, 0); !almostEqual(got, 20.0, 1e-9) {
		t.Errorf("293.15 K: expected 20 degC, got %g", got)
	}
}

// TestStandardizeUnits_CelsiusSpellings tests that historical degC spellings
// rewrite the unit string without changing values.
func TestStandardizeUnits_CelsiusSpellings(t *testing.T) {
	for _, spelling := range []string{"degC", "Celsius", "degree_Celsius", "deg_C"} {
		f := testField(monthlyTimes(2000, 1), []float64{0}, []float64{0}, constSeries([]float64{17.5}))
		f.Units = spelling

		if err := StandardizeUnits(f, "tas", testLogger()); err != nil {
			t.Fatalf("spelling %q: %v", spelling, err)
		}
		if f.Units != "degC" {
			t.Errorf("spelling %q: expected degC, got %q", spelling, f.Units)
		}
		if got := f.Data.Get(0, 0, 0); got != 17.5 {
			t.Errorf("spelling %q: value changed to %g", spelling, got)
		}
	}
}

// TestStandardizeUnits_PrecipitationFlux tests kg m-2 s-1 to mm/day.
func TestStandardizeUnits_PrecipitationFlux(t *testing.T) {
	f := testField(monthlyTimes(2000, 1), []float64{0}, []float64{0}, constSeries([]float64{1.0 / 86400.0}))
	f.Name = "pr"
	f.Units = "kg m-2 s-1"

	if err := StandardizeUnits(f, "pr", testLogger()); err != nil {
		t.Fatalf("StandardizeUnits failed: %v", err)
	}
	if f.Units != "mm/day" {
		t.Errorf("Units: expected mm/day, got %q", f.Units)
	}
	if got := f.Data.Get(0, 0, 0); !almostEqual(got, 1.0, 1e-12) {
		t.Errorf("flux conversion: expected 1 mm/day, got %g", got)
	}
}

// TestStandardizeUnits_PressureHectopascal tests hPa to Pa regardless of case.
func TestStandardizeUnits_PressureHectopascal(t *testing.T) {
	f := testField(monthlyTimes(2000, 1), []float64{0}, []float64{0}, constSeries([]float64{1013.25}))
	f.Units = "hPa"

	if err := StandardizeUnits(f, "psl", testLogger()); err != nil {
		t.Fatalf("StandardizeUnits failed: %v", err)
	}
	if got := f.Data.Get(0, 0, 0); !almostEqual(got, 101325.0, 1e-6) {
		t.Errorf("1013.25 hPa: expected 101325 Pa, got %g", got)
	}
}

// TestStandardizeUnits_MissingValuesUntouched tests that NaN cells survive
// conversion as NaN rather than becoming arithmetic garbage.
func TestStandardizeUnits_MissingValuesUntouched(t *testing.T) {
	f := testField(monthlyTimes(2000, 2), []float64{0}, []float64{0}, constSeries([]float64{280.0, math.NaN()}))
	f.Units = "K"

	if err := StandardizeUnits(f, "tas", testLogger()); err != nil {
		t.Fatalf("StandardizeUnits failed: %v", err)
	}
	if got := f.Data.Get(1, 0, 0); !math.IsNaN(got) {
		t.Errorf("missing cell: expected NaN after conversion, got %g", got)
	}
}

// TestStandardizeUnits_UnknownUnit tests that an unregistered unit fails hard.
func TestStandardizeUnits_UnknownUnit(t *testing.T) {
	f := testField(monthlyTimes(2000, 1), []float64{0}, []float64{0}, constSeries([]float64{1.0}))
	f.Units = "furlongs"

	err := StandardizeUnits(f, "tas", testLogger())
	if !errors.Is(err, ErrUnsupportedUnit) {
		t.Errorf("expected ErrUnsupportedUnit, got %v", err)
	}
}

// TestStandardizeUnits_NoUnitsAttribute tests the warn-and-pass-through path.
func TestStandardizeUnits_NoUnitsAttribute(t *testing.T) {
	f := testField(monthlyTimes(2000, 1), []float64{0}, []float64{0}, constSeries([]float64{5.0}))
	f.Units = ""

	if err := StandardizeUnits(f, "tas", testLogger()); err != nil {
		t.Errorf("missing units attribute should pass through, got %v", err)
	}
	if got := f.Data.Get(0, 0, 0); got != 5.0 {
		t.Errorf("value changed on pass-through: %g", got)
	}
}

// TestStandardizeUnits_UnregisteredVariable tests pass-through for variables
// outside the rule table.
func TestStandardizeUnits_UnregisteredVariable(t *testing.T) {
	f := testField(monthlyTimes(2000, 1), []float64{0}, []float64{0}, constSeries([]float64{5.0}))
	f.Units = "whatever"

	if err := StandardizeUnits(f, "siconc", testLogger()); err != nil {
		t.Errorf("unregistered variable should pass through, got %v", err)
	}
	if f.Units != "whatever" {
		t.Errorf("unit string changed on pass-through: %q", f.Units)
	}
}

func TestCanonicalUnit(t *testing.T) {
	if u, ok := CanonicalUnit("pr"); !ok || u != "mm/day" {
		t.Errorf("pr: expected mm/day, got %q (ok=%v)", u, ok)
	}
	if _, ok := CanonicalUnit("nonexistent"); ok {
		t.Error("expected no canonical unit for unregistered variable")
	}
}
