package ncio

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/ctessum/sparse"
	"github.com/fhs/go-netcdf/netcdf"

	"github.com/harel-coffee/ClimWIP-auto/internal/domain"
)

func sampleField(nt int) *domain.Field {
	lat := []float64{-1.25, 1.25}
	lon := []float64{-1.25, 1.25, 3.75}
	times := make([]time.Time, nt)
	for i := range times {
		times[i] = time.Date(2000, time.January, 15, 12, 0, 0, 0, time.UTC).AddDate(0, i, 0)
	}
	data := sparse.ZerosDense(nt, len(lat), len(lon))
	for t := 0; t < nt; t++ {
		for j := range lat {
			for i := range lon {
				data.Set(float64(t*100+j*10+i), t, j, i)
			}
		}
	}
	return &domain.Field{
		Name:         "tas",
		Data:         data,
		Time:         times,
		Lat:          lat,
		Lon:          lon,
		Units:        "degC",
		LongName:     "Near-Surface Air Temperature",
		StandardName: "air_temperature",
		FillValue:    domain.DefaultFillValue,
		Encoding:     map[string]string{"comment": "test data"},
	}
}

// TestWriteRead_RoundTrip tests that a time-resolved field survives a write
// and read unchanged, including its metadata and missing values.
func TestWriteRead_RoundTrip(t *testing.T) {
	s := NewStore()
	f := sampleField(3)
	f.Data.Set(math.NaN(), 1, 0, 2)
	path := filepath.Join(t.TempDir(), "tas.nc")

	if err := s.Write(f, path); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got, err := s.Read(path, "tas")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if got.Units != "degC" || got.LongName != f.LongName || got.StandardName != f.StandardName {
		t.Errorf("metadata lost: units=%q long_name=%q standard_name=%q",
			got.Units, got.LongName, got.StandardName)
	}
	if got.Encoding["comment"] != "test data" {
		t.Errorf("encoding bag lost: %v", got.Encoding)
	}
	if len(got.Time) != 3 {
		t.Fatalf("time axis: got %d steps, want 3", len(got.Time))
	}
	for i := range f.Time {
		if !got.Time[i].Equal(f.Time[i]) {
			t.Errorf("time[%d]: got %v, want %v", i, got.Time[i], f.Time[i])
		}
	}
	for i, want := range f.Data.Elements {
		v := got.Data.Elements[i]
		if math.IsNaN(want) != math.IsNaN(v) || (!math.IsNaN(want) && v != want) {
			t.Fatalf("element %d: got %g, want %g", i, v, want)
		}
	}
}

// TestWriteRead_NoTimeAxis tests the 2D reduced-field layout.
func TestWriteRead_NoTimeAxis(t *testing.T) {
	s := NewStore()
	f := sampleField(1)
	f.Time = nil
	f.Data = sparse.ZerosDense(2, 3)
	f.Data.Set(42.0, 1, 2)
	path := filepath.Join(t.TempDir(), "tas_clim.nc")

	if err := s.Write(f, path); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got, err := s.Read(path, "tas")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got.HasTime() {
		t.Error("reduced field read back with a time axis")
	}
	if v := got.Data.Get(1, 2); v != 42.0 {
		t.Errorf("value: got %g, want 42", v)
	}
}

// TestWriteRead_MonthlyCycle tests the [month, lat, lon] layout used by
// annual-cycle outputs: three data dimensions but no time coordinate.
func TestWriteRead_MonthlyCycle(t *testing.T) {
	s := NewStore()
	f := sampleField(1)
	f.Time = nil
	f.Data = sparse.ZerosDense(12, 2, 3)
	for m := 0; m < 12; m++ {
		for j := 0; j < 2; j++ {
			for i := 0; i < 3; i++ {
				f.Data.Set(float64(m*100+j*10+i), m, j, i)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "tas_cyc.nc")

	if err := s.Write(f, path); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got, err := s.Read(path, "tas")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got.HasTime() {
		t.Error("monthly cycle read back with a time axis")
	}
	if len(got.Data.Shape) != 3 || got.Data.Shape[0] != 12 {
		t.Fatalf("shape: got %v, want [12 2 3]", got.Data.Shape)
	}
	if v := got.Data.Get(7, 1, 2); v != 712 {
		t.Errorf("value: got %g, want 712", v)
	}
}

// TestRead_Float32WithFill tests reading a float32 variable whose fill
// value must map to NaN.
func TestRead_Float32WithFill(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pr.nc")
	nc, err := netcdf.CreateFile(path, netcdf.CLOBBER)
	if err != nil {
		t.Fatalf("create nc: %v", err)
	}
	latDim, _ := nc.AddDim("latitude", 2)
	lonDim, _ := nc.AddDim("longitude", 2)
	vlat, _ := nc.AddVar("latitude", netcdf.DOUBLE, []netcdf.Dim{latDim})
	vlon, _ := nc.AddVar("longitude", netcdf.DOUBLE, []netcdf.Dim{lonDim})
	vpr, _ := nc.AddVar("pr", netcdf.FLOAT, []netcdf.Dim{latDim, lonDim})
	if err := vpr.Attr("_FillValue").WriteFloat32s([]float32{9.96921e36}); err != nil {
		t.Fatalf("write fill: %v", err)
	}
	if err := nc.EndDef(); err != nil {
		t.Fatalf("enddef: %v", err)
	}
	if err := vlat.WriteFloat64s([]float64{0, 2.5}); err != nil {
		t.Fatalf("write lat: %v", err)
	}
	if err := vlon.WriteFloat64s([]float64{0, 2.5}); err != nil {
		t.Fatalf("write lon: %v", err)
	}
	if err := vpr.WriteFloat32s([]float32{1.5, 9.96921e36, 2.5, 3.5}); err != nil {
		t.Fatalf("write pr: %v", err)
	}
	if err := nc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	got, err := NewStore().Read(path, "pr")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if v := got.Data.Get(0, 0); math.Abs(v-1.5) > 1e-6 {
		t.Errorf("value: got %g, want 1.5", v)
	}
	if v := got.Data.Get(0, 1); !math.IsNaN(v) {
		t.Errorf("fill value not mapped to NaN: %g", v)
	}
}

// TestRead_MissingVariable tests the error for an absent variable.
func TestRead_MissingVariable(t *testing.T) {
	s := NewStore()
	path := filepath.Join(t.TempDir(), "tas.nc")
	if err := s.Write(sampleField(1), path); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := s.Read(path, "nothere"); err == nil {
		t.Error("expected error for missing variable")
	}
}

func TestParseTimeUnits(t *testing.T) {
	step, ref, err := parseTimeUnits("days since 1850-01-01 00:00:00")
	if err != nil {
		t.Fatalf("parseTimeUnits failed: %v", err)
	}
	if step != 24*time.Hour {
		t.Errorf("step: got %v", step)
	}
	if ref.Year() != 1850 || ref.Month() != time.January {
		t.Errorf("reference: got %v", ref)
	}

	if _, _, err := parseTimeUnits("fortnights since 1850-01-01"); err == nil {
		t.Error("expected error for unsupported step")
	}
	if _, _, err := parseTimeUnits("no reference here"); err == nil {
		t.Error("expected error for malformed units")
	}
}
