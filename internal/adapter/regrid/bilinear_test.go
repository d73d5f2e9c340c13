package regrid

import (
	"math"
	"testing"
	"time"

	"github.com/ctessum/sparse"

	"github.com/harel-coffee/ClimWIP-auto/internal/domain"
)

// planeField builds a source field whose values follow a plane
// v = a*lon + b*lat + c, which bilinear interpolation reproduces exactly.
func planeField(lat, lon []float64, a, b, c float64) *domain.Field {
	data := sparse.ZerosDense(1, len(lat), len(lon))
	for j, y := range lat {
		for i, x := range lon {
			data.Set(a*x+b*y+c, 0, j, i)
		}
	}
	return &domain.Field{
		Name: "tas",
		Data: data,
		Time: []time.Time{time.Date(2000, 1, 15, 0, 0, 0, 0, time.UTC)},
		Lat:  lat,
		Lon:  lon,
	}
}

// coarseAxis returns an ascending axis spanning [lo, hi] with n points.
func coarseAxis(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

// TestRemap_PlaneIsExact tests that a global planar field remaps onto the
// fixed grid without interpolation error.
func TestRemap_PlaneIsExact(t *testing.T) {
	src := planeField(coarseAxis(-90, 90, 37), coarseAxis(-180, 180, 73), 0.1, -0.2, 5)

	got, err := NewRemapper().Remap(src)
	if err != nil {
		t.Fatalf("Remap failed: %v", err)
	}
	if len(got.Lat) != domain.NLat || len(got.Lon) != domain.NLon {
		t.Fatalf("output grid: %dx%d, want %dx%d", len(got.Lat), len(got.Lon), domain.NLat, domain.NLon)
	}
	if err := domain.ValidateGrid(got); err != nil {
		t.Fatalf("output not on the fixed grid: %v", err)
	}
	for j, y := range got.Lat {
		for i, x := range got.Lon {
			want := 0.1*x - 0.2*y + 5
			v := got.Data.Get(0, j, i)
			if math.Abs(v-want) > 1e-9 {
				t.Fatalf("cell (%g, %g): expected %g, got %g", y, x, want, v)
			}
		}
	}
}

// TestRemap_OutsideSourceExtent tests that target cells the source does not
// cover come out missing.
func TestRemap_OutsideSourceExtent(t *testing.T) {
	// Regional source covering only 0..40 N, 0..40 E.
	src := planeField(coarseAxis(0, 40, 9), coarseAxis(0, 40, 9), 1, 0, 0)

	got, err := NewRemapper().Remap(src)
	if err != nil {
		t.Fatalf("Remap failed: %v", err)
	}
	// A southern-hemisphere cell is outside the source.
	if v := got.Data.Get(0, 0, 0); !math.IsNaN(v) {
		t.Errorf("cell outside source extent: expected missing, got %g", v)
	}
	// A cell inside the source is valid.
	var inside bool
	for j, y := range got.Lat {
		for i, x := range got.Lon {
			if y > 5 && y < 35 && x > 5 && x < 35 && !math.IsNaN(got.Data.Get(0, j, i)) {
				inside = true
			}
		}
	}
	if !inside {
		t.Error("no valid cell inside the source extent")
	}
}

// TestRemap_MissingCornerPropagates tests that a NaN source corner makes
// the affected target cells missing instead of contaminating the average.
func TestRemap_MissingCornerPropagates(t *testing.T) {
	src := planeField(coarseAxis(-90, 90, 19), coarseAxis(-180, 180, 37), 0, 0, 1)
	// Poison one interior source node.
	src.Data.Set(math.NaN(), 0, 9, 18)

	got, err := NewRemapper().Remap(src)
	if err != nil {
		t.Fatalf("Remap failed: %v", err)
	}
	var missing int
	for j := range got.Lat {
		for i := range got.Lon {
			if math.IsNaN(got.Data.Get(0, j, i)) {
				missing++
			}
		}
	}
	if missing == 0 {
		t.Error("expected some missing target cells around the poisoned node")
	}
	if missing > 200 {
		t.Errorf("missing region too large: %d cells", missing)
	}
}

// TestRemap_RejectsUnsortedAxis tests source axis validation.
func TestRemap_RejectsUnsortedAxis(t *testing.T) {
	src := planeField([]float64{10, 0, 20}, coarseAxis(0, 40, 5), 0, 0, 1)
	if _, err := NewRemapper().Remap(src); err == nil {
		t.Error("expected error for non-ascending latitude axis")
	}
}
