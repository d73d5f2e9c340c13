package domain

import (
	"fmt"
	"math"
)

// The fixed cell-centered 2.5 degree global grid every diagnostic is
// computed on. All masks and region corner indices assume exactly these
// coordinates, so any deviation is a hard failure.
const (
	GridStep = 2.5
	LatStart = -88.75
	LatEnd   = 88.75
	LonStart = -178.75
	LonEnd   = 178.75
	NLat     = 72
	NLon     = 144
)

// gridTolerance absorbs float32 coordinate storage in source files.
const gridTolerance = 1e-4

// FixedLats returns the latitude coordinates of the fixed grid, ascending.
func FixedLats() []float64 {
	lats := make([]float64, NLat)
	for i := range lats {
		lats[i] = LatStart + float64(i)*GridStep
	}
	return lats
}

// FixedLons returns the longitude coordinates of the fixed grid, ascending.
func FixedLons() []float64 {
	lons := make([]float64, NLon)
	for i := range lons {
		lons[i] = LonStart + float64(i)*GridStep
	}
	return lons
}

// ValidateGrid asserts that the field's spatial coordinates exactly equal
// the fixed global grid. It guards every downstream cell-indexed operation
// against silent misalignment.
func ValidateGrid(f *Field) error {
	if len(f.Lat) != NLat {
		return fmt.Errorf("%w: got %d latitudes, want %d", ErrGridMismatch, len(f.Lat), NLat)
	}
	if len(f.Lon) != NLon {
		return fmt.Errorf("%w: got %d longitudes, want %d", ErrGridMismatch, len(f.Lon), NLon)
	}
	for i, lat := range f.Lat {
		want := LatStart + float64(i)*GridStep
		if math.Abs(lat-want) > gridTolerance {
			return fmt.Errorf("%w: lat[%d]=%g, want %g", ErrGridMismatch, i, lat, want)
		}
	}
	for i, lon := range f.Lon {
		want := LonStart + float64(i)*GridStep
		if math.Abs(lon-want) > gridTolerance {
			return fmt.Errorf("%w: lon[%d]=%g, want %g", ErrGridMismatch, i, lon, want)
		}
	}
	return nil
}
