package domain

import (
	"fmt"
	"time"

	"github.com/ctessum/sparse"
)

// sliceTime keeps the timesteps listed in keep, in order.
func sliceTime(f *Field, keep []int) *Field {
	nLat, nLon := len(f.Lat), len(f.Lon)
	out := sparse.ZerosDense(len(keep), nLat, nLon)
	tax := make([]time.Time, len(keep))
	cells := nLat * nLon
	for k, t := range keep {
		tax[k] = f.Time[t]
		copy(out.Elements[k*cells:(k+1)*cells], f.Data.Elements[t*cells:(t+1)*cells])
	}
	return f.withData(out, tax)
}

// MaskCells sets every cell whose keep entry is false to missing at all
// timesteps. keep is indexed j*len(Lon)+i. The grid extent is unchanged.
func MaskCells(f *Field, keep []bool) (*Field, error) {
	nLat, nLon := len(f.Lat), len(f.Lon)
	if len(keep) != nLat*nLon {
		return nil, fmt.Errorf("mask has %d cells, grid has %d", len(keep), nLat*nLon)
	}
	out := copyDense(f.Data)
	forEachSlice(f, func(t int) {
		for j := 0; j < nLat; j++ {
			for i := 0; i < nLon; i++ {
				if !keep[j*nLon+i] {
					setAt(out, f, nan, t, j, i)
				}
			}
		}
	})
	return f.withData(out, f.Time), nil
}

// CropToBox masks cells outside the lon/lat box and crops the grid extent to
// the box plus margin cells on each side. Margin cells outside the box stay
// missing.
func CropToBox(f *Field, lonMin, latMin, lonMax, latMax float64, margin int) (*Field, error) {
	j0, j1 := coordRange(f.Lat, latMin, latMax)
	i0, i1 := coordRange(f.Lon, lonMin, lonMax)
	if j0 > j1 || i0 > i1 {
		return nil, fmt.Errorf("%w: box (%g..%g, %g..%g) contains no grid cells",
			ErrEmptyRegion, lonMin, lonMax, latMin, latMax)
	}
	cj0, cj1 := clampIndex(j0-margin, len(f.Lat)), clampIndex(j1+margin, len(f.Lat))
	ci0, ci1 := clampIndex(i0-margin, len(f.Lon)), clampIndex(i1+margin, len(f.Lon))

	nLat, nLon := cj1-cj0+1, ci1-ci0+1
	var out *sparse.DenseArray
	if f.HasTime() {
		out = sparse.ZerosDense(len(f.Time), nLat, nLon)
	} else {
		out = sparse.ZerosDense(nLat, nLon)
	}
	forEachSlice(f, func(t int) {
		for j := cj0; j <= cj1; j++ {
			for i := ci0; i <= ci1; i++ {
				v := nan
				if j >= j0 && j <= j1 && i >= i0 && i <= i1 {
					v = getAt(f.Data, f, t, j, i)
				}
				if f.HasTime() {
					out.Set(v, t, j-cj0, i-ci0)
				} else {
					out.Set(v, j-cj0, i-ci0)
				}
			}
		}
	})
	return f.withGrid(out, f.Time, f.Lat[cj0:cj1+1], f.Lon[ci0:ci1+1]), nil
}

// FirstSliceAllMissing reports whether the first time slice (or the whole
// field, if the time axis is gone) contains no valid cell. Used for the
// post-masking EmptyRegion check.
func FirstSliceAllMissing(f *Field) bool {
	nLat, nLon := len(f.Lat), len(f.Lon)
	for j := 0; j < nLat; j++ {
		for i := 0; i < nLon; i++ {
			v := getAt(f.Data, f, 0, j, i)
			if !IsMissing(v) {
				return false
			}
		}
	}
	return true
}

// coordRange returns the first and last indices of coords falling inside
// [lo, hi]. When no coordinate falls inside, the returned range is empty
// (first > last).
func coordRange(coords []float64, lo, hi float64) (int, int) {
	first, last := len(coords), -1
	for i, c := range coords {
		if c >= lo && c <= hi {
			if i < first {
				first = i
			}
			last = i
		}
	}
	return first, last
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}

// forEachSlice invokes fn for every time index, or once with t=0 when the
// field has no time axis.
func forEachSlice(f *Field, fn func(t int)) {
	if !f.HasTime() {
		fn(0)
		return
	}
	for t := range f.Time {
		fn(t)
	}
}

func getAt(d *sparse.DenseArray, f *Field, t, j, i int) float64 {
	if f.HasTime() {
		return d.Get(t, j, i)
	}
	return d.Get(j, i)
}

func setAt(d *sparse.DenseArray, f *Field, v float64, t, j, i int) {
	if f.HasTime() {
		d.Set(v, t, j, i)
		return
	}
	d.Set(v, j, i)
}

func copyDense(d *sparse.DenseArray) *sparse.DenseArray {
	out := sparse.ZerosDense(d.Shape...)
	copy(out.Elements, d.Elements)
	return out
}
