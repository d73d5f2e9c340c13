// Package regrid remaps fields from arbitrary rectilinear lat/lon grids
// onto the fixed 2.5 degree global grid using bilinear interpolation in
// float64 precision.
package regrid

import (
	"fmt"
	"math"
	"sort"

	"github.com/ctessum/sparse"

	"github.com/harel-coffee/ClimWIP-auto/internal/domain"
)

// gridCell is one source cell with values at its four corners.
type gridCell struct {
	x0, x1, y0, y1     float64
	v00, v10, v01, v11 float64
}

// interpolate evaluates the bilinear surface of the cell at (x, y):
//
//	f(x,y) = (1-t)(1-u)v00 + t(1-u)v10 + (1-t)u v01 + tu v11
//
// with t, u the normalized coordinates inside the cell. A missing corner
// makes the result missing.
func (c gridCell) interpolate(x, y float64) float64 {
	if math.IsNaN(c.v00) || math.IsNaN(c.v10) || math.IsNaN(c.v01) || math.IsNaN(c.v11) {
		return math.NaN()
	}
	t := (x - c.x0) / (c.x1 - c.x0)
	u := (y - c.y0) / (c.y1 - c.y0)
	t = math.Max(0, math.Min(1, t))
	u = math.Max(0, math.Min(1, u))
	return (1-t)*(1-u)*c.v00 + t*(1-u)*c.v10 + (1-t)*u*c.v01 + t*u*c.v11
}

// Remapper interpolates fields onto the fixed global grid.
type Remapper struct{}

// NewRemapper creates a bilinear remapper targeting the fixed grid.
func NewRemapper() *Remapper { return &Remapper{} }

// Remap interpolates every time slice of f onto the fixed 2.5 degree grid.
// Source coordinates must be strictly ascending. Target cells outside the
// source extent are missing.
func (r *Remapper) Remap(f *domain.Field) (*domain.Field, error) {
	if err := validateAxis("lat", f.Lat); err != nil {
		return nil, err
	}
	if err := validateAxis("lon", f.Lon); err != nil {
		return nil, err
	}

	lats, lons := domain.FixedLats(), domain.FixedLons()
	latIdx := bracketIndices(f.Lat, lats)
	lonIdx := bracketIndices(f.Lon, lons)

	nt := 1
	shape := []int{len(lats), len(lons)}
	if f.HasTime() {
		nt = len(f.Time)
		shape = []int{nt, len(lats), len(lons)}
	}
	out := sparse.ZerosDense(shape...)

	for t := 0; t < nt; t++ {
		for j, lat := range lats {
			jsrc := latIdx[j]
			for i, lon := range lons {
				isrc := lonIdx[i]
				v := math.NaN()
				if jsrc >= 0 && isrc >= 0 {
					v = r.cellAt(f, t, jsrc, isrc).interpolate(lon, lat)
				}
				if f.HasTime() {
					out.Set(v, t, j, i)
				} else {
					out.Set(v, j, i)
				}
			}
		}
	}

	g := *f
	g.Data = out
	g.Lat = lats
	g.Lon = lons
	return &g, nil
}

func (r *Remapper) cellAt(f *domain.Field, t, jsrc, isrc int) gridCell {
	get := func(j, i int) float64 {
		if f.HasTime() {
			return f.Data.Get(t, j, i)
		}
		return f.Data.Get(j, i)
	}
	return gridCell{
		x0: f.Lon[isrc], x1: f.Lon[isrc+1],
		y0: f.Lat[jsrc], y1: f.Lat[jsrc+1],
		v00: get(jsrc, isrc), v10: get(jsrc, isrc+1),
		v01: get(jsrc+1, isrc), v11: get(jsrc+1, isrc+1),
	}
}

func validateAxis(name string, coords []float64) error {
	if len(coords) < 2 {
		return fmt.Errorf("source %s axis must have at least 2 coordinates", name)
	}
	for i := 1; i < len(coords); i++ {
		if coords[i] <= coords[i-1] {
			return fmt.Errorf("source %s coordinates must be strictly increasing", name)
		}
	}
	return nil
}

// bracketIndices returns, for each target coordinate, the index of the
// source interval containing it, or -1 when the target lies outside the
// source extent.
func bracketIndices(src, targets []float64) []int {
	out := make([]int, len(targets))
	for k, x := range targets {
		if x < src[0] || x > src[len(src)-1] {
			out[k] = -1
			continue
		}
		i := sort.SearchFloat64s(src, x)
		if i > 0 && (i == len(src) || src[i] != x) {
			i--
		}
		if i == len(src)-1 {
			i--
		}
		out[k] = i
	}
	return out
}
