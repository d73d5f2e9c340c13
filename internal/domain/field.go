// Package domain holds the core types and pure transforms of the climate
// diagnostics pipeline: the labeled Field array, the fixed global grid
// contract, unit standardization, time/season selection, and the temporal
// reducers.
package domain

import (
	"math"
	"time"

	"github.com/ctessum/sparse"
)

// DefaultFillValue is used when the input carries no _FillValue attribute.
const DefaultFillValue = 1e20

// Field is a labeled numeric array on named dimensions. The data shape is
// [time, lat, lon] while a time axis is present, [lat, lon] after temporal
// reduction, and [12, lat, lon] for a monthly cycle. Missing values are NaN
// in memory and FillValue on disk.
type Field struct {
	Name string
	Data *sparse.DenseArray

	// Time is nil once the time axis has been reduced away. For monthly
	// cycle output the leading dimension is calendar month, not Time.
	Time []time.Time
	Lat  []float64
	Lon  []float64

	Units        string
	LongName     string
	StandardName string
	FillValue    float64

	// Encoding is an opaque attribute bag preserved across transforms so a
	// written file round-trips the source metadata.
	Encoding map[string]string
}

// HasTime reports whether the field still carries a time axis.
func (f *Field) HasTime() bool { return len(f.Time) > 0 }

// NumCells returns the number of spatial grid cells.
func (f *Field) NumCells() int { return len(f.Lat) * len(f.Lon) }

// Series copies the time series at cell (j, i) into dst, which must have
// length len(f.Time).
func (f *Field) Series(dst []float64, j, i int) {
	for t := range f.Time {
		dst[t] = f.Data.Get(t, j, i)
	}
}

// withData returns a copy of the field metadata around new data and an
// optional new time axis. Coordinate slices and the encoding bag are shared,
// not copied; transforms never mutate them.
func (f *Field) withData(data *sparse.DenseArray, tax []time.Time) *Field {
	g := *f
	g.Data = data
	g.Time = tax
	return &g
}

// withGrid is withData plus replacement spatial coordinates, used by
// extent-cropping transforms.
func (f *Field) withGrid(data *sparse.DenseArray, tax []time.Time, lat, lon []float64) *Field {
	g := f.withData(data, tax)
	g.Lat = lat
	g.Lon = lon
	return g
}

var nan = math.NaN()

// IsMissing reports whether v is a missing value.
func IsMissing(v float64) bool { return math.IsNaN(v) }

func hasMissing(series []float64) bool {
	for _, v := range series {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
