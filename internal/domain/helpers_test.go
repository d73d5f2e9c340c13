package domain

import (
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/ctessum/sparse"
)

// testLogger discards all output; unit-conversion warnings are asserted
// through behavior, not log text.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// monthlyTimes returns n mid-month timestamps starting January of year.
func monthlyTimes(year, n int) []time.Time {
	times := make([]time.Time, n)
	for i := range times {
		times[i] = time.Date(year, time.January, 15, 12, 0, 0, 0, time.UTC).AddDate(0, i, 0)
	}
	return times
}

// testField builds a [time, lat, lon] field with values from fill.
func testField(times []time.Time, lat, lon []float64, fill func(t, j, i int) float64) *Field {
	data := sparse.ZerosDense(len(times), len(lat), len(lon))
	for t := range times {
		for j := range lat {
			for i := range lon {
				data.Set(fill(t, j, i), t, j, i)
			}
		}
	}
	return &Field{
		Name:      "tas",
		Data:      data,
		Time:      times,
		Lat:       lat,
		Lon:       lon,
		Units:     "degC",
		FillValue: DefaultFillValue,
	}
}

// constSeries fills every cell with the same per-timestep value.
func constSeries(values []float64) func(t, j, i int) float64 {
	return func(t, j, i int) float64 { return values[t] }
}

func almostEqual(a, b, tol float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return math.Abs(a-b) <= tol
}
