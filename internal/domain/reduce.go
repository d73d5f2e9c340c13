package domain

import (
	"fmt"
	"sync"
	"time"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/stat"
)

// SeriesReducer collapses one grid cell's time series to a single value.
// Reducers are pure and cell-independent, so mapping one over a grid is
// embarrassingly parallel. Each reducer carries its own missing-value
// policy.
type SeriesReducer interface {
	Reduce(series []float64) float64
}

// TrendReducer returns the ordinary-least-squares slope of the series
// against a 0-based integer index. Any missing value makes the result
// missing.
type TrendReducer struct{}

func (TrendReducer) Reduce(series []float64) float64 {
	if hasMissing(series) || len(series) < 2 {
		return nan
	}
	_, slope := stat.LinearRegression(indexWeights(len(series)), series, nil, false)
	return slope
}

// DetrendedStdReducer removes a least-squares linear fit from the series and
// returns the standard deviation of the residuals. A series containing any
// missing value becomes entirely missing rather than partially detrended.
type DetrendedStdReducer struct{}

func (DetrendedStdReducer) Reduce(series []float64) float64 {
	if hasMissing(series) || len(series) < 2 {
		return nan
	}
	xs := indexWeights(len(series))
	alpha, beta := stat.LinearRegression(xs, series, nil, false)
	resid := make([]float64, len(series))
	for i, v := range series {
		resid[i] = v - (alpha + beta*xs[i])
	}
	return stat.PopStdDev(resid, nil)
}

func indexWeights(n int) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	return xs
}

// MapSeries applies a reducer to every cell's time series, producing a
// [lat, lon] field. Rows are reduced concurrently; results do not depend on
// execution order because cells are independent.
func MapSeries(f *Field, r SeriesReducer) *Field {
	nLat, nLon := len(f.Lat), len(f.Lon)
	out := sparse.ZerosDense(nLat, nLon)
	var wg sync.WaitGroup
	for j := 0; j < nLat; j++ {
		wg.Add(1)
		go func(j int) {
			defer wg.Done()
			series := make([]float64, len(f.Time))
			for i := 0; i < nLon; i++ {
				f.Series(series, j, i)
				out.Set(r.Reduce(series), j, i)
			}
		}(j)
	}
	wg.Wait()
	return f.withData(out, nil)
}

// Aggregate collapses the time axis according to kind. None and CORR pass
// the field through; CORR's reduction happens across two fields at the
// derived-diagnostic level.
func Aggregate(f *Field, kind Aggregation) (*Field, error) {
	switch kind {
	case AggNone, AggCorr:
		return f, nil
	case AggClim:
		return climatologyMean(f), nil
	case AggStd:
		return MapSeries(f, DetrendedStdReducer{}), nil
	case AggTrend:
		g := MapSeries(f, TrendReducer{})
		g.Units = fmt.Sprintf("%s year**-1", f.Units)
		return g, nil
	case AggCyc:
		return monthlyCycle(f), nil
	}
	return nil, fmt.Errorf("%w: time_aggregation=%q", ErrUnsupportedAggregation, kind)
}

// climatologyMean averages within each calendar year first and then across
// the per-year means. The double averaging avoids biasing the climatology
// toward years with more timesteps. Missing values propagate strictly: one
// missing timestep poisons its year, one missing year poisons the cell.
func climatologyMean(f *Field) *Field {
	nLat, nLon := len(f.Lat), len(f.Lon)
	years, groups := groupBy(f.Time, func(t time.Time) int { return t.Year() })
	out := sparse.ZerosDense(nLat, nLon)
	var wg sync.WaitGroup
	for j := 0; j < nLat; j++ {
		wg.Add(1)
		go func(j int) {
			defer wg.Done()
			for i := 0; i < nLon; i++ {
				sum := 0.0
				for _, year := range years {
					ySum := 0.0
					for _, t := range groups[year] {
						ySum += f.Data.Get(t, j, i)
					}
					sum += ySum / float64(len(groups[year]))
				}
				// NaN sums already carry strict propagation through here.
				out.Set(sum/float64(len(years)), j, i)
			}
		}(j)
	}
	wg.Wait()
	return f.withData(out, nil)
}

// monthlyCycle averages by calendar month, producing 12 values per cell.
// Unlike the climatology it skips missing values; a month with no valid
// sample is missing.
func monthlyCycle(f *Field) *Field {
	nLat, nLon := len(f.Lat), len(f.Lon)
	_, groups := groupBy(f.Time, func(t time.Time) int { return int(t.Month()) })
	out := sparse.ZerosDense(12, nLat, nLon)
	for m := 1; m <= 12; m++ {
		steps := groups[m]
		for j := 0; j < nLat; j++ {
			for i := 0; i < nLon; i++ {
				sum, n := 0.0, 0
				for _, t := range steps {
					v := f.Data.Get(t, j, i)
					if !IsMissing(v) {
						sum += v
						n++
					}
				}
				if n == 0 {
					out.Set(nan, m-1, j, i)
				} else {
					out.Set(sum/float64(n), m-1, j, i)
				}
			}
		}
	}
	return f.withData(out, nil)
}

// Correlate computes the per-cell Pearson correlation coefficient of two
// time-resolved fields over their shared time axis. Both fields must be on
// the same grid with equally long time axes. Cells with any missing value
// in either series are missing. The output unit is dimensionless.
func Correlate(a, b *Field) (*Field, error) {
	if len(a.Time) != len(b.Time) {
		return nil, fmt.Errorf("%w: time axes differ (%d vs %d timesteps)",
			ErrInvalidDerivation, len(a.Time), len(b.Time))
	}
	if len(a.Lat) != len(b.Lat) || len(a.Lon) != len(b.Lon) {
		return nil, fmt.Errorf("%w: grids differ", ErrInvalidDerivation)
	}
	if len(a.Time) < 3 {
		return nil, fmt.Errorf("%w: correlation needs at least 3 timesteps, got %d",
			ErrInvalidDerivation, len(a.Time))
	}
	nLat, nLon := len(a.Lat), len(a.Lon)
	out := sparse.ZerosDense(nLat, nLon)
	var wg sync.WaitGroup
	for j := 0; j < nLat; j++ {
		wg.Add(1)
		go func(j int) {
			defer wg.Done()
			sa := make([]float64, len(a.Time))
			sb := make([]float64, len(b.Time))
			for i := 0; i < nLon; i++ {
				a.Series(sa, j, i)
				b.Series(sb, j, i)
				if hasMissing(sa) || hasMissing(sb) {
					out.Set(nan, j, i)
					continue
				}
				out.Set(stat.Correlation(sa, sb, nil), j, i)
			}
		}(j)
	}
	wg.Wait()
	g := a.withData(out, nil)
	g.Units = "1"
	return g, nil
}

// groupBy partitions time indices by key, preserving first-seen key order.
func groupBy(times []time.Time, key func(time.Time) int) ([]int, map[int][]int) {
	var keys []int
	groups := make(map[int][]int)
	for t, ts := range times {
		k := key(ts)
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], t)
	}
	return keys, groups
}
