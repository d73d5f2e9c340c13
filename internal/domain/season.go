package domain

import (
	"fmt"
	"time"
)

// Season selects three calendar months of a meteorological season, or the
// whole year for ANN.
type Season string

const (
	SeasonANN Season = "ANN"
	SeasonDJF Season = "DJF"
	SeasonMAM Season = "MAM"
	SeasonJJA Season = "JJA"
	SeasonSON Season = "SON"
)

var seasonMonths = map[Season][3]time.Month{
	SeasonDJF: {time.December, time.January, time.February},
	SeasonMAM: {time.March, time.April, time.May},
	SeasonJJA: {time.June, time.July, time.August},
	SeasonSON: {time.September, time.October, time.November},
}

// ParseSeason validates a season token. The empty string means ANN.
func ParseSeason(s string) (Season, error) {
	switch Season(s) {
	case "", SeasonANN:
		return SeasonANN, nil
	case SeasonDJF, SeasonMAM, SeasonJJA, SeasonSON:
		return Season(s), nil
	}
	return "", fmt.Errorf("%w: season=%q", ErrUnsupportedSeason, s)
}

// contains reports whether m falls in the season.
func (s Season) contains(m time.Month) bool {
	months, ok := seasonMonths[s]
	if !ok {
		return true // ANN
	}
	return m == months[0] || m == months[1] || m == months[2]
}

// SelectSeason keeps only the timesteps whose calendar month falls in the
// season. ANN is a no-op.
func SelectSeason(f *Field, s Season) (*Field, error) {
	switch s {
	case "", SeasonANN:
		return f, nil
	case SeasonDJF, SeasonMAM, SeasonJJA, SeasonSON:
	default:
		return nil, fmt.Errorf("%w: season=%q", ErrUnsupportedSeason, s)
	}
	keep := make([]int, 0, len(f.Time))
	for t, ts := range f.Time {
		if s.contains(ts.Month()) {
			keep = append(keep, t)
		}
	}
	if len(keep) == 0 {
		return nil, fmt.Errorf("%w: season %s has no timesteps in the record",
			ErrEmptySelection, s)
	}
	return sliceTime(f, keep), nil
}
