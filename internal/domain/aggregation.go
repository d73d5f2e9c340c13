package domain

import "fmt"

// Aggregation selects how the time axis is collapsed.
type Aggregation string

const (
	AggNone  Aggregation = ""
	AggClim  Aggregation = "CLIM"
	AggStd   Aggregation = "STD"
	AggTrend Aggregation = "TREND"
	AggCyc   Aggregation = "CYC"
	AggCorr  Aggregation = "CORR"
)

// ParseAggregation validates an aggregation token.
func ParseAggregation(s string) (Aggregation, error) {
	switch Aggregation(s) {
	case AggNone, AggClim, AggStd, AggTrend, AggCyc, AggCorr:
		return Aggregation(s), nil
	}
	return "", fmt.Errorf("%w: time_aggregation=%q", ErrUnsupportedAggregation, s)
}

// Key renders the aggregation for output file naming.
func (a Aggregation) Key() string {
	if a == AggNone {
		return "None"
	}
	return string(a)
}
