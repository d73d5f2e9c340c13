package domain

import "errors"

// Sentinel errors for the diagnostic pipeline. Callers match them with
// errors.Is; the wrapped message carries the offending variable, unit,
// region, or season token.
var (
	// ErrGridMismatch reports coordinates that do not equal the fixed
	// 2.5 degree global grid.
	ErrGridMismatch = errors.New("grid does not match fixed 2.5 degree global grid")

	// ErrUnsupportedUnit reports a declared unit that is neither canonical
	// nor a convertible alias for the variable.
	ErrUnsupportedUnit = errors.New("unsupported unit")

	// ErrUnknownRegionFile reports a region token that is neither a catalog
	// region nor a readable corner file.
	ErrUnknownRegionFile = errors.New("unknown region file")

	// ErrInvalidRegionGeometry reports a malformed custom corner file.
	ErrInvalidRegionGeometry = errors.New("invalid region geometry")

	// ErrEmptyRegion reports a mask that leaves no data.
	ErrEmptyRegion = errors.New("all grid points masked")

	// ErrEmptySelection reports a time window or season that selects no
	// timesteps.
	ErrEmptySelection = errors.New("no timesteps selected")

	// ErrUnsupportedSeason reports an unrecognized season token.
	ErrUnsupportedSeason = errors.New("unsupported season")

	// ErrUnsupportedAggregation reports an unrecognized aggregation token.
	ErrUnsupportedAggregation = errors.New("unsupported time aggregation")

	// ErrInvalidDerivation reports a derived-diagnostic spec that cannot be
	// dispatched (wrong constituent count, identical correlation variables,
	// unknown derivation name).
	ErrInvalidDerivation = errors.New("invalid derivation spec")
)
