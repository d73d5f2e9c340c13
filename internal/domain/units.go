package domain

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
)

// unitConversion is a scale-then-offset arithmetic conversion.
type unitConversion struct {
	Scale  float64
	Offset float64
}

// UnitRule maps every accepted source unit of a variable onto one canonical
// unit. Aliases in Convert change values; aliases in Relabel are different
// spellings of the canonical unit and only rewrite the unit string.
type UnitRule struct {
	Canonical string
	Convert   map[string]unitConversion
	Relabel   []string

	// caseFold compares units case-insensitively, for unit strings with
	// many historical spellings (degC, pa).
	caseFold bool
}

// unitRules is the closed table of canonical units per variable. Extending
// coverage to a new variable means adding a rule here, not passing options
// at call time.
var unitRules = map[string]UnitRule{
	"pr": {
		Canonical: "mm/day",
		Convert: map[string]unitConversion{
			"kg m-2 s-1": {Scale: 86400}, // flux mass rate to depth per day
		},
		Relabel: []string{"mm"}, // E-OBS daily totals
	},
	"tas":    temperatureRule,
	"tasmax": temperatureRule,
	"tasmin": temperatureRule,
	"tos":    temperatureRule,
	"psl": {
		Canonical: "pa",
		Convert: map[string]unitConversion{
			"hpa": {Scale: 100},
		},
		caseFold: true,
	},
	"rsds": radiationRule,
	"rsus": radiationRule,
	"rlds": radiationRule,
	"rlus": radiationRule,
	"rnet": radiationRule,
}

// Spellings from the udunits database that all mean degrees Celsius.
var temperatureRule = UnitRule{
	Canonical: "degC",
	Convert: map[string]unitConversion{
		"k": {Scale: 1, Offset: -273.15},
	},
	Relabel:  []string{"degc", "deg_c", "celsius", "degreec", "degree_c", "degree_celsius"},
	caseFold: true,
}

var radiationRule = UnitRule{
	Canonical: "W m**-2",
	Relabel:   []string{"W m-2"},
}

func (r UnitRule) fold(unit string) string {
	if r.caseFold {
		return strings.ToLower(unit)
	}
	return unit
}

// StandardizeUnits converts the field's values to the variable's canonical
// unit in place and stamps the canonical unit string.
//
// A field with no declared unit is passed through unconverted with a logged
// warning: unit metadata is legitimately absent for some derived inputs and
// must not crash the pipeline. A variable with no registered rule is also
// passed through with a warning. A declared unit that is neither canonical
// nor a known alias is a hard ErrUnsupportedUnit, because silently passing
// wrong units through corrupts every downstream statistic.
func StandardizeUnits(f *Field, varn string, logger *slog.Logger) error {
	if f.Units == "" {
		logger.Warn("units attribute not found", "variable", varn)
		return nil
	}
	rule, ok := unitRules[varn]
	if !ok {
		logger.Warn("variable not covered by unit standardization", "variable", varn)
		return nil
	}
	unit := rule.fold(f.Units)
	if unit == rule.fold(rule.Canonical) {
		f.Units = rule.Canonical
		return nil
	}
	for _, alias := range rule.Relabel {
		if unit == rule.fold(alias) {
			f.Units = rule.Canonical
			return nil
		}
	}
	if conv, ok := rule.Convert[unit]; ok {
		scale := conv.Scale
		if scale == 0 {
			scale = 1
		}
		for i, v := range f.Data.Elements {
			if !math.IsNaN(v) {
				f.Data.Elements[i] = v*scale + conv.Offset
			}
		}
		f.Units = rule.Canonical
		return nil
	}
	return fmt.Errorf("%w: unit %q not covered for %s", ErrUnsupportedUnit, f.Units, varn)
}

// CanonicalUnit returns the canonical unit for a variable, if registered.
func CanonicalUnit(varn string) (string, bool) {
	rule, ok := unitRules[varn]
	if !ok {
		return "", false
	}
	return rule.Canonical, true
}
