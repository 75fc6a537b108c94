// Package standards holds the engineering reference tables (productivity
// rates, crew compositions, waste allowances, Saudi Building Code rules) and
// the pure functions that turn a quantity into a duration, a resource bill
// and a waste-adjusted purchase quantity.
package standards

import (
	"errors"
	"fmt"
	"math"
)

// Activity is a construction activity with its own productivity table.
type Activity string

const (
	ActivityConcrete   Activity = "concrete"
	ActivitySteel      Activity = "steel"
	ActivityFormwork   Activity = "formwork"
	ActivityBlockwork  Activity = "blockwork"
	ActivityPlastering Activity = "plastering"
)

// Conditions selects a column of the productivity table.
type Conditions string

const (
	ConditionsOptimal  Conditions = "optimal"
	ConditionsStandard Conditions = "standard"
	ConditionsMinimum  Conditions = "minimum"
)

var (
	ErrUnknownActivity   = errors.New("unknown activity")
	ErrUnknownConditions = errors.New("unknown site conditions")
	ErrInvalidQuantity   = errors.New("quantity must be a positive number")
)

// ProductivityRate is the output of one crew per day under each condition.
type ProductivityRate struct {
	Unit     string
	Optimal  float64
	Standard float64
	Minimum  float64
}

// Rate returns the units/day figure for the given conditions.
func (p ProductivityRate) Rate(c Conditions) (float64, error) {
	switch c {
	case ConditionsOptimal:
		return p.Optimal, nil
	case ConditionsStandard, "":
		return p.Standard, nil
	case ConditionsMinimum:
		return p.Minimum, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownConditions, c)
	}
}

// productivityRates is the per-crew daily output table.
var productivityRates = map[Activity]ProductivityRate{
	ActivityConcrete:   {Unit: "m³", Optimal: 30, Standard: 25, Minimum: 20},
	ActivitySteel:      {Unit: "ton", Optimal: 2.5, Standard: 2, Minimum: 1.5},
	ActivityFormwork:   {Unit: "m²", Optimal: 40, Standard: 30, Minimum: 20},
	ActivityBlockwork:  {Unit: "m²", Optimal: 15, Standard: 12, Minimum: 10},
	ActivityPlastering: {Unit: "m²", Optimal: 25, Standard: 20, Minimum: 15},
}

// Activities lists the activities known to the standards tables, in a
// stable order.
func Activities() []Activity {
	return []Activity{
		ActivityConcrete,
		ActivitySteel,
		ActivityFormwork,
		ActivityBlockwork,
		ActivityPlastering,
	}
}

// IsKnown reports whether a has a productivity table.
func (a Activity) IsKnown() bool {
	_, ok := productivityRates[a]
	return ok
}

// Productivity returns the productivity table row for an activity.
func Productivity(activity Activity) (ProductivityRate, error) {
	rate, ok := productivityRates[activity]
	if !ok {
		return ProductivityRate{}, fmt.Errorf("%w: %q", ErrUnknownActivity, activity)
	}
	return rate, nil
}

// CalculateDuration returns the whole number of working days one crew needs
// to place quantity units of activity under the given conditions.
func CalculateDuration(quantity float64, activity Activity, conditions Conditions) (int, error) {
	if !(quantity > 0) || math.IsInf(quantity, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidQuantity, quantity)
	}
	row, err := Productivity(activity)
	if err != nil {
		return 0, err
	}
	rate, err := row.Rate(conditions)
	if err != nil {
		return 0, err
	}
	return int(math.Ceil(quantity / rate)), nil
}
