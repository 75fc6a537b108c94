package standards

import (
	"errors"
	"fmt"
	"strings"
)

// WasteLevel selects a column of the waste allowance table.
type WasteLevel string

const (
	WasteMinimum  WasteLevel = "minimum"
	WasteStandard WasteLevel = "standard"
	WasteMaximum  WasteLevel = "maximum"
)

var (
	ErrUnknownMaterial   = errors.New("unknown material")
	ErrUnknownWasteLevel = errors.New("unknown waste level")
)

type wasteRow struct {
	minimum, standard, maximum float64
}

// wasteFactors are percentages of surplus quantity procured per material.
var wasteFactors = map[string]wasteRow{
	"concrete":   {minimum: 3, standard: 5, maximum: 8},
	"steel":      {minimum: 2, standard: 3, maximum: 5},
	"formwork":   {minimum: 5, standard: 10, maximum: 15},
	"blockwork":  {minimum: 3, standard: 5, maximum: 7},
	"plastering": {minimum: 5, standard: 8, maximum: 12},
	"cement":     {minimum: 2, standard: 3, maximum: 5},
	"sand":       {minimum: 5, standard: 10, maximum: 15},
	"tiles":      {minimum: 5, standard: 8, maximum: 12},
	"paint":      {minimum: 5, standard: 10, maximum: 15},
}

// GetWasteFactor returns the waste allowance percentage for a material.
func GetWasteFactor(material string, level WasteLevel) (float64, error) {
	row, ok := wasteFactors[strings.ToLower(strings.TrimSpace(material))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownMaterial, material)
	}
	switch level {
	case WasteMinimum:
		return row.minimum, nil
	case WasteStandard, "":
		return row.standard, nil
	case WasteMaximum:
		return row.maximum, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownWasteLevel, level)
	}
}

// CalculateQuantityWithWaste inflates base by the material's waste allowance.
func CalculateQuantityWithWaste(base float64, material string, level WasteLevel) (float64, error) {
	factor, err := GetWasteFactor(material, level)
	if err != nil {
		return 0, err
	}
	return base * (1 + factor/100), nil
}
