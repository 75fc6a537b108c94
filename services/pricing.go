// Package services implements the sync engine: BOQ and schedule integration,
// cost variance and earned value, early warnings and re-scheduling.
package services

import "math"

// CalcLineTotal returns the cost of qty units at unitPrice.
func CalcLineTotal(qty, unitPrice float64) float64 {
	return qty * unitPrice
}

// CalcMarkup returns percent of base. Used for overhead and contingency.
func CalcMarkup(base, percent float64) float64 {
	return base * percent / 100
}

// ItemCostTotals is the estimated and actual total of a single BOQ item.
type ItemCostTotals struct {
	Estimated float64
	Actual    float64
}

// ProjectTotals is the portfolio rollup of every BOQ item in a project.
type ProjectTotals struct {
	TotalEstimated     float64 `json:"totalEstimated"`
	TotalActual        float64 `json:"totalActual"`
	Variance           float64 `json:"variance"`
	VariancePercentage float64 `json:"variancePercentage"`
}

func CalcProjectTotals(items []ItemCostTotals) ProjectTotals {
	var totals ProjectTotals
	for _, item := range items {
		totals.TotalEstimated += item.Estimated
		totals.TotalActual += item.Actual
	}
	totals.Variance = totals.TotalActual - totals.TotalEstimated
	totals.VariancePercentage = percentOfBase(totals.Variance, totals.TotalEstimated)
	return totals
}

// percentOfBase returns amount/base*100, or 0 when base is zero or the
// result is not a finite number.
func percentOfBase(amount, base float64) float64 {
	if base == 0 {
		return 0
	}
	return finite(amount / base * 100)
}

// safeDiv returns a/b, or 0 when b is zero.
func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return finite(a / b)
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
