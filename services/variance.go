package services

import "projectsync/models"

// LineCost is one side of an estimated-vs-actual comparison.
type LineCost struct {
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	TotalCost float64 `json:"totalCost"`
}

// VarianceReport is actual minus estimated for each figure of a line.
type VarianceReport struct {
	QuantityVariance   float64               `json:"quantityVariance"`
	PriceVariance      float64               `json:"priceVariance"`
	TotalVariance      float64               `json:"totalVariance"`
	PercentageVariance float64               `json:"percentageVariance"`
	Status             models.VarianceStatus `json:"status"`
}

// CompareEstimatedVsActual derives the variance of actual against estimated.
// A zero estimated total gives a percentage of 0.
func CompareEstimatedVsActual(estimated, actual LineCost) VarianceReport {
	total := actual.TotalCost - estimated.TotalCost
	return VarianceReport{
		QuantityVariance:   actual.Quantity - estimated.Quantity,
		PriceVariance:      actual.UnitPrice - estimated.UnitPrice,
		TotalVariance:      total,
		PercentageVariance: percentOfBase(total, estimated.TotalCost),
		Status:             varianceStatus(total),
	}
}

// varianceTolerance absorbs floating-point noise when classifying a variance
// as on budget.
const varianceTolerance = 0.005

func varianceStatus(amount float64) models.VarianceStatus {
	switch {
	case amount > varianceTolerance:
		return models.VarianceOver
	case amount < -varianceTolerance:
		return models.VarianceUnder
	default:
		return models.VarianceOn
	}
}

// compareBreakdowns fills the variance block of a BOQ item's cost comparison.
func compareBreakdowns(estimated, actual models.CostBreakdown) models.CostVariance {
	amount := actual.TotalCost - estimated.TotalCost
	return models.CostVariance{
		Amount:     amount,
		Percentage: percentOfBase(amount, estimated.TotalCost),
	}
}

// taskVariance compares a task's actual spend with its planned total.
func taskVariance(planned models.PlannedCosts, actual models.ActualCosts) models.TaskVariance {
	amount := actual.Total - planned.Total
	return models.TaskVariance{
		Amount:     amount,
		Percentage: percentOfBase(amount, planned.Total),
		Status:     varianceStatus(amount),
	}
}
