package services

import (
	"math"
	"time"

	"projectsync/models"
)

// CalculateEarnedValue computes the EVM figures of a task as of asOf. The
// budget at completion is the planned total; planned value accrues linearly
// per elapsed whole day over the planned duration.
func CalculateEarnedValue(task models.ScheduleTask, asOf time.Time) models.EarnedValue {
	bac := task.FinancialIntegration.PlannedCosts.Total
	pv := bac * elapsedFraction(task, asOf)
	ev := bac * task.ActualProgress.PercentageComplete / 100
	ac := task.FinancialIntegration.ActualCosts.Total

	cpi := safeDiv(ev, ac)
	eac := bac
	if cpi > 0 {
		eac = bac / cpi
	}

	return models.EarnedValue{
		PlannedValue:     pv,
		EarnedValue:      ev,
		ActualCost:       ac,
		CPI:              cpi,
		SPI:              safeDiv(ev, pv),
		CostVariance:     ev - ac,
		ScheduleVariance: ev - pv,
		EAC:              eac,
		ETC:              math.Max(eac-ac, 0),
		VAC:              bac - eac,
		CalculatedAt:     asOf,
	}
}

func elapsedFraction(task models.ScheduleTask, asOf time.Time) float64 {
	if task.Duration <= 0 {
		return 0
	}
	days := math.Floor(asOf.Sub(task.StartDate).Hours() / 24)
	return math.Min(math.Max(days/float64(task.Duration), 0), 1)
}
