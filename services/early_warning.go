package services

import (
	"fmt"
	"math"
	"time"

	"projectsync/models"
)

// Cost premiums applied to a task's planned daily cost. Early warnings price
// a delay as overtime; a re-schedule prices it as acceleration. The two
// figures come from different assumptions and have not been reconciled.
const (
	OvertimePremium     = 1.5
	AccelerationPremium = 1.3
)

// Recommendation actions.
const (
	ActionIncreaseLabor = "increase-labor"
	ActionAddShift      = "add-shift"
)

// Share of the cost overrun attributed to each recommendation.
const (
	increaseLaborShare = 0.6
	addShiftShare      = 0.4
)

const day = 24 * time.Hour

// daysBetween returns the whole days from a to b, rounding up.
func daysBetween(a, b time.Time) int {
	return int(math.Ceil(b.Sub(a).Hours() / 24))
}

// progressForecast is the shared delay projection behind AnalyzeProgress and
// PredictCompletion.
type progressForecast struct {
	valid            bool
	daysPassed       int
	expectedProgress float64
	delay            int
}

func forecastProgress(task models.ScheduleTask, observed float64, asOf time.Time) progressForecast {
	daysPassed := daysBetween(task.StartDate, asOf)
	if daysPassed <= 0 || task.Duration <= 0 {
		return progressForecast{}
	}
	f := progressForecast{
		valid:            true,
		daysPassed:       daysPassed,
		expectedProgress: math.Min(float64(daysPassed)/float64(task.Duration)*100, 100),
	}
	if observed >= f.expectedProgress || observed >= 100 {
		return f
	}

	// With no progress yet the remaining work is assumed to take the full
	// baseline duration from today. Days granted by approved revisions are
	// slack on top of the baseline, not more work.
	extraDays, _ := approvedRevisions(task.Revisions)
	daysNeeded := max(task.Duration-extraDays, 1)
	if rate := observed / float64(daysPassed); rate > 0 {
		daysNeeded = int(math.Ceil((100 - observed) / rate))
	}
	remaining := task.Duration - daysPassed
	f.delay = max(0, daysNeeded-remaining)
	return f
}

// ClassifyRisk buckets a predicted delay in days.
func ClassifyRisk(delay int) models.RiskLevel {
	switch {
	case delay <= 0:
		return models.RiskNone
	case delay <= 1:
		return models.RiskLow
	case delay <= 3:
		return models.RiskMedium
	case delay <= 7:
		return models.RiskHigh
	default:
		return models.RiskCritical
	}
}

// ClassifyImpact buckets a predicted delay by its effect on the project.
func ClassifyImpact(delay int) models.ProjectImpact {
	switch {
	case delay <= 0:
		return models.ImpactNone
	case delay <= 2:
		return models.ImpactMinor
	case delay <= 5:
		return models.ImpactModerate
	default:
		return models.ImpactMajor
	}
}

// AnalyzeProgress compares observed progress with the time-proportional
// expectation and predicts the resulting delay. The warning is inactive when
// no delay is predicted, including before the task has started.
func AnalyzeProgress(task models.ScheduleTask, observed float64, asOf time.Time) models.EarlyWarning {
	warning := models.EarlyWarning{
		RiskLevel:       models.RiskNone,
		ActualProgress:  observed,
		ImpactOnProject: models.ImpactNone,
		DetectedAt:      asOf,
	}

	f := forecastProgress(task, observed, asOf)
	if !f.valid {
		return warning
	}
	warning.ExpectedProgress = f.expectedProgress
	warning.Deviation = f.expectedProgress - observed
	warning.PredictedDelay = f.delay
	warning.RiskLevel = ClassifyRisk(f.delay)
	warning.ImpactOnProject = ClassifyImpact(f.delay)
	warning.Active = f.delay > 0
	if !warning.Active {
		return warning
	}

	dailyCost := safeDiv(task.FinancialIntegration.PlannedCosts.Total, float64(task.Duration))
	warning.CostOverrun = dailyCost * float64(f.delay) * OvertimePremium

	priority := models.RecommendHigh
	if f.delay > 3 {
		priority = models.RecommendImmediate
	}
	laborIncrease := int(math.Ceil(float64(f.delay) / float64(task.Duration) * 100))
	laborCost := warning.CostOverrun * increaseLaborShare
	shiftCost := warning.CostOverrun * addShiftShare
	warning.Recommendations = []models.Recommendation{
		{
			Action:        ActionIncreaseLabor,
			Description:   fmt.Sprintf("Increase labor by %d%% (estimated %s)", laborIncrease, FormatAmount(laborCost, "")),
			EstimatedCost: laborCost,
			Priority:      priority,
		},
		{
			Action:        ActionAddShift,
			Description:   fmt.Sprintf("Add a second shift to recover %d day(s) (estimated %s)", f.delay, FormatAmount(shiftCost, "")),
			EstimatedCost: shiftCost,
			Priority:      priority,
		},
	}
	return warning
}

// PredictCompletion projects the completion date from the current rate of
// progress. Confidence grows with the share of work already observed.
func PredictCompletion(task models.ScheduleTask, observed float64, asOf time.Time) models.ProgressPrediction {
	if observed >= 100 {
		return models.ProgressPrediction{ExpectedCompletionDate: asOf, Confidence: 100}
	}
	f := forecastProgress(task, observed, asOf)
	if !f.valid {
		return models.ProgressPrediction{ExpectedCompletionDate: task.EndDate}
	}
	return models.ProgressPrediction{
		ExpectedCompletionDate: task.EndDate.Add(time.Duration(f.delay) * day),
		ExpectedDelay:          f.delay,
		Confidence:             math.Min(50+observed/2, 95),
	}
}
