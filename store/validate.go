package store

import (
	"errors"
	"math"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"projectsync/models"
)

var errNotFinite = errors.New("must be a finite number")

func finite(value interface{}) error {
	if v, ok := value.(float64); ok && (math.IsNaN(v) || math.IsInf(v, 0)) {
		return errNotFinite
	}
	return nil
}

func validateBOQItem(item models.BOQItem) error {
	return validation.ValidateStruct(&item,
		validation.Field(&item.Description, validation.Required.When(item.Code == "").Error("code or description is required")),
		validation.Field(&item.Quantity, validation.Required, validation.By(finite), validation.Min(0.0).Exclusive()),
		validation.Field(&item.Unit, validation.Required, validation.Length(1, 32)),
		validation.Field(&item.FinancialIntegration, validation.By(func(value interface{}) error {
			fi, _ := value.(models.FinancialIntegration)
			return validation.Validate(fi.UnitPrice, validation.By(finite), validation.Min(0.0))
		})),
	)
}

func validateTask(task models.ScheduleTask) error {
	return validation.ValidateStruct(&task,
		validation.Field(&task.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&task.StartDate, validation.Required),
		validation.Field(&task.Duration, validation.Required, validation.Min(1)),
		validation.Field(&task.Status, validation.In(
			models.TaskNotStarted, models.TaskInProgress, models.TaskCompleted, models.TaskDelayed, models.TaskOnHold,
		)),
		validation.Field(&task.Priority, validation.In(
			models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityCritical,
		)),
	)
}

// ProgressUpdate is one field report against a task.
type ProgressUpdate struct {
	TaskID            string                `json:"taskId"`
	ProgressPercent   float64               `json:"progressPercent"`
	CompletedQuantity float64               `json:"completedQuantity"`
	UpdatedBy         string                `json:"updatedBy"`
	SiteConditions    models.SiteConditions `json:"siteConditions"`
}

func (u ProgressUpdate) Validate() error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.TaskID, validation.Required),
		validation.Field(&u.ProgressPercent, validation.By(finite), validation.Min(0.0), validation.Max(100.0)),
		validation.Field(&u.CompletedQuantity, validation.By(finite), validation.Min(0.0)),
	)
}

func validateActualCosts(c models.ActualCosts) error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Labor, validation.By(finite), validation.Min(0.0)),
		validation.Field(&c.Equipment, validation.By(finite), validation.Min(0.0)),
		validation.Field(&c.Materials, validation.By(finite), validation.Min(0.0)),
		validation.Field(&c.Overhead, validation.By(finite), validation.Min(0.0)),
	)
}

func validatePayment(p models.Payment) error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Date, validation.Required),
		validation.Field(&p.Amount, validation.Required, validation.By(finite), validation.Min(0.0).Exclusive()),
	)
}
