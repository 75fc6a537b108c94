package services

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"projectsync/config"
	"projectsync/models"
	"projectsync/standards"
)

const (
	bookingPending     = "pending"
	procurementPending = "pending"
)

// Integrator keeps BOQ items and schedule tasks consistent with each other.
// Every sync returns an updated copy and never modifies its argument.
type Integrator struct {
	cfg    config.Config
	mapper *CategoryMapper
	logger *slog.Logger
	now    func() time.Time
}

func NewIntegrator(cfg config.Config, logger *slog.Logger) *Integrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Integrator{
		cfg:    cfg,
		mapper: NewCategoryMapper(cfg),
		logger: logger,
		now:    time.Now,
	}
}

func (in *Integrator) Config() config.Config {
	return in.cfg
}

// WithClock returns a copy of the integrator that reads time from now.
func (in *Integrator) WithClock(now func() time.Time) *Integrator {
	c := *in
	c.now = now
	return &c
}

// Now returns the integrator's clock reading.
func (in *Integrator) Now() time.Time {
	return in.now()
}

// SyncResult reports what a BOQ item sync changed.
type SyncResult struct {
	ScheduleUpdated  bool               `json:"scheduleUpdated"`
	FinanceUpdated   bool               `json:"financeUpdated"`
	Activity         standards.Activity `json:"activity,omitempty"`
	ActivityFallback bool               `json:"activityFallback,omitempty"`
	Warnings         []string           `json:"warnings,omitempty"`
	Errors           []string           `json:"errors,omitempty"`
}

func (r SyncResult) OK() bool {
	return len(r.Errors) == 0
}

// SyncBOQItem derives duration, resources, estimated cost and compliance for
// an item. When a step fails the returned item equals the input except for
// its sync status and error message.
func (in *Integrator) SyncBOQItem(item models.BOQItem) (models.BOQItem, SyncResult) {
	var result SyncResult
	out, err := in.syncBOQItem(item, &result)
	if err != nil {
		failed := item.Clone()
		failed.ScheduleIntegration.SyncStatus = models.SyncStatusError
		failed.ScheduleIntegration.SyncError = err.Error()
		result.Errors = append(result.Errors, err.Error())
		in.logger.Error("boq item sync failed",
			slog.String("project", item.ProjectID),
			slog.String("item", item.ID),
			slog.String("category", item.Category),
			slog.String("error", err.Error()),
		)
		return failed, SyncResult{Activity: result.Activity, ActivityFallback: result.ActivityFallback, Errors: result.Errors}
	}
	result.ScheduleUpdated = true
	result.FinanceUpdated = true
	return out, result
}

func (in *Integrator) syncBOQItem(item models.BOQItem, result *SyncResult) (models.BOQItem, error) {
	out := item.Clone()

	activity, fallback := in.mapper.Map(item.Category)
	result.Activity = activity
	result.ActivityFallback = fallback
	if fallback {
		in.logger.Warn("category mapped to default activity",
			slog.String("item", item.ID),
			slog.String("category", item.Category),
			slog.String("activity", string(activity)),
		)
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("category %q has no mapping; using %s", item.Category, activity))
	}

	duration, err := standards.CalculateDuration(item.Quantity, activity, standards.ConditionsStandard)
	if err != nil {
		return item, fmt.Errorf("duration: %w", err)
	}
	productivity, err := standards.Productivity(activity)
	if err != nil {
		return item, fmt.Errorf("productivity: %w", err)
	}
	demand, err := standards.CalculateResources(item.Quantity, activity)
	if err != nil {
		return item, fmt.Errorf("resources: %w", err)
	}
	wasteFactor, err := standards.GetWasteFactor(string(activity), standards.WasteStandard)
	if err != nil {
		return item, fmt.Errorf("waste factor: %w", err)
	}

	labor := in.laborResources(demand.Labor.Crew, duration)
	equipment := in.equipmentLines(item.ScheduleIntegration.Resources.Equipment, demand.Equipment, duration)
	materials, err := in.materialLines(item, activity, result)
	if err != nil {
		return item, err
	}

	si := &out.ScheduleIntegration
	si.Activity = activity
	si.ActivityFallback = fallback
	si.ProductivityRate = productivity.Standard
	si.CalculatedDuration = duration
	si.Resources = models.BOQResources{Labor: labor, Equipment: equipment, Materials: materials}
	si.SyncStatus = models.SyncStatusSynced
	si.SyncError = ""
	si.LastSyncDate = in.now()

	fi := &out.FinancialIntegration
	if fi.Currency == "" {
		fi.Currency = in.cfg.Currency
	}
	if fi.PaymentStatus == "" {
		fi.PaymentStatus = models.PaymentPending
	}
	estimated := models.CostBreakdown{
		MaterialCost:  si.Resources.TotalMaterialCost(),
		LaborCost:     labor.TotalCost,
		EquipmentCost: si.Resources.TotalEquipmentCost(),
	}
	estimated.TotalCost = estimated.Sum()
	fi.Comparison.Estimated = estimated
	fi.Comparison.Actual.TotalCost = fi.Comparison.Actual.Sum()
	fi.Comparison.Variance = compareBreakdowns(estimated, fi.Comparison.Actual)

	compliance := standards.CheckSBCCompliance(string(activity), item.EngineeringStandards.Parameters)
	es := &out.EngineeringStandards
	es.ApplicableCode = "SBC"
	es.CodeReference = compliance.CodeReference
	es.WasteAllowance = wasteFactor
	es.SafetyFactor = standards.SafetyFactor(activity)
	es.Compliant = compliance.Compliant
	es.Violations = compliance.Violations
	for _, v := range compliance.Violations {
		result.Warnings = append(result.Warnings, "compliance: "+v)
	}

	out.ApplyProgress(item.ActualProgress.CompletedQuantity)
	return out, nil
}

func (in *Integrator) laborResources(crew standards.CrewRatio, duration int) models.LaborResources {
	daily := in.cfg.LaborRates.DailyCost(crew)
	return models.LaborResources{
		Skilled:    crew.Skilled,
		Unskilled:  crew.Unskilled,
		Supervisor: crew.Supervisor,
		DailyCost:  daily,
		TotalCost:  daily * float64(duration),
	}
}

// equipmentLines costs one line per required equipment type. Lines already
// on the item keep their ID, count and booking status.
func (in *Integrator) equipmentLines(existing []models.EquipmentItem, types []string, duration int) []models.EquipmentItem {
	lines := make([]models.EquipmentItem, 0, len(types))
	for _, typ := range types {
		line := models.EquipmentItem{Type: typ, Quantity: 1, BookingStatus: bookingPending}
		if i := slices.IndexFunc(existing, func(e models.EquipmentItem) bool { return e.Type == typ }); i >= 0 {
			line = existing[i]
			if line.Quantity <= 0 {
				line.Quantity = 1
			}
		}
		if line.ID == "" {
			line.ID = uuid.NewString()
		}
		line.DailyRate = in.cfg.EquipmentRate(typ)
		line.Days = duration
		line.TotalCost = line.Quantity * line.DailyRate * float64(duration)
		lines = append(lines, line)
	}
	return lines
}

// primaryMaterialID marks the material line derived from the item itself
// when no explicit material bill was supplied.
func primaryMaterialID(itemID string) string {
	return itemID + "-primary"
}

var errInvalidMaterial = errors.New("invalid material line")

// materialLines prices the item's material bill. An item without one gets a
// single line for its own quantity plus waste, costed at its unit price.
func (in *Integrator) materialLines(item models.BOQItem, activity standards.Activity, result *SyncResult) (models.MaterialList, error) {
	existing := item.ScheduleIntegration.Resources.Materials
	derivedOnly := len(existing) == 1 && existing[0].ID == primaryMaterialID(item.ID)

	if len(existing) == 0 || derivedOnly {
		qty, err := standards.CalculateQuantityWithWaste(item.Quantity, string(activity), standards.WasteStandard)
		if err != nil {
			return nil, fmt.Errorf("materials: %w", err)
		}
		line := models.MaterialItem{
			ID:                primaryMaterialID(item.ID),
			Name:              string(activity),
			Quantity:          qty,
			Unit:              item.Unit,
			UnitCost:          item.FinancialIntegration.UnitPrice,
			TotalCost:         CalcLineTotal(qty, item.FinancialIntegration.UnitPrice),
			ProcurementStatus: procurementPending,
		}
		if derivedOnly && existing[0].ProcurementStatus != "" {
			line.ProcurementStatus = existing[0].ProcurementStatus
		}
		return models.MaterialList{line}, nil
	}

	lines := slices.Clone(existing)
	for i := range lines {
		m := &lines[i]
		if invalidAmount(m.Quantity) || invalidAmount(m.UnitCost) {
			return nil, fmt.Errorf("%w: %q quantity %v unit cost %v", errInvalidMaterial, m.Name, m.Quantity, m.UnitCost)
		}
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		if m.ProcurementStatus == "" {
			m.ProcurementStatus = procurementPending
		}
		if m.UnitCost == 0 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("material %q has no unit cost", m.Name))
		}
		m.TotalCost = CalcLineTotal(m.Quantity, m.UnitCost)
	}
	return lines, nil
}

func invalidAmount(v float64) bool {
	return v < 0 || math.IsNaN(v) || math.IsInf(v, 0)
}

// TaskSyncResult reports what a schedule task sync changed.
type TaskSyncResult struct {
	BOQUpdated     bool     `json:"boqUpdated"`
	FinanceUpdated bool     `json:"financeUpdated"`
	Errors         []string `json:"errors,omitempty"`
}

func (r TaskSyncResult) OK() bool {
	return len(r.Errors) == 0
}

// SyncScheduleTask recomputes the derived blocks of a task as of asOf. Each
// block is computed independently; a block whose step fails keeps its
// previous value.
func (in *Integrator) SyncScheduleTask(task models.ScheduleTask, asOf time.Time) (models.ScheduleTask, TaskSyncResult) {
	out := task.Clone()
	var result TaskSyncResult
	fail := func(step string, err error) {
		result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", step, err))
		in.logger.Error("task sync step failed",
			slog.String("project", task.ProjectID),
			slog.String("task", task.ID),
			slog.String("step", step),
			slog.String("error", err.Error()),
		)
	}

	financeOK := true
	if planned, err := plannedTotals(out.FinancialIntegration.PlannedCosts); err != nil {
		fail("planned costs", err)
		financeOK = false
	} else {
		out.FinancialIntegration.PlannedCosts = planned
	}
	out.FinancialIntegration.ActualCosts.Total = out.FinancialIntegration.ActualCosts.Sum()

	if delay, err := delayCosts(out); err != nil {
		fail("delay costs", err)
		financeOK = false
	} else {
		out.FinancialIntegration.DelayCosts = delay
	}

	out.FinancialIntegration.CashFlow.RemainingBalance = remainingBalance(out.FinancialIntegration.CashFlow)
	out.FinancialIntegration.Variance = taskVariance(out.FinancialIntegration.PlannedCosts, out.FinancialIntegration.ActualCosts)
	out.EarnedValue = CalculateEarnedValue(out, asOf)
	result.FinanceUpdated = financeOK

	out.BOQIntegration.AggregateQuantities = aggregateQuantities(out.BOQIntegration.LinkedBOQItems)
	out.BOQIntegration.SyncStatus = models.SyncStatusSynced
	out.BOQIntegration.LastSyncDate = asOf
	result.BOQUpdated = true

	out.Resources.Analysis = analyzeResources(out.Resources)
	return out, result
}

func plannedTotals(p models.PlannedCosts) (models.PlannedCosts, error) {
	components := []struct {
		name  string
		value float64
	}{
		{"labor", p.Labor},
		{"equipment", p.Equipment},
		{"materials", p.Materials},
		{"overhead", p.Overhead},
		{"contingency", p.Contingency},
	}
	for _, c := range components {
		if invalidAmount(c.value) {
			return p, fmt.Errorf("%s cost %v is not a valid amount", c.name, c.value)
		}
	}
	p.Total = p.Sum()
	return p, nil
}

// Delay cost factors.
const (
	overtimeRate         = 0.5
	managementShare      = 0.3
	lostOpportunityShare = 0.05
)

// delayCosts prices the days between the planned and actual end date.
func delayCosts(task models.ScheduleTask) (models.DelayCosts, error) {
	if task.ActualEndDate == nil || !task.ActualEndDate.After(task.EndDate) {
		return models.DelayCosts{}, nil
	}
	if task.Duration <= 0 {
		return models.DelayCosts{}, fmt.Errorf("task has no planned duration")
	}
	days := max(daysBetween(task.EndDate, *task.ActualEndDate), 0)
	if days == 0 {
		return models.DelayCosts{}, nil
	}

	planned := task.FinancialIntegration.PlannedCosts
	duration := float64(task.Duration)
	delay := float64(days)

	direct := models.DirectDelayCost{
		Overtime:  planned.Labor / duration * overtimeRate * delay,
		Equipment: planned.Equipment / duration * delay,
	}
	direct.Total = direct.Overtime + direct.Equipment

	overhead := planned.Overhead / duration * delay
	indirect := models.IndirectDelayCost{
		Overhead:        overhead,
		Management:      overhead * managementShare,
		LostOpportunity: planned.Total * lostOpportunityShare * delay / duration,
	}
	indirect.Total = indirect.Overhead + indirect.Management + indirect.LostOpportunity

	return models.DelayCosts{
		DelayDays: days,
		Direct:    direct,
		Indirect:  indirect,
		Total:     direct.Total + indirect.Total,
	}, nil
}

func remainingBalance(cf models.CashFlow) float64 {
	var planned, actual float64
	for _, p := range cf.PlannedPayments {
		planned += p.Amount
	}
	for _, p := range cf.ActualPayments {
		actual += p.Amount
	}
	return planned - actual
}

func aggregateQuantities(links []models.BOQContribution) map[string]float64 {
	agg := make(map[string]float64, len(links))
	for _, l := range links {
		agg[l.Unit] += l.Quantity
	}
	return agg
}

func analyzeResources(r models.TaskResources) models.ResourceAnalysis {
	analysis := models.ResourceAnalysis{Bottlenecks: []string{}, Recommendations: []string{}}
	crews := []struct {
		name string
		req  models.CrewRequirement
	}{
		{"skilled labor", r.Labor.Skilled},
		{"unskilled labor", r.Labor.Unskilled},
		{"supervision", r.Labor.Supervisor},
	}
	for _, c := range crews {
		if short := c.req.Required - c.req.Assigned; short > 0 {
			analysis.Bottlenecks = append(analysis.Bottlenecks,
				fmt.Sprintf("%s: %g of %g assigned", c.name, c.req.Assigned, c.req.Required))
			analysis.Recommendations = append(analysis.Recommendations,
				fmt.Sprintf("assign %g more to %s", math.Ceil(short), c.name))
		}
	}
	for _, e := range r.Equipment {
		if e.BookingStatus != "booked" {
			analysis.Bottlenecks = append(analysis.Bottlenecks, fmt.Sprintf("%s not booked", e.Type))
			analysis.Recommendations = append(analysis.Recommendations, fmt.Sprintf("book %g %s", e.Quantity, e.Type))
		}
	}
	analysis.Adequate = len(analysis.Bottlenecks) == 0
	return analysis
}

// MaterializeTask creates the schedule task that shadows a synced BOQ item.
// Actual figures start at zero.
func (in *Integrator) MaterializeTask(item models.BOQItem, taskID string, start time.Time) models.ScheduleTask {
	activity := item.ScheduleIntegration.Activity
	title := cases.Title(language.English).String(string(activity))

	task := models.ScheduleTask{
		ID:           taskID,
		ProjectID:    item.ProjectID,
		Name:         fmt.Sprintf("%s %s", item.Code, item.Description),
		Description:  fmt.Sprintf("%s works for BOQ item %s", title, item.Code),
		StartDate:    start,
		Status:       models.TaskNotStarted,
		Priority:     activityPriority(activity),
		Dependencies: []string{},
		FinancialIntegration: models.TaskFinancialIntegration{
			CashFlow: models.CashFlow{PlannedPayments: []models.Payment{}, ActualPayments: []models.Payment{}},
		},
		ActualProgress: models.TaskProgress{DailyProgress: []models.DailyProgress{}},
	}
	return in.ReplanFromBOQItem(task, item)
}

func activityPriority(a standards.Activity) models.Priority {
	switch a {
	case standards.ActivityConcrete, standards.ActivitySteel, standards.ActivityFormwork:
		return models.PriorityHigh
	default:
		return models.PriorityMedium
	}
}

// ReplanFromBOQItem refreshes a task's plan from its synced BOQ item: the
// duration and planned costs follow the item, plus whatever approved
// re-schedules added. Assigned crews and bookings are kept. Completed tasks
// only have their BOQ link refreshed.
func (in *Integrator) ReplanFromBOQItem(task models.ScheduleTask, item models.BOQItem) models.ScheduleTask {
	out := task.Clone()
	si := item.ScheduleIntegration

	out.BOQIntegration.LinkedBOQItems = []models.BOQContribution{{
		BOQItemID:        item.ID,
		Quantity:         item.Quantity,
		Unit:             item.Unit,
		ContributionPct:  100,
		ProductivityRate: si.ProductivityRate,
		CalculatedDays:   si.CalculatedDuration,
	}}
	out.BOQIntegration.AggregateQuantities = aggregateQuantities(out.BOQIntegration.LinkedBOQItems)
	if out.IsCompleted() || si.SyncStatus != models.SyncStatusSynced {
		return out
	}

	extraDays, extraCost := approvedRevisions(out.Revisions)
	out.Duration = si.CalculatedDuration + extraDays
	out.EndDate = out.StartDate.Add(time.Duration(out.Duration) * day)

	estimated := item.FinancialIntegration.Comparison.Estimated
	direct := estimated.LaborCost + estimated.EquipmentCost + estimated.MaterialCost
	planned := models.PlannedCosts{
		Labor:       estimated.LaborCost,
		Equipment:   estimated.EquipmentCost,
		Materials:   estimated.MaterialCost,
		Overhead:    CalcMarkup(direct, in.cfg.OverheadPercent),
		Contingency: CalcMarkup(direct, in.cfg.ContingencyPercent) + extraCost,
	}
	planned.Total = planned.Sum()
	out.FinancialIntegration.PlannedCosts = planned

	days := float64(out.Duration)
	crew := si.Resources.Labor
	rates := in.cfg.LaborRates
	requirement := func(required, assigned, rate float64) models.CrewRequirement {
		return models.CrewRequirement{
			Required:   required,
			Assigned:   assigned,
			CostPerDay: required * rate,
			TotalCost:  required * rate * days,
		}
	}
	out.Resources.Labor = models.TaskLabor{
		Skilled:    requirement(crew.Skilled, out.Resources.Labor.Skilled.Assigned, rates.Skilled),
		Unskilled:  requirement(crew.Unskilled, out.Resources.Labor.Unskilled.Assigned, rates.Unskilled),
		Supervisor: requirement(crew.Supervisor, out.Resources.Labor.Supervisor.Assigned, rates.Supervisor),
	}
	out.Resources.Equipment = slices.Clone(si.Resources.Equipment)
	out.Resources.Materials = slices.Clone(si.Resources.Materials)
	return out
}

// PromoteFinancialItem turns an imported priced line into a BOQ item awaiting
// its first sync. A missing unit price is derived from the line total.
func (in *Integrator) PromoteFinancialItem(fi models.FinancialItem, projectID, category string) models.BOQItem {
	unitPrice := fi.UnitPrice
	if unitPrice == 0 {
		unitPrice = safeDiv(fi.Total, fi.Quantity)
	}
	return models.BOQItem{
		ID:          uuid.NewString(),
		ProjectID:   projectID,
		Code:        fi.Code,
		Description: fi.Description,
		Category:    category,
		Quantity:    fi.Quantity,
		Unit:        fi.Unit,
		ScheduleIntegration: models.ScheduleIntegration{
			SyncStatus: models.SyncStatusPending,
		},
		FinancialIntegration: models.FinancialIntegration{
			UnitPrice:     unitPrice,
			Currency:      in.cfg.Currency,
			PaymentStatus: models.PaymentPending,
		},
	}
}
