package models

import (
	"maps"
	"slices"
	"time"
)

// BOQContribution is one BOQ item's share of a task.
type BOQContribution struct {
	BOQItemID        string  `json:"boqItemId"`
	Quantity         float64 `json:"quantity"`
	Unit             string  `json:"unit"`
	ContributionPct  float64 `json:"contributionPct"`
	ProductivityRate float64 `json:"productivityRate"`
	CalculatedDays   int     `json:"calculatedDays"`
}

type TaskBOQIntegration struct {
	LinkedBOQItems      []BOQContribution  `json:"linkedBoqItems"`
	AggregateQuantities map[string]float64 `json:"aggregateQuantities"`
	SyncStatus          SyncStatus         `json:"syncStatus"`
	LastSyncDate        time.Time          `json:"lastSyncDate"`
}

// PrimaryBOQItemID returns the single BOQ item the task was materialized
// from, or "" for a task created directly.
func (t TaskBOQIntegration) PrimaryBOQItemID() string {
	if len(t.LinkedBOQItems) == 0 {
		return ""
	}
	return t.LinkedBOQItems[0].BOQItemID
}

type PlannedCosts struct {
	Labor       float64 `json:"labor"`
	Equipment   float64 `json:"equipment"`
	Materials   float64 `json:"materials"`
	Overhead    float64 `json:"overhead"`
	Contingency float64 `json:"contingency"`
	Total       float64 `json:"total"`
}

// Sum returns the five cost components added together.
func (p PlannedCosts) Sum() float64 {
	return p.Labor + p.Equipment + p.Materials + p.Overhead + p.Contingency
}

type ActualCosts struct {
	Labor     float64 `json:"labor"`
	Equipment float64 `json:"equipment"`
	Materials float64 `json:"materials"`
	Overhead  float64 `json:"overhead"`
	Total     float64 `json:"total"`
}

// Sum returns the four actual cost components added together.
func (a ActualCosts) Sum() float64 {
	return a.Labor + a.Equipment + a.Materials + a.Overhead
}

type TaskVariance struct {
	Amount     float64        `json:"amount"`
	Percentage float64        `json:"percentage"`
	Status     VarianceStatus `json:"status"`
}

type DirectDelayCost struct {
	Overtime  float64 `json:"overtime"`
	Equipment float64 `json:"equipment"`
	Total     float64 `json:"total"`
}

type IndirectDelayCost struct {
	Overhead        float64 `json:"overhead"`
	Management      float64 `json:"management"`
	LostOpportunity float64 `json:"lostOpportunity"`
	Total           float64 `json:"total"`
}

type DelayCosts struct {
	DelayDays int               `json:"delayDays"`
	Direct    DirectDelayCost   `json:"direct"`
	Indirect  IndirectDelayCost `json:"indirect"`
	Total     float64           `json:"total"`
}

type Payment struct {
	Date        time.Time `json:"date"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description,omitempty"`
}

type CashFlow struct {
	PlannedPayments  []Payment `json:"plannedPayments"`
	ActualPayments   []Payment `json:"actualPayments"`
	RemainingBalance float64   `json:"remainingBalance"`
}

type TaskFinancialIntegration struct {
	PlannedCosts PlannedCosts `json:"plannedCosts"`
	ActualCosts  ActualCosts  `json:"actualCosts"`
	Variance     TaskVariance `json:"variance"`
	DelayCosts   DelayCosts   `json:"delayCosts"`
	CashFlow     CashFlow     `json:"cashFlow"`
}

// Recommendation is a mitigation action raised by an early warning.
type Recommendation struct {
	Action        string                 `json:"action"`
	Description   string                 `json:"description"`
	EstimatedCost float64                `json:"estimatedCost"`
	Priority      RecommendationPriority `json:"priority"`
}

type EarlyWarning struct {
	Active           bool             `json:"active"`
	RiskLevel        RiskLevel        `json:"riskLevel"`
	ExpectedProgress float64          `json:"expectedProgress"`
	ActualProgress   float64          `json:"actualProgress"`
	Deviation        float64          `json:"deviation"`
	PredictedDelay   int              `json:"predictedDelay"`
	CostOverrun      float64          `json:"costOverrun"`
	ImpactOnProject  ProjectImpact    `json:"impactOnProject"`
	Recommendations  []Recommendation `json:"recommendations"`
	DetectedAt       time.Time        `json:"detectedAt"`
}

type PlanSnapshot struct {
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
	Duration       int       `json:"duration"`
	Cost           float64   `json:"cost"`
	AdditionalCost float64   `json:"additionalCost,omitempty"`
	Reason         string    `json:"reason,omitempty"`
}

type Approval struct {
	AutoApply bool           `json:"autoApply"`
	Status    ApprovalStatus `json:"status"`
	DecidedBy string         `json:"decidedBy,omitempty"`
	DecidedAt *time.Time     `json:"decidedAt,omitempty"`
	Comment   string         `json:"comment,omitempty"`
}

// ReSchedulingProposal is a revised plan awaiting (or having received) a
// decision.
type ReSchedulingProposal struct {
	Required      bool         `json:"required"`
	Delay         int          `json:"delay"`
	OriginalPlan  PlanSnapshot `json:"originalPlan"`
	RevisedPlan   PlanSnapshot `json:"revisedPlan"`
	AffectedTasks []string     `json:"affectedTasks"`
	Approval      Approval     `json:"approval"`
	ProposedAt    time.Time    `json:"proposedAt"`
}

func (p ReSchedulingProposal) clone() ReSchedulingProposal {
	p.AffectedTasks = slices.Clone(p.AffectedTasks)
	if p.Approval.DecidedAt != nil {
		at := *p.Approval.DecidedAt
		p.Approval.DecidedAt = &at
	}
	return p
}

type EarnedValue struct {
	PlannedValue     float64   `json:"plannedValue"`
	EarnedValue      float64   `json:"earnedValue"`
	ActualCost       float64   `json:"actualCost"`
	CPI              float64   `json:"costPerformanceIndex"`
	SPI              float64   `json:"schedulePerformanceIndex"`
	CostVariance     float64   `json:"costVariance"`
	ScheduleVariance float64   `json:"scheduleVariance"`
	EAC              float64   `json:"estimateAtCompletion"`
	ETC              float64   `json:"estimateToComplete"`
	VAC              float64   `json:"varianceAtCompletion"`
	CalculatedAt     time.Time `json:"calculatedAt"`
}

type SiteConditions struct {
	Weather        string  `json:"weather,omitempty"`
	Temperature    float64 `json:"temperature,omitempty"`
	WorkersPresent int     `json:"workersPresent,omitempty"`
	Notes          string  `json:"notes,omitempty"`
}

type DailyProgress struct {
	Date              time.Time      `json:"date"`
	Progress          float64        `json:"progress"`
	QuantityCompleted float64        `json:"quantityCompleted"`
	UpdatedBy         string         `json:"updatedBy,omitempty"`
	SiteConditions    SiteConditions `json:"siteConditions"`
}

type ProgressPrediction struct {
	ExpectedCompletionDate time.Time `json:"expectedCompletionDate"`
	ExpectedDelay          int       `json:"expectedDelay"`
	Confidence             float64   `json:"confidence"`
}

type TaskProgress struct {
	PercentageComplete float64            `json:"percentageComplete"`
	DailyProgress      []DailyProgress    `json:"dailyProgress"`
	Prediction         ProgressPrediction `json:"prediction"`
}

// CrewRequirement compares the crew a task needs with the crew assigned.
type CrewRequirement struct {
	Required   float64 `json:"required"`
	Assigned   float64 `json:"assigned"`
	CostPerDay float64 `json:"costPerDay"`
	TotalCost  float64 `json:"totalCost"`
}

type TaskLabor struct {
	Skilled    CrewRequirement `json:"skilled"`
	Unskilled  CrewRequirement `json:"unskilled"`
	Supervisor CrewRequirement `json:"supervisor"`
}

type ResourceAnalysis struct {
	Adequate        bool     `json:"adequate"`
	Bottlenecks     []string `json:"bottlenecks"`
	Recommendations []string `json:"recommendations"`
}

type TaskResources struct {
	Labor     TaskLabor        `json:"labor"`
	Equipment []EquipmentItem  `json:"equipment"`
	Materials MaterialList     `json:"materials"`
	Analysis  ResourceAnalysis `json:"analysis"`
}

// ScheduleTask is a schedulable unit of work.
type ScheduleTask struct {
	ID            string     `json:"id"`
	ProjectID     string     `json:"projectId"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	StartDate     time.Time  `json:"startDate"`
	EndDate       time.Time  `json:"endDate"`
	ActualEndDate *time.Time `json:"actualEndDate,omitempty"`
	Duration      int        `json:"duration"`
	Status        TaskStatus `json:"status"`
	Priority      Priority   `json:"priority"`
	Dependencies  []string   `json:"dependencies"`

	BOQIntegration       TaskBOQIntegration       `json:"boqIntegration"`
	FinancialIntegration TaskFinancialIntegration `json:"financialIntegration"`
	EarlyWarning         *EarlyWarning            `json:"earlyWarning,omitempty"`
	ReScheduling         *ReSchedulingProposal    `json:"reScheduling,omitempty"`
	Revisions            []ReSchedulingProposal   `json:"revisions,omitempty"`
	EarnedValue          EarnedValue              `json:"earnedValue"`
	ActualProgress       TaskProgress             `json:"actualProgress"`
	Resources            TaskResources            `json:"resources"`
}

// Clone returns a deep copy of the task.
func (t ScheduleTask) Clone() ScheduleTask {
	if t.ActualEndDate != nil {
		end := *t.ActualEndDate
		t.ActualEndDate = &end
	}
	t.Dependencies = slices.Clone(t.Dependencies)

	t.BOQIntegration.LinkedBOQItems = slices.Clone(t.BOQIntegration.LinkedBOQItems)
	t.BOQIntegration.AggregateQuantities = maps.Clone(t.BOQIntegration.AggregateQuantities)

	t.FinancialIntegration.CashFlow.PlannedPayments = slices.Clone(t.FinancialIntegration.CashFlow.PlannedPayments)
	t.FinancialIntegration.CashFlow.ActualPayments = slices.Clone(t.FinancialIntegration.CashFlow.ActualPayments)

	if t.EarlyWarning != nil {
		w := *t.EarlyWarning
		w.Recommendations = slices.Clone(w.Recommendations)
		t.EarlyWarning = &w
	}
	if t.ReScheduling != nil {
		p := t.ReScheduling.clone()
		t.ReScheduling = &p
	}
	if t.Revisions != nil {
		revisions := make([]ReSchedulingProposal, len(t.Revisions))
		for i, r := range t.Revisions {
			revisions[i] = r.clone()
		}
		t.Revisions = revisions
	}

	t.ActualProgress.DailyProgress = slices.Clone(t.ActualProgress.DailyProgress)
	t.Resources.Equipment = slices.Clone(t.Resources.Equipment)
	t.Resources.Materials = slices.Clone(t.Resources.Materials)
	t.Resources.Analysis.Bottlenecks = slices.Clone(t.Resources.Analysis.Bottlenecks)
	t.Resources.Analysis.Recommendations = slices.Clone(t.Resources.Analysis.Recommendations)
	return t
}

// IsCompleted reports whether the task has reached 100%.
func (t ScheduleTask) IsCompleted() bool {
	return t.Status == TaskCompleted
}
