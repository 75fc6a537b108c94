package models

import (
	"slices"
	"time"

	"projectsync/standards"
)

// ScheduleIntegration is the schedule-facing block of a BOQ item. Every field
// except LinkedTaskID is computed by the integration service.
type ScheduleIntegration struct {
	LinkedTaskID       string             `json:"linkedTaskId,omitempty"`
	Activity           standards.Activity `json:"activity,omitempty"`
	ActivityFallback   bool               `json:"activityFallback,omitempty"`
	ProductivityRate   float64            `json:"productivityRate"`
	CalculatedDuration int                `json:"calculatedDuration"`
	Resources          BOQResources       `json:"resources"`
	SyncStatus         SyncStatus         `json:"syncStatus"`
	SyncError          string             `json:"syncError,omitempty"`
	LastSyncDate       time.Time          `json:"lastSyncDate"`
}

// CostBreakdown splits a cost figure into its three sources.
type CostBreakdown struct {
	MaterialCost  float64 `json:"materialCost"`
	LaborCost     float64 `json:"laborCost"`
	EquipmentCost float64 `json:"equipmentCost"`
	TotalCost     float64 `json:"totalCost"`
}

// Sum returns material + labor + equipment.
func (c CostBreakdown) Sum() float64 {
	return c.MaterialCost + c.LaborCost + c.EquipmentCost
}

// CostVariance is actual minus estimated.
type CostVariance struct {
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

type CostComparison struct {
	Estimated CostBreakdown `json:"estimated"`
	Actual    CostBreakdown `json:"actual"`
	Variance  CostVariance  `json:"variance"`
}

type Supplier struct {
	Name         string  `json:"name"`
	UnitPrice    float64 `json:"unitPrice"`
	LeadTimeDays int     `json:"leadTimeDays,omitempty"`
	Preferred    bool    `json:"preferred,omitempty"`
}

type FinancialIntegration struct {
	UnitPrice     float64        `json:"unitPrice"`
	Currency      string         `json:"currency"`
	Comparison    CostComparison `json:"comparison"`
	Suppliers     []Supplier     `json:"suppliers,omitempty"`
	PaymentStatus PaymentStatus  `json:"paymentStatus"`
}

type EngineeringStandards struct {
	ApplicableCode string                     `json:"applicableCode"`
	CodeReference  string                     `json:"codeReference"`
	WasteAllowance float64                    `json:"wasteAllowance"`
	SafetyFactor   float64                    `json:"safetyFactor"`
	Compliant      bool                       `json:"compliant"`
	Violations     []string                   `json:"violations,omitempty"`
	Parameters     standards.ComplianceParams `json:"parameters"`
}

// SiteUpdate is a dated report of quantity placed on site.
type SiteUpdate struct {
	Date              time.Time `json:"date"`
	CompletedQuantity float64   `json:"completedQuantity"`
	UpdatedBy         string    `json:"updatedBy,omitempty"`
	Notes             string    `json:"notes,omitempty"`
}

type BOQProgress struct {
	CompletedQuantity  float64      `json:"completedQuantity"`
	PercentageComplete float64      `json:"percentageComplete"`
	Updates            []SiteUpdate `json:"updates,omitempty"`
}

// BOQItem is a priced, quantified scope-of-work line.
type BOQItem struct {
	ID          string  `json:"id"`
	ProjectID   string  `json:"projectId"`
	Code        string  `json:"code"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`

	ScheduleIntegration  ScheduleIntegration  `json:"scheduleIntegration"`
	FinancialIntegration FinancialIntegration `json:"financialIntegration"`
	EngineeringStandards EngineeringStandards `json:"engineeringStandards"`
	ActualProgress       BOQProgress          `json:"actualProgress"`
}

// Clone returns a deep copy of the item.
func (b BOQItem) Clone() BOQItem {
	b.ScheduleIntegration.Resources = b.ScheduleIntegration.Resources.clone()
	b.FinancialIntegration.Suppliers = slices.Clone(b.FinancialIntegration.Suppliers)
	b.EngineeringStandards.Violations = slices.Clone(b.EngineeringStandards.Violations)
	b.ActualProgress.Updates = slices.Clone(b.ActualProgress.Updates)
	return b
}

// ApplyProgress records a completed quantity and recomputes the percentage,
// clamped to [0, 100].
func (b *BOQItem) ApplyProgress(completedQuantity float64) {
	b.ActualProgress.CompletedQuantity = completedQuantity
	b.ActualProgress.PercentageComplete = PercentOf(completedQuantity, b.Quantity)
}

// PercentOf returns part/whole*100 clamped to [0, 100]; zero when whole is
// not positive.
func PercentOf(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	pct := part / whole * 100
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return pct
}
