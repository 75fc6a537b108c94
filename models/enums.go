// Package models defines the integrated BOQ item and schedule task entities
// shared by the sync services, the project store and persistence.
package models

type SyncStatus string

const (
	SyncStatusSynced   SyncStatus = "synced"
	SyncStatusPending  SyncStatus = "pending"
	SyncStatusConflict SyncStatus = "conflict"
	SyncStatusError    SyncStatus = "error"
)

type TaskStatus string

const (
	TaskNotStarted TaskStatus = "not-started"
	TaskInProgress TaskStatus = "in-progress"
	TaskCompleted  TaskStatus = "completed"
	TaskDelayed    TaskStatus = "delayed"
	TaskOnHold     TaskStatus = "on-hold"
)

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

type RiskLevel string

const (
	RiskNone     RiskLevel = "none"
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

type VarianceStatus string

const (
	VarianceUnder VarianceStatus = "under"
	VarianceOn    VarianceStatus = "on"
	VarianceOver  VarianceStatus = "over"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

type ApprovalStatus string

const (
	ApprovalPending      ApprovalStatus = "pending"
	ApprovalAutoApproved ApprovalStatus = "auto-approved"
	ApprovalApproved     ApprovalStatus = "approved"
	ApprovalRejected     ApprovalStatus = "rejected"
)

// ProjectImpact is the categorical effect of a predicted delay.
type ProjectImpact string

const (
	ImpactNone     ProjectImpact = "none"
	ImpactMinor    ProjectImpact = "minor"
	ImpactModerate ProjectImpact = "moderate"
	ImpactMajor    ProjectImpact = "major"
)

// RecommendationPriority orders mitigation actions.
type RecommendationPriority string

const (
	RecommendImmediate RecommendationPriority = "immediate"
	RecommendHigh      RecommendationPriority = "high"
)
