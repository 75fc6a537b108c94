package services

import (
	"fmt"
	"time"

	"projectsync/models"
)

// ProposeReSchedule builds a revised plan that absorbs delay days. affected
// lists the downstream tasks whose start depends on this one; their dates are
// left for the planner. A positive delay of at most autoApproveMaxDelay days
// is approved automatically.
func ProposeReSchedule(task models.ScheduleTask, delay int, affected []string, autoApproveMaxDelay int, asOf time.Time) models.ReSchedulingProposal {
	planned := task.FinancialIntegration.PlannedCosts.Total
	proposal := models.ReSchedulingProposal{
		Required: delay > 0,
		Delay:    max(delay, 0),
		OriginalPlan: models.PlanSnapshot{
			StartDate: task.StartDate,
			EndDate:   task.EndDate,
			Duration:  task.Duration,
			Cost:      planned,
		},
		AffectedTasks: append([]string{}, affected...),
		Approval:      models.Approval{Status: models.ApprovalPending},
		ProposedAt:    asOf,
	}

	additional := safeDiv(planned, float64(task.Duration)) * float64(proposal.Delay) * AccelerationPremium
	proposal.RevisedPlan = models.PlanSnapshot{
		StartDate:      task.StartDate,
		EndDate:        task.EndDate.Add(time.Duration(proposal.Delay) * day),
		Duration:       task.Duration + proposal.Delay,
		Cost:           planned + additional,
		AdditionalCost: additional,
		Reason:         fmt.Sprintf("predicted delay of %d day(s)", proposal.Delay),
	}

	if proposal.Required && proposal.Delay <= autoApproveMaxDelay {
		proposal.Approval.AutoApply = true
		proposal.Approval.Status = models.ApprovalAutoApproved
	}
	return proposal
}

// ApplyReSchedule extends the task's current plan by the proposal's delay.
// The plan may have been replanned since the proposal was made, so the delay
// and additional cost are applied on top of it and the recorded revision is
// rebased onto the plan it actually changed. The additional cost is booked
// as contingency and the outstanding proposal is cleared.
func ApplyReSchedule(task models.ScheduleTask, proposal models.ReSchedulingProposal, status models.ApprovalStatus, decidedBy, comment string, at time.Time) models.ScheduleTask {
	out := task.Clone()
	delay := max(proposal.Delay, 0)
	additional := proposal.RevisedPlan.AdditionalCost

	proposal.OriginalPlan = models.PlanSnapshot{
		StartDate: task.StartDate,
		EndDate:   task.EndDate,
		Duration:  task.Duration,
		Cost:      task.FinancialIntegration.PlannedCosts.Total,
	}
	out.EndDate = task.EndDate.Add(time.Duration(delay) * day)
	out.Duration = task.Duration + delay

	planned := &out.FinancialIntegration.PlannedCosts
	planned.Contingency += additional
	planned.Total = planned.Sum()

	proposal.RevisedPlan.StartDate = out.StartDate
	proposal.RevisedPlan.EndDate = out.EndDate
	proposal.RevisedPlan.Duration = out.Duration
	proposal.RevisedPlan.Cost = planned.Total

	out.Revisions = append(out.Revisions, decide(proposal, status, decidedBy, comment, at))
	out.ReScheduling = nil
	return out
}

// RejectReSchedule records the rejection and clears the proposal without
// touching the plan.
func RejectReSchedule(task models.ScheduleTask, proposal models.ReSchedulingProposal, decidedBy, comment string, at time.Time) models.ScheduleTask {
	out := task.Clone()
	out.Revisions = append(out.Revisions, decide(proposal, models.ApprovalRejected, decidedBy, comment, at))
	out.ReScheduling = nil
	return out
}

func decide(p models.ReSchedulingProposal, status models.ApprovalStatus, decidedBy, comment string, at time.Time) models.ReSchedulingProposal {
	decided := p
	decided.AffectedTasks = append([]string{}, p.AffectedTasks...)
	decided.Approval.Status = status
	decided.Approval.DecidedBy = decidedBy
	decided.Approval.Comment = comment
	decided.Approval.DecidedAt = &at
	return decided
}

// approvedRevisions sums the extra days and cost of every accepted revision.
func approvedRevisions(revisions []models.ReSchedulingProposal) (days int, cost float64) {
	for _, r := range revisions {
		switch r.Approval.Status {
		case models.ApprovalApproved, models.ApprovalAutoApproved:
			days += r.RevisedPlan.Duration - r.OriginalPlan.Duration
			cost += r.RevisedPlan.AdditionalCost
		}
	}
	return days, cost
}
