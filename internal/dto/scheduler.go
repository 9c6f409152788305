package dto

import "time"

// BuildRosterRequest instructs the generator to build a weekly roster
// anchored on the week containing WeekAnchor.
type BuildRosterRequest struct {
	WeekAnchor time.Time `json:"weekAnchor" validate:"required"`
}

// AssignmentProposal represents one generated worker-to-shift placement.
type AssignmentProposal struct {
	ShiftID  string    `json:"shiftId"`
	Date     time.Time `json:"date"`
	PeriodID string    `json:"periodId"`
	Role     string    `json:"role"`
	WorkerID string    `json:"workerId"`
}

// UnderstaffedProposal reports a shift instance that did not reach its
// required headcount.
type UnderstaffedProposal struct {
	ShiftID  string    `json:"shiftId"`
	Role     string    `json:"role"`
	Date     time.Time `json:"date"`
	PeriodID string    `json:"periodId"`
	Required int       `json:"required"`
	Assigned int       `json:"assigned"`
}

// BuildRosterResponse returns the built roster proposal, pending commit.
type BuildRosterResponse struct {
	ProposalID   string                  `json:"proposalId"`
	WeekAnchor   time.Time               `json:"weekAnchor"`
	Assignments  []AssignmentProposal    `json:"assignments"`
	Understaffed []UnderstaffedProposal  `json:"understaffed"`
}

// CommitRosterRequest persists a previously built proposal.
type CommitRosterRequest struct {
	ProposalID string `json:"proposalId" validate:"required"`
	Publish    bool   `json:"publish"`
}

// RosterQuery filters plan summaries by week.
type RosterQuery struct {
	WeekFrom *time.Time `form:"weekFrom" json:"weekFrom"`
	WeekTo   *time.Time `form:"weekTo" json:"weekTo"`
}
