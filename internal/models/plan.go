package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// PlanStatus represents lifecycle phases for a built roster.
type PlanStatus string

const (
	PlanStatusDraft     PlanStatus = "DRAFT"
	PlanStatusPublished PlanStatus = "PUBLISHED"
	PlanStatusArchived  PlanStatus = "ARCHIVED"
)

// Plan captures a versioned weekly roster proposal for one week anchor.
type Plan struct {
	ID          string         `db:"id" json:"id"`
	WeekAnchor  time.Time      `db:"week_anchor" json:"week_anchor"`
	Version     int            `db:"version" json:"version"`
	Status      PlanStatus     `db:"status" json:"status"`
	Meta        types.JSONText `db:"meta" json:"meta"`
	CreatedBy   string         `db:"created_by" json:"created_by"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// Assignment is one concrete worker-to-shift pairing inside a plan.
type Assignment struct {
	ID       string    `db:"id" json:"id"`
	PlanID   string    `db:"plan_id" json:"plan_id"`
	ShiftID  string    `db:"shift_id" json:"shift_id"`
	Date     time.Time `db:"date" json:"date"`
	PeriodID string    `db:"period_id" json:"period_id"`
	Role     string    `db:"role" json:"role"`
	WorkerID string    `db:"worker_id" json:"worker_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// UnderstaffedEntry is a persisted record of a shift that fell short of its
// required headcount at build time.
type UnderstaffedEntry struct {
	ID       string    `db:"id" json:"id"`
	PlanID   string    `db:"plan_id" json:"plan_id"`
	ShiftID  string    `db:"shift_id" json:"shift_id"`
	Role     string    `db:"role" json:"role"`
	Date     time.Time `db:"date" json:"date"`
	PeriodID string    `db:"period_id" json:"period_id"`
	Required int       `db:"required" json:"required"`
	Assigned int       `db:"assigned" json:"assigned"`
}

// PlanSummary is lightweight metadata for list views.
type PlanSummary struct {
	ID         string     `json:"id"`
	WeekAnchor time.Time  `json:"week_anchor"`
	Version    int        `json:"version"`
	Status     PlanStatus `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
}
