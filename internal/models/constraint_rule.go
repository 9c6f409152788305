package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// ConstraintRuleKind enumerates the supported affirmative constraint shapes.
// Every kind is a whitelist: a worker with rules of a kind may only be placed
// into what those rules list, and a worker with no rule of that kind is
// unrestricted on it.
type ConstraintRuleKind string

const (
	ConstraintKindAvailability     ConstraintRuleKind = "AVAILABILITY"
	ConstraintKindShiftRestriction ConstraintRuleKind = "SHIFT_RESTRICTION"
	ConstraintKindCombination      ConstraintRuleKind = "COMBINATION"
)

// ConstraintRule stores one affirmative scheduling rule for a worker.
// Payload shape depends on Kind:
//
//	AVAILABILITY     {"day": "MON", "spans": [{"start":"08:00","end":"16:00"}]}
//	SHIFT_RESTRICTION{"shift": "AM"}
//	COMBINATION      {"day": "MON", "shift": "AM"}
type ConstraintRule struct {
	ID        string             `db:"id" json:"id"`
	WorkerID  string             `db:"worker_id" json:"worker_id"`
	Kind      ConstraintRuleKind `db:"kind" json:"kind"`
	Payload   types.JSONText     `db:"payload" json:"payload"`
	CreatedAt time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt time.Time          `db:"updated_at" json:"updated_at"`
}

// AvailabilityRulePayload is the decoded body of an AVAILABILITY rule.
type AvailabilityRulePayload struct {
	Day   string       `json:"day"`
	Spans []TimeSpan   `json:"spans"`
}

// ShiftRestrictionPayload is the decoded body of a SHIFT_RESTRICTION rule.
type ShiftRestrictionPayload struct {
	Shift string `json:"shift"`
}

// CombinationPayload is the decoded body of a COMBINATION rule.
type CombinationPayload struct {
	Day   string `json:"day"`
	Shift string `json:"shift"`
}

// TimeSpan is a half-open [Start, End) clock-time window within a day.
type TimeSpan struct {
	Start string `json:"start"`
	End   string `json:"end"`
}
