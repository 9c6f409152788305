package models

import "time"

// EngineConfigType defines supported value types for an override entry.
type EngineConfigType string

const (
	EngineConfigTypeString  EngineConfigType = "STRING"
	EngineConfigTypeNumber  EngineConfigType = "NUMBER"
	EngineConfigTypeJSON    EngineConfigType = "JSON"
)

// EngineConfig represents one persisted override of a build knob
// (min_rest_hours, max_consecutive_days, max_weekly_hours). History depth,
// the staffing table and the day-tier table have no override key. Missing
// keys fall back to the engine's compiled-in defaults.
type EngineConfig struct {
	Key         string           `db:"key" json:"key"`
	Value       string           `db:"value" json:"value"`
	Type        EngineConfigType `db:"type" json:"type"`
	Description *string          `db:"description" json:"description,omitempty"`
	UpdatedBy   *string          `db:"updated_by" json:"updated_by,omitempty"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updated_at"`
}
