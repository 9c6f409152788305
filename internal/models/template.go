package models

import "github.com/jmoiron/sqlx/types"

// Template names one recurring role x period staffing requirement, active on
// a subset of weekdays.
type Template struct {
	ID         string         `db:"id" json:"id"`
	Role       string         `db:"role" json:"role"`
	PeriodID   string         `db:"period_id" json:"period_id"`
	ShiftStart string         `db:"shift_start" json:"shift_start"`
	ShiftEnd   string         `db:"shift_end" json:"shift_end"`
	Days       types.JSONText `db:"days" json:"days"`
	Active     bool           `db:"active" json:"active"`
}

// TemplateDays decodes the JSON-array Days column into weekday codes.
func (t Template) TemplateDays() ([]string, error) {
	var days []string
	if len(t.Days) == 0 {
		return days, nil
	}
	return days, t.Days.Unmarshal(&days)
}
