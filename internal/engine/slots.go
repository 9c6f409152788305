package engine

import (
	"fmt"
	"sort"
	"time"
)

// ExpandSlots turns a week frame, the period catalog, and the active
// templates into every concrete shift instance that must be staffed. Each
// ShiftSpec.ID follows "{template_id}__{date}__{period_id}__{role}", matching
// the calendar-scoped IDs used everywhere else in the build.
func ExpandSlots(week WeekFrame, periods []Period, templates []Template, staffing StaffingTable, tierByDay map[string]Tier) ([]ShiftSpec, error) {
	if len(periods) == 0 {
		return nil, newError(KindNoPeriods, "no periods supplied")
	}
	periodByID := make(map[string]Period, len(periods))
	for _, p := range periods {
		periodByID[p.ID] = p
	}
	if tierByDay == nil {
		tierByDay = DefaultTierByDay
	}

	var specs []ShiftSpec
	for _, tmpl := range templates {
		period, ok := periodByID[tmpl.PeriodID]
		if !ok {
			return nil, newError(KindInvalidInput, "template %s references unknown period %s", tmpl.ID, tmpl.PeriodID)
		}
		if !staffing.KnownRole(tmpl.Role) {
			return nil, newError(KindUnknownRole, "template %s references unknown role %s", tmpl.ID, tmpl.Role)
		}
		shiftStart, shiftEnd, err := tmpl.clockWindow(period)
		if err != nil {
			return nil, err
		}
		for _, day := range tmpl.Days {
			date, ok := week.DateFor(day)
			if !ok {
				return nil, newError(KindInvalidInput, "template %s references unknown day %s", tmpl.ID, day)
			}
			tier := tierByDay[day]
			required := staffing.RequiredHeadcount(tmpl.Role, tier)
			if required == 0 {
				continue
			}
			specs = append(specs, ShiftSpec{
				ID:       shiftID(tmpl.ID, date, tmpl.PeriodID, tmpl.Role),
				Date:     date,
				Day:      day,
				PeriodID: tmpl.PeriodID,
				Role:     tmpl.Role,
				Required: required,
				Start:    combineDate(date, shiftStart),
				End:      combineDate(date, shiftEnd),
			})
		}
	}

	sort.Slice(specs, func(i, j int) bool {
		if !specs[i].Date.Equal(specs[j].Date) {
			return specs[i].Date.Before(specs[j].Date)
		}
		if specs[i].PeriodID != specs[j].PeriodID {
			return specs[i].PeriodID < specs[j].PeriodID
		}
		return specs[i].Role < specs[j].Role
	})
	return specs, nil
}

func shiftID(templateID string, date time.Time, periodID, role string) string {
	return fmt.Sprintf("%s__%s__%s__%s", templateID, date.Format("2006-01-02"), periodID, role)
}

// clockWindow parses the template's shift_start/shift_end and validates them
// against the owning period's window per the data model's Template
// invariant: period.start ≤ shift_start < shift_end ≤ period.end, and the
// shift must span at least four hours.
func (t Template) clockWindow(period Period) (time.Time, time.Time, error) {
	start, err := time.Parse("15:04", t.ShiftStart)
	if err != nil {
		return time.Time{}, time.Time{}, newError(KindInvalidInput, "template %s has invalid shift_start %q", t.ID, t.ShiftStart)
	}
	end, err := time.Parse("15:04", t.ShiftEnd)
	if err != nil {
		return time.Time{}, time.Time{}, newError(KindInvalidInput, "template %s has invalid shift_end %q", t.ID, t.ShiftEnd)
	}
	periodStart, err1 := time.Parse("15:04", period.Start)
	periodEnd, err2 := time.Parse("15:04", period.End)
	if err1 != nil || err2 != nil {
		return time.Time{}, time.Time{}, newError(KindInvalidInput, "period %s has an unparseable window", period.ID)
	}
	if start.Before(periodStart) || !start.Before(end) || end.After(periodEnd) {
		return time.Time{}, time.Time{}, newError(KindInvalidInput, "template %s shift window %s-%s falls outside period %s (%s-%s)", t.ID, t.ShiftStart, t.ShiftEnd, period.ID, period.Start, period.End)
	}
	if end.Sub(start) < 4*time.Hour {
		return time.Time{}, time.Time{}, newError(KindInvalidInput, "template %s shift %s-%s is under the 4h minimum duration", t.ID, t.ShiftStart, t.ShiftEnd)
	}
	return start, end, nil
}

// combineDate lays a parsed "HH:MM" clock value onto date's calendar day.
func combineDate(date, clock time.Time) time.Time {
	return date.Add(time.Duration(clock.Hour())*time.Hour + time.Duration(clock.Minute())*time.Minute)
}
