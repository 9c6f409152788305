package engine

import "time"

// Availability is the materialized form of a worker's constraint rules for
// one week: which dates they have open spans on, and which shift (period)
// names they may ever be placed into. Absence of a rule kind means wide open
// for that dimension — constraints only ever narrow by adding restrictions,
// never by their absence.
type Availability struct {
	// Spans maps a date (truncated to midnight) to the open clock-time
	// windows on that date. A date with no entry has no AVAILABILITY rule
	// and is treated as open all day.
	Spans map[time.Time][]TimeSpan

	// AllowedShifts is the whitelist of period IDs a worker may be placed
	// into, from SHIFT_RESTRICTION rules. A nil/empty set means no
	// restriction rule exists, so every period is allowed.
	AllowedShifts map[string]struct{}

	// Combinations is the whitelist of (day, period) pairs from COMBINATION
	// rules. Empty means no combination rule exists, so every day/period
	// pairing the other two checks allow is permitted.
	Combinations map[[2]string]struct{}
}

// MaterializeAvailability builds one Availability per worker for the given
// week, reading each worker's ConstraintRule rows.
func MaterializeAvailability(week WeekFrame, rules []ConstraintRule) map[string]*Availability {
	byWorker := make(map[string]*Availability)

	get := func(workerID string) *Availability {
		a, ok := byWorker[workerID]
		if !ok {
			a = &Availability{
				Spans:         make(map[time.Time][]TimeSpan),
				AllowedShifts: make(map[string]struct{}),
				Combinations:  make(map[[2]string]struct{}),
			}
			byWorker[workerID] = a
		}
		return a
	}

	for _, r := range rules {
		a := get(r.WorkerID)
		switch r.Kind {
		case ConstraintKindAvailability:
			date, ok := week.DateFor(r.Day)
			if !ok {
				continue
			}
			a.Spans[date] = append(a.Spans[date], r.Spans...)
		case ConstraintKindShiftRestriction:
			a.AllowedShifts[r.Shift] = struct{}{}
		case ConstraintKindCombination:
			a.Combinations[[2]string{r.Day, r.Shift}] = struct{}{}
		}
	}
	return byWorker
}

// IsOpen reports whether a worker's availability permits the given shift
// instance, combining all three rule kinds as an affirmative whitelist.
func (a *Availability) IsOpen(day string, shift ShiftSpec, period Period) bool {
	if a == nil {
		return true
	}
	if len(a.AllowedShifts) > 0 {
		if _, ok := a.AllowedShifts[shift.PeriodID]; !ok {
			return false
		}
	}
	if len(a.Combinations) > 0 {
		if _, ok := a.Combinations[[2]string{day, shift.PeriodID}]; !ok {
			return false
		}
	}
	if spans, ok := a.Spans[shift.Date]; ok {
		if !anySpanCovers(spans, period) {
			return false
		}
	}
	return true
}

func anySpanCovers(spans []TimeSpan, period Period) bool {
	for _, s := range spans {
		if s.Start <= period.Start && period.End <= s.End {
			return true
		}
	}
	return false
}
