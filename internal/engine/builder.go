package engine

import (
	"sort"
	"time"
)

// Config collects the tunable knobs a Build call accepts, each defaulted to
// the values named in the fixed tables when the caller leaves them zero.
type Config struct {
	MinRestHours    float64
	MaxConsecDays   int
	Staffing        StaffingTable
	TierByDay       map[string]Tier
	ScoringWeights  ScoringWeights
	MaxWeeklyHours  float64
}

// DefaultConfig returns the fixed defaults: 11h minimum rest, 6-day maximum
// consecutive-day streak, the built-in staffing and tier tables, and a
// 40-hour weekly cap.
func DefaultConfig() Config {
	return Config{
		MinRestHours:   11,
		MaxConsecDays:  6,
		Staffing:       DefaultStaffingTable,
		TierByDay:      DefaultTierByDay,
		ScoringWeights: DefaultScoringWeights,
		MaxWeeklyHours: 40,
	}
}

func (c Config) withDefaults() Config {
	if c.MinRestHours == 0 {
		c.MinRestHours = 11
	}
	if c.MaxConsecDays == 0 {
		c.MaxConsecDays = 6
	}
	if c.Staffing == nil {
		c.Staffing = DefaultStaffingTable
	}
	if c.TierByDay == nil {
		c.TierByDay = DefaultTierByDay
	}
	if c.ScoringWeights == (ScoringWeights{}) {
		c.ScoringWeights = DefaultScoringWeights
	}
	if c.MaxWeeklyHours == 0 {
		c.MaxWeeklyHours = 40
	}
	return c
}

// Build runs one deterministic pass of the scheduling pipeline: expand
// shifts, materialize availability, index eligibility, then greedily place
// workers into shifts ordered scarcest-first, validating and scoring every
// candidate. It never errors on understaffing — that is reported back, not
// raised.
func Build(weekAnchor time.Time, periods []Period, templates []Template, workers []Worker, rules []ConstraintRule, history []HistoryEntry, cfg Config) (Plan, []UnderstaffedEntry, error) {
	cfg = cfg.withDefaults()
	week := NewWeekFrame(weekAnchor)

	shifts, err := ExpandSlots(week, periods, templates, cfg.Staffing, cfg.TierByDay)
	if err != nil {
		return Plan{}, nil, err
	}

	periodByID := make(map[string]Period, len(periods))
	for _, p := range periods {
		periodByID[p.ID] = p
	}

	availability := MaterializeAvailability(week, rules)
	index := BuildEligibilityIndex(shifts, workers, availability, periodByID)
	validators := DefaultValidators(periodByID)
	picker := NewRoundRobinPicker()

	workingHours := make(map[string]float64)
	workingDays := make(map[string]map[time.Time]bool)
	workingShiftEnds := make(map[string]map[time.Time]time.Time)
	workingShiftStarts := make(map[string]map[time.Time]time.Time)
	for _, w := range workers {
		workingDays[w.ID] = make(map[time.Time]bool)
		workingShiftEnds[w.ID] = make(map[time.Time]time.Time)
		workingShiftStarts[w.ID] = make(map[time.Time]time.Time)
	}

	// Expand each shift's Required headcount into one placement unit, then
	// order the whole queue scarcest-eligible-pool-first so labor-constrained
	// shifts get first pick of the roster. Ties break lexicographically on
	// shift ID for determinism.
	type unit struct {
		shift ShiftSpec
		seat  int
	}
	var queue []unit
	for _, s := range shifts {
		for seat := 0; seat < s.Required; seat++ {
			queue = append(queue, unit{shift: s, seat: seat})
		}
	}
	sort.SliceStable(queue, func(i, j int) bool {
		ei, ej := len(index.Eligible(queue[i].shift.ID)), len(index.Eligible(queue[j].shift.ID))
		if ei != ej {
			return ei < ej
		}
		return queue[i].shift.ID < queue[j].shift.ID
	})

	var assignments []Assignment
	for _, u := range queue {
		shift := u.shift
		period := periodByID[shift.PeriodID]
		candidates := index.Eligible(shift.ID)

		type scored struct {
			id    string
			score float64
		}
		var viable []scored
		for _, wid := range candidates {
			if workingDays[wid][truncate(shift.Date)] {
				continue
			}
			ctx := Context{
				Shift:              shift,
				Period:             period,
				WorkerID:           wid,
				Week:               week,
				WorkingHours:       workingHours,
				WorkingDays:        workingDays,
				WorkingShiftEnds:   workingShiftEnds,
				WorkingShiftStarts: workingShiftStarts,
				History:            history,
				MaxWeekly:          cfg.MaxWeeklyHours,
				MaxConsecDay:       cfg.MaxConsecDays,
				MinRestHours:       cfg.MinRestHours,
			}
			if !passesAll(validators, ctx) {
				continue
			}
			viable = append(viable, scored{id: wid, score: Score(ctx, cfg.ScoringWeights)})
		}
		if len(viable) == 0 {
			continue
		}

		best := viable[0].score
		for _, v := range viable {
			if v.score > best {
				best = v.score
			}
		}
		// tied preserves the order viable was built in, which is the
		// eligibility index's constrained-first ordering — do not re-sort it.
		var tied []string
		for _, v := range viable {
			if v.score == best {
				tied = append(tied, v.id)
			}
		}
		chosen := picker.Pick(shift.Role, tied)

		assignments = append(assignments, Assignment{ShiftID: shift.ID, WorkerID: chosen})
		workingHours[chosen] += shiftHours(shift)
		if workingDays[chosen] == nil {
			workingDays[chosen] = make(map[time.Time]bool)
		}
		workingDays[chosen][truncate(shift.Date)] = true
		if workingShiftEnds[chosen] == nil {
			workingShiftEnds[chosen] = make(map[time.Time]time.Time)
		}
		workingShiftEnds[chosen][truncate(shift.Date)] = shift.End
		if workingShiftStarts[chosen] == nil {
			workingShiftStarts[chosen] = make(map[time.Time]time.Time)
		}
		workingShiftStarts[chosen][truncate(shift.Date)] = shift.Start
	}

	understaffed := ReportUnderstaffed(shifts, assignments)
	return Plan{Week: week, Assignments: assignments}, understaffed, nil
}

func passesAll(validators []Validator, ctx Context) bool {
	for _, v := range validators {
		if !v.CanAssign(ctx) {
			return false
		}
	}
	return true
}
