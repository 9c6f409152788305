package engine

import "time"

// ScoringWeights tunes the relative contribution of each fitness term.
// WorkStreak is subtracted per day worked in the trailing week, RestBonus is
// added per day rested in the trailing week, and RestPenalty is a flat
// deduction when the gap since the worker's last shift is below the rest
// floor.
type ScoringWeights struct {
	WorkStreak  float64
	RestBonus   float64
	RestPenalty float64
}

// DefaultScoringWeights matches the values carried over from the build this
// engine generalizes from; no config surface exposes them yet.
var DefaultScoringWeights = ScoringWeights{WorkStreak: 2, RestBonus: 2, RestPenalty: 5}

// Score computes a candidate's fitness for a shift: higher is more
// desirable. It rewards workers who are furthest from their weekly cap and
// who rested more than they worked over the trailing six days, and
// penalizes a candidate whose gap since their last shift falls short of the
// rest floor.
func Score(ctx Context, weights ScoringWeights) float64 {
	remaining := ctx.MaxWeekly - ctx.WorkingHours[ctx.WorkerID]
	if remaining < 0 {
		remaining = 0
	}

	worked, rested := priorSixDayCounts(ctx)
	score := remaining - weights.WorkStreak*float64(worked) + weights.RestBonus*float64(rested)
	if restGapBelowMinimum(ctx) {
		score -= weights.RestPenalty
	}
	return score
}

// priorSixDayCounts tallies, over the six calendar days strictly before the
// candidate shift's date, how many the worker worked versus rested — a count
// over that fixed window, not a consecutive streak.
func priorSixDayCounts(ctx Context) (worked, rested int) {
	historySet := make(map[time.Time]bool)
	for _, h := range ctx.History {
		if h.WorkerID == ctx.WorkerID {
			historySet[truncate(h.Date)] = true
		}
	}
	workingSet := ctx.WorkingDays[ctx.WorkerID]
	for i := 1; i <= 6; i++ {
		d := truncate(ctx.Shift.Date.AddDate(0, 0, -i))
		if workingSet[d] || historySet[d] {
			worked++
		} else {
			rested++
		}
	}
	return worked, rested
}

// restGapBelowMinimum reports whether the gap between the worker's latest
// prior shift end and this candidate's start undercuts the configured rest
// floor (default 11h). A worker with no prior shift never triggers it.
func restGapBelowMinimum(ctx Context) bool {
	prior := latestShiftEnd(ctx)
	if prior.IsZero() {
		return false
	}
	return ctx.Shift.Start.Sub(prior).Hours() < ctx.MinRestHours
}
