package engine

import (
	"sort"
)

// EligibilityIndex gives, per shift instance, the ordered list of workers who
// may be considered for it. Workers with a narrower availability footprint
// (fewer open shifts across the week) sort first, so the builder spends its
// scarcest labor before its most flexible.
type EligibilityIndex struct {
	byShift map[string][]string // shiftID -> worker IDs, constrained-first
}

// BuildEligibilityIndex computes, for every shift, which workers share its
// role and have availability open for it, ordering scarcer workers first.
func BuildEligibilityIndex(shifts []ShiftSpec, workers []Worker, availability map[string]*Availability, periods map[string]Period) *EligibilityIndex {
	openCount := make(map[string]int, len(workers))
	workersByRole := make(map[string][]Worker)
	for _, w := range workers {
		workersByRole[w.Role] = append(workersByRole[w.Role], w)
	}
	for _, w := range workers {
		count := 0
		for _, s := range shifts {
			if s.Role != w.Role {
				continue
			}
			if availability[w.ID].IsOpen(s.Day, s, periods[s.PeriodID]) {
				count++
			}
		}
		openCount[w.ID] = count
	}

	idx := &EligibilityIndex{byShift: make(map[string][]string, len(shifts))}
	for _, s := range shifts {
		candidates := make([]Worker, 0, len(workersByRole[s.Role]))
		period := periods[s.PeriodID]
		for _, w := range workersByRole[s.Role] {
			if availability[w.ID].IsOpen(s.Day, s, period) {
				candidates = append(candidates, w)
			}
		}
		sort.Slice(candidates, func(i, j int) bool {
			ci, cj := openCount[candidates[i].ID], openCount[candidates[j].ID]
			if ci != cj {
				return ci < cj
			}
			return candidates[i].ID < candidates[j].ID
		})
		ids := make([]string, len(candidates))
		for i, c := range candidates {
			ids[i] = c.ID
		}
		idx.byShift[s.ID] = ids
	}
	return idx
}

// Eligible returns the ordered candidate worker IDs for a shift.
func (idx *EligibilityIndex) Eligible(shiftID string) []string {
	return idx.byShift[shiftID]
}
