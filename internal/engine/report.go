package engine

// ReportUnderstaffed diffs required vs. assigned headcount per shift
// instance, returning one entry for every shift that came up short. A fully
// staffed shift produces no entry.
func ReportUnderstaffed(shifts []ShiftSpec, assignments []Assignment) []UnderstaffedEntry {
	assignedCount := make(map[string]int, len(shifts))
	for _, a := range assignments {
		assignedCount[a.ShiftID]++
	}

	var gaps []UnderstaffedEntry
	for _, s := range shifts {
		got := assignedCount[s.ID]
		if got >= s.Required {
			continue
		}
		gaps = append(gaps, UnderstaffedEntry{
			ShiftID:  s.ID,
			Role:     s.Role,
			Date:     s.Date,
			PeriodID: s.PeriodID,
			Required: s.Required,
			Assigned: got,
		})
	}
	return gaps
}
