package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixturePeriods() []Period {
	return []Period{
		{ID: "AM", Name: "Morning", Start: "08:00", End: "16:00"},
		{ID: "PM", Name: "Evening", Start: "16:00", End: "23:00"},
	}
}

func fixtureTemplates() []Template {
	return []Template{
		{ID: "srv-am", Role: "server", PeriodID: "AM", ShiftStart: "08:00", ShiftEnd: "16:00", Days: []string{"MON", "TUE", "WED", "THU", "FRI", "SAT"}},
		{ID: "bar-pm", Role: "bartender", PeriodID: "PM", ShiftStart: "16:00", ShiftEnd: "23:00", Days: []string{"FRI", "SAT"}},
	}
}

func fixtureWorkers(n int, role string) []Worker {
	workers := make([]Worker, n)
	for i := range workers {
		workers[i] = Worker{ID: role + "-" + string(rune('a'+i)), Name: role + string(rune('A'+i)), Role: role}
	}
	return workers
}

// a fixed Monday anchor so every test builds the same calendar week.
var anchorMonday = time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)

func TestBuildPlacesWorkersWithinStaffingRequirements(t *testing.T) {
	workers := append(fixtureWorkers(6, "server"), fixtureWorkers(4, "bartender")...)

	plan, understaffed, err := Build(anchorMonday, fixturePeriods(), fixtureTemplates(), workers, nil, nil, DefaultConfig())
	require.NoError(t, err)
	assert.NotEmpty(t, plan.Assignments)

	countByShift := make(map[string]int)
	for _, a := range plan.Assignments {
		countByShift[a.ShiftID]++
	}
	for shiftID, count := range countByShift {
		assert.LessOrEqualf(t, count, 4, "shift %s overstaffed", shiftID)
	}
	assert.Empty(t, understaffed, "fixture roster should be large enough to fully staff the week")
}

func TestBuildReportsUnderstaffedWhenRosterTooSmall(t *testing.T) {
	workers := fixtureWorkers(1, "server")

	_, understaffed, err := Build(anchorMonday, fixturePeriods(), fixtureTemplates()[:1], workers, nil, nil, DefaultConfig())
	require.NoError(t, err)
	require.NotEmpty(t, understaffed)
	for _, gap := range understaffed {
		assert.Equal(t, "server", gap.Role)
		assert.Less(t, gap.Assigned, gap.Required)
	}
}

func TestBuildHonoursShiftRestriction(t *testing.T) {
	workers := fixtureWorkers(6, "server")
	rules := []ConstraintRule{
		{WorkerID: workers[0].ID, Kind: ConstraintKindShiftRestriction, Shift: "PM"},
	}

	plan, _, err := Build(anchorMonday, fixturePeriods(), fixtureTemplates(), workers, rules, nil, DefaultConfig())
	require.NoError(t, err)
	for _, a := range plan.Assignments {
		if a.WorkerID == workers[0].ID {
			assert.Contains(t, a.ShiftID, "__PM__", "worker restricted to PM shifts was placed elsewhere")
		}
	}
}

func TestBuildHonoursOneShiftPerDay(t *testing.T) {
	workers := fixtureWorkers(1, "server")
	templates := []Template{
		{ID: "srv-am", Role: "server", PeriodID: "AM", ShiftStart: "08:00", ShiftEnd: "16:00", Days: []string{"MON"}},
		{ID: "srv-pm", Role: "server", PeriodID: "PM", ShiftStart: "16:00", ShiftEnd: "23:00", Days: []string{"MON"}},
	}

	plan, _, err := Build(anchorMonday, fixturePeriods(), templates, workers, nil, nil, DefaultConfig())
	require.NoError(t, err)
	assert.LessOrEqual(t, len(plan.Assignments), 1, "single worker must not be double-booked on one day")
}

func TestBuildRejectsUnknownRole(t *testing.T) {
	templates := []Template{{ID: "x", Role: "manager_on_duty", PeriodID: "AM", ShiftStart: "08:00", ShiftEnd: "16:00", Days: []string{"MON"}}}

	_, _, err := Build(anchorMonday, fixturePeriods(), templates, nil, nil, nil, DefaultConfig())
	require.Error(t, err)
	engErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, KindUnknownRole, engErr.Kind)
}

func TestBuildRejectsMissingPeriods(t *testing.T) {
	_, _, err := Build(anchorMonday, nil, fixtureTemplates(), nil, nil, nil, DefaultConfig())
	require.Error(t, err)
	engErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, KindNoPeriods, engErr.Kind)
}

func TestBuildRejectsTemplateShiftOutsidePeriodWindow(t *testing.T) {
	templates := []Template{{ID: "bad", Role: "server", PeriodID: "AM", ShiftStart: "07:00", ShiftEnd: "12:00", Days: []string{"MON"}}}

	_, _, err := Build(anchorMonday, fixturePeriods(), templates, nil, nil, nil, DefaultConfig())
	require.Error(t, err)
	engErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, KindInvalidInput, engErr.Kind)
}

func TestBuildRejectsTemplateShiftUnderFourHours(t *testing.T) {
	templates := []Template{{ID: "short", Role: "server", PeriodID: "AM", ShiftStart: "08:00", ShiftEnd: "11:00", Days: []string{"MON"}}}

	_, _, err := Build(anchorMonday, fixturePeriods(), templates, nil, nil, nil, DefaultConfig())
	require.Error(t, err)
	engErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, KindInvalidInput, engErr.Kind)
}

func TestBuildRespectsRestFloorAcrossHistory(t *testing.T) {
	workers := fixtureWorkers(1, "bartender")
	templates := []Template{{ID: "bar-pm", Role: "bartender", PeriodID: "PM", ShiftStart: "16:00", ShiftEnd: "23:00", Days: []string{"FRI"}}}
	fridayDate, _ := NewWeekFrame(anchorMonday).DateFor("FRI")
	history := []HistoryEntry{
		{WorkerID: workers[0].ID, Date: fridayDate.Add(1 * time.Hour), PeriodID: "PM", Hours: 7},
	}

	plan, understaffed, err := Build(anchorMonday, fixturePeriods(), templates, workers, nil, history, DefaultConfig())
	require.NoError(t, err)
	assert.Empty(t, plan.Assignments, "worker resting less than the floor must not be placed")
	assert.NotEmpty(t, understaffed)
}

func TestBuildRespectsInBuildRestFloorAcrossDates(t *testing.T) {
	workers := fixtureWorkers(1, "server")
	periods := []Period{
		{ID: "AM", Name: "Morning", Start: "06:00", End: "15:00"},
		{ID: "PM", Name: "Evening", Start: "15:00", End: "23:30"},
	}
	templates := []Template{
		{ID: "srv-pm", Role: "server", PeriodID: "PM", ShiftStart: "15:00", ShiftEnd: "23:00", Days: []string{"MON"}},
		{ID: "srv-am", Role: "server", PeriodID: "AM", ShiftStart: "06:00", ShiftEnd: "14:00", Days: []string{"TUE"}},
	}

	plan, understaffed, err := Build(anchorMonday, periods, templates, workers, nil, nil, DefaultConfig())
	require.NoError(t, err)
	assert.Len(t, plan.Assignments, 1, "the worker's single in-build shift leaves no rest for the very next day")
	assert.NotEmpty(t, understaffed)
}
