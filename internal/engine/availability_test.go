package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAvailabilityWideOpenWithoutRules(t *testing.T) {
	week := NewWeekFrame(anchorMonday)
	avail := MaterializeAvailability(week, nil)
	assert.Nil(t, avail["worker-1"], "no rules means no entry, treated as wide open by IsOpen")

	var a *Availability
	shift := ShiftSpec{Date: week.Dates[1], PeriodID: "AM"}
	assert.True(t, a.IsOpen("MON", shift, Period{ID: "AM", Start: "08:00", End: "16:00"}))
}

func TestAvailabilityAppliesAvailabilitySpan(t *testing.T) {
	week := NewWeekFrame(anchorMonday)
	monday, _ := week.DateFor("MON")
	rules := []ConstraintRule{
		{WorkerID: "w1", Kind: ConstraintKindAvailability, Day: "MON", Spans: []TimeSpan{{Start: "08:00", End: "12:00"}}},
	}
	avail := MaterializeAvailability(week, rules)

	morningShift := ShiftSpec{Date: monday, PeriodID: "AM"}
	eveningShift := ShiftSpec{Date: monday, PeriodID: "PM"}
	assert.True(t, avail["w1"].IsOpen("MON", morningShift, Period{Start: "08:00", End: "12:00"}))
	assert.False(t, avail["w1"].IsOpen("MON", eveningShift, Period{Start: "16:00", End: "23:00"}))
}

func TestAvailabilityCombinationNarrowsDayAndShift(t *testing.T) {
	week := NewWeekFrame(anchorMonday)
	friday, _ := week.DateFor("FRI")
	rules := []ConstraintRule{
		{WorkerID: "w1", Kind: ConstraintKindCombination, Day: "FRI", Shift: "PM"},
	}
	avail := MaterializeAvailability(week, rules)

	allowed := ShiftSpec{Date: friday, PeriodID: "PM"}
	disallowed := ShiftSpec{Date: friday, PeriodID: "AM"}
	assert.True(t, avail["w1"].IsOpen("FRI", allowed, Period{Start: "16:00", End: "23:00"}))
	assert.False(t, avail["w1"].IsOpen("FRI", disallowed, Period{Start: "08:00", End: "16:00"}))
}
