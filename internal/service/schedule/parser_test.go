package schedule

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/schedule"
	"github.com/stretchr/testify/assert"
)

func allDays() schedule.WorkingDays {
	return schedule.NewWorkingDays(time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday)
}

func TestParser_ParseHours(t *testing.T) {
	p := NewParser(allDays())

	tests := []struct {
		name         string
		input        string
		wantStart    int
		wantEnd      int
		wantRequired int
		wantFallback bool
	}{
		{name: "24h padded", input: "09:00-18:00", wantStart: 540, wantEnd: 1080, wantRequired: 540},
		{name: "24h unpadded with spaces", input: "9:30 - 17:45", wantStart: 570, wantEnd: 1065, wantRequired: 495},
		{name: "meridian without minutes", input: "9am - 6pm", wantStart: 540, wantEnd: 1080, wantRequired: 540},
		{name: "meridian upper case with minutes", input: "8:30 AM - 5:15 PM", wantStart: 510, wantEnd: 1035, wantRequired: 525},
		{name: "noon and midnight", input: "12pm-11pm", wantStart: 720, wantEnd: 1380, wantRequired: 660},
		{name: "12am is midnight", input: "12am-8am", wantStart: 0, wantEnd: 480, wantRequired: 480},
		{name: "empty falls back", input: "", wantStart: 540, wantEnd: 1080, wantRequired: 540, wantFallback: true},
		{name: "garbage falls back", input: "flexible", wantStart: 540, wantEnd: 1080, wantRequired: 540, wantFallback: true},
		{name: "hour out of range falls back", input: "25:00-26:00", wantStart: 540, wantEnd: 1080, wantRequired: 540, wantFallback: true},
		{name: "13pm falls back", input: "13pm-5pm", wantStart: 540, wantEnd: 1080, wantRequired: 540, wantFallback: true},
		{name: "reversed span clamps to zero", input: "18:00-09:00", wantStart: 1080, wantEnd: 540, wantRequired: 0},
		{name: "empty span", input: "10:00-10:00", wantStart: 600, wantEnd: 600, wantRequired: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.ParseHours(tt.input)
			assert.Equal(t, tt.wantStart, got.StartMinute)
			assert.Equal(t, tt.wantEnd, got.EndMinute)
			assert.Equal(t, tt.wantRequired, got.RequiredMinutes)
			assert.Equal(t, tt.wantFallback, got.DefaultUsed())
		})
	}
}

func TestParser_ParseDays(t *testing.T) {
	weekdays := schedule.NewWorkingDays(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday)
	p := NewParser(weekdays)

	tests := []struct {
		name  string
		input string
		want  []time.Weekday
	}{
		{name: "range", input: "Mon-Fri", want: []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}},
		{name: "wrapping range", input: "Fri-Mon", want: []time.Weekday{time.Friday, time.Saturday, time.Sunday, time.Monday}},
		{name: "single day range", input: "Wed-Wed", want: []time.Weekday{time.Wednesday}},
		{name: "list with spaces and case", input: "mon, WED ,fri", want: []time.Weekday{time.Monday, time.Wednesday, time.Friday}},
		{name: "range with spaces", input: " Sun - Thu ", want: []time.Weekday{time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.ParseDays(tt.input)
			assert.Equal(t, schedule.NewWorkingDays(tt.want...), got)
			assert.Equal(t, len(tt.want), got.Count())
		})
	}
}

func TestParser_ParseDays_FallsBackToDefault(t *testing.T) {
	weekdays := schedule.NewWorkingDays(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday)
	p := NewParser(weekdays)

	for _, input := range []string{"", "   ", "Monday-Friday", "Mon-Fri-Sat", "Mon,Funday", ",,"} {
		s := p.Parse("09:00-18:00", input)
		assert.Equal(t, weekdays, s.Days, "input %q", input)
		assert.Equal(t, schedule.OutcomeFallback, s.DaysOutcome, "input %q", input)
		assert.Len(t, s.Notes, 1, "input %q", input)
	}
}

func TestParser_Parse_CollectsNotes(t *testing.T) {
	p := NewParser(allDays())

	s := p.Parse("09:00-18:00", "Mon-Fri")
	assert.Empty(t, s.Notes)
	assert.Equal(t, schedule.OutcomeParsed, s.Outcome)
	assert.Equal(t, schedule.OutcomeParsed, s.DaysOutcome)
	assert.True(t, s.IsWorkingDay(time.Date(2025, 8, 4, 0, 0, 0, 0, time.UTC)))  // Monday
	assert.False(t, s.IsWorkingDay(time.Date(2025, 8, 3, 0, 0, 0, 0, time.UTC))) // Sunday

	s = p.Parse("whenever", "")
	assert.Len(t, s.Notes, 2)
	assert.True(t, s.DefaultUsed())
	assert.Equal(t, 7, s.Days.Count())

	s = p.Parse("18:00-09:00", "Mon-Fri")
	assert.Len(t, s.Notes, 1)
	assert.Equal(t, 0, s.RequiredMinutes)
}
