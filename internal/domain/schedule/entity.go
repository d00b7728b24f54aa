package schedule

import (
	"strings"
	"time"
)

// Outcome tags how a schedule field was obtained.
type Outcome int

const (
	OutcomeParsed Outcome = iota
	OutcomeFallback
)

func (o Outcome) String() string {
	if o == OutcomeFallback {
		return "fallback"
	}
	return "parsed"
}

// Hours is a normalised working-hours window, in minutes after midnight.
type Hours struct {
	StartMinute     int
	EndMinute       int
	RequiredMinutes int
	Outcome         Outcome
}

// DefaultUsed reports whether the text could not be parsed.
func (h Hours) DefaultUsed() bool {
	return h.Outcome == OutcomeFallback
}

// WorkingDays is a weekday set indexed by time.Weekday.
type WorkingDays [7]bool

// NewWorkingDays builds a set from weekdays.
func NewWorkingDays(days ...time.Weekday) WorkingDays {
	var wd WorkingDays
	for _, d := range days {
		if d >= time.Sunday && d <= time.Saturday {
			wd[d] = true
		}
	}
	return wd
}

func (w WorkingDays) Has(d time.Weekday) bool {
	if d < time.Sunday || d > time.Saturday {
		return false
	}
	return w[d]
}

func (w WorkingDays) Count() int {
	n := 0
	for _, ok := range w {
		if ok {
			n++
		}
	}
	return n
}

// String renders the set in Sun..Sat order, e.g. "Mon,Tue,Wed".
func (w WorkingDays) String() string {
	var names []string
	for d := time.Sunday; d <= time.Saturday; d++ {
		if w[d] {
			names = append(names, WeekdayAbbrev(d))
		}
	}
	return strings.Join(names, ",")
}

// WeekdayAbbrev returns the three-letter name used in working-days text.
func WeekdayAbbrev(d time.Weekday) string {
	return d.String()[:3]
}

// ParseWeekday matches a three-letter abbreviation case-insensitively.
func ParseWeekday(s string) (time.Weekday, bool) {
	s = strings.TrimSpace(s)
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(WeekdayAbbrev(d), s) {
			return d, true
		}
	}
	return 0, false
}

// Schedule is an employee's parsed working-hours and working-days configuration.
type Schedule struct {
	Hours
	Days        WorkingDays
	DaysOutcome Outcome
	// Notes lists data-quality conditions met while parsing.
	Notes []string
}

// IsWorkingDay reports whether date's weekday is expected to be worked.
func (s Schedule) IsWorkingDay(date time.Time) bool {
	return s.Days.Has(date.Weekday())
}
