package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/schedule"
)

// Fallback window used when working hours cannot be read: 09:00-18:00.
const (
	DefaultStartMinute = 9 * 60
	DefaultEndMinute   = 18 * 60
)

var (
	clockRangeRegex    = regexp.MustCompile(`^(\d{1,2}):(\d{1,2})\s*-\s*(\d{1,2}):(\d{1,2})$`)
	meridianRangeRegex = regexp.MustCompile(`(?i)^(\d{1,2})(?::(\d{1,2}))?\s*(am|pm)\s*-\s*(\d{1,2})(?::(\d{1,2}))?\s*(am|pm)$`)
)

// Parser turns free-text working hours and days into a Schedule. It never
// fails: unreadable text falls back to defaults and is reported in Notes.
type Parser struct {
	defaultDays schedule.WorkingDays
}

func NewParser(defaultDays schedule.WorkingDays) *Parser {
	return &Parser{defaultDays: defaultDays}
}

// Parse combines ParseHours and ParseDays.
func (p *Parser) Parse(hoursText, daysText string) schedule.Schedule {
	hours, notes := p.parseHours(hoursText)
	days, outcome := p.parseDays(daysText)
	if outcome == schedule.OutcomeFallback {
		notes = append(notes, fmt.Sprintf("working days %q not recognised, using %s", daysText, days))
	}
	return schedule.Schedule{
		Hours:       hours,
		Days:        days,
		DaysOutcome: outcome,
		Notes:       notes,
	}
}

// ParseHours accepts "HH:MM-HH:MM" (24h) and "h[:mm] am - h[:mm] pm".
func (p *Parser) ParseHours(text string) schedule.Hours {
	hours, _ := p.parseHours(text)
	return hours
}

// ParseDays accepts "Mon,Wed,Fri" or a wrapping range such as "Mon-Fri" or "Sat-Mon".
func (p *Parser) ParseDays(text string) schedule.WorkingDays {
	days, _ := p.parseDays(text)
	return days
}

func (p *Parser) parseHours(text string) (schedule.Hours, []string) {
	text = strings.TrimSpace(text)

	start, end, ok := parseClockRange(text)
	if !ok {
		start, end, ok = parseMeridianRange(text)
	}
	if !ok {
		hours := schedule.Hours{
			StartMinute:     DefaultStartMinute,
			EndMinute:       DefaultEndMinute,
			RequiredMinutes: DefaultEndMinute - DefaultStartMinute,
			Outcome:         schedule.OutcomeFallback,
		}
		return hours, []string{fmt.Sprintf("working hours %q not recognised, using 09:00-18:00", text)}
	}

	hours := schedule.Hours{
		StartMinute:     start,
		EndMinute:       end,
		RequiredMinutes: end - start,
		Outcome:         schedule.OutcomeParsed,
	}
	var notes []string
	if hours.RequiredMinutes <= 0 {
		hours.RequiredMinutes = 0
		notes = append(notes, fmt.Sprintf("working hours %q span no time, required minutes set to 0", text))
	}
	return hours, notes
}

func parseClockRange(text string) (start, end int, ok bool) {
	m := clockRangeRegex.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, false
	}
	start, ok = clockMinute(m[1], m[2])
	if !ok {
		return 0, 0, false
	}
	end, ok = clockMinute(m[3], m[4])
	if !ok {
		return 0, 0, false
	}
	return start, end, true
}

func parseMeridianRange(text string) (start, end int, ok bool) {
	m := meridianRangeRegex.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, false
	}
	start, ok = meridianMinute(m[1], m[2], m[3])
	if !ok {
		return 0, 0, false
	}
	end, ok = meridianMinute(m[4], m[5], m[6])
	if !ok {
		return 0, 0, false
	}
	return start, end, true
}

func clockMinute(h, m string) (int, bool) {
	hour, _ := strconv.Atoi(h)
	minute, _ := strconv.Atoi(m)
	if hour > 23 || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}

func meridianMinute(h, m, meridian string) (int, bool) {
	hour, _ := strconv.Atoi(h)
	minute := 0
	if m != "" {
		minute, _ = strconv.Atoi(m)
	}
	if hour < 1 || hour > 12 || minute > 59 {
		return 0, false
	}
	pm := strings.EqualFold(meridian, "pm")
	switch {
	case pm && hour < 12:
		hour += 12
	case !pm && hour == 12:
		hour = 0
	}
	return hour*60 + minute, true
}

func (p *Parser) parseDays(text string) (schedule.WorkingDays, schedule.Outcome) {
	cleaned := strings.Join(strings.Fields(text), "")
	if cleaned == "" {
		return p.defaultDays, schedule.OutcomeFallback
	}

	if strings.Contains(cleaned, "-") {
		parts := strings.Split(cleaned, "-")
		if len(parts) != 2 {
			return p.defaultDays, schedule.OutcomeFallback
		}
		from, okFrom := schedule.ParseWeekday(parts[0])
		to, okTo := schedule.ParseWeekday(parts[1])
		if !okFrom || !okTo {
			return p.defaultDays, schedule.OutcomeFallback
		}
		var days []time.Weekday
		for d := from; ; d = (d + 1) % 7 {
			days = append(days, d)
			if d == to {
				break
			}
		}
		return schedule.NewWorkingDays(days...), schedule.OutcomeParsed
	}

	var days []time.Weekday
	for _, part := range strings.Split(cleaned, ",") {
		if part == "" {
			continue
		}
		d, ok := schedule.ParseWeekday(part)
		if !ok {
			return p.defaultDays, schedule.OutcomeFallback
		}
		days = append(days, d)
	}
	if len(days) == 0 {
		return p.defaultDays, schedule.OutcomeFallback
	}
	return schedule.NewWorkingDays(days...), schedule.OutcomeParsed
}
