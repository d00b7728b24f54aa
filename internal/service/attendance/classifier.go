package attendance

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/schedule"
)

// Classification is the derived state of one attendance day.
type Classification struct {
	Status          attendance.DayStatus
	Warnings        int
	WorkedMinutes   int
	OvertimeMinutes int
}

// Classifier derives day status, lateness and overtime from a punch pair.
// It is pure and safe for concurrent use.
type Classifier struct {
	loc          *time.Location
	graceMinutes int
}

// NewClassifier reads punch minute-of-day in loc and tolerates graceMinutes
// after the scheduled start before flagging lateness.
func NewClassifier(loc *time.Location, graceMinutes int) *Classifier {
	if loc == nil {
		loc = time.UTC
	}
	return &Classifier{loc: loc, graceMinutes: graceMinutes}
}

func (c *Classifier) Location() *time.Location {
	return c.loc
}

// Classify always recomputes from scratch. Without a punch-out the day is
// provisionally absent.
func (c *Classifier) Classify(punchIn, punchOut *time.Time, sched schedule.Hours) Classification {
	result := Classification{Status: attendance.StatusAbsent}
	if punchIn == nil {
		return result
	}

	if c.minuteOfDay(*punchIn) > sched.StartMinute+c.graceMinutes {
		result.Warnings = 1
	}

	if punchOut == nil {
		return result
	}

	worked := int(punchOut.Sub(*punchIn) / time.Minute)
	if worked < 0 {
		worked = 0
	}
	result.WorkedMinutes = worked

	required := sched.RequiredMinutes
	switch {
	case worked >= required:
		result.Status = attendance.StatusPresent
	case worked*2 >= required:
		result.Status = attendance.StatusHalfDay
	default:
		result.Status = attendance.StatusAbsent
	}

	if worked > required {
		result.OvertimeMinutes = worked - required
	}
	return result
}

func (c *Classifier) minuteOfDay(t time.Time) int {
	local := t.In(c.loc)
	return local.Hour()*60 + local.Minute()
}
