package payroll

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/config"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/schedule"
)

// Aggregator walks a month of attendance and produces the day tallies.
type Aggregator struct {
	rules *config.PayrollRules
}

func NewAggregator(rules *config.PayrollRules) *Aggregator {
	return &Aggregator{rules: rules}
}

// MonthDates lists the UTC civil dates of the month containing month.
func MonthDates(month time.Time) []time.Time {
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	var dates []time.Time
	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

// Aggregate tallies records against the schedule's working days. Records
// outside the month or on non-working days are ignored.
func (a *Aggregator) Aggregate(sched schedule.Schedule, month time.Time, records []attendance.Attendance) payroll.Tallies {
	byDate := make(map[time.Time]attendance.Attendance, len(records))
	for _, r := range records {
		byDate[r.Date] = r
	}

	var t payroll.Tallies
	for _, day := range MonthDates(month) {
		if !sched.IsWorkingDay(day) {
			continue
		}
		t.ExpectedWorkingDays++

		record, ok := byDate[day]
		if !ok {
			t.Absences++
			continue
		}

		t.LateWarnings += record.Warnings
		t.OvertimeMinutes += record.OvertimeMinutes

		rejected := record.LeaveStatus != nil && *record.LeaveStatus == leave.StatusRejected
		switch {
		case record.LeaveType != nil && !rejected:
			if a.rules.IsNonDeductible(*record.LeaveType) {
				t.NonDeductibleLeaves++
			} else {
				t.DeductibleLeaves++
			}
		case record.Status == nil:
			// Includes a refused leave day with nobody at work.
			t.Absences++
		case *record.Status == attendance.StatusPresent:
			t.PresentDays++
		case *record.Status == attendance.StatusHalfDay:
			t.HalfDays++
		default:
			t.Absences++
		}
	}
	return t
}
