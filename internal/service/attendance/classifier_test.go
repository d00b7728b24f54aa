package attendance

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/schedule"
	"github.com/stretchr/testify/assert"
)

var nineToSix = schedule.Hours{StartMinute: 540, EndMinute: 1080, RequiredMinutes: 540}

func at(hour, minute int) *time.Time {
	t := time.Date(2025, 8, 4, hour, minute, 0, 0, time.UTC)
	return &t
}

func TestClassifier_Classify(t *testing.T) {
	c := NewClassifier(time.UTC, 15)

	tests := []struct {
		name         string
		in, out      *time.Time
		wantStatus   attendance.DayStatus
		wantWarnings int
		wantWorked   int
		wantOvertime int
	}{
		{"within grace and full day is present", at(9, 10), at(18, 20), attendance.StatusPresent, 0, 550, 10},
		{"late and short day is absent", at(9, 20), at(13, 0), attendance.StatusAbsent, 1, 220, 0},
		{"exactly at grace limit is not late", at(9, 15), at(18, 15), attendance.StatusPresent, 0, 540, 0},
		{"one minute past grace is late", at(9, 16), at(18, 16), attendance.StatusPresent, 1, 540, 0},
		{"exactly half the requirement is half day", at(9, 0), at(13, 30), attendance.StatusHalfDay, 0, 270, 0},
		{"one minute short of half is absent", at(9, 0), at(13, 29), attendance.StatusAbsent, 0, 269, 0},
		{"missing punch-out is provisionally absent", at(9, 30), nil, attendance.StatusAbsent, 1, 0, 0},
		{"punch-out before punch-in clamps to zero", at(10, 0), at(9, 0), attendance.StatusAbsent, 1, 0, 0},
		{"no punches at all", nil, nil, attendance.StatusAbsent, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.in, tt.out, nineToSix)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantWarnings, got.Warnings)
			assert.Equal(t, tt.wantWorked, got.WorkedMinutes)
			assert.Equal(t, tt.wantOvertime, got.OvertimeMinutes)
		})
	}
}

func TestClassifier_PartialMinutesAreFloored(t *testing.T) {
	c := NewClassifier(time.UTC, 15)
	in := time.Date(2025, 8, 4, 9, 0, 0, 0, time.UTC)
	out := in.Add(539*time.Minute + 59*time.Second)

	got := c.Classify(&in, &out, nineToSix)
	assert.Equal(t, 539, got.WorkedMinutes)
	assert.Equal(t, attendance.StatusHalfDay, got.Status)
}

func TestClassifier_UsesConfiguredLocation(t *testing.T) {
	kolkata := time.FixedZone("IST", 5*3600+1800)
	c := NewClassifier(kolkata, 15)

	// 03:50 UTC is 09:20 IST: late by five minutes past grace.
	in := time.Date(2025, 8, 4, 3, 50, 0, 0, time.UTC)
	got := c.Classify(&in, nil, nineToSix)
	assert.Equal(t, 1, got.Warnings)

	// 03:40 UTC is 09:10 IST: within grace.
	in = time.Date(2025, 8, 4, 3, 40, 0, 0, time.UTC)
	got = c.Classify(&in, nil, nineToSix)
	assert.Equal(t, 0, got.Warnings)
}

func TestClassifier_ZeroRequirementIsPresent(t *testing.T) {
	c := NewClassifier(time.UTC, 15)
	got := c.Classify(at(9, 0), at(9, 5), schedule.Hours{StartMinute: 600, EndMinute: 600})
	assert.Equal(t, attendance.StatusPresent, got.Status)
	assert.Equal(t, 5, got.OvertimeMinutes)
}
