package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/schedule"
	"gopkg.in/yaml.v3"
)

// PayrollRules is the process-wide deduction policy.
type PayrollRules struct {
	// NonDeductibleLeaves maps a leave code to whether it skips pay deduction.
	NonDeductibleLeaves map[string]bool `yaml:"non_deductible_leaves"`
	HalfDayFraction     float64         `yaml:"half_day_fraction"`
	AbsenceFraction     float64         `yaml:"absence_fraction"`
	LateFreeAllowances  int             `yaml:"late_free_allowances"`
	LatePenaltyFraction float64         `yaml:"late_penalty_fraction"`
	LateGraceMinutes    int             `yaml:"late_grace_minutes"`
	DefaultWorkingDays  []string        `yaml:"default_working_days"`
	Overtime            OvertimeRules   `yaml:"overtime"`
}

type OvertimeRules struct {
	Enabled    bool    `yaml:"enabled"`
	Multiplier float64 `yaml:"multiplier"`
}

// DefaultRules returns the shipped policy.
func DefaultRules() *PayrollRules {
	return &PayrollRules{
		NonDeductibleLeaves: map[string]bool{
			string(leave.TypeCasual): true,
			string(leave.TypeSick):   true,
			string(leave.TypePaid):   false,
			string(leave.TypeUnpaid): false,
		},
		HalfDayFraction:     0.5,
		AbsenceFraction:     1,
		LateFreeAllowances:  1,
		LatePenaltyFraction: 0.25,
		LateGraceMinutes:    15,
		DefaultWorkingDays:  []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"},
		Overtime: OvertimeRules{
			Enabled:    false,
			Multiplier: 1,
		},
	}
}

// Validate checks that the rules are usable
func (r *PayrollRules) Validate() error {
	if r.HalfDayFraction < 0 {
		return fmt.Errorf("half_day_fraction must not be negative")
	}
	if r.AbsenceFraction < 0 {
		return fmt.Errorf("absence_fraction must not be negative")
	}
	if r.LatePenaltyFraction < 0 {
		return fmt.Errorf("late_penalty_fraction must not be negative")
	}
	if r.LateFreeAllowances < 0 {
		return fmt.Errorf("late_free_allowances must not be negative")
	}
	if r.LateGraceMinutes < 0 {
		return fmt.Errorf("late_grace_minutes must not be negative")
	}
	if r.Overtime.Multiplier < 0 {
		return fmt.Errorf("overtime.multiplier must not be negative")
	}
	for code := range r.NonDeductibleLeaves {
		if _, ok := leave.ParseType(code); !ok {
			return fmt.Errorf("non_deductible_leaves: unknown leave code %q", code)
		}
	}
	for _, d := range r.DefaultWorkingDays {
		if _, ok := schedule.ParseWeekday(d); !ok {
			return fmt.Errorf("default_working_days: unknown weekday %q", d)
		}
	}
	return nil
}

// IsNonDeductible looks up a leave code; codes missing from the table deduct.
func (r *PayrollRules) IsNonDeductible(t leave.Type) bool {
	if skip, ok := r.NonDeductibleLeaves[string(t)]; ok {
		return skip
	}
	for code, skip := range r.NonDeductibleLeaves {
		if strings.EqualFold(code, string(t)) {
			return skip
		}
	}
	return false
}

// WorkingDaysDefault is the weekday set used when an employee's text cannot be parsed.
func (r *PayrollRules) WorkingDaysDefault() schedule.WorkingDays {
	var days []time.Weekday
	for _, d := range r.DefaultWorkingDays {
		if wd, ok := schedule.ParseWeekday(d); ok {
			days = append(days, wd)
		}
	}
	return schedule.NewWorkingDays(days...)
}

// LoadRulesFromFile loads rules from a YAML file over the defaults
func LoadRulesFromFile(path string) (*PayrollRules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	rules := DefaultRules()
	if err := yaml.Unmarshal(data, rules); err != nil {
		return nil, fmt.Errorf("failed to parse rules file: %w", err)
	}

	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules file: %w", err)
	}
	return rules, nil
}
