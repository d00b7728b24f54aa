package payroll

import (
	"github.com/cmlabs-hris/hris-payroll-go/internal/config"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// CalculationInput is everything the money math depends on.
type CalculationInput struct {
	BaseSalary decimal.Decimal
	Tallies    payroll.Tallies

	// RequiredMinutes is the scheduled day length, used for the hourly
	// overtime rate.
	RequiredMinutes int

	// OverrideBucket and OverrideAmount carry the employee's flat deduction.
	OverrideBucket string
	OverrideAmount decimal.Decimal
}

type Calculation struct {
	PerDayRate    decimal.Decimal
	Deductions    payroll.Deductions
	GrossEarnings decimal.Decimal
	OvertimePay   decimal.Decimal
	NetPay        decimal.Decimal
}

// Calculator turns tallies into money. It holds no state besides the rules.
type Calculator struct {
	rules *config.PayrollRules
}

func NewCalculator(rules *config.PayrollRules) *Calculator {
	return &Calculator{rules: rules}
}

func (c *Calculator) Calculate(in CalculationInput) Calculation {
	t := in.Tallies

	rate := decimal.Zero
	if t.ExpectedWorkingDays > 0 {
		rate = in.BaseSalary.Div(decimal.NewFromInt(int64(t.ExpectedWorkingDays)))
	}

	days := func(n int, fraction float64) decimal.Decimal {
		return decimal.NewFromInt(int64(n)).Mul(decimal.NewFromFloat(fraction)).Mul(rate)
	}

	d := payroll.Deductions{
		Absence: days(t.Absences, c.rules.AbsenceFraction),
		HalfDay: days(t.HalfDays, c.rules.HalfDayFraction),
		Leave:   days(t.DeductibleLeaves, 1),
		Late:    days(max(0, t.LateWarnings-c.rules.LateFreeAllowances), c.rules.LatePenaltyFraction),
		Other:   decimal.Zero,
	}

	d.Absence = d.Absence.Round(2)
	d.HalfDay = d.HalfDay.Round(2)
	d.Leave = d.Leave.Round(2)
	d.Late = d.Late.Round(2)
	d.Other = d.Other.Round(2)

	// The override lands after rounding, exactly as entered.
	if in.OverrideAmount.IsPositive() {
		switch in.OverrideBucket {
		case payroll.BucketAbsence:
			d.Absence = d.Absence.Add(in.OverrideAmount)
		case payroll.BucketHalfDay:
			d.HalfDay = d.HalfDay.Add(in.OverrideAmount)
		case payroll.BucketLeave:
			d.Leave = d.Leave.Add(in.OverrideAmount)
		case payroll.BucketLate:
			d.Late = d.Late.Add(in.OverrideAmount)
		default:
			d.Other = d.Other.Add(in.OverrideAmount)
		}
	}

	gross := in.BaseSalary
	overtime := decimal.Zero
	if c.rules.Overtime.Enabled && t.OvertimeMinutes > 0 && in.RequiredMinutes > 0 {
		hourly := rate.Div(decimal.NewFromInt(int64(in.RequiredMinutes)).Div(decimal.NewFromInt(60)))
		overtime = decimal.NewFromInt(int64(t.OvertimeMinutes)).
			Div(decimal.NewFromInt(60)).
			Mul(hourly).
			Mul(decimal.NewFromFloat(c.rules.Overtime.Multiplier)).
			Round(2)
		gross = gross.Add(overtime)
	}

	return Calculation{
		PerDayRate:    rate.Round(2),
		Deductions:    d,
		GrossEarnings: gross,
		OvertimePay:   overtime,
		NetPay:        NetPay(gross, d),
	}
}

// NetPay is gross minus every bucket, rounded to 2 dp and never negative.
func NetPay(gross decimal.Decimal, d payroll.Deductions) decimal.Decimal {
	net := gross.Sub(d.Total()).Round(2)
	if net.IsNegative() {
		return decimal.Zero
	}
	return net
}
