package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

type PayrollRepository struct {
	s *Store
}

func (s *Store) Payrolls() *PayrollRepository {
	return &PayrollRepository{s: s}
}

func (r *PayrollRepository) GetByEmployeeMonthForUpdate(ctx context.Context, employeeID, month string) (*payroll.Payroll, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.payrolls {
		if p.EmployeeID == employeeID && p.Month == month {
			return &p, nil
		}
	}
	return nil, nil
}

func (r *PayrollRepository) Upsert(ctx context.Context, record payroll.Payroll) (payroll.Payroll, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now().UTC()
	for id, existing := range r.s.payrolls {
		if existing.EmployeeID != record.EmployeeID || existing.Month != record.Month {
			continue
		}
		if existing.Status == payroll.PayrollStatusPaid {
			return payroll.Payroll{}, payroll.ErrPayrollAlreadyPaid
		}
		record.ID = existing.ID
		record.Status = existing.Status
		record.Notes = existing.Notes
		record.PaymentRef = existing.PaymentRef
		record.PaidAt = existing.PaidAt
		record.CreatedAt = existing.CreatedAt
		record.UpdatedAt = now
		r.s.payrolls[id] = record
		return record, nil
	}
	if record.ID == "" {
		record.ID = newID()
	}
	if record.Status == "" {
		record.Status = payroll.PayrollStatusPending
	}
	record.CreatedAt, record.UpdatedAt = now, now
	r.s.payrolls[record.ID] = record
	return record, nil
}

func (r *PayrollRepository) GetByID(ctx context.Context, id string) (payroll.Payroll, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payrolls[id]
	if !ok {
		return payroll.Payroll{}, payroll.ErrPayrollNotFound
	}
	return p, nil
}

func (r *PayrollRepository) List(ctx context.Context, filter payroll.PayrollFilter) ([]payroll.Payroll, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []payroll.Payroll
	for _, p := range r.s.payrolls {
		if filter.Month != nil && *filter.Month != "" && p.Month != *filter.Month {
			continue
		}
		if filter.Status != nil && *filter.Status != "" && string(p.Status) != *filter.Status {
			continue
		}
		if filter.EmployeeID != nil && p.EmployeeID != *filter.EmployeeID {
			continue
		}
		if e, ok := r.s.employees[p.EmployeeID]; ok {
			p.EmployeeName = &e.FullName
			p.EmployeeCode = &e.EmployeeCode
		}
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b payroll.Payroll) int {
		c := comparePayroll(a, b, filter.SortBy)
		if strings.EqualFold(filter.SortOrder, "desc") {
			c = -c
		}
		if c != 0 {
			return c
		}
		return strings.Compare(a.EmployeeID, b.EmployeeID)
	})
	return paginate(out, filter.Page, filter.Limit), int64(len(out)), nil
}

func comparePayroll(a, b payroll.Payroll, sortBy string) int {
	switch sortBy {
	case "net_pay":
		return a.NetPay.Cmp(b.NetPay)
	case "employee_name":
		var an, bn string
		if a.EmployeeName != nil {
			an = *a.EmployeeName
		}
		if b.EmployeeName != nil {
			bn = *b.EmployeeName
		}
		return strings.Compare(an, bn)
	case "created_at":
		return a.CreatedAt.Compare(b.CreatedAt)
	default:
		return strings.Compare(a.Month, b.Month)
	}
}

func (r *PayrollRepository) Update(ctx context.Context, record payroll.Payroll) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.payrolls[record.ID]
	if !ok {
		return payroll.ErrPayrollNotFound
	}
	if existing.Status == payroll.PayrollStatusPaid {
		return payroll.ErrPayrollAlreadyPaid
	}
	record.UpdatedAt = time.Now().UTC()
	r.s.payrolls[record.ID] = record
	return nil
}

func (r *PayrollRepository) MarkPaid(ctx context.Context, record payroll.Payroll) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.payrolls[record.ID]
	if !ok {
		return payroll.ErrPayrollNotFound
	}
	switch existing.Status {
	case payroll.PayrollStatusPaid:
		return payroll.ErrPayrollAlreadyPaid
	case payroll.PayrollStatusApproved:
	default:
		return payroll.ErrPayrollNotApproved
	}
	existing.Status = payroll.PayrollStatusPaid
	existing.PaymentRef = record.PaymentRef
	existing.PaidAt = record.PaidAt
	existing.UpdatedAt = time.Now().UTC()
	r.s.payrolls[record.ID] = existing
	return nil
}

func (r *PayrollRepository) Summary(ctx context.Context, month string) ([]payroll.StatusSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	byStatus := map[payroll.PayrollStatus]*payroll.StatusSummary{}
	for _, p := range r.s.payrolls {
		if p.Month != month {
			continue
		}
		sum, ok := byStatus[p.Status]
		if !ok {
			sum = &payroll.StatusSummary{
				Status:          p.Status,
				TotalGross:      decimal.Zero,
				TotalDeductions: decimal.Zero,
				TotalNet:        decimal.Zero,
			}
			byStatus[p.Status] = sum
		}
		sum.Count++
		sum.TotalGross = sum.TotalGross.Add(p.GrossEarnings)
		sum.TotalDeductions = sum.TotalDeductions.Add(p.Deductions.Total())
		sum.TotalNet = sum.TotalNet.Add(p.NetPay)
	}
	var out []payroll.StatusSummary
	for _, st := range []payroll.PayrollStatus{payroll.PayrollStatusPending, payroll.PayrollStatusApproved, payroll.PayrollStatusPaid} {
		if sum, ok := byStatus[st]; ok {
			out = append(out, *sum)
		}
	}
	return out, nil
}
