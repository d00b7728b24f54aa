package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
)

type EmployeeRepository struct {
	s *Store
}

func (s *Store) Employees() *EmployeeRepository {
	return &EmployeeRepository{s: s}
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (r *EmployeeRepository) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.employees {
		if e.EmployeeCode == newEmployee.EmployeeCode {
			return employee.Employee{}, employee.ErrEmployeeCodeExists
		}
		if strings.EqualFold(e.Email, newEmployee.Email) {
			return employee.Employee{}, employee.ErrEmailExists
		}
	}
	if newEmployee.ID == "" {
		newEmployee.ID = newID()
	}
	now := time.Now().UTC()
	newEmployee.CreatedAt, newEmployee.UpdatedAt = now, now
	r.s.employees[newEmployee.ID] = newEmployee
	return newEmployee, nil
}

func (r *EmployeeRepository) Update(ctx context.Context, id string, req employee.UpdateEmployeeRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.employees[id]
	if !ok {
		return employee.ErrEmployeeNotFound
	}
	if req.FullName != nil {
		e.FullName = *req.FullName
	}
	if req.Email != nil {
		e.Email = *req.Email
	}
	if req.BaseSalary != nil {
		e.BaseSalary = *req.BaseSalary
	}
	if req.WorkingHours != nil {
		e.WorkingHours = *req.WorkingHours
	}
	if req.WorkingDays != nil {
		e.WorkingDays = *req.WorkingDays
	}
	if req.LeaveBalance != nil {
		e.LeaveBalance = *req.LeaveBalance
	}
	if req.DeductionType != nil {
		e.DeductionType = req.DeductionType
	}
	if req.DeductionAmount != nil {
		e.DeductionAmount = *req.DeductionAmount
	}
	e.UpdatedAt = time.Now().UTC()
	r.s.employees[id] = e
	return nil
}

func (r *EmployeeRepository) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []employee.Employee
	for _, e := range r.s.employees {
		if filter.IsActive != nil && e.IsActive != *filter.IsActive {
			continue
		}
		if filter.Search != nil {
			q := strings.ToLower(*filter.Search)
			if !strings.Contains(strings.ToLower(e.FullName), q) && !strings.Contains(strings.ToLower(e.EmployeeCode), q) {
				continue
			}
		}
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b employee.Employee) int { return strings.Compare(a.EmployeeCode, b.EmployeeCode) })
	return paginate(out, filter.Page, filter.Limit), int64(len(out)), nil
}

func (r *EmployeeRepository) GetActive(ctx context.Context) ([]employee.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []employee.Employee
	for _, e := range r.s.employees {
		if e.IsActive {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b employee.Employee) int { return strings.Compare(a.EmployeeCode, b.EmployeeCode) })
	return out, nil
}

func (r *EmployeeRepository) AdjustLeaveBalance(ctx context.Context, id string, delta int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.employees[id]
	if !ok {
		return 0, employee.ErrEmployeeNotFound
	}
	e.LeaveBalance += delta
	r.s.employees[id] = e
	return e.LeaveBalance, nil
}

func (r *EmployeeRepository) UpdateStatus(ctx context.Context, updated employee.Employee) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.employees[updated.ID]
	if !ok {
		return employee.ErrEmployeeNotFound
	}
	e.IsActive = updated.IsActive
	e.ActivatedAt = updated.ActivatedAt
	e.DeactivatedAt = updated.DeactivatedAt
	r.s.employees[e.ID] = e
	return nil
}

func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.employees[id]; !ok {
		return employee.ErrEmployeeNotFound
	}
	delete(r.s.employees, id)
	return nil
}

func paginate[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := min(start+limit, len(items))
	return items[start:end]
}
