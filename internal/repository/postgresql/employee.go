package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `id, employee_code, full_name, email, base_salary, working_hours, working_days,
	leave_balance, deduction_type, deduction_amount, is_active, activated_at, deactivated_at,
	created_at, updated_at`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var emp employee.Employee
	err := row.Scan(
		&emp.ID, &emp.EmployeeCode, &emp.FullName, &emp.Email, &emp.BaseSalary,
		&emp.WorkingHours, &emp.WorkingDays, &emp.LeaveBalance, &emp.DeductionType,
		&emp.DeductionAmount, &emp.IsActive, &emp.ActivatedAt, &emp.DeactivatedAt,
		&emp.CreatedAt, &emp.UpdatedAt,
	)
	return emp, err
}

// GetByID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`

	emp, err := scanEmployee(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return emp, nil
}

// Create implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		INSERT INTO employees (
			employee_code, full_name, email, base_salary, working_hours, working_days,
			leave_balance, deduction_type, deduction_amount, is_active, activated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + employeeColumns

	created, err := scanEmployee(q.QueryRow(ctx, query,
		newEmployee.EmployeeCode, newEmployee.FullName, newEmployee.Email, newEmployee.BaseSalary,
		newEmployee.WorkingHours, newEmployee.WorkingDays, newEmployee.LeaveBalance,
		newEmployee.DeductionType, newEmployee.DeductionAmount, newEmployee.IsActive, newEmployee.ActivatedAt,
	))
	if err != nil {
		switch {
		case isUniqueViolation(err, "uk_employees_code"):
			return employee.Employee{}, employee.ErrEmployeeCodeExists
		case isUniqueViolation(err, "uk_employees_email"):
			return employee.Employee{}, employee.ErrEmailExists
		}
		return employee.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}
	return created, nil
}

// Update implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) Update(ctx context.Context, id string, req employee.UpdateEmployeeRequest) error {
	q := GetQuerier(ctx, e.db)

	setParts := []string{"updated_at = NOW()"}
	args := []interface{}{id}
	argIdx := 2

	set := func(column string, value interface{}) {
		setParts = append(setParts, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}

	if req.FullName != nil {
		set("full_name", *req.FullName)
	}
	if req.Email != nil {
		set("email", *req.Email)
	}
	if req.BaseSalary != nil {
		set("base_salary", *req.BaseSalary)
	}
	if req.WorkingHours != nil {
		set("working_hours", *req.WorkingHours)
	}
	if req.WorkingDays != nil {
		set("working_days", *req.WorkingDays)
	}
	if req.LeaveBalance != nil {
		set("leave_balance", *req.LeaveBalance)
	}
	if req.DeductionType != nil {
		set("deduction_type", *req.DeductionType)
	}
	if req.DeductionAmount != nil {
		set("deduction_amount", *req.DeductionAmount)
	}

	query := fmt.Sprintf("UPDATE employees SET %s WHERE id = $1", strings.Join(setParts, ", "))
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err, "uk_employees_email") {
			return employee.ErrEmailExists
		}
		if isInvalidID(err) {
			return employee.ErrEmployeeNotFound
		}
		return fmt.Errorf("failed to update employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// List implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, int64, error) {
	q := GetQuerier(ctx, e.db)

	baseQuery := ` FROM employees WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if filter.IsActive != nil {
		baseQuery += fmt.Sprintf(" AND is_active = $%d", argIdx)
		args = append(args, *filter.IsActive)
		argIdx++
	}
	if filter.Search != nil && *filter.Search != "" {
		baseQuery += fmt.Sprintf(" AND (full_name ILIKE $%d OR employee_code ILIKE $%d)", argIdx, argIdx)
		args = append(args, "%"+*filter.Search+"%")
		argIdx++
	}

	var totalCount int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*)"+baseQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count employees: %w", err)
	}

	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit

	selectQuery := fmt.Sprintf("SELECT %s%s ORDER BY employee_code LIMIT $%d OFFSET $%d",
		employeeColumns, baseQuery, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return employees, totalCount, nil
}

// GetActive implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetActive(ctx context.Context) ([]employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE is_active ORDER BY employee_code`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return employees, nil
}

// AdjustLeaveBalance implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) AdjustLeaveBalance(ctx context.Context, id string, delta int) (int, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		UPDATE employees
		SET leave_balance = leave_balance + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING leave_balance
	`

	var balance int
	if err := q.QueryRow(ctx, query, id, delta).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return 0, employee.ErrEmployeeNotFound
		}
		return 0, fmt.Errorf("failed to adjust leave balance: %w", err)
	}
	return balance, nil
}

// UpdateStatus implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) UpdateStatus(ctx context.Context, emp employee.Employee) error {
	q := GetQuerier(ctx, e.db)

	query := `
		UPDATE employees
		SET is_active = $2, activated_at = $3, deactivated_at = $4, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, emp.ID, emp.IsActive, emp.ActivatedAt, emp.DeactivatedAt)
	if err != nil {
		if isInvalidID(err) {
			return employee.ErrEmployeeNotFound
		}
		return fmt.Errorf("failed to update employee status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// Delete implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, e.db)

	tag, err := q.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		if isInvalidID(err) {
			return employee.ErrEmployeeNotFound
		}
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}
