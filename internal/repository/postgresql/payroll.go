package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

const payrollColumns = `p.id, p.employee_id, p.month, p.base_salary,
	p.expected_working_days, p.present_days, p.half_days, p.absences,
	p.non_deductible_leaves, p.deductible_leaves, p.late_warnings, p.overtime_minutes,
	p.per_day_rate, p.absence_deduction, p.half_day_deduction, p.leave_deduction,
	p.late_deduction, p.other_deduction, p.gross_earnings, p.overtime_pay, p.net_pay,
	p.status, p.notes, p.payment_ref, p.paid_at, p.data_quality, p.created_at, p.updated_at`

func payrollDest(rec *payroll.Payroll) []interface{} {
	return []interface{}{
		&rec.ID, &rec.EmployeeID, &rec.Month, &rec.BaseSalary,
		&rec.ExpectedWorkingDays, &rec.PresentDays, &rec.HalfDays, &rec.Absences,
		&rec.NonDeductibleLeaves, &rec.DeductibleLeaves, &rec.LateWarnings, &rec.OvertimeMinutes,
		&rec.PerDayRate, &rec.Deductions.Absence, &rec.Deductions.HalfDay, &rec.Deductions.Leave,
		&rec.Deductions.Late, &rec.Deductions.Other, &rec.GrossEarnings, &rec.OvertimePay, &rec.NetPay,
		&rec.Status, &rec.Notes, &rec.PaymentRef, &rec.PaidAt, &rec.DataQuality, &rec.CreatedAt, &rec.UpdatedAt,
	}
}

// GetByEmployeeMonthForUpdate implements payroll.PayrollRepository.
func (r *payrollRepository) GetByEmployeeMonthForUpdate(ctx context.Context, employeeID, month string) (*payroll.Payroll, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payrollColumns + `
		FROM payrolls p
		WHERE p.employee_id = $1 AND p.month = $2
		FOR UPDATE
	`

	var rec payroll.Payroll
	err := q.QueryRow(ctx, query, employeeID, month).Scan(payrollDest(&rec)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock payroll record: %w", err)
	}
	return &rec, nil
}

// Upsert implements payroll.PayrollRepository.
func (r *payrollRepository) Upsert(ctx context.Context, record payroll.Payroll) (payroll.Payroll, error) {
	q := GetQuerier(ctx, r.db)

	status := record.Status
	if status == "" {
		status = payroll.PayrollStatusPending
	}
	dataQuality := record.DataQuality
	if dataQuality == nil {
		dataQuality = []string{}
	}

	// A Paid row fails the WHERE of the update branch, so nothing is returned.
	query := `
		INSERT INTO payrolls AS p (
			employee_id, month, base_salary,
			expected_working_days, present_days, half_days, absences,
			non_deductible_leaves, deductible_leaves, late_warnings, overtime_minutes,
			per_day_rate, absence_deduction, half_day_deduction, leave_deduction,
			late_deduction, other_deduction, gross_earnings, overtime_pay, net_pay,
			status, data_quality
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		ON CONFLICT ON CONSTRAINT uk_payroll_employee_month DO UPDATE SET
			base_salary = EXCLUDED.base_salary,
			expected_working_days = EXCLUDED.expected_working_days,
			present_days = EXCLUDED.present_days,
			half_days = EXCLUDED.half_days,
			absences = EXCLUDED.absences,
			non_deductible_leaves = EXCLUDED.non_deductible_leaves,
			deductible_leaves = EXCLUDED.deductible_leaves,
			late_warnings = EXCLUDED.late_warnings,
			overtime_minutes = EXCLUDED.overtime_minutes,
			per_day_rate = EXCLUDED.per_day_rate,
			absence_deduction = EXCLUDED.absence_deduction,
			half_day_deduction = EXCLUDED.half_day_deduction,
			leave_deduction = EXCLUDED.leave_deduction,
			late_deduction = EXCLUDED.late_deduction,
			other_deduction = EXCLUDED.other_deduction,
			gross_earnings = EXCLUDED.gross_earnings,
			overtime_pay = EXCLUDED.overtime_pay,
			net_pay = EXCLUDED.net_pay,
			data_quality = EXCLUDED.data_quality,
			updated_at = NOW()
		WHERE p.status <> 'Paid'
		RETURNING ` + payrollColumns

	d := record.Deductions
	var rec payroll.Payroll
	err := q.QueryRow(ctx, query,
		record.EmployeeID, record.Month, record.BaseSalary,
		record.ExpectedWorkingDays, record.PresentDays, record.HalfDays, record.Absences,
		record.NonDeductibleLeaves, record.DeductibleLeaves, record.LateWarnings, record.OvertimeMinutes,
		record.PerDayRate, d.Absence, d.HalfDay, d.Leave,
		d.Late, d.Other, record.GrossEarnings, record.OvertimePay, record.NetPay,
		status, dataQuality,
	).Scan(payrollDest(&rec)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Payroll{}, payroll.ErrPayrollAlreadyPaid
		}
		return payroll.Payroll{}, fmt.Errorf("failed to upsert payroll record: %w", err)
	}
	return rec, nil
}

// GetByID implements payroll.PayrollRepository.
func (r *payrollRepository) GetByID(ctx context.Context, id string) (payroll.Payroll, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payrollColumns + `, e.full_name, e.employee_code
		FROM payrolls p
		JOIN employees e ON e.id = p.employee_id
		WHERE p.id = $1
	`

	var rec payroll.Payroll
	err := q.QueryRow(ctx, query, id).Scan(append(payrollDest(&rec), &rec.EmployeeName, &rec.EmployeeCode)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return payroll.Payroll{}, payroll.ErrPayrollNotFound
		}
		return payroll.Payroll{}, fmt.Errorf("failed to get payroll record: %w", err)
	}
	return rec, nil
}

// List implements payroll.PayrollRepository.
func (r *payrollRepository) List(ctx context.Context, filter payroll.PayrollFilter) ([]payroll.Payroll, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseQuery := `
		FROM payrolls p
		JOIN employees e ON p.employee_id = e.id
		WHERE 1=1
	`
	args := []interface{}{}
	argIdx := 1

	if filter.Month != nil && *filter.Month != "" {
		baseQuery += fmt.Sprintf(" AND p.month = $%d", argIdx)
		args = append(args, *filter.Month)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		baseQuery += fmt.Sprintf(" AND p.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.EmployeeID != nil {
		baseQuery += fmt.Sprintf(" AND p.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}

	// Count query
	var totalCount int64
	countQuery := "SELECT COUNT(*) " + baseQuery
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll records: %w", err)
	}

	// Sort
	sortColumn := "p.month"
	if filter.SortBy != "" {
		allowedColumns := map[string]string{
			"created_at":    "p.created_at",
			"month":         "p.month",
			"employee_name": "e.full_name",
			"net_pay":       "p.net_pay",
		}
		if col, ok := allowedColumns[filter.SortBy]; ok {
			sortColumn = col
		}
	}
	sortOrder := "ASC"
	if filter.SortOrder == "desc" {
		sortOrder = "DESC"
	}

	// Pagination
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit

	selectQuery := fmt.Sprintf(`
		SELECT %s, e.full_name, e.employee_code
		%s
		ORDER BY %s %s, p.employee_id
		LIMIT $%d OFFSET $%d
	`, payrollColumns, baseQuery, sortColumn, sortOrder, argIdx, argIdx+1)

	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll records: %w", err)
	}
	defer rows.Close()

	var records []payroll.Payroll
	for rows.Next() {
		var rec payroll.Payroll
		if err := rows.Scan(append(payrollDest(&rec), &rec.EmployeeName, &rec.EmployeeCode)...); err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return records, totalCount, nil
}

// Update implements payroll.PayrollRepository.
func (r *payrollRepository) Update(ctx context.Context, record payroll.Payroll) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payrolls
		SET absence_deduction = $2, half_day_deduction = $3, leave_deduction = $4,
			late_deduction = $5, other_deduction = $6, gross_earnings = $7, net_pay = $8,
			status = $9, notes = $10, updated_at = NOW()
		WHERE id = $1 AND status <> 'Paid'
	`

	d := record.Deductions
	tag, err := q.Exec(ctx, query,
		record.ID, d.Absence, d.HalfDay, d.Leave,
		d.Late, d.Other, record.GrossEarnings, record.NetPay,
		record.Status, record.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to update payroll record: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	return r.explainUnchanged(ctx, record.ID)
}

// MarkPaid implements payroll.PayrollRepository.
func (r *payrollRepository) MarkPaid(ctx context.Context, record payroll.Payroll) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payrolls
		SET status = 'Paid', payment_ref = $2, paid_at = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'Approved'
	`

	tag, err := q.Exec(ctx, query, record.ID, record.PaymentRef, record.PaidAt)
	if err != nil {
		return fmt.Errorf("failed to mark payroll record paid: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	if err := r.explainUnchanged(ctx, record.ID); err != nil {
		return err
	}
	return payroll.ErrPayrollNotApproved
}

// explainUnchanged maps a guarded update that touched no row to its cause.
// It returns nil when the row exists and is not Paid.
func (r *payrollRepository) explainUnchanged(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	var status payroll.PayrollStatus
	err := q.QueryRow(ctx, `SELECT status FROM payrolls WHERE id = $1`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.ErrPayrollNotFound
		}
		return fmt.Errorf("failed to check payroll record status: %w", err)
	}
	if status == payroll.PayrollStatusPaid {
		return payroll.ErrPayrollAlreadyPaid
	}
	return nil
}

// Summary implements payroll.PayrollRepository.
func (r *payrollRepository) Summary(ctx context.Context, month string) ([]payroll.StatusSummary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			status,
			COUNT(*),
			COALESCE(SUM(gross_earnings), 0),
			COALESCE(SUM(absence_deduction + half_day_deduction + leave_deduction + late_deduction + other_deduction), 0),
			COALESCE(SUM(net_pay), 0)
		FROM payrolls
		WHERE month = $1
		GROUP BY status
		ORDER BY CASE status WHEN 'Pending' THEN 1 WHEN 'Approved' THEN 2 ELSE 3 END
	`

	rows, err := q.Query(ctx, query, month)
	if err != nil {
		return nil, fmt.Errorf("failed to get payroll summary: %w", err)
	}
	defer rows.Close()

	var out []payroll.StatusSummary
	for rows.Next() {
		var s payroll.StatusSummary
		if err := rows.Scan(&s.Status, &s.Count, &s.TotalGross, &s.TotalDeductions, &s.TotalNet); err != nil {
			return nil, fmt.Errorf("failed to scan payroll summary: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}
