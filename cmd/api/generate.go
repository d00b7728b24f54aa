package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-payroll-go/internal/repository/postgresql"
	"github.com/spf13/cobra"
)

func generateCmd(logLevel *string) *cobra.Command {
	var (
		month      string
		employeeID string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate payroll rows for a month",
		Long: `Generate recomputes payroll for every active employee, or a single one
with --employee. Rows already marked Paid are left untouched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return generate(cmd.Context(), *logLevel, month, employeeID)
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "Month to generate (YYYY-MM); defaults to the current month")
	cmd.Flags().StringVar(&employeeID, "employee", "", "Only generate for this employee ID")

	return cmd
}

func generate(ctx context.Context, logLevel, month, employeeID string) error {
	a, err := bootstrap(ctx, logLevel)
	if err != nil {
		return err
	}
	defer a.Close()

	if month == "" {
		month = time.Now().In(a.loc).Format("2006-01")
	}

	req := payroll.GeneratePayrollRequest{Month: month}
	if employeeID != "" {
		req.EmployeeID = &employeeID
	}

	result, err := a.payrollSvc.GeneratePayroll(user.WithActor(ctx, user.SystemActor()), req)
	if err != nil {
		return fmt.Errorf("failed to generate payroll: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return err
	}
	if len(result.Failed) > 0 {
		return fmt.Errorf("%d employee(s) failed", len(result.Failed))
	}
	return nil
}

func migrateCmd(logLevel *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context(), *logLevel)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := postgresql.Migrate(cmd.Context(), a.db); err != nil {
				return err
			}
			a.logger.Info("database schema applied")
			return nil
		},
	}
}
