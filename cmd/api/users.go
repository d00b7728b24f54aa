package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/user"
	serviceAuth "github.com/cmlabs-hris/hris-payroll-go/internal/service/auth"
	"github.com/spf13/cobra"
)

// createUserCmd seeds a login, typically the first admin, without going
// through the employee API.
func createUserCmd(logLevel *string) *cobra.Command {
	var (
		email      string
		password   string
		role       string
		employeeID string
	)

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a login",
		RunE: func(cmd *cobra.Command, args []string) error {
			return createUser(cmd.Context(), *logLevel, email, password, role, employeeID)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Login email")
	cmd.Flags().StringVar(&password, "password", "", "Login password")
	cmd.Flags().StringVar(&role, "role", string(user.RoleAdmin), "Role (admin, hr, employee)")
	cmd.Flags().StringVar(&employeeID, "employee", "", "Employee ID to link the login to")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func createUser(ctx context.Context, logLevel, email, password, role, employeeID string) error {
	parsed := user.ParseRole(role)
	switch parsed {
	case user.RoleAdmin, user.RoleHR, user.RoleEmployee:
	default:
		return fmt.Errorf("unknown role %q", role)
	}
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}

	a, err := bootstrap(ctx, logLevel)
	if err != nil {
		return err
	}
	defer a.Close()

	hash, err := serviceAuth.HashPassword(password)
	if err != nil {
		return err
	}

	newUser := user.User{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		Role:         parsed,
		IsActive:     true,
	}
	if employeeID != "" {
		newUser.EmployeeID = &employeeID
	}

	created, err := a.userRepo.Create(ctx, newUser)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	a.logger.Info("user created", "user_id", created.ID, "email", created.Email, "role", created.Role)
	return nil
}
