package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-go/internal/repository/postgresql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// newTestDatabase connects to TEST_DATABASE_URL, applies the schema and
// empties every table. The test is skipped when no database is reachable.
func newTestDatabase(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolOptions{MaxConns: 5, MinConns: 1})
	if err != nil {
		t.Skipf("test database unreachable: %v", err)
	}
	t.Cleanup(db.Close)

	require.NoError(t, postgresql.Migrate(ctx, db))
	truncateAllTables(t, db)
	return db
}

func truncateAllTables(t *testing.T, db *database.DB) {
	t.Helper()
	tables := []string{"payrolls", "attendances", "leave_requests", "users", "employees"}
	for _, table := range tables {
		_, err := db.Exec(context.Background(), fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err, "truncate %s", table)
	}
}

func createTestEmployee(t *testing.T, db *database.DB, code string) employee.Employee {
	t.Helper()
	now := time.Now().UTC()
	emp, err := postgresql.NewEmployeeRepository(db).Create(context.Background(), employee.Employee{
		EmployeeCode: code,
		FullName:     "Employee " + code,
		Email:        code + "@example.com",
		BaseSalary:   decimal.NewFromInt(30000),
		WorkingHours: "09:00-18:00",
		WorkingDays:  "Mon-Fri",
		LeaveBalance: 10,
		IsActive:     true,
		ActivatedAt:  &now,
	})
	require.NoError(t, err)
	return emp
}
