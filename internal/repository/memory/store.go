// Package memory keeps every repository in process memory. It backs the
// service tests and serves as a reference for the PostgreSQL semantics.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/google/uuid"
)

type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex

	employees     map[string]employee.Employee
	users         map[string]user.User
	attendances   map[string]attendance.Attendance
	leaveRequests map[string]leave.LeaveRequest
	payrolls      map[string]payroll.Payroll
}

func NewStore() *Store {
	return &Store{
		employees:     map[string]employee.Employee{},
		users:         map[string]user.User{},
		attendances:   map[string]attendance.Attendance{},
		leaveRequests: map[string]leave.LeaveRequest{},
		payrolls:      map[string]payroll.Payroll{},
	}
}

type snapshot struct {
	employees     map[string]employee.Employee
	users         map[string]user.User
	attendances   map[string]attendance.Attendance
	leaveRequests map[string]leave.LeaveRequest
	payrolls      map[string]payroll.Payroll
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot{
		employees:     maps.Clone(s.employees),
		users:         maps.Clone(s.users),
		attendances:   maps.Clone(s.attendances),
		leaveRequests: maps.Clone(s.leaveRequests),
		payrolls:      maps.Clone(s.payrolls),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees = snap.employees
	s.users = snap.users
	s.attendances = snap.attendances
	s.leaveRequests = snap.leaveRequests
	s.payrolls = snap.payrolls
}

type txKey struct{}

type transactor struct {
	s *Store
}

// Transactor serialises transactions and rolls the whole store back when fn fails.
func (s *Store) Transactor() database.Transactor {
	return &transactor{s: s}
}

func (t *transactor) WithinTransaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	t.s.txMu.Lock()
	defer t.s.txMu.Unlock()

	snap := t.s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		t.s.restore(snap)
		return err
	}
	return nil
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}
