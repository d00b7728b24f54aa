package memory

import (
	"context"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/user"
)

type UserRepository struct {
	s *Store
}

func (s *Store) Users() *UserRepository {
	return &UserRepository{s: s}
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, newUser user.User) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, newUser.Email) {
			return user.User{}, user.ErrEmailTaken
		}
	}
	if newUser.ID == "" {
		newUser.ID = newID()
	}
	now := time.Now().UTC()
	newUser.CreatedAt, newUser.UpdatedAt = now, now
	r.s.users[newUser.ID] = newUser
	return newUser, nil
}

func (r *UserRepository) SetActiveByEmployeeID(ctx context.Context, employeeID string, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, u := range r.s.users {
		if u.EmployeeID != nil && *u.EmployeeID == employeeID {
			u.IsActive = active
			r.s.users[id] = u
		}
	}
	return nil
}
