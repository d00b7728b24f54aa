package user

import (
	"context"
	"fmt"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID     string
	EmployeeID string
	Role       Role
}

type actorKey struct{}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}

// SystemActor is used by the scheduler and the CLI.
func SystemActor() Actor {
	return Actor{UserID: "system", Role: RoleAdmin}
}

// RequireHR returns the actor when it may run HR-only operations.
func RequireHR(ctx context.Context) (Actor, error) {
	a, ok := ActorFromContext(ctx)
	if !ok {
		return Actor{}, ErrUnauthenticated
	}
	if !a.Role.IsHR() {
		return Actor{}, fmt.Errorf("%w: role %q", ErrHRAccessRequired, a.Role)
	}
	return a, nil
}

// RequireEmployee returns the actor when it is linked to an employee record.
func RequireEmployee(ctx context.Context) (Actor, error) {
	a, ok := ActorFromContext(ctx)
	if !ok {
		return Actor{}, ErrUnauthenticated
	}
	if a.EmployeeID == "" {
		return Actor{}, ErrNoEmployeeProfile
	}
	return a, nil
}
