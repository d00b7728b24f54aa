package auth

import (
	"context"
)

type AuthService interface {
	// Login checks the credentials and issues an access token
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)

	// Logout revokes the given access token until it expires
	Logout(ctx context.Context, token string) error
}
