package jwt

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

var ErrMissingClaim = errors.New("token is missing a required claim")

type Service interface {
	GenerateAccessToken(userID string, email string, employeeID *string, role user.Role) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
	RevokeToken(token string)
	IsTokenRevoked(token string) bool
}

type JWTService struct {
	secretKey                 string
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
	revokedTokens             map[string]int64
	mu                        sync.RWMutex
	now                       func() time.Time
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) *JWTService {
	return &JWTService{
		secretKey:                 secretKey,
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		revokedTokens:             make(map[string]int64),
		now:                       time.Now,
	}
}

func (j *JWTService) GenerateAccessToken(userID string, email string, employeeID *string, role user.Role) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = j.now().Add(expDuration).Unix()

	claims := map[string]interface{}{
		"user_id":     userID,
		"email":       email,
		"employee_id": returnValueOrNil(employeeID),
		"role":        string(role),
		"type":        "access",
		"exp":         expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// RevokeToken remembers token until it would have expired anyway.
func (j *JWTService) RevokeToken(token string) {
	exp := j.now().Add(24 * time.Hour).Unix()
	if t, err := j.tokenAuth.Decode(token); err == nil && !t.Expiration().IsZero() {
		exp = t.Expiration().Unix()
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	now := j.now().Unix()
	for tok, until := range j.revokedTokens {
		if until < now {
			delete(j.revokedTokens, tok)
		}
	}
	j.revokedTokens[token] = exp
}

func (j *JWTService) IsTokenRevoked(token string) bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	_, revoked := j.revokedTokens[token]
	return revoked
}

func returnValueOrNil(value *string) interface{} {
	if value == nil {
		return nil
	}
	return *value
}

// ActorFromClaims builds the request actor from a verified access token's claims.
func ActorFromClaims(claims map[string]interface{}) (user.Actor, error) {
	if typ, _ := claims["type"].(string); typ != "access" {
		return user.Actor{}, fmt.Errorf("%w: type", ErrMissingClaim)
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return user.Actor{}, fmt.Errorf("%w: user_id", ErrMissingClaim)
	}
	role, _ := claims["role"].(string)
	if role == "" {
		return user.Actor{}, fmt.Errorf("%w: role", ErrMissingClaim)
	}
	employeeID, _ := claims["employee_id"].(string)

	return user.Actor{
		UserID:     userID,
		EmployeeID: employeeID,
		Role:       user.ParseRole(role),
	}, nil
}
