package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the payload embedded in a signed session token: the
// account id as subject, the role, and the issue/expiry instants.
type SessionClaims struct {
	jwt.RegisteredClaims
	Role int `json:"role"`
}

// TokenService signs and verifies bearer session tokens (HS256). The
// service never tracks issued tokens; expiry is the only lifecycle.
type TokenService struct {
	Secret []byte
	Now    func() time.Time
}

func (ts *TokenService) Issue(subject string, role int, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	if ts.Now != nil {
		now = ts.Now()
	}
	expiresAt := now.Add(ttl)

	claims := SessionClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ts.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, expiresAt, nil
}

func (ts *TokenService) Verify(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.Secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
