package httpapi

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/cristhia-lara-reyes-99/apiDashboard/internal/auth"
	"github.com/cristhia-lara-reyes-99/apiDashboard/internal/domain"
)

// TokenVerifier checks a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(tokenString string) (*auth.SessionClaims, error)
}

type authCtxKey int

const authClaimsKey authCtxKey = iota

func (a *api) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			WriteDomainError(w, domain.ErrUnauthorized)
			return
		}

		claims, err := a.tokens.Verify(raw)
		if err != nil {
			WriteDomainError(w, domain.ErrUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), authClaimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

func (a *api) requireRole(next http.HandlerFunc, roles ...domain.Role) http.HandlerFunc {
	return a.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := CurrentClaims(r.Context())
		if !ok {
			WriteDomainError(w, domain.ErrUnauthorized)
			return
		}
		for _, role := range roles {
			if domain.Role(claims.Role) == role {
				next.ServeHTTP(w, r)
				return
			}
		}
		WriteDomainError(w, domain.ErrForbidden)
	})
}

func CurrentClaims(ctx context.Context) (*auth.SessionClaims, bool) {
	c, ok := ctx.Value(authClaimsKey).(*auth.SessionClaims)
	return c, ok
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return strings.TrimSpace(h[len(prefix):])
	}
	return ""
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			ip := strings.TrimSpace(parts[0])
			if ip != "" {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
