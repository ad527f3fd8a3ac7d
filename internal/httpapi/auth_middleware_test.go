package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cristhia-lara-reyes-99/apiDashboard/internal/domain"
	"github.com/cristhia-lara-reyes-99/apiDashboard/internal/service"
)

func attemptsRouter(t *testing.T, attempts *stubAttemptsStore) http.Handler {
	t.Helper()
	svc := &service.LoginService{
		Users:    &stubUsersStore{},
		Attempts: attempts,
		Configs:  &stubConfigsStore{},
		Tokens:   &stubTokenIssuer{},
	}
	return NewRouter(RouterOpts{Login: svc, Tokens: testTokenService()})
}

func bearerFor(t *testing.T, role int) string {
	t.Helper()
	token, _, err := testTokenService().Issue("admin-1", role, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return "Bearer " + token
}

func TestLoginAttemptsRequiresToken(t *testing.T) {
	router := attemptsRouter(t, &stubAttemptsStore{})

	for _, header := range []string{"", "Bearer not-a-token", "Basic abc"} {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/attempts", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: unexpected status %d", header, rr.Code)
		}
	}
}

func TestLoginAttemptsRejectsClientRole(t *testing.T) {
	router := attemptsRouter(t, &stubAttemptsStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/attempts", nil)
	req.Header.Set("Authorization", bearerFor(t, int(domain.RoleClient)))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
}

func TestLoginAttemptsListsAddresses(t *testing.T) {
	last := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	attempts := &stubAttemptsStore{
		suspiciousAddressesFunc: func(_ context.Context, minAttempts int, window time.Duration) ([]domain.SuspiciousAddress, error) {
			if minAttempts != 8 {
				t.Fatalf("unexpected minAttempts: %d", minAttempts)
			}
			if window != 48*time.Hour {
				t.Fatalf("unexpected window: %v", window)
			}
			return []domain.SuspiciousAddress{
				{SourceIP: "203.0.113.9", Identifiers: []string{"a@example.com"}, LastAttemptAt: last, TotalAttempts: 12},
			}, nil
		},
	}
	router := attemptsRouter(t, attempts)

	for _, role := range []int{int(domain.RoleAdmin), int(domain.RoleRoot)} {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/attempts?min_attempts=8&window_hours=48", nil)
		req.Header.Set("Authorization", bearerFor(t, role))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("role %d: unexpected status %d body %s", role, rr.Code, rr.Body.String())
		}
		var resp loginAttemptsResponse
		if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Total != 1 || len(resp.Attempts) != 1 {
			t.Fatalf("unexpected response: %+v", resp)
		}
		got := resp.Attempts[0]
		if got.SourceIP != "203.0.113.9" || got.TotalAttempts != 12 {
			t.Fatalf("unexpected entry: %+v", got)
		}
	}
}

func TestLoginAttemptsRejectsBadQuery(t *testing.T) {
	router := attemptsRouter(t, &stubAttemptsStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/attempts?min_attempts=lots", nil)
	req.Header.Set("Authorization", bearerFor(t, int(domain.RoleAdmin)))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
}

func TestClientIP(t *testing.T) {
	cases := []struct {
		name       string
		remoteAddr string
		forwarded  string
		want       string
	}{
		{"remote addr only", "192.0.2.4:50000", "", "192.0.2.4"},
		{"forwarded single", "10.0.0.1:50000", "198.51.100.7", "198.51.100.7"},
		{"forwarded chain", "10.0.0.1:50000", "198.51.100.7, 10.0.0.2", "198.51.100.7"},
		{"no port", "192.0.2.4", "", "192.0.2.4"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remoteAddr
			if tc.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tc.forwarded)
			}
			if got := clientIP(req); got != tc.want {
				t.Fatalf("clientIP = %q, want %q", got, tc.want)
			}
		})
	}
}
