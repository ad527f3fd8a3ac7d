package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenServiceRoundTrip(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	ts := &TokenService{
		Secret: []byte("0123456789abcdef0123456789abcdef"),
		Now:    func() time.Time { return now },
	}

	signed, expiresAt, err := ts.Issue("user-1", 2, 12*time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if !expiresAt.Equal(now.Add(12 * time.Hour)) {
		t.Fatalf("unexpected expiry: %s", expiresAt)
	}

	claims, err := ts.Verify(signed)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Fatalf("unexpected subject: %s", claims.Subject)
	}
	if claims.Role != 2 {
		t.Fatalf("unexpected role: %d", claims.Role)
	}
	if !claims.ExpiresAt.Time.Equal(expiresAt.Truncate(time.Second)) {
		t.Fatalf("unexpected claim expiry: %s", claims.ExpiresAt.Time)
	}
}

func TestTokenServiceRejectsWrongSecret(t *testing.T) {
	ts := &TokenService{Secret: []byte("0123456789abcdef0123456789abcdef")}
	signed, _, err := ts.Issue("user-1", 1, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	other := &TokenService{Secret: []byte("ffffffffffffffffffffffffffffffff")}
	if _, err := other.Verify(signed); err == nil {
		t.Fatalf("expected verification to fail with a different secret")
	}
}

func TestTokenServiceRejectsExpired(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)
	ts := &TokenService{
		Secret: []byte("0123456789abcdef0123456789abcdef"),
		Now:    func() time.Time { return past },
	}
	signed, _, err := ts.Issue("user-1", 1, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	live := &TokenService{Secret: ts.Secret}
	if _, err := live.Verify(signed); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestTokenServiceRejectsNonHMAC(t *testing.T) {
	ts := &TokenService{Secret: []byte("0123456789abcdef0123456789abcdef")}

	// alg=none tokens must never pass.
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "user-1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}
	if _, err := ts.Verify(unsigned); err == nil {
		t.Fatalf("expected alg=none token to be rejected")
	}

	if _, err := ts.Verify(strings.Repeat("x", 40)); err == nil {
		t.Fatalf("expected garbage token to be rejected")
	}
}
