package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"regexp"
	"strings"
	"time"

	"github.com/cristhia-lara-reyes-99/apiDashboard/internal/auth"
	"github.com/cristhia-lara-reyes-99/apiDashboard/internal/domain"
)

type UsersStore interface {
	GetUserByEmail(ctx context.Context, email string) (domain.UserWithPassword, error)
	SetLastLogin(ctx context.Context, userID string, when time.Time) error
}

type AttemptsStore interface {
	RecordAttempt(ctx context.Context, sourceIP, email string, succeeded bool, userAgent string) error
	CountRecentFailures(ctx context.Context, sourceIP string, window time.Duration) (int, error)
	SuspiciousAddresses(ctx context.Context, minAttempts int, window time.Duration) ([]domain.SuspiciousAddress, error)
}

type ConfigsStore interface {
	GetByUserID(ctx context.Context, userID string) (domain.ConfigView, error)
}

type TokenIssuer interface {
	Issue(subject string, role int, ttl time.Duration) (string, time.Time, error)
}

const (
	DefaultTokenTTL         = 12 * time.Hour
	DefaultCoarseCap        = 5
	DefaultCoarseWindow     = 15 * time.Minute
	DefaultFailureWindow    = 15 * time.Minute
	DefaultFailureThreshold = 10
	DefaultVerifyFloor      = 330 * time.Millisecond
	DefaultVerifyJitter     = 50 * time.Millisecond

	DefaultSuspiciousMinAttempts = 5
	DefaultSuspiciousWindow      = 24 * time.Hour
)

var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// LoginService is the single entry point of the authentication core. It
// gates requests by source address, verifies credentials under a minimum
// wall-clock floor, records every attempt in the ledger, and issues a
// signed session token on success.
type LoginService struct {
	Users    UsersStore
	Attempts AttemptsStore
	Configs  ConfigsStore
	Tokens   TokenIssuer
	Limiter  *AttemptLimiter
	Logger   *slog.Logger

	TokenTTL         time.Duration
	FailureWindow    time.Duration
	FailureThreshold int
	VerifyFloor      time.Duration
	VerifyJitter     time.Duration

	Now   func() time.Time
	Sleep func(time.Duration)
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      domain.User
	Config    domain.ConfigView
}

func (s *LoginService) Login(ctx context.Context, email, password, sourceIP, userAgent string) (LoginResult, error) {
	// Malformed requests are not attempts and never reach the ledger.
	fields := map[string]string{}
	if email == "" {
		fields["email"] = "required"
	} else if !emailShape.MatchString(email) {
		fields["email"] = "must be a valid email address"
	}
	if password == "" {
		fields["password"] = "required"
	} else if len(password) < 6 {
		fields["password"] = "must be at least 6 characters"
	}
	if len(fields) > 0 {
		return LoginResult{}, domain.NewValidationError(fields)
	}

	if s.Limiter != nil {
		if ok, retryAfter := s.Limiter.Allow(sourceIP, s.now()); !ok {
			s.recordAttempt(ctx, sourceIP, email, false, userAgent)
			return LoginResult{}, &domain.RateLimitError{RetryAfter: retryAfter}
		}
	}

	failures, err := s.Attempts.CountRecentFailures(ctx, sourceIP, s.failureWindow())
	if err != nil {
		// A broken ledger read is a dependency failure, not a lockout: it
		// is surfaced as-is instead of masquerading as rate limiting or
		// invalid credentials.
		s.recordAttempt(ctx, sourceIP, email, false, userAgent)
		return LoginResult{}, fmt.Errorf("count recent failures: %w", err)
	}
	if failures > s.failureThreshold() {
		s.recordAttempt(ctx, sourceIP, email, false, userAgent)
		return LoginResult{}, &domain.RateLimitError{}
	}

	u, matched, err := s.verify(ctx, email, password)
	if err != nil {
		s.recordAttempt(ctx, sourceIP, email, false, userAgent)
		return LoginResult{}, err
	}
	// One entry per verification, with the email as submitted. A credential
	// match on a disabled account is still recorded as succeeded; the
	// disabled rejection below happens after the write, matching the
	// historical audit-trail ordering the lockout math depends on.
	s.recordAttempt(ctx, sourceIP, email, matched, userAgent)
	if !matched {
		return LoginResult{}, domain.ErrInvalidCredentials
	}
	if !u.Active {
		return LoginResult{}, domain.ErrUserDisabled
	}

	cfg, err := s.Configs.GetByUserID(ctx, u.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return LoginResult{}, domain.ErrConfigMissing
		}
		return LoginResult{}, fmt.Errorf("load user config: %w", err)
	}

	token, expiresAt, err := s.Tokens.Issue(u.ID, int(u.Role), s.tokenTTL())
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue session token: %w", err)
	}

	if err := s.Users.SetLastLogin(ctx, u.ID, s.now()); err != nil {
		s.logger().Warn("set last login failed", "user_id", u.ID, "err", err)
	}

	return LoginResult{Token: token, ExpiresAt: expiresAt, User: u.User, Config: cfg}, nil
}

// SuspiciousActivity lists source addresses whose total attempts exceeded
// minAttempts inside the window, busiest first. Admin read path only; the
// lockout decision never consults it.
func (s *LoginService) SuspiciousActivity(ctx context.Context, minAttempts int, window time.Duration) ([]domain.SuspiciousAddress, error) {
	if minAttempts <= 0 {
		minAttempts = DefaultSuspiciousMinAttempts
	}
	if window <= 0 {
		window = DefaultSuspiciousWindow
	}
	return s.Attempts.SuspiciousAddresses(ctx, minAttempts, window)
}

// verify resolves the account and checks the password under a randomized
// minimum wall-clock floor, so "no such user" and "wrong password" are
// externally indistinguishable. The floor is measured from a single start
// instant captured here and always runs to completion, even when the store
// errors or the caller has gone away.
func (s *LoginService) verify(ctx context.Context, email, password string) (domain.UserWithPassword, bool, error) {
	start := s.now()
	defer s.holdFloor(start)

	u, err := s.Users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		auth.VerifyDecoy(password)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.UserWithPassword{}, false, nil
		}
		return domain.UserWithPassword{}, false, fmt.Errorf("get user by email: %w", err)
	}

	ok, err := auth.VerifyPassword(u.PasswordHash, password)
	if err != nil {
		return domain.UserWithPassword{}, false, fmt.Errorf("verify password: %w", err)
	}
	return u, ok, nil
}

func (s *LoginService) holdFloor(start time.Time) {
	floor := s.verifyFloor()
	if jitter := s.verifyJitter(); jitter > 0 {
		floor += rand.N(jitter)
	}
	if remaining := floor - s.now().Sub(start); remaining > 0 {
		s.sleep(remaining)
	}
}

// recordAttempt never fails the login flow; a dropped audit row degrades
// observability, not correctness.
func (s *LoginService) recordAttempt(ctx context.Context, sourceIP, email string, succeeded bool, userAgent string) {
	if err := s.Attempts.RecordAttempt(ctx, sourceIP, email, succeeded, userAgent); err != nil {
		s.logger().Error("record login attempt failed", "source_ip", sourceIP, "err", err)
	}
}

func (s *LoginService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *LoginService) sleep(d time.Duration) {
	if s.Sleep != nil {
		s.Sleep(d)
		return
	}
	time.Sleep(d)
}

func (s *LoginService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *LoginService) tokenTTL() time.Duration {
	if s.TokenTTL > 0 {
		return s.TokenTTL
	}
	return DefaultTokenTTL
}

func (s *LoginService) failureWindow() time.Duration {
	if s.FailureWindow > 0 {
		return s.FailureWindow
	}
	return DefaultFailureWindow
}

func (s *LoginService) failureThreshold() int {
	if s.FailureThreshold > 0 {
		return s.FailureThreshold
	}
	return DefaultFailureThreshold
}

func (s *LoginService) verifyFloor() time.Duration {
	if s.VerifyFloor > 0 {
		return s.VerifyFloor
	}
	return DefaultVerifyFloor
}

func (s *LoginService) verifyJitter() time.Duration {
	if s.VerifyJitter > 0 {
		return s.VerifyJitter
	}
	return DefaultVerifyJitter
}
