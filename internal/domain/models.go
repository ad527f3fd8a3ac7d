package domain

import (
	"encoding/json"
	"time"
)

// Role values match the legacy dashboard role table.
type Role int

const (
	RoleClient Role = 1
	RoleAdmin  Role = 2
	RoleRoot   Role = 3
)

type User struct {
	ID          string
	ClientTag   string
	Email       string
	Role        Role
	Client      string
	FirstName   string
	LastName    string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastLoginAt *time.Time
}

type UserWithPassword struct {
	User
	PasswordHash string
}

// ConfigView holds the display-only attributes attached to an account.
// The login pipeline only reads it; editing lives elsewhere.
type ConfigView struct {
	ImageName string
	LogoName  string
	Colors    json.RawMessage
}

// LoginAttempt is one immutable row of the attempt ledger. Email is recorded
// as submitted, not normalized.
type LoginAttempt struct {
	SourceIP    string
	Email       string
	Succeeded   bool
	UserAgent   string
	AttemptedAt time.Time
}

// SuspiciousAddress summarizes one source address over a review window,
// ordered by TotalAttempts on the admin read path.
type SuspiciousAddress struct {
	SourceIP      string
	Identifiers   []string
	LastAttemptAt time.Time
	TotalAttempts int
}
