package domain

import (
	"time"
)

// User is a registered account. The username is the primary key. Users are
// never updated or deleted.
type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	UserID       int64     `json:"user_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// VerificationOutcome is the result of checking a username/password pair.
type VerificationOutcome int

const (
	// OutcomeRejected covers both an unknown username and a wrong password.
	OutcomeRejected VerificationOutcome = iota
	// OutcomeAuthenticated means the password matched the stored digest.
	OutcomeAuthenticated
)

func (o VerificationOutcome) String() string {
	switch o {
	case OutcomeAuthenticated:
		return "authenticated"
	default:
		return "rejected"
	}
}

// Verification is the result of a credential check. User is set only when
// Outcome is OutcomeAuthenticated.
type Verification struct {
	Outcome VerificationOutcome
	User    *User
}

// Authenticated reports whether the credentials matched.
func (v Verification) Authenticated() bool {
	return v.Outcome == OutcomeAuthenticated && v.User != nil
}
