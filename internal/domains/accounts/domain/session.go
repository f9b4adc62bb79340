package domain

import "time"

// Session binds a bearer token to a user until ExpiresAt.
type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
}

func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// AuthEventKind names an authentication state change.
type AuthEventKind string

const (
	AuthRegistered AuthEventKind = "register"
	AuthLoggedIn   AuthEventKind = "login"
	AuthLoggedOut  AuthEventKind = "logout"
)

// AuthEvent is delivered to OnAuthChange subscribers.
type AuthEvent struct {
	Kind   AuthEventKind
	UserID string
	At     time.Time
}
