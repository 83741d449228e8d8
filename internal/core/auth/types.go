// Package auth holds the signed-in session and the providers that issue it.
package auth

import (
	"context"
	"errors"
	"time"
)

// DefaultSessionTTL is assigned when a provider does not say when a session expires
const DefaultSessionTTL = 24 * time.Hour

var (
	// ErrInvalidCredentials is returned for an unknown email or wrong password
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUserExists is returned when signing up with a registered email
	ErrUserExists = errors.New("user already exists")
	// ErrNotSignedIn is returned by operations that need a session
	ErrNotSignedIn = errors.New("not signed in")
)

// User is the account half of a session
type User struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	Image         string    `json:"image,omitempty"`
}

// SessionInfo is the token half of a session
type SessionInfo struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
	Token     string    `json:"token"`
	IPAddress string    `json:"ipAddress,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
}

// Session is what the holder keeps while someone is signed in
type Session struct {
	User    User        `json:"user"`
	Session SessionInfo `json:"session"`
}

// Expired reports whether the session is past its expiry at now
func (s Session) Expired(now time.Time) bool {
	return !s.Session.ExpiresAt.IsZero() && !now.Before(s.Session.ExpiresAt)
}

// Response is what sign-up and sign-in return
type Response struct {
	User      User       `json:"user"`
	Token     string     `json:"token"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Redirect  bool       `json:"redirect,omitempty"`
	URL       string     `json:"url,omitempty"`
}

// SignUpRequest carries the sign-up form
type SignUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignInRequest carries the sign-in form
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Provider issues and revokes sessions
type Provider interface {
	SignUp(ctx context.Context, req SignUpRequest) (*Response, error)
	SignIn(ctx context.Context, req SignInRequest) (*Response, error)
	// GetSession returns nil, nil when the token is unknown or expired
	GetSession(ctx context.Context, token string) (*Session, error)
	SignOut(ctx context.Context, token string) error
}
