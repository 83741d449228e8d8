package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TokenStore persists the session token between runs
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// HolderOption configures a Holder
type HolderOption func(*Holder)

// WithTokenStore persists tokens so later runs can restore the session
func WithTokenStore(ts TokenStore) HolderOption {
	return func(h *Holder) { h.tokens = ts }
}

// WithHolderClock replaces time.Now
func WithHolderClock(now func() time.Time) HolderOption {
	return func(h *Holder) { h.now = now }
}

// WithHolderLogger sets the logger
func WithHolderLogger(log zerolog.Logger) HolderOption {
	return func(h *Holder) { h.log = log }
}

// Holder owns the optional current session. Readers get copies.
// A failed call never changes the held value.
type Holder struct {
	provider Provider
	tokens   TokenStore
	now      func() time.Time
	log      zerolog.Logger

	mu      sync.RWMutex
	current *Session
}

// NewHolder creates a holder with no session
func NewHolder(p Provider, opts ...HolderOption) *Holder {
	h := &Holder{provider: p, now: time.Now, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Current returns a copy of the session, or nil when signed out
func (h *Holder) Current() *Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.current == nil {
		return nil
	}
	s := *h.current
	return &s
}

// Token returns the current session token, or "" when signed out
func (h *Holder) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.current == nil {
		return ""
	}
	return h.current.Session.Token
}

// SignUp validates the form, creates the account and holds its session
func (h *Holder) SignUp(ctx context.Context, req SignUpRequest) (*Session, error) {
	if err := ValidateSignUp(req); err != nil {
		return nil, err
	}
	resp, err := h.provider.SignUp(ctx, req)
	if err != nil {
		h.log.Warn().Err(err).Str("email", req.Email).Msg("sign up failed")
		return nil, fmt.Errorf("sign up: %w", err)
	}
	return h.accept(resp)
}

// SignIn validates the form and holds the returned session
func (h *Holder) SignIn(ctx context.Context, req SignInRequest) (*Session, error) {
	if err := ValidateSignIn(req); err != nil {
		return nil, err
	}
	resp, err := h.provider.SignIn(ctx, req)
	if err != nil {
		h.log.Warn().Err(err).Str("email", req.Email).Msg("sign in failed")
		return nil, fmt.Errorf("sign in: %w", err)
	}
	return h.accept(resp)
}

// SignOut revokes the session. The held value is cleared only when the
// provider succeeds.
func (h *Holder) SignOut(ctx context.Context) error {
	token := h.Token()
	if token == "" {
		return ErrNotSignedIn
	}
	if err := h.provider.SignOut(ctx, token); err != nil {
		h.log.Warn().Err(err).Msg("sign out failed")
		return fmt.Errorf("sign out: %w", err)
	}

	h.mu.Lock()
	h.current = nil
	h.mu.Unlock()

	if h.tokens != nil {
		if err := h.tokens.Clear(); err != nil {
			h.log.Warn().Err(err).Msg("failed to clear saved session")
		}
	}
	return nil
}

// Restore loads the saved token and asks the provider for its session.
// A missing or stale token leaves the holder signed out.
func (h *Holder) Restore(ctx context.Context) (*Session, error) {
	if h.tokens == nil {
		return nil, nil
	}
	token, err := h.tokens.Load()
	if err != nil {
		return nil, fmt.Errorf("load saved session: %w", err)
	}
	if token == "" {
		return nil, nil
	}

	s, err := h.provider.GetSession(ctx, token)
	if err != nil {
		h.log.Warn().Err(err).Msg("failed to restore session")
		return nil, fmt.Errorf("get session: %w", err)
	}
	if s == nil || s.Expired(h.now()) {
		if err := h.tokens.Clear(); err != nil {
			h.log.Warn().Err(err).Msg("failed to clear stale session")
		}
		return nil, nil
	}
	if s.Session.Token == "" {
		s.Session.Token = token
	}

	h.mu.Lock()
	h.current = s
	h.mu.Unlock()
	return h.Current(), nil
}

// accept normalizes a provider response into a Session and holds it
func (h *Holder) accept(resp *Response) (*Session, error) {
	if resp == nil {
		return nil, fmt.Errorf("empty response from auth provider")
	}
	now := h.now()
	expires := now.Add(DefaultSessionTTL)
	if resp.ExpiresAt != nil && !resp.ExpiresAt.IsZero() {
		expires = *resp.ExpiresAt
	}

	s := &Session{
		User: resp.User,
		Session: SessionInfo{
			ID:        uuid.NewString(),
			CreatedAt: now,
			UpdatedAt: now,
			UserID:    resp.User.ID,
			ExpiresAt: expires,
			Token:     resp.Token,
		},
	}

	h.mu.Lock()
	h.current = s
	h.mu.Unlock()

	if h.tokens != nil && resp.Token != "" {
		if err := h.tokens.Save(resp.Token); err != nil {
			h.log.Warn().Err(err).Msg("failed to save session")
		}
	}
	h.log.Info().Str("user_id", s.User.ID).Msg("signed in")
	return h.Current(), nil
}
