package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/neilberkman/tickr/internal/core/db"
)

// UserStore is the account storage LocalProvider needs; *db.DB implements it
type UserStore interface {
	CreateUser(ctx context.Context, u db.User) error
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	GetUser(ctx context.Context, id string) (*db.User, error)
	CreateAuthSession(ctx context.Context, s db.AuthSession) error
	GetAuthSessionByToken(ctx context.Context, token string) (*db.AuthSession, error)
	DeleteAuthSession(ctx context.Context, token string) error
	DeleteExpiredAuthSessions(ctx context.Context) (int64, error)
}

// LocalProvider keeps accounts in the tracker's own database
type LocalProvider struct {
	store UserStore
	ttl   time.Duration
	cost  int
	now   func() time.Time
}

// LocalOption configures a LocalProvider
type LocalOption func(*LocalProvider)

// WithSessionTTL sets how long issued sessions last
func WithSessionTTL(ttl time.Duration) LocalOption {
	return func(p *LocalProvider) { p.ttl = ttl }
}

// WithBcryptCost sets the password hashing cost
func WithBcryptCost(cost int) LocalOption {
	return func(p *LocalProvider) { p.cost = cost }
}

// WithLocalClock replaces time.Now
func WithLocalClock(now func() time.Time) LocalOption {
	return func(p *LocalProvider) { p.now = now }
}

// NewLocalProvider creates a provider over store. Sessions last a week by default.
func NewLocalProvider(store UserStore, opts ...LocalOption) *LocalProvider {
	p := &LocalProvider{
		store: store,
		ttl:   7 * 24 * time.Hour,
		cost:  bcrypt.DefaultCost,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *LocalProvider) SignUp(ctx context.Context, req SignUpRequest) (*Response, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), p.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := p.now()
	u := db.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := p.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, db.ErrEmailTaken) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return p.issue(ctx, &u)
}

func (p *LocalProvider) SignIn(ctx context.Context, req SignInRequest) (*Response, error) {
	u, err := p.store.GetUserByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return p.issue(ctx, u)
}

func (p *LocalProvider) GetSession(ctx context.Context, token string) (*Session, error) {
	s, err := p.store.GetAuthSessionByToken(ctx, token)
	if err != nil || s == nil {
		return nil, err
	}
	if !p.now().Before(s.ExpiresAt) {
		_ = p.store.DeleteAuthSession(ctx, token)
		return nil, nil
	}

	u, err := p.store.GetUser(ctx, s.UserID)
	if err != nil || u == nil {
		return nil, err
	}
	return &Session{
		User: toUser(u),
		Session: SessionInfo{
			ID:        s.ID,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
			UserID:    s.UserID,
			ExpiresAt: s.ExpiresAt,
			Token:     s.Token,
			IPAddress: s.IPAddress,
			UserAgent: s.UserAgent,
		},
	}, nil
}

func (p *LocalProvider) SignOut(ctx context.Context, token string) error {
	return p.store.DeleteAuthSession(ctx, token)
}

func (p *LocalProvider) issue(ctx context.Context, u *db.User) (*Response, error) {
	// Tokens are only issued here, so stale ones are swept here too
	if _, err := p.store.DeleteExpiredAuthSessions(ctx); err != nil {
		return nil, fmt.Errorf("purge expired sessions: %w", err)
	}

	token, err := newToken()
	if err != nil {
		return nil, err
	}
	now := p.now()
	expires := now.Add(p.ttl)
	err = p.store.CreateAuthSession(ctx, db.AuthSession{
		ID:        uuid.NewString(),
		Token:     token,
		UserID:    u.ID,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: expires,
		UserAgent: "tickr",
	})
	if err != nil {
		return nil, err
	}
	return &Response{User: toUser(u), Token: token, ExpiresAt: &expires}, nil
}

func toUser(u *db.User) User {
	return User{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
		Image:         u.Image,
	}
}

func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
