package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrEmailTaken is returned when a user with the same email already exists
var ErrEmailTaken = errors.New("email already registered")

// User is a local account row
type User struct {
	ID            string
	Name          string
	Email         string
	EmailVerified bool
	PasswordHash  string
	Image         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AuthSession is a local sign-in token row
type AuthSession struct {
	ID        string
	Token     string
	UserID    string
	CreatedAt time.Time
	UpdatedAt time.Time
	ExpiresAt time.Time
	IPAddress string
	UserAgent string
}

const userColumns = `id, name, email, email_verified, password_hash, image, created_at, updated_at`

func scanUser(row rowScanner) (*User, error) {
	var (
		u                    User
		image                sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.EmailVerified, &u.PasswordHash,
		&image, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	u.Image = image.String
	u.CreatedAt = parseTime(createdAt)
	u.UpdatedAt = parseTime(updatedAt)
	return &u, nil
}

// CreateUser inserts a new account
func (db *DB) CreateUser(ctx context.Context, u User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = db.now()
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = u.CreatedAt
	}

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, u.ID, u.Name, u.Email, u.EmailVerified, u.PasswordHash, nullString(u.Image),
		formatTime(u.CreatedAt), formatTime(u.UpdatedAt))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.email") {
			return ErrEmailTaken
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUserByEmail looks up an account case-insensitively; nil when unknown
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

// GetUser looks up an account by id; nil when unknown
func (db *DB) GetUser(ctx context.Context, id string) (*User, error) {
	u, err := scanUser(db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

// CreateAuthSession stores a sign-in token
func (db *DB) CreateAuthSession(ctx context.Context, s AuthSession) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO auth_sessions (id, token, user_id, created_at, updated_at, expires_at, ip_address, user_agent)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, s.ID, s.Token, s.UserID, formatTime(s.CreatedAt), formatTime(s.UpdatedAt),
		formatTime(s.ExpiresAt), nullString(s.IPAddress), nullString(s.UserAgent))
	if err != nil {
		return fmt.Errorf("create auth session: %w", err)
	}
	return nil
}

// GetAuthSessionByToken returns the session for token; nil when unknown
func (db *DB) GetAuthSessionByToken(ctx context.Context, token string) (*AuthSession, error) {
	var (
		s                               AuthSession
		createdAt, updatedAt, expiresAt string
		ip, agent                       sql.NullString
	)
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, token, user_id, created_at, updated_at, expires_at, ip_address, user_agent
		FROM auth_sessions WHERE token = ?
	`, token).Scan(&s.ID, &s.Token, &s.UserID, &createdAt, &updatedAt, &expiresAt, &ip, &agent)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.CreatedAt = parseTime(createdAt)
	s.UpdatedAt = parseTime(updatedAt)
	s.ExpiresAt = parseTime(expiresAt)
	s.IPAddress = ip.String
	s.UserAgent = agent.String
	return &s, nil
}

// DeleteAuthSession removes a token. Unknown tokens are not an error.
func (db *DB) DeleteAuthSession(ctx context.Context, token string) error {
	_, err := db.conn.ExecContext(ctx, `DELETE FROM auth_sessions WHERE token = ?`, token)
	return err
}

// DeleteExpiredAuthSessions removes tokens that expired before now
func (db *DB) DeleteExpiredAuthSessions(ctx context.Context) (int64, error) {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM auth_sessions WHERE julianday(expires_at) < julianday(?)`, formatTime(db.now()))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
