package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// APIError is a non-2xx reply from the auth server
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("auth server: %s (%d)", e.Message, e.Status)
	}
	return fmt.Sprintf("auth server: status %d", e.Status)
}

// HTTPProvider talks to a remote auth server over its email/password endpoints
type HTTPProvider struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPProvider creates a provider for baseURL
func NewHTTPProvider(baseURL string, timeout time.Duration) *HTTPProvider {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPProvider{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

func (p *HTTPProvider) SignUp(ctx context.Context, req SignUpRequest) (*Response, error) {
	var resp Response
	if err := p.do(ctx, http.MethodPost, "/api/auth/sign-up/email", "", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (p *HTTPProvider) SignIn(ctx context.Context, req SignInRequest) (*Response, error) {
	var resp Response
	if err := p.do(ctx, http.MethodPost, "/api/auth/sign-in/email", "", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetSession decodes a JSON null body as no session
func (p *HTTPProvider) GetSession(ctx context.Context, token string) (*Session, error) {
	var s *Session
	if err := p.do(ctx, http.MethodGet, "/api/auth/get-session", token, nil, &s); err != nil {
		return nil, err
	}
	return s, nil
}

func (p *HTTPProvider) SignOut(ctx context.Context, token string) error {
	return p.do(ctx, http.MethodPost, "/api/auth/sign-out", token, struct{}{}, nil)
}

func (p *HTTPProvider) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.Unmarshal(data, apiErr)
		if resp.StatusCode == http.StatusUnauthorized && apiErr.Code == "INVALID_EMAIL_OR_PASSWORD" {
			return fmt.Errorf("%w: %s", ErrInvalidCredentials, apiErr.Error())
		}
		if apiErr.Code == "USER_ALREADY_EXISTS" {
			return fmt.Errorf("%w: %s", ErrUserExists, apiErr.Error())
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
