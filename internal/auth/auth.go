// Package auth implements the login flow: trade credentials for a token,
// corroborate the token's identity, then create the session.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"graphterm/internal/gateway"
)

// Login failures
var (
	ErrMissingCredentials   = errors.New("username and password are required")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrUserNotFound         = errors.New("user data not found")
	ErrUserMismatch         = errors.New("username mismatch")
	ErrLoginFailed          = errors.New("login failed")
)

// Signer is the part of the gateway the flow needs
type Signer interface {
	Signin(ctx context.Context, username, password string) (string, error)
	Login(ctx context.Context, token string) (string, error)
}

// SessionCreator persists and drops sessions
type SessionCreator interface {
	Create(token, username string) error
	Clear() error
}

// Flow orchestrates login and logout
type Flow struct {
	signer Signer
	store  SessionCreator
	logger *zap.Logger
}

// NewFlow creates a login flow
func NewFlow(signer Signer, store SessionCreator, logger *zap.Logger) *Flow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Flow{signer: signer, store: store, logger: logger}
}

// Login signs in and creates the session, returning the corroborated login
func (f *Flow) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", ErrMissingCredentials
	}

	token, err := f.signer.Signin(ctx, username, password)
	if err != nil {
		f.logger.Info("signin failed", zap.String("user", username), zap.Error(err))
		if errors.Is(err, gateway.ErrInvalidCredentials) {
			return "", fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		}
		return "", fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}

	login, err := f.signer.Login(ctx, token)
	if err != nil {
		f.logger.Info("identity query failed", zap.String("user", username), zap.Error(err))
		if errors.Is(err, gateway.ErrTransport) {
			return "", fmt.Errorf("%w: %w", ErrLoginFailed, err)
		}
		return "", fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
	}
	if login == "" {
		return "", ErrUserNotFound
	}
	if login != username {
		f.logger.Warn("username mismatch", zap.String("submitted", username), zap.String("remote", login))
		return "", ErrUserMismatch
	}

	if err := f.store.Create(token, login); err != nil {
		return "", fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}
	f.logger.Info("logged in", zap.String("user", login))
	return login, nil
}

// Logout drops the session
func (f *Flow) Logout() error {
	if err := f.store.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	f.logger.Info("logged out")
	return nil
}

// Status maps a login error to the HTTP-like code shown in the popup
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrMissingCredentials):
		return http.StatusBadRequest
	case errors.Is(err, ErrAuthenticationFailed), errors.Is(err, ErrUserNotFound):
		return http.StatusUnauthorized
	case errors.Is(err, ErrUserMismatch):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidCredentials):
		var remote *gateway.RemoteError
		if errors.As(err, &remote) && remote.Status != 0 {
			return remote.Status
		}
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the user-facing text for a login error
func Message(err error) string {
	switch {
	case errors.Is(err, ErrMissingCredentials):
		return "Username and password are required"
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid Credentials"
	case errors.Is(err, ErrAuthenticationFailed):
		return "Authentication failed"
	case errors.Is(err, ErrUserNotFound):
		return "User data not found"
	case errors.Is(err, ErrUserMismatch):
		return "Username mismatch"
	default:
		return "Login failed. Please try again."
	}
}
