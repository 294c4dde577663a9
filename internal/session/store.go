// Package session owns the client's belief that it holds a valid token for
// a known user. The token, the login and a freshness marker live together
// in an injected key/value store; validation against the API is cached for
// a short window and de-duplicated across concurrent callers.
package session

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"graphterm/internal/gateway"
	"graphterm/internal/storage"
)

// Persisted keys. They are always written and removed together.
const (
	TokenKey          = "JWT"
	UserKey           = "userlogin"
	LastValidationKey = "last_validation"
)

// DefaultWindow is how long a successful validation is trusted
const DefaultWindow = 10 * time.Second

// ErrInvalidSessionData is returned when creating a session with a missing field
var ErrInvalidSessionData = errors.New("invalid session data")

// Identifier resolves a token to the login it belongs to
type Identifier interface {
	Login(ctx context.Context, token string) (string, error)
}

// Store is the session store
type Store struct {
	kv       storage.KV
	identity Identifier
	window   time.Duration
	now      func() time.Time
	logger   *zap.Logger
	flight   singleflight.Group
}

// Option configures a Store
type Option func(*Store)

// WithWindow sets the validation cache window
func WithWindow(d time.Duration) Option {
	return func(s *Store) { s.window = d }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// NewStore creates a session store over kv
func NewStore(kv storage.KV, identity Identifier, opts ...Option) *Store {
	s := &Store{
		kv:       kv,
		identity: identity,
		window:   DefaultWindow,
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create persists a new session. Both fields are required; nothing is
// written when either is empty.
func (s *Store) Create(token, username string) error {
	if token == "" || username == "" {
		return ErrInvalidSessionData
	}
	err := s.kv.Set(map[string]string{
		TokenKey:          token,
		UserKey:           username,
		LastValidationKey: s.stamp(),
	})
	if err != nil {
		return err
	}
	s.logger.Info("session created", zap.String("user", username))
	return nil
}

// Validate reports whether the stored session is still good. Concurrent
// calls share a single in-flight check and all observe its result.
func (s *Store) Validate(ctx context.Context) bool {
	// The shared check must not die with whichever caller started it
	ctx = context.WithoutCancel(ctx)
	v, _, shared := s.flight.Do("validate", func() (any, error) {
		return s.validate(ctx), nil
	})
	if shared {
		s.logger.Debug("joined in-flight validation")
	}
	return v.(bool)
}

func (s *Store) validate(ctx context.Context) bool {
	token, hasToken := s.kv.Get(TokenKey)
	username, hasUser := s.kv.Get(UserKey)
	if !hasToken || !hasUser || token == "" || username == "" {
		return false
	}

	// A marker from the future (clock set back) is never fresh
	now := s.now()
	last, fresh := s.lastValidation()
	if fresh && !last.After(now) && now.Sub(last) < s.window {
		return true
	}

	login, err := s.identity.Login(ctx, token)
	if err != nil {
		// Transport failures keep a session that was validated before;
		// anything the API actually said counts against it.
		if errors.Is(err, gateway.ErrTransport) && fresh {
			s.logger.Warn("validation skipped, network unavailable", zap.Error(err))
			return true
		}
		s.logger.Info("validation failed, clearing session", zap.Error(err))
		s.clear()
		return false
	}
	if login == "" || login != username {
		s.logger.Info("identity mismatch, clearing session",
			zap.String("stored", username), zap.String("remote", login))
		s.clear()
		return false
	}

	if err := s.kv.Set(map[string]string{LastValidationKey: s.stamp()}); err != nil {
		s.logger.Warn("refresh validation marker", zap.Error(err))
	}
	return true
}

// Clear removes every session key. Safe to call when no session exists.
func (s *Store) Clear() error {
	return s.kv.Remove(TokenKey, UserKey, LastValidationKey)
}

func (s *Store) clear() {
	if err := s.Clear(); err != nil {
		s.logger.Error("clear session", zap.Error(err))
	}
}

// Token returns the stored bearer token
func (s *Store) Token() (string, bool) {
	v, ok := s.kv.Get(TokenKey)
	return v, ok && v != ""
}

// Username returns the stored login
func (s *Store) Username() (string, bool) {
	v, ok := s.kv.Get(UserKey)
	return v, ok && v != ""
}

// lastValidation parses the freshness marker
func (s *Store) lastValidation() (time.Time, bool) {
	raw, ok := s.kv.Get(LastValidationKey)
	if !ok {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

func (s *Store) stamp() string {
	return strconv.FormatInt(s.now().UnixMilli(), 10)
}
