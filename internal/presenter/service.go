// Package presenter fetches the user's data through the gateway and renders
// it as text blocks and charts for the terminal.
package presenter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"graphterm/internal/config"
)

// ErrNoToken is returned when a presenter runs without a stored session
var ErrNoToken = errors.New("no authentication token found")

// ErrNoUser is returned when the user query comes back empty
var ErrNoUser = errors.New("user data not found")

// Querier runs a GraphQL document with a bearer token
type Querier interface {
	Query(ctx context.Context, token, query string, out any) error
}

// TokenSource yields the stored session token
type TokenSource interface {
	Token() (string, bool)
}

// Service renders the graphctl data views
type Service struct {
	q      Querier
	tokens TokenSource
	st     styles
	chart  config.Chart
	now    func() time.Time
	logger *zap.Logger
}

// Option configures a Service
type Option func(*Service)

// WithClock overrides time.Now (age computation)
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a presenter service
func NewService(q Querier, tokens TokenSource, palette config.Palette, chart config.Chart, opts ...Option) *Service {
	s := &Service{
		q:      q,
		tokens: tokens,
		st:     newStyles(palette),
		chart:  chart,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) query(ctx context.Context, name, query string, out any) error {
	token, ok := s.tokens.Token()
	if !ok {
		return ErrNoToken
	}
	start := time.Now()
	if err := s.q.Query(ctx, token, query, out); err != nil {
		return err
	}
	s.logger.Debug("presenter query", zap.String("view", name), zap.Duration("took", time.Since(start)))
	return nil
}

// WhoAmI renders the user's profile attributes
func (s *Service) WhoAmI(ctx context.Context) (string, error) {
	var res userInfoResult
	if err := s.query(ctx, "whoami", userInfoQuery, &res); err != nil {
		return "", err
	}
	if len(res.User) == 0 {
		return "", ErrNoUser
	}
	return renderUserInfo(s.st, res.User[0].Attrs, s.now()), nil
}

// Projects renders the top projects bar chart
func (s *Service) Projects(ctx context.Context) (string, error) {
	txs, err := s.transactions(ctx, "projects")
	if err != nil {
		return "", err
	}
	return renderBarChart(s.st, TopProjects(txs), s.chart.Width), nil
}

// OvertimeXP renders the cumulative XP line chart
func (s *Service) OvertimeXP(ctx context.Context) (string, error) {
	txs, err := s.transactions(ctx, "overtimexp")
	if err != nil {
		return "", err
	}
	return renderTimeline(s.st, Timeline(txs), s.chart.Width, s.chart.Height), nil
}

func (s *Service) transactions(ctx context.Context, view string) ([]Transaction, error) {
	var res transactionsResult
	if err := s.query(ctx, view, transactionsQuery, &res); err != nil {
		return nil, err
	}
	return res.Transaction, nil
}

// Audit renders the audit summary
func (s *Service) Audit(ctx context.Context) (string, error) {
	var res auditsResult
	if err := s.query(ctx, "audit", auditsQuery, &res); err != nil {
		return "", err
	}
	if len(res.User) == 0 {
		return "", fmt.Errorf("audits: %w", ErrNoUser)
	}
	u := res.User[0]
	stats := NewAuditStats(u.AuditsAggregate.Aggregate.Count, u.FailedAudits.Aggregate.Count, u.AuditRatio)
	return renderAudit(s.st, stats, s.chart.Width), nil
}
