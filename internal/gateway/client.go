// Package gateway talks to the platform's two HTTP endpoints: the GraphQL
// engine every query goes through and the signin endpoint that trades
// Basic credentials for a bearer token.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"graphterm/internal/config"
)

// identityQuery is the lightweight query used to corroborate a token
const identityQuery = `{ user { login } }`

// maxErrorBody caps how much of a failed response ends up in an error
const maxErrorBody = 512

// Invalidator drops the local session when the API rejects the token
type Invalidator interface {
	Clear() error
}

// Client is the Remote Query Gateway
type Client struct {
	graphqlURL  string
	signinURL   string
	http        *http.Client
	logger      *zap.Logger
	invalidator Invalidator
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a gateway client for the configured endpoints
func New(api config.API, opts ...Option) *Client {
	c := &Client{
		graphqlURL: api.GraphQLURL,
		signinURL:  api.SigninURL,
		http:       &http.Client{Timeout: api.Timeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetInvalidator installs the hook run on 401/403 responses
func (c *Client) SetInvalidator(inv Invalidator) {
	c.invalidator = inv
}

type queryRequest struct {
	Query string `json:"query"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// Query sends an authenticated query and decodes the data object into out.
// out may be nil when only success matters.
func (c *Client) Query(ctx context.Context, token, query string, out any) error {
	body, err := json.Marshal(queryRequest{Query: query})
	if err != nil {
		return fmt.Errorf("encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Request-Id", requestID)

	log := c.logger.With(zap.String("request_id", requestID))
	log.Debug("graphql query", zap.String("query", compact(query)))

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("graphql transport failure", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Warn("graphql read failure", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}

	if IsSessionInvalidating(resp.StatusCode) {
		log.Info("token rejected, clearing session", zap.Int("status", resp.StatusCode))
		if c.invalidator != nil {
			if err := c.invalidator.Clear(); err != nil {
				log.Error("clear session", zap.Error(err))
			}
		}
		return &RemoteError{Status: resp.StatusCode, Message: excerpt(raw), Err: ErrUnauthorized}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn("graphql non-2xx", zap.Int("status", resp.StatusCode))
		return &RemoteError{Status: resp.StatusCode, Message: excerpt(raw), Err: ErrRemote}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Warn("graphql malformed body", zap.Error(err))
		return &RemoteError{Message: err.Error(), Err: ErrMalformed}
	}
	if len(env.Errors) > 0 {
		log.Info("graphql errors", zap.String("first", env.Errors[0].Message), zap.Int("count", len(env.Errors)))
		return &RemoteError{Message: env.Errors[0].Message, Err: ErrGraphQL}
	}
	if out == nil {
		return nil
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return &RemoteError{Message: "missing data", Err: ErrMalformed}
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &RemoteError{Message: err.Error(), Err: ErrMalformed}
	}
	return nil
}

// Login runs the identity query and returns the first user's login, or ""
// when the API returned no user
func (c *Client) Login(ctx context.Context, token string) (string, error) {
	var data struct {
		User []struct {
			Login string `json:"login"`
		} `json:"user"`
	}
	if err := c.Query(ctx, token, identityQuery, &data); err != nil {
		return "", err
	}
	if len(data.User) == 0 {
		return "", nil
	}
	return data.User[0].Login, nil
}

// Signin exchanges Basic credentials for a bearer token
func (c *Client) Signin(ctx context.Context, username, password string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.signinURL, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.SetBasicAuth(username, password)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("signin transport failure", zap.Error(err))
		return "", fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		c.logger.Info("signin rejected", zap.String("user", username), zap.Int("status", resp.StatusCode))
		return "", &RemoteError{Status: resp.StatusCode, Err: ErrInvalidCredentials}
	}

	var token string
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", &RemoteError{Message: err.Error(), Err: ErrMalformed}
	}
	if token == "" {
		return "", &RemoteError{Message: "empty token", Err: ErrMalformed}
	}
	return token, nil
}

// excerpt trims a response body for error messages
func excerpt(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody] + "..."
	}
	return s
}

// compact collapses whitespace so queries log on one line
func compact(query string) string {
	return strings.Join(strings.Fields(query), " ")
}
