// Package auth obtains and caches bearer tokens from the authentication endpoint.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jirametrics/jirametrics/internal/contract"
	"github.com/jirametrics/jirametrics/schema"
	"github.com/sirupsen/logrus"
)

// RefreshMargin is how long before expiry a token is considered stale.
const RefreshMargin = 60 * time.Second

// defaultMaxElapsed bounds how long transport failures are retried.
const defaultMaxElapsed = 30 * time.Second

// TokenConfig describes how to reach the authentication endpoint.
type TokenConfig struct {
	URL      string
	Username string
	Password string
	Service  string
	Timeout  time.Duration
}

// TokenClient hands out a cached bearer token and refreshes it shortly before it expires.
// It is safe for concurrent use.
type TokenClient struct {
	cfg        TokenConfig
	httpClient *http.Client
	now        func() time.Time
	maxElapsed time.Duration
	log        *logrus.Entry

	mu   sync.Mutex
	cred schema.Credential
}

var _ contract.TokenSource = &TokenClient{} // Compile-time check

// Option customizes a TokenClient.
type Option func(*TokenClient)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *TokenClient) { c.now = now }
}

// WithHTTPClient replaces the HTTP client used for token requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *TokenClient) { c.httpClient = hc }
}

// WithMaxElapsed bounds the total time spent retrying transport failures.
func WithMaxElapsed(d time.Duration) Option {
	return func(c *TokenClient) { c.maxElapsed = d }
}

// NewTokenClient creates a client and fetches the first token right away.
func NewTokenClient(ctx context.Context, cfg TokenConfig, opts ...Option) (*TokenClient, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = contract.DefaultTimeout
	}
	c := &TokenClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
		maxElapsed: defaultMaxElapsed,
		log:        logrus.WithField("component", "auth"),
	}
	for _, opt := range opts {
		opt(c)
	}
	contract.CensorSecret(cfg.Password)

	if err := c.refresh(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Token returns a token that stays valid for at least RefreshMargin.
func (c *TokenClient) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.now().Add(RefreshMargin).After(c.cred.Expiry) {
		c.log.Debug("Token is about to expire, refreshing")
		if err := c.refreshLocked(ctx); err != nil {
			return "", err
		}
	}
	return c.cred.Token, nil
}

// Expiry returns the expiry instant of the cached token.
func (c *TokenClient) Expiry() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cred.Expiry
}

func (c *TokenClient) refresh(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshLocked(ctx)
}

// refreshLocked fetches a new token. The caller must hold c.mu.
func (c *TokenClient) refreshLocked(ctx context.Context) error {
	body, err := json.Marshal(schema.TokenRequest{
		Username: c.cfg.Username,
		Password: c.cfg.Password,
		Service:  c.cfg.Service,
	})
	if err != nil {
		return &contract.AuthError{Msg: "cannot encode token request", Err: err}
	}

	var cred schema.Credential
	operation := func() error {
		var opErr error
		cred, opErr = c.fetch(ctx, body)
		return opErr
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = c.maxElapsed
	notify := func(err error, wait time.Duration) {
		c.log.WithError(err).Warnf("Token request failed, retrying in %s", wait)
	}
	if err := backoff.RetryNotify(operation, backoff.WithContext(bo, ctx), notify); err != nil {
		var authErr *contract.AuthError
		if errors.As(err, &authErr) {
			return authErr
		}
		return &contract.AuthError{Msg: "token request failed", Err: err}
	}

	c.cred = cred
	contract.CensorSecret(cred.Token)
	c.log.WithField("expiry", cred.Expiry.Format(time.RFC3339)).Debug("Obtained new token")
	return nil
}

// fetch performs one token request. Status and payload failures are permanent.
func (c *TokenClient) fetch(ctx context.Context, body []byte) (schema.Credential, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return schema.Credential{}, backoff.Permanent(&contract.AuthError{Msg: "cannot build token request", Err: err})
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return schema.Credential{}, backoff.Permanent(&contract.AuthError{Err: err})
		}
		return schema.Credential{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return schema.Credential{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return schema.Credential{}, backoff.Permanent(&contract.AuthError{
			StatusCode: resp.StatusCode,
			Msg:        string(bytes.TrimSpace(data)),
		})
	}

	var tr schema.TokenResponse
	if err := json.Unmarshal(data, &tr); err != nil {
		return schema.Credential{}, backoff.Permanent(&contract.AuthError{Msg: "malformed token response", Err: err})
	}
	if tr.AccessToken == "" {
		return schema.Credential{}, backoff.Permanent(&contract.AuthError{Msg: "token response has no access_token"})
	}
	if tr.ExpiresIn == nil {
		return schema.Credential{}, backoff.Permanent(&contract.AuthError{Msg: "token response has no expires_in"})
	}

	return schema.Credential{
		Token:  tr.AccessToken,
		Expiry: c.now().Add(time.Duration(*tr.ExpiresIn) * time.Second),
	}, nil
}

// String describes the client without leaking credentials.
func (c *TokenClient) String() string {
	return fmt.Sprintf("TokenClient(%s as %s)", c.cfg.URL, c.cfg.Username)
}
