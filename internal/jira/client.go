// Package jira runs JQL searches against the issue tracker.
package jira

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/jirametrics/jirametrics/internal/contract"
	"github.com/jirametrics/jirametrics/internal/jiratime"
	"github.com/jirametrics/jirametrics/schema"
	"github.com/sirupsen/logrus"
)

// searchCacheVersion is bumped whenever the cached payload changes shape.
const searchCacheVersion = 1

// defaultRetryMax is the number of retries for 5xx, 429 and transport errors.
const defaultRetryMax = 3

// SearchConfig describes the search endpoint.
type SearchConfig struct {
	URL        string
	MaxResults int
	Timeout    time.Duration
	RetryMax   int
	CacheTTL   time.Duration
}

// SearchClient runs JQL searches with a bearer token from a TokenSource.
type SearchClient struct {
	cfg    SearchConfig
	tokens contract.TokenSource
	http   *retryablehttp.Client
	cache  contract.CacheStore
	now    func() time.Time
	log    *logrus.Entry
}

var _ contract.IssueSearcher = &SearchClient{} // Compile-time check

// Option customizes a SearchClient.
type Option func(*SearchClient)

// WithCache stores raw search responses in the given store.
// A nil store disables caching.
func WithCache(store contract.CacheStore) Option {
	return func(c *SearchClient) { c.cache = store }
}

// WithClock replaces the wall clock used for cache expiry.
func WithClock(now func() time.Time) Option {
	return func(c *SearchClient) { c.now = now }
}

// WithRetryWait sets the minimum and maximum wait between retries.
func WithRetryWait(minWait, maxWait time.Duration) Option {
	return func(c *SearchClient) {
		c.http.RetryWaitMin = minWait
		c.http.RetryWaitMax = maxWait
	}
}

// NewSearchClient creates a search client. It does not contact the server.
func NewSearchClient(cfg SearchConfig, tokens contract.TokenSource, opts ...Option) *SearchClient {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = contract.DefaultMaxResults
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = contract.DefaultTimeout
	}
	if cfg.RetryMax <= 0 {
		cfg.RetryMax = defaultRetryMax
	}

	log := logrus.WithField("component", "search")
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.RetryMax
	retryClient.Logger = adapter{entry: log}
	retryClient.HTTPClient.Timeout = cfg.Timeout
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	c := &SearchClient{
		cfg:    cfg,
		tokens: tokens,
		http:   retryClient,
		now:    time.Now,
		log:    log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search returns the issues matching jql. Failures are *contract.QueryError,
// except for token failures which are *contract.AuthError.
func (c *SearchClient) Search(ctx context.Context, jql string) ([]schema.Issue, error) {
	log := c.log.WithField("jql", jql)

	key := c.cacheKey(jql)
	if body, ok := c.fromCache(key); ok {
		log.Debug("Search cache hit")
		resp, err := decodeResponse(jql, body)
		if err == nil {
			return ConvertIssues(*resp.Issues, log), nil
		}
		log.WithError(err).Warn("Ignoring unreadable cached search response")
	}

	body, err := c.fetch(ctx, jql)
	if err != nil {
		return nil, err
	}
	resp, err := decodeResponse(jql, body)
	if err != nil {
		return nil, err
	}
	c.toCache(key, body)

	log.WithField("count", len(*resp.Issues)).Debug("Search finished")
	return ConvertIssues(*resp.Issues, log), nil
}

// fetch performs the HTTP round trip and returns the raw body of a 2xx response.
func (c *SearchClient) fetch(ctx context.Context, jql string) ([]byte, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	u, err := url.Parse(c.cfg.URL)
	if err != nil {
		return nil, &contract.QueryError{JQL: jql, Msg: "invalid search URL", Err: err}
	}
	q := u.Query()
	q.Set("jql", jql)
	q.Set("startAt", "0")
	q.Set("maxResults", strconv.Itoa(c.cfg.MaxResults))
	u.RawQuery = q.Encode()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &contract.QueryError{JQL: jql, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &contract.QueryError{JQL: jql, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &contract.QueryError{JQL: jql, StatusCode: resp.StatusCode, Msg: "cannot read response", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &contract.QueryError{
			JQL:        jql,
			StatusCode: resp.StatusCode,
			Msg:        contract.TruncateText(strings.TrimSpace(string(data)), 200),
		}
	}
	return data, nil
}

// decodeResponse parses a search body. A body without an issues field is an error.
func decodeResponse(jql string, body []byte) (*schema.SearchResponse, error) {
	var resp schema.SearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &contract.QueryError{JQL: jql, Msg: "malformed search response", Err: err}
	}
	if resp.Issues == nil {
		return nil, &contract.QueryError{JQL: jql, Msg: "search response has no issues field"}
	}
	return &resp, nil
}

// ConvertIssues maps raw issues onto the domain model.
// Unparseable dates are recorded on the issue instead of failing the search.
func ConvertIssues(raw []schema.RawIssue, log *logrus.Entry) []schema.Issue {
	issues := make([]schema.Issue, 0, len(raw))
	for _, r := range raw {
		issue := schema.Issue{
			Key:   r.Key,
			Title: r.Fields.Summary,
		}
		if r.Fields.Priority != nil {
			issue.Priority = r.Fields.Priority.Name
		}

		created, err := jiratime.Parse(r.Fields.Created)
		if err != nil {
			issue.DateErr = err
		} else {
			issue.Created = created
		}

		if rd := r.Fields.ResolutionDate; rd != nil && *rd != "" {
			resolved, err := jiratime.Parse(*rd)
			if err != nil {
				if issue.DateErr == nil {
					issue.DateErr = err
				}
			} else {
				issue.Resolved = &resolved
			}
		}

		if issue.DateErr != nil {
			log.WithError(issue.DateErr).WithField("issue", issue.Key).Warn("Issue has an unreadable date")
		}
		issues = append(issues, issue)
	}
	return issues
}

// cacheKey identifies a search by endpoint, query and result cap.
func (c *SearchClient) cacheKey(jql string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s\x00%s\x00%d", c.cfg.URL, jql, c.cfg.MaxResults)))
	return "search:" + hex.EncodeToString(sum[:])
}

func (c *SearchClient) fromCache(key string) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}
	data, version, ts, err := c.cache.Get(key)
	if err != nil || version != searchCacheVersion {
		return nil, false
	}
	if c.cfg.CacheTTL > 0 && c.now().Sub(time.Unix(ts, 0)) > c.cfg.CacheTTL {
		return nil, false
	}
	return data, true
}

func (c *SearchClient) toCache(key string, body []byte) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Set(key, body, searchCacheVersion, c.now().Unix()); err != nil {
		c.log.WithError(err).Warn("Failed to cache search response")
	}
}
