// Package schema has models and constants for all parts of jirametrics.
package schema

import "time"

// Credential is a bearer token together with its absolute expiry instant.
type Credential struct {
	Token  string
	Expiry time.Time
}

// Issue is a single tracker issue reduced to the fields the reports need.
type Issue struct {
	Key      string     `json:"key"`
	Title    string     `json:"title"`
	Priority string     `json:"priority"` // Raw priority name from the tracker
	Created  time.Time  `json:"created"`
	Resolved *time.Time `json:"resolved,omitempty"`

	// DateErr is set when created or resolutiondate could not be parsed.
	// Such an issue still counts toward bucket totals but is left out of age sums.
	DateErr error `json:"-"`
}

// Bucket maps the raw priority name onto one of the three priority buckets.
func (i Issue) Bucket() Priority {
	switch Priority(i.Priority) {
	case Blocker:
		return Blocker
	case Critical:
		return Critical
	default:
		return Others
	}
}

// IsResolved reports whether the issue carries a resolution timestamp.
func (i Issue) IsResolved() bool {
	return i.Resolved != nil
}

// Period is a single reporting period. Start and End are calendar days.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Label string    `json:"label"` // e.g. "January_2024"
}

// StartDate returns the period start as YYYY-MM-DD.
func (p Period) StartDate() string {
	return p.Start.Format(time.DateOnly)
}

// EndDate returns the period end as YYYY-MM-DD.
func (p Period) EndDate() string {
	return p.End.Format(time.DateOnly)
}

// SearchResponse is the JSON body returned by the issue search endpoint.
// Issues is a pointer so that a missing field can be told apart from an empty list.
type SearchResponse struct {
	StartAt    int            `json:"startAt"`
	MaxResults int            `json:"maxResults"`
	Total      int            `json:"total"`
	Issues     *[]RawIssue    `json:"issues"`
	Errors     map[string]any `json:"errors,omitempty"`
}

// RawIssue is a single issue as returned by the search endpoint.
type RawIssue struct {
	Key    string    `json:"key"`
	Fields RawFields `json:"fields"`
}

// RawFields holds the issue fields requested by the reports.
type RawFields struct {
	Summary        string       `json:"summary"`
	Priority       *RawPriority `json:"priority"`
	Created        string       `json:"created"`
	ResolutionDate *string      `json:"resolutiondate"`
}

// RawPriority is the priority object of an issue.
type RawPriority struct {
	Name string `json:"name"`
}

// TokenResponse is the JSON body returned by the authentication endpoint.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   *int64 `json:"expires_in"`
}

// TokenRequest is the JSON body sent to the authentication endpoint.
type TokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Service  string `json:"service"`
}
