package contract

import (
	"fmt"
	"strings"
)

// AuthError means no usable token could be obtained. It is fatal for a run.
type AuthError struct {
	StatusCode int // Zero when the request never got a response
	Msg        string
	Err        error
}

func (e *AuthError) Error() string {
	var b strings.Builder
	b.WriteString("authentication failed")
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *AuthError) Unwrap() error { return e.Err }

// QueryError means a single search failed. Callers treat it as an empty result.
type QueryError struct {
	JQL        string
	StatusCode int // Zero when the request never got a response
	Msg        string
	Err        error
}

func (e *QueryError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "query %q failed", e.JQL)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *QueryError) Unwrap() error { return e.Err }

// ValidationError means a query template is missing expected keys.
// The affected reporting period is skipped.
type ValidationError struct {
	Template string
	Missing  []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("template %q is missing %s", e.Template, strings.Join(e.Missing, ", "))
}
