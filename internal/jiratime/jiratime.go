// Package jiratime parses the timestamp shapes returned by the issue tracker.
//
// Two shapes are accepted. The strict shape is ISO-8601 as produced by most
// clients (RFC 3339 with a colon in the offset, or no offset at all). The
// fallback shape is the tracker's native one, a microsecond timestamp with a
// "+HHMM" or "-HHMM" suffix, e.g. "2024-01-15T10:30:00.000-0800".
package jiratime

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// fallbackLayout is the base of the fallback shape, without the offset.
const fallbackLayout = "2006-01-02T15:04:05.999999"

// strictLayouts are tried in order before the fallback shape.
var strictLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	time.DateOnly,
}

// fallbackRe matches YYYY-MM-DDTHH:MM:SS.ffffff with an optional ±HHMM suffix.
var fallbackRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{1,6})(?:([+-])(\d{2})(\d{2}))?$`)

// DateFormatError reports a timestamp that matches neither accepted shape.
type DateFormatError struct {
	Value string
}

func (e *DateFormatError) Error() string {
	return fmt.Sprintf("unrecognized timestamp format %q", e.Value)
}

// Parse converts a tracker timestamp into a UTC instant.
//
// Strict ISO-8601 is tried first. Otherwise the fallback shape is parsed and
// its signed ±HHMM offset is added to the naive instant; a missing offset
// means +0000. Timestamps sharing an offset keep their exact differences.
func Parse(s string) (time.Time, error) {
	for _, layout := range strictLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}

	m := fallbackRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, &DateFormatError{Value: s}
	}
	base, err := time.ParseInLocation(fallbackLayout, m[1], time.UTC)
	if err != nil {
		return time.Time{}, &DateFormatError{Value: s}
	}
	if m[2] == "" {
		return base, nil
	}
	hours, _ := strconv.Atoi(m[3])
	minutes, _ := strconv.Atoi(m[4])
	offset := time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute
	if m[2] == "-" {
		offset = -offset
	}
	return base.Add(offset), nil
}

// Format renders an instant in the fallback shape with a +0000 suffix.
// Parse(Format(t)) equals t truncated to microseconds.
func Format(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000") + "+0000"
}

// ParseDay parses a YYYY-MM-DD calendar day as midnight UTC.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, &DateFormatError{Value: s}
	}
	return t, nil
}
