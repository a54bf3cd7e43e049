package jira

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
)

// adapter routes retryablehttp log lines through logrus.
type adapter struct {
	entry *logrus.Entry
}

func (a adapter) format(s string, i ...any) string {
	builder := strings.Builder{}
	builder.WriteString(s)
	for _, x := range i {
		builder.WriteString(" ")
		builder.WriteString(fmt.Sprintf("%v", x))
	}
	return builder.String()
}

func (a adapter) Error(s string, i ...any) {
	a.entry.Error(a.format(s, i...))
}

func (a adapter) Info(s string, i ...any) {
	a.entry.Info(a.format(s, i...))
}

// Debug is noisy in retryablehttp (one line per request), so it goes to trace.
func (a adapter) Debug(s string, i ...any) {
	a.entry.Trace(a.format(s, i...))
}

func (a adapter) Warn(s string, i ...any) {
	a.entry.Warn(a.format(s, i...))
}

var _ retryablehttp.LeveledLogger = adapter{}
