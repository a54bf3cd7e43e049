package contract

import (
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// DefaultLogLevel is the log level used when none is configured.
const DefaultLogLevel = "warning"

// censoringFormatter masks registered secrets in log messages and fields.
type censoringFormatter struct {
	mu       sync.RWMutex
	secrets  []string
	delegate logrus.Formatter
}

// Format implements logrus.Formatter.
func (f *censoringFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, secret := range f.secrets {
		if strings.Contains(entry.Message, secret) {
			entry.Message = strings.ReplaceAll(entry.Message, secret, "xxx")
		}
		for key, value := range entry.Data {
			if valueString, ok := value.(string); ok && strings.Contains(valueString, secret) {
				entry.Data[key] = strings.ReplaceAll(valueString, secret, "xxx")
			}
		}
	}
	return f.delegate.Format(entry)
}

func (f *censoringFormatter) add(secret string) {
	if secret == "" {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.secrets {
		if s == secret {
			return
		}
	}
	f.secrets = append(f.secrets, secret)
}

var formatter = &censoringFormatter{
	delegate: &logrus.TextFormatter{FullTimestamp: true},
}

// SetupLogging configures the standard logrus logger for the CLI.
func SetupLogging(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	logrus.SetOutput(os.Stderr)
	logrus.SetLevel(lvl)
	logrus.SetFormatter(formatter)
	return nil
}

// CensorSecret registers a value that must never appear in log output.
func CensorSecret(secret string) {
	formatter.add(secret)
}
