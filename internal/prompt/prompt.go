// Package prompt asks for missing report inputs on an interactive terminal.
package prompt

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/jirametrics/jirametrics/internal/contract"
	"golang.org/x/term"
)

// ErrNotInteractive is returned when inputs are missing and stdin is not a terminal.
var ErrNotInteractive = errors.New("missing report inputs and stdin is not a terminal")

// ErrAborted is returned when the user cancels the form.
var ErrAborted = errors.New("prompt aborted")

// answers holds the raw form values.
type answers struct {
	Template string
	Start    string
	End      string
}

// Fill asks for the template and date range when they are missing from cfg.
// choices lists the selectable template names; when empty the user types one.
func Fill(cfg *contract.Config, choices []string, now time.Time) error {
	if !cfg.NeedsPrompt() {
		return nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return ErrNotInteractive
	}

	ans := defaults(cfg, now)
	if err := buildForm(cfg, choices, &ans, now).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrAborted
		}
		return fmt.Errorf("prompt failed: %w", err)
	}
	return apply(cfg, ans, now)
}

// defaults pre-fills the form from what the configuration already has.
func defaults(cfg *contract.Config, now time.Time) answers {
	ans := answers{Template: cfg.TemplateName}
	if !cfg.StartTime.IsZero() {
		ans.Start = cfg.StartTime.Format(time.DateOnly)
	}
	if !cfg.EndTime.IsZero() {
		ans.End = cfg.EndTime.Format(time.DateOnly)
	} else {
		ans.End = now.Format(time.DateOnly)
	}
	return ans
}

func buildForm(cfg *contract.Config, choices []string, ans *answers, now time.Time) *huh.Form {
	var fields []huh.Field
	if cfg.TemplateFile == "" {
		fields = append(fields, templateField(choices, &ans.Template))
	}
	fields = append(fields,
		huh.NewInput().
			Title("Start date").
			Description("YYYY-MM-DD, RFC 3339 or relative such as '3 months ago'").
			Placeholder("2024-01-01").
			Value(&ans.Start).
			Validate(dateValidator(now, true)),
		huh.NewInput().
			Title("End date").
			Description("Defaults to today").
			Value(&ans.End).
			Validate(dateValidator(now, false)),
	)
	return huh.NewForm(huh.NewGroup(fields...)).WithTheme(huh.ThemeDracula())
}

func templateField(choices []string, value *string) huh.Field {
	if len(choices) == 0 {
		return huh.NewInput().
			Title("Query template").
			Description("Name of a template in the templates directory").
			Value(value).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("template is required")
				}
				return nil
			})
	}
	return huh.NewSelect[string]().
		Title("Query template").
		Options(templateOptions(choices)...).
		Value(value)
}

func templateOptions(choices []string) []huh.Option[string] {
	options := make([]huh.Option[string], 0, len(choices))
	for _, name := range choices {
		options = append(options, huh.NewOption(name, name))
	}
	return options
}

// dateValidator accepts every date format of the --start and --end flags.
func dateValidator(now time.Time, required bool) func(string) error {
	return func(s string) error {
		s = strings.TrimSpace(s)
		if s == "" {
			if required {
				return fmt.Errorf("date is required")
			}
			return nil
		}
		_, err := contract.ParseDateInput(s, now)
		return err
	}
}

// apply stores the answers in cfg. An empty end date means today.
func apply(cfg *contract.Config, ans answers, now time.Time) error {
	if cfg.TemplateFile == "" {
		name := strings.TrimSpace(ans.Template)
		if name == "" {
			return fmt.Errorf("no query template selected")
		}
		cfg.TemplateName = name
		cfg.TemplateFile = contract.ResolveTemplatePath(name, cfg.Templates, cfg.TemplatesDir)
	}

	start, err := contract.ParseDateInput(strings.TrimSpace(ans.Start), now)
	if err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}
	end := contract.TruncateDay(now)
	if s := strings.TrimSpace(ans.End); s != "" {
		if end, err = contract.ParseDateInput(s, now); err != nil {
			return fmt.Errorf("invalid end date: %w", err)
		}
	}
	if start.After(end) {
		return fmt.Errorf("start date %s is after end date %s", start.Format(time.DateOnly), end.Format(time.DateOnly))
	}
	cfg.StartTime, cfg.EndTime = start, end
	return nil
}
