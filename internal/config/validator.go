package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/robfig/cron/v3"

	"github.com/zephyrtronium/scicalc/internal/theme"
)

// MaxPrecision is the largest accepted calc.precision.
const MaxPrecision = 1 << 16

// ValidationError is a single invalid setting.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is every invalid setting in a config.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	switch len(e) {
	case 0:
		return ""
	case 1:
		return e[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// ValidLogLevels returns the accepted logging levels.
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate returns every invalid setting in c.
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError
	if c.Calc.Precision == 0 || c.Calc.Precision > MaxPrecision {
		errs = append(errs, ValidationError{
			Field:   "calc.precision",
			Value:   c.Calc.Precision,
			Message: fmt.Sprintf("must be between 1 and %d bits", MaxPrecision),
		})
	}
	if c.Calc.Digits < 1 || c.Calc.Digits > 1000 {
		errs = append(errs, ValidationError{
			Field:   "calc.digits",
			Value:   c.Calc.Digits,
			Message: "must be between 1 and 1000",
		})
	}
	if _, err := theme.Parse(c.UI.Theme); err != nil {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Value:   c.UI.Theme,
			Message: "must be dark or light",
		})
	}
	if c.Web.Addr == "" {
		errs = append(errs, ValidationError{
			Field:   "web.addr",
			Value:   c.Web.Addr,
			Message: "must not be empty",
		})
	}
	if c.Web.SessionTTL <= 0 {
		errs = append(errs, ValidationError{
			Field:   "web.session_ttl",
			Value:   c.Web.SessionTTL,
			Message: "must be positive",
		})
	}
	if _, err := cron.ParseStandard(c.Web.SweepSchedule); err != nil {
		errs = append(errs, ValidationError{
			Field:   "web.sweep_schedule",
			Value:   c.Web.SweepSchedule,
			Message: "must be a cron schedule: " + err.Error(),
		})
	}
	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: "must be one of " + strings.Join(ValidLogLevels(), ", "),
		})
	}
	return errs
}
