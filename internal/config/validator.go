package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Iron-Ham/qanotes/internal/logging"
	"github.com/gobwas/glob"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "render.max_releases")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	levels := logging.ValidLevels()
	for i, l := range levels {
		levels[i] = strings.ToLower(l)
	}
	return levels
}

// ticketPlaceholders are the substitutions a rule's display template may use.
var ticketPlaceholders = []string{"{host}", "{owner}", "{repo}", "{last}"}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateRender()...)
	errors = append(errors, c.validateTickets()...)
	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateOutput()...)

	return errors
}

// validateRender validates the RenderConfig
func (c *Config) validateRender() []ValidationError {
	var errors []ValidationError

	if c.Render.MaxReleases < 1 {
		errors = append(errors, ValidationError{
			Field:   "render.max_releases",
			Value:   c.Render.MaxReleases,
			Message: "must be at least 1",
		})
	}

	if strings.TrimSpace(c.Render.Locale) == "" {
		errors = append(errors, ValidationError{
			Field:   "render.locale",
			Value:   c.Render.Locale,
			Message: "must not be empty",
		})
	}

	return errors
}

// validateTickets compiles every rule pattern so bad globs surface at load
// time instead of on the first render that reaches them.
func (c *Config) validateTickets() []ValidationError {
	var errors []ValidationError

	for i, rule := range c.Tickets.Rules {
		field := fmt.Sprintf("tickets.rules[%d]", i)

		if rule.Pattern == "" {
			errors = append(errors, ValidationError{
				Field:   field + ".pattern",
				Value:   rule.Pattern,
				Message: "must not be empty",
			})
		} else if _, err := glob.Compile(rule.Pattern, '/'); err != nil {
			errors = append(errors, ValidationError{
				Field:   field + ".pattern",
				Value:   rule.Pattern,
				Message: fmt.Sprintf("invalid glob: %v", err),
			})
		}

		if rule.Display == "" {
			errors = append(errors, ValidationError{
				Field:   field + ".display",
				Value:   rule.Display,
				Message: "must not be empty",
			})
			continue
		}
		for _, name := range placeholdersIn(rule.Display) {
			if !slices.Contains(ticketPlaceholders, name) {
				errors = append(errors, ValidationError{
					Field:   field + ".display",
					Value:   rule.Display,
					Message: fmt.Sprintf("unknown placeholder %s, must be one of: %s", name, strings.Join(ticketPlaceholders, ", ")),
				})
			}
		}
	}

	return errors
}

// placeholdersIn returns every {name} in s.
func placeholdersIn(s string) []string {
	var out []string
	for {
		start := strings.IndexByte(s, '{')
		if start < 0 {
			return out
		}
		end := strings.IndexByte(s[start:], '}')
		if end < 0 {
			return out
		}
		out = append(out, s[start:start+end+1])
		s = s[start+end+1:]
	}
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	if c.Logging.MaxSizeMB <= 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be positive",
		})
	}

	const maxLogSizeMB = 1000
	if c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	if strings.ContainsRune(c.Logging.Dir, '\x00') {
		errors = append(errors, ValidationError{
			Field:   "logging.dir",
			Value:   c.Logging.Dir,
			Message: "path contains invalid null character",
		})
	}

	return errors
}

// validateOutput validates the OutputConfig
func (c *Config) validateOutput() []ValidationError {
	var errors []ValidationError

	if strings.ContainsRune(c.Output.Dir, '\x00') {
		errors = append(errors, ValidationError{
			Field:   "output.dir",
			Value:   c.Output.Dir,
			Message: "path contains invalid null character",
		})
	}

	const maxPathLength = 4096
	if len(c.Output.Dir) > maxPathLength {
		errors = append(errors, ValidationError{
			Field:   "output.dir",
			Value:   c.Output.Dir,
			Message: fmt.Sprintf("path exceeds maximum length of %d characters", maxPathLength),
		})
	}

	if c.Output.Suffix != "" {
		if strings.ContainsAny(c.Output.Suffix, `/\`) {
			errors = append(errors, ValidationError{
				Field:   "output.suffix",
				Value:   c.Output.Suffix,
				Message: "must not contain path separators",
			})
		}
	}

	return errors
}
