// Package errors provides centralized error definitions and error handling utilities
// for qanotes. It defines domain-specific errors, semantic error types, error
// constructors with context wrapping, and error classification helpers.
//
// # Error Types
//
// Domain-specific errors represent errors from specific subsystems:
//   - DatabaseError: errors reading or decoding a release database
//   - RenderError: errors raised while rendering a release into HTML
//   - TicketError: errors resolving a ticket URL into a display name
//
// Semantic errors represent common error conditions:
//   - NotFoundError: resource not found
//   - ValidationError: invalid input or state
//
// # Usage
//
//	err := errors.NewRenderError("convert testing notes", cause).
//		WithRelease("1.2.0").WithSection("qa-notes")
//
//	if errors.Is(err, errors.ErrUnknownTicketFormat) { ... }
//
//	var renderErr *errors.RenderError
//	if errors.As(err, &renderErr) { ... }
//
// Every error that qanotes returns is fatal to the render it came from: the
// renderer never emits a partial document.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Database-related sentinel errors
var (
	// ErrMissingField indicates that a required field is absent from the database.
	ErrMissingField = New("required field missing")
	// ErrMalformedDatabase indicates that the database does not have the expected shape.
	ErrMalformedDatabase = New("malformed release database")
	// ErrUnsupportedFormat indicates that the database file extension is not recognized.
	ErrUnsupportedFormat = New("unsupported database format")
)

// Render-related sentinel errors
var (
	// ErrMarkup indicates that markup could not be converted to HTML.
	ErrMarkup = New("markup conversion failed")
	// ErrTagMismatch indicates that the cascade builder and the customer
	// service section disagree about which tag belongs to a note.
	ErrTagMismatch = New("note tag mismatch")
	// ErrNoReleases indicates that there is nothing to render.
	ErrNoReleases = New("database has no releases")
)

// Ticket-related sentinel errors
var (
	// ErrUnknownTicketFormat indicates a ticket URL that no resolver rule recognizes.
	ErrUnknownTicketFormat = New("unrecognized ticket URL format")
	// ErrBadTicketRule indicates a ticket rule pattern that cannot be compiled.
	ErrBadTicketRule = New("invalid ticket rule")
)

// General sentinel errors
var (
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// ReportError is the base interface for all qanotes errors.
type ReportError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsUserFacing returns true if the error message is safe to display
	// to end users.
	IsUserFacing() bool
}

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// format renders "prefix [k=v, ...]: message: cause".
func (e *baseError) format(prefix string, parts []string) string {
	if len(parts) > 0 {
		prefix = fmt.Sprintf("%s [%s]", prefix, strings.Join(parts, ", "))
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// DatabaseError represents errors reading or decoding a release database.
//
// Example:
//
//	err := errors.NewDatabaseError("decode releases", errors.ErrMalformedDatabase).
//		WithPath("build/qa.json").WithField("releases[2].name")
type DatabaseError struct {
	baseError
	Path  string
	Field string
}

// NewDatabaseError creates a new DatabaseError.
func NewDatabaseError(message string, cause error) *DatabaseError {
	return &DatabaseError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			userFacing: true,
		},
	}
}

// WithPath adds the database file path to the error context.
func (e *DatabaseError) WithPath(path string) *DatabaseError {
	e.Path = path
	return e
}

// WithField adds the offending field path to the error context.
func (e *DatabaseError) WithField(field string) *DatabaseError {
	e.Field = field
	return e
}

// Error returns the formatted error message.
func (e *DatabaseError) Error() string {
	var parts []string
	if e.Path != "" {
		parts = append(parts, fmt.Sprintf("path=%s", e.Path))
	}
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	return e.format("database error", parts)
}

// Is checks if this error matches the target.
func (e *DatabaseError) Is(target error) bool {
	if _, ok := target.(*DatabaseError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// RenderError represents errors raised while rendering one release.
//
// Example:
//
//	err := errors.NewRenderError("convert technical notes", cause).
//		WithRelease("2.0").WithSection("qa-notes")
type RenderError struct {
	baseError
	Release string
	Section string
}

// NewRenderError creates a new RenderError.
func NewRenderError(message string, cause error) *RenderError {
	return &RenderError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			userFacing: true,
		},
	}
}

// WithRelease adds the release name to the error context.
func (e *RenderError) WithRelease(name string) *RenderError {
	e.Release = name
	return e
}

// WithSection adds the document section to the error context.
func (e *RenderError) WithSection(section string) *RenderError {
	e.Section = section
	return e
}

// Internal marks the error as a broken renderer invariant rather than a
// problem with the input: critical severity and not user facing.
func (e *RenderError) Internal() *RenderError {
	e.severity = SeverityCritical
	e.userFacing = false
	return e
}

// Error returns the formatted error message.
func (e *RenderError) Error() string {
	var parts []string
	if e.Release != "" {
		parts = append(parts, fmt.Sprintf("release=%s", e.Release))
	}
	if e.Section != "" {
		parts = append(parts, fmt.Sprintf("section=%s", e.Section))
	}
	return e.format("render error", parts)
}

// Is checks if this error matches the target.
func (e *RenderError) Is(target error) bool {
	if _, ok := target.(*RenderError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// TicketError represents a ticket URL that could not be turned into a badge.
// An unrecognized URL format is a configuration problem, so these errors are
// always fatal.
type TicketError struct {
	baseError
	URL string
}

// NewTicketError creates a new TicketError.
func NewTicketError(message string, cause error) *TicketError {
	return &TicketError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			userFacing: true,
		},
	}
}

// WithURL adds the ticket URL to the error context.
func (e *TicketError) WithURL(url string) *TicketError {
	e.URL = url
	return e
}

// Error returns the formatted error message.
func (e *TicketError) Error() string {
	var parts []string
	if e.URL != "" {
		parts = append(parts, fmt.Sprintf("url=%s", e.URL))
	}
	return e.format("ticket error", parts)
}

// Is checks if this error matches the target.
func (e *TicketError) Is(target error) bool {
	if _, ok := target.(*TicketError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// NotFoundError represents a resource that could not be found.
//
// Example:
//
//	err := errors.NewNotFoundError("database", "qa.json")
//	fmt.Println(err) // "database 'qa.json' not found"
type NotFoundError struct {
	baseError
	ResourceType string
	ResourceID   string
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resourceType, resourceID string) *NotFoundError {
	return &NotFoundError{
		baseError: baseError{
			message:    fmt.Sprintf("%s '%s' not found", resourceType, resourceID),
			severity:   SeverityWarning,
			userFacing: true,
		},
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

// WithCause adds a cause to the error.
func (e *NotFoundError) WithCause(cause error) *NotFoundError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *NotFoundError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s '%s' not found: %v", e.ResourceType, e.ResourceID, e.cause)
	}
	return fmt.Sprintf("%s '%s' not found", e.ResourceType, e.ResourceID)
}

// Is checks if this error matches the target.
func (e *NotFoundError) Is(target error) bool {
	if _, ok := target.(*NotFoundError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ValidationError represents invalid input or state.
//
// Example:
//
//	err := errors.NewValidationError("release name is required").
//		WithField("releases[0].name")
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			severity:   SeverityWarning,
			userFacing: true,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause adds a cause to the error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}
	return e.format("validation error", parts)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if errors.Is(target, ErrInvalidInput) {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsUserFacing returns true if the error message is safe to display to end users.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	var reportErr ReportError
	if As(err, &reportErr) {
		return reportErr.IsUserFacing()
	}
	return false
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement ReportError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var reportErr ReportError
	if As(err, &reportErr) {
		return reportErr.Severity()
	}
	return SeverityError
}

// IsDomainError returns true if the error is a domain-specific error
// (DatabaseError, RenderError, or TicketError).
func IsDomainError(err error) bool {
	if err == nil {
		return false
	}

	var dbErr *DatabaseError
	var renderErr *RenderError
	var ticketErr *TicketError

	return As(err, &dbErr) || As(err, &renderErr) || As(err, &ticketErr)
}

// IsSemanticError returns true if the error is a semantic error
// (NotFoundError or ValidationError).
func IsSemanticError(err error) bool {
	if err == nil {
		return false
	}

	var notFound *NotFoundError
	var validation *ValidationError

	return As(err, &notFound) || As(err, &validation)
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
