package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ConversionError represents a conversion problem with sheet and section context
type ConversionError struct {
	Type        ErrorType `json:"type"`
	Message     string    `json:"message"`
	Context     string    `json:"context,omitempty"`
	Sheet       string    `json:"sheet,omitempty"`
	Section     string    `json:"section,omitempty"`
	FilePath    string    `json:"file_path,omitempty"`
	Recoverable bool      `json:"recoverable"`
	StackTrace  string    `json:"stack_trace,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	cause       error
}

// ErrorType represents the categories of conversion errors
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeNotFound is a section, header row, metadata field or sheet that is absent.
	ErrorTypeNotFound
	// ErrorTypeParseFailure is a cell or date that could not be interpreted.
	ErrorTypeParseFailure
	// ErrorTypeSourceFailure is a workbook that cannot be opened or read, or an
	// output that cannot be written.
	ErrorTypeSourceFailure
	// ErrorTypeInvalidInput is a rejected path, extension or argument.
	ErrorTypeInvalidInput
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity int

const (
	SeverityInfo ErrorSeverity = iota
	SeverityWarning
	SeverityError
	SeverityCritical
)

// Error implements the error interface
func (e *ConversionError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Type.String(), e.Message, e.Context)
	}
	return fmt.Sprintf("[%s] %s", e.Type.String(), e.Message)
}

// Unwrap returns the wrapped error, if any
func (e *ConversionError) Unwrap() error {
	return e.cause
}

// String returns a string representation of the ErrorType
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeNotFound:
		return "NOT_FOUND"
	case ErrorTypeParseFailure:
		return "PARSE_FAILURE"
	case ErrorTypeSourceFailure:
		return "SOURCE_FAILURE"
	case ErrorTypeInvalidInput:
		return "INVALID_INPUT"
	default:
		return "UNKNOWN"
	}
}

// GetSeverity returns the severity level for a given error type
func (et ErrorType) GetSeverity() ErrorSeverity {
	switch et {
	case ErrorTypeNotFound, ErrorTypeParseFailure:
		return SeverityWarning
	case ErrorTypeSourceFailure:
		return SeverityCritical
	case ErrorTypeInvalidInput:
		return SeverityError
	default:
		return SeverityError
	}
}

// IsRecoverable determines if an error type lets the conversion continue
func (et ErrorType) IsRecoverable() bool {
	switch et {
	case ErrorTypeNotFound, ErrorTypeParseFailure:
		return true
	default:
		return false
	}
}

// New creates a new ConversionError
func New(errorType ErrorType, message string) *ConversionError {
	return &ConversionError{
		Type:        errorType,
		Message:     message,
		Recoverable: errorType.IsRecoverable(),
		Timestamp:   time.Now(),
	}
}

// Newf creates a new ConversionError with a formatted message
func Newf(errorType ErrorType, format string, args ...interface{}) *ConversionError {
	return New(errorType, fmt.Sprintf(format, args...))
}

// WrapError wraps a standard error as a ConversionError
func WrapError(errorType ErrorType, err error) *ConversionError {
	e := New(errorType, err.Error())
	e.cause = err
	return e
}

// WithContext adds context to an existing ConversionError
func (e *ConversionError) WithContext(context string) *ConversionError {
	e.Context = context
	return e
}

// WithSheet adds the sheet name
func (e *ConversionError) WithSheet(sheet string) *ConversionError {
	e.Sheet = sheet
	return e
}

// WithSection adds the section label
func (e *ConversionError) WithSection(section string) *ConversionError {
	e.Section = section
	return e
}

// WithFile adds file path information
func (e *ConversionError) WithFile(filePath string) *ConversionError {
	e.FilePath = filePath
	return e
}

// Describe is Error with the sheet and section appended when known
func (e *ConversionError) Describe() string {
	var where []string
	if e.Sheet != "" {
		where = append(where, "sheet "+e.Sheet)
	}
	if e.Section != "" {
		where = append(where, "section "+e.Section)
	}
	if len(where) == 0 {
		return e.Error()
	}
	return fmt.Sprintf("%s (%s)", e.Error(), strings.Join(where, ", "))
}

// GetSeverity returns the severity of this specific error
func (e *ConversionError) GetSeverity() ErrorSeverity {
	return e.Type.GetSeverity()
}

// IsCritical returns true if this error is critical
func (e *ConversionError) IsCritical() bool {
	return e.GetSeverity() == SeverityCritical
}

// IsType reports whether err is, or wraps, a ConversionError of the given type
func IsType(err error, errorType ErrorType) bool {
	var ce *ConversionError
	if errors.As(err, &ce) {
		return ce.Type == errorType
	}
	return false
}

// Collection gathers the errors and warnings raised while converting one document
type Collection struct {
	Errors   []*ConversionError `json:"errors"`
	Warnings []*ConversionError `json:"warnings"`
	FilePath string             `json:"file_path,omitempty"`
}

// NewCollection creates a new error collection
func NewCollection(filePath string) *Collection {
	return &Collection{
		Errors:   make([]*ConversionError, 0),
		Warnings: make([]*ConversionError, 0),
		FilePath: filePath,
	}
}

// Add adds an error to the appropriate list based on severity
func (c *Collection) Add(err *ConversionError) {
	if err == nil {
		return
	}
	if err.FilePath == "" && c.FilePath != "" {
		err.FilePath = c.FilePath
	}

	severity := err.GetSeverity()
	if severity == SeverityWarning || severity == SeverityInfo {
		c.Warnings = append(c.Warnings, err)
	} else {
		c.Errors = append(c.Errors, err)
	}
}

// Extend appends every entry of other, keeping their classification
func (c *Collection) Extend(other *Collection) {
	if other == nil {
		return
	}
	for _, e := range other.Errors {
		c.Add(e)
	}
	for _, w := range other.Warnings {
		c.Add(w)
	}
}

// Messages describes every entry, errors first
func (c *Collection) Messages() (errs, warns []string) {
	for _, e := range c.Errors {
		errs = append(errs, e.Describe())
	}
	for _, w := range c.Warnings {
		warns = append(warns, w.Describe())
	}
	return errs, warns
}

// HasCriticalErrors returns true if any critical errors exist
func (c *Collection) HasCriticalErrors() bool {
	for _, err := range c.Errors {
		if err.IsCritical() {
			return true
		}
	}
	return false
}

// Count returns the total number of errors and warnings
func (c *Collection) Count() (errors, warnings int) {
	return len(c.Errors), len(c.Warnings)
}

// Summary returns a text summary of all errors and warnings
func (c *Collection) Summary() string {
	errorCount, warningCount := c.Count()
	if errorCount == 0 && warningCount == 0 {
		return "No errors or warnings"
	}

	summary := fmt.Sprintf("Found %d error(s) and %d warning(s)", errorCount, warningCount)

	if c.HasCriticalErrors() {
		summary += " (including critical errors)"
	}

	return summary
}
