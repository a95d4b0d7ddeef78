package policy

import (
	"fmt"
	"strings"
)

// ErrorType categorizes a policy document problem.
type ErrorType string

const (
	ErrorTypeSyntax     ErrorType = "syntax"     // YAML does not parse
	ErrorTypeStructural ErrorType = "structural" // document shape violation
	ErrorTypeSemantic   ErrorType = "semantic"   // unknown names, dead rules
	ErrorTypeIO         ErrorType = "io"         // file could not be read
)

// Error is one policy document problem with its source location.
type Error struct {
	Type       ErrorType
	Message    string
	Line       int
	Column     int
	Suggestion string
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] %s", e.Type, e.Message))
	if e.Line > 0 {
		sb.WriteString(fmt.Sprintf(" (line %d", e.Line))
		if e.Column > 0 {
			sb.WriteString(fmt.Sprintf(", col %d", e.Column))
		}
		sb.WriteString(")")
	}
	if e.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("; suggestion: %s", e.Suggestion))
	}
	return sb.String()
}

// NewError creates a policy Error.
func NewError(errType ErrorType, message string, line, column int) *Error {
	return &Error{Type: errType, Message: message, Line: line, Column: column}
}

// ErrorList accumulates document problems instead of failing on the first,
// so a single lint pass reports everything.
type ErrorList struct {
	Errors []*Error
}

// NewErrorList creates an empty error list.
func NewErrorList() *ErrorList {
	return &ErrorList{Errors: make([]*Error, 0)}
}

// Add appends an error to the list.
func (el *ErrorList) Add(err *Error) {
	el.Errors = append(el.Errors, err)
}

// AddError creates and appends an error.
func (el *ErrorList) AddError(errType ErrorType, message string, line int) {
	el.Add(&Error{Type: errType, Message: message, Line: line})
}

// AddErrorWithSuggestion creates and appends an error carrying a fix hint.
func (el *ErrorList) AddErrorWithSuggestion(errType ErrorType, message string, line int, suggestion string) {
	el.Add(&Error{Type: errType, Message: message, Line: line, Suggestion: suggestion})
}

// HasErrors reports whether any error was accumulated.
func (el *ErrorList) HasErrors() bool {
	return len(el.Errors) > 0
}

// Count returns the number of accumulated errors.
func (el *ErrorList) Count() int {
	return len(el.Errors)
}

func (el *ErrorList) Error() string {
	if !el.HasErrors() {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("found %d policy error(s):", el.Count()))
	for _, err := range el.Errors {
		sb.WriteString("\n  ")
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// ToError returns nil when the list is empty, the list itself otherwise.
func (el *ErrorList) ToError() error {
	if el.HasErrors() {
		return el
	}
	return nil
}
