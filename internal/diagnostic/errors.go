package diagnostic

import (
	"errors"
	"fmt"
	"strings"
)

// Failure kinds. Every error produced by this module matches exactly one of
// these through errors.Is.
var (
	ErrFormat   = errors.New("format error")
	ErrSchema   = errors.New("schema error")
	ErrConflict = errors.New("conflict error")
	ErrNotFound = errors.New("not found")
	ErrIO       = errors.New("i/o error")
)

// Error is a classified failure. Kind is one of the Err* sentinels.
type Error struct {
	Kind        error
	Source      string
	Line        int
	Message     string
	Suggestions []string
	Err         error
}

func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(e.Kind.Error())
	b.WriteString(": ")

	switch {
	case e.Source != "" && e.Line > 0:
		fmt.Fprintf(&b, "%s:%d: ", e.Source, e.Line)
	case e.Source != "":
		b.WriteString(e.Source + ": ")
	case e.Line > 0:
		fmt.Fprintf(&b, "line %d: ", e.Line)
	}

	b.WriteString(e.Message)

	if len(e.Suggestions) > 0 {
		b.WriteString(" (did you mean " + strings.Join(e.Suggestions, ", ") + "?)")
	}

	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}

	return b.String()
}

// Is reports whether target is this error's kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Diagnostic converts the error into a diagnostic entry.
func (e *Error) Diagnostic() Diagnostic {
	return Diagnostic{
		Severity:    DiagnosticError,
		Code:        KindCode(e.Kind),
		Message:     e.Message,
		Source:      e.Source,
		Line:        e.Line,
		Suggestions: e.Suggestions,
	}
}

// Formatf reports malformed input at the given line (0 if unknown).
func Formatf(source string, line int, format string, args ...any) *Error {
	return &Error{Kind: ErrFormat, Source: source, Line: line, Message: fmt.Sprintf(format, args...)}
}

// Schemaf reports incompatible namespace declarations.
func Schemaf(format string, args ...any) *Error {
	return &Error{Kind: ErrSchema, Message: fmt.Sprintf(format, args...)}
}

// Conflictf reports contradictory data for one key.
func Conflictf(format string, args ...any) *Error {
	return &Error{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf reports a missing artifact or archive entry.
func NotFoundf(source string, format string, args ...any) *Error {
	return &Error{Kind: ErrNotFound, Source: source, Message: fmt.Sprintf(format, args...)}
}

// IO wraps an underlying read or write failure.
func IO(source, op string, err error) *Error {
	return &Error{Kind: ErrIO, Source: source, Message: op, Err: err}
}

// WithSuggestions attaches alternatives to the error and returns it.
func (e *Error) WithSuggestions(s ...string) *Error {
	e.Suggestions = append(e.Suggestions, s...)
	return e
}

// KindCode returns a short machine-readable code for a kind sentinel.
func KindCode(kind error) string {
	switch kind {
	case ErrFormat:
		return "format"
	case ErrSchema:
		return "schema"
	case ErrConflict:
		return "conflict"
	case ErrNotFound:
		return "not_found"
	case ErrIO:
		return "io"
	default:
		return "unknown"
	}
}
