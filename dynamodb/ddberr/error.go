// Package ddberr holds the structured error type shared by the schema,
// parser, formatter and command packages.
//
// Every error carries a namespaced code such as "parsing.missingAttribute".
// The namespace tells the caller who has to act:
//   - schema.*     invalid static configuration, fix the code
//   - parsing.*    invalid input, recoverable by the caller
//   - formatting.* malformed stored data
//   - options.*    invalid command options
package ddberr

import (
	"errors"
	"fmt"
	"strings"
)

type Error struct {
	Code    string
	Message string
	// Path is the value path of the offending attribute, e.g. "a.b[0].c".
	Path    string
	Payload map[string]any
	// Err is the underlying cause, if any.
	Err     error
}

func (e *Error) Error() string {
	if e.Path != "" && !strings.Contains(e.Message, e.Path) {
		return fmt.Sprintf("%s: %s (path %q)", e.Code, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

type Option func(*Error)

func WithPath(path string) Option {
	return func(e *Error) {
		e.Path = path
	}
}

func WithPayload(kv map[string]any) Option {
	return func(e *Error) {
		if e.Payload == nil {
			e.Payload = make(map[string]any, len(kv))
		}
		for k, v := range kv {
			e.Payload[k] = v
		}
	}
}

func WithCause(err error) Option {
	return func(e *Error) {
		e.Err = err
	}
}

func New(code, message string, opts ...Option) *Error {
	e := &Error{Code: code, Message: message}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) string {
	if e, ok := As(err); ok {
		return e.Code
	}
	return ""
}

// HasCode reports whether err carries exactly the given code.
func HasCode(err error, code string) bool {
	return CodeOf(err) == code
}

// Match reports whether err carries a code starting with prefix.
// Match(err, "parsing.") matches every parsing error.
func Match(err error, prefix string) bool {
	code := CodeOf(err)
	return code != "" && strings.HasPrefix(code, prefix)
}
