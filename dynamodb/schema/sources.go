package schema

import (
	"errors"

	"github.com/google/uuid"
)

// ValueGetter produces a default value each time one is needed.
type ValueGetter func() any

type computedDefault struct{}

// ComputedDefault marks a default that the attribute's link provides.
// Freezing fails if no link is declared for the same mode.
var ComputedDefault any = computedDefault{}

func isComputed(v any) bool {
	_, ok := v.(computedDefault)
	return ok
}

// UUID generates a random version 4 UUID string.
var UUID ValueGetter = func() any {
	return uuid.NewString()
}

// Link derives a value from the rest of the item. It receives the defaulted
// root item and runs only when no value was provided.
type Link func(item map[string]any) any

// Validator is a custom check run on the parsed value.
// A non-nil error fails the parse with its message.
type Validator func(value any) error

// Predicate turns a boolean check into a Validator failing with msg.
func Predicate(fn func(value any) bool, msg string) Validator {
	return func(value any) error {
		if fn(value) {
			return nil
		}
		return errors.New(msg)
	}
}

// resolveDefault turns a default source into a value.
// The second return is false when no value is produced.
func resolveDefault(src any) (any, bool) {
	switch d := src.(type) {
	case nil:
		return nil, false
	case computedDefault:
		return nil, false
	case ValueGetter:
		v := d()
		return v, v != nil
	case func() any:
		v := d()
		return v, v != nil
	default:
		return Clone(d), true
	}
}

func isLiteral(src any) bool {
	switch src.(type) {
	case nil, computedDefault, ValueGetter, func() any:
		return false
	}
	return true
}
