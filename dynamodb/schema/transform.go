package schema

import (
	"fmt"
	"strings"
)

// Transformer converts a primitive value to and from its stored form.
type Transformer interface {
	Encode(value any) (any, error)
	Decode(value any) (any, error)
}

type prefix struct {
	prefix string
}

// Prefix prepends p to string values when saving and strips it when reading.
// Stored values without the prefix are returned as they are.
func Prefix(p string) Transformer {
	return prefix{prefix: p}
}

func (t prefix) Encode(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("prefix transformer expects a string, got %T", value)
	}
	return t.prefix + s, nil
}

func (t prefix) Decode(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("prefix transformer expects a string, got %T", value)
	}
	return strings.TrimPrefix(s, t.prefix), nil
}

type suffix struct {
	suffix string
}

// Suffix appends s to string values when saving and strips it when reading.
func Suffix(s string) Transformer {
	return suffix{suffix: s}
}

func (t suffix) Encode(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("suffix transformer expects a string, got %T", value)
	}
	return s + t.suffix, nil
}

func (t suffix) Decode(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("suffix transformer expects a string, got %T", value)
	}
	return strings.TrimSuffix(s, t.suffix), nil
}

type pipe []Transformer

// Pipe chains transformers. Encoding runs them in order, decoding in reverse.
func Pipe(ts ...Transformer) Transformer {
	return pipe(ts)
}

func (p pipe) Encode(value any) (any, error) {
	var err error
	for _, t := range p {
		if value, err = t.Encode(value); err != nil {
			return nil, err
		}
	}
	return value, nil
}

func (p pipe) Decode(value any) (any, error) {
	var err error
	for i := len(p) - 1; i >= 0; i-- {
		if value, err = p[i].Decode(value); err != nil {
			return nil, err
		}
	}
	return value, nil
}
