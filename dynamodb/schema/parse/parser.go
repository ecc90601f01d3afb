// Package parse turns untrusted input into values ready for storage.
//
// A run moves one value through up to four stages: defaulted, linked,
// parsed and transformed. Callers may stop at any stage, inspect the value,
// and feed the full item back at the linked stage so links can read it.
// Parse and Validate drive a run to completion.
//
// Runs never share mutable state with the frozen schema, so a Parser may be
// used from many goroutines.
package parse

import (
	"slices"

	"github.com/acksell/ddbtoolbox/dynamodb/ddberr"
	"github.com/acksell/ddbtoolbox/dynamodb/schema"
)

type Parser struct {
	attr *schema.Frozen
}

// New parses whole items against s.
func New(s *schema.FrozenSchema) *Parser {
	return &Parser{attr: s.Root()}
}

// ForAttribute parses single values against attr.
func ForAttribute(attr *schema.Frozen) *Parser {
	return &Parser{attr: attr}
}

// Start begins a run. Advance it with Next.
func (p *Parser) Start(input any, opts ...Option) Stepper {
	return NewRun(p.attr, input, NewOptions(opts...))
}

// Parse returns the final value of a run: the transformed value, or the
// parsed value when transforms are disabled.
func (p *Parser) Parse(input any, opts ...Option) (any, error) {
	return finish(p.Start(input, opts...))
}

// ParseItem is Parse for items.
func (p *Parser) ParseItem(input any, opts ...Option) (map[string]any, error) {
	v, err := p.Parse(input, opts...)
	if err != nil {
		return nil, err
	}
	item, _ := v.(map[string]any)
	return item, nil
}

// Validate reports whether input parses without filling or transforming.
// Parsing errors are reported as false, any other error is returned.
func (p *Parser) Validate(input any, opts ...Option) (bool, error) {
	opts = append(slices.Clone(opts), WithFill(false), WithTransform(false))
	if _, err := p.Parse(input, opts...); err != nil {
		if ddberr.Match(err, "parsing.") {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
