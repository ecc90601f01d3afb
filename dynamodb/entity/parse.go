package entity

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/acksell/ddbtoolbox/dynamodb/ddberr"
	"github.com/acksell/ddbtoolbox/dynamodb/index/val"
	"github.com/acksell/ddbtoolbox/dynamodb/schema"
	"github.com/acksell/ddbtoolbox/dynamodb/schema/format"
	"github.com/acksell/ddbtoolbox/dynamodb/schema/parse"
	"github.com/acksell/ddbtoolbox/dynamodb/table"
	"github.com/acksell/ddbtoolbox/dynamodb/update"
)

type Parsed struct {
	// ParsedItem is the validated item keyed by attribute name.
	ParsedItem map[string]any
	// Item is what gets stored: storage names, transformed values, the
	// primary key and, for puts, GSI keys.
	Item map[string]any
	Key  table.PrimaryKey
}

// Parse runs input through the schema and derives the primary key.
// Update mode parses update operators unless another extension is given.
func (e *Entity) Parse(input map[string]any, opts ...parse.Option) (Parsed, error) {
	o := parse.NewOptions(opts...)
	if o.Mode == schema.ModeUpdate && o.Extension == nil {
		opts = append(slices.Clone(opts), parse.WithExtension(update.Extension))
	}

	run := e.parser.Start(input, opts...)
	var defaulted, parsed, item map[string]any
	for {
		step, err := run.Next(defaulted)
		if err != nil {
			return Parsed{}, err
		}
		switch step.Stage {
		case parse.StageDefaulted:
			defaulted, _ = step.Value.(map[string]any)
		case parse.StageParsed:
			parsed, _ = step.Value.(map[string]any)
		}
		if step.Done {
			item, _ = step.Value.(map[string]any)
			break
		}
	}

	keyInput := item
	if e.computeKey != nil {
		var err error
		if keyInput, err = e.computeKey(parsed); err != nil {
			return Parsed{}, e.keyError(err)
		}
	}
	key, err := e.keyParser.Parse(keyInput)
	if err != nil {
		return Parsed{}, err
	}

	out := maps.Clone(item)
	if out == nil {
		out = make(map[string]any)
	}
	maps.Copy(out, key.Item())
	if o.Mode == schema.ModePut && e.index != nil {
		gsi, err := e.index.SecondaryKeys(parsed)
		if err != nil {
			return Parsed{}, e.keyError(err)
		}
		maps.Copy(out, gsi)
	}
	return Parsed{ParsedItem: parsed, Item: out, Key: key}, nil
}

// ParseKey parses the key attributes of input into the item's primary key.
func (e *Entity) ParseKey(input map[string]any) (table.PrimaryKey, error) {
	p, err := e.Parse(input, parse.WithMode(schema.ModeKey))
	if err != nil {
		return table.PrimaryKey{}, err
	}
	return p.Key, nil
}

// Format turns a stored item into an application item.
func (e *Entity) Format(saved map[string]any, opts ...format.Option) (map[string]any, error) {
	return e.formatter.FormatItem(saved, opts...)
}

func (e *Entity) keyError(err error) error {
	if errors.Is(err, val.ErrMissingField) {
		return ddberr.New(ddberr.ParsingMissingAttribute,
			fmt.Sprintf("Entity %q can not compute its key: %v", e.name, err),
			ddberr.WithCause(err))
	}
	if _, ok := ddberr.As(err); ok {
		return err
	}
	return fmt.Errorf("entity %q: compute key: %w", e.name, err)
}
