package table

import (
	"github.com/acksell/ddbtoolbox/dynamodb/schema"
	"github.com/acksell/ddbtoolbox/dynamodb/schema/parse"
)

// PrimaryKeyParser checks key inputs against a key definition. Inputs are
// items keyed by storage name, extra attributes are ignored.
type PrimaryKeyParser struct {
	def    PrimaryKeyDefinition
	parser *parse.Parser
}

func NewPrimaryKeyParser(def PrimaryKeyDefinition) (*PrimaryKeyParser, error) {
	if err := def.validate(); err != nil {
		return nil, err
	}
	s := schema.New(schema.Named(def.PartitionKey.Name, def.PartitionKey.Kind.Attribute().Key()))
	if def.HasSortKey() {
		s = s.With(def.SortKey.Name, def.SortKey.Kind.Attribute().Key())
	}
	fs, err := s.Freeze()
	if err != nil {
		return nil, err
	}
	return &PrimaryKeyParser{def: def, parser: parse.New(fs)}, nil
}

// KeyParser returns a parser for the table's primary key.
func (t TableDefinition) KeyParser() (*PrimaryKeyParser, error) {
	return NewPrimaryKeyParser(t.KeyDefinitions)
}

// Parse fails with parsing.missingAttribute if a key attribute is absent
// and parsing.invalidAttributeInput if one has the wrong kind.
func (p *PrimaryKeyParser) Parse(input map[string]any) (PrimaryKey, error) {
	item, err := p.parser.ParseItem(input, parse.WithMode(schema.ModeKey))
	if err != nil {
		return PrimaryKey{}, err
	}
	key := PrimaryKey{
		Definition: p.def,
		Values:     PrimaryKeyValues{PartitionKey: item[p.def.PartitionKey.Name]},
	}
	if p.def.HasSortKey() {
		key.Values.SortKey = item[p.def.SortKey.Name]
	}
	return key, nil
}
