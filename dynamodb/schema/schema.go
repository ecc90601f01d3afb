package schema

import (
	"slices"
	"sync"
)

// Schema is an ordered set of named attributes describing an item.
// Extending a schema returns a new one, the receiver is not modified.
type Schema struct {
	fields []Field
	open   bool

	once   sync.Once
	frozen *FrozenSchema
	err    error
}

func New(fields ...Field) *Schema {
	return &Schema{fields: slices.Clone(fields)}
}

// With returns a copy of the schema with one more attribute.
func (s *Schema) With(name string, attr Attribute) *Schema {
	return s.And(Named(name, attr))
}

// And returns a copy of the schema extended with fields.
func (s *Schema) And(fields ...Field) *Schema {
	return &Schema{
		fields: append(slices.Clone(s.fields), fields...),
		open:   s.open,
	}
}

// Open returns a copy of the schema accepting undeclared attributes.
func (s *Schema) Open() *Schema {
	return &Schema{fields: slices.Clone(s.fields), open: true}
}

func (s *Schema) Fields() []Field {
	return slices.Clone(s.fields)
}

func (s *Schema) Attribute(name string) (Attribute, bool) {
	for _, f := range s.fields {
		if f.Name == name {
			return f.Attribute, true
		}
	}
	return Attribute{}, false
}

// Freeze validates the schema. The result is computed once and shared by
// every caller.
func (s *Schema) Freeze() (*FrozenSchema, error) {
	s.once.Do(func() {
		fs, err := freezeFields(s.fields, s.open, "")
		if err != nil {
			s.err = err
			return
		}
		fs.node = &Frozen{
			kind:     KindMap,
			required: Always,
			schema:   fs,
			open:     fs.open,
			root:     true,
		}
		s.frozen = fs
	})
	return s.frozen, s.err
}

// MustFreeze is Freeze for schemas declared at package level.
func (s *Schema) MustFreeze() *FrozenSchema {
	fs, err := s.Freeze()
	if err != nil {
		panic(err)
	}
	return fs
}
