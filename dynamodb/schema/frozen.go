package schema

import "slices"

// Frozen is the validated, read-only form of an Attribute. It is safe for
// concurrent use by any number of parsers and formatters.
type Frozen struct {
	name        string
	path        string
	kind        Kind
	required    Required
	hidden      bool
	key         bool
	storageName string

	defaults   byMode[any]
	links      byMode[Link]
	validators byMode[Validator]

	enum      []any
	transform Transformer
	value     any

	elements   *Frozen
	keys       *Frozen
	schema     *FrozenSchema
	candidates []*Frozen
	open       bool
	root       bool
}

// Name is the attribute name, empty for list, set and record elements.
func (f *Frozen) Name() string { return f.name }

// Path locates the attribute in its schema, e.g. "address.street".
func (f *Frozen) Path() string { return f.path }

func (f *Frozen) Kind() Kind         { return f.kind }
func (f *Frozen) Required() Required { return f.required }
func (f *Frozen) Hidden() bool       { return f.hidden }
func (f *Frozen) IsKey() bool        { return f.key }
func (f *Frozen) IsRoot() bool       { return f.root }

// StorageName is the name the attribute is saved under.
func (f *Frozen) StorageName() string { return f.storageName }

// RequiredIn reports whether a value must be present when parsing in mode.
func (f *Frozen) RequiredIn(mode Mode) bool {
	return f.required.In(mode)
}

// Default resolves the default value for mode. Key attributes use their key
// default in every mode.
func (f *Frozen) Default(mode Mode) (any, bool) {
	src := f.defaults.get(mode)
	if f.key && f.defaults.Key != nil {
		src = f.defaults.Key
	}
	return resolveDefault(src)
}

func (f *Frozen) Link(mode Mode) Link {
	if f.key && f.links.Key != nil {
		return f.links.Key
	}
	return f.links.get(mode)
}

func (f *Frozen) Validator(mode Mode) Validator {
	if f.key && f.validators.Key != nil {
		return f.validators.Key
	}
	return f.validators.get(mode)
}

func (f *Frozen) Enum() []any { return slices.Clone(f.enum) }

// InEnum reports whether v is allowed by the enum, if one is declared.
func (f *Frozen) InEnum(v any) bool {
	if f.enum == nil {
		return true
	}
	for _, e := range f.enum {
		if Equal(e, v) {
			return true
		}
	}
	return false
}

func (f *Frozen) Transformer() Transformer { return f.transform }

// Value is the value of a constant attribute.
func (f *Frozen) Value() any { return Clone(f.value) }

// Elements describes list, set and record values.
func (f *Frozen) Elements() *Frozen { return f.elements }

// Keys describes record keys.
func (f *Frozen) Keys() *Frozen { return f.keys }

// Schema describes the attributes of a map.
func (f *Frozen) Schema() *FrozenSchema { return f.schema }

func (f *Frozen) Candidates() []*Frozen { return slices.Clone(f.candidates) }

// Open reports whether a map accepts undeclared attributes.
func (f *Frozen) Open() bool { return f.open }

// FrozenSchema is the validated, read-only form of a Schema or map.
type FrozenSchema struct {
	names     []string
	attrs     map[string]*Frozen
	byStorage map[string]string
	keys      []string
	open      bool
	node      *Frozen
}

// Names returns the attribute names in declaration order.
func (s *FrozenSchema) Names() []string { return slices.Clone(s.names) }

func (s *FrozenSchema) Len() int { return len(s.names) }

func (s *FrozenSchema) Attribute(name string) (*Frozen, bool) {
	a, ok := s.attrs[name]
	return a, ok
}

// NameOf returns the attribute name saved under storageName.
func (s *FrozenSchema) NameOf(storageName string) (string, bool) {
	n, ok := s.byStorage[storageName]
	return n, ok
}

// KeyNames returns the names of the attributes tagged as key.
func (s *FrozenSchema) KeyNames() []string { return slices.Clone(s.keys) }

func (s *FrozenSchema) Open() bool { return s.open }

// Root returns the schema as a map attribute, the entry point of parsers
// and formatters.
func (s *FrozenSchema) Root() *Frozen { return s.node }
