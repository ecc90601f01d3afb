package schema

import "slices"

// Attribute is a draft schema node. It is a value: every builder method
// returns an updated copy and leaves the receiver untouched, so a draft can
// be shared and extended freely. Freeze validates it for use at runtime.
type Attribute struct {
	kind     Kind
	required Required
	hidden   bool
	key      bool
	savedAs  string
	renamed  bool

	defaults   byMode[any]
	links      byMode[Link]
	validators byMode[Validator]

	enum      []any
	transform Transformer

	// constant
	value any
	// set, list and record values
	elements *Attribute
	// record keys
	keys *Attribute
	// map
	fields []Field
	open   bool
	// anyOf
	candidates []Attribute
}

// Field names an attribute inside a schema or a map.
type Field struct {
	Name      string
	Attribute Attribute
}

func Named(name string, attr Attribute) Field {
	return Field{Name: name, Attribute: attr}
}

// StorageName is the name the attribute is saved under.
func (f Field) StorageName() string {
	if f.Attribute.renamed {
		return f.Attribute.savedAs
	}
	return f.Name
}

func newAttribute(kind Kind) Attribute {
	return Attribute{kind: kind, required: AtLeastOnce}
}

func String() Attribute  { return newAttribute(KindString) }
func Number() Attribute  { return newAttribute(KindNumber) }
func Boolean() Attribute { return newAttribute(KindBoolean) }
func Binary() Attribute  { return newAttribute(KindBinary) }

// Any accepts every value as is.
func Any() Attribute { return newAttribute(KindAny) }

// Constant only accepts v.
func Constant(v any) Attribute {
	a := newAttribute(KindConstant)
	a.value = Clone(v)
	return a
}

// Set holds unique string, number or binary elements.
func SetOf(elements Attribute) Attribute {
	a := newAttribute(KindSet)
	a.elements = &elements
	return a
}

func List(elements Attribute) Attribute {
	a := newAttribute(KindList)
	a.elements = &elements
	return a
}

// Map is a nested object with declared attributes.
func Map(fields ...Field) Attribute {
	a := newAttribute(KindMap)
	a.fields = slices.Clone(fields)
	return a
}

// Record is an object with dynamic keys and homogeneous values.
func Record(keys, elements Attribute) Attribute {
	a := newAttribute(KindRecord)
	a.keys = &keys
	a.elements = &elements
	return a
}

// AnyOf accepts a value matching one of the candidates, tried in order.
func AnyOf(candidates ...Attribute) Attribute {
	a := newAttribute(KindAnyOf)
	a.candidates = slices.Clone(candidates)
	return a
}

func (a Attribute) Kind() Kind {
	return a.kind
}

func (a Attribute) Required(r Required) Attribute {
	a.required = r
	return a
}

func (a Attribute) Optional() Attribute {
	return a.Required(Never)
}

// Hidden attributes are stored but left out of formatted items.
func (a Attribute) Hidden() Attribute {
	a.hidden = true
	return a
}

// Key tags a primary key attribute. Keys are always required.
func (a Attribute) Key() Attribute {
	a.key = true
	a.required = Always
	return a
}

// SavedAs renames the attribute in storage.
func (a Attribute) SavedAs(name string) Attribute {
	a.savedAs = name
	a.renamed = true
	return a
}

// KeyDefault is used when computing the primary key.
// src is a literal, a ValueGetter or ComputedDefault.
func (a Attribute) KeyDefault(src any) Attribute {
	a.defaults = a.defaults.with(ModeKey, src)
	return a
}

func (a Attribute) PutDefault(src any) Attribute {
	a.defaults = a.defaults.with(ModePut, src)
	return a
}

func (a Attribute) UpdateDefault(src any) Attribute {
	a.defaults = a.defaults.with(ModeUpdate, src)
	return a
}

// Default sets the key default on key attributes and the put default otherwise.
func (a Attribute) Default(src any) Attribute {
	if a.key {
		return a.KeyDefault(src)
	}
	return a.PutDefault(src)
}

func (a Attribute) KeyLink(fn Link) Attribute {
	a.links = a.links.with(ModeKey, fn)
	return a
}

func (a Attribute) PutLink(fn Link) Attribute {
	a.links = a.links.with(ModePut, fn)
	return a
}

func (a Attribute) UpdateLink(fn Link) Attribute {
	a.links = a.links.with(ModeUpdate, fn)
	return a
}

// Link sets the key link on key attributes and the put link otherwise.
func (a Attribute) Link(fn Link) Attribute {
	if a.key {
		return a.KeyLink(fn)
	}
	return a.PutLink(fn)
}

func (a Attribute) KeyValidate(fn Validator) Attribute {
	a.validators = a.validators.with(ModeKey, fn)
	return a
}

func (a Attribute) PutValidate(fn Validator) Attribute {
	a.validators = a.validators.with(ModePut, fn)
	return a
}

func (a Attribute) UpdateValidate(fn Validator) Attribute {
	a.validators = a.validators.with(ModeUpdate, fn)
	return a
}

// Validate sets the key validator on key attributes and the put validator otherwise.
func (a Attribute) Validate(fn Validator) Attribute {
	if a.key {
		return a.KeyValidate(fn)
	}
	return a.PutValidate(fn)
}

// Enum restricts a primitive to the given values.
func (a Attribute) Enum(values ...any) Attribute {
	a.enum = slices.Clone(values)
	return a
}

// Transform sets the storage transformer of a primitive.
func (a Attribute) Transform(t Transformer) Attribute {
	a.transform = t
	return a
}

// Open lets a map accept attributes it does not declare.
func (a Attribute) Open() Attribute {
	a.open = true
	return a
}
