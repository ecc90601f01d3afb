package schema

// Kind tags the variant of an Attribute.
type Kind string

const (
	KindAny      Kind = "any"
	KindConstant Kind = "constant"
	KindString   Kind = "string"
	KindNumber   Kind = "number"
	KindBoolean  Kind = "boolean"
	KindBinary   Kind = "binary"
	KindSet      Kind = "set"
	KindList     Kind = "list"
	KindMap      Kind = "map"
	KindRecord   Kind = "record"
	KindAnyOf    Kind = "anyOf"
)

// IsPrimitive reports whether values of this kind are scalars.
func (k Kind) IsPrimitive() bool {
	switch k {
	case KindString, KindNumber, KindBoolean, KindBinary:
		return true
	}
	return false
}

func (k Kind) valid() bool {
	switch k {
	case KindAny, KindConstant, KindString, KindNumber, KindBoolean, KindBinary,
		KindSet, KindList, KindMap, KindRecord, KindAnyOf:
		return true
	}
	return false
}

// Required describes when an attribute must be present.
type Required string

const (
	// AtLeastOnce attributes are required in puts and optional in updates.
	AtLeastOnce Required = "atLeastOnce"
	// Never attributes are always optional.
	Never Required = "never"
	// Always attributes are required in puts and key computation.
	Always Required = "always"
)

// In reports whether a value must be present when parsing in mode.
// Updates never require attributes, keys are enforced when the key is derived.
func (r Required) In(mode Mode) bool {
	if mode == ModeUpdate {
		return false
	}
	return r != Never
}

func (r Required) valid() bool {
	return r == AtLeastOnce || r == Never || r == Always
}

// Mode selects which defaults, links, validators and required rules apply.
type Mode string

const (
	ModeKey    Mode = "key"
	ModePut    Mode = "put"
	ModeUpdate Mode = "update"
)

func (m Mode) Valid() bool {
	return m == ModeKey || m == ModePut || m == ModeUpdate
}

type byMode[T any] struct {
	Key    T
	Put    T
	Update T
}

func (b byMode[T]) get(m Mode) T {
	switch m {
	case ModeKey:
		return b.Key
	case ModeUpdate:
		return b.Update
	default:
		return b.Put
	}
}

func (b byMode[T]) with(m Mode, v T) byMode[T] {
	switch m {
	case ModeKey:
		b.Key = v
	case ModeUpdate:
		b.Update = v
	default:
		b.Put = v
	}
	return b
}
