package schema

import (
	"fmt"

	"github.com/acksell/ddbtoolbox/dynamodb/ddberr"
)

var modes = []Mode{ModeKey, ModePut, ModeUpdate}

func schemaError(code, path, format string, args ...any) error {
	return ddberr.New(code, fmt.Sprintf(format, args...), ddberr.WithPath(path))
}

// Freeze validates the attribute tree and returns its runtime form.
// path names the attribute in errors.
func (a Attribute) Freeze(path string) (*Frozen, error) {
	return a.freeze(path, path)
}

func (a Attribute) freeze(name, path string) (*Frozen, error) {
	if !a.kind.valid() {
		return nil, schemaError(ddberr.SchemaInvalidKind, path, "attribute %q has no valid kind", path)
	}
	if !a.required.valid() {
		return nil, schemaError(ddberr.SchemaInvalidRequired, path, "attribute %q has invalid required option %q", path, a.required)
	}
	if a.key {
		if a.hidden {
			return nil, schemaError(ddberr.SchemaInvalidKeyConfiguration, path, "key attribute %q can not be hidden", path)
		}
		if a.required != Always {
			return nil, schemaError(ddberr.SchemaInvalidKeyConfiguration, path, "key attribute %q must be required always, got %q", path, a.required)
		}
	} else if a.defaults.Key != nil || a.links.Key != nil || a.validators.Key != nil {
		return nil, schemaError(ddberr.SchemaInvalidKeyConfiguration, path, "attribute %q has key defaults, links or validators but is not a key", path)
	}
	if a.renamed && a.savedAs == "" {
		return nil, schemaError(ddberr.SchemaInvalidSavedAs, path, "attribute %q can not be saved under an empty name", path)
	}
	if a.transform != nil && !a.kind.IsPrimitive() {
		return nil, schemaError(ddberr.SchemaInvalidTransformer, path, "transformers are only supported on primitives, %q is a %s", path, a.kind)
	}
	if a.enum != nil {
		if !a.kind.IsPrimitive() {
			return nil, schemaError(ddberr.SchemaInvalidEnum, path, "enums are only supported on primitives, %q is a %s", path, a.kind)
		}
		for _, v := range a.enum {
			if !MatchesKind(a.kind, v) {
				return nil, schemaError(ddberr.SchemaInvalidEnum, path, "enum value %v of %q is not a %s", v, path, a.kind)
			}
		}
	}
	for _, m := range modes {
		src := a.defaults.get(m)
		if isComputed(src) && a.links.get(m) == nil {
			return nil, schemaError(ddberr.SchemaInvalidDefault, path, "attribute %q has a computed %s default but no %s link", path, m, m)
		}
		if isLiteral(src) {
			if reason := a.checkLiteral(src); reason != "" {
				return nil, schemaError(ddberr.SchemaInvalidDefault, path, "invalid %s default for %q: %s", m, path, reason)
			}
		}
	}

	f := &Frozen{
		name:        name,
		path:        path,
		kind:        a.kind,
		required:    a.required,
		hidden:      a.hidden,
		key:         a.key,
		storageName: name,
		defaults:    a.defaults,
		links:       a.links,
		validators:  a.validators,
		enum:        a.enum,
		transform:   a.transform,
		value:       a.value,
		open:        a.open,
	}
	if a.renamed {
		f.storageName = a.savedAs
	}

	var err error
	switch a.kind {
	case KindSet, KindList:
		if f.elements, err = freezeElements(a.elements, path+".elements"); err != nil {
			return nil, err
		}
		if a.kind == KindSet {
			switch f.elements.kind {
			case KindString, KindNumber, KindBinary:
			default:
				return nil, schemaError(ddberr.SchemaInvalidElements, path, "set %q elements must be strings, numbers or binaries, got %s", path, f.elements.kind)
			}
		}
	case KindRecord:
		if a.keys == nil {
			return nil, schemaError(ddberr.SchemaInvalidRecordKeys, path, "record %q has no keys attribute", path)
		}
		if a.keys.kind != KindString {
			return nil, schemaError(ddberr.SchemaInvalidRecordKeys, path, "record %q keys must be strings, got %s", path, a.keys.kind)
		}
		if reason := a.keys.elementRestriction(); reason != "" {
			return nil, schemaError(ddberr.SchemaInvalidRecordKeys, path, "record %q keys %s", path, reason)
		}
		if f.keys, err = a.keys.freeze("", path+".keys"); err != nil {
			return nil, err
		}
		if f.elements, err = freezeElements(a.elements, path+".elements"); err != nil {
			return nil, err
		}
	case KindMap:
		if f.schema, err = freezeFields(a.fields, a.open, path); err != nil {
			return nil, err
		}
		f.schema.node = f
	case KindAnyOf:
		if len(a.candidates) == 0 {
			return nil, schemaError(ddberr.SchemaMissingElements, path, "anyOf %q has no candidates", path)
		}
		for i, c := range a.candidates {
			cpath := fmt.Sprintf("%s.candidates[%d]", path, i)
			if reason := c.elementRestriction(); reason != "" {
				return nil, schemaError(ddberr.SchemaInvalidElements, cpath, "anyOf candidate %q %s", cpath, reason)
			}
			cf, err := c.freeze("", cpath)
			if err != nil {
				return nil, err
			}
			f.candidates = append(f.candidates, cf)
		}
	}
	return f, nil
}

func freezeElements(e *Attribute, path string) (*Frozen, error) {
	if e == nil {
		return nil, schemaError(ddberr.SchemaMissingElements, path, "attribute %q is missing", path)
	}
	if reason := e.elementRestriction(); reason != "" {
		return nil, schemaError(ddberr.SchemaInvalidElements, path, "elements %q %s", path, reason)
	}
	return e.freeze("", path)
}

// elementRestriction returns why the attribute can not describe list, set
// or record elements or anyOf candidates, or "" if it can.
func (a Attribute) elementRestriction() string {
	switch {
	case a.required != AtLeastOnce:
		return fmt.Sprintf("must keep the default required option, got %q", a.required)
	case a.hidden:
		return "can not be hidden"
	case a.key:
		return "can not be a key"
	case a.renamed:
		return "can not be renamed"
	case a.defaults.Key != nil || a.defaults.Put != nil || a.defaults.Update != nil:
		return "can not have defaults"
	case a.links.Key != nil || a.links.Put != nil || a.links.Update != nil:
		return "can not have links"
	}
	return ""
}

// checkLiteral returns why v is not a valid value for the attribute, or "".
func (a Attribute) checkLiteral(v any) string {
	switch a.kind {
	case KindString, KindNumber, KindBoolean, KindBinary:
		if !MatchesKind(a.kind, v) {
			return fmt.Sprintf("expected a %s, got %s", a.kind, TypeOf(v))
		}
		if a.enum != nil {
			for _, e := range a.enum {
				if Equal(e, v) {
					return ""
				}
			}
			return fmt.Sprintf("%v is not one of %v", v, a.enum)
		}
	case KindConstant:
		if !Equal(a.value, v) {
			return fmt.Sprintf("expected %v, got %v", a.value, v)
		}
	case KindSet, KindList:
		if _, ok := Slice(v); !ok {
			return fmt.Sprintf("expected a %s, got %s", a.kind, TypeOf(v))
		}
	case KindMap, KindRecord:
		if _, ok := Object(v); !ok {
			return fmt.Sprintf("expected a %s, got %s", a.kind, TypeOf(v))
		}
	}
	return ""
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

func freezeFields(fields []Field, open bool, parent string) (*FrozenSchema, error) {
	s := &FrozenSchema{
		attrs:     make(map[string]*Frozen, len(fields)),
		byStorage: make(map[string]string, len(fields)),
		open:      open,
	}
	for _, field := range fields {
		path := joinPath(parent, field.Name)
		if field.Name == "" {
			return nil, schemaError(ddberr.SchemaInvalidAttributeName, path, "attribute names can not be empty")
		}
		if _, dup := s.attrs[field.Name]; dup {
			return nil, schemaError(ddberr.SchemaDuplicateAttributeName, path, "attribute %q is declared twice", path)
		}
		f, err := field.Attribute.freeze(field.Name, path)
		if err != nil {
			return nil, err
		}
		if other, dup := s.byStorage[f.storageName]; dup {
			return nil, schemaError(ddberr.SchemaDuplicateSavedAs, path, "attributes %q and %q are both saved as %q", joinPath(parent, other), path, f.storageName)
		}
		s.names = append(s.names, field.Name)
		s.attrs[field.Name] = f
		s.byStorage[f.storageName] = field.Name
		if f.key {
			s.keys = append(s.keys, field.Name)
		}
	}
	return s, nil
}
