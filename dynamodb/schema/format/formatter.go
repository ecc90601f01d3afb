// Package format rebuilds application items from stored records.
//
// It reverses what parsing does before a write: storage names become
// attribute names again, transformed values are decoded, and hidden
// attributes are left out.
package format

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/acksell/ddbtoolbox/dynamodb/ddberr"
	"github.com/acksell/ddbtoolbox/dynamodb/schema"
)

type Formatter struct {
	attr *schema.Frozen
}

// New formats whole items saved against s.
func New(s *schema.FrozenSchema) *Formatter {
	return &Formatter{attr: s.Root()}
}

// ForAttribute formats single values saved against attr.
func ForAttribute(attr *schema.Frozen) *Formatter {
	return &Formatter{attr: attr}
}

// Format returns the application value of saved. A missing value is an
// error unless the attribute is optional or the options are partial.
func (f *Formatter) Format(saved any, opts ...Option) (any, error) {
	o := NewOptions(opts...)
	if saved == nil && !f.attr.IsRoot() && f.attr.Required() != schema.Never && !o.Partial {
		return nil, missingAttribute(f.attr.Path())
	}
	return format(f.attr, saved, o, newProjection(o.Attributes), "")
}

// FormatItem is Format for items.
func (f *Formatter) FormatItem(saved map[string]any, opts ...Option) (map[string]any, error) {
	v, err := f.Format(saved, opts...)
	if err != nil {
		return nil, err
	}
	item, _ := v.(map[string]any)
	return item, nil
}

func describe(path string) string {
	if path == "" {
		return "Saved value"
	}
	return fmt.Sprintf("Saved value for attribute '%s'", path)
}

func invalidAttribute(path string, received any, expected string) error {
	return ddberr.New(ddberr.FormattingInvalidAttribute,
		fmt.Sprintf("%s should be a %s.", describe(path), expected),
		ddberr.WithPath(path),
		ddberr.WithPayload(map[string]any{"received": received, "expected": expected}),
	)
}

func childPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

func format(attr *schema.Frozen, raw any, o Options, proj projection, path string) (any, error) {
	if raw == nil {
		return nil, nil
	}
	switch attr.Kind() {
	case schema.KindString, schema.KindNumber, schema.KindBoolean, schema.KindBinary:
		return formatPrimitive(attr, raw, o, path)
	case schema.KindConstant:
		if !schema.Equal(attr.Value(), raw) {
			return nil, invalidAttribute(path, raw, fmt.Sprintf("constant %v", attr.Value()))
		}
		return raw, nil
	case schema.KindList, schema.KindSet:
		return formatList(attr, raw, o, path)
	case schema.KindMap:
		return formatMap(attr, raw, o, proj, path)
	case schema.KindRecord:
		return formatRecord(attr, raw, o, path)
	case schema.KindAnyOf:
		for _, c := range attr.Candidates() {
			v, err := format(c, raw, o, proj, path)
			if err == nil {
				return v, nil
			}
			if !ddberr.Match(err, "formatting.") {
				return nil, err
			}
		}
		return nil, invalidAttribute(path, raw, "value matching one of the possible sub-types")
	default:
		return raw, nil
	}
}

func formatPrimitive(attr *schema.Frozen, raw any, o Options, path string) (any, error) {
	v := raw
	if t := attr.Transformer(); t != nil && o.Transform {
		decoded, err := t.Decode(raw)
		if err != nil {
			return nil, ddberr.New(ddberr.FormattingInvalidAttribute,
				fmt.Sprintf("%s could not be decoded: %v.", describe(path), err),
				ddberr.WithPath(path),
				ddberr.WithPayload(map[string]any{"received": raw}),
				ddberr.WithCause(err),
			)
		}
		v = decoded
	}
	if !schema.MatchesKind(attr.Kind(), v) {
		return nil, invalidAttribute(path, raw, string(attr.Kind()))
	}
	if !attr.InEnum(v) {
		return nil, ddberr.New(ddberr.FormattingInvalidAttribute,
			fmt.Sprintf("%s should be one of: %v.", describe(path), attr.Enum()),
			ddberr.WithPath(path),
			ddberr.WithPayload(map[string]any{"received": v, "expected": attr.Enum()}),
		)
	}
	return v, nil
}

func formatList(attr *schema.Frozen, raw any, o Options, path string) (any, error) {
	elems, ok := schema.Slice(raw)
	if !ok {
		return nil, invalidAttribute(path, raw, string(attr.Kind()))
	}
	out := make([]any, len(elems))
	for i, e := range elems {
		epath := path + "[" + strconv.Itoa(i) + "]"
		if e == nil {
			return nil, missingAttribute(epath)
		}
		v, err := format(attr.Elements(), e, o, nil, epath)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	if attr.Kind() == schema.KindSet {
		return schema.Set(out), nil
	}
	return out, nil
}

func missingAttribute(path string) error {
	return ddberr.New(ddberr.FormattingMissingAttribute,
		fmt.Sprintf("Missing required attribute for formatting: '%s'.", path),
		ddberr.WithPath(path),
	)
}

func formatMap(attr *schema.Frozen, raw any, o Options, proj projection, path string) (any, error) {
	obj, ok := schema.Object(raw)
	if !ok {
		if attr.IsRoot() {
			return nil, ddberr.New(ddberr.FormattingInvalidItem,
				"Saved items should be objects.",
				ddberr.WithPayload(map[string]any{"received": raw}),
			)
		}
		return nil, invalidAttribute(path, raw, string(attr.Kind()))
	}
	fs := attr.Schema()
	out := make(map[string]any, fs.Len())
	for _, name := range fs.Names() {
		a, _ := fs.Attribute(name)
		if a.Hidden() {
			continue
		}
		keep, sub := proj.selects(name)
		if !keep {
			continue
		}
		apath := childPath(path, name)
		stored, present := obj[a.StorageName()]
		if !present || stored == nil {
			if a.Required() != schema.Never && !o.Partial {
				return nil, missingAttribute(apath)
			}
			continue
		}
		v, err := format(a, stored, o, sub, apath)
		if err != nil {
			return nil, err
		}
		if v != nil {
			out[name] = v
		}
	}
	if fs.Open() {
		extras := make([]string, 0)
		for k := range obj {
			if _, declared := fs.NameOf(k); !declared {
				extras = append(extras, k)
			}
		}
		slices.Sort(extras)
		for _, k := range extras {
			if keep, _ := proj.selects(k); keep {
				out[k] = obj[k]
			}
		}
	}
	return out, nil
}

func formatRecord(attr *schema.Frozen, raw any, o Options, path string) (any, error) {
	obj, ok := schema.Object(raw)
	if !ok {
		return nil, invalidAttribute(path, raw, string(attr.Kind()))
	}
	out := make(map[string]any, len(obj))
	for k, stored := range obj {
		if stored == nil {
			continue
		}
		kpath := childPath(path, k)
		key, err := format(attr.Keys(), k, o, nil, kpath)
		if err != nil {
			return nil, err
		}
		v, err := format(attr.Elements(), stored, o, nil, kpath)
		if err != nil {
			return nil, err
		}
		out[key.(string)] = v
	}
	return out, nil
}
