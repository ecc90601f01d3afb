package val

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/acksell/ddbtoolbox/dynamodb/schema"
	"golang.org/x/exp/constraints"
)

// ErrMissingField is returned when a referenced attribute is absent.
var ErrMissingField = errors.New("field not found")

// ValDef defines how to derive a key value from an item.
// Exactly one of Format, FromField, or Const is set.
type ValDef struct {
	// Format renders a template, the value is always a string.
	Format *FmtSpec
	// FromField copies an attribute, dot notation for nesting.
	FromField string
	// Const is a fixed value.
	Const *ConstValue
}

// Ptr returns a pointer to a copy, handy for optional sort keys.
func (v ValDef) Ptr() *ValDef {
	return &v
}

func (v ValDef) HasValueSource() bool {
	return v.Format != nil || v.FromField != "" || v.Const != nil
}

func (v ValDef) IsZero() bool {
	return !v.HasValueSource()
}

// Resolve derives the value from item. Missing attributes yield an error
// wrapping ErrMissingField.
func (v ValDef) Resolve(item map[string]any) (any, error) {
	switch {
	case v.Const != nil:
		return v.Const.Value, nil
	case v.Format != nil:
		return v.Format.Render(item)
	case v.FromField != "":
		return lookup(item, strings.Split(v.FromField, "."))
	}
	return nil, fmt.Errorf("value definition has no value source")
}

func (v ValDef) String() string {
	switch {
	case v.Const != nil:
		return fmt.Sprintf("%v", v.Const.Value)
	case v.Format != nil:
		return v.Format.String()
	}
	return "{" + v.FromField + "}"
}

type ConstValue struct {
	Kind  SpecKind
	Value any
}

func String(v string) ValDef {
	return ValDef{Const: &ConstValue{Kind: SpecKindS, Value: v}}
}

type Numeric interface {
	constraints.Integer | constraints.Float
}

func Number[T Numeric](v T) ValDef {
	return ValDef{Const: &ConstValue{Kind: SpecKindN, Value: v}}
}

// Bytes creates a binary constant from a base64 string.
func Bytes(b64 string) ValDef {
	decoded, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		panic("val.Bytes: invalid base64 string: " + err.Error())
	}
	return ValDef{Const: &ConstValue{Kind: SpecKindB, Value: decoded}}
}

func lookup(item map[string]any, path []string) (any, error) {
	var current any = item
	for i, key := range path {
		obj, ok := schema.Object(current)
		if !ok {
			return nil, fmt.Errorf("field %q is not a map, cannot traverse %q", strings.Join(path[:i], "."), strings.Join(path, "."))
		}
		current, ok = obj[key]
		if !ok || current == nil {
			return nil, fmt.Errorf("%w: %q", ErrMissingField, strings.Join(path, "."))
		}
	}
	return current, nil
}

func stringify(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case []byte:
		return base64.StdEncoding.EncodeToString(t), nil
	}
	if f, ok := schema.AsNumber(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	}
	return "", fmt.Errorf("type %T can not be used in a key", v)
}
