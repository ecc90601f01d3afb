package schemafile

import (
	"fmt"
	"time"

	"github.com/acksell/ddbtoolbox/dynamodb/entity"
	"github.com/acksell/ddbtoolbox/dynamodb/schema"
)

// attribute converts a declaration into a draft schema attribute.
func (b *builder) attribute(a Attribute, path string) (schema.Attribute, error) {
	attr, err := b.variant(a, path)
	if err != nil {
		return schema.Attribute{}, err
	}

	if a.Required != "" {
		r := schema.Required(a.Required)
		switch r {
		case schema.AtLeastOnce, schema.Always, schema.Never:
		default:
			return schema.Attribute{}, fmt.Errorf("%s: unknown required value %q", path, a.Required)
		}
		attr = attr.Required(r)
	}
	if a.Optional {
		attr = attr.Optional()
	}
	if a.Hidden {
		attr = attr.Hidden()
	}
	if a.Key {
		attr = attr.Key()
	}
	if a.SavedAs != "" {
		attr = attr.SavedAs(a.SavedAs)
	}
	if len(a.Enum) > 0 {
		attr = attr.Enum(a.Enum...)
	}

	switch {
	case a.Default != nil && a.Generate != "":
		return schema.Attribute{}, fmt.Errorf("%s: default and generate are exclusive", path)
	case a.Default != nil:
		attr = attr.Default(a.Default)
	case a.Generate != "":
		getter, err := b.generator(a.Generate)
		if err != nil {
			return schema.Attribute{}, fmt.Errorf("%s: %w", path, err)
		}
		attr = attr.Default(getter)
	}

	switch {
	case a.Prefix != "" && a.Suffix != "":
		attr = attr.Transform(schema.Pipe(schema.Prefix(a.Prefix), schema.Suffix(a.Suffix)))
	case a.Prefix != "":
		attr = attr.Transform(schema.Prefix(a.Prefix))
	case a.Suffix != "":
		attr = attr.Transform(schema.Suffix(a.Suffix))
	}
	return attr, nil
}

func (b *builder) variant(a Attribute, path string) (schema.Attribute, error) {
	switch schema.Kind(a.Type) {
	case schema.KindAny:
		return schema.Any(), nil
	case schema.KindString:
		return schema.String(), nil
	case schema.KindNumber:
		return schema.Number(), nil
	case schema.KindBoolean:
		return schema.Boolean(), nil
	case schema.KindBinary:
		return schema.Binary(), nil
	case schema.KindConstant:
		if a.Value == nil {
			return schema.Attribute{}, fmt.Errorf("%s: constant requires a value", path)
		}
		return schema.Constant(a.Value), nil
	case schema.KindSet, schema.KindList:
		if a.Elements == nil {
			return schema.Attribute{}, fmt.Errorf("%s: %s requires elements", path, a.Type)
		}
		elements, err := b.attribute(*a.Elements, path+".elements")
		if err != nil {
			return schema.Attribute{}, err
		}
		if schema.Kind(a.Type) == schema.KindSet {
			return schema.SetOf(elements), nil
		}
		return schema.List(elements), nil
	case schema.KindMap:
		fields, err := b.fields(a.Attributes, path)
		if err != nil {
			return schema.Attribute{}, err
		}
		m := schema.Map(fields...)
		if a.Open {
			m = m.Open()
		}
		return m, nil
	case schema.KindRecord:
		if a.Keys == nil || a.Elements == nil {
			return schema.Attribute{}, fmt.Errorf("%s: record requires keys and elements", path)
		}
		keys, err := b.attribute(*a.Keys, path+".keys")
		if err != nil {
			return schema.Attribute{}, err
		}
		elements, err := b.attribute(*a.Elements, path+".elements")
		if err != nil {
			return schema.Attribute{}, err
		}
		return schema.Record(keys, elements), nil
	case schema.KindAnyOf:
		if len(a.Candidates) == 0 {
			return schema.Attribute{}, fmt.Errorf("%s: anyOf requires candidates", path)
		}
		candidates := make([]schema.Attribute, len(a.Candidates))
		for i, c := range a.Candidates {
			attr, err := b.attribute(c, fmt.Sprintf("%s.candidates[%d]", path, i))
			if err != nil {
				return schema.Attribute{}, err
			}
			candidates[i] = attr
		}
		return schema.AnyOf(candidates...), nil
	}
	return schema.Attribute{}, fmt.Errorf("%s: unknown attribute type %q", path, a.Type)
}

func (b *builder) fields(attrs []Attribute, path string) ([]schema.Field, error) {
	fields := make([]schema.Field, 0, len(attrs))
	seen := make(map[string]bool, len(attrs))
	for _, a := range attrs {
		if a.Name == "" {
			return nil, fmt.Errorf("%s: attribute name is required", path)
		}
		if seen[a.Name] {
			return nil, fmt.Errorf("%s: attribute %q is declared twice", path, a.Name)
		}
		seen[a.Name] = true
		attr, err := b.attribute(a, path+"."+a.Name)
		if err != nil {
			return nil, err
		}
		fields = append(fields, schema.Named(a.Name, attr))
	}
	return fields, nil
}

func (b *builder) generator(name string) (schema.ValueGetter, error) {
	switch name {
	case "uuid":
		return schema.UUID, nil
	case "now":
		clock := b.clock
		return func() any {
			return clock().UTC().Format(entity.TimestampLayout)
		}, nil
	}
	return nil, fmt.Errorf("unknown generator %q", name)
}

func nowFunc(clock func() time.Time) func() time.Time {
	if clock == nil {
		return time.Now
	}
	return clock
}
