package ddbsdk

import (
	"fmt"

	"github.com/acksell/ddbtoolbox/dynamodb/ddberr"
	"github.com/acksell/ddbtoolbox/dynamodb/entity"
	"github.com/acksell/ddbtoolbox/dynamodb/schema"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
)

// Condition is a condition or filter expression on entity attributes.
// Attribute paths use attribute names and are translated to storage names,
// and compared values go through the attribute's transformer, when the
// condition is built for an entity.
//
//	ddbsdk.And(
//		ddbsdk.Attr("age").Gte(40),
//		ddbsdk.Attr("address.city").BeginsWith("Sto"),
//	)
type Condition struct {
	build func(e *entity.Entity) (expression.ConditionBuilder, error)
}

// IsSet reports whether c holds a condition.
func (c Condition) IsSet() bool {
	return c.build != nil
}

func (c Condition) builder(e *entity.Entity) (expression.ConditionBuilder, error) {
	if c.build == nil {
		return expression.ConditionBuilder{}, nil
	}
	return c.build(e)
}

// And joins conditions, skipping unset ones.
func And(conds ...Condition) Condition {
	return join(conds, expression.And)
}

// Or joins conditions, skipping unset ones.
func Or(conds ...Condition) Condition {
	return join(conds, expression.Or)
}

func join(conds []Condition, op func(l, r expression.ConditionBuilder, other ...expression.ConditionBuilder) expression.ConditionBuilder) Condition {
	set := make([]Condition, 0, len(conds))
	for _, c := range conds {
		if c.IsSet() {
			set = append(set, c)
		}
	}
	switch len(set) {
	case 0:
		return Condition{}
	case 1:
		return set[0]
	}
	return Condition{build: func(e *entity.Entity) (expression.ConditionBuilder, error) {
		builders := make([]expression.ConditionBuilder, len(set))
		for i, c := range set {
			b, err := c.build(e)
			if err != nil {
				return expression.ConditionBuilder{}, err
			}
			builders[i] = b
		}
		return op(builders[0], builders[1], builders[2:]...), nil
	}}
}

func Not(c Condition) Condition {
	if !c.IsSet() {
		return c
	}
	return Condition{build: func(e *entity.Entity) (expression.ConditionBuilder, error) {
		b, err := c.build(e)
		if err != nil {
			return expression.ConditionBuilder{}, err
		}
		return expression.Not(b), nil
	}}
}

// AttrRef points at an attribute in a condition.
type AttrRef struct {
	path        string
	noTransform bool
}

func Attr(path string) AttrRef {
	return AttrRef{path: path}
}

// NoTransform compares values as given instead of encoding them with the
// attribute's transformer.
func (a AttrRef) NoTransform() AttrRef {
	a.noTransform = true
	return a
}

func (a AttrRef) Eq(v any) Condition {
	return a.compare(v, expression.Equal)
}

func (a AttrRef) Ne(v any) Condition {
	return a.compare(v, expression.NotEqual)
}

func (a AttrRef) Lt(v any) Condition {
	return a.compare(v, expression.LessThan)
}

func (a AttrRef) Lte(v any) Condition {
	return a.compare(v, expression.LessThanEqual)
}

func (a AttrRef) Gt(v any) Condition {
	return a.compare(v, expression.GreaterThan)
}

func (a AttrRef) Gte(v any) Condition {
	return a.compare(v, expression.GreaterThanEqual)
}

func (a AttrRef) compare(v any, op func(l, r expression.OperandBuilder) expression.ConditionBuilder) Condition {
	return a.condition(func(name expression.NameBuilder, attr *schema.Frozen) (expression.ConditionBuilder, error) {
		ev, err := a.encode(attr, v)
		if err != nil {
			return expression.ConditionBuilder{}, err
		}
		return op(name, expression.Value(ev)), nil
	})
}

func (a AttrRef) Between(lower, upper any) Condition {
	return a.condition(func(name expression.NameBuilder, attr *schema.Frozen) (expression.ConditionBuilder, error) {
		lo, err := a.encode(attr, lower)
		if err != nil {
			return expression.ConditionBuilder{}, err
		}
		hi, err := a.encode(attr, upper)
		if err != nil {
			return expression.ConditionBuilder{}, err
		}
		return name.Between(expression.Value(lo), expression.Value(hi)), nil
	})
}

func (a AttrRef) BeginsWith(prefix string) Condition {
	return a.condition(func(name expression.NameBuilder, attr *schema.Frozen) (expression.ConditionBuilder, error) {
		ev, err := a.encode(attr, prefix)
		if err != nil {
			return expression.ConditionBuilder{}, err
		}
		s, ok := ev.(string)
		if !ok {
			return expression.ConditionBuilder{}, invalidCondition(a.path, "beginsWith requires a string value")
		}
		return name.BeginsWith(s), nil
	})
}

func (a AttrRef) In(values ...any) Condition {
	return a.condition(func(name expression.NameBuilder, attr *schema.Frozen) (expression.ConditionBuilder, error) {
		if len(values) == 0 {
			return expression.ConditionBuilder{}, invalidCondition(a.path, "in requires at least one value")
		}
		operands := make([]expression.OperandBuilder, len(values))
		for i, v := range values {
			ev, err := a.encode(attr, v)
			if err != nil {
				return expression.ConditionBuilder{}, err
			}
			operands[i] = expression.Value(ev)
		}
		return name.In(operands[0], operands[1:]...), nil
	})
}

// Contains matches a substring of a string attribute or an element of a
// string set or list attribute.
func (a AttrRef) Contains(substr string) Condition {
	return a.condition(func(name expression.NameBuilder, attr *schema.Frozen) (expression.ConditionBuilder, error) {
		var ev any = substr
		if attr != nil && (attr.Kind() == schema.KindList || attr.Kind() == schema.KindSet) {
			var err error
			if ev, err = a.encode(attr.Elements(), substr); err != nil {
				return expression.ConditionBuilder{}, err
			}
		}
		s, ok := ev.(string)
		if !ok {
			return expression.ConditionBuilder{}, invalidCondition(a.path, "contains requires a string value")
		}
		return name.Contains(s), nil
	})
}

func (a AttrRef) Exists() Condition {
	return a.condition(func(name expression.NameBuilder, _ *schema.Frozen) (expression.ConditionBuilder, error) {
		return name.AttributeExists(), nil
	})
}

func (a AttrRef) NotExists() Condition {
	return a.condition(func(name expression.NameBuilder, _ *schema.Frozen) (expression.ConditionBuilder, error) {
		return name.AttributeNotExists(), nil
	})
}

func (a AttrRef) condition(fn func(name expression.NameBuilder, attr *schema.Frozen) (expression.ConditionBuilder, error)) Condition {
	return Condition{build: func(e *entity.Entity) (expression.ConditionBuilder, error) {
		if a.path == "" {
			return expression.ConditionBuilder{}, invalidCondition(a.path, "empty attribute path")
		}
		if e == nil {
			return fn(expression.Name(a.path), nil)
		}
		attr, stored, err := e.Attribute(a.path)
		if err != nil {
			return expression.ConditionBuilder{}, invalidCondition(a.path, err.Error())
		}
		return fn(expression.Name(stored), attr)
	}}
}

func (a AttrRef) encode(attr *schema.Frozen, v any) (any, error) {
	if attr == nil || a.noTransform || attr.Transformer() == nil {
		return v, nil
	}
	ev, err := attr.Transformer().Encode(v)
	if err != nil {
		return nil, ddberr.New(ddberr.OptionsInvalidCondition,
			fmt.Sprintf("Condition value for '%s' could not be transformed: %v.", a.path, err),
			ddberr.WithPath(a.path),
			ddberr.WithPayload(map[string]any{"received": v}),
			ddberr.WithCause(err),
		)
	}
	return ev, nil
}

func invalidCondition(path, reason string) error {
	return ddberr.New(ddberr.OptionsInvalidCondition,
		fmt.Sprintf("Invalid condition on '%s': %s.", path, reason),
		ddberr.WithPath(path),
	)
}
