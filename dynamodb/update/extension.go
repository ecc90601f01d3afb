package update

import (
	"github.com/acksell/ddbtoolbox/dynamodb/schema"
	"github.com/acksell/ddbtoolbox/dynamodb/schema/parse"
)

var _ parse.Extension = Extension

// Extension parses update operators. Operand values are parsed against the
// attribute and stay wrapped in their operator through every stage.
func Extension(attr *schema.Frozen, input any, opts parse.Options) (parse.Stepper, bool) {
	op, ok := input.(Op)
	if !ok {
		return nil, false
	}
	operand := opts
	operand.Extension = nil
	operand.Defined = true

	switch o := op.(type) {
	case setOp:
		operand.Mode = schema.ModePut
		return wrap(parse.NewRun(attr, o.value, operand), func(v any) Op { return setOp{value: v} }), true
	case ifNotExistsOp:
		operand.Mode = schema.ModePut
		return wrap(parse.NewRun(attr, o.value, operand), func(v any) Op { return ifNotExistsOp{value: v} }), true
	case removeOp:
		if attr.Required() == schema.Always {
			return parse.Fail(parse.InvalidInput(opts.Path, o.Operator(), "value, it is always required and can not be removed")), true
		}
		return parse.Static(o, opts), true
	case addOp:
		return number(attr, o.value, o, opts), true
	case subtractOp:
		return number(attr, o.value, o, opts), true
	case appendOp:
		if attr.Kind() != schema.KindList {
			return parse.Fail(parse.InvalidInput(opts.Path, o.Operator(), "list to append to")), true
		}
		return wrap(parse.NewRun(attr, o.value, operand), func(v any) Op { return appendOp{value: toSlice(v)} }), true
	case prependOp:
		if attr.Kind() != schema.KindList {
			return parse.Fail(parse.InvalidInput(opts.Path, o.Operator(), "list to prepend to")), true
		}
		return wrap(parse.NewRun(attr, o.value, operand), func(v any) Op { return prependOp{value: toSlice(v)} }), true
	case addToSetOp:
		if attr.Kind() != schema.KindSet {
			return parse.Fail(parse.InvalidInput(opts.Path, o.Operator(), "set to add to")), true
		}
		return wrap(parse.NewRun(attr, o.value, operand), func(v any) Op { return addToSetOp{value: toSlice(v)} }), true
	case deleteFromSetOp:
		if attr.Kind() != schema.KindSet {
			return parse.Fail(parse.InvalidInput(opts.Path, o.Operator(), "set to delete from")), true
		}
		return wrap(parse.NewRun(attr, o.value, operand), func(v any) Op { return deleteFromSetOp{value: toSlice(v)} }), true
	}
	return parse.Fail(parse.InvalidInput(opts.Path, op.Operator(), "supported update operator")), true
}

func number(attr *schema.Frozen, n any, op Op, opts parse.Options) parse.Stepper {
	if attr.Kind() != schema.KindNumber {
		return parse.Fail(parse.InvalidInput(opts.Path, op.Operator(), "number attribute"))
	}
	if _, ok := schema.AsNumber(n); !ok {
		return parse.Fail(parse.InvalidInput(opts.Path, n, "number"))
	}
	return parse.Static(op, opts)
}

func wrap(inner parse.Stepper, fn func(any) Op) parse.Stepper {
	return parse.Wrap(inner, func(_ parse.Stage, v any) any {
		if v == nil {
			return nil
		}
		return fn(v)
	})
}

func toSlice(v any) []any {
	if s, ok := v.(schema.Set); ok {
		return []any(s)
	}
	out, _ := schema.Slice(v)
	return out
}
