package update

import (
	"maps"
	"slices"

	"github.com/acksell/ddbtoolbox/dynamodb/schema"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
)

// Expression builds the update for a parsed and transformed item, keyed by
// storage names. Top level attributes listed in skip are left out, usually
// the primary key. ok is false when there is nothing to update.
func Expression(item map[string]any, skip ...string) (b expression.UpdateBuilder, ok bool) {
	for _, name := range slices.Sorted(maps.Keys(item)) {
		if slices.Contains(skip, name) {
			continue
		}
		var applied bool
		b, applied = apply(b, name, item[name])
		ok = ok || applied
	}
	return b, ok
}

func apply(b expression.UpdateBuilder, path string, v any) (expression.UpdateBuilder, bool) {
	name := expression.Name(path)
	switch o := v.(type) {
	case nil:
		return b, false
	case setOp:
		return b.Set(name, expression.Value(o.value)), true
	case removeOp:
		return b.Remove(name), true
	case addOp:
		return b.Add(name, expression.Value(o.value)), true
	case subtractOp:
		return b.Set(name, name.Minus(expression.Value(o.value))), true
	case appendOp:
		return b.Set(name, expression.ListAppend(emptyIfNotExists(name), expression.Value(o.value))), true
	case prependOp:
		return b.Set(name, expression.ListAppend(expression.Value(o.value), emptyIfNotExists(name))), true
	case addToSetOp:
		return b.Add(name, expression.Value(schema.Set(o.value))), true
	case deleteFromSetOp:
		return b.Delete(name, expression.Value(schema.Set(o.value))), true
	case ifNotExistsOp:
		return b.Set(name, expression.IfNotExists(name, expression.Value(o.value))), true
	case map[string]any:
		var ok bool
		for _, k := range slices.Sorted(maps.Keys(o)) {
			var applied bool
			b, applied = apply(b, path+"."+k, o[k])
			ok = ok || applied
		}
		return b, ok
	}
	return b.Set(name, expression.Value(v)), true
}

func emptyIfNotExists(name expression.NameBuilder) expression.SetValueBuilder {
	return expression.IfNotExists(name, expression.Value([]any{}))
}
