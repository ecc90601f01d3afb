// Package update holds the operators attributes accept when items are parsed
// in update mode, and turns parsed items into DynamoDB update expressions.
//
//	item := map[string]any{
//	    "id":    "42",
//	    "count": update.Add(1),
//	    "tags":  update.AddToSet("new"),
//	    "bio":   update.Remove(),
//	}
//
// Plain values set the attribute. Plain maps are updated attribute by
// attribute; wrap them in Set to replace them whole.
package update

// Op is an update operator. Create one with the functions of this package.
type Op interface {
	// Operator names the operator, e.g. "SET" or "ADD".
	Operator() string
}

type setOp struct{ value any }

type removeOp struct{}

type addOp struct{ value any }

type subtractOp struct{ value any }

type appendOp struct{ value []any }

type prependOp struct{ value []any }

type addToSetOp struct{ value []any }

type deleteFromSetOp struct{ value []any }

type ifNotExistsOp struct{ value any }

func (setOp) Operator() string           { return "SET" }
func (removeOp) Operator() string        { return "REMOVE" }
func (addOp) Operator() string           { return "ADD" }
func (subtractOp) Operator() string      { return "SUBTRACT" }
func (appendOp) Operator() string        { return "APPEND" }
func (prependOp) Operator() string       { return "PREPEND" }
func (addToSetOp) Operator() string      { return "ADD_TO_SET" }
func (deleteFromSetOp) Operator() string { return "DELETE_FROM_SET" }
func (ifNotExistsOp) Operator() string   { return "IF_NOT_EXISTS" }

// Set replaces the attribute. The value is parsed as in a put.
func Set(v any) Op {
	return setOp{value: v}
}

// Remove deletes the attribute. Always required attributes can not be removed.
func Remove() Op {
	return removeOp{}
}

// Add increments a number attribute.
func Add(n any) Op {
	return addOp{value: n}
}

// Subtract decrements a number attribute.
func Subtract(n any) Op {
	return subtractOp{value: n}
}

// Append adds elements at the end of a list attribute, creating it if needed.
func Append(elements ...any) Op {
	return appendOp{value: elements}
}

// Prepend adds elements at the start of a list attribute, creating it if needed.
func Prepend(elements ...any) Op {
	return prependOp{value: elements}
}

// AddToSet adds elements to a set attribute.
func AddToSet(elements ...any) Op {
	return addToSetOp{value: elements}
}

// DeleteFromSet removes elements from a set attribute.
func DeleteFromSet(elements ...any) Op {
	return deleteFromSetOp{value: elements}
}

// IfNotExists sets the attribute unless it already has a value.
func IfNotExists(v any) Op {
	return ifNotExistsOp{value: v}
}
