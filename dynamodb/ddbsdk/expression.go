package ddbsdk

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
)

// exprParts collects the expressions of one request. Building with
// nothing set yields the zero Expression, whose accessors all return nil.
type exprParts struct {
	condition    expression.ConditionBuilder
	filter       expression.ConditionBuilder
	keyCondition expression.KeyConditionBuilder
	update       *expression.UpdateBuilder
	projection   *expression.ProjectionBuilder
}

func (p exprParts) build() (expression.Expression, error) {
	b := expression.NewBuilder()
	set := false
	if p.condition.IsSet() {
		b, set = b.WithCondition(p.condition), true
	}
	if p.filter.IsSet() {
		b, set = b.WithFilter(p.filter), true
	}
	if p.keyCondition.IsSet() {
		b, set = b.WithKeyCondition(p.keyCondition), true
	}
	if p.update != nil {
		b, set = b.WithUpdate(*p.update), true
	}
	if p.projection != nil {
		b, set = b.WithProjection(*p.projection), true
	}
	if !set {
		return expression.Expression{}, nil
	}
	e, err := b.Build()
	if err != nil {
		return expression.Expression{}, fmt.Errorf("build: %w", err)
	}
	return e, nil
}
