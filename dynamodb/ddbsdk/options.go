package ddbsdk

import (
	"fmt"
	"slices"

	"github.com/acksell/ddbtoolbox/dynamodb/ddberr"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// writeOpts are the options shared by put, update and delete commands.
type writeOpts struct {
	condition        Condition
	returnValues     types.ReturnValue
	capacity         types.ReturnConsumedCapacity
	metrics          types.ReturnItemCollectionMetrics
	onConditionFalse types.ReturnValuesOnConditionCheckFailure
	tableName        *string
}

func (o writeOpts) validate(allowedReturnValues ...types.ReturnValue) error {
	if o.returnValues != "" && !slices.Contains(allowedReturnValues, o.returnValues) {
		return ddberr.New(ddberr.OptionsInvalidReturnValues,
			fmt.Sprintf("Invalid returnValues option: '%s'. 'returnValues' must be one of: %v.", o.returnValues, allowedReturnValues),
			ddberr.WithPayload(map[string]any{"received": o.returnValues}),
		)
	}
	if o.onConditionFalse != "" && !slices.Contains(o.onConditionFalse.Values(), o.onConditionFalse) {
		return ddberr.New(ddberr.OptionsInvalidReturnValues,
			fmt.Sprintf("Invalid returnValuesOnConditionFalse option: '%s'.", o.onConditionFalse),
			ddberr.WithPayload(map[string]any{"received": o.onConditionFalse}),
		)
	}
	if err := validateCapacity(o.capacity); err != nil {
		return err
	}
	return validateMetrics(o.metrics)
}

func validateCapacity(c types.ReturnConsumedCapacity) error {
	if c == "" || slices.Contains(c.Values(), c) {
		return nil
	}
	return ddberr.New(ddberr.OptionsInvalidCapacity,
		fmt.Sprintf("Invalid capacity option: '%s'. 'capacity' must be one of: %v.", c, c.Values()),
		ddberr.WithPayload(map[string]any{"received": c}),
	)
}

func validateMetrics(m types.ReturnItemCollectionMetrics) error {
	if m == "" || slices.Contains(m.Values(), m) {
		return nil
	}
	return ddberr.New(ddberr.OptionsInvalidMetrics,
		fmt.Sprintf("Invalid metrics option: '%s'. 'metrics' must be one of: %v.", m, m.Values()),
		ddberr.WithPayload(map[string]any{"received": m}),
	)
}

// tableName returns the override if given, else the table's name.
func tableName(override *string, name string) (string, error) {
	if override == nil {
		return name, nil
	}
	if *override == "" {
		return "", ddberr.New(ddberr.OptionsInvalidTableName,
			"Invalid tableName option: table names can not be empty.",
		)
	}
	return *override, nil
}

// optional returns nil for the zero value so that unset options are left
// out of the request.
func optional[T comparable](v T) *T {
	var zero T
	if v == zero {
		return nil
	}
	return &v
}
