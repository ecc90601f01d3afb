package ddbsdk

import (
	"context"
	"fmt"

	"github.com/acksell/ddbtoolbox/dynamodb/entity"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	dynamodbv2 "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DeleteItemCommand deletes one item of an entity by its key.
type DeleteItemCommand struct {
	entity *entity.Entity
	key    map[string]any
	opts   writeOpts
}

var (
	_ WriteAction = &DeleteItemCommand{}
	_ BatchAction = &DeleteItemCommand{}
)

func NewDeleteItem(e *entity.Entity, key map[string]any) *DeleteItemCommand {
	return &DeleteItemCommand{entity: e, key: key}
}

func (d *DeleteItemCommand) WithCondition(c Condition) *DeleteItemCommand {
	d.opts.condition = And(d.opts.condition, c)
	return d
}

// WithReturnValues accepts NONE and ALL_OLD.
func (d *DeleteItemCommand) WithReturnValues(rv types.ReturnValue) *DeleteItemCommand {
	d.opts.returnValues = rv
	return d
}

func (d *DeleteItemCommand) WithReturnValuesOnConditionFalse(rv types.ReturnValuesOnConditionCheckFailure) *DeleteItemCommand {
	d.opts.onConditionFalse = rv
	return d
}

func (d *DeleteItemCommand) WithCapacity(c types.ReturnConsumedCapacity) *DeleteItemCommand {
	d.opts.capacity = c
	return d
}

func (d *DeleteItemCommand) WithMetrics(m types.ReturnItemCollectionMetrics) *DeleteItemCommand {
	d.opts.metrics = m
	return d
}

func (d *DeleteItemCommand) WithTableName(name string) *DeleteItemCommand {
	d.opts.tableName = &name
	return d
}

func (d *DeleteItemCommand) TableName() string {
	name, err := tableName(d.opts.tableName, d.entity.Table().Name)
	if err != nil {
		return ""
	}
	return name
}

func (d *DeleteItemCommand) PrimaryKey() (Item, error) {
	pk, err := d.entity.ParseKey(d.key)
	if err != nil {
		return nil, err
	}
	return pk.DDB()
}

func (d *DeleteItemCommand) build() (string, Item, expression.Expression, error) {
	if err := d.opts.validate(types.ReturnValueNone, types.ReturnValueAllOld); err != nil {
		return "", nil, expression.Expression{}, err
	}
	name, err := tableName(d.opts.tableName, d.entity.Table().Name)
	if err != nil {
		return "", nil, expression.Expression{}, err
	}
	key, err := d.PrimaryKey()
	if err != nil {
		return "", nil, expression.Expression{}, err
	}
	cond, err := d.opts.condition.builder(d.entity)
	if err != nil {
		return "", nil, expression.Expression{}, err
	}
	e, err := exprParts{condition: cond}.build()
	if err != nil {
		return "", nil, expression.Expression{}, err
	}
	return name, key, e, nil
}

func (d *DeleteItemCommand) Params() (*dynamodbv2.DeleteItemInput, error) {
	name, key, e, err := d.build()
	if err != nil {
		return nil, fmt.Errorf("failed to build delete: %w", err)
	}
	return &dynamodbv2.DeleteItemInput{
		TableName:                           &name,
		Key:                                 key,
		ConditionExpression:                 e.Condition(),
		ExpressionAttributeNames:            e.Names(),
		ExpressionAttributeValues:           e.Values(),
		ReturnValues:                        d.opts.returnValues,
		ReturnConsumedCapacity:              d.opts.capacity,
		ReturnItemCollectionMetrics:         d.opts.metrics,
		ReturnValuesOnConditionCheckFailure: d.opts.onConditionFalse,
	}, nil
}

func (d *DeleteItemCommand) TransactWriteItem() (types.TransactWriteItem, error) {
	name, key, e, err := d.build()
	if err != nil {
		return types.TransactWriteItem{}, fmt.Errorf("failed to build delete: %w", err)
	}
	return types.TransactWriteItem{
		Delete: &types.Delete{
			TableName:                           &name,
			Key:                                 key,
			ConditionExpression:                 e.Condition(),
			ExpressionAttributeNames:            e.Names(),
			ExpressionAttributeValues:           e.Values(),
			ReturnValuesOnConditionCheckFailure: d.opts.onConditionFalse,
		},
	}, nil
}

func (d *DeleteItemCommand) WriteRequest() (types.WriteRequest, error) {
	if d.opts.condition.IsSet() {
		return types.WriteRequest{}, fmt.Errorf("delete with a condition can not be batched")
	}
	_, key, _, err := d.build()
	if err != nil {
		return types.WriteRequest{}, fmt.Errorf("failed to build delete: %w", err)
	}
	return types.WriteRequest{
		DeleteRequest: &types.DeleteRequest{Key: key},
	}, nil
}

func (c *Client) DeleteItem(ctx context.Context, cmd *DeleteItemCommand) (*WriteResult, error) {
	params, err := cmd.Params()
	if err != nil {
		return nil, err
	}
	var out *dynamodbv2.DeleteItemOutput
	err = c.do("DeleteItem", *params.TableName, func() (err error) {
		out, err = c.awsddb.DeleteItem(ctx, params)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to delete item: %w", err)
	}
	attrs, err := formatItem(cmd.entity, out.Attributes)
	if err != nil {
		return nil, fmt.Errorf("failed to format returned item: %w", err)
	}
	return &WriteResult{
		Attributes:            attrs,
		ConsumedCapacity:      out.ConsumedCapacity,
		ItemCollectionMetrics: out.ItemCollectionMetrics,
	}, nil
}
