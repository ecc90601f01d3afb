package ddbsdk

import (
	"context"
	"fmt"
	"time"

	"github.com/acksell/ddbtoolbox/dynamodb/entity"
	"github.com/acksell/ddbtoolbox/dynamodb/schema"
	"github.com/acksell/ddbtoolbox/dynamodb/schema/format"
	"github.com/acksell/ddbtoolbox/dynamodb/schema/parse"
	"github.com/acksell/ddbtoolbox/dynamodb/update"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	dynamodbv2 "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// UpdateItemCommand updates attributes of one item. The item holds the key
// attributes plus plain values or update operators from package update:
//
//	ddbsdk.NewUpdateItem(users, map[string]any{
//		"id":     "42",
//		"logins": update.Add(1),
//		"tags":   update.AddToSet("admin"),
//	})
type UpdateItemCommand struct {
	entity *entity.Entity
	item   map[string]any
	opts   writeOpts
	ttl    *time.Time
}

var _ WriteAction = &UpdateItemCommand{}

func NewUpdateItem(e *entity.Entity, item map[string]any) *UpdateItemCommand {
	return &UpdateItemCommand{entity: e, item: item}
}

func (u *UpdateItemCommand) WithCondition(c Condition) *UpdateItemCommand {
	u.opts.condition = And(u.opts.condition, c)
	return u
}

// WithReturnValues accepts NONE, ALL_OLD, UPDATED_OLD, ALL_NEW and UPDATED_NEW.
func (u *UpdateItemCommand) WithReturnValues(rv types.ReturnValue) *UpdateItemCommand {
	u.opts.returnValues = rv
	return u
}

func (u *UpdateItemCommand) WithReturnValuesOnConditionFalse(rv types.ReturnValuesOnConditionCheckFailure) *UpdateItemCommand {
	u.opts.onConditionFalse = rv
	return u
}

func (u *UpdateItemCommand) WithCapacity(c types.ReturnConsumedCapacity) *UpdateItemCommand {
	u.opts.capacity = c
	return u
}

func (u *UpdateItemCommand) WithMetrics(m types.ReturnItemCollectionMetrics) *UpdateItemCommand {
	u.opts.metrics = m
	return u
}

func (u *UpdateItemCommand) WithTableName(name string) *UpdateItemCommand {
	u.opts.tableName = &name
	return u
}

// WithTTL sets the table's time to live attribute.
func (u *UpdateItemCommand) WithTTL(expiry time.Time) *UpdateItemCommand {
	u.ttl = &expiry
	return u
}

func (u *UpdateItemCommand) TableName() string {
	name, err := tableName(u.opts.tableName, u.entity.Table().Name)
	if err != nil {
		return ""
	}
	return name
}

func (u *UpdateItemCommand) PrimaryKey() (Item, error) {
	parsed, err := u.entity.Parse(u.item, parse.WithMode(schema.ModeUpdate))
	if err != nil {
		return nil, err
	}
	return parsed.Key.DDB()
}

func (u *UpdateItemCommand) build() (string, Item, expression.Expression, error) {
	if err := u.opts.validate(
		types.ReturnValueNone,
		types.ReturnValueAllOld,
		types.ReturnValueUpdatedOld,
		types.ReturnValueAllNew,
		types.ReturnValueUpdatedNew,
	); err != nil {
		return "", nil, expression.Expression{}, err
	}
	name, err := tableName(u.opts.tableName, u.entity.Table().Name)
	if err != nil {
		return "", nil, expression.Expression{}, err
	}
	parsed, err := u.entity.Parse(u.item, parse.WithMode(schema.ModeUpdate))
	if err != nil {
		return "", nil, expression.Expression{}, err
	}
	key, err := parsed.Key.DDB()
	if err != nil {
		return "", nil, expression.Expression{}, err
	}
	var parts exprParts
	ub, ok := update.Expression(parsed.Item, parsed.Key.Definition.Names()...)
	if u.ttl != nil {
		ttlKey := u.entity.Table().TimeToLiveKey
		if ttlKey == "" {
			return "", nil, expression.Expression{}, missingTTLKey(name)
		}
		ub, ok = ub.Set(expression.Name(ttlKey), expression.Value(u.ttl.Unix())), true
	}
	if ok {
		parts.update = &ub
	}
	if parts.condition, err = u.opts.condition.builder(u.entity); err != nil {
		return "", nil, expression.Expression{}, err
	}
	e, err := parts.build()
	if err != nil {
		return "", nil, expression.Expression{}, err
	}
	return name, key, e, nil
}

func (u *UpdateItemCommand) Params() (*dynamodbv2.UpdateItemInput, error) {
	name, key, e, err := u.build()
	if err != nil {
		return nil, fmt.Errorf("failed to build update: %w", err)
	}
	return &dynamodbv2.UpdateItemInput{
		TableName:                           &name,
		Key:                                 key,
		UpdateExpression:                    e.Update(),
		ConditionExpression:                 e.Condition(),
		ExpressionAttributeNames:            e.Names(),
		ExpressionAttributeValues:           e.Values(),
		ReturnValues:                        u.opts.returnValues,
		ReturnConsumedCapacity:              u.opts.capacity,
		ReturnItemCollectionMetrics:         u.opts.metrics,
		ReturnValuesOnConditionCheckFailure: u.opts.onConditionFalse,
	}, nil
}

func (u *UpdateItemCommand) TransactWriteItem() (types.TransactWriteItem, error) {
	name, key, e, err := u.build()
	if err != nil {
		return types.TransactWriteItem{}, fmt.Errorf("failed to build update: %w", err)
	}
	return types.TransactWriteItem{
		Update: &types.Update{
			TableName:                           &name,
			Key:                                 key,
			UpdateExpression:                    e.Update(),
			ConditionExpression:                 e.Condition(),
			ExpressionAttributeNames:            e.Names(),
			ExpressionAttributeValues:           e.Values(),
			ReturnValuesOnConditionCheckFailure: u.opts.onConditionFalse,
		},
	}, nil
}

func (c *Client) UpdateItem(ctx context.Context, cmd *UpdateItemCommand) (*WriteResult, error) {
	params, err := cmd.Params()
	if err != nil {
		return nil, err
	}
	var out *dynamodbv2.UpdateItemOutput
	err = c.do("UpdateItem", *params.TableName, func() (err error) {
		out, err = c.awsddb.UpdateItem(ctx, params)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	partial := cmd.opts.returnValues == types.ReturnValueUpdatedOld ||
		cmd.opts.returnValues == types.ReturnValueUpdatedNew
	attrs, err := formatItem(cmd.entity, out.Attributes, format.WithPartial(partial))
	if err != nil {
		return nil, fmt.Errorf("failed to format returned item: %w", err)
	}
	return &WriteResult{
		Attributes:            attrs,
		ConsumedCapacity:      out.ConsumedCapacity,
		ItemCollectionMetrics: out.ItemCollectionMetrics,
	}, nil
}
