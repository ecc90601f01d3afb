package ddbsdk

import (
	"context"
	"fmt"
	"time"

	"github.com/acksell/ddbtoolbox/dynamodb/entity"
	"github.com/acksell/ddbtoolbox/dynamodb/schema"
	"github.com/acksell/ddbtoolbox/dynamodb/schema/parse"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	dynamodbv2 "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// PutItemCommand writes a whole item of an entity.
type PutItemCommand struct {
	entity *entity.Entity
	item   map[string]any
	opts   writeOpts
	ttl    *time.Time
}

var (
	_ WriteAction = &PutItemCommand{}
	_ BatchAction = &PutItemCommand{}
)

func NewPutItem(e *entity.Entity, item map[string]any) *PutItemCommand {
	return &PutItemCommand{entity: e, item: item}
}

// WithCondition adds a condition expression, ANDed with previous ones.
// Conditional puts can not be part of a batch.
func (p *PutItemCommand) WithCondition(c Condition) *PutItemCommand {
	p.opts.condition = And(p.opts.condition, c)
	return p
}

// WithReturnValues accepts NONE and ALL_OLD.
func (p *PutItemCommand) WithReturnValues(rv types.ReturnValue) *PutItemCommand {
	p.opts.returnValues = rv
	return p
}

func (p *PutItemCommand) WithReturnValuesOnConditionFalse(rv types.ReturnValuesOnConditionCheckFailure) *PutItemCommand {
	p.opts.onConditionFalse = rv
	return p
}

func (p *PutItemCommand) WithCapacity(c types.ReturnConsumedCapacity) *PutItemCommand {
	p.opts.capacity = c
	return p
}

func (p *PutItemCommand) WithMetrics(m types.ReturnItemCollectionMetrics) *PutItemCommand {
	p.opts.metrics = m
	return p
}

// WithTableName sends the command to another table with the same layout.
func (p *PutItemCommand) WithTableName(name string) *PutItemCommand {
	p.opts.tableName = &name
	return p
}

// WithTTL sets the table's time to live attribute.
func (p *PutItemCommand) WithTTL(expiry time.Time) *PutItemCommand {
	p.ttl = &expiry
	return p
}

func (p *PutItemCommand) TableName() string {
	name, err := tableName(p.opts.tableName, p.entity.Table().Name)
	if err != nil {
		return ""
	}
	return name
}

func (p *PutItemCommand) PrimaryKey() (Item, error) {
	parsed, err := p.entity.Parse(p.item, parse.WithMode(schema.ModePut))
	if err != nil {
		return nil, err
	}
	return parsed.Key.DDB()
}

func (p *PutItemCommand) build() (string, Item, expression.Expression, error) {
	if err := p.opts.validate(types.ReturnValueNone, types.ReturnValueAllOld); err != nil {
		return "", nil, expression.Expression{}, err
	}
	name, err := tableName(p.opts.tableName, p.entity.Table().Name)
	if err != nil {
		return "", nil, expression.Expression{}, err
	}
	parsed, err := p.entity.Parse(p.item, parse.WithMode(schema.ModePut))
	if err != nil {
		return "", nil, expression.Expression{}, err
	}
	item, err := marshalItem(parsed.Item)
	if err != nil {
		return "", nil, expression.Expression{}, err
	}
	if p.ttl != nil {
		ttlKey := p.entity.Table().TimeToLiveKey
		if ttlKey == "" {
			return "", nil, expression.Expression{}, missingTTLKey(name)
		}
		item[ttlKey] = ttlDDB(*p.ttl)
	}
	cond, err := p.opts.condition.builder(p.entity)
	if err != nil {
		return "", nil, expression.Expression{}, err
	}
	e, err := exprParts{condition: cond}.build()
	if err != nil {
		return "", nil, expression.Expression{}, err
	}
	return name, item, e, nil
}

// Params validates the options, parses the item and returns the request.
func (p *PutItemCommand) Params() (*dynamodbv2.PutItemInput, error) {
	name, item, e, err := p.build()
	if err != nil {
		return nil, fmt.Errorf("failed to build put: %w", err)
	}
	return &dynamodbv2.PutItemInput{
		TableName:                           &name,
		Item:                                item,
		ConditionExpression:                 e.Condition(),
		ExpressionAttributeNames:            e.Names(),
		ExpressionAttributeValues:           e.Values(),
		ReturnValues:                        p.opts.returnValues,
		ReturnConsumedCapacity:              p.opts.capacity,
		ReturnItemCollectionMetrics:         p.opts.metrics,
		ReturnValuesOnConditionCheckFailure: p.opts.onConditionFalse,
	}, nil
}

func (p *PutItemCommand) TransactWriteItem() (types.TransactWriteItem, error) {
	name, item, e, err := p.build()
	if err != nil {
		return types.TransactWriteItem{}, fmt.Errorf("failed to build put: %w", err)
	}
	return types.TransactWriteItem{
		Put: &types.Put{
			TableName:                           &name,
			Item:                                item,
			ConditionExpression:                 e.Condition(),
			ExpressionAttributeNames:            e.Names(),
			ExpressionAttributeValues:           e.Values(),
			ReturnValuesOnConditionCheckFailure: p.opts.onConditionFalse,
		},
	}, nil
}

func (p *PutItemCommand) WriteRequest() (types.WriteRequest, error) {
	if p.opts.condition.IsSet() {
		return types.WriteRequest{}, fmt.Errorf("put with a condition can not be batched")
	}
	_, item, _, err := p.build()
	if err != nil {
		return types.WriteRequest{}, fmt.Errorf("failed to build put: %w", err)
	}
	return types.WriteRequest{
		PutRequest: &types.PutRequest{Item: item},
	}, nil
}

func (c *Client) PutItem(ctx context.Context, cmd *PutItemCommand) (*WriteResult, error) {
	params, err := cmd.Params()
	if err != nil {
		return nil, err
	}
	var out *dynamodbv2.PutItemOutput
	err = c.do("PutItem", *params.TableName, func() (err error) {
		out, err = c.awsddb.PutItem(ctx, params)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to put item: %w", err)
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

// WriteResult is the outcome of a put, update or delete.
type WriteResult struct {
	// Attributes is the formatted item requested with ReturnValues, or nil.
	Attributes            map[string]any
	ConsumedCapacity      *types.ConsumedCapacity
	ItemCollectionMetrics *types.ItemCollectionMetrics
}
