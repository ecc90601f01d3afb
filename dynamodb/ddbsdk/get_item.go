package ddbsdk

import (
	"context"
	"fmt"

	"github.com/acksell/ddbtoolbox/dynamodb/ddberr"
	"github.com/acksell/ddbtoolbox/dynamodb/entity"
	"github.com/acksell/ddbtoolbox/dynamodb/schema/format"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	dynamodbv2 "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// GetItemCommand reads one item of an entity by its key.
type GetItemCommand struct {
	entity     *entity.Entity
	key        map[string]any
	consistent bool
	attributes []string
	capacity   types.ReturnConsumedCapacity
	tableName  *string
}

func NewGetItem(e *entity.Entity, key map[string]any) *GetItemCommand {
	return &GetItemCommand{entity: e, key: key}
}

func (g *GetItemCommand) WithConsistentRead() *GetItemCommand {
	g.consistent = true
	return g
}

// WithAttributes only reads and returns the given attribute paths.
func (g *GetItemCommand) WithAttributes(paths ...string) *GetItemCommand {
	g.attributes = append(g.attributes, paths...)
	return g
}

func (g *GetItemCommand) WithCapacity(c types.ReturnConsumedCapacity) *GetItemCommand {
	g.capacity = c
	return g
}

func (g *GetItemCommand) WithTableName(name string) *GetItemCommand {
	g.tableName = &name
	return g
}

func (g *GetItemCommand) Params() (*dynamodbv2.GetItemInput, error) {
	if err := validateCapacity(g.capacity); err != nil {
		return nil, err
	}
	name, err := tableName(g.tableName, g.entity.Table().Name)
	if err != nil {
		return nil, err
	}
	pk, err := g.entity.ParseKey(g.key)
	if err != nil {
		return nil, err
	}
	key, err := pk.DDB()
	if err != nil {
		return nil, err
	}
	var parts exprParts
	if len(g.attributes) > 0 {
		proj, err := projectEntity(g.entity, g.attributes, false)
		if err != nil {
			return nil, err
		}
		parts.projection = &proj
	}
	e, err := parts.build()
	if err != nil {
		return nil, fmt.Errorf("failed to build get: %w", err)
	}
	return &dynamodbv2.GetItemInput{
		TableName:                &name,
		Key:                      key,
		ConsistentRead:           optional(g.consistent),
		ProjectionExpression:     e.Projection(),
		ExpressionAttributeNames: e.Names(),
		ReturnConsumedCapacity:   g.capacity,
	}, nil
}

func (c *Client) GetItem(ctx context.Context, cmd *GetItemCommand) (*GetResult, error) {
	params, err := cmd.Params()
	if err != nil {
		return nil, err
	}
	var out *dynamodbv2.GetItemOutput
	err = c.do("GetItem", *params.TableName, func() (err error) {
		out, err = c.awsddb.GetItem(ctx, params)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	item, err := formatItem(cmd.entity, out.Item, projectionOption(cmd.attributes))
	if err != nil {
		return nil, fmt.Errorf("failed to format item: %w", err)
	}
	return &GetResult{Item: item, ConsumedCapacity: out.ConsumedCapacity}, nil
}

// GetResult holds the formatted item, nil when it does not exist.
type GetResult struct {
	Item             map[string]any
	ConsumedCapacity *types.ConsumedCapacity
}

// projectEntity resolves attribute paths to a projection on their storage
// paths. withEntityAttr prepends the entity attribute, needed to route
// items of multi-entity reads.
func projectEntity(e *entity.Entity, paths []string, withEntityAttr bool) (expression.ProjectionBuilder, error) {
	names, err := storedPaths(e, paths, withEntityAttr)
	if err != nil {
		return expression.ProjectionBuilder{}, err
	}
	return projection(names), nil
}

func storedPaths(e *entity.Entity, paths []string, withEntityAttr bool) ([]string, error) {
	var names []string
	if withEntityAttr {
		if et := e.EntityAttributeSavedAs(); et != "" {
			names = append(names, et)
		}
	}
	for _, path := range paths {
		_, stored, err := e.Attribute(path)
		if err != nil {
			return nil, ddberr.New(ddberr.OptionsInvalidAttributes,
				fmt.Sprintf("Invalid attributes option: %v.", err),
				ddberr.WithPath(path),
				ddberr.WithCause(err),
			)
		}
		names = append(names, stored)
	}
	return names, nil
}

// projection builds a projection of distinct names, keeping their order.
func projection(names []string) expression.ProjectionBuilder {
	var proj expression.ProjectionBuilder
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		proj = proj.AddNames(expression.Name(n))
	}
	return proj
}

func projectionOption(paths []string) format.Option {
	trimmed := make([]string, len(paths))
	for i, p := range paths {
		trimmed[i] = projectionPath(p)
	}
	return format.WithAttributes(trimmed...)
}
