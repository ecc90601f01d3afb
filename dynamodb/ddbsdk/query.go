package ddbsdk

import (
	"context"
	"fmt"

	"github.com/acksell/ddbtoolbox/dynamodb/ddberr"
	"github.com/acksell/ddbtoolbox/dynamodb/entity"
	"github.com/acksell/ddbtoolbox/dynamodb/table"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	dynamodbv2 "github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// Query selects the items of one partition of the table or of a GSI.
type Query struct {
	// Index is the GSI to query, "" for the table itself.
	Index string
	// Partition and Range compare stored key values, as written by the
	// entities' key transformers.
	Partition any
	Range     SortKeyStrategy
}

// QueryCommand reads the items of a partition, formatting those of the
// given entities and skipping the others.
type QueryCommand struct {
	readOptions[*QueryCommand]

	table    table.TableDefinition
	query    Query
	entities []*entity.Entity
	opts     readOpts
	reverse  bool
}

func NewQuery(t table.TableDefinition, q Query, entities ...*entity.Entity) *QueryCommand {
	cmd := &QueryCommand{table: t, query: q, entities: entities}
	cmd.readOptions = readOptions[*QueryCommand]{opts: &cmd.opts, cmd: cmd}
	return cmd
}

// WithReverse reads the partition in descending sort key order.
func (q *QueryCommand) WithReverse() *QueryCommand {
	q.reverse = true
	return q
}

func (q *QueryCommand) keyCondition() (expression.KeyConditionBuilder, error) {
	keys, ok := keyDefinitions(q.table, q.query.Index)
	if !ok {
		return expression.KeyConditionBuilder{}, ddberr.New(ddberr.QueryInvalidIndex,
			fmt.Sprintf("Unknown index '%s' on table '%s'.", q.query.Index, q.table.Name),
			ddberr.WithPayload(map[string]any{"index": q.query.Index}),
		)
	}
	if q.query.Partition == nil || !keys.PartitionKey.Kind.Accepts(q.query.Partition) {
		return expression.KeyConditionBuilder{}, ddberr.New(ddberr.QueryInvalidPartition,
			fmt.Sprintf("Invalid query partition: expected a value of kind %s for '%s'.", keys.PartitionKey.Kind, keys.PartitionKey.Name),
			ddberr.WithPayload(map[string]any{"received": q.query.Partition}),
		)
	}
	cond := expression.Key(keys.PartitionKey.Name).Equal(expression.Value(q.query.Partition))
	r := q.query.Range
	if !r.IsSet() {
		return cond, nil
	}
	if !keys.HasSortKey() {
		return expression.KeyConditionBuilder{}, ddberr.New(ddberr.QueryInvalidRange,
			"Invalid query range: the queried index has no sort key.",
		)
	}
	for _, v := range r.values {
		if !keys.SortKey.Kind.Accepts(v) {
			return expression.KeyConditionBuilder{}, ddberr.New(ddberr.QueryInvalidRange,
				fmt.Sprintf("Invalid query range: expected values of kind %s for '%s'.", keys.SortKey.Kind, keys.SortKey.Name),
				ddberr.WithPayload(map[string]any{"received": v}),
			)
		}
	}
	return cond.And(r.cond(expression.Key(keys.SortKey.Name))), nil
}

func (q *QueryCommand) Params() (*dynamodbv2.QueryInput, error) {
	if err := q.opts.validate(q.query.Index); err != nil {
		return nil, err
	}
	name, err := tableName(q.opts.tableName, q.table.Name)
	if err != nil {
		return nil, err
	}
	var parts exprParts
	if parts.keyCondition, err = q.keyCondition(); err != nil {
		return nil, err
	}
	if parts.filter, err = q.opts.filterCondition(q.entities); err != nil {
		return nil, err
	}
	if parts.projection, err = q.opts.projectionFor(q.entities); err != nil {
		return nil, err
	}
	e, err := parts.build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return &dynamodbv2.QueryInput{
		TableName:                 &name,
		IndexName:                 optional(q.query.Index),
		KeyConditionExpression:    e.KeyCondition(),
		FilterExpression:          e.Filter(),
		ProjectionExpression:      e.Projection(),
		ExpressionAttributeNames:  e.Names(),
		ExpressionAttributeValues: e.Values(),
		ConsistentRead:            optional(q.opts.consistent),
		ExclusiveStartKey:         q.opts.exclusiveStartKey,
		Limit:                     q.opts.limit,
		Select:                    q.opts.selectValue(),
		ScanIndexForward:          scanIndexForward(q.reverse),
		ReturnConsumedCapacity:    q.opts.capacity,
	}, nil
}

func scanIndexForward(reverse bool) *bool {
	if !reverse {
		return nil
	}
	forward := false
	return &forward
}

func (c *Client) Query(ctx context.Context, cmd *QueryCommand) (*ReadResult, error) {
	params, err := cmd.Params()
	if err != nil {
		return nil, err
	}
	last, pages, err := paginate(cmd.opts.pages(), params.ExclusiveStartKey, func(startKey Item) (page, error) {
		in := *params
		in.ExclusiveStartKey = startKey
		var out *dynamodbv2.QueryOutput
		err := c.do("Query", *params.TableName, func() (err error) {
			out, err = c.awsddb.Query(ctx, &in)
			return err
		})
		if err != nil {
			return page{}, fmt.Errorf("failed to query: %w", err)
		}
		return page{
			items:            out.Items,
			count:            out.Count,
			scannedCount:     out.ScannedCount,
			lastEvaluatedKey: out.LastEvaluatedKey,
			capacity:         out.ConsumedCapacity,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return cmd.opts.result(cmd.entities, pages, last)
}
