package ddbsdk

import (
	"context"
	"fmt"

	"github.com/acksell/ddbtoolbox/dynamodb/ddberr"
	"github.com/acksell/ddbtoolbox/dynamodb/entity"
	"github.com/acksell/ddbtoolbox/dynamodb/table"

	dynamodbv2 "github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// ScanCommand reads a whole table or GSI, formatting the items of the
// given entities and skipping the others.
type ScanCommand struct {
	readOptions[*ScanCommand]

	table         table.TableDefinition
	entities      []*entity.Entity
	opts          readOpts
	index         string
	segment       *int32
	totalSegments *int32
}

func NewScan(t table.TableDefinition, entities ...*entity.Entity) *ScanCommand {
	cmd := &ScanCommand{table: t, entities: entities}
	cmd.readOptions = readOptions[*ScanCommand]{opts: &cmd.opts, cmd: cmd}
	return cmd
}

func (s *ScanCommand) WithIndex(name string) *ScanCommand {
	s.index = name
	return s
}

// WithSegment scans one segment of a parallel scan.
func (s *ScanCommand) WithSegment(segment, totalSegments int32) *ScanCommand {
	s.segment = &segment
	s.totalSegments = &totalSegments
	return s
}

func (s *ScanCommand) validate() error {
	if s.index != "" {
		if _, ok := s.table.Index(s.index); !ok {
			return ddberr.New(ddberr.OptionsInvalidIndex,
				fmt.Sprintf("Invalid index option: '%s' is not an index of table '%s'.", s.index, s.table.Name),
				ddberr.WithPayload(map[string]any{"received": s.index}),
			)
		}
	}
	if s.segment != nil {
		seg, total := *s.segment, *s.totalSegments
		if total < 1 || seg < 0 || seg >= total {
			return ddberr.New(ddberr.ScanInvalidSegment,
				fmt.Sprintf("Invalid segment option: segment %d of %d. 'totalSegments' must be a strictly positive integer and 'segment' an integer in [0, totalSegments).", seg, total),
				ddberr.WithPayload(map[string]any{"segment": seg, "totalSegments": total}),
			)
		}
	}
	return s.opts.validate(s.index)
}

func (s *ScanCommand) Params() (*dynamodbv2.ScanInput, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	name, err := tableName(s.opts.tableName, s.table.Name)
	if err != nil {
		return nil, err
	}
	var parts exprParts
	if parts.filter, err = s.opts.filterCondition(s.entities); err != nil {
		return nil, err
	}
	if parts.projection, err = s.opts.projectionFor(s.entities); err != nil {
		return nil, err
	}
	e, err := parts.build()
	if err != nil {
		return nil, fmt.Errorf("failed to build scan: %w", err)
	}
	return &dynamodbv2.ScanInput{
		TableName:                 &name,
		IndexName:                 optional(s.index),
		FilterExpression:          e.Filter(),
		ProjectionExpression:      e.Projection(),
		ExpressionAttributeNames:  e.Names(),
		ExpressionAttributeValues: e.Values(),
		ConsistentRead:            optional(s.opts.consistent),
		ExclusiveStartKey:         s.opts.exclusiveStartKey,
		Limit:                     s.opts.limit,
		Select:                    s.opts.selectValue(),
		Segment:                   s.segment,
		TotalSegments:             s.totalSegments,
		ReturnConsumedCapacity:    s.opts.capacity,
	}, nil
}

func (c *Client) Scan(ctx context.Context, cmd *ScanCommand) (*ReadResult, error) {
	params, err := cmd.Params()
	if err != nil {
		return nil, err
	}
	last, pages, err := paginate(cmd.opts.pages(), params.ExclusiveStartKey, func(startKey Item) (page, error) {
		in := *params
		in.ExclusiveStartKey = startKey
		var out *dynamodbv2.ScanOutput
		err := c.do("Scan", *params.TableName, func() (err error) {
			out, err = c.awsddb.Scan(ctx, &in)
			return err
		})
		if err != nil {
			return page{}, fmt.Errorf("failed to scan: %w", err)
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
