package ddbsdk

import (
	"fmt"
	"strings"

	"github.com/acksell/ddbtoolbox/dynamodb/entity"
	"github.com/acksell/ddbtoolbox/dynamodb/schema/format"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
)

func marshalItem(item map[string]any) (Item, error) {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal item to dynamodb map: %w", err)
	}
	return av, nil
}

func unmarshalItem(item Item) (map[string]any, error) {
	var out map[string]any
	if err := attributevalue.UnmarshalMap(item, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal dynamodb item: %w", err)
	}
	return out, nil
}

// formatItem decodes a returned item and formats it through e. A nil item
// formats to nil.
func formatItem(e *entity.Entity, item Item, opts ...format.Option) (map[string]any, error) {
	if item == nil {
		return nil, nil
	}
	saved, err := unmarshalItem(item)
	if err != nil {
		return nil, err
	}
	return e.Format(saved, opts...)
}

// projectionPath drops list indexes, which the formatter projection does
// not distinguish.
func projectionPath(path string) string {
	var b strings.Builder
	depth := 0
	for _, r := range path {
		switch {
		case r == '[':
			depth++
		case r == ']':
			depth--
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}
