package schema

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Set holds the elements of a set attribute. It marshals to a DynamoDB
// string, number or binary set depending on its elements.
type Set []any

var _ attributevalue.Marshaler = Set{}

func NewSet(elems ...any) Set {
	return Set(elems)
}

// Contains reports whether v is an element of the set.
func (s Set) Contains(v any) bool {
	key, ok := elementKey(v)
	if !ok {
		return false
	}
	for _, e := range s {
		if k, _ := elementKey(e); k == key {
			return true
		}
	}
	return false
}

func (s Set) MarshalDynamoDBAttributeValue() (types.AttributeValue, error) {
	if len(s) == 0 {
		return nil, fmt.Errorf("dynamodb does not support empty sets")
	}
	var (
		ss []string
		ns []string
		bs [][]byte
	)
	for i, e := range s {
		av, err := attributevalue.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal set element %d: %w", i, err)
		}
		switch v := av.(type) {
		case *types.AttributeValueMemberS:
			ss = append(ss, v.Value)
		case *types.AttributeValueMemberN:
			ns = append(ns, v.Value)
		case *types.AttributeValueMemberB:
			bs = append(bs, v.Value)
		default:
			return nil, fmt.Errorf("set element %d has unsupported type %T", i, e)
		}
	}
	switch {
	case len(ss) == len(s):
		return &types.AttributeValueMemberSS{Value: ss}, nil
	case len(ns) == len(s):
		return &types.AttributeValueMemberNS{Value: ns}, nil
	case len(bs) == len(s):
		return &types.AttributeValueMemberBS{Value: bs}, nil
	}
	return nil, fmt.Errorf("set elements must all share one type")
}
