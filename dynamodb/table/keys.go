package table

import (
	"fmt"

	"github.com/acksell/ddbtoolbox/dynamodb/schema"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type PrimaryKeyDefinition struct {
	PartitionKey KeyDef
	SortKey      KeyDef // zero when the table has no sort key
}

// HasSortKey reports whether the key includes a sort key.
func (k PrimaryKeyDefinition) HasSortKey() bool {
	return k.SortKey.Name != ""
}

// Names returns the key attribute names, partition key first.
func (k PrimaryKeyDefinition) Names() []string {
	if !k.HasSortKey() {
		return []string{k.PartitionKey.Name}
	}
	return []string{k.PartitionKey.Name, k.SortKey.Name}
}

func (k PrimaryKeyDefinition) validate() error {
	if k.PartitionKey.Name == "" {
		return fmt.Errorf("partition key name is required")
	}
	if !k.PartitionKey.Kind.valid() {
		return fmt.Errorf("partition key %q has invalid kind %q", k.PartitionKey.Name, k.PartitionKey.Kind)
	}
	if k.HasSortKey() && !k.SortKey.Kind.valid() {
		return fmt.Errorf("sort key %q has invalid kind %q", k.SortKey.Name, k.SortKey.Kind)
	}
	if k.SortKey.Name == k.PartitionKey.Name {
		return fmt.Errorf("partition and sort key can not both be named %q", k.SortKey.Name)
	}
	return nil
}

type KeyDef struct {
	Name string
	Kind KeyKind
}

type KeyKind string

const (
	KeyKindS KeyKind = "S"
	KeyKindN KeyKind = "N"
	KeyKindB KeyKind = "B"
)

func (k KeyKind) valid() bool {
	return k == KeyKindS || k == KeyKindN || k == KeyKindB
}

// Attribute returns the schema attribute accepting values of this kind.
func (k KeyKind) Attribute() schema.Attribute {
	switch k {
	case KeyKindN:
		return schema.Number()
	case KeyKindB:
		return schema.Binary()
	default:
		return schema.String()
	}
}

// Accepts reports whether v is a Go value storable in a key of this kind.
func (k KeyKind) Accepts(v any) bool {
	switch k {
	case KeyKindN:
		return schema.MatchesKind(schema.KindNumber, v)
	case KeyKindB:
		return schema.MatchesKind(schema.KindBinary, v)
	default:
		return schema.MatchesKind(schema.KindString, v)
	}
}

// ScalarType is the key kind as used in table creation requests.
func (k KeyKind) ScalarType() types.ScalarAttributeType {
	return types.ScalarAttributeType(k)
}

type PrimaryKeyValues struct {
	PartitionKey any
	SortKey      any
}

type PrimaryKey struct {
	Definition PrimaryKeyDefinition
	Values     PrimaryKeyValues
}

// Item returns the key as a plain item keyed by attribute name.
func (k PrimaryKey) Item() map[string]any {
	item := map[string]any{k.Definition.PartitionKey.Name: k.Values.PartitionKey}
	if k.Definition.HasSortKey() {
		item[k.Definition.SortKey.Name] = k.Values.SortKey
	}
	return item
}

// DDB marshals the key, checking every value against its key kind.
func (k PrimaryKey) DDB() (map[string]types.AttributeValue, error) {
	pk, err := attributevalue.Marshal(k.Values.PartitionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal partition key of type %T with value %v: %w", k.Values.PartitionKey, k.Values.PartitionKey, err)
	}
	if err := attributeMatchesDefinition(k.Definition.PartitionKey.Kind, pk); err != nil {
		return nil, fmt.Errorf("partition key kind does not match dynamo value: %w", err)
	}
	if !k.Definition.HasSortKey() {
		return map[string]types.AttributeValue{
			k.Definition.PartitionKey.Name: pk,
		}, nil
	}
	if k.Values.SortKey == nil {
		return nil, fmt.Errorf("sort key %q is required but got nil", k.Definition.SortKey.Name)
	}
	sk, err := attributevalue.Marshal(k.Values.SortKey)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sort key of type %T with value %v: %w", k.Values.SortKey, k.Values.SortKey, err)
	}
	if err := attributeMatchesDefinition(k.Definition.SortKey.Kind, sk); err != nil {
		return nil, fmt.Errorf("sort key %q kind does not match dynamo value: %w", k.Definition.SortKey.Name, err)
	}
	return map[string]types.AttributeValue{
		k.Definition.PartitionKey.Name: pk,
		k.Definition.SortKey.Name:      sk,
	}, nil
}

func attributeMatchesDefinition(want KeyKind, v types.AttributeValue) error {
	var got KeyKind
	switch v.(type) {
	case *types.AttributeValueMemberS:
		got = KeyKindS
	case *types.AttributeValueMemberN:
		got = KeyKindN
	case *types.AttributeValueMemberB:
		got = KeyKindB
	default:
		return fmt.Errorf("unexpected key attribute type %T", v)
	}
	if got != want {
		return fmt.Errorf("got KeyKind %q want %q", got, want)
	}
	return nil
}

func keyValueFromAV(av types.AttributeValue) any {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return v.Value
	case *types.AttributeValueMemberN:
		return v.Value
	case *types.AttributeValueMemberB:
		return v.Value
	default:
		panic(fmt.Sprintf("unsupported attribute value %T for dynamodb keys", v))
	}
}
