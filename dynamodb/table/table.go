package table

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DefaultEntityAttribute is where items record the entity they belong to.
const DefaultEntityAttribute = "_et"

type TableDefinition struct {
	Name           string
	KeyDefinitions PrimaryKeyDefinition
	TimeToLiveKey  string
	GSIs           []GSIDefinition
	// EntityAttributeSavedAs overrides DefaultEntityAttribute.
	EntityAttributeSavedAs string
}

// GSIDefinition represents a Global Secondary Index definition.
type GSIDefinition struct {
	Name           string
	KeyDefinitions PrimaryKeyDefinition
}

// EntityAttribute returns the storage name of the entity attribute.
func (t TableDefinition) EntityAttribute() string {
	if t.EntityAttributeSavedAs == "" {
		return DefaultEntityAttribute
	}
	return t.EntityAttributeSavedAs
}

// Index looks up a GSI by name.
func (t TableDefinition) Index(name string) (GSIDefinition, bool) {
	for _, gsi := range t.GSIs {
		if gsi.Name == name {
			return gsi, true
		}
	}
	return GSIDefinition{}, false
}

func (t TableDefinition) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("table name is required")
	}
	if err := t.KeyDefinitions.validate(); err != nil {
		return fmt.Errorf("table %q: %w", t.Name, err)
	}
	seen := make(map[string]bool, len(t.GSIs))
	for _, gsi := range t.GSIs {
		if gsi.Name == "" {
			return fmt.Errorf("table %q: GSI name is required", t.Name)
		}
		if seen[gsi.Name] {
			return fmt.Errorf("table %q: GSI %q is declared twice", t.Name, gsi.Name)
		}
		seen[gsi.Name] = true
		if err := gsi.KeyDefinitions.validate(); err != nil {
			return fmt.Errorf("table %q GSI %q: %w", t.Name, gsi.Name, err)
		}
	}
	return nil
}

// ExtractPrimaryKey extracts the primary key values from a document.
func (g GSIDefinition) ExtractPrimaryKey(doc map[string]types.AttributeValue) (PrimaryKey, error) {
	return g.KeyDefinitions.ExtractPrimaryKey(doc)
}

func (t TableDefinition) ExtractPrimaryKey(doc map[string]types.AttributeValue) (PrimaryKey, error) {
	return t.KeyDefinitions.ExtractPrimaryKey(doc)
}

func (k PrimaryKeyDefinition) ExtractPrimaryKey(doc map[string]types.AttributeValue) (PrimaryKey, error) {
	part, ok := doc[k.PartitionKey.Name]
	if !ok {
		return PrimaryKey{}, fmt.Errorf("partition key %q not found", k.PartitionKey.Name)
	}
	if err := attributeMatchesDefinition(k.PartitionKey.Kind, part); err != nil {
		return PrimaryKey{}, fmt.Errorf("document key %q kind does not match definition: %w", k.PartitionKey.Name, err)
	}
	pk := PrimaryKey{
		Definition: k,
		Values: PrimaryKeyValues{
			PartitionKey: keyValueFromAV(part),
		},
	}
	if k.SortKey.Name == "" {
		return pk, nil
	}
	sort, ok := doc[k.SortKey.Name]
	if !ok {
		return PrimaryKey{}, fmt.Errorf("sort key %q not found on document", k.SortKey.Name)
	}
	if err := attributeMatchesDefinition(k.SortKey.Kind, sort); err != nil {
		return PrimaryKey{}, fmt.Errorf("sort key %q kind does not match definition: %w", k.SortKey.Name, err)
	}
	pk.Values.SortKey = keyValueFromAV(sort)
	return pk, nil
}
