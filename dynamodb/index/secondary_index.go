package index

import (
	"fmt"

	"github.com/acksell/ddbtoolbox/dynamodb/index/val"
	"github.com/acksell/ddbtoolbox/dynamodb/table"
)

// SecondaryIndex represents a Global Secondary Index (GSI) definition with
// key value patterns for deriving GSI key values from items.
//
// Example:
//
//	index.SecondaryIndex{
//	    GSI:       UserTable.GSIs[0],
//	    Partition: val.Fmt("EMAIL#{email}"),
//	    Sort:      val.Fmt("USER#{id}").Ptr(),
//	}
type SecondaryIndex struct {
	// GSI is the GSI definition from the table (contains Name and KeyDefinitions)
	GSI table.GSIDefinition
	// Partition defines how to derive the GSI partition key value
	Partition val.ValDef
	// Sort defines how to derive the GSI sort key value (optional)
	Sort *val.ValDef
}

// Name returns the GSI name.
func (si SecondaryIndex) Name() string {
	return si.GSI.Name
}

// KeyDefinition returns the key definition for this GSI.
func (si SecondaryIndex) KeyDefinition() table.PrimaryKeyDefinition {
	return si.GSI.KeyDefinitions
}

// Keys returns the GSI key attributes for item, or nil if a referenced field
// is missing and the item does not belong in the index.
func (si SecondaryIndex) Keys(item map[string]any) (map[string]any, error) {
	def := si.GSI.KeyDefinitions
	pk, err := si.Partition.Resolve(item)
	if isMissing(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("partition key %q: %w", def.PartitionKey.Name, err)
	}
	keys := map[string]any{def.PartitionKey.Name: pk}
	if si.Sort == nil || !def.HasSortKey() {
		return keys, nil
	}
	sk, err := si.Sort.Resolve(item)
	if isMissing(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sort key %q: %w", def.SortKey.Name, err)
	}
	keys[def.SortKey.Name] = sk
	return keys, nil
}

// Validate checks that the SecondaryIndex is properly configured.
func (si SecondaryIndex) Validate() error {
	if si.GSI.Name == "" {
		return fmt.Errorf("secondary index GSI name is required")
	}
	def := si.GSI.KeyDefinitions
	if def.PartitionKey.Name == "" {
		return fmt.Errorf("partition key name is required for GSI %q", si.GSI.Name)
	}
	if !si.Partition.HasValueSource() {
		return fmt.Errorf("partition key value source (Fmt, FromField, or Const) is required for GSI %q", si.GSI.Name)
	}
	if err := checkKind(def.PartitionKey, si.Partition); err != nil {
		return err
	}
	if def.HasSortKey() {
		if si.Sort == nil || !si.Sort.HasValueSource() {
			return fmt.Errorf("sort key value source is required for GSI %q", si.GSI.Name)
		}
		if err := checkKind(def.SortKey, *si.Sort); err != nil {
			return err
		}
	}
	return nil
}
