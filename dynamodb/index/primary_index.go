package index

import (
	"errors"
	"fmt"
	"maps"

	"github.com/acksell/ddbtoolbox/dynamodb/index/val"
	"github.com/acksell/ddbtoolbox/dynamodb/table"
)

// PrimaryIndex represents the main table index with its key formats and associated GSIs.
// It serves as the central definition for an entity's access patterns.
//
// Example:
//
//	var UsersIndex = index.PrimaryIndex{
//	    Table:        UsersTable,
//	    PartitionKey: val.Fmt("USER#{userID}"),
//	    SortKey:      val.String("PROFILE").Ptr(),
//	    Secondary:    []index.SecondaryIndex{EmailGSI},
//	}
type PrimaryIndex struct {
	// Table is the underlying table definition (contains key definitions)
	Table table.TableDefinition
	// PartitionKey derives the partition key value
	PartitionKey val.ValDef
	// SortKey derives the sort key value (nil if the table has none)
	SortKey *val.ValDef
	// Secondary are the Global Secondary Indexes populated on writes
	Secondary []SecondaryIndex
}

// TableName returns the table name.
func (pi PrimaryIndex) TableName() string {
	return pi.Table.Name
}

// ComputeKey derives the table's key attributes from a parsed item.
func (pi PrimaryIndex) ComputeKey(item map[string]any) (map[string]any, error) {
	def := pi.Table.KeyDefinitions
	pk, err := pi.PartitionKey.Resolve(item)
	if err != nil {
		return nil, fmt.Errorf("partition key %q: %w", def.PartitionKey.Name, err)
	}
	key := map[string]any{def.PartitionKey.Name: pk}
	if !def.HasSortKey() {
		return key, nil
	}
	if pi.SortKey == nil {
		return nil, fmt.Errorf("table %q has sort key %q but the index does not define it", pi.Table.Name, def.SortKey.Name)
	}
	sk, err := pi.SortKey.Resolve(item)
	if err != nil {
		return nil, fmt.Errorf("sort key %q: %w", def.SortKey.Name, err)
	}
	key[def.SortKey.Name] = sk
	return key, nil
}

// SecondaryKeys derives the key attributes of every GSI from a parsed item.
// GSIs with missing fields are skipped (sparse GSI behavior).
func (pi PrimaryIndex) SecondaryKeys(item map[string]any) (map[string]any, error) {
	result := make(map[string]any)
	for _, gsi := range pi.Secondary {
		keys, err := gsi.Keys(item)
		if err != nil {
			return nil, fmt.Errorf("GSI %q: %w", gsi.Name(), err)
		}
		maps.Copy(result, keys)
	}
	return result, nil
}

// Validate checks that the PrimaryIndex is properly configured.
func (pi PrimaryIndex) Validate() error {
	if err := pi.Table.Validate(); err != nil {
		return err
	}
	def := pi.Table.KeyDefinitions
	if !pi.PartitionKey.HasValueSource() {
		return fmt.Errorf("partition key value source (Fmt, FromField, or Const) is required")
	}
	if err := checkKind(def.PartitionKey, pi.PartitionKey); err != nil {
		return err
	}
	if def.HasSortKey() {
		if pi.SortKey == nil || !pi.SortKey.HasValueSource() {
			return fmt.Errorf("table %q has sort key %q but the index does not define it", pi.Table.Name, def.SortKey.Name)
		}
		if err := checkKind(def.SortKey, *pi.SortKey); err != nil {
			return err
		}
	} else if pi.SortKey != nil {
		return fmt.Errorf("table %q has no sort key", pi.Table.Name)
	}

	seen := make(map[string]bool, len(pi.Secondary))
	for _, gsi := range pi.Secondary {
		if seen[gsi.Name()] {
			return fmt.Errorf("GSI %q is declared twice", gsi.Name())
		}
		seen[gsi.Name()] = true
		if _, ok := pi.Table.Index(gsi.Name()); !ok {
			return fmt.Errorf("GSI %q is not declared on table %q", gsi.Name(), pi.Table.Name)
		}
		if err := gsi.Validate(); err != nil {
			return fmt.Errorf("GSI %q: %w", gsi.Name(), err)
		}
	}
	return nil
}

// Templates always render strings, so they only fit S keys.
func checkKind(def table.KeyDef, v val.ValDef) error {
	if v.Format != nil && def.Kind != table.KeyKindS {
		return fmt.Errorf("key %q of kind %s can not use format %q", def.Name, def.Kind, v.Format.String())
	}
	if v.Const != nil && string(v.Const.Kind) != string(def.Kind) {
		return fmt.Errorf("key %q of kind %s can not use constant %v of kind %s", def.Name, def.Kind, v.Const.Value, v.Const.Kind)
	}
	return nil
}

func isMissing(err error) bool {
	return errors.Is(err, val.ErrMissingField)
}
