package index

import (
	"errors"
	"testing"

	"github.com/acksell/ddbtoolbox/dynamodb/index/val"
	"github.com/acksell/ddbtoolbox/dynamodb/table"
)

var emailGSI = table.GSIDefinition{
	Name: "byEmail",
	KeyDefinitions: table.PrimaryKeyDefinition{
		PartitionKey: table.KeyDef{Name: "gsi1pk", Kind: table.KeyKindS},
		SortKey:      table.KeyDef{Name: "gsi1sk", Kind: table.KeyKindS},
	},
}

var testTable = table.TableDefinition{
	Name: "TestTable",
	KeyDefinitions: table.PrimaryKeyDefinition{
		PartitionKey: table.KeyDef{Name: "pk", Kind: table.KeyKindS},
		SortKey:      table.KeyDef{Name: "sk", Kind: table.KeyKindS},
	},
	GSIs: []table.GSIDefinition{emailGSI},
}

var pkOnlyTable = table.TableDefinition{
	Name: "PKOnly",
	KeyDefinitions: table.PrimaryKeyDefinition{
		PartitionKey: table.KeyDef{Name: "id", Kind: table.KeyKindN},
	},
}

func userIndex() PrimaryIndex {
	return PrimaryIndex{
		Table:        testTable,
		PartitionKey: val.Fmt("USER#{userID}"),
		SortKey:      val.String("PROFILE").Ptr(),
		Secondary: []SecondaryIndex{{
			GSI:       emailGSI,
			Partition: val.Fmt("EMAIL#{email}"),
			Sort:      val.Fmt("USER#{userID}").Ptr(),
		}},
	}
}

func TestPrimaryIndex_Validate(t *testing.T) {
	tests := []struct {
		name    string
		idx     PrimaryIndex
		wantErr bool
	}{
		{
			name: "valid index with sort key",
			idx:  userIndex(),
		},
		{
			name: "valid index without sort key",
			idx: PrimaryIndex{
				Table:        pkOnlyTable,
				PartitionKey: val.FromField("id"),
			},
		},
		{
			name: "missing table name",
			idx: PrimaryIndex{
				Table:        table.TableDefinition{KeyDefinitions: testTable.KeyDefinitions},
				PartitionKey: val.Fmt("USER#{id}"),
				SortKey:      val.String("PROFILE").Ptr(),
			},
			wantErr: true,
		},
		{
			name:    "missing partition key source",
			idx:     PrimaryIndex{Table: pkOnlyTable},
			wantErr: true,
		},
		{
			name: "missing sort key source",
			idx: PrimaryIndex{
				Table:        testTable,
				PartitionKey: val.Fmt("USER#{id}"),
			},
			wantErr: true,
		},
		{
			name: "sort key on table without one",
			idx: PrimaryIndex{
				Table:        pkOnlyTable,
				PartitionKey: val.FromField("id"),
				SortKey:      val.Number(1).Ptr(),
			},
			wantErr: true,
		},
		{
			name: "format on numeric key",
			idx: PrimaryIndex{
				Table:        pkOnlyTable,
				PartitionKey: val.Fmt("ID#{id}"),
			},
			wantErr: true,
		},
		{
			name: "constant kind mismatch",
			idx: PrimaryIndex{
				Table:        pkOnlyTable,
				PartitionKey: val.String("one"),
			},
			wantErr: true,
		},
		{
			name: "unknown GSI",
			idx: PrimaryIndex{
				Table:        pkOnlyTable,
				PartitionKey: val.FromField("id"),
				Secondary:    []SecondaryIndex{{GSI: emailGSI, Partition: val.Fmt("E#{email}"), Sort: val.Fmt("U#{id}").Ptr()}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.idx.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPrimaryIndex_ComputeKey(t *testing.T) {
	idx := userIndex()
	key, err := idx.ComputeKey(map[string]any{"userID": "123", "name": "x"})
	if err != nil {
		t.Fatalf("ComputeKey() error = %v", err)
	}
	if len(key) != 2 || key["pk"] != "USER#123" || key["sk"] != "PROFILE" {
		t.Errorf("ComputeKey() = %v", key)
	}

	_, err = idx.ComputeKey(map[string]any{"name": "x"})
	if !errors.Is(err, val.ErrMissingField) {
		t.Errorf("ComputeKey() error = %v, want ErrMissingField", err)
	}

	numeric := PrimaryIndex{Table: pkOnlyTable, PartitionKey: val.FromField("id")}
	key, err = numeric.ComputeKey(map[string]any{"id": 42})
	if err != nil {
		t.Fatalf("ComputeKey() error = %v", err)
	}
	if key["id"] != 42 {
		t.Errorf("id = %v, want 42", key["id"])
	}
}

func TestPrimaryIndex_SecondaryKeys(t *testing.T) {
	idx := userIndex()
	keys, err := idx.SecondaryKeys(map[string]any{"userID": "123", "email": "test@example.com"})
	if err != nil {
		t.Fatalf("SecondaryKeys() error = %v", err)
	}
	if keys["gsi1pk"] != "EMAIL#test@example.com" || keys["gsi1sk"] != "USER#123" {
		t.Errorf("SecondaryKeys() = %v", keys)
	}
}

func TestSecondaryIndex_SparseIndex(t *testing.T) {
	idx := userIndex()
	keys, err := idx.SecondaryKeys(map[string]any{"userID": "123"})
	if err != nil {
		t.Fatalf("SecondaryKeys() error = %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("SecondaryKeys() = %v, want no keys for sparse GSI", keys)
	}

	gsi := idx.Secondary[0]
	got, err := gsi.Keys(map[string]any{"email": "a@b.c"})
	if err != nil || got != nil {
		t.Errorf("Keys() = %v, %v, want nil, nil", got, err)
	}
}

func TestSecondaryIndex_InvalidValue(t *testing.T) {
	gsi := userIndex().Secondary[0]
	_, err := gsi.Keys(map[string]any{"userID": "1", "email": map[string]any{"a": "b"}})
	if err == nil {
		t.Fatal("Keys() expected error for map value")
	}
}

func TestSecondaryIndex_Validate(t *testing.T) {
	valid := userIndex().Secondary[0]
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	noSort := valid
	noSort.Sort = nil
	if err := noSort.Validate(); err == nil {
		t.Error("Validate() expected error for missing sort source")
	}
	noName := valid
	noName.GSI.Name = ""
	if err := noName.Validate(); err == nil {
		t.Error("Validate() expected error for missing name")
	}
}
