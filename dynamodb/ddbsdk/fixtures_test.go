package ddbsdk

import (
	"testing"
	"time"

	"github.com/acksell/ddbtoolbox/dynamodb/entity"
	"github.com/acksell/ddbtoolbox/dynamodb/schema"
	"github.com/acksell/ddbtoolbox/dynamodb/table"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var testTable = table.TableDefinition{
	Name: "test-table",
	KeyDefinitions: table.PrimaryKeyDefinition{
		PartitionKey: table.KeyDef{Name: "pk", Kind: table.KeyKindS},
		SortKey:      table.KeyDef{Name: "sk", Kind: table.KeyKindS},
	},
	TimeToLiveKey: "ttl",
	GSIs: []table.GSIDefinition{{
		Name: "byEmail",
		KeyDefinitions: table.PrimaryKeyDefinition{
			PartitionKey: table.KeyDef{Name: "gsi1pk", Kind: table.KeyKindS},
		},
	}},
}

const now = "2024-01-02T03:04:05.006Z"

func clock() time.Time {
	return time.Date(2024, 1, 2, 3, 4, 5, 6e6, time.UTC)
}

func newUsers(t *testing.T) *entity.Entity {
	t.Helper()
	e, err := entity.New(entity.Config{
		Name:  "user",
		Table: testTable,
		Schema: schema.New(
			schema.Named("id", schema.String().Key().SavedAs("pk").Transform(schema.Prefix("USER#"))),
			schema.Named("sort", schema.String().Key().SavedAs("sk").Default("PROFILE")),
			schema.Named("name", schema.String().Required(schema.Always)),
			schema.Named("age", schema.Number().Optional()),
			schema.Named("tags", schema.SetOf(schema.String()).Optional()),
		),
		Clock: clock,
	})
	if err != nil {
		t.Fatalf("failed to create users entity: %v", err)
	}
	return e
}

func newOrders(t *testing.T) *entity.Entity {
	t.Helper()
	e, err := entity.New(entity.Config{
		Name:  "order",
		Table: testTable,
		Schema: schema.New(
			schema.Named("userId", schema.String().Key().SavedAs("pk").Transform(schema.Prefix("USER#"))),
			schema.Named("orderId", schema.String().Key().SavedAs("sk").Transform(schema.Prefix("ORDER#"))),
			schema.Named("total", schema.Number()),
		),
		Clock: clock,
	})
	if err != nil {
		t.Fatalf("failed to create orders entity: %v", err)
	}
	return e
}

func s(v string) *types.AttributeValueMemberS {
	return &types.AttributeValueMemberS{Value: v}
}

func n(v string) *types.AttributeValueMemberN {
	return &types.AttributeValueMemberN{Value: v}
}

func storedUser(id, name string) Item {
	return Item{
		"pk":   s("USER#" + id),
		"sk":   s("PROFILE"),
		"_et":  s("user"),
		"name": s(name),
		"_ct":  s(now),
		"_md":  s(now),
	}
}

func storedOrder(userID, orderID, total string) Item {
	return Item{
		"pk":    s("USER#" + userID),
		"sk":    s("ORDER#" + orderID),
		"_et":   s("order"),
		"total": n(total),
		"_ct":   s(now),
		"_md":   s(now),
	}
}

// exprValues returns the expression attribute values, for assertions that
// do not depend on placeholder numbering.
func exprValues(values map[string]types.AttributeValue) []types.AttributeValue {
	out := make([]types.AttributeValue, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}

func exprNames(names map[string]string) []string {
	out := make([]string, 0, len(names))
	for _, v := range names {
		out = append(out, v)
	}
	return out
}
