package ddbsdk

import (
	"context"
	"testing"

	"github.com/acksell/ddbtoolbox/dynamodb/ddberr"
	dynamodbv2 "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery_Params(t *testing.T) {
	users, orders := newUsers(t), newOrders(t)

	params, err := NewQuery(testTable, Query{Partition: "USER#1", Range: BeginsWith("ORDER#")}, users, orders).
		WithReverse().
		WithLimit(10).
		WithCapacity(types.ReturnConsumedCapacityIndexes).
		Params()
	require.NoError(t, err)

	assert.Equal(t, "test-table", *params.TableName)
	assert.Nil(t, params.IndexName)
	require.NotNil(t, params.KeyConditionExpression)
	assert.Contains(t, *params.KeyConditionExpression, "begins_with")
	require.NotNil(t, params.FilterExpression)
	assert.Contains(t, *params.FilterExpression, "OR")
	assert.ElementsMatch(t, []string{"pk", "sk", "_et"}, exprNames(params.ExpressionAttributeNames))
	values := exprValues(params.ExpressionAttributeValues)
	assert.Contains(t, values, s("USER#1"))
	assert.Contains(t, values, s("ORDER#"))
	assert.Contains(t, values, s("user"))
	assert.Contains(t, values, s("order"))
	assert.False(t, *params.ScanIndexForward)
	assert.Equal(t, int32(10), *params.Limit)
	assert.Equal(t, types.ReturnConsumedCapacityIndexes, params.ReturnConsumedCapacity)
}

func TestQuery_IndexAndProjection(t *testing.T) {
	users := newUsers(t)

	params, err := NewQuery(testTable, Query{Index: "byEmail", Partition: "ada@example.com"}, users).
		WithAttributes("name", "age").
		Params()
	require.NoError(t, err)

	assert.Equal(t, "byEmail", *params.IndexName)
	assert.Equal(t, types.SelectSpecificAttributes, params.Select)
	require.NotNil(t, params.ProjectionExpression)
	assert.Contains(t, exprNames(params.ExpressionAttributeNames), "gsi1pk")
	assert.Contains(t, exprNames(params.ExpressionAttributeNames), "name")
	assert.Contains(t, exprNames(params.ExpressionAttributeNames), "age")
}

func TestQuery_Invalid(t *testing.T) {
	users := newUsers(t)
	q := func(query Query) *QueryCommand {
		return NewQuery(testTable, query, users)
	}
	byUser := Query{Partition: "USER#1"}

	tests := []struct {
		name string
		cmd  *QueryCommand
		code string
	}{
		{"unknown index", q(Query{Index: "nope", Partition: "x"}), ddberr.QueryInvalidIndex},
		{"missing partition", q(Query{}), ddberr.QueryInvalidPartition},
		{"partition kind", q(Query{Partition: 1}), ddberr.QueryInvalidPartition},
		{"range without sort key", q(Query{Index: "byEmail", Partition: "x", Range: Equals("y")}), ddberr.QueryInvalidRange},
		{"range kind", q(Query{Partition: "x", Range: Between(1, 2)}), ddberr.QueryInvalidRange},
		{"consistent on index", q(Query{Index: "byEmail", Partition: "x"}).WithConsistentRead(), ddberr.OptionsInvalidConsistent},
		{"limit", q(byUser).WithLimit(0), ddberr.OptionsInvalidLimit},
		{"max pages", q(byUser).WithMaxPages(0), ddberr.OptionsInvalidMaxPages},
		{"select value", q(byUser).WithSelect("SOME"), ddberr.OptionsInvalidSelect},
		{"projected without index", q(byUser).WithSelect(types.SelectAllProjectedAttributes), ddberr.OptionsInvalidSelect},
		{"count with attributes", q(byUser).WithSelect(types.SelectCount).WithAttributes("name"), ddberr.OptionsInvalidSelect},
		{"specific without attributes", q(byUser).WithSelect(types.SelectSpecificAttributes), ddberr.OptionsInvalidSelect},
		{"unknown attribute", q(byUser).WithAttributes("unknown"), ddberr.OptionsInvalidAttributes},
		{"filter of unknown entity", q(byUser).WithEntityFilter("order", Attr("total").Gt(1)), ddberr.EntityUnknownEntity},
		{"capacity", q(byUser).WithCapacity("ALL"), ddberr.OptionsInvalidCapacity},
		{"table name", q(byUser).WithTableName(""), ddberr.OptionsInvalidTableName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cmd.Params()
			require.Error(t, err)
			assert.True(t, ddberr.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestScan_EntityFilters(t *testing.T) {
	users, orders := newUsers(t), newOrders(t)

	t.Run("entity attribute filter", func(t *testing.T) {
		params, err := NewScan(testTable, users).Params()
		require.NoError(t, err)
		require.NotNil(t, params.FilterExpression)
		assert.Equal(t, []string{"_et"}, exprNames(params.ExpressionAttributeNames))
		assert.Equal(t, []types.AttributeValue{s("user")}, exprValues(params.ExpressionAttributeValues))
	})

	t.Run("without entity attribute filter", func(t *testing.T) {
		params, err := NewScan(testTable, users).WithoutEntityAttrFilter().Params()
		require.NoError(t, err)
		assert.Nil(t, params.FilterExpression)
	})

	t.Run("entity filter keeps the entity attribute check", func(t *testing.T) {
		params, err := NewScan(testTable, users).
			WithoutEntityAttrFilter().
			WithEntityFilter("user", Attr("age").Gte(40)).
			Params()
		require.NoError(t, err)
		require.NotNil(t, params.FilterExpression)
		assert.Contains(t, *params.FilterExpression, "AND")
		assert.ElementsMatch(t, []string{"_et", "age"}, exprNames(params.ExpressionAttributeNames))
		assert.ElementsMatch(t, []types.AttributeValue{s("user"), n("40")}, exprValues(params.ExpressionAttributeValues))
	})

	t.Run("two entities with filters", func(t *testing.T) {
		params, err := NewScan(testTable, users, orders).
			WithEntityFilter("user", Attr("age").Gte(40)).
			WithEntityFilter("order", Attr("total").Gte(100)).
			Params()
		require.NoError(t, err)
		require.NotNil(t, params.FilterExpression)
		assert.Contains(t, *params.FilterExpression, "OR")
		assert.ElementsMatch(t, []string{"_et", "age", "total"}, exprNames(params.ExpressionAttributeNames))
	})

	t.Run("one entity without filter disables filtering", func(t *testing.T) {
		params, err := NewScan(testTable, users, orders).
			WithoutEntityAttrFilter().
			WithEntityFilter("user", Attr("age").Gte(40)).
			Params()
		require.NoError(t, err)
		assert.Nil(t, params.FilterExpression)
	})

	t.Run("filter values are transformed", func(t *testing.T) {
		params, err := NewScan(testTable, users).WithEntityFilter("user", Attr("id").Gte("1")).Params()
		require.NoError(t, err)
		assert.Contains(t, exprValues(params.ExpressionAttributeValues), s("USER#1"))

		params, err = NewScan(testTable, users).WithEntityFilter("user", Attr("id").NoTransform().Gte("1")).Params()
		require.NoError(t, err)
		assert.Contains(t, exprValues(params.ExpressionAttributeValues), s("1"))
	})

	t.Run("projection starts with the entity attribute", func(t *testing.T) {
		params, err := NewScan(testTable, users, orders).WithAttributes("created", "modified").Params()
		require.NoError(t, err)
		require.NotNil(t, params.ProjectionExpression)
		assert.ElementsMatch(t, []string{"_et", "_ct", "_md"}, exprNames(params.ExpressionAttributeNames))
	})

	t.Run("blind filter without entities", func(t *testing.T) {
		params, err := NewScan(testTable).WithFilter(Attr("pk").Eq("x")).Params()
		require.NoError(t, err)
		require.NotNil(t, params.FilterExpression)
		assert.Equal(t, []string{"pk"}, exprNames(params.ExpressionAttributeNames))
	})
}

func TestScan_Options(t *testing.T) {
	params, err := NewScan(testTable).
		WithIndex("byEmail").
		WithSegment(1, 4).
		WithSelect(types.SelectAllProjectedAttributes).
		WithExclusiveStartKey(Item{"pk": s("x")}).
		WithTableName("other").
		Params()
	require.NoError(t, err)
	assert.Equal(t, "other", *params.TableName)
	assert.Equal(t, "byEmail", *params.IndexName)
	assert.Equal(t, int32(1), *params.Segment)
	assert.Equal(t, int32(4), *params.TotalSegments)
	assert.Equal(t, types.SelectAllProjectedAttributes, params.Select)
	assert.Equal(t, Item{"pk": s("x")}, params.ExclusiveStartKey)
	assert.Nil(t, params.ConsistentRead)

	params, err = NewScan(testTable).WithConsistentRead().Params()
	require.NoError(t, err)
	assert.True(t, *params.ConsistentRead)
}

func TestScan_Invalid(t *testing.T) {
	tests := []struct {
		name string
		cmd  *ScanCommand
		code string
	}{
		{"unknown index", NewScan(testTable).WithIndex("nope"), ddberr.OptionsInvalidIndex},
		{"segment above total", NewScan(testTable).WithSegment(3, 3), ddberr.ScanInvalidSegment},
		{"negative segment", NewScan(testTable).WithSegment(-1, 4), ddberr.ScanInvalidSegment},
		{"no segments", NewScan(testTable).WithSegment(0, 0), ddberr.ScanInvalidSegment},
		{"consistent on index", NewScan(testTable).WithIndex("byEmail").WithConsistentRead(), ddberr.OptionsInvalidConsistent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cmd.Params()
			require.Error(t, err)
			assert.True(t, ddberr.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestClient_QueryRoutesAndPaginates(t *testing.T) {
	ctx := context.Background()
	users, orders := newUsers(t), newOrders(t)
	product := Item{"pk": s("USER#1"), "sk": s("PRODUCT#1"), "_et": s("product")}

	fake := newFakeDynamo("pk", "sk")
	fake.queryPages = []*dynamodbv2.QueryOutput{
		{
			Items:            []Item{storedUser("1", "Ada"), storedOrder("1", "7", "12"), product},
			Count:            3,
			ScannedCount:     4,
			LastEvaluatedKey: Item{"pk": s("USER#1"), "sk": s("PRODUCT#1")},
		},
		{
			Items:        []Item{storedOrder("1", "8", "30")},
			Count:        1,
			ScannedCount: 1,
		},
	}
	c := New(fake)

	res, err := c.Query(ctx, NewQuery(testTable, Query{Partition: "USER#1"}, users, orders).WithMaxPages(AllPages))
	require.NoError(t, err)

	assert.Equal(t, []map[string]any{
		{"id": "1", "sort": "PROFILE", "name": "Ada", "created": now, "modified": now},
		{"userId": "1", "orderId": "7", "total": float64(12), "created": now, "modified": now},
		{"userId": "1", "orderId": "8", "total": float64(30), "created": now, "modified": now},
	}, res.Items)
	assert.Equal(t, int32(4), res.Count)
	assert.Equal(t, int32(5), res.ScannedCount)
	assert.Nil(t, res.LastEvaluatedKey)
	require.Len(t, fake.queries, 2)
	assert.Nil(t, fake.queries[0].ExclusiveStartKey)
	assert.Equal(t, Item{"pk": s("USER#1"), "sk": s("PRODUCT#1")}, fake.queries[1].ExclusiveStartKey)
}

func TestClient_QueryStopsAtMaxPages(t *testing.T) {
	ctx := context.Background()
	users := newUsers(t)
	lastKey := Item{"pk": s("USER#1"), "sk": s("PROFILE")}

	fake := newFakeDynamo("pk", "sk")
	fake.queryPages = []*dynamodbv2.QueryOutput{
		{Items: []Item{storedUser("1", "Ada")}, Count: 1, LastEvaluatedKey: lastKey},
		{Items: []Item{storedUser("2", "Grace")}, Count: 1},
	}
	c := New(fake)

	res, err := c.Query(ctx, NewQuery(testTable, Query{Partition: "USER#1"}, users))
	require.NoError(t, err)
	assert.Len(t, res.Items, 1)
	assert.Equal(t, lastKey, res.LastEvaluatedKey)
	assert.Len(t, fake.queries, 1)
}

func TestClient_ScanWithoutEntities(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDynamo("pk", "sk")
	fake.scanPages = []*dynamodbv2.ScanOutput{
		{Items: []Item{{"pk": s("a"), "n": n("1")}}, Count: 1},
	}
	c := New(fake)

	res, err := c.Scan(ctx, NewScan(testTable))
	require.NoError(t, err)
	assert.Equal(t, []map[string]any{{"pk": "a", "n": float64(1)}}, res.Items)
}

func TestClient_ScanFormatsItemsWithoutEntityAttribute(t *testing.T) {
	ctx := context.Background()
	users, orders := newUsers(t), newOrders(t)
	order := storedOrder("1", "7", "12")
	delete(order, "_et")

	fake := newFakeDynamo("pk", "sk")
	fake.scanPages = []*dynamodbv2.ScanOutput{{Items: []Item{order}, Count: 1}}
	c := New(fake)

	res, err := c.Scan(ctx, NewScan(testTable, users, orders).WithoutEntityAttrFilter())
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "7", res.Items[0]["orderId"])
}
