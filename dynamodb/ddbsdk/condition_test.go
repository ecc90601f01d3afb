package ddbsdk

import (
	"testing"

	"github.com/acksell/ddbtoolbox/dynamodb/ddberr"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildCondition(t *testing.T, c Condition, useEntity bool) expression.Expression {
	t.Helper()
	users := newUsers(t)
	if !useEntity {
		users = nil
	}
	b, err := c.builder(users)
	require.NoError(t, err)
	e, err := exprParts{condition: b}.build()
	require.NoError(t, err)
	return e
}

func TestCondition_StorageNamesAndTransforms(t *testing.T) {
	e := buildCondition(t, Attr("id").Eq("1"), true)
	assert.Equal(t, []string{"pk"}, exprNames(e.Names()))
	assert.Equal(t, []types.AttributeValue{s("USER#1")}, exprValues(e.Values()))

	e = buildCondition(t, Attr("id").NoTransform().BeginsWith("USER#"), true)
	assert.Contains(t, *e.Condition(), "begins_with")
	assert.Equal(t, []types.AttributeValue{s("USER#")}, exprValues(e.Values()))

	e = buildCondition(t, Attr("id").In("1", "2"), true)
	assert.ElementsMatch(t, []types.AttributeValue{s("USER#1"), s("USER#2")}, exprValues(e.Values()))

	e = buildCondition(t, Attr("age").Between(18, 65), true)
	assert.ElementsMatch(t, []types.AttributeValue{n("18"), n("65")}, exprValues(e.Values()))
}

func TestCondition_Combinators(t *testing.T) {
	c := And(
		Attr("age").Gte(18),
		Or(Attr("name").Eq("Ada"), Not(Attr("tags").Contains("banned"))),
		Condition{},
	)
	e := buildCondition(t, c, true)
	require.NotNil(t, e.Condition())
	assert.Contains(t, *e.Condition(), "AND")
	assert.Contains(t, *e.Condition(), "OR")
	assert.Contains(t, *e.Condition(), "NOT")
	assert.ElementsMatch(t, []string{"age", "name", "tags"}, exprNames(e.Names()))

	assert.False(t, And().IsSet())
	assert.False(t, Not(Condition{}).IsSet())
	single := Attr("age").Exists()
	e = buildCondition(t, Or(single), true)
	assert.Contains(t, *e.Condition(), "attribute_exists")
}

func TestCondition_WithoutEntity(t *testing.T) {
	e := buildCondition(t, Attr("whatever.nested").Eq("x"), false)
	assert.ElementsMatch(t, []string{"whatever", "nested"}, exprNames(e.Names()))
	assert.Equal(t, []types.AttributeValue{s("x")}, exprValues(e.Values()))
}

func TestCondition_Invalid(t *testing.T) {
	users := newUsers(t)
	tests := []struct {
		name string
		cond Condition
	}{
		{"unknown attribute", Attr("unknown").Eq(1)},
		{"empty path", Attr("").Exists()},
		{"empty in", Attr("age").In()},
		{"transform error", Attr("id").Eq(1)},
		{"path below a primitive", Attr("name.first").Exists()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cond.builder(users)
			assert.True(t, ddberr.HasCode(err, ddberr.OptionsInvalidCondition), "got %v", err)
		})
	}
}
