package ddbsdk

import (
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
)

// SortKeyStrategy defines how to filter on the sort key in a query.
// The zero value matches every sort key.
type SortKeyStrategy struct {
	values []any
	cond   func(sk expression.KeyBuilder) expression.KeyConditionBuilder
}

func (s SortKeyStrategy) IsSet() bool {
	return s.cond != nil
}

// Equals returns items where the sort key equals the provided value.
func Equals[T any](v T) SortKeyStrategy {
	return SortKeyStrategy{
		values: []any{v},
		cond: func(sk expression.KeyBuilder) expression.KeyConditionBuilder {
			return expression.KeyEqual(sk, expression.Value(v))
		},
	}
}

// BeginsWith returns items where the sort key starts with the provided prefix.
func BeginsWith(prefix string) SortKeyStrategy {
	return SortKeyStrategy{
		values: []any{prefix},
		cond: func(sk expression.KeyBuilder) expression.KeyConditionBuilder {
			return expression.KeyBeginsWith(sk, prefix)
		},
	}
}

// Between returns items where the sort key is between start and end (inclusive).
func Between[T any](start, end T) SortKeyStrategy {
	return SortKeyStrategy{
		values: []any{start, end},
		cond: func(sk expression.KeyBuilder) expression.KeyConditionBuilder {
			return expression.KeyBetween(sk, expression.Value(start), expression.Value(end))
		},
	}
}

// GreaterThan returns items where the sort key is greater than the provided value.
func GreaterThan[T any](v T) SortKeyStrategy {
	return SortKeyStrategy{
		values: []any{v},
		cond: func(sk expression.KeyBuilder) expression.KeyConditionBuilder {
			return expression.KeyGreaterThan(sk, expression.Value(v))
		},
	}
}

// GreaterThanOrEqual returns items where the sort key is greater than or equal to the provided value.
func GreaterThanOrEqual[T any](v T) SortKeyStrategy {
	return SortKeyStrategy{
		values: []any{v},
		cond: func(sk expression.KeyBuilder) expression.KeyConditionBuilder {
			return expression.KeyGreaterThanEqual(sk, expression.Value(v))
		},
	}
}

// LessThan returns items where the sort key is less than the provided value.
func LessThan[T any](v T) SortKeyStrategy {
	return SortKeyStrategy{
		values: []any{v},
		cond: func(sk expression.KeyBuilder) expression.KeyConditionBuilder {
			return expression.KeyLessThan(sk, expression.Value(v))
		},
	}
}

// LessThanOrEqual returns items where the sort key is less than or equal to the provided value.
func LessThanOrEqual[T any](v T) SortKeyStrategy {
	return SortKeyStrategy{
		values: []any{v},
		cond: func(sk expression.KeyBuilder) expression.KeyConditionBuilder {
			return expression.KeyLessThanEqual(sk, expression.Value(v))
		},
	}
}
