package ddbsdk

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"sync"

	dynamodbv2 "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamo stores items by primary key and records every request. It
// does not evaluate expressions: updates return updateAttributes and
// reads return the queued pages.
type fakeDynamo struct {
	mu       sync.Mutex
	keyNames []string
	items    map[string]Item

	err              error
	updateAttributes Item
	queryPages       []*dynamodbv2.QueryOutput
	scanPages        []*dynamodbv2.ScanOutput
	// unprocessed is returned once by BatchWriteItem, then cleared.
	unprocessed map[string][]types.WriteRequest

	puts      []*dynamodbv2.PutItemInput
	gets      []*dynamodbv2.GetItemInput
	deletes   []*dynamodbv2.DeleteItemInput
	updates   []*dynamodbv2.UpdateItemInput
	queries   []*dynamodbv2.QueryInput
	scans     []*dynamodbv2.ScanInput
	batches   []*dynamodbv2.BatchWriteItemInput
	transacts []*dynamodbv2.TransactWriteItemsInput
}

var _ AWSDynamoClientV2 = &fakeDynamo{}

func newFakeDynamo(keyNames ...string) *fakeDynamo {
	return &fakeDynamo{keyNames: keyNames, items: make(map[string]Item)}
}

func (f *fakeDynamo) key(item Item) string {
	parts := make([]string, len(f.keyNames))
	for i, name := range f.keyNames {
		switch v := item[name].(type) {
		case *types.AttributeValueMemberS:
			parts[i] = "S:" + v.Value
		case *types.AttributeValueMemberN:
			parts[i] = "N:" + v.Value
		case *types.AttributeValueMemberB:
			parts[i] = fmt.Sprintf("B:%x", v.Value)
		}
	}
	return strings.Join(parts, "|")
}

func (f *fakeDynamo) PutItem(_ context.Context, params *dynamodbv2.PutItemInput, _ ...func(*dynamodbv2.Options)) (*dynamodbv2.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts = append(f.puts, params)
	if f.err != nil {
		return nil, f.err
	}
	k := f.key(params.Item)
	out := &dynamodbv2.PutItemOutput{}
	if params.ReturnValues == types.ReturnValueAllOld {
		out.Attributes = f.items[k]
	}
	f.items[k] = maps.Clone(params.Item)
	return out, nil
}

func (f *fakeDynamo) GetItem(_ context.Context, params *dynamodbv2.GetItemInput, _ ...func(*dynamodbv2.Options)) (*dynamodbv2.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets = append(f.gets, params)
	if f.err != nil {
		return nil, f.err
	}
	return &dynamodbv2.GetItemOutput{Item: f.items[f.key(params.Key)]}, nil
}

func (f *fakeDynamo) DeleteItem(_ context.Context, params *dynamodbv2.DeleteItemInput, _ ...func(*dynamodbv2.Options)) (*dynamodbv2.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, params)
	if f.err != nil {
		return nil, f.err
	}
	k := f.key(params.Key)
	out := &dynamodbv2.DeleteItemOutput{}
	if params.ReturnValues == types.ReturnValueAllOld {
		out.Attributes = f.items[k]
	}
	delete(f.items, k)
	return out, nil
}

func (f *fakeDynamo) UpdateItem(_ context.Context, params *dynamodbv2.UpdateItemInput, _ ...func(*dynamodbv2.Options)) (*dynamodbv2.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, params)
	if f.err != nil {
		return nil, f.err
	}
	return &dynamodbv2.UpdateItemOutput{Attributes: f.updateAttributes}, nil
}

func (f *fakeDynamo) Query(_ context.Context, params *dynamodbv2.QueryInput, _ ...func(*dynamodbv2.Options)) (*dynamodbv2.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, params)
	if f.err != nil {
		return nil, f.err
	}
	n := len(f.queries) - 1
	if n >= len(f.queryPages) {
		return &dynamodbv2.QueryOutput{}, nil
	}
	return f.queryPages[n], nil
}

func (f *fakeDynamo) Scan(_ context.Context, params *dynamodbv2.ScanInput, _ ...func(*dynamodbv2.Options)) (*dynamodbv2.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scans = append(f.scans, params)
	if f.err != nil {
		return nil, f.err
	}
	n := len(f.scans) - 1
	if n >= len(f.scanPages) {
		return &dynamodbv2.ScanOutput{}, nil
	}
	return f.scanPages[n], nil
}

func (f *fakeDynamo) BatchWriteItem(_ context.Context, params *dynamodbv2.BatchWriteItemInput, _ ...func(*dynamodbv2.Options)) (*dynamodbv2.BatchWriteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, params)
	if f.err != nil {
		return nil, f.err
	}
	out := &dynamodbv2.BatchWriteItemOutput{UnprocessedItems: f.unprocessed}
	f.unprocessed = nil
	return out, nil
}

func (f *fakeDynamo) TransactWriteItems(_ context.Context, params *dynamodbv2.TransactWriteItemsInput, _ ...func(*dynamodbv2.Options)) (*dynamodbv2.TransactWriteItemsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transacts = append(f.transacts, params)
	if f.err != nil {
		return nil, f.err
	}
	return &dynamodbv2.TransactWriteItemsOutput{}, nil
}
