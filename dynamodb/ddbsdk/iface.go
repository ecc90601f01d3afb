package ddbsdk

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type AWSDynamoClientV2 interface {
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

type IO interface {
	Writer
	Reader
}

type Writer interface {
	NewTx(...TxOption) Txer
	NewBatch(...BatchOption) Batcher

	PutItem(context.Context, *PutItemCommand) (*WriteResult, error)
	UpdateItem(context.Context, *UpdateItemCommand) (*WriteResult, error)
	DeleteItem(context.Context, *DeleteItemCommand) (*WriteResult, error)
}

type Reader interface {
	GetItem(context.Context, *GetItemCommand) (*GetResult, error)
	Query(context.Context, *QueryCommand) (*ReadResult, error)
	Scan(context.Context, *ScanCommand) (*ReadResult, error)
}

type Txer interface {
	AddAction(WriteAction) error
	Commit(context.Context) error
}

type Batcher interface {
	AddAction(...BatchAction) error
	Exec(context.Context) (ExecResult, error)
	ExecAndRetry(context.Context) error
}

// WriteAction is a command that can be part of a transaction.
type WriteAction interface {
	TableName() string
	PrimaryKey() (map[string]types.AttributeValue, error)
	TransactWriteItem() (types.TransactWriteItem, error)
}

// BatchAction is a command that can be part of a write batch.
type BatchAction interface {
	TableName() string
	WriteRequest() (types.WriteRequest, error)
}

// Item is a raw DynamoDB item.
type Item = map[string]types.AttributeValue
