package ddbsdk

import (
	"context"
	"errors"
	"fmt"

	dynamodbv2 "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

func NewTxer(c *Client, opts ...TxOption) Txer {
	tx := &txer{client: c}
	for _, opt := range opts {
		opt(&tx.opts)
	}
	return tx
}

type txer struct {
	client *Client

	opts txOpts

	// errors from AddAction can be returned when calling Commit().
	// This is to enable a nicer API where you don't have to check for errors after each AddAction call.
	errs    []error
	actions []stagedAction
}

type stagedAction struct {
	table  string
	key    Item
	action WriteAction
}

var _ Txer = &txer{}

func (tx *txer) addError(err error) error {
	tx.errs = append(tx.errs, err)
	return err
}

// AddAction stages the action for the commit.
// Handling the error is optional, the call to Commit() will return these errors later.
func (tx *txer) AddAction(a WriteAction) error {
	key, err := a.PrimaryKey()
	if err != nil {
		return tx.addError(fmt.Errorf("failed to get primary key: %w", err))
	}
	name := a.TableName()
	if name == "" {
		return tx.addError(fmt.Errorf("missing table name for action %T on key %v", a, key))
	}
	for _, staged := range tx.actions {
		if staged.table == name && keysEqual(staged.key, key) {
			return tx.addError(fmt.Errorf("an action already exists in table %q for primary key %v", name, key))
		}
	}
	tx.actions = append(tx.actions, stagedAction{table: name, key: key, action: a})
	return nil
}

func (tx *txer) Commit(ctx context.Context) error {
	if len(tx.errs) > 0 {
		return fmt.Errorf("transaction has invalid actions: %w", errors.Join(tx.errs...))
	}
	switch len(tx.actions) {
	case 0:
		return nil
	case 1:
		// use operation directly instead of TransactWriteItems, to avoid transactional overhead
		return tx.commitSingle(ctx, tx.actions[0].action)
	}
	items := make([]types.TransactWriteItem, 0, len(tx.actions))
	for _, staged := range tx.actions {
		twi, err := staged.action.TransactWriteItem()
		if err != nil {
			return fmt.Errorf("failed to convert action to transact write item: %w", err)
		}
		items = append(items, twi)
	}
	token := tx.opts.idempotencyToken
	if token == "" {
		token = uuid.NewString()
	}
	params := &dynamodbv2.TransactWriteItemsInput{
		TransactItems:      items,
		ClientRequestToken: &token,
	}
	err := tx.client.do("TransactWriteItems", tx.actions[0].table, func() error {
		_, err := tx.client.awsddb.TransactWriteItems(ctx, params)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to transact write items: %w", err)
	}
	return nil
}

func (tx *txer) commitSingle(ctx context.Context, action WriteAction) error {
	var err error
	switch a := action.(type) {
	case *PutItemCommand:
		_, err = tx.client.PutItem(ctx, a)
	case *UpdateItemCommand:
		_, err = tx.client.UpdateItem(ctx, a)
	case *DeleteItemCommand:
		_, err = tx.client.DeleteItem(ctx, a)
	default:
		return fmt.Errorf("unknown operation type: %T", a)
	}
	return err
}

type TxOption func(*txOpts)

type txOpts struct {
	idempotencyToken string
}

// IdempotencyTokens last for 10 minutes according to AWS documentation.
// If used after that, the request will be treated as new.
// Therefore, use with care. Without one every commit gets a random token.
// https://docs.aws.amazon.com/amazondynamodb/latest/APIReference/API_TransactWriteItems.html
func WithIdempotencyToken(token string) TxOption {
	return func(opts *txOpts) {
		opts.idempotencyToken = token
	}
}
