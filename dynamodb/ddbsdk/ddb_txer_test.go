package ddbsdk

import (
	"context"
	"testing"

	"github.com/acksell/ddbtoolbox/dynamodb/update"
)

func TestTransaction_SinglePut(t *testing.T) {
	ctx := context.Background()
	users := newUsers(t)
	fake := newFakeDynamo("pk", "sk")
	db := New(fake)

	tx := db.NewTx()
	if err := tx.AddAction(NewPutItem(users, map[string]any{"id": "1", "name": "Alice"})); err != nil {
		t.Fatalf("AddAction failed: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Transaction commit failed: %v", err)
	}

	if len(fake.puts) != 1 {
		t.Errorf("expected a direct PutItem call, got %d", len(fake.puts))
	}
	if len(fake.transacts) != 0 {
		t.Errorf("expected no TransactWriteItems call, got %d", len(fake.transacts))
	}
}

func TestTransaction_MultipleActions(t *testing.T) {
	ctx := context.Background()
	users, orders := newUsers(t), newOrders(t)
	fake := newFakeDynamo("pk", "sk")
	db := New(fake)

	tx := db.NewTx(WithIdempotencyToken("token-1"))
	tx.AddAction(NewPutItem(orders, map[string]any{"userId": "1", "orderId": "7", "total": 12}))
	tx.AddAction(NewUpdateItem(users, map[string]any{"id": "1", "age": update.Add(1)}))
	tx.AddAction(NewDeleteItem(orders, map[string]any{"userId": "1", "orderId": "6"}))
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Transaction commit failed: %v", err)
	}

	if len(fake.transacts) != 1 {
		t.Fatalf("expected one TransactWriteItems call, got %d", len(fake.transacts))
	}
	in := fake.transacts[0]
	if len(in.TransactItems) != 3 {
		t.Errorf("expected 3 transact items, got %d", len(in.TransactItems))
	}
	if *in.ClientRequestToken != "token-1" {
		t.Errorf("expected idempotency token %q, got %q", "token-1", *in.ClientRequestToken)
	}
	if in.TransactItems[0].Put == nil || in.TransactItems[1].Update == nil || in.TransactItems[2].Delete == nil {
		t.Errorf("transact items are not in the order they were added: %+v", in.TransactItems)
	}
}

func TestTransaction_GeneratesToken(t *testing.T) {
	ctx := context.Background()
	orders := newOrders(t)
	fake := newFakeDynamo("pk", "sk")

	tx := New(fake).NewTx()
	tx.AddAction(NewPutItem(orders, map[string]any{"userId": "1", "orderId": "7", "total": 12}))
	tx.AddAction(NewPutItem(orders, map[string]any{"userId": "1", "orderId": "8", "total": 30}))
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Transaction commit failed: %v", err)
	}
	if len(fake.transacts) != 1 || *fake.transacts[0].ClientRequestToken == "" {
		t.Error("expected a generated idempotency token")
	}
}

func TestTransaction_DuplicateKey(t *testing.T) {
	ctx := context.Background()
	users := newUsers(t)
	fake := newFakeDynamo("pk", "sk")

	tx := New(fake).NewTx()
	if err := tx.AddAction(NewPutItem(users, map[string]any{"id": "1", "name": "Alice"})); err != nil {
		t.Fatalf("AddAction failed: %v", err)
	}
	if err := tx.AddAction(NewDeleteItem(users, map[string]any{"id": "1"})); err == nil {
		t.Error("expected duplicate key error")
	}
	if err := tx.Commit(ctx); err == nil {
		t.Error("expected commit to return the AddAction error")
	}
	if len(fake.puts)+len(fake.transacts) != 0 {
		t.Error("expected nothing to be sent")
	}
}

func TestTransaction_Empty(t *testing.T) {
	fake := newFakeDynamo("pk", "sk")
	if err := New(fake).NewTx().Commit(context.Background()); err != nil {
		t.Fatalf("empty commit failed: %v", err)
	}
}
