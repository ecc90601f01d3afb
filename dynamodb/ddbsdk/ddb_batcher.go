package ddbsdk

import (
	"context"
	"fmt"
	"maps"
	"math"
	"math/rand/v2"
	"slices"
	"time"

	dynamodbv2 "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

func NewBatcher(c *Client, opts ...BatchOption) *batcher {
	b := &batcher{
		client:  c,
		pending: make(map[string][]types.WriteRequest),
		keys:    make(map[string][]Item),
	}
	for _, opt := range opts {
		opt(&b.opts)
	}
	// Default exponential backoff: 50ms base, 2x multiplier, 5s cap, full jitter
	if b.opts.backoff == nil {
		b.opts.backoff = DefaultBackoff
	}
	return b
}

type batcher struct {
	client *Client
	opts   batchOpts

	pending map[string][]types.WriteRequest
	keys    map[string][]Item
	retries int
}

var _ Batcher = &batcher{}

// AddAction adds put and delete commands to the batch.
// Returns error if an action with the same table+primarykey already exists,
// or if the action has a condition expression set.
func (b *batcher) AddAction(actions ...BatchAction) error {
	for _, a := range actions {
		name := a.TableName()
		if name == "" {
			return fmt.Errorf("missing table name for action %T", a)
		}
		req, err := a.WriteRequest()
		if err != nil {
			return err
		}
		key, err := batchKey(a)
		if err != nil {
			return err
		}
		for _, existing := range b.keys[name] {
			if keysEqual(key, existing) {
				return fmt.Errorf("duplicate action in table %s for primary key %v", name, key)
			}
		}
		b.keys[name] = append(b.keys[name], key)
		b.pending[name] = append(b.pending[name], req)
	}
	return nil
}

// batchKey returns the primary key of a batched command.
func batchKey(a BatchAction) (Item, error) {
	w, ok := a.(WriteAction)
	if !ok {
		return nil, fmt.Errorf("unsupported action type: %T", a)
	}
	return w.PrimaryKey()
}

// maxBatchWriteRequests is the BatchWriteItem limit per call.
const maxBatchWriteRequests = 25

// Exec sends one BatchWriteItem call (no retries) with up to 25 pending
// requests. Returns ExecResult with the requests still pending, both
// unprocessed and not sent yet.
func (b *batcher) Exec(ctx context.Context) (ExecResult, error) {
	if len(b.pending) == 0 {
		return ExecResult{Retries: b.retries}, nil
	}

	send, rest := splitRequests(b.pending, maxBatchWriteRequests)
	var res *dynamodbv2.BatchWriteItemOutput
	err := b.client.do("BatchWriteItem", firstTable(send), func() (err error) {
		res, err = b.client.awsddb.BatchWriteItem(ctx, &dynamodbv2.BatchWriteItemInput{
			RequestItems: send,
		})
		return err
	})
	if err != nil {
		return ExecResult{
			Unprocessed: b.pending,
			Retries:     b.retries,
		}, fmt.Errorf("batch write failed: %w", err)
	}

	for name, reqs := range res.UnprocessedItems {
		rest[name] = append(reqs, rest[name]...)
	}
	b.pending = rest
	if len(res.UnprocessedItems) > 0 {
		b.retries++
	}

	return ExecResult{
		Unprocessed: b.pending,
		Retries:     b.retries,
	}, nil
}

// splitRequests takes up to n requests out of m, in table name order.
func splitRequests(m map[string][]types.WriteRequest, n int) (send, rest map[string][]types.WriteRequest) {
	send = make(map[string][]types.WriteRequest)
	rest = make(map[string][]types.WriteRequest)
	for _, name := range slices.Sorted(maps.Keys(m)) {
		reqs := m[name]
		take := min(n, len(reqs))
		if take > 0 {
			send[name] = reqs[:take]
			n -= take
		}
		if take < len(reqs) {
			rest[name] = reqs[take:]
		}
	}
	return send, rest
}

// ExecAndRetry writes all pending items, retrying until complete or limits exceeded.
// At least one of [WithMaxRetries] or [WithTimeout] must be configured.
// Uses exponential backoff by default (50ms, 100ms, 200ms, ...), override with [WithBackoff].
//
// Example:
//
//	batch := client.NewBatch(ddbsdk.WithMaxRetries(5))
//	batch.AddAction(
//		ddbsdk.NewPutItem(users, user),
//		ddbsdk.NewDeleteItem(orders, map[string]any{"orderId": id}),
//	)
//	if err := batch.ExecAndRetry(ctx); err != nil {
//	    return err
//	}
func (b *batcher) ExecAndRetry(ctx context.Context) error {
	if b.opts.maxRetries == 0 && b.opts.timeout == 0 {
		return fmt.Errorf("ExecAndRetry requires WithMaxRetries or WithTimeout to be configured")
	}
	if b.opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.opts.timeout)
		defer cancel()
	}
	for {
		before := b.retries
		res, err := b.Exec(ctx)
		if err != nil {
			return err
		}
		if res.Done() {
			return nil
		}
		if res.Retries == before {
			// only unsent requests are left
			continue
		}
		if b.opts.maxRetries > 0 && res.Retries > b.opts.maxRetries {
			return fmt.Errorf("max retries (%d) exceeded: %d items unprocessed", b.opts.maxRetries, countRequests(b.pending))
		}
		if b.opts.backoff != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(b.opts.backoff(res.Retries)):
			}
		}
	}
}

// firstTable names the request in logs and metrics.
func firstTable(m map[string][]types.WriteRequest) string {
	names := slices.Sorted(maps.Keys(m))
	if len(names) == 0 {
		return ""
	}
	return names[0]
}

// keysEqual checks if two key maps have the same key attribute values.
func keysEqual(a, b map[string]types.AttributeValue) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || !attributeValuesEqual(av, bv) {
			return false
		}
	}
	return true
}

// attributeValuesEqual compares two AttributeValues.
func attributeValuesEqual(a, b types.AttributeValue) bool {
	switch av := a.(type) {
	case *types.AttributeValueMemberS:
		if bv, ok := b.(*types.AttributeValueMemberS); ok {
			return av.Value == bv.Value
		}
	case *types.AttributeValueMemberN:
		if bv, ok := b.(*types.AttributeValueMemberN); ok {
			return av.Value == bv.Value
		}
	case *types.AttributeValueMemberB:
		if bv, ok := b.(*types.AttributeValueMemberB); ok {
			return string(av.Value) == string(bv.Value)
		}
	}
	return false
}

func countRequests(m map[string][]types.WriteRequest) int {
	var n int
	for _, reqs := range m {
		n += len(reqs)
	}
	return n
}

// ExecResult contains the result of a Write operation.
type ExecResult struct {
	Unprocessed map[string][]types.WriteRequest
	Retries     int
}

// Done returns true if all items were successfully processed.
func (r ExecResult) Done() bool {
	return len(r.Unprocessed) == 0
}

// Err returns nil if Done(), otherwise returns an error.
func (r ExecResult) Err() error {
	if r.Done() {
		return nil
	}
	return fmt.Errorf("batch incomplete: %d items unprocessed after %d retries", countRequests(r.Unprocessed), r.Retries)
}

type BatchOption func(*batchOpts)

// BackoffFunc returns the duration to wait before retry attempt n.
type BackoffFunc func(attempt int) time.Duration

// WithMaxRetries sets the maximum number of retry attempts for [ExecAndRetry].
func WithMaxRetries(n int) BatchOption {
	return func(o *batchOpts) {
		o.maxRetries = n
	}
}

// WithTimeout sets a timeout for [ExecAndRetry].
func WithTimeout(d time.Duration) BatchOption {
	return func(o *batchOpts) {
		o.timeout = d
	}
}

// WithBackoff sets a custom backoff function for [ExecAndRetry].
func WithCustomBackoff(fn BackoffFunc) BatchOption {
	return func(o *batchOpts) {
		o.backoff = fn
	}
}

// WithExponentialBackoff sets exponential backoff for [ExecAndRetry].
// See [ExponentialBackoff] for details.
func WithExponentialBackoff(base time.Duration, multiplier float64, cap time.Duration) BatchOption {
	return WithCustomBackoff(ExponentialBackoff(base, multiplier, cap))
}

// ExponentialBackoff returns a capped exponential backoff with full jitter.
// Wait time is: rand(0, min(cap, base * multiplier^attempt))
// https://aws.amazon.com/blogs/architecture/exponential-backoff-and-jitter/
func ExponentialBackoff(base time.Duration, multiplier float64, cap time.Duration) BackoffFunc {
	return func(attempt int) time.Duration {
		backoff := cap
		if f := float64(base) * math.Pow(multiplier, float64(attempt)); f < float64(cap) {
			backoff = time.Duration(f)
		}
		if backoff <= 0 {
			return 0
		}
		return time.Duration(rand.Int64N(int64(backoff)))
	}
}

// DefaultBackoff is [ExponentialBackoff] with 50ms base, 2x multiplier, 5s cap.
var DefaultBackoff = ExponentialBackoff(50*time.Millisecond, 2.0, 5*time.Second)

type batchOpts struct {
	maxRetries int
	timeout    time.Duration
	backoff    BackoffFunc
}
