package ddbsdk

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Client sends commands to DynamoDB and formats the responses through
// the entities the commands were built for.
type Client struct {
	awsddb  AWSDynamoClientV2
	logger  zerolog.Logger
	metrics *Metrics
}

var _ IO = &Client{}

type ClientOption func(*clientOpts)

type clientOpts struct {
	logger     zerolog.Logger
	registerer prometheus.Registerer
}

// WithLogger logs every request at debug level and failures at error level.
func WithLogger(l zerolog.Logger) ClientOption {
	return func(o *clientOpts) {
		o.logger = l
	}
}

// WithRegisterer registers the client metrics. Without it they are
// collected but not exported.
func WithRegisterer(reg prometheus.Registerer) ClientOption {
	return func(o *clientOpts) {
		o.registerer = reg
	}
}

func New(awsddb AWSDynamoClientV2, opts ...ClientOption) *Client {
	o := clientOpts{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Client{
		awsddb:  awsddb,
		logger:  o.logger,
		metrics: NewMetrics(o.registerer),
	}
}

// NewFromDefaultConfig loads AWS credentials and region the standard way
// (environment, shared config, instance role).
func NewFromDefaultConfig(ctx context.Context, opts ...ClientOption) (*Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return New(dynamodb.NewFromConfig(cfg), opts...), nil
}

// NewTx creates a new transaction. Add actions and commit the transaction.
func (c *Client) NewTx(opts ...TxOption) Txer {
	return NewTxer(c, opts...)
}

// NewBatch creates a new write-batch. Add actions and execute the batch writes.
func (c *Client) NewBatch(opts ...BatchOption) Batcher {
	return NewBatcher(c, opts...)
}

// do runs one request, recording its outcome.
func (c *Client) do(op, table string, fn func() error) error {
	start := time.Now()
	err := fn()
	c.metrics.observe(op, time.Since(start), err)
	if err != nil {
		c.logger.Error().Err(err).
			Str("operation", op).
			Str("table", table).
			Msg("dynamodb request failed")
		return err
	}
	c.logger.Debug().
		Str("operation", op).
		Str("table", table).
		Dur("duration", time.Since(start)).
		Msg("dynamodb request")
	return nil
}
