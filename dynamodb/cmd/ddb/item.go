package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/acksell/ddbtoolbox/dynamodb/ddbsdk"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"
)

// newClient connects with the default AWS credential chain and logs
// requests to stderr.
func newClient(ctx context.Context) (*ddbsdk.Client, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	level, err := cfg.level()
	if err != nil {
		return nil, fmt.Errorf("invalid logLevel in %s: %w", configFilename, err)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
	return ddbsdk.NewFromDefaultConfig(ctx, ddbsdk.WithLogger(logger))
}

func runGet(args []string, s streams) error {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	var ef entityFlags
	ef.register(fs)
	consistent := fs.Bool("consistent", false, "use a strongly consistent read")
	timeout := fs.Duration("timeout", 10*time.Second, "request timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, key, err := ef.load(s)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	client, err := newClient(ctx)
	if err != nil {
		return err
	}

	cmd := ddbsdk.NewGetItem(e, key)
	if *consistent {
		cmd = cmd.WithConsistentRead()
	}
	res, err := client.GetItem(ctx, cmd)
	if err != nil {
		return err
	}
	if res.Item == nil {
		return fmt.Errorf("item not found")
	}
	return writeJSON(s.out, res.Item)
}

func runPut(args []string, s streams) error {
	fs := flag.NewFlagSet("put", flag.ContinueOnError)
	var ef entityFlags
	ef.register(fs)
	create := fs.Bool("create", false, "fail if the item already exists")
	timeout := fs.Duration("timeout", 10*time.Second, "request timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, item, err := ef.load(s)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	client, err := newClient(ctx)
	if err != nil {
		return err
	}

	cmd := ddbsdk.NewPutItem(e, item).WithReturnValues(types.ReturnValueAllOld)
	if *create {
		// every item written through the entity carries its entity attribute
		if e.EntityAttribute() == "" {
			return fmt.Errorf("-create requires the entity attribute of %q", e.Name())
		}
		cmd = cmd.WithCondition(ddbsdk.Attr(e.EntityAttribute()).NotExists())
	}
	res, err := client.PutItem(ctx, cmd)
	if err != nil {
		return err
	}
	return writeJSON(s.out, map[string]any{"previous": res.Attributes})
}
