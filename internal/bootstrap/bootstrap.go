// Package bootstrap wires the Lambda entrypoints to a live DynamoDB-backed
// handler. Each entrypoint binary calls MustHandler once at cold start.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/calzona/tacostore/api"
	"github.com/calzona/tacostore/store"
	"github.com/calzona/tacostore/taco"
)

// NewHandler builds an API handler against the table named by the TABLE_NAME
// environment variable, using the default AWS credential chain.
func NewHandler(ctx context.Context) (*api.Handler, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	s, err := store.New(dynamodb.NewFromConfig(cfg), store.Config{
		TableName: os.Getenv("TABLE_NAME"),
	})
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	return api.NewHandler(
		taco.NewCustomers(s),
		taco.NewOrders(s),
		taco.NewMenu(s),
		logger,
	), nil
}

// MustHandler is NewHandler for main functions; initialization failure is
// fatal before the Lambda runtime starts polling.
func MustHandler(ctx context.Context) *api.Handler {
	h, err := NewHandler(ctx)
	if err != nil {
		slog.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	return h
}
