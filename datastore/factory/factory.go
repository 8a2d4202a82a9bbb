/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package factory opens the datastore selected in the configuration.
package factory

import (
	"context"
	"fmt"

	"github.com/suparena/entityodm/config"
	"github.com/suparena/entityodm/datastore"
	"github.com/suparena/entityodm/datastore/ddb"
	"github.com/suparena/entityodm/datastore/mock"
	"github.com/suparena/entityodm/datastore/mongodb"
	"github.com/suparena/entityodm/errors"
	"go.uber.org/zap"
)

// CloseFunc releases the resources of an opened datastore.
type CloseFunc func(ctx context.Context) error

func noClose(context.Context) error { return nil }

// Open connects to the backend named by cfg.Backend.
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (datastore.Connection, CloseFunc, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Backend {
	case config.BackendMemory:
		logger.Debug("using in-memory datastore")
		return mock.New(), noClose, nil

	case config.BackendDynamoDB:
		store, err := ddb.Open(ctx, ddb.Config{
			Region:    cfg.DynamoDB.Region,
			AccessKey: cfg.DynamoDB.AccessKey,
			SecretKey: cfg.DynamoDB.SecretKey,
			Table:     cfg.DynamoDB.Table,
			Endpoint:  cfg.DynamoDB.Endpoint,
		}, ddb.WithLogger(logger))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open dynamodb datastore: %w", err)
		}
		return store, noClose, nil

	case config.BackendMongoDB:
		store, err := mongodb.Open(ctx, mongodb.Config{
			URI:            cfg.MongoDB.URI,
			Database:       cfg.MongoDB.Database,
			ConnectTimeout: cfg.MongoDB.ConnectTimeout,
		}, mongodb.WithLogger(logger))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open mongodb datastore: %w", err)
		}
		return store, store.Close, nil
	}

	return nil, nil, errors.NewValidationError("backend", fmt.Sprintf("unknown backend %q", cfg.Backend))
}
