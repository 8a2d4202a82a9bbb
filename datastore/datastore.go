/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"

	"github.com/suparena/entityodm/storagemodels"
)

// MaxBatchOps is the largest number of writes a single batch may commit.
const MaxBatchOps = 500

// Connection is a handle to a document database.
type Connection interface {
	Collection(name string) Collection
}

// Collection is a named group of records.
type Collection interface {
	// Get fetches a record. A missing record is reported through Snapshot.Exists, not an error.
	Get(ctx context.Context, id string) (storagemodels.Snapshot, error)

	// Add creates a record and returns its generated identifier.
	Add(ctx context.Context, data map[string]interface{}) (string, error)

	// Merge writes the given top-level fields into the record, creating it if needed.
	// Fields not present in data are left untouched.
	Merge(ctx context.Context, id string, data map[string]interface{}) error

	Delete(ctx context.Context, id string) error

	Query() Query

	Batch() Batch
}

// Query is an immutable query builder; every method returns a new Query.
type Query interface {
	Where(field string, op storagemodels.Operator, value interface{}) Query
	OrderBy(field string, dir storagemodels.Direction) Query
	Limit(n int) Query
	Get(ctx context.Context) ([]storagemodels.Snapshot, error)
}

// Batch collects deletes and applies them in one acknowledged commit.
type Batch interface {
	Delete(id string)
	Len() int
	Commit(ctx context.Context) error
}
