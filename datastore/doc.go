/*
Package datastore defines the document database contract that entityodm models are built on.

A Connection hands out Collections. A Collection offers record CRUD, a query
builder and delete batches:

	type Collection interface {
	    Get(ctx context.Context, id string) (storagemodels.Snapshot, error)
	    Add(ctx context.Context, data map[string]interface{}) (string, error)
	    Merge(ctx context.Context, id string, data map[string]interface{}) error
	    Delete(ctx context.Context, id string) error
	    Query() Query
	    Batch() Batch
	}

Implementations:
  - ddb: DynamoDB single-table implementation
  - mongodb: MongoDB implementation, one Mongo collection per entity collection
  - mock: In-memory implementation for testing

Batches are bounded by MaxBatchOps (500). Implementations reject larger commits.
*/
package datastore
