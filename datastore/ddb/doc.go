/*
Package ddb provides a DynamoDB implementation of the datastore.Connection interface.

All collections share one table:
  - PK holds the collection name, so every collection is a partition
  - SK holds the record identifier
  - record fields are stored as top-level attributes

Key Features:

Queries:
Where clauses become a FilterExpression on a partition Query. DynamoDB
evaluates Limit before the filter, so the datastore reads every page and
applies ordering and the result limit client-side:

	snaps, err := store.Collection("users").Query().
	    Where("age", storagemodels.OpGreaterOrEqual, 18).
	    OrderBy("age", storagemodels.Asc).
	    Limit(10).
	    Get(ctx)

Batches:
Batch deletes are sent as BatchWriteItem requests of 25 keys. Unprocessed
items and throttling errors are retried with a linear backoff:

	store := ddb.New(client, "entities", ddb.WithRetries(5, 50*time.Millisecond))

Times are written as RFC 3339 strings in UTC with a fixed nine digit fraction,
so string comparison in filters and ordering is chronological. Record fields
named PK or SK are rejected with a ValidationError.
*/
package ddb
