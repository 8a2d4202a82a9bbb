/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"time"

	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/suparena/entityodm/datastore"
	"github.com/suparena/entityodm/errors"
	"go.uber.org/zap"
)

// maxWriteRequests is the BatchWriteItem request limit.
const maxWriteRequests = 25

type batch struct {
	coll *collection
	ids  []string
}

func (b *batch) Delete(id string) {
	b.ids = append(b.ids, id)
}

func (b *batch) Len() int {
	return len(b.ids)
}

// Commit sends the deletes in BatchWriteItem chunks of 25. DynamoDB has no
// atomic batch of this size, so a failure can leave earlier chunks applied.
func (b *batch) Commit(ctx context.Context) error {
	if len(b.ids) > datastore.MaxBatchOps {
		return errors.NewValidationError("batch", fmt.Sprintf("%d operations exceed the limit of %d", len(b.ids), datastore.MaxBatchOps))
	}

	for start := 0; start < len(b.ids); start += maxWriteRequests {
		end := min(start+maxWriteRequests, len(b.ids))
		requests := make([]types.WriteRequest, 0, end-start)
		for _, id := range b.ids[start:end] {
			requests = append(requests, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{Key: b.coll.key(id)},
			})
		}
		if err := b.coll.store.writeWithRetry(ctx, requests); err != nil {
			return err
		}
	}
	return nil
}

// writeWithRetry submits write requests and resubmits unprocessed ones with a
// linear backoff.
func (d *DataStore) writeWithRetry(ctx context.Context, requests []types.WriteRequest) error {
	pending := map[string][]types.WriteRequest{d.tableName: requests}

	for attempt := 0; ; attempt++ {
		out, err := d.client.BatchWriteItem(ctx, &sdk.BatchWriteItemInput{RequestItems: pending})
		if err != nil {
			if !isRetryableError(err) || attempt >= d.maxRetries {
				return err
			}
		} else {
			if len(out.UnprocessedItems) == 0 {
				return nil
			}
			pending = out.UnprocessedItems
			if attempt >= d.maxRetries {
				return fmt.Errorf("batch write left %d unprocessed items after %d retries", len(pending[d.tableName]), d.maxRetries)
			}
		}

		d.logger.Debug("retrying batch write", zap.Int("attempt", attempt+1), zap.Int("pending", len(pending[d.tableName])))

		backoff := time.Duration(attempt+1) * d.retryBackoff
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// isRetryableError determines if a DynamoDB error is retryable
func isRetryableError(err error) bool {
	// Check for specific retryable DynamoDB errors
	switch err.(type) {
	case *types.ProvisionedThroughputExceededException:
		return true
	case *types.RequestLimitExceeded:
		return true
	case *types.InternalServerError:
		return true
	}

	// Check for AWS SDK retryable errors
	if awsErr, ok := err.(interface{ IsRetryable() bool }); ok {
		return awsErr.IsRetryable()
	}

	return false
}
