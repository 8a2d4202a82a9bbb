/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-openapi/strfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suparena/entityodm/errors"
	"github.com/suparena/entityodm/storagemodels"
)

func newTestStore(api *fakeAPI) *DataStore {
	ids := 0
	d := New(api, "test-table", WithRetries(2, time.Millisecond))
	d.idFunc = func() string {
		ids++
		return fmt.Sprintf("id-%03d", ids)
	}
	return d
}

func TestCollectionCRUD(t *testing.T) {
	ctx := context.Background()

	t.Run("AddThenGet", func(t *testing.T) {
		api := newFakeAPI()
		users := newTestStore(api).Collection("users")

		id, err := users.Add(ctx, map[string]interface{}{"name": "Ada", "age": 36})
		require.NoError(t, err)
		assert.Equal(t, "id-001", id)

		snap, err := users.Get(ctx, id)
		require.NoError(t, err)
		assert.True(t, snap.Exists)
		assert.Equal(t, id, snap.ID)
		assert.Equal(t, map[string]interface{}{"name": "Ada", "age": float64(36)}, snap.Data)
	})

	t.Run("GetMissing", func(t *testing.T) {
		snap, err := newTestStore(newFakeAPI()).Collection("users").Get(ctx, "nope")
		require.NoError(t, err)
		assert.False(t, snap.Exists)
		assert.Nil(t, snap.Data)
	})

	t.Run("GetErrorPassesThrough", func(t *testing.T) {
		api := newFakeAPI()
		api.getErr = fmt.Errorf("throttled")
		_, err := newTestStore(api).Collection("users").Get(ctx, "u1")
		assert.Same(t, api.getErr, err)
	})

	t.Run("AddCollision", func(t *testing.T) {
		api := newFakeAPI()
		d := newTestStore(api)
		d.idFunc = func() string { return "fixed" }
		users := d.Collection("users")

		_, err := users.Add(ctx, map[string]interface{}{"name": "Ada"})
		require.NoError(t, err)
		_, err = users.Add(ctx, map[string]interface{}{"name": "Bob"})
		assert.True(t, errors.IsAlreadyExists(err))
	})

	t.Run("MergeKeepsOtherFields", func(t *testing.T) {
		api := newFakeAPI()
		users := newTestStore(api).Collection("users")
		id, err := users.Add(ctx, map[string]interface{}{"name": "Ada", "nickname": "countess"})
		require.NoError(t, err)

		require.NoError(t, users.Merge(ctx, id, map[string]interface{}{"name": "Ada Lovelace", "age": 37}))

		snap, err := users.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{
			"name":     "Ada Lovelace",
			"nickname": "countess",
			"age":      float64(37),
		}, snap.Data)
	})

	t.Run("MergeCreatesMissing", func(t *testing.T) {
		api := newFakeAPI()
		users := newTestStore(api).Collection("users")

		require.NoError(t, users.Merge(ctx, "u9", nil))
		snap, err := users.Get(ctx, "u9")
		require.NoError(t, err)
		assert.True(t, snap.Exists)
		assert.Empty(t, snap.Data)
	})

	t.Run("Delete", func(t *testing.T) {
		api := newFakeAPI()
		users := newTestStore(api).Collection("users")
		id, err := users.Add(ctx, map[string]interface{}{"name": "Ada"})
		require.NoError(t, err)

		require.NoError(t, users.Delete(ctx, id))
		assert.Equal(t, 0, api.count("users"))
	})

	t.Run("KeyFieldsRejected", func(t *testing.T) {
		api := newFakeAPI()
		users := newTestStore(api).Collection("users")

		_, err := users.Add(ctx, map[string]interface{}{AttrPK: "tenant-1", "name": "Ada"})
		assert.True(t, errors.IsValidationError(err), "got %v", err)
		assert.Equal(t, 0, api.count("users"))

		err = users.Merge(ctx, "u1", map[string]interface{}{AttrSK: "other", "name": "Ada"})
		assert.True(t, errors.IsValidationError(err), "got %v", err)
		snap, err := users.Get(ctx, "u1")
		require.NoError(t, err)
		assert.False(t, snap.Exists)
	})

	t.Run("CollectionsArePartitions", func(t *testing.T) {
		api := newFakeAPI()
		d := newTestStore(api)
		_, err := d.Collection("users").Add(ctx, map[string]interface{}{"name": "Ada"})
		require.NoError(t, err)

		assert.Equal(t, 1, api.count("users"))
		assert.Equal(t, 0, api.count("orders"))
	})
}

func seed(t *testing.T, d *DataStore, coll string, records ...map[string]interface{}) {
	t.Helper()
	for _, rec := range records {
		_, err := d.Collection(coll).Add(context.Background(), rec)
		require.NoError(t, err)
	}
}

func snapshotIDs(snaps []storagemodels.Snapshot) []string {
	res := make([]string, 0, len(snaps))
	for _, s := range snaps {
		res = append(res, s.ID)
	}
	return res
}

func TestQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("PagesOrderAndLimit", func(t *testing.T) {
		api := newFakeAPI()
		api.pageSize = 2
		d := newTestStore(api)
		seed(t, d, "scores",
			map[string]interface{}{"n": 3},
			map[string]interface{}{"n": 9},
			map[string]interface{}{"other": true},
			map[string]interface{}{"n": 1},
			map[string]interface{}{"n": 7},
		)

		snaps, err := d.Collection("scores").Query().
			OrderBy("n", storagemodels.Desc).
			Limit(3).
			Get(ctx)
		require.NoError(t, err)

		require.Len(t, snaps, 3)
		assert.Equal(t, float64(9), snaps[0].Data["n"])
		assert.Equal(t, float64(7), snaps[1].Data["n"])
		assert.Equal(t, float64(3), snaps[2].Data["n"])
		assert.Equal(t, "id-002", snaps[0].ID)
		assert.Len(t, api.queries, 3)
	})

	t.Run("DefaultOrderIsID", func(t *testing.T) {
		api := newFakeAPI()
		d := newTestStore(api)
		seed(t, d, "scores", map[string]interface{}{"n": 2}, map[string]interface{}{"n": 1})

		snaps, err := d.Collection("scores").Query().Get(ctx)
		require.NoError(t, err)
		require.Len(t, snaps, 2)
		assert.Equal(t, "id-001", snaps[0].ID)
		assert.Equal(t, "id-002", snaps[1].ID)
		assert.NotContains(t, snaps[0].Data, AttrPK)
		assert.NotContains(t, snaps[0].Data, AttrSK)
	})

	t.Run("FiltersRecords", func(t *testing.T) {
		api := newFakeAPI()
		api.pageSize = 2
		d := newTestStore(api)
		seed(t, d, "people",
			map[string]interface{}{"name": "Ann", "age": 17},
			map[string]interface{}{"name": "Bob", "age": 18},
			map[string]interface{}{"name": "Cid", "age": 40},
			map[string]interface{}{"name": "Dee", "age": 41},
			map[string]interface{}{"name": "Eve"},
			map[string]interface{}{"name": "Bob", "age": 30},
		)

		snaps, err := d.Collection("people").Query().
			Where("age", storagemodels.OpGreaterThan, 17).
			Where("age", storagemodels.OpLessOrEqual, 40).
			Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"id-002", "id-003", "id-006"}, snapshotIDs(snaps))

		snaps, err = d.Collection("people").Query().
			Where("age", storagemodels.OpGreaterOrEqual, 18).
			Where("name", storagemodels.OpEqual, "Bob").
			OrderBy("age", storagemodels.Desc).
			Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"id-006", "id-002"}, snapshotIDs(snaps))
	})

	t.Run("TimesOrderChronologically", func(t *testing.T) {
		api := newFakeAPI()
		d := newTestStore(api)
		events := d.Collection("events")
		base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

		require.NoError(t, events.Merge(ctx, "a", map[string]interface{}{"at": base}))
		require.NoError(t, events.Merge(ctx, "b", map[string]interface{}{"at": strfmt.DateTime(base.Add(500 * time.Millisecond))}))
		require.NoError(t, events.Merge(ctx, "c", map[string]interface{}{"at": base.Add(time.Second).In(time.FixedZone("CET", 3600))}))

		snaps, err := events.Query().OrderBy("at", storagemodels.Asc).Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, snapshotIDs(snaps))

		snaps, err = events.Query().OrderBy("at", storagemodels.Desc).Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "b", "a"}, snapshotIDs(snaps))

		snaps, err = events.Query().
			Where("at", storagemodels.OpGreaterThan, base).
			Where("at", storagemodels.OpLessThan, base.Add(time.Second)).
			Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, snapshotIDs(snaps))
	})

	t.Run("FilterExpression", func(t *testing.T) {
		api := newFakeAPI()
		d := newTestStore(api)

		_, err := d.Collection("people").Query().
			Where("age", storagemodels.OpGreaterOrEqual, 18).
			Where("name", storagemodels.OpEqual, "Ada").
			Get(ctx)
		require.NoError(t, err)

		require.Len(t, api.queries, 1)
		in := api.queries[0]
		assert.Equal(t, "#pk = :pk", aws.ToString(in.KeyConditionExpression))
		assert.Equal(t, "#n0 >= :c0 AND #n1 = :c1", aws.ToString(in.FilterExpression))
		assert.Equal(t, map[string]string{"#pk": AttrPK, "#n0": "age", "#n1": "name"}, in.ExpressionAttributeNames)
		assert.Equal(t, &types.AttributeValueMemberS{Value: "people"}, in.ExpressionAttributeValues[":pk"])
		assert.Equal(t, &types.AttributeValueMemberN{Value: "18"}, in.ExpressionAttributeValues[":c0"])
		assert.Equal(t, &types.AttributeValueMemberS{Value: "Ada"}, in.ExpressionAttributeValues[":c1"])
	})
}

func TestBuildFilterExpression(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		expr, names, values, err := buildFilterExpression(nil)
		require.NoError(t, err)
		assert.Empty(t, expr)
		assert.Nil(t, names)
		assert.Nil(t, values)
	})

	t.Run("RepeatedField", func(t *testing.T) {
		expr, names, _, err := buildFilterExpression(storagemodels.Where{
			"age": storagemodels.Condition{GT: 1, LTE: 9},
		}.Clauses())
		require.NoError(t, err)
		assert.Equal(t, "#n0 > :c0 AND #n0 <= :c1", expr)
		assert.Equal(t, map[string]string{"#n0": "age"}, names)
	})

	t.Run("UnknownOperator", func(t *testing.T) {
		_, _, _, err := buildFilterExpression([]storagemodels.Clause{{Field: "a", Op: "!=", Value: 1}})
		assert.Error(t, err)
	})
}

func TestBuildUpdateExpression(t *testing.T) {
	at := time.Date(2025, 2, 3, 4, 5, 6, 0, time.FixedZone("EST", -5*3600))

	expr, names, values, err := buildUpdateExpression(map[string]interface{}{
		"name":      "Ada",
		"age":       36,
		"updatedAt": strfmt.DateTime(at),
	})
	require.NoError(t, err)
	assert.Equal(t, "SET #f0 = :v0, #f1 = :v1, #f2 = :v2", expr)
	assert.Equal(t, map[string]string{"#f0": "age", "#f1": "name", "#f2": "updatedAt"}, names)
	assert.Equal(t, &types.AttributeValueMemberN{Value: "36"}, values[":v0"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "2025-02-03T09:05:06.000000000Z"}, values[":v2"])

	_, _, _, err = buildUpdateExpression(map[string]interface{}{AttrPK: "x"})
	assert.True(t, errors.IsValidationError(err))
}

func TestNormalizeValueSortsChronologically(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	times := []time.Time{
		base,
		base.Add(time.Nanosecond),
		base.Add(500 * time.Millisecond),
		base.Add(time.Second),
		base.Add(time.Second + 10*time.Millisecond),
	}
	for i := 1; i < len(times); i++ {
		prev := normalizeValue(times[i-1]).(string)
		cur := normalizeValue(strfmt.DateTime(times[i])).(string)
		assert.Len(t, cur, len(prev))
		assert.Less(t, prev, cur)
	}
	assert.Equal(t, "2024-01-01T00:00:00.500000000Z", normalizeValue(base.Add(500*time.Millisecond)))
}

func TestBatchCommit(t *testing.T) {
	ctx := context.Background()

	seedN := func(t *testing.T, d *DataStore, n int) []string {
		ids := make([]string, 0, n)
		for i := 0; i < n; i++ {
			id, err := d.Collection("bulk").Add(ctx, map[string]interface{}{"i": i})
			require.NoError(t, err)
			ids = append(ids, id)
		}
		return ids
	}

	t.Run("ChunksOf25", func(t *testing.T) {
		api := newFakeAPI()
		d := newTestStore(api)
		ids := seedN(t, d, 60)

		b := d.Collection("bulk").Batch()
		for _, id := range ids {
			b.Delete(id)
		}
		assert.Equal(t, 60, b.Len())
		require.NoError(t, b.Commit(ctx))

		require.Len(t, api.batchWrites, 3)
		assert.Len(t, api.batchWrites[0], 25)
		assert.Len(t, api.batchWrites[1], 25)
		assert.Len(t, api.batchWrites[2], 10)
		assert.Equal(t, 0, api.count("bulk"))
	})

	t.Run("RetriesUnprocessed", func(t *testing.T) {
		api := newFakeAPI()
		api.unprocessed = []int{4, 1}
		d := newTestStore(api)
		ids := seedN(t, d, 10)

		b := d.Collection("bulk").Batch()
		for _, id := range ids {
			b.Delete(id)
		}
		require.NoError(t, b.Commit(ctx))

		require.Len(t, api.batchWrites, 3)
		assert.Len(t, api.batchWrites[1], 4)
		assert.Len(t, api.batchWrites[2], 1)
		assert.Equal(t, 0, api.count("bulk"))
	})

	t.Run("GivesUpAfterRetries", func(t *testing.T) {
		api := newFakeAPI()
		api.unprocessed = []int{1, 1, 1}
		d := newTestStore(api)
		ids := seedN(t, d, 2)

		b := d.Collection("bulk").Batch()
		for _, id := range ids {
			b.Delete(id)
		}
		err := b.Commit(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unprocessed")
	})

	t.Run("NonRetryableError", func(t *testing.T) {
		api := newFakeAPI()
		api.batchErr = fmt.Errorf("access denied")
		d := newTestStore(api)

		b := d.Collection("bulk").Batch()
		b.Delete("x")
		assert.Same(t, api.batchErr, b.Commit(ctx))
		assert.Empty(t, api.batchWrites)
	})

	t.Run("TooManyOperations", func(t *testing.T) {
		api := newFakeAPI()
		b := newTestStore(api).Collection("bulk").Batch()
		for i := 0; i < 501; i++ {
			b.Delete(fmt.Sprintf("x%d", i))
		}
		err := b.Commit(ctx)
		assert.True(t, errors.IsValidationError(err))
		assert.Empty(t, api.batchWrites)
	})
}

func TestIsRetryableError(t *testing.T) {
	assert.True(t, isRetryableError(&types.ProvisionedThroughputExceededException{}))
	assert.True(t, isRetryableError(&types.RequestLimitExceeded{}))
	assert.True(t, isRetryableError(&types.InternalServerError{}))
	assert.False(t, isRetryableError(fmt.Errorf("boom")))
}
