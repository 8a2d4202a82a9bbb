/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package entityodm

import (
	"context"

	"github.com/suparena/entityodm/datastore"
	"github.com/suparena/entityodm/storagemodels"
	"go.uber.org/zap"
)

// FindMany returns the entities matching opts. Results follow opts.OrderBy
// when set and the datastore's default order otherwise.
func (m *Model[T]) FindMany(ctx context.Context, opts storagemodels.QueryOptions) ([]*Entity[T], error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	q := applyWhere(m.coll.Query(), opts.Where)
	if opts.OrderBy != nil {
		q = q.OrderBy(opts.OrderBy.Field, opts.OrderBy.SortDirection())
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}

	snaps, err := q.Get(ctx)
	if err != nil {
		return nil, err
	}
	return m.fromSnapshots(snaps)
}

// DeleteMany deletes every entity matching opts.Where and returns their state
// as read before the deletion. Ordering and limit are ignored. Deletes are
// committed in sequential batches of at most datastore.MaxBatchOps.
func (m *Model[T]) DeleteMany(ctx context.Context, opts storagemodels.QueryOptions) ([]*Entity[T], error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	snaps, err := applyWhere(m.coll.Query(), opts.Where).Get(ctx)
	if err != nil {
		return nil, err
	}
	entities, err := m.fromSnapshots(snaps)
	if err != nil {
		return nil, err
	}

	for start, n := 0, 1; start < len(snaps); start, n = start+m.batchSize, n+1 {
		end := min(start+m.batchSize, len(snaps))

		b := m.coll.Batch()
		for _, snap := range snaps[start:end] {
			b.Delete(snap.ID)
		}
		if err := b.Commit(ctx); err != nil {
			return nil, err
		}
		m.logger.Debug("committed delete batch", zap.Int("batch", n), zap.Int("size", end-start))
	}
	return entities, nil
}

// applyWhere adds one query constraint per set operator of every condition.
func applyWhere(q datastore.Query, where storagemodels.Where) datastore.Query {
	for _, c := range where.Clauses() {
		q = q.Where(c.Field, c.Op, c.Value)
	}
	return q
}

func (m *Model[T]) fromSnapshots(snaps []storagemodels.Snapshot) ([]*Entity[T], error) {
	entities := make([]*Entity[T], 0, len(snaps))
	for _, snap := range snaps {
		e, err := m.fromSnapshot(snap.ID, snap.Data)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, nil
}
