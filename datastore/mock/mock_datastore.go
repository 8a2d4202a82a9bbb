/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package mock provides an in-memory implementation of datastore.Connection for testing
package mock

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/suparena/entityodm/datastore"
	"github.com/suparena/entityodm/errors"
	"github.com/suparena/entityodm/storagemodels"
)

// Calls counts the operations that reached the mock, one field per provider call.
type Calls struct {
	Get    int
	Add    int
	Merge  int
	Delete int
	Query  int
	Commit int
}

// DataStore is an in-memory document database implementing datastore.Connection
type DataStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]interface{}
	idFunc      func() string
	getError    error
	addError    error
	mergeError  error
	deleteError error
	queryError  error
	commitError error
	calls       Calls
	commits     []int
}

var _ datastore.Connection = (*DataStore)(nil)

// New creates a new mock DataStore
func New() *DataStore {
	return &DataStore{
		collections: make(map[string]map[string]map[string]interface{}),
		idFunc:      uuid.NewString,
	}
}

// WithIDFunc sets the generator used for identifiers of added records
func (m *DataStore) WithIDFunc(f func() string) *DataStore {
	m.idFunc = f
	return m
}

// WithGetError makes Get operations return an error
func (m *DataStore) WithGetError(err error) *DataStore {
	m.getError = err
	return m
}

// WithAddError makes Add operations return an error
func (m *DataStore) WithAddError(err error) *DataStore {
	m.addError = err
	return m
}

// WithMergeError makes Merge operations return an error
func (m *DataStore) WithMergeError(err error) *DataStore {
	m.mergeError = err
	return m
}

// WithDeleteError makes Delete operations return an error
func (m *DataStore) WithDeleteError(err error) *DataStore {
	m.deleteError = err
	return m
}

// WithQueryError makes query execution return an error
func (m *DataStore) WithQueryError(err error) *DataStore {
	m.queryError = err
	return m
}

// WithCommitError makes batch commits return an error
func (m *DataStore) WithCommitError(err error) *DataStore {
	m.commitError = err
	return m
}

// Collection returns the named collection
func (m *DataStore) Collection(name string) datastore.Collection {
	return &collection{store: m, name: name}
}

// Helper methods for testing

// SetData directly sets the records of a collection (for testing)
func (m *DataStore) SetData(collection string, data map[string]map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()

	records := make(map[string]map[string]interface{}, len(data))
	for id, rec := range data {
		records[id] = copyMap(rec)
	}
	m.collections[collection] = records
}

// GetData returns a copy of the records of a collection (for testing)
func (m *DataStore) GetData(collection string) map[string]map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]map[string]interface{}, len(m.collections[collection]))
	for id, rec := range m.collections[collection] {
		result[id] = copyMap(rec)
	}
	return result
}

// Count returns the number of records stored in a collection
func (m *DataStore) Count(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.collections[collection])
}

// Calls returns the operation counters
func (m *DataStore) Calls() Calls {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}

// Commits returns the size of every committed batch, in commit order
func (m *DataStore) Commits() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]int, len(m.commits))
	copy(out, m.commits)
	return out
}

// ResetCalls zeroes the operation counters and the commit log
func (m *DataStore) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = Calls{}
	m.commits = nil
}

// Clear removes all data
func (m *DataStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections = make(map[string]map[string]map[string]interface{})
}

type collection struct {
	store *DataStore
	name  string
}

func (c *collection) Get(ctx context.Context, id string) (storagemodels.Snapshot, error) {
	m := c.store
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls.Get++
	if m.getError != nil {
		return storagemodels.Snapshot{}, m.getError
	}

	rec, exists := m.collections[c.name][id]
	if !exists {
		return storagemodels.Snapshot{ID: id}, nil
	}
	return storagemodels.Snapshot{ID: id, Data: copyMap(rec), Exists: true}, nil
}

func (c *collection) Add(ctx context.Context, data map[string]interface{}) (string, error) {
	m := c.store
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls.Add++
	if m.addError != nil {
		return "", m.addError
	}

	id := m.idFunc()
	records := m.records(c.name)
	if _, exists := records[id]; exists {
		return "", errors.NewAlreadyExistsError(c.name, id)
	}
	records[id] = copyMap(data)
	return id, nil
}

func (c *collection) Merge(ctx context.Context, id string, data map[string]interface{}) error {
	m := c.store
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls.Merge++
	if m.mergeError != nil {
		return m.mergeError
	}

	records := m.records(c.name)
	rec, exists := records[id]
	if !exists {
		rec = make(map[string]interface{}, len(data))
		records[id] = rec
	}
	for k, v := range data {
		rec[k] = copyValue(v)
	}
	return nil
}

func (c *collection) Delete(ctx context.Context, id string) error {
	m := c.store
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls.Delete++
	if m.deleteError != nil {
		return m.deleteError
	}
	delete(m.collections[c.name], id)
	return nil
}

func (c *collection) Query() datastore.Query {
	return &query{coll: c}
}

func (c *collection) Batch() datastore.Batch {
	return &batch{coll: c}
}

// records returns the collection map, creating it. Callers hold the write lock.
func (m *DataStore) records(name string) map[string]map[string]interface{} {
	records, ok := m.collections[name]
	if !ok {
		records = make(map[string]map[string]interface{})
		m.collections[name] = records
	}
	return records
}

type query struct {
	coll *collection
	spec storagemodels.QuerySpec
}

func (q *query) Where(field string, op storagemodels.Operator, value interface{}) datastore.Query {
	return &query{coll: q.coll, spec: q.spec.WithClause(storagemodels.Clause{Field: field, Op: op, Value: value})}
}

func (q *query) OrderBy(field string, dir storagemodels.Direction) datastore.Query {
	return &query{coll: q.coll, spec: q.spec.WithOrder(field, dir)}
}

func (q *query) Limit(n int) datastore.Query {
	return &query{coll: q.coll, spec: q.spec.WithLimit(n)}
}

// Get evaluates the query. Records lacking a filtered or ordered field never
// match. Without an order, results come back sorted by identifier.
func (q *query) Get(ctx context.Context) ([]storagemodels.Snapshot, error) {
	m := q.coll.store
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls.Query++
	if m.queryError != nil {
		return nil, m.queryError
	}

	records := m.collections[q.coll.name]
	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	results := make([]storagemodels.Snapshot, 0, len(ids))
	for _, id := range ids {
		rec := records[id]
		if !matchesAll(rec, q.spec.Clauses) {
			continue
		}
		if q.spec.Order != nil {
			if _, ok := rec[q.spec.Order.Field]; !ok {
				continue
			}
		}
		results = append(results, storagemodels.Snapshot{ID: id, Data: copyMap(rec), Exists: true})
	}

	if order := q.spec.Order; order != nil {
		desc := order.SortDirection() == storagemodels.Desc
		sort.SliceStable(results, func(i, j int) bool {
			c, _ := storagemodels.Compare(results[i].Data[order.Field], results[j].Data[order.Field])
			if desc {
				return c > 0
			}
			return c < 0
		})
	}

	if q.spec.Limit > 0 && len(results) > q.spec.Limit {
		results = results[:q.spec.Limit]
	}
	return results, nil
}

func matchesAll(rec map[string]interface{}, clauses []storagemodels.Clause) bool {
	for _, cl := range clauses {
		v, ok := rec[cl.Field]
		if !ok || !storagemodels.Matches(v, cl.Op, cl.Value) {
			return false
		}
	}
	return true
}

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

// Commit applies every delete atomically.
func (b *batch) Commit(ctx context.Context) error {
	m := b.coll.store
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls.Commit++
	if m.commitError != nil {
		return m.commitError
	}
	if len(b.ids) > datastore.MaxBatchOps {
		return errors.NewValidationError("batch", fmt.Sprintf("%d operations exceed the limit of %d", len(b.ids), datastore.MaxBatchOps))
	}

	for _, id := range b.ids {
		delete(m.collections[b.coll.name], id)
	}
	m.commits = append(m.commits, len(b.ids))
	return nil
}

func copyMap(in map[string]interface{}) map[string]interface{} {
	if in == nil {
		return nil
	}
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v interface{}) interface{} {
	switch tv := v.(type) {
	case map[string]interface{}:
		return copyMap(tv)
	case []interface{}:
		out := make([]interface{}, len(tv))
		for i, e := range tv {
			out[i] = copyValue(e)
		}
		return out
	}
	return v
}
