/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mongodb

import (
	"context"
	"fmt"

	"github.com/suparena/entityodm/datastore"
	"github.com/suparena/entityodm/storagemodels"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var operators = map[storagemodels.Operator]string{
	storagemodels.OpEqual:          "$eq",
	storagemodels.OpGreaterThan:    "$gt",
	storagemodels.OpGreaterOrEqual: "$gte",
	storagemodels.OpLessThan:       "$lt",
	storagemodels.OpLessOrEqual:    "$lte",
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

func (q *query) Get(ctx context.Context) ([]storagemodels.Snapshot, error) {
	filter, err := buildFilter(q.spec)
	if err != nil {
		return nil, err
	}

	cur, err := q.coll.coll.Find(ctx, filter, findOptions(q.spec))
	if err != nil {
		return nil, err
	}
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	results := make([]storagemodels.Snapshot, 0, len(docs))
	for _, doc := range docs {
		results = append(results, snapshot(doc))
	}
	q.coll.store.logger.Debug("query completed",
		zap.String("collection", q.coll.name),
		zap.Int("results", len(results)))
	return results, nil
}

// buildFilter ANDs every clause. Documents lacking the ordered field are
// excluded so ordering never mixes missing values into the results.
func buildFilter(spec storagemodels.QuerySpec) (bson.D, error) {
	var and bson.A
	for _, c := range spec.Clauses {
		op, ok := operators[c.Op]
		if !ok {
			return nil, fmt.Errorf("unsupported operator %q", c.Op)
		}
		and = append(and, bson.D{{Key: c.Field, Value: bson.D{{Key: op, Value: c.Value}}}})
	}
	if spec.Order != nil {
		and = append(and, bson.D{{Key: spec.Order.Field, Value: bson.D{{Key: "$exists", Value: true}}}})
	}

	if len(and) == 0 {
		return bson.D{}, nil
	}
	return bson.D{{Key: "$and", Value: and}}, nil
}

// findOptions maps ordering and limit. Without an order, documents are
// returned by identifier.
func findOptions(spec storagemodels.QuerySpec) *options.FindOptions {
	opts := options.Find()
	if spec.Order != nil {
		dir := 1
		if spec.Order.SortDirection() == storagemodels.Desc {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: spec.Order.Field, Value: dir}, {Key: FieldID, Value: 1}})
	} else {
		opts.SetSort(bson.D{{Key: FieldID, Value: 1}})
	}
	if spec.Limit > 0 {
		opts.SetLimit(int64(spec.Limit))
	}
	return opts
}
