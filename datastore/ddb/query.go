/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/suparena/entityodm/datastore"
	"github.com/suparena/entityodm/storagemodels"
	"go.uber.org/zap"
)

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

// input builds the partition query. Clauses become a filter expression.
func (q *query) input() (*sdk.QueryInput, error) {
	d := q.coll.store
	filter, names, values, err := buildFilterExpression(q.spec.Clauses)
	if err != nil {
		return nil, err
	}

	if names == nil {
		names = make(map[string]string)
	}
	if values == nil {
		values = make(map[string]types.AttributeValue)
	}
	names["#pk"] = AttrPK
	values[":pk"] = &types.AttributeValueMemberS{Value: q.coll.name}

	keyCond := "#pk = :pk"
	input := &sdk.QueryInput{
		TableName:                 &d.tableName,
		KeyConditionExpression:    &keyCond,
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ConsistentRead:            aws.Bool(true),
	}
	if filter != "" {
		input.FilterExpression = &filter
	}
	return input, nil
}

// Get runs the query over every page of the collection partition. DynamoDB
// applies Limit before filtering, so ordering and the result limit are
// applied here once all matching items are read. Without an order, results
// follow the sort key, which is the record identifier.
func (q *query) Get(ctx context.Context) ([]storagemodels.Snapshot, error) {
	d := q.coll.store
	input, err := q.input()
	if err != nil {
		return nil, err
	}

	var results []storagemodels.Snapshot
	pages := 0
	paginator := sdk.NewQueryPaginator(d.client, input)
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		pages++

		for _, item := range out.Items {
			id := ""
			if sk, ok := item[AttrSK].(*types.AttributeValueMemberS); ok {
				id = sk.Value
			}
			data, err := unmarshalItem(item)
			if err != nil {
				return nil, err
			}
			if order := q.spec.Order; order != nil {
				if _, ok := data[order.Field]; !ok {
					continue
				}
			}
			results = append(results, storagemodels.Snapshot{ID: id, Data: data, Exists: true})
		}

		// Without an order the first pages already hold the result.
		if q.spec.Order == nil && q.spec.Limit > 0 && len(results) >= q.spec.Limit {
			break
		}
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

	d.logger.Debug("query completed",
		zap.String("collection", q.coll.name),
		zap.Int("pages", pages),
		zap.Int("results", len(results)))
	return results, nil
}
