/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeAPI is an in-memory table keyed by PK and SK. Filter expressions are
// evaluated per page, supporting the "#n op :c AND ..." form the query
// builder emits.
type fakeAPI struct {
	mu       sync.Mutex
	items    map[string]map[string]map[string]types.AttributeValue
	pageSize int

	queries     []*sdk.QueryInput
	batchWrites [][]types.WriteRequest
	// unprocessed makes the next calls to BatchWriteItem hand back that many
	// requests as unprocessed.
	unprocessed []int
	batchErr    error
	getErr      error
}

var _ API = (*fakeAPI)(nil)

func newFakeAPI() *fakeAPI {
	return &fakeAPI{items: make(map[string]map[string]map[string]types.AttributeValue)}
}

func keyOf(key map[string]types.AttributeValue) (string, string) {
	pk := key[AttrPK].(*types.AttributeValueMemberS).Value
	sk := key[AttrSK].(*types.AttributeValueMemberS).Value
	return pk, sk
}

func (f *fakeAPI) put(pk, sk string, item map[string]types.AttributeValue) {
	if f.items[pk] == nil {
		f.items[pk] = make(map[string]map[string]types.AttributeValue)
	}
	f.items[pk][sk] = item
}

func (f *fakeAPI) GetItem(ctx context.Context, in *sdk.GetItemInput, _ ...func(*sdk.Options)) (*sdk.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	pk, sk := keyOf(in.Key)
	return &sdk.GetItemOutput{Item: f.items[pk][sk]}, nil
}

func (f *fakeAPI) PutItem(ctx context.Context, in *sdk.PutItemInput, _ ...func(*sdk.Options)) (*sdk.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pk, sk := keyOf(in.Item)
	if in.ConditionExpression != nil {
		if _, exists := f.items[pk][sk]; exists {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	f.put(pk, sk, in.Item)
	return &sdk.PutItemOutput{}, nil
}

func (f *fakeAPI) UpdateItem(ctx context.Context, in *sdk.UpdateItemInput, _ ...func(*sdk.Options)) (*sdk.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pk, sk := keyOf(in.Key)
	item, ok := f.items[pk][sk]
	if !ok {
		item = map[string]types.AttributeValue{AttrPK: in.Key[AttrPK], AttrSK: in.Key[AttrSK]}
		f.put(pk, sk, item)
	}
	for ref, field := range in.ExpressionAttributeNames {
		item[field] = in.ExpressionAttributeValues[":v"+strings.TrimPrefix(ref, "#f")]
	}
	return &sdk.UpdateItemOutput{}, nil
}

func (f *fakeAPI) DeleteItem(ctx context.Context, in *sdk.DeleteItemInput, _ ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pk, sk := keyOf(in.Key)
	delete(f.items[pk], sk)
	return &sdk.DeleteItemOutput{}, nil
}

func (f *fakeAPI) Query(ctx context.Context, in *sdk.QueryInput, _ ...func(*sdk.Options)) (*sdk.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, in)

	pk := in.ExpressionAttributeValues[":pk"].(*types.AttributeValueMemberS).Value
	sks := make([]string, 0, len(f.items[pk]))
	for sk := range f.items[pk] {
		sks = append(sks, sk)
	}
	sort.Strings(sks)

	if in.ExclusiveStartKey != nil {
		_, after := keyOf(in.ExclusiveStartKey)
		i := sort.SearchStrings(sks, after)
		if i < len(sks) && sks[i] == after {
			i++
		}
		sks = sks[i:]
	}

	out := &sdk.QueryOutput{}
	if f.pageSize > 0 && len(sks) > f.pageSize {
		sks = sks[:f.pageSize]
		last := f.items[pk][sks[len(sks)-1]]
		out.LastEvaluatedKey = map[string]types.AttributeValue{AttrPK: last[AttrPK], AttrSK: last[AttrSK]}
	}
	out.ScannedCount = int32(len(sks))
	for _, sk := range sks {
		item := f.items[pk][sk]
		ok, err := matchFilter(in, item)
		if err != nil {
			return nil, err
		}
		if ok {
			out.Items = append(out.Items, item)
		}
	}
	out.Count = int32(len(out.Items))
	return out, nil
}

// matchFilter evaluates the FilterExpression of in against item. A missing
// attribute or a type mismatch fails the condition, as in DynamoDB.
func matchFilter(in *sdk.QueryInput, item map[string]types.AttributeValue) (bool, error) {
	if in.FilterExpression == nil || *in.FilterExpression == "" {
		return true, nil
	}
	for _, cond := range strings.Split(*in.FilterExpression, " AND ") {
		parts := strings.Fields(cond)
		if len(parts) != 3 {
			return false, fmt.Errorf("fake: unsupported condition %q", cond)
		}
		field, ok := in.ExpressionAttributeNames[parts[0]]
		if !ok {
			return false, fmt.Errorf("fake: unbound name %s", parts[0])
		}
		want, ok := in.ExpressionAttributeValues[parts[2]]
		if !ok {
			return false, fmt.Errorf("fake: unbound value %s", parts[2])
		}
		got, ok := item[field]
		if !ok {
			return false, nil
		}
		c, comparable := compareAttr(got, want)
		if !comparable {
			return false, nil
		}
		var hit bool
		switch parts[1] {
		case "=":
			hit = c == 0
		case ">":
			hit = c > 0
		case ">=":
			hit = c >= 0
		case "<":
			hit = c < 0
		case "<=":
			hit = c <= 0
		default:
			return false, fmt.Errorf("fake: unsupported comparator %s", parts[1])
		}
		if !hit {
			return false, nil
		}
	}
	return true, nil
}

func compareAttr(a, b types.AttributeValue) (int, bool) {
	switch av := a.(type) {
	case *types.AttributeValueMemberS:
		bv, ok := b.(*types.AttributeValueMemberS)
		if !ok {
			return 0, false
		}
		return strings.Compare(av.Value, bv.Value), true
	case *types.AttributeValueMemberN:
		bv, ok := b.(*types.AttributeValueMemberN)
		if !ok {
			return 0, false
		}
		x, errA := strconv.ParseFloat(av.Value, 64)
		y, errB := strconv.ParseFloat(bv.Value, 64)
		if errA != nil || errB != nil {
			return 0, false
		}
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		}
		return 0, true
	case *types.AttributeValueMemberBOOL:
		bv, ok := b.(*types.AttributeValueMemberBOOL)
		if !ok {
			return 0, false
		}
		if av.Value != bv.Value {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func (f *fakeAPI) BatchWriteItem(ctx context.Context, in *sdk.BatchWriteItemInput, _ ...func(*sdk.Options)) (*sdk.BatchWriteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.batchErr != nil {
		return nil, f.batchErr
	}

	out := &sdk.BatchWriteItemOutput{}
	for table, requests := range in.RequestItems {
		f.batchWrites = append(f.batchWrites, requests)

		skip := 0
		if len(f.unprocessed) > 0 {
			skip, f.unprocessed = min(f.unprocessed[0], len(requests)), f.unprocessed[1:]
		}
		for _, r := range requests[skip:] {
			pk, sk := keyOf(r.DeleteRequest.Key)
			delete(f.items[pk], sk)
		}
		if skip > 0 {
			out.UnprocessedItems = map[string][]types.WriteRequest{table: requests[:skip]}
		}
	}
	return out, nil
}

func (f *fakeAPI) count(pk string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items[pk])
}
