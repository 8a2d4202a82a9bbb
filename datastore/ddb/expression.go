/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-openapi/strfmt"
	"github.com/suparena/entityodm/storagemodels"
)

// buildUpdateExpression transforms a map of field->value into:
//   - an "update expression" (e.g., "SET #f0 = :v0, #f1 = :v1")
//   - a corresponding map of expression attribute names
//   - a corresponding map of expression attribute values
//
// Fields are numbered in sorted order.
func buildUpdateExpression(updates map[string]interface{}) (string,
	map[string]string,
	map[string]types.AttributeValue,
	error) {

	if err := checkKeyFields(updates); err != nil {
		return "", nil, nil, err
	}

	fields := make([]string, 0, len(updates))
	for field := range updates {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	setClauses := make([]string, 0, len(fields))
	exprAttrNames := make(map[string]string, len(fields))
	exprAttrValues := make(map[string]types.AttributeValue, len(fields))

	for i, field := range fields {
		placeholderName := fmt.Sprintf("#f%d", i)
		placeholderValue := fmt.Sprintf(":v%d", i)

		av, err := attributevalue.Marshal(normalizeValue(updates[field]))
		if err != nil {
			return "", nil, nil, fmt.Errorf("failed to marshal update value for field '%s': %w", field, err)
		}

		setClauses = append(setClauses, fmt.Sprintf("%s = %s", placeholderName, placeholderValue))
		exprAttrNames[placeholderName] = field
		exprAttrValues[placeholderValue] = av
	}

	return "SET " + strings.Join(setClauses, ", "), exprAttrNames, exprAttrValues, nil
}

var comparators = map[storagemodels.Operator]string{
	storagemodels.OpEqual:          "=",
	storagemodels.OpGreaterThan:    ">",
	storagemodels.OpGreaterOrEqual: ">=",
	storagemodels.OpLessThan:       "<",
	storagemodels.OpLessOrEqual:    "<=",
}

// buildFilterExpression ANDs the clauses into a filter expression. Names are
// bound as #nN and values as :cN. An empty clause list yields an empty
// expression.
func buildFilterExpression(clauses []storagemodels.Clause) (string,
	map[string]string,
	map[string]types.AttributeValue,
	error) {

	if len(clauses) == 0 {
		return "", nil, nil, nil
	}

	names := make(map[string]string)
	values := make(map[string]types.AttributeValue, len(clauses))
	nameRefs := make(map[string]string)
	conditions := make([]string, 0, len(clauses))

	for i, c := range clauses {
		cmp, ok := comparators[c.Op]
		if !ok {
			return "", nil, nil, fmt.Errorf("unsupported operator %q", c.Op)
		}

		ref, seen := nameRefs[c.Field]
		if !seen {
			ref = fmt.Sprintf("#n%d", len(nameRefs))
			nameRefs[c.Field] = ref
			names[ref] = c.Field
		}

		av, err := attributevalue.Marshal(normalizeValue(c.Value))
		if err != nil {
			return "", nil, nil, fmt.Errorf("failed to marshal filter value for field '%s': %w", c.Field, err)
		}
		placeholder := fmt.Sprintf(":c%d", i)
		values[placeholder] = av
		conditions = append(conditions, fmt.Sprintf("%s %s %s", ref, cmp, placeholder))
	}

	return strings.Join(conditions, " AND "), names, values, nil
}

// sortableTime formats times in UTC with a fixed nine digit fraction, so that
// stored strings compare in chronological order.
const sortableTime = "2006-01-02T15:04:05.000000000Z07:00"

// normalize prepares record data for attributevalue, which has no notion of
// strfmt.DateTime. Times are stored as fixed-width RFC 3339 strings in UTC.
func normalize(data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v interface{}) interface{} {
	switch tv := v.(type) {
	case time.Time:
		return formatTime(tv)
	case *time.Time:
		if tv == nil {
			return nil
		}
		return formatTime(*tv)
	case strfmt.DateTime:
		return formatTime(time.Time(tv))
	case *strfmt.DateTime:
		if tv == nil {
			return nil
		}
		return formatTime(time.Time(*tv))
	case map[string]interface{}:
		return normalize(tv)
	case []interface{}:
		out := make([]interface{}, len(tv))
		for i, e := range tv {
			out[i] = normalizeValue(e)
		}
		return out
	}
	return v
}

func formatTime(t time.Time) string {
	return t.UTC().Format(sortableTime)
}
