/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/suparena/entityodm/errors"
	"github.com/suparena/entityodm/storagemodels"
)

// ParseWhere builds a filter from field:op:value expressions. Expressions on
// the same field are combined into one condition; setting the same operator
// twice is an error.
func ParseWhere(exprs []string) (storagemodels.Where, error) {
	if len(exprs) == 0 {
		return nil, nil
	}

	where := make(storagemodels.Where, len(exprs))
	for _, expr := range exprs {
		parts := strings.SplitN(expr, ":", 3)
		if len(parts) != 3 || parts[0] == "" {
			return nil, errors.NewValidationError("where", fmt.Sprintf("expected field:op:value, got %q", expr))
		}
		field, op, raw := parts[0], strings.ToLower(parts[1]), parts[2]

		cond := where[field]
		var slot *interface{}
		switch op {
		case "eq", "==":
			slot = &cond.Equals
		case "gt", ">":
			slot = &cond.GT
		case "gte", ">=":
			slot = &cond.GTE
		case "lt", "<":
			slot = &cond.LT
		case "lte", "<=":
			slot = &cond.LTE
		default:
			return nil, errors.NewValidationError("where", fmt.Sprintf("unknown operator %q in %q", parts[1], expr))
		}
		if *slot != nil {
			return nil, errors.NewValidationError("where", fmt.Sprintf("operator %s set twice for field %q", op, field))
		}
		*slot = ParseValue(raw)
		where[field] = cond
	}
	return where, nil
}

// ParseOrder parses field[:asc|desc]. An empty string means no ordering.
func ParseOrder(expr string) (*storagemodels.OrderBy, error) {
	if expr == "" {
		return nil, nil
	}
	field, dir, _ := strings.Cut(expr, ":")
	if field == "" {
		return nil, errors.NewValidationError("order", fmt.Sprintf("missing field in %q", expr))
	}

	orderBy := &storagemodels.OrderBy{Field: field, Direction: storagemodels.Direction(strings.ToLower(dir))}
	switch orderBy.Direction {
	case "", storagemodels.Asc, storagemodels.Desc:
		return orderBy, nil
	}
	return nil, errors.NewValidationError("order", fmt.Sprintf("unknown direction %q", dir))
}

// ParseValue interprets a command line operand as an integer, a float, a
// boolean or an RFC 3339 time, in that order, and falls back to the string.
// Quoting the value in single quotes forces a string.
func ParseValue(raw string) interface{} {
	if len(raw) >= 2 && strings.HasPrefix(raw, "'") && strings.HasSuffix(raw, "'") {
		return raw[1 : len(raw)-1]
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t
	}
	return raw
}
