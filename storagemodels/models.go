/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"fmt"
	"sort"

	"github.com/suparena/entityodm/errors"
)

// Operator is a comparison operator understood by every datastore query builder.
type Operator string

const (
	OpEqual          Operator = "=="
	OpGreaterThan    Operator = ">"
	OpGreaterOrEqual Operator = ">="
	OpLessThan       Operator = "<"
	OpLessOrEqual    Operator = "<="
)

// Direction is the sort direction of an ordered query.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Snapshot is a record as returned by a datastore.
type Snapshot struct {
	// ID is the record identifier inside its collection.
	ID string
	// Data holds the record fields. The identifier is never part of Data.
	Data map[string]interface{}
	// Exists is false when the requested record was not found.
	Exists bool
}

// Condition holds the comparison constraints for a single field.
// A nil operand means the operator is not set. Every set operand is applied
// as an independent constraint, and all of them must hold.
type Condition struct {
	Equals interface{} `json:"equals,omitempty" yaml:"equals,omitempty"`
	GT     interface{} `json:"gt,omitempty" yaml:"gt,omitempty"`
	GTE    interface{} `json:"gte,omitempty" yaml:"gte,omitempty"`
	LT     interface{} `json:"lt,omitempty" yaml:"lt,omitempty"`
	LTE    interface{} `json:"lte,omitempty" yaml:"lte,omitempty"`
}

// Eq returns a Condition matching values equal to v.
func Eq(v interface{}) Condition { return Condition{Equals: v} }

// Gt returns a Condition matching values greater than v.
func Gt(v interface{}) Condition { return Condition{GT: v} }

// Gte returns a Condition matching values greater than or equal to v.
func Gte(v interface{}) Condition { return Condition{GTE: v} }

// Lt returns a Condition matching values less than v.
func Lt(v interface{}) Condition { return Condition{LT: v} }

// Lte returns a Condition matching values less than or equal to v.
func Lte(v interface{}) Condition { return Condition{LTE: v} }

// Clauses expands the condition into one clause per set operator, in the
// order equals, gt, gte, lt, lte.
func (c Condition) Clauses(field string) []Clause {
	var out []Clause
	if c.Equals != nil {
		out = append(out, Clause{Field: field, Op: OpEqual, Value: c.Equals})
	}
	if c.GT != nil {
		out = append(out, Clause{Field: field, Op: OpGreaterThan, Value: c.GT})
	}
	if c.GTE != nil {
		out = append(out, Clause{Field: field, Op: OpGreaterOrEqual, Value: c.GTE})
	}
	if c.LT != nil {
		out = append(out, Clause{Field: field, Op: OpLessThan, Value: c.LT})
	}
	if c.LTE != nil {
		out = append(out, Clause{Field: field, Op: OpLessOrEqual, Value: c.LTE})
	}
	return out
}

// Where maps field names to their conditions.
type Where map[string]Condition

// Clauses flattens the filter into clauses. Fields are visited in sorted
// order so the same filter always produces the same provider calls.
func (w Where) Clauses() []Clause {
	fields := make([]string, 0, len(w))
	for f := range w {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var out []Clause
	for _, f := range fields {
		out = append(out, w[f].Clauses(f)...)
	}
	return out
}

// OrderBy sorts results on a single field.
type OrderBy struct {
	Field     string    `json:"field" yaml:"field"`
	Direction Direction `json:"direction,omitempty" yaml:"direction,omitempty"`
}

// QueryOptions is the declarative query accepted by FindMany and DeleteMany.
type QueryOptions struct {
	// Where ANDs together the conditions of every field.
	Where Where `json:"where,omitempty" yaml:"where,omitempty"`
	// OrderBy optionally orders the results. Only one field can be used.
	OrderBy *OrderBy `json:"orderBy,omitempty" yaml:"orderBy,omitempty"`
	// Limit caps the number of results. Zero means no limit.
	Limit int `json:"limit,omitempty" yaml:"limit,omitempty"`
}

// Validate checks the options before they are translated into provider calls.
func (o QueryOptions) Validate() error {
	if o.Limit < 0 {
		return errors.NewValidationError("limit", fmt.Sprintf("must not be negative, got %d", o.Limit))
	}
	for field := range o.Where {
		if field == "" {
			return errors.NewValidationError("where", "field name must not be empty")
		}
	}
	if o.OrderBy != nil {
		if o.OrderBy.Field == "" {
			return errors.NewValidationError("orderBy", "field name must not be empty")
		}
		switch o.OrderBy.Direction {
		case "", Asc, Desc:
		default:
			return errors.NewValidationError("orderBy", fmt.Sprintf("unknown direction %q", o.OrderBy.Direction))
		}
	}
	return nil
}

// SortDirection returns the effective direction, defaulting to ascending.
func (o OrderBy) SortDirection() Direction {
	if o.Direction == "" {
		return Asc
	}
	return o.Direction
}

// Clause is a single field/operator/value constraint.
type Clause struct {
	Field string
	Op    Operator
	Value interface{}
}

// QuerySpec accumulates the calls made on a query builder. Datastores embed it
// and translate it into their own query language when the query runs.
type QuerySpec struct {
	Clauses []Clause
	Order   *OrderBy
	Limit   int
}

// WithClause returns a copy of the query with the clause appended.
func (s QuerySpec) WithClause(c Clause) QuerySpec {
	clauses := make([]Clause, len(s.Clauses), len(s.Clauses)+1)
	copy(clauses, s.Clauses)
	s.Clauses = append(clauses, c)
	return s
}

// WithOrder returns a copy of the query ordered by field.
func (s QuerySpec) WithOrder(field string, dir Direction) QuerySpec {
	s.Order = &OrderBy{Field: field, Direction: dir}
	return s
}

// WithLimit returns a copy of the query limited to n results.
func (s QuerySpec) WithLimit(n int) QuerySpec {
	s.Limit = n
	return s
}
