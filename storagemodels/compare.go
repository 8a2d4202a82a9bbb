/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"reflect"
	"strings"
	"time"
)

// Compare orders two field values. Numbers of any Go numeric kind compare
// with each other, as do strings, booleans and times (including values that
// expose a Time() method or are defined on time.Time). ok is false when the
// values are not comparable.
func Compare(a, b interface{}) (c int, ok bool) {
	if at, isTime := asTime(a); isTime {
		bt, isTime := asTime(b)
		if !isTime {
			return 0, false
		}
		return at.Compare(bt), true
	}

	if af, isNum := asFloat(a); isNum {
		bf, isNum := asFloat(b)
		if !isNum {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		}
		return 0, true
	}

	switch av := a.(type) {
	case string:
		bv, isString := b.(string)
		if !isString {
			return 0, false
		}
		return strings.Compare(av, bv), true
	case bool:
		bv, isBool := b.(bool)
		if !isBool {
			return 0, false
		}
		switch {
		case av == bv:
			return 0, true
		case !av:
			return -1, true
		}
		return 1, true
	}
	return 0, false
}

// Matches reports whether value satisfies the clause operator against operand.
// Values that cannot be ordered only ever match equality, using deep equality.
func Matches(value interface{}, op Operator, operand interface{}) bool {
	c, ok := Compare(value, operand)
	if !ok {
		return op == OpEqual && reflect.DeepEqual(value, operand)
	}
	switch op {
	case OpEqual:
		return c == 0
	case OpGreaterThan:
		return c > 0
	case OpGreaterOrEqual:
		return c >= 0
	case OpLessThan:
		return c < 0
	case OpLessOrEqual:
		return c <= 0
	}
	return false
}

func asTime(v interface{}) (time.Time, bool) {
	switch tv := v.(type) {
	case time.Time:
		return tv, true
	case *time.Time:
		if tv == nil {
			return time.Time{}, false
		}
		return *tv, true
	case interface{ Time() time.Time }:
		return tv.Time(), true
	}

	// Named time types such as strfmt.DateTime.
	if rv := reflect.ValueOf(v); rv.IsValid() && rv.Kind() == reflect.Struct && rv.Type().ConvertibleTo(timeType) {
		return rv.Convert(timeType).Interface().(time.Time), true
	}
	return time.Time{}, false
}

var timeType = reflect.TypeFor[time.Time]()

func asFloat(v interface{}) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}
