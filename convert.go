/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package entityodm

import (
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/suparena/entityodm/registry"
)

func init() {
	registry.RegisterTimeConverter(func(dt strfmt.DateTime) (time.Time, error) {
		return time.Time(dt), nil
	})
}

// timestamp is implemented by provider-native date values such as
// primitive.DateTime.
type timestamp interface {
	Time() time.Time
}

// ConvertValue replaces provider-native timestamps in v with time.Time values.
// It descends into []interface{}, []map[string]interface{} and
// map[string]interface{} and leaves every other value, including structs,
// as it is. Converting an already converted value is a no-op.
func ConvertValue(v interface{}) interface{} {
	switch tv := v.(type) {
	case nil:
		return nil
	case []interface{}:
		out := make([]interface{}, len(tv))
		for i, e := range tv {
			out[i] = ConvertValue(e)
		}
		return out
	case []map[string]interface{}:
		out := make([]map[string]interface{}, len(tv))
		for i, e := range tv {
			out[i] = convertMap(e)
		}
		return out
	}

	if t, ok := toTime(v); ok {
		return t
	}
	if m, ok := v.(map[string]interface{}); ok {
		return convertMap(m)
	}
	return v
}

func convertMap(in map[string]interface{}) map[string]interface{} {
	if in == nil {
		return nil
	}
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = ConvertValue(v)
	}
	return out
}

// toTime converts v when it is a provider timestamp. A conversion that fails
// or panics reports ok == false so the original value is kept.
func toTime(v interface{}) (t time.Time, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			t, ok = time.Time{}, false
		}
	}()

	if fn, found := registry.GetTimeConverter(v); found {
		converted, err := fn(v)
		if err != nil {
			return time.Time{}, false
		}
		return converted, true
	}
	if ts, isTimestamp := v.(timestamp); isTimestamp {
		return ts.Time(), true
	}
	return time.Time{}, false
}
