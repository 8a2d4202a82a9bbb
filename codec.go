/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package entityodm

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/mitchellh/mapstructure"
)

var (
	timeType     = reflect.TypeFor[time.Time]()
	dateTimeType = reflect.TypeFor[strfmt.DateTime]()
)

// encodeFields maps the exported top-level fields of a struct (or the entries
// of a string-keyed map) into a record. Field names come from json tags.
// Nested values are kept as they are for the datastore to marshal.
func encodeFields[T any](data T) (map[string]interface{}, error) {
	rv := reflect.ValueOf(data)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return map[string]interface{}{}, nil
		}
		rv = rv.Elem()
	}

	out := make(map[string]interface{})
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("entityodm: cannot encode map with %s keys", rv.Type().Key())
		}
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = iter.Value().Interface()
		}
	case reflect.Struct:
		encodeStruct(rv, out)
	case reflect.Invalid:
	default:
		return nil, fmt.Errorf("entityodm: cannot encode %s as a record", rv.Type())
	}
	return out, nil
}

func encodeStruct(rv reflect.Value, out map[string]interface{}) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		name, opts, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" && opts == "" {
			continue
		}

		fv := rv.Field(i)
		if f.Anonymous && name == "" {
			if fv.Kind() == reflect.Pointer {
				if fv.IsNil() {
					continue
				}
				fv = fv.Elem()
			}
			if fv.Kind() == reflect.Struct {
				encodeStruct(fv, out)
				continue
			}
		}
		if !f.IsExported() || !fv.CanInterface() {
			continue
		}
		if name == "" {
			name = f.Name
		}
		if strings.Contains(opts, "omitempty") && isEmptyValue(fv) {
			continue
		}

		if fv.Kind() == reflect.Pointer {
			if fv.IsNil() {
				out[name] = nil
				continue
			}
			fv = fv.Elem()
		}
		out[name] = fv.Interface()
	}
}

// isEmptyValue reports whether omitempty drops v. As with encoding/json,
// structs such as time.Time are never empty.
func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Interface, reflect.Pointer:
		return v.IsZero()
	}
	return false
}

// decodeRecord decodes a converted record into T using json tag names.
func decodeRecord[T any](record map[string]interface{}) (T, error) {
	var out T
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:    "json",
		Squash:     true,
		Result:     &out,
		DecodeHook: timeDecodeHook,
	})
	if err != nil {
		return out, err
	}
	if err := dec.Decode(record); err != nil {
		return out, fmt.Errorf("entityodm: decode %T: %w", out, err)
	}
	return out, nil
}

// timeDecodeHook fills time.Time and strfmt.DateTime fields from time values
// and from the RFC 3339 strings some datastores store times as.
func timeDecodeHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to != timeType && to != dateTimeType {
		return data, nil
	}

	var t time.Time
	switch v := data.(type) {
	case time.Time:
		t = v
	case strfmt.DateTime:
		t = time.Time(v)
	case timestamp:
		t = v.Time()
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return nil, err
		}
		t = parsed
	default:
		return data, nil
	}

	if to == dateTimeType {
		return strfmt.DateTime(t), nil
	}
	return t, nil
}
