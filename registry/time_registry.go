/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"reflect"
	"sync"
	"time"
)

// TimeConverter turns a provider-native timestamp value into a time.Time.
type TimeConverter func(v interface{}) (time.Time, error)

var (
	timeRegistry = make(map[reflect.Type]TimeConverter)
	timeMu       sync.RWMutex
)

// RegisterTimeConverter registers the conversion used for timestamp values of type V.
// It panics if a converter for V is already registered, to prevent accidental overrides.
func RegisterTimeConverter[V any](fn func(V) (time.Time, error)) {
	t := reflect.TypeFor[V]()

	timeMu.Lock()
	defer timeMu.Unlock()
	if _, exists := timeRegistry[t]; exists {
		panic(fmt.Sprintf("time registry: converter for type %s already registered", t))
	}
	timeRegistry[t] = func(v interface{}) (time.Time, error) {
		return fn(v.(V))
	}
}

// GetTimeConverter returns the converter registered for the dynamic type of v.
func GetTimeConverter(v interface{}) (TimeConverter, bool) {
	if v == nil {
		return nil, false
	}

	timeMu.RLock()
	defer timeMu.RUnlock()
	fn, ok := timeRegistry[reflect.TypeOf(v)]
	return fn, ok
}
