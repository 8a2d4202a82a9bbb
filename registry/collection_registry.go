/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"reflect"
	"sync"
)

// Collection bindings: Go entity type -> collection name.

var (
	collectionRegistry = make(map[reflect.Type]string)
	mu                 sync.RWMutex
)

// RegisterCollection binds entity type T to the named collection.
// Registering the same type again replaces the previous binding.
func RegisterCollection[T any](name string) {
	t := reflect.TypeFor[T]()

	mu.Lock()
	defer mu.Unlock()
	collectionRegistry[t] = name
}

// GetCollection retrieves the collection bound to type T, if any.
func GetCollection[T any]() (string, bool) {
	t := reflect.TypeFor[T]()

	mu.RLock()
	defer mu.RUnlock()
	name, ok := collectionRegistry[t]
	return name, ok
}

// UnregisterCollection removes the binding of type T.
func UnregisterCollection[T any]() {
	t := reflect.TypeFor[T]()

	mu.Lock()
	defer mu.Unlock()
	delete(collectionRegistry, t)
}
