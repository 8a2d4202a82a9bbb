/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"testing"
	"time"
)

type registryUser struct{ Name string }

type epochSeconds int64

type brokenStamp struct{}

func TestCollectionRegistry(t *testing.T) {
	if _, ok := GetCollection[registryUser](); ok {
		t.Fatal("Expected no binding before registration")
	}

	RegisterCollection[registryUser]("users")
	defer UnregisterCollection[registryUser]()

	name, ok := GetCollection[registryUser]()
	if !ok || name != "users" {
		t.Fatalf("Expected binding to users, got %q (%v)", name, ok)
	}

	if _, ok := GetCollection[*registryUser](); ok {
		t.Fatal("Pointer type must not share the value type binding")
	}

	RegisterCollection[registryUser]("people")
	if name, _ := GetCollection[registryUser](); name != "people" {
		t.Fatalf("Expected re-registration to replace binding, got %q", name)
	}
}

func TestTimeRegistry(t *testing.T) {
	RegisterTimeConverter(func(v epochSeconds) (time.Time, error) {
		return time.Unix(int64(v), 0).UTC(), nil
	})
	RegisterTimeConverter(func(brokenStamp) (time.Time, error) {
		return time.Time{}, fmt.Errorf("unsupported")
	})

	t.Run("Lookup", func(t *testing.T) {
		fn, ok := GetTimeConverter(epochSeconds(60))
		if !ok {
			t.Fatal("Expected converter for epochSeconds")
		}
		got, err := fn(epochSeconds(60))
		if err != nil {
			t.Fatalf("conversion failed: %v", err)
		}
		if !got.Equal(time.Unix(60, 0)) {
			t.Fatalf("Unexpected time %v", got)
		}
	})

	t.Run("ErrorsPropagate", func(t *testing.T) {
		fn, _ := GetTimeConverter(brokenStamp{})
		if _, err := fn(brokenStamp{}); err == nil {
			t.Fatal("Expected converter error")
		}
	})

	t.Run("UnknownTypes", func(t *testing.T) {
		if _, ok := GetTimeConverter(int64(60)); ok {
			t.Fatal("int64 must not resolve to the epochSeconds converter")
		}
		if _, ok := GetTimeConverter(nil); ok {
			t.Fatal("nil has no converter")
		}
	})

	t.Run("DuplicatePanics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Fatal("Expected panic on duplicate registration")
			}
		}()
		RegisterTimeConverter(func(v epochSeconds) (time.Time, error) { return time.Time{}, nil })
	})
}
