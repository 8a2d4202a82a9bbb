/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package entityodm

import (
	"context"

	"github.com/suparena/entityodm/errors"
	"go.uber.org/zap"
)

// Entity is a typed record of a collection. An entity without an ID is
// transient; Save assigns one.
type Entity[T any] struct {
	// ID identifies the record inside its collection.
	ID string
	// Data holds the entity fields.
	Data T

	model *Model[T]
}

// Collection returns the collection the entity belongs to.
func (e *Entity[T]) Collection() string {
	if e.model == nil {
		return ""
	}
	return e.model.collection
}

// Save persists the entity and returns its ID. An entity with an ID is merged
// into the stored record: fields it does not carry are left untouched.
// Otherwise a record is created and the generated ID is stored on the entity.
func (e *Entity[T]) Save(ctx context.Context) (string, error) {
	m := e.model
	if m == nil {
		return "", errors.NewInvalidStateError("save", "entity was not created by a model")
	}

	if err := m.check(e.Data); err != nil {
		return "", err
	}
	data, err := m.serialize(e.Data)
	if err != nil {
		return "", err
	}

	if e.ID != "" {
		if err := m.coll.Merge(ctx, e.ID, data); err != nil {
			return "", err
		}
		m.logger.Debug("merged entity", zap.String("id", e.ID), zap.Int("fields", len(data)))
		return e.ID, nil
	}

	id, err := m.coll.Add(ctx, data)
	if err != nil {
		return "", err
	}
	e.ID = id
	m.logger.Debug("created entity", zap.String("id", id), zap.Int("fields", len(data)))
	return id, nil
}

// Delete removes the stored record and returns its ID. The entity keeps its
// ID afterwards. Deleting an entity that was never saved is an InvalidStateError.
func (e *Entity[T]) Delete(ctx context.Context) (string, error) {
	if e.ID == "" {
		return "", errors.NewInvalidStateError("delete", "entity has no id")
	}
	m := e.model
	if m == nil {
		return "", errors.NewInvalidStateError("delete", "entity was not created by a model")
	}

	if err := m.coll.Delete(ctx, e.ID); err != nil {
		return "", err
	}
	m.logger.Debug("deleted entity", zap.String("id", e.ID))
	return e.ID, nil
}
