/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package entityodm

import (
	"context"
	stderrors "errors"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/suparena/entityodm/datastore"
	"github.com/suparena/entityodm/errors"
	"github.com/suparena/entityodm/registry"
	"github.com/suparena/entityodm/storagemodels"
	"go.uber.org/zap"
)

// Reserved keys are never written to the document database.
const (
	FieldID         = "id"
	FieldCollection = "collection"
)

// Schema describes how entity type T is stored.
type Schema[T any] struct {
	// Collection is the collection the entities live in. When empty, the
	// binding registered with registry.RegisterCollection is used.
	Collection string

	// Fields, when set, is the complete list of fields written by Save.
	// Other fields produced by the encoder are dropped.
	Fields []string

	// Encode overrides the default encoder, which maps the exported
	// top-level fields of T by their json tag names.
	Encode func(T) (map[string]interface{}, error)

	// Decode overrides the default mapstructure based decoder.
	Decode func(map[string]interface{}) (T, error)
}

// Option configures a Model.
type Option func(*modelOptions)

type modelOptions struct {
	logger    *zap.Logger
	validate  *validator.Validate
	batchSize int
}

// WithLogger sets the logger used for operation traces.
func WithLogger(logger *zap.Logger) Option {
	return func(o *modelOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithValidation validates entities with go-playground/validator struct tags before every save.
func WithValidation() Option {
	return func(o *modelOptions) {
		o.validate = validator.New(validator.WithRequiredStructEnabled())
	}
}

// WithValidator validates entities with the given validator before every save.
func WithValidator(v *validator.Validate) Option {
	return func(o *modelOptions) {
		o.validate = v
	}
}

// WithBatchSize sets how many deletes DeleteMany commits per batch.
// Values outside 1..datastore.MaxBatchOps are clamped.
func WithBatchSize(n int) Option {
	return func(o *modelOptions) {
		switch {
		case n < 1:
			o.batchSize = 1
		case n > datastore.MaxBatchOps:
			o.batchSize = datastore.MaxBatchOps
		default:
			o.batchSize = n
		}
	}
}

// Model is the collection-level handle of entity type T. It creates entities
// and runs the finders and bulk operations of the collection.
type Model[T any] struct {
	coll       datastore.Collection
	collection string
	schema     Schema[T]
	fields     map[string]struct{}
	logger     *zap.Logger
	validate   *validator.Validate
	batchSize  int
}

// NewModel defines entity type T on the given connection. It fails with a
// ConfigurationError when no collection is bound to T.
func NewModel[T any](conn datastore.Connection, schema Schema[T], opts ...Option) (*Model[T], error) {
	if conn == nil {
		return nil, errors.NewValidationError("connection", "must not be nil")
	}

	name := schema.Collection
	if name == "" {
		name, _ = registry.GetCollection[T]()
	}
	if name == "" {
		return nil, errors.NewConfigurationError(reflect.TypeFor[T]().String())
	}

	o := modelOptions{
		logger:    zap.NewNop(),
		batchSize: datastore.MaxBatchOps,
	}
	for _, opt := range opts {
		opt(&o)
	}

	var fields map[string]struct{}
	if len(schema.Fields) > 0 {
		fields = make(map[string]struct{}, len(schema.Fields))
		for _, f := range schema.Fields {
			fields[f] = struct{}{}
		}
	}
	if schema.Encode == nil {
		schema.Encode = encodeFields[T]
	}
	if schema.Decode == nil {
		schema.Decode = decodeRecord[T]
	}
	schema.Collection = name

	return &Model[T]{
		coll:       conn.Collection(name),
		collection: name,
		schema:     schema,
		fields:     fields,
		logger:     o.logger.With(zap.String("collection", name)),
		validate:   o.validate,
		batchSize:  o.batchSize,
	}, nil
}

// Collection returns the collection name of the model.
func (m *Model[T]) Collection() string {
	return m.collection
}

// New creates a transient entity holding data. It has no ID until saved.
func (m *Model[T]) New(data T) *Entity[T] {
	return &Entity[T]{Data: data, model: m}
}

// FindByID loads the entity stored under id. It returns nil and no error when
// the record does not exist.
func (m *Model[T]) FindByID(ctx context.Context, id string) (*Entity[T], error) {
	snap, err := m.coll.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !snap.Exists {
		return nil, nil
	}
	return m.fromSnapshot(id, snap.Data)
}

// FindOne returns the first entity matching opts, or nil when nothing matches.
func (m *Model[T]) FindOne(ctx context.Context, opts storagemodels.QueryOptions) (*Entity[T], error) {
	opts.Limit = 1
	found, err := m.FindMany(ctx, opts)
	if err != nil || len(found) == 0 {
		return nil, err
	}
	return found[0], nil
}

// DeleteByID deletes the record stored under id and returns its last-known
// state. It returns nil and makes no delete call when the record does not exist.
func (m *Model[T]) DeleteByID(ctx context.Context, id string) (*Entity[T], error) {
	snap, err := m.coll.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !snap.Exists {
		return nil, nil
	}

	entity, err := m.fromSnapshot(id, snap.Data)
	if err != nil {
		return nil, err
	}
	if err := m.coll.Delete(ctx, id); err != nil {
		return nil, err
	}
	m.logger.Debug("deleted entity", zap.String("id", id))
	return entity, nil
}

// fromSnapshot converts provider-native values and decodes the record into T.
func (m *Model[T]) fromSnapshot(id string, data map[string]interface{}) (*Entity[T], error) {
	record := convertMap(data)
	delete(record, FieldID)
	delete(record, FieldCollection)

	value, err := m.schema.Decode(record)
	if err != nil {
		return nil, err
	}
	return &Entity[T]{ID: id, Data: value, model: m}, nil
}

// serialize encodes entity data into the mapping written by Save.
func (m *Model[T]) serialize(data T) (map[string]interface{}, error) {
	encoded, err := m.schema.Encode(data)
	if err != nil {
		return nil, err
	}

	out := make(map[string]interface{}, len(encoded))
	for k, v := range encoded {
		if k == FieldID || k == FieldCollection {
			continue
		}
		if m.fields != nil {
			if _, ok := m.fields[k]; !ok {
				continue
			}
		}
		out[k] = v
	}
	return out, nil
}

// check runs the configured validator against entity data.
func (m *Model[T]) check(data T) error {
	if m.validate == nil {
		return nil
	}

	rv := reflect.ValueOf(data)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return errors.NewValidationError("", "entity data is nil")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	err := m.validate.Struct(rv.Interface())
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if stderrors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return errors.WrapValidationError(fieldErrs[0].Field(), err)
	}
	return errors.WrapValidationError("", err)
}
