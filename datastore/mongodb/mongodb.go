/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/suparena/entityodm/datastore"
	odmerrors "github.com/suparena/entityodm/errors"
	"github.com/suparena/entityodm/registry"
	"github.com/suparena/entityodm/storagemodels"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// FieldID is the document key holding the record identifier.
const FieldID = "_id"

func init() {
	registry.RegisterTimeConverter(func(ts primitive.Timestamp) (time.Time, error) {
		return time.Unix(int64(ts.T), 0).UTC(), nil
	})
}

// Config holds the connection settings of a MongoDB datastore.
type Config struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

// DataStore implements datastore.Connection on a MongoDB database. Every
// collection maps to the MongoDB collection of the same name.
type DataStore struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

var _ datastore.Connection = (*DataStore)(nil)

// Option configures a DataStore.
type Option func(*DataStore)

// WithLogger sets the logger of the datastore.
func WithLogger(logger *zap.Logger) Option {
	return func(d *DataStore) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// Open connects to MongoDB and verifies the connection with a ping.
func Open(ctx context.Context, cfg Config, opts ...Option) (*DataStore, error) {
	if cfg.URI == "" {
		return nil, odmerrors.NewValidationError("uri", "mongodb URI is required")
	}
	if cfg.Database == "" {
		return nil, odmerrors.NewValidationError("database", "mongodb database is required")
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	d := New(client.Database(cfg.Database), opts...)
	d.client = client
	d.logger.Info("MongoDB datastore initialized", zap.String("database", cfg.Database))
	return d, nil
}

// New creates a datastore on an existing database handle.
func New(db *mongo.Database, opts ...Option) *DataStore {
	d := &DataStore{db: db, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Close disconnects the client opened by Open.
func (d *DataStore) Close(ctx context.Context) error {
	if d.client == nil {
		return nil
	}
	return d.client.Disconnect(ctx)
}

// Collection returns the named collection.
func (d *DataStore) Collection(name string) datastore.Collection {
	return &collection{store: d, name: name, coll: d.db.Collection(name)}
}

type collection struct {
	store *DataStore
	name  string
	coll  *mongo.Collection
}

func (c *collection) Get(ctx context.Context, id string) (storagemodels.Snapshot, error) {
	var doc bson.M
	err := c.coll.FindOne(ctx, bson.D{{Key: FieldID, Value: id}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return storagemodels.Snapshot{ID: id}, nil
	}
	if err != nil {
		return storagemodels.Snapshot{}, err
	}
	return snapshot(doc), nil
}

// Add inserts data under a new ObjectID rendered as hex.
func (c *collection) Add(ctx context.Context, data map[string]interface{}) (string, error) {
	id := primitive.NewObjectID().Hex()
	doc := make(bson.M, len(data)+1)
	for k, v := range data {
		doc[k] = v
	}
	doc[FieldID] = id

	if _, err := c.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", odmerrors.NewAlreadyExistsError(c.name, id)
		}
		return "", err
	}
	return id, nil
}

// Merge sets the given top-level fields, creating the document when missing.
func (c *collection) Merge(ctx context.Context, id string, data map[string]interface{}) error {
	filter := bson.D{{Key: FieldID, Value: id}}

	if len(data) == 0 {
		err := c.coll.FindOne(ctx, filter).Err()
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return err
		}
		_, err = c.coll.InsertOne(ctx, bson.D{{Key: FieldID, Value: id}})
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return err
	}

	set := make(bson.M, len(data))
	for k, v := range data {
		if k == FieldID {
			continue
		}
		set[k] = v
	}
	_, err := c.coll.UpdateOne(ctx, filter, bson.M{"$set": set}, options.Update().SetUpsert(true))
	return err
}

func (c *collection) Delete(ctx context.Context, id string) error {
	_, err := c.coll.DeleteOne(ctx, bson.D{{Key: FieldID, Value: id}})
	return err
}

func (c *collection) Query() datastore.Query {
	return &query{coll: c}
}

func (c *collection) Batch() datastore.Batch {
	return &batch{coll: c}
}

// snapshot turns a decoded document into a snapshot of plain Go values.
func snapshot(doc bson.M) storagemodels.Snapshot {
	id := fmt.Sprint(doc[FieldID])
	if oid, ok := doc[FieldID].(primitive.ObjectID); ok {
		id = oid.Hex()
	}
	data := normalizeDocument(doc)
	delete(data, FieldID)
	return storagemodels.Snapshot{ID: id, Data: data, Exists: true}
}
