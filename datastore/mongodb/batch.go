/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mongodb

import (
	"context"
	"fmt"

	"github.com/suparena/entityodm/datastore"
	"github.com/suparena/entityodm/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type batch struct {
	coll *collection
	ids  []string
}

func (b *batch) Delete(id string) {
	b.ids = append(b.ids, id)
}

func (b *batch) Len() int {
	return len(b.ids)
}

// Commit sends the deletes as one ordered bulk write.
func (b *batch) Commit(ctx context.Context) error {
	if len(b.ids) > datastore.MaxBatchOps {
		return errors.NewValidationError("batch", fmt.Sprintf("%d operations exceed the limit of %d", len(b.ids), datastore.MaxBatchOps))
	}
	if len(b.ids) == 0 {
		return nil
	}

	models := deleteModels(b.ids)
	res, err := b.coll.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true))
	if err != nil {
		return err
	}
	b.coll.store.logger.Debug("bulk delete committed",
		zap.String("collection", b.coll.name),
		zap.Int64("deleted", res.DeletedCount))
	return nil
}

func deleteModels(ids []string) []mongo.WriteModel {
	models := make([]mongo.WriteModel, 0, len(ids))
	for _, id := range ids {
		models = append(models, mongo.NewDeleteOneModel().SetFilter(bson.D{{Key: FieldID, Value: id}}))
	}
	return models
}
