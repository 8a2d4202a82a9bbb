/*
Package mongodb provides a MongoDB implementation of the datastore.Connection interface.

Records are stored one document per record, with the identifier in _id.
Generated identifiers are ObjectIDs rendered as hex strings.

Where clauses map to $eq, $gt, $gte, $lt and $lte inside a single $and.
Ordering and limits are applied by the server. Batch deletes are sent as one
ordered BulkWrite.

	store, err := mongodb.Open(ctx, mongodb.Config{
	    URI:      "mongodb://localhost:27017",
	    Database: "app",
	})
	if err != nil {
	    return err
	}
	defer store.Close(ctx)

Dates come back as primitive.DateTime and BSON timestamps as
primitive.Timestamp. Both are converted to time.Time when records are read
through a model.
*/
package mongodb
