/*
Package entityodm maps Go types onto the collections of a document database.

A Model binds entity type T to a collection on a datastore.Connection and
offers the collection-level operations; an Entity is one record of that
collection with its own Save and Delete:

  - Save creates a record (assigning the generated ID) or merges the entity
    into the existing record
  - Delete removes the record of a saved entity
  - FindByID, FindOne and FindMany load typed entities
  - DeleteByID and DeleteMany remove records and return their last state

Loaded records pass through ConvertValue, which turns provider-native
timestamps (primitive.DateTime, strfmt.DateTime, or any type registered with
registry.RegisterTimeConverter) into time.Time values.

Basic Usage:

	type User struct {
	    Name      string    `json:"name" validate:"required"`
	    Age       int       `json:"age"`
	    CreatedAt time.Time `json:"createdAt"`
	}

	conn := mock.New()
	users, err := entityodm.NewModel(conn, entityodm.Schema[User]{Collection: "users"},
	    entityodm.WithValidation())

	u := users.New(User{Name: "Ada", Age: 36, CreatedAt: time.Now()})
	id, err := u.Save(ctx)

	adults, err := users.FindMany(ctx, storagemodels.QueryOptions{
	    Where:   storagemodels.Where{"age": storagemodels.Gte(18)},
	    OrderBy: &storagemodels.OrderBy{Field: "age", Direction: storagemodels.Asc},
	    Limit:   2,
	})

DeleteMany commits its deletes in sequential batches of at most
datastore.MaxBatchOps (500) operations, waiting for each commit before
starting the next one.

Missing records are never errors: FindByID, FindOne and DeleteByID return a
nil entity. Datastore errors are returned unchanged.
*/
package entityodm
