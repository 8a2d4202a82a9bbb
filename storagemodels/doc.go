/*
Package storagemodels defines the data structures shared by entityodm and its datastores.

Key Types:

QueryOptions:
The declarative query accepted by FindMany and DeleteMany:

	opts := storagemodels.QueryOptions{
	    Where: storagemodels.Where{
	        "age":    storagemodels.Gte(18),
	        "status": storagemodels.Eq("active"),
	    },
	    OrderBy: &storagemodels.OrderBy{Field: "age", Direction: storagemodels.Asc},
	    Limit:   2,
	}

Each Condition may set several operators (Equals, GT, GTE, LT, LTE); every set
operator becomes its own constraint and all constraints are ANDed. Ordering is
limited to a single field.

Clause and QuerySpec:
The provider-neutral form of a query, accumulated by datastore query builders
and translated into DynamoDB filter expressions, MongoDB filters or in-memory
predicates.

Snapshot:
A record returned by a datastore: identifier, field map and an existence flag.

Compare and Matches implement the value ordering used by datastores that
evaluate clauses client side.
*/
package storagemodels
