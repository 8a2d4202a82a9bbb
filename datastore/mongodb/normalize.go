/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mongodb

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// normalizeDocument converts a decoded document into plain maps and slices.
// Date values stay primitive.DateTime; the model converts them.
func normalizeDocument(doc bson.M) map[string]interface{} {
	out := make(map[string]interface{}, len(doc))
	for k, v := range doc {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v interface{}) interface{} {
	switch tv := v.(type) {
	case bson.M:
		return normalizeDocument(tv)
	case map[string]interface{}:
		return normalizeDocument(bson.M(tv))
	case bson.D:
		out := make(map[string]interface{}, len(tv))
		for _, e := range tv {
			out[e.Key] = normalizeValue(e.Value)
		}
		return out
	case bson.A:
		out := make([]interface{}, len(tv))
		for i, e := range tv {
			out[i] = normalizeValue(e)
		}
		return out
	case []interface{}:
		return normalizeValue(bson.A(tv))
	case primitive.ObjectID:
		return tv.Hex()
	}
	return v
}
