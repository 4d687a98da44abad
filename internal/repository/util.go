package repository

import (
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func errorf(format string, err error) error {
	return fmt.Errorf(format+": %w", err)
}

var notDeleted = bson.M{"$ne": true}

// containsInsensitive matches a literal substring regardless of case.
func containsInsensitive(s string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(s), "$options": "i"}
}
