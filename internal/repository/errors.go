package repository

import (
	"errors"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// ErrDuplicateKey is returned when a write collides with a unique index.
var ErrDuplicateKey = errors.New("duplicate key")

// IsNotFound reports whether err means the targeted document does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

func wrapWriteError(err error, format string) error {
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateKey
	}
	return errorf(format, err)
}
