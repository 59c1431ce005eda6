package domain

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrInvalidID = errors.New("invalid identifier format")

// ParseID validates an externally supplied document identifier.
func ParseID(raw string) (string, error) {
	if !primitive.IsValidObjectID(raw) {
		return "", ErrInvalidID
	}
	return raw, nil
}
