// Package repository implements the data access layer over MongoDB.
package repository

import (
	"time"

	"quill/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// opTimeout bounds every single store operation. A timeout surfaces as an
// upstream failure the caller may retry.
const opTimeout = 5 * time.Second

// ParseID converts a hex route parameter into an ObjectID. A malformed id is
// a validation failure, distinct from a well-formed id that matches nothing.
func ParseID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, models.NewValidationError("Invalid ID format")
	}
	return id, nil
}
