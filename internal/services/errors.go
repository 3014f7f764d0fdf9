package services

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound means a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidID means an identifier is not a valid 24-hex object id.
	// Always maps to a 400, never a 500.
	ErrInvalidID = errors.New("invalid id format")
	// ErrForbidden means the caller lacks ownership or the admin role.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError reports missing or invalid caller-supplied fields.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// parseID converts a caller-supplied id string into an object id,
// distinguishing malformed ids from absent documents.
func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}

// fromStore translates driver-level lookup misses into the service taxonomy.
func fromStore(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
