package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/papyrus/papyrus/backend/notes-api/internal/note"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound  = errors.New("note not found")
	ErrInvalidID = errors.New("invalid note id")
)

// Repository is the note store contract shared by the Mongo and in-memory backends.
type Repository interface {
	Create(ctx context.Context, n *note.Note) (string, error)
	Get(ctx context.Context, id string) (*note.Note, error)
	List(ctx context.Context, f note.Filter) ([]note.Note, error)
	Update(ctx context.Context, id string, fields note.Patch) error
	Delete(ctx context.Context, id string) error
}

// ParseID converts an API identifier into the store's native ObjectID.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return oid, nil
}

// idString renders a stored _id for API use.
func idString(v interface{}) string {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	case nil:
		return ""
	default:
		return fmt.Sprint(id)
	}
}
