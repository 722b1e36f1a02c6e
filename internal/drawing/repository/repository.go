package repository

import (
	"context"

	"github.com/sketchbook/sketchbook/internal/drawing"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Repository is the ordered metadata store for drawings. Every lookup is
// scoped to a single owner and returns at most one record; (nil, nil) means
// nothing matched.
type Repository interface {
	Insert(ctx context.Context, d *drawing.Drawing) error
	FindAdjacent(ctx context.Context, userID primitive.ObjectID, cur drawing.Cursor) (*drawing.Drawing, error)
	FindByID(ctx context.Context, userID, id primitive.ObjectID) (*drawing.Drawing, error)
}
