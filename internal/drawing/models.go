package drawing

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TypeDrawing is the only record type stored in the drawings collection.
const TypeDrawing = "drawing"

// Drawing is the metadata record for one saved raster image. Records are
// ordered by ID, which grows with creation time, and are never modified
// except for UpdatedAt.
type Drawing struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id"`
	UserID    primitive.ObjectID `json:"userId" bson:"userId"`
	Type      string             `json:"type" bson:"type"`
	Key       string             `json:"key" bson:"key"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`

	// SignedURL is filled in on every read and never persisted.
	SignedURL string `json:"signedUrl,omitempty" bson:"-"`
}

// Direction selects which neighbour of a cursor to fetch.
type Direction int

const (
	Latest Direction = iota
	Before
	After
)

func (d Direction) String() string {
	switch d {
	case Before:
		return "before"
	case After:
		return "after"
	}
	return "latest"
}

// Cursor is a pagination position. A zero Cursor selects the newest record.
type Cursor struct {
	Direction Direction
	ID        primitive.ObjectID
}

// ParseCursor builds a Cursor from the beforeId/afterId query values. When both
// are present beforeId wins.
func ParseCursor(beforeID, afterID string) (Cursor, error) {
	switch {
	case beforeID != "":
		id, err := primitive.ObjectIDFromHex(beforeID)
		if err != nil {
			return Cursor{}, err
		}
		return Cursor{Direction: Before, ID: id}, nil
	case afterID != "":
		id, err := primitive.ObjectIDFromHex(afterID)
		if err != nil {
			return Cursor{}, err
		}
		return Cursor{Direction: After, ID: id}, nil
	}
	return Cursor{Direction: Latest}, nil
}
