package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/sketchbook/sketchbook/internal/drawing"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo implements Repository over the "drawings" collection. ObjectIDs
// carry the creation timestamp in their leading bytes, so sorting by _id
// gives creation order.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	return &MongoRepo{col: col}
}

// EnsureIndexes creates the owner/_id index used by every cursor query.
func (m *MongoRepo) EnsureIndexes(ctx context.Context) error {
	idx := mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "_id", Value: -1}}}
	if _, err := m.col.Indexes().CreateOne(ctx, idx); err != nil {
		return fmt.Errorf("create drawings index: %w", err)
	}
	return nil
}

func (m *MongoRepo) Insert(ctx context.Context, d *drawing.Drawing) error {
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	if _, err := m.col.InsertOne(ctx, d); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateID
		}
		return fmt.Errorf("insert drawing: %w", err)
	}
	return nil
}

// cursorQuery returns the filter and sort for a single-record cursor read.
func cursorQuery(userID primitive.ObjectID, cur drawing.Cursor) (bson.M, bson.D) {
	filter := bson.M{"userId": userID, "type": drawing.TypeDrawing}
	sort := bson.D{{Key: "_id", Value: -1}}
	switch cur.Direction {
	case drawing.Before:
		filter["_id"] = bson.M{"$lt": cur.ID}
	case drawing.After:
		filter["_id"] = bson.M{"$gt": cur.ID}
		sort = bson.D{{Key: "_id", Value: 1}}
	}
	return filter, sort
}

func (m *MongoRepo) FindAdjacent(ctx context.Context, userID primitive.ObjectID, cur drawing.Cursor) (*drawing.Drawing, error) {
	filter, sort := cursorQuery(userID, cur)
	return m.findOne(ctx, filter, options.FindOne().SetSort(sort))
}

func (m *MongoRepo) FindByID(ctx context.Context, userID, id primitive.ObjectID) (*drawing.Drawing, error) {
	return m.findOne(ctx, bson.M{"_id": id, "userId": userID})
}

func (m *MongoRepo) findOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*drawing.Drawing, error) {
	var d drawing.Drawing
	if err := m.col.FindOne(ctx, filter, opts...).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find drawing: %w", err)
	}
	return &d, nil
}
