package history

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRecorder inserts entries into a collection, one document each.
type MongoRecorder struct {
	col *mongo.Collection
}

func NewMongoRecorder(col *mongo.Collection) *MongoRecorder {
	return &MongoRecorder{col: col}
}

func (r *MongoRecorder) Record(ctx context.Context, action string, data any) error {
	e := newEntry(action, data)
	if _, err := r.col.InsertOne(ctx, bson.M(e)); err != nil {
		return fmt.Errorf("save history entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (r *MongoRecorder) Recent(ctx context.Context, limit int64) ([]Entry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).SetLimit(limit).SetProjection(bson.M{"_id": 0})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []Entry{}
	for cur.Next(ctx) {
		var m bson.M
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		out = append(out, Entry(m))
	}
	return out, cur.Err()
}
