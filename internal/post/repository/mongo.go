package repository

import (
	"context"
	"time"

	"github.com/inkpub/micropub/internal/mf2"
	"github.com/inkpub/micropub/internal/post"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo implements a MongoDB-backed repository for posts, one record
// per URL.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	idxModel := mongo.IndexModel{Keys: bson.D{{Key: "url", Value: 1}}, Options: options.Index().SetUnique(true)}
	col.Indexes().CreateOne(context.Background(), idxModel)
	return &MongoRepo{col: col}
}

func (m *MongoRepo) Save(ctx context.Context, p *post.Post) error {
	now := time.Now()
	set := bson.M{
		"postType":  p.Type,
		"path":      p.Path,
		"url":       p.URL,
		"mf2":       p.Mf2,
		"deleted":   p.Deleted,
		"updatedAt": now,
	}
	update := bson.M{"$set": set, "$setOnInsert": bson.M{"createdAt": now}}
	_, err := m.col.UpdateOne(ctx, bson.M{"url": p.URL}, update, options.Update().SetUpsert(true))
	if err != nil {
		return err
	}
	p.UpdatedAt = now
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	return nil
}

func (m *MongoRepo) Get(ctx context.Context, url string) (*post.Post, error) {
	var p post.Post
	err := m.col.FindOne(ctx, bson.M{"url": url}).Decode(&p)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	normalizePost(&p)
	return &p, nil
}

func (m *MongoRepo) List(ctx context.Context) ([]*post.Post, error) {
	cur, err := m.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*post.Post{}
	for cur.Next(ctx) {
		var p post.Post
		if err := cur.Decode(&p); err != nil {
			return nil, err
		}
		normalizePost(&p)
		out = append(out, &p)
	}
	return out, cur.Err()
}

func normalizePost(p *post.Post) {
	if p.Mf2 == nil {
		return
	}
	props := make(mf2.Properties, len(p.Mf2.Properties))
	for name, values := range p.Mf2.Properties {
		out := make([]any, len(values))
		for i, v := range values {
			out[i] = normalize(v)
		}
		props[name] = out
	}
	p.Mf2.Properties = props
}

// normalize turns the driver's decoded document and array types back into
// plain maps and slices, the shapes the update engine compares against.
func normalize(v any) any {
	switch t := v.(type) {
	case primitive.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = normalize(e.Value)
		}
		return m
	case primitive.M:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = normalize(e)
		}
		return m
	case primitive.A:
		s := make([]any, len(t))
		for i, e := range t {
			s[i] = normalize(e)
		}
		return s
	default:
		return v
	}
}
