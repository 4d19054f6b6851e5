package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/paintball-league/internal/domain/document"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const idField = "_id"

// Connect opens a client and pings the primary before returning it.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	serverAPIOptions := options.ServerAPI(options.ServerAPIVersion1)
	clientOptions := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(serverAPIOptions)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return client, nil
}

// DocumentStore maps each document collection onto a MongoDB collection
// and the document id onto _id.
type DocumentStore struct {
	db *mongo.Database
}

func NewDocumentStore(db *mongo.Database) *DocumentStore {
	return &DocumentStore{db: db}
}

func (s *DocumentStore) Get(ctx context.Context, collection, id string) (document.Document, bool, error) {
	if err := document.ValidateKey(collection, id); err != nil {
		return document.Document{}, false, err
	}

	var raw bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{idField: id}).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return document.Document{}, false, nil
		}
		return document.Document{}, false, fmt.Errorf("get document %s/%s: %w", collection, id, err)
	}

	return documentFromBSON(id, raw), true, nil
}

func (s *DocumentStore) Set(ctx context.Context, collection, id string, fields map[string]any, opts document.SetOptions) error {
	if err := document.ValidateKey(collection, id); err != nil {
		return err
	}

	body := bson.M{}
	for k, v := range fields {
		if k == idField {
			continue
		}
		body[k] = v
	}

	coll := s.db.Collection(collection)
	filter := bson.M{idField: id}
	var err error
	switch {
	case !opts.Merge:
		_, err = coll.ReplaceOne(ctx, filter, body, options.Replace().SetUpsert(true))
	case len(body) == 0:
		// $set rejects an empty document.
		_, err = coll.UpdateOne(ctx, filter, bson.M{"$setOnInsert": bson.M{idField: id}}, options.Update().SetUpsert(true))
	default:
		_, err = coll.UpdateOne(ctx, filter, bson.M{"$set": body}, options.Update().SetUpsert(true))
	}
	if err != nil {
		return fmt.Errorf("set document %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *DocumentStore) List(ctx context.Context, collection string) ([]document.Document, error) {
	cursor, err := s.db.Collection(collection).Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: idField, Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list documents %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	var raws []bson.M
	if err := cursor.All(ctx, &raws); err != nil {
		return nil, fmt.Errorf("decode documents %s: %w", collection, err)
	}

	out := make([]document.Document, 0, len(raws))
	for _, raw := range raws {
		out = append(out, documentFromBSON(fmt.Sprint(normalize(raw[idField])), raw))
	}
	return out, nil
}

func documentFromBSON(id string, raw bson.M) document.Document {
	fields := make(map[string]any, len(raw))
	for k, v := range raw {
		if k == idField {
			continue
		}
		fields[k] = normalize(v)
	}
	return document.Document{ID: id, Fields: fields}
}

// normalize converts driver container types into plain maps and slices.
func normalize(v any) any {
	switch t := v.(type) {
	case bson.M:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = normalize(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = normalize(item)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = normalize(e.Value)
		}
		return out
	case bson.A:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = normalize(item)
		}
		return out
	case primitive.ObjectID:
		return t.Hex()
	case primitive.DateTime:
		return t.Time().UTC()
	default:
		return v
	}
}
