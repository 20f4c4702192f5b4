package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yashrajoria/lezzetli-admin/common/logger"
	"github.com/yashrajoria/lezzetli-admin/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ConnectMongo connects and pings within a 10 second window.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(timeoutCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(timeoutCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	logger.Log.Info("connected to MongoDB")
	return client, nil
}

// DisconnectMongo closes client within a 5 second window.
func DisconnectMongo(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}
	logger.Log.Info("disconnected from MongoDB")
	return nil
}

// MongoStore maps each collection to a Mongo collection of the same name.
// Documents are addressed by their string "id" field; Mongo's own _id is
// never surfaced.
type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

func (s *MongoStore) Get(ctx context.Context, collection, id string) (models.Document, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	var raw bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"id": id}).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, classifyMongo(fmt.Errorf("find %s/%s: %w", collection, id, err))
	}
	return fromBSON(raw), nil
}

func (s *MongoStore) Query(ctx context.Context, q Query) ([]models.Document, error) {
	skip, err := prepare(q)
	if err != nil || skip {
		return nil, err
	}

	filter := bson.D{}
	for _, f := range q.filters {
		filter = append(filter, bson.E{Key: f.Field, Value: f.Value})
	}
	cursor, err := s.db.Collection(q.collection).Find(ctx, filter)
	if err != nil {
		return nil, classifyMongo(fmt.Errorf("find %s: %w", q.collection, err))
	}
	defer cursor.Close(ctx)

	var docs []models.Document
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			logger.Log.Warn("skipping undecodable document",
				zap.String("collection", q.collection), zap.Error(err))
			continue
		}
		docs = append(docs, fromBSON(raw))
	}
	if err := cursor.Err(); err != nil {
		return nil, classifyMongo(fmt.Errorf("cursor %s: %w", q.collection, err))
	}
	return docs, nil
}

func (s *MongoStore) Add(ctx context.Context, collection string, doc models.Document) (string, error) {
	stored := doc.Clone()
	if stored == nil {
		stored = models.Document{}
	}
	id := stored.ID()
	if id == "" {
		id = uuid.NewString()
	}
	stored["id"] = id
	delete(stored, "_id")

	_, err := s.db.Collection(collection).ReplaceOne(ctx, bson.M{"id": id}, bson.M(stored), options.Replace().SetUpsert(true))
	if err != nil {
		return "", classifyMongo(fmt.Errorf("upsert %s/%s: %w", collection, id, err))
	}
	return id, nil
}

func (s *MongoStore) Update(ctx context.Context, collection, id string, fields models.Document) error {
	set := bson.M{}
	for k, v := range fields {
		if k == "id" || k == "_id" {
			continue
		}
		set[k] = v
	}
	if len(set) == 0 {
		_, err := s.Get(ctx, collection, id)
		return err
	}
	res, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set})
	if err != nil {
		return classifyMongo(fmt.Errorf("update %s/%s: %w", collection, id, err))
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"id": id}); err != nil {
		return classifyMongo(fmt.Errorf("delete %s/%s: %w", collection, id, err))
	}
	return nil
}

func classifyMongo(err error) error {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}

// fromBSON converts driver types into the plain maps, slices and times the
// rest of the module works with.
func fromBSON(raw bson.M) models.Document {
	doc := make(models.Document, len(raw))
	for k, v := range raw {
		if k == "_id" {
			continue
		}
		doc[k] = normalizeBSON(v)
	}
	if _, ok := doc["id"]; !ok {
		if oid, ok := raw["_id"].(primitive.ObjectID); ok {
			doc["id"] = oid.Hex()
		}
	}
	return doc
}

func normalizeBSON(v interface{}) interface{} {
	switch t := v.(type) {
	case bson.M:
		m := make(map[string]interface{}, len(t))
		for k, inner := range t {
			m[k] = normalizeBSON(inner)
		}
		return m
	case bson.D:
		m := make(map[string]interface{}, len(t))
		for _, e := range t {
			m[e.Key] = normalizeBSON(e.Value)
		}
		return m
	case bson.A:
		out := make([]interface{}, len(t))
		for i, inner := range t {
			out[i] = normalizeBSON(inner)
		}
		return out
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.ObjectID:
		return t.Hex()
	case int32:
		return int64(t)
	default:
		return v
	}
}
