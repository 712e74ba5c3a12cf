package mongodb

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/tiffinwala/tiffin/internal/config"
	"github.com/tiffinwala/tiffin/internal/repository"
)

const (
	clientsCollection    = "clients"
	attendanceCollection = "attendances"
	billsCollection      = "bills"
	printsCollection     = "prints"
	usersCollection      = "users"
)

// Store implements repository.Store on top of MongoDB. It owns the client
// connection; callers must Close it on shutdown.
type Store struct {
	client    *mongo.Client
	db        *mongo.Database
	connected atomic.Bool
	logger    *zap.Logger
}

var _ repository.Store = (*Store)(nil)

// Connect dials MongoDB, verifies the connection and prepares indexes.
func Connect(ctx context.Context, cfg config.MongoDBConfig, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(5 * time.Second).
		SetSocketTimeout(45 * time.Second)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	s := &Store{
		client: client,
		db:     client.Database(cfg.DBName),
		logger: logger,
	}
	s.connected.Store(true)

	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	logger.Info("mongodb connected", zap.String("db", cfg.DBName))
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		billsCollection: {{
			Keys:    bson.D{{Key: "client._id", Value: 1}, {Key: "month", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("client_month_unique"),
		}},
		usersCollection: {{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("username_unique"),
		}},
		attendanceCollection: {{
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "date", Value: 1}, {Key: "mealType", Value: 1}},
			Options: options.Index().SetName("client_date_meal"),
		}},
	}

	for coll, specs := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, specs); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

// Connected reports whether the store is usable.
func (s *Store) Connected() bool {
	return s.connected.Load()
}

// Ping checks the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if !s.Connected() {
		return errors.New("mongodb connection closed")
	}
	return s.client.Ping(ctx, nil)
}

// Close closes the MongoDB connection.
func (s *Store) Close(ctx context.Context) error {
	if !s.connected.CompareAndSwap(true, false) {
		return nil
	}
	return s.client.Disconnect(ctx)
}

func (s *Store) collection(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// newID returns a fresh ObjectID in hex form.
func newID() string {
	return primitive.NewObjectID().Hex()
}

// idFilter matches documents stored either with string ids or with native
// ObjectIDs written by earlier versions of the application.
func idFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": bson.M{"$in": bson.A{id, oid}}}
	}
	return bson.M{"_id": id}
}

// setFields converts v to a $set document without its _id.
func setFields(v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	delete(doc, "_id")
	return bson.M{"$set": doc}, nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter any, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make([]T, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter any) (T, error) {
	var out T
	err := coll.FindOne(ctx, filter).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return out, repository.ErrNotFound
	}
	return out, err
}

func replaceFields(ctx context.Context, coll *mongo.Collection, id string, v any) error {
	update, err := setFields(v)
	if err != nil {
		return err
	}
	res, err := coll.UpdateOne(ctx, idFilter(id), update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func deleteByID(ctx context.Context, coll *mongo.Collection, id string) error {
	res, err := coll.DeleteOne(ctx, idFilter(id))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
