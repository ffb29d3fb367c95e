package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"financetracker/backend/config"
	"financetracker/backend/models"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// transactionDocument is the stored shape, with camelCase timestamp fields.
type transactionDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	Date      time.Time          `bson:"date"`
	Name      string             `bson:"name"`
	Amount    float64            `bson:"amount"`
	Category  string             `bson:"category"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d transactionDocument) toModel() models.Transaction {
	return models.Transaction{
		ID:        d.ID.Hex(),
		Date:      d.Date.UTC(),
		Name:      d.Name,
		Amount:    d.Amount,
		Category:  d.Category,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

// listSort orders by date descending; ObjectIDs grow with insertion time so
// _id breaks ties newest first.
var listSort = bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}}

// MongoStore keeps transactions in a MongoDB collection.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	now        func() time.Time
}

// OpenMongo connects, verifies the connection and ensures the listing index.
func OpenMongo(ctx context.Context, cfg config.MongoConfig, logger zerolog.Logger) (*MongoStore, error) {
	logger.Info().Str("uri", MaskPassword(cfg.URI)).Msg("Attempting to connect to MongoDB...")

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	store := NewMongoStore(client, client.Database(cfg.Database).Collection(cfg.Collection))
	if err := store.EnsureIndexes(connectCtx); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}

	logger.Info().
		Str("database", cfg.Database).
		Str("collection", cfg.Collection).
		Msg("MongoDB connected successfully")
	return store, nil
}

// NewMongoStore wraps an existing client and collection.
func NewMongoStore(client *mongo.Client, collection *mongo.Collection) *MongoStore {
	return &MongoStore{client: client, collection: collection, now: time.Now}
}

// EnsureIndexes creates the index backing the date-descending listing.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    listSort,
		Options: options.Index().SetName("date_desc_id_desc"),
	})
	if err != nil {
		return fmt.Errorf("failed to create transactions index: %w", err)
	}
	return nil
}

func (s *MongoStore) Insert(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	// MongoDB keeps millisecond precision
	now := s.now().UTC().Truncate(time.Millisecond)
	doc := transactionDocument{
		ID:        primitive.NewObjectID(),
		Date:      t.Date.UTC().Truncate(time.Millisecond),
		Name:      t.Name,
		Amount:    t.Amount,
		Category:  t.Category,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		return models.Transaction{}, fmt.Errorf("failed to insert transaction: %w", err)
	}

	return doc.toModel(), nil
}

func (s *MongoStore) List(ctx context.Context) ([]models.Transaction, error) {
	cursor, err := s.collection.Find(ctx, bson.D{}, options.Find().SetSort(listSort))
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}

	var docs []transactionDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}

	transactions := make([]models.Transaction, 0, len(docs))
	for _, d := range docs {
		transactions = append(transactions, d.toModel())
	}
	return transactions, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) (models.Transaction, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("invalid transaction id %q: %w", id, err)
	}

	var doc transactionDocument
	err = s.collection.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Transaction{}, ErrNotFound
		}
		return models.Transaction{}, fmt.Errorf("failed to delete transaction: %w", err)
	}

	return doc.toModel(), nil
}

func (s *MongoStore) IsValidID(id string) bool {
	return isValidID(id)
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
