package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nijercart/storefront/internal/wishlist"
)

type mongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) WishlistRepository {
	return &mongoRepository{
		collection: db.Collection("wishlists"),
	}
}

func (m *mongoRepository) Fetch(ctx context.Context, userID string) ([]wishlist.Entry, error) {
	filter := bson.M{"user_id": userID}
	opts := options.Find().SetSort(bson.D{{Key: "added_at", Value: -1}})

	cursor, err := m.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch wishlist: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []wishlist.Entry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode wishlist entries: %w", err)
	}

	return entries, nil
}

func (m *mongoRepository) Insert(ctx context.Context, entry *wishlist.Entry) error {
	if entry.AddedAt.IsZero() {
		entry.AddedAt = time.Now()
	}

	_, err := m.collection.InsertOne(ctx, entry)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return wishlist.ErrDuplicateEntry
		}
		return fmt.Errorf("failed to insert wishlist entry: %w", err)
	}

	return nil
}

func (m *mongoRepository) Delete(ctx context.Context, userID, bookID string) error {
	filter := bson.M{"user_id": userID, "book_id": bookID}

	result, err := m.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete wishlist entry: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrEntryNotFound
	}

	return nil
}

// CreateIndexes enforces at most one entry per (user, book) pair.
func CreateIndexes(ctx context.Context, db *mongo.Database) error {
	index := mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "book_id", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	}

	_, err := db.Collection("wishlists").Indexes().CreateOne(ctx, index)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}
