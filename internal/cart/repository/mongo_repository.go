package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/chibyk-cyber/pro-shop/internal/cart/domain"
)

type MongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		collection: db.Collection("carts"),
	}
}

func (m *MongoRepository) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	var cart domain.Cart

	err := m.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}

	return &cart, nil
}

// AddItem bumps an existing line or pushes a new one. The filters make each
// step conditional, so a step that loses a race is retried once as the other.
func (m *MongoRepository) AddItem(ctx context.Context, userID string, item domain.CartItem, maxQty int) (*domain.Cart, error) {
	now := time.Now().UTC()
	if item.AddedAt.IsZero() {
		item.AddedAt = now
	}

	_, err := m.collection.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$setOnInsert": bson.M{
			"user_id":    userID,
			"items":      []domain.CartItem{},
			"created_at": now,
			"updated_at": now,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	after := options.FindOneAndUpdate().SetReturnDocument(options.After)
	for attempt := 0; attempt < 2; attempt++ {
		inc := bson.M{
			"user_id": userID,
			"items": bson.M{"$elemMatch": bson.M{
				"name":     item.Name,
				"quantity": bson.M{"$lte": maxQty - item.Quantity},
			}},
		}
		update := bson.M{
			"$inc": bson.M{"items.$.quantity": item.Quantity},
			"$set": bson.M{"items.$.added_at": item.AddedAt, "updated_at": now},
		}
		cart, err := m.findAndUpdate(ctx, inc, update, after)
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return cart, err
		}

		if item.Quantity > maxQty {
			break
		}
		push := bson.M{"user_id": userID, "items.name": bson.M{"$ne": item.Name}}
		update = bson.M{
			"$push": bson.M{"items": item},
			"$set":  bson.M{"updated_at": now},
		}
		cart, err = m.findAndUpdate(ctx, push, update, after)
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return cart, err
		}
	}
	return nil, ErrQuantityLimit
}

func (m *MongoRepository) RemoveItem(ctx context.Context, userID, name string) (*domain.Cart, error) {
	filter := bson.M{"user_id": userID, "items.name": name}
	update := bson.M{
		"$pull": bson.M{"items": bson.M{"name": name}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	cart, err := m.findAndUpdate(ctx, filter, update, options.FindOneAndUpdate().SetReturnDocument(options.After))
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrItemNotFound
	}
	return cart, err
}

// findAndUpdate passes mongo.ErrNoDocuments through unwrapped.
func (m *MongoRepository) findAndUpdate(ctx context.Context, filter, update bson.M, opts *options.FindOneAndUpdateOptions) (*domain.Cart, error) {
	var cart domain.Cart
	err := m.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&cart)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update cart: %w", err)
	}
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}
	return &cart, nil
}

func (m *MongoRepository) DeleteCart(ctx context.Context, userID string) error {
	result, err := m.collection.DeleteOne(ctx, bson.M{"user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrCartNotFound
	}
	return nil
}

func (m *MongoRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(90 * 24 * 60 * 60), // 90 days TTL
		},
	}

	if _, err := m.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}
