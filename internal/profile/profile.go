// Package profile stores the contact details a customer keeps with the shop.
package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/chibyk-cyber/pro-shop/internal/apperr"
)

var ErrProfileNotFound = errors.New("profile not found")

type Profile struct {
	UserID    string    `bson:"user_id" json:"user_id"`
	Name      string    `bson:"name" json:"name"`
	Phone     string    `bson:"phone" json:"phone"`
	Address   string    `bson:"address" json:"address"`
	Email     string    `bson:"email" json:"email"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

const (
	maxNameLen    = 200
	maxPhoneLen   = 32
	maxAddressLen = 1000
)

func (p *Profile) Validate() error {
	p.Name = strings.TrimSpace(p.Name)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Address = strings.TrimSpace(p.Address)
	switch {
	case len(p.Name) > maxNameLen:
		return apperr.Validation("name", "is too long")
	case len(p.Phone) > maxPhoneLen:
		return apperr.Validation("phone", "is too long")
	case len(p.Address) > maxAddressLen:
		return apperr.Validation("address", "is too long")
	}
	return nil
}

type MongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{collection: db.Collection("profiles")}
}

func (m *MongoRepository) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	var p Profile
	err := m.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}

func (m *MongoRepository) SaveProfile(ctx context.Context, p *Profile) error {
	p.UpdatedAt = time.Now().UTC()
	opts := options.Replace().SetUpsert(true)
	if _, err := m.collection.ReplaceOne(ctx, bson.M{"user_id": p.UserID}, p, opts); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

func (m *MongoRepository) CreateIndexes(ctx context.Context) error {
	_, err := m.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

type Repository interface {
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	SaveProfile(ctx context.Context, p *Profile) error
}

// Service reads and writes the profile of the calling user only; the owner
// is always taken from the session, never from the request body.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns the stored profile, or an empty one carrying the session email.
func (s *Service) Get(ctx context.Context, userID, email string) (*Profile, error) {
	p, err := s.repo.GetProfile(ctx, userID)
	if errors.Is(err, ErrProfileNotFound) {
		return &Profile{UserID: userID, Email: email}, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Save(ctx context.Context, userID, email string, in Profile) (*Profile, error) {
	in.UserID = userID
	in.Email = email
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.SaveProfile(ctx, &in); err != nil {
		return nil, err
	}
	return &in, nil
}
