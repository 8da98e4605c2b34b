package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/SamarthBurkul/uptoskills-ai-learning-platform/internal/domain"
	apperrors "github.com/SamarthBurkul/uptoskills-ai-learning-platform/pkg/errors"
)

const usersCollection = "users"

// UserRepository implements repository.UserRepository using MongoDB.
type UserRepository struct {
	users *mongo.Collection
}

// NewUserRepository creates a MongoDB-backed user repository.
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{users: db.Collection(usersCollection)}
}

// EnsureIndexes creates the unique email index that backs the duplicate
// registration check. Safe to call on every startup.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}
	return nil
}

// Create inserts a new user document.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	_, err := r.users.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.Conflict("user with this email already exists")
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by their ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetByEmail retrieves a user by their email address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// SetRefreshToken overwrites the user's refresh token slot with a
// single-field $set. The document's other fields are untouched, so this
// bypasses any whole-document validation path.
func (r *UserRepository) SetRefreshToken(ctx context.Context, userID, token string) error {
	res, err := r.users.UpdateByID(ctx, userID, bson.M{
		"$set": bson.M{
			"refreshToken": token,
			"updatedAt":    time.Now().UTC(),
		},
	})
	if err != nil {
		return fmt.Errorf("set refresh token: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("user does not exist")
	}
	return nil
}

// ClearRefreshToken removes the refresh token field from the user document.
func (r *UserRepository) ClearRefreshToken(ctx context.Context, userID string) error {
	_, err := r.users.UpdateByID(ctx, userID, bson.M{
		"$unset": bson.M{"refreshToken": 1},
	})
	if err != nil {
		return fmt.Errorf("clear refresh token: %w", err)
	}
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var u domain.User
	if err := r.users.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("user does not exist")
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}
