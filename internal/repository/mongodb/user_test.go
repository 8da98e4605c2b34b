package mongodb

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/SamarthBurkul/uptoskills-ai-learning-platform/internal/domain"
	apperrors "github.com/SamarthBurkul/uptoskills-ai-learning-platform/pkg/errors"
)

// Integration tests; require a running MongoDB. Set MONGO_TEST_URI to enable,
// e.g. MONGO_TEST_URI=mongodb://localhost:27017 go test ./...
func newTestRepository(t *testing.T) *UserRepository {
	t.Helper()

	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set; skipping MongoDB integration tests")
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(ctx)
	})

	db := client.Database("auth_test_" + uuid.NewString()[:8])
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
	})

	repo := NewUserRepository(db)
	require.NoError(t, repo.EnsureIndexes(context.Background()))
	return repo
}

func newTestUser(email string) *domain.User {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &domain.User{
		ID:        uuid.NewString(),
		FullName:  "Jane Doe",
		Email:     email,
		Password:  "$2a$12$hash",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestCreateAndGet(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	u := newTestUser("jane@example.com")
	require.NoError(t, repo.Create(ctx, u))

	byID, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, byID.Email)

	byEmail, err := repo.GetByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)
}

func TestCreateDuplicateEmail(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestUser("dup@example.com")))

	err := repo.Create(ctx, newTestUser("dup@example.com"))
	assert.True(t, errors.Is(err, apperrors.ErrAlreadyExists))
}

func TestGetUnknownUser(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.GetByEmail(ctx, "nobody@example.com")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	_, err = repo.GetByID(ctx, "missing-id")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestRefreshTokenSlot(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	u := newTestUser("slot@example.com")
	require.NoError(t, repo.Create(ctx, u))

	require.NoError(t, repo.SetRefreshToken(ctx, u.ID, "token-1"))

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "token-1", got.RefreshToken)

	// Overwrite: single slot, last write wins.
	require.NoError(t, repo.SetRefreshToken(ctx, u.ID, "token-2"))
	got, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "token-2", got.RefreshToken)

	// Clear removes the field.
	require.NoError(t, repo.ClearRefreshToken(ctx, u.ID))
	got, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, got.RefreshToken)
}

func TestSetRefreshTokenUnknownUser(t *testing.T) {
	repo := newTestRepository(t)

	err := repo.SetRefreshToken(context.Background(), "missing-id", "token")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestClearRefreshTokenIsIdempotent(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	u := newTestUser("idem@example.com")
	require.NoError(t, repo.Create(ctx, u))

	require.NoError(t, repo.ClearRefreshToken(ctx, u.ID))
	require.NoError(t, repo.ClearRefreshToken(ctx, u.ID))
	// Clearing for an unknown user is not an error either.
	require.NoError(t, repo.ClearRefreshToken(ctx, "missing-id"))
}
