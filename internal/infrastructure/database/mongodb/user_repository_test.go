package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"user-auth-service/internal/domain/user"
)

const testNS = "auth.users"

func userDoc(id uuid.UUID, extra ...bson.E) bson.D {
	doc := bson.D{
		{Key: "_id", Value: id.String()},
		{Key: "name", Value: "A"},
		{Key: "email", Value: "a@x.com"},
		{Key: "password_hash", Value: "hash"},
		{Key: "created_at", Value: time.Now().UTC()},
		{Key: "updated_at", Value: time.Now().UTC()},
	}
	return append(doc, extra...)
}

func TestUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("create assigns id", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		u := &user.User{Name: "A", Email: "a@x.com", PasswordHash: "hash"}
		require.NoError(mt, repo.Create(ctx, u))
		assert.NotEqual(mt, uuid.Nil, u.ID)
		assert.False(mt, u.CreatedAt.IsZero())
	})

	mt.Run("create duplicate email", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: auth.users index: email_unique",
		}))

		err := repo.Create(ctx, &user.User{Email: "a@x.com", PasswordHash: "hash"})
		assert.ErrorIs(mt, err, user.ErrUserAlreadyExists)
	})

	mt.Run("get by email", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		id := uuid.New()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch, userDoc(id)))

		got, err := repo.GetByEmail(ctx, "a@x.com")
		require.NoError(mt, err)
		assert.Equal(mt, id, got.ID)
		assert.Equal(mt, "hash", got.PasswordHash)
		assert.Nil(mt, got.ResetToken)
		assert.Nil(mt, got.ResetTokenExpiry)
	})

	mt.Run("get by id not found", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch))

		_, err := repo.GetByID(ctx, uuid.New())
		assert.ErrorIs(mt, err, user.ErrUserNotFound)
	})

	mt.Run("set reset token", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		err := repo.SetResetToken(ctx, uuid.New(), "tok", time.Now().Add(time.Hour))
		assert.NoError(mt, err)
	})

	mt.Run("set reset token unknown user", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		err := repo.SetResetToken(ctx, uuid.New(), "tok", time.Now().Add(time.Hour))
		assert.ErrorIs(mt, err, user.ErrUserNotFound)
	})

	mt.Run("consume reset token", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		id := uuid.New()
		doc := userDoc(id)
		doc[3] = bson.E{Key: "password_hash", Value: "new-hash"}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: doc}))

		got, err := repo.ConsumeResetToken(ctx, "tok", time.Now(), "new-hash")
		require.NoError(mt, err)
		assert.Equal(mt, id, got.ID)
		assert.Equal(mt, "new-hash", got.PasswordHash)
		assert.Nil(mt, got.ResetToken)
	})

	mt.Run("consume unknown or expired token", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := repo.ConsumeResetToken(ctx, "tok", time.Now(), "new-hash")
		assert.ErrorIs(mt, err, user.ErrResetTokenInvalid)
	})

	mt.Run("ensure indexes", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		assert.NoError(mt, repo.EnsureIndexes(ctx))
	})
}
