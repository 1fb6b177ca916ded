package postgres

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"user-auth-service/internal/domain/user"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	db := &DB{DB: gdb}
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { _ = db.Close(context.Background()) })

	return db
}

func createUser(t *testing.T, repo user.Repository, email string) *user.User {
	t.Helper()
	u := &user.User{Name: "A", Email: email, PasswordHash: "hash"}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	repo := newTestDB(t).Users()
	ctx := context.Background()

	u := createUser(t, repo, "a@x.com")
	assert.NotEqual(t, uuid.Nil, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	byEmail, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)
	assert.Equal(t, "A", byEmail.Name)
	assert.Equal(t, "hash", byEmail.PasswordHash)
	assert.Nil(t, byEmail.ResetToken)
	assert.Nil(t, byEmail.ResetTokenExpiry)

	byID, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", byID.Email)
}

func TestUserRepository_NotFound(t *testing.T) {
	repo := newTestDB(t).Users()
	ctx := context.Background()

	_, err := repo.GetByEmail(ctx, "missing@x.com")
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	err = repo.SetResetToken(ctx, uuid.New(), "tok", time.Now().Add(time.Hour))
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	repo := newTestDB(t).Users()

	createUser(t, repo, "a@x.com")

	err := repo.Create(context.Background(), &user.User{Name: "B", Email: "a@x.com", PasswordHash: "other"})
	assert.ErrorIs(t, err, user.ErrUserAlreadyExists)
}

func TestUserRepository_SetResetTokenOverwrites(t *testing.T) {
	repo := newTestDB(t).Users()
	ctx := context.Background()
	u := createUser(t, repo, "a@x.com")

	first := time.Now().Add(time.Hour)
	require.NoError(t, repo.SetResetToken(ctx, u.ID, "first", first))

	second := time.Now().Add(2 * time.Hour)
	require.NoError(t, repo.SetResetToken(ctx, u.ID, "second", second))

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ResetToken)
	require.NotNil(t, got.ResetTokenExpiry)
	assert.Equal(t, "second", *got.ResetToken)
	assert.WithinDuration(t, second, *got.ResetTokenExpiry, time.Millisecond)

	_, err = repo.ConsumeResetToken(ctx, "first", time.Now(), "new-hash")
	assert.ErrorIs(t, err, user.ErrResetTokenInvalid)
}

func TestUserRepository_ConsumeResetToken(t *testing.T) {
	repo := newTestDB(t).Users()
	ctx := context.Background()
	u := createUser(t, repo, "a@x.com")

	require.NoError(t, repo.SetResetToken(ctx, u.ID, "tok", time.Now().Add(time.Hour)))

	consumed, err := repo.ConsumeResetToken(ctx, "tok", time.Now(), "new-hash")
	require.NoError(t, err)
	assert.Equal(t, u.ID, consumed.ID)
	assert.Equal(t, "new-hash", consumed.PasswordHash)
	assert.Nil(t, consumed.ResetToken)

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.PasswordHash)
	assert.Nil(t, got.ResetToken)
	assert.Nil(t, got.ResetTokenExpiry)

	_, err = repo.ConsumeResetToken(ctx, "tok", time.Now(), "again")
	assert.ErrorIs(t, err, user.ErrResetTokenInvalid)
}

func TestUserRepository_ConsumeExpiredToken(t *testing.T) {
	repo := newTestDB(t).Users()
	ctx := context.Background()
	u := createUser(t, repo, "a@x.com")

	expiry := time.Now().Add(time.Hour)
	require.NoError(t, repo.SetResetToken(ctx, u.ID, "tok", expiry))

	_, err := repo.ConsumeResetToken(ctx, "tok", expiry.Add(time.Second), "new-hash")
	assert.ErrorIs(t, err, user.ErrResetTokenInvalid)

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash", got.PasswordHash)
	require.NotNil(t, got.ResetToken, "expired tokens are left in place")
}

func TestUserRepository_ConsumeResetTokenOnce(t *testing.T) {
	repo := newTestDB(t).Users()
	ctx := context.Background()
	u := createUser(t, repo, "a@x.com")
	require.NoError(t, repo.SetResetToken(ctx, u.ID, "tok", time.Now().Add(time.Hour)))

	var (
		wg        sync.WaitGroup
		successes atomic.Int32
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.ConsumeResetToken(ctx, "tok", time.Now(), "new-hash"); err == nil {
				successes.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
}
