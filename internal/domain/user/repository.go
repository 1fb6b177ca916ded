package user

import (
	"context"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=repository.go -destination=mocks/repository_mock.go -package=mocks

// Repository is the user-record store.
type Repository interface {
	// Create assigns u.ID and timestamps and inserts the record.
	// It returns ErrUserAlreadyExists when the email is taken.
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (*User, error)

	// SetResetToken stores a pending reset, replacing any previous one.
	SetResetToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error

	// ConsumeResetToken atomically matches a user whose reset token equals
	// token and whose expiry is after now, replaces the password hash and
	// clears both reset fields. It returns ErrResetTokenInvalid when no
	// record matches.
	ConsumeResetToken(ctx context.Context, token string, now time.Time, passwordHash string) (*User, error)
}
