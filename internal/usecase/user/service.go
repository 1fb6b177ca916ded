package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"user-auth-service/internal/config"
	domainUser "user-auth-service/internal/domain/user"
	"user-auth-service/internal/logger"
	"user-auth-service/internal/mailer"
	"user-auth-service/internal/metrics"
	appErrors "user-auth-service/pkg/errors"
	"user-auth-service/pkg/utils"
)

const (
	opRegister       = "register"
	opLogin          = "login"
	opForgotPassword = "forgot_password"
	opResetPassword  = "reset_password"
)

// Service owns the credential fields of a user and the reset-token
// lifecycle: NoPendingReset -> PendingReset -> NoPendingReset.
type Service struct {
	userRepo domainUser.Repository
	mailer   mailer.Mailer
	config   *config.Config

	now           func() time.Time
	generateToken func() (string, error)
	checkPassword func(hash, password string) bool
}

type Option func(*Service)

// WithClock overrides the time source used for reset token expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithTokenGenerator overrides the reset token source.
func WithTokenGenerator(gen func() (string, error)) Option {
	return func(s *Service) { s.generateToken = gen }
}

func NewService(userRepo domainUser.Repository, m mailer.Mailer, cfg *config.Config, opts ...Option) *Service {
	s := &Service{
		userRepo:      userRepo,
		mailer:        m,
		config:        cfg,
		now:           time.Now,
		generateToken: utils.GenerateResetToken,
		checkPassword: utils.CheckPassword,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Register(ctx context.Context, req *RegisterRequest) (_ *RegisterResponse, err error) {
	defer func() { recordOutcome(opRegister, err) }()

	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "Invalid input", err)
	}
	if err := s.checkPasswordPolicy(req.Password); err != nil {
		return nil, err
	}

	existingUser, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, domainUser.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		logger.Warn("Registration attempt with existing email",
			zap.String("email", req.Email),
			zap.String("event", "registration_failed_duplicate_email"),
		)
		return nil, appErrors.ErrDuplicateUser
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &domainUser.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hashedPassword,
	}

	if err := s.userRepo.Create(ctx, u); err != nil {
		if errors.Is(err, domainUser.ErrUserAlreadyExists) {
			return nil, appErrors.ErrDuplicateUser
		}
		return nil, err
	}

	logger.Info("User registered successfully",
		zap.String("user_id", u.ID.String()),
		zap.String("email", u.Email),
		zap.String("event", "user_registered"),
	)

	return &RegisterResponse{ID: u.ID}, nil
}

// Login verifies credentials and issues an access token. An unknown email
// and a wrong password fail with the same error after the same bcrypt work.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (_ *LoginResponse, err error) {
	defer func() { recordOutcome(opLogin, err) }()

	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "Invalid input", err)
	}

	u, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			s.checkPassword(utils.DummyPasswordHash(), req.Password)
			logger.Warn("Login attempt with non-existent email",
				zap.String("email", req.Email),
				zap.String("event", "user_not_found"),
			)
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !s.checkPassword(u.PasswordHash, req.Password) {
		logger.Warn("Login attempt with invalid password",
			zap.String("user_id", u.ID.String()),
			zap.String("event", "login_failed_invalid_password"),
		)
		return nil, appErrors.ErrInvalidCredentials
	}

	token, expiresAt, err := utils.GenerateAccessToken(u.ID, s.config.JWT.Secret, s.config.JWT.Expiry())
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	logger.Info("User logged in successfully",
		zap.String("user_id", u.ID.String()),
		zap.String("event", "login_success"),
	)

	return &LoginResponse{Token: token, ExpiresAt: expiresAt}, nil
}

// ForgotPassword stores a fresh reset token for the user, replacing any
// pending one, and emails the reset link. The token stays stored even when
// the email cannot be delivered.
func (s *Service) ForgotPassword(ctx context.Context, req *ForgotPasswordRequest) (err error) {
	defer func() { recordOutcome(opForgotPassword, err) }()

	if err := utils.ValidateStruct(req); err != nil {
		return appErrors.NewAppError(appErrors.CodeValidation, "Invalid input", err)
	}

	u, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			logger.Info("Password reset requested for non-existent email",
				zap.String("email", req.Email),
				zap.String("event", "password_reset_requested_non_existent_email"),
			)
			if s.config.PasswordReset.ConcealUnknownEmail {
				return nil
			}
			return appErrors.ErrUserNotFound
		}
		return fmt.Errorf("failed to retrieve user: %w", err)
	}

	token, err := s.generateToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	expiresAt := s.now().Add(s.config.PasswordReset.TokenTTL)

	if err := s.userRepo.SetResetToken(ctx, u.ID, token, expiresAt); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	logger.Info("Password reset token generated",
		zap.String("user_id", u.ID.String()),
		zap.Time("expires_at", expiresAt),
		zap.String("event", "password_reset_token_generated"),
	)

	link := mailer.ResetLink(s.config.PasswordReset.URLBase, token)
	msg := mailer.NewResetPasswordMessage(s.config.Mail.From, u.Email, link)

	if err := s.mailer.Send(ctx, msg); err != nil {
		logger.Error("Failed to send password reset email",
			zap.String("user_id", u.ID.String()),
			zap.String("event", "password_reset_email_failed"),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", appErrors.ErrEmailDeliveryFailed, err)
	}

	logger.Info("Password reset email sent",
		zap.String("user_id", u.ID.String()),
		zap.String("event", "password_reset_email_sent"),
	)

	return nil
}

// ResetPassword consumes a pending, unexpired reset token and replaces the
// password. Unknown and expired tokens are reported identically.
func (s *Service) ResetPassword(ctx context.Context, token string, req *ResetPasswordRequest) (err error) {
	defer func() { recordOutcome(opResetPassword, err) }()

	if err := utils.ValidateStruct(req); err != nil {
		return appErrors.NewAppError(appErrors.CodeValidation, "Invalid input", err)
	}
	if err := s.checkPasswordPolicy(req.NewPassword); err != nil {
		return err
	}
	if token == "" {
		return appErrors.ErrInvalidOrExpiredToken
	}

	hashedPassword, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	u, err := s.userRepo.ConsumeResetToken(ctx, token, s.now(), hashedPassword)
	if err != nil {
		if errors.Is(err, domainUser.ErrResetTokenInvalid) {
			logger.Warn("Password reset attempt with invalid or expired token",
				zap.String("event", "password_reset_failed_invalid_token"),
			)
			return appErrors.ErrInvalidOrExpiredToken
		}
		return err
	}

	logger.Info("Password reset successfully",
		zap.String("user_id", u.ID.String()),
		zap.String("event", "password_reset_success"),
	)

	return nil
}

func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			return nil, appErrors.ErrUserNotFound
		}
		return nil, err
	}

	return ToUserResponse(u), nil
}

func (s *Service) checkPasswordPolicy(password string) error {
	if !s.config.PasswordReset.RequireStrong {
		return nil
	}
	if err := utils.ValidatePassword(password); err != nil {
		return appErrors.NewAppError(appErrors.CodeWeakPassword, err.Error(), nil)
	}
	return nil
}

func recordOutcome(operation string, err error) {
	var appErr *appErrors.AppError
	switch {
	case err == nil:
		metrics.RecordAuthOperation(operation, metrics.OutcomeSuccess)
	case errors.Is(err, appErrors.ErrDuplicateUser),
		errors.Is(err, appErrors.ErrInvalidCredentials),
		errors.Is(err, appErrors.ErrUserNotFound),
		errors.Is(err, appErrors.ErrInvalidOrExpiredToken),
		errors.As(err, &appErr):
		metrics.RecordAuthOperation(operation, metrics.OutcomeFailure)
	default:
		metrics.RecordAuthOperation(operation, metrics.OutcomeError)
	}
}
