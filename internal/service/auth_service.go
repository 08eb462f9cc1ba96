package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/plotmarket/plot-service/internal/auth"
	"github.com/plotmarket/plot-service/internal/config"
	"github.com/plotmarket/plot-service/internal/domain"
	"github.com/plotmarket/plot-service/internal/events"
	"github.com/plotmarket/plot-service/internal/repository"
	apperrors "github.com/plotmarket/plot-service/pkg/util/errorutil"
)

// invalidCredentials is the single message for every login failure: unknown
// email, wrong password and suspended account are indistinguishable.
const invalidCredentials = "invalid credentials"

// AuthService coordinates registration, login and profile flows.
type AuthService struct {
	users      repository.UserRepository
	resets     repository.PasswordResetRepository
	tokenMgr   *auth.TokenManager
	dispatcher events.Dispatcher
	bcryptCost int
	resetTTL   time.Duration
}

// AuthDependencies encapsulates repo requirements for the auth service.
type AuthDependencies struct {
	UserRepo          repository.UserRepository
	PasswordResetRepo repository.PasswordResetRepository
	Dispatcher        events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		resets:     deps.PasswordResetRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		dispatcher: deps.Dispatcher,
		bcryptCost: cfg.Auth.BcryptCost,
		resetTTL:   time.Duration(cfg.Auth.PasswordResetTTLMinutes) * time.Minute,
	}
}

// Register creates a new account. The plaintext password is hashed before the
// single-row insert; a duplicate email surfaces as a conflict and leaves no
// second record.
func (s *AuthService) Register(ctx context.Context, email, password string, role domain.Role, name, phone string) (*domain.User, string, time.Time, error) {
	if !domain.ValidRole(role) {
		return nil, "", time.Time{}, apperrors.NewValidationError("role must be buyer or seller", nil)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	now := time.Now()
	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Status:       domain.UserStatusActive,
		Profile: domain.Profile{
			Name:  name,
			Phone: phone,
		},
		Preferences: domain.Preferences{
			Religions: []string{},
			Locations: []string{},
		},
		Security: domain.Security{
			LastLogin:          &now,
			LastPasswordChange: &now,
		},
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, "", time.Time{}, apperrors.NewConflict("email already registered", nil)
		}
		return nil, "", time.Time{}, err
	}

	s.publish(ctx, events.EventUserRegistered, user.ID, events.UserRegisteredPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})

	token, exp, err := s.tokenMgr.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// Login authenticates an account and issues a bearer token. The unknown-email
// path burns a dummy bcrypt comparison so it does not return measurably
// faster than the wrong-password path.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			auth.CompareDummy(password)
			return nil, "", time.Time{}, apperrors.NewUnauthorized(invalidCredentials)
		}
		return nil, "", time.Time{}, err
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized(invalidCredentials)
	}
	if user.Status != domain.UserStatusActive {
		return nil, "", time.Time{}, apperrors.NewUnauthorized(invalidCredentials)
	}

	if err := s.users.RecordLogin(ctx, user.ID, time.Now()); err != nil {
		return nil, "", time.Time{}, err
	}

	token, exp, err := s.tokenMgr.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// Profile loads the account behind a validated token. A subject deleted since
// issuance yields not-found.
func (s *AuthService) Profile(ctx context.Context, subjectID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}
	return user, nil
}

// ProfileUpdate carries optional profile and preference changes.
type ProfileUpdate struct {
	Name      *string
	Phone     *string
	Avatar    *string
	Religions []string
	PriceMin  *int64
	PriceMax  *int64
	Locations []string
}

// UpdateProfile applies partial profile changes.
func (s *AuthService) UpdateProfile(ctx context.Context, subjectID string, update ProfileUpdate) (*domain.User, error) {
	user, err := s.Profile(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		user.Profile.Name = *update.Name
	}
	if update.Phone != nil {
		user.Profile.Phone = *update.Phone
	}
	if update.Avatar != nil {
		user.Profile.Avatar = *update.Avatar
	}
	if update.Religions != nil {
		user.Preferences.Religions = update.Religions
	}
	if update.PriceMin != nil {
		user.Preferences.PriceMin = *update.PriceMin
	}
	if update.PriceMax != nil {
		user.Preferences.PriceMax = *update.PriceMax
	}
	if update.Locations != nil {
		user.Preferences.Locations = update.Locations
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword verifies the current password before storing the new hash.
func (s *AuthService) ChangePassword(ctx context.Context, subjectID, currentPassword, newPassword string) error {
	user, err := s.Profile(ctx, subjectID)
	if err != nil {
		return err
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return apperrors.NewUnauthorized(invalidCredentials)
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, user.ID, hash, time.Now())
}

// RequestPasswordReset persists a single-use reset token for the email.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (*repository.PasswordResetToken, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}

	token := &repository.PasswordResetToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

// ConfirmPasswordReset validates a reset token and updates the password.
// Resetting does not invalidate outstanding bearer tokens.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, tokenStr, newPassword string) error {
	token, err := s.resets.GetByToken(ctx, tokenStr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewValidationError("invalid reset token", nil)
		}
		return err
	}
	if token.UsedAt != nil || time.Now().After(token.ExpiresAt) {
		return apperrors.NewValidationError("reset token expired or used", nil)
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, token.UserID, hash, time.Now()); err != nil {
		return err
	}
	return s.resets.MarkUsed(ctx, token.ID)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, subjectID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
