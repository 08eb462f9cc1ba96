package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/plotmarket/plot-service/internal/domain"
)

// ErrDuplicateEmail is returned when an insert hits the unique email index.
var ErrDuplicateEmail = errors.New("email already registered")

const uniqueViolation = "23505"

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	RecordLogin(ctx context.Context, id string, at time.Time) error
	UpdatePassword(ctx context.Context, id, passwordHash string, at time.Time) error
	AdjustListingCount(ctx context.Context, id string, delta int64) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `
        id, email, password_hash, role, status,
        profile_name, profile_phone, profile_avatar, identity_verified, real_name_verified,
        pref_religions, pref_price_min, pref_price_max, pref_locations,
        login_attempts, lock_until, last_login, last_password_change,
        stat_listings, stat_matches, stat_views,
        created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (
            email, password_hash, role, status,
            profile_name, profile_phone, profile_avatar, identity_verified, real_name_verified,
            pref_religions, pref_price_min, pref_price_max, pref_locations,
            login_attempts, last_login, last_password_change,
            stat_listings, stat_matches, stat_views)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Status,
		user.Profile.Name,
		user.Profile.Phone,
		user.Profile.Avatar,
		user.Profile.IdentityVerified,
		user.Profile.RealNameVerified,
		user.Preferences.Religions,
		user.Preferences.PriceMin,
		user.Preferences.PriceMax,
		user.Preferences.Locations,
		user.Security.LoginAttempts,
		user.Security.LastLogin,
		user.Security.LastPasswordChange,
		user.Statistics.Listings,
		user.Statistics.Matches,
		user.Statistics.Views,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET
            email=$1, password_hash=$2, role=$3, status=$4,
            profile_name=$5, profile_phone=$6, profile_avatar=$7,
            identity_verified=$8, real_name_verified=$9,
            pref_religions=$10, pref_price_min=$11, pref_price_max=$12, pref_locations=$13,
            updated_at=NOW()
        WHERE id=$14`

	cmd, err := r.pool.Exec(ctx, query,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Status,
		user.Profile.Name,
		user.Profile.Phone,
		user.Profile.Avatar,
		user.Profile.IdentityVerified,
		user.Profile.RealNameVerified,
		user.Preferences.Religions,
		user.Preferences.PriceMin,
		user.Preferences.PriceMax,
		user.Preferences.Locations,
		user.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT`+userColumns+` FROM users WHERE id=$1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT`+userColumns+` FROM users WHERE email=$1`, email)
}

// RecordLogin resets the failed-attempt counter and stamps last_login.
func (r *userRepository) RecordLogin(ctx context.Context, id string, at time.Time) error {
	const query = `
        UPDATE users SET login_attempts=0, lock_until=NULL, last_login=$1, updated_at=NOW()
        WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, at, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id, passwordHash string, at time.Time) error {
	const query = `
        UPDATE users SET password_hash=$1, last_password_change=$2, updated_at=NOW()
        WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, passwordHash, at, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// AdjustListingCount moves the per-seller listing counter by delta.
func (r *userRepository) AdjustListingCount(ctx context.Context, id string, delta int64) error {
	const query = `
        UPDATE users SET stat_listings = GREATEST(stat_listings + $1, 0), updated_at=NOW()
        WHERE id=$2`
	_, err := r.pool.Exec(ctx, query, delta, id)
	return err
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Status,
		&user.Profile.Name,
		&user.Profile.Phone,
		&user.Profile.Avatar,
		&user.Profile.IdentityVerified,
		&user.Profile.RealNameVerified,
		&user.Preferences.Religions,
		&user.Preferences.PriceMin,
		&user.Preferences.PriceMax,
		&user.Preferences.Locations,
		&user.Security.LoginAttempts,
		&user.Security.LockUntil,
		&user.Security.LastLogin,
		&user.Security.LastPasswordChange,
		&user.Statistics.Listings,
		&user.Statistics.Matches,
		&user.Statistics.Views,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
