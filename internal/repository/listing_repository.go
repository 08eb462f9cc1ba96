package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/plotmarket/plot-service/internal/domain"
)

// ListingFilter captures public and seller search parameters. All fields are
// optional; nil means "no constraint".
type ListingFilter struct {
	SellerID *string
	Status   *domain.ListingStatus
	MinPrice *int64
	MaxPrice *int64
	City     *string
	District *string
	PlotType *string
	Religion *string
	Limit    int
	Offset   int
}

// ListingRepository encapsulates listing persistence.
type ListingRepository interface {
	Create(ctx context.Context, listing *domain.Listing) error
	Update(ctx context.Context, listing *domain.Listing) error
	GetByID(ctx context.Context, id string) (*domain.Listing, error)
	ListWithFilter(ctx context.Context, filter ListingFilter) ([]domain.Listing, error)
	CountWithFilter(ctx context.Context, filter ListingFilter) (int64, error)
	IncrementViews(ctx context.Context, id string, delta int64, at time.Time) error
}

type listingRepository struct {
	pool *pgxpool.Pool
}

// NewListingRepository instantiates the repository.
func NewListingRepository(pool *pgxpool.Pool) ListingRepository {
	return &listingRepository{pool: pool}
}

const listingColumns = `
        id, seller_id,
        title, description, price, negotiable, images, video, virtual_tour,
        cemetery, address, city, district, lat, lng,
        parking, temple, restaurant, transportation,
        plot_type, plot_size, facing, floor, religion,
        fengshui_orientation, fengshui_environment, fengshui_features,
        registration_number, ownership_certificate, property_rights,
        legal_expiry, transferable, restrictions,
        verification_status, verification_documents, verified_at, verifier_id, verification_notes,
        status,
        stat_views, stat_favorites, stat_compares, stat_inquiries, last_viewed,
        created_at, updated_at`

func (r *listingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	const query = `
        INSERT INTO listings (
            seller_id,
            title, description, price, negotiable, images, video, virtual_tour,
            cemetery, address, city, district, lat, lng,
            parking, temple, restaurant, transportation,
            plot_type, plot_size, facing, floor, religion,
            fengshui_orientation, fengshui_environment, fengshui_features,
            registration_number, ownership_certificate, property_rights,
            legal_expiry, transferable, restrictions,
            verification_status, verification_documents, verification_notes,
            status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,
                $19,$20,$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31,$32,$33,$34,$35,$36)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		listing.SellerID,
		listing.BasicInfo.Title,
		listing.BasicInfo.Description,
		listing.BasicInfo.Price,
		listing.BasicInfo.Negotiable,
		listing.BasicInfo.Images,
		listing.BasicInfo.Video,
		listing.BasicInfo.VirtualTour,
		listing.Location.Cemetery,
		listing.Location.Address,
		listing.Location.City,
		listing.Location.District,
		listing.Location.Lat,
		listing.Location.Lng,
		listing.Location.Surroundings.Parking,
		listing.Location.Surroundings.Temple,
		listing.Location.Surroundings.Restaurant,
		listing.Location.Surroundings.Transportation,
		listing.Features.Type,
		listing.Features.Size,
		listing.Features.Facing,
		listing.Features.Floor,
		listing.Features.Religion,
		listing.Features.FengShui.Orientation,
		listing.Features.FengShui.Environment,
		listing.Features.FengShui.Features,
		listing.LegalInfo.RegistrationNumber,
		listing.LegalInfo.OwnershipCertificate,
		listing.LegalInfo.PropertyRights,
		listing.LegalInfo.ExpiryDate,
		listing.LegalInfo.Transferable,
		listing.LegalInfo.Restrictions,
		listing.Verification.Status,
		listing.Verification.Documents,
		listing.Verification.Notes,
		listing.Status,
	).Scan(&listing.ID, &listing.CreatedAt, &listing.UpdatedAt)
}

func (r *listingRepository) Update(ctx context.Context, listing *domain.Listing) error {
	const query = `
        UPDATE listings SET
            title=$1, description=$2, price=$3, negotiable=$4, images=$5, video=$6, virtual_tour=$7,
            cemetery=$8, address=$9, city=$10, district=$11, lat=$12, lng=$13,
            parking=$14, temple=$15, restaurant=$16, transportation=$17,
            plot_type=$18, plot_size=$19, facing=$20, floor=$21, religion=$22,
            fengshui_orientation=$23, fengshui_environment=$24, fengshui_features=$25,
            registration_number=$26, ownership_certificate=$27, property_rights=$28,
            legal_expiry=$29, transferable=$30, restrictions=$31,
            verification_status=$32, verification_documents=$33, verified_at=$34,
            verifier_id=$35, verification_notes=$36,
            status=$37, updated_at=NOW()
        WHERE id=$38`

	cmd, err := r.pool.Exec(ctx, query,
		listing.BasicInfo.Title,
		listing.BasicInfo.Description,
		listing.BasicInfo.Price,
		listing.BasicInfo.Negotiable,
		listing.BasicInfo.Images,
		listing.BasicInfo.Video,
		listing.BasicInfo.VirtualTour,
		listing.Location.Cemetery,
		listing.Location.Address,
		listing.Location.City,
		listing.Location.District,
		listing.Location.Lat,
		listing.Location.Lng,
		listing.Location.Surroundings.Parking,
		listing.Location.Surroundings.Temple,
		listing.Location.Surroundings.Restaurant,
		listing.Location.Surroundings.Transportation,
		listing.Features.Type,
		listing.Features.Size,
		listing.Features.Facing,
		listing.Features.Floor,
		listing.Features.Religion,
		listing.Features.FengShui.Orientation,
		listing.Features.FengShui.Environment,
		listing.Features.FengShui.Features,
		listing.LegalInfo.RegistrationNumber,
		listing.LegalInfo.OwnershipCertificate,
		listing.LegalInfo.PropertyRights,
		listing.LegalInfo.ExpiryDate,
		listing.LegalInfo.Transferable,
		listing.LegalInfo.Restrictions,
		listing.Verification.Status,
		listing.Verification.Documents,
		listing.Verification.VerifiedAt,
		listing.Verification.VerifierID,
		listing.Verification.Notes,
		listing.Status,
		listing.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *listingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	query := `SELECT` + listingColumns + ` FROM listings WHERE id=$1`
	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	listings, err := scanListings(rows)
	if err != nil {
		return nil, err
	}
	if len(listings) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &listings[0], nil
}

func (r *listingRepository) ListWithFilter(ctx context.Context, filter ListingFilter) ([]domain.Listing, error) {
	clauses, args := filterClauses(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT%s FROM listings WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		listingColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanListings(rows)
}

func (r *listingRepository) CountWithFilter(ctx context.Context, filter ListingFilter) (int64, error) {
	clauses, args := filterClauses(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM listings WHERE %s`, strings.Join(clauses, " AND "))

	var total int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// IncrementViews folds accumulated view counts into the row.
func (r *listingRepository) IncrementViews(ctx context.Context, id string, delta int64, at time.Time) error {
	const query = `
        UPDATE listings SET stat_views = stat_views + $1, last_viewed=$2
        WHERE id=$3`
	_, err := r.pool.Exec(ctx, query, delta, at, id)
	return err
}

func filterClauses(filter ListingFilter) ([]string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.SellerID != nil {
		args = append(args, *filter.SellerID)
		clauses = append(clauses, fmt.Sprintf("seller_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.MinPrice != nil {
		args = append(args, *filter.MinPrice)
		clauses = append(clauses, fmt.Sprintf("price >= $%d", len(args)))
	}
	if filter.MaxPrice != nil {
		args = append(args, *filter.MaxPrice)
		clauses = append(clauses, fmt.Sprintf("price <= $%d", len(args)))
	}
	if filter.City != nil {
		args = append(args, *filter.City)
		clauses = append(clauses, fmt.Sprintf("city=$%d", len(args)))
	}
	if filter.District != nil {
		args = append(args, *filter.District)
		clauses = append(clauses, fmt.Sprintf("district=$%d", len(args)))
	}
	if filter.PlotType != nil {
		args = append(args, *filter.PlotType)
		clauses = append(clauses, fmt.Sprintf("plot_type=$%d", len(args)))
	}
	if filter.Religion != nil {
		args = append(args, *filter.Religion)
		clauses = append(clauses, fmt.Sprintf("religion=$%d", len(args)))
	}
	return clauses, args
}

func scanListings(rows pgx.Rows) ([]domain.Listing, error) {
	var result []domain.Listing
	for rows.Next() {
		var l domain.Listing
		if err := rows.Scan(
			&l.ID,
			&l.SellerID,
			&l.BasicInfo.Title,
			&l.BasicInfo.Description,
			&l.BasicInfo.Price,
			&l.BasicInfo.Negotiable,
			&l.BasicInfo.Images,
			&l.BasicInfo.Video,
			&l.BasicInfo.VirtualTour,
			&l.Location.Cemetery,
			&l.Location.Address,
			&l.Location.City,
			&l.Location.District,
			&l.Location.Lat,
			&l.Location.Lng,
			&l.Location.Surroundings.Parking,
			&l.Location.Surroundings.Temple,
			&l.Location.Surroundings.Restaurant,
			&l.Location.Surroundings.Transportation,
			&l.Features.Type,
			&l.Features.Size,
			&l.Features.Facing,
			&l.Features.Floor,
			&l.Features.Religion,
			&l.Features.FengShui.Orientation,
			&l.Features.FengShui.Environment,
			&l.Features.FengShui.Features,
			&l.LegalInfo.RegistrationNumber,
			&l.LegalInfo.OwnershipCertificate,
			&l.LegalInfo.PropertyRights,
			&l.LegalInfo.ExpiryDate,
			&l.LegalInfo.Transferable,
			&l.LegalInfo.Restrictions,
			&l.Verification.Status,
			&l.Verification.Documents,
			&l.Verification.VerifiedAt,
			&l.Verification.VerifierID,
			&l.Verification.Notes,
			&l.Status,
			&l.Stats.Views,
			&l.Stats.Favorites,
			&l.Stats.Compares,
			&l.Stats.Inquiries,
			&l.Stats.LastViewed,
			&l.CreatedAt,
			&l.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, l)
	}
	return result, rows.Err()
}
