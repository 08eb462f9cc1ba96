package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/plotmarket/plot-service/internal/domain"
	"github.com/plotmarket/plot-service/internal/events"
	"github.com/plotmarket/plot-service/internal/repository"
	apperrors "github.com/plotmarket/plot-service/pkg/util/errorutil"
)

// ListingService coordinates plot listing workflows.
type ListingService struct {
	listings   repository.ListingRepository
	users      repository.UserRepository
	stats      *StatsService
	dispatcher events.Dispatcher
}

// ListingDependencies bundles collaborators for the listing service.
type ListingDependencies struct {
	ListingRepo repository.ListingRepository
	UserRepo    repository.UserRepository
	Stats       *StatsService
	Dispatcher  events.Dispatcher
}

// NewListingService builds the service.
func NewListingService(deps ListingDependencies) *ListingService {
	return &ListingService{
		listings:   deps.ListingRepo,
		users:      deps.UserRepo,
		stats:      deps.Stats,
		dispatcher: deps.Dispatcher,
	}
}

// ListingInput carries the full editable listing payload.
type ListingInput struct {
	BasicInfo domain.BasicInfo
	Location  domain.Location
	Features  domain.Features
	LegalInfo domain.LegalInfo
	Documents []string
	Status    domain.ListingStatus
}

// ListingPage is one page of results plus pagination totals.
type ListingPage struct {
	Items      []domain.Listing
	Total      int64
	Page       int
	TotalPages int
}

// ListingQuery captures public search parameters.
type ListingQuery struct {
	MinPrice *int64
	MaxPrice *int64
	City     *string
	District *string
	PlotType *string
	Religion *string
	Status   *domain.ListingStatus
	Page     int
	PageSize int
}

// Create stores a new listing owned by sellerID.
func (s *ListingService) Create(ctx context.Context, sellerID string, input ListingInput) (*domain.Listing, error) {
	if err := validateListingInput(input); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = domain.ListingStatusDraft
	}
	listing := &domain.Listing{
		SellerID:  sellerID,
		BasicInfo: input.BasicInfo,
		Location:  input.Location,
		Features:  input.Features,
		LegalInfo: input.LegalInfo,
		Verification: domain.Verification{
			Status:    domain.VerificationPending,
			Documents: input.Documents,
		},
		Status: status,
	}
	normalizeListing(listing)

	if err := s.listings.Create(ctx, listing); err != nil {
		return nil, err
	}
	_ = s.users.AdjustListingCount(ctx, sellerID, 1)

	s.publish(ctx, events.EventListingCreated, listing.ID, events.ListingCreatedPayload{
		ListingID: listing.ID,
		SellerID:  sellerID,
		City:      listing.Location.City,
		Price:     listing.BasicInfo.Price,
	})
	return listing, nil
}

// Get returns one listing and records the view. Soft-deleted listings behave
// as if they never existed.
func (s *ListingService) Get(ctx context.Context, id string) (*domain.Listing, error) {
	listing, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.stats != nil {
		s.stats.RecordView(ctx, listing.ID)
	}
	s.publish(ctx, events.EventListingViewed, listing.ID, events.ListingViewedPayload{ListingID: listing.ID})
	return listing, nil
}

// ListPublic pages through listings for anonymous browsing. Status defaults
// to published.
func (s *ListingService) ListPublic(ctx context.Context, query ListingQuery) (*ListingPage, error) {
	status := domain.ListingStatusPublished
	if query.Status != nil {
		status = *query.Status
	}
	filter := repository.ListingFilter{
		Status:   &status,
		MinPrice: query.MinPrice,
		MaxPrice: query.MaxPrice,
		City:     query.City,
		District: query.District,
		PlotType: query.PlotType,
		Religion: query.Religion,
	}
	return s.page(ctx, filter, query.Page, query.PageSize)
}

// ListBySeller pages through one seller's own listings, any status.
func (s *ListingService) ListBySeller(ctx context.Context, sellerID string, status *domain.ListingStatus, page, pageSize int) (*ListingPage, error) {
	filter := repository.ListingFilter{
		SellerID: &sellerID,
		Status:   status,
	}
	return s.page(ctx, filter, page, pageSize)
}

// Update replaces the editable sections of a listing the actor owns.
func (s *ListingService) Update(ctx context.Context, actorID, id string, input ListingInput) (*domain.Listing, error) {
	listing, err := s.owned(ctx, actorID, id)
	if err != nil {
		return nil, err
	}
	if err := validateListingInput(input); err != nil {
		return nil, err
	}

	listing.BasicInfo = input.BasicInfo
	listing.Location = input.Location
	listing.Features = input.Features
	listing.LegalInfo = input.LegalInfo
	if input.Documents != nil {
		listing.Verification.Documents = input.Documents
	}
	normalizeListing(listing)

	if err := s.listings.Update(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// Delete soft-deletes a listing the actor owns.
func (s *ListingService) Delete(ctx context.Context, actorID, id string) error {
	listing, err := s.owned(ctx, actorID, id)
	if err != nil {
		return err
	}

	old := listing.Status
	listing.Status = domain.ListingStatusDeleted
	if err := s.listings.Update(ctx, listing); err != nil {
		return err
	}
	_ = s.users.AdjustListingCount(ctx, actorID, -1)

	s.publish(ctx, events.EventListingStatusChanged, listing.ID, events.ListingStatusChangedPayload{
		ListingID: listing.ID,
		OldStatus: old,
		NewStatus: domain.ListingStatusDeleted,
	})
	return nil
}

// UpdateStatus moves a listing the actor owns to a new lifecycle state.
func (s *ListingService) UpdateStatus(ctx context.Context, actorID, id string, status domain.ListingStatus) (*domain.Listing, error) {
	switch status {
	case domain.ListingStatusPublished, domain.ListingStatusReserved,
		domain.ListingStatusSold, domain.ListingStatusDeleted:
	default:
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": string(status)})
	}

	listing, err := s.owned(ctx, actorID, id)
	if err != nil {
		return nil, err
	}
	if listing.Status == status {
		return listing, nil
	}

	old := listing.Status
	listing.Status = status
	if err := s.listings.Update(ctx, listing); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventListingStatusChanged, listing.ID, events.ListingStatusChangedPayload{
		ListingID: listing.ID,
		OldStatus: old,
		NewStatus: status,
	})
	return listing, nil
}

func (s *ListingService) fetch(ctx context.Context, id string) (*domain.Listing, error) {
	listing, err := s.listings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("listing", nil)
		}
		return nil, err
	}
	if listing.Status == domain.ListingStatusDeleted {
		return nil, apperrors.NewNotFound("listing", nil)
	}
	return listing, nil
}

func (s *ListingService) owned(ctx context.Context, actorID, id string) (*domain.Listing, error) {
	listing, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.SellerID != actorID {
		return nil, apperrors.NewForbidden("not the listing owner")
	}
	return listing, nil
}

func (s *ListingService) page(ctx context.Context, filter repository.ListingFilter, page, pageSize int) (*ListingPage, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	filter.Limit = pageSize
	filter.Offset = (page - 1) * pageSize

	total, err := s.listings.CountWithFilter(ctx, filter)
	if err != nil {
		return nil, err
	}
	items, err := s.listings.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &ListingPage{Items: items, Total: total, Page: page, TotalPages: totalPages}, nil
}

func (s *ListingService) publish(ctx context.Context, eventType events.EventType, subjectID string, payload interface{}) {
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

func validateListingInput(input ListingInput) error {
	missing := map[string]any{}
	if strings.TrimSpace(input.BasicInfo.Title) == "" {
		missing["title"] = "required"
	}
	if strings.TrimSpace(input.BasicInfo.Description) == "" {
		missing["description"] = "required"
	}
	if input.BasicInfo.Price <= 0 {
		missing["price"] = "must be positive"
	}
	if strings.TrimSpace(input.Location.Cemetery) == "" {
		missing["cemetery"] = "required"
	}
	if strings.TrimSpace(input.Location.City) == "" {
		missing["city"] = "required"
	}
	if strings.TrimSpace(input.LegalInfo.RegistrationNumber) == "" {
		missing["registration_number"] = "required"
	}
	if len(missing) > 0 {
		return apperrors.NewValidationError("listing payload incomplete", missing)
	}
	return nil
}

// normalizeListing replaces nil slices so array columns never receive NULL.
func normalizeListing(l *domain.Listing) {
	if l.BasicInfo.Images == nil {
		l.BasicInfo.Images = []string{}
	}
	if l.Location.Surroundings.Transportation == nil {
		l.Location.Surroundings.Transportation = []string{}
	}
	if l.Features.FengShui.Environment == nil {
		l.Features.FengShui.Environment = []string{}
	}
	if l.Features.FengShui.Features == nil {
		l.Features.FengShui.Features = []string{}
	}
	if l.LegalInfo.PropertyRights == nil {
		l.LegalInfo.PropertyRights = []string{}
	}
	if l.LegalInfo.Restrictions == nil {
		l.LegalInfo.Restrictions = []string{}
	}
	if l.Verification.Documents == nil {
		l.Verification.Documents = []string{}
	}
}
