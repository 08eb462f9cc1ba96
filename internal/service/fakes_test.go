package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/plotmarket/plot-service/internal/domain"
	"github.com/plotmarket/plot-service/internal/repository"
)

// fakeUserRepo is an in-memory repository.UserRepository.
type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*domain.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	f.nextID++
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) RecordLogin(_ context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.Security.LoginAttempts = 0
	user.Security.LockUntil = nil
	user.Security.LastLogin = &at
	return nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id, passwordHash string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.PasswordHash = passwordHash
	user.Security.LastPasswordChange = &at
	return nil
}

func (f *fakeUserRepo) AdjustListingCount(_ context.Context, id string, delta int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.Statistics.Listings += delta
	if user.Statistics.Listings < 0 {
		user.Statistics.Listings = 0
	}
	return nil
}

// fakeResetRepo is an in-memory repository.PasswordResetRepository.
type fakeResetRepo struct {
	mu     sync.Mutex
	nextID int
	tokens map[string]*repository.PasswordResetToken
}

func newFakeResetRepo() *fakeResetRepo {
	return &fakeResetRepo{tokens: map[string]*repository.PasswordResetToken{}}
}

func (f *fakeResetRepo) Create(_ context.Context, token *repository.PasswordResetToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	token.ID = fmt.Sprintf("reset-%d", f.nextID)
	token.CreatedAt = time.Now()
	clone := *token
	f.tokens[token.ID] = &clone
	return nil
}

func (f *fakeResetRepo) GetByToken(_ context.Context, tokenStr string) (*repository.PasswordResetToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, token := range f.tokens {
		if token.Token == tokenStr {
			clone := *token
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeResetRepo) MarkUsed(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	token, ok := f.tokens[id]
	if !ok {
		return pgx.ErrNoRows
	}
	now := time.Now()
	token.UsedAt = &now
	return nil
}

// fakeListingRepo is an in-memory repository.ListingRepository.
type fakeListingRepo struct {
	mu       sync.Mutex
	nextID   int
	listings map[string]domain.Listing
}

func newFakeListingRepo() *fakeListingRepo {
	return &fakeListingRepo{listings: map[string]domain.Listing{}}
}

func (f *fakeListingRepo) Create(_ context.Context, listing *domain.Listing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	listing.ID = fmt.Sprintf("listing-%d", f.nextID)
	listing.CreatedAt = time.Now()
	listing.UpdatedAt = listing.CreatedAt
	f.listings[listing.ID] = *listing
	return nil
}

func (f *fakeListingRepo) Update(_ context.Context, listing *domain.Listing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.listings[listing.ID]; !ok {
		return pgx.ErrNoRows
	}
	listing.UpdatedAt = time.Now()
	f.listings[listing.ID] = *listing
	return nil
}

func (f *fakeListingRepo) GetByID(_ context.Context, id string) (*domain.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	listing, ok := f.listings[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &listing, nil
}

func (f *fakeListingRepo) ListWithFilter(_ context.Context, filter repository.ListingFilter) ([]domain.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	matched := f.match(filter)

	offset := filter.Offset
	if offset > len(matched) {
		offset = len(matched)
	}
	matched = matched[offset:]
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func (f *fakeListingRepo) CountWithFilter(_ context.Context, filter repository.ListingFilter) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.match(filter))), nil
}

func (f *fakeListingRepo) IncrementViews(_ context.Context, id string, delta int64, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	listing, ok := f.listings[id]
	if !ok {
		return pgx.ErrNoRows
	}
	listing.Stats.Views += delta
	listing.Stats.LastViewed = &at
	f.listings[id] = listing
	return nil
}

func (f *fakeListingRepo) match(filter repository.ListingFilter) []domain.Listing {
	var result []domain.Listing
	for i := 1; i <= f.nextID; i++ {
		listing, ok := f.listings[fmt.Sprintf("listing-%d", i)]
		if !ok {
			continue
		}
		if filter.SellerID != nil && listing.SellerID != *filter.SellerID {
			continue
		}
		if filter.Status != nil && listing.Status != *filter.Status {
			continue
		}
		if filter.MinPrice != nil && listing.BasicInfo.Price < *filter.MinPrice {
			continue
		}
		if filter.MaxPrice != nil && listing.BasicInfo.Price > *filter.MaxPrice {
			continue
		}
		if filter.City != nil && listing.Location.City != *filter.City {
			continue
		}
		if filter.District != nil && listing.Location.District != *filter.District {
			continue
		}
		if filter.PlotType != nil && listing.Features.Type != *filter.PlotType {
			continue
		}
		if filter.Religion != nil && listing.Features.Religion != *filter.Religion {
			continue
		}
		result = append(result, listing)
	}
	return result
}
