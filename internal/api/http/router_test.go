package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	httptransport "github.com/plotmarket/plot-service/internal/api/http"
	"github.com/plotmarket/plot-service/internal/api/http/handlers"
	"github.com/plotmarket/plot-service/internal/auth"
	"github.com/plotmarket/plot-service/internal/config"
	"github.com/plotmarket/plot-service/internal/domain"
	"github.com/plotmarket/plot-service/internal/events"
	"github.com/plotmarket/plot-service/internal/observability"
	"github.com/plotmarket/plot-service/internal/repository"
	"github.com/plotmarket/plot-service/internal/service"
)

// memUserRepo is a minimal in-memory repository.UserRepository.
type memUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[string]*domain.User
}

func (m *memUserRepo) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	m.nextID++
	user.ID = fmt.Sprintf("user-%d", m.nextID)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *memUserRepo) Update(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memUserRepo) RecordLogin(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.Security.LastLogin = &at
	return nil
}

func (m *memUserRepo) UpdatePassword(_ context.Context, id, hash string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.PasswordHash = hash
	user.Security.LastPasswordChange = &at
	return nil
}

func (m *memUserRepo) AdjustListingCount(_ context.Context, id string, delta int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.users[id]; ok {
		user.Statistics.Listings += delta
	}
	return nil
}

// memResetRepo is a minimal in-memory repository.PasswordResetRepository.
type memResetRepo struct {
	mu     sync.Mutex
	nextID int
	tokens map[string]*repository.PasswordResetToken
}

func (m *memResetRepo) Create(_ context.Context, token *repository.PasswordResetToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	token.ID = fmt.Sprintf("reset-%d", m.nextID)
	token.CreatedAt = time.Now()
	clone := *token
	m.tokens[token.ID] = &clone
	return nil
}

func (m *memResetRepo) GetByToken(_ context.Context, tokenStr string) (*repository.PasswordResetToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, token := range m.tokens {
		if token.Token == tokenStr {
			clone := *token
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memResetRepo) MarkUsed(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if token, ok := m.tokens[id]; ok {
		now := time.Now()
		token.UsedAt = &now
	}
	return nil
}

// memListingRepo is a minimal in-memory repository.ListingRepository.
type memListingRepo struct {
	mu       sync.Mutex
	nextID   int
	listings map[string]domain.Listing
}

func (m *memListingRepo) Create(_ context.Context, listing *domain.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	listing.ID = fmt.Sprintf("listing-%d", m.nextID)
	listing.CreatedAt = time.Now()
	listing.UpdatedAt = listing.CreatedAt
	m.listings[listing.ID] = *listing
	return nil
}

func (m *memListingRepo) Update(_ context.Context, listing *domain.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.listings[listing.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.listings[listing.ID] = *listing
	return nil
}

func (m *memListingRepo) GetByID(_ context.Context, id string) (*domain.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	listing, ok := m.listings[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &listing, nil
}

func (m *memListingRepo) ListWithFilter(_ context.Context, filter repository.ListingFilter) ([]domain.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.match(filter), nil
}

func (m *memListingRepo) CountWithFilter(_ context.Context, filter repository.ListingFilter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.match(filter))), nil
}

func (m *memListingRepo) IncrementViews(_ context.Context, id string, delta int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if listing, ok := m.listings[id]; ok {
		listing.Stats.Views += delta
		listing.Stats.LastViewed = &at
		m.listings[id] = listing
	}
	return nil
}

func (m *memListingRepo) match(filter repository.ListingFilter) []domain.Listing {
	var result []domain.Listing
	for i := 1; i <= m.nextID; i++ {
		listing, ok := m.listings[fmt.Sprintf("listing-%d", i)]
		if !ok {
			continue
		}
		if filter.SellerID != nil && listing.SellerID != *filter.SellerID {
			continue
		}
		if filter.Status != nil && listing.Status != *filter.Status {
			continue
		}
		if filter.City != nil && listing.Location.City != *filter.City {
			continue
		}
		result = append(result, listing)
	}
	return result
}

type memObjectStore struct{}

func (memObjectStore) Put(_ context.Context, key string, _ []byte, _ string) (string, error) {
	return "https://cdn.example.com/" + key, nil
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "router-test-secret",
			AccessTokenTTLMinutes: 15,
			BcryptCost:            bcrypt.MinCost,
		},
		Storage: config.StorageConfig{
			MaxUploadBytes: 1024 * 1024,
			MaxUploadFiles: 5,
		},
	}

	userRepo := &memUserRepo{users: map[string]*domain.User{}}
	resetRepo := &memResetRepo{tokens: map[string]*repository.PasswordResetToken{}}
	listingRepo := &memListingRepo{listings: map[string]domain.Listing{}}
	dispatcher := events.NewInMemoryDispatcher()
	logger := zap.NewNop()

	authService := service.NewAuthService(cfg, service.AuthDependencies{
		UserRepo:          userRepo,
		PasswordResetRepo: resetRepo,
		Dispatcher:        dispatcher,
	})
	listingService := service.NewListingService(service.ListingDependencies{
		ListingRepo: listingRepo,
		UserRepo:    userRepo,
		Dispatcher:  dispatcher,
	})
	uploadService := service.NewUploadService(memObjectStore{}, cfg.Storage, logger)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, observability.NewMetrics(), 5*time.Second)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler("plot-service-test", "test", nil, nil),
		Auth:           handlers.NewAuthHandler(authService),
		Listings:       handlers.NewListingsHandler(listingService),
		Uploads:        handlers.NewUploadsHandler(uploadService),
		AuthMiddleware: auth.NewMiddleware(authService.TokenManager()),
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}
	return resp, decoded
}

func registerAccount(t *testing.T, app *fiber.App, email, role string) string {
	t.Helper()

	resp, body := doJSON(t, app, http.MethodPost, "/auth/register", "", fiber.Map{
		"email":    email,
		"password": "secret123",
		"role":     role,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	data := body["data"].(map[string]any)
	return data["auth"].(map[string]any)["token"].(string)
}

func listingPayload() fiber.Map {
	return fiber.Map{
		"basic_info": fiber.Map{
			"title":       "Hillside double plot",
			"description": "South-facing with mountain view",
			"price":       880000,
		},
		"location": fiber.Map{
			"cemetery": "Yangmingshan Memorial Park",
			"city":     "Taipei",
			"district": "Beitou",
		},
		"features": fiber.Map{
			"type":     "double",
			"religion": "buddhist",
		},
		"legal_info": fiber.Map{
			"registration_number": "TPE-2024-0042",
		},
	}
}

func TestHealthLive(t *testing.T) {
	app := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alive", body["status"])
}

func TestHealthReadyWithoutDependencies(t *testing.T) {
	app := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "DEPENDENCY_UNAVAILABLE", errBody["code"])
}

func TestRegisterLoginProfileFlow(t *testing.T) {
	app := newTestApp(t)

	token := registerAccount(t, app, "flow@example.com", "buyer")

	resp, body := doJSON(t, app, http.MethodPost, "/auth/login", "", fiber.Map{
		"email":    "flow@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	loginToken := body["data"].(map[string]any)["auth"].(map[string]any)["token"].(string)

	for _, tok := range []string{token, loginToken} {
		resp, body = doJSON(t, app, http.MethodGet, "/auth/profile", tok, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		profile := body["data"].(map[string]any)
		assert.Equal(t, "flow@example.com", profile["email"])
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	app := newTestApp(t)

	registerAccount(t, app, "dup@example.com", "buyer")

	resp, body := doJSON(t, app, http.MethodPost, "/auth/register", "", fiber.Map{
		"email":    "dup@example.com",
		"password": "secret123",
		"role":     "seller",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "CONFLICT", errBody["code"])
}

func TestRegisterValidation(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name    string
		payload fiber.Map
	}{
		{"missing role", fiber.Map{"email": "a@example.com", "password": "secret123"}},
		{"short password", fiber.Map{"email": "a@example.com", "password": "abc", "role": "buyer"}},
		{"unknown role", fiber.Map{"email": "a@example.com", "password": "secret123", "role": "admin"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := doJSON(t, app, http.MethodPost, "/auth/register", "", tt.payload)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestLoginFailureIsUniform(t *testing.T) {
	app := newTestApp(t)

	registerAccount(t, app, "known@example.com", "buyer")

	for _, payload := range []fiber.Map{
		{"email": "unknown@example.com", "password": "secret123"},
		{"email": "known@example.com", "password": "wrong-password"},
	} {
		resp, body := doJSON(t, app, http.MethodPost, "/auth/login", "", payload)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		errBody := body["error"].(map[string]any)
		assert.Equal(t, "invalid credentials", errBody["message"])
	}
}

func TestProtectedRoutesRejectBadTokens(t *testing.T) {
	app := newTestApp(t)

	token := registerAccount(t, app, "guard@example.com", "buyer")

	resp, _ := doJSON(t, app, http.MethodGet, "/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/auth/profile", token[:len(token)-2], nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/auth/profile", "garbage.token.here", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestListingCreateRequiresSellerRole(t *testing.T) {
	app := newTestApp(t)

	buyerToken := registerAccount(t, app, "buyer@example.com", "buyer")
	sellerToken := registerAccount(t, app, "seller@example.com", "seller")

	resp, body := doJSON(t, app, http.MethodPost, "/listings", buyerToken, listingPayload())
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", body["error"].(map[string]any)["code"])

	resp, body = doJSON(t, app, http.MethodPost, "/listings", sellerToken, listingPayload())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	listing := body["data"].(map[string]any)
	assert.Equal(t, "draft", listing["status"])
}

func TestListingLifecycleOverHTTP(t *testing.T) {
	app := newTestApp(t)

	sellerToken := registerAccount(t, app, "seller@example.com", "seller")

	resp, body := doJSON(t, app, http.MethodPost, "/listings", sellerToken, listingPayload())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	listingID := body["data"].(map[string]any)["id"].(string)

	// drafts are invisible to the public list
	resp, body = doJSON(t, app, http.MethodGet, "/listings", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), body["data"].(map[string]any)["total"])

	resp, _ = doJSON(t, app, http.MethodPatch, "/listings/"+listingID+"/status", sellerToken, fiber.Map{"status": "published"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodGet, "/listings", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := body["data"].(map[string]any)
	assert.Equal(t, float64(1), page["total"])

	// anonymous detail read
	resp, body = doJSON(t, app, http.MethodGet, "/listings/"+listingID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "published", body["data"].(map[string]any)["status"])

	// owner sees it under /listings/my
	resp, body = doJSON(t, app, http.MethodGet, "/listings/my", sellerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["data"].(map[string]any)["total"])

	resp, _ = doJSON(t, app, http.MethodDelete, "/listings/"+listingID, sellerToken, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/listings/"+listingID, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListingUpdateForbiddenForNonOwner(t *testing.T) {
	app := newTestApp(t)

	ownerToken := registerAccount(t, app, "owner@example.com", "seller")
	otherToken := registerAccount(t, app, "other@example.com", "seller")

	resp, body := doJSON(t, app, http.MethodPost, "/listings", ownerToken, listingPayload())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	listingID := body["data"].(map[string]any)["id"].(string)

	resp, _ = doJSON(t, app, http.MethodPatch, "/listings/"+listingID, otherToken, listingPayload())
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestUploadListingImages(t *testing.T) {
	app := newTestApp(t)

	sellerToken := registerAccount(t, app, "seller@example.com", "seller")

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="files"; filename="front.png"`)
	header.Set("Content-Type", "image/png")
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/uploads/listings", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+sellerToken)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))

	urls := body["data"].(map[string]any)["urls"].([]any)
	require.Len(t, urls, 1)
	assert.True(t, strings.HasPrefix(urls[0].(string), "https://cdn.example.com/listings/"))
}

func TestUploadRequiresAuth(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/uploads/listings", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
