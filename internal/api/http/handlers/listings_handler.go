package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/plotmarket/plot-service/internal/api/dto"
	"github.com/plotmarket/plot-service/internal/auth"
	"github.com/plotmarket/plot-service/internal/domain"
	"github.com/plotmarket/plot-service/internal/service"
	apperrors "github.com/plotmarket/plot-service/pkg/util/errorutil"
)

// ListingsHandler manages plot listing endpoints.
type ListingsHandler struct {
	service *service.ListingService
}

// NewListingsHandler constructs the handler.
func NewListingsHandler(listingService *service.ListingService) *ListingsHandler {
	return &ListingsHandler{service: listingService}
}

// Create POST /listings. Seller role enforced at the route.
func (h *ListingsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.ListingRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	listing, err := h.service.Create(c.Context(), principal.SubjectID, listingInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewListingResponse(listing)})
}

// List GET /listings. Public browsing, published only.
func (h *ListingsHandler) List(c *fiber.Ctx) error {
	page, err := h.service.ListPublic(c.Context(), parseListingQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": pageResponse(page)})
}

// ListMine GET /listings/my. The seller's own listings, any status.
func (h *ListingsHandler) ListMine(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var status *domain.ListingStatus
	if raw := c.Query("status"); raw != "" {
		s := domain.ListingStatus(raw)
		status = &s
	}
	page, err := h.service.ListBySeller(c.Context(), principal.SubjectID, status,
		parseIntQuery(c, "page", 1), parseIntQuery(c, "page_size", 10))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": pageResponse(page)})
}

// Get GET /listings/:id. Public; records a view.
func (h *ListingsHandler) Get(c *fiber.Ctx) error {
	listing, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewListingResponse(listing)})
}

// Update PATCH /listings/:id. Owner only.
func (h *ListingsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.ListingRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	listing, err := h.service.Update(c.Context(), principal.SubjectID, c.Params("id"), listingInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewListingResponse(listing)})
}

// Delete DELETE /listings/:id. Owner only; soft delete.
func (h *ListingsHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	if err := h.service.Delete(c.Context(), principal.SubjectID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// UpdateStatus PATCH /listings/:id/status. Owner only.
func (h *ListingsHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status required", nil)
	}

	listing, err := h.service.UpdateStatus(c.Context(), principal.SubjectID, c.Params("id"), domain.ListingStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewListingResponse(listing)})
}

func listingInput(req dto.ListingRequest) service.ListingInput {
	basic, location, features, legal := req.ToListingInput()
	return service.ListingInput{
		BasicInfo: basic,
		Location:  location,
		Features:  features,
		LegalInfo: legal,
		Documents: req.Documents,
		Status:    domain.ListingStatus(req.Status),
	}
}

func parseListingQuery(c *fiber.Ctx) service.ListingQuery {
	query := service.ListingQuery{
		Page:     parseIntQuery(c, "page", 1),
		PageSize: parseIntQuery(c, "page_size", 10),
	}
	if raw := c.Query("min_price"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			query.MinPrice = &v
		}
	}
	if raw := c.Query("max_price"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			query.MaxPrice = &v
		}
	}
	if raw := c.Query("city"); raw != "" {
		query.City = &raw
	}
	if raw := c.Query("district"); raw != "" {
		query.District = &raw
	}
	if raw := c.Query("type"); raw != "" {
		query.PlotType = &raw
	}
	if raw := c.Query("religion"); raw != "" {
		query.Religion = &raw
	}
	return query
}

func parseIntQuery(c *fiber.Ctx, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func pageResponse(page *service.ListingPage) dto.ListingPageResponse {
	items := make([]dto.ListingResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, dto.NewListingResponse(&page.Items[i]))
	}
	return dto.ListingPageResponse{
		Items:      items,
		Total:      page.Total,
		Page:       page.Page,
		TotalPages: page.TotalPages,
	}
}
