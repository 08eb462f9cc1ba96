package dto

import (
	"time"

	"github.com/plotmarket/plot-service/internal/domain"
)

// BasicInfoFields mirrors domain.BasicInfo on the wire.
type BasicInfoFields struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       int64    `json:"price"`
	Negotiable  bool     `json:"negotiable"`
	Images      []string `json:"images"`
	Video       string   `json:"video,omitempty"`
	VirtualTour string   `json:"virtual_tour,omitempty"`
}

// SurroundingsFields mirrors domain.Surroundings.
type SurroundingsFields struct {
	Parking        bool     `json:"parking"`
	Temple         bool     `json:"temple"`
	Restaurant     bool     `json:"restaurant"`
	Transportation []string `json:"transportation"`
}

// LocationFields mirrors domain.Location.
type LocationFields struct {
	Cemetery     string             `json:"cemetery"`
	Address      string             `json:"address"`
	City         string             `json:"city"`
	District     string             `json:"district"`
	Lat          float64            `json:"lat"`
	Lng          float64            `json:"lng"`
	Surroundings SurroundingsFields `json:"surroundings"`
}

// FengShuiFields mirrors domain.FengShui.
type FengShuiFields struct {
	Orientation string   `json:"orientation"`
	Environment []string `json:"environment"`
	Features    []string `json:"features"`
}

// FeatureFields mirrors domain.Features.
type FeatureFields struct {
	Type     string         `json:"type"`
	Size     string         `json:"size"`
	Facing   string         `json:"facing"`
	Floor    int            `json:"floor"`
	Religion string         `json:"religion"`
	FengShui FengShuiFields `json:"feng_shui"`
}

// LegalInfoFields mirrors domain.LegalInfo.
type LegalInfoFields struct {
	RegistrationNumber   string     `json:"registration_number"`
	OwnershipCertificate string     `json:"ownership_certificate"`
	PropertyRights       []string   `json:"property_rights"`
	ExpiryDate           *time.Time `json:"expiry_date,omitempty"`
	Transferable         bool       `json:"transferable"`
	Restrictions         []string   `json:"restrictions"`
}

// ListingRequest is the create/update payload.
type ListingRequest struct {
	BasicInfo BasicInfoFields `json:"basic_info"`
	Location  LocationFields  `json:"location"`
	Features  FeatureFields   `json:"features"`
	LegalInfo LegalInfoFields `json:"legal_info"`
	Documents []string        `json:"documents"`
	Status    string          `json:"status"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// VerificationFields mirrors domain.Verification.
type VerificationFields struct {
	Status     string     `json:"status"`
	Documents  []string   `json:"documents"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	Notes      string     `json:"notes,omitempty"`
}

// ListingStatFields mirrors domain.ListingStats.
type ListingStatFields struct {
	Views      int64      `json:"views"`
	Favorites  int64      `json:"favorites"`
	Compares   int64      `json:"compares"`
	Inquiries  int64      `json:"inquiries"`
	LastViewed *time.Time `json:"last_viewed,omitempty"`
}

// ListingResponse is the full listing view.
type ListingResponse struct {
	ID           string             `json:"id"`
	SellerID     string             `json:"seller_id"`
	BasicInfo    BasicInfoFields    `json:"basic_info"`
	Location     LocationFields     `json:"location"`
	Features     FeatureFields      `json:"features"`
	LegalInfo    LegalInfoFields    `json:"legal_info"`
	Verification VerificationFields `json:"verification"`
	Status       string             `json:"status"`
	Statistics   ListingStatFields  `json:"statistics"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// ListingPageResponse wraps a page of listings.
type ListingPageResponse struct {
	Items      []ListingResponse `json:"items"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	TotalPages int               `json:"total_pages"`
}

// UploadResponse returns stored object URLs.
type UploadResponse struct {
	URLs []string `json:"urls"`
}

// NewListingResponse maps a domain listing to its wire form.
func NewListingResponse(l *domain.Listing) ListingResponse {
	return ListingResponse{
		ID:       l.ID,
		SellerID: l.SellerID,
		BasicInfo: BasicInfoFields{
			Title:       l.BasicInfo.Title,
			Description: l.BasicInfo.Description,
			Price:       l.BasicInfo.Price,
			Negotiable:  l.BasicInfo.Negotiable,
			Images:      l.BasicInfo.Images,
			Video:       l.BasicInfo.Video,
			VirtualTour: l.BasicInfo.VirtualTour,
		},
		Location: LocationFields{
			Cemetery: l.Location.Cemetery,
			Address:  l.Location.Address,
			City:     l.Location.City,
			District: l.Location.District,
			Lat:      l.Location.Lat,
			Lng:      l.Location.Lng,
			Surroundings: SurroundingsFields{
				Parking:        l.Location.Surroundings.Parking,
				Temple:         l.Location.Surroundings.Temple,
				Restaurant:     l.Location.Surroundings.Restaurant,
				Transportation: l.Location.Surroundings.Transportation,
			},
		},
		Features: FeatureFields{
			Type:     l.Features.Type,
			Size:     l.Features.Size,
			Facing:   l.Features.Facing,
			Floor:    l.Features.Floor,
			Religion: l.Features.Religion,
			FengShui: FengShuiFields{
				Orientation: l.Features.FengShui.Orientation,
				Environment: l.Features.FengShui.Environment,
				Features:    l.Features.FengShui.Features,
			},
		},
		LegalInfo: LegalInfoFields{
			RegistrationNumber:   l.LegalInfo.RegistrationNumber,
			OwnershipCertificate: l.LegalInfo.OwnershipCertificate,
			PropertyRights:       l.LegalInfo.PropertyRights,
			ExpiryDate:           l.LegalInfo.ExpiryDate,
			Transferable:         l.LegalInfo.Transferable,
			Restrictions:         l.LegalInfo.Restrictions,
		},
		Verification: VerificationFields{
			Status:     string(l.Verification.Status),
			Documents:  l.Verification.Documents,
			VerifiedAt: l.Verification.VerifiedAt,
			Notes:      l.Verification.Notes,
		},
		Status: string(l.Status),
		Statistics: ListingStatFields{
			Views:      l.Stats.Views,
			Favorites:  l.Stats.Favorites,
			Compares:   l.Stats.Compares,
			Inquiries:  l.Stats.Inquiries,
			LastViewed: l.Stats.LastViewed,
		},
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}

// ToListingInput converts the wire payload into service input.
func (r ListingRequest) ToListingInput() (domain.BasicInfo, domain.Location, domain.Features, domain.LegalInfo) {
	basic := domain.BasicInfo{
		Title:       r.BasicInfo.Title,
		Description: r.BasicInfo.Description,
		Price:       r.BasicInfo.Price,
		Negotiable:  r.BasicInfo.Negotiable,
		Images:      r.BasicInfo.Images,
		Video:       r.BasicInfo.Video,
		VirtualTour: r.BasicInfo.VirtualTour,
	}
	location := domain.Location{
		Cemetery: r.Location.Cemetery,
		Address:  r.Location.Address,
		City:     r.Location.City,
		District: r.Location.District,
		Lat:      r.Location.Lat,
		Lng:      r.Location.Lng,
		Surroundings: domain.Surroundings{
			Parking:        r.Location.Surroundings.Parking,
			Temple:         r.Location.Surroundings.Temple,
			Restaurant:     r.Location.Surroundings.Restaurant,
			Transportation: r.Location.Surroundings.Transportation,
		},
	}
	features := domain.Features{
		Type:     r.Features.Type,
		Size:     r.Features.Size,
		Facing:   r.Features.Facing,
		Floor:    r.Features.Floor,
		Religion: r.Features.Religion,
		FengShui: domain.FengShui{
			Orientation: r.Features.FengShui.Orientation,
			Environment: r.Features.FengShui.Environment,
			Features:    r.Features.FengShui.Features,
		},
	}
	legal := domain.LegalInfo{
		RegistrationNumber:   r.LegalInfo.RegistrationNumber,
		OwnershipCertificate: r.LegalInfo.OwnershipCertificate,
		PropertyRights:       r.LegalInfo.PropertyRights,
		ExpiryDate:           r.LegalInfo.ExpiryDate,
		Transferable:         r.LegalInfo.Transferable,
		Restrictions:         r.LegalInfo.Restrictions,
	}
	return basic, location, features, legal
}
