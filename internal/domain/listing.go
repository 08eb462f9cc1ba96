package domain

import "time"

// ListingStatus enumerates lifecycle states for a plot listing. Deleted is a
// soft state; rows are never removed.
type ListingStatus string

const (
	ListingStatusDraft     ListingStatus = "draft"
	ListingStatusPublished ListingStatus = "published"
	ListingStatusReserved  ListingStatus = "reserved"
	ListingStatusSold      ListingStatus = "sold"
	ListingStatusDeleted   ListingStatus = "deleted"
)

// VerificationStatus enumerates document-review outcomes for a listing.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

// BasicInfo holds the seller-facing sales copy for a listing.
type BasicInfo struct {
	Title       string
	Description string
	Price       int64
	Negotiable  bool
	Images      []string
	Video       string
	VirtualTour string
}

// Surroundings flags nearby amenities.
type Surroundings struct {
	Parking        bool
	Temple         bool
	Restaurant     bool
	Transportation []string
}

// Location pins a plot to a cemetery and city.
type Location struct {
	Cemetery     string
	Address      string
	City         string
	District     string
	Lat          float64
	Lng          float64
	Surroundings Surroundings
}

// FengShui captures orientation and environment descriptors.
type FengShui struct {
	Orientation string
	Environment []string
	Features    []string
}

// Features describes the physical plot.
type Features struct {
	Type     string
	Size     string
	Facing   string
	Floor    int
	Religion string
	FengShui FengShui
}

// LegalInfo carries ownership and transfer paperwork.
type LegalInfo struct {
	RegistrationNumber   string
	OwnershipCertificate string
	PropertyRights       []string
	ExpiryDate           *time.Time
	Transferable         bool
	Restrictions         []string
}

// Verification tracks the review state of a listing's documents.
type Verification struct {
	Status     VerificationStatus
	Documents  []string
	VerifiedAt *time.Time
	VerifierID *string
	Notes      string
}

// ListingStats accumulates engagement counters.
type ListingStats struct {
	Views      int64
	Favorites  int64
	Compares   int64
	Inquiries  int64
	LastViewed *time.Time
}

// Listing is the aggregate for one cemetery-plot offer.
type Listing struct {
	ID           string
	SellerID     string
	BasicInfo    BasicInfo
	Location     Location
	Features     Features
	LegalInfo    LegalInfo
	Verification Verification
	Status       ListingStatus
	Stats        ListingStats
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
