package events

import (
	"time"

	"github.com/plotmarket/plot-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered       EventType = "user_registered"
	EventListingCreated       EventType = "listing_created"
	EventListingStatusChanged EventType = "listing_status_changed"
	EventListingViewed        EventType = "listing_viewed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	UserID string      `json:"user_id"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`
}

// ListingCreatedPayload payload.
type ListingCreatedPayload struct {
	ListingID string `json:"listing_id"`
	SellerID  string `json:"seller_id"`
	City      string `json:"city"`
	Price     int64  `json:"price"`
}

// ListingStatusChangedPayload payload.
type ListingStatusChangedPayload struct {
	ListingID string               `json:"listing_id"`
	OldStatus domain.ListingStatus `json:"old_status"`
	NewStatus domain.ListingStatus `json:"new_status"`
}

// ListingViewedPayload payload.
type ListingViewedPayload struct {
	ListingID string `json:"listing_id"`
}
