package models

import (
	"time"

	"github.com/google/uuid"
)

// HandoffKind distinguishes an order handoff from a plain contact request
type HandoffKind string

const (
	HandoffOrder   HandoffKind = "order"
	HandoffContact HandoffKind = "contact"
)

// HandoffLine is one cart line copied into a handoff
type HandoffLine struct {
	ItemID   string `json:"item_id"`
	Name     string `json:"name"`
	Price    Price  `json:"price"`
	Quantity int    `json:"quantity"`
}

// HandoffEvent is published whenever a visitor is handed off to the owner
type HandoffEvent struct {
	ID             uuid.UUID     `json:"id"`
	Kind           HandoffKind   `json:"kind"`
	RestaurantSlug string        `json:"restaurant_slug"`
	RestaurantName string        `json:"restaurant_name"`
	VisitorID      string        `json:"visitor_id"`
	Lines          []HandoffLine `json:"lines,omitempty"`
	ItemCount      int           `json:"item_count"`
	Total          Price         `json:"total"`
	Link           string        `json:"link"`
	CreatedAt      time.Time     `json:"created_at"`
}

// HandoffRecord is the handoff service's log of relayed events
type HandoffRecord struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Kind           string    `gorm:"not null" json:"kind"`
	RestaurantSlug string    `gorm:"not null;index" json:"restaurant_slug"`
	VisitorID      string    `json:"visitor_id"`
	ItemCount      int       `json:"item_count"`
	Total          int64     `json:"total"`
	Payload        string    `gorm:"type:jsonb" json:"payload"`
	Relayed        bool      `gorm:"default:false" json:"relayed"`
	CreatedAt      time.Time `json:"created_at"`
}

func (HandoffRecord) TableName() string {
	return "handoff_records"
}

// FailedHandoff is a relay attempt queued for retry
type FailedHandoff struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	EventID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"event_id"`
	RestaurantSlug string     `gorm:"not null" json:"restaurant_slug"`
	Payload        string     `gorm:"type:jsonb;not null" json:"payload"`
	ErrorMessage   string     `gorm:"not null" json:"error_message"`
	RetryCount     int        `gorm:"default:0" json:"retry_count"`
	Status         string     `gorm:"default:'pending'" json:"status"`
	NextRetryAt    *time.Time `json:"next_retry_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
}

func (FailedHandoff) TableName() string {
	return "failed_handoffs"
}

const (
	FailedStatusPending           = "pending"
	FailedStatusResolved          = "resolved"
	FailedStatusPermanentlyFailed = "permanently_failed"
)
