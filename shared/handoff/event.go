package handoff

import (
	"time"

	"github.com/google/uuid"

	"github.com/pavitra93/menulink/shared/cart"
	"github.com/pavitra93/menulink/shared/models"
)

// NewOrderEvent describes an order handed off to the restaurant
func NewOrderEvent(r *models.Restaurant, visitorID string, snapshot cart.Snapshot, link string) models.HandoffEvent {
	return models.HandoffEvent{
		ID:             uuid.New(),
		Kind:           models.HandoffOrder,
		RestaurantSlug: r.Slug,
		RestaurantName: r.Name,
		VisitorID:      visitorID,
		Lines:          Lines(snapshot),
		ItemCount:      snapshot.TotalCount,
		Total:          snapshot.Total,
		Link:           link,
		CreatedAt:      time.Now().UTC(),
	}
}

// NewContactEvent describes a visitor following a contact link
func NewContactEvent(r *models.Restaurant, visitorID string, contact Contact) models.HandoffEvent {
	return models.HandoffEvent{
		ID:             uuid.New(),
		Kind:           models.HandoffContact,
		RestaurantSlug: r.Slug,
		RestaurantName: r.Name,
		VisitorID:      visitorID,
		Link:           contact.URL,
		CreatedAt:      time.Now().UTC(),
	}
}
