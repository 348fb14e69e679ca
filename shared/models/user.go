package models

import (
	"time"
)

// Identity is the signed-in account as derived from its token
type Identity struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Roles []string `json:"roles,omitempty"`
}

// HasRole reports whether the identity carries the given role claim
func (i *Identity) HasRole(role string) bool {
	if i == nil || role == "" {
		return false
	}
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// TokenSession represents a signed-in session stored in Redis
type TokenSession struct {
	Identity       Identity  `json:"identity"`
	RestaurantSlug string    `json:"restaurant_slug,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	LastUsedAt     time.Time `json:"last_used_at"`
	ExpiresAt      time.Time `json:"expires_at"`
	SessionID      string    `json:"session_id"`
}

func (ts *TokenSession) IsExpired() bool {
	return time.Now().After(ts.ExpiresAt)
}

func (ts *TokenSession) UpdateLastUsed() {
	ts.LastUsedAt = time.Now()
}

// HasRestaurant reports whether the owner finished onboarding
func (ts *TokenSession) HasRestaurant() bool {
	return ts.RestaurantSlug != ""
}
