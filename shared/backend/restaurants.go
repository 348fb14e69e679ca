package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pavitra93/menulink/shared/models"
)

// FetchRestaurant looks up the public menu bundle for a slug. The raw
// response is returned for classification.
func (c *Client) FetchRestaurant(ctx context.Context, slug string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, "/api/restaurant/"+url.PathEscape(slug), "", nil, "")
}

// SlugExists reports whether a restaurant slug is already claimed
func (c *Client) SlugExists(ctx context.Context, slug string) (bool, error) {
	var out struct {
		Exists bool `json:"exists"`
	}
	if err := c.getJSON(ctx, "/api/check-slug/"+url.PathEscape(slug), "", &out); err != nil {
		return false, fmt.Errorf("failed to check slug availability: %w", err)
	}
	return out.Exists, nil
}

// CreateRestaurantRequest is the onboarding payload
type CreateRestaurantRequest struct {
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	WhatsApp string `json:"whatsapp"`
}

// CreateRestaurant registers the signed-in owner's restaurant
func (c *Client) CreateRestaurant(ctx context.Context, token string, req CreateRestaurantRequest) (*models.Restaurant, error) {
	var out struct {
		Data *models.Restaurant `json:"data"`
	}
	if err := c.sendJSON(ctx, http.MethodPost, "/api/create-restaurant", token, req, &out); err != nil {
		return nil, fmt.Errorf("failed to create restaurant: %w", err)
	}
	if out.Data == nil {
		return &models.Restaurant{Name: req.Title, Slug: req.Slug}, nil
	}
	return out.Data, nil
}

// RestaurantForUser returns the restaurant owned by the token's account
func (c *Client) RestaurantForUser(ctx context.Context, token string) (*models.Restaurant, error) {
	var out struct {
		Success bool               `json:"success"`
		Message string             `json:"message"`
		Data    *models.Restaurant `json:"data"`
	}
	if err := c.getJSON(ctx, "/api/restaurant-by-user", token, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch restaurant: %w", err)
	}
	if !out.Success || out.Data == nil {
		return nil, ErrNotFound
	}
	return out.Data, nil
}

// UpdateRestaurantRequest carries the editable restaurant fields
type UpdateRestaurantRequest struct {
	Name      string          `json:"name"`
	Address   string          `json:"address"`
	WhatsApp  string          `json:"whatsapp"`
	Phone     string          `json:"phone"`
	Instagram string          `json:"instagram"`
	Settings  models.Settings `json:"settings"`
}

// UpdateRestaurant saves restaurant details and settings
func (c *Client) UpdateRestaurant(ctx context.Context, token string, req UpdateRestaurantRequest) (*models.Restaurant, error) {
	var out struct {
		Data *models.Restaurant `json:"data"`
	}
	if err := c.sendJSON(ctx, http.MethodPut, "/api/update-restaurant", token, req, &out); err != nil {
		return nil, fmt.Errorf("failed to update restaurant: %w", err)
	}
	if out.Data == nil {
		return nil, fmt.Errorf("failed to update restaurant: empty response")
	}
	return out.Data, nil
}

// OwnerSlug returns the slug of the token owner's restaurant, or ErrNotFound
// when the account has not finished onboarding
func (c *Client) OwnerSlug(ctx context.Context, token string) (string, error) {
	var out struct {
		Success bool   `json:"success"`
		Slug    string `json:"slug"`
	}
	if err := c.getJSON(ctx, "/api/get-slug", token, &out); err != nil {
		return "", err
	}
	if !out.Success || out.Slug == "" {
		return "", ErrNotFound
	}
	return out.Slug, nil
}

// CheckMembership returns the token owner's membership record
func (c *Client) CheckMembership(ctx context.Context, token string) (*models.Membership, error) {
	var m models.Membership
	if err := c.getJSON(ctx, "/api/check-membership", token, &m); err != nil {
		return nil, fmt.Errorf("failed to fetch membership: %w", err)
	}
	return &m, nil
}
