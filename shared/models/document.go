package models

import "time"

// Document represents an uploaded PDF menu published under its own slug
type Document struct {
	ID           string     `json:"id,omitempty"`
	Name         *string    `json:"name"`
	Slug         string     `json:"slug,omitempty"`
	FilePath     string     `json:"file_path"`
	URL          string     `json:"url,omitempty"`
	RestaurantID string     `json:"restaurant_id,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`

	// ViewerURL is filled in by the gateway once the document resolves
	ViewerURL string `json:"viewer_url,omitempty"`
}

// DisplayName returns the document name or a generic title
func (d *Document) DisplayName() string {
	if d.Name != nil && *d.Name != "" {
		return *d.Name
	}
	return "PDF Viewer"
}
