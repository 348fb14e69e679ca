package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pavitra93/menulink/shared/models"
)

// FetchDocument looks up the public PDF bundle for a slug. The raw response
// is returned for classification.
func (c *Client) FetchDocument(ctx context.Context, slug string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, "/api/pdf/"+url.PathEscape(slug), "", nil, "")
}

// DocumentRequest is the create/update payload for a PDF resource
type DocumentRequest struct {
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	FilePath string `json:"file_path"`
}

// ListDocuments returns the owner's PDF resources
func (c *Client) ListDocuments(ctx context.Context, token string) ([]models.Document, error) {
	var docs []models.Document
	if err := c.getJSON(ctx, "/api/pdfs", token, &docs); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	if docs == nil {
		docs = []models.Document{}
	}
	return docs, nil
}

// GetDocument returns a single PDF resource by id
func (c *Client) GetDocument(ctx context.Context, token, id string) (*models.Document, error) {
	var doc models.Document
	if err := c.getJSON(ctx, "/api/pdfs/"+url.PathEscape(id), token, &doc); err != nil {
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}
	return &doc, nil
}

// CreateDocument registers a new PDF resource
func (c *Client) CreateDocument(ctx context.Context, token string, req DocumentRequest) (*models.Document, error) {
	var doc models.Document
	if err := c.sendJSON(ctx, http.MethodPost, "/api/pdfs", token, req, &doc); err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}
	return &doc, nil
}

// UpdateDocument replaces the name or file of a PDF resource
func (c *Client) UpdateDocument(ctx context.Context, token, id string, req DocumentRequest) (*models.Document, error) {
	var doc models.Document
	if err := c.sendJSON(ctx, http.MethodPut, "/api/pdfs/"+url.PathEscape(id), token, req, &doc); err != nil {
		return nil, fmt.Errorf("failed to update document: %w", err)
	}
	return &doc, nil
}

// DeleteDocumentFile removes a stored file; the path becomes invalid
func (c *Client) DeleteDocumentFile(ctx context.Context, token, filePath string) error {
	payload := map[string]string{"file_path": filePath}
	if err := c.sendJSON(ctx, http.MethodDelete, "/api/delete-pdf-file", token, payload, nil); err != nil {
		return fmt.Errorf("failed to delete document file: %w", err)
	}
	return nil
}
