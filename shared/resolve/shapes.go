package resolve

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/pavitra93/menulink/shared/backend"
	"github.com/pavitra93/menulink/shared/models"
)

var errMissingPayload = errors.New("ready envelope without payload")

// MenuResolver resolves a slug to a restaurant with its categories and items
type MenuResolver = Resolver[models.Restaurant]

// DocumentResolver resolves a slug to a PDF document and its viewer URL
type DocumentResolver = Resolver[models.Document]

// DecodeRestaurant reads the restaurant key of a ready envelope
func DecodeRestaurant(body []byte) (*models.Restaurant, error) {
	var env struct {
		Restaurant *models.Restaurant `json:"restaurant"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode restaurant: %w", err)
	}
	if env.Restaurant == nil {
		return nil, errMissingPayload
	}
	if env.Restaurant.Categories == nil {
		env.Restaurant.Categories = []models.Category{}
	}
	return env.Restaurant, nil
}

// DocumentDecoder reads the pdf key of a ready envelope and points the
// document at the external viewer. filesURL is the public root the stored
// file_path is served from.
func DocumentDecoder(viewerURL, filesURL string) DecodeFunc[models.Document] {
	return func(body []byte) (*models.Document, error) {
		var env struct {
			PDF *models.Document `json:"pdf"`
		}
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, fmt.Errorf("failed to decode document: %w", err)
		}
		if env.PDF == nil || env.PDF.FilePath == "" {
			return nil, errMissingPayload
		}
		env.PDF.ViewerURL = ViewerURL(viewerURL, filesURL, env.PDF.FilePath)
		return env.PDF, nil
	}
}

// ViewerURL embeds the public file URL into the document viewer URL
func ViewerURL(viewerURL, filesURL, filePath string) string {
	fileURL := strings.TrimRight(filesURL, "/") + "/" + strings.TrimLeft(filePath, "/")
	if viewerURL == "" {
		return fileURL
	}
	return viewerURL + url.QueryEscape(fileURL)
}

// NewMenuResolver wires a menu resolver to the backend
func NewMenuResolver(client *backend.Client, opts ...Option) *MenuResolver {
	return NewResolver(RestaurantSubject, client.FetchRestaurant, DecodeRestaurant, opts...)
}

// NewDocumentResolver wires a document resolver to the backend
func NewDocumentResolver(client *backend.Client, viewerURL, filesURL string, opts ...Option) *DocumentResolver {
	return NewResolver(DocumentSubject, client.FetchDocument, DocumentDecoder(viewerURL, filesURL), opts...)
}
