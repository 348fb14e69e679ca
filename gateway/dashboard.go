package main

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pavitra93/menulink/shared/backend"
	"github.com/pavitra93/menulink/shared/handoff"
	"github.com/pavitra93/menulink/shared/membership"
	"github.com/pavitra93/menulink/shared/models"
	"github.com/pavitra93/menulink/shared/session"
	"github.com/pavitra93/menulink/shared/slug"
	"github.com/pavitra93/menulink/shared/storage"
	"github.com/pavitra93/menulink/shared/utils"
	"github.com/pavitra93/menulink/shared/validation"
)

const qrRequestMessage = "Hi, I would like to get my QR code for my menu"

func menuLink(g *Gateway, restaurantSlug string) string {
	return g.cfg.PublicURL + "/r/" + restaurantSlug
}

func documentLink(g *Gateway, documentSlug string) string {
	return g.cfg.PublicURL + "/d/" + documentSlug
}

// handleDashboardHome returns the owner's public menu link
func handleDashboardHome(g *Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, _ := session.FromContext(c)
		restaurantSlug := s.RestaurantSlug
		if restaurantSlug == "" {
			var err error
			restaurantSlug, err = g.client.OwnerSlug(c.Request.Context(), session.TokenFromContext(c))
			if err != nil {
				respondError(c, err, "Failed to load restaurant slug")
				return
			}
		}

		data := gin.H{
			"slug":      restaurantSlug,
			"menu_link": menuLink(g, restaurantSlug),
		}
		if g.cfg.SupportPhone != "" {
			data["qr_request_link"] = handoff.ChatLink(g.cfg.SupportPhone, qrRequestMessage)
		}
		utils.OKResponse(c, "Dashboard loaded", data)
	}
}

// handleMembership evaluates the owner's plan as of today
func handleMembership(g *Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		m, err := g.client.CheckMembership(c.Request.Context(), session.TokenFromContext(c))
		if err != nil {
			respondError(c, err, "Unable to load membership info")
			return
		}

		eval := membership.Evaluate(*m, time.Now())
		data := gin.H{
			"membership": m,
			"evaluation": eval,
			"notice":     eval.Notice(),
		}
		if link := membership.UpgradeLink(g.cfg.SupportPhone, membership.UpgradePlan, g.cfg.PublicURL); link != "" {
			data["upgrade_link"] = link
		}
		utils.OKResponse(c, "Membership retrieved", data)
	}
}

func handleGetSettings(g *Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		restaurant, err := g.client.RestaurantForUser(c.Request.Context(), session.TokenFromContext(c))
		if err != nil {
			respondError(c, err, "Restaurant not found")
			return
		}
		if restaurant.Settings == nil {
			restaurant.Settings = &models.Settings{}
		}
		utils.OKResponse(c, "Restaurant retrieved", restaurant)
	}
}

type settingsRequest struct {
	Name      *string          `json:"name"`
	Address   *string          `json:"address"`
	WhatsApp  *string          `json:"whatsapp"`
	Phone     *string          `json:"phone"`
	Instagram *string          `json:"instagram"`
	Settings  *models.Settings `json:"settings"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func currentSettings(r *models.Restaurant) backend.UpdateRestaurantRequest {
	req := backend.UpdateRestaurantRequest{
		Name:      r.Name,
		Address:   deref(r.Address),
		WhatsApp:  deref(r.WhatsApp),
		Phone:     deref(r.Phone),
		Instagram: deref(r.Instagram),
	}
	if r.Settings != nil {
		req.Settings = *r.Settings
	}
	return req
}

// merge overlays the submitted fields on the current values
func (s settingsRequest) merge(current backend.UpdateRestaurantRequest) backend.UpdateRestaurantRequest {
	next := current
	if s.Name != nil {
		next.Name = *s.Name
	}
	if s.Address != nil {
		next.Address = *s.Address
	}
	if s.WhatsApp != nil {
		next.WhatsApp = *s.WhatsApp
	}
	if s.Phone != nil {
		next.Phone = *s.Phone
	}
	if s.Instagram != nil {
		next.Instagram = *s.Instagram
	}
	if s.Settings != nil {
		if s.Settings.IsGrid != nil {
			next.Settings.IsGrid = s.Settings.IsGrid
		}
		if s.Settings.IsOrder != nil {
			next.Settings.IsOrder = s.Settings.IsOrder
		}
		if s.Settings.Facebook != nil {
			next.Settings.Facebook = s.Settings.Facebook
		}
	}
	return next
}

// handleUpdateSettings saves restaurant details. A save that changes
// nothing is rejected.
func handleUpdateSettings(g *Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req settingsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request body: "+err.Error())
			return
		}

		ctx := c.Request.Context()
		token := session.TokenFromContext(c)
		restaurant, err := g.client.RestaurantForUser(ctx, token)
		if err != nil {
			respondError(c, err, "Restaurant not found")
			return
		}

		current := currentSettings(restaurant)
		next := req.merge(current)

		var errs validation.Errors
		errs.Required("name", next.Name, "Restaurant name is required")
		if reflect.DeepEqual(current, next) {
			errs.Add("settings", "No changes to save")
		}
		if errs.Any() {
			utils.ValidationErrorResponse(c, "Failed to save changes", errs.Fields())
			return
		}

		updated, err := g.client.UpdateRestaurant(ctx, token, next)
		if err != nil {
			respondError(c, err, "Failed to save changes")
			return
		}

		logrus.WithField("slug", restaurant.Slug).Info("Restaurant settings updated")
		utils.OKResponse(c, "Changes saved successfully", updated)
	}
}

func handleListDocuments(g *Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		docs, err := g.client.ListDocuments(c.Request.Context(), session.TokenFromContext(c))
		if err != nil {
			respondError(c, err, "Error loading PDF list")
			return
		}
		out := make([]gin.H, 0, len(docs))
		for _, d := range docs {
			out = append(out, gin.H{
				"id":          d.ID,
				"name":        d.DisplayName(),
				"slug":        d.Slug,
				"file_path":   d.FilePath,
				"created_at":  d.CreatedAt,
				"public_link": documentLink(g, d.Slug),
			})
		}
		utils.OKResponse(c, "PDFs retrieved", out)
	}
}

func handleGetDocument(g *Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := g.client.GetDocument(c.Request.Context(), session.TokenFromContext(c), c.Param("id"))
		if err != nil {
			respondError(c, err, "Failed to load PDF")
			return
		}
		utils.OKResponse(c, "PDF retrieved", doc)
	}
}

// receiveUpload validates the multipart file and streams it to the file
// store. It returns the stored path, or "" when no file was sent and
// required is false.
func receiveUpload(g *Gateway, c *gin.Context, required bool) (string, error) {
	header, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		if !required {
			return "", nil
		}
		return "", validation.Errors{{Field: "file", Message: "Please select a PDF file to upload"}}
	}
	if err != nil {
		return "", validation.Errors{{Field: "file", Message: "Invalid upload"}}
	}

	file, err := header.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	body, err := storage.ValidatePDF(header.Header.Get("Content-Type"), header.Size, g.cfg.MaxUploadBytes, file)
	if err != nil {
		return "", err
	}

	uploadID := c.GetHeader("X-Upload-ID")
	if uploadID == "" {
		uploadID = uuid.New().String()
	}
	c.Header("X-Upload-ID", uploadID)

	progress := g.uploads.start(uploadID, header.Size)
	path, err := g.files(session.TokenFromContext(c)).Upload(c.Request.Context(), header.Filename, body, header.Size, progress)
	g.uploads.finish(uploadID, err)
	if err != nil {
		return "", err
	}

	logrus.WithFields(logrus.Fields{
		"upload_id": uploadID,
		"file_path": path,
		"bytes":     header.Size,
	}).Info("PDF uploaded")
	return path, nil
}

// handleCreateDocument uploads a PDF and publishes it under a random slug
func handleCreateDocument(g *Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := strings.TrimSpace(c.PostForm("name"))
		if name == "" {
			utils.ValidationErrorResponse(c, "PDF name is required", validation.Errors{{Field: "name", Message: "PDF name is required"}}.Fields())
			return
		}

		filePath, err := receiveUpload(g, c, true)
		if err != nil {
			respondError(c, err, "Failed to upload PDF")
			return
		}

		doc, err := g.client.CreateDocument(c.Request.Context(), session.TokenFromContext(c), backend.DocumentRequest{
			Name:     name,
			Slug:     slug.NewDocumentSlug(),
			FilePath: filePath,
		})
		if err != nil {
			respondError(c, err, "Failed to upload or save PDF")
			return
		}
		utils.CreatedResponse(c, "PDF uploaded successfully", gin.H{
			"pdf":         doc,
			"public_link": documentLink(g, doc.Slug),
		})
	}
}

// handleUpdateDocument renames a PDF and optionally replaces its file
func handleUpdateDocument(g *Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		token := session.TokenFromContext(c)
		existing, err := g.client.GetDocument(ctx, token, c.Param("id"))
		if err != nil {
			respondError(c, err, "Failed to load PDF")
			return
		}

		filePath, err := receiveUpload(g, c, existing.FilePath == "")
		if err != nil {
			respondError(c, err, "Failed to upload PDF")
			return
		}
		replaced := filePath != "" && filePath != existing.FilePath
		if filePath == "" {
			filePath = existing.FilePath
		}

		name := strings.TrimSpace(c.PostForm("name"))
		if name == "" {
			name = existing.DisplayName()
		}

		doc, err := g.client.UpdateDocument(ctx, token, c.Param("id"), backend.DocumentRequest{
			Name:     name,
			Slug:     existing.Slug,
			FilePath: filePath,
		})
		if err != nil {
			respondError(c, err, "Failed to upload or save PDF")
			return
		}

		if replaced && existing.FilePath != "" {
			if err := g.client.DeleteDocumentFile(ctx, token, existing.FilePath); err != nil {
				logrus.WithError(err).WithField("file_path", existing.FilePath).Warn("Failed to delete replaced PDF file")
			}
		}
		utils.OKResponse(c, "PDF updated successfully", doc)
	}
}

// handleDeleteDocumentFile removes the stored file of a PDF. The document
// keeps its slug and needs a new upload before it can be viewed again.
func handleDeleteDocumentFile(g *Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		token := session.TokenFromContext(c)
		doc, err := g.client.GetDocument(ctx, token, c.Param("id"))
		if err != nil {
			respondError(c, err, "Failed to load PDF")
			return
		}
		if doc.FilePath == "" {
			utils.NotFoundResponse(c, "PDF has no file")
			return
		}
		if err := g.client.DeleteDocumentFile(ctx, token, doc.FilePath); err != nil {
			respondError(c, err, "Delete failed")
			return
		}
		utils.OKResponse(c, "PDF deleted", gin.H{"id": doc.ID, "file_path": doc.FilePath})
	}
}

func handleUploadProgress(g *Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := g.uploads.get(c.Param("id"))
		if !ok {
			utils.NotFoundResponse(c, "Upload not found")
			return
		}
		utils.OKResponse(c, "Upload progress", p)
	}
}
