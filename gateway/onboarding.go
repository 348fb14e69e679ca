package main

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pavitra93/menulink/shared/backend"
	"github.com/pavitra93/menulink/shared/session"
	"github.com/pavitra93/menulink/shared/slug"
	"github.com/pavitra93/menulink/shared/utils"
	"github.com/pavitra93/menulink/shared/validation"
)

// handleCheckSlug reports whether a sanitized slug is still free
func handleCheckSlug(g *Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		clean := slug.Sanitize(c.Param("slug"))
		if clean == "" {
			utils.ValidationErrorResponse(c, "Slug is required", validation.Errors{{Field: "slug", Message: "Slug is required"}}.Fields())
			return
		}
		exists, err := g.client.SlugExists(c.Request.Context(), clean)
		if err != nil {
			respondError(c, err, "Failed to check slug")
			return
		}
		utils.OKResponse(c, "Slug checked", gin.H{"slug": clean, "available": !exists})
	}
}

type onboardingRequest struct {
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	WhatsApp string `json:"whatsapp"`
}

// handleOnboarding registers the owner's restaurant. The availability check
// and the create are separate calls, so the backend has the final word on
// duplicates.
func handleOnboarding(g *Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req onboardingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request body: "+err.Error())
			return
		}

		var errs validation.Errors
		errs.Required("title", req.Title, "Restaurant name is required")
		errs.Required("slug", req.Slug, "Slug is required")
		if errs.Any() {
			utils.ValidationErrorResponse(c, "Please fill in all required fields", errs.Fields())
			return
		}

		ctx := c.Request.Context()
		clean := slug.Sanitize(req.Slug)
		exists, err := g.client.SlugExists(ctx, clean)
		if err != nil {
			respondError(c, err, "Failed to check slug")
			return
		}
		if exists {
			utils.ConflictResponse(c, "Slug already taken, please choose another")
			return
		}

		token := session.TokenFromContext(c)
		restaurant, err := g.client.CreateRestaurant(ctx, token, backend.CreateRestaurantRequest{
			Title:    req.Title,
			Slug:     clean,
			WhatsApp: req.WhatsApp,
		})
		if err != nil {
			respondError(c, err, "Failed to create restaurant")
			return
		}
		if restaurant.Slug == "" {
			restaurant.Slug = clean
		}

		if err := g.sessions.MarkOnboarded(ctx, token, restaurant.Slug); err != nil {
			logrus.WithError(err).Warn("Failed to record onboarding on session")
		}

		logrus.WithFields(logrus.Fields{
			"slug":    restaurant.Slug,
			"user_id": c.GetString("user_id"),
		}).Info("Restaurant created")

		utils.CreatedResponse(c, "Restaurant created", gin.H{
			"restaurant": restaurant,
			"redirect":   "/dashboard",
		})
	}
}
