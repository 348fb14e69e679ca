package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pavitra93/menulink/shared/backend"
	"github.com/pavitra93/menulink/shared/utils"
	"github.com/pavitra93/menulink/shared/validation"
)

// respondError maps a backend or validation failure to a response. Every
// failure reaches the client with a message.
func respondError(c *gin.Context, err error, fallback string) {
	if errs, ok := validation.As(err); ok {
		utils.ValidationErrorResponse(c, fallback, errs.Fields())
		return
	}

	var apiErr *backend.APIError
	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		utils.UnauthorizedResponse(c, "Session is no longer valid")
	case errors.Is(err, backend.ErrNotFound):
		utils.NotFoundResponse(c, fallback)
	case errors.Is(err, utils.ErrCircuitOpen), errors.Is(err, utils.ErrTooManyRequests):
		utils.ServiceUnavailableResponse(c, "Backend temporarily unavailable")
	case errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError:
		utils.ErrorResponse(c, apiErr.StatusCode, apiErr.Message)
	default:
		logrus.WithError(err).WithField("path", c.Request.URL.Path).Error(fallback)
		utils.BadGatewayResponse(c, fallback)
	}
}
