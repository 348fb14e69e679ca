package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pavitra93/menulink/shared/session"
	"github.com/pavitra93/menulink/shared/utils"
)

// handleAdminProxy forwards operator console calls to the backend admin API.
// /admin/api/{path} maps to /api/admin/{path}.
func handleAdminProxy(g *Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		target := "/api/admin/" + strings.TrimPrefix(c.Param("path"), "/")
		if c.Request.URL.RawQuery != "" {
			target += "?" + c.Request.URL.RawQuery
		}

		body := c.Request.Body
		if c.Request.ContentLength == 0 {
			body = nil
		}

		resp, err := g.client.Do(c.Request.Context(), c.Request.Method, target,
			session.TokenFromContext(c), body, c.GetHeader("Content-Type"))
		if err != nil {
			respondError(c, err, "Failed to communicate with backend")
			return
		}

		contentType := "application/json"
		if resp.StatusCode == http.StatusNoContent {
			c.Status(resp.StatusCode)
			return
		}
		c.Data(resp.StatusCode, contentType, resp.Body)
	}
}

// handleAdminStatus reports the health of everything the gateway depends on
func handleAdminStatus(g *Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		utils.OKResponse(c, "Service status", g.serviceStatus(c.Request.Context()))
	}
}

func (g *Gateway) serviceStatus(ctx context.Context) map[string]interface{} {
	status := make(map[string]interface{})

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := g.client.HealthCheck(ctx); err != nil {
		status["backend"] = map[string]interface{}{
			"healthy": false,
			"error":   err.Error(),
			"breaker": g.client.Breaker().Snapshot(),
		}
	} else {
		status["backend"] = map[string]interface{}{
			"healthy": true,
			"breaker": g.client.Breaker().Snapshot(),
		}
	}

	if g.redis == nil {
		status["redis"] = map[string]interface{}{
			"healthy": false,
			"note":    "Not configured, using in-memory sessions and carts",
		}
	} else if err := g.redis.Ping(ctx).Err(); err != nil {
		status["redis"] = map[string]interface{}{
			"healthy": false,
			"error":   err.Error(),
		}
	} else {
		status["redis"] = map[string]interface{}{
			"healthy": true,
		}
	}

	status["handoff_events"] = map[string]interface{}{
		"broker": g.cfg.KafkaBroker,
		"topic":  g.cfg.HandoffTopic,
		"note":   "Order and contact handoffs",
	}
	status["visitors"] = map[string]interface{}{
		"active": g.visitors.count(),
	}
	status["uptime_seconds"] = int(time.Since(g.startedAt).Seconds())

	return status
}
