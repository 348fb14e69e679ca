package main

import (
	"github.com/gin-gonic/gin"

	"github.com/pavitra93/menulink/shared/utils"
)

// handleGetRelayStatus reports the notify endpoint connection
func handleGetRelayStatus(notifier *Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		utils.OKResponse(c, "Relay status retrieved successfully", notifier.GetStatus())
	}
}

// handlePingRelay re-checks the notify endpoint
func handlePingRelay(notifier *Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := notifier.Ping(c.Request.Context()); err != nil {
			utils.BadGatewayResponse(c, "Notify endpoint unreachable: "+err.Error())
			return
		}
		utils.OKResponse(c, "Notify endpoint reachable", nil)
	}
}

// handleGetRetryStats returns the retry queue counts
func handleGetRetryStats(worker *RetryWorker) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := worker.GetRetryStats(c.Request.Context())
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to load retry stats")
			return
		}
		utils.OKResponse(c, "Retry stats retrieved successfully", stats)
	}
}

func newRouter(notifier *Notifier, worker *RetryWorker) *gin.Engine {
	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		utils.OKResponse(c, "Handoff service is healthy", nil)
	})

	relay := router.Group("/relay")
	{
		relay.GET("/status", handleGetRelayStatus(notifier))
		relay.POST("/ping", handlePingRelay(notifier))
	}
	router.GET("/stats", handleGetRetryStats(worker))

	return router
}
