package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS lets the public site call the gateway with its cookies
func CORS(origin string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     []string{origin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Upload-ID"},
		ExposeHeaders:    []string{"Location", "X-Upload-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
