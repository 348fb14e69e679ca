package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// VisitorCookie identifies an anonymous browsing context
	VisitorCookie = "menulink_visitor"

	visitorKey = "visitor_id"
)

// Visitor assigns every client a browsing-context id, reusing the cookie
// when it holds a valid one
func Visitor(ttl time.Duration, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(VisitorCookie)
		if err != nil {
			id = uuid.New().String()
		} else if _, perr := uuid.Parse(id); perr != nil {
			id = uuid.New().String()
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(VisitorCookie, id, int(ttl.Seconds()), "/", "", secure, true)
		c.Set(visitorKey, id)
		c.Next()
	}
}

// VisitorID returns the id assigned by Visitor
func VisitorID(c *gin.Context) string {
	return c.GetString(visitorKey)
}
