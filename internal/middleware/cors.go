package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// The API carries no browser credentials, so a wildcard origin is safe. The
// method list must include PATCH for the product reactivation endpoint, and
// X-Request-ID is exposed so dashboard clients can correlate their calls with
// server logs.
var (
	corsMethods = strings.Join([]string{
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
		http.MethodOptions,
	}, ", ")
	corsHeaders = strings.Join([]string{"Content-Type", "X-Request-ID"}, ", ")
)

// CORS answers preflights and stamps the allow headers on every response.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", corsMethods)
		c.Header("Access-Control-Allow-Headers", corsHeaders)
		c.Header("Access-Control-Expose-Headers", "X-Request-ID")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
