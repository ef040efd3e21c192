package httpapi

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// requireAPIKey rejects requests whose X-KEY header does not match the
// shared service key. The compare is constant-time.
func (s *Server) requireAPIKey() gin.HandlerFunc {
	key := []byte(s.cfg.Server.SecretKey)
	return func(c *gin.Context) {
		provided := []byte(c.GetHeader("X-KEY"))
		if subtle.ConstantTimeCompare(provided, key) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   "Invalid API key",
			})
			return
		}
		c.Next()
	}
}

// requestLogger logs each request the way the bot middleware logs updates
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debugf("%s %s -> %d (%s)",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
