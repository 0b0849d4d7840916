package daemon

import (
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"github.com/sigil-io/agent/internal/common"
)

// requestCounterMiddleware increments the request counter
func (s *Server) requestCounterMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		atomic.AddInt64(&s.TotalRequests, 1)
		c.Next()
	}
}

// canAcceptHtml reports whether the client prefers a rendered page over
// a JSON body. Accept header values are matched case insensitively.
func (s *Server) canAcceptHtml(c *gin.Context) bool {
	return common.ContainsInsensitive(c.GetHeader("Accept"), gin.MIMEHTML)
}
