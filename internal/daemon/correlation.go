package daemon

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// correlationIDKey is the context key used to store the correlation ID
const correlationIDKey = "correlation_id"

// correlationMiddleware tags every request with a correlation ID so a
// redirect arriving at /callback can be tied to the log entries it
// produced. An existing X-Correlation-ID header wins, otherwise a new
// UUID is generated. The ID is echoed back in the response header.
func correlationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := c.GetHeader("X-Correlation-ID")

		if correlationID == "" {
			correlationID = uuid.New().String()
		}

		c.Set(correlationIDKey, correlationID)
		c.Header("X-Correlation-ID", correlationID)

		c.Next()
	}
}

// getCorrelationID retrieves the correlation ID from the request
// context. Returns an empty string if no correlation ID is found.
func getCorrelationID(c *gin.Context) string {
	if id, exists := c.Get(correlationIDKey); exists {
		if strID, ok := id.(string); ok {
			return strID
		}
	}
	return ""
}

// logWithCorrelation creates a logrus entry carrying the request's
// correlation ID so all entries for one redirect can be grouped.
func logWithCorrelation(c *gin.Context) *logrus.Entry {
	return logrus.WithField("correlation_id", getCorrelationID(c))
}
