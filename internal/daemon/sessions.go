package daemon

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"github.com/sigil-io/agent/internal/models"
)

// getStatus reports the session state the manager holds
func (s *Server) getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.Manager.Status())
}

// getCallbackPage serves the page the provider redirects back to. The
// response fragment never reaches this handler; the page scripts hand
// the full browser URL to the completion endpoint.
func (s *Server) getCallbackPage(c *gin.Context) {
	data := s.GetTemplateData(c)
	s.renderHtml(c, "callback.html", data)
}

// postCallbackComplete consumes the redirect URL captured by the
// callback page and resolves the operation waiting on it
func (s *Server) postCallbackComplete(c *gin.Context) {

	atomic.AddInt64(&s.CallbackRequests, 1)

	var completeRequest models.CallbackCompleteRequest
	if err := c.ShouldBindJSON(&completeRequest); err != nil {
		s.getErrorPage(c, http.StatusBadRequest, "Failed to parse request body", err)
		return
	}

	outcome, err := s.Manager.HandleRedirect(completeRequest.URL)

	if err != nil {

		// The user backing out of the provider page is a normal way for
		// a flow to end, not a daemon failure
		if errors.Is(err, models.ErrCancelled) {
			c.JSON(http.StatusOK, gin.H{
				"status": "cancelled",
			})
			return
		}

		s.getErrorPage(c, http.StatusBadRequest, "Failed to process the redirect", err)
		return
	}

	if outcome.Err != nil {

		logWithCorrelation(c).WithError(outcome.Err).Warnln("Provider reported an error")

		c.JSON(http.StatusOK, gin.H{
			"status": "error",
			"kind":   outcome.Kind,
			"error":  outcome.Err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"kind":   outcome.Kind,
	})
}
