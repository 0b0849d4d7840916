package models

// ErrorResponse is the JSON error body returned by the local daemon.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Title   string `json:"title"`
	Message string `json:"message,omitempty"`
}

// HealthResponse reports daemon liveness.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// MetricsInfo reports daemon counters for the metrics endpoint.
type MetricsInfo struct {
	Uptime           string `json:"uptime"`
	TotalRequests    int64  `json:"totalRequests"`
	CallbackRequests int64  `json:"callbackRequests"`
}

// CallbackCompleteRequest carries the redirect URL the callback page
// captured from the browser.
type CallbackCompleteRequest struct {
	URL string `json:"url" binding:"required"`
}
