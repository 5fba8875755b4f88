package server

import "time"

// HealthStatus is the overall service status
type HealthStatus string

const (
	Healthy   HealthStatus = "healthy"
	Unhealthy HealthStatus = "unhealthy"
)

// HealthResponse is returned by the health endpoint
type HealthResponse struct {
	Status    HealthStatus `json:"status"`
	Timestamp time.Time    `json:"timestamp"`
	Uptime    *int         `json:"uptime,omitempty"`
	Version   *string      `json:"version,omitempty"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error     string                  `json:"error"`
	Message   string                  `json:"message"`
	RequestId *string                 `json:"request_id,omitempty"`
	Details   *map[string]interface{} `json:"details,omitempty"`
}

// Error codes
const (
	CodeInvalidRequest  = "INVALID_REQUEST"
	CodeInvalidArea     = "INVALID_AREA"
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeTooLarge        = "REQUEST_TOO_LARGE"
	CodeInternal        = "INTERNAL_ERROR"
)
