package models

// ErrorEnvelope is the body of every error response
type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody contains the inner details for the error envelope
type ErrorBody struct {
	StatusCode int         `json:"status_code"`
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// HealthCheckResponse is returned by the health endpoint
type HealthCheckResponse struct {
	Alive bool `json:"alive"`
}
