package models

// ValidationErrorResponse is the Laravel-style 400 body for payload errors.
type ValidationErrorResponse struct {
	Message string              `json:"message" example:"Validation failed"`
	Errors  map[string][]string `json:"errors"`
}

// ErrorResponse is the general error body (401/403/404/409/500).
type ErrorResponse struct {
	Error   bool   `json:"error" example:"true"`
	Message string `json:"message" example:"Forbidden"`
	Code    string `json:"code,omitempty" example:"FORBIDDEN"`
}

// MessageResponse is the plain confirmation body returned by mutations.
type MessageResponse struct {
	Message string `json:"message"`
}
