package dto

import "time"

// ErrorResponse is the JSON error body returned by all endpoints.
//
// Fields:
//   - Message: human-readable reason, serialized as "error".
//   - ErrorDetails: optional underlying cause, serialized as "details".
//   - Timestamp: when the error response was created.
//
// swagger:model ErrorResponse
type ErrorResponse struct {
	Message      string    `json:"error" example:"missing required query params: coin, from, to, interval"`
	ErrorDetails string    `json:"details,omitempty" example:"parsing time ..."`
	Timestamp    time.Time `json:"timestamp"`
}

// NewErrorResponse builds an ErrorResponse from a message and an optional
// inner error whose text becomes the details field.
func NewErrorResponse(message string, err error) ErrorResponse {
	resp := ErrorResponse{
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
	if err != nil {
		resp.ErrorDetails = err.Error()
	}
	return resp
}

// Error implements the error interface so an ErrorResponse can travel as a
// regular error value when convenient.
func (e ErrorResponse) Error() string {
	if e.ErrorDetails != "" {
		return e.Message + ": " + e.ErrorDetails
	}
	return e.Message
}
