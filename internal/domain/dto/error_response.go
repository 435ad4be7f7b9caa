package dto

import "time"

// ErrorResponse is the JSON structure printed when a command fails.
//
// Fields:
//   - Message: short human readable summary.
//   - ErrorDetails: text of the underlying error, if any.
//   - Violations: ordered validation messages for rejected captures.
//   - Timestamp: when the error was produced.
type ErrorResponse struct {
	Message      string    `json:"message" example:"trade rejected"`
	ErrorDetails string    `json:"error_details,omitempty" example:"Invalid symbol"`
	Violations   []string  `json:"violations,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Error implements the error interface.
func (e ErrorResponse) Error() string {
	if e.ErrorDetails == "" {
		return e.Message
	}
	return e.Message + ": " + e.ErrorDetails
}

// NewErrorResponse builds an ErrorResponse stamped with the current time.
func NewErrorResponse(message string, err error) ErrorResponse {
	resp := ErrorResponse{Message: message, Timestamp: time.Now().UTC()}
	if err != nil {
		resp.ErrorDetails = err.Error()
	}
	return resp
}
