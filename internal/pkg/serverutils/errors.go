package serverutils

import "github.com/gofiber/fiber/v2"

// Error codes surfaced to clients. The Gone codes keep their distinct
// reason so a caller can tell an expired link from a consumed one.
const (
	CodeNotFound  = "not_found"
	CodeExpired   = "expired"
	CodeUsed      = "used"
	CodeFull      = "full"
	CodeEmptyText = "empty_text"
)

// AppError is the service-layer error taxonomy. Controllers return these
// untouched; ErrorHandlerMiddleware maps Status/Code onto the response.
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"error"`
	Message string `json:"message,omitempty"`
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Code + ": " + e.Message
	}
	return e.Code
}

// NotFound covers absent sessions, links and messages. Never retried.
func NotFound(message string) *AppError {
	return &AppError{Status: fiber.StatusNotFound, Code: CodeNotFound, Message: message}
}

// Gone covers expired/used/full meeting links. Permanent, not retryable.
func Gone(code, message string) *AppError {
	return &AppError{Status: fiber.StatusGone, Code: code, Message: message}
}

// InvalidInput covers empty text, bad payloads and missing fields.
func InvalidInput(code, message string) *AppError {
	return &AppError{Status: fiber.StatusBadRequest, Code: code, Message: message}
}
