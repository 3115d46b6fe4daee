package models

// API envelope types. Every JSON endpoint wraps its payload in one of these.

type APIResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type APIError struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type PaginatedResponse struct {
	Success    bool       `json:"success"`
	Data       any        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// Success wraps a payload in the standard success envelope.
func Success(data any) APIResponse {
	return APIResponse{Success: true, Data: data}
}

// Failure builds the standard error envelope.
func Failure(code, message string) APIError {
	return APIError{Success: false, Error: ErrorDetail{Code: code, Message: message}}
}

// FailureWithDetails builds an error envelope carrying extra context.
func FailureWithDetails(code, message string, details any) APIError {
	return APIError{Success: false, Error: ErrorDetail{Code: code, Message: message, Details: details}}
}

// Paginated wraps a list payload with pagination metadata. totalPages is
// rounded up so a partial last page still counts.
func Paginated(data any, page, limit int, total int64) PaginatedResponse {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return PaginatedResponse{
		Success:    true,
		Data:       data,
		Pagination: Pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages},
	}
}

// Common error codes shared across handlers.
const (
	CodeValidationError = "VALIDATION_ERROR"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeInternalError   = "INTERNAL_ERROR"
	CodeRateLimited     = "RATE_LIMITED"
)
