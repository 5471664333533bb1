package api

import (
	"errors"
	"net/http"

	"github.com/printdesk/pd-backend/internal/fleet"
	"github.com/printdesk/pd-backend/internal/middleware"
	"github.com/printdesk/pd-backend/internal/store"
)

const (
	CodeValidationError   = "VALIDATION_ERROR"
	CodeAuthRequired      = "AUTHENTICATION_REQUIRED"
	CodePermissionDenied  = "PERMISSION_DENIED"
	CodeResourceNotFound  = "RESOURCE_NOT_FOUND"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeConflict          = "CONFLICT"
	CodePartialFailure    = "PARTIAL_FAILURE"
	CodeInternalError     = "INTERNAL_ERROR"
)

type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// additional error context
type ErrorContext map[string]interface{}

// ErrorResponse is the envelope every error body uses.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
	Context ErrorContext  `json:"context,omitempty"`
}

// builder pattern
type ErrorBuilder struct {
	Code    string
	Message string
	Details []ErrorDetail
	Context ErrorContext
}

func NewError(code, message string) *ErrorBuilder {
	return &ErrorBuilder{Code: code, Message: message}
}

func (e *ErrorBuilder) WithDetails(details []ErrorDetail) *ErrorBuilder {
	e.Details = details
	return e
}

func (e *ErrorBuilder) WithContext(context ErrorContext) *ErrorBuilder {
	e.Context = context
	return e
}

func (e *ErrorBuilder) Create() ErrorResponse {
	return ErrorResponse{Error: ErrorBody{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Context: e.Context,
	}}
}

// Write renders the error to the response with the given status.
func (e *ErrorBuilder) Write(w http.ResponseWriter, status int) {
	writeJSON(w, status, e.Create())
}

// builder pattern extensions

func Unauthorized(msg string) *ErrorBuilder {
	return NewError(CodeAuthRequired, msg)
}

func PermissionDenied(msg string) *ErrorBuilder {
	return NewError(CodePermissionDenied, msg)
}

func NotFound(resource string) *ErrorBuilder {
	return NewError(CodeResourceNotFound, resource+" not found")
}

func ValidationErr(msg string, details []ErrorDetail) *ErrorBuilder {
	return NewError(CodeValidationError, msg).WithDetails(details)
}

func Conflict(msg string) *ErrorBuilder {
	return NewError(CodeConflict, msg)
}

func InsufficientStockErr(tonerName string, requested, available int) *ErrorBuilder {
	return NewError(CodeInsufficientStock, "Insufficient stock available").
		WithContext(ErrorContext{
			"toner_name": tonerName,
			"requested":  requested,
			"available":  available,
		})
}

func InternalError(msg string) *ErrorBuilder {
	return NewError(CodeInternalError, msg)
}

// respondError maps service and store errors onto HTTP statuses so each
// handler does not repeat the taxonomy. resource names what was being
// looked up when a not-found surfaces.
func respondError(w http.ResponseWriter, r *http.Request, err error, resource string) {
	logger := middleware.GetLoggerFromContext(r.Context())

	var ve *fleet.ValidationError
	var pf *fleet.PartialFailureError
	switch {
	case errors.Is(err, store.ErrNotFound):
		NotFound(resource).Write(w, http.StatusNotFound)
	case errors.As(err, &ve):
		ValidationErr("Validation failed", []ErrorDetail{{Field: ve.Field, Message: ve.Message}}).
			Write(w, http.StatusBadRequest)
	case errors.As(err, &pf):
		logger.Error("Operation partially failed", "completed", pf.Completed, "failed", pf.Failed, "error", pf.Err)
		NewError(CodePartialFailure, pf.Error()).
			WithContext(ErrorContext{"completed": pf.Completed, "failed": pf.Failed}).
			Write(w, http.StatusInternalServerError)
	case errors.Is(err, fleet.ErrNoChanges):
		Conflict("No changes to apply").Write(w, http.StatusConflict)
	default:
		logger.Error("Unhandled error", "error", err)
		InternalError("An unexpected error occurred.").Write(w, http.StatusInternalServerError)
	}
}
