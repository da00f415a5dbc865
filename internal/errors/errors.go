package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// Sentinel errors for the analysis core. Everything deterministic surfaces as a
// typed failure instead of a silent zero or NaN.
var (
	// ErrInsufficientData is returned when fewer than two observations exist
	// for an indicator, making trend fitting undefined.
	ErrInsufficientData = errors.New("insufficient data for trend fitting")

	// ErrUnknownIndicator is returned when no observations match an indicator code.
	ErrUnknownIndicator = errors.New("unknown indicator code")

	// ErrUnknownEffectForm is returned for an unrecognized effect form tag.
	ErrUnknownEffectForm = errors.New("unknown effect form")

	// ErrUnknownCombination is returned for an unrecognized combination rule.
	ErrUnknownCombination = errors.New("unknown combination rule")

	// ErrDuplicateLink is returned when two impact links target the same
	// (event, indicator) pair under the strict duplicate policy.
	ErrDuplicateLink = errors.New("duplicate impact link")

	// ErrEventNotFound is returned when an impact link references a missing event.
	ErrEventNotFound = errors.New("event not found")

	// ErrNoImpactLink is returned when validation targets a pair with no link.
	ErrNoImpactLink = errors.New("no impact link for event and indicator")

	// ErrSignMismatch is returned when a link's magnitude sign contradicts its
	// stated direction.
	ErrSignMismatch = errors.New("impact magnitude sign contradicts direction")

	// ErrUnknownScenario is returned for an unrecognized scenario name.
	ErrUnknownScenario = errors.New("unknown scenario")
)

// IndicatorError wraps a sentinel error with the indicator it concerns.
type IndicatorError struct {
	Indicator string
	Points    int
	Err       error
}

func (e *IndicatorError) Error() string {
	if e.Points > 0 {
		return fmt.Sprintf("indicator %s: %v (%d observations)", e.Indicator, e.Err, e.Points)
	}
	return fmt.Sprintf("indicator %s: %v", e.Indicator, e.Err)
}

func (e *IndicatorError) Unwrap() error { return e.Err }

// InsufficientData builds an IndicatorError around ErrInsufficientData.
func InsufficientData(indicator string, points int) error {
	return &IndicatorError{Indicator: indicator, Points: points, Err: ErrInsufficientData}
}

// UnknownIndicator builds an IndicatorError around ErrUnknownIndicator.
func UnknownIndicator(indicator string) error {
	return &IndicatorError{Indicator: indicator, Err: ErrUnknownIndicator}
}

// LinkError wraps a sentinel error with the (event, indicator) pair it concerns.
type LinkError struct {
	EventID   string
	Indicator string
	Err       error
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("event %s, indicator %s: %v", e.EventID, e.Indicator, e.Err)
}

func (e *LinkError) Unwrap() error { return e.Err }

// DuplicateLink builds a LinkError around ErrDuplicateLink.
func DuplicateLink(eventID, indicator string) error {
	return &LinkError{EventID: eventID, Indicator: indicator, Err: ErrDuplicateLink}
}

// APIError represents a structured API error response.
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render.
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// New creates a new APIError with the given parameters.
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates a new APIError with additional details.
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// Predefined API errors for common scenarios.
var (
	ErrInvalidRequest   = New(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format")
	ErrValidationFailed = New(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed")
	ErrNotFound         = New(http.StatusNotFound, "NOT_FOUND", "Resource not found")
	ErrInternalServer   = New(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error")
)

// ErrValidation creates a validation error with field details.
func ErrValidation(field, message string) *APIError {
	return NewWithDetails(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", ValidationError{
		Field:   field,
		Message: message,
	})
}

// ValidationError represents a single field validation failure.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FromDomain maps a core analysis error to a structured API error.
func FromDomain(err error) *APIError {
	switch {
	case errors.Is(err, ErrUnknownIndicator):
		return NewWithDetails(http.StatusNotFound, "UNKNOWN_INDICATOR", "No observations for indicator", err.Error())
	case errors.Is(err, ErrInsufficientData):
		return NewWithDetails(http.StatusUnprocessableEntity, "INSUFFICIENT_DATA", "Too few observations to fit a trend", err.Error())
	case errors.Is(err, ErrUnknownEffectForm):
		return NewWithDetails(http.StatusBadRequest, "UNKNOWN_EFFECT_FORM", "Unrecognized effect form tag", err.Error())
	case errors.Is(err, ErrUnknownCombination):
		return NewWithDetails(http.StatusBadRequest, "UNKNOWN_COMBINATION", "Unrecognized combination rule", err.Error())
	case errors.Is(err, ErrUnknownScenario):
		return NewWithDetails(http.StatusBadRequest, "UNKNOWN_SCENARIO", "Unrecognized scenario name", err.Error())
	case errors.Is(err, ErrDuplicateLink):
		return NewWithDetails(http.StatusConflict, "DUPLICATE_IMPACT_LINK", "Conflicting impact links for the same event and indicator", err.Error())
	case errors.Is(err, ErrEventNotFound):
		return NewWithDetails(http.StatusNotFound, "EVENT_NOT_FOUND", "Referenced event does not exist", err.Error())
	default:
		return NewWithDetails(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error", err.Error())
	}
}

// ErrorResponse represents a standard error response envelope.
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   *APIError `json:"error"`
}

// NewErrorResponse creates a new error response.
func NewErrorResponse(err *APIError) *ErrorResponse {
	return &ErrorResponse{
		Success: false,
		Error:   err,
	}
}

// Render implements the render.Renderer interface.
func (e *ErrorResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return e.Error.Render(w, r)
}
