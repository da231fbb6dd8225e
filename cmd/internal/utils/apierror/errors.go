package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"notehistory/cmd/internal/service"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse abstracts all API error responses to the user.
//
// This interface does not implement `error`, since its only purpose
// is to be used for API responses and not for logging circumstances.
//
// In general, the whole ErrorResponse can be sent for serialization.
type ErrorResponse interface {
	// Code is the HTTP status code to be returned.
	Code() int
}

type APIError struct {
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (a *APIError) Code() int {
	return a.Status
}

type StructuredError struct {
	Errors map[string][]string `json:"errors"`
	Status int                 `json:"-"`
}

func (s *StructuredError) Code() int {
	return s.Status
}

func (s *StructuredError) Add(field, problem string) {
	s.Errors[field] = append(s.Errors[field], problem)
}

// RecoveryError is sent when a write went through partially. The ids let the
// caller (or the repair job) find what was left behind.
type RecoveryError struct {
	Message   string `json:"message"`
	Kind      string `json:"kind"`
	NoteID    int64  `json:"noteId,omitempty"`
	VersionID int64  `json:"versionId,omitempty"`
	Status    int    `json:"-"`
}

func (r *RecoveryError) Code() int {
	return r.Status
}

var (
	MalformedJSONError  = NewSimple(http.StatusBadRequest, "Malformed JSON body")
	InternalServerError = NewSimple(http.StatusInternalServerError, "Internal server error")
	StorageError        = NewSimple(http.StatusServiceUnavailable, "Storage is currently unavailable")

	NotFoundError       = NewSimple(http.StatusNotFound, "Resource not found")
	InvalidIDError      = NewSimple(http.StatusBadRequest, "The provided ID is invalid, IDs are integers > 0")
	ExportDisabledError = NewSimple(http.StatusNotImplemented, "History export is not configured")
)

// FromServiceError maps a service error to its HTTP response.
func FromServiceError(err error) ErrorResponse {
	if errors.Is(err, service.ErrExportDisabled) {
		return ExportDisabledError
	}

	var serr *service.Error
	if !errors.As(err, &serr) {
		return InternalServerError
	}

	switch serr.Kind {
	case service.KindValidation:
		if structured := FromValidationError(serr.Err); structured != nil {
			return structured
		}
		return NewSimple(http.StatusBadRequest, capitalize(messageOr(serr, "Invalid input")))

	case service.KindNotFound:
		return NewSimple(http.StatusNotFound, capitalize(messageOr(serr, "Resource not found")))

	case service.KindConstraint:
		return NewSimple(http.StatusConflict, capitalize(messageOr(serr, "Constraint violation")))

	case service.KindConflict:
		return &RecoveryError{
			Message:   "Note was modified concurrently, the new version was kept in history",
			Kind:      string(serr.Kind),
			NoteID:    serr.NoteID,
			VersionID: serr.VersionID,
			Status:    http.StatusConflict,
		}

	case service.KindPartialCreate:
		return &RecoveryError{
			Message:   "Note was created without a current version",
			Kind:      string(serr.Kind),
			NoteID:    serr.NoteID,
			VersionID: serr.VersionID,
			Status:    http.StatusInternalServerError,
		}

	case service.KindStorage:
		if serr.VersionID != 0 {
			return &RecoveryError{
				Message:   "Version was saved but the note could not be updated",
				Kind:      string(serr.Kind),
				NoteID:    serr.NoteID,
				VersionID: serr.VersionID,
				Status:    http.StatusServiceUnavailable,
			}
		}
		return StorageError

	default:
		return InternalServerError
	}
}

func FromValidationError(err error) *StructuredError {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}

	problems := map[string][]string{}
	for _, fe := range ve {
		field := lowerFirst(fe.Field())

		switch fe.Tag() {
		case "required":
			problems[field] = append(problems[field], "This field is required")
		case "notblank":
			problems[field] = append(problems[field], "Value must not be blank")
		case "min":
			problems[field] = append(problems[field], "Value is too short, min: "+fe.Param())
		case "max":
			problems[field] = append(problems[field], "Value is too long, max: "+fe.Param())
		case "gte":
			problems[field] = append(problems[field], "Value is too small, min: "+fe.Param())
		case "lte":
			problems[field] = append(problems[field], "Value is too big, max: "+fe.Param())
		case "email":
			problems[field] = append(problems[field], "Value must be a valid email address")

		default:
			problems[field] = append(problems[field], "Invalid value provided")
		}
	}

	return &StructuredError{
		Errors: problems,
		Status: http.StatusBadRequest,
	}
}

func NewSimple(status int, msg string, args ...any) *APIError {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	return &APIError{Status: status, Message: msg}
}

func NewStructured(code int) *StructuredError {
	return &StructuredError{
		Errors: make(map[string][]string),
		Status: code,
	}
}

func NewInvalidParamTypeError(name, dataType string) *APIError {
	return NewSimple(http.StatusBadRequest, "Parameter '%s' has invalid type, expected: %s", name, dataType)
}

func NewMissingParamError(name string) *APIError {
	return NewSimple(http.StatusBadRequest, "Missing required parameter '%s'", name)
}

func messageOr(serr *service.Error, fallback string) string {
	if serr.Message == "" {
		return fallback
	}
	return serr.Message
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// lowerFirst turns a Go field name into its JSON spelling ("PageSize" -> "pageSize").
func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
