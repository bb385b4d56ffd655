package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// FieldError describes a single rejected request field.
type FieldError struct {
	Field        string `json:"field"`
	Message      string `json:"message"`
	InternalCode string `json:"internalCode,omitempty"`
}

// DomainError standardizes application errors.
type DomainError struct {
	HTTPStatus   int
	Message      string
	InternalCode string
	Errors       []FieldError
	Err          error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.InternalCode, e.Message, e.Err)
	}
	return e.InternalCode + " " + e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// ErrorResponse is the body written for every failed request.
type ErrorResponse struct {
	HTTPCode     int          `json:"httpCode"`
	Message      string       `json:"message"`
	InternalCode string       `json:"internalCode"`
	Errors       []FieldError `json:"errors,omitempty"`
}

// Response renders the error as the stable client payload.
func (e *DomainError) Response() ErrorResponse {
	return ErrorResponse{
		HTTPCode:     e.HTTPStatus,
		Message:      e.Message,
		InternalCode: e.InternalCode,
		Errors:       e.Errors,
	}
}

// NewDomainError constructs a DomainError from a catalog entry.
func NewDomainError(code Code, status int, args ...any) *DomainError {
	return &DomainError{
		HTTPStatus:   status,
		Message:      code.Format(args...),
		InternalCode: code.ID,
	}
}

// NewUnauthenticated is returned when a protected operation has no principal.
func NewUnauthenticated() error {
	return NewDomainError(CodeAccessDenied, http.StatusUnauthorized)
}

// NewForbidden is returned when the principal lacks privilege for the operation.
func NewForbidden() error {
	return NewDomainError(CodeAccessDenied, http.StatusForbidden)
}

func NewValidationError(fields []FieldError) error {
	de := NewDomainError(CodeInvalidRequest, http.StatusUnprocessableEntity)
	de.Errors = fields
	return de
}

func NewBadRequest(code Code, args ...any) error {
	return NewDomainError(code, http.StatusBadRequest, args...)
}

func NewNotFound(code Code, args ...any) error {
	return NewDomainError(code, http.StatusNotFound, args...)
}

func NewInternalError(err error) error {
	de := NewDomainError(CodeInternal, http.StatusInternalServerError)
	de.Err = err
	return de
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		switch fiberErr.Code {
		case http.StatusNotFound:
			return NewDomainError(CodeRouteNotFound, http.StatusNotFound)
		case http.StatusUnauthorized:
			return NewDomainError(CodeAccessDenied, http.StatusUnauthorized)
		case http.StatusForbidden:
			return NewDomainError(CodeAccessDenied, http.StatusForbidden)
		case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusMethodNotAllowed, http.StatusRequestEntityTooLarge:
			return NewDomainError(CodeInvalidRequest, fiberErr.Code)
		}
	}
	internal, _ := NewInternalError(err).(*DomainError)
	return internal
}

func MapError(err error) error {
	return ToDomainError(err)
}
