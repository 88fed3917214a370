package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
	ErrorTypeExternal     ErrorType = "EXTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidDateRange ErrorCode = "INVALID_DATE_RANGE"
	ErrCodeMissingReason    ErrorCode = "MISSING_REASON"
	ErrCodeMissingFields    ErrorCode = "MISSING_REQUIRED_FIELDS"
	ErrCodeInvalidRole      ErrorCode = "INVALID_ROLE"
	ErrCodeInvalidFile      ErrorCode = "INVALID_FILE"

	ErrCodeRequestNotFound    ErrorCode = "REQUEST_NOT_FOUND"
	ErrCodeRequestResolved    ErrorCode = "REQUEST_ALREADY_RESOLVED"
	ErrCodeSectorMismatch     ErrorCode = "SECTOR_MISMATCH"
	ErrCodeUnauthorizedAccess ErrorCode = "UNAUTHORIZED_ACCESS"

	ErrCodeUserNotFound       ErrorCode = "USER_NOT_FOUND"
	ErrCodeEmailTaken         ErrorCode = "EMAIL_ALREADY_EXISTS"
	ErrCodeSectorNotFound     ErrorCode = "SECTOR_NOT_FOUND"
	ErrCodeSectorNameTaken    ErrorCode = "SECTOR_NAME_EXISTS"
	ErrCodeSectorInUse        ErrorCode = "SECTOR_IN_USE"
	ErrCodeTypeNotFound       ErrorCode = "PERMISSION_TYPE_NOT_FOUND"
	ErrCodeTypeNameTaken      ErrorCode = "PERMISSION_TYPE_NAME_EXISTS"
	ErrCodeTypeInUse          ErrorCode = "PERMISSION_TYPE_IN_USE"
	ErrCodeManagerRequired    ErrorCode = "MANAGER_ROLE_REQUIRED"
	ErrCodeSectorRequired     ErrorCode = "SECTOR_REQUIRED"
	ErrCodeAttachmentNotFound ErrorCode = "ATTACHMENT_NOT_FOUND"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	ErrCodeResetTokenInvalid  ErrorCode = "RESET_TOKEN_INVALID"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Join() string {
	messages := make([]string, len(v.Errors))
	for i, err := range v.Errors {
		messages[i] = err.Message
	}
	return strings.Join(messages, "; ")
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

// NewConflictError covers state-transition and referential-integrity
// violations: re-resolving a resolved request, deleting a referenced sector
// or permission type. These map to 409 and must never silently succeed.
func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var (
	ErrRequestNotFound  = NewNotFoundError("permission request not found", ErrCodeRequestNotFound)
	ErrRequestResolved  = NewConflictError("permission request already resolved", ErrCodeRequestResolved)
	ErrForbiddenRequest = NewForbiddenError("not authorized for this permission request", ErrCodeUnauthorizedAccess)
	ErrSectorForbidden  = NewForbiddenError("not authorized for requests outside your sector", ErrCodeSectorMismatch)

	ErrUserNotFound       = NewNotFoundError("user not found", ErrCodeUserNotFound)
	ErrEmailTaken         = NewConflictError("user with this email already exists", ErrCodeEmailTaken)
	ErrSectorNotFound     = NewNotFoundError("sector not found", ErrCodeSectorNotFound)
	ErrSectorNameTaken    = NewConflictError("sector with this name already exists", ErrCodeSectorNameTaken)
	ErrSectorInUse        = NewConflictError("cannot delete sector while users are assigned to it", ErrCodeSectorInUse)
	ErrTypeNotFound       = NewNotFoundError("permission type not found", ErrCodeTypeNotFound)
	ErrTypeNameTaken      = NewConflictError("permission type with this name already exists", ErrCodeTypeNameTaken)
	ErrTypeInUse          = NewConflictError("cannot delete permission type while requests reference it", ErrCodeTypeInUse)
	ErrAttachmentNotFound = NewNotFoundError("attachment not found", ErrCodeAttachmentNotFound)

	ErrInvalidCredentials = NewUnauthorizedError("invalid email or password", ErrCodeInvalidCredentials)
	ErrInvalidToken       = NewUnauthorizedError("invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("token has expired", ErrCodeTokenExpired)
	ErrResetTokenInvalid  = NewUnauthorizedError("reset token is invalid or expired", ErrCodeResetTokenInvalid)
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
