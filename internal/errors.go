package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	ErrCodeInvalidCredentials  ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeInvalidToken        ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired        ErrorCode = "TOKEN_EXPIRED"
	ErrCodeInvalidRefreshToken ErrorCode = "INVALID_REFRESH_TOKEN"
	ErrCodeInsufficientRole    ErrorCode = "INSUFFICIENT_ROLE"

	ErrCodeCompanyExists       ErrorCode = "COMPANY_ALREADY_EXISTS"
	ErrCodeDuplicateEmail      ErrorCode = "DUPLICATE_EMAIL"
	ErrCodeDuplicateInvitation ErrorCode = "DUPLICATE_INVITATION"
	ErrCodeInvalidInvitation   ErrorCode = "INVALID_INVITATION"
	ErrCodeDepartmentNotSet    ErrorCode = "DEPARTMENT_NOT_SET"

	ErrCodeEmployeeNotFound   ErrorCode = "EMPLOYEE_NOT_FOUND"
	ErrCodePolicyNotFound     ErrorCode = "POLICY_NOT_FOUND"
	ErrCodeTrainingNotFound   ErrorCode = "TRAINING_NOT_FOUND"
	ErrCodeAssessmentNotFound ErrorCode = "ASSESSMENT_NOT_FOUND"
	ErrCodeAccessDenied       ErrorCode = "ACCESS_DENIED"

	ErrCodeAssessmentNotAvailable ErrorCode = "ASSESSMENT_NOT_AVAILABLE"

	ErrCodeFileTooLarge    ErrorCode = "FILE_TOO_LARGE"
	ErrCodeFileTypeBlocked ErrorCode = "FILE_TYPE_NOT_ALLOWED"
)

// AppError is the service-layer error carried up to the HTTP boundary. The
// boundary maps StatusCode and the user-safe Message; Cause stays internal.
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

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(ErrCodeValidationFailed)},
			},
		},
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

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
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
	ErrInvalidCredentials  = NewUnauthorizedError("Invalid email or password", ErrCodeInvalidCredentials)
	ErrInvalidToken        = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired        = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
	ErrInvalidRefreshToken = NewValidationError("Invalid refresh token", ErrCodeInvalidRefreshToken)
	ErrForbidden           = NewForbiddenError("Access denied. Insufficient permissions", ErrCodeInsufficientRole)

	ErrCompanyExists       = NewConflictError("Company already exists", ErrCodeCompanyExists)
	ErrDuplicateEmail      = NewConflictError("Email already exists", ErrCodeDuplicateEmail)
	ErrDuplicateInvitation = NewConflictError("Invitation already exists for this email", ErrCodeDuplicateInvitation)
	ErrInvalidInvitation   = NewValidationError("Invalid or expired invitation", ErrCodeInvalidInvitation)
	ErrDepartmentNotSet    = NewValidationError("User department not found", ErrCodeDepartmentNotSet)

	ErrEmployeeNotFound   = NewNotFoundError("Employee not found", ErrCodeEmployeeNotFound)
	ErrPolicyNotFound     = NewNotFoundError("Policy not found", ErrCodePolicyNotFound)
	ErrTrainingNotFound   = NewNotFoundError("Training content not found", ErrCodeTrainingNotFound)
	ErrAssessmentNotFound = NewNotFoundError("Assessment not found", ErrCodeAssessmentNotFound)
	ErrAccessDenied       = NewForbiddenError("Access denied", ErrCodeAccessDenied)

	ErrAssessmentNotAvailable = NewNotFoundError("Assessment not available", ErrCodeAssessmentNotAvailable)
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
