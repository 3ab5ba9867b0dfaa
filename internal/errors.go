package internal

import (
	"encoding/json"
	"errors"
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
	ErrorTypeRateLimited  ErrorType = "RATE_LIMITED"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidDate      ErrorCode = "INVALID_DATE"
	ErrCodeInvalidAmount    ErrorCode = "INVALID_AMOUNT"
	ErrCodeInvalidRole      ErrorCode = "INVALID_ROLE"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserInactive       ErrorCode = "USER_INACTIVE"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	ErrCodeSessionExpired     ErrorCode = "SESSION_EXPIRED"
	ErrCodeAuthRequired       ErrorCode = "AUTH_REQUIRED"
	ErrCodeInsufficientRole   ErrorCode = "INSUFFICIENT_ROLE"
	ErrCodeLocationRequired   ErrorCode = "LOCATION_REQUIRED"
	ErrCodeOutsideGeofence    ErrorCode = "OUTSIDE_GEOFENCE"
	ErrCodeTooManyRequests    ErrorCode = "TOO_MANY_REQUESTS"

	ErrCodeEmployeeNotFound  ErrorCode = "EMPLOYEE_NOT_FOUND"
	ErrCodeEmailTaken        ErrorCode = "EMAIL_TAKEN"
	ErrCodeAttendanceExists  ErrorCode = "ATTENDANCE_EXISTS"
	ErrCodeNotClockedIn      ErrorCode = "NOT_CLOCKED_IN"
	ErrCodeLeaveNotFound     ErrorCode = "LEAVE_NOT_FOUND"
	ErrCodeLeaveQuota        ErrorCode = "MONTHLY_QUOTA_EXCEEDED"
	ErrCodeLeaveBalance      ErrorCode = "INSUFFICIENT_BALANCE"
	ErrCodeInvalidLeaveState ErrorCode = "INVALID_LEAVE_STATUS"
	ErrCodeProjectNotFound   ErrorCode = "PROJECT_NOT_FOUND"
	ErrCodeTaskNotFound      ErrorCode = "TASK_NOT_FOUND"
	ErrCodeInterviewNotFound ErrorCode = "INTERVIEW_NOT_FOUND"
	ErrCodeChannelNotFound   ErrorCode = "CHANNEL_NOT_FOUND"
	ErrCodeNotChannelMember  ErrorCode = "NOT_CHANNEL_MEMBER"
	ErrCodeFeeNotFound       ErrorCode = "FEE_NOT_FOUND"
	ErrCodeOverpayment       ErrorCode = "OVERPAYMENT"
	ErrCodeNotFound          ErrorCode = "NOT_FOUND"
	ErrCodeInternal          ErrorCode = "INTERNAL_ERROR"
)

// AppError is the error every service returns to the transport layer.
// Meta holds extra top-level response flags such as sessionExpired or distance.
type AppError struct {
	Type       ErrorType      `json:"type"`
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Details    interface{}    `json:"details,omitempty"`
	Meta       map[string]any `json:"-"`
	StatusCode int            `json:"-"`
	Cause      error          `json:"-"`
}

func newAppError(t ErrorType, code ErrorCode, status int, message string) *AppError {
	return &AppError{Type: t, Code: code, Message: message, StatusCode: status}
}

func (e *AppError) Error() string {
	if fields := e.fieldErrors(); len(fields) > 0 {
		return fields[0].Message
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// GetDetailedMessage joins every field error; it is the "message" in the
// response envelope.
func (e *AppError) GetDetailedMessage() string {
	fields := e.fieldErrors()
	if len(fields) == 0 {
		return e.Message
	}
	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, "; ")
}

func (e *AppError) fieldErrors() []ValidationError {
	if v, ok := e.Details.(ValidationErrors); ok {
		return v.Errors
	}
	return nil
}

func (e *AppError) Unwrap() error { return e.Cause }

// Is matches on Code so that copies of a sentinel still compare equal.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && e.Code == t.Code && e.Type == t.Type
}

// WithCause returns a copy carrying cause; sentinels are never mutated.
func (e *AppError) WithCause(cause error) *AppError {
	cp := *e
	cp.Cause = cause
	return &cp
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// WithMeta returns a copy with key set in the response meta.
func (e *AppError) WithMeta(key string, value any) *AppError {
	cp := *e
	cp.Meta = make(map[string]any, len(e.Meta)+1)
	for k, v := range e.Meta {
		cp.Meta[k] = v
	}
	cp.Meta[key] = value
	return &cp
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
	return newAppError(ErrorTypeValidation, code, http.StatusBadRequest, message)
}

// NewValidationFieldError reports a single invalid field; code is both the
// top-level code and the field's code.
func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	if code == "" {
		code = ErrCodeValidationFailed
	}
	return newAppError(ErrorTypeValidation, code, http.StatusBadRequest, "Validation failed").
		WithDetails(ValidationErrors{Errors: []ValidationError{{Field: field, Message: message, Code: string(code)}}})
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return newAppError(ErrorTypeNotFound, code, http.StatusNotFound, message)
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return newAppError(ErrorTypeUnauthorized, code, http.StatusUnauthorized, message)
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return newAppError(ErrorTypeForbidden, code, http.StatusForbidden, message)
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return newAppError(ErrorTypeConflict, code, http.StatusConflict, message)
}

func NewTooManyRequestsError(message string) *AppError {
	return newAppError(ErrorTypeRateLimited, ErrCodeTooManyRequests, http.StatusTooManyRequests, message)
}

// NewInternalError keeps cause for the log; the client only sees message.
func NewInternalError(message string, cause error) *AppError {
	return newAppError(ErrorTypeInternal, ErrCodeInternal, http.StatusInternalServerError, message).WithCause(cause)
}

var (
	ErrInvalidCredentials = NewUnauthorizedError("Invalid email or password", ErrCodeInvalidCredentials)
	ErrUserInactive       = NewUnauthorizedError("User account is inactive", ErrCodeUserInactive)
	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
	ErrAuthRequired       = NewUnauthorizedError("Authentication required", ErrCodeAuthRequired)
	ErrInsufficientRole   = NewForbiddenError("You do not have permission to perform this action", ErrCodeInsufficientRole)

	// ErrSessionExpired is returned when a newer login replaced the caller's session marker.
	ErrSessionExpired = NewUnauthorizedError("Session expired, you have logged in from another device", ErrCodeSessionExpired).
				WithMeta("sessionExpired", true)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{e.Type, e.Code, e.Message, e.Details})
}
