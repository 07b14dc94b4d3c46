package util

import (
	"errors"
	"net/http"
)

// ErrorKind is the stable, machine readable error code sent to clients.
type ErrorKind string

const (
	KindInvalidInput       ErrorKind = "INVALID_INPUT"
	KindUnauthorized       ErrorKind = "UNAUTHORIZED"
	KindTokenInvalid       ErrorKind = "TOKEN_INVALID"
	KindTokenExpired       ErrorKind = "TOKEN_EXPIRED"
	KindPrerequisiteNotMet ErrorKind = "PREREQUISITE_NOT_MET"
	KindNotFound           ErrorKind = "RESOURCE_NOT_FOUND"
	KindConflict           ErrorKind = "RESOURCE_EXISTS"
	KindDatabase           ErrorKind = "DATABASE_ERROR"
	KindInternal           ErrorKind = "INTERNAL_SERVER_ERROR"
)

// AppError is the single failure type returned by services.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches sentinel errors by kind and message so wrapped copies still compare equal.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func (e *AppError) Status() int {
	return StatusOf(e.Kind)
}

func NewError(kind ErrorKind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

func WrapError(kind ErrorKind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

// DatabaseError hides the store error behind a generic message; the cause is kept for logging.
func DatabaseError(message string, err error) *AppError {
	return WrapError(KindDatabase, message, err)
}

func StatusOf(kind ErrorKind) int {
	switch kind {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindUnauthorized, KindTokenInvalid, KindTokenExpired:
		return http.StatusUnauthorized
	case KindPrerequisiteNotMet:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// KindOf reports the kind of err, KindInternal for anything that is not an AppError.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

var (
	ErrUserNotFound       = NewError(KindNotFound, "user not found")
	ErrEmailRegistered    = NewError(KindConflict, "email is already registered")
	ErrInvalidCredentials = NewError(KindUnauthorized, "invalid email or password")
	ErrWrongPassword      = NewError(KindUnauthorized, "current password is incorrect")
	ErrMissingIdentity    = NewError(KindUnauthorized, "authentication required")
	ErrTokenInvalid       = NewError(KindTokenInvalid, "invalid token, please log in again")
	ErrTokenExpired       = NewError(KindTokenExpired, "token has expired, please log in again")
	ErrInvalidTheme       = NewError(KindInvalidInput, "theme must be light or dark")
	ErrInvalidLessonID    = NewError(KindInvalidInput, "invalid lesson id")
	ErrInvalidScore       = NewError(KindInvalidInput, "score must be a number between 0 and 100")
	ErrLessonNotFound     = NewError(KindNotFound, "lesson not found")
	ErrQuizNotFound       = NewError(KindNotFound, "quiz not found")
	ErrLessonLocked       = NewError(KindPrerequisiteNotMet, "complete the previous lesson quiz with a score of at least 60 first")
	ErrSubmissionInFlight = NewError(KindConflict, "a submission with this idempotency key is still being processed")
)
