package service

import "errors"

// Kind classifies service failures; the HTTP layer maps each kind to one status.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is a failure safe to show to clients. Field names the offending
// input for validation failures.
type Error struct {
	Kind    Kind
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func newFieldError(field, msg string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: msg}
}

var (
	ErrUserAlreadyExists   = newError(KindConflict, "User with this email already exists")
	ErrInvalidCredentials  = newError(KindUnauthorized, "Invalid email or password")
	ErrAccountDeactivated  = newError(KindUnauthorized, "Account is deactivated")
	ErrInvalidRefreshToken = newError(KindUnauthorized, "Invalid refresh token")
	ErrRefreshTokenExpired = newError(KindUnauthorized, "Refresh token expired")
	ErrUserNotFound        = newError(KindNotFound, "User not found")
	ErrNoProfileFields     = newFieldError("body", "At least one field (firstName, lastName, or phone) must be provided")

	ErrProductNotFound   = newError(KindNotFound, "Product not found")
	ErrCategoryNotFound  = newError(KindNotFound, "Category not found")
	ErrUnsupportedFormat = newFieldError("format", "Export format must be csv or xlsx")
)

// KindOf returns the kind of err, KindInternal for anything untyped.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}
