package service

import (
	"net/http"

	commonerrors "github.com/AlibekovAA/membership/internal/common/errors"
)

var (
	ErrEmailTaken = commonerrors.NewDomainError(
		"EMAIL_TAKEN",
		commonerrors.CategoryConflict,
		http.StatusBadRequest,
		"Email already registered",
	)

	ErrInvalidCredentials = commonerrors.NewDomainError(
		"INVALID_CREDENTIALS",
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"Invalid email or password",
	)

	ErrUserNotFound = commonerrors.NewDomainError(
		"USER_NOT_FOUND",
		commonerrors.CategoryNotFound,
		http.StatusNotFound,
		"User not found",
	)

	ErrValidation = commonerrors.NewDomainError(
		"VALIDATION_FAILED",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"validation failed",
	)
)

// NewValidationError is ErrValidation carrying a user-facing message.
func NewValidationError(message string) commonerrors.DomainError {
	return commonerrors.NewDomainError(
		ErrValidation.Code(),
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		message,
	)
}

func registrationFailed(cause error) error {
	return commonerrors.NewInternalError("REGISTRATION_FAILED", "Registration failed", cause)
}

func loginFailed(cause error) error {
	return commonerrors.NewInternalError("LOGIN_FAILED", "Login failed", cause)
}

func profileFailed(cause error) error {
	return commonerrors.NewInternalError("PROFILE_FAILED", "Failed to get profile", cause)
}

func profileUpdateFailed(cause error) error {
	return commonerrors.NewInternalError("PROFILE_UPDATE_FAILED", "Failed to update profile", cause)
}

func tokenRefreshFailed(cause error) error {
	return commonerrors.NewInternalError("TOKEN_REFRESH_FAILED", "Token refresh failed", cause)
}
