// Package apperr holds the error types shared by the storefront components.
// Handlers map them to HTTP status codes; nothing below the handler layer
// retries on them.
package apperr

import (
	"errors"
	"fmt"
)

// ValidationError reports bad local input such as a non-positive quantity or an
// empty required field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validation is a shorthand constructor for ValidationError.
func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

type AuthReason string

const (
	AuthInvalidCredentials AuthReason = "invalid_credentials"
	AuthDuplicateUser      AuthReason = "duplicate_user"
	AuthUnauthenticated    AuthReason = "unauthenticated"
	AuthForbidden          AuthReason = "forbidden"
)

// AuthError reports bad credentials, a duplicate registration or an attempt to
// touch data owned by another user.
type AuthError struct {
	Reason  AuthReason
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

func Auth(reason AuthReason, message string) error {
	return &AuthError{Reason: reason, Message: message}
}

// ConfigError reports a missing or invalid setting. A feature that depends on
// the setting is disabled rather than the process crashing.
type ConfigError struct {
	Key     string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Key, e.Message)
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsConfig(err error) bool {
	var c *ConfigError
	return errors.As(err, &c)
}

// AuthReasonOf returns the reason of the first AuthError in err's chain.
func AuthReasonOf(err error) (AuthReason, bool) {
	var a *AuthError
	if errors.As(err, &a) {
		return a.Reason, true
	}
	return "", false
}
