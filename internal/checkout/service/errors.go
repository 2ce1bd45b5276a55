package service

import "github.com/chibyk-cyber/pro-shop/internal/apperr"

// ErrCheckoutDisabled is returned by every operation when no provider secret
// is configured.
var ErrCheckoutDisabled = &apperr.ConfigError{
	Key:     "PAYSTACK_SECRET_KEY",
	Message: "checkout is disabled",
}
