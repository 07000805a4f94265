package domain

import "errors"

// ValidationError marks a terminal business-rule rejection. The retry
// controller surfaces these immediately instead of consuming a retry:
// an invalid operation does not become valid by waiting out contention.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Validation builds a sentinel validation error.
func Validation(reason string) error {
	return &ValidationError{Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

var (
	ErrUserNotFound      = Validation("user not found")
	ErrUsersNotFound     = Validation("one or both users not found")
	ErrInvalidAmount     = Validation("amount must be positive")
	ErrSelfTransfer      = Validation("cannot transfer to yourself")
	ErrInsufficientFunds = Validation("insufficient funds")
	ErrInvalidCode       = Validation("redeem code not found")
	ErrCodeInactive      = Validation("redeem code is not active")
	ErrCodeExpired       = Validation("redeem code has expired")
	ErrCodeExhausted     = Validation("redeem code has no uses left")
	ErrAlreadyRedeemed   = Validation("redeem code already used by this user")
	ErrPowerNotOwned     = Validation("power is not owned by this user")
	ErrPowerNotFound     = Validation("power not found")
)
