package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("not found")                  // 404
	ErrValidation        = errors.New("validation")                 // 400
	ErrConflict          = errors.New("conflict")                   // 409
	ErrReference         = errors.New("dangling reference")         // 400
	ErrExpired           = errors.New("coupon is not active")       // 400
	ErrUsageLimit        = errors.New("coupon usage limit reached") // 400
	ErrMinimumNotMet     = errors.New("cart minimum not met")       // 400
	ErrOutOfStock        = errors.New("insufficient stock")         // 400
	ErrInvalidTransition = errors.New("invalid status transition")  // 400
	ErrUnauthorized      = errors.New("unauthorized")               // 401
	ErrForbidden         = errors.New("forbidden")                  // 403
)

// MinimumNotMetError reports the cart value a coupon requires.
type MinimumNotMetError struct {
	Required decimal.Decimal
}

func (e *MinimumNotMetError) Error() string {
	return fmt.Sprintf("minimum cart value of %s required for this coupon", e.Required.StringFixed(2))
}

func (e *MinimumNotMetError) Is(target error) bool {
	return target == ErrMinimumNotMet
}
