package domain

import "errors"

// Sentinel errors shared by the service and HTTP layers. Callers wrap them
// with fmt.Errorf("%w: ...") to add detail and match with errors.Is.
var (
	ErrInvalidOrderInput = errors.New("invalid order input")
	ErrInvalidCategory   = errors.New("invalid category")
	ErrInvalidVoucher    = errors.New("invalid voucher")

	ErrVoucherNotFound   = errors.New("voucher not found")
	ErrVoucherInactive   = errors.New("voucher is not active")
	ErrVoucherExhausted  = errors.New("voucher usage limit reached")
	ErrVoucherExpired    = errors.New("voucher expired")
	ErrBelowMinimumOrder = errors.New("order below voucher minimum")

	ErrAlreadyClaimed = errors.New("voucher already claimed")
	ErrClaimNotFound  = errors.New("voucher claim not found")
	ErrAlreadyUsed    = errors.New("voucher already used")

	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid status transition")

	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
)
