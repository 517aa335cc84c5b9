package service

import (
	"errors"
	"fmt"
)

var (
	// ErrPaymentProvider wraps transport-level processor failures. The
	// outcome is unknown, so the caller may safely retry.
	ErrPaymentProvider = errors.New("payment provider unavailable")

	ErrOrderNotFound    = errors.New("order not found")
	ErrOrderTerminal    = errors.New("order already failed or cancelled")
	ErrProductNotFound  = errors.New("product not found")
	ErrProductInactive  = errors.New("product is not active")
	ErrPurchaseNotFound = errors.New("purchase not found")
	ErrDuplicateReview  = errors.New("purchase already reviewed")
	ErrInvalidRating    = errors.New("rating must be between 1 and 5")
	ErrReviewNotAllowed = errors.New("review requires a completed purchase by this buyer")
)

// CaptureFailedError means the processor definitively declined the
// capture; the order has been marked FAILED and a new checkout is needed.
type CaptureFailedError struct {
	OrderID string
	Reason  string
}

func (e *CaptureFailedError) Error() string {
	return fmt.Sprintf("capture of order %s failed: %s", e.OrderID, e.Reason)
}
