package cart

import (
	"errors"
	"fmt"
)

var (
	ErrCheckoutInProgress = errors.New("a checkout is already in progress")
	ErrEmptyCart          = errors.New("your cart is empty")
)

// InsufficientInventoryError is returned when a requested quantity is above
// the book's stock. The cart is left unchanged.
type InsufficientInventoryError struct {
	BookID    string
	Title     string
	Available int
	Requested int
}

func (e *InsufficientInventoryError) Error() string {
	name := e.BookID
	if e.Title != "" {
		name = fmt.Sprintf("%q (%s)", e.Title, e.BookID)
	}
	return fmt.Sprintf("not enough inventory for %s: requested %d, available %d", name, e.Requested, e.Available)
}

// SubmissionError wraps a failed order submission. Its text is the
// backend's message as received.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string { return e.Err.Error() }

func (e *SubmissionError) Unwrap() error { return e.Err }

func IsInsufficient(err error) bool {
	var ie *InsufficientInventoryError
	return errors.As(err, &ie)
}
