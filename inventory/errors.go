/*
errors.go - Centralized error types for the inventory engine

ERROR CATEGORIES:
  1. Validation errors - malformed requests, rejected before any store access
  2. Not-found / ambiguity errors - bad references in an otherwise valid request
  3. Conflict errors - stock insufficiency, duplicate submissions
  4. Store errors - infrastructure failures, surfaced without internal detail

USAGE:
  Callers classify with the helpers rather than matching sentinels directly:

    switch {
    case inventory.IsValidation(err):  // 400
    case inventory.IsNotFound(err):    // 404
    case inventory.IsConflict(err):    // 400/409, nothing was persisted
    default:                           // 500, log the detail
    }

SEE ALSO:
  - coordinator.go: Produces these errors
  - api/handlers.go: Maps them to HTTP statuses
*/
package inventory

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is the root of every request-shape failure. Detected before
	// any store interaction; always recoverable by correcting the input.
	ErrValidation = errors.New("validation failed")

	// ErrClientNotFound is returned when a client reference matches no client.
	ErrClientNotFound = errors.New("client not found")

	// ErrAmbiguousClient is returned when a client reference matches more than
	// one client. The engine never silently picks the first row.
	ErrAmbiguousClient = errors.New("ambiguous client reference")

	// ErrProductNotFound is returned when a referenced product doesn't exist.
	ErrProductNotFound = errors.New("product not found")

	// ErrSaleNotFound is returned when a referenced sale doesn't exist.
	ErrSaleNotFound = errors.New("sale not found")

	// ErrPurchaseNotFound is returned when a referenced purchase doesn't exist.
	ErrPurchaseNotFound = errors.New("purchase not found")

	// ErrCategoryNotFound is returned when a referenced category doesn't exist.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrInsufficientStock is returned when a sale would drive a product's
	// stock below zero. The whole transaction is rolled back.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrDuplicateIdempotencyKey is returned when a sale or purchase with the
	// same idempotency key was already committed. Expected on retries.
	ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key")

	// ErrDuplicateRecord is returned on unique-field collisions
	// (product name, category name, client email/phone).
	ErrDuplicateRecord = errors.New("record already exists")

	// ErrStoreBusy is returned when the store could not serialize the
	// transaction. Retryable.
	ErrStoreBusy = errors.New("store busy")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError names the first violated rule of a request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// InsufficientStockError names the offending product of an aborted sale.
type InsufficientStockError struct {
	ProductID int64
	Name      string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: available %d, requested %d",
		e.Name, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// AmbiguousClientError reports how many clients matched a reference.
type AmbiguousClientError struct {
	Ref     string
	Matches int
}

func (e *AmbiguousClientError) Error() string {
	return fmt.Sprintf("client reference %q matches %d clients", e.Ref, e.Matches)
}

func (e *AmbiguousClientError) Unwrap() error { return ErrAmbiguousClient }

// =============================================================================
// CLASSIFICATION HELPERS
// =============================================================================

// IsValidation reports whether the error is a request-shape failure (400).
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFound reports whether the error names a missing record (404).
func IsNotFound(err error) bool {
	return errors.Is(err, ErrClientNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrSaleNotFound) ||
		errors.Is(err, ErrPurchaseNotFound) ||
		errors.Is(err, ErrCategoryNotFound)
}

// IsConflict reports whether the error is a business-rule rejection with a
// fully rolled back transaction behind it.
func IsConflict(err error) bool {
	return errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrAmbiguousClient) ||
		errors.Is(err, ErrDuplicateIdempotencyKey) ||
		errors.Is(err, ErrDuplicateRecord)
}

// IsRetryable reports whether a retry might succeed.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreBusy)
}
