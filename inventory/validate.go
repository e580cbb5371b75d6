/*
validate.go - Pure validation pipeline for inbound requests

CONTRACT:
  Every function here is deterministic, never touches the store, and returns
  either nil or a *ValidationError naming the FIRST violated rule. The
  pipeline runs before the coordinator is invoked; resubmitting an identical
  invalid request fails identically, with no side effects either time.

WHAT IS NOT CHECKED HERE:
  Stock sufficiency. That is ledger state, and checking it outside the write
  transaction would race against concurrent sales. The coordinator checks it
  inside the transaction.

SEE ALSO:
  - coordinator.go: Runs after this pipeline
*/
package inventory

import (
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"
)

var (
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	nonDigitPattern = regexp.MustCompile(`\D`)

	maxPrice = decimal.NewFromFloat(999999.99)
)

// =============================================================================
// TRANSACTION REQUESTS
// =============================================================================

// ValidateSaleRequest checks the shape of a sale request.
func ValidateSaleRequest(req SaleRequest) error {
	if err := requireString("client_ref", req.ClientRef, 200); err != nil {
		return err
	}
	if len(req.Items) == 0 {
		return &ValidationError{Field: "items", Reason: "at least one line item is required"}
	}
	for i, line := range req.Items {
		if line.ProductID <= 0 {
			return &ValidationError{
				Field:  fmt.Sprintf("items[%d].product_id", i),
				Reason: "must be a positive integer",
			}
		}
		if line.Quantity <= 0 {
			return &ValidationError{
				Field:  fmt.Sprintf("items[%d].quantity", i),
				Reason: "must be a positive integer",
			}
		}
	}
	return nil
}

// ValidatePurchaseRequest checks the shape of a purchase request.
func ValidatePurchaseRequest(req PurchaseRequest) error {
	if err := requireString("supplier", req.Supplier, 100); err != nil {
		return err
	}
	if len(req.Items) == 0 {
		return &ValidationError{Field: "items", Reason: "at least one line item is required"}
	}
	for i, line := range req.Items {
		if line.ProductID <= 0 {
			return &ValidationError{
				Field:  fmt.Sprintf("items[%d].product_id", i),
				Reason: "must be a positive integer",
			}
		}
		if line.Quantity <= 0 {
			return &ValidationError{
				Field:  fmt.Sprintf("items[%d].quantity", i),
				Reason: "must be a positive integer",
			}
		}
		if err := validatePrice(fmt.Sprintf("items[%d].unit_price", i), line.UnitPrice); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// RECORD PAYLOADS
// =============================================================================

// ValidateClient checks a client payload (create/update).
func ValidateClient(c Client) error {
	if err := requireString("name", c.Name, 100); err != nil {
		return err
	}
	if !emailPattern.MatchString(c.Email) {
		return &ValidationError{Field: "email", Reason: "invalid email format"}
	}
	digits := nonDigitPattern.ReplaceAllString(c.Phone, "")
	if len(digits) < 10 || len(digits) > 15 {
		return &ValidationError{Field: "phone", Reason: "must contain 10 to 15 digits"}
	}
	if err := requireString("address", c.Address, 200); err != nil {
		return err
	}
	return nil
}

// ValidateProduct checks a product payload (create/update).
func ValidateProduct(p Product) error {
	if err := requireString("name", p.Name, 100); err != nil {
		return err
	}
	if p.CategoryID <= 0 {
		return &ValidationError{Field: "category_id", Reason: "must be a positive integer"}
	}
	if err := validatePrice("price", p.Price); err != nil {
		return err
	}
	if p.Stock < 0 {
		return &ValidationError{Field: "stock", Reason: "must not be negative"}
	}
	if p.AlertThreshold < 0 {
		return &ValidationError{Field: "alert_threshold", Reason: "must not be negative"}
	}
	if len(p.Description) > 500 {
		return &ValidationError{Field: "description", Reason: "must be no more than 500 characters"}
	}
	return nil
}

// ValidateCategory checks a category payload.
func ValidateCategory(c Category) error {
	return requireString("name", c.Name, 50)
}

// =============================================================================
// PRIMITIVES
// =============================================================================

func requireString(field, value string, maxLen int) error {
	if value == "" {
		return &ValidationError{Field: field, Reason: "is required"}
	}
	if len(value) > maxLen {
		return &ValidationError{
			Field:  field,
			Reason: fmt.Sprintf("must be no more than %d characters", maxLen),
		}
	}
	return nil
}

func validatePrice(field string, price decimal.Decimal) error {
	if !price.IsPositive() {
		return &ValidationError{Field: field, Reason: "must be greater than zero"}
	}
	if price.GreaterThan(maxPrice) {
		return &ValidationError{Field: field, Reason: "exceeds maximum of 999999.99"}
	}
	return nil
}
