/*
Package inventory contains the core of the stock engine: the domain records,
the validation pipeline, the transaction coordinator, and the read projections.

KEY CONCEPTS IN THIS FILE (types.go):
  - Product: the one mutable aggregate (stock level), guarded by the coordinator
  - Client: sale counterparty, resolved by exact name/email/phone match
  - Sale/SaleItem, Purchase/PurchaseItem: append-only ledger rows
  - SaleRequest/PurchaseRequest: inbound multi-line transaction requests

DESIGN PRINCIPLES:
  1. Append-only ledger: Sale/Purchase rows are created once, never updated
  2. Precision: decimal.Decimal for every price and total, no floats in the domain
  3. Captured prices: a SaleItem records the product price at time of sale, so
     historical totals are immune to later price changes
  4. Single writer path: Product.stock is mutated only through the Coordinator

SEE ALSO:
  - coordinator.go: Atomic application of sale/purchase requests
  - store.go: Persistence interfaces
  - query.go: Read-only projections
*/
package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RECORDS - Rows of the ledger store
// =============================================================================

// Category groups products. Name is unique.
type Category struct {
	ID   int64
	Name string
}

// Product is a stocked item. Stock is never negative; the invariant is enforced
// by the store (conditional update + CHECK constraint), not by callers.
type Product struct {
	ID             int64
	Name           string
	Price          decimal.Decimal
	Stock          int
	AlertThreshold int
	Description    string
	CategoryID     int64
	CreatedAt      time.Time
}

// Client is a sale counterparty. Email and phone are unique.
type Client struct {
	ID        int64
	Name      string
	Email     string
	Phone     string
	Address   string
	CreatedAt time.Time
}

// Sale is the parent row of a committed sale. Total and ItemsCount are derived
// by the coordinator, never user-supplied.
type Sale struct {
	ID             int64
	ClientID       int64
	Date           time.Time
	Total          decimal.Decimal
	ItemsCount     int
	IdempotencyKey string
}

// SaleItem is one line of a sale, with the unit price captured at sale time.
type SaleItem struct {
	ID        int64
	SaleID    int64
	ProductID int64
	Quantity  int
	Price     decimal.Decimal
}

// Purchase is the parent row of a committed purchase (stock intake).
type Purchase struct {
	ID             int64
	Supplier       string
	Date           time.Time
	Total          decimal.Decimal
	ItemsCount     int
	IdempotencyKey string
}

// PurchaseItem is one line of a purchase. UnitPrice is the acquisition cost
// supplied by the caller, not the product's sale price.
type PurchaseItem struct {
	ID         int64
	PurchaseID int64
	ProductID  int64
	Quantity   int
	UnitPrice  decimal.Decimal
}

// =============================================================================
// REQUESTS AND RECEIPTS - Coordinator boundary types
// =============================================================================

// SaleLine is one requested (product, quantity) entry of a sale.
type SaleLine struct {
	ProductID int64
	Quantity  int
}

// SaleRequest is a multi-line sale request. ClientRef is matched exactly
// against client name, email, or phone. IdempotencyKey is optional; when set,
// a replay of a committed request is rejected instead of double-applied.
type SaleRequest struct {
	ClientRef      string
	Items          []SaleLine
	IdempotencyKey string
}

// PurchaseLine is one requested (product, quantity, unit price) entry.
type PurchaseLine struct {
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
}

// PurchaseRequest is a multi-line purchase request.
type PurchaseRequest struct {
	Supplier       string
	Items          []PurchaseLine
	IdempotencyKey string
}

// SaleReceipt is returned for a committed sale.
type SaleReceipt struct {
	SaleID     int64
	Total      decimal.Decimal
	ItemsCount int
}

// PurchaseReceipt is returned for a committed purchase.
type PurchaseReceipt struct {
	PurchaseID int64
	Total      decimal.Decimal
	ItemsCount int
}
