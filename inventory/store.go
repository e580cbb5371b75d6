/*
store.go - Persistence interfaces for the ledger store

PURPOSE:
  Defines the boundary between the domain logic and the database. The store
  is the single authoritative record store with transactional write semantics;
  everything the coordinator and the query layer need is expressed here.

TRANSACTIONAL CONTRACT:
  WithTx runs fn against a store view scoped to one write transaction. If fn
  returns an error the transaction is rolled back completely - no partial
  stock decrement, no partial row insert. WithReadTx gives a consistent
  read snapshot so aggregates reported together never exhibit read skew.

STOCK CONTRACT:
  AdjustStock is a conditional update: the stock check and the mutation are
  one atomic operation per product row. It reports applied=false instead of
  driving stock negative. This is what makes two concurrent sales against the
  same product safe - a stale read can never turn into an overdraw.

IMPLEMENTATIONS:
  - store/sqlite: production SQLite store
  - memory.go: in-memory store for tests

SEE ALSO:
  - coordinator.go: The only writer of sales, purchases, and stock
  - query.go: Read projections built on the aggregate methods
*/
package inventory

import (
	"context"

	"github.com/shopspring/decimal"
)

// ProductStore persists products.
type ProductStore interface {
	// SaveProduct inserts (assigning ID) or updates by ID.
	SaveProduct(ctx context.Context, p *Product) error

	// GetProduct returns nil without error when the product doesn't exist.
	GetProduct(ctx context.Context, id int64) (*Product, error)

	ListProducts(ctx context.Context) ([]Product, error)

	// SearchProducts matches name or description, case-insensitive substring.
	SearchProducts(ctx context.Context, query string) ([]Product, error)

	DeleteProduct(ctx context.Context, id int64) error

	// AdjustStock applies stock = stock + delta only if the result stays
	// non-negative, atomically. Returns applied=false when the guard fails
	// (or the product doesn't exist).
	AdjustStock(ctx context.Context, id int64, delta int) (bool, error)
}

// ClientStore persists clients.
type ClientStore interface {
	SaveClient(ctx context.Context, c *Client) error
	GetClient(ctx context.Context, id int64) (*Client, error)
	ListClients(ctx context.Context) ([]Client, error)

	// FindClientsByRef returns every client whose name, email, or phone
	// equals ref exactly. Disambiguation is the caller's policy.
	FindClientsByRef(ctx context.Context, ref string) ([]Client, error)

	// DeleteClientCascade removes the client together with their sales and
	// sale items, children first, inside the surrounding transaction.
	DeleteClientCascade(ctx context.Context, id int64) error
}

// CategoryStore persists categories.
type CategoryStore interface {
	SaveCategory(ctx context.Context, c *Category) error
	ListCategories(ctx context.Context) ([]Category, error)
}

// LedgerStore persists the append-only sale/purchase rows. No update methods
// exist: committed transactions are immutable.
type LedgerStore interface {
	InsertSale(ctx context.Context, s *Sale) error
	InsertSaleItems(ctx context.Context, items []SaleItem) error
	GetSale(ctx context.Context, id int64) (*Sale, error)
	ListSaleItems(ctx context.Context, saleID int64) ([]SaleItem, error)
	ListSales(ctx context.Context, limit int) ([]SaleSummary, error)
	SearchSales(ctx context.Context, query string, limit int) ([]SaleSummary, error)

	InsertPurchase(ctx context.Context, p *Purchase) error
	InsertPurchaseItems(ctx context.Context, items []PurchaseItem) error
	GetPurchase(ctx context.Context, id int64) (*Purchase, error)
	ListPurchases(ctx context.Context, limit int) ([]Purchase, error)
	SearchPurchases(ctx context.Context, query string, limit int) ([]Purchase, error)

	// DeletePurchaseCascade removes the purchase and its items, children
	// first, inside the surrounding transaction. Stock is not compensated.
	DeletePurchaseCascade(ctx context.Context, id int64) error
}

// AggregateStore exposes the primitives the query layer composes into
// dashboard projections. Each call is a single consistent read.
type AggregateStore interface {
	CountClients(ctx context.Context) (int, error)
	CountProducts(ctx context.Context) (int, error)

	// CountLowStock counts products with stock < alert_threshold,
	// including products that are out of stock.
	CountLowStock(ctx context.Context) (int, error)

	SumSalesTotal(ctx context.Context) (decimal.Decimal, error)

	// InventoryValue is sum(stock * price) over all products.
	InventoryValue(ctx context.Context) (decimal.Decimal, error)

	// StockBreakdown classifies products into in stock (> threshold),
	// low stock (0 < stock < threshold), and out of stock (= 0).
	StockBreakdown(ctx context.Context) (StockBreakdown, error)

	LowStockProducts(ctx context.Context, limit int) ([]LowStockProduct, error)
	RecentSales(ctx context.Context, limit int) ([]SaleSummary, error)
}

// Store is the full ledger store.
type Store interface {
	ProductStore
	ClientStore
	CategoryStore
	LedgerStore
	AggregateStore

	// WithTx executes fn within one write transaction. Error = full rollback.
	WithTx(ctx context.Context, fn func(Store) error) error

	// WithReadTx executes fn against one consistent read snapshot.
	WithReadTx(ctx context.Context, fn func(Store) error) error
}
