/*
query.go - Read-only projections over the ledger store

PURPOSE:
  Dashboard and inventory aggregates. Nothing here mutates state; the HTTP
  layer wraps these calls in the cache.

CONSISTENCY:
  Every multi-number projection runs inside one read snapshot (WithReadTx),
  so counts reported together describe the same instant of the store - the
  total-products figure and the low-stock figure in one response can never
  disagree about a product created in between.

SEE ALSO:
  - store.go: AggregateStore primitives
  - api/handlers.go: Cache-wrapped call sites
*/
package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PROJECTION ROWS
// =============================================================================

// DashboardOverview is the headline dashboard card.
type DashboardOverview struct {
	TotalClients  int
	TotalProducts int
	TotalSales    decimal.Decimal
	LowStockItems int
}

// InventoryOverview summarizes the stock position.
type InventoryOverview struct {
	TotalProducts  int
	LowStock       int
	OutOfStock     int
	InventoryValue decimal.Decimal
}

// StockBreakdown classifies products by stock level relative to their alert
// threshold. A product sitting exactly at its threshold counts in neither
// InStock nor LowStock.
type StockBreakdown struct {
	InStock    int
	LowStock   int
	OutOfStock int
}

// LowStockProduct is one row of the low-stock listing.
type LowStockProduct struct {
	Name           string
	Category       string
	Stock          int
	AlertThreshold int
	Price          decimal.Decimal
}

// SaleSummary is one row of sale listings (client name joined in).
type SaleSummary struct {
	ID         int64
	Client     string
	Date       time.Time
	Total      decimal.Decimal
	ItemsCount int
}

// SalesPoint is one bar of the sales-overview graph.
type SalesPoint struct {
	Date  time.Time
	Total decimal.Decimal
}

// =============================================================================
// QUERIES
// =============================================================================

// Queries computes read projections from a Store.
type Queries struct {
	store Store
}

// NewQueries creates the query layer over the given store.
func NewQueries(store Store) *Queries {
	return &Queries{store: store}
}

// DashboardOverview returns client/product/sales/low-stock headline figures
// from a single snapshot.
func (q *Queries) DashboardOverview(ctx context.Context) (*DashboardOverview, error) {
	var out DashboardOverview
	err := q.store.WithReadTx(ctx, func(tx Store) error {
		var err error
		if out.TotalClients, err = tx.CountClients(ctx); err != nil {
			return err
		}
		if out.TotalProducts, err = tx.CountProducts(ctx); err != nil {
			return err
		}
		if out.TotalSales, err = tx.SumSalesTotal(ctx); err != nil {
			return err
		}
		out.LowStockItems, err = tx.CountLowStock(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// InventoryOverview returns stock counts and total inventory value from a
// single snapshot.
func (q *Queries) InventoryOverview(ctx context.Context) (*InventoryOverview, error) {
	var out InventoryOverview
	err := q.store.WithReadTx(ctx, func(tx Store) error {
		var err error
		if out.TotalProducts, err = tx.CountProducts(ctx); err != nil {
			return err
		}
		breakdown, err := tx.StockBreakdown(ctx)
		if err != nil {
			return err
		}
		out.LowStock = breakdown.LowStock
		out.OutOfStock = breakdown.OutOfStock
		out.InventoryValue, err = tx.InventoryValue(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// InventoryDistribution classifies every product as in/low/out of stock.
func (q *Queries) InventoryDistribution(ctx context.Context) (*StockBreakdown, error) {
	breakdown, err := q.store.StockBreakdown(ctx)
	if err != nil {
		return nil, err
	}
	return &breakdown, nil
}

// LowStock lists the products furthest below their alert threshold.
func (q *Queries) LowStock(ctx context.Context, limit int) ([]LowStockProduct, error) {
	return q.store.LowStockProducts(ctx, limit)
}

// RecentSales lists the most recent sales, newest first.
func (q *Queries) RecentSales(ctx context.Context, limit int) ([]SaleSummary, error) {
	return q.store.RecentSales(ctx, limit)
}

// SalesOverview returns the last limit sale totals in chronological order,
// ready for bar-graph rendering.
func (q *Queries) SalesOverview(ctx context.Context, limit int) ([]SalesPoint, error) {
	recent, err := q.store.RecentSales(ctx, limit)
	if err != nil {
		return nil, err
	}
	points := make([]SalesPoint, len(recent))
	for i, s := range recent {
		// recent is newest-first; reverse into chronological order
		points[len(recent)-1-i] = SalesPoint{Date: s.Date, Total: s.Total}
	}
	return points, nil
}
