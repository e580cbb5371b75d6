/*
coordinator.go - The transaction coordinator

PURPOSE:
  Turns a validated multi-line sale or purchase request into an atomic set of
  ledger rows and stock mutations. This is the single writer path for
  Product.stock; HTTP handlers never mutate stock directly.

ATOMICITY:
  Each operation opens exactly one store transaction. Every product involved
  is re-read INSIDE the transaction, and the stock check + decrement is one
  conditional update per product row. If line k of n fails, lines 1..k-1 are
  rolled back with everything else: the caller sees a single failure and the
  store shows no trace of the attempt.

FAILURE TAXONOMY:
  - validation failures: rejected before any store access (validate.go)
  - unknown client/product, ambiguous client: transaction aborted, 404/400
  - insufficient stock: transaction aborted, error names the product
  - store failures: rolled back, retried once if retryable, else surfaced

SEE ALSO:
  - store.go: WithTx and AdjustStock contracts
  - validate.go: Runs before any of this
*/
package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Coordinator applies sale and purchase requests atomically against a Store.
type Coordinator struct {
	store Store
	now   func() time.Time
}

// NewCoordinator creates a coordinator bound to the given store.
func NewCoordinator(store Store) *Coordinator {
	return &Coordinator{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// =============================================================================
// SALES
// =============================================================================

// CreateSale validates req, resolves the client, and commits the sale as one
// atomic unit: sale row, one item row per line with the price captured at
// sale time, and one stock decrement per product.
func (c *Coordinator) CreateSale(ctx context.Context, req SaleRequest) (*SaleReceipt, error) {
	if err := ValidateSaleRequest(req); err != nil {
		return nil, err
	}

	var receipt *SaleReceipt
	op := func() error {
		return c.store.WithTx(ctx, func(tx Store) error {
			client, err := resolveClient(ctx, tx, req.ClientRef)
			if err != nil {
				return err
			}

			total := decimal.Zero
			itemsCount := 0
			items := make([]SaleItem, 0, len(req.Items))

			for _, line := range req.Items {
				product, err := tx.GetProduct(ctx, line.ProductID)
				if err != nil {
					return err
				}
				if product == nil {
					return ErrProductNotFound
				}

				applied, err := tx.AdjustStock(ctx, line.ProductID, -line.Quantity)
				if err != nil {
					return err
				}
				if !applied {
					return &InsufficientStockError{
						ProductID: product.ID,
						Name:      product.Name,
						Available: product.Stock,
						Requested: line.Quantity,
					}
				}

				total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
				itemsCount += line.Quantity
				items = append(items, SaleItem{
					ProductID: product.ID,
					Quantity:  line.Quantity,
					Price:     product.Price,
				})
			}

			sale := &Sale{
				ClientID:       client.ID,
				Date:           c.now(),
				Total:          total,
				ItemsCount:     itemsCount,
				IdempotencyKey: req.IdempotencyKey,
			}
			if err := tx.InsertSale(ctx, sale); err != nil {
				return err
			}
			for i := range items {
				items[i].SaleID = sale.ID
			}
			if err := tx.InsertSaleItems(ctx, items); err != nil {
				return err
			}

			receipt = &SaleReceipt{SaleID: sale.ID, Total: total, ItemsCount: itemsCount}
			return nil
		})
	}

	if err := c.runOnce(op); err != nil {
		return nil, err
	}
	return receipt, nil
}

// =============================================================================
// PURCHASES
// =============================================================================

// CreatePurchase is the stock-increasing counterpart of CreateSale. There is
// no sufficiency check; unit prices are caller-supplied acquisition costs.
// ItemsCount is the number of line items, mirroring the sale side's historical
// asymmetry (sales count units, purchases count lines).
func (c *Coordinator) CreatePurchase(ctx context.Context, req PurchaseRequest) (*PurchaseReceipt, error) {
	if err := ValidatePurchaseRequest(req); err != nil {
		return nil, err
	}

	var receipt *PurchaseReceipt
	op := func() error {
		return c.store.WithTx(ctx, func(tx Store) error {
			total := decimal.Zero
			items := make([]PurchaseItem, 0, len(req.Items))

			for _, line := range req.Items {
				product, err := tx.GetProduct(ctx, line.ProductID)
				if err != nil {
					return err
				}
				if product == nil {
					return ErrProductNotFound
				}

				if _, err := tx.AdjustStock(ctx, line.ProductID, line.Quantity); err != nil {
					return err
				}

				total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
				items = append(items, PurchaseItem{
					ProductID: product.ID,
					Quantity:  line.Quantity,
					UnitPrice: line.UnitPrice,
				})
			}

			purchase := &Purchase{
				Supplier:       req.Supplier,
				Date:           c.now(),
				Total:          total,
				ItemsCount:     len(req.Items),
				IdempotencyKey: req.IdempotencyKey,
			}
			if err := tx.InsertPurchase(ctx, purchase); err != nil {
				return err
			}
			for i := range items {
				items[i].PurchaseID = purchase.ID
			}
			if err := tx.InsertPurchaseItems(ctx, items); err != nil {
				return err
			}

			receipt = &PurchaseReceipt{
				PurchaseID: purchase.ID,
				Total:      total,
				ItemsCount: len(req.Items),
			}
			return nil
		})
	}

	if err := c.runOnce(op); err != nil {
		return nil, err
	}
	return receipt, nil
}

// =============================================================================
// CASCADE DELETION
// =============================================================================

// DeleteClient removes a client and, children first, their sales and sale
// items, in one atomic unit. Stock is not compensated: sold goods left the
// shelf regardless of the bookkeeping.
func (c *Coordinator) DeleteClient(ctx context.Context, id int64) error {
	return c.store.WithTx(ctx, func(tx Store) error {
		client, err := tx.GetClient(ctx, id)
		if err != nil {
			return err
		}
		if client == nil {
			return ErrClientNotFound
		}
		return tx.DeleteClientCascade(ctx, id)
	})
}

// DeletePurchase removes a purchase and its items in one atomic unit.
func (c *Coordinator) DeletePurchase(ctx context.Context, id int64) error {
	return c.store.WithTx(ctx, func(tx Store) error {
		purchase, err := tx.GetPurchase(ctx, id)
		if err != nil {
			return err
		}
		if purchase == nil {
			return ErrPurchaseNotFound
		}
		return tx.DeletePurchaseCascade(ctx, id)
	})
}

// =============================================================================
// INTERNALS
// =============================================================================

// resolveClient requires an exact, unique match on name, email, or phone.
// Zero matches is not found; more than one is ambiguous, never first-row-wins.
func resolveClient(ctx context.Context, tx Store, ref string) (*Client, error) {
	clients, err := tx.FindClientsByRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	switch len(clients) {
	case 0:
		return nil, ErrClientNotFound
	case 1:
		return &clients[0], nil
	default:
		return nil, &AmbiguousClientError{Ref: ref, Matches: len(clients)}
	}
}

// runOnce executes op, retrying a single time on transient store conflicts.
func (c *Coordinator) runOnce(op func() error) error {
	err := op()
	if err != nil && IsRetryable(err) {
		err = op()
	}
	return err
}
