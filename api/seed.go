/*
seed.go - Demo dataset loader

PURPOSE:
  Populates an empty store with a small shop: categories, products, clients,
  a restocking purchase, and a handful of sales. Sales and purchases go
  through the coordinator, so the seeded ledger obeys the same invariants as
  live traffic.

IDEMPOTENCY:
  Each seeded transaction carries a generated idempotency key. Re-running
  the seed against an already-seeded store fails on the first duplicate
  record (409) without corrupting anything.

SEE ALSO:
  - server.go: POST /api/seed
*/
package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/inventory-engine/inventory"
)

// SeedDemo loads the demo dataset.
// POST /api/seed
func (h *Handler) SeedDemo(w http.ResponseWriter, r *http.Request) {
	result, err := h.seed(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to seed demo data", err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) seed(ctx context.Context) (*SeedResultDTO, error) {
	price := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }

	categories := []inventory.Category{
		{Name: "Electronics"},
		{Name: "Accessories"},
		{Name: "Office"},
	}
	for i := range categories {
		if err := h.Store.SaveCategory(ctx, &categories[i]); err != nil {
			return nil, err
		}
	}

	products := []inventory.Product{
		{Name: "Laptop Pro 15", Price: price("1299.99"), Stock: 12, AlertThreshold: 5, Description: "15-inch workstation laptop", CategoryID: categories[0].ID},
		{Name: "Wireless Mouse", Price: price("24.50"), Stock: 80, AlertThreshold: 20, Description: "2.4GHz wireless mouse", CategoryID: categories[1].ID},
		{Name: "USB-C Dock", Price: price("89.00"), Stock: 3, AlertThreshold: 10, Description: "7-port USB-C docking station", CategoryID: categories[1].ID},
		{Name: "Monitor 27", Price: price("329.00"), Stock: 0, AlertThreshold: 4, Description: "27-inch QHD monitor", CategoryID: categories[0].ID},
		{Name: "Desk Lamp", Price: price("39.90"), Stock: 25, AlertThreshold: 8, Description: "LED desk lamp", CategoryID: categories[2].ID},
	}
	for i := range products {
		if err := h.Store.SaveProduct(ctx, &products[i]); err != nil {
			return nil, err
		}
	}

	clients := []inventory.Client{
		{Name: "Alice Martin", Email: "alice@example.com", Phone: "0612345678", Address: "12 Rue de la Paix, Paris"},
		{Name: "Bob Durand", Email: "bob@example.com", Phone: "0698765432", Address: "8 Avenue Foch, Lyon"},
		{Name: "Carol Petit", Email: "carol@example.com", Phone: "0655512345", Address: "3 Place Bellecour, Lyon"},
	}
	for i := range clients {
		if err := h.Store.SaveClient(ctx, &clients[i]); err != nil {
			return nil, err
		}
	}

	// Restock the monitor through the coordinator, not a direct stock write.
	purchases := []inventory.PurchaseRequest{
		{
			Supplier: "TechSupply SARL",
			Items: []inventory.PurchaseLine{
				{ProductID: products[3].ID, Quantity: 6, UnitPrice: price("240.00")},
				{ProductID: products[2].ID, Quantity: 10, UnitPrice: price("61.00")},
			},
			IdempotencyKey: uuid.NewString(),
		},
	}
	for _, req := range purchases {
		if _, err := h.Coordinator.CreatePurchase(ctx, req); err != nil {
			return nil, err
		}
	}

	sales := []inventory.SaleRequest{
		{
			ClientRef: "alice@example.com",
			Items: []inventory.SaleLine{
				{ProductID: products[0].ID, Quantity: 1},
				{ProductID: products[1].ID, Quantity: 2},
			},
			IdempotencyKey: uuid.NewString(),
		},
		{
			ClientRef: "Bob Durand",
			Items: []inventory.SaleLine{
				{ProductID: products[4].ID, Quantity: 3},
			},
			IdempotencyKey: uuid.NewString(),
		},
		{
			ClientRef: "0655512345",
			Items: []inventory.SaleLine{
				{ProductID: products[3].ID, Quantity: 2},
				{ProductID: products[2].ID, Quantity: 1},
			},
			IdempotencyKey: uuid.NewString(),
		},
	}
	for _, req := range sales {
		if _, err := h.Coordinator.CreateSale(ctx, req); err != nil {
			return nil, err
		}
	}

	return &SeedResultDTO{
		Categories: len(categories),
		Products:   len(products),
		Clients:    len(clients),
		Purchases:  len(purchases),
		Sales:      len(sales),
	}, nil
}
