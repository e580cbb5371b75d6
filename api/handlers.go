/*
handlers.go - HTTP API handlers for the inventory engine

PURPOSE:
  Exposes the inventory engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

REQUEST FLOW:
  1. Parse HTTP request
  2. Call domain logic (coordinator, queries, store)
  3. Serialize response
  4. Map domain errors to HTTP statuses

CACHING:
  Dashboard and inventory read endpoints go through the read-through cache
  with per-route TTLs. The cache key carries the caller's X-Actor header
  (default "anonymous"), so parameterized views never leak between actors.
  Writes do not invalidate; staleness is bounded by the TTLs.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation failures, ambiguous client, insufficient stock
  - 404: Unknown client/product/sale/purchase
  - 409: Duplicate idempotency key, unique-field collision
  - 500: Internal errors (generic message; detail stays in the server log)

SECURITY NOTE:
  Authentication is an external collaborator; all endpoints are public here.

SEE ALSO:
  - dto.go: Request/response data structures
  - seed.go: Demo dataset loader
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/warp/inventory-engine/cache"
	"github.com/warp/inventory-engine/inventory"
)

const timeFormat = time.RFC3339

// Per-route cache TTLs. Staleness of each view is bounded by its window.
const (
	ttlDashboardOverview = 60 * time.Second
	ttlSalesOverview     = 120 * time.Second
	ttlDistribution      = 60 * time.Second
	ttlRecentSales       = 30 * time.Second
	ttlLowStock          = 60 * time.Second
	ttlInventory         = 60 * time.Second
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store       inventory.Store
	Coordinator *inventory.Coordinator
	Queries     *inventory.Queries
	Cache       cache.Cache

	keyPrefix string
}

// NewHandler wires the handler over the given store and cache.
func NewHandler(store inventory.Store, c cache.Cache, keyPrefix string) *Handler {
	return &Handler{
		Store:       store,
		Coordinator: inventory.NewCoordinator(store),
		Queries:     inventory.NewQueries(store),
		Cache:       c,
		keyPrefix:   keyPrefix,
	}
}

// =============================================================================
// SALE HANDLERS
// =============================================================================

// CreateSale commits a multi-line sale atomically.
// POST /api/sales
func (h *Handler) CreateSale(w http.ResponseWriter, r *http.Request) {
	var req CreateSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	lines := make([]inventory.SaleLine, len(req.Items))
	for i, it := range req.Items {
		lines[i] = inventory.SaleLine{ProductID: it.ProductID, Quantity: it.Quantity}
	}

	receipt, err := h.Coordinator.CreateSale(r.Context(), inventory.SaleRequest{
		ClientRef:      req.Client,
		Items:          lines,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		h.writeDomainError(w, "Failed to create sale", err)
		return
	}

	writeJSON(w, http.StatusCreated, SaleReceiptDTO{
		SaleID:     receipt.SaleID,
		Total:      receipt.Total,
		ItemsCount: receipt.ItemsCount,
	})
}

// ListSales returns the most recent sales, newest first.
// GET /api/sales?limit=
func (h *Handler) ListSales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.Store.ListSales(r.Context(), parseLimit(r, 50))
	if err != nil {
		h.writeDomainError(w, "Failed to list sales", err)
		return
	}
	writeJSON(w, http.StatusOK, toSaleSummaryDTOs(sales))
}

// SearchSales matches sale ID, client name, or client email.
// GET /api/sales/search?q=
func (h *Handler) SearchSales(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "Missing query parameter q", nil)
		return
	}
	sales, err := h.Store.SearchSales(r.Context(), q, parseLimit(r, 50))
	if err != nil {
		h.writeDomainError(w, "Failed to search sales", err)
		return
	}
	writeJSON(w, http.StatusOK, toSaleSummaryDTOs(sales))
}

// GetSale returns one sale with its line items.
// GET /api/sales/{id}
func (h *Handler) GetSale(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	sale, err := h.Store.GetSale(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to get sale", err)
		return
	}
	if sale == nil {
		writeError(w, http.StatusNotFound, "Sale not found", nil)
		return
	}
	items, err := h.Store.ListSaleItems(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to get sale items", err)
		return
	}

	detail := SaleDetailDTO{
		ID:         sale.ID,
		ClientID:   sale.ClientID,
		Date:       sale.Date.Format(timeFormat),
		Total:      sale.Total,
		ItemsCount: sale.ItemsCount,
		Items:      make([]SaleItemDTO, len(items)),
	}
	for i, it := range items {
		detail.Items[i] = SaleItemDTO{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price}
	}
	writeJSON(w, http.StatusOK, detail)
}

// =============================================================================
// PURCHASE HANDLERS
// =============================================================================

// CreatePurchase commits a multi-line stock intake atomically.
// POST /api/purchases
func (h *Handler) CreatePurchase(w http.ResponseWriter, r *http.Request) {
	var req CreatePurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	lines := make([]inventory.PurchaseLine, len(req.Items))
	for i, it := range req.Items {
		lines[i] = inventory.PurchaseLine{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		}
	}

	receipt, err := h.Coordinator.CreatePurchase(r.Context(), inventory.PurchaseRequest{
		Supplier:       req.Supplier,
		Items:          lines,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		h.writeDomainError(w, "Failed to create purchase", err)
		return
	}

	writeJSON(w, http.StatusCreated, PurchaseReceiptDTO{
		PurchaseID: receipt.PurchaseID,
		Total:      receipt.Total,
		ItemsCount: receipt.ItemsCount,
	})
}

// ListPurchases returns the most recent purchases, newest first.
// GET /api/purchases?limit=
func (h *Handler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	purchases, err := h.Store.ListPurchases(r.Context(), parseLimit(r, 50))
	if err != nil {
		h.writeDomainError(w, "Failed to list purchases", err)
		return
	}
	writeJSON(w, http.StatusOK, toPurchaseDTOs(purchases))
}

// SearchPurchases matches supplier or date.
// GET /api/purchases/search?q=
func (h *Handler) SearchPurchases(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "Missing query parameter q", nil)
		return
	}
	purchases, err := h.Store.SearchPurchases(r.Context(), q, parseLimit(r, 50))
	if err != nil {
		h.writeDomainError(w, "Failed to search purchases", err)
		return
	}
	writeJSON(w, http.StatusOK, toPurchaseDTOs(purchases))
}

// DeletePurchase removes a purchase and its items. Stock already received is
// not clawed back.
// DELETE /api/purchases/{id}
func (h *Handler) DeletePurchase(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.Coordinator.DeletePurchase(r.Context(), id); err != nil {
		h.writeDomainError(w, "Failed to delete purchase", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// PRODUCT HANDLERS
// =============================================================================

// ListProducts returns all products.
// GET /api/products
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Store.ListProducts(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to list products", err)
		return
	}
	writeJSON(w, http.StatusOK, toProductDTOs(products))
}

// SearchProducts matches name or description.
// GET /api/products/search?q=
func (h *Handler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "Missing query parameter q", nil)
		return
	}
	products, err := h.Store.SearchProducts(r.Context(), q)
	if err != nil {
		h.writeDomainError(w, "Failed to search products", err)
		return
	}
	writeJSON(w, http.StatusOK, toProductDTOs(products))
}

// GetProduct returns one product.
// GET /api/products/{id}
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	product, err := h.Store.GetProduct(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to get product", err)
		return
	}
	if product == nil {
		writeError(w, http.StatusNotFound, "Product not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toProductDTO(*product))
}

// CreateProduct creates a product with an initial stock level.
// POST /api/products
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	product := inventory.Product{
		Name:           req.Name,
		Price:          req.Price,
		Stock:          req.Stock,
		AlertThreshold: req.AlertThreshold,
		Description:    req.Description,
		CategoryID:     req.CategoryID,
	}
	if err := inventory.ValidateProduct(product); err != nil {
		h.writeDomainError(w, "Invalid product", err)
		return
	}
	if err := h.Store.SaveProduct(r.Context(), &product); err != nil {
		h.writeDomainError(w, "Failed to create product", err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductDTO(product))
}

// UpdateProduct replaces a product's attributes. The stock field is ignored
// here: stock moves only through sales and purchases.
// PUT /api/products/{id}
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	existing, err := h.Store.GetProduct(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to get product", err)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Product not found", nil)
		return
	}

	existing.Name = req.Name
	existing.Price = req.Price
	existing.AlertThreshold = req.AlertThreshold
	existing.Description = req.Description
	existing.CategoryID = req.CategoryID

	if err := inventory.ValidateProduct(*existing); err != nil {
		h.writeDomainError(w, "Invalid product", err)
		return
	}
	if err := h.Store.SaveProduct(r.Context(), existing); err != nil {
		h.writeDomainError(w, "Failed to update product", err)
		return
	}
	writeJSON(w, http.StatusOK, toProductDTO(*existing))
}

// DeleteProduct removes a product.
// DELETE /api/products/{id}
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	product, err := h.Store.GetProduct(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to get product", err)
		return
	}
	if product == nil {
		writeError(w, http.StatusNotFound, "Product not found", nil)
		return
	}
	if err := h.Store.DeleteProduct(r.Context(), id); err != nil {
		h.writeDomainError(w, "Failed to delete product", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// CLIENT HANDLERS
// =============================================================================

// ListClients returns all clients.
// GET /api/clients
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.Store.ListClients(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to list clients", err)
		return
	}
	writeJSON(w, http.StatusOK, toClientDTOs(clients))
}

// GetClient returns one client.
// GET /api/clients/{id}
func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	client, err := h.Store.GetClient(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to get client", err)
		return
	}
	if client == nil {
		writeError(w, http.StatusNotFound, "Client not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toClientDTO(*client))
}

// CreateClient creates a client.
// POST /api/clients
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req ClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	client := inventory.Client{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	}
	if err := inventory.ValidateClient(client); err != nil {
		h.writeDomainError(w, "Invalid client", err)
		return
	}
	if err := h.Store.SaveClient(r.Context(), &client); err != nil {
		h.writeDomainError(w, "Failed to create client", err)
		return
	}
	writeJSON(w, http.StatusCreated, toClientDTO(client))
}

// UpdateClient replaces a client's attributes.
// PUT /api/clients/{id}
func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req ClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	existing, err := h.Store.GetClient(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to get client", err)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Client not found", nil)
		return
	}

	existing.Name = req.Name
	existing.Email = req.Email
	existing.Phone = req.Phone
	existing.Address = req.Address

	if err := inventory.ValidateClient(*existing); err != nil {
		h.writeDomainError(w, "Invalid client", err)
		return
	}
	if err := h.Store.SaveClient(r.Context(), existing); err != nil {
		h.writeDomainError(w, "Failed to update client", err)
		return
	}
	writeJSON(w, http.StatusOK, toClientDTO(*existing))
}

// DeleteClient removes a client together with their sales and sale items.
// DELETE /api/clients/{id}
func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.Coordinator.DeleteClient(r.Context(), id); err != nil {
		h.writeDomainError(w, "Failed to delete client", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// CATEGORY HANDLERS
// =============================================================================

// ListCategories returns all categories.
// GET /api/categories
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Store.ListCategories(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to list categories", err)
		return
	}
	dtos := make([]CategoryDTO, len(categories))
	for i, c := range categories {
		dtos[i] = CategoryDTO{ID: c.ID, Name: c.Name}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateCategory creates a category.
// POST /api/categories
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	category := inventory.Category{Name: req.Name}
	if err := inventory.ValidateCategory(category); err != nil {
		h.writeDomainError(w, "Invalid category", err)
		return
	}
	if err := h.Store.SaveCategory(r.Context(), &category); err != nil {
		h.writeDomainError(w, "Failed to create category", err)
		return
	}
	writeJSON(w, http.StatusCreated, CategoryDTO{ID: category.ID, Name: category.Name})
}

// =============================================================================
// DASHBOARD HANDLERS (cached)
// =============================================================================

// DashboardOverview returns headline figures from one snapshot.
// GET /api/dashboard/overview
func (h *Handler) DashboardOverview(w http.ResponseWriter, r *http.Request) {
	h.cached(w, r, ttlDashboardOverview, func(ctx context.Context) (any, error) {
		o, err := h.Queries.DashboardOverview(ctx)
		if err != nil {
			return nil, err
		}
		return DashboardOverviewDTO{
			TotalClients:  o.TotalClients,
			TotalProducts: o.TotalProducts,
			TotalSales:    o.TotalSales,
			LowStockItems: o.LowStockItems,
		}, nil
	})
}

// SalesOverview returns recent sale totals in chronological order.
// GET /api/dashboard/sales-overview?limit=
func (h *Handler) SalesOverview(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 7)
	h.cached(w, r, ttlSalesOverview, func(ctx context.Context) (any, error) {
		points, err := h.Queries.SalesOverview(ctx, limit)
		if err != nil {
			return nil, err
		}
		dtos := make([]SalesPointDTO, len(points))
		for i, p := range points {
			dtos[i] = SalesPointDTO{Date: p.Date.Format(timeFormat), Total: p.Total}
		}
		return dtos, nil
	})
}

// InventoryDistribution classifies every product as in/low/out of stock.
// GET /api/dashboard/inventory-distribution
func (h *Handler) InventoryDistribution(w http.ResponseWriter, r *http.Request) {
	h.cached(w, r, ttlDistribution, func(ctx context.Context) (any, error) {
		b, err := h.Queries.InventoryDistribution(ctx)
		if err != nil {
			return nil, err
		}
		return DistributionDTO{InStock: b.InStock, LowStock: b.LowStock, OutOfStock: b.OutOfStock}, nil
	})
}

// RecentSales lists the most recent sales, newest first.
// GET /api/dashboard/recent-sales?limit=
func (h *Handler) RecentSales(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 5)
	h.cached(w, r, ttlRecentSales, func(ctx context.Context) (any, error) {
		sales, err := h.Queries.RecentSales(ctx, limit)
		if err != nil {
			return nil, err
		}
		return toSaleSummaryDTOs(sales), nil
	})
}

// LowStock lists the products furthest below their alert threshold.
// GET /api/dashboard/low-stock?limit=
func (h *Handler) LowStock(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 5)
	h.cached(w, r, ttlLowStock, func(ctx context.Context) (any, error) {
		products, err := h.Queries.LowStock(ctx, limit)
		if err != nil {
			return nil, err
		}
		dtos := make([]LowStockProductDTO, len(products))
		for i, p := range products {
			dtos[i] = LowStockProductDTO{
				Name:           p.Name,
				Category:       p.Category,
				Stock:          p.Stock,
				AlertThreshold: p.AlertThreshold,
				Price:          p.Price,
			}
		}
		return dtos, nil
	})
}

// InventoryOverview returns stock counts and total inventory value.
// GET /api/inventory/overview
func (h *Handler) InventoryOverview(w http.ResponseWriter, r *http.Request) {
	h.cached(w, r, ttlInventory, func(ctx context.Context) (any, error) {
		o, err := h.Queries.InventoryOverview(ctx)
		if err != nil {
			return nil, err
		}
		return InventoryOverviewDTO{
			TotalProducts:  o.TotalProducts,
			LowStock:       o.LowStock,
			OutOfStock:     o.OutOfStock,
			InventoryValue: o.InventoryValue,
		}, nil
	})
}

// FilterInventory lists products filtered by stock condition.
// GET /api/inventory/filter?type=all|low|out
func (h *Handler) FilterInventory(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("type")
	switch filter {
	case "", "all", "low", "out":
	default:
		writeError(w, http.StatusBadRequest, "Invalid filter type (want all, low, or out)", nil)
		return
	}

	h.cached(w, r, ttlInventory, func(ctx context.Context) (any, error) {
		products, err := h.Store.ListProducts(ctx)
		if err != nil {
			return nil, err
		}
		var filtered []inventory.Product
		for _, p := range products {
			switch filter {
			case "low":
				if p.Stock > 0 && p.Stock < p.AlertThreshold {
					filtered = append(filtered, p)
				}
			case "out":
				if p.Stock == 0 {
					filtered = append(filtered, p)
				}
			default:
				filtered = append(filtered, p)
			}
		}
		return toProductDTOs(filtered), nil
	})
}

// =============================================================================
// CACHE ADMIN HANDLERS
// =============================================================================

// ClearCache drops every cache entry.
// POST /api/cache/clear
func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	removed, err := h.Cache.Clear(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to clear cache", err)
		return
	}
	writeJSON(w, http.StatusOK, CacheOpDTO{Removed: removed})
}

// InvalidateCache drops cache entries by key prefix.
// POST /api/cache/invalidate
func (h *Handler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	var req InvalidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Prefix == "" {
		writeError(w, http.StatusBadRequest, "Missing prefix", nil)
		return
	}
	removed, err := h.Cache.Invalidate(r.Context(), req.Prefix)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to invalidate cache", err)
		return
	}
	writeJSON(w, http.StatusOK, CacheOpDTO{Removed: removed})
}

// CacheInfo reports backend identity and entry count.
// GET /api/cache/info
func (h *Handler) CacheInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.Cache.Info(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read cache info", err)
		return
	}
	writeJSON(w, http.StatusOK, CacheInfoDTO{
		Backend:    info.Backend,
		Keys:       info.Keys,
		KeyPrefix:  info.KeyPrefix,
		DefaultTTL: info.DefaultTTL.String(),
	})
}

// =============================================================================
// HELPERS
// =============================================================================

// cached serves the response for r through the read-through cache, keyed by
// actor, path, and query string.
func (h *Handler) cached(w http.ResponseWriter, r *http.Request, ttl time.Duration, compute func(context.Context) (any, error)) {
	actor := r.Header.Get("X-Actor")
	if actor == "" {
		actor = "anonymous"
	}
	key := cache.Key(h.keyPrefix, actor, r.URL.Path, r.URL.RawQuery)

	data, err := h.Cache.GetOrCompute(r.Context(), key, ttl, func(ctx context.Context) ([]byte, error) {
		v, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		h.writeDomainError(w, "Failed to compute view", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// writeDomainError maps the domain error taxonomy onto HTTP statuses.
// Internal errors keep their detail out of the response body.
func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case inventory.IsValidation(err):
		writeError(w, http.StatusBadRequest, message, err)
	case inventory.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, inventory.ErrDuplicateIdempotencyKey),
		errors.Is(err, inventory.ErrDuplicateRecord):
		writeError(w, http.StatusConflict, message, err)
	case inventory.IsConflict(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		log.Printf("internal error: %s: %v", message, err)
		writeError(w, http.StatusInternalServerError, message, nil)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid id", err)
		return 0, false
	}
	return id, true
}

func parseLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	return limit
}

func toProductDTOs(products []inventory.Product) []ProductDTO {
	dtos := make([]ProductDTO, len(products))
	for i, p := range products {
		dtos[i] = toProductDTO(p)
	}
	return dtos
}

func toClientDTOs(clients []inventory.Client) []ClientDTO {
	dtos := make([]ClientDTO, len(clients))
	for i, c := range clients {
		dtos[i] = toClientDTO(c)
	}
	return dtos
}

func toSaleSummaryDTOs(sales []inventory.SaleSummary) []SaleSummaryDTO {
	dtos := make([]SaleSummaryDTO, len(sales))
	for i, s := range sales {
		dtos[i] = toSaleSummaryDTO(s)
	}
	return dtos
}

func toPurchaseDTOs(purchases []inventory.Purchase) []PurchaseDTO {
	dtos := make([]PurchaseDTO, len(purchases))
	for i, p := range purchases {
		dtos[i] = toPurchaseDTO(p)
	}
	return dtos
}
