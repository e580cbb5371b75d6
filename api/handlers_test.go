package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/inventory-engine/api"
	"github.com/warp/inventory-engine/cache"
	"github.com/warp/inventory-engine/inventory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestServer(t *testing.T) (http.Handler, *inventory.Memory) {
	t.Helper()
	store := inventory.NewMemory()
	c := cache.NewMemory("stock", time.Minute)
	handler := api.NewHandler(store, c, "stock")
	return api.NewRouter(handler), store
}

func do(t *testing.T, router http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), "body: %s", rec.Body.String())
	return v
}

func seedCatalog(t *testing.T, router http.Handler) (productID int64) {
	t.Helper()

	rec := do(t, router, http.MethodPost, "/api/categories", api.CategoryRequest{Name: "Electronics"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	category := decode[api.CategoryDTO](t, rec)

	rec = do(t, router, http.MethodPost, "/api/products", api.ProductRequest{
		Name:           "Widget",
		Price:          decimal.RequireFromString("5.00"),
		Stock:          10,
		AlertThreshold: 3,
		CategoryID:     category.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	product := decode[api.ProductDTO](t, rec)

	rec = do(t, router, http.MethodPost, "/api/clients", api.ClientRequest{
		Name:    "Alice Martin",
		Email:   "alice@example.com",
		Phone:   "0611111111",
		Address: "12 Rue de la Paix",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	return product.ID
}

// =============================================================================
// TRANSACTION ENDPOINTS
// =============================================================================

func TestPostSale_Committed(t *testing.T) {
	router, _ := newTestServer(t)
	productID := seedCatalog(t, router)

	rec := do(t, router, http.MethodPost, "/api/sales", api.CreateSaleRequest{
		Client: "alice@example.com",
		Items:  []api.SaleLineDTO{{ProductID: productID, Quantity: 6}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	receipt := decode[api.SaleReceiptDTO](t, rec)
	assert.True(t, receipt.Total.Equal(decimal.RequireFromString("30.00")))
	assert.Equal(t, 6, receipt.ItemsCount)

	// Stock observable through the product endpoint
	rec = do(t, router, http.MethodGet, productPath(productID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	product := decode[api.ProductDTO](t, rec)
	assert.Equal(t, 4, product.Stock)
}

func TestPostSale_InsufficientStock_400(t *testing.T) {
	router, _ := newTestServer(t)
	productID := seedCatalog(t, router)

	rec := do(t, router, http.MethodPost, "/api/sales", api.CreateSaleRequest{
		Client: "Alice Martin",
		Items:  []api.SaleLineDTO{{ProductID: productID, Quantity: 11}},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decode[api.ErrorResponse](t, rec)
	assert.Contains(t, resp.Details, "Widget", "error names the offending product")

	// Nothing persisted
	rec = do(t, router, http.MethodGet, productPath(productID), nil)
	product := decode[api.ProductDTO](t, rec)
	assert.Equal(t, 10, product.Stock)
}

func TestPostSale_UnknownClient_404(t *testing.T) {
	router, _ := newTestServer(t)
	productID := seedCatalog(t, router)

	rec := do(t, router, http.MethodPost, "/api/sales", api.CreateSaleRequest{
		Client: "nobody@example.com",
		Items:  []api.SaleLineDTO{{ProductID: productID, Quantity: 1}},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPostSale_DuplicateIdempotencyKey_409(t *testing.T) {
	router, _ := newTestServer(t)
	productID := seedCatalog(t, router)

	req := api.CreateSaleRequest{
		Client:         "Alice Martin",
		Items:          []api.SaleLineDTO{{ProductID: productID, Quantity: 2}},
		IdempotencyKey: "sale-key-1",
	}

	rec := do(t, router, http.MethodPost, "/api/sales", req)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/sales", req)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, router, http.MethodGet, productPath(productID), nil)
	product := decode[api.ProductDTO](t, rec)
	assert.Equal(t, 8, product.Stock, "replay must not double-apply")
}

func TestPostSale_EmptyItems_400(t *testing.T) {
	router, _ := newTestServer(t)
	seedCatalog(t, router)

	rec := do(t, router, http.MethodPost, "/api/sales", api.CreateSaleRequest{Client: "Alice Martin"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode[api.ErrorResponse](t, rec)
	assert.Contains(t, resp.Details, "items")
}

func TestPostPurchase_ThenSale(t *testing.T) {
	router, _ := newTestServer(t)
	productID := seedCatalog(t, router)

	rec := do(t, router, http.MethodPost, "/api/purchases", api.CreatePurchaseRequest{
		Supplier: "TechSupply",
		Items: []api.PurchaseLineDTO{
			{ProductID: productID, Quantity: 20, UnitPrice: decimal.RequireFromString("3.00")},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	receipt := decode[api.PurchaseReceiptDTO](t, rec)
	assert.True(t, receipt.Total.Equal(decimal.RequireFromString("60.00")))

	rec = do(t, router, http.MethodGet, productPath(productID), nil)
	product := decode[api.ProductDTO](t, rec)
	assert.Equal(t, 30, product.Stock)
}

func TestGetSale_Detail(t *testing.T) {
	router, _ := newTestServer(t)
	productID := seedCatalog(t, router)

	rec := do(t, router, http.MethodPost, "/api/sales", api.CreateSaleRequest{
		Client: "Alice Martin",
		Items:  []api.SaleLineDTO{{ProductID: productID, Quantity: 3}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	receipt := decode[api.SaleReceiptDTO](t, rec)

	rec = do(t, router, http.MethodGet, "/api/sales/"+itoa(receipt.SaleID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[api.SaleDetailDTO](t, rec)
	require.Len(t, detail.Items, 1)
	assert.True(t, detail.Items[0].Price.Equal(decimal.RequireFromString("5.00")))
	assert.Equal(t, 3, detail.Items[0].Quantity)
}

// =============================================================================
// CACHED DASHBOARD ENDPOINTS
// =============================================================================

func TestDashboardOverview_CachedWithinTTL(t *testing.T) {
	// GIVEN: A cached overview
	// WHEN: A sale commits and the overview is requested again within the TTL
	// THEN: The stale snapshot is served; clearing the cache reveals the sale

	router, _ := newTestServer(t)
	productID := seedCatalog(t, router)

	rec := do(t, router, http.MethodGet, "/api/dashboard/overview", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	before := decode[api.DashboardOverviewDTO](t, rec)
	assert.True(t, before.TotalSales.Equal(decimal.Zero))

	rec = do(t, router, http.MethodPost, "/api/sales", api.CreateSaleRequest{
		Client: "Alice Martin",
		Items:  []api.SaleLineDTO{{ProductID: productID, Quantity: 2}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/dashboard/overview", nil)
	stale := decode[api.DashboardOverviewDTO](t, rec)
	assert.True(t, stale.TotalSales.Equal(decimal.Zero), "within the window, staleness is the contract")

	rec = do(t, router, http.MethodPost, "/api/cache/clear", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/dashboard/overview", nil)
	fresh := decode[api.DashboardOverviewDTO](t, rec)
	assert.True(t, fresh.TotalSales.Equal(decimal.RequireFromString("10.00")))
}

func TestCachedViews_SegmentedByActor(t *testing.T) {
	router, _ := newTestServer(t)
	productID := seedCatalog(t, router)

	// Alice warms her cache entry
	rec := do(t, router, http.MethodGet, "/api/dashboard/overview", nil, "X-Actor", "alice")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/sales", api.CreateSaleRequest{
		Client: "Alice Martin",
		Items:  []api.SaleLineDTO{{ProductID: productID, Quantity: 1}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Alice still sees her snapshot; Bob's first read computes fresh
	aliceView := decode[api.DashboardOverviewDTO](t, do(t, router, http.MethodGet, "/api/dashboard/overview", nil, "X-Actor", "alice"))
	bobView := decode[api.DashboardOverviewDTO](t, do(t, router, http.MethodGet, "/api/dashboard/overview", nil, "X-Actor", "bob"))

	assert.True(t, aliceView.TotalSales.Equal(decimal.Zero))
	assert.True(t, bobView.TotalSales.Equal(decimal.RequireFromString("5.00")))
}

func TestInventoryFilter(t *testing.T) {
	router, store := newTestServer(t)
	seedCatalog(t, router)

	// One product out of stock alongside the seeded in-stock Widget
	p := inventory.Product{Name: "Empty", Price: decimal.RequireFromString("1.00"), Stock: 0, AlertThreshold: 2, CategoryID: 1}
	require.NoError(t, store.SaveProduct(context.Background(), &p))

	rec := do(t, router, http.MethodGet, "/api/inventory/filter?type=out", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode[[]api.ProductDTO](t, rec)
	require.Len(t, out, 1)
	assert.Equal(t, "Empty", out[0].Name)

	rec = do(t, router, http.MethodGet, "/api/inventory/filter?type=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCacheInfoAndInvalidate(t *testing.T) {
	router, _ := newTestServer(t)
	seedCatalog(t, router)

	// Warm two actors' entries
	do(t, router, http.MethodGet, "/api/dashboard/overview", nil, "X-Actor", "alice")
	do(t, router, http.MethodGet, "/api/dashboard/overview", nil, "X-Actor", "bob")

	rec := do(t, router, http.MethodGet, "/api/cache/info", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	info := decode[api.CacheInfoDTO](t, rec)
	assert.Equal(t, "memory", info.Backend)
	assert.Equal(t, 2, info.Keys)

	rec = do(t, router, http.MethodPost, "/api/cache/invalidate", api.InvalidateRequest{Prefix: "stock:alice:"})
	require.Equal(t, http.StatusOK, rec.Code)
	op := decode[api.CacheOpDTO](t, rec)
	assert.Equal(t, 1, op.Removed)

	rec = do(t, router, http.MethodPost, "/api/cache/invalidate", api.InvalidateRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// SEED AND CRUD EDGES
// =============================================================================

func TestSeed_PopulatesOnce(t *testing.T) {
	router, _ := newTestServer(t)

	rec := do(t, router, http.MethodPost, "/api/seed", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	result := decode[api.SeedResultDTO](t, rec)
	assert.Equal(t, 5, result.Products)
	assert.Equal(t, 3, result.Clients)

	// Seeded sales are visible
	rec = do(t, router, http.MethodGet, "/api/sales", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sales := decode[[]api.SaleSummaryDTO](t, rec)
	assert.Len(t, sales, 3)

	// Re-seeding collides on unique fields
	rec = do(t, router, http.MethodPost, "/api/seed", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestDeleteClient_CascadesOverHTTP(t *testing.T) {
	router, _ := newTestServer(t)
	productID := seedCatalog(t, router)

	rec := do(t, router, http.MethodPost, "/api/sales", api.CreateSaleRequest{
		Client: "Alice Martin",
		Items:  []api.SaleLineDTO{{ProductID: productID, Quantity: 1}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/clients", nil)
	clients := decode[[]api.ClientDTO](t, rec)
	require.Len(t, clients, 1)

	rec = do(t, router, http.MethodDelete, "/api/clients/"+itoa(clients[0].ID), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/sales", nil)
	sales := decode[[]api.SaleSummaryDTO](t, rec)
	assert.Empty(t, sales)

	rec = do(t, router, http.MethodDelete, "/api/clients/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateProduct_InvalidPayload_400(t *testing.T) {
	router, _ := newTestServer(t)
	seedCatalog(t, router)

	rec := do(t, router, http.MethodPost, "/api/products", api.ProductRequest{
		Name:       "Freebie",
		Price:      decimal.Zero,
		CategoryID: 1,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode[api.ErrorResponse](t, rec)
	assert.Contains(t, resp.Details, "price")
}

// =============================================================================
// HELPERS
// =============================================================================

func productPath(id int64) string {
	return "/api/products/" + itoa(id)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
