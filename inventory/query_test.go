package inventory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/inventory-engine/inventory"
)

func seedShop(t *testing.T, store *inventory.Memory) *inventory.Coordinator {
	t.Helper()
	ctx := context.Background()
	coord := inventory.NewCoordinator(store)

	category := inventory.Category{Name: "Electronics"}
	require.NoError(t, store.SaveCategory(ctx, &category))

	// Thresholds chosen to hit every breakdown bucket, including the
	// stock == threshold boundary.
	products := []inventory.Product{
		{Name: "Laptop", Price: decimal.RequireFromString("1000.00"), Stock: 10, AlertThreshold: 5, CategoryID: category.ID},
		{Name: "Dock", Price: decimal.RequireFromString("89.00"), Stock: 2, AlertThreshold: 10, CategoryID: category.ID},
		{Name: "Monitor", Price: decimal.RequireFromString("300.00"), Stock: 0, AlertThreshold: 4, CategoryID: category.ID},
		{Name: "Cable", Price: decimal.RequireFromString("9.00"), Stock: 5, AlertThreshold: 5, CategoryID: category.ID},
	}
	for i := range products {
		require.NoError(t, store.SaveProduct(ctx, &products[i]))
	}

	clients := []inventory.Client{
		{Name: "Alice", Email: "alice@example.com", Phone: "0611111111", Address: "1 A St"},
		{Name: "Bob", Email: "bob@example.com", Phone: "0622222222", Address: "2 B St"},
	}
	for i := range clients {
		require.NoError(t, store.SaveClient(ctx, &clients[i]))
	}

	return coord
}

func TestDashboardOverview(t *testing.T) {
	// GIVEN: 4 products (2 below threshold), 2 clients, one committed sale
	// WHEN: Computing the dashboard overview
	// THEN: Counts and the sales sum line up

	store := inventory.NewMemory()
	coord := seedShop(t, store)
	queries := inventory.NewQueries(store)
	ctx := context.Background()

	_, err := coord.CreateSale(ctx, inventory.SaleRequest{
		ClientRef: "Alice",
		Items:     []inventory.SaleLine{{ProductID: 1, Quantity: 2}},
	})
	require.NoError(t, err)

	overview, err := queries.DashboardOverview(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, overview.TotalClients)
	assert.Equal(t, 4, overview.TotalProducts)
	assert.True(t, overview.TotalSales.Equal(decimal.RequireFromString("2000.00")))
	// Dock (2 < 10) and Monitor (0 < 4). Cable sits exactly at its
	// threshold and does not count as low.
	assert.Equal(t, 2, overview.LowStockItems)
}

func TestInventoryOverview(t *testing.T) {
	store := inventory.NewMemory()
	seedShop(t, store)
	queries := inventory.NewQueries(store)

	overview, err := queries.InventoryOverview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, overview.TotalProducts)
	assert.Equal(t, 1, overview.LowStock, "only Dock has 0 < stock < threshold")
	assert.Equal(t, 1, overview.OutOfStock)
	// 10*1000 + 2*89 + 0*300 + 5*9 = 10223
	assert.True(t, overview.InventoryValue.Equal(decimal.RequireFromString("10223.00")),
		"inventory value was %s", overview.InventoryValue)
}

func TestInventoryDistribution_ThresholdBoundary(t *testing.T) {
	// A product sitting exactly at its alert threshold belongs to no bucket
	store := inventory.NewMemory()
	seedShop(t, store)
	queries := inventory.NewQueries(store)

	b, err := queries.InventoryDistribution(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, b.InStock, "Laptop (10 > 5)")
	assert.Equal(t, 1, b.LowStock, "Dock (0 < 2 < 10)")
	assert.Equal(t, 1, b.OutOfStock, "Monitor (0)")
	assert.Equal(t, 3, b.InStock+b.LowStock+b.OutOfStock, "Cable (5 = 5) counts nowhere")
}

func TestLowStock_OrderedByScarcity(t *testing.T) {
	store := inventory.NewMemory()
	seedShop(t, store)
	queries := inventory.NewQueries(store)

	products, err := queries.LowStock(context.Background(), 10)
	require.NoError(t, err)

	require.Len(t, products, 2)
	assert.Equal(t, "Monitor", products[0].Name, "emptiest shelf first")
	assert.Equal(t, "Dock", products[1].Name)
	assert.Equal(t, "Electronics", products[0].Category)
}

func TestRecentSales_NewestFirst_SalesOverview_Chronological(t *testing.T) {
	store := inventory.NewMemory()
	coord := seedShop(t, store)
	queries := inventory.NewQueries(store)
	ctx := context.Background()

	for _, qty := range []int{1, 2, 3} {
		_, err := coord.CreateSale(ctx, inventory.SaleRequest{
			ClientRef: "Bob",
			Items:     []inventory.SaleLine{{ProductID: 1, Quantity: qty}},
		})
		require.NoError(t, err)
	}

	recent, err := queries.RecentSales(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.True(t, recent[0].Total.Equal(decimal.RequireFromString("3000.00")), "newest first")
	assert.True(t, recent[1].Total.Equal(decimal.RequireFromString("2000.00")))
	assert.Equal(t, "Bob", recent[0].Client)

	points, err := queries.SalesOverview(ctx, 2)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.True(t, points[0].Total.Equal(decimal.RequireFromString("2000.00")), "chronological for graphing")
	assert.True(t, points[1].Total.Equal(decimal.RequireFromString("3000.00")))
}

func TestDashboardOverview_SingleSnapshot(t *testing.T) {
	// The overview must come from one snapshot: a write racing the read can
	// land before or after it, but never in between its counts.
	store := inventory.NewMemory()
	seedShop(t, store)
	queries := inventory.NewQueries(store)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 20; i++ {
			p := inventory.Product{
				Name:           "Racer-" + string(rune('a'+i)),
				Price:          decimal.RequireFromString("1.00"),
				Stock:          0,
				AlertThreshold: 1,
				CategoryID:     1,
			}
			if err := store.SaveProduct(ctx, &p); err != nil {
				return
			}
		}
	}()

	for i := 0; i < 20; i++ {
		overview, err := queries.DashboardOverview(ctx)
		require.NoError(t, err)
		// Every racer is below threshold, so low-stock grows in lockstep
		// with the product count. Base: 4 products, 2 low.
		assert.Equal(t, overview.TotalProducts-2, overview.LowStockItems,
			"counts from one snapshot must agree")
	}
	<-done
}
