/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/sales/*        Sale transactions
  /api/purchases/*    Purchase transactions
  /api/products/*     Product management
  /api/clients/*      Client management
  /api/categories/*   Category management
  /api/dashboard/*    Cached dashboard projections
  /api/inventory/*    Cached inventory projections
  /api/cache/*        Cache administration
  /api/seed           Demo dataset (dev only)

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public; the
  X-Actor header is trusted as-is and only segments cache keys.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Actor"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Sale routes
		r.Route("/sales", func(r chi.Router) {
			r.Get("/", h.ListSales)
			r.Post("/", h.CreateSale)
			r.Get("/search", h.SearchSales)
			r.Get("/{id}", h.GetSale)
		})

		// Purchase routes
		r.Route("/purchases", func(r chi.Router) {
			r.Get("/", h.ListPurchases)
			r.Post("/", h.CreatePurchase)
			r.Get("/search", h.SearchPurchases)
			r.Delete("/{id}", h.DeletePurchase)
		})

		// Product routes
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			r.Post("/", h.CreateProduct)
			r.Get("/search", h.SearchProducts)
			r.Get("/{id}", h.GetProduct)
			r.Put("/{id}", h.UpdateProduct)
			r.Delete("/{id}", h.DeleteProduct)
		})

		// Client routes
		r.Route("/clients", func(r chi.Router) {
			r.Get("/", h.ListClients)
			r.Post("/", h.CreateClient)
			r.Get("/{id}", h.GetClient)
			r.Put("/{id}", h.UpdateClient)
			r.Delete("/{id}", h.DeleteClient)
		})

		// Category routes
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.ListCategories)
			r.Post("/", h.CreateCategory)
		})

		// Dashboard routes (cached)
		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/overview", h.DashboardOverview)
			r.Get("/sales-overview", h.SalesOverview)
			r.Get("/inventory-distribution", h.InventoryDistribution)
			r.Get("/recent-sales", h.RecentSales)
			r.Get("/low-stock", h.LowStock)
		})

		// Inventory routes (cached)
		r.Route("/inventory", func(r chi.Router) {
			r.Get("/overview", h.InventoryOverview)
			r.Get("/filter", h.FilterInventory)
		})

		// Cache admin routes
		r.Route("/cache", func(r chi.Router) {
			r.Post("/clear", h.ClearCache)
			r.Post("/invalidate", h.InvalidateCache)
			r.Get("/info", h.CacheInfo)
		})

		// Demo dataset
		r.Post("/seed", h.SeedDemo)
	})

	return r
}
