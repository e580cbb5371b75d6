/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures of the API contract, decoupled from the domain
  types so fields can be renamed or versioned without touching the engine.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  decimal.Decimal fields marshal as JSON strings ("129.99"), never as
  floats. Clients send prices as strings too.

VALIDATION:
  Validation is done in the domain (inventory/validate.go), not in DTOs.
  DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/warp/inventory-engine/inventory"
)

// =============================================================================
// REFERENCE DATA
// =============================================================================

// ProductDTO represents a product in API responses.
type ProductDTO struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	Stock          int             `json:"stock"`
	AlertThreshold int             `json:"alert_threshold"`
	Description    string          `json:"description"`
	CategoryID     int64           `json:"category_id,omitempty"`
	CreatedAt      string          `json:"created_at"`
}

// ProductRequest creates or updates a product. Stock set here is an initial
// level; subsequent changes flow through sales and purchases only.
type ProductRequest struct {
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	Stock          int             `json:"stock"`
	AlertThreshold int             `json:"alert_threshold"`
	Description    string          `json:"description"`
	CategoryID     int64           `json:"category_id"`
}

// ClientDTO represents a client in API responses.
type ClientDTO struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	CreatedAt string `json:"created_at"`
}

// ClientRequest creates or updates a client.
type ClientRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// CategoryDTO represents a category.
type CategoryDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CategoryRequest creates a category.
type CategoryRequest struct {
	Name string `json:"name"`
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// SaleLineDTO is one line of a sale request.
type SaleLineDTO struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// CreateSaleRequest submits a multi-line sale. Client is an exact name,
// email, or phone of one existing client.
type CreateSaleRequest struct {
	Client         string        `json:"client"`
	Items          []SaleLineDTO `json:"items"`
	IdempotencyKey string        `json:"idempotency_key,omitempty"`
}

// SaleReceiptDTO acknowledges a committed sale.
type SaleReceiptDTO struct {
	SaleID     int64           `json:"sale_id"`
	Total      decimal.Decimal `json:"total"`
	ItemsCount int             `json:"items_count"`
}

// SaleSummaryDTO is one row of sale listings.
type SaleSummaryDTO struct {
	ID         int64           `json:"id"`
	Client     string          `json:"client"`
	Date       string          `json:"date"`
	Total      decimal.Decimal `json:"total"`
	ItemsCount int             `json:"items_count"`
}

// SaleItemDTO is one committed line of a sale, price as captured at sale time.
type SaleItemDTO struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// SaleDetailDTO is the full view of one sale.
type SaleDetailDTO struct {
	ID         int64           `json:"id"`
	ClientID   int64           `json:"client_id"`
	Date       string          `json:"date"`
	Total      decimal.Decimal `json:"total"`
	ItemsCount int             `json:"items_count"`
	Items      []SaleItemDTO   `json:"items"`
}

// PurchaseLineDTO is one line of a purchase request. UnitPrice is the
// acquisition cost, not the product's sale price.
type PurchaseLineDTO struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreatePurchaseRequest submits a multi-line stock intake.
type CreatePurchaseRequest struct {
	Supplier       string            `json:"supplier"`
	Items          []PurchaseLineDTO `json:"items"`
	IdempotencyKey string            `json:"idempotency_key,omitempty"`
}

// PurchaseReceiptDTO acknowledges a committed purchase.
type PurchaseReceiptDTO struct {
	PurchaseID int64           `json:"purchase_id"`
	Total      decimal.Decimal `json:"total"`
	ItemsCount int             `json:"items_count"`
}

// PurchaseDTO is one row of purchase listings.
type PurchaseDTO struct {
	ID         int64           `json:"id"`
	Supplier   string          `json:"supplier"`
	Date       string          `json:"date"`
	Total      decimal.Decimal `json:"total"`
	ItemsCount int             `json:"items_count"`
}

// =============================================================================
// DASHBOARD PROJECTIONS
// =============================================================================

// DashboardOverviewDTO is the headline dashboard card.
type DashboardOverviewDTO struct {
	TotalClients  int             `json:"total_clients"`
	TotalProducts int             `json:"total_products"`
	TotalSales    decimal.Decimal `json:"total_sales"`
	LowStockItems int             `json:"low_stock_items"`
}

// InventoryOverviewDTO summarizes the stock position.
type InventoryOverviewDTO struct {
	TotalProducts  int             `json:"total_products"`
	LowStock       int             `json:"low_stock"`
	OutOfStock     int             `json:"out_of_stock"`
	InventoryValue decimal.Decimal `json:"inventory_value"`
}

// DistributionDTO classifies products by stock level.
type DistributionDTO struct {
	InStock    int `json:"in_stock"`
	LowStock   int `json:"low_stock"`
	OutOfStock int `json:"out_of_stock"`
}

// LowStockProductDTO is one row of the low-stock listing.
type LowStockProductDTO struct {
	Name           string          `json:"name"`
	Category       string          `json:"category"`
	Stock          int             `json:"stock"`
	AlertThreshold int             `json:"alert_threshold"`
	Price          decimal.Decimal `json:"price"`
}

// SalesPointDTO is one bar of the sales-overview graph.
type SalesPointDTO struct {
	Date  string          `json:"date"`
	Total decimal.Decimal `json:"total"`
}

// =============================================================================
// OPERATOR SURFACE
// =============================================================================

// CacheInfoDTO describes the cache backend.
type CacheInfoDTO struct {
	Backend    string `json:"backend"`
	Keys       int    `json:"keys"`
	KeyPrefix  string `json:"key_prefix"`
	DefaultTTL string `json:"default_ttl"`
}

// InvalidateRequest names the key prefix to drop.
type InvalidateRequest struct {
	Prefix string `json:"prefix"`
}

// CacheOpDTO acknowledges a clear/invalidate operation.
type CacheOpDTO struct {
	Removed int `json:"removed"`
}

// SeedResultDTO reports what the demo seeder created.
type SeedResultDTO struct {
	Categories int `json:"categories"`
	Products   int `json:"products"`
	Clients    int `json:"clients"`
	Purchases  int `json:"purchases"`
	Sales      int `json:"sales"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toProductDTO(p inventory.Product) ProductDTO {
	return ProductDTO{
		ID:             p.ID,
		Name:           p.Name,
		Price:          p.Price,
		Stock:          p.Stock,
		AlertThreshold: p.AlertThreshold,
		Description:    p.Description,
		CategoryID:     p.CategoryID,
		CreatedAt:      p.CreatedAt.Format(timeFormat),
	}
}

func toClientDTO(c inventory.Client) ClientDTO {
	return ClientDTO{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		CreatedAt: c.CreatedAt.Format(timeFormat),
	}
}

func toSaleSummaryDTO(s inventory.SaleSummary) SaleSummaryDTO {
	return SaleSummaryDTO{
		ID:         s.ID,
		Client:     s.Client,
		Date:       s.Date.Format(timeFormat),
		Total:      s.Total,
		ItemsCount: s.ItemsCount,
	}
}

func toPurchaseDTO(p inventory.Purchase) PurchaseDTO {
	return PurchaseDTO{
		ID:         p.ID,
		Supplier:   p.Supplier,
		Date:       p.Date.Format(timeFormat),
		Total:      p.Total,
		ItemsCount: p.ItemsCount,
	}
}
