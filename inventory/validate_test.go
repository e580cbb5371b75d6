package inventory_test

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/inventory-engine/inventory"
)

func TestValidateSaleRequest(t *testing.T) {
	valid := inventory.SaleRequest{
		ClientRef: "alice@example.com",
		Items:     []inventory.SaleLine{{ProductID: 1, Quantity: 2}},
	}

	tests := []struct {
		name      string
		mutate    func(*inventory.SaleRequest)
		wantField string
	}{
		{"valid", func(r *inventory.SaleRequest) {}, ""},
		{"missing client ref", func(r *inventory.SaleRequest) { r.ClientRef = "" }, "client_ref"},
		{"client ref too long", func(r *inventory.SaleRequest) { r.ClientRef = strings.Repeat("x", 201) }, "client_ref"},
		{"no items", func(r *inventory.SaleRequest) { r.Items = nil }, "items"},
		{"zero quantity", func(r *inventory.SaleRequest) { r.Items[0].Quantity = 0 }, "items[0].quantity"},
		{"negative quantity", func(r *inventory.SaleRequest) { r.Items[0].Quantity = -3 }, "items[0].quantity"},
		{"bad product id", func(r *inventory.SaleRequest) { r.Items[0].ProductID = 0 }, "items[0].product_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			req.Items = append([]inventory.SaleLine(nil), valid.Items...)
			tt.mutate(&req)

			err := inventory.ValidateSaleRequest(req)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, inventory.ErrValidation)
			var vErr *inventory.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}
}

func TestValidatePurchaseRequest(t *testing.T) {
	valid := inventory.PurchaseRequest{
		Supplier: "TechSupply",
		Items: []inventory.PurchaseLine{
			{ProductID: 1, Quantity: 5, UnitPrice: decimal.NewFromInt(10)},
		},
	}

	tests := []struct {
		name      string
		mutate    func(*inventory.PurchaseRequest)
		wantField string
	}{
		{"valid", func(r *inventory.PurchaseRequest) {}, ""},
		{"missing supplier", func(r *inventory.PurchaseRequest) { r.Supplier = "" }, "supplier"},
		{"no items", func(r *inventory.PurchaseRequest) { r.Items = nil }, "items"},
		{"zero unit price", func(r *inventory.PurchaseRequest) { r.Items[0].UnitPrice = decimal.Zero }, "items[0].unit_price"},
		{"negative unit price", func(r *inventory.PurchaseRequest) { r.Items[0].UnitPrice = decimal.NewFromInt(-1) }, "items[0].unit_price"},
		{"unit price over cap", func(r *inventory.PurchaseRequest) { r.Items[0].UnitPrice = decimal.NewFromInt(1000000) }, "items[0].unit_price"},
		{"zero quantity", func(r *inventory.PurchaseRequest) { r.Items[0].Quantity = 0 }, "items[0].quantity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			req.Items = append([]inventory.PurchaseLine(nil), valid.Items...)
			tt.mutate(&req)

			err := inventory.ValidatePurchaseRequest(req)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, inventory.ErrValidation)
			var vErr *inventory.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}
}

func TestValidateClient(t *testing.T) {
	valid := inventory.Client{
		Name:    "Alice Martin",
		Email:   "alice@example.com",
		Phone:   "06 12 34 56 78",
		Address: "12 Rue de la Paix",
	}

	tests := []struct {
		name      string
		mutate    func(*inventory.Client)
		wantField string
	}{
		{"valid", func(c *inventory.Client) {}, ""},
		{"formatted phone ok", func(c *inventory.Client) { c.Phone = "+33 (0)6 12-34-56-78" }, ""},
		{"missing name", func(c *inventory.Client) { c.Name = "" }, "name"},
		{"bad email", func(c *inventory.Client) { c.Email = "not-an-email" }, "email"},
		{"email missing tld", func(c *inventory.Client) { c.Email = "alice@host" }, "email"},
		{"phone too short", func(c *inventory.Client) { c.Phone = "061234" }, "phone"},
		{"phone too long", func(c *inventory.Client) { c.Phone = strings.Repeat("1", 16) }, "phone"},
		{"missing address", func(c *inventory.Client) { c.Address = "" }, "address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)

			err := inventory.ValidateClient(c)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, inventory.ErrValidation)
			var vErr *inventory.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}
}

func TestValidateProduct(t *testing.T) {
	valid := inventory.Product{
		Name:           "Laptop",
		Price:          decimal.RequireFromString("1299.99"),
		Stock:          10,
		AlertThreshold: 5,
		CategoryID:     1,
	}

	tests := []struct {
		name      string
		mutate    func(*inventory.Product)
		wantField string
	}{
		{"valid", func(p *inventory.Product) {}, ""},
		{"price at cap ok", func(p *inventory.Product) { p.Price = decimal.RequireFromString("999999.99") }, ""},
		{"missing name", func(p *inventory.Product) { p.Name = "" }, "name"},
		{"no category", func(p *inventory.Product) { p.CategoryID = 0 }, "category_id"},
		{"zero price", func(p *inventory.Product) { p.Price = decimal.Zero }, "price"},
		{"price over cap", func(p *inventory.Product) { p.Price = decimal.RequireFromString("1000000.00") }, "price"},
		{"negative stock", func(p *inventory.Product) { p.Stock = -1 }, "stock"},
		{"negative threshold", func(p *inventory.Product) { p.AlertThreshold = -1 }, "alert_threshold"},
		{"description too long", func(p *inventory.Product) { p.Description = strings.Repeat("x", 501) }, "description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)

			err := inventory.ValidateProduct(p)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, inventory.ErrValidation)
			var vErr *inventory.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}
}

func TestValidation_IsDeterministic(t *testing.T) {
	// Same invalid input, same first violation, every time
	req := inventory.SaleRequest{
		Items: []inventory.SaleLine{{ProductID: 0, Quantity: 0}},
	}

	first := inventory.ValidateSaleRequest(req)
	require.Error(t, first)
	for i := 0; i < 5; i++ {
		again := inventory.ValidateSaleRequest(req)
		assert.Equal(t, first.Error(), again.Error())
	}
}
