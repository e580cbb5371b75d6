/*
memory.go - In-memory Store implementation (for testing/dev)

Mirrors the SQLite store's semantics closely enough that coordinator and
query tests run against either: conditional stock updates, unique fields,
idempotency keys, and all-or-nothing transactions.

TRANSACTIONS:
  WithTx clones the dataset, runs fn against the clone, and swaps the clone
  in only on success. Rollback is simply dropping the clone, so a failing
  multi-line sale leaves no trace, same as a SQL rollback.
*/
package inventory

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

// Memory is an in-memory ledger store.
type Memory struct {
	mu   sync.RWMutex
	data *memData
}

type memData struct {
	categories    map[int64]Category
	products      map[int64]Product
	clients       map[int64]Client
	sales         map[int64]Sale
	saleItems     []SaleItem
	purchases     map[int64]Purchase
	purchaseItems []PurchaseItem
	seq           map[string]int64
	idempotency   map[string]bool
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: newMemData()}
}

func newMemData() *memData {
	return &memData{
		categories:  make(map[int64]Category),
		products:    make(map[int64]Product),
		clients:     make(map[int64]Client),
		sales:       make(map[int64]Sale),
		purchases:   make(map[int64]Purchase),
		seq:         make(map[string]int64),
		idempotency: make(map[string]bool),
	}
}

func (d *memData) clone() *memData {
	c := newMemData()
	for k, v := range d.categories {
		c.categories[k] = v
	}
	for k, v := range d.products {
		c.products[k] = v
	}
	for k, v := range d.clients {
		c.clients[k] = v
	}
	for k, v := range d.sales {
		c.sales[k] = v
	}
	for k, v := range d.purchases {
		c.purchases[k] = v
	}
	for k, v := range d.seq {
		c.seq[k] = v
	}
	for k, v := range d.idempotency {
		c.idempotency[k] = v
	}
	c.saleItems = append([]SaleItem(nil), d.saleItems...)
	c.purchaseItems = append([]PurchaseItem(nil), d.purchaseItems...)
	return c
}

func (d *memData) nextID(table string) int64 {
	d.seq[table]++
	return d.seq[table]
}

// =============================================================================
// TRANSACTIONS - clone, mutate, swap on commit
// =============================================================================

// WithTx runs fn against a clone and commits by swapping it in.
func (m *Memory) WithTx(ctx context.Context, fn func(Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	clone := m.data.clone()
	if err := fn(&memView{data: clone}); err != nil {
		return err
	}
	m.data = clone
	return nil
}

// WithReadTx runs fn under the read lock; nothing can move underneath it.
func (m *Memory) WithReadTx(ctx context.Context, fn func(Store) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fn(&memView{data: m.data})
}

func (m *Memory) read(fn func(*memView) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fn(&memView{data: m.data})
}

func (m *Memory) write(fn func(*memView) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(&memView{data: m.data})
}

// memView implements Store over raw data without locking. It backs both the
// top-level Memory methods and transaction clones.
type memView struct {
	data *memData
}

// Nested transactions just run in place; the enclosing WithTx owns atomicity.
func (v *memView) WithTx(ctx context.Context, fn func(Store) error) error     { return fn(v) }
func (v *memView) WithReadTx(ctx context.Context, fn func(Store) error) error { return fn(v) }

// =============================================================================
// PRODUCTS
// =============================================================================

func (v *memView) SaveProduct(ctx context.Context, p *Product) error {
	for id, existing := range v.data.products {
		if existing.Name == p.Name && id != p.ID {
			return ErrDuplicateRecord
		}
	}
	if p.ID == 0 {
		p.ID = v.data.nextID("products")
	}
	v.data.products[p.ID] = *p
	return nil
}

func (v *memView) GetProduct(ctx context.Context, id int64) (*Product, error) {
	p, ok := v.data.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (v *memView) ListProducts(ctx context.Context) ([]Product, error) {
	out := make([]Product, 0, len(v.data.products))
	for _, p := range v.data.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (v *memView) SearchProducts(ctx context.Context, query string) ([]Product, error) {
	q := strings.ToLower(query)
	var out []Product
	for _, p := range v.data.products {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (v *memView) DeleteProduct(ctx context.Context, id int64) error {
	delete(v.data.products, id)
	return nil
}

func (v *memView) AdjustStock(ctx context.Context, id int64, delta int) (bool, error) {
	p, ok := v.data.products[id]
	if !ok {
		return false, nil
	}
	if p.Stock+delta < 0 {
		return false, nil
	}
	p.Stock += delta
	v.data.products[id] = p
	return true, nil
}

// =============================================================================
// CLIENTS
// =============================================================================

func (v *memView) SaveClient(ctx context.Context, c *Client) error {
	for id, existing := range v.data.clients {
		if id != c.ID && (existing.Email == c.Email || existing.Phone == c.Phone) {
			return ErrDuplicateRecord
		}
	}
	if c.ID == 0 {
		c.ID = v.data.nextID("clients")
	}
	v.data.clients[c.ID] = *c
	return nil
}

func (v *memView) GetClient(ctx context.Context, id int64) (*Client, error) {
	c, ok := v.data.clients[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (v *memView) ListClients(ctx context.Context) ([]Client, error) {
	out := make([]Client, 0, len(v.data.clients))
	for _, c := range v.data.clients {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (v *memView) FindClientsByRef(ctx context.Context, ref string) ([]Client, error) {
	var out []Client
	for _, c := range v.data.clients {
		if c.Name == ref || c.Email == ref || c.Phone == ref {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (v *memView) DeleteClientCascade(ctx context.Context, id int64) error {
	for saleID, s := range v.data.sales {
		if s.ClientID != id {
			continue
		}
		kept := v.data.saleItems[:0]
		for _, it := range v.data.saleItems {
			if it.SaleID != saleID {
				kept = append(kept, it)
			}
		}
		v.data.saleItems = kept
		delete(v.data.sales, saleID)
	}
	delete(v.data.clients, id)
	return nil
}

// =============================================================================
// CATEGORIES
// =============================================================================

func (v *memView) SaveCategory(ctx context.Context, c *Category) error {
	for id, existing := range v.data.categories {
		if existing.Name == c.Name && id != c.ID {
			return ErrDuplicateRecord
		}
	}
	if c.ID == 0 {
		c.ID = v.data.nextID("categories")
	}
	v.data.categories[c.ID] = *c
	return nil
}

func (v *memView) ListCategories(ctx context.Context) ([]Category, error) {
	out := make([]Category, 0, len(v.data.categories))
	for _, c := range v.data.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// =============================================================================
// SALES
// =============================================================================

func (v *memView) InsertSale(ctx context.Context, s *Sale) error {
	if s.IdempotencyKey != "" {
		if v.data.idempotency[s.IdempotencyKey] {
			return ErrDuplicateIdempotencyKey
		}
		v.data.idempotency[s.IdempotencyKey] = true
	}
	s.ID = v.data.nextID("sales")
	v.data.sales[s.ID] = *s
	return nil
}

func (v *memView) InsertSaleItems(ctx context.Context, items []SaleItem) error {
	for _, it := range items {
		it.ID = v.data.nextID("sale_items")
		v.data.saleItems = append(v.data.saleItems, it)
	}
	return nil
}

func (v *memView) GetSale(ctx context.Context, id int64) (*Sale, error) {
	s, ok := v.data.sales[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (v *memView) ListSaleItems(ctx context.Context, saleID int64) ([]SaleItem, error) {
	var out []SaleItem
	for _, it := range v.data.saleItems {
		if it.SaleID == saleID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (v *memView) saleSummaries() []SaleSummary {
	out := make([]SaleSummary, 0, len(v.data.sales))
	for _, s := range v.data.sales {
		name := "Unknown"
		if c, ok := v.data.clients[s.ClientID]; ok {
			name = c.Name
		}
		out = append(out, SaleSummary{
			ID:         s.ID,
			Client:     name,
			Date:       s.Date,
			Total:      s.Total,
			ItemsCount: s.ItemsCount,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID > out[j].ID
		}
		return out[i].Date.After(out[j].Date)
	})
	return out
}

func (v *memView) ListSales(ctx context.Context, limit int) ([]SaleSummary, error) {
	return capSummaries(v.saleSummaries(), limit), nil
}

func (v *memView) SearchSales(ctx context.Context, query string, limit int) ([]SaleSummary, error) {
	q := strings.ToLower(query)
	var out []SaleSummary
	for _, s := range v.saleSummaries() {
		if strings.Contains(strconv.FormatInt(s.ID, 10), q) ||
			strings.Contains(strings.ToLower(s.Client), q) {
			out = append(out, s)
		}
	}
	return capSummaries(out, limit), nil
}

// =============================================================================
// PURCHASES
// =============================================================================

func (v *memView) InsertPurchase(ctx context.Context, p *Purchase) error {
	if p.IdempotencyKey != "" {
		if v.data.idempotency[p.IdempotencyKey] {
			return ErrDuplicateIdempotencyKey
		}
		v.data.idempotency[p.IdempotencyKey] = true
	}
	p.ID = v.data.nextID("purchases")
	v.data.purchases[p.ID] = *p
	return nil
}

func (v *memView) InsertPurchaseItems(ctx context.Context, items []PurchaseItem) error {
	for _, it := range items {
		it.ID = v.data.nextID("purchase_items")
		v.data.purchaseItems = append(v.data.purchaseItems, it)
	}
	return nil
}

func (v *memView) GetPurchase(ctx context.Context, id int64) (*Purchase, error) {
	p, ok := v.data.purchases[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (v *memView) ListPurchases(ctx context.Context, limit int) ([]Purchase, error) {
	out := make([]Purchase, 0, len(v.data.purchases))
	for _, p := range v.data.purchases {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID > out[j].ID
		}
		return out[i].Date.After(out[j].Date)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (v *memView) SearchPurchases(ctx context.Context, query string, limit int) ([]Purchase, error) {
	q := strings.ToLower(query)
	all, _ := v.ListPurchases(ctx, 0)
	var out []Purchase
	for _, p := range all {
		if strings.Contains(strings.ToLower(p.Supplier), q) ||
			strings.Contains(p.Date.Format("2006-01-02"), q) {
			out = append(out, p)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (v *memView) DeletePurchaseCascade(ctx context.Context, id int64) error {
	kept := v.data.purchaseItems[:0]
	for _, it := range v.data.purchaseItems {
		if it.PurchaseID != id {
			kept = append(kept, it)
		}
	}
	v.data.purchaseItems = kept
	delete(v.data.purchases, id)
	return nil
}

// =============================================================================
// AGGREGATES
// =============================================================================

func (v *memView) CountClients(ctx context.Context) (int, error) {
	return len(v.data.clients), nil
}

func (v *memView) CountProducts(ctx context.Context) (int, error) {
	return len(v.data.products), nil
}

func (v *memView) CountLowStock(ctx context.Context) (int, error) {
	n := 0
	for _, p := range v.data.products {
		if p.Stock < p.AlertThreshold {
			n++
		}
	}
	return n, nil
}

func (v *memView) SumSalesTotal(ctx context.Context) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, s := range v.data.sales {
		total = total.Add(s.Total)
	}
	return total, nil
}

func (v *memView) InventoryValue(ctx context.Context) (decimal.Decimal, error) {
	value := decimal.Zero
	for _, p := range v.data.products {
		value = value.Add(p.Price.Mul(decimal.NewFromInt(int64(p.Stock))))
	}
	return value, nil
}

func (v *memView) StockBreakdown(ctx context.Context) (StockBreakdown, error) {
	var b StockBreakdown
	for _, p := range v.data.products {
		switch {
		case p.Stock == 0:
			b.OutOfStock++
		case p.Stock < p.AlertThreshold:
			b.LowStock++
		case p.Stock > p.AlertThreshold:
			b.InStock++
		}
	}
	return b, nil
}

func (v *memView) LowStockProducts(ctx context.Context, limit int) ([]LowStockProduct, error) {
	var out []LowStockProduct
	for _, p := range v.data.products {
		if p.Stock >= p.AlertThreshold {
			continue
		}
		category := "Uncategorized"
		if c, ok := v.data.categories[p.CategoryID]; ok {
			category = c.Name
		}
		out = append(out, LowStockProduct{
			Name:           p.Name,
			Category:       category,
			Stock:          p.Stock,
			AlertThreshold: p.AlertThreshold,
			Price:          p.Price,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Stock < out[j].Stock })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (v *memView) RecentSales(ctx context.Context, limit int) ([]SaleSummary, error) {
	return capSummaries(v.saleSummaries(), limit), nil
}

func capSummaries(s []SaleSummary, limit int) []SaleSummary {
	if limit > 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}

// =============================================================================
// LOCKED DELEGATES - Memory's Store methods
// =============================================================================

func (m *Memory) SaveProduct(ctx context.Context, p *Product) error {
	return m.write(func(v *memView) error { return v.SaveProduct(ctx, p) })
}

func (m *Memory) GetProduct(ctx context.Context, id int64) (p *Product, err error) {
	err = m.read(func(v *memView) error { p, err = v.GetProduct(ctx, id); return err })
	return
}

func (m *Memory) ListProducts(ctx context.Context) (out []Product, err error) {
	err = m.read(func(v *memView) error { out, err = v.ListProducts(ctx); return err })
	return
}

func (m *Memory) SearchProducts(ctx context.Context, query string) (out []Product, err error) {
	err = m.read(func(v *memView) error { out, err = v.SearchProducts(ctx, query); return err })
	return
}

func (m *Memory) DeleteProduct(ctx context.Context, id int64) error {
	return m.write(func(v *memView) error { return v.DeleteProduct(ctx, id) })
}

func (m *Memory) AdjustStock(ctx context.Context, id int64, delta int) (applied bool, err error) {
	err = m.write(func(v *memView) error { applied, err = v.AdjustStock(ctx, id, delta); return err })
	return
}

func (m *Memory) SaveClient(ctx context.Context, c *Client) error {
	return m.write(func(v *memView) error { return v.SaveClient(ctx, c) })
}

func (m *Memory) GetClient(ctx context.Context, id int64) (c *Client, err error) {
	err = m.read(func(v *memView) error { c, err = v.GetClient(ctx, id); return err })
	return
}

func (m *Memory) ListClients(ctx context.Context) (out []Client, err error) {
	err = m.read(func(v *memView) error { out, err = v.ListClients(ctx); return err })
	return
}

func (m *Memory) FindClientsByRef(ctx context.Context, ref string) (out []Client, err error) {
	err = m.read(func(v *memView) error { out, err = v.FindClientsByRef(ctx, ref); return err })
	return
}

func (m *Memory) DeleteClientCascade(ctx context.Context, id int64) error {
	return m.write(func(v *memView) error { return v.DeleteClientCascade(ctx, id) })
}

func (m *Memory) SaveCategory(ctx context.Context, c *Category) error {
	return m.write(func(v *memView) error { return v.SaveCategory(ctx, c) })
}

func (m *Memory) ListCategories(ctx context.Context) (out []Category, err error) {
	err = m.read(func(v *memView) error { out, err = v.ListCategories(ctx); return err })
	return
}

func (m *Memory) InsertSale(ctx context.Context, s *Sale) error {
	return m.write(func(v *memView) error { return v.InsertSale(ctx, s) })
}

func (m *Memory) InsertSaleItems(ctx context.Context, items []SaleItem) error {
	return m.write(func(v *memView) error { return v.InsertSaleItems(ctx, items) })
}

func (m *Memory) GetSale(ctx context.Context, id int64) (s *Sale, err error) {
	err = m.read(func(v *memView) error { s, err = v.GetSale(ctx, id); return err })
	return
}

func (m *Memory) ListSaleItems(ctx context.Context, saleID int64) (out []SaleItem, err error) {
	err = m.read(func(v *memView) error { out, err = v.ListSaleItems(ctx, saleID); return err })
	return
}

func (m *Memory) ListSales(ctx context.Context, limit int) (out []SaleSummary, err error) {
	err = m.read(func(v *memView) error { out, err = v.ListSales(ctx, limit); return err })
	return
}

func (m *Memory) SearchSales(ctx context.Context, query string, limit int) (out []SaleSummary, err error) {
	err = m.read(func(v *memView) error { out, err = v.SearchSales(ctx, query, limit); return err })
	return
}

func (m *Memory) InsertPurchase(ctx context.Context, p *Purchase) error {
	return m.write(func(v *memView) error { return v.InsertPurchase(ctx, p) })
}

func (m *Memory) InsertPurchaseItems(ctx context.Context, items []PurchaseItem) error {
	return m.write(func(v *memView) error { return v.InsertPurchaseItems(ctx, items) })
}

func (m *Memory) GetPurchase(ctx context.Context, id int64) (p *Purchase, err error) {
	err = m.read(func(v *memView) error { p, err = v.GetPurchase(ctx, id); return err })
	return
}

func (m *Memory) ListPurchases(ctx context.Context, limit int) (out []Purchase, err error) {
	err = m.read(func(v *memView) error { out, err = v.ListPurchases(ctx, limit); return err })
	return
}

func (m *Memory) SearchPurchases(ctx context.Context, query string, limit int) (out []Purchase, err error) {
	err = m.read(func(v *memView) error { out, err = v.SearchPurchases(ctx, query, limit); return err })
	return
}

func (m *Memory) DeletePurchaseCascade(ctx context.Context, id int64) error {
	return m.write(func(v *memView) error { return v.DeletePurchaseCascade(ctx, id) })
}

func (m *Memory) CountClients(ctx context.Context) (n int, err error) {
	err = m.read(func(v *memView) error { n, err = v.CountClients(ctx); return err })
	return
}

func (m *Memory) CountProducts(ctx context.Context) (n int, err error) {
	err = m.read(func(v *memView) error { n, err = v.CountProducts(ctx); return err })
	return
}

func (m *Memory) CountLowStock(ctx context.Context) (n int, err error) {
	err = m.read(func(v *memView) error { n, err = v.CountLowStock(ctx); return err })
	return
}

func (m *Memory) SumSalesTotal(ctx context.Context) (d decimal.Decimal, err error) {
	err = m.read(func(v *memView) error { d, err = v.SumSalesTotal(ctx); return err })
	return
}

func (m *Memory) InventoryValue(ctx context.Context) (d decimal.Decimal, err error) {
	err = m.read(func(v *memView) error { d, err = v.InventoryValue(ctx); return err })
	return
}

func (m *Memory) StockBreakdown(ctx context.Context) (b StockBreakdown, err error) {
	err = m.read(func(v *memView) error { b, err = v.StockBreakdown(ctx); return err })
	return
}

func (m *Memory) LowStockProducts(ctx context.Context, limit int) (out []LowStockProduct, err error) {
	err = m.read(func(v *memView) error { out, err = v.LowStockProducts(ctx, limit); return err })
	return
}

func (m *Memory) RecentSales(ctx context.Context, limit int) (out []SaleSummary, err error) {
	err = m.read(func(v *memView) error { out, err = v.RecentSales(ctx, limit); return err })
	return
}
