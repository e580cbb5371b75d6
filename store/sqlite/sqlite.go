/*
Package sqlite provides the SQLite-backed implementation of the ledger store.

PURPOSE:
  Implements inventory.Store using database/sql + mattn/go-sqlite3. The same
  SQL applies to PostgreSQL with minor dialect changes.

KEY TABLES:
  categories, products, clients:  reference data
  sales, sale_items:              append-only sale ledger
  purchases, purchase_items:      append-only purchase ledger

INVARIANT ENFORCEMENT:
  The schema carries CHECK constraints mirroring the domain invariants
  (stock >= 0, quantity > 0, positive prices), and the stock mutation is a
  conditional UPDATE guarded on the resulting stock staying non-negative,
  checked via the affected-row count. Two concurrent sales can therefore
  never jointly overdraw a product, regardless of what they read earlier.

CONCURRENCY:
  sync.RWMutex serializes writers (SQLite allows one writer at a time
  anyway); WAL mode keeps readers unblocked. BUSY errors are mapped to
  inventory.ErrStoreBusy so the coordinator can retry once.

MONEY:
  decimal values are stored as their canonical string form (exact), and CAST
  to REAL only inside aggregate SUMs where the result is rounded to cents.

USAGE:
  store, err := sqlite.New("./data/stock.db")
  if err != nil { ... }
  defer store.Close()
  coord := inventory.NewCoordinator(store)

SEE ALSO:
  - inventory/store.go: Interface contracts
  - inventory/memory.go: In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/inventory-engine/inventory"
)

// Store implements inventory.Store on SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (and migrates) a SQLite store. Use ":memory:" for tests.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: SQLite has a single writer anyway, and this keeps
	// ":memory:" databases from splitting across pooled connections.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS categories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		price TEXT NOT NULL CHECK (CAST(price AS REAL) > 0),
		stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
		alert_threshold INTEGER NOT NULL DEFAULT 5 CHECK (alert_threshold >= 0),
		description TEXT NOT NULL DEFAULT '',
		category_id INTEGER REFERENCES categories(id),
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_products_category ON products(category_id);
	CREATE INDEX IF NOT EXISTS idx_products_stock ON products(stock);

	CREATE TABLE IF NOT EXISTS clients (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		phone TEXT NOT NULL UNIQUE,
		address TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_clients_name ON clients(name);

	-- Append-only sale ledger. No UPDATE path exists in the code.
	CREATE TABLE IF NOT EXISTS sales (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		client_id INTEGER NOT NULL REFERENCES clients(id),
		date TEXT NOT NULL,
		total TEXT NOT NULL CHECK (CAST(total AS REAL) >= 0),
		items_count INTEGER NOT NULL CHECK (items_count >= 0),
		idempotency_key TEXT UNIQUE
	);

	CREATE INDEX IF NOT EXISTS idx_sales_client ON sales(client_id);
	CREATE INDEX IF NOT EXISTS idx_sales_date ON sales(date DESC);

	CREATE TABLE IF NOT EXISTS sale_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sale_id INTEGER NOT NULL REFERENCES sales(id),
		product_id INTEGER NOT NULL REFERENCES products(id),
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		price TEXT NOT NULL CHECK (CAST(price AS REAL) > 0)
	);

	CREATE INDEX IF NOT EXISTS idx_sale_items_sale ON sale_items(sale_id);

	CREATE TABLE IF NOT EXISTS purchases (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		supplier TEXT NOT NULL,
		date TEXT NOT NULL,
		total TEXT NOT NULL CHECK (CAST(total AS REAL) >= 0),
		items_count INTEGER NOT NULL CHECK (items_count >= 0),
		idempotency_key TEXT UNIQUE
	);

	CREATE INDEX IF NOT EXISTS idx_purchases_date ON purchases(date DESC);

	CREATE TABLE IF NOT EXISTS purchase_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		purchase_id INTEGER NOT NULL REFERENCES purchases(id),
		product_id INTEGER NOT NULL REFERENCES products(id),
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		unit_price TEXT NOT NULL CHECK (CAST(unit_price AS REAL) > 0)
	);

	CREATE INDEX IF NOT EXISTS idx_purchase_items_purchase ON purchase_items(purchase_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// WithTx executes fn within one write transaction. Any error rolls the whole
// transaction back.
func (s *Store) WithTx(ctx context.Context, fn func(inventory.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mapError(err)
	}
	defer sqlTx.Rollback()

	if err := fn(&view{q: sqlTx}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return mapError(err)
	}
	return nil
}

// WithReadTx executes fn against one consistent read snapshot.
func (s *Store) WithReadTx(ctx context.Context, fn func(inventory.Store) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mapError(err)
	}
	defer sqlTx.Rollback()

	return fn(&view{q: sqlTx})
}

// Reset clears all data (testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"sale_items", "sales", "purchase_items", "purchases", "products", "clients", "categories"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return mapError(err)
		}
	}
	return nil
}

func (s *Store) read(fn func(*view) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&view{q: s.db})
}

func (s *Store) write(fn func(*view) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&view{q: s.db})
}

// =============================================================================
// VIEW - All SQL lives here; backed by either *sql.DB or *sql.Tx
// =============================================================================

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type view struct {
	q querier
}

// Nested transaction scopes run in place; the enclosing one owns atomicity.
func (v *view) WithTx(ctx context.Context, fn func(inventory.Store) error) error {
	return fn(v)
}

func (v *view) WithReadTx(ctx context.Context, fn func(inventory.Store) error) error {
	return fn(v)
}

// -----------------------------------------------------------------------------
// Products
// -----------------------------------------------------------------------------

func (v *view) SaveProduct(ctx context.Context, p *inventory.Product) error {
	if p.ID == 0 {
		if p.CreatedAt.IsZero() {
			p.CreatedAt = time.Now().UTC()
		}
		res, err := v.q.ExecContext(ctx, `
			INSERT INTO products (name, price, stock, alert_threshold, description, category_id, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.Name, p.Price.String(), p.Stock, p.AlertThreshold, p.Description,
			nullID(p.CategoryID), p.CreatedAt.Format(time.RFC3339),
		)
		if err != nil {
			return mapError(err)
		}
		p.ID, err = res.LastInsertId()
		return err
	}

	_, err := v.q.ExecContext(ctx, `
		UPDATE products SET name = ?, price = ?, stock = ?, alert_threshold = ?, description = ?, category_id = ?
		WHERE id = ?`,
		p.Name, p.Price.String(), p.Stock, p.AlertThreshold, p.Description,
		nullID(p.CategoryID), p.ID,
	)
	return mapError(err)
}

const productColumns = "id, name, price, stock, alert_threshold, description, category_id, created_at"

func (v *view) GetProduct(ctx context.Context, id int64) (*inventory.Product, error) {
	row := v.q.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = ?", id)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, mapError(err)
	}
	return p, nil
}

func (v *view) ListProducts(ctx context.Context) ([]inventory.Product, error) {
	return v.queryProducts(ctx,
		"SELECT "+productColumns+" FROM products ORDER BY name")
}

func (v *view) SearchProducts(ctx context.Context, query string) ([]inventory.Product, error) {
	like := "%" + query + "%"
	return v.queryProducts(ctx,
		"SELECT "+productColumns+" FROM products WHERE name LIKE ? OR description LIKE ? ORDER BY name",
		like, like)
}

func (v *view) DeleteProduct(ctx context.Context, id int64) error {
	_, err := v.q.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	return mapError(err)
}

// AdjustStock is the conditional update at the heart of the no-overdraw
// guarantee: check and mutation are one statement, judged by affected rows.
func (v *view) AdjustStock(ctx context.Context, id int64, delta int) (bool, error) {
	res, err := v.q.ExecContext(ctx,
		"UPDATE products SET stock = stock + ? WHERE id = ? AND stock + ? >= 0",
		delta, id, delta)
	if err != nil {
		return false, mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (v *view) queryProducts(ctx context.Context, query string, args ...any) ([]inventory.Product, error) {
	rows, err := v.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var products []inventory.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*inventory.Product, error) {
	var (
		p          inventory.Product
		price      string
		categoryID sql.NullInt64
		createdAt  string
	)
	err := row.Scan(&p.ID, &p.Name, &price, &p.Stock, &p.AlertThreshold,
		&p.Description, &categoryID, &createdAt)
	if err != nil {
		return nil, err
	}
	p.Price = mustDecimal(price)
	p.CategoryID = categoryID.Int64
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &p, nil
}

// -----------------------------------------------------------------------------
// Clients
// -----------------------------------------------------------------------------

func (v *view) SaveClient(ctx context.Context, c *inventory.Client) error {
	if c.ID == 0 {
		if c.CreatedAt.IsZero() {
			c.CreatedAt = time.Now().UTC()
		}
		res, err := v.q.ExecContext(ctx, `
			INSERT INTO clients (name, email, phone, address, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			c.Name, c.Email, c.Phone, c.Address, c.CreatedAt.Format(time.RFC3339),
		)
		if err != nil {
			return mapError(err)
		}
		c.ID, err = res.LastInsertId()
		return err
	}

	_, err := v.q.ExecContext(ctx, `
		UPDATE clients SET name = ?, email = ?, phone = ?, address = ? WHERE id = ?`,
		c.Name, c.Email, c.Phone, c.Address, c.ID,
	)
	return mapError(err)
}

func (v *view) GetClient(ctx context.Context, id int64) (*inventory.Client, error) {
	row := v.q.QueryRowContext(ctx,
		"SELECT id, name, email, phone, address, created_at FROM clients WHERE id = ?", id)
	c, err := scanClient(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, mapError(err)
	}
	return c, nil
}

func (v *view) ListClients(ctx context.Context) ([]inventory.Client, error) {
	return v.queryClients(ctx,
		"SELECT id, name, email, phone, address, created_at FROM clients ORDER BY name")
}

func (v *view) FindClientsByRef(ctx context.Context, ref string) ([]inventory.Client, error) {
	return v.queryClients(ctx, `
		SELECT id, name, email, phone, address, created_at FROM clients
		WHERE name = ? OR email = ? OR phone = ?
		ORDER BY id`,
		ref, ref, ref)
}

// DeleteClientCascade removes sale items, then sales, then the client, inside
// the caller's transaction.
func (v *view) DeleteClientCascade(ctx context.Context, id int64) error {
	if _, err := v.q.ExecContext(ctx,
		"DELETE FROM sale_items WHERE sale_id IN (SELECT id FROM sales WHERE client_id = ?)", id); err != nil {
		return mapError(err)
	}
	if _, err := v.q.ExecContext(ctx, "DELETE FROM sales WHERE client_id = ?", id); err != nil {
		return mapError(err)
	}
	if _, err := v.q.ExecContext(ctx, "DELETE FROM clients WHERE id = ?", id); err != nil {
		return mapError(err)
	}
	return nil
}

func (v *view) queryClients(ctx context.Context, query string, args ...any) ([]inventory.Client, error) {
	rows, err := v.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var clients []inventory.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, *c)
	}
	return clients, rows.Err()
}

func scanClient(row rowScanner) (*inventory.Client, error) {
	var (
		c         inventory.Client
		createdAt string
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &createdAt); err != nil {
		return nil, err
	}
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &c, nil
}

// -----------------------------------------------------------------------------
// Categories
// -----------------------------------------------------------------------------

func (v *view) SaveCategory(ctx context.Context, c *inventory.Category) error {
	if c.ID == 0 {
		res, err := v.q.ExecContext(ctx, "INSERT INTO categories (name) VALUES (?)", c.Name)
		if err != nil {
			return mapError(err)
		}
		c.ID, err = res.LastInsertId()
		return err
	}
	_, err := v.q.ExecContext(ctx, "UPDATE categories SET name = ? WHERE id = ?", c.Name, c.ID)
	return mapError(err)
}

func (v *view) ListCategories(ctx context.Context) ([]inventory.Category, error) {
	rows, err := v.q.QueryContext(ctx, "SELECT id, name FROM categories ORDER BY name")
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var categories []inventory.Category
	for rows.Next() {
		var c inventory.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// -----------------------------------------------------------------------------
// Sales
// -----------------------------------------------------------------------------

func (v *view) InsertSale(ctx context.Context, s *inventory.Sale) error {
	res, err := v.q.ExecContext(ctx, `
		INSERT INTO sales (client_id, date, total, items_count, idempotency_key)
		VALUES (?, ?, ?, ?, ?)`,
		s.ClientID, s.Date.Format(time.RFC3339), s.Total.String(), s.ItemsCount,
		nullString(s.IdempotencyKey),
	)
	if err != nil {
		return mapError(err)
	}
	s.ID, err = res.LastInsertId()
	return err
}

func (v *view) InsertSaleItems(ctx context.Context, items []inventory.SaleItem) error {
	for _, it := range items {
		if _, err := v.q.ExecContext(ctx, `
			INSERT INTO sale_items (sale_id, product_id, quantity, price)
			VALUES (?, ?, ?, ?)`,
			it.SaleID, it.ProductID, it.Quantity, it.Price.String(),
		); err != nil {
			return mapError(err)
		}
	}
	return nil
}

func (v *view) GetSale(ctx context.Context, id int64) (*inventory.Sale, error) {
	var (
		s              inventory.Sale
		date, total    string
		idempotencyKey sql.NullString
	)
	err := v.q.QueryRowContext(ctx,
		"SELECT id, client_id, date, total, items_count, idempotency_key FROM sales WHERE id = ?", id,
	).Scan(&s.ID, &s.ClientID, &date, &total, &s.ItemsCount, &idempotencyKey)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, mapError(err)
	}
	s.Date, _ = time.Parse(time.RFC3339, date)
	s.Total = mustDecimal(total)
	s.IdempotencyKey = idempotencyKey.String
	return &s, nil
}

func (v *view) ListSaleItems(ctx context.Context, saleID int64) ([]inventory.SaleItem, error) {
	rows, err := v.q.QueryContext(ctx,
		"SELECT id, sale_id, product_id, quantity, price FROM sale_items WHERE sale_id = ? ORDER BY id", saleID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var items []inventory.SaleItem
	for rows.Next() {
		var (
			it    inventory.SaleItem
			price string
		)
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.Quantity, &price); err != nil {
			return nil, err
		}
		it.Price = mustDecimal(price)
		items = append(items, it)
	}
	return items, rows.Err()
}

const saleSummaryQuery = `
	SELECT s.id, COALESCE(c.name, 'Unknown'), s.date, s.total, s.items_count
	FROM sales s
	LEFT JOIN clients c ON c.id = s.client_id
`

func (v *view) ListSales(ctx context.Context, limit int) ([]inventory.SaleSummary, error) {
	return v.querySaleSummaries(ctx,
		saleSummaryQuery+" ORDER BY s.date DESC, s.id DESC LIMIT ?", normLimit(limit))
}

func (v *view) SearchSales(ctx context.Context, query string, limit int) ([]inventory.SaleSummary, error) {
	like := "%" + query + "%"
	return v.querySaleSummaries(ctx,
		saleSummaryQuery+`
		WHERE CAST(s.id AS TEXT) LIKE ? OR c.name LIKE ? OR c.email LIKE ?
		ORDER BY s.date DESC, s.id DESC LIMIT ?`,
		like, like, like, normLimit(limit))
}

func (v *view) RecentSales(ctx context.Context, limit int) ([]inventory.SaleSummary, error) {
	return v.ListSales(ctx, limit)
}

func (v *view) querySaleSummaries(ctx context.Context, query string, args ...any) ([]inventory.SaleSummary, error) {
	rows, err := v.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var summaries []inventory.SaleSummary
	for rows.Next() {
		var (
			s           inventory.SaleSummary
			date, total string
		)
		if err := rows.Scan(&s.ID, &s.Client, &date, &total, &s.ItemsCount); err != nil {
			return nil, err
		}
		s.Date, _ = time.Parse(time.RFC3339, date)
		s.Total = mustDecimal(total)
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// -----------------------------------------------------------------------------
// Purchases
// -----------------------------------------------------------------------------

func (v *view) InsertPurchase(ctx context.Context, p *inventory.Purchase) error {
	res, err := v.q.ExecContext(ctx, `
		INSERT INTO purchases (supplier, date, total, items_count, idempotency_key)
		VALUES (?, ?, ?, ?, ?)`,
		p.Supplier, p.Date.Format(time.RFC3339), p.Total.String(), p.ItemsCount,
		nullString(p.IdempotencyKey),
	)
	if err != nil {
		return mapError(err)
	}
	p.ID, err = res.LastInsertId()
	return err
}

func (v *view) InsertPurchaseItems(ctx context.Context, items []inventory.PurchaseItem) error {
	for _, it := range items {
		if _, err := v.q.ExecContext(ctx, `
			INSERT INTO purchase_items (purchase_id, product_id, quantity, unit_price)
			VALUES (?, ?, ?, ?)`,
			it.PurchaseID, it.ProductID, it.Quantity, it.UnitPrice.String(),
		); err != nil {
			return mapError(err)
		}
	}
	return nil
}

func (v *view) GetPurchase(ctx context.Context, id int64) (*inventory.Purchase, error) {
	var (
		p              inventory.Purchase
		date, total    string
		idempotencyKey sql.NullString
	)
	err := v.q.QueryRowContext(ctx,
		"SELECT id, supplier, date, total, items_count, idempotency_key FROM purchases WHERE id = ?", id,
	).Scan(&p.ID, &p.Supplier, &date, &total, &p.ItemsCount, &idempotencyKey)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, mapError(err)
	}
	p.Date, _ = time.Parse(time.RFC3339, date)
	p.Total = mustDecimal(total)
	p.IdempotencyKey = idempotencyKey.String
	return &p, nil
}

func (v *view) ListPurchases(ctx context.Context, limit int) ([]inventory.Purchase, error) {
	return v.queryPurchases(ctx, `
		SELECT id, supplier, date, total, items_count, idempotency_key FROM purchases
		ORDER BY date DESC, id DESC LIMIT ?`, normLimit(limit))
}

func (v *view) SearchPurchases(ctx context.Context, query string, limit int) ([]inventory.Purchase, error) {
	like := "%" + query + "%"
	return v.queryPurchases(ctx, `
		SELECT id, supplier, date, total, items_count, idempotency_key FROM purchases
		WHERE supplier LIKE ? OR date LIKE ?
		ORDER BY date DESC, id DESC LIMIT ?`,
		like, like, normLimit(limit))
}

func (v *view) DeletePurchaseCascade(ctx context.Context, id int64) error {
	if _, err := v.q.ExecContext(ctx, "DELETE FROM purchase_items WHERE purchase_id = ?", id); err != nil {
		return mapError(err)
	}
	if _, err := v.q.ExecContext(ctx, "DELETE FROM purchases WHERE id = ?", id); err != nil {
		return mapError(err)
	}
	return nil
}

func (v *view) queryPurchases(ctx context.Context, query string, args ...any) ([]inventory.Purchase, error) {
	rows, err := v.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var purchases []inventory.Purchase
	for rows.Next() {
		var (
			p              inventory.Purchase
			date, total    string
			idempotencyKey sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Supplier, &date, &total, &p.ItemsCount, &idempotencyKey); err != nil {
			return nil, err
		}
		p.Date, _ = time.Parse(time.RFC3339, date)
		p.Total = mustDecimal(total)
		p.IdempotencyKey = idempotencyKey.String
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}

// -----------------------------------------------------------------------------
// Aggregates
// -----------------------------------------------------------------------------

func (v *view) CountClients(ctx context.Context) (int, error) {
	return v.count(ctx, "SELECT COUNT(*) FROM clients")
}

func (v *view) CountProducts(ctx context.Context) (int, error) {
	return v.count(ctx, "SELECT COUNT(*) FROM products")
}

func (v *view) CountLowStock(ctx context.Context) (int, error) {
	return v.count(ctx, "SELECT COUNT(*) FROM products WHERE stock < alert_threshold")
}

func (v *view) SumSalesTotal(ctx context.Context) (decimal.Decimal, error) {
	return v.sum(ctx, "SELECT COALESCE(SUM(CAST(total AS REAL)), 0) FROM sales")
}

func (v *view) InventoryValue(ctx context.Context) (decimal.Decimal, error) {
	return v.sum(ctx, "SELECT COALESCE(SUM(stock * CAST(price AS REAL)), 0) FROM products")
}

// StockBreakdown is one statement, so the three counts always describe the
// same instant.
func (v *view) StockBreakdown(ctx context.Context) (inventory.StockBreakdown, error) {
	var b inventory.StockBreakdown
	err := v.q.QueryRowContext(ctx, `
		SELECT
			COUNT(CASE WHEN stock > alert_threshold THEN 1 END),
			COUNT(CASE WHEN stock > 0 AND stock < alert_threshold THEN 1 END),
			COUNT(CASE WHEN stock = 0 THEN 1 END)
		FROM products`,
	).Scan(&b.InStock, &b.LowStock, &b.OutOfStock)
	if err != nil {
		return b, mapError(err)
	}
	return b, nil
}

func (v *view) LowStockProducts(ctx context.Context, limit int) ([]inventory.LowStockProduct, error) {
	rows, err := v.q.QueryContext(ctx, `
		SELECT p.name, COALESCE(c.name, 'Uncategorized'), p.stock, p.alert_threshold, p.price
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.stock < p.alert_threshold
		ORDER BY p.stock ASC
		LIMIT ?`, normLimit(limit))
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var products []inventory.LowStockProduct
	for rows.Next() {
		var (
			p     inventory.LowStockProduct
			price string
		)
		if err := rows.Scan(&p.Name, &p.Category, &p.Stock, &p.AlertThreshold, &price); err != nil {
			return nil, err
		}
		p.Price = mustDecimal(price)
		products = append(products, p)
	}
	return products, rows.Err()
}

func (v *view) count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	if err := v.q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, mapError(err)
	}
	return n, nil
}

func (v *view) sum(ctx context.Context, query string, args ...any) (decimal.Decimal, error) {
	var f float64
	if err := v.q.QueryRowContext(ctx, query, args...).Scan(&f); err != nil {
		return decimal.Zero, mapError(err)
	}
	return decimal.NewFromFloat(f).Round(2), nil
}

// =============================================================================
// LOCKED DELEGATES - Store's interface methods
// =============================================================================

func (s *Store) SaveProduct(ctx context.Context, p *inventory.Product) error {
	return s.write(func(v *view) error { return v.SaveProduct(ctx, p) })
}

func (s *Store) GetProduct(ctx context.Context, id int64) (p *inventory.Product, err error) {
	err = s.read(func(v *view) error { p, err = v.GetProduct(ctx, id); return err })
	return
}

func (s *Store) ListProducts(ctx context.Context) (out []inventory.Product, err error) {
	err = s.read(func(v *view) error { out, err = v.ListProducts(ctx); return err })
	return
}

func (s *Store) SearchProducts(ctx context.Context, query string) (out []inventory.Product, err error) {
	err = s.read(func(v *view) error { out, err = v.SearchProducts(ctx, query); return err })
	return
}

func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	return s.write(func(v *view) error { return v.DeleteProduct(ctx, id) })
}

func (s *Store) AdjustStock(ctx context.Context, id int64, delta int) (applied bool, err error) {
	err = s.write(func(v *view) error { applied, err = v.AdjustStock(ctx, id, delta); return err })
	return
}

func (s *Store) SaveClient(ctx context.Context, c *inventory.Client) error {
	return s.write(func(v *view) error { return v.SaveClient(ctx, c) })
}

func (s *Store) GetClient(ctx context.Context, id int64) (c *inventory.Client, err error) {
	err = s.read(func(v *view) error { c, err = v.GetClient(ctx, id); return err })
	return
}

func (s *Store) ListClients(ctx context.Context) (out []inventory.Client, err error) {
	err = s.read(func(v *view) error { out, err = v.ListClients(ctx); return err })
	return
}

func (s *Store) FindClientsByRef(ctx context.Context, ref string) (out []inventory.Client, err error) {
	err = s.read(func(v *view) error { out, err = v.FindClientsByRef(ctx, ref); return err })
	return
}

func (s *Store) DeleteClientCascade(ctx context.Context, id int64) error {
	return s.WithTx(ctx, func(tx inventory.Store) error {
		return tx.DeleteClientCascade(ctx, id)
	})
}

func (s *Store) SaveCategory(ctx context.Context, c *inventory.Category) error {
	return s.write(func(v *view) error { return v.SaveCategory(ctx, c) })
}

func (s *Store) ListCategories(ctx context.Context) (out []inventory.Category, err error) {
	err = s.read(func(v *view) error { out, err = v.ListCategories(ctx); return err })
	return
}

func (s *Store) InsertSale(ctx context.Context, sale *inventory.Sale) error {
	return s.write(func(v *view) error { return v.InsertSale(ctx, sale) })
}

func (s *Store) InsertSaleItems(ctx context.Context, items []inventory.SaleItem) error {
	return s.write(func(v *view) error { return v.InsertSaleItems(ctx, items) })
}

func (s *Store) GetSale(ctx context.Context, id int64) (sale *inventory.Sale, err error) {
	err = s.read(func(v *view) error { sale, err = v.GetSale(ctx, id); return err })
	return
}

func (s *Store) ListSaleItems(ctx context.Context, saleID int64) (out []inventory.SaleItem, err error) {
	err = s.read(func(v *view) error { out, err = v.ListSaleItems(ctx, saleID); return err })
	return
}

func (s *Store) ListSales(ctx context.Context, limit int) (out []inventory.SaleSummary, err error) {
	err = s.read(func(v *view) error { out, err = v.ListSales(ctx, limit); return err })
	return
}

func (s *Store) SearchSales(ctx context.Context, query string, limit int) (out []inventory.SaleSummary, err error) {
	err = s.read(func(v *view) error { out, err = v.SearchSales(ctx, query, limit); return err })
	return
}

func (s *Store) InsertPurchase(ctx context.Context, p *inventory.Purchase) error {
	return s.write(func(v *view) error { return v.InsertPurchase(ctx, p) })
}

func (s *Store) InsertPurchaseItems(ctx context.Context, items []inventory.PurchaseItem) error {
	return s.write(func(v *view) error { return v.InsertPurchaseItems(ctx, items) })
}

func (s *Store) GetPurchase(ctx context.Context, id int64) (p *inventory.Purchase, err error) {
	err = s.read(func(v *view) error { p, err = v.GetPurchase(ctx, id); return err })
	return
}

func (s *Store) ListPurchases(ctx context.Context, limit int) (out []inventory.Purchase, err error) {
	err = s.read(func(v *view) error { out, err = v.ListPurchases(ctx, limit); return err })
	return
}

func (s *Store) SearchPurchases(ctx context.Context, query string, limit int) (out []inventory.Purchase, err error) {
	err = s.read(func(v *view) error { out, err = v.SearchPurchases(ctx, query, limit); return err })
	return
}

func (s *Store) DeletePurchaseCascade(ctx context.Context, id int64) error {
	return s.WithTx(ctx, func(tx inventory.Store) error {
		return tx.DeletePurchaseCascade(ctx, id)
	})
}

func (s *Store) CountClients(ctx context.Context) (n int, err error) {
	err = s.read(func(v *view) error { n, err = v.CountClients(ctx); return err })
	return
}

func (s *Store) CountProducts(ctx context.Context) (n int, err error) {
	err = s.read(func(v *view) error { n, err = v.CountProducts(ctx); return err })
	return
}

func (s *Store) CountLowStock(ctx context.Context) (n int, err error) {
	err = s.read(func(v *view) error { n, err = v.CountLowStock(ctx); return err })
	return
}

func (s *Store) SumSalesTotal(ctx context.Context) (d decimal.Decimal, err error) {
	err = s.read(func(v *view) error { d, err = v.SumSalesTotal(ctx); return err })
	return
}

func (s *Store) InventoryValue(ctx context.Context) (d decimal.Decimal, err error) {
	err = s.read(func(v *view) error { d, err = v.InventoryValue(ctx); return err })
	return
}

func (s *Store) StockBreakdown(ctx context.Context) (b inventory.StockBreakdown, err error) {
	err = s.read(func(v *view) error { b, err = v.StockBreakdown(ctx); return err })
	return
}

func (s *Store) LowStockProducts(ctx context.Context, limit int) (out []inventory.LowStockProduct, err error) {
	err = s.read(func(v *view) error { out, err = v.LowStockProducts(ctx, limit); return err })
	return
}

func (s *Store) RecentSales(ctx context.Context, limit int) (out []inventory.SaleSummary, err error) {
	err = s.read(func(v *view) error { out, err = v.RecentSales(ctx, limit); return err })
	return
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullID(id int64) sql.NullInt64 {
	if id == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: id, Valid: true}
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func normLimit(limit int) int {
	if limit <= 0 {
		return -1 // SQLite: LIMIT -1 means no limit
	}
	return limit
}

// mapError translates driver errors into the domain taxonomy.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "idempotency_key"):
		return inventory.ErrDuplicateIdempotencyKey
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return inventory.ErrDuplicateRecord
	case strings.Contains(msg, "database is locked"), strings.Contains(msg, "database table is locked"):
		return inventory.ErrStoreBusy
	default:
		return err
	}
}
