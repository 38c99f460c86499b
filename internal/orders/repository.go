package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // driver 100% Go
)

var ErrNotFound = errors.New("order not found")

type Repository interface {
	Create(ctx context.Context, o *Order) (string, error)
	Get(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID int64) ([]Order, error)
	Close() error
}

type sqliteRepo struct {
	db *sql.DB
}

func NewSQLiteRepo(dbPath string) (Repository, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate orders db: %w", err)
	}
	return &sqliteRepo{db: db}, nil
}

func migrate(db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS orders(
  id TEXT PRIMARY KEY,
  user_id INTEGER NOT NULL,
  username TEXT NOT NULL,
  total_cents INTEGER NOT NULL,
  created_unix INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS order_items(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  order_id TEXT NOT NULL,
  book_id TEXT NOT NULL,
  title TEXT NOT NULL,
  qty INTEGER NOT NULL,
  unit_cents INTEGER NOT NULL,
  line_cents INTEGER NOT NULL,
  FOREIGN KEY(order_id) REFERENCES orders(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id);
CREATE INDEX IF NOT EXISTS idx_items_order ON order_items(order_id);
`
	_, err := db.Exec(schema)
	return err
}

func (r *sqliteRepo) Close() error { return r.db.Close() }

// Create stores the order and its items in one transaction, assigning an
// id when the order has none.
func (r *sqliteRepo) Create(ctx context.Context, o *Order) (string, error) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
  INSERT INTO orders(id, user_id, username, total_cents, created_unix)
  VALUES(?,?,?,?,?)`,
		o.ID, o.UserID, o.Username, o.TotalCents, o.CreatedUnix); err != nil {
		return "", err
	}

	stmt, err := tx.PrepareContext(ctx, `
  INSERT INTO order_items(order_id, book_id, title, qty, unit_cents, line_cents)
  VALUES(?,?,?,?,?,?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for _, it := range o.Items {
		if _, err := stmt.ExecContext(ctx, o.ID, it.BookID, it.Title, it.Qty, it.UnitCents, it.LineCents); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return o.ID, nil
}

func (r *sqliteRepo) Get(ctx context.Context, id string) (*Order, error) {
	row := r.db.QueryRowContext(ctx, `
    SELECT id, user_id, username, total_cents, created_unix
    FROM orders WHERE id=?`, id)
	var o Order
	if err := row.Scan(&o.ID, &o.UserID, &o.Username, &o.TotalCents, &o.CreatedUnix); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	items, err := r.listItems(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

// ListByUser returns the user's orders, newest first.
func (r *sqliteRepo) ListByUser(ctx context.Context, userID int64) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx, `
    SELECT id, user_id, username, total_cents, created_unix
    FROM orders WHERE user_id=? ORDER BY created_unix DESC, rowid DESC`, userID)
	if err != nil {
		return nil, err
	}
	var out []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Username, &o.TotalCents, &o.CreatedUnix); err != nil {
			_ = rows.Close()
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	for i := range out {
		items, err := r.listItems(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

func (r *sqliteRepo) listItems(ctx context.Context, orderID string) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx, `
    SELECT book_id, title, qty, unit_cents, line_cents
    FROM order_items WHERE order_id=? ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.BookID, &it.Title, &it.Qty, &it.UnitCents, &it.LineCents); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
