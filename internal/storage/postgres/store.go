package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hongminglow/refer-web/internal/models"
	"github.com/hongminglow/refer-web/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Ensure Store satisfies the storage.OrderStore interface at compile time.
var _ storage.OrderStore = (*Store)(nil)

// Store provides Postgres-backed persistence for checkout orders.
type Store struct {
	pool *pgxpool.Pool
}

// NewOrderStore creates a new Store and runs migrations.
func NewOrderStore(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			user_id TEXT NOT NULL DEFAULT '',
			total NUMERIC(12,2) NOT NULL,
			billing_name TEXT NOT NULL,
			billing_address TEXT NOT NULL,
			billing_city TEXT NOT NULL,
			billing_postcode TEXT NOT NULL,
			billing_email TEXT NOT NULL,
			billing_phone TEXT NOT NULL,
			card_last4 TEXT NOT NULL,
			card_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS orders_user_id_idx ON orders (user_id, created_at DESC);`,
		`CREATE TABLE IF NOT EXISTS order_items (
			order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			position INT NOT NULL,
			product_id TEXT NOT NULL,
			name TEXT NOT NULL,
			price NUMERIC(12,2) NOT NULL,
			quantity INT NOT NULL CHECK (quantity > 0),
			PRIMARY KEY (order_id, position)
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

// CreateOrder inserts an order and its lines in one transaction.
func (s *Store) CreateOrder(ctx context.Context, order models.Order) (models.Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return models.Order{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const insertOrder = `
		INSERT INTO orders (id, user_id, total, billing_name, billing_address, billing_city,
			billing_postcode, billing_email, billing_phone, card_last4, card_hash, created_at)
		VALUES ($1, $2, $3::numeric, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at;
	`
	b := order.Billing
	err = tx.QueryRow(ctx, insertOrder,
		order.ID, order.UserID, order.Total.StringFixed(2), b.Name, b.Address, b.City,
		b.Postcode, b.Email, b.Phone, order.CardLast4, order.CardHash, order.CreatedAt,
	).Scan(&order.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.Order{}, storage.ErrAlreadyExists
		}
		return models.Order{}, err
	}

	const insertItem = `
		INSERT INTO order_items (order_id, position, product_id, name, price, quantity)
		VALUES ($1, $2, $3, $4, $5::numeric, $6);
	`
	batch := &pgx.Batch{}
	for i, item := range order.Items {
		batch.Queue(insertItem, order.ID, i, item.ProductID, item.Name, item.Price.StringFixed(2), item.Quantity)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return models.Order{}, fmt.Errorf("insert order items: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return models.Order{}, fmt.Errorf("commit: %w", err)
	}
	return order, nil
}

const selectOrder = `
	SELECT id::text, user_id, total::text, billing_name, billing_address, billing_city,
		billing_postcode, billing_email, billing_phone, card_last4, card_hash, created_at
	FROM orders
`

// FindOrder fetches one order with its lines.
func (s *Store) FindOrder(ctx context.Context, id string) (models.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.Order{}, storage.ErrNotFound
	}
	row := s.pool.QueryRow(ctx, selectOrder+` WHERE id = $1;`, id)
	order, err := scanOrder(row)
	if err != nil {
		return models.Order{}, err
	}
	if err := s.loadItems(ctx, &order); err != nil {
		return models.Order{}, err
	}
	return order, nil
}

// ListOrdersByUser returns the user's orders, newest first.
func (s *Store) ListOrdersByUser(ctx context.Context, userID string) ([]models.Order, error) {
	rows, err := s.pool.Query(ctx, selectOrder+` WHERE user_id = $1 ORDER BY created_at DESC;`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if err := s.loadItems(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) loadItems(ctx context.Context, order *models.Order) error {
	const query = `
		SELECT product_id, name, price::text, quantity
		FROM order_items
		WHERE order_id = $1
		ORDER BY position;
	`
	rows, err := s.pool.Query(ctx, query, order.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	order.Items = order.Items[:0]
	for rows.Next() {
		var item models.OrderItem
		var price string
		if err := rows.Scan(&item.ProductID, &item.Name, &price, &item.Quantity); err != nil {
			return err
		}
		if item.Price, err = decimal.NewFromString(price); err != nil {
			return fmt.Errorf("parse item price: %w", err)
		}
		order.Items = append(order.Items, item)
	}
	return rows.Err()
}

func scanOrder(row pgx.Row) (models.Order, error) {
	var order models.Order
	var total string
	b := &order.Billing
	if err := row.Scan(&order.ID, &order.UserID, &total, &b.Name, &b.Address, &b.City,
		&b.Postcode, &b.Email, &b.Phone, &order.CardLast4, &order.CardHash, &order.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Order{}, storage.ErrNotFound
		}
		return models.Order{}, err
	}
	parsed, err := decimal.NewFromString(total)
	if err != nil {
		return models.Order{}, fmt.Errorf("parse order total: %w", err)
	}
	order.Total = parsed
	return order, nil
}
