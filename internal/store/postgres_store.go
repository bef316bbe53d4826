package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MarharytaFilipovych/store-application/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

// OpenPostgres connects to the database and applies pending migrations.
func OpenPostgres(cred *Credentials) (*sql.DB, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)

	if e3 := runMigrations(db, cred.MigrationsDirPath); e3 != nil {
		return nil, e3
	}
	return db, nil
}

func runMigrations(db *sql.DB, migrationsDir string) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{
		MigrationsTable: "store_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsDir),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

// PostgresItemStore implements ItemStore on postgres
type PostgresItemStore struct {
	db *sql.DB
}

func NewPostgresItemStore(db *sql.DB) *PostgresItemStore {
	return &PostgresItemStore{db: db}
}

func (s *PostgresItemStore) FindByID(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	query := `SELECT id, title, price, available_quantity, created_at, updated_at
	          FROM items WHERE id = $1`

	var item domain.Item
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&item.ID,
		&item.Title,
		&item.Price,
		&item.AvailableQuantity,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query item by id: %w", err)
	}
	return &item, nil
}

func (s *PostgresItemStore) FindAllByID(ctx context.Context, ids []uuid.UUID) ([]*domain.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT id, title, price, available_quantity, created_at, updated_at
	          FROM items WHERE id = ANY($1)`

	idStrings := make([]string, len(ids))
	for i, id := range ids {
		idStrings[i] = id.String()
	}

	rows, err := s.db.QueryContext(ctx, query, pq.Array(idStrings))
	if err != nil {
		return nil, fmt.Errorf("query items by ids: %w", err)
	}
	defer rows.Close()

	byID := make(map[uuid.UUID]*domain.Item, len(ids))
	for rows.Next() {
		var item domain.Item
		if err := rows.Scan(
			&item.ID,
			&item.Title,
			&item.Price,
			&item.AvailableQuantity,
			&item.CreatedAt,
			&item.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan item row: %w", err)
		}
		byID[item.ID] = &item
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	// Preserve the input order; skip unknown ids
	result := make([]*domain.Item, 0, len(byID))
	for _, id := range ids {
		if item, ok := byID[id]; ok {
			result = append(result, item)
		}
	}
	return result, nil
}

func (s *PostgresItemStore) List(ctx context.Context, limit, offset int) ([]*domain.Item, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count items: %w", err)
	}

	query := `SELECT id, title, price, available_quantity, created_at, updated_at
	          FROM items ORDER BY created_at, id LIMIT $1 OFFSET $2`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("query items page: %w", err)
	}
	defer rows.Close()

	var items []*domain.Item
	for rows.Next() {
		var item domain.Item
		if err := rows.Scan(
			&item.ID,
			&item.Title,
			&item.Price,
			&item.AvailableQuantity,
			&item.CreatedAt,
			&item.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan item row: %w", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("row iteration error: %w", err)
	}
	return items, total, nil
}

func (s *PostgresItemStore) Save(ctx context.Context, item *domain.Item) error {
	query := `INSERT INTO items (id, title, price, available_quantity, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, NOW(), NOW())
	          ON CONFLICT (id) DO UPDATE
	          SET title = EXCLUDED.title,
	              price = EXCLUDED.price,
	              available_quantity = EXCLUDED.available_quantity,
	              updated_at = NOW()`

	_, err := s.db.ExecContext(ctx, query, item.ID, item.Title, item.Price, item.AvailableQuantity)
	if err != nil {
		return fmt.Errorf("save item: %w", err)
	}
	return nil
}

// AdjustQuantity applies delta inside a single guarded UPDATE so two carts
// racing on the same item cannot lose updates or drive the count negative.
func (s *PostgresItemStore) AdjustQuantity(ctx context.Context, id uuid.UUID, delta int) error {
	query := `UPDATE items
	          SET available_quantity = available_quantity + $2, updated_at = NOW()
	          WHERE id = $1 AND available_quantity + $2 >= 0`

	res, err := s.db.ExecContext(ctx, query, id, delta)
	if err != nil {
		return fmt.Errorf("adjust item quantity: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("adjust item quantity: %w", err)
	}
	if affected == 1 {
		return nil
	}

	// Distinguish a missing item from a rejected adjustment
	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM items WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("adjust item quantity: %w", err)
	}
	if !exists {
		return ErrItemNotFound
	}
	return ErrInsufficientStock
}

// PostgresOrderStore implements OrderStore on postgres
type PostgresOrderStore struct {
	db *sql.DB
}

func NewPostgresOrderStore(db *sql.DB) *PostgresOrderStore {
	return &PostgresOrderStore{db: db}
}

func (s *PostgresOrderStore) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT id, user_id, status, lines, created_at, updated_at
	          FROM orders WHERE id = $1`

	var order domain.Order
	var linesJSON []byte
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&order.ID,
		&order.UserID,
		&order.Status,
		&linesJSON,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by id: %w", err)
	}

	if err := json.Unmarshal(linesJSON, &order.Lines); err != nil {
		return nil, fmt.Errorf("unmarshal order lines: %w", err)
	}
	return &order, nil
}

func (s *PostgresOrderStore) Save(ctx context.Context, order *domain.Order) error {
	linesJSON, err := json.Marshal(order.Lines)
	if err != nil {
		return fmt.Errorf("marshal order lines: %w", err)
	}

	query := `INSERT INTO orders (id, user_id, status, lines, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, NOW(), NOW())
	          ON CONFLICT (id) DO UPDATE
	          SET status = EXCLUDED.status, updated_at = NOW()`

	if _, err := s.db.ExecContext(ctx, query, order.ID, order.UserID, order.Status, linesJSON); err != nil {
		return fmt.Errorf("save order: %w", err)
	}
	return nil
}

func (s *PostgresOrderStore) FindConfirmedByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Order, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM orders WHERE user_id = $1 AND status = $2`
	if err := s.db.QueryRowContext(ctx, countQuery, userID, domain.OrderStatusConfirmed).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count user orders: %w", err)
	}

	query := `SELECT id, user_id, status, lines, created_at, updated_at
	          FROM orders WHERE user_id = $1 AND status = $2
	          ORDER BY created_at DESC LIMIT $3 OFFSET $4`

	rows, err := s.db.QueryContext(ctx, query, userID, domain.OrderStatusConfirmed, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("query user orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		var order domain.Order
		var linesJSON []byte
		if err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.Status,
			&linesJSON,
			&order.CreatedAt,
			&order.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan order row: %w", err)
		}
		if err := json.Unmarshal(linesJSON, &order.Lines); err != nil {
			return nil, 0, fmt.Errorf("unmarshal order lines: %w", err)
		}
		orders = append(orders, &order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("row iteration error: %w", err)
	}
	return orders, total, nil
}

// PostgresUserStore implements UserStore on postgres
type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgresUserStore(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

func (s *PostgresUserStore) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT id, email, password_hash, created_at, updated_at FROM users WHERE id = $1`

	var user domain.User
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user by id: %w", err)
	}
	return &user, nil
}

func (s *PostgresUserStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT id, email, password_hash, created_at, updated_at
	          FROM users WHERE LOWER(email) = LOWER($1)`

	var user domain.User
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user by email: %w", err)
	}
	return &user, nil
}

func (s *PostgresUserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))`
	if err := s.db.QueryRowContext(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("check user email: %w", err)
	}
	return exists, nil
}

func (s *PostgresUserStore) Save(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (id, email, password_hash, created_at, updated_at)
	          VALUES ($1, $2, $3, NOW(), NOW())
	          ON CONFLICT (id) DO UPDATE
	          SET email = EXCLUDED.email,
	              password_hash = EXCLUDED.password_hash,
	              updated_at = NOW()`

	if _, err := s.db.ExecContext(ctx, query, user.ID, user.Email, user.PasswordHash); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}
