package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tradepost/backend/internal/db"
	"github.com/tradepost/backend/internal/models"
)

// PostgresUserRepository provides PostgreSQL-backed persistence for users.
type PostgresUserRepository struct {
	pool    db.Pool
	timeout time.Duration
}

// NewPostgresUserRepository constructs a user repository backed by PostgreSQL.
// timeout bounds each call; a non-positive value disables the bound.
func NewPostgresUserRepository(pool db.Pool, timeout time.Duration) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool, timeout: timeout}
}

// Create persists a new user record. A duplicate email maps to ErrConflict.
func (r *PostgresUserRepository) Create(ctx context.Context, user models.User) error {
	ctx, cancel := db.WithTimeout(ctx, r.timeout)
	defer cancel()

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO users (id, email, password_hash, name, phone_number, nickname, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `, user.ID, user.Email, user.Password, user.Name, user.PhoneNumber, user.Nickname, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// FindByEmail fetches a user by their email address.
func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	ctx, cancel := db.WithTimeout(ctx, r.timeout)
	defer cancel()

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, email, password_hash, name, phone_number, nickname, created_at, updated_at
        FROM users
        WHERE email = $1
    `, email)

	return scanUser(row)
}

// FindByID fetches a user by primary key.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	ctx, cancel := db.WithTimeout(ctx, r.timeout)
	defer cancel()

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, email, password_hash, name, phone_number, nickname, created_at, updated_at
        FROM users
        WHERE id = $1
    `, id)

	return scanUser(row)
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(&user.ID, &user.Email, &user.Password, &user.Name, &user.PhoneNumber, &user.Nickname, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("select user: %w", err)
	}
	return user, nil
}

// PostgresProductRepository provides PostgreSQL-backed persistence for listings.
type PostgresProductRepository struct {
	pool    db.Pool
	timeout time.Duration
}

// NewPostgresProductRepository constructs a product repository backed by PostgreSQL.
func NewPostgresProductRepository(pool db.Pool, timeout time.Duration) *PostgresProductRepository {
	return &PostgresProductRepository{pool: pool, timeout: timeout}
}

// Create persists a new product listing. A missing seller maps to ErrNotFound.
func (r *PostgresProductRepository) Create(ctx context.Context, product models.Product) error {
	ctx, cancel := db.WithTimeout(ctx, r.timeout)
	defer cancel()

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO products (id, seller_id, title, category, price, body, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, product.ID, product.SellerID, product.Title, product.Category, product.Price, product.Body, product.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgerrcode.UniqueViolation:
				return ErrConflict
			case pgerrcode.ForeignKeyViolation:
				return ErrNotFound
			}
		}
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

// FindByID fetches a product listing by primary key.
func (r *PostgresProductRepository) FindByID(ctx context.Context, id string) (models.Product, error) {
	ctx, cancel := db.WithTimeout(ctx, r.timeout)
	defer cancel()

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Product{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, seller_id, title, category, price, body, created_at
        FROM products
        WHERE id = $1
    `, id)

	var product models.Product
	if err := row.Scan(&product.ID, &product.SellerID, &product.Title, &product.Category, &product.Price, &product.Body, &product.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Product{}, ErrNotFound
		}
		return models.Product{}, fmt.Errorf("select product: %w", err)
	}

	return product, nil
}

// Delete removes a product listing and, through the cascading foreign key, its
// image records.
func (r *PostgresProductRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := db.WithTimeout(ctx, r.timeout)
	defer cancel()

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM products
        WHERE id = $1
    `, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// PostgresImageRepository provides PostgreSQL-backed persistence for uploaded
// file records.
type PostgresImageRepository struct {
	pool    db.Pool
	timeout time.Duration
}

// NewPostgresImageRepository constructs an image repository backed by PostgreSQL.
func NewPostgresImageRepository(pool db.Pool, timeout time.Duration) *PostgresImageRepository {
	return &PostgresImageRepository{pool: pool, timeout: timeout}
}

// CreateAll persists the batch of image records in a single transaction so a
// partially uploaded batch never leaves stray rows behind.
func (r *PostgresImageRepository) CreateAll(ctx context.Context, images []models.ProductImage) error {
	if len(images) == 0 {
		return nil
	}

	ctx, cancel := db.WithTimeout(ctx, r.timeout)
	defer cancel()

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin image insert: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, image := range images {
		_, err := tx.Exec(ctx, `
            INSERT INTO product_images (id, product_id, url, storage_key, created_at)
            VALUES ($1, $2, $3, $4, $5)
        `, image.ID, image.ProductID, image.URL, image.StorageKey, image.CreatedAt)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) {
				switch pgErr.Code {
				case pgerrcode.UniqueViolation:
					return ErrConflict
				case pgerrcode.ForeignKeyViolation:
					return ErrNotFound
				}
			}
			return fmt.Errorf("insert product image: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit image insert: %w", err)
	}

	return nil
}

// ListByProduct returns the product's images in upload order.
func (r *PostgresImageRepository) ListByProduct(ctx context.Context, productID string) ([]models.ProductImage, error) {
	ctx, cancel := db.WithTimeout(ctx, r.timeout)
	defer cancel()

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT id, product_id, url, storage_key, created_at
        FROM product_images
        WHERE product_id = $1
        ORDER BY created_at, id
    `, productID)
	if err != nil {
		return nil, fmt.Errorf("query product images: %w", err)
	}
	defer rows.Close()

	var images []models.ProductImage
	for rows.Next() {
		var image models.ProductImage
		if err := rows.Scan(&image.ID, &image.ProductID, &image.URL, &image.StorageKey, &image.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product image: %w", err)
		}
		images = append(images, image)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product images: %w", err)
	}

	return images, nil
}

// FindByURL fetches an image record by its public URL.
func (r *PostgresImageRepository) FindByURL(ctx context.Context, url string) (models.ProductImage, error) {
	ctx, cancel := db.WithTimeout(ctx, r.timeout)
	defer cancel()

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.ProductImage{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, product_id, url, storage_key, created_at
        FROM product_images
        WHERE url = $1
    `, url)

	var image models.ProductImage
	if err := row.Scan(&image.ID, &image.ProductID, &image.URL, &image.StorageKey, &image.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ProductImage{}, ErrNotFound
		}
		return models.ProductImage{}, fmt.Errorf("select product image: %w", err)
	}

	return image, nil
}

// Delete removes an image record by primary key.
func (r *PostgresImageRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := db.WithTimeout(ctx, r.timeout)
	defer cancel()

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM product_images
        WHERE id = $1
    `, id)
	if err != nil {
		return fmt.Errorf("delete product image: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

var _ UserRepository = (*PostgresUserRepository)(nil)
var _ ProductRepository = (*PostgresProductRepository)(nil)
var _ ImageRepository = (*PostgresImageRepository)(nil)
