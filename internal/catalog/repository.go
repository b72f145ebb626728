package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrProductNotFound indicates a missing product row.
var ErrProductNotFound = errors.New("catalog: product not found")

// Repository defines data access methods for the product catalog.
type Repository interface {
	ListByStore(ctx context.Context, storeID string) ([]Product, error)
	Get(ctx context.Context, id string) (Product, error)
	Create(ctx context.Context, product Product) (Product, error)
	Update(ctx context.Context, id string, product Product) error
	Delete(ctx context.Context, id string) error
	AddStock(ctx context.Context, id string, units int) (Product, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const productColumns = `id, name, supplier_price, client_price, stock, category, store_id, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.SupplierPrice, &p.ClientPrice, &p.Stock, &p.Category, &p.StoreID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrProductNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *repository) ListByStore(ctx context.Context, storeID string) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products WHERE store_id = $1 ORDER BY name`, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.SupplierPrice, &p.ClientPrice, &p.Stock, &p.Category, &p.StoreID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *repository) Get(ctx context.Context, id string) (Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	return scanProduct(row)
}

func (r *repository) Create(ctx context.Context, product Product) (Product, error) {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now
	_, err := r.pool.Exec(ctx, `
		INSERT INTO products (id, name, supplier_price, client_price, stock, category, store_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		product.ID, product.Name, product.SupplierPrice, product.ClientPrice, product.Stock, product.Category, product.StoreID, product.CreatedAt, product.UpdatedAt)
	if err != nil {
		return Product{}, err
	}
	return product, nil
}

func (r *repository) Update(ctx context.Context, id string, product Product) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE products
		SET name = $2, supplier_price = $3, client_price = $4, category = $5, updated_at = NOW()
		WHERE id = $1`,
		id, product.Name, product.SupplierPrice, product.ClientPrice, product.Category)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

// AddStock applies an administrative restock in a single statement so the
// increment cannot interleave with concurrent sale deductions.
func (r *repository) AddStock(ctx context.Context, id string, units int) (Product, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE products
		SET stock = stock + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+productColumns, id, units)
	return scanProduct(row)
}
