package sales

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bodega-pos/bodega-pos/internal/catalog"
	"github.com/bodega-pos/bodega-pos/internal/credit"
	"github.com/bodega-pos/bodega-pos/internal/platform/db"
)

// TxRepository exposes the row-locked operations a sale commit runs inside
// one transaction.
type TxRepository interface {
	GetProductForUpdate(ctx context.Context, productID string) (catalog.Product, error)
	UpdateProductStock(ctx context.Context, productID string, stock int) error
	InsertSale(ctx context.Context, sale Sale) error
	InsertCreditPlan(ctx context.Context, plan credit.Plan) error
}

// RepositoryPort defines data access for the sale recorder.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetProduct(ctx context.Context, storeID, productID string) (catalog.Product, error)
	ListByStore(ctx context.Context, storeID string) ([]Sale, error)
}

// Repository persists sales in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const saleColumns = `id, product_id, product_name, quantity, unit_price, total,
	customer_name, customer_phone, payment_type, basket_type, batch_id, store_id, employee_id, created_at`

// WithTx runs fn inside a repeatable-read transaction. Any error rolls the
// whole commit back, stock deductions included.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

// GetProduct loads one product scoped to a store.
func (r *Repository) GetProduct(ctx context.Context, storeID, productID string) (catalog.Product, error) {
	var p catalog.Product
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, supplier_price, client_price, stock, category, store_id, created_at, updated_at
		FROM products WHERE id = $1 AND store_id = $2`, productID, storeID).
		Scan(&p.ID, &p.Name, &p.SupplierPrice, &p.ClientPrice, &p.Stock, &p.Category, &p.StoreID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
		}
		return catalog.Product{}, err
	}
	return p, nil
}

// ListByStore returns the store's sales, newest first.
func (r *Repository) ListByStore(ctx context.Context, storeID string) ([]Sale, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+saleColumns+` FROM sales WHERE store_id = $1 ORDER BY created_at DESC`, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []Sale
	for rows.Next() {
		var s Sale
		var batchID *string
		if err := rows.Scan(&s.ID, &s.ProductID, &s.ProductName, &s.Quantity, &s.UnitPrice, &s.Total,
			&s.CustomerName, &s.CustomerPhone, &s.PaymentType, &s.BasketType, &batchID, &s.StoreID, &s.EmployeeID, &s.CreatedAt); err != nil {
			return nil, err
		}
		if batchID != nil {
			s.BatchID = *batchID
		}
		sales = append(sales, s)
	}
	return sales, rows.Err()
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) GetProductForUpdate(ctx context.Context, productID string) (catalog.Product, error) {
	var p catalog.Product
	err := r.tx.QueryRow(ctx, `
		SELECT id, name, supplier_price, client_price, stock, category, store_id, created_at, updated_at
		FROM products WHERE id = $1 FOR UPDATE`, productID).
		Scan(&p.ID, &p.Name, &p.SupplierPrice, &p.ClientPrice, &p.Stock, &p.Category, &p.StoreID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
		}
		return catalog.Product{}, err
	}
	return p, nil
}

func (r *txRepository) UpdateProductStock(ctx context.Context, productID string, stock int) error {
	tag, err := r.tx.Exec(ctx, `UPDATE products SET stock = $2, updated_at = now() WHERE id = $1`, productID, stock)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	return nil
}

func (r *txRepository) InsertSale(ctx context.Context, sale Sale) error {
	var batchID *string
	if sale.BatchID != "" {
		batchID = &sale.BatchID
	}
	_, err := r.tx.Exec(ctx, `
		INSERT INTO sales (id, product_id, product_name, quantity, unit_price, total,
			customer_name, customer_phone, payment_type, basket_type, batch_id, store_id, employee_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		sale.ID, sale.ProductID, sale.ProductName, sale.Quantity, sale.UnitPrice, sale.Total,
		sale.CustomerName, sale.CustomerPhone, sale.PaymentType, sale.BasketType, batchID, sale.StoreID, sale.EmployeeID, sale.CreatedAt)
	return err
}

func (r *txRepository) InsertCreditPlan(ctx context.Context, plan credit.Plan) error {
	return credit.InsertPlanTx(ctx, r.tx, plan)
}
