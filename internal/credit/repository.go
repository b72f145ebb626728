package credit

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bodega-pos/bodega-pos/internal/platform/db"
)

// pgExecutor is satisfied by both pgxpool.Pool and pgx.Tx, letting plan
// inserts run standalone or inside a sale transaction.
type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// TxRepository exposes row-locked operations used during payment
// registration.
type TxRepository interface {
	GetPlanForUpdate(ctx context.Context, id string) (Plan, error)
	UpdatePlan(ctx context.Context, plan Plan) error
}

// RepositoryPort defines data access methods for credit plans.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Create(ctx context.Context, plan Plan) error
	Get(ctx context.Context, id string) (Plan, error)
	ListByStore(ctx context.Context, storeID string) ([]Plan, error)
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
}

// Repository persists credit plans in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const planColumns = `id, customer_name, customer_phone, customer_address, product_name,
	total_amount, paid_amount, remaining_amount, installments, installment_amount,
	next_payment_date, status, created_at, store_id`

func scanPlan(row pgx.Row) (Plan, error) {
	var p Plan
	err := row.Scan(&p.ID, &p.CustomerName, &p.CustomerPhone, &p.CustomerAddress, &p.ProductName,
		&p.TotalAmount, &p.PaidAmount, &p.RemainingAmount, &p.Installments, &p.InstallmentAmount,
		&p.NextPaymentDate, &p.Status, &p.CreatedAt, &p.StoreID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Plan{}, ErrPlanNotFound
		}
		return Plan{}, err
	}
	return p, nil
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

// Create inserts a plan row.
func (r *Repository) Create(ctx context.Context, plan Plan) error {
	return insertPlan(ctx, r.pool, plan)
}

// InsertPlanTx stages a plan inside an existing transaction. The sales
// recorder uses it so a credit sale and its plan commit atomically.
func InsertPlanTx(ctx context.Context, tx pgx.Tx, plan Plan) error {
	return insertPlan(ctx, tx, plan)
}

// Get loads a plan by id.
func (r *Repository) Get(ctx context.Context, id string) (Plan, error) {
	return scanPlan(r.pool.QueryRow(ctx, `SELECT `+planColumns+` FROM credit_plans WHERE id = $1`, id))
}

// ListByStore returns plans for a store, newest first.
func (r *Repository) ListByStore(ctx context.Context, storeID string) ([]Plan, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+planColumns+` FROM credit_plans WHERE store_id = $1 ORDER BY created_at DESC`, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []Plan
	for rows.Next() {
		var p Plan
		if err := rows.Scan(&p.ID, &p.CustomerName, &p.CustomerPhone, &p.CustomerAddress, &p.ProductName,
			&p.TotalAmount, &p.PaidAmount, &p.RemainingAmount, &p.Installments, &p.InstallmentAmount,
			&p.NextPaymentDate, &p.Status, &p.CreatedAt, &p.StoreID); err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// MarkOverdue flips active plans with a past next payment date to overdue.
func (r *Repository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE credit_plans
		SET status = $1
		WHERE status = $2 AND next_payment_date < $3`,
		StatusOverdue, StatusActive, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) GetPlanForUpdate(ctx context.Context, id string) (Plan, error) {
	return scanPlan(r.tx.QueryRow(ctx, `SELECT `+planColumns+` FROM credit_plans WHERE id = $1 FOR UPDATE`, id))
}

func (r *txRepository) UpdatePlan(ctx context.Context, plan Plan) error {
	tag, err := r.tx.Exec(ctx, `
		UPDATE credit_plans
		SET paid_amount = $2, remaining_amount = $3, next_payment_date = $4, status = $5
		WHERE id = $1`,
		plan.ID, plan.PaidAmount, plan.RemainingAmount, plan.NextPaymentDate, plan.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPlanNotFound
	}
	return nil
}

func insertPlan(ctx context.Context, q pgExecutor, plan Plan) error {
	_, err := q.Exec(ctx, `
		INSERT INTO credit_plans (id, customer_name, customer_phone, customer_address, product_name,
			total_amount, paid_amount, remaining_amount, installments, installment_amount,
			next_payment_date, status, created_at, store_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		plan.ID, plan.CustomerName, plan.CustomerPhone, plan.CustomerAddress, plan.ProductName,
		plan.TotalAmount, plan.PaidAmount, plan.RemainingAmount, plan.Installments, plan.InstallmentAmount,
		plan.NextPaymentDate, plan.Status, plan.CreatedAt, plan.StoreID)
	return err
}
