package sales

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bodega-pos/bodega-pos/internal/catalog"
	"github.com/bodega-pos/bodega-pos/internal/credit"
	"github.com/bodega-pos/bodega-pos/internal/shared"
)

// memorySalesRepo stages writes per transaction and applies them only when
// the callback succeeds, mimicking rollback.
type memorySalesRepo struct {
	products map[string]catalog.Product
	sales    []Sale
	plans    []credit.Plan
}

func newMemorySalesRepo(products ...catalog.Product) *memorySalesRepo {
	repo := &memorySalesRepo{products: make(map[string]catalog.Product)}
	for _, p := range products {
		repo.products[p.ID] = p
	}
	return repo
}

func (r *memorySalesRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx := &memoryTx{
		repo:    r,
		stocks:  make(map[string]int),
		staged:  nil,
		planned: nil,
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	for id, stock := range tx.stocks {
		p := r.products[id]
		p.Stock = stock
		r.products[id] = p
	}
	r.sales = append(r.sales, tx.staged...)
	r.plans = append(r.plans, tx.planned...)
	return nil
}

func (r *memorySalesRepo) GetProduct(ctx context.Context, storeID, productID string) (catalog.Product, error) {
	p, ok := r.products[productID]
	if !ok || p.StoreID != storeID {
		return catalog.Product{}, ErrProductNotFound
	}
	return p, nil
}

func (r *memorySalesRepo) ListByStore(ctx context.Context, storeID string) ([]Sale, error) {
	var out []Sale
	for _, s := range r.sales {
		if s.StoreID == storeID {
			out = append(out, s)
		}
	}
	return out, nil
}

type memoryTx struct {
	repo    *memorySalesRepo
	stocks  map[string]int
	staged  []Sale
	planned []credit.Plan
}

func (t *memoryTx) GetProductForUpdate(ctx context.Context, productID string) (catalog.Product, error) {
	p, ok := t.repo.products[productID]
	if !ok {
		return catalog.Product{}, ErrProductNotFound
	}
	if stock, staged := t.stocks[productID]; staged {
		p.Stock = stock
	}
	return p, nil
}

func (t *memoryTx) UpdateProductStock(ctx context.Context, productID string, stock int) error {
	if _, ok := t.repo.products[productID]; !ok {
		return ErrProductNotFound
	}
	t.stocks[productID] = stock
	return nil
}

func (t *memoryTx) InsertSale(ctx context.Context, sale Sale) error {
	t.staged = append(t.staged, sale)
	return nil
}

func (t *memoryTx) InsertCreditPlan(ctx context.Context, plan credit.Plan) error {
	t.planned = append(t.planned, plan)
	return nil
}

type countingBumper struct {
	bumps int
}

func (b *countingBumper) Bump(ctx context.Context) error {
	b.bumps++
	return nil
}

func newTestService(repo *memorySalesRepo, bumper CacheBumper) *Service {
	return NewService(repo, shared.NewStoreLocks(), nil, bumper, nil, ServiceConfig{
		Policies: DefaultPolicies(),
	})
}

func TestSubmitUnitCashSale(t *testing.T) {
	repo := newMemorySalesRepo(
		catalog.Product{ID: "p1", Name: "Pilsen", ClientPrice: 2.5, Stock: 100, StoreID: "cerveza"},
	)
	bumper := &countingBumper{}
	svc := newTestService(repo, bumper)

	receipt, err := svc.SubmitSale(context.Background(), SubmitSaleInput{
		StoreID: "cerveza",
		ActorID: "emp-1",
		Lines:   []LineInput{{ProductID: "p1", Quantity: 4}},
	})
	require.NoError(t, err)
	require.Len(t, receipt.Sales, 1)
	require.Equal(t, 10.0, receipt.Total)
	require.Equal(t, PaymentCash, receipt.Sales[0].PaymentType)
	require.Equal(t, BasketUnit, receipt.Sales[0].BasketType)
	require.Equal(t, "Pilsen", receipt.Sales[0].ProductName)
	require.Empty(t, receipt.Sales[0].BatchID)
	require.Nil(t, receipt.CreditPlan)

	require.Equal(t, 96, repo.products["p1"].Stock)
	require.Equal(t, 1, bumper.bumps)
}

func TestSubmitMixedBasketShareBatch(t *testing.T) {
	repo := newMemorySalesRepo(
		catalog.Product{ID: "p1", Name: "Pilsen", ClientPrice: 2, Stock: 50, StoreID: "cerveza"},
		catalog.Product{ID: "p2", Name: "Cusquena", ClientPrice: 3, Stock: 50, StoreID: "cerveza"},
	)
	svc := newTestService(repo, nil)

	receipt, err := svc.SubmitSale(context.Background(), SubmitSaleInput{
		StoreID:    "cerveza",
		ActorID:    "emp-1",
		BasketType: BasketMixed,
		Lines:      []LineInput{{ProductID: "p1", Quantity: 18}, {ProductID: "p2", Quantity: 12}},
	})
	require.NoError(t, err)
	require.Len(t, receipt.Sales, 2)
	require.NotEmpty(t, receipt.Sales[0].BatchID)
	require.Equal(t, receipt.Sales[0].BatchID, receipt.Sales[1].BatchID)
	require.NotEqual(t, receipt.Sales[0].ID, receipt.Sales[1].ID)
	require.Equal(t, 72.0, receipt.Total)

	require.Equal(t, 32, repo.products["p1"].Stock)
	require.Equal(t, 38, repo.products["p2"].Stock)
}

func TestSubmitRollsBackOnShortfall(t *testing.T) {
	repo := newMemorySalesRepo(
		catalog.Product{ID: "p1", Name: "Pilsen", ClientPrice: 2, Stock: 50, StoreID: "cerveza"},
		catalog.Product{ID: "p2", Name: "Cusquena", ClientPrice: 3, Stock: 10, StoreID: "cerveza"},
	)
	bumper := &countingBumper{}
	svc := newTestService(repo, bumper)

	_, err := svc.SubmitSale(context.Background(), SubmitSaleInput{
		StoreID:    "cerveza",
		ActorID:    "emp-1",
		BasketType: BasketMixed,
		Lines:      []LineInput{{ProductID: "p1", Quantity: 18}, {ProductID: "p2", Quantity: 12}},
	})
	require.ErrorIs(t, err, ErrInsufficientStock)

	require.Equal(t, 50, repo.products["p1"].Stock)
	require.Equal(t, 10, repo.products["p2"].Stock)
	require.Empty(t, repo.sales)
	require.Zero(t, bumper.bumps)
}

func TestSubmitFixedBasketDeductsWholeBaskets(t *testing.T) {
	repo := newMemorySalesRepo(
		catalog.Product{ID: "p1", Name: "Pilsen", ClientPrice: 2, Stock: 65, StoreID: "cerveza"},
	)
	svc := newTestService(repo, nil)

	receipt, err := svc.SubmitSale(context.Background(), SubmitSaleInput{
		StoreID:    "cerveza",
		ActorID:    "emp-1",
		BasketType: BasketFixed,
		Lines:      []LineInput{{ProductID: "p1", Quantity: 2}},
	})
	require.NoError(t, err)
	require.Equal(t, 60, receipt.Sales[0].Quantity)
	require.Equal(t, 120.0, receipt.Total)
	require.Equal(t, 5, repo.products["p1"].Stock)

	_, err = svc.SubmitSale(context.Background(), SubmitSaleInput{
		StoreID:    "cerveza",
		ActorID:    "emp-1",
		BasketType: BasketFixed,
		Lines:      []LineInput{{ProductID: "p1", Quantity: 1}},
	})
	require.ErrorIs(t, err, ErrInsufficientStock)
	require.Equal(t, 5, repo.products["p1"].Stock)
}

func TestSubmitCreditSaleSchedulesPlan(t *testing.T) {
	repo := newMemorySalesRepo(
		catalog.Product{ID: "m1", Name: "Ropero 6 puertas", ClientPrice: 1200, Stock: 3, StoreID: "muebles"},
	)
	svc := newTestService(repo, nil)
	now := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)

	receipt, err := svc.SubmitSale(context.Background(), SubmitSaleInput{
		StoreID:     "muebles",
		ActorID:     "emp-2",
		PaymentType: PaymentCredit,
		Lines:       []LineInput{{ProductID: "m1", Quantity: 1}},
		Customer:    CustomerInfo{Name: "Rosa Quispe", Phone: "987654321"},
		Now:         now,
	})
	require.NoError(t, err)
	require.NotNil(t, receipt.CreditPlan)
	require.Equal(t, "Rosa Quispe", receipt.Sales[0].CustomerName)
	require.Equal(t, "987654321", receipt.Sales[0].CustomerPhone)
	require.Len(t, repo.plans, 1)

	plan := repo.plans[0]
	require.Equal(t, 1200.0, plan.TotalAmount)
	require.Equal(t, 12, plan.Installments)
	require.Equal(t, 100.0, plan.InstallmentAmount)
	require.Equal(t, 1200.0, plan.RemainingAmount)
	require.Equal(t, now.Add(30*24*time.Hour), plan.NextPaymentDate)
	require.Equal(t, credit.StatusActive, plan.Status)
	require.Equal(t, "Ropero 6 puertas", plan.ProductName)
	require.Equal(t, 2, repo.products["m1"].Stock)
}

func TestSubmitCreditRequiresCustomer(t *testing.T) {
	repo := newMemorySalesRepo(
		catalog.Product{ID: "m1", Name: "Ropero", ClientPrice: 1200, Stock: 3, StoreID: "muebles"},
	)
	svc := newTestService(repo, nil)

	_, err := svc.SubmitSale(context.Background(), SubmitSaleInput{
		StoreID:     "muebles",
		ActorID:     "emp-2",
		PaymentType: PaymentCredit,
		Lines:       []LineInput{{ProductID: "m1", Quantity: 1}},
	})
	require.ErrorIs(t, err, ErrCustomerRequired)
	require.Empty(t, repo.plans)
	require.Equal(t, 3, repo.products["m1"].Stock)
}

func TestSubmitEnforcesStorePolicies(t *testing.T) {
	repo := newMemorySalesRepo(
		catalog.Product{ID: "r1", Name: "Camisa", ClientPrice: 25, Stock: 40, StoreID: "ropa"},
		catalog.Product{ID: "p1", Name: "Pilsen", ClientPrice: 2, Stock: 100, StoreID: "cerveza"},
	)
	svc := newTestService(repo, nil)

	_, err := svc.SubmitSale(context.Background(), SubmitSaleInput{
		StoreID:    "ropa",
		ActorID:    "emp-1",
		BasketType: BasketFixed,
		Lines:      []LineInput{{ProductID: "r1", Quantity: 1}},
	})
	require.ErrorIs(t, err, ErrBasketNotAllowed)

	_, err = svc.SubmitSale(context.Background(), SubmitSaleInput{
		StoreID:     "cerveza",
		ActorID:     "emp-1",
		PaymentType: PaymentCredit,
		Lines:       []LineInput{{ProductID: "p1", Quantity: 1}},
		Customer:    CustomerInfo{Name: "Rosa"},
	})
	require.ErrorIs(t, err, ErrCreditNotAllowed)
}

func TestSubmitRejectsCrossStoreProduct(t *testing.T) {
	repo := newMemorySalesRepo(
		catalog.Product{ID: "p1", Name: "Pilsen", ClientPrice: 2, Stock: 100, StoreID: "cerveza"},
	)
	svc := newTestService(repo, nil)

	_, err := svc.SubmitSale(context.Background(), SubmitSaleInput{
		StoreID: "ropa",
		ActorID: "emp-1",
		Lines:   []LineInput{{ProductID: "p1", Quantity: 1}},
	})
	require.ErrorIs(t, err, ErrProductNotFound)
}
