package catalog

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	products  map[string]Product
	listCalls int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{products: make(map[string]Product)}
}

func (r *memoryRepo) ListByStore(ctx context.Context, storeID string) ([]Product, error) {
	r.listCalls++
	var out []Product
	for _, p := range r.products {
		if p.StoreID == storeID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memoryRepo) Get(ctx context.Context, id string) (Product, error) {
	p, ok := r.products[id]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	return p, nil
}

func (r *memoryRepo) Create(ctx context.Context, product Product) (Product, error) {
	if product.ID == "" {
		product.ID = "p-" + product.Name
	}
	r.products[product.ID] = product
	return product, nil
}

func (r *memoryRepo) Update(ctx context.Context, id string, product Product) error {
	existing, ok := r.products[id]
	if !ok {
		return ErrProductNotFound
	}
	existing.Name = product.Name
	existing.SupplierPrice = product.SupplierPrice
	existing.ClientPrice = product.ClientPrice
	existing.Category = product.Category
	r.products[id] = existing
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.products[id]; !ok {
		return ErrProductNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *memoryRepo) AddStock(ctx context.Context, id string, units int) (Product, error) {
	p, ok := r.products[id]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	p.Stock += units
	r.products[id] = p
	return p, nil
}

func newTestService(t *testing.T, repo Repository) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(repo, NewCache(client, time.Minute), nil)
}

func TestListUsesCache(t *testing.T) {
	repo := newMemoryRepo()
	repo.products["p1"] = Product{ID: "p1", Name: "Pilsen", ClientPrice: 2, Stock: 10, StoreID: "cerveza"}
	svc := newTestService(t, repo)
	ctx := context.Background()

	first, err := svc.List(ctx, "cerveza")
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := svc.List(ctx, "cerveza")
	require.NoError(t, err)
	require.Len(t, second, 1)
	require.Equal(t, 1, repo.listCalls)
}

func TestRestockBumpsCache(t *testing.T) {
	repo := newMemoryRepo()
	repo.products["p1"] = Product{ID: "p1", Name: "Pilsen", ClientPrice: 2, Stock: 10, StoreID: "cerveza"}
	svc := newTestService(t, repo)
	ctx := context.Background()

	_, err := svc.List(ctx, "cerveza")
	require.NoError(t, err)

	product, err := svc.Restock(ctx, "p1", 30, "admin-1")
	require.NoError(t, err)
	require.Equal(t, 40, product.Stock)

	fresh, err := svc.List(ctx, "cerveza")
	require.NoError(t, err)
	require.Equal(t, 40, fresh[0].Stock)
	require.Equal(t, 2, repo.listCalls)
}

func TestRestockRejectsNonPositiveUnits(t *testing.T) {
	repo := newMemoryRepo()
	repo.products["p1"] = Product{ID: "p1", Name: "Pilsen", Stock: 10, StoreID: "cerveza"}
	svc := newTestService(t, repo)

	_, err := svc.Restock(context.Background(), "p1", 0, "admin-1")
	require.ErrorIs(t, err, ErrInvalidRestock)

	_, err = svc.Restock(context.Background(), "p1", -5, "admin-1")
	require.ErrorIs(t, err, ErrInvalidRestock)

	p, err := repo.Get(context.Background(), "p1")
	require.NoError(t, err)
	require.Equal(t, 10, p.Stock)
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t, newMemoryRepo())

	_, err := svc.Create(context.Background(), Product{Name: "", StoreID: "ropa"})
	require.Error(t, err)

	_, err = svc.Create(context.Background(), Product{Name: "Camisa", StoreID: "ropa", ClientPrice: -1})
	require.Error(t, err)

	created, err := svc.Create(context.Background(), Product{Name: "Camisa", StoreID: "ropa", ClientPrice: 25, SupplierPrice: 10, Stock: 5})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
}
