package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/store-management/internal/domain"
	"github.com/spec-kit/store-management/internal/repository"
	apperrors "github.com/spec-kit/store-management/pkg/util"
)

type memoryProductRepository struct {
	products map[int64]*domain.Product
	nextID   int64
	getCalls int
}

func newMemoryProductRepository() *memoryProductRepository {
	return &memoryProductRepository{products: map[int64]*domain.Product{}, nextID: 1}
}

func (r *memoryProductRepository) Create(_ context.Context, product *domain.Product) error {
	product.ID = r.nextID
	r.nextID++
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt
	r.products[product.ID] = product
	return nil
}

func (r *memoryProductRepository) Update(_ context.Context, product *domain.Product) error {
	if _, ok := r.products[product.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.products[product.ID] = product
	return nil
}

func (r *memoryProductRepository) Delete(_ context.Context, id int64) error {
	if _, ok := r.products[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.products, id)
	return nil
}

func (r *memoryProductRepository) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	r.getCalls++
	product, ok := r.products[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *product
	return &copied, nil
}

func (r *memoryProductRepository) GetByName(_ context.Context, name string) (*domain.Product, error) {
	for _, product := range r.products {
		if strings.EqualFold(product.Name, name) {
			copied := *product
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memoryProductRepository) List(_ context.Context, _ repository.ProductPage) ([]domain.Product, int64, error) {
	var out []domain.Product
	for _, product := range r.products {
		out = append(out, *product)
	}
	return out, int64(len(out)), nil
}

func (r *memoryProductRepository) SearchByName(_ context.Context, name string) ([]domain.Product, error) {
	var out []domain.Product
	for _, product := range r.products {
		if strings.Contains(strings.ToLower(product.Name), strings.ToLower(name)) {
			out = append(out, *product)
		}
	}
	return out, nil
}

func (r *memoryProductRepository) ListByCategory(_ context.Context, category string) ([]domain.Product, error) {
	var out []domain.Product
	for _, product := range r.products {
		if product.Category == category {
			out = append(out, *product)
		}
	}
	return out, nil
}

func (r *memoryProductRepository) ListAvailable(_ context.Context) ([]domain.Product, error) {
	var out []domain.Product
	for _, product := range r.products {
		if product.Quantity > 0 {
			out = append(out, *product)
		}
	}
	return out, nil
}

func (r *memoryProductRepository) Count(_ context.Context) (int64, error) {
	return int64(len(r.products)), nil
}

type memoryCache struct {
	entries map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]string{}}
}

func (c *memoryCache) Get(_ context.Context, key string) (string, bool) {
	val, ok := c.entries[key]
	return val, ok
}

func (c *memoryCache) Set(_ context.Context, key, value string, _ time.Duration) {
	c.entries[key] = value
}

func (c *memoryCache) Delete(_ context.Context, key string) {
	delete(c.entries, key)
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

func laptopInput() ProductInput {
	return ProductInput{
		Name:        strPtr("Laptop"),
		Description: strPtr("A fast laptop"),
		Price:       floatPtr(999.99),
		Quantity:    intPtr(5),
		Category:    strPtr("Electronics"),
	}
}

func TestProductCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		svc := NewProductService(newMemoryProductRepository(), nil, nil, zap.NewNop())
		product, err := svc.Create(ctx, laptopInput())
		require.NoError(t, err)
		require.NotZero(t, product.ID)
		require.Equal(t, "Laptop", product.Name)
	})

	t.Run("duplicate name case-insensitive", func(t *testing.T) {
		svc := NewProductService(newMemoryProductRepository(), nil, nil, zap.NewNop())
		_, err := svc.Create(ctx, laptopInput())
		require.NoError(t, err)

		input := laptopInput()
		input.Name = strPtr("LAPTOP")
		_, err = svc.Create(ctx, input)
		require.Equal(t, "DUPLICATE", apperrors.ToDomainError(err).Code)
	})

	t.Run("validation", func(t *testing.T) {
		svc := NewProductService(newMemoryProductRepository(), nil, nil, zap.NewNop())

		tests := []struct {
			name   string
			mutate func(*ProductInput)
		}{
			{"missing name", func(in *ProductInput) { in.Name = nil }},
			{"blank name", func(in *ProductInput) { in.Name = strPtr("  ") }},
			{"zero price", func(in *ProductInput) { in.Price = floatPtr(0) }},
			{"negative quantity", func(in *ProductInput) { in.Quantity = intPtr(-1) }},
			{"missing category", func(in *ProductInput) { in.Category = nil }},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				input := laptopInput()
				tt.mutate(&input)
				_, err := svc.Create(ctx, input)
				require.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
			})
		}
	})
}

func TestProductUpdate(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryProductRepository()
	svc := NewProductService(repo, nil, nil, zap.NewNop())

	product, err := svc.Create(ctx, laptopInput())
	require.NoError(t, err)

	t.Run("partial update leaves other fields intact", func(t *testing.T) {
		updated, err := svc.Update(ctx, product.ID, ProductInput{Price: floatPtr(899.99)})
		require.NoError(t, err)
		require.Equal(t, 899.99, updated.Price)
		require.Equal(t, "Laptop", updated.Name)
		require.Equal(t, 5, updated.Quantity)
	})

	t.Run("blank name ignored", func(t *testing.T) {
		updated, err := svc.Update(ctx, product.ID, ProductInput{Name: strPtr("   ")})
		require.NoError(t, err)
		require.Equal(t, "Laptop", updated.Name)
	})

	t.Run("invalid price rejected", func(t *testing.T) {
		_, err := svc.Update(ctx, product.ID, ProductInput{Price: floatPtr(-1)})
		require.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
	})

	t.Run("missing product", func(t *testing.T) {
		_, err := svc.Update(ctx, 9999, ProductInput{Price: floatPtr(1)})
		require.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
	})
}

func TestProductDelete(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryProductRepository()
	svc := NewProductService(repo, nil, nil, zap.NewNop())

	product, err := svc.Create(ctx, laptopInput())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, product.ID))
	require.Equal(t, "NOT_FOUND", apperrors.ToDomainError(svc.Delete(ctx, product.ID)).Code)
}

func TestProductCache(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryProductRepository()
	cache := newMemoryCache()
	svc := NewProductService(repo, cache, nil, zap.NewNop())

	product, err := svc.Create(ctx, laptopInput())
	require.NoError(t, err)

	first, err := svc.GetByID(ctx, product.ID)
	require.NoError(t, err)
	callsAfterFirst := repo.getCalls

	second, err := svc.GetByID(ctx, product.ID)
	require.NoError(t, err)
	require.Equal(t, first.Name, second.Name)
	require.Equal(t, callsAfterFirst, repo.getCalls, "second read should hit the cache")

	// mutation invalidates the cached entry
	_, err = svc.Update(ctx, product.ID, ProductInput{Quantity: intPtr(1)})
	require.NoError(t, err)

	third, err := svc.GetByID(ctx, product.ID)
	require.NoError(t, err)
	require.Equal(t, 1, third.Quantity)
}
