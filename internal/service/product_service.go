package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/store-management/internal/domain"
	"github.com/spec-kit/store-management/internal/events"
	"github.com/spec-kit/store-management/internal/repository"
	apperrors "github.com/spec-kit/store-management/pkg/util"
)

const productCacheTTL = 5 * time.Minute

// Cache is the minimal key-value surface the product service needs.
// Satisfied by persistence.Redis; a nil cache disables caching.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

// ProductInput carries catalog item fields. Pointer fields distinguish
// "absent" from zero values on partial updates.
type ProductInput struct {
	Name        *string
	Description *string
	Price       *float64
	Quantity    *int
	Category    *string
}

// ProductService implements catalog operations.
type ProductService struct {
	products   repository.ProductRepository
	cache      Cache
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewProductService builds the service.
func NewProductService(products repository.ProductRepository, cache Cache, dispatcher events.Dispatcher, logger *zap.Logger) *ProductService {
	return &ProductService{products: products, cache: cache, dispatcher: dispatcher, logger: logger}
}

// Create adds a catalog item, rejecting names that already exist
// (case-insensitive, matching the storage lookup).
func (s *ProductService) Create(ctx context.Context, input ProductInput) (*domain.Product, error) {
	if err := validateNewProduct(input); err != nil {
		return nil, err
	}

	if _, err := s.products.GetByName(ctx, *input.Name); err == nil {
		return nil, apperrors.NewDuplicate("name")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	product := &domain.Product{
		Name:     *input.Name,
		Price:    *input.Price,
		Quantity: *input.Quantity,
		Category: *input.Category,
	}
	if input.Description != nil {
		product.Description = *input.Description
	}

	if err := s.products.Create(ctx, product); err != nil {
		if dup, ok := repository.AsDuplicate(err); ok {
			return nil, apperrors.NewDuplicate(dup.Field)
		}
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("product created",
		zap.Int64("product_id", product.ID),
		zap.String("name", product.Name))
	s.publishProduct(ctx, events.EventProductCreated, product)

	return product, nil
}

// GetByID returns one product, served from cache when possible.
func (s *ProductService) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	key := productCacheKey(id)
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, key); ok {
			var product domain.Product
			if err := json.Unmarshal([]byte(cached), &product); err == nil {
				return &product, nil
			}
			s.cache.Delete(ctx, key)
		}
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, mapProductErr(err)
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(product); err == nil {
			s.cache.Set(ctx, key, string(encoded), productCacheTTL)
		}
	}
	return product, nil
}

// List returns a catalog page plus the total item count.
func (s *ProductService) List(ctx context.Context, page repository.ProductPage) ([]domain.Product, int64, error) {
	products, total, err := s.products.List(ctx, page)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return products, total, nil
}

// SearchByName finds products whose name contains the given term.
func (s *ProductService) SearchByName(ctx context.Context, name string) ([]domain.Product, error) {
	products, err := s.products.SearchByName(ctx, name)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return products, nil
}

// ListByCategory returns all products in one category.
func (s *ProductService) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	products, err := s.products.ListByCategory(ctx, category)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return products, nil
}

// ListAvailable returns all products with stock.
func (s *ProductService) ListAvailable(ctx context.Context) ([]domain.Product, error) {
	products, err := s.products.ListAvailable(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return products, nil
}

// Update applies a partial update; only fields present in the input change.
func (s *ProductService) Update(ctx context.Context, id int64, input ProductInput) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, mapProductErr(err)
	}

	if input.Name != nil && strings.TrimSpace(*input.Name) != "" {
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Price != nil {
		if *input.Price <= 0 {
			return nil, apperrors.NewValidationError("price must be greater than zero", nil)
		}
		product.Price = *input.Price
	}
	if input.Quantity != nil {
		if *input.Quantity < 0 {
			return nil, apperrors.NewValidationError("quantity cannot be negative", nil)
		}
		product.Quantity = *input.Quantity
	}
	if input.Category != nil && strings.TrimSpace(*input.Category) != "" {
		product.Category = *input.Category
	}

	if err := s.products.Update(ctx, product); err != nil {
		return nil, mapProductErr(err)
	}

	if s.cache != nil {
		s.cache.Delete(ctx, productCacheKey(id))
	}
	s.logger.Info("product updated", zap.Int64("product_id", product.ID))
	s.publishProduct(ctx, events.EventProductUpdated, product)

	return product, nil
}

// Delete removes a product.
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return mapProductErr(err)
	}

	if err := s.products.Delete(ctx, id); err != nil {
		return mapProductErr(err)
	}

	if s.cache != nil {
		s.cache.Delete(ctx, productCacheKey(id))
	}
	s.logger.Info("product deleted", zap.Int64("product_id", id))
	s.publishProduct(ctx, events.EventProductDeleted, product)

	return nil
}

func (s *ProductService) publishProduct(ctx context.Context, eventType events.EventType, product *domain.Product) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Payload: events.ProductPayload{
			ProductID: product.ID,
			Name:      product.Name,
			Category:  product.Category,
		},
	})
}

func validateNewProduct(input ProductInput) error {
	if input.Name == nil || strings.TrimSpace(*input.Name) == "" {
		return apperrors.NewValidationError("product name is required", nil)
	}
	if input.Price == nil || *input.Price <= 0 {
		return apperrors.NewValidationError("price must be greater than zero", nil)
	}
	if input.Quantity == nil || *input.Quantity < 0 {
		return apperrors.NewValidationError("quantity cannot be negative", nil)
	}
	if input.Category == nil || strings.TrimSpace(*input.Category) == "" {
		return apperrors.NewValidationError("category is required", nil)
	}
	return nil
}

func productCacheKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}

func mapProductErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("product", nil)
	}
	return apperrors.MapError(err)
}
