package persistence

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/store-management/internal/auth"
	"github.com/spec-kit/store-management/internal/domain"
	"github.com/spec-kit/store-management/internal/repository"
)

// SeedInitialData loads default accounts and a sample catalog when the
// respective tables are empty. Idempotent; safe to run on every startup.
func SeedInitialData(ctx context.Context, users repository.UserRepository, products repository.ProductRepository, bcryptCost int, logger *zap.Logger) error {
	if err := seedUsers(ctx, users, bcryptCost, logger); err != nil {
		return err
	}
	return seedProducts(ctx, products, logger)
}

func seedUsers(ctx context.Context, users repository.UserRepository, bcryptCost int, logger *zap.Logger) error {
	count, err := users.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		logger.Info("users already exist, skipping user seed")
		return nil
	}

	defaults := []struct {
		username  string
		email     string
		password  string
		firstName string
		lastName  string
		role      domain.Role
	}{
		{"admin", "admin@store.com", "admin123", "System", "Administrator", domain.RoleAdmin},
		{"manager", "manager@store.com", "manager123", "Store", "Manager", domain.RoleManager},
		{"employee", "employee@store.com", "employee123", "Store", "Employee", domain.RoleEmployee},
	}

	for _, d := range defaults {
		hash, err := auth.HashPassword(d.password, bcryptCost)
		if err != nil {
			return err
		}
		user := &domain.User{
			Username:     d.username,
			Email:        d.email,
			PasswordHash: hash,
			FirstName:    d.firstName,
			LastName:     d.lastName,
			Role:         d.role,
			Enabled:      true,
		}
		if err := users.Create(ctx, user); err != nil {
			return err
		}
	}

	logger.Info("seeded default users", zap.Int("count", len(defaults)))
	return nil
}

func seedProducts(ctx context.Context, products repository.ProductRepository, logger *zap.Logger) error {
	count, err := products.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		logger.Info("products already exist, skipping product seed")
		return nil
	}

	samples := []domain.Product{
		{Name: "MacBook Pro 16", Description: "High-performance laptop with M2 chip", Price: 2499.99, Quantity: 15, Category: "Electronics"},
		{Name: "iPhone 15 Pro", Description: "Latest smartphone with advanced camera system", Price: 999.99, Quantity: 25, Category: "Electronics"},
		{Name: "Samsung 55 OLED TV", Description: "4K Ultra HD Smart TV with HDR", Price: 1299.99, Quantity: 8, Category: "Electronics"},
		{Name: "Nike Air Max 270", Description: "Comfortable running shoes", Price: 129.99, Quantity: 50, Category: "Footwear"},
		{Name: "Adidas Ultraboost 22", Description: "Premium running shoes with Boost technology", Price: 189.99, Quantity: 30, Category: "Footwear"},
		{Name: "The Great Gatsby", Description: "Classic American novel by F. Scott Fitzgerald", Price: 12.99, Quantity: 100, Category: "Books"},
		{Name: "Clean Code", Description: "A handbook of agile software craftsmanship", Price: 39.99, Quantity: 75, Category: "Books"},
		{Name: "Wireless Bluetooth Headphones", Description: "Noise-cancelling over-ear headphones", Price: 199.99, Quantity: 40, Category: "Electronics"},
		{Name: "Gaming Mechanical Keyboard", Description: "RGB backlit mechanical keyboard", Price: 149.99, Quantity: 20, Category: "Electronics"},
		{Name: "Premium Coffee Blend", Description: "Arabica coffee beans from Ethiopia", Price: 24.99, Quantity: 60, Category: "Food & Beverages"},
		{Name: "Yoga Mat", Description: "Non-slip exercise mat for yoga and fitness", Price: 29.99, Quantity: 35, Category: "Sports"},
		{Name: "Stainless Steel Water Bottle", Description: "Insulated water bottle - 750ml", Price: 19.99, Quantity: 80, Category: "Sports"},
		{Name: "Winter Jacket", Description: "Waterproof and breathable winter jacket", Price: 89.99, Quantity: 25, Category: "Clothing"},
		{Name: "Office Chair", Description: "Ergonomic office chair with lumbar support", Price: 299.99, Quantity: 12, Category: "Furniture"},
		{Name: "Desk Lamp", Description: "LED desk lamp with adjustable brightness", Price: 49.99, Quantity: 18, Category: "Furniture"},
	}

	for i := range samples {
		if err := products.Create(ctx, &samples[i]); err != nil {
			return err
		}
	}

	logger.Info("seeded sample products", zap.Int("count", len(samples)))
	return nil
}
