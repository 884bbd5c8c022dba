package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/store-management/internal/api/dto"
	"github.com/spec-kit/store-management/internal/repository"
	"github.com/spec-kit/store-management/internal/service"
	apperrors "github.com/spec-kit/store-management/pkg/util"
)

// ProductsHandler exposes catalog endpoints.
type ProductsHandler struct {
	products *service.ProductService
}

// NewProductsHandler constructs handler.
func NewProductsHandler(productService *service.ProductService) *ProductsHandler {
	return &ProductsHandler{products: productService}
}

// Create handles POST /api/products.
func (h *ProductsHandler) Create(c *fiber.Ctx) error {
	var req dto.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	product, err := h.products.Create(c.UserContext(), req.ToInput())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.ProductToResponse(product)})
}

// Get handles GET /api/products/:id.
func (h *ProductsHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	product, err := h.products.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ProductToResponse(product)})
}

// List handles GET /api/products with pagination and sorting.
func (h *ProductsHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("size", 10)
	pageNum := c.QueryInt("page", 0)
	if pageNum < 0 {
		pageNum = 0
	}

	page := repository.ProductPage{
		Limit:   limit,
		Offset:  pageNum * limit,
		SortBy:  c.Query("sort_by", "name"),
		SortDir: c.Query("sort_dir", "asc"),
	}

	products, total, err := h.products.List(c.UserContext(), page)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ProductPageResponse{
		Items:  dto.ProductsToResponse(products),
		Total:  total,
		Limit:  page.Limit,
		Offset: page.Offset,
	}})
}

// Search handles GET /api/products/search?name=term.
func (h *ProductsHandler) Search(c *fiber.Ctx) error {
	name := c.Query("name")
	if name == "" {
		return apperrors.NewValidationError("name query parameter is required", nil)
	}
	products, err := h.products.SearchByName(c.UserContext(), name)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ProductsToResponse(products)})
}

// ByCategory handles GET /api/products/category/:category.
func (h *ProductsHandler) ByCategory(c *fiber.Ctx) error {
	products, err := h.products.ListByCategory(c.UserContext(), c.Params("category"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ProductsToResponse(products)})
}

// Available handles GET /api/products/available.
func (h *ProductsHandler) Available(c *fiber.Ctx) error {
	products, err := h.products.ListAvailable(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ProductsToResponse(products)})
}

// Update handles PUT /api/products/:id.
func (h *ProductsHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req dto.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	product, err := h.products.Update(c.UserContext(), id, req.ToInput())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ProductToResponse(product)})
}

// Delete handles DELETE /api/products/:id.
func (h *ProductsHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.products.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "product deleted successfully"}})
}
