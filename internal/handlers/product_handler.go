package handlers

import (
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"catalog/internal/middleware"
	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, logger *slog.Logger) *ProductHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProductHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the product routes, and search, on router.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Get("/category/:category", h.HandleGetProductsByCategory)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Patch("/:id", h.HandleUpdateProduct)
	productRoutes.Patch("/:id/status", h.HandleUpdateProductStatus)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)

	router.Get("/search", h.HandleSearchProducts)
}

// HandleListProducts returns one page of products.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	in, err := listInput(c, false)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	page, err := h.service.ListProducts(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(page)
}

// HandleSearchProducts lists products narrowed by the filter parameters.
func (h *ProductHandler) HandleSearchProducts(c *fiber.Ctx) error {
	in, err := listInput(c, true)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	page, err := h.service.ListProducts(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(page)
}

// HandleGetProductsByCategory lists the products of one category.
func (h *ProductHandler) HandleGetProductsByCategory(c *fiber.Ctx) error {
	in, err := listInput(c, false)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	category, uerr := url.PathUnescape(c.Params("category"))
	if uerr != nil {
		category = c.Params("category")
	}
	in.Filter.Category = category

	page, err := h.service.ListProducts(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(page)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(product)
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req models.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, h.logger, invalidBody(err))
	}

	product, err := h.service.CreateProduct(c.UserContext(), req, middleware.UserID(c))
	if err != nil {
		return writeError(c, h.logger, err)
	}

	c.Location(strings.TrimSuffix(c.Path(), "/") + "/" + product.ID)
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct serves both PUT and PATCH; every body field is optional.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var patch models.ProductPatch
	if err := c.BodyParser(&patch); err != nil {
		return writeError(c, h.logger, invalidBody(err))
	}

	product, err := h.service.UpdateProduct(c.UserContext(), c.Params("id"), patch, middleware.UserID(c))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(product)
}

// HandleUpdateProductStatus changes only the status of a product.
func (h *ProductHandler) HandleUpdateProductStatus(c *fiber.Ctx) error {
	var req models.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, h.logger, invalidBody(err))
	}

	product, err := h.service.UpdateProductStatus(c.UserContext(), c.Params("id"), req, middleware.UserID(c))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(product)
}

// HandleDeleteProduct deletes a product by its ID.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.UserContext(), c.Params("id"), middleware.UserID(c)); err != nil {
		return writeError(c, h.logger, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func invalidBody(err error) *services.Error {
	return &services.Error{
		Kind:    services.KindValidation,
		Message: "Invalid request body",
		Details: map[string][]string{"body": {err.Error()}},
		Err:     err,
	}
}

// listInput reads paging and sorting parameters, plus filters when withFilter is set.
func listInput(c *fiber.Ctx, withFilter bool) (services.ListInput, error) {
	details := map[string][]string{}
	in := services.ListInput{
		Page:      queryInt(c, "page", services.DefaultPage, details),
		PageSize:  queryInt(c, "pageSize", services.DefaultPageSize, details),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	}

	if withFilter {
		in.Filter = repositories.ProductFilter{
			Query:    firstQuery(c, "query", "q"),
			Category: c.Query("category"),
			MinPrice: queryDecimal(c, "minPrice", details),
			MaxPrice: queryDecimal(c, "maxPrice", details),
		}
		if raw := c.Query("inStock"); raw != "" {
			inStock, err := strconv.ParseBool(raw)
			if err != nil {
				details["inStock"] = append(details["inStock"], "The inStock field must be true or false.")
			}
			in.Filter.InStock = inStock
		}
	}

	if len(details) > 0 {
		return services.ListInput{}, &services.Error{
			Kind:    services.KindValidation,
			Message: "Invalid query parameters",
			Details: details,
		}
	}
	return in, nil
}

func firstQuery(c *fiber.Ctx, keys ...string) string {
	for _, k := range keys {
		if v := c.Query(k); v != "" {
			return v
		}
	}
	return ""
}

func queryInt(c *fiber.Ctx, key string, def int, details map[string][]string) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		details[key] = append(details[key], fmt.Sprintf("The %s field must be an integer.", key))
		return def
	}
	return n
}

func queryDecimal(c *fiber.Ctx, key string, details map[string][]string) *decimal.Decimal {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		details[key] = append(details[key], fmt.Sprintf("The %s field must be a number.", key))
		return nil
	}
	return &d
}
