package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/pkg/rabbitmq"

	"github.com/google/uuid"
)

// DefaultActor is recorded when a request does not name its user.
const DefaultActor = "system"

// Paging limits for listings.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// EventPublisher receives a notification after every committed mutation.
type EventPublisher interface {
	PublishProductEvent(ctx context.Context, event rabbitmq.ProductEvent) error
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo   repositories.ProductRepository
	events EventPublisher
	logger *slog.Logger
}

// NewProductService creates a new ProductService. events may be nil, in
// which case nothing is published.
func NewProductService(repo repositories.ProductRepository, events EventPublisher, logger *slog.Logger) *ProductService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProductService{
		repo:   repo,
		events: events,
		logger: logger,
	}
}

// ListInput carries raw listing parameters. Page and PageSize must already
// hold their defaults when the caller did not send them.
type ListInput struct {
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
	Filter    repositories.ProductFilter
}

func (in ListInput) query() (repositories.ListQuery, *Error) {
	details := map[string][]string{}
	if in.Page < 1 {
		details["page"] = append(details["page"], "The page field must be at least 1.")
	}
	if in.PageSize < 1 || in.PageSize > MaxPageSize {
		details["pageSize"] = append(details["pageSize"], fmt.Sprintf("The pageSize field must be between 1 and %d.", MaxPageSize))
	}

	sortBy := repositories.SortByName
	if s := strings.TrimSpace(in.SortBy); s != "" {
		f, ok := repositories.ParseSortField(s)
		if !ok {
			allowed := make([]string, 0, len(repositories.SortFields))
			for _, f := range repositories.SortFields {
				allowed = append(allowed, string(f))
			}
			details["sortBy"] = append(details["sortBy"],
				fmt.Sprintf("Invalid sort field '%s'. Allowed values: %s.", s, strings.Join(allowed, ", ")))
		}
		sortBy = f
	}

	f := in.Filter
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		details["minPrice"] = append(details["minPrice"], "The minPrice field must not exceed maxPrice.")
	}
	if f.MinPrice != nil && f.MinPrice.IsNegative() {
		details["minPrice"] = append(details["minPrice"], "The minPrice field must be at least 0.")
	}

	if len(details) > 0 {
		return repositories.ListQuery{}, validationError("Invalid query parameters", details)
	}
	return repositories.ListQuery{
		Page:       in.Page,
		PageSize:   in.PageSize,
		SortBy:     sortBy,
		Descending: strings.EqualFold(strings.TrimSpace(in.SortOrder), "desc"),
		Filter:     f,
	}, nil
}

// ListProducts returns one page of products with pagination metadata.
func (s *ProductService) ListProducts(ctx context.Context, in ListInput) (*models.PaginatedResponse, error) {
	q, verr := in.query()
	if verr != nil {
		return nil, verr
	}

	products, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, internalError(err)
	}

	data := make([]models.ProductResponse, 0, len(products))
	for i := range products {
		data = append(data, s.toResponse(&products[i]))
	}

	return &models.PaginatedResponse{
		Data: data,
		Pagination: models.PaginationInfo{
			Page:       q.Page,
			PageSize:   q.PageSize,
			TotalCount: total,
			TotalPages: int((total + int64(q.PageSize) - 1) / int64(q.PageSize)),
		},
		Metadata: models.ResponseMetadata{
			Cached:   false,
			CacheAge: "",
			Source:   s.repo.Source(),
		},
	}, nil
}

// GetProduct retrieves a single product by its ID.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.ProductResponse, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(p)
	return &resp, nil
}

// CreateProduct creates a new product owned by actor.
func (s *ProductService) CreateProduct(ctx context.Context, req models.CreateProductRequest, actor string) (*models.ProductResponse, error) {
	if verr := validateStruct(req); verr != nil {
		return nil, verr
	}
	actor = actorOrDefault(actor)

	exists, err := s.repo.ExistsBySKU(ctx, req.SKU)
	if err != nil {
		return nil, internalError(err)
	}
	if exists {
		return nil, duplicateSKUError(req.SKU)
	}

	now := timestamp()
	product := &models.Product{
		ID:            uuid.New().String(),
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		Category:      req.Category,
		StockQuantity: req.StockQuantity,
		SKU:           req.SKU,
		Images:        newImages(req.Images),
		Attributes:    models.EncodeAttributes(req.Attributes),
		Status:        models.StatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
		CreatedBy:     actor,
		UpdatedBy:     actor,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		if errors.Is(err, repositories.ErrDuplicateSKU) {
			return nil, duplicateSKUError(req.SKU)
		}
		return nil, internalError(err)
	}

	s.logger.InfoContext(ctx, "product created", "product_id", product.ID, "sku", product.SKU, "user_id", actor)
	s.publish(ctx, rabbitmq.EventProductCreated, product, actor)

	resp := s.toResponse(product)
	return &resp, nil
}

// UpdateProduct merges patch into the stored product. PUT and PATCH share it.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, patch models.ProductPatch, actor string) (*models.ProductResponse, error) {
	if verr := validateStruct(patch); verr != nil {
		return nil, verr
	}
	actor = actorOrDefault(actor)

	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	mask := patch.Mask()
	if mask.Has(models.PatchSKU) && *patch.SKU != product.SKU {
		exists, err := s.repo.ExistsBySKU(ctx, *patch.SKU)
		if err != nil {
			return nil, internalError(err)
		}
		if exists {
			return nil, duplicateSKUError(*patch.SKU)
		}
	}

	applyPatch(product, patch, mask)
	product.UpdatedAt = laterOf(timestamp(), product.CreatedAt)
	product.UpdatedBy = actor

	if err := s.repo.Update(ctx, product, mask.Has(models.PatchImages)); err != nil {
		return nil, s.mutationError(err, product)
	}

	s.logger.InfoContext(ctx, "product updated", "product_id", product.ID, "sku", product.SKU, "user_id", actor)
	s.publish(ctx, rabbitmq.EventProductUpdated, product, actor)

	resp := s.toResponse(product)
	return &resp, nil
}

// UpdateProductStatus sets the status unconditionally; any state may move to any other.
func (s *ProductService) UpdateProductStatus(ctx context.Context, id string, req models.UpdateStatusRequest, actor string) (*models.ProductResponse, error) {
	req.Status = strings.ToUpper(strings.TrimSpace(req.Status))
	if verr := validateStruct(req); verr != nil {
		return nil, verr
	}
	status, _ := models.ParseProductStatus(req.Status)
	actor = actorOrDefault(actor)

	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Status = status
	product.UpdatedAt = laterOf(timestamp(), product.CreatedAt)
	product.UpdatedBy = actor

	if err := s.repo.Update(ctx, product, false); err != nil {
		return nil, s.mutationError(err, product)
	}

	s.logger.InfoContext(ctx, "product status changed", "product_id", product.ID, "status", status, "user_id", actor)
	s.publish(ctx, rabbitmq.EventProductStatusChanged, product, actor)

	resp := s.toResponse(product)
	return &resp, nil
}

// DeleteProduct removes a product and its images.
func (s *ProductService) DeleteProduct(ctx context.Context, id string, actor string) error {
	actor = actorOrDefault(actor)

	product, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, product.ID); err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return notFoundError(id)
		}
		return internalError(err)
	}

	s.logger.InfoContext(ctx, "product deleted", "product_id", product.ID, "sku", product.SKU, "user_id", actor)
	s.publish(ctx, rabbitmq.EventProductDeleted, product, actor)
	return nil
}

// Ping checks that the product store is reachable.
func (s *ProductService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// EventsEnabled reports whether mutations are published anywhere.
func (s *ProductService) EventsEnabled() bool {
	return s.events != nil
}

// load fetches a product, treating ids that are not UUIDs as unknown.
func (s *ProductService) load(ctx context.Context, id string) (*models.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, notFoundError(id)
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return nil, notFoundError(id)
		}
		return nil, internalError(err)
	}
	return p, nil
}

func (s *ProductService) mutationError(err error, p *models.Product) *Error {
	switch {
	case errors.Is(err, repositories.ErrDuplicateSKU):
		return duplicateSKUError(p.SKU)
	case errors.Is(err, repositories.ErrProductNotFound):
		return notFoundError(p.ID)
	default:
		return internalError(err)
	}
}

func (s *ProductService) toResponse(p *models.Product) models.ProductResponse {
	resp, err := models.NewProductResponse(p)
	if err != nil {
		s.logger.Warn("stored attributes could not be decoded", "product_id", p.ID, "error", err)
	}
	return resp
}

func (s *ProductService) publish(ctx context.Context, eventType string, p *models.Product, actor string) {
	if s.events == nil {
		return
	}
	event := rabbitmq.ProductEvent{
		Type:       eventType,
		ProductID:  p.ID,
		SKU:        p.SKU,
		Status:     string(p.Status),
		Actor:      actor,
		OccurredAt: p.UpdatedAt,
	}
	if err := s.events.PublishProductEvent(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish product event", "type", eventType, "product_id", p.ID, "error", err)
	}
}

// applyPatch copies every masked field of patch onto p.
func applyPatch(p *models.Product, patch models.ProductPatch, mask models.PatchMask) {
	if mask.Has(models.PatchName) {
		p.Name = *patch.Name
	}
	if mask.Has(models.PatchDescription) {
		p.Description = *patch.Description
	}
	if mask.Has(models.PatchPrice) {
		p.Price = *patch.Price
	}
	if mask.Has(models.PatchCategory) {
		p.Category = *patch.Category
	}
	if mask.Has(models.PatchStockQuantity) {
		p.StockQuantity = *patch.StockQuantity
	}
	if mask.Has(models.PatchSKU) {
		p.SKU = *patch.SKU
	}
	if mask.Has(models.PatchAttributes) {
		p.Attributes = models.EncodeAttributes(patch.Attributes)
	}
	if mask.Has(models.PatchImages) {
		p.Images = newImages(patch.Images)
	}
}

// newImages builds fresh child records in the order given.
func newImages(dtos []models.ProductImageDTO) []models.ProductImage {
	images := make([]models.ProductImage, 0, len(dtos))
	for i, dto := range dtos {
		images = append(images, models.ProductImage{
			ID:       uuid.New().String(),
			Position: i,
			URL:      dto.URL,
			Alt:      dto.Alt,
			Primary:  dto.Primary,
		})
	}
	return images
}

func actorOrDefault(actor string) string {
	if a := strings.TrimSpace(actor); a != "" {
		return a
	}
	return DefaultActor
}

// timestamp is the current time at the precision every store keeps.
func timestamp() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func laterOf(a, b time.Time) time.Time {
	if a.Before(b) {
		return b
	}
	return a
}
