package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"

	"catalog/internal/models"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
// The sku index is checked under the write lock, so uniqueness holds under
// concurrent writers. Products are copied on the way in and out.
type MemoryProductRepository struct {
	products map[string]models.Product
	skus     map[string]string // sku -> product id
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[string]models.Product),
		skus:     make(map[string]string),
	}
}

func cloneProduct(p models.Product) models.Product {
	if p.Images != nil {
		p.Images = append([]models.ProductImage(nil), p.Images...)
	}
	if p.Attributes != nil {
		p.Attributes = append(p.Attributes[:0:0], p.Attributes...)
	}
	return p
}

func matches(p *models.Product, f ProductFilter) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.Description), q) {
			return false
		}
	}
	if c := strings.TrimSpace(f.Category); c != "" && !strings.EqualFold(p.Category, c) {
		return false
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	if f.InStock && p.StockQuantity <= 0 {
		return false
	}
	return true
}

// compareBy orders a and b on field alone: negative, zero or positive.
func compareBy(field SortField, a, b *models.Product) int {
	switch field {
	case SortByPrice:
		return a.Price.Cmp(b.Price)
	case SortByCategory:
		return strings.Compare(a.Category, b.Category)
	case SortByStockQuantity:
		return a.StockQuantity - b.StockQuantity
	case SortByCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	case SortByUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	default:
		return strings.Compare(a.Name, b.Name)
	}
}

// List returns a page of the filtered, sorted products.
func (r *MemoryProductRepository) List(ctx context.Context, q ListQuery) ([]models.Product, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if matches(&p, q.Filter) {
			matched = append(matched, p)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		c := compareBy(q.SortBy, &matched[i], &matched[j])
		if q.Descending {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		return matched[i].ID < matched[j].ID
	})

	total := int64(len(matched))
	start := q.offset()
	if start < 0 || start >= len(matched) {
		return []models.Product{}, total, nil
	}
	end := start + q.PageSize
	if end > len(matched) {
		end = len(matched)
	}

	page := make([]models.Product, 0, end-start)
	for _, p := range matched[start:end] {
		page = append(page, cloneProduct(p))
	}
	return page, total, nil
}

// GetByID returns a product by its ID.
func (r *MemoryProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	product = cloneProduct(product)
	return &product, nil
}

func (r *MemoryProductRepository) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.skus[sku]
	return ok, nil
}

// Create adds a new product.
func (r *MemoryProductRepository) Create(ctx context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.skus[product.SKU]; ok {
		return ErrDuplicateSKU
	}
	for i := range product.Images {
		product.Images[i].ProductID = product.ID
	}
	r.products[product.ID] = cloneProduct(*product)
	r.skus[product.SKU] = product.ID
	return nil
}

// Update modifies an existing product.
func (r *MemoryProductRepository) Update(ctx context.Context, product *models.Product, replaceImages bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.products[product.ID]
	if !ok {
		return ErrProductNotFound
	}
	if owner, taken := r.skus[product.SKU]; taken && owner != product.ID {
		return ErrDuplicateSKU
	}

	updated := cloneProduct(*product)
	updated.CreatedAt = stored.CreatedAt
	updated.CreatedBy = stored.CreatedBy
	if replaceImages {
		for i := range updated.Images {
			updated.Images[i].ProductID = product.ID
		}
	} else {
		updated.Images = stored.Images
	}

	delete(r.skus, stored.SKU)
	r.skus[updated.SKU] = updated.ID
	r.products[updated.ID] = updated
	return nil
}

// Delete removes a product by its ID; its images go with it.
func (r *MemoryProductRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return ErrProductNotFound
	}
	delete(r.skus, product.SKU)
	delete(r.products, id)
	return nil
}

func (r *MemoryProductRepository) Source() string { return "memory" }

func (r *MemoryProductRepository) Ping(ctx context.Context) error { return nil }
