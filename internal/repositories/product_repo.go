package repositories

import (
	"context"
	"errors"
	"strings"

	"catalog/internal/models"

	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound = errors.New("product not found")
	// ErrDuplicateSKU is returned when the store's unique index on sku rejects a write.
	ErrDuplicateSKU = errors.New("sku already exists")
)

// SortField is a product field listings may be ordered by.
type SortField string

const (
	SortByName          SortField = "Name"
	SortByPrice         SortField = "Price"
	SortByCategory      SortField = "Category"
	SortByStockQuantity SortField = "StockQuantity"
	SortByCreatedAt     SortField = "CreatedAt"
	SortByUpdatedAt     SortField = "UpdatedAt"
)

// SortFields is the listing allow-list in display order.
var SortFields = []SortField{
	SortByName, SortByPrice, SortByCategory, SortByStockQuantity, SortByCreatedAt, SortByUpdatedAt,
}

// ParseSortField matches s against the allow-list ignoring case.
func ParseSortField(s string) (SortField, bool) {
	for _, f := range SortFields {
		if strings.EqualFold(s, string(f)) {
			return f, true
		}
	}
	return "", false
}

// Column is the storage column backing the field.
func (f SortField) Column() string {
	switch f {
	case SortByPrice:
		return "price"
	case SortByCategory:
		return "category"
	case SortByStockQuantity:
		return "stock_quantity"
	case SortByCreatedAt:
		return "created_at"
	case SortByUpdatedAt:
		return "updated_at"
	default:
		return "name"
	}
}

// ProductFilter narrows a listing. Zero values match everything.
type ProductFilter struct {
	Query    string // substring of name or description, case-insensitive
	Category string // exact category, case-insensitive
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	InStock  bool
}

// ListQuery is a validated listing request. Page is 1-based.
type ListQuery struct {
	Page       int
	PageSize   int
	SortBy     SortField
	Descending bool
	Filter     ProductFilter
}

func (q ListQuery) offset() int { return (q.Page - 1) * q.PageSize }

// ProductRepository defines the interface for product data access.
// Every write is all-or-nothing, including the image replacement on Update.
type ProductRepository interface {
	// List returns one page plus the size of the whole filtered set.
	List(ctx context.Context, q ListQuery) ([]models.Product, int64, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	ExistsBySKU(ctx context.Context, sku string) (bool, error)
	Create(ctx context.Context, product *models.Product) error
	// Update persists every scalar field. With replaceImages the stored images
	// are deleted and product.Images inserted in their place.
	Update(ctx context.Context, product *models.Product, replaceImages bool) error
	Delete(ctx context.Context, id string) error
	// Source names the storage backend for response metadata.
	Source() string
	Ping(ctx context.Context) error
}
