package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"catalog/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
// The db must be opened with TranslateError so unique violations surface
// as gorm.ErrDuplicatedKey.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

func orderedImages(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func applyFilter(tx *gorm.DB, f ProductFilter) *gorm.DB {
	if q := strings.TrimSpace(f.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", like, like)
	}
	if c := strings.TrimSpace(f.Category); c != "" {
		tx = tx.Where("LOWER(category) = ?", strings.ToLower(c))
	}
	if f.MinPrice != nil {
		tx = tx.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		tx = tx.Where("price <= ?", *f.MaxPrice)
	}
	if f.InStock {
		tx = tx.Where("stock_quantity > ?", 0)
	}
	return tx
}

// List counts the filtered set, then fetches the requested page ordered by
// the sort column with id as tie-breaker.
func (r *GORMProductRepository) List(ctx context.Context, q ListQuery) ([]models.Product, int64, error) {
	var total int64
	tx := applyFilter(r.db.WithContext(ctx).Model(&models.Product{}), q.Filter)
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	products := make([]models.Product, 0, q.PageSize)
	err := applyFilter(r.db.WithContext(ctx).Model(&models.Product{}), q.Filter).
		Order(clause.OrderByColumn{Column: clause.Column{Name: q.SortBy.Column()}, Desc: q.Descending}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}}).
		Offset(q.offset()).
		Limit(q.PageSize).
		Preload("Images", orderedImages).
		Find(&products).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

// GetByID retrieves a single product with its images.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Preload("Images", orderedImages).First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// ExistsBySKU reports whether any product already uses sku.
func (r *GORMProductRepository) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Where("sku = ?", sku).Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to check sku %s: %w", sku, err)
	}
	return n > 0, nil
}

// Create inserts the product and its images in one transaction.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(product).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateSKU
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update writes all scalar fields and, when asked, swaps the image set.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product, replaceImages bool) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Product{}).Where("id = ?", product.ID).Updates(map[string]interface{}{
			"name":           product.Name,
			"description":    product.Description,
			"price":          product.Price,
			"category":       product.Category,
			"stock_quantity": product.StockQuantity,
			"sku":            product.SKU,
			"attributes":     product.Attributes,
			"status":         product.Status,
			"updated_at":     product.UpdatedAt,
			"updated_by":     product.UpdatedBy,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrProductNotFound
		}
		if !replaceImages {
			return nil
		}

		if err := tx.Where("product_id = ?", product.ID).Delete(&models.ProductImage{}).Error; err != nil {
			return err
		}
		if len(product.Images) == 0 {
			return nil
		}
		for i := range product.Images {
			product.Images[i].ProductID = product.ID
		}
		return tx.Create(&product.Images).Error
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrProductNotFound):
		return ErrProductNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateSKU
	default:
		return fmt.Errorf("failed to update product %s: %w", product.ID, err)
	}
}

// Delete removes the product and every image it owns.
func (r *GORMProductRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductImage{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Product{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrProductNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	return nil
}

// Source is the dialect name, e.g. "sqlite" or "postgres".
func (r *GORMProductRepository) Source() string {
	return r.db.Dialector.Name()
}

func (r *GORMProductRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
