package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductImageDTO is the wire shape of an image, used for both input and output.
type ProductImageDTO struct {
	URL     string `json:"url"`
	Alt     string `json:"alt"`
	Primary bool   `json:"primary"`
}

// CreateProductRequest is the body of POST /products.
type CreateProductRequest struct {
	Name          string            `json:"name" validate:"notblank,max=100"`
	Description   string            `json:"description" validate:"max=500"`
	Price         decimal.Decimal   `json:"price" validate:"required,gte=0.01"`
	Category      string            `json:"category" validate:"notblank,max=50"`
	StockQuantity int               `json:"stockQuantity" validate:"gte=0"`
	SKU           string            `json:"sku" validate:"notblank,max=50"`
	Images        []ProductImageDTO `json:"images"`
	Attributes    map[string]string `json:"attributes"`
}

// ProductPatch is the body of PUT and PATCH /products/{id}. Every field is
// optional; Mask reports which ones the caller actually provided.
type ProductPatch struct {
	Name          *string           `json:"name" validate:"omitempty,max=100"`
	Description   *string           `json:"description" validate:"omitempty,max=500"`
	Price         *decimal.Decimal  `json:"price" validate:"omitempty,gte=0.01"`
	Category      *string           `json:"category" validate:"omitempty,max=50"`
	StockQuantity *int              `json:"stockQuantity" validate:"omitempty,gte=0"`
	SKU           *string           `json:"sku" validate:"omitempty,max=50"`
	Images        []ProductImageDTO `json:"images"`
	Attributes    map[string]string `json:"attributes"`
}

// UpdateStatusRequest is the body of PATCH /products/{id}/status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=ACTIVE INACTIVE DISCONTINUED"`
}

// ProductResponse is the wire representation of a product.
type ProductResponse struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	Price         decimal.Decimal   `json:"price"`
	Category      string            `json:"category"`
	StockQuantity int               `json:"stockQuantity"`
	SKU           string            `json:"sku"`
	Images        []ProductImageDTO `json:"images"`
	Attributes    map[string]string `json:"attributes"`
	Status        string            `json:"status"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
	CreatedBy     string            `json:"createdBy"`
	UpdatedBy     string            `json:"updatedBy"`
}

type PaginationInfo struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalCount int64 `json:"totalCount"`
	TotalPages int   `json:"totalPages"`
}

// ResponseMetadata describes where a listing came from. Nothing is cached.
type ResponseMetadata struct {
	Cached   bool   `json:"cached"`
	CacheAge string `json:"cacheAge"`
	Source   string `json:"source"`
}

// PaginatedResponse is the envelope of every listing endpoint.
type PaginatedResponse struct {
	Data       []ProductResponse `json:"data"`
	Pagination PaginationInfo    `json:"pagination"`
	Metadata   ResponseMetadata  `json:"metadata"`
}
