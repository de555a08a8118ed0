package models

import (
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
)

// ErrCorruptAttributes marks a stored attribute blob that could not be decoded.
var ErrCorruptAttributes = errors.New("corrupt product attributes")

// EncodeAttributes serializes an attribute bag for storage. A nil map is
// stored as an empty object.
func EncodeAttributes(attrs map[string]string) datatypes.JSON {
	if attrs == nil {
		return datatypes.JSON("{}")
	}
	b, _ := json.Marshal(attrs) // map[string]string always marshals
	return datatypes.JSON(b)
}

// DecodeAttributes is the inverse of EncodeAttributes. Absent data decodes to
// an empty map; undecodable data decodes to an empty map and ErrCorruptAttributes.
func DecodeAttributes(raw datatypes.JSON) (map[string]string, error) {
	attrs := map[string]string{}
	if len(raw) == 0 || string(raw) == "null" {
		return attrs, nil
	}
	if err := json.Unmarshal(raw, &attrs); err != nil {
		return map[string]string{}, fmt.Errorf("%w: %v", ErrCorruptAttributes, err)
	}
	if attrs == nil {
		attrs = map[string]string{}
	}
	return attrs, nil
}

// NewProductResponse maps a stored product, images loaded, to its wire shape.
// The response is always usable; a non-nil error only reports degraded
// attribute data that was replaced by an empty map.
func NewProductResponse(p *Product) (ProductResponse, error) {
	attrs, err := DecodeAttributes(p.Attributes)

	images := make([]ProductImageDTO, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, ProductImageDTO{
			URL:     img.URL,
			Alt:     img.Alt,
			Primary: img.Primary,
		})
	}

	return ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		Category:      p.Category,
		StockQuantity: p.StockQuantity,
		SKU:           p.SKU,
		Images:        images,
		Attributes:    attrs,
		Status:        string(p.Status),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		CreatedBy:     p.CreatedBy,
		UpdatedBy:     p.UpdatedBy,
	}, err
}
