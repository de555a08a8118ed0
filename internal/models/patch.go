package models

// PatchField identifies one mergeable field of a product.
type PatchField uint16

const (
	PatchName PatchField = 1 << iota
	PatchDescription
	PatchPrice
	PatchCategory
	PatchStockQuantity
	PatchSKU
	PatchImages
	PatchAttributes
)

// PatchMask is the set of fields a ProductPatch will change.
type PatchMask uint16

// Has reports whether f is in the mask.
func (m PatchMask) Has(f PatchField) bool { return m&PatchMask(f) != 0 }

// Mask resolves which fields are provided.
//
// Strings count only when present and non-empty: a caller cannot clear
// name, description, category or sku through an update. Numbers count
// whenever present, zero included. Images and attributes count whenever
// present, an empty list or map included. JSON null means absent for all.
func (p ProductPatch) Mask() PatchMask {
	var m PatchMask
	if p.Name != nil && *p.Name != "" {
		m |= PatchMask(PatchName)
	}
	if p.Description != nil && *p.Description != "" {
		m |= PatchMask(PatchDescription)
	}
	if p.Price != nil {
		m |= PatchMask(PatchPrice)
	}
	if p.Category != nil && *p.Category != "" {
		m |= PatchMask(PatchCategory)
	}
	if p.StockQuantity != nil {
		m |= PatchMask(PatchStockQuantity)
	}
	if p.SKU != nil && *p.SKU != "" {
		m |= PatchMask(PatchSKU)
	}
	if p.Images != nil {
		m |= PatchMask(PatchImages)
	}
	if p.Attributes != nil {
		m |= PatchMask(PatchAttributes)
	}
	return m
}
