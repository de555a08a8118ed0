package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"catalog/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

func TestParseProductStatus(t *testing.T) {
	for in, want := range map[string]models.ProductStatus{
		"ACTIVE":        models.StatusActive,
		"inactive":      models.StatusInactive,
		" Discontinued": models.StatusDiscontinued,
	} {
		got, ok := models.ParseProductStatus(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got)
	}

	_, ok := models.ParseProductStatus("ARCHIVED")
	assert.False(t, ok)
	_, ok = models.ParseProductStatus("")
	assert.False(t, ok)
}

func TestProductPatch_Mask(t *testing.T) {
	price := decimal.RequireFromString("9.99")

	tests := []struct {
		name  string
		patch models.ProductPatch
		has   []models.PatchField
		not   []models.PatchField
	}{
		{
			name: "nothing provided",
			not:  []models.PatchField{models.PatchName, models.PatchPrice, models.PatchImages, models.PatchAttributes},
		},
		{
			name:  "empty strings are ignored",
			patch: models.ProductPatch{Name: strPtr(""), Description: strPtr(""), Category: strPtr(""), SKU: strPtr("")},
			not:   []models.PatchField{models.PatchName, models.PatchDescription, models.PatchCategory, models.PatchSKU},
		},
		{
			name:  "zero stock counts",
			patch: models.ProductPatch{StockQuantity: intPtr(0)},
			has:   []models.PatchField{models.PatchStockQuantity},
			not:   []models.PatchField{models.PatchName, models.PatchPrice},
		},
		{
			name:  "empty collections count",
			patch: models.ProductPatch{Images: []models.ProductImageDTO{}, Attributes: map[string]string{}},
			has:   []models.PatchField{models.PatchImages, models.PatchAttributes},
		},
		{
			name:  "values provided",
			patch: models.ProductPatch{Name: strPtr("New"), Price: &price, SKU: strPtr("SKU-2")},
			has:   []models.PatchField{models.PatchName, models.PatchPrice, models.PatchSKU},
			not:   []models.PatchField{models.PatchCategory, models.PatchImages},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mask := tt.patch.Mask()
			for _, f := range tt.has {
				assert.True(t, mask.Has(f), "expected field %d", f)
			}
			for _, f := range tt.not {
				assert.False(t, mask.Has(f), "unexpected field %d", f)
			}
			if len(tt.has) == 0 {
				assert.Zero(t, mask)
			}
		})
	}
}

func TestProductPatch_JSONNullIsAbsent(t *testing.T) {
	var patch models.ProductPatch
	require.NoError(t, json.Unmarshal([]byte(`{"name":null,"price":null,"images":null,"attributes":null,"stockQuantity":0}`), &patch))

	mask := patch.Mask()
	assert.False(t, mask.Has(models.PatchName))
	assert.False(t, mask.Has(models.PatchPrice))
	assert.False(t, mask.Has(models.PatchImages))
	assert.False(t, mask.Has(models.PatchAttributes))
	assert.True(t, mask.Has(models.PatchStockQuantity))
}

func TestAttributes(t *testing.T) {
	raw := models.EncodeAttributes(map[string]string{"color": "red"})
	attrs, err := models.DecodeAttributes(raw)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"color": "red"}, attrs)

	assert.Equal(t, datatypes.JSON("{}"), models.EncodeAttributes(nil))

	for _, empty := range []datatypes.JSON{nil, datatypes.JSON("null"), datatypes.JSON("{}")} {
		attrs, err := models.DecodeAttributes(empty)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{}, attrs)
	}

	attrs, err = models.DecodeAttributes(datatypes.JSON("{broken"))
	assert.ErrorIs(t, err, models.ErrCorruptAttributes)
	assert.Equal(t, map[string]string{}, attrs)
}

func TestNewProductResponse(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	p := &models.Product{
		ID:            "id-1",
		Name:          "Desk",
		Price:         decimal.RequireFromString("120.50"),
		Category:      "Furniture",
		StockQuantity: 2,
		SKU:           "DESK-1",
		Images: []models.ProductImage{
			{ID: "a", Position: 0, URL: "https://img/1.png", Alt: "front", Primary: true},
			{ID: "b", Position: 1, Alt: "back"},
		},
		Attributes: datatypes.JSON(`{"wood":"oak"}`),
		Status:     models.StatusDiscontinued,
		CreatedAt:  created,
		UpdatedAt:  created.Add(time.Hour),
		CreatedBy:  "alice",
		UpdatedBy:  "bob",
	}

	resp, err := models.NewProductResponse(p)
	require.NoError(t, err)
	assert.Equal(t, "DISCONTINUED", resp.Status)
	assert.Equal(t, []models.ProductImageDTO{
		{URL: "https://img/1.png", Alt: "front", Primary: true},
		{Alt: "back"},
	}, resp.Images)
	assert.Equal(t, map[string]string{"wood": "oak"}, resp.Attributes)

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"price":120.5`)
	assert.Contains(t, string(body), `"stockQuantity":2`)

	p.Attributes = datatypes.JSON("[1,2]")
	resp, err = models.NewProductResponse(p)
	assert.ErrorIs(t, err, models.ErrCorruptAttributes)
	assert.Empty(t, resp.Attributes)
	assert.Equal(t, "Desk", resp.Name)
}
