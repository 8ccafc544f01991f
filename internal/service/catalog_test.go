package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pix-storefront/internal/dto"
	"pix-storefront/internal/model"
)

func TestCatalogQueryMapping(t *testing.T) {
	sf := &fakeStorefront{}
	svc := NewCatalogService(sf, dto.NewValidator())

	_, err := svc.ListProducts(context.Background(), CatalogQuery{Search: " bot ", Type: "curso", Sort: "price_desc", Page: 3})
	require.NoError(t, err)
	assert.Equal(t, "bot", sf.search.Search)
	assert.Equal(t, "active", sf.search.Status)
	assert.Equal(t, DefaultCatalogPageSize, sf.search.Limit)
	assert.Equal(t, 2*DefaultCatalogPageSize, sf.search.Offset)
	assert.Equal(t, "price", sf.search.OrderBy)
	assert.Equal(t, "DESC", sf.search.OrderDir)

	_, err = svc.ListProducts(context.Background(), CatalogQuery{Sort: "bogus", Page: -1})
	require.NoError(t, err)
	assert.Empty(t, sf.search.OrderBy)
	assert.Zero(t, sf.search.Offset)
}

func TestCatalogProductNotFound(t *testing.T) {
	svc := NewCatalogService(&fakeStorefront{}, dto.NewValidator())
	_, err := svc.GetProduct(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrProductNotFound)

	svc = NewCatalogService(&fakeStorefront{product: &model.Product{ID: 1, Name: "X"}}, dto.NewValidator())
	p, err := svc.GetProduct(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "X", p.Name)
}

func TestCatalogPurchasesValidatesEmail(t *testing.T) {
	sf := &fakeStorefront{purchases: &model.PurchasesResult{
		Purchases: []model.Purchase{{PurchaseCode: "A"}, {PurchaseCode: "B", CanDownload: true}},
		Count:     2,
	}}
	svc := NewCatalogService(sf, dto.NewValidator())

	_, err := svc.Purchases(context.Background(), "not-an-email")
	assert.ErrorIs(t, err, ErrInvalidEmail)
	assert.Equal(t, 0, sf.lookups)

	res, err := svc.Purchases(context.Background(), " ana@example.com ")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)

	p, err := svc.Purchase(context.Background(), "ana@example.com", "B")
	require.NoError(t, err)
	assert.True(t, p.CanDownload)

	_, err = svc.Purchase(context.Background(), "ana@example.com", "Z")
	assert.ErrorIs(t, err, ErrNotFound)
}
