package service

import (
	"context"
	"fmt"
	"strings"

	"pix-storefront/internal/client"
	"pix-storefront/internal/dto"
	"pix-storefront/internal/model"
)

const DefaultCatalogPageSize = 12

// CatalogQuery is the storefront search bar state.
type CatalogQuery struct {
	Search  string
	Type    string
	Sort    string // newest, price_asc, price_desc, name
	Page    int
	PerPage int
}

var catalogSorts = map[string][2]string{
	"newest":     {"created_at", "DESC"},
	"price_asc":  {"price", "ASC"},
	"price_desc": {"price", "DESC"},
	"name":       {"name", "ASC"},
}

func (q CatalogQuery) search() model.ProductSearch {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage <= 0 {
		q.PerPage = DefaultCatalogPageSize
	}
	s := model.ProductSearch{
		Search: strings.TrimSpace(q.Search),
		Type:   q.Type,
		Status: "active",
		Limit:  q.PerPage,
		Offset: (q.Page - 1) * q.PerPage,
	}
	if order, ok := catalogSorts[q.Sort]; ok {
		s.OrderBy, s.OrderDir = order[0], order[1]
	}
	return s
}

type CatalogService interface {
	ListProducts(ctx context.Context, query CatalogQuery) (*model.ProductList, error)
	GetProduct(ctx context.Context, idOrSlug string) (*model.Product, error)
	Purchases(ctx context.Context, email string) (*model.PurchasesResult, error)
	// Purchase finds one of the buyer's purchases by its code.
	Purchase(ctx context.Context, email, purchaseCode string) (*model.Purchase, error)
	DownloadURL(purchaseCode string) string
}

type catalogServiceImpl struct {
	storefront client.StorefrontClient
	validator  *dto.Validator
}

func NewCatalogService(
	storefront client.StorefrontClient,
	validator *dto.Validator,
) CatalogService {
	return &catalogServiceImpl{
		storefront: storefront,
		validator:  validator,
	}
}

func (s *catalogServiceImpl) ListProducts(ctx context.Context, query CatalogQuery) (*model.ProductList, error) {
	list, err := s.storefront.ListProducts(ctx, query.search())
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return list, nil
}

func (s *catalogServiceImpl) GetProduct(ctx context.Context, idOrSlug string) (*model.Product, error) {
	product, err := s.storefront.GetProduct(ctx, idOrSlug)
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", idOrSlug, err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

func (s *catalogServiceImpl) Purchases(ctx context.Context, email string) (*model.PurchasesResult, error) {
	email = strings.TrimSpace(email)
	if !s.validator.Email(email) {
		return nil, ErrInvalidEmail
	}
	result, err := s.storefront.UserPurchases(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("user purchases: %w", err)
	}
	return result, nil
}

func (s *catalogServiceImpl) Purchase(ctx context.Context, email, purchaseCode string) (*model.Purchase, error) {
	result, err := s.Purchases(ctx, email)
	if err != nil {
		return nil, err
	}
	for i := range result.Purchases {
		if result.Purchases[i].PurchaseCode == purchaseCode {
			return &result.Purchases[i], nil
		}
	}
	return nil, ErrNotFound
}

func (s *catalogServiceImpl) DownloadURL(purchaseCode string) string {
	return s.storefront.DownloadURL(purchaseCode)
}
