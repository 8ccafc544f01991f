package service

import (
	"context"
	"fmt"

	"pix-storefront/internal/client"
	"pix-storefront/internal/clock"
	"pix-storefront/internal/config"
	"pix-storefront/internal/listing"
	"pix-storefront/internal/model"
)

// Live search resources of the merchant console.
const (
	ResourceUsers        = "users"
	ResourceProducts     = "products"
	ResourceCompras      = "compras"
	ResourceTransactions = "transactions"
)

type AdminService interface {
	ListUsers(ctx context.Context, token string, q listing.Query) (*model.Page[model.UserRow], error)
	GetUser(ctx context.Context, token string, id int64) (*model.UserRow, error)
	UpdateUser(ctx context.Context, token string, update *model.UserUpdate) error
	DeleteUser(ctx context.Context, token string, id int64) error

	ListProducts(ctx context.Context, token string, q listing.Query) (*model.Page[model.ProductRow], error)
	GetProduct(ctx context.Context, token string, id int64) (*model.ProductRow, error)
	CreateProduct(ctx context.Context, token string, input *model.ProductInput) (int64, error)
	UpdateProduct(ctx context.Context, token string, input *model.ProductInput) error
	DeleteProduct(ctx context.Context, token string, id int64) error

	ListCompras(ctx context.Context, token string, q listing.Query) (*model.Page[model.Compra], error)
	GetCompra(ctx context.Context, token string, id int64) (*model.Compra, error)
	UpdateCompra(ctx context.Context, token string, update *model.CompraUpdate) error

	ListTransactions(ctx context.Context, token string, q listing.Query) (*model.Page[model.Compra], error)
	GetTransaction(ctx context.Context, token string, id int64) (*model.Compra, error)

	// LiveSearch debounces the search-as-you-type requests of one session.
	// Superseded calls fail with listing.ErrSuperseded.
	LiveSearch(ctx context.Context, sessionID, token, resource string, q listing.Query) (listing.Result[any], error)
}

type adminServiceImpl struct {
	enterprise client.EnterpriseClient
	search     *listing.Coalescer[any]
}

func NewAdminService(
	enterprise client.EnterpriseClient,
	clk clock.Clock,
	cfg *config.Admin,
) AdminService {
	return &adminServiceImpl{
		enterprise: enterprise,
		search:     listing.NewCoalescer[any](clk, cfg.SearchDebounce),
	}
}

// notFound turns an API rejection of a single-record lookup into ErrNotFound.
func notFound(op string, err error) error {
	if client.IsBusiness(err) {
		return fmt.Errorf("%s: %w: %v", op, ErrNotFound, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *adminServiceImpl) ListUsers(ctx context.Context, token string, q listing.Query) (*model.Page[model.UserRow], error) {
	return s.enterprise.ListUsers(ctx, token, q.Params())
}

func (s *adminServiceImpl) GetUser(ctx context.Context, token string, id int64) (*model.UserRow, error) {
	user, err := s.enterprise.GetUser(ctx, token, id)
	if err != nil {
		return nil, notFound("get user", err)
	}
	return user, nil
}

func (s *adminServiceImpl) UpdateUser(ctx context.Context, token string, update *model.UserUpdate) error {
	return s.enterprise.UpdateUser(ctx, token, update)
}

func (s *adminServiceImpl) DeleteUser(ctx context.Context, token string, id int64) error {
	return s.enterprise.DeleteUser(ctx, token, id)
}

func (s *adminServiceImpl) ListProducts(ctx context.Context, token string, q listing.Query) (*model.Page[model.ProductRow], error) {
	return s.enterprise.ListProducts(ctx, token, q.Params())
}

func (s *adminServiceImpl) GetProduct(ctx context.Context, token string, id int64) (*model.ProductRow, error) {
	product, err := s.enterprise.GetProduct(ctx, token, id)
	if err != nil {
		return nil, notFound("get product", err)
	}
	return product, nil
}

func (s *adminServiceImpl) CreateProduct(ctx context.Context, token string, input *model.ProductInput) (int64, error) {
	input.ID = 0
	return s.enterprise.CreateProduct(ctx, token, input)
}

func (s *adminServiceImpl) UpdateProduct(ctx context.Context, token string, input *model.ProductInput) error {
	return s.enterprise.UpdateProduct(ctx, token, input)
}

func (s *adminServiceImpl) DeleteProduct(ctx context.Context, token string, id int64) error {
	return s.enterprise.DeleteProduct(ctx, token, id)
}

func (s *adminServiceImpl) ListCompras(ctx context.Context, token string, q listing.Query) (*model.Page[model.Compra], error) {
	return s.enterprise.ListCompras(ctx, token, q.Params())
}

func (s *adminServiceImpl) GetCompra(ctx context.Context, token string, id int64) (*model.Compra, error) {
	compra, err := s.enterprise.GetCompra(ctx, token, id)
	if err != nil {
		return nil, notFound("get compra", err)
	}
	return compra, nil
}

func (s *adminServiceImpl) UpdateCompra(ctx context.Context, token string, update *model.CompraUpdate) error {
	return s.enterprise.UpdateCompra(ctx, token, update)
}

func (s *adminServiceImpl) ListTransactions(ctx context.Context, token string, q listing.Query) (*model.Page[model.Compra], error) {
	return s.enterprise.ListTransactions(ctx, token, q.Params())
}

func (s *adminServiceImpl) GetTransaction(ctx context.Context, token string, id int64) (*model.Compra, error) {
	tx, err := s.enterprise.GetTransaction(ctx, token, id)
	if err != nil {
		return nil, notFound("get transaction", err)
	}
	return tx, nil
}

func (s *adminServiceImpl) LiveSearch(ctx context.Context, sessionID, token, resource string, q listing.Query) (listing.Result[any], error) {
	var fetch func(context.Context) (any, error)
	switch resource {
	case ResourceUsers:
		fetch = func(ctx context.Context) (any, error) { return s.ListUsers(ctx, token, q) }
	case ResourceProducts:
		fetch = func(ctx context.Context) (any, error) { return s.ListProducts(ctx, token, q) }
	case ResourceCompras:
		fetch = func(ctx context.Context) (any, error) { return s.ListCompras(ctx, token, q) }
	case ResourceTransactions:
		fetch = func(ctx context.Context) (any, error) { return s.ListTransactions(ctx, token, q) }
	default:
		return listing.Result[any]{}, ErrUnknownResource
	}
	return s.search.Do(ctx, sessionID+":"+resource, fetch)
}
