package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"pix-storefront/internal/config"
	"pix-storefront/internal/model"
)

// EnterpriseClient is the merchant console API. Every method except Login
// takes the merchant bearer token.
type EnterpriseClient interface {
	Login(ctx context.Context, email, password string) (*model.AdminLoginResponse, error)
	Verify(ctx context.Context, token string) (*model.AdminUser, error)
	Logout(ctx context.Context, token string) error

	DashboardStats(ctx context.Context, token string) (*model.DashboardResponse, error)
	SalesByPeriod(ctx context.Context, token string, days int) (*model.SalesByPeriodResponse, error)
	ProductRanking(ctx context.Context, token string, limit int) (*model.ProductRankingResponse, error)
	TopUsers(ctx context.Context, token string, limit int) (*model.TopUsersResponse, error)
	FinancialReport(ctx context.Context, token, month, year string) (*model.FinancialReportResponse, error)

	ListUsers(ctx context.Context, token string, params model.ListParams) (*model.Page[model.UserRow], error)
	GetUser(ctx context.Context, token string, id int64) (*model.UserRow, error)
	UpdateUser(ctx context.Context, token string, update *model.UserUpdate) error
	DeleteUser(ctx context.Context, token string, id int64) error

	ListProducts(ctx context.Context, token string, params model.ListParams) (*model.Page[model.ProductRow], error)
	GetProduct(ctx context.Context, token string, id int64) (*model.ProductRow, error)
	CreateProduct(ctx context.Context, token string, input *model.ProductInput) (int64, error)
	UpdateProduct(ctx context.Context, token string, input *model.ProductInput) error
	DeleteProduct(ctx context.Context, token string, id int64) error

	ListCompras(ctx context.Context, token string, params model.ListParams) (*model.Page[model.Compra], error)
	GetCompra(ctx context.Context, token string, id int64) (*model.Compra, error)
	UpdateCompra(ctx context.Context, token string, update *model.CompraUpdate) error

	// Transactions are the compras endpoints rendered as a payment ledger.
	ListTransactions(ctx context.Context, token string, params model.ListParams) (*model.Page[model.Compra], error)
	GetTransaction(ctx context.Context, token string, id int64) (*model.Compra, error)
}

type enterpriseClientImpl struct {
	api *apiClient
}

func NewEnterpriseClient(cfg *config.Enterprise) (EnterpriseClient, error) {
	api, err := newAPIClient(cfg.BaseApiURL, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	return &enterpriseClientImpl{api: api}, nil
}

func action(name string) url.Values {
	return url.Values{"action": {name}}
}

func actionID(name string, id int64) url.Values {
	return url.Values{"action": {name}, "id": {strconv.FormatInt(id, 10)}}
}

func (c *enterpriseClientImpl) Login(ctx context.Context, email, password string) (*model.AdminLoginResponse, error) {
	body := map[string]string{"email": email, "password": password}

	var res model.AdminLoginResponse
	if err := c.api.call(ctx, "admin login", http.MethodPost, "/auth.php", action("login"), "", body, &res); err != nil {
		return nil, err
	}
	if res.Token == "" {
		return nil, newBusinessError("admin login", http.StatusOK, "login response without token", nil)
	}
	return &res, nil
}

func (c *enterpriseClientImpl) Verify(ctx context.Context, token string) (*model.AdminUser, error) {
	var res model.AdminVerifyResponse
	if err := c.api.call(ctx, "admin verify", http.MethodGet, "/auth.php", action("verify"), token, nil, &res); err != nil {
		return nil, err
	}
	return &res.User, nil
}

func (c *enterpriseClientImpl) Logout(ctx context.Context, token string) error {
	var res model.Result
	return c.api.call(ctx, "admin logout", http.MethodPost, "/auth.php", action("logout"), token, nil, &res)
}

func (c *enterpriseClientImpl) DashboardStats(ctx context.Context, token string) (*model.DashboardResponse, error) {
	var res model.DashboardResponse
	if err := c.api.call(ctx, "dashboard stats", http.MethodGet, "/dashboard.php", action("stats"), token, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *enterpriseClientImpl) SalesByPeriod(ctx context.Context, token string, days int) (*model.SalesByPeriodResponse, error) {
	if days <= 0 {
		days = 30
	}
	q := action("vendas")
	q.Set("periodo", strconv.Itoa(days))

	var res model.SalesByPeriodResponse
	if err := c.api.call(ctx, "sales by period", http.MethodGet, "/dashboard.php", q, token, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *enterpriseClientImpl) ProductRanking(ctx context.Context, token string, limit int) (*model.ProductRankingResponse, error) {
	if limit <= 0 {
		limit = 10
	}
	q := action("ranking_produtos")
	q.Set("limite", strconv.Itoa(limit))

	var res model.ProductRankingResponse
	if err := c.api.call(ctx, "product ranking", http.MethodGet, "/dashboard.php", q, token, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *enterpriseClientImpl) TopUsers(ctx context.Context, token string, limit int) (*model.TopUsersResponse, error) {
	if limit <= 0 {
		limit = 10
	}
	q := action("top_usuarios")
	q.Set("limite", strconv.Itoa(limit))

	var res model.TopUsersResponse
	if err := c.api.call(ctx, "top users", http.MethodGet, "/dashboard.php", q, token, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *enterpriseClientImpl) FinancialReport(ctx context.Context, token, month, year string) (*model.FinancialReportResponse, error) {
	q := action("relatorio_financeiro")
	if month != "" {
		q.Set("mes", month)
	}
	if year != "" {
		q.Set("ano", year)
	}

	var res model.FinancialReportResponse
	if err := c.api.call(ctx, "financial report", http.MethodGet, "/dashboard.php", q, token, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *enterpriseClientImpl) ListUsers(ctx context.Context, token string, params model.ListParams) (*model.Page[model.UserRow], error) {
	var res model.Page[model.UserRow]
	if err := c.api.call(ctx, "list users", http.MethodGet, "/users.php", params.Values(), token, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *enterpriseClientImpl) GetUser(ctx context.Context, token string, id int64) (*model.UserRow, error) {
	var res model.UserDetailResponse
	if err := c.api.call(ctx, "get user", http.MethodGet, "/users.php", actionID("get", id), token, nil, &res); err != nil {
		return nil, err
	}
	return &res.User, nil
}

func (c *enterpriseClientImpl) UpdateUser(ctx context.Context, token string, update *model.UserUpdate) error {
	var res model.Result
	return c.api.call(ctx, "update user", http.MethodPut, "/users.php", action("update"), token, update, &res)
}

func (c *enterpriseClientImpl) DeleteUser(ctx context.Context, token string, id int64) error {
	var res model.Result
	return c.api.call(ctx, "delete user", http.MethodDelete, "/users.php", actionID("delete", id), token, nil, &res)
}

func (c *enterpriseClientImpl) ListProducts(ctx context.Context, token string, params model.ListParams) (*model.Page[model.ProductRow], error) {
	var res model.Page[model.ProductRow]
	if err := c.api.call(ctx, "list products", http.MethodGet, "/products.php", params.Values(), token, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *enterpriseClientImpl) GetProduct(ctx context.Context, token string, id int64) (*model.ProductRow, error) {
	var res model.ProductDetailResponse
	if err := c.api.call(ctx, "get product", http.MethodGet, "/products.php", actionID("get", id), token, nil, &res); err != nil {
		return nil, err
	}
	return &res.Product, nil
}

func (c *enterpriseClientImpl) CreateProduct(ctx context.Context, token string, input *model.ProductInput) (int64, error) {
	var res model.CreateProductResponse
	if err := c.api.call(ctx, "create product", http.MethodPost, "/products.php", action("create"), token, input, &res); err != nil {
		return 0, err
	}
	return res.ProductID, nil
}

func (c *enterpriseClientImpl) UpdateProduct(ctx context.Context, token string, input *model.ProductInput) error {
	var res model.Result
	return c.api.call(ctx, "update product", http.MethodPut, "/products.php", action("update"), token, input, &res)
}

func (c *enterpriseClientImpl) DeleteProduct(ctx context.Context, token string, id int64) error {
	var res model.Result
	return c.api.call(ctx, "delete product", http.MethodDelete, "/products.php", actionID("delete", id), token, nil, &res)
}

func (c *enterpriseClientImpl) ListCompras(ctx context.Context, token string, params model.ListParams) (*model.Page[model.Compra], error) {
	var res model.Page[model.Compra]
	if err := c.api.call(ctx, "list compras", http.MethodGet, "/compras.php", params.Values(), token, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *enterpriseClientImpl) GetCompra(ctx context.Context, token string, id int64) (*model.Compra, error) {
	var res model.CompraDetailResponse
	if err := c.api.call(ctx, "get compra", http.MethodGet, "/compras.php", actionID("get", id), token, nil, &res); err != nil {
		return nil, err
	}
	return &res.Compra, nil
}

func (c *enterpriseClientImpl) UpdateCompra(ctx context.Context, token string, update *model.CompraUpdate) error {
	var res model.Result
	return c.api.call(ctx, "update compra", http.MethodPut, "/compras.php", action("update"), token, update, &res)
}

func (c *enterpriseClientImpl) ListTransactions(ctx context.Context, token string, params model.ListParams) (*model.Page[model.Compra], error) {
	return c.ListCompras(ctx, token, params)
}

func (c *enterpriseClientImpl) GetTransaction(ctx context.Context, token string, id int64) (*model.Compra, error) {
	return c.GetCompra(ctx, token, id)
}
