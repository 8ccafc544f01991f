package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"pix-storefront/internal/client"
	"pix-storefront/internal/clock"
	"pix-storefront/internal/config"
	"pix-storefront/internal/dto"
	"pix-storefront/internal/listing"
	"pix-storefront/internal/middleware"
	"pix-storefront/internal/model"
	"pix-storefront/internal/service"
	"pix-storefront/internal/view"
)

const ownerBase = "/enterprise/owner"

type AdminHandler struct {
	merchantService  service.MerchantService
	dashboardService service.DashboardService
	adminService     service.AdminService
	clock            clock.Clock
	cfg              *config.Admin
	secureCookie     bool
}

func NewAdminHandler(
	merchantService service.MerchantService,
	dashboardService service.DashboardService,
	adminService service.AdminService,
	clk clock.Clock,
	cfg *config.Admin,
	secureCookie bool,
) *AdminHandler {
	return &AdminHandler{
		merchantService:  merchantService,
		dashboardService: dashboardService,
		adminService:     adminService,
		clock:            clk,
		cfg:              cfg,
		secureCookie:     secureCookie,
	}
}

// ListData backs every console list page.
type ListData[T any] struct {
	Resource   string
	Base       string
	Query      listing.Query
	Rows       []T
	Pagination model.Pagination
	Pages      []listing.PageLink
	Statuses   []string
	// DebounceMs is the quiet window search.js waits before asking the API.
	DebounceMs int64
}

func newListData[T any](resource string, q listing.Query, page *model.Page[T], statuses []string, debounce time.Duration) *ListData[T] {
	base := ownerBase + "/" + resource
	return &ListData[T]{
		Resource:   resource,
		Base:       base,
		Query:      q,
		Rows:       page.Rows(),
		Pagination: page.Pagination,
		Pages:      q.Pages(base, page.Pagination.TotalPages),
		Statuses:   statuses,
		DebounceMs: debounce.Milliseconds(),
	}
}

var (
	userStatuses    = []string{"active", "inactive", "banned"}
	productStatuses = []string{"active", "inactive"}
	paymentStatuses = []string{"pending", "paid", "cancelled", "expired", "refunded"}
)

func (h *AdminHandler) token(c echo.Context) string {
	if sess := middleware.Session(c, model.SessionMerchant); sess != nil {
		return sess.Token
	}
	return ""
}

func (h *AdminHandler) query(c echo.Context) listing.Query {
	return listing.FromValues(c.QueryParams(), h.cfg.PageSize)
}

func (h *AdminHandler) LoginForm(c echo.Context) error {
	if middleware.Session(c, model.SessionMerchant) != nil {
		return c.Redirect(http.StatusSeeOther, ownerBase+"/dashboard")
	}
	p := newPage(c, "Painel do lojista")
	p.Form = &dto.LoginForm{Next: c.QueryParam("next")}
	return c.Render(http.StatusOK, "owner/login", p)
}

func (h *AdminHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()

	p := newPage(c, "Painel do lojista")
	form := &dto.LoginForm{}
	ok, err := bindForm(c, form, p)
	if err != nil {
		return err
	}
	if !ok {
		return c.Render(http.StatusUnprocessableEntity, "owner/login", p)
	}

	sess, err := h.merchantService.Login(ctx, form.Email, form.Password)
	if err != nil {
		if err := credentialsError(p, err); err != nil {
			return err
		}
		form.Password = ""
		return c.Render(http.StatusUnprocessableEntity, "owner/login", p)
	}

	middleware.SetSession(c, sess, h.secureCookie)
	return c.Redirect(http.StatusSeeOther, safeNext(form.Next, ownerBase+"/dashboard"))
}

func (h *AdminHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	if sess := middleware.Session(c, model.SessionMerchant); sess != nil {
		if err := h.merchantService.Logout(ctx, sess); err != nil {
			return err
		}
	}
	middleware.ClearSessionCookie(c, model.SessionMerchant)
	return c.Redirect(http.StatusSeeOther, middleware.LoginPath(model.SessionMerchant))
}

type DashboardData struct {
	*service.Dashboard
	Query   service.DashboardQuery
	Periods []int
}

func (h *AdminHandler) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()

	now := h.clock.Now()
	query := service.DashboardQuery{
		PeriodDays: 30,
		Limit:      10,
		Month:      strconv.Itoa(int(now.Month())),
		Year:       strconv.Itoa(now.Year()),
	}
	switch c.QueryParam("periodo") {
	case "7":
		query.PeriodDays = 7
	case "90":
		query.PeriodDays = 90
	}
	if n, err := strconv.Atoi(c.QueryParam("limite")); err == nil && n > 0 && n <= 50 {
		query.Limit = n
	}
	if m, err := strconv.Atoi(c.QueryParam("mes")); err == nil && m >= 1 && m <= 12 {
		query.Month = strconv.Itoa(m)
	}
	if y, err := strconv.Atoi(c.QueryParam("ano")); err == nil && y > 2000 {
		query.Year = strconv.Itoa(y)
	}

	dash, err := h.dashboardService.Load(ctx, h.token(c), query)
	if err != nil {
		return err
	}

	p := newPage(c, "Dashboard")
	p.Data = &DashboardData{Dashboard: dash, Query: query, Periods: []int{7, 30, 90}}
	return c.Render(http.StatusOK, "admin/dashboard", p)
}

func (h *AdminHandler) Users(c echo.Context) error {
	ctx := c.Request().Context()

	q := h.query(c)
	page, err := h.adminService.ListUsers(ctx, h.token(c), q)
	if err != nil {
		return err
	}

	p := newPage(c, "Usuários")
	p.Data = newListData(service.ResourceUsers, q, page, userStatuses, h.cfg.SearchDebounce)
	return c.Render(http.StatusOK, "admin/users", p)
}

func (h *AdminHandler) User(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.adminService.GetUser(ctx, h.token(c), id)
	if err != nil {
		return err
	}

	p := newPage(c, user.Username)
	p.Form = &dto.UserForm{
		Username: user.Username,
		Email:    user.Email,
		Status:   user.Status,
		Balance:  user.Balance.StringFixed(2),
	}
	p.Data = user
	return c.Render(http.StatusOK, "admin/user_detail", p)
}

func (h *AdminHandler) UpdateUser(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.adminService.GetUser(ctx, h.token(c), id)
	if err != nil {
		return err
	}

	p := newPage(c, user.Username)
	p.Data = user
	form := &dto.UserForm{}
	ok, err := bindForm(c, form, p)
	if err != nil {
		return err
	}
	if !ok {
		return c.Render(http.StatusUnprocessableEntity, "admin/user_detail", p)
	}
	update, err := form.Update(id)
	if err != nil {
		p.Errors = dto.FieldErrors{"balance": "Saldo inválido"}
		return c.Render(http.StatusUnprocessableEntity, "admin/user_detail", p)
	}

	if err := h.adminService.UpdateUser(ctx, h.token(c), update); err != nil {
		if err := inline(p, err); err != nil {
			return err
		}
		return c.Render(http.StatusUnprocessableEntity, "admin/user_detail", p)
	}
	return redirectWithFlash(c, ownerBase+"/users/"+strconv.FormatInt(id, 10), "Usuário atualizado")
}

func (h *AdminHandler) DeleteUser(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.adminService.DeleteUser(ctx, h.token(c), id); err != nil {
		if !client.IsBusiness(err) || client.IsUnauthorized(err) {
			return err
		}
		return redirectWithError(c, ownerBase+"/users", err)
	}
	return redirectWithFlash(c, ownerBase+"/users", "Usuário removido")
}

func (h *AdminHandler) Products(c echo.Context) error {
	ctx := c.Request().Context()

	q := h.query(c)
	page, err := h.adminService.ListProducts(ctx, h.token(c), q)
	if err != nil {
		return err
	}

	p := newPage(c, "Produtos")
	p.Data = newListData(service.ResourceProducts, q, page, productStatuses, h.cfg.SearchDebounce)
	return c.Render(http.StatusOK, "admin/products", p)
}

func (h *AdminHandler) Product(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	product, err := h.adminService.GetProduct(ctx, h.token(c), id)
	if err != nil {
		return err
	}

	p := newPage(c, product.Name)
	p.Data = product
	return c.Render(http.StatusOK, "admin/product_detail", p)
}

// ProductFormData tells the form template whether it creates or edits.
type ProductFormData struct {
	Action  string
	Product *model.ProductRow
	Types   []model.ProductType
}

func (h *AdminHandler) NewProduct(c echo.Context) error {
	p := newPage(c, "Novo produto")
	p.Form = &dto.ProductForm{Status: "active", Type: string(model.ProductEbook), DeliveryType: "download"}
	p.Data = &ProductFormData{Action: ownerBase + "/products", Types: productTypes}
	return c.Render(http.StatusOK, "admin/product_form", p)
}

func (h *AdminHandler) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()

	p := newPage(c, "Novo produto")
	p.Data = &ProductFormData{Action: ownerBase + "/products", Types: productTypes}
	form := &dto.ProductForm{}
	ok, err := bindForm(c, form, p)
	if err != nil {
		return err
	}
	if !ok {
		return c.Render(http.StatusUnprocessableEntity, "admin/product_form", p)
	}
	input, err := form.Input(0)
	if err != nil {
		p.Errors = dto.FieldErrors{"price": "Preço inválido"}
		return c.Render(http.StatusUnprocessableEntity, "admin/product_form", p)
	}

	id, err := h.adminService.CreateProduct(ctx, h.token(c), input)
	if err != nil {
		if err := inline(p, err); err != nil {
			return err
		}
		return c.Render(http.StatusUnprocessableEntity, "admin/product_form", p)
	}
	if id > 0 {
		return redirectWithFlash(c, ownerBase+"/products/"+strconv.FormatInt(id, 10), "Produto criado")
	}
	return redirectWithFlash(c, ownerBase+"/products", "Produto criado")
}

func (h *AdminHandler) EditProduct(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	product, err := h.adminService.GetProduct(ctx, h.token(c), id)
	if err != nil {
		return err
	}

	p := newPage(c, "Editar "+product.Name)
	p.Form = dto.ProductFormFrom(product)
	p.Data = &ProductFormData{Action: ownerBase + "/products/" + strconv.FormatInt(id, 10), Product: product, Types: productTypes}
	return c.Render(http.StatusOK, "admin/product_form", p)
}

func (h *AdminHandler) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	action := ownerBase + "/products/" + strconv.FormatInt(id, 10)

	p := newPage(c, "Editar produto")
	p.Data = &ProductFormData{Action: action, Types: productTypes}
	form := &dto.ProductForm{}
	ok, err := bindForm(c, form, p)
	if err != nil {
		return err
	}
	if !ok {
		return c.Render(http.StatusUnprocessableEntity, "admin/product_form", p)
	}
	input, err := form.Input(id)
	if err != nil {
		p.Errors = dto.FieldErrors{"price": "Preço inválido"}
		return c.Render(http.StatusUnprocessableEntity, "admin/product_form", p)
	}

	if err := h.adminService.UpdateProduct(ctx, h.token(c), input); err != nil {
		if err := inline(p, err); err != nil {
			return err
		}
		return c.Render(http.StatusUnprocessableEntity, "admin/product_form", p)
	}
	return redirectWithFlash(c, action, "Produto atualizado")
}

func (h *AdminHandler) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.adminService.DeleteProduct(ctx, h.token(c), id); err != nil {
		if !client.IsBusiness(err) || client.IsUnauthorized(err) {
			return err
		}
		return redirectWithError(c, ownerBase+"/products", err)
	}
	return redirectWithFlash(c, ownerBase+"/products", "Produto removido")
}

func (h *AdminHandler) Compras(c echo.Context) error {
	ctx := c.Request().Context()

	q := h.query(c)
	page, err := h.adminService.ListCompras(ctx, h.token(c), q)
	if err != nil {
		return err
	}

	p := newPage(c, "Compras")
	p.Data = newListData(service.ResourceCompras, q, page, paymentStatuses, h.cfg.SearchDebounce)
	return c.Render(http.StatusOK, "admin/compras", p)
}

func (h *AdminHandler) compraPage(c echo.Context, compra *model.Compra) *view.Page {
	p := newPage(c, "Compra "+compra.PurchaseCode)
	p.Form = &dto.CompraForm{
		PaymentStatus: compra.PaymentStatus,
		Status:        compra.Status,
		MaxDownloads:  strconv.Itoa(compra.MaxDownloads),
		Notes:         compra.Notes,
		Domain:        compra.Domain,
	}
	p.Data = compra
	return p
}

func (h *AdminHandler) Compra(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	compra, err := h.adminService.GetCompra(ctx, h.token(c), id)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "admin/compra_detail", h.compraPage(c, compra))
}

func (h *AdminHandler) UpdateCompra(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	compra, err := h.adminService.GetCompra(ctx, h.token(c), id)
	if err != nil {
		return err
	}

	p := h.compraPage(c, compra)
	form := &dto.CompraForm{}
	ok, err := bindForm(c, form, p)
	if err != nil {
		return err
	}
	if !ok {
		return c.Render(http.StatusUnprocessableEntity, "admin/compra_detail", p)
	}

	if err := h.adminService.UpdateCompra(ctx, h.token(c), form.Update(id)); err != nil {
		if err := inline(p, err); err != nil {
			return err
		}
		return c.Render(http.StatusUnprocessableEntity, "admin/compra_detail", p)
	}
	return redirectWithFlash(c, ownerBase+"/compras/"+strconv.FormatInt(id, 10), "Compra atualizada")
}

func (h *AdminHandler) Transactions(c echo.Context) error {
	ctx := c.Request().Context()

	q := h.query(c)
	page, err := h.adminService.ListTransactions(ctx, h.token(c), q)
	if err != nil {
		return err
	}

	p := newPage(c, "Transações")
	p.Data = newListData(service.ResourceTransactions, q, page, paymentStatuses, h.cfg.SearchDebounce)
	return c.Render(http.StatusOK, "admin/transactions", p)
}

func (h *AdminHandler) Transaction(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	tx, err := h.adminService.GetTransaction(ctx, h.token(c), id)
	if err != nil {
		return err
	}

	p := newPage(c, "Transação #"+strconv.FormatInt(id, 10))
	p.Data = tx
	return c.Render(http.StatusOK, "admin/transaction_detail", p)
}

// Search answers the search-as-you-type box. Only the last keystroke of a
// burst reaches the API; earlier requests get 204 and the page keeps the
// response with the highest seq.
func (h *AdminHandler) Search(c echo.Context) error {
	ctx := c.Request().Context()

	sess := middleware.Session(c, model.SessionMerchant)
	if sess == nil {
		return echo.ErrUnauthorized
	}

	res, err := h.adminService.LiveSearch(ctx, sess.ID, sess.Token, c.Param("resource"), h.query(c))
	switch {
	case errors.Is(err, listing.ErrSuperseded):
		return c.NoContent(http.StatusNoContent)
	case errors.Is(err, service.ErrUnknownResource):
		return echo.NewHTTPError(http.StatusNotFound, "unknown resource")
	case err != nil:
		return err
	}
	return c.JSON(http.StatusOK, res)
}
