package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"pix-storefront/internal/dto"
	"pix-storefront/internal/model"
	"pix-storefront/internal/service"
)

const SupportWhatsApp = "5511953059801"

type StorefrontHandler struct {
	catalogService service.CatalogService
}

func NewStorefrontHandler(catalogService service.CatalogService) *StorefrontHandler {
	return &StorefrontHandler{
		catalogService: catalogService,
	}
}

type CatalogData struct {
	Query   service.CatalogQuery
	List    *model.ProductList
	Types   []model.ProductType
	PrevURL string
	NextURL string
}

var productTypes = []model.ProductType{
	model.ProductEbook, model.ProductCourse, model.ProductSoftware, model.ProductSubscription, model.ProductOther,
}

func (h *StorefrontHandler) Catalog(c echo.Context) error {
	ctx := c.Request().Context()

	page, _ := strconv.Atoi(c.QueryParam("page"))
	query := service.CatalogQuery{
		Search: c.QueryParam("search"),
		Type:   c.QueryParam("type"),
		Sort:   c.QueryParam("sort"),
		Page:   page,
	}
	if query.Page < 1 {
		query.Page = 1
	}

	list, err := h.catalogService.ListProducts(ctx, query)
	if err != nil {
		return err
	}

	data := &CatalogData{Query: query, List: list, Types: productTypes}
	if query.Page > 1 {
		data.PrevURL = catalogURL(query, query.Page-1)
	}
	if list.Pagination.HasNext {
		data.NextURL = catalogURL(query, query.Page+1)
	}

	p := newPage(c, "Produtos digitais")
	p.Data = data
	return c.Render(http.StatusOK, "storefront/catalog", p)
}

func catalogURL(q service.CatalogQuery, page int) string {
	v := url.Values{}
	for k, val := range map[string]string{"search": q.Search, "type": q.Type, "sort": q.Sort} {
		if val != "" {
			v.Set(k, val)
		}
	}
	if page > 1 {
		v.Set("page", strconv.Itoa(page))
	}
	if len(v) == 0 {
		return "/"
	}
	return "/?" + v.Encode()
}

func (h *StorefrontHandler) Product(c echo.Context) error {
	ctx := c.Request().Context()

	product, err := h.catalogService.GetProduct(ctx, c.Param("idOrSlug"))
	if err != nil {
		return err
	}

	p := newPage(c, product.Name)
	p.Data = product
	return c.Render(http.StatusOK, "storefront/product", p)
}

type SuccessData struct {
	PurchaseCode string
	DownloadURL  string
	Purchase     *model.Purchase
}

// Success is reached after a paid checkout. Details are only looked up when
// the buyer is logged in; the purchase code alone is enough to download.
func (h *StorefrontHandler) Success(c echo.Context) error {
	ctx := c.Request().Context()

	code := c.QueryParam("purchase_code")
	p := newPage(c, "Pagamento confirmado")
	if code == "" {
		p.Error = "Código de compra não encontrado"
		return c.Render(http.StatusNotFound, "storefront/success", p)
	}

	data := &SuccessData{PurchaseCode: code, DownloadURL: "/download/" + url.PathEscape(code)}
	if p.Buyer != nil && p.Buyer.Email != "" {
		purchase, err := h.catalogService.Purchase(ctx, p.Buyer.Email, code)
		if err == nil {
			data.Purchase = purchase
		}
	}

	p.Data = data
	return c.Render(http.StatusOK, "storefront/success", p)
}

func (h *StorefrontHandler) Download(c echo.Context) error {
	code := c.Param("purchaseCode")
	if code == "" {
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	}
	return c.Redirect(http.StatusFound, h.catalogService.DownloadURL(code))
}

type PurchasesData struct {
	Email  string
	Result *model.PurchasesResult
}

func (h *StorefrontHandler) Purchases(c echo.Context) error {
	ctx := c.Request().Context()

	p := newPage(c, "Meus produtos")
	form := &dto.PurchasesLookupForm{Email: c.QueryParam("email")}
	if form.Email == "" && p.Buyer != nil {
		form.Email = p.Buyer.Email
	}
	p.Form = form
	data := &PurchasesData{Email: form.Email}
	p.Data = data

	if form.Email == "" {
		return c.Render(http.StatusOK, "storefront/purchases", p)
	}

	result, err := h.catalogService.Purchases(ctx, form.Email)
	switch {
	case errors.Is(err, service.ErrInvalidEmail):
		p.Errors = dto.FieldErrors{"email": "Email inválido"}
	case err != nil:
		if err := inline(p, err); err != nil {
			return err
		}
	default:
		data.Result = result
	}
	return c.Render(http.StatusOK, "storefront/purchases", p)
}

type SupportData struct {
	WhatsAppURL string
}

func (h *StorefrontHandler) Support(c echo.Context) error {
	p := newPage(c, "Suporte")
	p.Data = &SupportData{WhatsAppURL: "https://wa.me/" + SupportWhatsApp}
	return c.Render(http.StatusOK, "storefront/support", p)
}
