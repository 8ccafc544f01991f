package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"pix-storefront/internal/dto"
	"pix-storefront/internal/listing"
	"pix-storefront/internal/model"
	"pix-storefront/internal/payment"
	"pix-storefront/internal/service"
	"pix-storefront/internal/session"
	"pix-storefront/internal/view"
)

var epoch = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

// recordingRenderer keeps the last rendered page instead of executing templates.
type recordingRenderer struct {
	name string
	page *view.Page
}

func (r *recordingRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	r.name = name
	r.page, _ = data.(*view.Page)
	_, err := io.WriteString(w, name)
	return err
}

func newEcho(r echo.Renderer) *echo.Echo {
	e := echo.New()
	e.Renderer = r
	e.Validator = dto.NewValidator()
	return e
}

// withSession puts sess on the context as LoadSession would.
func withSession(sess *model.Session) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if sess != nil {
				c.Set("session_"+string(sess.Kind), sess)
			}
			return next(c)
		}
	}
}

func buyerSession() *model.Session {
	return &model.Session{ID: "sess-1", Kind: model.SessionBuyer, Token: "buyer-token",
		Profile: `{"id":1,"username":"ana","email":"ana@example.com","balance":"0"}`}
}

func merchantSession() *model.Session {
	return &model.Session{ID: "sess-2", Kind: model.SessionMerchant, Token: "owner-token",
		Profile: `{"id":9,"name":"Loja","email":"owner@example.com"}`}
}

func serve(e *echo.Echo, method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

type fakeCatalog struct {
	products  map[string]*model.Product
	list      *model.ProductList
	query     service.CatalogQuery
	purchases func(email string) (*model.PurchasesResult, error)
	purchase  *model.Purchase
}

func (f *fakeCatalog) ListProducts(_ context.Context, q service.CatalogQuery) (*model.ProductList, error) {
	f.query = q
	if f.list == nil {
		return &model.ProductList{}, nil
	}
	return f.list, nil
}

func (f *fakeCatalog) GetProduct(_ context.Context, idOrSlug string) (*model.Product, error) {
	if p, ok := f.products[idOrSlug]; ok {
		return p, nil
	}
	return nil, service.ErrProductNotFound
}

func (f *fakeCatalog) Purchases(_ context.Context, email string) (*model.PurchasesResult, error) {
	return f.purchases(email)
}

func (f *fakeCatalog) Purchase(_ context.Context, _, code string) (*model.Purchase, error) {
	if f.purchase != nil && f.purchase.PurchaseCode == code {
		return f.purchase, nil
	}
	return nil, service.ErrNotFound
}

func (f *fakeCatalog) DownloadURL(code string) string {
	return "https://api.example.com/api/download.php?purchase_code=" + url.QueryEscape(code)
}

type fakeCheckout struct {
	start     func(productID int64, email string) (payment.Snapshot, error)
	status    func(txID string) (payment.Snapshot, error)
	retry     func(txID string) (int64, error)
	abandoned []string
	active    int
}

func (f *fakeCheckout) Start(_ context.Context, productID int64, email string) (payment.Snapshot, error) {
	return f.start(productID, email)
}

func (f *fakeCheckout) Status(_ context.Context, txID string) (payment.Snapshot, error) {
	return f.status(txID)
}

func (f *fakeCheckout) Abandon(txID string) bool {
	f.abandoned = append(f.abandoned, txID)
	return true
}

func (f *fakeCheckout) Retry(txID string) (int64, error) {
	return f.retry(txID)
}

func (f *fakeCheckout) Active() int { return f.active }

func (f *fakeCheckout) Shutdown() {}

type fakeAccount struct {
	login     func(req *model.LoginRequest) (*model.Session, error)
	register  func(req *model.RegisterRequest) (*model.Session, error)
	update    func(update *model.ProfileUpdate) (*model.User, error)
	loggedOut []string
}

func (f *fakeAccount) Register(_ context.Context, req *model.RegisterRequest) (*model.Session, error) {
	return f.register(req)
}

func (f *fakeAccount) Login(_ context.Context, req *model.LoginRequest) (*model.Session, error) {
	return f.login(req)
}

func (f *fakeAccount) Profile(sess *model.Session) (*model.User, error) {
	return session.DecodeProfile[model.User](sess)
}

func (f *fakeAccount) UpdateProfile(_ context.Context, _ *model.Session, update *model.ProfileUpdate) (*model.User, error) {
	return f.update(update)
}

func (f *fakeAccount) Logout(_ context.Context, sess *model.Session) error {
	f.loggedOut = append(f.loggedOut, sess.ID)
	return nil
}

type fakeMerchant struct {
	login     func(email, password string) (*model.Session, error)
	loggedOut []string
}

func (f *fakeMerchant) Login(_ context.Context, email, password string) (*model.Session, error) {
	return f.login(email, password)
}

func (f *fakeMerchant) Merchant(*model.Session) (*model.Merchant, error) {
	return &model.Merchant{ID: 9, Name: "Loja"}, nil
}

func (f *fakeMerchant) Logout(_ context.Context, sess *model.Session) error {
	f.loggedOut = append(f.loggedOut, sess.ID)
	return nil
}

type fakeDashboard struct {
	query service.DashboardQuery
	token string
	err   error
}

func (f *fakeDashboard) Load(_ context.Context, token string, q service.DashboardQuery) (*service.Dashboard, error) {
	f.query, f.token = q, token
	if f.err != nil {
		return nil, f.err
	}
	return &service.Dashboard{}, nil
}

// fakeAdmin overrides the calls the tests make; anything else panics on the
// nil embedded interface.
type fakeAdmin struct {
	service.AdminService

	query     listing.Query
	users     *model.Page[model.UserRow]
	product   *model.ProductRow
	created   *model.ProductInput
	updated   *model.ProductInput
	deleteErr error
	deleted   []int64
	search    func(resource string, q listing.Query) (listing.Result[any], error)
}

func (f *fakeAdmin) ListUsers(_ context.Context, _ string, q listing.Query) (*model.Page[model.UserRow], error) {
	f.query = q
	return f.users, nil
}

func (f *fakeAdmin) GetProduct(_ context.Context, _ string, id int64) (*model.ProductRow, error) {
	if f.product == nil || f.product.ID != id {
		return nil, service.ErrNotFound
	}
	return f.product, nil
}

func (f *fakeAdmin) CreateProduct(_ context.Context, _ string, input *model.ProductInput) (int64, error) {
	f.created = input
	return 77, nil
}

func (f *fakeAdmin) UpdateProduct(_ context.Context, _ string, input *model.ProductInput) error {
	f.updated = input
	return nil
}

func (f *fakeAdmin) DeleteProduct(_ context.Context, _ string, id int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAdmin) LiveSearch(_ context.Context, _, _, resource string, q listing.Query) (listing.Result[any], error) {
	return f.search(resource, q)
}
