package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pix-storefront/internal/client"
	"pix-storefront/internal/clock"
	"pix-storefront/internal/config"
	"pix-storefront/internal/model"
	"pix-storefront/internal/repository"
	"pix-storefront/internal/session"
)

var epoch = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

type fakeStorefront struct {
	mu        sync.Mutex
	product   *model.Product
	search    model.ProductSearch
	create    func(productID int64, email string) (*model.PaymentData, error)
	check     func(txID string) (*model.PaymentStatus, error)
	checks    int
	purchases *model.PurchasesResult
	lookups   int
}

func (f *fakeStorefront) ListProducts(_ context.Context, search model.ProductSearch) (*model.ProductList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.search = search
	return &model.ProductList{}, nil
}

func (f *fakeStorefront) GetProduct(context.Context, string) (*model.Product, error) {
	return f.product, nil
}

func (f *fakeStorefront) CreatePayment(_ context.Context, productID int64, email, _ string) (*model.PaymentData, error) {
	return f.create(productID, email)
}

func (f *fakeStorefront) CheckPayment(_ context.Context, txID string) (*model.PaymentStatus, error) {
	f.mu.Lock()
	f.checks++
	f.mu.Unlock()
	return f.check(txID)
}

func (f *fakeStorefront) Checks() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.checks
}

func (f *fakeStorefront) UserPurchases(context.Context, string) (*model.PurchasesResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	return f.purchases, nil
}

func (f *fakeStorefront) DownloadURL(code string) string {
	return "https://api.example.com/api/download.php?purchase_code=" + code
}

type fakeAuth struct {
	login func(req *model.LoginRequest) (*model.AuthResponse, error)
	me    func(token string) (*model.User, error)
	meN   int
}

func (f *fakeAuth) Register(_ context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	return &model.AuthResponse{Token: "reg-token", ExpiresIn: 3600, User: model.User{ID: 2, Username: req.Username, Email: req.Email}}, nil
}

func (f *fakeAuth) Login(_ context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	return f.login(req)
}

func (f *fakeAuth) Me(_ context.Context, token string) (*model.User, error) {
	f.meN++
	return f.me(token)
}

func (f *fakeAuth) UpdateProfile(_ context.Context, _ string, update *model.ProfileUpdate) (*model.User, error) {
	return &model.User{ID: 1, Username: update.Username}, nil
}

// fakeEnterprise implements only what a test sets; other methods panic.
type fakeEnterprise struct {
	client.EnterpriseClient

	mu        sync.Mutex
	login     *model.AdminLoginResponse
	logoutErr error
	logouts   int
	verifyErr error
	stats     func() (*model.DashboardResponse, error)
	period    func() (*model.SalesByPeriodResponse, error)
	ranking   func() (*model.ProductRankingResponse, error)
	topUsers  func() (*model.TopUsersResponse, error)
	financial func() (*model.FinancialReportResponse, error)
	users     func(params model.ListParams) (*model.Page[model.UserRow], error)
	userCalls int
	getUser   func(id int64) (*model.UserRow, error)
}

func (f *fakeEnterprise) Login(context.Context, string, string) (*model.AdminLoginResponse, error) {
	return f.login, nil
}

func (f *fakeEnterprise) Verify(context.Context, string) (*model.AdminUser, error) {
	return &model.AdminUser{MerchantID: 1}, f.verifyErr
}

func (f *fakeEnterprise) Logout(context.Context, string) error {
	f.logouts++
	return f.logoutErr
}

func (f *fakeEnterprise) DashboardStats(context.Context, string) (*model.DashboardResponse, error) {
	return f.stats()
}

func (f *fakeEnterprise) SalesByPeriod(context.Context, string, int) (*model.SalesByPeriodResponse, error) {
	return f.period()
}

func (f *fakeEnterprise) ProductRanking(context.Context, string, int) (*model.ProductRankingResponse, error) {
	return f.ranking()
}

func (f *fakeEnterprise) TopUsers(context.Context, string, int) (*model.TopUsersResponse, error) {
	return f.topUsers()
}

func (f *fakeEnterprise) FinancialReport(context.Context, string, string, string) (*model.FinancialReportResponse, error) {
	return f.financial()
}

func (f *fakeEnterprise) ListUsers(_ context.Context, _ string, params model.ListParams) (*model.Page[model.UserRow], error) {
	f.mu.Lock()
	f.userCalls++
	f.mu.Unlock()
	return f.users(params)
}

func (f *fakeEnterprise) UserCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.userCalls
}

func (f *fakeEnterprise) GetUser(_ context.Context, _ string, id int64) (*model.UserRow, error) {
	return f.getUser(id)
}

func newTestStore(t *testing.T, clk clock.Clock) *session.Store {
	t.Helper()
	db, err := client.InitSessionDB(&config.Session{Driver: "sqlite", DatabaseURL: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	cfg := &config.Session{TTL: 24 * time.Hour, VerifyInterval: 5 * time.Minute}
	return session.NewStore(repository.NewSessionRepository(db), cfg, clk, zap.NewNop())
}

func unauthorized() error {
	return &client.RequestError{Op: "test", StatusCode: 401, Err: client.ErrUnauthorized}
}
