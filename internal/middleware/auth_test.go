package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pix-storefront/internal/client"
	"pix-storefront/internal/clock"
	"pix-storefront/internal/config"
	"pix-storefront/internal/model"
	"pix-storefront/internal/repository"
	"pix-storefront/internal/session"
)

func newStore(t *testing.T, clk clock.Clock) *session.Store {
	t.Helper()
	db, err := client.InitSessionDB(&config.Session{Driver: "sqlite", DatabaseURL: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return session.NewStore(repository.NewSessionRepository(db), &config.Session{TTL: time.Hour, VerifyInterval: time.Hour}, clk, zap.NewNop())
}

func protectedEcho(store *session.Store, kind model.SessionKind) *echo.Echo {
	e := echo.New()
	g := e.Group("", LoadSession(store, kind, zap.NewNop()), RequireSession(kind))
	g.GET("/perfil", func(c echo.Context) error {
		return c.String(http.StatusOK, Session(c, kind).Token)
	})
	g.GET("/enterprise/owner/api/users", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return e
}

func TestRequireSessionRedirectsToLogin(t *testing.T) {
	e := protectedEcho(newStore(t, clock.New()), model.SessionBuyer)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/perfil?tab=1", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?next=%2Fperfil%3Ftab%3D1", rec.Header().Get(echo.HeaderLocation))
}

func TestRequireSessionJSONGets401(t *testing.T) {
	e := protectedEcho(newStore(t, clock.New()), model.SessionMerchant)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/enterprise/owner/api/users", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoadSessionFromCookie(t *testing.T) {
	store := newStore(t, clock.New())
	sess, err := store.Create(context.Background(), model.SessionBuyer, "buyer-token", nil, nil)
	require.NoError(t, err)
	e := protectedEcho(store, model.SessionBuyer)

	req := httptest.NewRequest(http.MethodGet, "/perfil", nil)
	req.AddCookie(&http.Cookie{Name: BuyerCookie, Value: sess.ID})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "buyer-token", rec.Body.String())
}

func TestExpiredSessionClearsCookie(t *testing.T) {
	clk := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	store := newStore(t, clk)
	sess, err := store.Create(context.Background(), model.SessionBuyer, "buyer-token", nil, nil)
	require.NoError(t, err)
	clk.Advance(2 * time.Hour)
	e := protectedEcho(store, model.SessionBuyer)

	req := httptest.NewRequest(http.MethodGet, "/perfil", nil)
	req.AddCookie(&http.Cookie{Name: BuyerCookie, Value: sess.ID})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, BuyerCookie, cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestMerchantCookieIgnoredForBuyer(t *testing.T) {
	store := newStore(t, clock.New())
	sess, err := store.Create(context.Background(), model.SessionMerchant, "owner-token", nil, nil)
	require.NoError(t, err)
	e := protectedEcho(store, model.SessionBuyer)

	req := httptest.NewRequest(http.MethodGet, "/perfil", nil)
	req.AddCookie(&http.Cookie{Name: BuyerCookie, Value: sess.ID})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestLoginRedirect(t *testing.T) {
	assert.Equal(t, "/enterprise/owner/login", LoginRedirect(model.SessionMerchant, ""))
	assert.Equal(t, "/login", LoginRedirect(model.SessionBuyer, "/login"))
	assert.Equal(t, "/enterprise/owner/login?next=%2Fenterprise%2Fowner%2Fusers", LoginRedirect(model.SessionMerchant, "/enterprise/owner/users"))
}
