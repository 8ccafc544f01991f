package middleware

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"pix-storefront/internal/model"
	"pix-storefront/internal/session"
)

const (
	BuyerCookie    = "sf_session"
	MerchantCookie = "sf_owner_session"

	BuyerLoginPath    = "/login"
	MerchantLoginPath = "/enterprise/owner/login"
)

func contextKey(kind model.SessionKind) string {
	return "session_" + string(kind)
}

// CookieName is the cookie holding the session ID of kind.
func CookieName(kind model.SessionKind) string {
	if kind == model.SessionMerchant {
		return MerchantCookie
	}
	return BuyerCookie
}

// LoginPath is where an unauthenticated principal of kind is sent.
func LoginPath(kind model.SessionKind) string {
	if kind == model.SessionMerchant {
		return MerchantLoginPath
	}
	return BuyerLoginPath
}

// LoadSession hydrates the session of kind from its cookie, if present. A
// session that expired or was rejected by the API has its cookie cleared.
// Only store failures abort the request.
func LoadSession(store *session.Store, kind model.SessionKind, log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(CookieName(kind))
			if err != nil || cookie.Value == "" {
				return next(c)
			}

			sess, err := store.Load(c.Request().Context(), cookie.Value, kind)
			switch {
			case err == nil:
				c.Set(contextKey(kind), sess)
			case errors.Is(err, session.ErrNoSession),
				errors.Is(err, session.ErrSessionExpired),
				errors.Is(err, session.ErrSessionRejected):
				ClearSessionCookie(c, kind)
			default:
				log.Error("load session failed", zap.String("kind", string(kind)), zap.Error(err))
				return err
			}
			return next(c)
		}
	}
}

// RequireSession redirects to the login page of kind when no session was
// loaded. JSON endpoints get a 401 instead.
func RequireSession(kind model.SessionKind) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if Session(c, kind) != nil {
				return next(c)
			}
			if WantsJSON(c) {
				return echo.NewHTTPError(http.StatusUnauthorized, "login required")
			}
			return c.Redirect(http.StatusFound, LoginRedirect(kind, c.Request().URL.RequestURI()))
		}
	}
}

// LoginRedirect is the login URL of kind that returns to next afterwards.
func LoginRedirect(kind model.SessionKind, next string) string {
	if next == "" || next == LoginPath(kind) {
		return LoginPath(kind)
	}
	return LoginPath(kind) + "?" + url.Values{"next": {next}}.Encode()
}

func Session(c echo.Context, kind model.SessionKind) *model.Session {
	sess, _ := c.Get(contextKey(kind)).(*model.Session)
	return sess
}

func SetSession(c echo.Context, sess *model.Session, secure bool) {
	cookie := &http.Cookie{
		Name:     CookieName(sess.Kind),
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	if sess.ExpiresAt != nil {
		cookie.Expires = *sess.ExpiresAt
	}
	c.SetCookie(cookie)
	c.Set(contextKey(sess.Kind), sess)
}

func ClearSessionCookie(c echo.Context, kind model.SessionKind) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName(kind),
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	c.Set(contextKey(kind), nil)
}

// WantsJSON reports whether the caller is the page script rather than a
// browser navigation.
func WantsJSON(c echo.Context) bool {
	req := c.Request()
	if strings.HasPrefix(req.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON) {
		return true
	}
	return strings.Contains(req.URL.Path, "/api/")
}
