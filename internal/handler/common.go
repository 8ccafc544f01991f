package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"github.com/labstack/echo/v4"

	"pix-storefront/internal/client"
	"pix-storefront/internal/dto"
	"pix-storefront/internal/middleware"
	"pix-storefront/internal/model"
	"pix-storefront/internal/session"
	"pix-storefront/internal/view"
)

func newPage(c echo.Context, title string) *view.Page {
	p := &view.Page{
		Title: title,
		Path:  c.Request().URL.Path,
		Flash: c.QueryParam("ok"),
		Error: c.QueryParam("erro"),
	}
	if sess := middleware.Session(c, model.SessionBuyer); sess != nil {
		p.Buyer, _ = session.DecodeProfile[model.User](sess)
	}
	if sess := middleware.Session(c, model.SessionMerchant); sess != nil {
		p.Merchant, _ = session.DecodeProfile[model.Merchant](sess)
	}
	return p
}

// bindForm binds and validates a form. Field errors are stored on the page
// and reported as false; other failures are returned.
func bindForm(c echo.Context, form any, p *view.Page) (bool, error) {
	p.Form = form
	if err := c.Bind(form); err != nil {
		return false, echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	if err := c.Validate(form); err != nil {
		var fields dto.FieldErrors
		if errors.As(err, &fields) {
			p.Errors = fields
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// inline puts an API rejection on the page so the form can be shown again.
// Anything else goes to the error handler.
func inline(p *view.Page, err error) error {
	if client.IsBusiness(err) && !client.IsUnauthorized(err) {
		p.Error = client.Message(err)
		return nil
	}
	return err
}

func paramID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusNotFound, "not found")
	}
	return id, nil
}

// safeNext only allows local redirect targets. Browsers read a backslash as
// a slash and drop tabs and newlines, so those are refused outright.
func safeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return fallback
	}
	if strings.ContainsFunc(next, func(r rune) bool { return r == '\\' || unicode.IsControl(r) }) {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return next
}

func redirectWithFlash(c echo.Context, path, flash string) error {
	return redirectWith(c, path, "ok", flash)
}

func redirectWithError(c echo.Context, path string, err error) error {
	return redirectWith(c, path, "erro", client.Message(err))
}

func redirectWith(c echo.Context, path, key, msg string) error {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return c.Redirect(http.StatusSeeOther, path+sep+key+"="+url.QueryEscape(msg))
}
