package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"pix-storefront/internal/client"
	"pix-storefront/internal/dto"
	"pix-storefront/internal/middleware"
	"pix-storefront/internal/model"
	"pix-storefront/internal/service"
	"pix-storefront/internal/view"
)

type AccountHandler struct {
	accountService service.AccountService
	secureCookie   bool
}

func NewAccountHandler(accountService service.AccountService, secureCookie bool) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		secureCookie:   secureCookie,
	}
}

// credentialsError shows a failed login on the form. A 401 from the login
// endpoint means wrong credentials, not an expired session.
func credentialsError(p *view.Page, err error) error {
	if client.IsUnauthorized(err) {
		p.Error = "Email ou senha inválidos"
		return nil
	}
	return inline(p, err)
}

func (h *AccountHandler) LoginForm(c echo.Context) error {
	if middleware.Session(c, model.SessionBuyer) != nil {
		return c.Redirect(http.StatusSeeOther, safeNext(c.QueryParam("next"), "/meus-produtos"))
	}
	p := newPage(c, "Entrar")
	p.Form = &dto.LoginForm{Next: c.QueryParam("next")}
	return c.Render(http.StatusOK, "storefront/login", p)
}

func (h *AccountHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()

	p := newPage(c, "Entrar")
	form := &dto.LoginForm{}
	ok, err := bindForm(c, form, p)
	if err != nil {
		return err
	}
	if !ok {
		return c.Render(http.StatusUnprocessableEntity, "storefront/login", p)
	}

	sess, err := h.accountService.Login(ctx, &model.LoginRequest{Email: form.Email, Password: form.Password})
	if err != nil {
		if err := credentialsError(p, err); err != nil {
			return err
		}
		form.Password = ""
		return c.Render(http.StatusUnprocessableEntity, "storefront/login", p)
	}

	middleware.SetSession(c, sess, h.secureCookie)
	return c.Redirect(http.StatusSeeOther, safeNext(form.Next, "/meus-produtos"))
}

func (h *AccountHandler) RegisterForm(c echo.Context) error {
	p := newPage(c, "Criar conta")
	p.Form = &dto.RegisterForm{}
	return c.Render(http.StatusOK, "storefront/register", p)
}

func (h *AccountHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()

	p := newPage(c, "Criar conta")
	form := &dto.RegisterForm{}
	ok, err := bindForm(c, form, p)
	if err != nil {
		return err
	}
	if !ok {
		return c.Render(http.StatusUnprocessableEntity, "storefront/register", p)
	}

	sess, err := h.accountService.Register(ctx, form.Request())
	if err != nil {
		if err := inline(p, err); err != nil {
			return err
		}
		form.Password, form.ConfirmPassword = "", ""
		return c.Render(http.StatusUnprocessableEntity, "storefront/register", p)
	}

	middleware.SetSession(c, sess, h.secureCookie)
	return redirectWithFlash(c, "/meus-produtos", "Conta criada com sucesso")
}

func (h *AccountHandler) Profile(c echo.Context) error {
	sess := middleware.Session(c, model.SessionBuyer)
	user, err := h.accountService.Profile(sess)
	if err != nil {
		return err
	}

	p := newPage(c, "Meu perfil")
	p.Form = &dto.ProfileForm{Username: user.Username, Email: user.Email}
	p.Data = user
	return c.Render(http.StatusOK, "storefront/profile", p)
}

func (h *AccountHandler) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()
	sess := middleware.Session(c, model.SessionBuyer)

	p := newPage(c, "Meu perfil")
	p.Data = p.Buyer
	form := &dto.ProfileForm{}
	ok, err := bindForm(c, form, p)
	if err != nil {
		return err
	}
	if !ok {
		return c.Render(http.StatusUnprocessableEntity, "storefront/profile", p)
	}

	user, err := h.accountService.UpdateProfile(ctx, sess, form.Update())
	if err != nil {
		if err := inline(p, err); err != nil {
			return err
		}
		return c.Render(http.StatusUnprocessableEntity, "storefront/profile", p)
	}

	p.Buyer = user
	p.Data = user
	p.Form = &dto.ProfileForm{Username: user.Username, Email: user.Email}
	p.Flash = "Perfil atualizado"
	return c.Render(http.StatusOK, "storefront/profile", p)
}

func (h *AccountHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	if sess := middleware.Session(c, model.SessionBuyer); sess != nil {
		if err := h.accountService.Logout(ctx, sess); err != nil {
			return err
		}
	}
	middleware.ClearSessionCookie(c, model.SessionBuyer)
	return c.Redirect(http.StatusSeeOther, "/")
}
