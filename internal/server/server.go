package server

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"pix-storefront/internal/client"
	"pix-storefront/internal/clock"
	"pix-storefront/internal/config"
	"pix-storefront/internal/dto"
	"pix-storefront/internal/handler"
	"pix-storefront/internal/middleware"
	"pix-storefront/internal/model"
	"pix-storefront/internal/service"
	"pix-storefront/internal/session"
	"pix-storefront/internal/view"
)

type Server struct {
	echo  *echo.Echo
	store *session.Store
	log   *zap.Logger

	storefrontHandler *handler.StorefrontHandler
	checkoutHandler   *handler.CheckoutHandler
	accountHandler    *handler.AccountHandler
	adminHandler      *handler.AdminHandler
}

// Services are the use cases the routes are wired to.
type Services struct {
	Catalog   service.CatalogService
	Checkout  service.CheckoutService
	Account   service.AccountService
	Merchant  service.MerchantService
	Dashboard service.DashboardService
	Admin     service.AdminService
}

func NewServer(
	cfg *config.Config,
	renderer echo.Renderer,
	static fs.FS,
	store *session.Store,
	services Services,
	clk clock.Clock,
	log *zap.Logger,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.Validator = dto.NewValidator()

	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				log.Warn("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			log.Info("request", fields...)
			return nil
		},
	}))
	e.Use(middleware.LoadSession(store, model.SessionBuyer, log))

	if static != nil {
		e.StaticFS("/static", static)
	}

	s := &Server{
		echo:              e,
		store:             store,
		log:               log,
		storefrontHandler: handler.NewStorefrontHandler(services.Catalog),
		checkoutHandler:   handler.NewCheckoutHandler(services.Catalog, services.Checkout, clk, &cfg.Payment),
		accountHandler:    handler.NewAccountHandler(services.Account, cfg.Session.CookieSecure),
		adminHandler: handler.NewAdminHandler(
			services.Merchant,
			services.Dashboard,
			services.Admin,
			clk,
			&cfg.Admin,
			cfg.Session.CookieSecure,
		),
	}
	e.HTTPErrorHandler = s.handleError

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	e := s.echo

	// -------- storefront --------
	e.GET("/", s.storefrontHandler.Catalog)
	e.GET("/produto/:idOrSlug", s.storefrontHandler.Product)
	e.GET("/sucesso", s.storefrontHandler.Success)
	e.GET("/download/:purchaseCode", s.storefrontHandler.Download)
	e.GET("/meus-produtos", s.storefrontHandler.Purchases)
	e.GET("/suporte", s.storefrontHandler.Support)

	// -------- checkout --------
	e.GET("/checkout/:productId", s.checkoutHandler.Form)
	e.POST("/checkout/:productId", s.checkoutHandler.Submit)
	e.GET("/pagar/:transactionId", s.checkoutHandler.Payment)
	e.POST("/pagar/:transactionId/retry", s.checkoutHandler.Retry)

	api := e.Group("/api")
	api.GET("/health", s.checkoutHandler.Health)
	api.GET("/payments/:transactionId", s.checkoutHandler.Status)
	api.DELETE("/payments/:transactionId", s.checkoutHandler.Abandon)

	// -------- buyer account --------
	e.GET("/login", s.accountHandler.LoginForm)
	e.POST("/login", s.accountHandler.Login)
	e.GET("/registrar", s.accountHandler.RegisterForm)
	e.POST("/registrar", s.accountHandler.Register)
	e.POST("/logout", s.accountHandler.Logout)
	e.GET("/logout", s.accountHandler.Logout)

	buyer := e.Group("/perfil", middleware.RequireSession(model.SessionBuyer))
	buyer.GET("", s.accountHandler.Profile)
	buyer.POST("", s.accountHandler.UpdateProfile)

	// -------- merchant console --------
	owner := e.Group("/enterprise/owner", middleware.LoadSession(s.store, model.SessionMerchant, s.log))
	owner.GET("/login", s.adminHandler.LoginForm)
	owner.POST("/login", s.adminHandler.Login)
	owner.POST("/logout", s.adminHandler.Logout)
	owner.GET("/logout", s.adminHandler.Logout)

	console := owner.Group("", middleware.RequireSession(model.SessionMerchant))
	console.GET("", s.adminHandler.Dashboard)
	console.GET("/dashboard", s.adminHandler.Dashboard)

	console.GET("/users", s.adminHandler.Users)
	console.GET("/users/:id", s.adminHandler.User)
	console.POST("/users/:id", s.adminHandler.UpdateUser)
	console.POST("/users/:id/delete", s.adminHandler.DeleteUser)

	console.GET("/products", s.adminHandler.Products)
	console.POST("/products", s.adminHandler.CreateProduct)
	console.GET("/products/new", s.adminHandler.NewProduct)
	console.GET("/products/:id", s.adminHandler.Product)
	console.POST("/products/:id", s.adminHandler.UpdateProduct)
	console.GET("/products/:id/edit", s.adminHandler.EditProduct)
	console.POST("/products/:id/delete", s.adminHandler.DeleteProduct)

	console.GET("/compras", s.adminHandler.Compras)
	console.GET("/compras/:id", s.adminHandler.Compra)
	console.POST("/compras/:id", s.adminHandler.UpdateCompra)

	console.GET("/transactions", s.adminHandler.Transactions)
	console.GET("/transactions/:id", s.adminHandler.Transaction)

	console.GET("/api/:resource", s.adminHandler.Search)
}

// ErrorData is rendered by the error page.
type ErrorData struct {
	Status  int
	Message string
	Retry   bool
}

type errorResponse struct {
	Error string `json:"error"`
}

func sessionKindFor(path string) model.SessionKind {
	if strings.HasPrefix(path, "/enterprise/owner") {
		return model.SessionMerchant
	}
	return model.SessionBuyer
}

// handleError maps error classes to responses. A token rejected by the API
// ends the matching session and sends the user to log in again.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		status = http.StatusInternalServerError
		msg    = "Erro interno"
		retry  bool
		httpEr *echo.HTTPError
	)

	switch {
	case client.IsUnauthorized(err):
		s.endSession(c)
		return
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrPaymentNotFound):
		status, msg = http.StatusNotFound, "Página não encontrada"
		if errors.Is(err, service.ErrProductNotFound) {
			msg = "Produto não encontrado"
		} else if errors.Is(err, service.ErrPaymentNotFound) {
			msg = "Pagamento não encontrado"
		}
	case client.IsBusiness(err):
		status, msg = http.StatusUnprocessableEntity, client.Message(err)
	case client.IsTransient(err):
		status, msg, retry = http.StatusBadGateway, client.Message(err), true
	case errors.As(err, &httpEr):
		status = httpEr.Code
		msg = http.StatusText(status)
		if status == http.StatusNotFound {
			msg = "Página não encontrada"
		}
	default:
		var reqErr *client.RequestError
		if errors.As(err, &reqErr) {
			status, msg, retry = http.StatusBadGateway, client.Message(err), true
		}
	}

	if status >= http.StatusInternalServerError {
		s.log.Error("request failed",
			zap.String("uri", c.Request().RequestURI), zap.Int("status", status), zap.Error(err))
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	if middleware.WantsJSON(c) {
		_ = c.JSON(status, errorResponse{Error: msg})
		return
	}

	p := &view.Page{Title: msg, Path: c.Request().URL.Path, Data: &ErrorData{Status: status, Message: msg, Retry: retry}}
	if rerr := c.Render(status, "error", p); rerr != nil {
		s.log.Error("render error page", zap.Error(rerr))
		_ = c.String(status, msg)
	}
}

func (s *Server) endSession(c echo.Context) {
	ctx := c.Request().Context()

	kind := sessionKindFor(c.Request().URL.Path)
	if sess := middleware.Session(c, kind); sess != nil {
		if err := s.store.Destroy(ctx, sess.ID); err != nil {
			s.log.Warn("destroy rejected session", zap.Error(err))
		}
	}
	middleware.ClearSessionCookie(c, kind)

	if middleware.WantsJSON(c) {
		_ = c.JSON(http.StatusUnauthorized, errorResponse{Error: client.Message(client.ErrUnauthorized)})
		return
	}
	_ = c.Redirect(http.StatusSeeOther, middleware.LoginRedirect(kind, c.Request().RequestURI))
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
