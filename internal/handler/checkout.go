package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"pix-storefront/internal/client"
	"pix-storefront/internal/clock"
	"pix-storefront/internal/config"
	"pix-storefront/internal/dto"
	"pix-storefront/internal/model"
	"pix-storefront/internal/payment"
	"pix-storefront/internal/service"
)

type CheckoutHandler struct {
	catalogService  service.CatalogService
	checkoutService service.CheckoutService
	clock           clock.Clock
	cfg             *config.Payment
}

func NewCheckoutHandler(
	catalogService service.CatalogService,
	checkoutService service.CheckoutService,
	clk clock.Clock,
	cfg *config.Payment,
) *CheckoutHandler {
	return &CheckoutHandler{
		catalogService:  catalogService,
		checkoutService: checkoutService,
		clock:           clk,
		cfg:             cfg,
	}
}

type PaymentView struct {
	Snapshot payment.Snapshot
	Status   dto.PaymentStatusResponse
}

func (h *CheckoutHandler) product(c echo.Context) (*model.Product, error) {
	id, err := paramID(c, "productId")
	if err != nil {
		return nil, err
	}
	return h.catalogService.GetProduct(c.Request().Context(), strconv.FormatInt(id, 10))
}

// Form shows the email form for a product. Logged in buyers get their email
// prefilled.
func (h *CheckoutHandler) Form(c echo.Context) error {
	product, err := h.product(c)
	if err != nil {
		return err
	}

	p := newPage(c, "Finalizar compra")
	form := &dto.CheckoutForm{}
	if p.Buyer != nil {
		form.Email = p.Buyer.Email
	}
	p.Form = form
	p.Data = product
	return c.Render(http.StatusOK, "storefront/checkout", p)
}

func (h *CheckoutHandler) Submit(c echo.Context) error {
	ctx := c.Request().Context()

	product, err := h.product(c)
	if err != nil {
		return err
	}

	p := newPage(c, "Finalizar compra")
	p.Data = product
	form := &dto.CheckoutForm{}
	ok, err := bindForm(c, form, p)
	if err != nil {
		return err
	}
	if !ok {
		return c.Render(http.StatusUnprocessableEntity, "storefront/checkout", p)
	}

	snap, err := h.checkoutService.Start(ctx, product.ID, form.Email)
	switch {
	case errors.Is(err, service.ErrInvalidEmail):
		p.Errors = dto.FieldErrors{"email": "Email inválido"}
		return c.Render(http.StatusUnprocessableEntity, "storefront/checkout", p)
	case err != nil:
		if client.IsTransient(err) || client.IsUnauthorized(err) {
			return err
		}
		p.Error = snap.Error
		if p.Error == "" {
			p.Error = client.Message(err)
		}
		return c.Render(http.StatusUnprocessableEntity, "storefront/checkout", p)
	}

	return c.Redirect(http.StatusSeeOther, "/pagar/"+snap.TransactionID)
}

func (h *CheckoutHandler) Payment(c echo.Context) error {
	ctx := c.Request().Context()

	txID := c.Param("transactionId")
	snap, err := h.checkoutService.Status(ctx, txID)
	if err != nil {
		return err
	}

	p := newPage(c, "Pagamento PIX")
	p.Data = &PaymentView{Snapshot: snap, Status: h.response(snap, txID)}
	return c.Render(http.StatusOK, "storefront/payment", p)
}

func (h *CheckoutHandler) Status(c echo.Context) error {
	ctx := c.Request().Context()

	txID := c.Param("transactionId")
	snap, err := h.checkoutService.Status(ctx, txID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.response(snap, txID))
}

// Abandon stops polling when the buyer leaves the payment page.
func (h *CheckoutHandler) Abandon(c echo.Context) error {
	h.checkoutService.Abandon(c.Param("transactionId"))
	return c.NoContent(http.StatusNoContent)
}

// Retry sends the buyer back to the checkout form of the same product.
func (h *CheckoutHandler) Retry(c echo.Context) error {
	productID, err := h.checkoutService.Retry(c.Param("transactionId"))
	if err != nil {
		if errors.Is(err, payment.ErrInvalidTransition) {
			return c.Redirect(http.StatusSeeOther, "/pagar/"+c.Param("transactionId"))
		}
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/checkout/"+strconv.FormatInt(productID, 10))
}

func (h *CheckoutHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.HealthResponse{
		Status:   "ok",
		Watchers: h.checkoutService.Active(),
	})
}

func (h *CheckoutHandler) response(snap payment.Snapshot, txID string) dto.PaymentStatusResponse {
	res := dto.PaymentStatusResponse{
		State:         string(snap.State),
		TransactionID: snap.TransactionID,
		PurchaseCode:  snap.PurchaseCode,
		QRCode:        snap.QRCode,
		QRCodeBase64:  snap.QRCodeBase64,
		SecondsLeft:   snap.SecondsLeft(h.clock.Now()),
		Attempts:      snap.Attempts,
		MaxAttempts:   snap.MaxAttempts,
		RedirectURL:   snap.RedirectURL,
		Error:         snap.Error,
	}
	if res.TransactionID == "" {
		res.TransactionID = txID
	}
	if snap.RedirectAt != nil {
		delay := snap.RedirectAt.Sub(h.clock.Now())
		if delay < 0 {
			delay = 0
		}
		res.RedirectDelay = delay.Milliseconds()
	}
	return res
}
