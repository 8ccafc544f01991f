package dto

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"pix-storefront/internal/model"
)

type CheckoutForm struct {
	Email string `form:"email" json:"email" validate:"required,email"`
}

type PurchasesLookupForm struct {
	Email string `form:"email" query:"email" validate:"required,email"`
}

type LoginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
	Next     string `form:"next"`
}

type RegisterForm struct {
	Username        string `form:"username" validate:"required,min=3,max=50"`
	Email           string `form:"email" validate:"required,email"`
	Password        string `form:"password" validate:"required,min=6"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=Password"`
}

func (f *RegisterForm) Request() *model.RegisterRequest {
	return &model.RegisterRequest{
		Username: strings.TrimSpace(f.Username),
		Email:    strings.TrimSpace(f.Email),
		Password: f.Password,
	}
}

type ProfileForm struct {
	Username        string `form:"username" validate:"omitempty,min=3,max=50"`
	Email           string `form:"email" validate:"omitempty,email"`
	CurrentPassword string `form:"current_password" validate:"required_with=NewPassword"`
	NewPassword     string `form:"new_password" validate:"omitempty,min=6"`
	ConfirmPassword string `form:"confirm_password" validate:"eqfield=NewPassword"`
}

func (f *ProfileForm) Update() *model.ProfileUpdate {
	return &model.ProfileUpdate{
		Username:        strings.TrimSpace(f.Username),
		Email:           strings.TrimSpace(f.Email),
		CurrentPassword: f.CurrentPassword,
		Password:        f.NewPassword,
	}
}

type AdminLoginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

type ProductForm struct {
	Name           string `form:"name" validate:"required,max=255"`
	Description    string `form:"description"`
	Price          string `form:"price" validate:"required"`
	Status         string `form:"status" validate:"required,oneof=active inactive"`
	Type           string `form:"type" validate:"required,oneof=ebook curso software assinatura outro"`
	DeliveryType   string `form:"delivery_type" validate:"omitempty,oneof=download link email manual"`
	DeliveryInfo   string `form:"delivery_info"`
	AccessDuration string `form:"access_duration"`
	Slug           string `form:"slug" validate:"omitempty,max=100"`
	ImageURL       string `form:"image_url" validate:"omitempty,url"`
}

// Input converts the form into an API payload. Prices accept a decimal comma.
func (f *ProductForm) Input(id int64) (*model.ProductInput, error) {
	price, err := ParsePrice(f.Price)
	if err != nil {
		return nil, err
	}
	return &model.ProductInput{
		ID:             id,
		Name:           strings.TrimSpace(f.Name),
		Description:    f.Description,
		Price:          price,
		Status:         f.Status,
		Type:           model.ProductType(f.Type),
		DeliveryType:   f.DeliveryType,
		DeliveryInfo:   f.DeliveryInfo,
		AccessDuration: f.AccessDuration,
		Slug:           strings.TrimSpace(f.Slug),
		ImageURL:       strings.TrimSpace(f.ImageURL),
	}, nil
}

// ProductFormFrom prefills the edit form.
func ProductFormFrom(p *model.ProductRow) *ProductForm {
	return &ProductForm{
		Name:           p.Name,
		Description:    p.Description,
		Price:          p.Price.StringFixed(2),
		Status:         p.Status,
		Type:           string(p.Type),
		DeliveryType:   p.DeliveryType,
		DeliveryInfo:   p.DeliveryInfo,
		AccessDuration: p.AccessDuration,
		Slug:           p.Slug,
		ImageURL:       p.ImageURL,
	}
}

// ParsePrice reads "19,90", "19.90" or "1.234,56".
func ParsePrice(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "R$"))
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	price, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price %q", raw)
	}
	if price.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative price %q", raw)
	}
	return price, nil
}

type UserForm struct {
	Username string `form:"username" validate:"required,min=3,max=50"`
	Email    string `form:"email" validate:"required,email"`
	Status   string `form:"status" validate:"required,oneof=active inactive banned"`
	Balance  string `form:"balance"`
}

func (f *UserForm) Update(id int64) (*model.UserUpdate, error) {
	update := &model.UserUpdate{
		ID:       id,
		Username: strings.TrimSpace(f.Username),
		Email:    strings.TrimSpace(f.Email),
		Status:   f.Status,
	}
	if strings.TrimSpace(f.Balance) != "" {
		balance, err := ParsePrice(f.Balance)
		if err != nil {
			return nil, err
		}
		update.Balance = &balance
	}
	return update, nil
}

type CompraForm struct {
	PaymentStatus string `form:"payment_status" validate:"omitempty,oneof=pending paid cancelled expired refunded"`
	Status        string `form:"status" validate:"omitempty,oneof=active inactive"`
	MaxDownloads  string `form:"max_downloads" validate:"omitempty,number"`
	Notes         string `form:"notes" validate:"max=1000"`
	Domain        string `form:"domain" validate:"omitempty,fqdn"`
}

func (f *CompraForm) Update(id int64) *model.CompraUpdate {
	update := &model.CompraUpdate{
		ID:            id,
		PaymentStatus: f.PaymentStatus,
		Status:        f.Status,
		Notes:         f.Notes,
		Domain:        strings.TrimSpace(f.Domain),
	}
	if n, err := strconv.Atoi(f.MaxDownloads); err == nil {
		update.MaxDownloads = &n
	}
	return update
}

// PaymentStatusResponse is what the payment page polls.
type PaymentStatusResponse struct {
	State         string `json:"state"`
	TransactionID string `json:"transaction_id"`
	PurchaseCode  string `json:"purchase_code,omitempty"`
	QRCode        string `json:"qr_code,omitempty"`
	QRCodeBase64  string `json:"qr_code_base64,omitempty"`
	SecondsLeft   int    `json:"seconds_left"`
	Attempts      int    `json:"attempts"`
	MaxAttempts   int    `json:"max_attempts"`
	RedirectURL   string `json:"redirect_url,omitempty"`
	RedirectDelay int64  `json:"redirect_delay_ms,omitempty"`
	Error         string `json:"error,omitempty"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Watchers int    `json:"watchers"`
}
