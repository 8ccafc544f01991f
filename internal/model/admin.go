package model

import (
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"
)

// UserRow is a buyer account as listed in the merchant console.
type UserRow struct {
	ID             int64           `json:"id"`
	Username       string          `json:"username"`
	Email          string          `json:"email"`
	Avatar         string          `json:"avatar,omitempty"`
	Balance        decimal.Decimal `json:"balance"`
	Status         string          `json:"status"`
	CreatedAt      string          `json:"created_at"`
	UpdatedAt      string          `json:"updated_at,omitempty"`
	TotalPurchases int             `json:"total_compras,omitempty"`
	TotalSpent     decimal.Decimal `json:"total_gasto"`
}

type UserUpdate struct {
	ID       int64            `json:"id"`
	Username string           `json:"username,omitempty"`
	Email    string           `json:"email,omitempty"`
	Status   string           `json:"status,omitempty"`
	Balance  *decimal.Decimal `json:"balance,omitempty"`
}

type ProductRow struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `json:"price"`
	Status         string          `json:"status"`
	Type           ProductType     `json:"type"`
	DeliveryType   string          `json:"delivery_type"`
	DeliveryInfo   string          `json:"delivery_info,omitempty"`
	AccessDuration string          `json:"access_duration,omitempty"`
	Slug           string          `json:"slug,omitempty"`
	TotalSales     int             `json:"total_vendas,omitempty"`
	TotalRevenue   decimal.Decimal `json:"receita_total"`
	ImageURL       string          `json:"image_url,omitempty"`
	CreatedAt      string          `json:"created_at,omitempty"`
}

// ProductInput is the create/update payload. ID is ignored on create.
type ProductInput struct {
	ID             int64           `json:"id,omitempty"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `json:"price"`
	Status         string          `json:"status"`
	Type           ProductType     `json:"type"`
	DeliveryType   string          `json:"delivery_type"`
	DeliveryInfo   string          `json:"delivery_info,omitempty"`
	AccessDuration string          `json:"access_duration,omitempty"`
	Slug           string          `json:"slug,omitempty"`
	ImageURL       string          `json:"image_url,omitempty"`
}

type Compra struct {
	ID             int64           `json:"id"`
	UserID         int64           `json:"user_id"`
	ProductID      int64           `json:"product_id"`
	TransactionID  string          `json:"transaction_id,omitempty"`
	PurchaseCode   string          `json:"purchase_code"`
	LicenseKey     string          `json:"license_key"`
	PricePaid      decimal.Decimal `json:"price_paid"`
	PaymentMethod  string          `json:"payment_method,omitempty"`
	PaymentStatus  string          `json:"payment_status"`
	Status         string          `json:"status,omitempty"`
	DownloadCount  int             `json:"download_count,omitempty"`
	MaxDownloads   int             `json:"max_downloads,omitempty"`
	CreatedAt      string          `json:"created_at"`
	UpdatedAt      string          `json:"updated_at,omitempty"`
	Username       string          `json:"username"`
	UserEmail      string          `json:"user_email,omitempty"`
	Email          string          `json:"email,omitempty"`
	ProductName    string          `json:"product_name"`
	Domain         string          `json:"domain,omitempty"`
	DomainVerified int             `json:"domain_verified,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	QRCode         string          `json:"qr_code,omitempty"`
	QRCodeBase64   string          `json:"qr_code_base64,omitempty"`
}

// BuyerEmail picks whichever email field the endpoint populated.
func (c Compra) BuyerEmail() string {
	if c.UserEmail != "" {
		return c.UserEmail
	}
	return c.Email
}

type CompraUpdate struct {
	ID            int64  `json:"id"`
	PaymentStatus string `json:"payment_status,omitempty"`
	Status        string `json:"status,omitempty"`
	MaxDownloads  *int   `json:"max_downloads,omitempty"`
	Notes         string `json:"notes,omitempty"`
	Domain        string `json:"domain,omitempty"`
}

type UserDetailResponse struct {
	Result
	User UserRow `json:"user"`
}

type ProductDetailResponse struct {
	Result
	Product ProductRow `json:"product"`
}

type CompraDetailResponse struct {
	Result
	Compra Compra `json:"compra"`
}

type CreateProductResponse struct {
	Result
	ProductID int64 `json:"product_id"`
}

// ListParams are the query parameters shared by the enterprise list endpoints.
type ListParams struct {
	Page    int
	PerPage int
	Search  string
	Status  string
	UserID  int64
}

func (p ListParams) Values() url.Values {
	v := url.Values{"action": {"list"}}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(p.PerPage))
	}
	if p.Search != "" {
		v.Set("search", p.Search)
	}
	if p.Status != "" {
		v.Set("status", p.Status)
	}
	if p.UserID > 0 {
		v.Set("user_id", strconv.FormatInt(p.UserID, 10))
	}
	return v
}
