package model

import (
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"
)

type ProductType string

const (
	ProductEbook        ProductType = "ebook"
	ProductCourse       ProductType = "curso"
	ProductSoftware     ProductType = "software"
	ProductSubscription ProductType = "assinatura"
	ProductOther        ProductType = "outro"
)

var productTypeLabels = map[ProductType]string{
	ProductEbook:        "E-book",
	ProductCourse:       "Curso",
	ProductSoftware:     "Software",
	ProductSubscription: "Assinatura",
	ProductOther:        "Outro",
}

func (t ProductType) Label() string {
	if label, ok := productTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

type Product struct {
	ID             int64           `json:"id"`
	MerchantID     int64           `json:"merchant_id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	FilePath       string          `json:"file_path,omitempty"`
	ImageURL       string          `json:"image_url,omitempty"`
	Image          string          `json:"image,omitempty"`
	Price          decimal.Decimal `json:"price"`
	PriceFormatted string          `json:"price_formatted,omitempty"`
	Status         string          `json:"status"`
	Type           ProductType     `json:"type"`
	DeliveryType   string          `json:"delivery_type,omitempty"`
	DeliveryInfo   string          `json:"delivery_info,omitempty"`
	AccessDuration string          `json:"access_duration,omitempty"`
	Slug           string          `json:"slug,omitempty"`
	CustomSlug     string          `json:"custom_slug,omitempty"`
	UseCustomSlug  bool            `json:"use_custom_slug,omitempty"`
	DemoURL        string          `json:"demo_url,omitempty"`
	MerchantName   string          `json:"merchant_name,omitempty"`
	CreatedAt      string          `json:"created_at"`
	UpdatedAt      string          `json:"updated_at,omitempty"`
}

func (p Product) DisplayImage() string {
	if p.ImageURL != "" {
		return p.ImageURL
	}
	return p.Image
}

// PublicSlug is the identifier used in /produto/:idOrSlug links.
func (p Product) PublicSlug() string {
	if p.UseCustomSlug && p.CustomSlug != "" {
		return p.CustomSlug
	}
	if p.Slug != "" {
		return p.Slug
	}
	return strconv.FormatInt(p.ID, 10)
}

type ProductSearch struct {
	MerchantID int64
	Search     string
	Type       string
	Status     string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Limit      int
	Offset     int
	OrderBy    string // id, name, price, created_at, updated_at
	OrderDir   string // ASC, DESC
}

var productOrderColumns = map[string]bool{
	"id": true, "name": true, "price": true, "created_at": true, "updated_at": true,
}

// Values encodes the search, omitting empty parameters the way the API expects.
func (s ProductSearch) Values() url.Values {
	v := url.Values{}
	if s.MerchantID > 0 {
		v.Set("merchant_id", strconv.FormatInt(s.MerchantID, 10))
	}
	if s.Search != "" {
		v.Set("search", s.Search)
	}
	if s.Type != "" {
		v.Set("type", s.Type)
	}
	if s.Status != "" {
		v.Set("status", s.Status)
	}
	if s.MinPrice != nil {
		v.Set("min_price", s.MinPrice.String())
	}
	if s.MaxPrice != nil {
		v.Set("max_price", s.MaxPrice.String())
	}
	if s.Limit > 0 {
		v.Set("limit", strconv.Itoa(s.Limit))
	}
	if s.Offset > 0 {
		v.Set("offset", strconv.Itoa(s.Offset))
	}
	if productOrderColumns[s.OrderBy] {
		v.Set("order_by", s.OrderBy)
		if s.OrderDir == "ASC" || s.OrderDir == "DESC" {
			v.Set("order_dir", s.OrderDir)
		}
	}
	return v
}

type ProductPagination struct {
	Count       int  `json:"count"`
	Total       int  `json:"total"`
	Limit       int  `json:"limit"`
	Offset      int  `json:"offset"`
	CurrentPage int  `json:"current_page"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

type ProductList struct {
	Products   []Product         `json:"products"`
	Pagination ProductPagination `json:"pagination"`
	Order      struct {
		By        string `json:"by"`
		Direction string `json:"direction"`
	} `json:"order"`
}
