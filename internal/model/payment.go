package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatusCode string

const (
	PaymentPending   PaymentStatusCode = "pending"
	PaymentPaid      PaymentStatusCode = "paid"
	PaymentCancelled PaymentStatusCode = "cancelled"
	PaymentExpired   PaymentStatusCode = "expired"
	PaymentRefunded  PaymentStatusCode = "refunded"
)

type ProductRef struct {
	ID    int64       `json:"id"`
	Name  string      `json:"name"`
	Type  ProductType `json:"type"`
	Image string      `json:"image,omitempty"`
}

type CreatePaymentRequest struct {
	ProductID     int64  `json:"product_id"`
	UserEmail     string `json:"user_email"`
	TransactionID string `json:"transaction_id"`
}

// PaymentData is returned by create-payment.
type PaymentData struct {
	TransactionID string          `json:"transaction_id"`
	PurchaseCode  string          `json:"purchase_code"`
	QRCode        string          `json:"qr_code"`
	QRCodeBase64  string          `json:"qr_code_base64"`
	Value         decimal.Decimal `json:"value"`
	ValueCents    int64           `json:"value_cents"`
	Status        string          `json:"status"`
	WebhookURL    string          `json:"webhook_url,omitempty"`
	Product       ProductRef      `json:"product"`
}

// PaymentStatus is returned by check-payment. The status transitions are
// decided server-side; the storefront only observes them.
type PaymentStatus struct {
	TransactionID   string            `json:"transaction_id"`
	PurchaseCode    string            `json:"purchase_code"`
	LicenseKey      string            `json:"license_key"`
	PaymentStatus   PaymentStatusCode `json:"payment_status"`
	Status          string            `json:"status"`
	QRCode          *string           `json:"qr_code"`
	QRCodeBase64    *string           `json:"qr_code_base64"`
	QRCodeExpiresAt string            `json:"qr_code_expires_at,omitempty"`
	QRCodeExpired   bool              `json:"qr_code_expired,omitempty"`
	Product         ProductRef        `json:"product"`
	PricePaid       decimal.Decimal   `json:"price_paid"`
	PaymentMethod   string            `json:"payment_method"`
	DownloadCount   int               `json:"download_count"`
	MaxDownloads    int               `json:"max_downloads"`
	CanDownload     bool              `json:"can_download"`
	AccessExpiresAt *string           `json:"access_expires_at"`
	CreatedAt       string            `json:"created_at"`
	UpdatedAt       string            `json:"updated_at"`
	LastAPICheck    string            `json:"last_api_check,omitempty"`
}

var apiTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseAPITime parses the timestamp formats the remote API emits. Zone-less
// values are read in loc.
func ParseAPITime(value string, loc *time.Location) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range apiTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ExpiresAt is the QR code expiry, if the API sent one.
func (s *PaymentStatus) ExpiresAt() (time.Time, bool) {
	return ParseAPITime(s.QRCodeExpiresAt, time.UTC)
}
