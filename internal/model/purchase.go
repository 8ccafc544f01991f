package model

import "github.com/shopspring/decimal"

type Download struct {
	Type     string `json:"type"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// Purchase as seen by the buyer. CanDownload is computed by the API and never
// recalculated here.
type Purchase struct {
	ID              int64           `json:"id"`
	PurchaseCode    string          `json:"purchase_code"`
	LicenseKey      string          `json:"license_key"`
	TransactionID   string          `json:"transaction_id"`
	Product         ProductRef      `json:"product"`
	Download        *Download       `json:"download,omitempty"`
	PricePaid       decimal.Decimal `json:"price_paid"`
	PaymentMethod   string          `json:"payment_method"`
	PaymentStatus   string          `json:"payment_status"`
	Status          string          `json:"status"`
	DownloadCount   int             `json:"download_count"`
	MaxDownloads    int             `json:"max_downloads"`
	CanDownload     bool            `json:"can_download"`
	AccessExpiresAt string          `json:"access_expires_at,omitempty"`
	LastDownloadAt  string          `json:"last_download_at,omitempty"`
	CreatedAt       string          `json:"created_at"`
	UpdatedAt       string          `json:"updated_at"`
}

type PurchaseUser struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type PurchasesResult struct {
	Purchases []Purchase    `json:"purchases"`
	Count     int           `json:"count"`
	User      *PurchaseUser `json:"user,omitempty"`
}
