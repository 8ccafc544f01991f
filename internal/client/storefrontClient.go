package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"pix-storefront/internal/config"
	"pix-storefront/internal/model"
)

type StorefrontClient interface {
	ListProducts(ctx context.Context, search model.ProductSearch) (*model.ProductList, error)
	// GetProduct returns nil without error when the product does not exist.
	GetProduct(ctx context.Context, idOrSlug string) (*model.Product, error)
	CreatePayment(ctx context.Context, productID int64, email, transactionID string) (*model.PaymentData, error)
	CheckPayment(ctx context.Context, transactionID string) (*model.PaymentStatus, error)
	UserPurchases(ctx context.Context, email string) (*model.PurchasesResult, error)
	DownloadURL(purchaseCode string) string
}

type storefrontClientImpl struct {
	api *apiClient
}

func NewStorefrontClient(cfg *config.Storefront) (StorefrontClient, error) {
	api, err := newAPIClient(cfg.BaseApiURL, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	return &storefrontClientImpl{api: api}, nil
}

func (c *storefrontClientImpl) ListProducts(ctx context.Context, search model.ProductSearch) (*model.ProductList, error) {
	list, err := getEnvelope[model.ProductList](ctx, c.api, "list products", http.MethodGet, "/api/products.php", search.Values(), "", nil)
	if err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *storefrontClientImpl) GetProduct(ctx context.Context, idOrSlug string) (*model.Product, error) {
	idOrSlug = strings.TrimSpace(idOrSlug)
	if idOrSlug == "" {
		return nil, nil
	}

	query := url.Values{}
	if id, err := strconv.ParseInt(idOrSlug, 10, 64); err == nil {
		query.Set("id", strconv.FormatInt(id, 10))
	} else {
		query.Set("slug", idOrSlug)
	}

	// single-product lookups put the product directly under data; an unknown
	// id comes back as success=false or as an empty object
	raw, err := getEnvelope[json.RawMessage](ctx, c.api, "get product", http.MethodGet, "/api/products.php", query, "", nil)
	if err != nil {
		if IsBusiness(err) {
			return nil, nil
		}
		return nil, err
	}

	var product model.Product
	if err := json.Unmarshal(raw, &product); err != nil {
		return nil, &RequestError{Op: "get product", Err: fmt.Errorf("decode product: %w", err)}
	}
	if product.ID == 0 {
		return nil, nil
	}
	return &product, nil
}

func (c *storefrontClientImpl) CreatePayment(ctx context.Context, productID int64, email, transactionID string) (*model.PaymentData, error) {
	if transactionID == "" {
		transactionID = uuid.NewString()
	}

	req := &model.CreatePaymentRequest{
		ProductID:     productID,
		UserEmail:     email,
		TransactionID: transactionID,
	}

	data, err := getEnvelope[model.PaymentData](ctx, c.api, "create payment", http.MethodPost, "/api/create-payment.php", nil, "", req)
	if err != nil {
		return nil, err
	}
	if data.TransactionID == "" {
		data.TransactionID = transactionID
	}
	return &data, nil
}

func (c *storefrontClientImpl) CheckPayment(ctx context.Context, transactionID string) (*model.PaymentStatus, error) {
	query := url.Values{"transaction_id": {transactionID}}

	status, err := getEnvelope[model.PaymentStatus](ctx, c.api, "check payment", http.MethodGet, "/api/check-payment.php", query, "", nil)
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *storefrontClientImpl) UserPurchases(ctx context.Context, email string) (*model.PurchasesResult, error) {
	query := url.Values{"email": {email}}

	result, err := getEnvelope[model.PurchasesResult](ctx, c.api, "user purchases", http.MethodGet, "/api/user-purchases.php", query, "", nil)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *storefrontClientImpl) DownloadURL(purchaseCode string) string {
	return c.api.endpoint("/api/download.php", url.Values{"purchase_code": {purchaseCode}})
}
