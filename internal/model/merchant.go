package model

// Merchant is the admin-console principal, distinct from a storefront buyer.
type Merchant struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	ProfileImage string `json:"profile_image,omitempty"`
}

type AdminUser struct {
	MerchantID int64  `json:"merchant_id"`
	Email      string `json:"email"`
	IsAdmin    int    `json:"is_admin"`
	Exp        int64  `json:"exp,omitempty"`
}

type AdminLoginResponse struct {
	Result
	Token    string   `json:"token"`
	Merchant Merchant `json:"merchant"`
}

type AdminVerifyResponse struct {
	Result
	User AdminUser `json:"user"`
}
