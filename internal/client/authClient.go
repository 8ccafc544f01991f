package client

import (
	"context"
	"net/http"

	"pix-storefront/internal/config"
	"pix-storefront/internal/model"
)

// AuthClient covers the buyer account endpoints of the storefront API.
type AuthClient interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error)
	Me(ctx context.Context, token string) (*model.User, error)
	UpdateProfile(ctx context.Context, token string, update *model.ProfileUpdate) (*model.User, error)
}

type authClientImpl struct {
	api *apiClient
}

func NewAuthClient(cfg *config.Storefront) (AuthClient, error) {
	api, err := newAPIClient(cfg.BaseApiURL, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	return &authClientImpl{api: api}, nil
}

func (c *authClientImpl) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	res, err := getEnvelope[model.AuthResponse](ctx, c.api, "register", http.MethodPost, "/api/register.php", nil, "", req)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *authClientImpl) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	res, err := getEnvelope[model.AuthResponse](ctx, c.api, "login", http.MethodPost, "/api/login.php", nil, "", req)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *authClientImpl) Me(ctx context.Context, token string) (*model.User, error) {
	user, err := getEnvelope[model.User](ctx, c.api, "get me", http.MethodGet, "/api/me.php", nil, token, nil)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *authClientImpl) UpdateProfile(ctx context.Context, token string, update *model.ProfileUpdate) (*model.User, error) {
	user, err := getEnvelope[model.User](ctx, c.api, "update profile", http.MethodPut, "/api/update-profile.php", nil, token, update)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
