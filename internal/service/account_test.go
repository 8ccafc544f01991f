package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pix-storefront/internal/client"
	"pix-storefront/internal/clock"
	"pix-storefront/internal/model"
	"pix-storefront/internal/session"
)

func TestAccountLoginCreatesSession(t *testing.T) {
	clk := clock.NewFake(epoch)
	store := newTestStore(t, clk)
	auth := &fakeAuth{
		login: func(req *model.LoginRequest) (*model.AuthResponse, error) {
			return &model.AuthResponse{Token: "buyer-token", ExpiresIn: 7200, User: model.User{ID: 1, Username: "ana", Email: req.Email}}, nil
		},
		me: func(string) (*model.User, error) { return &model.User{ID: 1, Username: "ana"}, nil },
	}
	svc := NewAccountService(auth, store, clk, zap.NewNop())

	sess, err := svc.Login(context.Background(), &model.LoginRequest{Email: "ana@example.com", Password: "x"})
	require.NoError(t, err)
	require.NotNil(t, sess.ExpiresAt)
	assert.Equal(t, epoch.Add(2*time.Hour), *sess.ExpiresAt)

	user, err := svc.Profile(sess)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)

	require.NoError(t, svc.Logout(context.Background(), sess))
	_, err = store.Load(context.Background(), sess.ID, model.SessionBuyer)
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestAccountSessionReverifiedAndRejected(t *testing.T) {
	clk := clock.NewFake(epoch)
	store := newTestStore(t, clk)
	auth := &fakeAuth{
		login: func(*model.LoginRequest) (*model.AuthResponse, error) {
			return &model.AuthResponse{Token: "tok", User: model.User{ID: 1}}, nil
		},
		me: func(string) (*model.User, error) { return nil, unauthorized() },
	}
	svc := NewAccountService(auth, store, clk, zap.NewNop())

	sess, err := svc.Login(context.Background(), &model.LoginRequest{Email: "a@b.co"})
	require.NoError(t, err)

	_, err = store.Load(context.Background(), sess.ID, model.SessionBuyer)
	require.NoError(t, err)
	assert.Equal(t, 0, auth.meN)

	clk.Advance(6 * time.Minute)
	_, err = store.Load(context.Background(), sess.ID, model.SessionBuyer)
	assert.ErrorIs(t, err, session.ErrSessionRejected)
	assert.Equal(t, 1, auth.meN)
}

func TestAccountRegisterAndUpdateProfile(t *testing.T) {
	clk := clock.NewFake(epoch)
	store := newTestStore(t, clk)
	svc := NewAccountService(&fakeAuth{}, store, clk, zap.NewNop())
	ctx := context.Background()

	sess, err := svc.Register(ctx, &model.RegisterRequest{Username: "bia", Email: "bia@example.com", Password: "secret"})
	require.NoError(t, err)

	user, err := svc.UpdateProfile(ctx, sess, &model.ProfileUpdate{})
	require.NoError(t, err)
	assert.Equal(t, "bia", user.Username)

	user, err = svc.UpdateProfile(ctx, sess, &model.ProfileUpdate{Username: "bia2"})
	require.NoError(t, err)
	assert.Equal(t, "bia2", user.Username)

	loaded, err := store.Load(ctx, sess.ID, model.SessionBuyer)
	require.NoError(t, err)
	cached, err := session.DecodeProfile[model.User](loaded)
	require.NoError(t, err)
	assert.Equal(t, "bia2", cached.Username)
}

func merchantToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"merchant_id": 1,
		"email":       "owner@example.com",
		"exp":         exp.Unix(),
	}).SignedString([]byte("server-secret"))
	require.NoError(t, err)
	return token
}

func TestMerchantLoginUsesTokenExpiry(t *testing.T) {
	clk := clock.NewFake(epoch)
	store := newTestStore(t, clk)
	exp := epoch.Add(8 * time.Hour)
	ent := &fakeEnterprise{login: &model.AdminLoginResponse{
		Token:    merchantToken(t, exp),
		Merchant: model.Merchant{ID: 1, Name: "Loja"},
	}}
	svc := NewMerchantService(ent, store, zap.NewNop())

	sess, err := svc.Login(context.Background(), "owner@example.com", "pw")
	require.NoError(t, err)
	require.NotNil(t, sess.ExpiresAt)
	assert.True(t, exp.Equal(*sess.ExpiresAt))

	m, err := svc.Merchant(sess)
	require.NoError(t, err)
	assert.Equal(t, "Loja", m.Name)

	clk.Advance(8 * time.Hour)
	_, err = store.Load(context.Background(), sess.ID, model.SessionMerchant)
	assert.ErrorIs(t, err, session.ErrSessionExpired)
}

func TestMerchantVerifyKeepsProfile(t *testing.T) {
	clk := clock.NewFake(epoch)
	store := newTestStore(t, clk)
	ent := &fakeEnterprise{login: &model.AdminLoginResponse{Token: "opaque", Merchant: model.Merchant{ID: 1, Name: "Loja"}}}
	svc := NewMerchantService(ent, store, zap.NewNop())

	sess, err := svc.Login(context.Background(), "owner@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, epoch.Add(24*time.Hour), *sess.ExpiresAt)

	clk.Advance(10 * time.Minute)
	loaded, err := store.Load(context.Background(), sess.ID, model.SessionMerchant)
	require.NoError(t, err)
	m, err := svc.Merchant(loaded)
	require.NoError(t, err)
	assert.Equal(t, "Loja", m.Name)
	assert.Equal(t, clk.Now(), loaded.VerifiedAt.UTC())
}

func TestMerchantLogoutAlwaysDestroys(t *testing.T) {
	clk := clock.NewFake(epoch)
	store := newTestStore(t, clk)
	ent := &fakeEnterprise{
		login:     &model.AdminLoginResponse{Token: "opaque", Merchant: model.Merchant{ID: 1}},
		logoutErr: &client.RequestError{Op: "logout", StatusCode: 500},
	}
	svc := NewMerchantService(ent, store, zap.NewNop())

	sess, err := svc.Login(context.Background(), "owner@example.com", "pw")
	require.NoError(t, err)
	require.NoError(t, svc.Logout(context.Background(), sess))
	assert.Equal(t, 1, ent.logouts)

	_, err = store.Load(context.Background(), sess.ID, model.SessionMerchant)
	assert.ErrorIs(t, err, session.ErrNoSession)
}
