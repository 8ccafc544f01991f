package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"pix-storefront/internal/client"
	"pix-storefront/internal/clock"
	"pix-storefront/internal/model"
	"pix-storefront/internal/session"
)

// AccountService manages the storefront buyer session.
type AccountService interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.Session, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.Session, error)
	Profile(sess *model.Session) (*model.User, error)
	UpdateProfile(ctx context.Context, sess *model.Session, update *model.ProfileUpdate) (*model.User, error)
	Logout(ctx context.Context, sess *model.Session) error
}

type accountServiceImpl struct {
	auth  client.AuthClient
	store *session.Store
	clock clock.Clock
	log   *zap.Logger
}

func NewAccountService(
	auth client.AuthClient,
	store *session.Store,
	clk clock.Clock,
	log *zap.Logger,
) AccountService {
	store.SetVerifier(model.SessionBuyer, func(ctx context.Context, token string) (any, error) {
		user, err := auth.Me(ctx, token)
		if err != nil {
			return nil, err
		}
		return user, nil
	})
	return &accountServiceImpl{
		auth:  auth,
		store: store,
		clock: clk,
		log:   log,
	}
}

func (s *accountServiceImpl) open(ctx context.Context, res *model.AuthResponse) (*model.Session, error) {
	expiresAt := session.ExpiresIn(s.clock.Now(), res.ExpiresIn)
	if expiresAt == nil {
		if exp, err := session.TokenExpiry(res.Token); err == nil {
			expiresAt = exp
		}
	}
	return s.store.Create(ctx, model.SessionBuyer, res.Token, res.User, expiresAt)
}

func (s *accountServiceImpl) Register(ctx context.Context, req *model.RegisterRequest) (*model.Session, error) {
	res, err := s.auth.Register(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	s.log.Info("buyer registered", zap.Int64("user_id", res.User.ID))
	return s.open(ctx, res)
}

func (s *accountServiceImpl) Login(ctx context.Context, req *model.LoginRequest) (*model.Session, error) {
	res, err := s.auth.Login(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return s.open(ctx, res)
}

func (s *accountServiceImpl) Profile(sess *model.Session) (*model.User, error) {
	return session.DecodeProfile[model.User](sess)
}

func (s *accountServiceImpl) UpdateProfile(ctx context.Context, sess *model.Session, update *model.ProfileUpdate) (*model.User, error) {
	if update.Empty() {
		return s.Profile(sess)
	}
	user, err := s.auth.UpdateProfile(ctx, sess.Token, update)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if err := s.store.Update(ctx, sess, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *accountServiceImpl) Logout(ctx context.Context, sess *model.Session) error {
	return s.store.Destroy(ctx, sess.ID)
}
