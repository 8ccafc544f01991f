package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"pix-storefront/internal/client"
	"pix-storefront/internal/model"
	"pix-storefront/internal/session"
)

// MerchantService manages the merchant console session.
type MerchantService interface {
	Login(ctx context.Context, email, password string) (*model.Session, error)
	Merchant(sess *model.Session) (*model.Merchant, error)
	Logout(ctx context.Context, sess *model.Session) error
}

type merchantServiceImpl struct {
	enterprise client.EnterpriseClient
	store      *session.Store
	log        *zap.Logger
}

func NewMerchantService(
	enterprise client.EnterpriseClient,
	store *session.Store,
	log *zap.Logger,
) MerchantService {
	// verify only confirms the token; the cached merchant profile is kept
	store.SetVerifier(model.SessionMerchant, func(ctx context.Context, token string) (any, error) {
		if _, err := enterprise.Verify(ctx, token); err != nil {
			return nil, err
		}
		return nil, nil
	})
	return &merchantServiceImpl{
		enterprise: enterprise,
		store:      store,
		log:        log,
	}
}

func (s *merchantServiceImpl) Login(ctx context.Context, email, password string) (*model.Session, error) {
	res, err := s.enterprise.Login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("merchant login: %w", err)
	}

	expiresAt, err := session.TokenExpiry(res.Token)
	if err != nil {
		s.log.Warn("merchant token is not a readable jwt, using session ttl", zap.Error(err))
		expiresAt = nil
	}

	sess, err := s.store.Create(ctx, model.SessionMerchant, res.Token, res.Merchant, expiresAt)
	if err != nil {
		return nil, err
	}
	s.log.Info("merchant logged in", zap.Int64("merchant_id", res.Merchant.ID))
	return sess, nil
}

func (s *merchantServiceImpl) Merchant(sess *model.Session) (*model.Merchant, error) {
	return session.DecodeProfile[model.Merchant](sess)
}

// Logout revokes the token upstream on a best-effort basis and always drops
// the local session.
func (s *merchantServiceImpl) Logout(ctx context.Context, sess *model.Session) error {
	if err := s.enterprise.Logout(ctx, sess.Token); err != nil {
		s.log.Warn("merchant logout call failed", zap.Error(err))
	}
	return s.store.Destroy(ctx, sess.ID)
}
