// Package session keeps the buyer and merchant bearer tokens server-side. A
// browser only holds an opaque session ID cookie.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"pix-storefront/internal/client"
	"pix-storefront/internal/clock"
	"pix-storefront/internal/config"
	"pix-storefront/internal/model"
	"pix-storefront/internal/repository"
)

var (
	ErrNoSession       = errors.New("no session")
	ErrSessionExpired  = errors.New("session expired")
	ErrSessionRejected = errors.New("session rejected by server")
)

// VerifyFunc asks the API whether token is still valid and returns a fresh
// profile to cache.
type VerifyFunc func(ctx context.Context, token string) (any, error)

type Store struct {
	repo           repository.SessionRepository
	clock          clock.Clock
	log            *zap.Logger
	ttl            time.Duration
	verifyInterval time.Duration
	verifiers      map[model.SessionKind]VerifyFunc
}

func NewStore(repo repository.SessionRepository, cfg *config.Session, clk clock.Clock, log *zap.Logger) *Store {
	return &Store{
		repo:           repo,
		clock:          clk,
		log:            log,
		ttl:            cfg.TTL,
		verifyInterval: cfg.VerifyInterval,
		verifiers:      make(map[model.SessionKind]VerifyFunc),
	}
}

// SetVerifier installs the re-verification call for a principal. Kinds without
// a verifier are trusted until they expire.
func (s *Store) SetVerifier(kind model.SessionKind, fn VerifyFunc) {
	s.verifiers[kind] = fn
}

// Create persists a fresh session. A nil expiresAt falls back to the configured TTL.
func (s *Store) Create(ctx context.Context, kind model.SessionKind, token string, profile any, expiresAt *time.Time) (*model.Session, error) {
	if token == "" {
		return nil, fmt.Errorf("create %s session: empty token", kind)
	}
	raw, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("encode %s profile: %w", kind, err)
	}

	now := s.clock.Now()
	if expiresAt == nil && s.ttl > 0 {
		exp := now.Add(s.ttl)
		expiresAt = &exp
	}

	sess := &model.Session{
		ID:         uuid.NewString(),
		Kind:       kind,
		Token:      token,
		Profile:    string(raw),
		ExpiresAt:  expiresAt,
		VerifiedAt: now,
	}
	if err := s.repo.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save %s session: %w", kind, err)
	}
	return sess, nil
}

// Load hydrates a session of the given kind. Expired sessions are destroyed
// without calling the API. Stale sessions are re-verified: a 401 or an explicit
// rejection destroys the session, a network failure keeps it until the next
// request.
func (s *Store) Load(ctx context.Context, id string, kind model.SessionKind) (*model.Session, error) {
	if id == "" {
		return nil, ErrNoSession
	}

	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess.Kind != kind {
		return nil, ErrNoSession
	}

	now := s.clock.Now()
	if sess.Expired(now) {
		s.destroyQuietly(ctx, sess.ID)
		return nil, ErrSessionExpired
	}

	verify, ok := s.verifiers[kind]
	if !ok || now.Sub(sess.VerifiedAt) < s.verifyInterval {
		return sess, nil
	}

	profile, err := verify(ctx, sess.Token)
	if err != nil {
		if client.IsUnauthorized(err) || client.IsBusiness(err) {
			s.log.Info("session rejected on verify",
				zap.String("kind", string(kind)), zap.Error(err))
			s.destroyQuietly(ctx, sess.ID)
			return nil, ErrSessionRejected
		}
		s.log.Warn("session verify failed, keeping session",
			zap.String("kind", string(kind)), zap.Error(err))
		return sess, nil
	}

	if err := s.Update(ctx, sess, profile); err != nil {
		return nil, err
	}
	return sess, nil
}

// Update replaces the cached profile and marks the session verified.
func (s *Store) Update(ctx context.Context, sess *model.Session, profile any) error {
	if profile != nil {
		raw, err := json.Marshal(profile)
		if err != nil {
			return fmt.Errorf("encode %s profile: %w", sess.Kind, err)
		}
		sess.Profile = string(raw)
	}
	sess.VerifiedAt = s.clock.Now()

	if err := s.repo.Save(ctx, sess); err != nil {
		return fmt.Errorf("save %s session: %w", sess.Kind, err)
	}
	return nil
}

func (s *Store) Destroy(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}

func (s *Store) destroyQuietly(ctx context.Context, id string) {
	if err := s.Destroy(ctx, id); err != nil {
		s.log.Warn("failed to destroy session", zap.Error(err))
	}
}

// Sweep removes expired sessions until ctx is done.
func (s *Store) Sweep(ctx context.Context, every time.Duration) {
	ticker := s.clock.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			n, err := s.repo.DeleteExpired(ctx, s.clock.Now())
			if err != nil {
				s.log.Warn("session sweep failed", zap.Error(err))
				continue
			}
			if n > 0 {
				s.log.Debug("swept expired sessions", zap.Int64("count", n))
			}
		}
	}
}

// DecodeProfile unmarshals the cached principal of a session.
func DecodeProfile[T any](sess *model.Session) (*T, error) {
	var out T
	if sess.Profile == "" {
		return &out, nil
	}
	if err := json.Unmarshal([]byte(sess.Profile), &out); err != nil {
		return nil, fmt.Errorf("decode %s profile: %w", sess.Kind, err)
	}
	return &out, nil
}

// TokenExpiry reads the exp claim of a JWT without verifying its signature;
// the API remains the authority on validity. Tokens without exp return nil.
func TokenExpiry(token string) (*time.Time, error) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if claims.ExpiresAt == nil {
		return nil, nil
	}
	exp := claims.ExpiresAt.Time
	return &exp, nil
}

// ExpiresIn converts an expires_in seconds value into an absolute time.
func ExpiresIn(now time.Time, seconds int64) *time.Time {
	if seconds <= 0 {
		return nil
	}
	exp := now.Add(time.Duration(seconds) * time.Second)
	return &exp
}
