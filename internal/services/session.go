package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/finanse/internal/auth"
	"github.com/dmitrijs2005/finanse/internal/common"
	"github.com/dmitrijs2005/finanse/internal/local/metadata"
)

// SessionService keeps the device session: a signed token persisted in the
// local metadata table. Starting a new session overwrites the previous one.
type SessionService struct {
	meta      metadata.Repository
	secretKey []byte
	validity  time.Duration
}

func NewSessionService(meta metadata.Repository, secretKey []byte, validity time.Duration) *SessionService {
	return &SessionService{meta: meta, secretKey: secretKey, validity: validity}
}

// Start issues a token for the principal and persists it.
func (s *SessionService) Start(ctx context.Context, p auth.Principal) error {
	token, err := auth.GenerateToken(p, s.secretKey, s.validity)
	if err != nil {
		return err
	}
	return s.meta.Set(ctx, metadata.KeySessionToken, []byte(token))
}

// Current returns the principal of the stored session. An absent, expired
// or tampered token yields common.ErrUnauthorized.
func (s *SessionService) Current(ctx context.Context) (auth.Principal, error) {
	token, err := s.meta.Get(ctx, metadata.KeySessionToken)
	if err != nil {
		return auth.Principal{}, err
	}
	if token == nil {
		return auth.Principal{}, common.ErrUnauthorized
	}

	p, err := auth.PrincipalFromToken(string(token), s.secretKey)
	if err != nil {
		return auth.Principal{}, common.ErrUnauthorized
	}
	return p, nil
}

// End discards the stored session.
func (s *SessionService) End(ctx context.Context) error {
	return s.meta.Delete(ctx, metadata.KeySessionToken)
}
