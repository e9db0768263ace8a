package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/curascan/cli/internal/domain"
	"github.com/curascan/cli/internal/ports"
)

// CredentialStore is the single durable holder of the session across
// restarts. The token lives in the vault, the profile in the cache;
// this store joins them and enforces the all-or-nothing invariant: a
// half-present session is cleared and reported as absent.
type CredentialStore struct {
	vault    ports.TokenVault
	profiles ports.ProfileCache
}

func NewCredentialStore(vault ports.TokenVault, profiles ports.ProfileCache) *CredentialStore {
	return &CredentialStore{vault: vault, profiles: profiles}
}

func (s *CredentialStore) Load(ctx context.Context) (domain.Session, error) {
	token, tokenErr := s.vault.Read(ctx)
	actor, profileErr := s.profiles.Load(ctx)

	switch {
	case tokenErr == nil && profileErr == nil:
		session := domain.Session{Actor: actor, AccessToken: token}
		if !session.Present() {
			_ = s.Clear(ctx)
			return domain.Session{}, domain.ErrSessionNotFound
		}
		return session, nil

	case errors.Is(tokenErr, domain.ErrTokenNotFound) || errors.Is(profileErr, domain.ErrProfileNotCached):
		// One half is gone; drop the other so no partial session survives.
		_ = s.Clear(ctx)
		return domain.Session{}, domain.ErrSessionNotFound

	case tokenErr != nil:
		return domain.Session{}, fmt.Errorf("read stored token: %w", tokenErr)

	default:
		return domain.Session{}, fmt.Errorf("load cached profile: %w", profileErr)
	}
}

func (s *CredentialStore) Save(ctx context.Context, session domain.Session) error {
	if !session.Present() {
		return errors.New("refusing to persist a partial session")
	}

	if err := s.vault.Write(ctx, session.AccessToken); err != nil {
		return fmt.Errorf("store access token: %w", err)
	}

	if err := s.profiles.Save(ctx, session.Actor); err != nil {
		if rollbackErr := s.vault.Delete(ctx); rollbackErr != nil {
			return fmt.Errorf("cache profile and rollback stored token: %w", errors.Join(err, rollbackErr))
		}
		return fmt.Errorf("cache profile: %w", err)
	}

	return nil
}

// Clear removes both halves. Safe to call when nothing is stored.
func (s *CredentialStore) Clear(ctx context.Context) error {
	var errs []error
	if err := s.vault.Delete(ctx); err != nil {
		errs = append(errs, fmt.Errorf("delete access token: %w", err))
	}
	if err := s.profiles.Clear(ctx); err != nil {
		errs = append(errs, fmt.Errorf("clear cached profile: %w", err))
	}
	return errors.Join(errs...)
}
