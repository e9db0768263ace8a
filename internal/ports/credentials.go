package ports

import (
	"context"

	"github.com/curascan/cli/internal/domain"
)

// TokenVault holds the bearer token at rest, separate from the profile
// cache so the secret never travels with plain metadata.
type TokenVault interface {
	Read(ctx context.Context) (string, error)
	Write(ctx context.Context, token string) error
	Delete(ctx context.Context) error
}

// ProfileCache persists the last-known actor profile across restarts.
type ProfileCache interface {
	Load(ctx context.Context) (domain.Actor, error)
	Save(ctx context.Context, actor domain.Actor) error
	Clear(ctx context.Context) error
}
