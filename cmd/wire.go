package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/curascan/cli/internal/adapters/api"
	tomlstore "github.com/curascan/cli/internal/adapters/credentials/toml"
	"github.com/curascan/cli/internal/adapters/credentials/vault"
	"github.com/curascan/cli/internal/application"
	"github.com/curascan/cli/internal/ports"
)

const configDir = ".curascan"

type app struct {
	sessions *application.SessionManager
	workflow *application.ScreeningWorkflow
	creds    *application.CredentialStore
	client   *api.Client
	baseURL  string
	now      func() time.Time
}

func wireApp() (*app, error) {
	profiles, err := tomlstore.NewStore(viper.New())
	if err != nil {
		return nil, fmt.Errorf("wire profile cache: %w", err)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	tokenVault := vault.NewStore(filepath.Join(homeDir, configDir, "token"))
	creds := application.NewCredentialStore(tokenVault, profiles)

	baseURL := envOrDefault("CURA_API_BASE_URL", "https://api.curascan.health")

	// The client needs the session manager for its ambient token, and
	// the session manager needs the client for auth calls; the closures
	// break the cycle.
	var sessions *application.SessionManager
	client := api.New(baseURL,
		func() string {
			if sessions == nil {
				return ""
			}
			return sessions.Token()
		},
		func() {
			if sessions != nil {
				sessions.Invalidate(context.Background())
			}
		},
	)
	sessions = application.NewSessionManager(client, creds, ports.SystemClock{})
	workflow := application.NewScreeningWorkflow(client, client, ports.SystemClock{})

	return &app{
		sessions: sessions,
		workflow: workflow,
		creds:    creds,
		client:   client,
		baseURL:  baseURL,
		now:      time.Now,
	}, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
