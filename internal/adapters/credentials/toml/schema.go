package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version int            `toml:"version"`
	Profile *profileSchema `toml:"profile"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported session schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type profileSchema struct {
	ID       string `toml:"id"`
	Username string `toml:"username"`
	Email    string `toml:"email,omitempty"`
	FullName string `toml:"full_name,omitempty"`
	Role     string `toml:"role"`
	TenantID string `toml:"tenant_id,omitempty"`
	SavedAt  string `toml:"saved_at,omitempty"`
}
