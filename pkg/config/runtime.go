package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Player store kinds.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Runtime holds process settings read from the environment.
type Runtime struct {
	CatalogPath string `env:"CATALOG_PATH" envDefault:"config/catalog.yaml"`

	// SessionTTL bounds the time between stage entry and stage clear.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"30m"`

	// ClockOffset shifts server time, e.g. to test reset boundaries.
	ClockOffset time.Duration `env:"CLOCK_OFFSET" envDefault:"0s"`

	// StaminaRecoveryInterval is the time to recover one stamina point; 0 disables recovery.
	StaminaRecoveryInterval time.Duration `env:"STAMINA_RECOVERY_INTERVAL" envDefault:"5m"`

	PlayerStore string `env:"PLAYER_STORE" envDefault:"memory"`
	LogLevel    string `env:"LOG_LEVEL"    envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT"   envDefault:"text"`
}

// LoadRuntime parses runtime settings from environment variables.
func LoadRuntime() (Runtime, error) {
	var cfg Runtime
	if err := env.Parse(&cfg); err != nil {
		return Runtime{}, fmt.Errorf("failed to parse runtime config: %w", err)
	}

	switch cfg.PlayerStore {
	case StoreMemory, StorePostgres:
	default:
		return Runtime{}, fmt.Errorf("invalid PLAYER_STORE '%s' (must be '%s' or '%s')", cfg.PlayerStore, StoreMemory, StorePostgres)
	}
	if cfg.StaminaRecoveryInterval < 0 {
		return Runtime{}, fmt.Errorf("STAMINA_RECOVERY_INTERVAL cannot be negative")
	}

	return cfg, nil
}
