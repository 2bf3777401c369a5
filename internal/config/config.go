package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// UnitConfig configures one charmd unit daemon.
type UnitConfig struct {
	Unit             string   `toml:"unit"`
	StatePath        string   `toml:"state_path"`
	HTTPAddr         string   `toml:"http_addr"`
	AdminAddr        string   `toml:"admin_addr"`
	CorsOrigins      []string `toml:"cors_origins"`
	HeartbeatSeconds int      `toml:"heartbeat_seconds"`
	RequiredSyncs    []string `toml:"required_syncs"`

	Commands CommandsConfig `toml:"commands"`
}

// CommandsConfig maps lifecycle hooks to host commands (argv form).
// Empty entries make the hook a no-op.
type CommandsConfig struct {
	Install []string `toml:"install"`
	Enable  []string `toml:"enable"`
	Disable []string `toml:"disable"`
	Start   []string `toml:"start"`
	Stop    []string `toml:"stop"`
	Sync    []string `toml:"sync"`
}

func LoadUnitConfig(path string) (UnitConfig, error) {
	var cfg UnitConfig
	if err := loadToml(path, &cfg); err != nil {
		return UnitConfig{}, err
	}
	applyDefaults(&cfg)
	if err := ValidateUnitConfig(cfg); err != nil {
		return UnitConfig{}, err
	}
	return cfg, nil
}

// DefaultUnitConfig returns a runnable config without a file.
func DefaultUnitConfig() UnitConfig {
	cfg := UnitConfig{}
	applyDefaults(&cfg)
	return cfg
}

func applyDefaults(cfg *UnitConfig) {
	if cfg.Unit == "" {
		cfg.Unit = "charmd.local"
	}
	if cfg.StatePath == "" {
		cfg.StatePath = "local/state/" + cfg.Unit + ".toml"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":9040"
	}
	if cfg.HeartbeatSeconds <= 0 {
		cfg.HeartbeatSeconds = 5
	}
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func ValidateUnitConfig(cfg UnitConfig) error {
	if strings.TrimSpace(cfg.Unit) == "" {
		return fmt.Errorf("unit config missing unit")
	}
	if strings.TrimSpace(cfg.StatePath) == "" {
		return fmt.Errorf("unit config missing state_path")
	}
	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		return fmt.Errorf("unit config missing http_addr")
	}
	if cfg.HeartbeatSeconds <= 0 {
		return fmt.Errorf("unit config heartbeat_seconds must be positive")
	}
	for _, key := range cfg.RequiredSyncs {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("unit config required_syncs contains empty key")
		}
	}
	return nil
}
