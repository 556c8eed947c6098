package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all server configuration
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	JWT         JWTConfig         `yaml:"jwt"`
	Redis       RedisConfig       `yaml:"redis"`
	Board       BoardConfig       `yaml:"board"`
	Propagation PropagationConfig `yaml:"propagation"`
	Log         LogConfig         `yaml:"log"`
}

// ServerConfig holds server-specific settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// JWTConfig holds JWT authentication settings. An empty PublicKeyURL
// disables authentication.
type JWTConfig struct {
	Issuer              string `yaml:"issuer"`
	PublicKeyURL        string `yaml:"public_key_url"`
	PublicKeyRefreshHrs int    `yaml:"public_key_refresh_hours"`
}

// Enabled reports whether tokens are checked.
func (j JWTConfig) Enabled() bool { return j.PublicKeyURL != "" }

// RedisConfig holds Redis connection settings. An empty Address disables
// the result cache and the token blacklist.
type RedisConfig struct {
	Address         string `yaml:"address"`
	Password        string `yaml:"password"`
	DB              int    `yaml:"db"`
	BlacklistPrefix string `yaml:"blacklist_prefix"`
	CachePrefix     string `yaml:"cache_prefix"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
}

// Enabled reports whether a Redis server is configured.
func (r RedisConfig) Enabled() bool { return r.Address != "" }

// CacheTTL returns the cache entry lifetime.
func (r RedisConfig) CacheTTL() time.Duration {
	return time.Duration(r.CacheTTLSeconds) * time.Second
}

// BoardConfig points at the board documents to serve
type BoardConfig struct {
	ID             string `yaml:"id"`
	InfoPath       string `yaml:"info_path"`
	PlacementsPath string `yaml:"placements_path"` // derived from tile centres when empty
}

// PropagationConfig holds the option defaults given to every new player
type PropagationConfig struct {
	Direction int      `yaml:"direction"`
	Spread    *float64 `yaml:"spread"`
	Reach     *float64 `yaml:"reach"`
	MaxBudget float64  `yaml:"max_budget"` // largest spread or reach a client may ask for
}

// maxBudgetCeiling caps propagation.max_budget. Linear propagation work
// grows with the square of the budget.
const maxBudgetCeiling = 1024

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.setDefaults()

	if cfg.Board.InfoPath == "" {
		return nil, fmt.Errorf("board.info_path is required")
	}

	if err := cfg.Propagation.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (cfg *Config) setDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.JWT.PublicKeyRefreshHrs == 0 {
		cfg.JWT.PublicKeyRefreshHrs = 24
	}
	if cfg.Redis.BlacklistPrefix == "" {
		cfg.Redis.BlacklistPrefix = "blacklist:"
	}
	if cfg.Redis.CachePrefix == "" {
		cfg.Redis.CachePrefix = "hexboard:"
	}
	if cfg.Redis.CacheTTLSeconds == 0 {
		cfg.Redis.CacheTTLSeconds = 300
	}
	if cfg.Board.ID == "" {
		cfg.Board.ID = "board"
	}
	// Spread and reach default to 1 but may be set to 0 explicitly.
	if cfg.Propagation.Spread == nil {
		one := 1.0
		cfg.Propagation.Spread = &one
	}
	if cfg.Propagation.Reach == nil {
		one := 1.0
		cfg.Propagation.Reach = &one
	}
	if cfg.Propagation.MaxBudget == 0 {
		cfg.Propagation.MaxBudget = 16
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

func (p PropagationConfig) validate() error {
	if !(p.MaxBudget > 0 && p.MaxBudget <= maxBudgetCeiling) {
		return fmt.Errorf("propagation.max_budget must be in (0, %d], got %g", maxBudgetCeiling, p.MaxBudget)
	}
	if !(*p.Spread <= p.MaxBudget) {
		return fmt.Errorf("propagation.spread %g exceeds max_budget %g", *p.Spread, p.MaxBudget)
	}
	if !(*p.Reach <= p.MaxBudget) {
		return fmt.Errorf("propagation.reach %g exceeds max_budget %g", *p.Reach, p.MaxBudget)
	}
	return nil
}
