// Package config loads vf configuration from a YAML file, an optional .env
// file and VF_* environment variables, in that order of precedence (env wins).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/adhocore/gronx"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"vaultfire/internal/storage"
)

const (
	DefaultAddr      = "127.0.0.1:8080"
	DefaultChainCron = "* * * * *"
	DefaultRPS       = 5.0
	DefaultBurst     = 10
)

const defaultConfigYAML = `# vaultfire configuration
storage:
  backend: file   # file | sqlite | pebble
  # data_dir: ~/.vaultfire

logging:
  level: info
  format: text
  sink: stderr    # stderr | stdout | file:/path/to/vf.log

dashboard:
  addr: 127.0.0.1:8080
  rate_limit:
    rps: 5
    burst: 10

chain:
  cron: "* * * * *"

export:
  # dir: ~/.vaultfire/exports
`

type StorageConfig struct {
	Backend string `yaml:"backend"`
	DataDir string `yaml:"data_dir"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Sink   string `yaml:"sink"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type DashboardConfig struct {
	Addr      string          `yaml:"addr"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type ChainConfig struct {
	Cron string `yaml:"cron"`
}

type ExportConfig struct {
	Dir string `yaml:"dir"`
}

type Config struct {
	Storage   StorageConfig   `yaml:"storage"`
	Logging   LoggingConfig   `yaml:"logging"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Chain     ChainConfig     `yaml:"chain"`
	Export    ExportConfig    `yaml:"export"`
}

// Default returns the built-in configuration.
func Default() Config {
	dataDir := defaultDataDir()
	return Config{
		Storage:   StorageConfig{Backend: storage.BackendFile, DataDir: dataDir},
		Logging:   LoggingConfig{Level: "info", Format: "text", Sink: "stderr"},
		Dashboard: DashboardConfig{Addr: DefaultAddr, RateLimit: RateLimitConfig{RPS: DefaultRPS, Burst: DefaultBurst}},
		Chain:     ChainConfig{Cron: DefaultChainCron},
		Export:    ExportConfig{Dir: filepath.Join(dataDir, "exports")},
	}
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() string {
	if p := strings.TrimSpace(os.Getenv("VF_CONFIG")); p != "" {
		return p
	}
	return filepath.Join(defaultDataDir(), "config.yaml")
}

func defaultDataDir() string {
	dir, err := storage.DefaultDataDir()
	if err != nil {
		return ".vaultfire"
	}
	return dir
}

// Load reads path (DefaultPath when empty) over the defaults, then applies
// .env and environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	_ = godotenv.Load(".env")

	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	cfg.Storage.DataDir = expandHome(cfg.Storage.DataDir)
	cfg.Export.Dir = expandHome(cfg.Export.Dir)
	if cfg.Export.Dir == "" {
		cfg.Export.Dir = filepath.Join(cfg.Storage.DataDir, "exports")
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str("VF_DATA_DIR", &c.Storage.DataDir)
	str("VF_STORE", &c.Storage.Backend)
	str("VF_LOG_LEVEL", &c.Logging.Level)
	str("VF_LOG_FORMAT", &c.Logging.Format)
	str("VF_LOG_SINK", &c.Logging.Sink)
	str("VF_ADDR", &c.Dashboard.Addr)
	str("VF_CHAIN_CRON", &c.Chain.Cron)
	str("VF_EXPORT_DIR", &c.Export.Dir)

	if v := strings.TrimSpace(os.Getenv("VF_RATE_RPS")); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("VF_RATE_RPS: %w", err)
		}
		c.Dashboard.RateLimit.RPS = rps
	}
	return nil
}

// Validate rejects settings the rest of the program cannot start with.
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case storage.BackendFile, storage.BackendSQLite, storage.BackendPebble:
	default:
		return fmt.Errorf("storage.backend: unknown backend %q", c.Storage.Backend)
	}
	if strings.TrimSpace(c.Storage.DataDir) == "" {
		return errors.New("storage.data_dir: required")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format: unknown format %q", c.Logging.Format)
	}
	if !gronx.IsValid(c.Chain.Cron) {
		return fmt.Errorf("chain.cron: invalid expression %q", c.Chain.Cron)
	}
	if c.Dashboard.RateLimit.RPS <= 0 || c.Dashboard.RateLimit.Burst <= 0 {
		return errors.New("dashboard.rate_limit: rps and burst must be positive")
	}
	return nil
}

// WriteDefault writes the commented default config to path unless a file
// already exists there.
func WriteDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := storage.WriteFileAtomic(path, []byte(defaultConfigYAML)); err != nil {
		return false, fmt.Errorf("write default config: %w", err)
	}
	return true, nil
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
