package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Database drivers.
const (
	DriverRedis = "redis"
	DriverBleve = "bleve"
)

// Cache backends.
const (
	CacheRedis  = "redis"
	CacheMemory = "memory"
)

// Config holds the global-search service configuration.
type Config struct {
	HTTP         HTTPConfig         `yaml:"http"`
	Database     DatabaseConfig     `yaml:"database"`
	Storage      StorageConfig      `yaml:"storage"`
	Search       SearchConfig       `yaml:"search"`
	Autocomplete AutocompleteConfig `yaml:"autocomplete"`
	Cache        CacheConfig        `yaml:"cache"`
	Auth         AuthConfig         `yaml:"auth"`
	Seed         SeedConfig         `yaml:"seed"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds caller token settings. An empty JWTSecret turns on the
// development caller built from the dev_* fields.
type AuthConfig struct {
	JWTSecret   string `yaml:"jwt_secret"`
	DevRole     string `yaml:"dev_role"`
	DevUserID   string `yaml:"dev_user_id"`
	DevDriverID string `yaml:"dev_driver_id"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds search store connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // redis, bleve (default: redis)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	// BlevePath is the index directory of the embedded backend; empty keeps indexes in memory.
	BlevePath string `yaml:"bleve_path"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// FuzzyConfig holds the default edit-distance tolerance.
type FuzzyConfig struct {
	// nil means unset, 0 means exact matching.
	MaxEdits        *int `yaml:"max_edits"`
	PrefixLength    int  `yaml:"prefix_length"`
	MaxExpansions   int  `yaml:"max_expansions"`
	MaxEditsCeiling int  `yaml:"max_edits_ceiling"`
}

// Edits returns the configured max edits.
func (f FuzzyConfig) Edits() int {
	if f.MaxEdits == nil {
		return 2
	}
	return *f.MaxEdits
}

// SearchConfig holds federated search settings.
type SearchConfig struct {
	Fuzzy           FuzzyConfig `yaml:"fuzzy"`
	DefaultPageSize int         `yaml:"default_page_size"`
	MaxPageSize     int         `yaml:"max_page_size"`
	TimeoutSec      int         `yaml:"timeout_sec"`
}

// Timeout returns the per-request search deadline.
func (s SearchConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSec) * time.Second
}

// AutocompleteConfig holds suggestion settings.
type AutocompleteConfig struct {
	MinChars   int  `yaml:"min_chars"`
	MaxResults int  `yaml:"max_results"`
	Rerank     bool `yaml:"rerank"`
}

// CacheConfig holds the suggestion cache settings.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Backend string `yaml:"backend"` // redis, memory (default: redis on the redis driver, memory otherwise)
	TTLSec  int    `yaml:"ttl_sec"`
	Size    int    `yaml:"size"`
}

// TTL returns the cache entry lifetime.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSec) * time.Second
}

// SeedConfig holds fixture loading settings.
type SeedConfig struct {
	FixturesPath string `yaml:"fixtures_path"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// CONFIG_PATH, when set, overrides the lookup.
func Load(env string) (Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = findConfigPath(env)
	}
	return LoadFile(configPath)
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from GLOBALSEARCH_ENV, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("GLOBALSEARCH_ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverRedis
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "gs:"
	}
	c.Search.applyDefaults()
	if c.Autocomplete.MinChars <= 0 {
		c.Autocomplete.MinChars = 2
	}
	if c.Autocomplete.MaxResults <= 0 {
		c.Autocomplete.MaxResults = 10
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheMemory
		if c.Database.Driver == DriverRedis {
			c.Cache.Backend = CacheRedis
		}
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 300
	}
	if c.Cache.Size <= 0 {
		c.Cache.Size = 1024
	}
	if c.Auth.DevRole == "" {
		c.Auth.DevRole = "admin"
	}
	if c.Auth.DevUserID == "" {
		c.Auth.DevUserID = "dev"
	}
}

func (s *SearchConfig) applyDefaults() {
	if s.Fuzzy.MaxEdits == nil || *s.Fuzzy.MaxEdits < 0 {
		edits := 2
		s.Fuzzy.MaxEdits = &edits
	}
	if s.Fuzzy.MaxExpansions <= 0 {
		s.Fuzzy.MaxExpansions = 50
	}
	if s.Fuzzy.MaxEditsCeiling <= 0 {
		s.Fuzzy.MaxEditsCeiling = 2
	}
	if s.DefaultPageSize <= 0 {
		s.DefaultPageSize = 20
	}
	if s.MaxPageSize <= 0 {
		s.MaxPageSize = 100
	}
	if s.TimeoutSec <= 0 {
		s.TimeoutSec = 5
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case DriverRedis:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required")
		}
	case DriverBleve:
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverRedis, DriverBleve, c.Database.Driver)
	}
	switch c.Cache.Backend {
	case CacheMemory:
	case CacheRedis:
		if c.Database.Driver != DriverRedis {
			return fmt.Errorf("cache.backend %q requires database.driver %q", CacheRedis, DriverRedis)
		}
	default:
		return fmt.Errorf("cache.backend must be %q or %q, got %q", CacheRedis, CacheMemory, c.Cache.Backend)
	}
	if c.Search.Fuzzy.MaxEditsCeiling > 2 {
		return fmt.Errorf("search.fuzzy.max_edits_ceiling must be at most 2, got %d", c.Search.Fuzzy.MaxEditsCeiling)
	}
	if c.Search.DefaultPageSize > c.Search.MaxPageSize {
		return fmt.Errorf("search.default_page_size (%d) exceeds max_page_size (%d)",
			c.Search.DefaultPageSize, c.Search.MaxPageSize)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
