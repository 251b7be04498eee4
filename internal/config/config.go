package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the wisata configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Storage    StorageConfig    `yaml:"storage"`
	Cache      CacheConfig      `yaml:"cache"`
	Breaker    BreakerConfig    `yaml:"breaker"`
	Artifacts  ArtifactsConfig  `yaml:"artifacts"`
	Recommend  RecommendConfig  `yaml:"recommend"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Auth       AuthConfig       `yaml:"auth"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverValkey   = "valkey"
	DriverRedis    = "redis"
)

// DatabaseConfig holds the destination store connection settings.
type DatabaseConfig struct {
	Driver             string   `yaml:"driver"` // postgres, valkey, redis (default: postgres)
	DSN                string   `yaml:"dsn"`    // postgres only
	Addrs              []string `yaml:"addrs"`  // valkey/redis only
	Password           string   `yaml:"password"`
	ReadinessTimeout   int      `yaml:"readiness_timeout_sec"`
	MaxOpenConns       int      `yaml:"max_open_conns"`
	MaxIdleConns       int      `yaml:"max_idle_conns"`
	ConnMaxLifetimeSec int      `yaml:"conn_max_lifetime_sec"`
}

// StorageConfig holds key layout settings for valkey/redis.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// CacheConfig holds the destination lookup cache settings.
// With a valkey/redis database the cache shares its connection; with postgres it needs its own addrs.
type CacheConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Addrs    []string `yaml:"addrs"`
	Password string   `yaml:"password"`
	TTLSec   int      `yaml:"ttl_sec"`
}

// BreakerConfig holds the destination lookup circuit breaker settings.
type BreakerConfig struct {
	MaxRequests  uint32  `yaml:"max_requests"`
	IntervalSec  int     `yaml:"interval_sec"`
	TimeoutSec   int     `yaml:"timeout_sec"`
	MinRequests  uint32  `yaml:"min_requests"`
	FailureRatio float64 `yaml:"failure_ratio"`
}

// ArtifactsConfig holds model artifact storage settings.
type ArtifactsConfig struct {
	Dir  string `yaml:"dir"`
	Keep int    `yaml:"keep"` // generations kept after a build
}

// RecommendConfig holds query engine settings.
type RecommendConfig struct {
	SimilarityFloor         *float64 `yaml:"similarity_floor"` // nil: 0.05; an explicit 0 is kept
	CandidateCap            int      `yaml:"candidate_cap"`
	SimilarK                int      `yaml:"similar_k"`
	SearchDescriptionLimit  int      `yaml:"search_description_limit"`
	SimilarDescriptionLimit int      `yaml:"similar_description_limit"`
	LoadOnStart             bool     `yaml:"load_on_start"`
	LoadRetrySec            int      `yaml:"load_retry_sec"` // wait after a failed lazy load
}

// Floor returns the configured similarity floor (0.05 when unset).
func (r RecommendConfig) Floor() float64 {
	if r.SimilarityFloor == nil {
		return defaultSimilarityFloor
	}
	return *r.SimilarityFloor
}

// EvaluationConfig holds offline evaluation settings.
type EvaluationConfig struct {
	ScenariosFile   string  `yaml:"scenarios_file"` // empty: built-in scenarios
	ReportPath      string  `yaml:"report_path"`
	SplitReportPath string  `yaml:"split_report_path"`
	Runs            int     `yaml:"runs"`
	TopK            int     `yaml:"top_k"`
	TestSize        float64 `yaml:"test_size"`
	Seed            uint64  `yaml:"seed"`
}

const defaultSimilarityFloor = 0.05

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

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

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
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
		c.Database.Driver = DriverPostgres
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Database.MaxOpenConns <= 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Database.MaxIdleConns <= 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetimeSec <= 0 {
		c.Database.ConnMaxLifetimeSec = 300
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "wisata:"
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 300
	}
	if c.Breaker.MaxRequests == 0 {
		c.Breaker.MaxRequests = 3
	}
	if c.Breaker.IntervalSec <= 0 {
		c.Breaker.IntervalSec = 60
	}
	if c.Breaker.TimeoutSec <= 0 {
		c.Breaker.TimeoutSec = 30
	}
	if c.Breaker.MinRequests == 0 {
		c.Breaker.MinRequests = 10
	}
	if c.Breaker.FailureRatio <= 0 {
		c.Breaker.FailureRatio = 0.6
	}
	if c.Artifacts.Dir == "" {
		c.Artifacts.Dir = "var/artifacts"
	}
	if c.Artifacts.Keep <= 0 {
		c.Artifacts.Keep = 3
	}
	if c.Recommend.SimilarityFloor == nil {
		floor := defaultSimilarityFloor
		c.Recommend.SimilarityFloor = &floor
	}
	if c.Recommend.LoadRetrySec <= 0 {
		c.Recommend.LoadRetrySec = 5
	}
	if c.Recommend.CandidateCap <= 0 {
		c.Recommend.CandidateCap = 30
	}
	if c.Recommend.SimilarK <= 0 {
		c.Recommend.SimilarK = 5
	}
	if c.Recommend.SearchDescriptionLimit <= 0 {
		c.Recommend.SearchDescriptionLimit = 150
	}
	if c.Recommend.SimilarDescriptionLimit <= 0 {
		c.Recommend.SimilarDescriptionLimit = 120
	}
	if c.Evaluation.ReportPath == "" {
		c.Evaluation.ReportPath = "evaluation_report.csv"
	}
	if c.Evaluation.Runs <= 0 {
		c.Evaluation.Runs = 5
	}
	if c.Evaluation.TopK <= 0 {
		c.Evaluation.TopK = 5
	}
	if c.Evaluation.TestSize <= 0 {
		c.Evaluation.TestSize = 0.2
	}
	if c.Evaluation.Seed == 0 {
		c.Evaluation.Seed = 42
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for the postgres driver")
		}
		if c.Cache.Enabled && len(c.Cache.Addrs) == 0 {
			return fmt.Errorf("cache.addrs is required when the cache is enabled with postgres")
		}
	case DriverValkey, DriverRedis:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required")
		}
	default:
		return fmt.Errorf("database.driver must be postgres, valkey or redis, got %q", c.Database.Driver)
	}
	if floor := c.Recommend.Floor(); floor < 0 || floor > 1 {
		return fmt.Errorf("recommend.similarity_floor must be between 0 and 1, got %v", floor)
	}
	if c.Breaker.FailureRatio > 1 {
		return fmt.Errorf("breaker.failure_ratio must be between 0 and 1, got %v", c.Breaker.FailureRatio)
	}
	if c.Evaluation.TestSize >= 1 {
		return fmt.Errorf("evaluation.test_size must be between 0 and 1, got %v", c.Evaluation.TestSize)
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
