// Package corpus holds the process-wide Config loaded from environment
// variables: data directory, query thread-pool size, optimizer toggle,
// plan-cache sizing, and the corpus-cache byte budget. Unlike the teacher's
// config package there is no Neo4j dual-naming scheme to preserve; every
// variable uses a single ANNISQUERY_ prefix. A YAML file may additionally
// override defaults before the environment is applied, for callers who
// prefer a checked-in config file over a pile of exported variables.
package corpus

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every environment-tunable setting the CLI and corpus cache
// consult at startup. Use LoadFromEnv to build one with defaults applied,
// then Validate before use.
type Config struct {
	// DataDir is the root directory holding persisted corpus checkpoints.
	DataDir string

	// QueryThreadPoolSize is the default taskpool.Pool worker count handed
	// to Planner.Plan's QueryConfig when a query doesn't override it. 0
	// disables the task pool by default.
	QueryThreadPoolSize int

	// OptimizerEnabled gates the planner's commutative-operand-swap pass.
	OptimizerEnabled bool

	// PlanCacheSize is the maximum number of plan shapes the plancache LRU
	// retains.
	PlanCacheSize int
	// PlanCacheTTL is how long a cached plan shape remains valid. 0
	// disables expiration (LRU eviction alone governs retention).
	PlanCacheTTL time.Duration

	// CorpusCacheByteBudget bounds the corpuscache's approximate total
	// resident size across loaded corpora before LRU eviction kicks in.
	CorpusCacheByteBudget int64

	// LogLevel is the logx.Level name (DEBUG, INFO, WARN, ERROR) the CLI
	// parses into a logx.Logger.
	LogLevel string
}

// LoadFromEnv reads every ANNISQUERY_-prefixed variable, falling back to
// sensible defaults so LoadFromEnv() is usable with no environment set.
func LoadFromEnv() *Config {
	return &Config{
		DataDir:               getEnv("ANNISQUERY_DATA_DIR", "./data"),
		QueryThreadPoolSize:   getEnvInt("ANNISQUERY_QUERY_THREAD_POOL_SIZE", 0),
		OptimizerEnabled:      getEnvBool("ANNISQUERY_OPTIMIZER_ENABLED", true),
		PlanCacheSize:         getEnvInt("ANNISQUERY_PLAN_CACHE_SIZE", 1000),
		PlanCacheTTL:          getEnvDuration("ANNISQUERY_PLAN_CACHE_TTL", 10*time.Minute),
		CorpusCacheByteBudget: getEnvInt64("ANNISQUERY_CORPUS_CACHE_BYTE_BUDGET", 512*1024*1024),
		LogLevel:              getEnv("ANNISQUERY_LOG_LEVEL", "INFO"),
	}
}

// fileConfig is the YAML-file shape LoadFromFile accepts. Every field is a
// pointer so an absent key leaves the corresponding Config field at
// whatever LoadFromEnv already set it to.
type fileConfig struct {
	DataDir               *string `yaml:"data_dir"`
	QueryThreadPoolSize   *int    `yaml:"query_thread_pool_size"`
	OptimizerEnabled      *bool   `yaml:"optimizer_enabled"`
	PlanCacheSize         *int    `yaml:"plan_cache_size"`
	PlanCacheTTL          *string `yaml:"plan_cache_ttl"`
	CorpusCacheByteBudget *int64  `yaml:"corpus_cache_byte_budget"`
	LogLevel              *string `yaml:"log_level"`
}

// LoadFromFile reads base settings from a YAML file at path, then applies
// any ANNISQUERY_-prefixed environment variables on top, so a deployment
// can check in a config file while still letting the environment override
// individual settings at runtime.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("corpus: read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("corpus: parse config file %s: %w", path, err)
	}

	cfg := LoadFromEnv()
	applyFileOverrides(cfg, &fc)
	return cfg, nil
}

func applyFileOverrides(cfg *Config, fc *fileConfig) {
	if v := os.Getenv("ANNISQUERY_DATA_DIR"); v == "" && fc.DataDir != nil {
		cfg.DataDir = *fc.DataDir
	}
	if v := os.Getenv("ANNISQUERY_QUERY_THREAD_POOL_SIZE"); v == "" && fc.QueryThreadPoolSize != nil {
		cfg.QueryThreadPoolSize = *fc.QueryThreadPoolSize
	}
	if v := os.Getenv("ANNISQUERY_OPTIMIZER_ENABLED"); v == "" && fc.OptimizerEnabled != nil {
		cfg.OptimizerEnabled = *fc.OptimizerEnabled
	}
	if v := os.Getenv("ANNISQUERY_PLAN_CACHE_SIZE"); v == "" && fc.PlanCacheSize != nil {
		cfg.PlanCacheSize = *fc.PlanCacheSize
	}
	if v := os.Getenv("ANNISQUERY_PLAN_CACHE_TTL"); v == "" && fc.PlanCacheTTL != nil {
		if d, err := time.ParseDuration(*fc.PlanCacheTTL); err == nil {
			cfg.PlanCacheTTL = d
		}
	}
	if v := os.Getenv("ANNISQUERY_CORPUS_CACHE_BYTE_BUDGET"); v == "" && fc.CorpusCacheByteBudget != nil {
		cfg.CorpusCacheByteBudget = *fc.CorpusCacheByteBudget
	}
	if v := os.Getenv("ANNISQUERY_LOG_LEVEL"); v == "" && fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
}

// ConfigError describes one field's validation failure.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks every field for an internally consistent value, returning
// every problem found (not just the first), the way the teacher's
// config.Validate reports a single error — generalized here to an
// aggregated slice since this Config has more independent numeric knobs
// worth reporting together.
func (c *Config) Validate() []*ConfigError {
	var errs []*ConfigError

	if strings.TrimSpace(c.DataDir) == "" {
		errs = append(errs, &ConfigError{Field: "DataDir", Message: "must not be empty"})
	}
	if c.QueryThreadPoolSize < 0 {
		errs = append(errs, &ConfigError{Field: "QueryThreadPoolSize", Message: "must be >= 0"})
	}
	if c.PlanCacheSize <= 0 {
		errs = append(errs, &ConfigError{Field: "PlanCacheSize", Message: "must be > 0"})
	}
	if c.PlanCacheTTL < 0 {
		errs = append(errs, &ConfigError{Field: "PlanCacheTTL", Message: "must be >= 0"})
	}
	if c.CorpusCacheByteBudget <= 0 {
		errs = append(errs, &ConfigError{Field: "CorpusCacheByteBudget", Message: "must be > 0"})
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		errs = append(errs, &ConfigError{Field: "LogLevel", Message: "must be one of DEBUG, INFO, WARN, ERROR"})
	}

	return errs
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{DataDir: %s, QueryThreadPoolSize: %d, OptimizerEnabled: %v, PlanCacheSize: %d, PlanCacheTTL: %s, CorpusCacheByteBudget: %d, LogLevel: %s}",
		c.DataDir, c.QueryThreadPoolSize, c.OptimizerEnabled, c.PlanCacheSize, c.PlanCacheTTL, c.CorpusCacheByteBudget, c.LogLevel,
	)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) int64 {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		val = strings.ToLower(val)
		return val == "true" || val == "1" || val == "yes" || val == "on"
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		if secs, err := strconv.Atoi(val); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultVal
}
