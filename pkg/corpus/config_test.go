package corpus

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvDefaults(t *testing.T) {
	for _, k := range []string{
		"ANNISQUERY_DATA_DIR", "ANNISQUERY_QUERY_THREAD_POOL_SIZE",
		"ANNISQUERY_OPTIMIZER_ENABLED", "ANNISQUERY_PLAN_CACHE_SIZE",
		"ANNISQUERY_PLAN_CACHE_TTL", "ANNISQUERY_CORPUS_CACHE_BYTE_BUDGET",
		"ANNISQUERY_LOG_LEVEL",
	} {
		require.NoError(t, os.Unsetenv(k))
	}

	cfg := LoadFromEnv()
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, 0, cfg.QueryThreadPoolSize)
	assert.True(t, cfg.OptimizerEnabled)
	assert.Equal(t, 1000, cfg.PlanCacheSize)
	assert.Equal(t, 10*time.Minute, cfg.PlanCacheTTL)
	assert.Equal(t, int64(512*1024*1024), cfg.CorpusCacheByteBudget)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Empty(t, cfg.Validate())
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("ANNISQUERY_DATA_DIR", "/var/corpora")
	t.Setenv("ANNISQUERY_QUERY_THREAD_POOL_SIZE", "8")
	t.Setenv("ANNISQUERY_OPTIMIZER_ENABLED", "false")
	t.Setenv("ANNISQUERY_PLAN_CACHE_SIZE", "50")
	t.Setenv("ANNISQUERY_PLAN_CACHE_TTL", "30s")
	t.Setenv("ANNISQUERY_CORPUS_CACHE_BYTE_BUDGET", "1024")
	t.Setenv("ANNISQUERY_LOG_LEVEL", "debug")

	cfg := LoadFromEnv()
	assert.Equal(t, "/var/corpora", cfg.DataDir)
	assert.Equal(t, 8, cfg.QueryThreadPoolSize)
	assert.False(t, cfg.OptimizerEnabled)
	assert.Equal(t, 50, cfg.PlanCacheSize)
	assert.Equal(t, 30*time.Second, cfg.PlanCacheTTL)
	assert.Equal(t, int64(1024), cfg.CorpusCacheByteBudget)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestValidateAggregatesEveryProblem(t *testing.T) {
	cfg := &Config{
		DataDir:               "",
		QueryThreadPoolSize:   -1,
		PlanCacheSize:         0,
		PlanCacheTTL:          -time.Second,
		CorpusCacheByteBudget: 0,
		LogLevel:              "TRACE",
	}

	errs := cfg.Validate()
	require.Len(t, errs, 6)

	fields := make(map[string]bool, len(errs))
	for _, e := range errs {
		fields[e.Field] = true
		assert.NotEmpty(t, e.Error())
	}
	assert.True(t, fields["DataDir"])
	assert.True(t, fields["QueryThreadPoolSize"])
	assert.True(t, fields["PlanCacheSize"])
	assert.True(t, fields["PlanCacheTTL"])
	assert.True(t, fields["CorpusCacheByteBudget"])
	assert.True(t, fields["LogLevel"])
}

func TestStringDoesNotPanic(t *testing.T) {
	cfg := LoadFromEnv()
	assert.Contains(t, cfg.String(), "Config{")
}

func TestLoadFromFileAppliesYAMLThenEnvOverrides(t *testing.T) {
	for _, k := range []string{
		"ANNISQUERY_DATA_DIR", "ANNISQUERY_LOG_LEVEL",
	} {
		require.NoError(t, os.Unsetenv(k))
	}

	path := filepath.Join(t.TempDir(), "annisquery.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"data_dir: /srv/corpora\n"+
			"plan_cache_size: 250\n"+
			"plan_cache_ttl: 2m\n"+
			"log_level: warn\n",
	), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/corpora", cfg.DataDir)
	assert.Equal(t, 250, cfg.PlanCacheSize)
	assert.Equal(t, 2*time.Minute, cfg.PlanCacheTTL)
	assert.Equal(t, "warn", cfg.LogLevel)

	t.Setenv("ANNISQUERY_LOG_LEVEL", "error")
	cfg2, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg2.LogLevel, "environment variable should win over the file")
}

func TestLoadFromFileMissingFileErrors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
