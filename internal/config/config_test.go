package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
		Embedding: EmbeddingConfig{
			Providers:  map[string]ProviderConfig{"openai": {APIKey: "test-key"}},
			Vectorizer: VectorizerConfig{Provider: "openai"},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"invalid port", func(c *Config) { c.HTTP.Port = 0 }, "http.port"},
		{"port too large", func(c *Config) { c.HTTP.Port = 70000 }, "http.port"},
		{"missing addrs", func(c *Config) { c.Database.Addrs = nil }, "database.addrs"},
		{"unknown algorithm", func(c *Config) { c.Index.Algorithm = "ivf" }, "index.algorithm"},
		{"unknown vectorizer provider", func(c *Config) { c.Embedding.Vectorizer.Provider = "nebius" }, "embedding.vectorizer.provider"},
		{"unknown interpretation provider", func(c *Config) {
			c.Interpretation.Enabled = true
			c.Interpretation.Provider = "nebius"
		}, "interpretation.provider"},
		{"negative max distance", func(c *Config) { c.Query.MaxDistance = -0.1 }, "query.max_distance"},
		{"max distance above cosine range", func(c *Config) { c.Query.MaxDistance = 2.5 }, "query.max_distance"},
		{"negative daily budget", func(c *Config) { c.Embedding.Budget.DailyTokenLimit = -1 }, "embedding.budget"},
		{"negative monthly budget", func(c *Config) { c.Embedding.Budget.MonthlyTokenLimit = -5 }, "embedding.budget"},
		{"unknown budget action", func(c *Config) { c.Embedding.Budget.Action = "block" }, "embedding.budget.action"},
		{"negative cache ttl", func(c *Config) { c.Storage.EmbeddingCacheTTLSec = -1 }, "embedding_cache_ttl_sec"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err.Error(), tt.want)
			}
		})
	}
}

func TestValidate_InterpretationDisabledIgnoresProvider(t *testing.T) {
	cfg := validConfig()
	cfg.Interpretation.Provider = "missing"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled interpretation must not be validated: %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{Embedding: EmbeddingConfig{
		Providers:  map[string]ProviderConfig{"openai": {}},
		Vectorizer: VectorizerConfig{Provider: "openai"},
	}}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 30 {
		t.Errorf("expected WriteTimeoutSec=30, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.HTTP.QueryTimeoutSec != 20 {
		t.Errorf("expected QueryTimeoutSec=20, got %d", cfg.HTTP.QueryTimeoutSec)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Index.Algorithm != "hnsw" || cfg.Index.HNSWM != 32 || cfg.Index.HNSWEFConstruct != 400 {
		t.Errorf("index defaults: %+v", cfg.Index)
	}
	if cfg.Storage.KeyPrefix != "contentfinder:" {
		t.Errorf("expected KeyPrefix='contentfinder:', got %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Embedding.Vectorizer.Model != "text-embedding-3-small" || cfg.Embedding.Vectorizer.Dimensions != 1536 {
		t.Errorf("vectorizer defaults: %+v", cfg.Embedding.Vectorizer)
	}
	if cfg.Embedding.Providers["openai"].TimeoutSec != 30 {
		t.Errorf("expected provider TimeoutSec=30, got %d", cfg.Embedding.Providers["openai"].TimeoutSec)
	}
	if cfg.Embedding.Budget.Action != "warn" {
		t.Errorf("expected budget action warn, got %q", cfg.Embedding.Budget.Action)
	}
	if cfg.Interpretation.Provider != "openai" {
		t.Errorf("interpretation provider should follow the vectorizer, got %q", cfg.Interpretation.Provider)
	}
	if cfg.Interpretation.TimeoutSec != 3 {
		t.Errorf("expected interpretation TimeoutSec=3, got %d", cfg.Interpretation.TimeoutSec)
	}
	if cfg.Query.DiscoveryScanLimit != 50 || cfg.Query.MaxDiscovered != 5 {
		t.Errorf("query defaults: %+v", cfg.Query)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5, QueryTimeoutSec: 7},
		Database: DatabaseConfig{ReadinessTimeout: 15},
		Index:    IndexConfig{Algorithm: "flat", HNSWM: 16, HNSWEFConstruct: 200},
		Storage:  StorageConfig{KeyPrefix: "custom:"},
		Query:    QueryConfig{DiscoveryScanLimit: 10, MaxDiscovered: 2},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.WriteTimeoutSec != 60 || cfg.HTTP.QueryTimeoutSec != 7 {
		t.Errorf("http overridden: %+v", cfg.HTTP)
	}
	if cfg.Index.Algorithm != "flat" || cfg.Index.HNSWM != 16 {
		t.Errorf("index overridden: %+v", cfg.Index)
	}
	if cfg.Storage.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Query.DiscoveryScanLimit != 10 || cfg.Query.MaxDiscovered != 2 {
		t.Errorf("query overridden: %+v", cfg.Query)
	}
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("CF_TEST_REDIS", "redis.internal:6380")
	t.Setenv("CF_TEST_KEY", "sk-test")

	data := []byte(`
http:
  port: ${CF_TEST_PORT:-9090}
database:
  addrs: ["${CF_TEST_REDIS}"]
embedding:
  providers:
    openai:
      api_key: ${CF_TEST_KEY}
  vectorizer:
    provider: openai
  budget:
    daily_token_limit: ${CF_TEST_DAILY:-50000}
    action: reject
query:
  max_distance: 0.35
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("port default: got %d, want 9090", cfg.HTTP.Port)
	}
	if cfg.Database.Addrs[0] != "redis.internal:6380" {
		t.Errorf("addr: got %q", cfg.Database.Addrs[0])
	}
	if cfg.Embedding.Providers["openai"].APIKey != "sk-test" {
		t.Errorf("api key: got %q", cfg.Embedding.Providers["openai"].APIKey)
	}
	if cfg.Embedding.Budget.DailyTokenLimit != 50000 || cfg.Embedding.Budget.Action != "reject" {
		t.Errorf("budget: %+v", cfg.Embedding.Budget)
	}
	if cfg.Query.MaxDistance != 0.35 {
		t.Errorf("max distance: got %v", cfg.Query.MaxDistance)
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("http: [")); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := Parse([]byte("http:\n  port: 8080\n")); err == nil || !strings.Contains(err.Error(), "invalid config") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoad_LocalFile(t *testing.T) {
	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("Load(local): %v", err)
	}
	if cfg.Storage.KeyPrefix != "contentfinder:" {
		t.Errorf("key prefix: got %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Embedding.Vectorizer.Provider != "openai" {
		t.Errorf("vectorizer provider: got %q", cfg.Embedding.Vectorizer.Provider)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("CF_SET", "value")
	got := string(expandEnvVars([]byte("a=${CF_SET} b=${CF_UNSET_VAR:-fallback} c=${CF_UNSET_VAR}")))
	if got != "a=value b=fallback c=" {
		t.Errorf("got %q", got)
	}
}

func TestSeconds(t *testing.T) {
	if Seconds(3) != 3*time.Second {
		t.Errorf("Seconds(3) = %v", Seconds(3))
	}
}
