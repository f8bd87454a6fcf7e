// Package application wires configuration for the generation service:
// provider ordering, routing deadlines, rate limits, breaker tuning,
// and provider credentials. Values come from the environment with an
// optional YAML file layered underneath (env always wins).
package application

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied when neither the environment nor the config file
// provides a value.
const (
	DefaultProviderOrder   = "openai,anthropic,gemini,venice"
	DefaultGlobalTimeoutMS = 25000

	DefaultUserPerMinute     = 10
	DefaultUserPerHour       = 20
	DefaultGlobalPerMinute   = 30
	DefaultConcurrentPerUser = 1

	DefaultBreakerThreshold = 3
	DefaultBreakerWindow    = 5 * time.Minute
	DefaultBreakerCooldown  = 60 * time.Second

	DefaultRetryDelay  = 500 * time.Millisecond
	DefaultMaxAttempts = 2
)

// ProviderCredentials holds one vendor's connection settings.
type ProviderCredentials struct {
	APIKey  string `yaml:"apiKey"`
	BaseURL string `yaml:"baseUrl"`
	Model   string `yaml:"model"`
}

// Config is the full service configuration.
type Config struct {
	// ProviderOrder is the failover sequence, most preferred first.
	ProviderOrder []string `yaml:"providerOrder"`

	// GlobalTimeout bounds one entire routing call, all providers and
	// retries included.
	GlobalTimeout time.Duration `yaml:"globalTimeout"`

	// Rate limiting.
	UserPerMinute     int `yaml:"userPerMinute"`
	UserPerHour       int `yaml:"userPerHour"`
	GlobalPerMinute   int `yaml:"globalPerMinute"`
	ConcurrentPerUser int `yaml:"concurrentPerUser"`

	// Circuit breaker tuning.
	BreakerThreshold int           `yaml:"breakerThreshold"`
	BreakerWindow    time.Duration `yaml:"breakerWindow"`
	BreakerCooldown  time.Duration `yaml:"breakerCooldown"`

	// Per-provider retry behavior.
	RetryDelay  time.Duration `yaml:"retryDelay"`
	MaxAttempts int           `yaml:"maxAttempts"`

	// Providers holds credentials keyed by provider name.
	Providers map[string]ProviderCredentials `yaml:"providers"`
}

// defaults returns a Config with every tunable at its default.
func defaults() *Config {
	return &Config{
		ProviderOrder:     strings.Split(DefaultProviderOrder, ","),
		GlobalTimeout:     DefaultGlobalTimeoutMS * time.Millisecond,
		UserPerMinute:     DefaultUserPerMinute,
		UserPerHour:       DefaultUserPerHour,
		GlobalPerMinute:   DefaultGlobalPerMinute,
		ConcurrentPerUser: DefaultConcurrentPerUser,
		BreakerThreshold:  DefaultBreakerThreshold,
		BreakerWindow:     DefaultBreakerWindow,
		BreakerCooldown:   DefaultBreakerCooldown,
		RetryDelay:        DefaultRetryDelay,
		MaxAttempts:       DefaultMaxAttempts,
		Providers:         map[string]ProviderCredentials{},
	}
}

// Load builds the configuration from an optional YAML file path and
// the process environment. Pass an empty path to skip the file. Env
// vars override file values, which override defaults.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
		if cfg.Providers == nil {
			cfg.Providers = map[string]ProviderCredentials{}
		}
	}

	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv layers environment variables over the current values.
func (c *Config) applyEnv() {
	if order := os.Getenv("AI_PROVIDER_ORDER"); order != "" {
		c.ProviderOrder = splitList(order)
	}
	if ms, ok := envInt("AI_GLOBAL_TIMEOUT_MS"); ok {
		c.GlobalTimeout = time.Duration(ms) * time.Millisecond
	}
	if v, ok := envInt("AI_USER_PER_MINUTE"); ok {
		c.UserPerMinute = v
	}
	if v, ok := envInt("AI_USER_PER_HOUR"); ok {
		c.UserPerHour = v
	}
	if v, ok := envInt("AI_GLOBAL_PER_MINUTE"); ok {
		c.GlobalPerMinute = v
	}
	if v, ok := envInt("AI_CONCURRENT_PER_USER"); ok {
		c.ConcurrentPerUser = v
	}
	if v, ok := envInt("AI_BREAKER_THRESHOLD"); ok {
		c.BreakerThreshold = v
	}

	c.setProviderEnv("openai", "OPENAI_API_KEY", "")
	c.setProviderEnv("anthropic", "ANTHROPIC_API_KEY", "")
	c.setProviderEnv("gemini", "GEMINI_API_KEY", "")
	c.setProviderEnv("venice", "VENICE_API_KEY", "VENICE_BASE_URL")
}

func (c *Config) setProviderEnv(name, keyVar, baseURLVar string) {
	creds := c.Providers[name]
	if key := os.Getenv(keyVar); key != "" {
		creds.APIKey = key
	}
	if baseURLVar != "" {
		if u := os.Getenv(baseURLVar); u != "" {
			creds.BaseURL = u
		}
	}
	c.Providers[name] = creds
}

func (c *Config) validate() error {
	if len(c.ProviderOrder) == 0 {
		return fmt.Errorf("config: provider order must not be empty")
	}
	if c.GlobalTimeout <= 0 {
		return fmt.Errorf("config: global timeout must be positive, got %s", c.GlobalTimeout)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("config: max attempts must be at least 1, got %d", c.MaxAttempts)
	}
	return nil
}

// Credentials returns the stored credentials for a provider, which may
// be the zero value when unconfigured.
func (c *Config) Credentials(name string) ProviderCredentials {
	return c.Providers[name]
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func envInt(name string) (int, bool) {
	raw := os.Getenv(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
