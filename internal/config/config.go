package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/daydemir/devpilot/internal/llm"
	"github.com/daydemir/devpilot/internal/logging"
)

// EnvPrefix is the prefix for environment overrides, e.g. DEVPILOT_LLM_MODEL
const EnvPrefix = "DEVPILOT"

// Environment variables checked for the API key after llm.api_key
var apiKeyEnvFallbacks = []string{"OPENROUTER_API_KEY", "apiKey"}

// Config represents the devpilot configuration
type Config struct {
	LLM  LLMConfig  `mapstructure:"llm"`
	Flow FlowConfig `mapstructure:"flow"`
	Log  LogConfig  `mapstructure:"log"`
}

// LLMConfig contains text generation service settings
type LLMConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	Model        string        `mapstructure:"model"`
	APIKey       string        `mapstructure:"api_key"`
	Timeout      int           `mapstructure:"timeout"` // seconds, 0 disables
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	RateLimit    float64       `mapstructure:"rate_limit"` // requests per second
	Burst        int           `mapstructure:"burst"`
}

// FlowConfig contains task execution settings
type FlowConfig struct {
	MaxFixDepth    int    `mapstructure:"max_fix_depth"` // 0 or less means unlimited
	PackageManager string `mapstructure:"package_manager"`
	Shell          string `mapstructure:"shell"` // empty picks sh or cmd
}

// LogConfig contains debug log settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	File   string `mapstructure:"file"`
	Format string `mapstructure:"format"`
}

// Load reads the config from the workspace. A missing file yields defaults
// with environment overrides applied.
func Load(workspaceDir string) (*Config, error) {
	configPath := ""
	if workspaceDir != "" {
		configPath = filepath.Join(workspaceDir, ".devpilot", "config.yaml")
	}
	return LoadFile(configPath)
}

// LoadFile reads the config at configPath, skipping the file when it is
// empty or absent
func LoadFile(configPath string) (*Config, error) {
	v := newViper()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.LLM.APIKey == "" {
		for _, name := range apiKeyEnvFallbacks {
			if key := os.Getenv(name); key != "" {
				cfg.LLM.APIKey = key
				break
			}
		}
	}

	// Apply defaults for missing values
	applyDefaults(&cfg)

	return &cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	defaults := DefaultConfig()

	v.SetDefault("llm.base_url", defaults.LLM.BaseURL)
	v.SetDefault("llm.model", defaults.LLM.Model)
	v.SetDefault("llm.api_key", defaults.LLM.APIKey)
	v.SetDefault("llm.timeout", defaults.LLM.Timeout)
	v.SetDefault("llm.max_retries", defaults.LLM.MaxRetries)
	v.SetDefault("llm.retry_backoff", defaults.LLM.RetryBackoff)
	v.SetDefault("llm.rate_limit", defaults.LLM.RateLimit)
	v.SetDefault("llm.burst", defaults.LLM.Burst)
	v.SetDefault("flow.max_fix_depth", defaults.Flow.MaxFixDepth)
	v.SetDefault("flow.package_manager", defaults.Flow.PackageManager)
	v.SetDefault("flow.shell", defaults.Flow.Shell)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.file", defaults.Log.File)
	v.SetDefault("log.format", defaults.Log.Format)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			BaseURL:      llm.DefaultBaseURL,
			Model:        llm.DefaultModel,
			MaxRetries:   llm.DefaultMaxRetries,
			RetryBackoff: llm.DefaultRetryBackoff,
			RateLimit:    llm.DefaultRateLimit,
			Burst:        llm.DefaultBurst,
		},
		Flow: FlowConfig{
			MaxFixDepth:    5,
			PackageManager: "npm",
		},
		Log: LogConfig{
			Level:  "info",
			File:   logging.DefaultLogFile(),
			Format: "json",
		},
	}
}

func applyDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = defaults.LLM.BaseURL
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = defaults.LLM.Model
	}
	if cfg.LLM.RetryBackoff <= 0 {
		cfg.LLM.RetryBackoff = defaults.LLM.RetryBackoff
	}
	if cfg.LLM.RateLimit <= 0 {
		cfg.LLM.RateLimit = defaults.LLM.RateLimit
	}
	if cfg.LLM.Burst <= 0 {
		cfg.LLM.Burst = defaults.LLM.Burst
	}
	if cfg.Flow.PackageManager == "" {
		cfg.Flow.PackageManager = defaults.Flow.PackageManager
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = defaults.Log.Format
	}
}

// LLMClient returns the settings for the generation client
func (c *Config) LLMClient() llm.Config {
	return llm.Config{
		BaseURL:      c.LLM.BaseURL,
		Model:        c.LLM.Model,
		APIKey:       c.LLM.APIKey,
		Timeout:      c.LLM.Timeout,
		MaxRetries:   c.LLM.MaxRetries,
		RetryBackoff: c.LLM.RetryBackoff,
		RateLimit:    c.LLM.RateLimit,
		Burst:        c.LLM.Burst,
	}
}

// Logging returns the settings for the debug logger
func (c *Config) Logging() logging.Config {
	return logging.Config{
		Level:  c.Log.Level,
		File:   c.Log.File,
		Format: c.Log.Format,
	}
}
