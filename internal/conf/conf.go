package conf

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/lifestream-app/lifestream/internal/data"
	"github.com/lifestream-app/lifestream/internal/logging"
)

// Config represents application configuration
type Config struct {
	// Data directory holding the default store
	DataDir string

	// Store configuration
	Store StoreConfig

	// Generator configuration (optional)
	Generator GeneratorConfig

	// Feishu configuration (optional)
	Feishu FeishuConfig

	// API configuration
	API APIConfig

	// Tuning configuration (loaded from YAML)
	Tuning *TuningConfig

	// Logging configuration
	Log LogConfig

	// Debug mode
	Debug bool
}

// StoreConfig contains state store configuration
type StoreConfig struct {
	Backend       string // sqlite, file, redis
	Path          string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// GeneratorConfig contains hosted text generation configuration
type GeneratorConfig struct {
	APIKey        string
	BaseURL       string
	Model         string
	Timeout       time.Duration
	RatePerMinute int
}

// FeishuConfig contains Feishu configuration
type FeishuConfig struct {
	AppID     string
	AppSecret string
}

// APIConfig contains HTTP API configuration
type APIConfig struct {
	Port int
}

// LogConfig contains logging configuration
type LogConfig struct {
	Level  string
	Format string
}

// LoadFromEnv loads configuration from .env (if present) and environment variables
func LoadFromEnv() *Config {
	// Missing .env is fine
	_ = godotenv.Load()

	dataDir := os.Getenv("LIFESTREAM_DATA_DIR")
	if dataDir == "" {
		homeDir, _ := os.UserHomeDir()
		dataDir = filepath.Join(homeDir, ".lifestream")
	}

	backend := envOr("STORE_BACKEND", data.BackendSQLite)
	storePath := os.Getenv("STORE_PATH")
	if storePath == "" {
		switch backend {
		case data.BackendFile:
			storePath = filepath.Join(dataDir, "state")
		default:
			storePath = filepath.Join(dataDir, "lifestream.db")
		}
	}

	tuning, err := LoadTuningConfig(os.Getenv("TUNING_CONFIG_PATH"))
	if err == nil {
		err = tuning.Validate()
	}
	if err != nil {
		logging.For("Config").WithError(err).Warn("Invalid tuning config, using defaults")
		tuning = DefaultTuningConfig()
	}

	// Env overrides the YAML timeout when set
	timeout := time.Duration(tuning.Composer.TimeoutSeconds) * time.Second
	if secs := envInt("GENERATOR_TIMEOUT_SECONDS", 0); secs > 0 {
		timeout = time.Duration(secs) * time.Second
		tuning.Composer.TimeoutSeconds = secs
	}

	return &Config{
		DataDir: dataDir,
		Store: StoreConfig{
			Backend:       backend,
			Path:          storePath,
			RedisAddr:     envOr("REDIS_ADDR", "localhost:6379"),
			RedisPassword: os.Getenv("REDIS_PASSWORD"),
			RedisDB:       envInt("REDIS_DB", 0),
		},
		Generator: GeneratorConfig{
			APIKey:        os.Getenv("GENERATOR_API_KEY"),
			BaseURL:       os.Getenv("GENERATOR_BASE_URL"),
			Model:         os.Getenv("GENERATOR_MODEL"),
			Timeout:       timeout,
			RatePerMinute: envInt("GENERATOR_RATE_PER_MINUTE", 10),
		},
		Feishu: FeishuConfig{
			AppID:     os.Getenv("FEISHU_APP_ID"),
			AppSecret: os.Getenv("FEISHU_APP_SECRET"),
		},
		API: APIConfig{
			Port: envInt("API_PORT", 8080),
		},
		Tuning: tuning,
		Log: LogConfig{
			Level:  envOr("LOG_LEVEL", "info"),
			Format: envOr("LOG_FORMAT", "text"),
		},
		Debug: os.Getenv("DEBUG") == "true",
	}
}

func envOr(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

// FeishuEnabled reports whether both Feishu credentials are set
func (c *Config) FeishuEnabled() bool {
	return c.Feishu.AppID != "" && c.Feishu.AppSecret != ""
}

// GeneratorEnabled reports whether an API key is set
func (c *Config) GeneratorEnabled() bool {
	return c.Generator.APIKey != ""
}

// ToStoreOptions converts to data store options
func (c *Config) ToStoreOptions() data.StoreOptions {
	return data.StoreOptions{
		Backend:       c.Store.Backend,
		Path:          c.Store.Path,
		RedisAddr:     c.Store.RedisAddr,
		RedisPassword: c.Store.RedisPassword,
		RedisDB:       c.Store.RedisDB,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case data.BackendSQLite, data.BackendFile, data.BackendRedis:
	default:
		return &ConfigError{Field: "STORE_BACKEND", Message: "must be sqlite, file or redis"}
	}
	if c.Store.Backend == data.BackendRedis && c.Store.RedisAddr == "" {
		return &ConfigError{Field: "REDIS_ADDR", Message: "required for redis backend"}
	}
	if (c.Feishu.AppID == "") != (c.Feishu.AppSecret == "") {
		return &ConfigError{Field: "FEISHU_APP_ID/FEISHU_APP_SECRET", Message: "both or neither must be set"}
	}
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return &ConfigError{Field: "API_PORT", Message: "must be between 1 and 65535"}
	}
	if c.Generator.RatePerMinute < 0 {
		return &ConfigError{Field: "GENERATOR_RATE_PER_MINUTE", Message: "must not be negative"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
