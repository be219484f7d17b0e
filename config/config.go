package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// Config represents the application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Sandbox SandboxConfig `mapstructure:"sandbox"`
	Store   StoreConfig   `mapstructure:"store"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Transport   string `mapstructure:"transport"`
	HTTPPort    int    `mapstructure:"http_port"`
	MCPHTTPPort int    `mapstructure:"mcp_http_port"`
}

// SandboxConfig holds sandbox configuration
type SandboxConfig struct {
	TimeoutSec      int      `mapstructure:"timeout_sec"`
	Interpreter     string   `mapstructure:"interpreter"`
	InterpreterArgs []string `mapstructure:"interpreter_args"`
	FileSuffix      string   `mapstructure:"file_suffix"`
	MaxConcurrent   int      `mapstructure:"max_concurrent"`
	Environment     []string `mapstructure:"environment"`
}

// StoreConfig holds evaluation result storage configuration
type StoreConfig struct {
	Backend          string `mapstructure:"backend"`
	RedisAddr        string `mapstructure:"redis_addr"`
	RedisPassword    string `mapstructure:"redis_password"`
	RedisDB          int    `mapstructure:"redis_db"`
	TTLSec           int    `mapstructure:"ttl_sec"`
	KeyPrefix        string `mapstructure:"key_prefix"`
	MemoryMaxEntries int    `mapstructure:"memory_max_entries"`
}

// LoggingConfig holds logger configuration
type LoggingConfig struct {
	Mode  string `mapstructure:"mode"`
	Level string `mapstructure:"level"`
}

// Transport and backend names
const (
	TransportHTTP  = "http"
	TransportStdio = "stdio"

	StoreBackendRedis  = "redis"
	StoreBackendMemory = "memory"
)

// New loads and validates the application configuration
func New() (*Config, error) {
	return Load(viper.New())
}

// Load reads the configuration through the given viper instance
func Load(v *viper.Viper) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("CODESCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// If config file not found, continue with defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.transport", TransportHTTP)
	v.SetDefault("server.http_port", 8000)
	v.SetDefault("server.mcp_http_port", 8081)

	v.SetDefault("sandbox.timeout_sec", 30)
	v.SetDefault("sandbox.interpreter", "python3")
	v.SetDefault("sandbox.interpreter_args", []string{})
	v.SetDefault("sandbox.file_suffix", ".py")
	v.SetDefault("sandbox.max_concurrent", 8)
	v.SetDefault("sandbox.environment", []string{})

	v.SetDefault("store.backend", StoreBackendRedis)
	v.SetDefault("store.redis_addr", "redis:6379")
	v.SetDefault("store.redis_password", "")
	v.SetDefault("store.redis_db", 0)
	v.SetDefault("store.ttl_sec", 3600)
	v.SetDefault("store.key_prefix", "evaluation:")
	v.SetDefault("store.memory_max_entries", 10000)

	v.SetDefault("logging.mode", "production")
	v.SetDefault("logging.level", "info")
}

// validate ensures the configuration is valid
func (c *Config) validate() error {
	if c.Server.Transport != TransportHTTP && c.Server.Transport != TransportStdio {
		return fmt.Errorf("invalid server.transport: %s, must be 'http' or 'stdio'", c.Server.Transport)
	}

	if c.Server.Transport == TransportHTTP && c.Server.HTTPPort == c.Server.MCPHTTPPort {
		return fmt.Errorf("server.http_port and server.mcp_http_port must differ, both are %d", c.Server.HTTPPort)
	}

	if c.Sandbox.TimeoutSec <= 0 {
		return fmt.Errorf("sandbox.timeout_sec must be positive, got: %d", c.Sandbox.TimeoutSec)
	}

	if strings.TrimSpace(c.Sandbox.Interpreter) == "" {
		return fmt.Errorf("sandbox.interpreter must not be empty")
	}

	for _, kv := range c.Sandbox.Environment {
		if k, _, ok := strings.Cut(kv, "="); !ok || k == "" {
			return fmt.Errorf("invalid sandbox.environment entry: %q, must be KEY=VALUE", kv)
		}
	}

	if c.Sandbox.MaxConcurrent <= 0 {
		return fmt.Errorf("sandbox.max_concurrent must be positive, got: %d", c.Sandbox.MaxConcurrent)
	}

	switch c.Store.Backend {
	case StoreBackendRedis:
		if c.Store.RedisAddr == "" {
			return fmt.Errorf("store.redis_addr must be set for the redis backend")
		}
	case StoreBackendMemory:
		if c.Store.MemoryMaxEntries <= 0 {
			return fmt.Errorf("store.memory_max_entries must be positive, got: %d", c.Store.MemoryMaxEntries)
		}
	default:
		return fmt.Errorf("unsupported store.backend: %s", c.Store.Backend)
	}

	if c.Store.TTLSec <= 0 {
		return fmt.Errorf("store.ttl_sec must be positive, got: %d", c.Store.TTLSec)
	}

	if c.Logging.Mode != "production" && c.Logging.Mode != "development" {
		return fmt.Errorf("invalid logging.mode: %s, must be 'production' or 'development'", c.Logging.Mode)
	}

	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid logging.level: %s", c.Logging.Level)
	}

	return nil
}

// GetTimeout returns the execution timeout as a duration
func (c *Config) GetTimeout() time.Duration {
	return time.Duration(c.Sandbox.TimeoutSec) * time.Second
}

// GetStoreTTL returns the evaluation retention window as a duration
func (c *Config) GetStoreTTL() time.Duration {
	return time.Duration(c.Store.TTLSec) * time.Second
}
