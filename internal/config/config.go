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

// Config holds the thesis repository API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	AI       AIConfig       `yaml:"ai"`
	Auth     AuthConfig     `yaml:"auth"`
	Storage  StorageConfig  `yaml:"storage"`
	Search   SearchConfig   `yaml:"search"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// AIConfig holds settings for embedding and similarity scoring.
// Provider "service" talks to the companion AI microservice;
// "openai" uses an OpenAI-compatible embeddings API and computes
// similarity locally.
type AIConfig struct {
	Provider   string       `yaml:"provider"` // service, openai (default: service)
	BaseURL    string       `yaml:"base_url"`
	TimeoutSec int          `yaml:"timeout_sec"`
	Retries    int          `yaml:"retries"`
	OpenAI     OpenAIConfig `yaml:"openai"`
}

// OpenAIConfig holds OpenAI-compatible provider settings.
type OpenAIConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// AuthConfig holds JWT settings.
type AuthConfig struct {
	JWTSecret   string `yaml:"jwt_secret"`
	TokenTTLHrs int    `yaml:"token_ttl_hours"`
}

// StorageConfig holds uploaded-file storage settings.
type StorageConfig struct {
	Driver string       `yaml:"driver"` // local, minio (default: local)
	Local  LocalStorage `yaml:"local"`
	Minio  MinioStorage `yaml:"minio"`
}

// LocalStorage holds local-disk storage settings.
type LocalStorage struct {
	Dir string `yaml:"dir"`
}

// MinioStorage holds MinIO/S3 storage settings.
type MinioStorage struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// SearchConfig holds semantic search and upload settings.
type SearchConfig struct {
	ScoreThreshold float64 `yaml:"score_threshold"`
	MaxUploadMB    int     `yaml:"max_upload_mb"`
}

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
		c.HTTP.ReadTimeoutSec = 15
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.AI.Provider == "" {
		c.AI.Provider = "service"
	}
	if c.AI.BaseURL == "" {
		c.AI.BaseURL = "http://localhost:5001"
	}
	if c.AI.TimeoutSec <= 0 {
		c.AI.TimeoutSec = 10
	}
	if c.AI.Retries < 0 {
		c.AI.Retries = 0
	}
	if c.Auth.TokenTTLHrs <= 0 {
		c.Auth.TokenTTLHrs = 5
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "local"
	}
	if c.Storage.Local.Dir == "" {
		c.Storage.Local.Dir = "uploads"
	}
	if c.Search.ScoreThreshold == 0 {
		c.Search.ScoreThreshold = 0.5
	}
	if c.Search.MaxUploadMB <= 0 {
		c.Search.MaxUploadMB = 20
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	switch c.AI.Provider {
	case "service":
		// base_url has a default
	case "openai":
		if c.AI.OpenAI.APIKey == "" {
			return fmt.Errorf("ai.openai.api_key is required for the openai provider")
		}
		if c.AI.OpenAI.Model == "" {
			return fmt.Errorf("ai.openai.model is required for the openai provider")
		}
	default:
		return fmt.Errorf("ai.provider must be \"service\" or \"openai\", got %q", c.AI.Provider)
	}
	switch c.Storage.Driver {
	case "local":
		// dir has a default
	case "minio":
		if c.Storage.Minio.Endpoint == "" || c.Storage.Minio.Bucket == "" {
			return fmt.Errorf("storage.minio.endpoint and storage.minio.bucket are required for the minio driver")
		}
	default:
		return fmt.Errorf("storage.driver must be \"local\" or \"minio\", got %q", c.Storage.Driver)
	}
	if c.Search.ScoreThreshold < -1 || c.Search.ScoreThreshold > 1 {
		return fmt.Errorf("search.score_threshold must be within [-1, 1], got %f", c.Search.ScoreThreshold)
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
