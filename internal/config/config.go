package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// envPrefix is the prefix for environment overrides, e.g. FIP_SERVER_PORT.
const envPrefix = "FIP"

// Config is the complete application configuration. Values resolve in order:
// built-in defaults, then the YAML config file, then FIP_* environment
// variables.
type Config struct {
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Paths   PathsConfig   `yaml:"paths" envconfig:"PATHS"`
	HTTP    HTTPConfig    `yaml:"http" envconfig:"HTTP"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

// LoggingConfig contains logging configuration. Output is JSON to the console,
// a file, or both.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig locates the dataset inputs and artifact outputs.
type PathsConfig struct {
	DataDir      string `yaml:"data_dir" envconfig:"DATA_DIR"`
	ArtifactsDir string `yaml:"artifacts_dir" envconfig:"ARTIFACTS_DIR"`
	UnifiedFile  string `yaml:"unified_file" envconfig:"UNIFIED_FILE"`
	RefCodesFile string `yaml:"ref_codes_file" envconfig:"REF_CODES_FILE"`
	LogsDir      string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// HTTPConfig contains API middleware configuration.
type HTTPConfig struct {
	RateLimitRPS   float64 `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST"`
}

// Load resolves configuration from defaults, an optional YAML file and FIP_*
// environment variables, then validates the result.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile == "" {
		configFile = findConfigFile()
	}
	if configFile != "" {
		if err := cfg.loadFile(configFile); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

// findConfigFile checks the common config file locations.
func findConfigFile() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}
	if c.Paths.UnifiedFile == "" {
		return fmt.Errorf("unified data file path must be set")
	}
	if c.HTTP.RateLimitRPS <= 0 {
		return fmt.Errorf("rate limit rps must be positive")
	}

	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid logging output: %q", c.Logging.Output)
	}
	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		return fmt.Errorf("logging file path must be set for %s output", c.Logging.Output)
	}
	return nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "both",
			FilePath: "logs/fipulse.log",
		},
		Paths: PathsConfig{
			DataDir:      "data",
			ArtifactsDir: "artifacts",
			UnifiedFile:  "data/ethiopia_fi_unified_data.xlsx",
			RefCodesFile: "data/reference_codes.csv",
			LogsDir:      "logs",
		},
		HTTP: HTTPConfig{
			RateLimitRPS:   50,
			RateLimitBurst: 100,
		},
	}
}
