// Package cfg loads service configuration from an optional YAML file
// and environment variables. Environment values override the file;
// both fall back to defaults. Settings are validated before use.
package cfg

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Settings struct {
	ModelPath      string
	MetadataPath   string
	DataPath       string
	ExportDir      string
	ListenPort     int
	MetricsPort    int
	PredictTimeout time.Duration
	LogLevel       string
	LogFile        string
}

type ConfigFile struct {
	Model struct {
		Path           string `yaml:"path"`
		MetadataPath   string `yaml:"metadataPath"`
		PredictTimeout string `yaml:"predictTimeout"`
	} `yaml:"model"`

	Server struct {
		ListenPort  int `yaml:"listenPort"`
		MetricsPort int `yaml:"metricsPort"`
	} `yaml:"server"`

	System struct {
		DataPath  string `yaml:"dataPath"`
		ExportDir string `yaml:"exportDir"`
		LogLevel  string `yaml:"logLevel"`
		LogFile   string `yaml:"logFile"`
	} `yaml:"system"`
}

func Load() (Settings, error) {
	if configPath := os.Getenv("CONFIG_FILE"); configPath != "" {
		return loadFromYAML(configPath)
	}
	return loadFromEnv()
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	predictTimeout, err := time.ParseDuration(config.Model.PredictTimeout)
	if err != nil {
		predictTimeout = 5 * time.Second
	}

	settings := Settings{
		ModelPath:      getEnvOrDefault("MODEL_PATH", config.Model.Path),
		MetadataPath:   getEnvOrDefault("METADATA_PATH", config.Model.MetadataPath),
		DataPath:       getEnvOrDefault("DATA_PATH", config.System.DataPath),
		ExportDir:      getEnvOrDefault("EXPORT_DIR", config.System.ExportDir),
		ListenPort:     getIntFromEnvOrConfig("LISTEN_PORT", config.Server.ListenPort),
		MetricsPort:    getIntFromEnvOrConfig("METRICS_PORT", config.Server.MetricsPort),
		PredictTimeout: predictTimeout,
		LogLevel:       getEnvOrDefault("LOG_LEVEL", config.System.LogLevel),
		LogFile:        getEnvOrDefault("LOG_FILE", config.System.LogFile),
	}
	applyDefaults(&settings)

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func loadFromEnv() (Settings, error) {
	settings := Settings{
		ModelPath:      getEnvOrDefault("MODEL_PATH", ""),
		MetadataPath:   getEnvOrDefault("METADATA_PATH", ""),
		DataPath:       os.Getenv("DATA_PATH"), // optional, empty disables persistence
		ExportDir:      getEnvOrDefault("EXPORT_DIR", ""),
		ListenPort:     getIntOrDefault("LISTEN_PORT", 0),
		MetricsPort:    getIntOrDefault("METRICS_PORT", 0),
		PredictTimeout: getDurationOrDefault("PREDICT_TIMEOUT", 5*time.Second),
		LogLevel:       getEnvOrDefault("LOG_LEVEL", ""),
		LogFile:        os.Getenv("LOG_FILE"), // optional, empty disables the file sink
	}
	applyDefaults(&settings)

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func applyDefaults(s *Settings) {
	if s.ModelPath == "" {
		s.ModelPath = "model.onnx"
	}
	if s.MetadataPath == "" {
		s.MetadataPath = "model_metadata.json"
	}
	if s.ExportDir == "" {
		s.ExportDir = "exports"
	}
	if s.ListenPort == 0 {
		s.ListenPort = 8080
	}
	if s.MetricsPort == 0 {
		s.MetricsPort = 9090
	}
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getIntFromEnvOrConfig(key string, configValue int) int {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.Atoi(env); err == nil {
			return val
		}
	}
	return configValue
}

// validateSettings performs validation of configuration values.
func validateSettings(s *Settings) error {
	if s.ModelPath == "" {
		return fmt.Errorf("model path cannot be empty")
	}
	if s.MetadataPath == "" {
		return fmt.Errorf("metadata path cannot be empty")
	}

	if s.ListenPort < 1024 || s.ListenPort > 65535 {
		return fmt.Errorf("listen port must be between 1024 and 65535, got %d", s.ListenPort)
	}
	if s.MetricsPort < 1024 || s.MetricsPort > 65535 {
		return fmt.Errorf("metrics port must be between 1024 and 65535, got %d", s.MetricsPort)
	}
	if s.ListenPort == s.MetricsPort {
		return fmt.Errorf("listen port and metrics port must differ, both are %d", s.ListenPort)
	}

	if s.PredictTimeout < 100*time.Millisecond || s.PredictTimeout > time.Minute {
		return fmt.Errorf("predict timeout must be between 100ms and 1m, got %v", s.PredictTimeout)
	}

	switch s.LogLevel {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", s.LogLevel)
	}

	return nil
}
