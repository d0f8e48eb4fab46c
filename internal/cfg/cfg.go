package cfg

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"ai-detector/internal/common"
	"ai-detector/internal/heuristic"
)

type Settings struct {
	ModelPath          string
	DataPath           string
	Oracle             OracleSettings
	POSTagger          bool
	TopK               int
	ValidationFraction float64
	TrainSeed          int64
	Parallelism        int
	MetricsPort        int
	LogLevel           string
	Heuristic          heuristic.Config
}

type OracleSettings struct {
	Kind     string
	URL      string
	APIKey   string
	Model    string
	Timeout  time.Duration
	RPS      float64
	CacheTTL time.Duration
}

type ConfigFile struct {
	Model struct {
		Path     string `yaml:"path"`
		DataPath string `yaml:"dataPath"`
		TopK     int    `yaml:"topK"`
	} `yaml:"model"`

	Oracle struct {
		Kind     string  `yaml:"kind"`
		URL      string  `yaml:"url"`
		APIKey   string  `yaml:"apiKey"`
		Model    string  `yaml:"model"`
		Timeout  string  `yaml:"timeout"`
		RPS      float64 `yaml:"rps"`
		CacheTTL string  `yaml:"cacheTTL"`
	} `yaml:"oracle"`

	Features struct {
		POSTagger *bool `yaml:"posTagger"`
	} `yaml:"features"`

	Training struct {
		ValidationFraction float64 `yaml:"validationFraction"`
		Seed               int64   `yaml:"seed"`
		Parallelism        int     `yaml:"parallelism"`
	} `yaml:"training"`

	System struct {
		MetricsPort int    `yaml:"metricsPort"`
		LogLevel    string `yaml:"logLevel"`
	} `yaml:"system"`

	Heuristic heuristic.Config `yaml:"heuristic"`
}

// Load reads an optional .env file, then CONFIG_FILE (YAML, with environment
// overrides) when set, else the environment alone.
func Load() (Settings, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("Failed to read .env file")
	}

	if configPath := os.Getenv(common.EnvConfigFile); configPath != "" {
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
	config.Heuristic = heuristic.DefaultConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	oracleTimeout, err := time.ParseDuration(config.Oracle.Timeout)
	if err != nil {
		oracleTimeout = common.DefaultOracleTimeout
	}
	cacheTTL, err := time.ParseDuration(config.Oracle.CacheTTL)
	if err != nil {
		cacheTTL = common.DefaultOracleCacheTTL
	}

	posTagger := true
	if config.Features.POSTagger != nil {
		posTagger = *config.Features.POSTagger
	}

	settings := Settings{
		ModelPath: getEnvOrDefault(common.EnvModelPath, orString(config.Model.Path, common.DefaultModelPath)),
		DataPath:  getEnvOrDefault(common.EnvDataPath, config.Model.DataPath),
		Oracle: OracleSettings{
			Kind:     strings.ToLower(getEnvOrDefault(common.EnvOracleKind, orString(config.Oracle.Kind, common.DefaultOracleKind))),
			URL:      getEnvOrDefault(common.EnvOracleURL, config.Oracle.URL),
			APIKey:   getEnvOrDefault(common.EnvOracleAPIKey, config.Oracle.APIKey),
			Model:    getEnvOrDefault(common.EnvOracleModel, orString(config.Oracle.Model, common.DefaultOracleModel)),
			Timeout:  getDurationOrDefault(common.EnvOracleTimeout, oracleTimeout),
			RPS:      getFloatFromEnvOrConfig(common.EnvOracleRPS, config.Oracle.RPS, common.DefaultOracleRPS),
			CacheTTL: getDurationOrDefault(common.EnvOracleCacheTTL, cacheTTL),
		},
		POSTagger:          getSwitchOrDefault(common.EnvPOSTagger, posTagger),
		TopK:               getIntFromEnvOrConfig(common.EnvTopK, config.Model.TopK, common.DefaultTopK),
		ValidationFraction: getFloatFromEnvOrConfig(common.EnvValidationFraction, config.Training.ValidationFraction, common.DefaultValidationFraction),
		TrainSeed:          int64(getIntFromEnvOrConfig(common.EnvTrainSeed, int(config.Training.Seed), common.DefaultTrainSeed)),
		Parallelism:        getIntFromEnvOrConfig(common.EnvParallelism, config.Training.Parallelism, common.DefaultParallelism),
		MetricsPort:        getIntFromEnvOrConfig(common.EnvMetricsPort, config.System.MetricsPort, common.DefaultMetricsPort),
		LogLevel:           getEnvOrDefault(common.EnvLogLevel, orString(config.System.LogLevel, common.DefaultLogLevel)),
		Heuristic:          config.Heuristic,
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func loadFromEnv() (Settings, error) {
	settings := Settings{
		ModelPath: getEnvOrDefault(common.EnvModelPath, common.DefaultModelPath),
		DataPath:  os.Getenv(common.EnvDataPath), // optional, disables the model registry when empty
		Oracle: OracleSettings{
			Kind:     strings.ToLower(getEnvOrDefault(common.EnvOracleKind, common.DefaultOracleKind)),
			URL:      os.Getenv(common.EnvOracleURL),
			APIKey:   os.Getenv(common.EnvOracleAPIKey),
			Model:    getEnvOrDefault(common.EnvOracleModel, common.DefaultOracleModel),
			Timeout:  getDurationOrDefault(common.EnvOracleTimeout, common.DefaultOracleTimeout),
			RPS:      getFloatOrDefault(common.EnvOracleRPS, common.DefaultOracleRPS),
			CacheTTL: getDurationOrDefault(common.EnvOracleCacheTTL, common.DefaultOracleCacheTTL),
		},
		POSTagger:          getSwitchOrDefault(common.EnvPOSTagger, true),
		TopK:               getIntOrDefault(common.EnvTopK, common.DefaultTopK),
		ValidationFraction: getFloatOrDefault(common.EnvValidationFraction, common.DefaultValidationFraction),
		TrainSeed:          int64(getIntOrDefault(common.EnvTrainSeed, common.DefaultTrainSeed)),
		Parallelism:        getIntOrDefault(common.EnvParallelism, common.DefaultParallelism),
		MetricsPort:        getIntOrDefault(common.EnvMetricsPort, common.DefaultMetricsPort),
		LogLevel:           getEnvOrDefault(common.EnvLogLevel, common.DefaultLogLevel),
		Heuristic:          heuristic.DefaultConfig(),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func orString(v, def string) string {
	if v != "" {
		return v
	}
	return def
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

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getSwitchOrDefault accepts on/off in addition to the strconv booleans.
func getSwitchOrDefault(key string, defaultValue bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch v {
	case "":
		return defaultValue
	case "on", "yes":
		return true
	case "off", "no":
		return false
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return defaultValue
}

func getIntFromEnvOrConfig(key string, configValue, defaultValue int) int {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.Atoi(env); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

func getFloatFromEnvOrConfig(key string, configValue, defaultValue float64) float64 {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.ParseFloat(env, 64); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

// validateSettings performs comprehensive validation of configuration values
func validateSettings(settings *Settings) error {
	if strings.TrimSpace(settings.ModelPath) == "" {
		return fmt.Errorf("model path cannot be empty")
	}

	// Validate oracle
	switch settings.Oracle.Kind {
	case common.OracleNone:
	case common.OracleREST:
		if settings.Oracle.URL == "" {
			return fmt.Errorf("oracle URL is required for oracle kind %q", settings.Oracle.Kind)
		}
	case common.OracleOpenAI:
		if settings.Oracle.Model == "" {
			return fmt.Errorf("oracle model is required for oracle kind %q", settings.Oracle.Kind)
		}
	default:
		return fmt.Errorf("oracle kind must be one of none, rest, openai, got %q", settings.Oracle.Kind)
	}
	if settings.Oracle.Timeout < 100*time.Millisecond || settings.Oracle.Timeout > 5*time.Minute {
		return fmt.Errorf("oracle timeout must be between 100ms and 5m, got %v", settings.Oracle.Timeout)
	}
	if settings.Oracle.RPS < 0 || settings.Oracle.RPS > 1000 {
		return fmt.Errorf("oracle RPS must be between 0 and 1000, got %f", settings.Oracle.RPS)
	}
	if settings.Oracle.CacheTTL < 0 || settings.Oracle.CacheTTL > 24*time.Hour {
		return fmt.Errorf("oracle cache TTL must be between 0 and 24h, got %v", settings.Oracle.CacheTTL)
	}

	// Validate integer values
	if settings.TopK <= 0 || settings.TopK > 1000 {
		return fmt.Errorf("top K must be between 1 and 1000, got %d", settings.TopK)
	}
	if settings.Parallelism <= 0 || settings.Parallelism > 256 {
		return fmt.Errorf("parallelism must be between 1 and 256, got %d", settings.Parallelism)
	}
	if settings.MetricsPort != 0 && (settings.MetricsPort < 1024 || settings.MetricsPort > 65535) {
		return fmt.Errorf("metrics port must be 0 (disabled) or between 1024 and 65535, got %d", settings.MetricsPort)
	}

	// Validate float values
	if settings.ValidationFraction <= 0 || settings.ValidationFraction >= 1 {
		return fmt.Errorf("validation fraction must be between 0 and 1 (exclusive), got %f", settings.ValidationFraction)
	}

	switch strings.ToLower(settings.LogLevel) {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("unknown log level %q", settings.LogLevel)
	}

	if err := settings.Heuristic.Validate(); err != nil {
		return err
	}

	return nil
}
