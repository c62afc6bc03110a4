package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/inkdex/inkdex/internal/pipeline"
)

// Config holds the inkdex API configuration.
type Config struct {
	HTTP     HTTPConfig      `yaml:"http"`
	Database DatabaseConfig  `yaml:"database"`
	OCR      OCRConfig       `yaml:"ocr"`
	Pipeline pipeline.Config `yaml:"pipeline"`
	Storage  StorageConfig   `yaml:"storage"`
	Auth     AuthConfig      `yaml:"auth"`
	Logging  LoggingConfig   `yaml:"logging"`
	Watcher  WatcherConfig   `yaml:"watcher"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
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
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// OCRConfig holds recognition provider and budget settings.
type OCRConfig struct {
	// DefaultQuality is the routing mode used when a request does not pick
	// one: fast, balanced or premium.
	DefaultQuality string          `yaml:"default_quality"`
	Tesseract      TesseractConfig `yaml:"tesseract"`
	Vision         VisionConfig    `yaml:"vision"`
	Budget         BudgetConfig    `yaml:"budget"`
}

// TesseractConfig holds local OCR settings.
type TesseractConfig struct {
	Enabled   bool     `yaml:"enabled"`
	Languages []string `yaml:"languages"`
}

// VisionConfig holds vision LLM provider settings. An empty APIKey disables
// the provider.
type VisionConfig struct {
	APIKey       string  `yaml:"api_key"`
	BaseURL      string  `yaml:"base_url"`
	Model        string  `yaml:"model"`
	CostPerImage float64 `yaml:"cost_per_image"`
}

// BudgetConfig holds OCR spend limits.
type BudgetConfig struct {
	DailyCostLimit   float64 `yaml:"daily_cost_limit"`   // 0 = unlimited
	MonthlyCostLimit float64 `yaml:"monthly_cost_limit"` // 0 = unlimited
	Action           string  `yaml:"action"`             // "reject" | "warn" (default)
}

// WatcherConfig holds directory watcher settings.
type WatcherConfig struct {
	Dir         string `yaml:"dir"`
	IntervalSec int    `yaml:"interval_sec"`
	Quality     string `yaml:"quality"`
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
		c.HTTP.ReadTimeoutSec = 10
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
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "inkdex:"
	}
	if c.OCR.DefaultQuality == "" {
		c.OCR.DefaultQuality = "balanced"
	}
	if len(c.OCR.Tesseract.Languages) == 0 {
		c.OCR.Tesseract.Languages = []string{"eng"}
	}
	if c.OCR.Vision.Model == "" {
		c.OCR.Vision.Model = "gpt-4o-mini"
	}
	if c.OCR.Vision.CostPerImage <= 0 {
		c.OCR.Vision.CostPerImage = 0.01
	}
	if c.Watcher.IntervalSec <= 0 {
		c.Watcher.IntervalSec = 5
	}
	if c.Watcher.Quality == "" {
		c.Watcher.Quality = c.OCR.DefaultQuality
	}

	def := pipeline.DefaultConfig()
	if c.Pipeline.Relationships.SpatialProximityFactor <= 0 {
		c.Pipeline.Relationships.SpatialProximityFactor = def.Relationships.SpatialProximityFactor
	}
	if c.Pipeline.Relationships.SemanticSimilarityThreshold <= 0 {
		c.Pipeline.Relationships.SemanticSimilarityThreshold = def.Relationships.SemanticSimilarityThreshold
	}
	if c.Pipeline.Relationships.ConnectorConfidence <= 0 {
		c.Pipeline.Relationships.ConnectorConfidence = def.Relationships.ConnectorConfidence
	}
	if c.Pipeline.Concepts.TopicKeywordCount <= 0 {
		c.Pipeline.Concepts.TopicKeywordCount = def.Concepts.TopicKeywordCount
	}
	if c.Pipeline.Concepts.ClusterMergeThreshold <= 0 {
		c.Pipeline.Concepts.ClusterMergeThreshold = def.Concepts.ClusterMergeThreshold
	}
	if c.Pipeline.Concepts.RelationshipBoostCap <= 0 {
		c.Pipeline.Concepts.RelationshipBoostCap = def.Concepts.RelationshipBoostCap
	}
	if c.Pipeline.Structures.TimelineConfidenceCap <= 0 {
		c.Pipeline.Structures.TimelineConfidenceCap = def.Structures.TimelineConfidenceCap
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
	switch c.OCR.DefaultQuality {
	case "fast", "balanced", "premium":
		// ok
	default:
		return fmt.Errorf(
			"ocr.default_quality must be \"fast\", \"balanced\" or \"premium\", got %q",
			c.OCR.DefaultQuality,
		)
	}
	switch c.OCR.Budget.Action {
	case "", "warn", "reject":
		// ok
	default:
		return fmt.Errorf(
			"ocr.budget.action must be \"warn\" or \"reject\", got %q",
			c.OCR.Budget.Action,
		)
	}
	if !c.OCR.Tesseract.Enabled && c.OCR.Vision.APIKey == "" {
		return fmt.Errorf("at least one OCR provider must be configured")
	}
	if err := c.Pipeline.Validate(); err != nil {
		return fmt.Errorf("pipeline: %w", err)
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
