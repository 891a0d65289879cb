package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence.
func LoadConfig(configPath string) (*ValidatorConfig, error) {
	v := viper.New()

	// Set defaults matching DefaultValidatorConfig
	v.SetDefault("validator.rules_path", "./compliance_rules.json")
	v.SetDefault("validator.report_dir", "./reports")
	v.SetDefault("validator.report_format", "html")
	v.SetDefault("validator.database_url", "./doccheck.db")
	v.SetDefault("validator.similarity_threshold", 0.8)
	v.SetDefault("validator.extraction_timeout", "30s")
	v.SetDefault("validator.max_batch_size", 1000)

	// Bind environment variables with DC_ prefix
	v.SetEnvPrefix("DC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Load config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &ValidatorConfig{
		RulesPath:           v.GetString("validator.rules_path"),
		ReportDir:           v.GetString("validator.report_dir"),
		ReportFormat:        v.GetString("validator.report_format"),
		DatabaseURL:         v.GetString("validator.database_url"),
		SimilarityThreshold: v.GetFloat64("validator.similarity_threshold"),
		ExtractionTimeout:   v.GetDuration("validator.extraction_timeout"),
		MaxBatchSize:        v.GetInt("validator.max_batch_size"),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig checks paths, report format, threshold range, and limits.
func validateConfig(cfg *ValidatorConfig) error {
	if cfg.RulesPath == "" {
		return fmt.Errorf("rules_path must not be empty")
	}
	if cfg.ReportDir == "" {
		return fmt.Errorf("report_dir must not be empty")
	}
	switch cfg.ReportFormat {
	case "html", "json":
	default:
		return fmt.Errorf("report_format must be html or json, got %q", cfg.ReportFormat)
	}
	if cfg.SimilarityThreshold < 0 || cfg.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity_threshold must be between 0 and 1, got %v", cfg.SimilarityThreshold)
	}
	if cfg.ExtractionTimeout <= 0 {
		return fmt.Errorf("extraction_timeout must be positive, got %v", cfg.ExtractionTimeout)
	}
	if cfg.MaxBatchSize <= 0 {
		return fmt.Errorf("max_batch_size must be positive, got %d", cfg.MaxBatchSize)
	}
	return nil
}
