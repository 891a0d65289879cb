// Package config provides configuration management for doccheck services.
package config

import (
	"time"
)

// ValidatorConfig holds configuration for the document validation service.
type ValidatorConfig struct {
	RulesPath           string
	ReportDir           string
	ReportFormat        string
	DatabaseURL         string
	SimilarityThreshold float64
	ExtractionTimeout   time.Duration
	MaxBatchSize        int
}

// DefaultValidatorConfig returns configuration with default values.
func DefaultValidatorConfig() *ValidatorConfig {
	return &ValidatorConfig{
		RulesPath:           "./compliance_rules.json",
		ReportDir:           "./reports",
		ReportFormat:        "html",
		DatabaseURL:         "./doccheck.db",
		SimilarityThreshold: 0.8,
		ExtractionTimeout:   30 * time.Second,
		MaxBatchSize:        1000,
	}
}
