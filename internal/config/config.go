package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port         int
	DevMode      bool
	LogLevel     string
	DatabasePath string

	// External collaborators
	SecUserAgent      string
	FinbertServiceURL string

	// Numeric policy for the allocation pipeline. These determine
	// whether borderline-conditioned inputs are accepted or rejected.
	Tau               float64 // confidence scale on the covariance estimate
	ViewConfidence    float64 // diagonal entries of the view uncertainty matrix
	SingularThreshold float64 // Gauss-Jordan pivot cutoff
	InverseCheckTol   float64 // per-entry tolerance of the A·A⁻¹ diagnostic
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnvAsInt("GO_PORT", 8001),
		DevMode:      getEnvAsBool("DEV_MODE", false),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		DatabasePath: getEnv("DATABASE_PATH", "./data/snapshots.db"),

		SecUserAgent:      getEnv("SEC_USER_AGENT", "optimizeme/1.0 (jleechris06@gmail.com)"),
		FinbertServiceURL: getEnv("FINBERT_SERVICE_URL", "http://localhost:9002"),

		Tau:               getEnvAsFloat("BL_TAU", 0.025),
		ViewConfidence:    getEnvAsFloat("BL_VIEW_CONFIDENCE", 0.01),
		SingularThreshold: getEnvAsFloat("MATRIX_SINGULAR_THRESHOLD", 1e-10),
		InverseCheckTol:   getEnvAsFloat("MATRIX_INVERSE_CHECK_TOL", 1e-8),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.Tau <= 0 {
		return fmt.Errorf("BL_TAU must be positive, got %g", c.Tau)
	}
	if c.ViewConfidence <= 0 {
		return fmt.Errorf("BL_VIEW_CONFIDENCE must be positive, got %g", c.ViewConfidence)
	}
	if c.SingularThreshold <= 0 {
		return fmt.Errorf("MATRIX_SINGULAR_THRESHOLD must be positive, got %g", c.SingularThreshold)
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
