package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

var ErrMissingAPIKey = errors.New("STABILITY_API_KEY or STABILITY_API_KEY_PARAM must be set")

// Config holds process configuration read from the environment.
type Config struct {
	// APIKey is used as is. APIKeyParam names an SSM parameter holding the key
	// and takes precedence.
	APIKey      string
	APIKeyParam string
	BaseURL     string

	// OutputDir is used unless Bucket is set.
	OutputDir    string
	Bucket       string
	Distribution string
	SiteURL      string

	PromptsParam string
	LogLevel     string
}

// Load reads the environment after loading a .env file if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		APIKey:       os.Getenv("STABILITY_API_KEY"),
		APIKeyParam:  os.Getenv("STABILITY_API_KEY_PARAM"),
		BaseURL:      getEnvOrDefault("STABILITY_BASE_URL", "https://api.stability.ai"),
		OutputDir:    getEnvOrDefault("STABILITY_OUTPUT_DIR", "./outputs"),
		Bucket:       os.Getenv("BUCKET"),
		Distribution: os.Getenv("DISTRIBUTION"),
		SiteURL:      os.Getenv("SITE_URL"),
		PromptsParam: os.Getenv("PROMPTS_PARAM"),
		LogLevel:     getEnvOrDefault("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" && c.APIKeyParam == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// UseS3 reports whether outputs go to the bucket instead of OutputDir.
func (c *Config) UseS3() bool {
	return c.Bucket != ""
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
