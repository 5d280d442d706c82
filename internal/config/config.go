package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Environment variable keys understood by teamsbrief.
const (
	EnvAzureClientID = "AZURE_CLIENT_ID"
	EnvAzureTenantID = "AZURE_TENANT_ID"
	EnvOpenAIAPIKey  = "OPENAI_API_KEY"
	EnvOpenAIModel   = "OPENAI_MODEL"
	EnvOpenAIBaseURL = "OPENAI_BASE_URL"
)

// DefaultModel is used when OPENAI_MODEL is not set and no --model flag is given.
const DefaultModel = "gpt-4o-mini"

// Config holds the environment-derived configuration for a run.
type Config struct {
	// Azure AD app registration used for the device-code flow
	AzureClientID string
	AzureTenantID string

	// Chat-completion endpoint settings
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present; real environment variables win.
func Load() *Config {
	// godotenv.Load does not override variables that are already set
	_ = godotenv.Load()

	cfg := &Config{
		AzureClientID: os.Getenv(EnvAzureClientID),
		AzureTenantID: os.Getenv(EnvAzureTenantID),
		OpenAIAPIKey:  os.Getenv(EnvOpenAIAPIKey),
		OpenAIModel:   os.Getenv(EnvOpenAIModel),
		OpenAIBaseURL: os.Getenv(EnvOpenAIBaseURL),
	}

	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = DefaultModel
	}

	return cfg
}

// ValidateAzure checks that the Azure AD settings required for the
// device-code flow are present. This runs before any network call so a
// misconfigured environment fails early.
func (c *Config) ValidateAzure() error {
	if c.AzureClientID == "" || c.AzureTenantID == "" {
		return fmt.Errorf("%s and %s must be set for the device-code flow", EnvAzureClientID, EnvAzureTenantID)
	}
	return nil
}

// ValidateOpenAI checks that an API key for the summarization endpoint is set.
func (c *Config) ValidateOpenAI() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("%s not set", EnvOpenAIAPIKey)
	}
	return nil
}
