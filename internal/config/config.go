package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Engine   EngineConfig   `mapstructure:"engine" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
// When UseMemory is set the service runs against in-memory stores and URL
// may be empty; otherwise URL must point at a PostgreSQL instance.
type DatabaseConfig struct {
	URL       string `mapstructure:"url" validate:"omitempty,url"`
	UseMemory bool   `mapstructure:"use_memory"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0"`
	BCryptCost                  int    `mapstructure:"bcrypt_cost" validate:"omitempty,gte=4,lte=31"`
}

// TokenLifetime returns the access token lifetime as a duration.
func (c AuthConfig) TokenLifetime() time.Duration {
	return time.Duration(c.TokenLifetimeMinutes) * time.Minute
}

// RefreshTokenLifetime returns the refresh token lifetime as a duration.
func (c AuthConfig) RefreshTokenLifetime() time.Duration {
	return time.Duration(c.RefreshTokenLifetimeMinutes) * time.Minute
}

// EngineConfig contains the knowledge-tracing parameters. Zero values fall
// back to the model defaults, so every field is optional.
type EngineConfig struct {
	PInit            float64 `mapstructure:"p_init" validate:"gte=0,lte=1"`
	PLearn           float64 `mapstructure:"p_learn" validate:"gte=0,lte=1"`
	PSlip            float64 `mapstructure:"p_slip" validate:"gte=0,lte=1"`
	PGuess           float64 `mapstructure:"p_guess" validate:"gte=0,lte=1"`
	MasteryThreshold float64 `mapstructure:"mastery_threshold" validate:"gte=0,lte=1"`
	AssessmentSize   int     `mapstructure:"assessment_size" validate:"gte=0"`
}

// LLMConfig contains all LLM integration related settings. The API key is
// optional; question generation is disabled when it is empty.
type LLMConfig struct {
	GeminiAPIKey      string `mapstructure:"gemini_api_key"`
	ModelName         string `mapstructure:"model_name"`
	MaxRetries        int    `mapstructure:"max_retries" validate:"gte=0"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" validate:"gte=0"`
}
