package config

import (
	"time"

	"github.com/phrazzld/cardlink/internal/domain"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server  ServerConfig  `mapstructure:"server" validate:"required"`
	Scheme  SchemeConfig  `mapstructure:"scheme" validate:"required"`
	Sandbox SandboxConfig `mapstructure:"sandbox" validate:"required"`
	// Database is optional; the sandbox keeps its state in memory without it.
	Database DatabaseConfig `mapstructure:"database"`
	Tasks    TaskConfig     `mapstructure:"tasks" validate:"required"`
	// SDK is the configuration snapshot handed to flows through a Provider.
	SDK domain.Configuration `mapstructure:"sdk"`
}

// ServerConfig contains the sandbox HTTP server and logging settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	LogFormat       string        `mapstructure:"log_format" validate:"required,oneof=json text"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// SchemeConfig tells the scheme client where the scheme backend lives.
type SchemeConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
	// ClientToken is optional; it is normally issued at runtime.
	ClientToken string `mapstructure:"client_token"`
}

// SandboxConfig contains the settings of the emulated scheme backend.
type SandboxConfig struct {
	TokenSecret    string        `mapstructure:"token_secret" validate:"required,min=32"`
	TokenIssuer    string        `mapstructure:"token_issuer" validate:"required"`
	TokenTTL       time.Duration `mapstructure:"token_ttl" validate:"gt=0"`
	OTPTTL         time.Duration `mapstructure:"otp_ttl" validate:"gt=0"`
	OTPLength      int           `mapstructure:"otp_length" validate:"gte=4,lte=6"`
	MaxOTPAttempts int           `mapstructure:"max_otp_attempts" validate:"gte=1"`
	BcryptCost     int           `mapstructure:"bcrypt_cost" validate:"gte=4,lte=31"`
	PurgeInterval  time.Duration `mapstructure:"purge_interval" validate:"gt=0"`
	// ExposeOTPs enables GET /v1/sandbox/otp so tests can read issued codes.
	ExposeOTPs bool `mapstructure:"expose_otps"`
}

// DatabaseConfig points the sandbox at PostgreSQL.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// TaskConfig sizes the background task runner.
type TaskConfig struct {
	WorkerCount int `mapstructure:"worker_count" validate:"gte=1"`
	QueueSize   int `mapstructure:"queue_size" validate:"gte=1"`
}
