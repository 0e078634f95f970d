// Package config loads runtime configuration for the ASIS deployment
// toolkit and the ASIS API server.
//
// Configuration is environment-first via viper, with defaults matching
// the container environment surface: PORT, ASIS_CONFIG_PATH,
// ASIS_LOG_PATH, ASIS_DATA_PATH for the application, DATABASE_URL /
// REDIS_URL / JWT_SECRET for its backing services.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the aggregate configuration shared by the CLI and server.
type Config struct {
	Server ServerConfig
	Paths  PathsConfig
	Deploy DeployConfig
	Logger LoggerConfig
}

// ServerConfig holds the ASIS API server settings.
type ServerConfig struct {
	// Host is the bind address. 0.0.0.0 so the process is reachable
	// through the container's published port.
	Host string

	// Port is the TCP port the server binds, from $PORT.
	Port int

	// Environment selects development/production behavior (CORS origins,
	// docs exposure).
	Environment string

	// DatabaseURL is the Postgres connection string. Empty disables the
	// database; the health endpoint then omits the database check.
	DatabaseURL string

	// RedisURL is the Redis connection string. Empty disables Redis.
	RedisURL string

	// JWTSecret signs access tokens. The default is only suitable for
	// development.
	JWTSecret string

	// TokenTTL is the access token lifetime.
	TokenTTL time.Duration

	// ShutdownGrace is how long in-flight requests get on SIGTERM.
	ShutdownGrace time.Duration
}

// PathsConfig holds the ASIS_* filesystem locations from the container
// environment contract.
type PathsConfig struct {
	ConfigPath string
	LogPath    string
	DataPath   string
}

// DeployConfig holds asisctl settings.
type DeployConfig struct {
	// Descriptor is the deployment descriptor path.
	Descriptor string

	// Context is the image build context directory. Empty means the
	// descriptor's own directory.
	Context string
}

// LoggerConfig selects logrus level and formatter.
type LoggerConfig struct {
	Level  string
	Format string
}

// Addr returns the listen address in host:port form.
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load reads configuration from the environment with defaults applied.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("PORT", 8000)
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("JWT_SECRET", "dev-secret-change-me")
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("SHUTDOWN_GRACE", "10s")
	v.SetDefault("ASIS_CONFIG_PATH", "/app/config")
	v.SetDefault("ASIS_LOG_PATH", "/app/logs")
	v.SetDefault("ASIS_DATA_PATH", "/app/data")
	v.SetDefault("ASIS_DESCRIPTOR", "asis-deploy.jsonc")
	v.SetDefault("ASIS_BUILD_CONTEXT", "")
	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "text")

	// Env
	v.AutomaticEnv()

	tokenTTL, err := time.ParseDuration(v.GetString("TOKEN_TTL"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}
	shutdownGrace, err := time.ParseDuration(v.GetString("SHUTDOWN_GRACE"))
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_GRACE: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:          v.GetString("HOST"),
			Port:          v.GetInt("PORT"),
			Environment:   v.GetString("ENVIRONMENT"),
			DatabaseURL:   v.GetString("DATABASE_URL"),
			RedisURL:      v.GetString("REDIS_URL"),
			JWTSecret:     v.GetString("JWT_SECRET"),
			TokenTTL:      tokenTTL,
			ShutdownGrace: shutdownGrace,
		},
		Paths: PathsConfig{
			ConfigPath: v.GetString("ASIS_CONFIG_PATH"),
			LogPath:    v.GetString("ASIS_LOG_PATH"),
			DataPath:   v.GetString("ASIS_DATA_PATH"),
		},
		Deploy: DeployConfig{
			Descriptor: v.GetString("ASIS_DESCRIPTOR"),
			Context:    v.GetString("ASIS_BUILD_CONTEXT"),
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOGGER_LEVEL"),
			Format: v.GetString("LOGGER_FORMAT"),
		},
	}

	return cfg, nil
}

// IsDevelopment reports whether the server runs in development mode.
func (s *ServerConfig) IsDevelopment() bool {
	return s.Environment == "development"
}
