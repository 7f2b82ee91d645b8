package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/medledger/access-control-api/internal/system/constants"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig    `mapstructure:"server"`
	Database DatabasesConfig `mapstructure:"database"`
	Chain    ChainConfig     `mapstructure:"chain"`
	Registry RegistryConfig  `mapstructure:"registry"`
	Identity IdentityConfig  `mapstructure:"identity"`
	Logging  LoggingConfig   `mapstructure:"logging"`
	CORS     CORSConfig      `mapstructure:"cors"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Hostname     string        `mapstructure:"hostname"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout  time.Duration `mapstructure:"idleTimeout"`
}

// DatabasesConfig holds all database configurations.
type DatabasesConfig struct {
	Ledger DatabaseConfig `mapstructure:"ledger"`
}

// DatabaseConfig holds individual database configuration.
type DatabaseConfig struct {
	Type            string        `mapstructure:"type"`
	Hostname        string        `mapstructure:"hostname"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// ChainConfig holds the block-height windows the core validates against.
type ChainConfig struct {
	MinCredentialValidityBlocks int64 `mapstructure:"min_credential_validity_blocks"`
	MaxGrantDurationBlocks      int64 `mapstructure:"max_grant_duration_blocks"`
}

// GetMinCredentialValidityBlocks returns the minimum window a freshly
// registered credential must remain valid for.
func (c *ChainConfig) GetMinCredentialValidityBlocks() int64 {
	if c.MinCredentialValidityBlocks > 0 {
		return c.MinCredentialValidityBlocks
	}
	return constants.DefaultMinCredentialValidityBlocks
}

// GetMaxGrantDurationBlocks returns the longest lifetime a grant may carry.
func (c *ChainConfig) GetMaxGrantDurationBlocks() int64 {
	if c.MaxGrantDurationBlocks > 0 {
		return c.MaxGrantDurationBlocks
	}
	return constants.DefaultMaxGrantDurationBlocks
}

// RegistryConfig holds credential registry administration configuration.
type RegistryConfig struct {
	Administrators []string `mapstructure:"administrators"`
}

// IsAdministrator reports whether the signer is a registry administrator.
func (r *RegistryConfig) IsAdministrator(signerID string) bool {
	for _, admin := range r.Administrators {
		if admin == signerID {
			return true
		}
	}
	return false
}

// IdentityConfig holds the static name-to-signer bindings served by the
// built-in identity resolver.
type IdentityConfig struct {
	Names []NameBinding `mapstructure:"names"`
}

// NameBinding binds a human-meaningful name to a signer identity.
type NameBinding struct {
	Name               string `mapstructure:"name"`
	OwnerID            string `mapstructure:"owner_id"`
	RegistrationHeight int64  `mapstructure:"registration_height"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}

var globalConfig *Config

// Load reads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default lookup order:
		// 1. ./repository/conf/deployment.yaml (production - relative to binary)
		// 2. ./cmd/server/repository/conf/deployment.yaml (development)
		v.SetConfigName("deployment")
		v.SetConfigType("yaml")
		v.AddConfigPath("./repository/conf")
		v.AddConfigPath("./cmd/server/repository/conf")
		v.AddConfigPath("../repository/conf")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("ACCESS_LEDGER")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	globalConfig = &config
	return &config, nil
}

func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Database.Ledger.Hostname == "" {
		return fmt.Errorf("database hostname is required")
	}
	if config.Database.Ledger.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if len(config.Registry.Administrators) == 0 {
		return fmt.Errorf("at least one registry administrator is required")
	}
	for _, admin := range config.Registry.Administrators {
		if admin == constants.GrantLedgerIdentity {
			return fmt.Errorf("the grant ledger component identity cannot be an administrator")
		}
	}

	if config.Chain.MinCredentialValidityBlocks < 0 {
		return fmt.Errorf("min_credential_validity_blocks must be non-negative")
	}
	if config.Chain.MaxGrantDurationBlocks < 0 {
		return fmt.Errorf("max_grant_duration_blocks must be non-negative")
	}

	return nil
}

// Get returns the global configuration.
func Get() *Config {
	return globalConfig
}

// SetGlobal sets the global configuration (for testing purposes).
func SetGlobal(cfg *Config) {
	globalConfig = cfg
}

// GetDSN returns the database connection string.
func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&multiStatements=true",
		d.User,
		d.Password,
		d.Hostname,
		d.Port,
		d.Database,
	)
}

// GetServerAddress returns the server address in host:port format.
func (s *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", s.Hostname, s.Port)
}

// GetReadTimeout returns the configured read timeout, defaulting to 15s.
func (s *ServerConfig) GetReadTimeout() time.Duration {
	if s.ReadTimeout > 0 {
		return s.ReadTimeout
	}
	return 15 * time.Second
}

// GetWriteTimeout returns the configured write timeout, defaulting to 15s.
func (s *ServerConfig) GetWriteTimeout() time.Duration {
	if s.WriteTimeout > 0 {
		return s.WriteTimeout
	}
	return 15 * time.Second
}

// GetIdleTimeout returns the configured idle timeout, defaulting to 60s.
func (s *ServerConfig) GetIdleTimeout() time.Duration {
	if s.IdleTimeout > 0 {
		return s.IdleTimeout
	}
	return 60 * time.Second
}
