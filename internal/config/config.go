package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/projectplanning/planning-cloud-api/internal/constants"
	"github.com/spf13/viper"
)

type Config struct {
	DBDriver            string
	DatabaseURL         string
	DBHost              string
	DBPort              string
	DBUser              string
	DBPassword          string
	DBName              string
	DBSSLMode           string
	DBMaxOpenConns      int
	DBConnectRetries    int
	DBConnectRetryDelay time.Duration
	DBLogLevel          string

	Port    string
	GinMode string

	LogLevel  string
	LogFormat string

	TokenSecret string
	TokenTTL    time.Duration
	Credentials []Credential

	SessionSecret string
	SessionStore  string
	RedisHost     string
	RedisPort     string
	RedisPassword string

	RateLimitEnabled bool
	RateLimitWindow  time.Duration
	RateLimitGeneral int
	RateLimitStrict  int

	OpenAIAPIKey string
	OpenAIModel  string
}

// Credential is one entry of the static account list accepted by /auth/login.
// Password may be given in plaintext (hashed at startup) or as a bcrypt hash.
type Credential struct {
	Username     string `mapstructure:"username" yaml:"username"`
	Password     string `mapstructure:"password" yaml:"password"`
	PasswordHash string `mapstructure:"password_hash" yaml:"password_hash"`
	Role         string `mapstructure:"role" yaml:"role"`
}

// IsRelease reports whether the server runs in gin release mode.
func (c *Config) IsRelease() bool {
	return c.GinMode == "release"
}

// Load reads configuration from defaults, an optional config file and the
// environment, in increasing order of precedence. An empty path searches the
// working directory for config.yaml.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &Config{
		DBDriver:            strings.ToLower(v.GetString("db_driver")),
		DatabaseURL:         v.GetString("database_url"),
		DBHost:              v.GetString("db_host"),
		DBPort:              v.GetString("db_port"),
		DBUser:              v.GetString("db_user"),
		DBPassword:          v.GetString("db_password"),
		DBName:              v.GetString("db_name"),
		DBSSLMode:           v.GetString("db_sslmode"),
		DBMaxOpenConns:      v.GetInt("db_max_open_conns"),
		DBConnectRetries:    v.GetInt("db_connect_retries"),
		DBConnectRetryDelay: v.GetDuration("db_connect_retry_delay"),
		DBLogLevel:          v.GetString("db_log_level"),
		Port:                v.GetString("port"),
		GinMode:             v.GetString("gin_mode"),
		LogLevel:            v.GetString("log_level"),
		LogFormat:           v.GetString("log_format"),
		TokenSecret:         v.GetString("token_secret"),
		TokenTTL:            v.GetDuration("token_ttl"),
		SessionSecret:       v.GetString("session_secret"),
		SessionStore:        strings.ToLower(v.GetString("session_store")),
		RedisHost:           v.GetString("redis_host"),
		RedisPort:           v.GetString("redis_port"),
		RedisPassword:       v.GetString("redis_password"),
		RateLimitEnabled:    v.GetBool("rate_limit_enabled"),
		RateLimitWindow:     v.GetDuration("rate_limit_window"),
		RateLimitGeneral:    v.GetInt("rate_limit_general"),
		RateLimitStrict:     v.GetInt("rate_limit_strict"),
		OpenAIAPIKey:        v.GetString("openai_api_key"),
		OpenAIModel:         v.GetString("openai_model"),
	}

	if err := v.UnmarshalKey("auth_users", &cfg.Credentials); err != nil {
		return nil, fmt.Errorf("parsing auth_users: %w", err)
	}
	if len(cfg.Credentials) == 0 {
		cfg.Credentials = DefaultCredentials()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late at startup.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported db_driver %q (want postgres, mysql or sqlite)", c.DBDriver)
	}
	switch c.SessionStore {
	case "cookie", "redis":
	default:
		return fmt.Errorf("unsupported session_store %q (want cookie or redis)", c.SessionStore)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token_ttl must be positive")
	}
	if c.RateLimitEnabled && (c.RateLimitWindow <= 0 || c.RateLimitGeneral <= 0 || c.RateLimitStrict <= 0) {
		return fmt.Errorf("rate limit window and limits must be positive")
	}
	for i, cred := range c.Credentials {
		if cred.Username == "" {
			return fmt.Errorf("auth_users[%d]: username is required", i)
		}
		if cred.Password == "" && cred.PasswordHash == "" {
			return fmt.Errorf("auth_users[%d]: password or password_hash is required", i)
		}
	}
	return nil
}

// DefaultCredentials mirrors the accounts the Bonita process integration
// ships with. Override them through auth_users in the config file.
func DefaultCredentials() []Credential {
	return []Credential{
		{Username: "bonita_user", Password: "bonita_pass", Role: "bonita_system"},
		{Username: "api_user", Password: "api_pass", Role: "api_client"},
		{Username: "admin", Password: "admin123", Role: "admin"},
		{Username: "walter.bates", Password: "bpm", Role: "user"},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db_driver", "postgres")
	v.SetDefault("database_url", "")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_password", "postgres")
	v.SetDefault("db_name", "project_planning")
	v.SetDefault("db_sslmode", "disable")
	v.SetDefault("db_max_open_conns", 10)
	v.SetDefault("db_connect_retries", 10)
	v.SetDefault("db_connect_retry_delay", 5*time.Second)
	v.SetDefault("db_log_level", "warn")
	v.SetDefault("port", "3000")
	v.SetDefault("gin_mode", "debug")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "")
	v.SetDefault("token_secret", "default-token-secret-change-me")
	v.SetDefault("token_ttl", constants.DefaultTokenTTL)
	v.SetDefault("session_secret", "default-secret-key-change-me")
	v.SetDefault("session_store", "cookie")
	v.SetDefault("redis_host", "localhost")
	v.SetDefault("redis_port", "6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("rate_limit_enabled", true)
	v.SetDefault("rate_limit_window", 15*time.Minute)
	v.SetDefault("rate_limit_general", 100)
	v.SetDefault("rate_limit_strict", 20)
	v.SetDefault("openai_api_key", "")
	v.SetDefault("openai_model", "gpt-4o")
}
