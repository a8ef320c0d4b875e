package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Password  PasswordConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	MQTT      MQTTConfig
}

type ServerConfig struct {
	Port        string
	Host        string
	Environment string

	// TrustedProxies lists the proxy IPs or CIDRs whose X-Forwarded-For is
	// believed. Empty means the client address is the peer address.
	TrustedProxies []string
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	Secret         string
	AccessTokenTTL time.Duration
}

type PasswordConfig struct {
	BcryptCost int
}

type RateLimitConfig struct {
	GeneralRPS   float64 // Requests per second for general endpoints
	GeneralBurst int     // Burst size for general endpoints
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int // seconds
}

type MQTTConfig struct {
	Broker        string
	ClientID      string
	Username      string
	Password      string
	InterestTopic string
	QoS           int
}

// Enabled reports whether interest notifications should be published.
func (c MQTTConfig) Enabled() bool {
	return c.Broker != ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("ENVIRONMENT", "development")

	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("JWT_ACCESS_TTL_MINUTES", 30)
	v.SetDefault("BCRYPT_COST", bcrypt.DefaultCost)

	v.SetDefault("RATE_LIMIT_GENERAL_RPS", 10)
	v.SetDefault("RATE_LIMIT_GENERAL_BURST", 20)

	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS")
	v.SetDefault("CORS_ALLOWED_HEADERS", "Origin,Content-Type,Authorization,X-Request-ID")
	v.SetDefault("CORS_EXPOSED_HEADERS", "X-Request-ID")
	v.SetDefault("CORS_MAX_AGE", 43200)

	v.SetDefault("MQTT_CLIENT_ID", "property-marketplace")
	v.SetDefault("MQTT_INTEREST_TOPIC", "marketplace/sellers/%d/interest")
	v.SetDefault("MQTT_QOS", 1)
}

// Load reads configuration from an optional .env file in the working
// directory, overridden by environment variables.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	config := &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Host:           v.GetString("SERVER_HOST"),
			Environment:    v.GetString("ENVIRONMENT"),
			TrustedProxies: splitList(v.GetString("TRUSTED_PROXIES")),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(v.GetString("DB_DRIVER")),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		JWT: JWTConfig{
			Secret:         v.GetString("JWT_SECRET"),
			AccessTokenTTL: time.Duration(v.GetInt("JWT_ACCESS_TTL_MINUTES")) * time.Minute,
		},
		Password: PasswordConfig{
			BcryptCost: v.GetInt("BCRYPT_COST"),
		},
		RateLimit: RateLimitConfig{
			GeneralRPS:   v.GetFloat64("RATE_LIMIT_GENERAL_RPS"),
			GeneralBurst: v.GetInt("RATE_LIMIT_GENERAL_BURST"),
		},
		CORS: CORSConfig{
			AllowedOrigins:   splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
			AllowedMethods:   splitList(v.GetString("CORS_ALLOWED_METHODS")),
			AllowedHeaders:   splitList(v.GetString("CORS_ALLOWED_HEADERS")),
			ExposedHeaders:   splitList(v.GetString("CORS_EXPOSED_HEADERS")),
			AllowCredentials: v.GetBool("CORS_ALLOW_CREDENTIALS"),
			MaxAge:           v.GetInt("CORS_MAX_AGE"),
		},
		MQTT: MQTTConfig{
			Broker:        v.GetString("MQTT_BROKER"),
			ClientID:      v.GetString("MQTT_CLIENT_ID"),
			Username:      v.GetString("MQTT_USERNAME"),
			Password:      v.GetString("MQTT_PASSWORD"),
			InterestTopic: v.GetString("MQTT_INTEREST_TOPIC"),
			QoS:           v.GetInt("MQTT_QOS"),
		},
	}

	return config, nil
}

// Validate reports the first setting that makes the process unable to start.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT secret is missing, set JWT_SECRET")
	}
	if c.JWT.AccessTokenTTL <= 0 {
		return errors.New("JWT_ACCESS_TTL_MINUTES must be positive")
	}
	if c.Password.BcryptCost < bcrypt.MinCost || c.Password.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	switch c.Database.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Database.Host == "" || c.Database.DBName == "" {
			return errors.New("database configuration is missing, set DB_HOST and DB_NAME")
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.Database.Driver)
	}

	if c.MQTT.Enabled() && (c.MQTT.QoS < 0 || c.MQTT.QoS > 2) {
		return errors.New("MQTT_QOS must be 0, 1 or 2")
	}

	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
