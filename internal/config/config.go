package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"

	MailProviderSMTP     = "smtp"
	MailProviderSendGrid = "sendgrid"
	MailProviderResend   = "resend"
	MailProviderLog      = "log"
)

type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	JWT           JWTConfig
	SMTP          SMTPConfig
	Mail          MailConfig
	PasswordReset PasswordResetConfig
	CORS          CORSConfig
}

type ServerConfig struct {
	Port           string
	Host           string
	Environment    string
	MaxRequestSize int64
}

type DatabaseConfig struct {
	Driver string

	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string

	MongoURI      string
	MongoDatabase string
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
}

type MailConfig struct {
	Provider       string
	From           string
	SendGridAPIKey string
	ResendAPIKey   string
}

type PasswordResetConfig struct {
	TokenTTL            time.Duration
	URLBase             string
	ConcealUnknownEmail bool
	RequireStrong       bool
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

func setDefaults() {
	viper.SetDefault("SERVER_PORT", "3000")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("MAX_REQUEST_SIZE", 1<<20)

	viper.SetDefault("DB_DRIVER", DriverMongo)
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DATABASE", "auth")

	viper.SetDefault("JWT_EXPIRY_HOURS", 12)

	viper.SetDefault("SMTP_HOST", "smtp.gmail.com")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("MAIL_PROVIDER", MailProviderSMTP)

	viper.SetDefault("PASSWORD_RESET_TOKEN_TTL", time.Hour)
	viper.SetDefault("PASSWORD_RESET_URL_BASE", "http://localhost:3000/reset-password")
	viper.SetDefault("PASSWORD_RESET_CONCEAL_UNKNOWN_EMAIL", false)
	viper.SetDefault("PASSWORD_REQUIRE_STRONG", false)

	viper.SetDefault("CORS_ALLOWED_ORIGINS", []string{"*"})
	viper.SetDefault("CORS_ALLOWED_METHODS", []string{"GET", "POST", "OPTIONS"})
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"})
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AddConfigPath(".")
	if homeDir, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(homeDir)
	}
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		log.Printf("Warning: config file not found: %v. Falling back to environment variables only.", err)
	}

	mailFrom := viper.GetString("MAIL_FROM")
	if mailFrom == "" {
		mailFrom = viper.GetString("SMTP_USER")
	}

	config := &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			Host:           viper.GetString("SERVER_HOST"),
			Environment:    viper.GetString("ENVIRONMENT"),
			MaxRequestSize: viper.GetInt64("MAX_REQUEST_SIZE"),
		},
		Database: DatabaseConfig{
			Driver:        viper.GetString("DB_DRIVER"),
			Host:          viper.GetString("DB_HOST"),
			Port:          viper.GetString("DB_PORT"),
			User:          viper.GetString("DB_USER"),
			Password:      viper.GetString("DB_PASSWORD"),
			DBName:        viper.GetString("DB_NAME"),
			SSLMode:       viper.GetString("DB_SSLMODE"),
			MongoURI:      viper.GetString("MONGO_URI"),
			MongoDatabase: viper.GetString("MONGO_DATABASE"),
		},
		JWT: JWTConfig{
			Secret:      viper.GetString("JWT_SECRET"),
			ExpiryHours: viper.GetInt("JWT_EXPIRY_HOURS"),
		},
		SMTP: SMTPConfig{
			Host:     viper.GetString("SMTP_HOST"),
			Port:     viper.GetInt("SMTP_PORT"),
			User:     viper.GetString("SMTP_USER"),
			Password: viper.GetString("SMTP_PASSWORD"),
		},
		Mail: MailConfig{
			Provider:       viper.GetString("MAIL_PROVIDER"),
			From:           mailFrom,
			SendGridAPIKey: viper.GetString("SENDGRID_API_KEY"),
			ResendAPIKey:   viper.GetString("RESEND_API_KEY"),
		},
		PasswordReset: PasswordResetConfig{
			TokenTTL:            viper.GetDuration("PASSWORD_RESET_TOKEN_TTL"),
			URLBase:             viper.GetString("PASSWORD_RESET_URL_BASE"),
			ConcealUnknownEmail: viper.GetBool("PASSWORD_RESET_CONCEAL_UNKNOWN_EMAIL"),
			RequireStrong:       viper.GetBool("PASSWORD_REQUIRE_STRONG"),
		},
		CORS: CORSConfig{
			AllowedOrigins:   viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods:   viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders:   viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
			ExposedHeaders:   viper.GetStringSlice("CORS_EXPOSED_HEADERS"),
			AllowCredentials: viper.GetBool("CORS_ALLOW_CREDENTIALS"),
			MaxAge:           viper.GetInt("CORS_MAX_AGE"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate reports configuration that would make the service unusable.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.JWT.ExpiryHours <= 0 {
		return fmt.Errorf("JWT_EXPIRY_HOURS must be positive, got %d", c.JWT.ExpiryHours)
	}
	if c.PasswordReset.TokenTTL <= 0 {
		return fmt.Errorf("PASSWORD_RESET_TOKEN_TTL must be positive, got %s", c.PasswordReset.TokenTTL)
	}

	switch c.Database.Driver {
	case DriverMongo:
		if c.Database.MongoURI == "" {
			return errors.New("MONGO_URI is required for the mongo driver")
		}
	case DriverPostgres:
		if c.Database.Host == "" || c.Database.DBName == "" {
			return errors.New("DB_HOST and DB_NAME are required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}

	switch c.Mail.Provider {
	case MailProviderLog:
	case MailProviderSMTP, MailProviderSendGrid, MailProviderResend:
		if c.Mail.From == "" {
			return fmt.Errorf("MAIL_FROM or SMTP_USER is required for the %s mail provider", c.Mail.Provider)
		}
	default:
		return fmt.Errorf("unsupported MAIL_PROVIDER %q", c.Mail.Provider)
	}

	return nil
}

func (c *JWTConfig) Expiry() time.Duration {
	return time.Duration(c.ExpiryHours) * time.Hour
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}
