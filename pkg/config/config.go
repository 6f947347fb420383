package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	SMTP     SMTPConfig
	App      AppConfig
	Tokens   TokenConfig
}

type ServerConfig struct {
	Host string
	Port int
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
}

type JWTConfig struct {
	Secret      string
	Issuer      string
	Audience    string
	ExpiryHours int
}

type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	SenderName  string
	SenderEmail string
	TimeoutSecs int
}

// AppConfig holds the frontend link bases embedded in outbound emails.
type AppConfig struct {
	VerifyEmailURL   string
	ResetPasswordURL string
}

type TokenConfig struct {
	VerifyEmailTTLHours  int
	ResetPasswordTTLMins int
}

func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

func (j *JWTConfig) Expiry() time.Duration {
	return time.Duration(j.ExpiryHours) * time.Hour
}

func (s *SMTPConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSecs) * time.Second
}

func (t *TokenConfig) VerifyEmailTTL() time.Duration {
	return time.Duration(t.VerifyEmailTTLHours) * time.Hour
}

func (t *TokenConfig) ResetPasswordTTL() time.Duration {
	return time.Duration(t.ResetPasswordTTLMins) * time.Minute
}

func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func (s *ServerConfig) IsDevelopment() bool {
	return s.Env == "development"
}

// Validate rejects configuration the server cannot safely start with.
// A missing JWT secret must be caught here, not on the first login.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.JWT.ExpiryHours <= 0 {
		return errors.New("JWT_EXPIRY_HOURS must be positive")
	}
	return nil
}

func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_ENV", "development")
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", 5432)
	v.SetDefault("DATABASE_USER", "sanad")
	v.SetDefault("DATABASE_PASSWORD", "sanad_secret")
	v.SetDefault("DATABASE_NAME", "sanad")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "sanad-api")
	v.SetDefault("JWT_AUDIENCE", "sanad-clients")
	v.SetDefault("JWT_EXPIRY_HOURS", 2)
	v.SetDefault("SMTP_HOST", "localhost")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_SENDER_NAME", "Sanad")
	v.SetDefault("SMTP_SENDER_EMAIL", "no-reply@sanad.chat")
	v.SetDefault("SMTP_TIMEOUT_SECONDS", 10)
	v.SetDefault("APP_VERIFY_EMAIL_URL", "http://localhost:3000/verify-email")
	v.SetDefault("APP_RESET_PASSWORD_URL", "http://localhost:3000/reset-password")
	v.SetDefault("TOKEN_VERIFY_EMAIL_TTL_HOURS", 24)
	v.SetDefault("TOKEN_RESET_PASSWORD_TTL_MINUTES", 15)

	// Load from .env file if present
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// Override with environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetInt("SERVER_PORT"),
			Env:  v.GetString("SERVER_ENV"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DATABASE_HOST"),
			Port:     v.GetInt("DATABASE_PORT"),
			User:     v.GetString("DATABASE_USER"),
			Password: v.GetString("DATABASE_PASSWORD"),
			Name:     v.GetString("DATABASE_NAME"),
			SSLMode:  v.GetString("DATABASE_SSLMODE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
		},
		JWT: JWTConfig{
			Secret:      v.GetString("JWT_SECRET"),
			Issuer:      v.GetString("JWT_ISSUER"),
			Audience:    v.GetString("JWT_AUDIENCE"),
			ExpiryHours: v.GetInt("JWT_EXPIRY_HOURS"),
		},
		SMTP: SMTPConfig{
			Host:        v.GetString("SMTP_HOST"),
			Port:        v.GetInt("SMTP_PORT"),
			Username:    v.GetString("SMTP_USERNAME"),
			Password:    v.GetString("SMTP_PASSWORD"),
			SenderName:  v.GetString("SMTP_SENDER_NAME"),
			SenderEmail: v.GetString("SMTP_SENDER_EMAIL"),
			TimeoutSecs: v.GetInt("SMTP_TIMEOUT_SECONDS"),
		},
		App: AppConfig{
			VerifyEmailURL:   v.GetString("APP_VERIFY_EMAIL_URL"),
			ResetPasswordURL: v.GetString("APP_RESET_PASSWORD_URL"),
		},
		Tokens: TokenConfig{
			VerifyEmailTTLHours:  v.GetInt("TOKEN_VERIFY_EMAIL_TTL_HOURS"),
			ResetPasswordTTLMins: v.GetInt("TOKEN_RESET_PASSWORD_TTL_MINUTES"),
		},
	}

	return cfg, nil
}
