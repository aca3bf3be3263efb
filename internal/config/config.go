package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds everything read from the environment. main loads a .env file
// first (godotenv), then parses this struct.
type Config struct {
	ListenAddr string `envconfig:"LISTEN_ADDR" default:":8080"`

	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"studio"`
	DBPassword string `envconfig:"DB_PASSWORD" default:"studio"`
	DBName     string `envconfig:"DB_NAME" default:"studiohub"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// JWTSecret is required by the API server; the admin CLI runs without it.
	JWTSecret string `envconfig:"JWT_SECRET"`

	// TelegramBotToken enables offline Telegram pings for staff when set.
	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load parses the configuration from environment variables.
func Load() (*Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	return &c, nil
}

// DSN builds the Postgres connection string for GORM.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}
