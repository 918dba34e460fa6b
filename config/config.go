package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type Config struct {
	DatabaseURL   string        `envconfig:"DATABASE_URL" required:"true"`
	HTTPAddr      string        `envconfig:"HTTP_ADDR" default:":8080"`
	LogLevel      string        `envconfig:"LOG_LEVEL" default:"info"`
	RedisURL      string        `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"336h"`
	SessionCookie string        `envconfig:"SESSION_COOKIE" default:"sessionid"`
	MediaURL      string        `envconfig:"MEDIA_URL" default:"/media/"`
	SaleTimeout   time.Duration `envconfig:"SALE_TIMEOUT" default:"5s"`
	AdminUsername string        `envconfig:"ADMIN_USERNAME"`
	AdminPassword string        `envconfig:"ADMIN_PASSWORD"`
}

// Load reads an optional .env file and then the process environment.
func Load(logger logrus.FieldLogger) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warnf("Error loading .env file (but continuing): %v", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}
	return &cfg, nil
}
