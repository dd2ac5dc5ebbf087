package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	SnapshotTTL  time.Duration `env:"SNAPSHOT_TTL" envDefault:"5m"`
	StoreTimeout time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`

	GCSBucket string `env:"GCS_BUCKET"`

	// AuthJWTSecret verifies tokens issued by the external identity provider.
	// Empty disables verification.
	AuthJWTSecret string `env:"AUTH_JWT_SECRET"`
	CORSOrigins   string `env:"CORS_ORIGINS" envDefault:"http://localhost:5173"`

	SubmitRatePerMinute int    `env:"SUBMIT_RATE_PER_MINUTE" envDefault:"30"`
	ReportSchedule      string `env:"REPORT_SCHEDULE" envDefault:"@hourly"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogJSON  bool   `env:"LOG_JSON" envDefault:"false"`
	LogDir   string `env:"LOG_DIR"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// .env is optional, mainly for local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// AllowedOrigins splits CORSOrigins into a list, dropping blanks.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
