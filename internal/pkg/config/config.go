package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET, required"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	SessionTTL time.Duration `env:"SESSION_TTL, default=12h"`

	Marketplace MarketplaceConfig
	Redis       RedisConfig
	Mongo       MongoConfig
	Wizard      WizardConfig
	Audit       AuditConfig
}

type MarketplaceConfig struct {
	BaseURL string        `env:"MARKETPLACE_URL,     default=http://localhost:8000/api/v1"`
	Timeout time.Duration `env:"MARKETPLACE_TIMEOUT, default=15s"`
}

// RedisConfig enables the Redis session store and submit lock when Addr is
// set; otherwise in-process stores are used.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

// MongoConfig enables the persistent submission audit trail when URI is set.
type MongoConfig struct {
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DB, default=portal"`
}

type WizardConfig struct {
	ScoringFile   string        `env:"SCORING_FILE"`
	IdleTTL       time.Duration `env:"WIZARD_IDLE_TTL,       default=2h"`
	SweepInterval time.Duration `env:"WIZARD_SWEEP_INTERVAL, default=1m"`
	SubmitTimeout time.Duration `env:"WIZARD_SUBMIT_TIMEOUT, default=30s"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

// IsDevelopment reports whether the service runs with development defaults
// such as pretty logs.
func (c *Config) IsDevelopment() bool { return c.Env == "development" }

// Load reads an optional dotenv file and then the process environment.
// Variables already set in the environment win over the file. A missing
// file is not an error.
func Load(ctx context.Context, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", envFile, err)
		}
	}
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.Audit.Workers <= 0 {
		return nil, fmt.Errorf("config: AUDIT_WORKERS must be positive, got %d", cfg.Audit.Workers)
	}
	return &cfg, nil
}
