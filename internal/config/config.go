package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/Skotchmaster/laundry_service/internal/pricing"
	"github.com/Skotchmaster/laundry_service/internal/repo"
	"github.com/Skotchmaster/laundry_service/internal/service"
	"github.com/Skotchmaster/laundry_service/internal/service/search"
	env "github.com/Skotchmaster/laundry_service/pkg/config"
	"github.com/Skotchmaster/laundry_service/pkg/db"
)

type Config struct {
	ServerPort int
	LogLevel   string

	DatabaseURL string
	SQLitePath  string

	JWTSecret []byte
	TokenTTL  time.Duration

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	OrderIndex string

	SeedDemo      bool
	SecureCookies bool
	KiloanPrice   int64
	Timezone      string
}

// LoadConfig reads .env when present, then the process environment.
func LoadConfig(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	if err := godotenv.Load(files...); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file: %w", err)
		}
		log.Printf("notice: %v, using process environment", err)
	}

	cfg := &Config{
		ServerPort:    env.EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:      env.EnvDefault("LOG_LEVEL", "info"),
		DatabaseURL:   env.EnvDefault("DATABASE_URL", ""),
		SQLitePath:    env.EnvDefault("SQLITE_PATH", "laundry.db"),
		JWTSecret:     []byte(env.EnvDefault("JWT_SECRET", "")),
		TokenTTL:      env.EnvDurationDefault("TOKEN_TTL", service.DefaultTokenTTL),
		KafkaBrokers:  env.CSV(env.EnvDefault("KAFKA_BROKERS", "")),
		ESURL:         env.EnvDefault("ES_URL", ""),
		ESUser:        env.EnvDefault("ES_USER", ""),
		ESPassword:    env.EnvDefault("ES_PASSWORD", ""),
		OrderIndex:    env.EnvDefault("ORDER_INDEX", search.DefaultIndex),
		SeedDemo:      env.EnvBoolDefault("SEED_DEMO", false),
		SecureCookies: env.EnvBoolDefault("SECURE_COOKIES", false),
		KiloanPrice:   int64(env.EnvIntDefault("KILOAN_PRICE", int(pricing.DefaultKiloanPrice))),
		Timezone:      env.EnvDefault("TIMEZONE", "UTC"),
	}

	if err := env.NonEmpty(string(cfg.JWTSecret), "JWT_SECRET"); err != nil {
		return nil, err
	}
	if cfg.KiloanPrice <= 0 {
		return nil, fmt.Errorf("KILOAN_PRICE must be positive, got %d", cfg.KiloanPrice)
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *Config) Prices() pricing.PriceList {
	p := pricing.DefaultPriceList()
	p.KiloanPerKg = c.KiloanPrice
	return p
}

// InitDB opens postgres when DATABASE_URL is set and the embedded SQLite
// file otherwise, then migrates the schema.
func InitDB(ctx context.Context, cfg *Config) (*gorm.DB, error) {
	var (
		gdb *gorm.DB
		err error
	)
	if cfg.DatabaseURL != "" {
		gdb, err = db.Open(ctx, cfg.DatabaseURL)
	} else {
		gdb, err = db.OpenSQLite(ctx, cfg.SQLitePath)
	}
	if err != nil {
		return nil, err
	}
	if err := repo.AutoMigrate(gdb); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return gdb, nil
}
