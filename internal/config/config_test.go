package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/laundry_service/internal/models"
	env "github.com/Skotchmaster/laundry_service/pkg/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SERVER_PORT", "LOG_LEVEL", "DATABASE_URL", "SQLITE_PATH", "JWT_SECRET", "TOKEN_TTL",
		"KAFKA_BROKERS", "ES_URL", "ES_USER", "ES_PASSWORD", "ORDER_INDEX", "SEED_DEMO",
		"KILOAN_PRICE", "TIMEZONE",
	} {
		t.Setenv(k, "")
	}
}

func missingFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := LoadConfig(missingFile(t))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "laundry.db", cfg.SQLitePath)
	assert.Equal(t, "orders", cfg.OrderIndex)
	assert.EqualValues(t, 10000, cfg.KiloanPrice)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.False(t, cfg.SeedDemo)
	assert.Nil(t, cfg.KafkaBrokers)
	assert.Equal(t, []byte("secret"), cfg.JWTSecret)
}

func TestLoadConfig_FromEnvFile(t *testing.T) {
	clearEnv(t)
	// godotenv never overrides variables that already exist, even empty ones.
	for _, k := range []string{"JWT_SECRET", "KAFKA_BROKERS", "SEED_DEMO", "KILOAN_PRICE", "TIMEZONE"} {
		require.NoError(t, os.Unsetenv(k))
	}
	path := filepath.Join(t.TempDir(), ".env")
	content := "JWT_SECRET=from-file\nKAFKA_BROKERS=k1:9092,k2:9092\nSEED_DEMO=true\nKILOAN_PRICE=12000\nTIMEZONE=Asia/Jakarta\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Cleanup(func() {
		for _, k := range []string{"JWT_SECRET", "KAFKA_BROKERS", "SEED_DEMO", "KILOAN_PRICE", "TIMEZONE"} {
			os.Unsetenv(k)
		}
	})

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.SeedDemo)
	assert.EqualValues(t, 12000, cfg.Prices().KiloanPerKg)
	assert.EqualValues(t, 30000, cfg.Prices().Satuan[models.CategoryJacket])

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Jakarta", loc.String())
}

func TestLoadConfig_RequiresSecret(t *testing.T) {
	clearEnv(t)

	_, err := LoadConfig(missingFile(t))
	require.ErrorIs(t, err, env.ErrMissingEnv)
}

func TestLoadConfig_RejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("KILOAN_PRICE", "-5")
	_, err := LoadConfig(missingFile(t))
	require.Error(t, err)

	t.Setenv("KILOAN_PRICE", "")
	t.Setenv("TIMEZONE", "Mars/Olympus")
	_, err = LoadConfig(missingFile(t))
	require.Error(t, err)
}

func TestInitDB_SQLite(t *testing.T) {
	cfg := &Config{SQLitePath: ":memory:"}

	gdb, err := InitDB(context.Background(), cfg)
	require.NoError(t, err)
	assert.True(t, gdb.Migrator().HasTable(&models.Order{}))
	assert.True(t, gdb.Migrator().HasTable(&models.UserVoucherClaim{}))
}
