package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, `
database:
  host: localhost
  user: airline
  name: airline
redis:
  addr: localhost:6379
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "reservation_events", cfg.Kafka.ReservationsTopic)
	assert.Equal(t, 15*time.Minute, cfg.Booking.DraftTTL())
	assert.Equal(t, "host=localhost port=5432 user=airline password= dbname=airline sslmode=disable", cfg.Database.DSN())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
database:
  password: from-file
kafka:
  brokers: ["file:9092"]
`)
	t.Setenv("DB_PASSWORD", "from-env")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Database.Password)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "DEBUG", cfg.Log.Level)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "http: [not a map"))
	assert.Error(t, err)
}

func TestPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	assert.Equal(t, "config.yaml", Path())

	t.Setenv("CONFIG_PATH", "/etc/airline.yaml")
	assert.Equal(t, "/etc/airline.yaml", Path())
}
