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
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(body), 0o600))
	return dir
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: 8080
database:
  driver: mongo
  mongo:
    uri: mongodb://db:27017
jwt:
  secret: file-secret
stripe:
  currency: eur
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "mongo", cfg.Database.Driver)
	assert.Equal(t, "mongodb://db:27017", cfg.Database.Mongo.URI)
	assert.Equal(t, "doctors_portal", cfg.Database.Mongo.Database)
	assert.Equal(t, "file-secret", cfg.JWT.Secret)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiry())
	assert.Equal(t, "eur", cfg.Stripe.Currency)
	assert.Equal(t, 5*time.Second, cfg.Outbox.PollInterval)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	dir := writeConfig(t, `
jwt:
  secret: file-secret
`)
	t.Setenv("CLINIC_JWT_SECRET", "env-secret")
	t.Setenv("CLINIC_STRIPE_SECRET_KEY", "sk_test_123")
	t.Setenv("CLINIC_DATABASE_PASSWORD", "s3cret")
	t.Setenv("CLINIC_RATE_LIMIT_BURST", "7")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, "sk_test_123", cfg.Stripe.SecretKey)
	assert.Equal(t, "s3cret", cfg.Database.Password)
	assert.Equal(t, 7, cfg.RateLimit.Burst)
}

func TestLoadConfigWithoutFileUsesDefaults(t *testing.T) {
	t.Setenv("CLINIC_JWT_SECRET", "only-env")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "log", cfg.Notification.Driver)
	assert.Equal(t, "usd", cfg.Stripe.Currency)
}

func TestValidate(t *testing.T) {
	dir := writeConfig(t, `
database:
  driver: cassandra
jwt:
  secret: x
`)
	_, err := LoadConfig(dir)
	assert.ErrorContains(t, err, "unsupported database driver")

	_, err = LoadConfig(t.TempDir())
	assert.ErrorContains(t, err, "jwt secret is required")
}

func TestDatabaseURLs(t *testing.T) {
	db := DatabaseConfig{Host: "pg", Port: 5432, User: "u", Password: "p", Name: "clinic", SSLMode: "disable"}

	assert.Equal(t, "host=pg port=5432 user=u password=p dbname=clinic sslmode=disable", db.DSN())
	assert.Equal(t, "postgres://u:p@pg:5432/clinic?sslmode=disable", db.URL())
}
