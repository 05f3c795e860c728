package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalizeEnvKey(t *testing.T) {
	existing := knownKeys()

	tests := []struct {
		raw  string
		want string
	}{
		{raw: "HTTP_PORT", want: "http.port"},
		{raw: "HTTP_READTIMEOUT", want: "http.readTimeout"},
		{raw: "POSTGRES_DSN", want: "postgres.dsn"},
		{raw: "POSTGRES_MAXCONNS", want: "postgres.maxConns"},
		{raw: "AUTH_JWTSECRET", want: "auth.jwtSecret"},
		{raw: "INVENTORY_LOWSTOCKEXPR", want: "inventory.lowStockExpr"},
		{raw: "APP_UNKNOWN_FIELD", want: "app.unknown.field"},
		{raw: "PATH", want: ""},
		{raw: "LOGNAME", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, canonicalizeEnvKey(tt.raw, existing))
		})
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0o600))
	return dir
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 30*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, 24*time.Hour, cfg.Idempotency.TTL)
	assert.Equal(t, "stock <= threshold", cfg.Inventory.LowStockExpr)
	assert.Equal(t, devJWTSecret, cfg.Auth.JWTSecret)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := writeConfig(t, `
app:
  env: staging
  timezone: UTC
http:
  port: 9090
  readTimeout: 5s
postgres:
  dsn: postgres://file
inventory:
  lowStockThreshold: 3
`)
	t.Setenv("POSTGRES_DSN", "postgres://env")
	t.Setenv("HTTP_WRITETIMEOUT", "45s")
	t.Setenv("INVENTORY_LOWSTOCKTHRESHOLD", "2.5")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.App.Env)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 5*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 45*time.Second, cfg.HTTP.WriteTimeout)
	assert.Equal(t, 60*time.Second, cfg.HTTP.IdleTimeout, "unset keys keep defaults")
	assert.Equal(t, "postgres://env", cfg.Postgres.DSN)
	assert.InDelta(t, 2.5, cfg.Inventory.LowStockThreshold, 1e-9)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
	assert.Equal(t, ":9090", cfg.HTTP.Addr())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "bad timezone", yaml: "app:\n  timezone: Mars/Olympus\n"},
		{name: "bad port", yaml: "http:\n  port: 70000\n"},
		{name: "production without secret", yaml: "app:\n  env: production\n"},
		{name: "pool bounds", yaml: "postgres:\n  maxConns: 2\n  minConns: 4\n"},
		{name: "malformed yaml", yaml: "http: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.yaml))
			assert.Error(t, err)
		})
	}
}
