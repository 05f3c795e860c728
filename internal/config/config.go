// Package config loads service configuration from config.yaml, .env and
// the environment.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

// FileName is the config file looked up in the search paths.
const FileName = "config.yaml"

// DefaultSearchPaths are tried in order when Load gets no paths.
var DefaultSearchPaths = []string{".", "config", "../config"}

const devJWTSecret = "dev-secret-change-me"

// Config is the full service configuration.
type Config struct {
	App         AppConfig         `yaml:"app"`
	Log         LogConfig         `yaml:"log"`
	HTTP        HTTPConfig        `yaml:"http"`
	Postgres    PostgresConfig    `yaml:"postgres"`
	Auth        AuthConfig        `yaml:"auth"`
	Idempotency IdempotencyConfig `yaml:"idempotency"`
	Inventory   InventoryConfig   `yaml:"inventory"`
	Label       LabelConfig       `yaml:"label"`
	Admin       AdminConfig       `yaml:"admin"`
}

type AppConfig struct {
	Env      string `yaml:"env"`
	Name     string `yaml:"name"`
	Version  string `yaml:"version"`
	Timezone string `yaml:"timezone"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type HTTPConfig struct {
	Port            int           `yaml:"port"`
	Mode            string        `yaml:"mode"`
	Gzip            bool          `yaml:"gzip"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	IdleTimeout     time.Duration `yaml:"idleTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// Addr is the listen address.
func (c HTTPConfig) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

type PostgresConfig struct {
	DSN               string        `yaml:"dsn"`
	MaxConns          int32         `yaml:"maxConns"`
	MinConns          int32         `yaml:"minConns"`
	MaxConnLifetime   time.Duration `yaml:"maxConnLifetime"`
	MaxConnIdleTime   time.Duration `yaml:"maxConnIdleTime"`
	HealthCheckPeriod time.Duration `yaml:"healthCheckPeriod"`
}

type AuthConfig struct {
	JWTSecret        string        `yaml:"jwtSecret"`
	Issuer           string        `yaml:"issuer"`
	AccessTokenTTL   time.Duration `yaml:"accessTokenTTL"`
	MaxLoginAttempts int           `yaml:"maxLoginAttempts"`
	LockDuration     time.Duration `yaml:"lockDuration"`
	BcryptCost       int           `yaml:"bcryptCost"`
}

// IdempotencyConfig controls X-Idempotency-Key handling. A zero TTL
// disables it.
type IdempotencyConfig struct {
	TTL             time.Duration `yaml:"ttl"`
	CleanupInterval time.Duration `yaml:"cleanupInterval"`
}

// InventoryConfig holds the low-stock rule, a CEL expression.
type InventoryConfig struct {
	LowStockExpr      string  `yaml:"lowStockExpr"`
	LowStockThreshold float64 `yaml:"lowStockThreshold"`
}

type LabelConfig struct {
	Size  int    `yaml:"size"`
	Level string `yaml:"level"`
}

// AdminConfig is the account created by cmd/seed and on first start.
type AdminConfig struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		App: AppConfig{
			Env:      "development",
			Name:     "retailpos",
			Version:  "dev",
			Timezone: "Local",
		},
		Log: LogConfig{Level: "info"},
		HTTP: HTTPConfig{
			Port:            8080,
			Mode:            "release",
			Gzip:            true,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Postgres: PostgresConfig{
			MaxConns:          25,
			MinConns:          5,
			MaxConnLifetime:   time.Hour,
			MaxConnIdleTime:   30 * time.Minute,
			HealthCheckPeriod: time.Minute,
		},
		Auth: AuthConfig{
			Issuer:           "retailpos",
			AccessTokenTTL:   12 * time.Hour,
			MaxLoginAttempts: 5,
			LockDuration:     15 * time.Minute,
			BcryptCost:       10,
		},
		Idempotency: IdempotencyConfig{
			TTL:             24 * time.Hour,
			CleanupInterval: time.Hour,
		},
		Inventory: InventoryConfig{
			LowStockExpr:      "stock <= threshold",
			LowStockThreshold: 5,
		},
		Label: LabelConfig{Size: 256, Level: "M"},
		Admin: AdminConfig{
			Email: "admin@retailpos.local",
			Name:  "Administrator",
		},
	}
}

// Load reads .env (if present), the first config.yaml found in paths (or
// DefaultSearchPaths) and environment overrides, in that order. A missing
// config file is not an error; defaults fill every unset field.
func Load(paths ...string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "load .env")
	}

	if len(paths) == 0 {
		paths = DefaultSearchPaths
	}

	k := koanf.New(".")

	if configFile, ok := findFile(paths); ok {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "read %s", configFile)
		}
	}

	known := knownKeys()
	for key, v := range k.Raw() {
		known[key] = v
	}

	if err := k.Load(env.Provider(".", env.Opt{
		TransformFunc: func(key, v string) (string, any) {
			return canonicalizeEnvKey(key, known), v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables")
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return errors.Errorf("http.port %d out of range", c.HTTP.Port)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Auth.JWTSecret == "" {
		if c.IsProduction() {
			return errors.New("auth.jwtSecret is required in production")
		}
		c.Auth.JWTSecret = devJWTSecret
	}
	if c.Postgres.MinConns > c.Postgres.MaxConns {
		return errors.Errorf("postgres.minConns %d exceeds maxConns %d", c.Postgres.MinConns, c.Postgres.MaxConns)
	}
	return nil
}

// IsProduction reports whether app.env is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Env, "production")
}

// Location resolves app.timezone. Empty and "Local" mean the host zone.
func (c *Config) Location() (*time.Location, error) {
	switch c.App.Timezone {
	case "", "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return nil, errors.Wrapf(err, "app.timezone %q", c.App.Timezone)
	}
	return loc, nil
}

func findFile(paths []string) (string, bool) {
	for _, p := range paths {
		candidate := filepath.Join(p, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}
	return "", false
}

// knownKeys is the key tree of Config, so env overrides work without a
// config file.
func knownKeys() map[string]any {
	return map[string]any{
		"app":         leaf("env", "name", "version", "timezone"),
		"log":         leaf("level", "development"),
		"http":        leaf("port", "mode", "gzip", "readTimeout", "writeTimeout", "idleTimeout", "shutdownTimeout"),
		"postgres":    leaf("dsn", "maxConns", "minConns", "maxConnLifetime", "maxConnIdleTime", "healthCheckPeriod"),
		"auth":        leaf("jwtSecret", "issuer", "accessTokenTTL", "maxLoginAttempts", "lockDuration", "bcryptCost"),
		"idempotency": leaf("ttl", "cleanupInterval"),
		"inventory":   leaf("lowStockExpr", "lowStockThreshold"),
		"label":       leaf("size", "level"),
		"admin":       leaf("email", "password", "name"),
	}
}

func leaf(keys ...string) map[string]any {
	m := make(map[string]any, len(keys))
	for _, k := range keys {
		m[k] = nil
	}
	return m
}

// canonicalizeEnvKey maps HTTP_READTIMEOUT to http.readTimeout using the
// keys in existing. Variables whose first segment is not a known section
// map to "" and are dropped by the env provider.
func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}
		matched, next, ok := findExistingSegment(current, segment)
		if !ok {
			if len(canonical) == 0 {
				return ""
			}
			canonical = append(canonical, segment)
			current = nil
			continue
		}
		canonical = append(canonical, matched)
		current = next
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (string, map[string]any, bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}
		child, _ := value.(map[string]any)
		return key, child, true
	}
	return "", nil, false
}

func normalizeToken(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
