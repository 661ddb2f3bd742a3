package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks all variables Load looks at, so the test environment cannot leak in.
func clearEnv(t *testing.T) {
	for _, key := range []string{
		"CONFIG_FILE", "HOST", "PORT", "GIN_MODE", "GIN_LOGGING", "CORS_ORIGINS", "METRICS_ENABLED",
		"SHUTDOWN_TIMEOUT", "STORE", "MONGO_URI", "MONGO_DATABASE", "MONGO_COLLECTION", "DBHOST",
		"DBUSER", "DBPWD", "DBNAME", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, ":8080", cfg.HTTP.Addr())
	assert.Equal(t, StoreMongo, cfg.Store.Kind)
	assert.Equal(t, "Contact_Details", cfg.Store.Mongo.Database)
}

func TestLoadEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("GIN_LOGGING", "OFF")
	t.Setenv("CORS_ORIGINS", "http://a.example, https://b.example,")
	t.Setenv("METRICS_ENABLED", "true")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("STORE", "mysql")
	t.Setenv("DBHOST", "db:3306")
	t.Setenv("DBUSER", "dirk")
	t.Setenv("DBPWD", "bullo92")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.False(t, cfg.HTTP.RequestLogging)
	assert.Equal(t, []string{"http://a.example", "https://b.example"}, cfg.HTTP.AllowedOrigins)
	assert.True(t, cfg.HTTP.MetricsEnabled)
	assert.Equal(t, 3*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, StoreMySQL, cfg.Store.Kind)
	assert.Equal(t, MySQLConfig{Host: "db:3306", User: "dirk", Password: "bullo92", Database: "test"}, cfg.Store.MySQL)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

// TestLoadFile reads a YAML file and expects environment variables to win over it.
func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "conf.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  port: 7070
  allowedOrigins: ["*"]
store:
  kind: memory
  mongo:
    database: Other
logging:
  format: json
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7171")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7171, cfg.HTTP.Port)
	assert.Equal(t, []string{"*"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, StoreMemory, cfg.Store.Kind)
	assert.Equal(t, "Other", cfg.Store.Mongo.Database)
	assert.Equal(t, "contacts", cfg.Store.Mongo.Collection)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadInvalid(t *testing.T) {
	tests := map[string]map[string]string{
		"port not a number":  {"PORT": "eighty"},
		"port out of range":  {"PORT": "70000"},
		"unknown store":      {"STORE": "couchdb"},
		"origin not a URL":   {"CORS_ORIGINS": "example.com"},
		"bad metrics switch": {"METRICS_ENABLED": "sometimes"},
		"bad timeout":        {"SHUTDOWN_TIMEOUT": "soon"},
		"missing file":       {"CONFIG_FILE": "/does/not/exist.yaml"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
