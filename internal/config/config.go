// Package config reads the settings of the contact service. Values come from an optional YAML file
// named by CONFIG_FILE and from environment variables, which take precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store kinds.
const (
	StoreMongo  = "mongo"
	StoreMySQL  = "mysql"
	StoreMemory = "memory"
)

// Config aggregates all settings.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Store   StoreConfig   `yaml:"store"`
	Logging LoggingConfig `yaml:"logging"`
}

// HTTPConfig governs the REST API.
type HTTPConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	GinMode         string        `yaml:"ginMode"`
	RequestLogging  bool          `yaml:"requestLogging"`
	AllowedOrigins  []string      `yaml:"allowedOrigins"`
	MetricsEnabled  bool          `yaml:"metricsEnabled"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// StoreConfig selects and describes the contact store.
type StoreConfig struct {
	Kind  string      `yaml:"kind"`
	Mongo MongoConfig `yaml:"mongo"`
	MySQL MySQLConfig `yaml:"mysql"`
}

// MongoConfig describes the MongoDB collection holding the contacts.
type MongoConfig struct {
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

// MySQLConfig describes the MySQL database holding the contacts table.
type MySQLConfig struct {
	Host     string `yaml:"host"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// LoggingConfig controls the log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Port:            8080,
			RequestLogging:  true,
			AllowedOrigins:  []string{"http://localhost:3000"},
			ShutdownTimeout: 10 * time.Second,
		},
		Store: StoreConfig{
			Kind: StoreMongo,
			Mongo: MongoConfig{
				URI:        "mongodb://localhost:27017",
				Database:   "Contact_Details",
				Collection: "contacts",
			},
			MySQL: MySQLConfig{
				Host:     "localhost:3306",
				Database: "test",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "logfmt",
		},
	}
}

// Load builds the configuration from the defaults, the file named by CONFIG_FILE and the
// environment, in this order, and validates the result.
//
// Usage example on the command line:
// > PORT=8080 STORE=mysql DBHOST=localhost:3306 DBUSER=dirk DBPWD=bullo92 GIN_LOGGING=OFF go run main.go
func Load() (Config, error) {
	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path) // nosemgrep
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString("HOST", &cfg.HTTP.Host)
	setString("GIN_MODE", &cfg.HTTP.GinMode)
	if v := os.Getenv("GIN_LOGGING"); v != "" {
		cfg.HTTP.RequestLogging = !strings.EqualFold(v, "off")
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("could not parse PORT env variable %q: %w", v, err)
		}
		cfg.HTTP.Port = port
	}
	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("could not parse METRICS_ENABLED env variable %q: %w", v, err)
		}
		cfg.HTTP.MetricsEnabled = enabled
	}
	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("could not parse SHUTDOWN_TIMEOUT env variable %q: %w", v, err)
		}
		cfg.HTTP.ShutdownTimeout = d
	}

	setString("STORE", &cfg.Store.Kind)
	setString("MONGO_URI", &cfg.Store.Mongo.URI)
	setString("MONGO_DATABASE", &cfg.Store.Mongo.Database)
	setString("MONGO_COLLECTION", &cfg.Store.Mongo.Collection)
	setString("DBHOST", &cfg.Store.MySQL.Host)
	setString("DBUSER", &cfg.Store.MySQL.User)
	setString("DBPWD", &cfg.Store.MySQL.Password)
	setString("DBNAME", &cfg.Store.MySQL.Database)

	setString("LOG_LEVEL", &cfg.Logging.Level)
	setString("LOG_FORMAT", &cfg.Logging.Format)
	return nil
}

// Validate checks the settings for values the service cannot work with.
func (c Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("port %d is out of range", c.HTTP.Port)
	}
	switch c.Store.Kind {
	case StoreMongo, StoreMySQL, StoreMemory:
	default:
		return fmt.Errorf("unknown store %q, expected %s, %s or %s", c.Store.Kind, StoreMongo, StoreMySQL, StoreMemory)
	}
	for _, origin := range c.HTTP.AllowedOrigins {
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("invalid CORS origin %q", origin)
		}
	}
	return nil
}

// Addr is the listen address of the REST API.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

func setString(key string, target *string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func splitList(csv string) []string {
	var items []string
	for _, part := range strings.Split(csv, ",") {
		item := strings.TrimSpace(part)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
