package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ytakahashi/task-manager/internal/models"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read when no explicit path is given and it exists.
const DefaultFile = "config.yaml"

const (
	StoreMemory    = "memory"
	StoreFirestore = "firestore"
	StorePostgres  = "postgres"
	StoreSQLite    = "sqlite"
)

type Config struct {
	Client struct {
		APIURL          string        `yaml:"api_url"`
		Timeout         time.Duration `yaml:"timeout"`
		Rollback        bool          `yaml:"rollback"`
		ValidationFlash time.Duration `yaml:"validation_flash"`
		DateLayout      string        `yaml:"date_layout"`
	} `yaml:"client"`

	Server struct {
		Port        string `yaml:"port"`
		Store       string `yaml:"store"`
		ProjectID   string `yaml:"project_id"`
		DatabaseURL string `yaml:"database_url"`
		SQLitePath  string `yaml:"sqlite_path"`
	} `yaml:"server"`
}

var unsetPlaceholder = regexp.MustCompile(`\$\{[A-Za-z_][A-Za-z0-9_]*\}`)

// Default returns the built-in configuration.
func Default() *Config {
	var cfg Config
	cfg.Client.APIURL = "http://localhost:8080"
	cfg.Client.Timeout = 30 * time.Second
	cfg.Client.Rollback = true
	cfg.Client.ValidationFlash = 2000 * time.Millisecond
	cfg.Client.DateLayout = models.DefaultDateLayout
	cfg.Server.Port = "8080"
	cfg.Server.Store = StoreMemory
	cfg.Server.SQLitePath = "~/.config/task-manager/tasks.db"
	return &cfg
}

// Load builds the configuration from defaults, then the YAML file at path
// (DefaultFile if path is empty and that file exists), then environment
// variables. ${VAR} placeholders in the file are replaced from the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal([]byte(expandEnv(string(data))), cfg); err != nil {
			return nil, fmt.Errorf("error parsing config: %w", err)
		}
	case explicit || !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later at startup.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Client.APIURL) == "" {
		return fmt.Errorf("client.api_url must not be empty")
	}
	if c.Client.Timeout < 0 {
		return fmt.Errorf("client.timeout must not be negative")
	}
	switch c.Server.Store {
	case StoreMemory, StoreSQLite:
	case StoreFirestore:
		if c.Server.ProjectID == "" {
			return fmt.Errorf("server.project_id is required for the firestore store")
		}
	case StorePostgres:
		if c.Server.DatabaseURL == "" {
			return fmt.Errorf("server.database_url is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown store %q", c.Server.Store)
	}
	return nil
}

func expandEnv(content string) string {
	for _, env := range os.Environ() {
		pair := strings.SplitN(env, "=", 2)
		if len(pair) != 2 {
			continue
		}
		placeholder := "${" + pair[0] + "}"
		content = strings.ReplaceAll(content, placeholder, pair[1])
	}
	// unset variables expand to nothing
	return unsetPlaceholder.ReplaceAllString(content, "")
}

func applyEnv(cfg *Config) error {
	if v := envOr("TASK_API_URL", ""); v != "" {
		cfg.Client.APIURL = v
	}
	if v := envOr("TASK_CLIENT_TIMEOUT", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid TASK_CLIENT_TIMEOUT value: %w", err)
		}
		cfg.Client.Timeout = d
	}
	if v := envOr("TASK_ROLLBACK", ""); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid TASK_ROLLBACK value: %w", err)
		}
		cfg.Client.Rollback = b
	}
	if v := envOr("PORT", ""); v != "" {
		cfg.Server.Port = v
	}
	if v := envOr("TASK_STORE", ""); v != "" {
		cfg.Server.Store = strings.ToLower(v)
	}
	if v := envOr("GOOGLE_CLOUD_PROJECT", ""); v != "" {
		cfg.Server.ProjectID = v
	}
	if v := envOr("DATABASE_URL", ""); v != "" {
		cfg.Server.DatabaseURL = v
	}
	if v := envOr("SQLITE_PATH", ""); v != "" {
		cfg.Server.SQLitePath = v
	}
	return nil
}

func envOr(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}
