// config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrMissingCredential is returned when the grades API token is not configured.
var ErrMissingCredential = errors.New("MADGRADES_API_TOKEN environment variable is not set")

type ServerConfig struct {
	Port string `yaml:"port"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // "mysql" or "sqlite"
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	Path     string `yaml:"path"` // sqlite file, ":memory:" allowed
	DSN      string `yaml:"dsn"`  // overrides the fields above when set
}

// FetchConfig is the per-consumer queue and retry policy.
type FetchConfig struct {
	Concurrency    int    `yaml:"concurrency"`
	IntervalCap    int    `yaml:"interval_cap"`
	IntervalStr    string `yaml:"interval"`
	MaxRetries     int    `yaml:"max_retries"`
	BackoffBaseStr string `yaml:"backoff_base"`
	TimeoutStr     string `yaml:"timeout"`

	Interval    time.Duration `yaml:"-"`
	BackoffBase time.Duration `yaml:"-"`
	Timeout     time.Duration `yaml:"-"`
}

type CatalogConfig struct {
	BaseURL   string      `yaml:"base_url"`
	IndexPath string      `yaml:"index_path"`
	UserAgent string      `yaml:"user_agent"`
	Fetch     FetchConfig `yaml:"fetch"`
}

type GradesConfig struct {
	APIURL        string      `yaml:"api_url"`
	AuthScheme    string      `yaml:"auth_scheme"`
	ProgressEvery int         `yaml:"progress_every"`
	Fetch         FetchConfig `yaml:"fetch"`

	// Token only ever comes from the environment.
	Token string `yaml:"-"`
}

type SchoolsConfig struct {
	Default     string            `yaml:"default"`
	MappingCSV  string            `yaml:"mapping_csv"`
	BySubject   map[string]string `yaml:"by_subject"`
	SeedSchools []string          `yaml:"seed"`
}

type ReportsConfig struct {
	Dir string `yaml:"dir"`
}

type LogConfig struct {
	Mode string `yaml:"mode"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Grades   GradesConfig   `yaml:"grades"`
	Schools  SchoolsConfig  `yaml:"schools"`
	Reports  ReportsConfig  `yaml:"reports"`
	Log      LogConfig      `yaml:"log"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Server: ServerConfig{Port: "8080"},
		Database: DatabaseConfig{
			Driver: "mysql",
			Host:   "127.0.0.1",
			Port:   "3306",
			User:   "wiscflow",
			DBName: "wiscflow",
		},
		Catalog: CatalogConfig{
			BaseURL:   "https://guide.wisc.edu",
			IndexPath: "/courses/",
			UserAgent: "WiscFlow Course Scraper (Educational Project)",
			Fetch: FetchConfig{
				Concurrency: 3,
				IntervalCap: 3,
				IntervalStr: "500ms",
				MaxRetries:  3,
				TimeoutStr:  "30s",
			},
		},
		Grades: GradesConfig{
			APIURL:        "https://api.madgrades.com/v1",
			AuthScheme:    "Token",
			ProgressEvery: 100,
			Fetch: FetchConfig{
				Concurrency: 5,
				IntervalCap: 5,
				IntervalStr: "1s",
				MaxRetries:  3,
				TimeoutStr:  "30s",
			},
		},
		Schools: SchoolsConfig{
			Default: "Letters & Science, College of",
		},
		Reports: ReportsConfig{Dir: "data"},
		Log:     LogConfig{Mode: "development"},
	}
}

// LoadConfig reads .env (if present), the YAML file (if present), then applies
// environment overrides. An empty configPath skips the file.
func LoadConfig(configPath string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()

	if configPath != "" {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(file, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Catalog.Fetch.parse(3, 3, 500*time.Millisecond); err != nil {
		return Config{}, fmt.Errorf("catalog.fetch: %w", err)
	}
	if err := cfg.Grades.Fetch.parse(5, 5, time.Second); err != nil {
		return Config{}, fmt.Errorf("grades.fetch: %w", err)
	}
	if cfg.Grades.ProgressEvery <= 0 {
		cfg.Grades.ProgressEvery = 100
	}
	if cfg.Grades.AuthScheme == "" {
		cfg.Grades.AuthScheme = "Token"
	}
	if cfg.Schools.Default == "" {
		cfg.Schools.Default = Default().Schools.Default
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Grades.Token = os.Getenv("MADGRADES_API_TOKEN")

	if v := os.Getenv("MADGRADES_API_URL"); v != "" {
		cfg.Grades.APIURL = v
	}
	if v := os.Getenv("CATALOG_BASE_URL"); v != "" {
		cfg.Catalog.BaseURL = v
	}
	if v := os.Getenv("DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("DATABASE_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("LOG_MODE"); v != "" {
		cfg.Log.Mode = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if _, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = v
		}
	}
}

// parse fills the derived durations and falls back to the given defaults.
func (f *FetchConfig) parse(concurrency, intervalCap int, interval time.Duration) error {
	var err error
	if f.Concurrency <= 0 {
		f.Concurrency = concurrency
	}
	if f.IntervalCap <= 0 {
		f.IntervalCap = intervalCap
	}
	if f.MaxRetries <= 0 {
		f.MaxRetries = 3
	}

	f.Interval = interval
	if f.IntervalStr != "" {
		if f.Interval, err = time.ParseDuration(f.IntervalStr); err != nil {
			return fmt.Errorf("failed to parse interval: %w", err)
		}
	}
	f.BackoffBase = time.Second
	if f.BackoffBaseStr != "" {
		if f.BackoffBase, err = time.ParseDuration(f.BackoffBaseStr); err != nil {
			return fmt.Errorf("failed to parse backoff_base: %w", err)
		}
	}
	f.Timeout = 30 * time.Second
	if f.TimeoutStr != "" {
		if f.Timeout, err = time.ParseDuration(f.TimeoutStr); err != nil {
			return fmt.Errorf("failed to parse timeout: %w", err)
		}
	}
	return nil
}

// RequireGradesToken fails when the grades credential is absent.
// A missing token is a configuration error: the ingester must not start.
func (c Config) RequireGradesToken() error {
	if c.Grades.Token == "" {
		return ErrMissingCredential
	}
	return nil
}

// FindConfigFile returns the first existing candidate, or "" when none exists.
func FindConfigFile(candidates ...string) string {
	for _, p := range candidates {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
