// Package config loads the service configuration from defaults, an optional
// YAML file and FOODGRAM_* environment variables, in that order of priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	EnvPrefix        = "FOODGRAM_"
	ConfigPathEnvVar = "CONFIG_PATH"
)

var DefaultConfigPaths = []string{"config.yaml", "config.yml"}

type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Mongo      MongoConfig      `koanf:"mongo"`
	Redis      RedisConfig      `koanf:"redis"`
	Auth       AuthConfig       `koanf:"auth"`
	Site       SiteConfig       `koanf:"site"`
	Media      MediaConfig      `koanf:"media"`
	Log        LogConfig        `koanf:"log"`
	Pagination PaginationConfig `koanf:"pagination"`
	RateLimit  RateLimitConfig  `koanf:"rate_limit"`
	Storage    StorageConfig    `koanf:"storage"`
	CORS       CORSConfig       `koanf:"cors"`
}

type ServerConfig struct {
	Port         string        `koanf:"port"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`
}

type MongoConfig struct {
	URI      string `koanf:"uri"`
	Database string `koanf:"database"`
}

type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

type AuthConfig struct {
	JWTSecret string        `koanf:"jwt_secret"`
	TokenTTL  time.Duration `koanf:"token_ttl"`
	CSRFTTL   time.Duration `koanf:"csrf_ttl"`
	// EnforceCSRF requires X-CSRFToken on anonymous writes.
	EnforceCSRF bool `koanf:"enforce_csrf"`
}

type SiteConfig struct {
	// Domain prefixes short links, e.g. https://foodgram.example.
	Domain string `koanf:"domain"`
}

type MediaConfig struct {
	Root     string `koanf:"root"`
	URL      string `koanf:"url"`
	MaxWidth int    `koanf:"max_width"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type PaginationConfig struct {
	PageSize    int `koanf:"page_size"`
	MaxPageSize int `koanf:"max_page_size"`
}

type RateLimitConfig struct {
	RPS   float64 `koanf:"rps"`
	Burst int     `koanf:"burst"`
}

type StorageConfig struct {
	// Driver is "mongo" or "memory".
	Driver string `koanf:"driver"`
}

type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         ":8080",
			ReadTimeout:  7 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Mongo:      MongoConfig{URI: "mongodb://localhost:27017", Database: "foodgram"},
		Redis:      RedisConfig{Addr: "localhost:6379"},
		Auth:       AuthConfig{TokenTTL: 24 * time.Hour, CSRFTTL: 2 * time.Hour},
		Site:       SiteConfig{Domain: "http://localhost"},
		Media:      MediaConfig{Root: "./media", URL: "/media/", MaxWidth: 1024},
		Log:        LogConfig{Level: "info", Format: "json"},
		Pagination: PaginationConfig{PageSize: 6, MaxPageSize: 100},
		RateLimit:  RateLimitConfig{RPS: 5, Burst: 10},
		Storage:    StorageConfig{Driver: "mongo"},
		CORS:       CORSConfig{AllowedOrigins: []string{"*"}},
	}
}

// sliceConfigPaths are split on commas when they arrive as env strings.
var sliceConfigPaths = []string{"cors.allowed_origins"}

// sections lists the top-level keys so FOODGRAM_RATE_LIMIT_RPS resolves to
// rate_limit.rps rather than rate.limit_rps.
var sections = []string{
	"server", "mongo", "redis", "auth", "site", "media",
	"log", "pagination", "rate_limit", "storage", "cors",
}

// Load reads .env (if any) and builds the configuration.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envTransformFunc maps FOODGRAM_MONGO_URI to mongo.uri.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	for _, section := range sections {
		if strings.HasPrefix(key, section+"_") {
			return section + "." + strings.TrimPrefix(key, section+"_")
		}
	}
	return key
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := []string{}
		for _, p := range strings.Split(strVal, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("set %s: %w", path, err)
		}
	}
	return nil
}

func (c *Config) normalize() {
	if c.Server.Port != "" && c.Server.Port[0] != ':' && !strings.Contains(c.Server.Port, ":") {
		c.Server.Port = ":" + c.Server.Port
	}
	c.Site.Domain = strings.TrimRight(c.Site.Domain, "/")
	if !strings.HasSuffix(c.Media.URL, "/") {
		c.Media.URL += "/"
	}
}

// Validate checks the settings the service cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret must be set"))
	}
	if c.Pagination.PageSize <= 0 {
		errs = append(errs, errors.New("pagination.page_size must be positive"))
	}
	if c.Pagination.MaxPageSize < c.Pagination.PageSize {
		errs = append(errs, errors.New("pagination.max_page_size must be >= page_size"))
	}
	switch c.Storage.Driver {
	case "mongo", "memory":
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q is not one of mongo, memory", c.Storage.Driver))
	}
	return errors.Join(errs...)
}
