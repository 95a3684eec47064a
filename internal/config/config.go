// Package config loads layered settings: default.toml, then
// settings-{profile}.toml, then LINKNOVA_* environment variables, then any
// flags bound to the viper instance.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/marshallshelly/linknova/pkg/runtime"
)

// EnvPrefix is the prefix of environment overrides (LINKNOVA_DATABASE_URL).
const EnvPrefix = "LINKNOVA"

type Config struct {
	User     string         `mapstructure:"user"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Listing  ListingConfig  `mapstructure:"listing"`
}

type DatabaseConfig struct {
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port" validate:"gte=0,lte=65535"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode" validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`
	MaxConns int32  `mapstructure:"max_conns" validate:"gte=0"`
	MinConns int32  `mapstructure:"min_conns" validate:"gte=0,ltefield=MaxConns"`
}

type LogConfig struct {
	Mode  string `mapstructure:"mode" validate:"oneof=dev prod"`
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
}

type CacheConfig struct {
	Backend   string        `mapstructure:"backend" validate:"oneof=none memory redis"`
	RedisAddr string        `mapstructure:"redis_addr" validate:"required_if=Backend redis"`
	TTL       time.Duration `mapstructure:"ttl" validate:"gte=0"`
	Size      int           `mapstructure:"size" validate:"gte=0"`
}

type ListingConfig struct {
	DefaultPageSize int `mapstructure:"default_page_size" validate:"gte=1,ltefield=MaxPageSize"`
	MaxPageSize     int `mapstructure:"max_page_size" validate:"gte=1,lte=100"`
}

// New returns a viper instance carrying every default, with environment
// overrides enabled. Callers bind flags to it before Load.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("user", "")
	v.SetDefault("database.url", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "linknova")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.sslmode", "prefer")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("log.mode", "dev")
	v.SetDefault("log.level", "info")
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.ttl", 10*time.Minute)
	v.SetDefault("cache.size", 4096)
	v.SetDefault("listing.default_page_size", 10)
	v.SetDefault("listing.max_page_size", 100)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load merges the optional settings files from dir into v and decodes the
// result. A missing file is skipped; a malformed one is an error.
func Load(v *viper.Viper, dir, profile string) (*Config, error) {
	v.SetConfigType("toml")

	files := []string{filepath.Join(dir, "default.toml")}
	if profile != "" {
		files = append(files, filepath.Join(dir, "settings-"+profile+".toml"))
	}

	for _, path := range files {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New()

// Validate checks field constraints and reports every violation.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	errs := make([]error, len(verrs))
	for i, fe := range verrs {
		errs[i] = &runtime.ValidationError{Field: fe.Namespace(), Message: "failed " + fe.Tag()}
	}
	return fmt.Errorf("invalid config: %w", errors.Join(errs...))
}

// DB converts the database section into connection settings.
func (c *Config) DB() *runtime.Config {
	return &runtime.Config{
		URL:      c.Database.URL,
		Host:     c.Database.Host,
		Port:     c.Database.Port,
		Database: c.Database.Name,
		User:     c.Database.User,
		Password: c.Database.Password,
		SSLMode:  c.Database.SSLMode,
		MaxConns: c.Database.MaxConns,
		MinConns: c.Database.MinConns,
	}
}
