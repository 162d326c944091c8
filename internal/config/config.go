package config

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env      string `validate:"oneof=development production test"`
	HTTPAddr string `validate:"required"`
	LogLevel string

	DatabasePath string `validate:"required"`

	AutosaveDelay   time.Duration `validate:"gt=0"`
	SessionLifetime time.Duration `validate:"gt=0"`

	CORSAllowedOrigins []string

	Rewards Rewards
}

// Rewards are the coins credited to the podium when a tournament completes.
type Rewards struct {
	First  int64 `validate:"min=0"`
	Second int64 `validate:"min=0"`
	Third  int64 `validate:"min=0"`
}

func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

var defaults = map[string]any{
	"app_env":              EnvDevelopment,
	"http_addr":            ":8080",
	"log_level":            "info",
	"database_path":        "toilescoins.db",
	"autosave_delay":       time.Second,
	"session_lifetime":     24 * time.Hour,
	"cors_allowed_origins": []string{"*"},
	"reward_first":         500,
	"reward_second":        300,
	"reward_third":         150,
}

// Load reads .env when present, then the environment. Environment variables
// use the upper-case key names (APP_ENV, HTTP_ADDR, ...).
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	cfg := &Config{
		Env:             strings.ToLower(v.GetString("app_env")),
		HTTPAddr:        v.GetString("http_addr"),
		LogLevel:        v.GetString("log_level"),
		DatabasePath:    v.GetString("database_path"),
		AutosaveDelay:   v.GetDuration("autosave_delay"),
		SessionLifetime: v.GetDuration("session_lifetime"),
		Rewards: Rewards{
			First:  v.GetInt64("reward_first"),
			Second: v.GetInt64("reward_second"),
			Third:  v.GetInt64("reward_third"),
		},
	}

	// Env values arrive as one comma separated string.
	for _, origin := range v.GetStringSlice("cors_allowed_origins") {
		for _, part := range strings.Split(origin, ",") {
			if part = strings.TrimSpace(part); part != "" {
				cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, part)
			}
		}
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}
