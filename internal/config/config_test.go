package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, time.Second, cfg.AutosaveDelay)
	assert.Equal(t, 24*time.Hour, cfg.SessionLifetime)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, Rewards{First: 500, Second: 300, Third: 150}, cfg.Rewards)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "Production")
	t.Setenv("HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("DATABASE_PATH", "/tmp/t.db")
	t.Setenv("AUTOSAVE_DELAY", "250ms")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("REWARD_FIRST", "1000")

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, EnvProduction, cfg.Env)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, "127.0.0.1:9000", cfg.HTTPAddr)
	assert.Equal(t, "/tmp/t.db", cfg.DatabasePath)
	assert.Equal(t, 250*time.Millisecond, cfg.AutosaveDelay)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.EqualValues(t, 1000, cfg.Rewards.First)
	assert.EqualValues(t, 300, cfg.Rewards.Second)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("APP_ENV", "staging")
	_, err := load(viper.New())
	assert.Error(t, err)

	t.Setenv("APP_ENV", "test")
	t.Setenv("AUTOSAVE_DELAY", "0s")
	_, err = load(viper.New())
	assert.Error(t, err)
}
