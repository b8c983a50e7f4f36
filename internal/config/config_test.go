package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg := FromEnv()

		assert.Equal(t, DriverSQLite, cfg.Database.Driver)
		assert.Equal(t, "local.db", cfg.Database.SQLitePath)
		assert.Equal(t, "easy", cfg.Game.DefaultDifficulty)
		assert.Equal(t, 500, cfg.Game.LongPressMillis)
		assert.Equal(t, 10, cfg.Leaderboard.MaxEntries)
		assert.Equal(t, []string{"en", "fr", "es"}, cfg.I18n.SupportedLanguages)
		require.NoError(t, cfg.Validate())
	})

	t.Run("Reads overrides", func(t *testing.T) {
		t.Setenv("PORT", "8080")
		t.Setenv("DB_DRIVER", "postgres")
		t.Setenv("DB_HOST", "db")
		t.Setenv("REDIS_ENABLED", "false")
		t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
		t.Setenv("LEADERBOARD_CACHE_TTL", "not-a-number")

		cfg := FromEnv()

		assert.Equal(t, "8080", cfg.Server.Port)
		assert.Equal(t, "0.0.0.0:8080", cfg.GetServerAddress())
		assert.Equal(t, DriverPostgres, cfg.Database.Driver)
		assert.Contains(t, cfg.GetDatabaseURL(), "host=db port=5432")
		assert.False(t, cfg.Redis.Enabled)
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
		assert.Equal(t, 60, cfg.Leaderboard.CacheTTL)
	})
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *Config){
		"unknown driver":       func(c *Config) { c.Database.Driver = "mysql" },
		"missing sqlite path":  func(c *Config) { c.Database.SQLitePath = "" },
		"incomplete postgres":  func(c *Config) { c.Database.Driver = DriverGorm; c.Database.Host = "" },
		"bad difficulty":       func(c *Config) { c.Game.DefaultDifficulty = "expert" },
		"zero long press":      func(c *Config) { c.Game.LongPressMillis = 0 },
		"empty leaderboard":    func(c *Config) { c.Leaderboard.MaxEntries = 0 },
		"unsupported language": func(c *Config) { c.I18n.DefaultLanguage = "de" },
		"bad log format":       func(c *Config) { c.Log.Format = "xml" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := FromEnv()
			mutate(cfg)

			assert.Error(t, cfg.Validate())
		})
	}
}

func TestGetRedisURL(t *testing.T) {
	cfg := FromEnv()
	assert.Equal(t, "redis://localhost:6379/0", cfg.GetRedisURL())

	cfg.Redis.Password = "secret"
	assert.Equal(t, "redis://:secret@localhost:6379/0", cfg.GetRedisURL())
}
