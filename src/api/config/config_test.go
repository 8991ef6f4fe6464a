package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stake-plus/ideabox/src/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{"IDEABOX_CONFIG", "DATABASE_DSN", "MYSQL_DSN", "REDIS_URL", "JWT_SECRET", "PORT", "DISCORD_TOKEN", "GUILD_ID", "CORS_ORIGINS", "TLS_CERT_FILE", "TLS_KEY_FILE"} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, defaultDSN, cfg.DatabaseDSN)
	assert.Equal(t, "5000", cfg.Port)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, defaultOrigins, cfg.CORSOrigins)
	assert.Error(t, cfg.ValidateAPI())
	assert.Error(t, cfg.ValidateBot())
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "ideabox.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database_dsn: postgres://ideabox@db/ideabox
jwt_secret: from-file
port: "8080"
cors_origins:
  - https://ideas.example.com
`), 0o600))
	t.Setenv("IDEABOX_CONFIG", path)
	t.Setenv("PORT", "9090")
	t.Setenv("MYSQL_DSN", "legacy@tcp(db)/ideabox")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "legacy@tcp(db)/ideabox", cfg.DatabaseDSN, "env beats the file")
	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, []string{"https://ideas.example.com"}, cfg.CORSOrigins)
	assert.NoError(t, cfg.ValidateAPI())
}

func TestLoad_DatabaseDSNWinsOverMySQLDSN(t *testing.T) {
	clearEnv(t)
	t.Setenv("MYSQL_DSN", "legacy")
	t.Setenv("DATABASE_DSN", "sqlite://new.db")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example ,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite://new.db", cfg.DatabaseDSN)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestValidateAPI_TLSPair(t *testing.T) {
	cfg := Config{DatabaseDSN: "x", JWTSecret: "s", TLSCertFile: "cert.pem"}
	assert.Error(t, cfg.ValidateAPI())
	assert.False(t, cfg.TLS())

	cfg.TLSKeyFile = "key.pem"
	assert.NoError(t, cfg.ValidateAPI())
	assert.True(t, cfg.TLS())
}

func TestLoad_BadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [unterminated"), 0o600))
	t.Setenv("IDEABOX_CONFIG", path)

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("IDEABOX_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err = Load()
	assert.Error(t, err)
}

func TestApplySettings(t *testing.T) {
	clearEnv(t)
	t.Setenv("DISCORD_TOKEN", "env-token")
	t.Setenv("GUILD_ID", "env-guild")

	db, err := data.Connect("sqlite://file:config_settings?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, data.Migrate(db))
	require.NoError(t, data.SaveSetting(db, "discord_token", "db-token"))

	cfg, err := Load()
	require.NoError(t, err)
	cfg.ApplySettings(db)
	assert.Equal(t, "db-token", cfg.DiscordToken)
	assert.Equal(t, "env-guild", cfg.GuildID)
	assert.NoError(t, cfg.ValidateBot())
}

func TestOrigins(t *testing.T) {
	assert.Equal(t, defaultOrigins, Config{}.Origins())
	assert.Equal(t, []string{"https://ideas.example.com"}, Config{CORSOrigins: []string{"https://ideas.example.com"}}.Origins())
}
