package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useSecretsDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	prev := secretsDir
	secretsDir = dir
	t.Cleanup(func() { secretsDir = prev })
	return dir
}

func TestReadSecret(t *testing.T) {
	dir := useSecretsDir(t)

	t.Run("file wins over env", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "jwt_secret"), []byte("  from-file\n"), 0o600))
		t.Setenv("JWT_SECRET", "from-env")

		got, err := ReadSecret("jwt_secret")
		require.NoError(t, err)
		assert.Equal(t, "from-file", got)
	})

	t.Run("env fallback", func(t *testing.T) {
		t.Setenv("DB_PASSWORD", "pass")
		got, err := ReadSecret("db_password")
		require.NoError(t, err)
		assert.Equal(t, "pass", got)
	})

	t.Run("empty file", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "empty"), []byte("   "), 0o600))
		_, err := ReadSecret("empty")
		assert.Error(t, err)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := ReadSecret("redis_password")
		assert.Error(t, err)
	})
}

func TestLoadConfig(t *testing.T) {
	useSecretsDir(t)
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "forum")
	t.Setenv("DB_NAME", "forum")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("JWT_SECRET", "jwt")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("AUTH_RATE_LIMIT", "3")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "forum.events", cfg.EventsExchange)
	assert.Equal(t, time.Hour, cfg.AccessTokenTTL)
	assert.EqualValues(t, 3, cfg.AuthRateLimit)
	assert.Equal(t, "jwt", cfg.JWTSecret)
	assert.Empty(t, cfg.RedisPassword)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.GetAllowedOrigins())
	assert.Equal(t, "postgres://forum:secret@db:5432/forum?sslmode=disable", cfg.DatabaseURL())
}

func TestLoadConfig_DotEnvFile(t *testing.T) {
	useSecretsDir(t)
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("SERVER_PORT=9090\nDB_HOST=envhost\n"), 0o600))

	// godotenv does not override variables that are already set.
	t.Setenv("DB_USER", "forum")
	t.Setenv("DB_NAME", "forum")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("JWT_SECRET", "jwt")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("DB_HOST", "")
	os.Unsetenv("SERVER_PORT")
	os.Unsetenv("DB_HOST")

	cfg, err := LoadConfig(envFile)
	require.NoError(t, err)
	t.Cleanup(func() {
		os.Unsetenv("SERVER_PORT")
		os.Unsetenv("DB_HOST")
	})

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "envhost", cfg.DBHost)
}

func TestLoadConfig_MissingRequired(t *testing.T) {
	useSecretsDir(t)
	t.Setenv("DB_HOST", "")
	os.Unsetenv("DB_HOST")
	t.Setenv("DB_USER", "forum")
	t.Setenv("DB_NAME", "forum")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
