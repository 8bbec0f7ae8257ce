package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "JWT_SECRET",
		"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME",
		"IS_DEVELOPMENT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultDBHost, cfg.DBHost)
	assert.Equal(t, DefaultDBPort, cfg.DBPort)
	assert.Equal(t, DefaultDBUser, cfg.DBUser)
	assert.Equal(t, DefaultDBName, cfg.DBName)
	assert.Empty(t, cfg.JWTSecret)
	assert.False(t, cfg.DevMode)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("JWT_SECRET", "hunter2")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("IS_DEVELOPMENT", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "hunter2", cfg.JWTSecret)
	assert.Equal(t, "db.internal", cfg.DBHost)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestLoadEnvFile(t *testing.T) {
	t.Setenv("DB_NAME", "")
	os.Unsetenv("DB_NAME")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DB_NAME=lanyard\nDB_PASSWORD=s3cret\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "lanyard", cfg.DBName)
	assert.Equal(t, "s3cret", cfg.DBPassword)
}

func TestLoadMissingEnvFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.env"))
	require.NoError(t, err)
	require.NotNil(t, cfg)
}

func TestValidateServe(t *testing.T) {
	cfg := &Config{}
	require.Error(t, cfg.ValidateServe())

	cfg.JWTSecret = "secret"
	require.NoError(t, cfg.ValidateServe())
}

func TestStringMasksSecrets(t *testing.T) {
	cfg := &Config{
		Port:       "3000",
		JWTSecret:  "supersecret",
		DBPassword: "dbpass",
		DBUser:     "postgres",
		DBHost:     "localhost",
		DBPort:     "5432",
		DBName:     "lanyard",
	}
	s := cfg.String()
	assert.NotContains(t, s, "supersecret")
	assert.NotContains(t, s, "dbpass")
	assert.Contains(t, s, "lanyard")
}
