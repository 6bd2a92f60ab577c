package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CBC_LOG_LEVEL", "")
	t.Setenv("CBC_PROFILES_DIR", "")
	t.Setenv("CBC_MAX_FILE_SIZE", "")
	t.Setenv("CBC_DISABLE_PILLAR2", "")

	cfg := Load()
	require.Equal(t, "INFO", cfg.LogLevel)
	require.Equal(t, "profiles", cfg.ProfilesDir)
	require.Equal(t, int64(DefaultMaxFileSize), cfg.MaxFileSize)
	require.True(t, cfg.EnablePillar2)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("CBC_LOG_LEVEL", "DEBUG")
	t.Setenv("CBC_PROFILES_DIR", "/etc/cbc/profiles")
	t.Setenv("CBC_MAX_FILE_SIZE", "1048576")
	t.Setenv("CBC_DISABLE_PILLAR2", "true")

	cfg := Load()
	require.Equal(t, "DEBUG", cfg.LogLevel)
	require.Equal(t, "/etc/cbc/profiles", cfg.ProfilesDir)
	require.Equal(t, int64(1048576), cfg.MaxFileSize)
	require.False(t, cfg.EnablePillar2)
}

func TestLoadIgnoresBadMaxFileSize(t *testing.T) {
	t.Setenv("CBC_MAX_FILE_SIZE", "not-a-number")
	require.Equal(t, int64(DefaultMaxFileSize), Load().MaxFileSize)

	t.Setenv("CBC_MAX_FILE_SIZE", "-1")
	require.Equal(t, int64(DefaultMaxFileSize), Load().MaxFileSize)
}
