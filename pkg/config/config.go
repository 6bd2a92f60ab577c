// Package config loads engine configuration from the environment and
// named validation profiles from YAML files. The engine core never reads
// configuration itself; the embedding application loads a Config and
// passes the resulting options in.
package config

import (
	"os"
	"strconv"
)

// DefaultMaxFileSize is the accepted input ceiling in bytes (10 MB).
const DefaultMaxFileSize = 10 << 20

// Config holds process-level configuration.
type Config struct {
	LogLevel      string
	ProfilesDir   string
	MaxFileSize   int64
	EnablePillar2 bool
}

// Load loads configuration from environment variables.
func Load() *Config {
	logLevel := os.Getenv("CBC_LOG_LEVEL")
	if logLevel == "" {
		logLevel = "INFO"
	}

	profilesDir := os.Getenv("CBC_PROFILES_DIR")
	if profilesDir == "" {
		profilesDir = "profiles"
	}

	maxFileSize := int64(DefaultMaxFileSize)
	if v := os.Getenv("CBC_MAX_FILE_SIZE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			maxFileSize = n
		}
	}

	enablePillar2 := os.Getenv("CBC_DISABLE_PILLAR2") != "true"

	return &Config{
		LogLevel:      logLevel,
		ProfilesDir:   profilesDir,
		MaxFileSize:   maxFileSize,
		EnablePillar2: enablePillar2,
	}
}
