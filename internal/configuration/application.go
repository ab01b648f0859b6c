package configuration

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/desertwitch/krkio/internal/growbuf"
)

const (
	// KeyChunkSize is the chunk size of the read buffers, in bytes.
	KeyChunkSize = "KRKIO_CHUNK_SIZE"

	// KeyLogLevel is the log level (debug, info, warn or error).
	KeyLogLevel = "KRKIO_LOG_LEVEL"

	// KeyEnvFiles are the comma-separated configuration files imported into
	// the process environment at startup.
	KeyEnvFiles = "KRKIO_ENV_FILES"
)

// AppConfiguration is the principal structure holding the application
// configuration.
type AppConfiguration struct {
	ChunkSize int
	LogLevel  slog.Level
	EnvFiles  []string
}

// NewAppConfiguration returns a pointer to a new [AppConfiguration] holding
// the defaults.
func NewAppConfiguration() *AppConfiguration {
	return &AppConfiguration{
		ChunkSize: growbuf.ChunkSize,
		LogLevel:  slog.LevelInfo,
	}
}

// Load reads the given configuration files into a new [AppConfiguration]. No
// files yield the defaults.
func (c *Handler) Load(filenames ...string) (*AppConfiguration, error) {
	config := NewAppConfiguration()

	if len(filenames) == 0 {
		return config, nil
	}

	envMap, err := c.ReadGeneric(filenames...)
	if err != nil {
		return nil, fmt.Errorf("(config-load) %w", err)
	}

	if err := c.Apply(config, envMap); err != nil {
		return nil, fmt.Errorf("(config-load) %w", err)
	}

	return config, nil
}

// Apply sets all keys present in envMap on the configuration, so that the
// process environment can override the configuration files.
func (c *Handler) Apply(config *AppConfiguration, envMap map[string]string) error {
	if c.MapKeyToString(envMap, KeyChunkSize) != "" {
		size := c.MapKeyToInt(envMap, KeyChunkSize)
		if size <= 0 {
			return fmt.Errorf("(config-apply) %s=%q: %w", KeyChunkSize, envMap[KeyChunkSize], ErrInvalidValue)
		}
		config.ChunkSize = size
	}

	if level := c.MapKeyToString(envMap, KeyLogLevel); level != "" {
		if err := config.LogLevel.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
			return fmt.Errorf("(config-apply) %s=%q: %w", KeyLogLevel, level, ErrInvalidValue)
		}
	}

	if _, exists := envMap[KeyEnvFiles]; exists {
		config.EnvFiles = c.MapKeyToList(envMap, KeyEnvFiles)
	}

	return nil
}
