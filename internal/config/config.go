// Package config defines service configuration structures and loading hooks.
//
// Conventions:
//   - New(ctx) builds a Config with defaults; Load(ctx) layers file and env on top.
//   - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"context"
	"fmt"
	"strings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DataPath is the primary location of the player career stats file.
	DataPath string `koanf:"data_path"`

	// FallbackPaths are tried in order when DataPath does not exist.
	FallbackPaths []string `koanf:"fallback_paths"`

	// Delimiter overrides field separator detection. Empty detects by extension.
	Delimiter string `koanf:"delimiter"`

	// DecimalComma parses numbers written as "1.234,5".
	DecimalComma bool `koanf:"decimal_comma"`

	// MaxSimilar caps the number of similar players per query.
	MaxSimilar int `koanf:"max_similar"`

	// DefaultSimilar is used when a query does not name k.
	DefaultSimilar int `koanf:"default_similar"`

	// TopLimit is the default size of the top table in summaries.
	TopLimit int `koanf:"top_limit"`

	// MaxTopLimit caps GET /leaderboard?limit and /summary?limit.
	MaxTopLimit int `koanf:"max_top_limit"`

	// KeyStats lists raw columns shown next to each player, in order.
	KeyStats []string `koanf:"key_stats"`

	// KeyStatsLimit bounds how many key stat names are considered.
	KeyStatsLimit int `koanf:"key_stats_limit"`

	// MCPEnabled mounts the MCP tool endpoint.
	MCPEnabled bool `koanf:"mcp_enabled"`

	// MCPPath is where the MCP endpoint is mounted.
	MCPPath string `koanf:"mcp_path"`
}

// New creates a Config with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:       "info",
		Addr:           ":9080",
		DataPath:       "NBA_career_stats.csv",
		FallbackPaths:  []string{"data/NBA_career_stats.csv"},
		MaxSimilar:     5,
		DefaultSimilar: 3,
		TopLimit:       10,
		MaxTopLimit:    100,
		KeyStats:       []string{"pts", "reb", "ast", "fg_pct"},
		KeyStatsLimit:  3,
		MCPEnabled:     true,
		MCPPath:        "/mcp",
	}
}

// DataPaths returns the primary path followed by the fallbacks.
func (c *Config) DataPaths() []string {
	out := make([]string, 0, 1+len(c.FallbackPaths))
	out = append(out, c.DataPath)
	return append(out, c.FallbackPaths...)
}

// DelimiterRune returns the configured delimiter, or 0 to detect it.
func (c *Config) DelimiterRune() rune {
	switch c.Delimiter {
	case "":
		return 0
	case `\t`, "tab":
		return '\t'
	}
	return []rune(c.Delimiter)[0]
}

// Validate reports the first unusable setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.DataPath) == "":
		return fmt.Errorf("%w: data_path must not be empty", ErrInvalidConfig)
	case c.MaxSimilar < 1:
		return fmt.Errorf("%w: max_similar must be at least 1, got %d", ErrInvalidConfig, c.MaxSimilar)
	case c.DefaultSimilar < 1 || c.DefaultSimilar > c.MaxSimilar:
		return fmt.Errorf("%w: default_similar must be between 1 and max_similar (%d), got %d", ErrInvalidConfig, c.MaxSimilar, c.DefaultSimilar)
	case c.TopLimit < 1 || c.TopLimit > c.MaxTopLimit:
		return fmt.Errorf("%w: top_limit must be between 1 and max_top_limit (%d), got %d", ErrInvalidConfig, c.MaxTopLimit, c.TopLimit)
	case c.KeyStatsLimit < 0:
		return fmt.Errorf("%w: key_stats_limit must not be negative", ErrInvalidConfig)
	case len([]rune(c.Delimiter)) > 1 && c.Delimiter != `\t` && c.Delimiter != "tab":
		return fmt.Errorf("%w: delimiter must be a single character, got %q", ErrInvalidConfig, c.Delimiter)
	case c.MCPEnabled && !strings.HasPrefix(c.MCPPath, "/"):
		return fmt.Errorf("%w: mcp_path must start with /, got %q", ErrInvalidConfig, c.MCPPath)
	}
	return nil
}
