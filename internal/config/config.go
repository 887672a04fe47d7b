// Package config loads songslide settings from defaults, an optional config
// file and SONGSLIDE_* environment variables.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/spf13/viper"

	apperrors "github.com/songslide/songslide/internal/errors"
)

// EnvPrefix is prepended to every environment override, e.g.
// SONGSLIDE_DATABASE_URL for database.url.
const EnvPrefix = "SONGSLIDE"

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds application configuration.
type Config struct {
	Database struct {
		Driver string
		Path   string
		URL    string
		Schema string
	}
	Server struct {
		Addr string
	}
	Search struct {
		Collation  string
		WeightsTTL time.Duration
		CacheTTL   time.Duration
	}
	Log struct {
		Level  string
		Format string
	}
}

// SetDefaults registers every known key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", "songs.db")
	v.SetDefault("database.url", "")
	v.SetDefault("database.schema", "public")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("search.collation", "und")
	v.SetDefault("search.weights_ttl", 60*time.Second)
	v.SetDefault("search.cache_ttl", 20*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads configuration into a Config. cfgFile may be empty, in which case
// only defaults and the environment apply.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	}

	var c Config
	c.Database.Driver = strings.ToLower(strings.TrimSpace(v.GetString("database.driver")))
	c.Database.Path = v.GetString("database.path")
	c.Database.URL = strings.TrimSpace(v.GetString("database.url"))
	c.Database.Schema = v.GetString("database.schema")
	c.Server.Addr = v.GetString("server.addr")
	c.Search.Collation = v.GetString("search.collation")
	c.Search.WeightsTTL = v.GetDuration("search.weights_ttl")
	c.Search.CacheTTL = v.GetDuration("search.cache_ttl")
	c.Log.Level = v.GetString("log.level")
	c.Log.Format = v.GetString("log.format")

	// Accept the common spellings.
	switch c.Database.Driver {
	case "sqlite3", "":
		c.Database.Driver = DriverSQLite
	case "postgresql", "pg":
		c.Database.Driver = DriverPostgres
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// placeholderMarkers are fragments that show up when a template connection
// string was pasted without being filled in.
var placeholderMarkers = []string{"<", ">", "your-", "your_", "[password]", "[project", "example.com"}

// Validate checks that the settings can be used to open a store.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if strings.TrimSpace(c.Database.Path) == "" {
			return &apperrors.ValidationError{Field: "database.path", Message: "database.path is required for sqlite"}
		}
	case DriverPostgres:
		if err := ValidateDatabaseURL(c.Database.URL); err != nil {
			return err
		}
	default:
		return &apperrors.ValidationError{
			Field:   "database.driver",
			Message: fmt.Sprintf("unknown database driver %q", c.Database.Driver),
			Hint:    "Use sqlite or postgres.",
		}
	}
	if c.Search.WeightsTTL < 0 || c.Search.CacheTTL < 0 {
		return &apperrors.ValidationError{Field: "search", Message: "search TTLs must not be negative"}
	}
	return nil
}

// ValidateDatabaseURL rejects empty URLs, unfilled template text and
// non-ASCII characters, which usually come from copying a URL out of a
// rendered document.
func ValidateDatabaseURL(url string) error {
	const hint = "Set SONGSLIDE_DATABASE_URL to a postgres:// connection string."
	if url == "" {
		return &apperrors.ValidationError{Field: "database.url", Message: "database.url is required for postgres", Hint: hint}
	}
	lower := strings.ToLower(url)
	for _, m := range placeholderMarkers {
		if strings.Contains(lower, m) {
			return &apperrors.ValidationError{
				Field:   "database.url",
				Message: "database.url still contains placeholder text",
				Hint:    hint,
			}
		}
	}
	for _, r := range url {
		if r > unicode.MaxASCII {
			return &apperrors.ValidationError{
				Field:   "database.url",
				Message: fmt.Sprintf("database.url contains non-ASCII character %q", r),
				Hint:    "Percent-encode the password or retype the URL.",
			}
		}
	}
	if !strings.HasPrefix(lower, "postgres://") && !strings.HasPrefix(lower, "postgresql://") {
		return &apperrors.ValidationError{Field: "database.url", Message: "database.url must start with postgres://", Hint: hint}
	}
	return nil
}

// NewLogger builds a slog logger writing to w in the configured format.
func NewLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, &apperrors.ValidationError{Field: "log.level", Message: fmt.Sprintf("unknown log level %q", level)}
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, &apperrors.ValidationError{Field: "log.format", Message: fmt.Sprintf("unknown log format %q", format), Hint: "Use text or json."}
	}
}
