// Package config loads brewdb settings from a YAML file and BREWDB_*
// environment variables, and validates them against a CUE schema.
//
// Precedence, lowest first: built-in defaults, the config file, the
// environment. Every attribute remembers which of these supplied it.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/brewdb/internal/database"
)

const (
	// DefaultFileName is read from the working directory when no path is
	// given and BREWDB_CONFIG is unset.
	DefaultFileName = "brewdb.yml"

	SourceDefault     = "default"
	SourceFile        = "file"
	SourceEnvironment = "environment"
)

// Config holds every brewdb setting.
type Config struct {
	// Engine is "sqlite" or "postgres".
	Engine string `yaml:"engine" json:"engine"`
	// Path is the SQLite database file.
	Path string `yaml:"path" json:"path"`
	// URL is the PostgreSQL connection string.
	URL string `yaml:"url" json:"url"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`
	// AutoMigrate upgrades older databases when they are opened.
	AutoMigrate bool `yaml:"auto_migrate" json:"auto_migrate"`

	sources  map[string]string
	filePath string
}

// Attribute is one setting with the source that supplied it.
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

func newDefault() *Config {
	c := &Config{
		Engine:      string(database.EngineSQLite),
		Path:        "brewdb.sqlite",
		LogLevel:    "info",
		AutoMigrate: true,
		sources:     make(map[string]string),
	}
	for _, name := range attributeNames() {
		c.sources[name] = SourceDefault
	}
	return c
}

func attributeNames() []string {
	return []string{"engine", "path", "url", "log_level", "auto_migrate"}
}

// Load reads the config file at path, overlays the environment and
// validates the result. An empty path falls back to BREWDB_CONFIG and then
// DefaultFileName; only an explicitly named file must exist.
func Load(path string) (*Config, error) {
	c := newDefault()

	explicit := path != ""
	if !explicit {
		path = os.Getenv("BREWDB_CONFIG")
		explicit = path != ""
	}
	if path == "" {
		path = DefaultFileName
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		c.filePath = path
		if err := c.applyFile(data); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		slog.Debug("no config file, using defaults", "path", path)
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	if err := Validate(c); err != nil {
		return nil, err
	}
	return c, nil
}

// fileConfig uses pointers so a value written in the file, even a zero
// one, can be told apart from an absent key.
type fileConfig struct {
	Engine      *string `yaml:"engine"`
	Path        *string `yaml:"path"`
	URL         *string `yaml:"url"`
	LogLevel    *string `yaml:"log_level"`
	AutoMigrate *bool   `yaml:"auto_migrate"`
}

func (c *Config) applyFile(data []byte) error {
	var f fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	if f.Engine != nil {
		c.Engine = *f.Engine
		c.sources["engine"] = SourceFile
	}
	if f.Path != nil {
		c.Path = *f.Path
		c.sources["path"] = SourceFile
	}
	if f.URL != nil {
		c.URL = *f.URL
		c.sources["url"] = SourceFile
	}
	if f.LogLevel != nil {
		c.LogLevel = *f.LogLevel
		c.sources["log_level"] = SourceFile
	}
	if f.AutoMigrate != nil {
		c.AutoMigrate = *f.AutoMigrate
		c.sources["auto_migrate"] = SourceFile
	}
	return nil
}

func (c *Config) applyEnv() error {
	if val := os.Getenv("BREWDB_ENGINE"); val != "" {
		c.Engine = val
		c.sources["engine"] = SourceEnvironment
	}
	if val := os.Getenv("BREWDB_PATH"); val != "" {
		c.Path = val
		c.sources["path"] = SourceEnvironment
	}
	if val := os.Getenv("BREWDB_URL"); val != "" {
		c.URL = val
		c.sources["url"] = SourceEnvironment
	}
	if val := os.Getenv("BREWDB_LOG_LEVEL"); val != "" {
		c.LogLevel = strings.ToLower(val)
		c.sources["log_level"] = SourceEnvironment
	}
	if val := os.Getenv("BREWDB_AUTO_MIGRATE"); val != "" {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("BREWDB_AUTO_MIGRATE: %w", err)
		}
		c.AutoMigrate = b
		c.sources["auto_migrate"] = SourceEnvironment
	}
	return nil
}

// FilePath is the config file that was read, or "" if none was.
func (c *Config) FilePath() string { return c.filePath }

// Source reports where an attribute's value came from.
func (c *Config) Source(name string) string { return c.sources[name] }

// Database returns the connection settings for database.Open.
func (c *Config) Database() database.Config {
	return database.Config{
		Engine: database.Engine(c.Engine),
		Path:   c.Path,
		URL:    c.URL,
	}
}

// Level is the slog level named by LogLevel.
func (c *Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// Attributes lists every setting in name order. Passwords in URL are
// masked.
func (c *Config) Attributes() []Attribute {
	values := map[string]string{
		"engine":       c.Engine,
		"path":         c.Path,
		"url":          redact(c.URL),
		"log_level":    c.LogLevel,
		"auto_migrate": strconv.FormatBool(c.AutoMigrate),
	}
	attrs := make([]Attribute, 0, len(values))
	for _, name := range attributeNames() {
		attrs = append(attrs, Attribute{Name: name, Value: values[name], Source: c.sources[name]})
	}
	sort.Slice(attrs, func(i, j int) bool { return attrs[i].Name < attrs[j].Name })
	return attrs
}

// FormatText renders Attributes as aligned lines.
func (c *Config) FormatText() string {
	var sb strings.Builder
	for _, a := range c.Attributes() {
		fmt.Fprintf(&sb, "%-14s %-28s (%s)\n", a.Name+":", a.Value, a.Source)
	}
	return sb.String()
}

// FormatJSON renders Attributes as a JSON array.
func (c *Config) FormatJSON() (string, error) {
	data, err := json.MarshalIndent(c.Attributes(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}

func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}
