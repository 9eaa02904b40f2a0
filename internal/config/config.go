// Package config loads flashwise settings from a YAML file, FLASHWISE_*
// environment variables and command-line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const envPrefix = "FLASHWISE_"

// Config holds the application settings.
type Config struct {
	DB        string `koanf:"db" validate:"required"`
	Listen    string `koanf:"listen" validate:"required,hostname_port"`
	Repos     string `koanf:"repos" validate:"required"`
	LogLevel  string `koanf:"log-level" validate:"oneof=debug info warn error"`
	LogFormat string `koanf:"log-format" validate:"oneof=text json"`

	// One-shot actions; when none is set the HTTP server runs.
	AddSource string `koanf:"add-source"`
	Deck      string `koanf:"deck"`
	Sync      bool   `koanf:"sync"`
}

// Load parses args (without the program name) and builds the configuration.
func Load(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("flashwise", pflag.ContinueOnError)
	fs.String("config", "", "Path to a YAML config file")
	fs.String("db", "flashwise.db", "Path to the SQLite database file")
	fs.String("listen", "localhost:8080", "Address for the HTTP server")
	fs.String("repos", "repos", "Directory for git source checkouts")
	fs.String("log-level", "info", "Log level: debug, info, warn or error")
	fs.String("log-format", "text", "Log format: text or json")
	fs.String("add-source", "", "Import a deck from a local directory or git URL, then exit")
	fs.String("deck", "", "Name for the deck created by --add-source")
	fs.Bool("sync", false, "Sync all sourced decks, then exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if path, _ := fs.GetString("config"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// FLASHWISE_LOG_LEVEL -> log-level
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", "-")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	// Flag defaults only fill keys no earlier source set.
	if err := k.Load(posflag.Provider(fs, ".", k), nil); err != nil {
		return nil, fmt.Errorf("failed to load flags: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Logger builds the slog logger described by the config.
func (c *Config) Logger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// IsHelp reports whether err came from -h/--help.
func IsHelp(err error) bool {
	return errors.Is(err, pflag.ErrHelp)
}
