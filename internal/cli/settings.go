package cli

import (
	"fmt"
	"strings"

	"github.com/imdario/mergo"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Settings is the resolved CLI configuration: flags, then FIELDSCHEMA_*
// environment variables, then the config file, then defaults.
type Settings struct {
	LogLevel     string   `mapstructure:"log-level"`
	Output       string   `mapstructure:"output"`
	Language     string   `mapstructure:"language"`
	Languages    []string `mapstructure:"languages"`
	Translations string   `mapstructure:"translations"`
}

func defaultSettings() Settings {
	return Settings{
		LogLevel:  "disabled",
		Output:    "json",
		Languages: []string{"en"},
	}
}

func loadSettings(v *viper.Viper) (Settings, error) {
	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return Settings{}, fmt.Errorf("cli: read settings: %w", err)
	}
	if err := mergo.Merge(&settings, defaultSettings()); err != nil {
		return Settings{}, fmt.Errorf("cli: merge defaults: %w", err)
	}

	settings.Output = strings.ToLower(strings.TrimSpace(settings.Output))
	switch settings.Output {
	case "json", "yaml", "text":
	default:
		return Settings{}, fmt.Errorf("cli: unsupported output format %q", settings.Output)
	}
	if settings.Language == "" {
		settings.Language = settings.Languages[0]
	}
	return settings, nil
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.Disabled
	}
}
