// Package cli implements the fieldschema command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/goliatone/go-fieldschema/pkg/orchestrator"
	"github.com/goliatone/go-fieldschema/pkg/schema"
	"github.com/goliatone/go-fieldschema/pkg/translation"
)

// app carries the state shared by every command of one invocation.
type app struct {
	v        *viper.Viper
	cfgFile  string
	out      io.Writer
	errOut   io.Writer
	settings Settings
	logger   zerolog.Logger
}

// Execute runs the command tree against the process arguments.
func Execute() error {
	return NewRootCommand(os.Stdout, os.Stderr).ExecuteContext(context.Background())
}

// NewRootCommand builds a fresh command tree writing to out and errOut.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	a := &app{v: viper.New(), out: out, errOut: errOut, logger: zerolog.Nop()}

	root := &cobra.Command{
		Use:   "fieldschema",
		Short: "Inspect schemas and normalize schema-shaped documents",
		Long: `fieldschema builds field schemas from JSON, YAML or TOML documents and
works with the values they describe: canonical defaults, normalization,
path lookups, OpenAPI import and interactive filling.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.fieldschema/config.yaml)")
	flags.String("log-level", "disabled", "log level (debug, info, warn, error, disabled)")
	flags.StringP("output", "o", "json", "output format (json, yaml, text)")
	flags.String("language", "", "language used for translations (defaults to the first of --languages)")
	flags.StringSlice("languages", []string{"en"}, "languages of the translation table")
	flags.String("translations", "", "translation table file ({key: {lang: text}})")
	for _, name := range []string{"log-level", "output", "language", "languages", "translations"} {
		_ = a.v.BindPFlag(name, flags.Lookup(name))
	}

	root.AddCommand(
		newDefaultsCmd(a),
		newNormalizeCmd(a),
		newPathsCmd(a),
		newFindCmd(a),
		newLayoutCmd(a),
		newImportOpenAPICmd(a),
		newFillCmd(a),
	)
	return root
}

func (a *app) init() error {
	_ = godotenv.Load()

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		a.v.AddConfigPath(filepath.Join(home, ".fieldschema"))
		a.v.AddConfigPath(".fieldschema")
		a.v.SetConfigType("yaml")
		a.v.SetConfigName("config")
	}
	a.v.SetEnvPrefix("FIELDSCHEMA")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		if a.cfgFile != "" {
			return fmt.Errorf("cli: read config %s: %w", a.cfgFile, err)
		}
	}

	settings, err := loadSettings(a.v)
	if err != nil {
		return err
	}
	a.settings = settings

	level := parseLevel(settings.LogLevel)
	if level != zerolog.Disabled {
		a.logger = zerolog.New(zerolog.ConsoleWriter{Out: a.errOut}).Level(level).With().Timestamp().Logger()
	}
	a.logger.Debug().Str("config", a.v.ConfigFileUsed()).Str("output", settings.Output).Msg("settings resolved")
	return nil
}

func (a *app) orchestrator() *orchestrator.Orchestrator {
	return orchestrator.New(orchestrator.WithLogger(a.logger))
}

// loadSchema publishes the schema at path under its file name.
func (a *app) loadSchema(ctx context.Context, orch *orchestrator.Orchestrator, path string) (*orchestrator.Published, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return orch.Load(ctx, name, schema.SourceFromFile(path))
}

func (a *app) translations() (*translation.Table, error) {
	table := translation.New(a.settings.Languages...)
	if a.settings.Translations == "" {
		return table, nil
	}
	file, err := os.Open(a.settings.Translations)
	if err != nil {
		return nil, fmt.Errorf("cli: open translations: %w", err)
	}
	defer file.Close()
	if err := table.Load(file); err != nil {
		return nil, err
	}
	return table, nil
}

func (a *app) print(data any) error {
	return printValue(a.out, a.settings.Output, data)
}
