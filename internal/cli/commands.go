package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-fieldschema/internal/prompt"
	"github.com/goliatone/go-fieldschema/pkg/model"
	"github.com/goliatone/go-fieldschema/pkg/openapi"
	"github.com/goliatone/go-fieldschema/pkg/schema"
	"github.com/goliatone/go-fieldschema/pkg/traverse"
)

func newDefaultsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "defaults <schema>",
		Short: "Print the canonical default value of a schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch := a.orchestrator()
			pub, err := a.loadSchema(cmd.Context(), orch, args[0])
			if err != nil {
				return err
			}
			value, err := orch.Defaults(pub.Name)
			if err != nil {
				return err
			}
			return a.print(value)
		},
	}
}

func newNormalizeCmd(a *app) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "normalize <schema> <value>",
		Short: "Coerce a JSON or YAML document into the shape of a schema",
		Long: `Normalize reads a value document and prints it reshaped by the schema:
disabled fields are dropped, missing fields get their defaults and values of
the wrong shape are replaced. Diagnostics are written to stderr.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch := a.orchestrator()
			pub, err := a.loadSchema(cmd.Context(), orch, args[0])
			if err != nil {
				return err
			}
			value, err := readValue(args[1])
			if err != nil {
				return err
			}
			out, diags, err := orch.Normalize(pub.Name, value)
			if err != nil {
				return err
			}
			for _, diag := range diags {
				fmt.Fprintln(a.errOut, diag.String())
			}
			if err := a.print(out); err != nil {
				return err
			}
			if strict && len(diags) > 0 {
				return fmt.Errorf("normalize: %d diagnostics", len(diags))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "exit with an error when any diagnostic was produced")
	return cmd
}

type pathEntry struct {
	Path  string `json:"path" yaml:"path"`
	Kind  string `json:"kind" yaml:"kind"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
	I18n  bool   `json:"i18n,omitempty" yaml:"i18n,omitempty"`
}

func newPathsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "paths <schema>",
		Short: "List every node of a schema with its dotted path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, err := a.loadSchema(cmd.Context(), a.orchestrator(), args[0])
			if err != nil {
				return err
			}
			var entries []pathEntry
			traverse.Iter(pub.Root, func(node *model.Node, path, label string) {
				entries = append(entries, pathEntry{Path: path, Kind: string(node.Kind()), Label: label, I18n: node.NeedI18n()})
			})
			if a.settings.Output != "text" {
				return a.print(entries)
			}
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				path := entry.Path
				if path == "" {
					path = "(root)"
				}
				rows = append(rows, []string{path, entry.Kind, entry.Label})
			}
			return printTable(a.out, []string{"PATH", "KIND", "LABEL"}, rows)
		},
	}
}

type layoutCell struct {
	ID    string `json:"id" yaml:"id"`
	Kind  string `json:"kind" yaml:"kind"`
	Span  int    `json:"span" yaml:"span"`
	Start int    `json:"start" yaml:"start"`
}

func newLayoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "layout <schema> [path]",
		Short: "Show how the fields of an object are placed on the 12-column grid",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, err := a.loadSchema(cmd.Context(), a.orchestrator(), args[0])
			if err != nil {
				return err
			}
			node := pub.Root
			if len(args) == 2 {
				found, ok := traverse.FindChild(pub.Root, args[1])
				if !ok {
					return fmt.Errorf("layout: no schema at %q", args[1])
				}
				node = found
			}
			if node.Kind() != model.KindObject {
				return fmt.Errorf("layout: %s is not an object", node.Kind())
			}

			var rows [][]layoutCell
			for _, row := range node.Rows() {
				cells := make([]layoutCell, 0, len(row))
				for _, cell := range row {
					cells = append(cells, layoutCell{ID: cell.ID, Kind: string(cell.Node.Kind()), Span: cell.Span, Start: cell.Start})
				}
				rows = append(rows, cells)
			}
			if a.settings.Output != "text" {
				return a.print(rows)
			}
			var table [][]string
			for i, row := range rows {
				for _, cell := range row {
					table = append(table, []string{strconv.Itoa(i + 1), cell.ID, cell.Kind, strconv.Itoa(cell.Start), strconv.Itoa(cell.Span)})
				}
			}
			return printTable(a.out, []string{"ROW", "FIELD", "KIND", "START", "SPAN"}, table)
		},
	}
}

func newFindCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "find <schema> <path>",
		Short: "Show the schema node describing a value path",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, err := a.loadSchema(cmd.Context(), a.orchestrator(), args[0])
			if err != nil {
				return err
			}
			node, ok := traverse.FindChild(pub.Root, args[1])
			if !ok {
				return fmt.Errorf("find: no schema at %q", args[1])
			}
			config := node.Config()
			delete(config, model.KeyFieldID)
			return a.print(map[string]any{"kind": string(node.Kind()), "config": map[string]any(config)})
		},
	}
}

func newImportOpenAPICmd(a *app) *cobra.Command {
	var validate bool
	cmd := &cobra.Command{
		Use:   "import-openapi <document> [component]",
		Short: "Convert an OpenAPI component schema into a schema document",
		Long: `Without a component name the available components are listed.`,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("import-openapi: %w", err)
			}
			if len(args) == 1 {
				names, err := openapi.Components(cmd.Context(), raw)
				if err != nil {
					return err
				}
				return a.print(names)
			}
			def, err := openapi.ImportComponent(cmd.Context(), raw, args[1], openapi.WithValidation(validate))
			if err != nil {
				return err
			}
			format := schema.FormatJSON
			if a.settings.Output == "yaml" {
				format = schema.FormatYAML
			}
			encoded, err := schema.EncodeDefinition(def, format)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.out, strings.TrimRight(string(encoded), "\n"))
			return err
		},
	}
	cmd.Flags().BoolVar(&validate, "validate", false, "validate the OpenAPI document before importing")
	return cmd
}

func newFillCmd(a *app) *cobra.Command {
	var translationsOut string
	cmd := &cobra.Command{
		Use:   "fill <schema>",
		Short: "Interactively fill a value for a schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch := a.orchestrator()
			pub, err := a.loadSchema(cmd.Context(), orch, args[0])
			if err != nil {
				return err
			}
			table, err := a.translations()
			if err != nil {
				return err
			}
			filler := prompt.NewFiller(prompt.NewSurveyDriver(a.errOut),
				prompt.WithIDSource(orch.IDs()),
				prompt.WithTranslations(table, a.settings.Language),
				prompt.WithLogger(a.logger),
			)
			value, err := filler.Fill(cmd.Context(), pub.Root)
			if err != nil {
				return err
			}
			if err := a.print(value); err != nil {
				return err
			}
			if translationsOut == "" {
				return nil
			}
			file, err := os.Create(translationsOut)
			if err != nil {
				return fmt.Errorf("fill: %w", err)
			}
			defer file.Close()
			return table.WriteJSON(file)
		},
	}
	cmd.Flags().StringVar(&translationsOut, "translations-out", "", "write the translation table to this file")
	return cmd
}

// readValue decodes a JSON or YAML value document into the engine's value
// model. "-" reads stdin.
func readValue(path string) (any, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read value: %w", err)
	}

	var value any
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		err = json.Unmarshal(trimmed, &value)
	} else {
		err = yaml.Unmarshal(raw, &value)
	}
	if err != nil {
		return nil, fmt.Errorf("decode value %s: %w", path, err)
	}
	return schema.NormalizeValue(value), nil
}
