package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/speakeasy-api/lintcompose/cmd/lintcompose/commands/cmdutil"
	"github.com/speakeasy-api/lintcompose/composer"
	"github.com/spf13/cobra"
)

var explainCmd = &cobra.Command{
	Use:   "explain <file> <rule>",
	Short: "Show which presets and blocks set a rule for a file",
	Long: `List every place that set a rule for a file, oldest first. The last entry is
the effective setting; every earlier entry is shadowed by it.

Examples:
  lintcompose explain src/index.ts semi
  lintcompose explain src/index.test.ts id-length --format json`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cmdutil.OneOf("format", explainFormat, "text", "json"); err != nil {
			return err
		}

		loader := loaderFromFlags(cmd)
		cfg, err := loader.Load(cmd.Context())
		if err != nil {
			return err
		}

		description := ""
		if def, ok := loader.catalog().Rule(args[1]); ok {
			description = def.Description
		}

		return runExplain(cmd.OutOrStdout(), cfg, explainFormat, relativeToBase(cfg, args[:1])[0], args[1], description)
	},
}

var explainFormat string

func init() {
	addConfigFlag(explainCmd)
	explainCmd.Flags().StringVarP(&explainFormat, "format", "f", "text", "Output format: text or json")
}

type explainLayer struct {
	Source  string `json:"source"`
	Setting any    `json:"setting"`
}

type explainOutput struct {
	Path        string         `json:"path"`
	Rule        string         `json:"rule"`
	Description string         `json:"description,omitempty"`
	Layers      []explainLayer `json:"layers"`
	Effective   any            `json:"effective"`
}

func runExplain(w io.Writer, cfg *composer.Configuration, formatterName, path, rule, description string) error {
	out := explainOutput{
		Path:        path,
		Rule:        rule,
		Description: description,
		Layers:      []explainLayer{},
	}
	for _, layer := range cfg.Explain(path, rule) {
		out.Layers = append(out.Layers, explainLayer{Source: layer.Source, Setting: layer.Setting.Value()})
	}
	if n := len(out.Layers); n > 0 {
		out.Effective = out.Layers[n-1].Setting
	}

	if formatterName == "json" {
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s for %s\n", rule, path)
	if description != "" {
		fmt.Fprintf(&sb, "%s\n", description)
	}

	if len(out.Layers) == 0 {
		sb.WriteString("not configured\n")
		_, err := io.WriteString(w, sb.String())
		return err
	}

	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	for i, layer := range out.Layers {
		marker := " "
		if i == len(out.Layers)-1 {
			marker = "*"
		}
		setting, err := json.Marshal(layer.Setting)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s %s\t%s\n", marker, layer.Source, setting)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
