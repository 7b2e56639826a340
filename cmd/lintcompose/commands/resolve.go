package commands

import (
	"context"
	"io"

	"github.com/speakeasy-api/lintcompose/format"
	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Print the resolved global rule set",
	Long: `Resolve the composition document and print the rules that apply to every file.

Presets are applied in order, each after the presets it extends, followed by the
document's global rules. File scoped overrides are not applied; use 'rules' to
see the rules for specific files.

Examples:
  lintcompose resolve
  lintcompose resolve --config lintcompose.toml --format json
  cat lintcompose.yaml | lintcompose resolve --config - --enabled-only`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runResolve(cmd.Context(), loaderFromFlags(cmd), cmd.OutOrStdout(), outputFormat, enabledOnly)
	},
}

func init() {
	addConfigFlag(resolveCmd)
	addOutputFlags(resolveCmd)
}

func runResolve(ctx context.Context, loader *ConfigLoader, w io.Writer, formatterName string, onlyEnabled bool) error {
	cfg, err := loader.Load(ctx)
	if err != nil {
		return err
	}

	rules := cfg.Rules()
	if onlyEnabled {
		rules = rules.Enabled()
	}

	return writeResults(w, formatterName, []format.Result{{Rules: rules}})
}
