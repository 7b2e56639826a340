package commands

import (
	"context"
	"io"
	"runtime"

	"github.com/speakeasy-api/lintcompose/cmd/lintcompose/internal/logging"
	"github.com/speakeasy-api/lintcompose/composer"
	"github.com/speakeasy-api/lintcompose/format"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var rulesCmd = &cobra.Command{
	Use:   "rules <file>...",
	Short: "Print the effective rules for each file",
	Long: `Print the rules that apply to each file: the global rules with every matching
override applied in order.

Paths are taken relative to the working directory and printed relative to the
config's base directory, which is the directory holding the config unless
base_dir says otherwise. Files are not read, so they do not need to exist.

Examples:
  lintcompose rules src/index.ts src/index.test.ts
  lintcompose rules --enabled-only --format summary src/**/*.ts`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loaderFromFlags(cmd).Load(cmd.Context())
		if err != nil {
			return err
		}
		return runRules(cmd.Context(), cfg, cmd.OutOrStdout(), outputFormat, enabledOnly, relativeToBase(cfg, args))
	},
}

func init() {
	addConfigFlag(rulesCmd)
	addOutputFlags(rulesCmd)
}

func runRules(ctx context.Context, cfg *composer.Configuration, w io.Writer, formatterName string, onlyEnabled bool, paths []string) error {
	results, err := effectiveRules(ctx, cfg, onlyEnabled, paths)
	if err != nil {
		return err
	}
	return writeResults(w, formatterName, results)
}

// effectiveRules computes the rules for every path concurrently. Results keep the
// order of paths.
func effectiveRules(ctx context.Context, cfg *composer.Configuration, onlyEnabled bool, paths []string) ([]format.Result, error) {
	logger := logging.FromContext(ctx)
	results := make([]format.Result, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			rules := cfg.EffectiveRules(path)
			if onlyEnabled {
				rules = rules.Enabled()
			}
			logger.Debug("computed effective rules", "path", path, "overrides", len(cfg.MatchingOverrides(path)), "rules", rules.Len())

			results[i] = format.Result{Path: path, Rules: rules}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
