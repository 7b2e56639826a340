package main

import (
	"context"
	"runtime/debug"

	"github.com/speakeasy-api/lintcompose/cmd/lintcompose/commands"
	"github.com/speakeasy-api/lintcompose/cmd/lintcompose/commands/cmdutil"
	"github.com/speakeasy-api/lintcompose/cmd/lintcompose/internal/logging"
	"github.com/spf13/cobra"
)

// Set with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = ""
)

// buildVersion prefers ldflags, then the module version and VCS revision recorded by go install.
func buildVersion() (string, string) {
	info, ok := debug.ReadBuildInfo()
	if version != "dev" || !ok {
		return version, commit
	}

	v, c := version, commit
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		v = info.Main.Version
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" && c == "" {
			c = setting.Value[:min(7, len(setting.Value))]
		}
	}
	return v, c
}

var (
	verbose   bool
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "lintcompose",
	Short: "Compose lint rule configuration from presets, plugins and overrides",
	Long: `Compose lint rule configuration from presets, plugins and file scoped overrides.

A composition document names the presets to extend, the plugins to enable, a
table of global rules and a list of overrides that apply to matching files.
Later entries win: presets in order, then global rules, then each matching
override. Options are replaced, never merged.

Example document (lintcompose.yaml):

  extends: [eslint:recommended, prettier]
  plugins: [unicorn]
  rules:
    quotes: [error, single]
  overrides:
    - files: ["**/*.test.ts"]
      rules:
        unicorn/no-null: "off"`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := cmdutil.OneOf("log-format", logFormat, "text", "json"); err != nil {
			return err
		}

		cfg := logging.DefaultConfig()
		cfg.Output = cmd.ErrOrStderr()
		cfg.JSON = logFormat == "json"
		if verbose {
			cfg.Level = logging.DebugLevel
		}

		cmd.SetContext(logging.WithLogger(cmd.Context(), logging.New(cfg)))
		return nil
	},
}

func init() {
	v, c := buildVersion()
	rootCmd.Version = v
	if c != "" {
		rootCmd.SetVersionTemplate("{{.Version}}\nBuild: " + c + "\n")
	}

	commands.Apply(rootCmd)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		cmdutil.Die(err)
	}
}
