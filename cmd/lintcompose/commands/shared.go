package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/speakeasy-api/lintcompose/cmd/lintcompose/commands/cmdutil"
	"github.com/speakeasy-api/lintcompose/cmd/lintcompose/internal/logging"
	"github.com/speakeasy-api/lintcompose/composer"
	"github.com/speakeasy-api/lintcompose/config"
	"github.com/speakeasy-api/lintcompose/format"
	"github.com/speakeasy-api/lintcompose/registry"
	"github.com/spf13/cobra"
)

var (
	configFile   string
	outputFormat string
	enabledOnly  bool
)

func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to config file, or - to read YAML from stdin (default: lintcompose.{yaml,yml,json,toml} in the working directory)")
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text, json or summary")
	cmd.Flags().BoolVar(&enabledOnly, "enabled-only", false, "Omit rules that are turned off")
}

// ConfigLoader finds, reads and resolves a composition document.
type ConfigLoader struct {
	// Path is the document to load. Empty means discover it in Dir; "-" means read YAML from Stdin.
	Path string
	Dir  string

	// Catalog resolves presets and plugins. Defaults to the builtin catalog.
	Catalog *registry.Registry

	// Optional override for testing; when nil, os.Stdin is used.
	Stdin io.Reader
}

func (l *ConfigLoader) catalog() *registry.Registry {
	if l.Catalog == nil {
		l.Catalog = registry.Builtin()
	}
	return l.Catalog
}

func (l *ConfigLoader) stdin() io.Reader {
	if l.Stdin != nil {
		return l.Stdin
	}
	return os.Stdin
}

// Load returns the resolved configuration.
func (l *ConfigLoader) Load(ctx context.Context) (*composer.Configuration, error) {
	logger := logging.FromContext(ctx)
	start := time.Now()

	doc, source, err := l.document()
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded config", "source", source, "presets", len(doc.Extends), "plugins", len(doc.Plugins), "overrides", len(doc.Overrides))

	cat := l.catalog()
	cfg, err := doc.Resolve(cat)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s:\n%w", source, err)
	}

	for _, id := range cfg.Rules().IDs() {
		if _, ok := cat.Rule(id); !ok {
			logger.Debug("rule is not in the catalog, options are not checked", "rule", id)
		}
	}
	logger.Debug("resolved config", "rules", cfg.Rules().Len(), "elapsed", roundElapsed(time.Since(start)))

	return cfg, nil
}

func (l *ConfigLoader) document() (*config.Document, string, error) {
	if cmdutil.IsStdin(l.Path) {
		doc, err := config.Load(l.stdin(), config.FormatYAML)
		if err != nil {
			return nil, "", fmt.Errorf("stdin: %w", err)
		}
		if doc.BaseDir == "" {
			doc.BaseDir = l.Dir
		}
		return doc, "stdin", nil
	}

	path := l.Path
	if path == "" {
		dir := l.Dir
		if dir == "" {
			wd, err := os.Getwd()
			if err != nil {
				return nil, "", fmt.Errorf("failed to get working directory: %w", err)
			}
			dir = wd
		}

		found, err := config.Discover(dir)
		if err != nil {
			return nil, "", err
		}
		path = found
	}

	doc, err := config.LoadFile(path)
	if err != nil {
		return nil, "", err
	}
	return doc, path, nil
}

func newFormatter(name string) (format.Formatter, error) {
	if err := cmdutil.OneOf("format", name, "text", "json", "summary"); err != nil {
		return nil, err
	}

	switch name {
	case "json":
		return format.NewJSONFormatter(), nil
	case "summary":
		return format.NewSummaryFormatter(), nil
	default:
		return format.NewTextFormatter(), nil
	}
}

func writeResults(w io.Writer, formatterName string, results []format.Result) error {
	formatter, err := newFormatter(formatterName)
	if err != nil {
		return err
	}

	out, err := formatter.Format(results)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	_, err = io.WriteString(w, out)
	if err == nil && formatterName == "json" {
		_, err = io.WriteString(w, "\n")
	}
	return err
}

func roundElapsed(elapsed time.Duration) time.Duration {
	rounded := elapsed.Round(time.Millisecond)
	if rounded < time.Millisecond {
		rounded = time.Millisecond
	}
	return rounded
}

func loaderFromFlags(cmd *cobra.Command) *ConfigLoader {
	// a config read from stdin has no directory of its own, so patterns match from the working directory
	wd, _ := os.Getwd()

	return &ConfigLoader{
		Path:  configFile,
		Dir:   wd,
		Stdin: cmd.InOrStdin(),
	}
}

// relativeToBase rewrites paths given on the command line, which are relative to the
// working directory, so they are relative to the config's base directory. Paths outside
// the base directory are made absolute and get the global rules only.
func relativeToBase(cfg *composer.Configuration, paths []string) []string {
	base := cfg.BaseDir()
	out := make([]string, len(paths))

	for i, path := range paths {
		out[i] = path
		if base == "" {
			continue
		}

		abs, err := filepath.Abs(path)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(base, abs)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			out[i] = abs
			continue
		}
		out[i] = filepath.ToSlash(rel)
	}

	return out
}
