package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/speakeasy-api/lintcompose/cmd/lintcompose/commands/cmdutil"
	"github.com/speakeasy-api/lintcompose/registry"
	"github.com/spf13/cobra"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the presets and plugins in the catalog",
	Long: `List every preset and plugin the builtin catalog knows about.

Presets show the presets they extend, the plugins they enable and how many
rules they set. Plugins show how many rules they provide.

Examples:
  lintcompose presets
  lintcompose presets --format json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cmdutil.OneOf("format", presetsFormat, "text", "json"); err != nil {
			return err
		}
		return runPresets(cmd.OutOrStdout(), registry.Builtin(), presetsFormat)
	},
}

var presetsFormat string

func init() {
	presetsCmd.Flags().StringVarP(&presetsFormat, "format", "f", "text", "Output format: text or json")
}

type presetInfo struct {
	Name    string   `json:"name"`
	Extends []string `json:"extends"`
	Plugins []string `json:"plugins"`
	Rules   int      `json:"rules"`
}

type pluginInfo struct {
	Name  string   `json:"name"`
	Rules []string `json:"rules"`
}

type catalogInfo struct {
	Presets []presetInfo `json:"presets"`
	Plugins []pluginInfo `json:"plugins"`
}

func describeCatalog(reg *registry.Registry) catalogInfo {
	var info catalogInfo

	for _, name := range reg.Presets() {
		p, _ := reg.Preset(name)
		info.Presets = append(info.Presets, presetInfo{
			Name:    p.Name,
			Extends: nonNil(p.Extends),
			Plugins: nonNil(p.Plugins),
			Rules:   p.Rules.Len(),
		})
	}

	for _, name := range reg.Plugins() {
		p, _ := reg.Plugin(name)
		rules := make([]string, 0, len(p.Rules))
		for _, def := range p.Rules {
			rules = append(rules, def.ID)
		}
		info.Plugins = append(info.Plugins, pluginInfo{Name: p.Name, Rules: rules})
	}

	return info
}

func runPresets(w io.Writer, reg *registry.Registry, formatterName string) error {
	info := describeCatalog(reg)

	if formatterName == "json" {
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "PRESET\tEXTENDS\tPLUGINS\tRULES")
	for _, p := range info.Presets {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", p.Name, joinOrDash(p.Extends), joinOrDash(p.Plugins), p.Rules)
	}

	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "PLUGIN\tRULES")
	for _, p := range info.Plugins {
		fmt.Fprintf(tw, "%s\t%d\n", p.Name, len(p.Rules))
	}

	return tw.Flush()
}

func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
