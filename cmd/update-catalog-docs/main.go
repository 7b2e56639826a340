package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/speakeasy-api/lintcompose/registry"
)

const (
	readmeFile = "registry/README.md"

	rulesStartMarker   = "<!-- START CATALOG RULES -->"
	rulesEndMarker     = "<!-- END CATALOG RULES -->"
	presetsStartMarker = "<!-- START CATALOG PRESETS -->"
	presetsEndMarker   = "<!-- END CATALOG PRESETS -->"
)

func main() {
	if err := updateCatalogDocs(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func updateCatalogDocs() error {
	fmt.Println("🔄 Updating catalog tables in README...")

	data, err := os.ReadFile(readmeFile)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", readmeFile, err)
	}

	reg := registry.Builtin()

	content, err := replaceBetween(string(data), rulesStartMarker, rulesEndMarker, generateRulesTable(reg))
	if err != nil {
		return err
	}
	content, err = replaceBetween(content, presetsStartMarker, presetsEndMarker, generatePresetsTable(reg))
	if err != nil {
		return err
	}

	if err := os.WriteFile(readmeFile, []byte(content), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", readmeFile, err)
	}

	fmt.Printf("✅ Updated %s\n", readmeFile)
	return nil
}

func generateRulesTable(reg *registry.Registry) string {
	var content strings.Builder
	content.WriteString("| Rule | Plugin | Options | Description |\n")
	content.WriteString("|------|--------|---------|-------------|\n")

	for _, def := range reg.Rules() {
		plugin := def.Plugin
		if plugin == "" {
			plugin = "core"
		}
		options := "-"
		if def.HasSchema() {
			options = "checked"
		}
		desc := strings.ReplaceAll(def.Description, "|", "\\|")
		desc = strings.ReplaceAll(desc, "\n", " ")
		fmt.Fprintf(&content, "| <a name=\"%s\"></a>`%s` | %s | %s | %s |\n", def.ID, def.ID, plugin, options, desc)
	}

	return content.String()
}

func generatePresetsTable(reg *registry.Registry) string {
	var content strings.Builder
	content.WriteString("| Preset | Extends | Plugins | Rules |\n")
	content.WriteString("|--------|---------|---------|-------|\n")

	for _, name := range reg.Presets() {
		preset, _ := reg.Preset(name)
		fmt.Fprintf(&content, "| `%s` | %s | %s | %d |\n", name, codeList(preset.Extends), codeList(preset.Plugins), preset.Rules.Len())
	}

	return content.String()
}

func codeList(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = "`" + item + "`"
	}
	return strings.Join(quoted, ", ")
}

func replaceBetween(content, startMarker, endMarker, replacement string) (string, error) {
	startIdx := strings.Index(content, startMarker)
	endIdx := strings.Index(content, endMarker)
	if startIdx == -1 || endIdx == -1 || endIdx < startIdx {
		return "", fmt.Errorf("could not find %s and %s markers in %s", startMarker, endMarker, readmeFile)
	}

	before := content[:startIdx+len(startMarker)]
	after := content[endIdx:]

	return before + "\n\n" + replacement + "\n" + after, nil
}
