package registry

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"

	"github.com/speakeasy-api/lintcompose/ruleset"
	"github.com/speakeasy-api/lintcompose/sequencedmap"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var builtinCatalog []byte

type catalogRule struct {
	Description string         `yaml:"description,omitempty"`
	Schema      any            `yaml:"schema,omitempty"`
	Defs        map[string]any `yaml:"defs,omitempty"`
}

type catalogPlugin struct {
	Name  string                                 `yaml:"name"`
	Rules *sequencedmap.Map[string, catalogRule] `yaml:"rules,omitempty"`
}

type catalogPreset struct {
	Name    string           `yaml:"name"`
	Extends []string         `yaml:"extends,omitempty"`
	Plugins []string         `yaml:"plugins,omitempty"`
	Rules   *ruleset.RuleSet `yaml:"rules,omitempty"`
}

type catalogFile struct {
	Rules   *sequencedmap.Map[string, catalogRule] `yaml:"rules,omitempty"`
	Plugins []catalogPlugin                        `yaml:"plugins,omitempty"`
	Presets []catalogPreset                        `yaml:"presets,omitempty"`
}

// LoadCatalog reads a YAML catalog of core rules, plugins and presets into a new registry.
// Presets must be listed after the presets they extend.
func LoadCatalog(r io.Reader) (*Registry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var cat catalogFile
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	reg := New()
	if err := reg.addCatalog(&cat); err != nil {
		return nil, err
	}
	return reg, nil
}

func (r *Registry) addCatalog(cat *catalogFile) error {
	for id, rule := range cat.Rules.All() {
		if err := r.RegisterRule(rule.definition(id)); err != nil {
			return err
		}
	}

	for _, p := range cat.Plugins {
		plugin := &Plugin{Name: p.Name}
		for id, rule := range p.Rules.All() {
			plugin.Rules = append(plugin.Rules, rule.definition(id))
		}
		if err := r.RegisterPlugin(plugin); err != nil {
			return err
		}
	}

	for _, p := range cat.Presets {
		if err := r.RegisterPreset(&Preset{
			Name:    p.Name,
			Extends: p.Extends,
			Plugins: p.Plugins,
			Rules:   p.Rules,
		}); err != nil {
			return err
		}
	}

	return nil
}

func (c catalogRule) definition(id string) *RuleDefinition {
	return &RuleDefinition{
		ID:          id,
		Description: c.Description,
		Schema:      c.Schema,
		Defs:        c.Defs,
	}
}

// Builtin returns a new registry holding the embedded catalog. It panics if the embedded
// catalog is invalid, which can only happen if the binary was built from a broken tree.
func Builtin() *Registry {
	reg, err := LoadCatalog(bytes.NewReader(builtinCatalog))
	if err != nil {
		panic(fmt.Errorf("builtin catalog: %w", err))
	}
	return reg
}
