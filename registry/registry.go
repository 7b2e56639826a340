// Package registry holds the presets and plugins that configurations are composed from.
package registry

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/speakeasy-api/lintcompose/ruleset"
)

// RuleDefinition describes a rule that a plugin (or the core) provides.
type RuleDefinition struct {
	// ID is the fully qualified rule identifier, e.g. "quotes" or "@typescript-eslint/quotes".
	ID string

	// Plugin is the normalized name of the providing plugin, empty for core rules.
	Plugin string

	Description string

	// Schema is the JSON Schema for the options that follow the severity. A list holds
	// one schema per option position; any other value is applied to the whole options list.
	Schema any

	// Defs are shared definitions referenced from Schema as "#/$defs/<name>".
	Defs map[string]any

	validator *optionsValidator
}

// Plugin is a named provider of rules.
type Plugin struct {
	Name  string
	Rules []*RuleDefinition
}

// Preset is a named bundle of rule settings.
type Preset struct {
	Name string

	// Extends lists presets applied before this preset's own rules.
	Extends []string

	// Plugins are enabled whenever the preset is used.
	Plugins []string

	Rules *ruleset.RuleSet
}

// Registry holds registered plugins, rules and presets. It is not safe for concurrent
// registration but may be read concurrently once populated.
type Registry struct {
	plugins map[string]*Plugin
	rules   map[string]*RuleDefinition
	presets map[string]*Preset
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		plugins: make(map[string]*Plugin),
		rules:   make(map[string]*RuleDefinition),
		presets: make(map[string]*Preset),
	}
}

// RegisterRule registers a core rule.
func (r *Registry) RegisterRule(def *RuleDefinition) error {
	if def.ID == "" {
		return fmt.Errorf("rule definition missing id")
	}
	if _, ok := PluginForRule(def.ID); ok {
		return fmt.Errorf("core rule %q must not be plugin scoped", def.ID)
	}
	return r.addRule(def)
}

func (r *Registry) addRule(def *RuleDefinition) error {
	if _, exists := r.rules[def.ID]; exists {
		return fmt.Errorf("rule %q already registered", def.ID)
	}

	if def.Schema != nil {
		v, err := compileOptionsSchema(def.Schema, def.Defs)
		if err != nil {
			return fmt.Errorf("rule %q: invalid options schema: %w", def.ID, err)
		}
		def.validator = v
	}

	r.rules[def.ID] = def
	return nil
}

// RegisterPlugin registers a plugin and the rules it provides. Rule IDs may be given
// short ("semi") or fully qualified ("@typescript-eslint/semi").
func (r *Registry) RegisterPlugin(p *Plugin) error {
	name := NormalizePluginName(p.Name)
	if name == "" {
		return fmt.Errorf("plugin missing name")
	}
	if _, exists := r.plugins[name]; exists {
		return fmt.Errorf("plugin %q already registered", name)
	}
	p.Name = name

	for _, def := range p.Rules {
		if !strings.HasPrefix(def.ID, name+"/") {
			def.ID = name + "/" + def.ID
		}
		def.Plugin = name
		if err := r.addRule(def); err != nil {
			return fmt.Errorf("plugin %q: %w", name, err)
		}
	}

	r.plugins[name] = p
	return nil
}

// RegisterPreset registers a preset. Presets it extends and plugins it enables must
// already be registered.
func (r *Registry) RegisterPreset(p *Preset) error {
	if p.Name == "" {
		return fmt.Errorf("preset missing name")
	}
	if _, exists := r.presets[p.Name]; exists {
		return fmt.Errorf("preset %q already registered", p.Name)
	}

	for _, ext := range p.Extends {
		if _, ok := r.presets[ext]; !ok {
			return fmt.Errorf("preset %q extends unknown preset %q", p.Name, ext)
		}
	}

	plugins := make([]string, 0, len(p.Plugins))
	for _, pl := range p.Plugins {
		name := NormalizePluginName(pl)
		if _, ok := r.plugins[name]; !ok {
			return fmt.Errorf("preset %q enables unknown plugin %q", p.Name, pl)
		}
		plugins = append(plugins, name)
	}
	p.Plugins = plugins

	if p.Rules == nil {
		p.Rules = ruleset.New()
	}

	r.presets[p.Name] = p
	return nil
}

// Preset returns a preset by name.
func (r *Registry) Preset(name string) (*Preset, bool) {
	p, ok := r.presets[name]
	return p, ok
}

// Plugin returns a plugin by name. Long form names ("eslint-plugin-unicorn") are accepted.
func (r *Registry) Plugin(name string) (*Plugin, bool) {
	p, ok := r.plugins[NormalizePluginName(name)]
	return p, ok
}

// Rule returns a rule definition by its fully qualified ID.
func (r *Registry) Rule(id string) (*RuleDefinition, bool) {
	def, ok := r.rules[id]
	return def, ok
}

// Presets returns all registered preset names.
func (r *Registry) Presets() []string {
	names := make([]string, 0, len(r.presets))
	for name := range r.presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Plugins returns all registered plugin names.
func (r *Registry) Plugins() []string {
	names := make([]string, 0, len(r.plugins))
	for name := range r.plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Rules returns all registered rules sorted by ID.
func (r *Registry) Rules() []*RuleDefinition {
	defs := make([]*RuleDefinition, 0, len(r.rules))
	for _, def := range r.rules {
		defs = append(defs, def)
	}
	slices.SortFunc(defs, func(a, b *RuleDefinition) int {
		return strings.Compare(a.ID, b.ID)
	})
	return defs
}

// ValidateOptions checks options against the rule's schema. Rules without a schema accept anything.
func (d *RuleDefinition) ValidateOptions(options []any) error {
	if d == nil || d.validator == nil {
		return nil
	}
	return d.validator.validate(options)
}

// HasSchema reports whether the rule declares an options schema.
func (d *RuleDefinition) HasSchema() bool {
	return d != nil && d.validator != nil
}

// NormalizePluginName converts package style plugin names to the short form used in
// rule IDs: "eslint-plugin-foo" becomes "foo", "@scope/eslint-plugin" becomes "@scope"
// and "@scope/eslint-plugin-foo" becomes "@scope/foo".
func NormalizePluginName(name string) string {
	name = strings.TrimSpace(name)

	const prefix = "eslint-plugin"

	if strings.HasPrefix(name, "@") {
		scope, rest, found := strings.Cut(name, "/")
		if !found {
			return name
		}
		switch {
		case rest == prefix:
			return scope
		case strings.HasPrefix(rest, prefix+"-"):
			return scope + "/" + strings.TrimPrefix(rest, prefix+"-")
		default:
			return name
		}
	}

	return strings.TrimPrefix(name, prefix+"-")
}

// PluginForRule returns the plugin a rule ID is scoped to: "unicorn/no-null" belongs
// to "unicorn", "@typescript-eslint/semi" to "@typescript-eslint" and
// "@scope/foo/bar" to "@scope/foo". Core rules report false.
func PluginForRule(id string) (string, bool) {
	if strings.HasPrefix(id, "@") {
		parts := strings.Split(id, "/")
		switch {
		case len(parts) == 2:
			return parts[0], true
		case len(parts) > 2:
			return parts[0] + "/" + parts[1], true
		default:
			return "", false
		}
	}

	plugin, _, found := strings.Cut(id, "/")
	if !found {
		return "", false
	}
	return plugin, true
}
