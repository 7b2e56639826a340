package composer

import (
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/speakeasy-api/lintcompose/ruleset"
)

// Override is a file scoped block after resolution.
type Override struct {
	// Source describes where the override was declared.
	Source  string
	Files   []string
	Ignores []string
	Rules   *ruleset.RuleSet
}

// Matches reports whether the override applies to path. The path must be slash separated
// and relative to the configuration's base directory.
func (o *Override) Matches(path string) bool {
	if !matchAny(o.Files, path) {
		return false
	}
	return !matchAny(o.Ignores, path)
}

func matchAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		// patterns were validated during resolution
		if ok, _ := doublestar.Match(pattern, path); ok {
			return true
		}
	}
	return false
}

// Layer records one place a rule was set while resolving a configuration.
type Layer struct {
	Source  string
	Setting ruleset.Setting
}

// Configuration is the result of resolving presets, plugins and blocks. It is immutable
// and safe for concurrent use.
type Configuration struct {
	baseDir   string
	presets   []string
	plugins   []string
	rules     *ruleset.RuleSet
	overrides []*Override
	origins   map[string][]Layer
}

// BaseDir returns the directory file patterns are relative to.
func (c *Configuration) BaseDir() string {
	return c.baseDir
}

// Presets returns the applied presets in application order, including extended presets.
func (c *Configuration) Presets() []string {
	return slices.Clone(c.presets)
}

// Plugins returns the enabled plugins, normalized and without duplicates.
func (c *Configuration) Plugins() []string {
	return slices.Clone(c.plugins)
}

// HasPlugin reports whether the named plugin is enabled.
func (c *Configuration) HasPlugin(name string) bool {
	return slices.Contains(c.plugins, name)
}

// Rules returns the global rules, before any file scoped override is applied.
func (c *Configuration) Rules() *ruleset.RuleSet {
	return c.rules.Clone()
}

// Overrides returns the file scoped overrides in declaration order.
func (c *Configuration) Overrides() []*Override {
	return slices.Clone(c.overrides)
}

// EffectiveRules returns the rules that apply to path: the global rules followed by every
// matching override in declaration order. A path outside the base directory gets the
// global rules only.
func (c *Configuration) EffectiveRules(path string) *ruleset.RuleSet {
	out := c.rules.Clone()
	for _, o := range c.MatchingOverrides(path) {
		out.Merge(o.Rules)
	}
	return out
}

// EffectiveRules is shorthand for c.EffectiveRules(path).
func EffectiveRules(c *Configuration, path string) *ruleset.RuleSet {
	return c.EffectiveRules(path)
}

// MatchingOverrides returns the overrides that apply to path, in declaration order.
func (c *Configuration) MatchingOverrides(path string) []*Override {
	rel, ok := normalizePath(c.baseDir, path)
	if !ok {
		return nil
	}

	var matched []*Override
	for _, o := range c.overrides {
		if o.Matches(rel) {
			matched = append(matched, o)
		}
	}
	return matched
}

// Enabled returns the effective rules for path that are not turned off.
func (c *Configuration) Enabled(path string) *ruleset.RuleSet {
	return c.EffectiveRules(path).Enabled()
}

// Explain returns every layer that set rule for path, oldest first. The last layer is the
// effective setting. It returns nil if the rule is not configured for path.
func (c *Configuration) Explain(path, rule string) []Layer {
	layers := slices.Clone(c.origins[rule])
	for _, o := range c.MatchingOverrides(path) {
		if setting, ok := o.Rules.Get(rule); ok {
			layers = append(layers, Layer{Source: o.Source, Setting: setting.Clone()})
		}
	}
	return layers
}
