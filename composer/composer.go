// Package composer flattens presets, plugins and explicit rule blocks into a resolved
// configuration and answers which rules apply to a given file.
//
// Resolution is last-write-wins per rule: presets in listed order (each after the presets
// it extends), then global blocks in listed order. File scoped blocks are kept aside and
// applied per file, in listed order, by [Configuration.EffectiveRules].
package composer

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/speakeasy-api/lintcompose/errors"
	"github.com/speakeasy-api/lintcompose/registry"
	"github.com/speakeasy-api/lintcompose/ruleset"
	"github.com/speakeasy-api/lintcompose/sequencedmap"
)

// Catalog resolves preset, plugin and rule names.
type Catalog interface {
	Preset(name string) (*registry.Preset, bool)
	Plugin(name string) (*registry.Plugin, bool)
	Rule(id string) (*registry.RuleDefinition, bool)
}

// Block is an explicit rule table. A block with neither Files nor Ignores applies to
// every file; any other block is a file scoped override.
type Block struct {
	// Files are doublestar patterns; a file must match at least one. Empty means all files.
	Files []string

	// Ignores are doublestar patterns; a file matching any of them is excluded.
	Ignores []string

	// Rules maps rule IDs to raw settings as written in configuration.
	Rules *sequencedmap.Map[string, any]
}

// Scoped reports whether the block only applies to matching files.
func (b Block) Scoped() bool {
	return len(b.Files) > 0 || len(b.Ignores) > 0
}

// Option configures a Composer.
type Option func(*options)

type options struct {
	baseDir         string
	validateOptions bool
}

// WithBaseDir sets the directory file patterns are relative to. Absolute paths passed to
// EffectiveRules are made relative to it.
func WithBaseDir(dir string) Option {
	return func(o *options) {
		o.baseDir = dir
	}
}

// WithoutOptionValidation skips checking rule options against the schemas the catalog publishes.
func WithoutOptionValidation() Option {
	return func(o *options) {
		o.validateOptions = false
	}
}

// Composer resolves configurations against a catalog.
type Composer struct {
	catalog Catalog
	opts    options
}

// New creates a composer that resolves names through catalog.
func New(catalog Catalog, opts ...Option) *Composer {
	o := options{validateOptions: true}
	for _, opt := range opts {
		opt(&o)
	}
	return &Composer{catalog: catalog, opts: o}
}

// Resolve is shorthand for New(catalog).Resolve(presets, plugins, blocks...).
func Resolve(catalog Catalog, presets, plugins []string, blocks ...Block) (*Configuration, error) {
	return New(catalog).Resolve(presets, plugins, blocks...)
}

// Resolve builds a Configuration. Every problem in the input is reported in the returned
// error; when it is non-nil the Configuration is nil.
func (c *Composer) Resolve(presets, plugins []string, blocks ...Block) (*Configuration, error) {
	r := &resolution{
		composer: c,
		enabled:  make(map[string]bool),
		cfg: &Configuration{
			baseDir: c.opts.baseDir,
			rules:   ruleset.New(),
			origins: make(map[string][]Layer),
		},
	}

	for _, name := range plugins {
		r.enablePlugin(name, "")
	}

	for _, name := range presets {
		r.applyPreset(name, nil)
	}

	for i, block := range blocks {
		r.applyBlock(i, block)
	}

	if len(r.errs) > 0 {
		return nil, errors.Join(r.errs...)
	}
	return r.cfg, nil
}

type resolution struct {
	composer *Composer
	cfg      *Configuration
	enabled  map[string]bool
	errs     []error
}

func (r *resolution) fail(err error) {
	r.errs = append(r.errs, err)
}

// enablePlugin looks each normalized name up once; a name that failed is recorded as
// false so repeating it does not report it again.
func (r *resolution) enablePlugin(name, source string) {
	normalized := registry.NormalizePluginName(name)
	if _, seen := r.enabled[normalized]; seen {
		return
	}

	plugin, ok := r.composer.catalog.Plugin(name)
	if !ok {
		r.enabled[normalized] = false
		r.fail(&UnknownPluginError{Name: name, Source: source})
		return
	}

	r.enabled[normalized] = true
	if plugin.Name != normalized {
		if r.enabled[plugin.Name] {
			return
		}
		r.enabled[plugin.Name] = true
	}
	r.cfg.plugins = append(r.cfg.plugins, plugin.Name)
}

func (r *resolution) applyPreset(name string, chain []string) {
	if slices.Contains(chain, name) {
		r.fail(&UnknownPresetError{
			Name:   name,
			Reason: "cyclic extends " + strings.Join(append(slices.Clone(chain), name), " -> "),
		})
		return
	}

	preset, ok := r.composer.catalog.Preset(name)
	if !ok {
		if len(chain) > 0 {
			r.fail(&UnknownPresetError{Name: name, Reason: fmt.Sprintf("extended by %q", chain[len(chain)-1])})
		} else {
			r.fail(&UnknownPresetError{Name: name})
		}
		return
	}

	chain = append(chain, name)
	for _, ext := range preset.Extends {
		r.applyPreset(ext, chain)
	}

	source := "preset " + name
	for _, plugin := range preset.Plugins {
		r.enablePlugin(plugin, source)
	}

	r.merge(preset.Rules, source)
	r.cfg.presets = append(r.cfg.presets, name)
}

func (r *resolution) applyBlock(index int, block Block) {
	source := fmt.Sprintf("block %d", index)
	if block.Scoped() {
		source = fmt.Sprintf("block %d (files: %s)", index, describePatterns(block.Files, block.Ignores))
	}

	rules := r.parseRules(block.Rules, source)

	if !block.Scoped() {
		if rules != nil {
			r.merge(rules, source)
		}
		return
	}

	files := block.Files
	if len(files) == 0 {
		files = []string{"**"}
	}

	valid := true
	for _, pattern := range slices.Concat(files, block.Ignores) {
		if !doublestar.ValidatePattern(pattern) {
			r.fail(ErrInvalidPattern.Wrapf("%q in %s", pattern, source))
			valid = false
		}
	}
	if !valid || rules == nil {
		return
	}

	r.cfg.overrides = append(r.cfg.overrides, &Override{
		Source:  source,
		Files:   slices.Clone(files),
		Ignores: slices.Clone(block.Ignores),
		Rules:   rules,
	})
}

// parseRules converts raw block values to settings. It returns nil if any entry was invalid.
func (r *resolution) parseRules(raw *sequencedmap.Map[string, any], source string) *ruleset.RuleSet {
	rules := ruleset.New()
	ok := true

	for id, value := range raw.All() {
		setting, err := ruleset.ParseSetting(value)
		if err != nil {
			r.fail(&InvalidRuleSettingError{Rule: id, Source: source, Err: err})
			ok = false
			continue
		}

		if plugin, scoped := registry.PluginForRule(id); scoped && !r.enabled[registry.NormalizePluginName(plugin)] {
			r.fail(&UnknownPluginError{Name: plugin, Rule: id, Source: source})
			ok = false
			continue
		}

		if r.composer.opts.validateOptions {
			if def, found := r.composer.catalog.Rule(id); found {
				if err := def.ValidateOptions(setting.Options); err != nil {
					r.fail(&InvalidRuleSettingError{Rule: id, Source: source, Err: err})
					ok = false
					continue
				}
			}
		}

		rules.Set(id, setting)
	}

	if !ok {
		return nil
	}
	return rules
}

func (r *resolution) merge(rules *ruleset.RuleSet, source string) {
	for id, setting := range rules.All() {
		r.cfg.rules.Set(id, setting.Clone())
		r.cfg.origins[id] = append(r.cfg.origins[id], Layer{Source: source, Setting: setting.Clone()})
	}
}

func describePatterns(files, ignores []string) string {
	desc := strings.Join(files, ", ")
	if desc == "" {
		desc = "**"
	}
	if len(ignores) > 0 {
		desc += "; ignores: " + strings.Join(ignores, ", ")
	}
	return desc
}

// normalizePath returns path relative to baseDir in slash form, or false if the path lies
// outside baseDir.
func normalizePath(baseDir, path string) (string, bool) {
	if baseDir != "" && filepath.IsAbs(path) {
		rel, err := filepath.Rel(baseDir, path)
		if err != nil {
			return "", false
		}
		path = rel
	}

	path = filepath.ToSlash(filepath.Clean(path))
	if path == ".." || strings.HasPrefix(path, "../") {
		return "", false
	}
	return strings.TrimPrefix(path, "/"), true
}
