package composer_test

import (
	"path/filepath"
	"testing"

	"github.com/speakeasy-api/lintcompose/composer"
	"github.com/speakeasy-api/lintcompose/errors"
	"github.com/speakeasy-api/lintcompose/registry"
	"github.com/speakeasy-api/lintcompose/ruleset"
	"github.com/speakeasy-api/lintcompose/sequencedmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rules(kv ...any) *sequencedmap.Map[string, any] {
	m := sequencedmap.New[string, any]()
	for i := 0; i+1 < len(kv); i += 2 {
		m.Set(kv[i].(string), kv[i+1])
	}
	return m
}

func mustRuleSet(t *testing.T, raw map[string]any) *ruleset.RuleSet {
	t.Helper()
	rs, err := ruleset.FromMap(raw)
	require.NoError(t, err)
	return rs
}

func testCatalog(t *testing.T) *registry.Registry {
	t.Helper()

	reg := registry.New()
	require.NoError(t, reg.RegisterRule(&registry.RuleDefinition{
		ID:     "quotes",
		Schema: []any{map[string]any{"enum": []any{"single", "double", "backtick"}}},
	}))
	require.NoError(t, reg.RegisterRule(&registry.RuleDefinition{ID: "semi"}))
	require.NoError(t, reg.RegisterPlugin(&registry.Plugin{
		Name:  "eslint-plugin-unicorn",
		Rules: []*registry.RuleDefinition{{ID: "no-null"}, {ID: "filename-case"}},
	}))
	require.NoError(t, reg.RegisterPlugin(&registry.Plugin{Name: "import"}))
	require.NoError(t, reg.RegisterPlugin(&registry.Plugin{Name: "@typescript-eslint"}))

	require.NoError(t, reg.RegisterPreset(&registry.Preset{
		Name:  "base",
		Rules: mustRuleSet(t, map[string]any{"quotes": "error", "semi": "warn"}),
	}))
	require.NoError(t, reg.RegisterPreset(&registry.Preset{
		Name:    "strict",
		Extends: []string{"base"},
		Rules:   mustRuleSet(t, map[string]any{"semi": "error", "eqeqeq": []any{"error", "always"}}),
	}))
	require.NoError(t, reg.RegisterPreset(&registry.Preset{
		Name:    "plugin:unicorn/all",
		Plugins: []string{"unicorn"},
		Rules:   mustRuleSet(t, map[string]any{"unicorn/no-null": "error", "unicorn/filename-case": "error"}),
	}))
	require.NoError(t, reg.RegisterPreset(&registry.Preset{
		Name:  "prettier",
		Rules: mustRuleSet(t, map[string]any{"quotes": "off", "semi": "off"}),
	}))

	return reg
}

func setting(t *testing.T, rs *ruleset.RuleSet, id string) ruleset.Setting {
	t.Helper()
	s, ok := rs.Get(id)
	require.True(t, ok, "rule %s not set", id)
	return s
}

func TestResolve_PresetThenBlock_LastWriteWins(t *testing.T) {
	t.Parallel()

	cfg, err := composer.Resolve(testCatalog(t), []string{"base"}, nil, composer.Block{
		Rules: rules("quotes", "off"),
	})
	require.NoError(t, err)

	eff := cfg.EffectiveRules("src/index.ts")
	assert.Equal(t, ruleset.NewSetting(ruleset.SeverityOff), setting(t, eff, "quotes"))
	assert.Equal(t, ruleset.NewSetting(ruleset.SeverityWarn), setting(t, eff, "semi"))
}

func TestResolve_LaterEntriesShadowEarlierOnes(t *testing.T) {
	t.Parallel()

	cfg, err := composer.Resolve(testCatalog(t), []string{"base", "prettier"}, nil,
		composer.Block{Rules: rules("quotes", []any{"error", "single"}, "curly", "warn")},
		composer.Block{Rules: rules("curly", []any{"error", "all"})},
	)
	require.NoError(t, err)

	global := cfg.Rules()
	assert.Equal(t, ruleset.NewSetting(ruleset.SeverityError, "single"), setting(t, global, "quotes"))
	assert.Equal(t, ruleset.NewSetting(ruleset.SeverityOff), setting(t, global, "semi"), "prettier comes after base")
	assert.Equal(t, ruleset.NewSetting(ruleset.SeverityError, "all"), setting(t, global, "curly"))
}

func TestResolve_OptionsAreReplacedNotMerged(t *testing.T) {
	t.Parallel()

	cfg, err := composer.Resolve(registry.New(), nil, nil,
		composer.Block{Rules: rules("max-len", []any{"error", map[string]any{"code": 120, "ignoreUrls": true}})},
		composer.Block{Rules: rules("max-len", []any{"warn", map[string]any{"code": 80}})},
	)
	require.NoError(t, err)

	assert.Equal(t,
		ruleset.NewSetting(ruleset.SeverityWarn, map[string]any{"code": 80}),
		setting(t, cfg.Rules(), "max-len"),
	)
}

func TestResolve_ExtendsAreAppliedFirst(t *testing.T) {
	t.Parallel()

	cfg, err := composer.Resolve(testCatalog(t), []string{"strict"}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"base", "strict"}, cfg.Presets())

	global := cfg.Rules()
	assert.Equal(t, ruleset.SeverityError, setting(t, global, "quotes").Severity)
	assert.Equal(t, ruleset.SeverityError, setting(t, global, "semi").Severity)
	assert.Equal(t, ruleset.NewSetting(ruleset.SeverityError, "always"), setting(t, global, "eqeqeq"))
}

func TestResolve_UnknownPreset(t *testing.T) {
	t.Parallel()

	cfg, err := composer.Resolve(testCatalog(t), []string{"base", "does-not-exist"}, nil)
	require.Error(t, err)
	assert.Nil(t, cfg)

	var presetErr *composer.UnknownPresetError
	require.ErrorAs(t, err, &presetErr)
	assert.Equal(t, "does-not-exist", presetErr.Name)
	require.ErrorIs(t, err, composer.ErrUnknownPreset)
	assert.Contains(t, err.Error(), `unknown preset "does-not-exist"`)
}

func TestResolve_UnknownExtendedPreset(t *testing.T) {
	t.Parallel()

	cat := &fakeCatalog{
		Registry: registry.New(),
		presets: map[string]*registry.Preset{
			"child": {Name: "child", Extends: []string{"ghost"}},
		},
	}

	_, err := composer.Resolve(cat, []string{"child"}, nil)
	require.ErrorIs(t, err, composer.ErrUnknownPreset)
	assert.Contains(t, err.Error(), `"ghost": extended by "child"`)
}

func TestResolve_CyclicExtends(t *testing.T) {
	t.Parallel()

	cat := &fakeCatalog{
		Registry: registry.New(),
		presets: map[string]*registry.Preset{
			"a": {Name: "a", Extends: []string{"b"}},
			"b": {Name: "b", Extends: []string{"a"}},
		},
	}

	cfg, err := composer.Resolve(cat, []string{"a"}, nil)
	require.Error(t, err)
	assert.Nil(t, cfg)

	var presetErr *composer.UnknownPresetError
	require.ErrorAs(t, err, &presetErr)
	assert.Equal(t, "a", presetErr.Name)
	assert.Contains(t, err.Error(), "cyclic extends a -> b -> a")
}

func TestResolve_UnknownPlugin(t *testing.T) {
	t.Parallel()

	cfg, err := composer.Resolve(testCatalog(t), nil, []string{"unicorn", "react"})
	require.Error(t, err)
	assert.Nil(t, cfg)

	var pluginErr *composer.UnknownPluginError
	require.ErrorAs(t, err, &pluginErr)
	assert.Equal(t, "react", pluginErr.Name)
	assert.ErrorIs(t, err, composer.ErrUnknownPlugin)
}

func TestResolve_DuplicateUnknownPluginReportedOnce(t *testing.T) {
	t.Parallel()

	cat := testCatalog(t)

	_, once := composer.Resolve(cat, nil, []string{"react"})
	_, twice := composer.Resolve(cat, nil, []string{"react", "react", "eslint-plugin-react"})
	require.Error(t, once)
	require.Error(t, twice)

	assert.Len(t, errors.Flatten(twice), len(errors.Flatten(once)))
	assert.Equal(t, once.Error(), twice.Error())
}

func TestResolve_DuplicatePluginsAreIdempotent(t *testing.T) {
	t.Parallel()

	cat := testCatalog(t)

	once, err := composer.Resolve(cat, nil, []string{"import"})
	require.NoError(t, err)
	twice, err := composer.Resolve(cat, nil, []string{"import", "import", "eslint-plugin-import"})
	require.NoError(t, err)

	assert.Equal(t, once.Plugins(), twice.Plugins())
	assert.Equal(t, []string{"import"}, twice.Plugins())
	assert.True(t, once.Rules().Equal(twice.Rules()))
}

func TestResolve_PresetEnablesItsPlugins(t *testing.T) {
	t.Parallel()

	cfg, err := composer.Resolve(testCatalog(t), []string{"plugin:unicorn/all"}, []string{"import"},
		composer.Block{Rules: rules("unicorn/no-null", "off")},
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"import", "unicorn"}, cfg.Plugins())
	assert.True(t, cfg.HasPlugin("unicorn"))
	assert.Equal(t, ruleset.SeverityOff, setting(t, cfg.Rules(), "unicorn/no-null").Severity)
}

func TestResolve_PluginRuleRequiresEnabledPlugin(t *testing.T) {
	t.Parallel()

	_, err := composer.Resolve(testCatalog(t), nil, nil,
		composer.Block{Rules: rules("import/no-cycle", "error", "@typescript-eslint/semi", "off")},
	)
	require.Error(t, err)

	var names []string
	for _, e := range errors.Flatten(err) {
		var pluginErr *composer.UnknownPluginError
		require.ErrorAs(t, e, &pluginErr)
		names = append(names, pluginErr.Name+" "+pluginErr.Rule)
	}
	assert.Equal(t, []string{"import import/no-cycle", "@typescript-eslint @typescript-eslint/semi"}, names)
}

func TestResolve_InvalidRuleSetting(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   any
		wantErr string
	}{
		{name: "unknown severity", value: "fatal", wantErr: "invalid severity"},
		{name: "out of range level", value: 3, wantErr: "invalid severity"},
		{name: "empty list", value: []any{}, wantErr: "invalid rule setting"},
		{name: "bad options", value: []any{"error", "smart"}, wantErr: "options do not match schema"},
		{name: "object", value: map[string]any{"level": "error"}, wantErr: "invalid rule setting"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := composer.Resolve(testCatalog(t), nil, nil, composer.Block{Rules: rules("quotes", tt.value)})
			require.Error(t, err)
			assert.Nil(t, cfg)

			var settingErr *composer.InvalidRuleSettingError
			require.ErrorAs(t, err, &settingErr)
			assert.Equal(t, "quotes", settingErr.Rule)
			assert.Equal(t, "block 0", settingErr.Source)
			require.ErrorIs(t, err, composer.ErrInvalidRuleSetting)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestResolve_WithoutOptionValidation(t *testing.T) {
	t.Parallel()

	cfg, err := composer.New(testCatalog(t), composer.WithoutOptionValidation()).Resolve(nil, nil,
		composer.Block{Rules: rules("quotes", []any{"error", "smart"})},
	)
	require.NoError(t, err)
	assert.Equal(t, ruleset.NewSetting(ruleset.SeverityError, "smart"), setting(t, cfg.Rules(), "quotes"))
}

func TestResolve_CollectsEveryError(t *testing.T) {
	t.Parallel()

	_, err := composer.Resolve(testCatalog(t), []string{"nope"}, []string{"react"},
		composer.Block{Rules: rules("semi", "loud")},
		composer.Block{Files: []string{"[*.ts"}, Rules: rules("semi", "off")},
	)
	require.Error(t, err)

	assert.ErrorIs(t, err, composer.ErrUnknownPreset)
	assert.ErrorIs(t, err, composer.ErrUnknownPlugin)
	assert.ErrorIs(t, err, composer.ErrInvalidRuleSetting)
	assert.ErrorIs(t, err, composer.ErrInvalidPattern)
	assert.Len(t, errors.Flatten(err), 4)
}

func TestEffectiveRules_Overrides(t *testing.T) {
	t.Parallel()

	cfg, err := composer.Resolve(testCatalog(t), []string{"base"}, nil,
		composer.Block{Rules: rules("no-console", "warn")},
		composer.Block{Files: []string{"**/*.ts", "**/*.tsx"}, Rules: rules("semi", "error", "no-console", "error")},
		composer.Block{Files: []string{"**/*.test.ts"}, Rules: rules("no-console", "off")},
		composer.Block{Ignores: []string{"scripts/**"}, Rules: rules("quotes", []any{"warn", "double"})},
	)
	require.NoError(t, err)

	tests := []struct {
		path     string
		expected map[string]any
	}{
		{
			path:     "scripts/build.js",
			expected: map[string]any{"quotes": "error", "semi": "warn", "no-console": "warn"},
		},
		{
			path:     "src/app.js",
			expected: map[string]any{"quotes": []any{"warn", "double"}, "semi": "warn", "no-console": "warn"},
		},
		{
			path:     "src/app.ts",
			expected: map[string]any{"quotes": []any{"warn", "double"}, "semi": "error", "no-console": "error"},
		},
		{
			path:     "./src/app.test.ts",
			expected: map[string]any{"quotes": []any{"warn", "double"}, "semi": "error", "no-console": "off"},
		},
		{
			path:     "../elsewhere/app.ts",
			expected: map[string]any{"quotes": "error", "semi": "warn", "no-console": "warn"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, cfg.EffectiveRules(tt.path).Values())
		})
	}
}

func TestEffectiveRules_NonMatchingOverrideLeavesPathUntouched(t *testing.T) {
	t.Parallel()

	cat := testCatalog(t)

	without, err := composer.Resolve(cat, []string{"strict"}, nil)
	require.NoError(t, err)
	with, err := composer.Resolve(cat, []string{"strict"}, nil,
		composer.Block{Files: []string{"**/*.md"}, Rules: rules("semi", "off", "quotes", "off")},
	)
	require.NoError(t, err)

	assert.True(t, without.EffectiveRules("src/a.js").Equal(with.EffectiveRules("src/a.js")))
	assert.Empty(t, with.MatchingOverrides("src/a.js"))
	assert.Len(t, with.MatchingOverrides("docs/README.md"), 1)
}

func TestEffectiveRules_IsIdempotent(t *testing.T) {
	t.Parallel()

	cfg, err := composer.Resolve(testCatalog(t), []string{"strict"}, nil,
		composer.Block{Files: []string{"**/*.js"}, Rules: rules("eqeqeq", []any{"warn", "smart"})},
	)
	require.NoError(t, err)

	first := cfg.EffectiveRules("lib/a.js")

	// mutating a returned set must not leak into the configuration
	first.Set("semi", ruleset.NewSetting(ruleset.SeverityOff))
	eq, _ := first.Get("eqeqeq")
	eq.Options[0] = "always"

	second := cfg.EffectiveRules("lib/a.js")
	third := cfg.EffectiveRules("lib/a.js")

	assert.True(t, second.Equal(third))
	assert.Equal(t, ruleset.SeverityError, setting(t, second, "semi").Severity)
	assert.Equal(t, ruleset.NewSetting(ruleset.SeverityWarn, "smart"), setting(t, second, "eqeqeq"))
}

func TestEffectiveRules_BaseDir(t *testing.T) {
	t.Parallel()

	base := filepath.Join(t.TempDir(), "project")

	cfg, err := composer.New(testCatalog(t), composer.WithBaseDir(base)).Resolve(nil, nil,
		composer.Block{Files: []string{"src/**/*.js"}, Rules: rules("semi", "error")},
	)
	require.NoError(t, err)
	assert.Equal(t, base, cfg.BaseDir())

	assert.True(t, cfg.EffectiveRules(filepath.Join(base, "src", "lib", "a.js")).Has("semi"))
	assert.True(t, cfg.EffectiveRules("src/a.js").Has("semi"))
	assert.False(t, cfg.EffectiveRules(filepath.Join(filepath.Dir(base), "other", "src", "a.js")).Has("semi"))
	assert.Equal(t, 0, composer.EffectiveRules(cfg, "lib/a.js").Len())
}

func TestConfiguration_Enabled(t *testing.T) {
	t.Parallel()

	cfg, err := composer.Resolve(testCatalog(t), []string{"base", "prettier"}, nil,
		composer.Block{Rules: rules("curly", "error")},
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"curly"}, cfg.Enabled("a.js").IDs())
}

func TestConfiguration_Explain(t *testing.T) {
	t.Parallel()

	cfg, err := composer.Resolve(testCatalog(t), []string{"strict", "prettier"}, nil,
		composer.Block{Rules: rules("semi", []any{"error", "never"})},
		composer.Block{Files: []string{"**/*.ts"}, Rules: rules("semi", "off")},
	)
	require.NoError(t, err)

	var sources []string
	for _, layer := range cfg.Explain("src/a.ts", "semi") {
		sources = append(sources, layer.Source)
	}
	assert.Equal(t, []string{
		"preset base",
		"preset strict",
		"preset prettier",
		"block 0",
		"block 1 (files: **/*.ts)",
	}, sources)

	layers := cfg.Explain("src/a.js", "semi")
	require.Len(t, layers, 4)
	assert.Equal(t, ruleset.NewSetting(ruleset.SeverityError, "never"), layers[3].Setting)

	assert.Empty(t, cfg.Explain("src/a.js", "no-such-rule"))
}

func TestOverride_Matches(t *testing.T) {
	t.Parallel()

	o := &composer.Override{
		Files:   []string{"**/*.{js,mjs}"},
		Ignores: []string{"dist/**", "**/*.min.js"},
	}

	assert.True(t, o.Matches("index.js"))
	assert.True(t, o.Matches("src/deep/util.mjs"))
	assert.False(t, o.Matches("src/util.ts"))
	assert.False(t, o.Matches("dist/index.js"))
	assert.False(t, o.Matches("vendor/jquery.min.js"))
}

func TestConfiguration_IsSafeForConcurrentReaders(t *testing.T) {
	t.Parallel()

	cfg, err := composer.Resolve(testCatalog(t), []string{"strict"}, nil,
		composer.Block{Files: []string{"**/*.ts"}, Rules: rules("semi", "off")},
	)
	require.NoError(t, err)

	done := make(chan *ruleset.RuleSet)
	for range 8 {
		go func() {
			done <- cfg.EffectiveRules("src/a.ts")
		}()
	}
	for range 8 {
		rs := <-done
		assert.Equal(t, ruleset.SeverityOff, setting(t, rs, "semi").Severity)
	}
}

type fakeCatalog struct {
	*registry.Registry
	presets map[string]*registry.Preset
}

func (f *fakeCatalog) Preset(name string) (*registry.Preset, bool) {
	p, ok := f.presets[name]
	return p, ok
}
