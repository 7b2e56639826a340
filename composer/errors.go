package composer

import (
	"fmt"

	"github.com/speakeasy-api/lintcompose/errors"
	"github.com/speakeasy-api/lintcompose/ruleset"
)

const (
	ErrUnknownPreset      = errors.Error("unknown preset")
	ErrUnknownPlugin      = errors.Error("unknown plugin")
	ErrInvalidRuleSetting = ruleset.ErrInvalidSetting
	ErrInvalidPattern     = errors.Error("invalid file pattern")
)

// UnknownPresetError is returned when a preset cannot be found in the catalog, or when
// presets extend each other in a cycle.
type UnknownPresetError struct {
	Name string

	// Reason is set when the preset exists but cannot be applied.
	Reason string
}

func (e *UnknownPresetError) Error() string {
	msg := fmt.Sprintf("%s %q", ErrUnknownPreset, e.Name)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *UnknownPresetError) Is(target error) bool {
	return target == ErrUnknownPreset
}

// UnknownPluginError is returned when a plugin is not registered, or when a rule scoped
// to a plugin is configured without that plugin being enabled.
type UnknownPluginError struct {
	Name string

	// Rule is the plugin scoped rule that referenced the plugin, if any.
	Rule string

	// Source names the preset or block the reference came from.
	Source string
}

func (e *UnknownPluginError) Error() string {
	if e.Rule != "" {
		return fmt.Sprintf("%s %q: rule %q in %s requires the plugin to be enabled", ErrUnknownPlugin, e.Name, e.Rule, e.Source)
	}
	if e.Source != "" {
		return fmt.Sprintf("%s %q in %s", ErrUnknownPlugin, e.Name, e.Source)
	}
	return fmt.Sprintf("%s %q", ErrUnknownPlugin, e.Name)
}

func (e *UnknownPluginError) Is(target error) bool {
	return target == ErrUnknownPlugin
}

// InvalidRuleSettingError is returned when a rule value is neither a severity nor a
// severity followed by options, or when its options are rejected by the rule's schema.
type InvalidRuleSettingError struct {
	Rule   string
	Source string
	Err    error
}

func (e *InvalidRuleSettingError) Error() string {
	return fmt.Sprintf("%s for %q in %s: %v", ErrInvalidRuleSetting, e.Rule, e.Source, e.Err)
}

func (e *InvalidRuleSettingError) Is(target error) bool {
	return target == ErrInvalidRuleSetting
}

func (e *InvalidRuleSettingError) Unwrap() error {
	return e.Err
}
