// Package ruleset models rule settings (a severity with optional options) and
// ordered tables of them keyed by rule identifier.
package ruleset

import (
	"encoding/json"
	"fmt"
	"iter"
	"maps"
	"slices"

	"github.com/speakeasy-api/lintcompose/errors"
	"github.com/speakeasy-api/lintcompose/sequencedmap"
	"gopkg.in/yaml.v3"
)

// RuleSet maps rule identifiers to settings. Key order follows insertion and is only
// used for display; two rule sets with the same keys and values are equal.
type RuleSet struct {
	rules *sequencedmap.Map[string, Setting]
}

// New creates an empty rule set.
func New() *RuleSet {
	return &RuleSet{rules: sequencedmap.New[string, Setting]()}
}

// Parse builds a rule set from raw configuration values, reporting every invalid entry.
func Parse(raw *sequencedmap.Map[string, any]) (*RuleSet, error) {
	rs := New()

	var errs []error
	for id, value := range raw.All() {
		setting, err := ParseSetting(value)
		if err != nil {
			errs = append(errs, fmt.Errorf("rule %q: %w", id, err))
			continue
		}
		rs.Set(id, setting)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return rs, nil
}

// FromMap builds a rule set from a plain map, ordering rules by identifier.
func FromMap(raw map[string]any) (*RuleSet, error) {
	m := sequencedmap.New[string, any]()
	for _, id := range slices.Sorted(maps.Keys(raw)) {
		m.Set(id, raw[id])
	}
	return Parse(m)
}

func (rs *RuleSet) init() {
	if rs.rules == nil {
		rs.rules = sequencedmap.New[string, Setting]()
	}
}

// Len returns the number of rules. nil safe.
func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return rs.rules.Len()
}

// Set defines the setting for a rule, replacing any earlier setting.
func (rs *RuleSet) Set(id string, setting Setting) {
	rs.init()
	rs.rules.Set(id, setting)
}

// Get returns the setting for a rule.
func (rs *RuleSet) Get(id string) (Setting, bool) {
	if rs == nil {
		return Setting{}, false
	}
	return rs.rules.Get(id)
}

// Has reports whether the rule is defined.
func (rs *RuleSet) Has(id string) bool {
	if rs == nil {
		return false
	}
	return rs.rules.Has(id)
}

// All iterates over the rules in insertion order.
func (rs *RuleSet) All() iter.Seq2[string, Setting] {
	if rs == nil {
		return func(func(string, Setting) bool) {}
	}
	return rs.rules.All()
}

// IDs returns the rule identifiers sorted alphabetically.
func (rs *RuleSet) IDs() []string {
	if rs == nil {
		return nil
	}
	return slices.Sorted(rs.rules.Keys())
}

// Merge applies other on top of rs: every rule defined in other replaces the setting
// in rs. Settings are replaced wholesale, options are never merged.
func (rs *RuleSet) Merge(other *RuleSet) {
	for id, setting := range other.All() {
		rs.Set(id, setting.Clone())
	}
}

// Clone returns a deep copy of the rule set.
func (rs *RuleSet) Clone() *RuleSet {
	c := New()
	c.Merge(rs)
	return c
}

// Filter returns a new rule set holding the rules for which keep returns true.
func (rs *RuleSet) Filter(keep func(id string, setting Setting) bool) *RuleSet {
	out := New()
	for id, setting := range rs.All() {
		if keep(id, setting) {
			out.Set(id, setting.Clone())
		}
	}
	return out
}

// Enabled returns the rules whose severity is not off.
func (rs *RuleSet) Enabled() *RuleSet {
	return rs.Filter(func(_ string, s Setting) bool {
		return s.Severity.Enabled()
	})
}

// Counts returns how many rules are configured at each severity.
func (rs *RuleSet) Counts() map[Severity]int {
	counts := map[Severity]int{
		SeverityOff:   0,
		SeverityWarn:  0,
		SeverityError: 0,
	}
	for _, setting := range rs.All() {
		counts[setting.Severity]++
	}
	return counts
}

// Equal reports whether both rule sets define the same rules with equal settings,
// regardless of order.
func (rs *RuleSet) Equal(other *RuleSet) bool {
	if rs.Len() != other.Len() {
		return false
	}
	for id, setting := range rs.All() {
		o, ok := other.Get(id)
		if !ok || !setting.Equal(o) {
			return false
		}
	}
	return true
}

// Values returns the rule set in its configuration shape, keyed by rule identifier.
func (rs *RuleSet) Values() map[string]any {
	out := make(map[string]any, rs.Len())
	for id, setting := range rs.All() {
		out[id] = setting.Value()
	}
	return out
}

func (rs *RuleSet) MarshalJSON() ([]byte, error) {
	if rs == nil {
		return []byte("null"), nil
	}
	return json.Marshal(rs.rules)
}

func (rs *RuleSet) MarshalYAML() (any, error) {
	if rs == nil {
		return nil, nil
	}
	return rs.rules.MarshalYAML()
}

func (rs *RuleSet) UnmarshalYAML(value *yaml.Node) error {
	var m sequencedmap.Map[string, Setting]
	if err := value.Decode(&m); err != nil {
		return err
	}
	rs.rules = &m
	return nil
}
