package ruleset

import (
	"encoding/json"
	"fmt"
	"maps"
	"reflect"

	"github.com/speakeasy-api/lintcompose/errors"
	"gopkg.in/yaml.v3"
)

const (
	ErrInvalidSeverity = errors.Error("invalid severity")
	ErrInvalidSetting  = errors.Error("invalid rule setting")
)

// Setting is the configured value of one rule: a severity, optionally followed by
// rule specific options. It is written either as a bare severity ("error", 2) or as
// a list whose first element is the severity (["error", "single"]).
type Setting struct {
	Severity Severity
	Options  []any
}

// NewSetting creates a setting with the given severity and options.
func NewSetting(severity Severity, options ...any) Setting {
	s := Setting{Severity: severity}
	if len(options) > 0 {
		s.Options = options
	}
	return s
}

// ParseSetting converts a decoded configuration value into a Setting.
func ParseSetting(v any) (Setting, error) {
	switch value := v.(type) {
	case Setting:
		if !value.Severity.Valid() {
			return Setting{}, ErrInvalidSetting.Wrap(fmt.Errorf("%w: %q", ErrInvalidSeverity, value.Severity))
		}
		return value.Clone(), nil
	case []any:
		if len(value) == 0 {
			return Setting{}, ErrInvalidSetting.Wrapf("empty list, expected a severity followed by options")
		}
		sev, err := ParseSeverity(value[0])
		if err != nil {
			return Setting{}, ErrInvalidSetting.Wrap(err)
		}
		return NewSetting(sev, cloneSlice(value[1:])...), nil
	case []string:
		list := make([]any, len(value))
		for i, s := range value {
			list[i] = s
		}
		return ParseSetting(list)
	case nil:
		return Setting{}, ErrInvalidSetting.Wrapf("missing value")
	default:
		sev, err := ParseSeverity(value)
		if err != nil {
			return Setting{}, ErrInvalidSetting.Wrap(err)
		}
		return Setting{Severity: sev}, nil
	}
}

// MustParseSetting is like ParseSetting but panics on error. Intended for static tables.
func MustParseSetting(v any) Setting {
	s, err := ParseSetting(v)
	if err != nil {
		panic(err)
	}
	return s
}

// HasOptions reports whether the setting carries an options payload.
func (s Setting) HasOptions() bool {
	return len(s.Options) > 0
}

// Value returns the setting in its configuration shape: the bare severity when there
// are no options, otherwise a list led by the severity.
func (s Setting) Value() any {
	if !s.HasOptions() {
		return string(s.Severity)
	}
	out := make([]any, 0, len(s.Options)+1)
	out = append(out, string(s.Severity))
	return append(out, cloneSlice(s.Options)...)
}

// Equal reports whether both settings have the same severity and deeply equal options.
func (s Setting) Equal(other Setting) bool {
	if s.Severity != other.Severity || len(s.Options) != len(other.Options) {
		return false
	}
	return len(s.Options) == 0 || reflect.DeepEqual(s.Options, other.Options)
}

// Clone returns a deep copy of the setting so the copy can be handed out without
// exposing nested option maps or slices.
func (s Setting) Clone() Setting {
	return NewSetting(s.Severity, cloneSlice(s.Options)...)
}

func (s Setting) String() string {
	if !s.HasOptions() {
		return string(s.Severity)
	}
	data, err := json.Marshal(s.Options)
	if err != nil {
		return fmt.Sprintf("%s %v", s.Severity, s.Options)
	}
	return fmt.Sprintf("%s %s", s.Severity, data)
}

func (s Setting) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Value())
}

func (s *Setting) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseSetting(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s Setting) MarshalYAML() (any, error) {
	return s.Value(), nil
}

func (s *Setting) UnmarshalYAML(value *yaml.Node) error {
	var raw any
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ParseSetting(raw)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*s = parsed
	return nil
}

func cloneSlice(in []any) []any {
	if len(in) == 0 {
		return nil
	}
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch value := v.(type) {
	case []any:
		if value == nil {
			return value
		}
		out := make([]any, len(value))
		for i, item := range value {
			out[i] = cloneValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(value))
		for k, item := range value {
			out[k] = cloneValue(item)
		}
		return out
	case map[any]any:
		out := maps.Clone(value)
		for k, item := range out {
			out[k] = cloneValue(item)
		}
		return out
	default:
		return value
	}
}
