package ruleset

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Severity is the effect a rule has when it reports a problem.
type Severity string

const (
	SeverityOff   Severity = "off"
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

var severityLevels = map[Severity]int{
	SeverityOff:   0,
	SeverityWarn:  1,
	SeverityError: 2,
}

func (s Severity) String() string {
	return string(s)
}

// Level returns the numeric form of the severity (0, 1 or 2), or -1 if the severity is not valid.
func (s Severity) Level() int {
	if level, ok := severityLevels[s]; ok {
		return level
	}
	return -1
}

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	return s.Level() >= 0
}

// Enabled reports whether the rule runs at all.
func (s Severity) Enabled() bool {
	return s == SeverityWarn || s == SeverityError
}

// ParseSeverity accepts the named severities case-insensitively and the numbers 0, 1 and 2.
// Numbers written as strings ("2") are rejected.
func ParseSeverity(v any) (Severity, error) {
	switch value := v.(type) {
	case Severity:
		return parseSeverityString(string(value))
	case string:
		return parseSeverityString(value)
	case int:
		return severityFromLevel(int64(value), v)
	case int64:
		return severityFromLevel(value, v)
	case uint64:
		if value > 2 {
			return "", fmt.Errorf("%w: %d", ErrInvalidSeverity, value)
		}
		return severityFromLevel(int64(value), v)
	case json.Number:
		level, err := value.Int64()
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrInvalidSeverity, value)
		}
		return severityFromLevel(level, v)
	case float64:
		if value != float64(int64(value)) {
			return "", fmt.Errorf("%w: %v", ErrInvalidSeverity, value)
		}
		return severityFromLevel(int64(value), v)
	default:
		return "", fmt.Errorf("%w: unexpected %T", ErrInvalidSeverity, v)
	}
}

func parseSeverityString(s string) (Severity, error) {
	sev := Severity(strings.ToLower(strings.TrimSpace(s)))
	if sev.Valid() {
		return sev, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSeverity, s)
}

func severityFromLevel(level int64, raw any) (Severity, error) {
	switch level {
	case 0:
		return SeverityOff, nil
	case 1:
		return SeverityWarn, nil
	case 2:
		return SeverityError, nil
	default:
		return "", fmt.Errorf("%w: %v", ErrInvalidSeverity, raw)
	}
}

// UnmarshalYAML parses a named or numeric severity.
func (s *Severity) UnmarshalYAML(value *yaml.Node) error {
	var raw any
	if err := value.Decode(&raw); err != nil {
		return err
	}
	sev, err := ParseSeverity(raw)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*s = sev
	return nil
}
