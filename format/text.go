package format

import (
	"encoding/json"
	"fmt"
	"strings"
)

type TextFormatter struct{}

func NewTextFormatter() *TextFormatter {
	return &TextFormatter{}
}

// Format writes one aligned `rule severity options` line per rule, sorted by rule ID,
// followed by a count of rules per severity. Results with a Path get it as a header.
func (f *TextFormatter) Format(results []Result) (string, error) {
	var sb strings.Builder

	for i, res := range results {
		if i > 0 {
			sb.WriteString("\n")
		}
		if res.Path != "" {
			sb.WriteString(res.Path)
			sb.WriteString("\n")
		}

		ids := res.Rules.IDs()

		ruleWidth, severityWidth := 0, 0
		for _, id := range ids {
			setting, _ := res.Rules.Get(id)
			ruleWidth = max(ruleWidth, len(id))
			severityWidth = max(severityWidth, len(setting.Severity))
		}

		for _, id := range ids {
			setting, _ := res.Rules.Get(id)
			if !setting.HasOptions() {
				fmt.Fprintf(&sb, "%-*s %s\n", ruleWidth, id, setting.Severity)
				continue
			}

			opts, err := json.Marshal(setting.Options)
			if err != nil {
				return "", fmt.Errorf("rule %q: failed to encode options: %w", id, err)
			}
			fmt.Fprintf(&sb, "%-*s %-*s %s\n", ruleWidth, id, severityWidth, setting.Severity, opts)
		}

		c := countRules(res.Rules)
		if len(ids) > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%d rules (%d errors, %d warnings, %d off)\n", c.Total, c.Errors, c.Warns, c.Off)
	}

	return sb.String(), nil
}
