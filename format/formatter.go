// Package format renders resolved rule sets for display.
package format

import (
	"github.com/speakeasy-api/lintcompose/ruleset"
)

type Formatter interface {
	Format(results []Result) (string, error)
}

// Result is the rule set that applies to Path. An empty Path stands for the global rules.
type Result struct {
	Path  string
	Rules *ruleset.RuleSet
}

type counts struct {
	Total  int `json:"total"`
	Errors int `json:"errors"`
	Warns  int `json:"warnings"`
	Off    int `json:"off"`
}

func countRules(rs *ruleset.RuleSet) counts {
	c := rs.Counts()
	return counts{
		Total:  rs.Len(),
		Errors: c[ruleset.SeverityError],
		Warns:  c[ruleset.SeverityWarn],
		Off:    c[ruleset.SeverityOff],
	}
}
