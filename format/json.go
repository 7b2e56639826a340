package format

import (
	"encoding/json"

	"github.com/speakeasy-api/lintcompose/sequencedmap"
)

type JSONFormatter struct{}

func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

type jsonOutput struct {
	Results []jsonResult `json:"results"`
	Summary counts       `json:"summary"`
}

type jsonResult struct {
	Path    string                         `json:"path,omitempty"`
	Rules   *sequencedmap.Map[string, any] `json:"rules"`
	Summary counts                         `json:"summary"`
}

// Format writes each result's rules keyed by rule ID in sorted order, with values in the
// shape they are configured in. The top level summary adds up every result.
func (f *JSONFormatter) Format(results []Result) (string, error) {
	output := jsonOutput{
		Results: make([]jsonResult, 0, len(results)),
	}

	for _, res := range results {
		rules := sequencedmap.New[string, any]()
		for _, id := range res.Rules.IDs() {
			setting, _ := res.Rules.Get(id)
			rules.Set(id, setting.Value())
		}

		c := countRules(res.Rules)
		output.Results = append(output.Results, jsonResult{
			Path:    res.Path,
			Rules:   rules,
			Summary: c,
		})

		output.Summary.Total += c.Total
		output.Summary.Errors += c.Errors
		output.Summary.Warns += c.Warns
		output.Summary.Off += c.Off
	}

	bytes, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return "", err
	}

	return string(bytes), nil
}
