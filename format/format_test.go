package format_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/speakeasy-api/lintcompose/format"
	"github.com/speakeasy-api/lintcompose/ruleset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(t *testing.T) *ruleset.RuleSet {
	t.Helper()

	rs, err := ruleset.FromMap(map[string]any{
		"semi":    "off",
		"quotes":  []any{"error", "single"},
		"max-len": "warn",
	})
	require.NoError(t, err)
	return rs
}

func TestTextFormatter_Format_ColumnAlignment(t *testing.T) {
	t.Parallel()

	result, err := format.NewTextFormatter().Format([]format.Result{{Rules: sample(t)}})
	require.NoError(t, err)

	assert.Equal(t, strings.Join([]string{
		"max-len warn",
		`quotes  error ["single"]`,
		"semi    off",
		"",
		"3 rules (1 errors, 1 warnings, 1 off)",
		"",
	}, "\n"), result)
}

func TestTextFormatter_Format_Paths(t *testing.T) {
	t.Parallel()

	result, err := format.NewTextFormatter().Format([]format.Result{
		{Path: "src/a.ts", Rules: sample(t)},
		{Path: "src/b.ts", Rules: ruleset.New()},
	})
	require.NoError(t, err)

	assert.Contains(t, result, "src/a.ts\nmax-len warn\n")
	assert.Contains(t, result, "\n\nsrc/b.ts\n0 rules (0 errors, 0 warnings, 0 off)\n")
}

func TestTextFormatter_Format_Empty(t *testing.T) {
	t.Parallel()

	result, err := format.NewTextFormatter().Format(nil)
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestJSONFormatter_Format(t *testing.T) {
	t.Parallel()

	result, err := format.NewJSONFormatter().Format([]format.Result{
		{Path: "src/a.ts", Rules: sample(t)},
		{Path: "src/b.ts", Rules: sample(t).Enabled()},
	})
	require.NoError(t, err)

	var output struct {
		Results []struct {
			Path    string         `json:"path"`
			Rules   map[string]any `json:"rules"`
			Summary struct {
				Total  int `json:"total"`
				Errors int `json:"errors"`
				Off    int `json:"off"`
			} `json:"summary"`
		} `json:"results"`
		Summary struct {
			Total    int `json:"total"`
			Errors   int `json:"errors"`
			Warnings int `json:"warnings"`
			Off      int `json:"off"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(result), &output), "should be valid JSON")

	require.Len(t, output.Results, 2)
	assert.Equal(t, "src/a.ts", output.Results[0].Path)
	assert.Equal(t, map[string]any{
		"max-len": "warn",
		"quotes":  []any{"error", "single"},
		"semi":    "off",
	}, output.Results[0].Rules)
	assert.Equal(t, 3, output.Results[0].Summary.Total)
	assert.Equal(t, 1, output.Results[0].Summary.Off)
	assert.Equal(t, 2, output.Results[1].Summary.Total)

	assert.Equal(t, 5, output.Summary.Total)
	assert.Equal(t, 2, output.Summary.Errors)
	assert.Equal(t, 2, output.Summary.Warnings)
	assert.Equal(t, 1, output.Summary.Off)

	// rules are keyed in sorted order
	assert.Less(t, strings.Index(result, `"max-len"`), strings.Index(result, `"quotes"`))
	assert.Less(t, strings.Index(result, `"quotes"`), strings.Index(result, `"semi"`))
}

func TestJSONFormatter_Format_Global(t *testing.T) {
	t.Parallel()

	result, err := format.NewJSONFormatter().Format([]format.Result{{Rules: ruleset.New()}})
	require.NoError(t, err)

	assert.NotContains(t, result, `"path"`)
	assert.Contains(t, result, `"rules": {}`)
}

func TestSummaryFormatter_Format(t *testing.T) {
	t.Parallel()

	result, err := format.NewSummaryFormatter().Format([]format.Result{
		{Rules: sample(t)},
		{Path: "src/a.test.ts", Rules: sample(t).Enabled()},
	})
	require.NoError(t, err)

	lines := strings.Split(result, "\n")
	require.GreaterOrEqual(t, len(lines), 6)
	assert.True(t, strings.HasPrefix(lines[0], "File"))
	assert.True(t, strings.HasPrefix(lines[2], "(global)"))
	assert.True(t, strings.HasSuffix(lines[2], "       1        1        1        3"))
	assert.True(t, strings.HasPrefix(lines[3], "src/a.test.ts"))
	assert.Equal(t, "5 rules (2 errors, 2 warnings, 1 off) across 2 files", lines[5])
}
