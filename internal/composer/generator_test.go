package composer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adaptivebank/genui/internal/traits"
)

func TestStripFences(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{`{"version":"1.0"}`, `{"version":"1.0"}`},
		{"```json\n{\"version\":\"1.0\"}\n```", `{"version":"1.0"}`},
		{"```\n{\"version\":\"1.0\"}\n```", `{"version":"1.0"}`},
		{"  \n```json\n{\"version\":\"1.0\"}\n```  \n", `{"version":"1.0"}`},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.expected, stripFences(tc.input))
	}
}

func TestBuildUserPrompt_ContainsTraitAggregates(t *testing.T) {
	snapshot := traits.Default()
	snapshot.FXAffinity = 0.8
	snapshot.LastPaths = []string{"/payments/utilities"}
	snapshot.Locale = traits.LocaleTR

	prompt, err := buildUserPrompt(snapshot)
	require.NoError(t, err)

	assert.Contains(t, prompt, `"fxAffinity": 0.8`)
	assert.Contains(t, prompt, "/payments/utilities")
	assert.Contains(t, prompt, `"locale": "tr"`)
}

func TestBuildUserPrompt_CapsSearchTermsAtFive(t *testing.T) {
	snapshot := traits.Default()
	for _, term := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		snapshot.SearchTerms = append(snapshot.SearchTerms, traits.SearchTerm{Term: term, Count: 1})
	}

	prompt, err := buildUserPrompt(snapshot)
	require.NoError(t, err)

	assert.Contains(t, prompt, `"term": "e"`)
	assert.NotContains(t, prompt, `"term": "f"`)
	assert.Equal(t, 5, strings.Count(prompt, `"term":`))
}
