package flags

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChoiceUsage(t *testing.T) {
	testCases := []struct {
		name           string
		choice         Choice
		description    string
		expectedOutput string
	}{
		{
			name:           "DefaultFirstChoice",
			choice:         Choice{Name: "remote protocol", DefaultChoice: "ssh", Choices: []string{"ssh", "https"}},
			description:    "Protocol used for the destination remote.",
			expectedOutput: "`<SSH|https>` Protocol used for the destination remote.",
		},
		{
			name:           "DefaultSecondChoice",
			choice:         Choice{Name: "log format", DefaultChoice: "console", Choices: []string{"structured", "console"}},
			description:    "Log encoding.",
			expectedOutput: "`<structured|CONSOLE>` Log encoding.",
		},
		{
			name:           "EmptyDescriptionAndDuplicates",
			choice:         Choice{Name: "remote protocol", DefaultChoice: "https", Choices: []string{"ssh", "https", "SSH"}},
			expectedOutput: "`<ssh|HTTPS>`",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			require.Equal(t, testCase.expectedOutput, testCase.choice.Usage(testCase.description))
		})
	}
}

func TestChoiceNormalize(t *testing.T) {
	choice := Choice{Name: "remote protocol", DefaultChoice: "ssh", Choices: []string{"ssh", "https"}}

	normalized, normalizeError := choice.Normalize(" HTTPS ")
	require.NoError(t, normalizeError)
	require.Equal(t, "https", normalized)

	normalized, normalizeError = choice.Normalize("")
	require.NoError(t, normalizeError)
	require.Equal(t, "ssh", normalized)

	_, normalizeError = choice.Normalize("git")
	require.EqualError(t, normalizeError, `unsupported remote protocol "git": expected one of ssh, https`)
}
