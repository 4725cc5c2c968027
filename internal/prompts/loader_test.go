package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	prompt, err := Get("generate-system")
	require.NoError(t, err)
	assert.NotEmpty(t, prompt)
}

func TestGetUnknownKey(t *testing.T) {
	_, err := Get("does-not-exist")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does-not-exist")
}

func TestMustGet(t *testing.T) {
	assert.NotPanics(t, func() {
		prompt := MustGet("chat-system")
		assert.NotEmpty(t, prompt)
	})

	assert.Panics(t, func() {
		MustGet("does-not-exist")
	})
}

func TestAllExpectedKeysPresent(t *testing.T) {
	keys := []string{
		"generate-system",
		"generate",
		"ats-score-system",
		"ats-score",
		"analyze-job-system",
		"analyze-job",
		"analyze-resume-system",
		"analyze-resume",
		"chat-system",
	}
	for _, key := range keys {
		_, err := Get(key)
		assert.NoError(t, err, "missing prompt key %q", key)
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		template string
		data     map[string]string
		expected string
	}{
		{
			name:     "single placeholder",
			template: "Hello {{.Name}}!",
			data:     map[string]string{"Name": "World"},
			expected: "Hello World!",
		},
		{
			name:     "multiple placeholders",
			template: "{{.A}} and {{.B}}",
			data:     map[string]string{"A": "foo", "B": "bar"},
			expected: "foo and bar",
		},
		{
			name:     "repeated placeholder",
			template: "{{.X}}-{{.X}}",
			data:     map[string]string{"X": "y"},
			expected: "y-y",
		},
		{
			name:     "unknown placeholder left intact",
			template: "keep {{.Missing}}",
			data:     map[string]string{"Other": "v"},
			expected: "keep {{.Missing}}",
		},
		{
			name:     "empty data",
			template: "static text",
			data:     nil,
			expected: "static text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Format(tt.template, tt.data))
		})
	}
}
