package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain json", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"fence with language", "```yaml\nfoo: bar\n```", "foo: bar"},
		{"surrounding whitespace", "  \n{\"a\": 1}\n ", `{"a": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(errors.New("googleapi: Error 429: rate limit exceeded")))
	assert.True(t, IsTransient(errors.New("rpc error: code = Unavailable desc = service unavailable")))
	assert.True(t, IsTransient(errors.New("no endpoints found for model")))
	assert.False(t, IsTransient(errors.New("invalid API key")))
	assert.False(t, IsTransient(nil))
}

func TestDefaultPrice(t *testing.T) {
	assert.InDelta(t, 1.25, DefaultPrice("gemini-2.5-flash", 1_000_000), 1e-9)
	// Unknown models keep the provisional placeholder rate.
	assert.InDelta(t, 0.01, DefaultPrice("mystery-model", 1000), 1e-9)
}
