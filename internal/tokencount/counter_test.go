package tokencount

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApproximateCounterFloor(t *testing.T) {
	c := Approximate()

	// Never zero, even for empty or single-character input.
	assert.GreaterOrEqual(t, c.Count(""), 1)
	assert.GreaterOrEqual(t, c.Count("a"), 1)
	assert.Equal(t, 1, c.Count("abc"))
}

func TestApproximateCounterRatio(t *testing.T) {
	c := Approximate()

	tests := []struct {
		text string
		want int
	}{
		{"abcd", 1},
		{"abcdefgh", 2},
		{strings.Repeat("x", 40), 10},
		{strings.Repeat("x", 43), 10},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Count(tt.text), "text of length %d", len(tt.text))
	}
}

func TestApproximateCounterMethod(t *testing.T) {
	assert.Equal(t, MethodApproximate, Approximate().Method())
}

func TestApproximateCounterUnicode(t *testing.T) {
	c := Approximate()

	// Arbitrary Unicode must be counted, not rejected.
	assert.Greater(t, c.Count("こんにちは、世界"), 0)
	assert.Greater(t, c.Count("héllo wörld 🌍"), 0)
}

// ForModel must be total: whatever the model name, it returns a working
// counter, degrading silently when no encoding resolves.
func TestForModelNeverFails(t *testing.T) {
	for _, model := range []string{"gpt-4", "llama3-70b-8192", "no-such-model", ""} {
		c := ForModel(model)
		require.NotNil(t, c, "model %q", model)

		assert.GreaterOrEqual(t, c.Count(""), 0)
		assert.Greater(t, c.Count("hello world"), 0)
		assert.Contains(t, []string{MethodTiktoken, MethodApproximate}, c.Method())
	}
}
