// Package tokencount estimates how many tokens a piece of text costs for a
// given model. A precise tiktoken-based counter is used when an encoding can
// be resolved for the model; otherwise counting degrades to a character
// heuristic.
package tokencount

// Counting method identifiers, surfaced in context stats.
const (
	MethodTiktoken    = "tiktoken"
	MethodApproximate = "approximate"
)

// Counter converts a text string into a token count.
// Count is total: it accepts empty strings and arbitrary Unicode and never
// returns a negative number.
type Counter interface {
	Count(text string) int

	// Method returns which counting strategy is in use.
	Method() string
}

type approximateCounter struct{}

// Approximate returns the heuristic counter: roughly 4 characters per token,
// never less than 1. It is the fallback when no tokenizer is available for
// the configured model.
func Approximate() Counter {
	return approximateCounter{}
}

func (approximateCounter) Count(text string) int {
	n := len(text) / 4
	if n < 1 {
		return 1
	}
	return n
}

func (approximateCounter) Method() string {
	return MethodApproximate
}
