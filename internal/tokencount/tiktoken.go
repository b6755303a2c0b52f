package tokencount

import (
	"github.com/pkoukk/tiktoken-go"
)

// fallbackEncoding is used for models tiktoken has no mapping for.
// cl100k_base is a reasonable approximation across providers.
const fallbackEncoding = "cl100k_base"

type tiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

// ForModel returns the best available counter for a model. It tries the
// model's own tiktoken encoding, then cl100k_base, and finally degrades to
// the approximate counter. It never fails; callers that care about the
// degradation should check Method().
func ForModel(model string) Counter {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			return Approximate()
		}
	}
	return &tiktokenCounter{enc: enc}
}

func (c *tiktokenCounter) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

func (c *tiktokenCounter) Method() string {
	return MethodTiktoken
}
