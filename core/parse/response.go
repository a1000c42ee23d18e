package parse

import (
	"fmt"

	"github.com/withceleste/celeste/core/envelope"
)

// ResponseAs extracts the text content of a generation response and parses it
// into the target type T. It is the bridge between a raw provider reply and a
// caller-defined structured output type.
//
// Example:
//
//	type Sentiment struct {
//	    Label string  `json:"label"`
//	    Score float64 `json:"score"`
//	}
//
//	result, err := client.Generate(ctx, req)
//	sentiment, err := parse.ResponseAs[Sentiment](result.Response)
func ResponseAs[T any](resp *envelope.Response) (T, error) {
	var zero T
	if resp == nil {
		return zero, fmt.Errorf("cannot parse nil response")
	}

	text := resp.Text()
	if text == "" {
		return zero, fmt.Errorf("response has no text content to parse")
	}

	return ParseStringAs[T](text)
}
