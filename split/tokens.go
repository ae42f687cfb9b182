// CLAUDE:SUMMARY Token splitter — tiktoken counts with a word-scaled fallback estimator.
package split

import (
	"context"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/hazyhaar/annexe/attach"
)

var (
	encOnce sync.Once
	encoder *tiktoken.Tiktoken
)

// countTokens estimates the token count of a text. tiktoken's cl100k_base
// is used when its vocabulary can be loaded; otherwise the classic
// words × 4/3 heuristic applies.
func countTokens(text string) int {
	encOnce.Do(func() {
		if enc, err := tiktoken.GetEncoding("cl100k_base"); err == nil {
			encoder = enc
		}
	})
	if encoder != nil {
		return len(encoder.Encode(text, nil, nil))
	}
	words := len(strings.Fields(text))
	return (words*4 + 2) / 3
}

// splitTokens cuts the text into chunks of approximately split_tokens
// tokens (default 500), breaking on paragraph boundaries where possible.
func splitTokens(_ context.Context, in any) (any, error) {
	a, ok := in.(*attach.Attachment)
	if !ok {
		return in, nil
	}
	budget := a.Commands.Int("split_tokens", 500)
	if budget < 1 {
		return nil, attach.InvalidValue("split_tokens", a.Commands.Get("split_tokens"), "budget must be positive")
	}

	var pieces []string
	var current strings.Builder
	currentTokens := 0
	for _, para := range splitParagraphs(a.Text) {
		t := countTokens(para)
		if currentTokens > 0 && currentTokens+t > budget {
			pieces = append(pieces, current.String())
			current.Reset()
			currentTokens = 0
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
		currentTokens += t
	}
	if current.Len() > 0 {
		pieces = append(pieces, current.String())
	}

	set := chunked(a, "tokens", pieces)
	for _, c := range set.Items {
		c.Record("estimated_tokens", countTokens(c.Text))
	}
	return set, nil
}
