// CLAUDE:SUMMARY Claude adapter — one user MessageParam with text and base64 image blocks.
package adapt

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/hazyhaar/annexe/verb"
)

// claudeAdapter folds the input into a single user message for the
// Anthropic Messages API: an optional prompt joined to the text as one text
// block, followed by one image block per image with explicit image/png
// media type and prefix-free base64 payloads.
func claudeAdapter(_ context.Context, in any, args ...string) (any, error) {
	a := verb.FoldIfSet(in)

	var blocks []anthropic.ContentBlockParamUnion
	if text := resolvePrompt(a, args); text != "" {
		blocks = append(blocks, anthropic.NewTextBlock(text))
	}
	for _, img := range usableImages(a) {
		blocks = append(blocks, anthropic.NewImageBlockBase64("image/png", img.b64))
	}

	return []anthropic.MessageParam{anthropic.NewUserMessage(blocks...)}, nil
}
