// CLAUDE:SUMMARY SDK-free adapter — generic map-shaped messages for custom clients.
package adapt

import (
	"context"

	"github.com/hazyhaar/annexe/verb"
)

// plainAdapter emits the provider-neutral shape: one user message whose
// content is a list of {type:text} and {type:image_url} parts. Useful for
// callers speaking to OpenAI-compatible endpoints without an SDK.
func plainAdapter(_ context.Context, in any, args ...string) (any, error) {
	a := verb.FoldIfSet(in)

	var content []map[string]any
	if text := resolvePrompt(a, args); text != "" {
		content = append(content, map[string]any{"type": "text", "text": text})
	}
	for _, img := range usableImages(a) {
		content = append(content, map[string]any{
			"type":      "image_url",
			"image_url": map[string]any{"url": img.asDataURL()},
		})
	}

	return []map[string]any{{"role": "user", "content": content}}, nil
}
