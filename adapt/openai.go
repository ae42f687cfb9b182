// CLAUDE:SUMMARY OpenAI chat adapter — one user message with text and image_url parts.
package adapt

import (
	"context"

	"github.com/openai/openai-go/v3"

	"github.com/hazyhaar/annexe/verb"
)

// openaiChatAdapter folds the input into a single user message for the
// Chat Completions API. Data-URL images forward as-is; raw base64 is
// wrapped into a data URL.
func openaiChatAdapter(_ context.Context, in any, args ...string) (any, error) {
	a := verb.FoldIfSet(in)

	var parts []openai.ChatCompletionContentPartUnionParam
	if text := resolvePrompt(a, args); text != "" {
		parts = append(parts, openai.ChatCompletionContentPartUnionParam{
			OfText: &openai.ChatCompletionContentPartTextParam{Text: text},
		})
	}
	for _, img := range usableImages(a) {
		parts = append(parts, openai.ChatCompletionContentPartUnionParam{
			OfImageURL: &openai.ChatCompletionContentPartImageParam{
				ImageURL: openai.ChatCompletionContentPartImageImageURLParam{
					URL: img.asDataURL(),
				},
			},
		})
	}

	return []openai.ChatCompletionMessageParamUnion{openai.UserMessage(parts)}, nil
}
