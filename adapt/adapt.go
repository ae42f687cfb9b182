// CLAUDE:SUMMARY Adapter registration and the shared prompt/image normalization helpers.
// Package adapt folds attachments into provider-shaped message sequences.
// Adapters are reducers: a set is folded into one attachment first. They do
// not catch errors — malformed input at adapter time is a caller bug.
package adapt

import (
	"strings"

	"github.com/hazyhaar/annexe/attach"
	"github.com/hazyhaar/annexe/verb"
)

func init() {
	verb.RegisterAdapter("claude", claudeAdapter)
	verb.RegisterAdapter("openai_chat", openaiChatAdapter)
	verb.RegisterAdapter("messages", plainAdapter)
}

// resolvePrompt prefers the adapter argument over the prompt command, then
// joins prompt and text with a blank line.
func resolvePrompt(a *attach.Attachment, args []string) string {
	prompt := ""
	if len(args) > 0 {
		prompt = args[0]
	}
	if prompt == "" {
		prompt = a.Commands.Get("prompt")
	}
	switch {
	case prompt == "":
		return a.Text
	case a.Text == "":
		return prompt
	default:
		return prompt + "\n\n" + a.Text
	}
}

// usableImages filters placeholders and reports each entry's raw base64
// (prefix stripped) plus whether it arrived as a data URL.
func usableImages(a *attach.Attachment) []imageEntry {
	var out []imageEntry
	for _, img := range a.Images {
		if strings.HasSuffix(img, "_placeholder") {
			continue
		}
		e := imageEntry{raw: img}
		if i := strings.Index(img, "base64,"); i >= 0 && strings.HasPrefix(img, "data:") {
			e.b64 = img[i+len("base64,"):]
			e.dataURL = true
		} else {
			e.b64 = img
		}
		out = append(out, e)
	}
	return out
}

type imageEntry struct {
	raw     string
	b64     string // always prefix-free
	dataURL bool
}

// asDataURL returns the entry as a data URL, wrapping raw base64.
func (e imageEntry) asDataURL() string {
	if e.dataURL {
		return e.raw
	}
	return "data:image/png;base64," + e.b64
}
