package adapt

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hazyhaar/annexe/attach"
)

func TestClaude_PromptTextAndImage(t *testing.T) {
	// WHAT: Prompt joins text with a blank line; the image block carries
	// prefix-free base64 with the png media type.
	// WHY: The Anthropic Messages API rejects data-URL payloads.
	a := attach.New("x")
	a.AppendText("hello")
	a.AppendImage("aGVsbG8=")

	out, err := claudeAdapter(context.Background(), a, "describe")
	if err != nil {
		t.Fatal(err)
	}
	js, err := json.Marshal(out)
	if err != nil {
		t.Fatal(err)
	}
	s := string(js)
	if !strings.Contains(s, `"role":"user"`) {
		t.Fatalf("json = %s", s)
	}
	if !strings.Contains(s, `describe\n\nhello`) {
		t.Fatalf("json = %s", s)
	}
	if !strings.Contains(s, `"data":"aGVsbG8="`) || !strings.Contains(s, `"media_type":"image/png"`) {
		t.Fatalf("json = %s", s)
	}
	if strings.Contains(s, "data:image/png") {
		t.Fatal("claude shape must not carry data URLs")
	}
}

func TestClaude_StripsDataURLAndPlaceholders(t *testing.T) {
	// WHAT: Data-URL entries lose their prefix; placeholders vanish.
	// WHY: Buffers mix both entry forms.
	a := attach.New("x")
	a.AppendImage("data:image/png;base64,QUJD")
	a.AppendImage("loading_placeholder")

	out, err := claudeAdapter(context.Background(), a)
	if err != nil {
		t.Fatal(err)
	}
	js, _ := json.Marshal(out)
	s := string(js)
	if !strings.Contains(s, `"data":"QUJD"`) {
		t.Fatalf("json = %s", s)
	}
	if strings.Contains(s, "placeholder") {
		t.Fatal("placeholder leaked into output")
	}
}

func TestClaude_CommandPromptLosesToArgument(t *testing.T) {
	// WHAT: The adapter argument overrides the prompt command.
	// WHY: Parameter wins is the documented precedence.
	a := attach.New("x[prompt:from_command]")
	a.AppendText("body")
	out, _ := claudeAdapter(context.Background(), a, "from_arg")
	js, _ := json.Marshal(out)
	if !strings.Contains(string(js), "from_arg") || strings.Contains(string(js), "from_command") {
		t.Fatalf("json = %s", js)
	}
}

func TestOpenAIChat_WrapsRawBase64(t *testing.T) {
	// WHAT: Raw base64 becomes a data URL; existing data URLs pass through.
	// WHY: Chat Completions wants image_url parts.
	a := attach.New("x")
	a.AppendText("hi")
	a.AppendImage("QUJD")
	a.AppendImage("data:image/png;base64,REVG")

	out, err := openaiChatAdapter(context.Background(), a)
	if err != nil {
		t.Fatal(err)
	}
	js, _ := json.Marshal(out)
	s := string(js)
	if strings.Count(s, "data:image/png;base64,") != 2 {
		t.Fatalf("json = %s", s)
	}
	if !strings.Contains(s, "data:image/png;base64,QUJD") {
		t.Fatalf("json = %s", s)
	}
}

func TestPlain_SetFolds(t *testing.T) {
	// WHAT: A set folds into one user message with combined text.
	// WHY: Adapters are reducers.
	a := attach.New("a")
	a.AppendText("one")
	b := attach.New("b")
	b.AppendText("two")

	out, err := plainAdapter(context.Background(), attach.NewSet(a, b))
	if err != nil {
		t.Fatal(err)
	}
	msgs := out.([]map[string]any)
	if len(msgs) != 1 || msgs[0]["role"] != "user" {
		t.Fatalf("msgs = %v", msgs)
	}
	content := msgs[0]["content"].([]map[string]any)
	if content[0]["text"] != "one\n\ntwo" {
		t.Fatalf("content = %v", content)
	}
}

func TestResolvePrompt_Shapes(t *testing.T) {
	// WHAT: Empty prompt yields text alone; empty text yields prompt alone.
	// WHY: No stray blank lines in degenerate cases.
	a := attach.New("x")
	a.AppendText("body")
	if got := resolvePrompt(a, nil); got != "body" {
		t.Fatalf("got %q", got)
	}
	b := attach.New("y")
	if got := resolvePrompt(b, []string{"ask"}); got != "ask" {
		t.Fatalf("got %q", got)
	}
}
