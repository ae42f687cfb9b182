package annexe

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAttachments_ErrorIsolation(t *testing.T) {
	// WHAT: A failing input yields a ⚠️ artifact; the good one still loads.
	// WHY: One bad path must not sink a batch.
	good := filepath.Join(t.TempDir(), "ok.txt")
	if err := os.WriteFile(good, []byte("fine"), 0o600); err != nil {
		t.Fatal(err)
	}

	atts, err := Attachments(context.Background(), good, "/definitely/not/here.pdf")
	if err != nil {
		t.Fatal(err)
	}
	defer atts.Close()

	if atts.Set.Len() != 2 {
		t.Fatalf("len = %d", atts.Set.Len())
	}
	bad := atts.Set.Items[1]
	if !strings.Contains(bad.Text, "⚠️ Could not process /definitely/not/here.pdf") {
		t.Fatalf("text = %q", bad.Text)
	}
	if bad.Metadata["error"] == nil || bad.Metadata["path"] != "/definitely/not/here.pdf" {
		t.Fatalf("metadata = %v", bad.Metadata)
	}
}

func TestAttachments_NoInputs(t *testing.T) {
	// WHAT: Zero inputs is the one construction error.
	// WHY: An empty result would hide a caller bug.
	if _, err := Attachments(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestAttachments_DirectoryExpansion(t *testing.T) {
	// WHAT: files mode expands a directory into per-file attachments.
	// WHY: The directory map marker drives facade-level expansion.
	root := t.TempDir()
	for _, name := range []string{"one.txt", "two.txt"} {
		if err := os.WriteFile(filepath.Join(root, name), []byte("content of "+name), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	atts, err := Attachments(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	defer atts.Close()

	if atts.Set.Len() != 2 {
		t.Fatalf("len = %d, want one attachment per file", atts.Set.Len())
	}
	text := atts.Text()
	if !strings.Contains(text, "content of one.txt") || !strings.Contains(text, "content of two.txt") {
		t.Fatalf("text = %q", text)
	}
}

func TestResult_Messages(t *testing.T) {
	// WHAT: The neutral adapter folds the whole collection.
	// WHY: Convenience accessors must round through the registry.
	path := filepath.Join(t.TempDir(), "m.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o600); err != nil {
		t.Fatal(err)
	}
	atts, err := Attachments(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	defer atts.Close()

	msgs, err := atts.Messages("greet")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 || msgs[0]["role"] != "user" {
		t.Fatalf("msgs = %v", msgs)
	}
	content := msgs[0]["content"].([]map[string]any)
	if !strings.HasPrefix(content[0]["text"].(string), "greet\n\n") {
		t.Fatalf("content = %v", content)
	}
}

func TestProcess_SingleInput(t *testing.T) {
	// WHAT: Process returns the raw pipeline value.
	// WHY: Power users skip the facade's collection layer.
	path := filepath.Join(t.TempDir(), "p.txt")
	if err := os.WriteFile(path, []byte("raw"), 0o600); err != nil {
		t.Fatal(err)
	}
	out, err := Process(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if out == nil {
		t.Fatal("nil result")
	}
}
