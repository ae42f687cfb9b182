package attach

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_NoIO(t *testing.T) {
	// WHAT: Construction parses the DSL and nothing else.
	// WHY: Attachments for nonexistent paths must still construct.
	a := New("/does/not/exist.pdf[pages:1]")
	if a.Path != "/does/not/exist.pdf" {
		t.Fatalf("path = %q", a.Path)
	}
	if a.Commands["pages"] != "1" {
		t.Fatalf("commands = %v", a.Commands)
	}
	if a.HasPayload() || a.Text != "" || len(a.Images) != 0 {
		t.Fatal("new attachment should be empty")
	}
}

func TestSetPayload_FirstWins(t *testing.T) {
	// WHAT: Only the first SetPayload takes effect.
	// WHY: Loader chains rely on later loaders no-opping.
	a := New("x")
	if !a.SetPayload("first") {
		t.Fatal("first SetPayload should succeed")
	}
	if a.SetPayload("second") {
		t.Fatal("second SetPayload should be refused")
	}
	if a.Payload != "first" {
		t.Fatalf("payload = %v", a.Payload)
	}
}

func TestClose_Idempotent_ReleasesLIFO(t *testing.T) {
	// WHAT: Close runs closers in reverse order, exactly once.
	// WHY: Decoder handles must release before the files they hold open.
	a := New("x")
	var order []string
	a.OnClose(func() error { order = append(order, "first"); return nil })
	a.OnClose(func() error { order = append(order, "second"); return nil })
	if err := a.Close(); err != nil {
		t.Fatal(err)
	}
	if err := a.Close(); err != nil {
		t.Fatal(err)
	}
	if len(order) != 2 || order[0] != "second" || order[1] != "first" {
		t.Fatalf("release order = %v", order)
	}
}

func TestClose_DeletesTempFiles(t *testing.T) {
	// WHAT: Registered temp files are gone after Close.
	// WHY: Downloaded intermediates must not leak onto disk.
	tmp := filepath.Join(t.TempDir(), "leftover.pdf")
	if err := os.WriteFile(tmp, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	a := New("x")
	a.AddTempFile(tmp)
	_ = a.Close()
	if _, err := os.Stat(tmp); !os.IsNotExist(err) {
		t.Fatalf("temp file still exists: %v", err)
	}
}

func TestString_ElidesBase64(t *testing.T) {
	// WHAT: The repr shows a 30+10 char preview, never the full blob.
	// WHY: Logging an attachment must not dump megabytes of base64.
	a := New("pic.png")
	blob := strings.Repeat("A", 5000)
	a.AppendImage("skip_placeholder")
	a.AppendImage(blob)
	s := a.String()
	if strings.Contains(s, blob) {
		t.Fatal("repr contains the full blob")
	}
	if !strings.Contains(s, blob[:30]+"…"+blob[len(blob)-10:]) {
		t.Fatalf("repr missing preview: %s", s)
	}
}

func TestRecordError_Key(t *testing.T) {
	// WHAT: Verb failures land under <name>_error.
	// WHY: Consumers key on that suffix for diagnostics.
	a := New("x")
	a.RecordError("screenshot", os.ErrPermission)
	if _, ok := a.Metadata["screenshot_error"]; !ok {
		t.Fatalf("metadata = %v", a.Metadata)
	}
}
