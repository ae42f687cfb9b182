package proc

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hazyhaar/annexe/attach"
	"github.com/hazyhaar/annexe/verb"
)

func TestDiscovery_PDFMatches(t *testing.T) {
	// WHAT: A .pdf input resolves to the PDF processor.
	// WHY: Discovery is suffix-driven and ordered.
	p := verb.FindPrimary(attach.New("report.pdf[pages:1]"))
	if p == nil || !strings.Contains(p.Description, "PDF") {
		t.Fatalf("processor = %+v", p)
	}
}

func TestDiscovery_UnknownFallsThrough(t *testing.T) {
	// WHAT: Unmatched inputs return nil so the universal chain runs.
	// WHY: There must always be a path to some output.
	if p := verb.FindPrimary(attach.New("mystery.xyz")); p != nil {
		t.Fatalf("processor = %+v", p)
	}
}

func TestUniversal_PlainText(t *testing.T) {
	// WHAT: The fallback presents a text file end to end.
	// WHY: This is the whole point of the tolerant chain.
	path := filepath.Join(t.TempDir(), "notes.xyz")
	if err := os.WriteFile(path, []byte("just some notes"), 0o600); err != nil {
		t.Fatal(err)
	}
	out, err := Universal().Run(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	a := out.(*attach.Attachment)
	if !strings.Contains(a.Text, "just some notes") {
		t.Fatalf("text = %q", a.Text)
	}
	// add_headers ran.
	if !strings.HasPrefix(a.Text, "# ") {
		t.Fatalf("text = %q", a.Text)
	}
}

func TestUniversal_MissingFileReadableError(t *testing.T) {
	// WHAT: A nonexistent path yields readable error text, not a failure.
	// WHY: The universal pipeline degrades, it does not abort.
	out, err := Universal().Run(context.Background(), "/no/such/file.xyz")
	if err != nil {
		t.Fatal(err)
	}
	a := out.(*attach.Attachment)
	if !strings.Contains(a.Text, "Could not read") {
		t.Fatalf("text = %q", a.Text)
	}
	if a.Metadata["load_error"] == nil {
		t.Fatalf("metadata = %v", a.Metadata)
	}
}

func TestUniversal_TruncatesHugeText(t *testing.T) {
	// WHAT: Output beyond 5000 chars is cut to the 3000-char budget.
	// WHY: The fallback bounds its own output.
	path := filepath.Join(t.TempDir(), "big.xyz")
	if err := os.WriteFile(path, []byte(strings.Repeat("word ", 3000)), 0o600); err != nil {
		t.Fatal(err)
	}
	out, err := Universal().Run(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	a := out.(*attach.Attachment)
	if n := len([]rune(a.Text)); n > 3100 {
		t.Fatalf("text length = %d", n)
	}
	proc, _ := a.Metadata["processing"].(map[string]any)
	if proc == nil || proc["operation"] != "truncate" {
		t.Fatalf("processing = %v", a.Metadata["processing"])
	}
}

func TestRun_DirectoryStructureMode(t *testing.T) {
	// WHAT: mode:structure on a directory opens with the structure heading
	// and honors max_files.
	// WHY: End-to-end check of discovery, loading, and the mode branch.
	root := t.TempDir()
	for _, name := range []string{"a.go", "b.go", "c.go"} {
		if err := os.WriteFile(filepath.Join(root, name), []byte("package x\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	out, err := Run(context.Background(), root+"[mode:structure][max_files:2]")
	if err != nil {
		t.Fatal(err)
	}
	a := out.(*attach.Attachment)
	if !strings.HasPrefix(a.Text, "# Directory Structure:") {
		t.Fatalf("text = %q", a.Text)
	}
	if count, ok := a.Metadata["file_count"].(int); !ok || count > 2 {
		t.Fatalf("file_count = %v", a.Metadata["file_count"])
	}
}

func TestRun_CSVPipeline(t *testing.T) {
	// WHAT: A csv input flows through limit and markdown presenting.
	// WHY: The tabular pipeline composes modifier and presenter gates.
	path := filepath.Join(t.TempDir(), "d.csv")
	if err := os.WriteFile(path, []byte("name,age\nada,36\nalan,41\ngrace,85\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	out, err := Run(context.Background(), path+"[limit:2]")
	if err != nil {
		t.Fatal(err)
	}
	a := out.(*attach.Attachment)
	if !strings.Contains(a.Text, "| name | age |") {
		t.Fatalf("text = %q", a.Text)
	}
	if strings.Contains(a.Text, "grace") {
		t.Fatal("limit:2 leaked the third row")
	}
}

func TestWhenCommand_Gates(t *testing.T) {
	// WHAT: whenCommand runs its step only when the key is present.
	// WHY: tile must stay inert without a tile command.
	ran := false
	inner := probeStep{fn: func() { ran = true }}
	step := whenCommand("tile", inner)

	a := attach.New("x")
	if _, err := step.Run(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	if ran {
		t.Fatal("step ran without the command")
	}
	b := attach.New("x[tile:2x2]")
	if _, err := step.Run(context.Background(), b); err != nil {
		t.Fatal(err)
	}
	if !ran {
		t.Fatal("step should run with the command")
	}
}

type probeStep struct{ fn func() }

func (p probeStep) Name() string { return "probe" }

func (p probeStep) Run(_ context.Context, in any) (any, error) {
	p.fn()
	return in, nil
}
