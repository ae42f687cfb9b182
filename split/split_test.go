package split

import (
	"context"
	"testing"

	"github.com/hazyhaar/annexe/attach"
	"github.com/hazyhaar/annexe/load"
)

func textAttachment(text string) *attach.Attachment {
	a := attach.New("doc.txt")
	a.AppendText(text)
	return a
}

func TestSplitParagraphs(t *testing.T) {
	// WHAT: Blank lines delimit chunks; chunks carry provenance metadata.
	// WHY: total_chunks and chunk_index drive downstream batching.
	out, err := byText("paragraphs", splitParagraphs)(context.Background(), textAttachment("one\n\ntwo\n\n\nthree"))
	if err != nil {
		t.Fatal(err)
	}
	set := out.(*attach.Set)
	if set.Len() != 3 {
		t.Fatalf("len = %d", set.Len())
	}
	first := set.Items[0]
	if first.Text != "one" || first.Metadata["chunked_by"] != "paragraphs" {
		t.Fatalf("first = %q %v", first.Text, first.Metadata)
	}
	if first.Metadata["total_chunks"] != 3 || set.Items[2].Metadata["chunk_index"] != 2 {
		t.Fatalf("metadata = %v", first.Metadata)
	}
}

func TestSplit_InheritsCommands(t *testing.T) {
	// WHAT: Chunks clone the parent's commands.
	// WHY: The DSL keeps steering after a split.
	a := attach.New("doc.txt[prompt:hi]")
	a.AppendText("alpha\n\nbeta")
	out, _ := byText("paragraphs", splitParagraphs)(context.Background(), a)
	for _, c := range out.(*attach.Set).Items {
		if c.Commands["prompt"] != "hi" {
			t.Fatalf("commands = %v", c.Commands)
		}
	}
}

func TestSplitCharacters_WindowSize(t *testing.T) {
	// WHAT: Fixed windows of the configured rune size.
	// WHY: Character splitting is the size-exact fallback.
	a := textAttachment("abcdefghij")
	a.Commands["split_characters"] = "4"
	out, err := splitCharacters(context.Background(), a)
	if err != nil {
		t.Fatal(err)
	}
	set := out.(*attach.Set)
	if set.Len() != 3 || set.Items[0].Text != "abcd" || set.Items[2].Text != "ij" {
		t.Fatalf("chunks = %v", set.Paths())
	}
}

func TestSplitTokens_RecordsEstimate(t *testing.T) {
	// WHAT: Every token chunk records estimated_tokens.
	// WHY: Consumers budget requests on that metadatum.
	a := textAttachment("alpha beta gamma\n\ndelta epsilon zeta\n\neta theta iota")
	a.Commands["split_tokens"] = "5"
	out, err := splitTokens(context.Background(), a)
	if err != nil {
		t.Fatal(err)
	}
	set := out.(*attach.Set)
	if set.Len() < 2 {
		t.Fatalf("len = %d", set.Len())
	}
	for _, c := range set.Items {
		if _, ok := c.Metadata["estimated_tokens"]; !ok {
			t.Fatalf("metadata = %v", c.Metadata)
		}
	}
}

func TestSplitCustom_RequiresSeparator(t *testing.T) {
	// WHAT: A missing separator is an InvalidValue error.
	// WHY: Splitting on "" would explode into runes.
	if _, err := splitCustom(context.Background(), textAttachment("x")); err == nil {
		t.Fatal("expected error")
	}
}

func TestSplitRows_CarriesHeader(t *testing.T) {
	// WHAT: Each row chunk repeats the header line.
	// WHY: Rows without context are useless to a model.
	a := attach.New("d.csv")
	a.SetPayload(&load.Table{
		Headers: []string{"name", "age"},
		Rows:    [][]string{{"ada", "36"}, {"alan", "41"}},
	})
	out, err := splitRows(context.Background(), a)
	if err != nil {
		t.Fatal(err)
	}
	set := out.(*attach.Set)
	if set.Len() != 2 {
		t.Fatalf("len = %d", set.Len())
	}
	if set.Items[1].Text != "name\tage\nalan\t41" {
		t.Fatalf("chunk = %q", set.Items[1].Text)
	}
}

func TestSplitPages_PDF(t *testing.T) {
	// WHAT: A paged payload splits along its page selection.
	// WHY: Page chunks must honor a prior pages command.
	a := attach.New("d.pdf")
	a.SetPayload(&load.PDFDoc{
		PageCount: 3,
		PageTexts: []string{"p1", "p2", "p3"},
		Selected:  []int{2, 3},
	})
	out, err := splitPages(context.Background(), a)
	if err != nil {
		t.Fatal(err)
	}
	set := out.(*attach.Set)
	if set.Len() != 2 || set.Items[0].Text != "[Page 2]\np2" {
		t.Fatalf("chunks = %d %q", set.Len(), set.Items[0].Text)
	}
}
