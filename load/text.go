// CLAUDE:SUMMARY Text and CSV loaders — TextBlob and Table payloads.
package load

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/hazyhaar/annexe/attach"
)

// TextBlob is the payload for plain text inputs.
type TextBlob struct {
	Content string
}

// Table is the payload for tabular inputs. The first CSV record becomes the
// header row.
type Table struct {
	Headers []string
	Rows    [][]string
}

func loadText(_ context.Context, a *attach.Attachment) (any, error) {
	data, err := os.ReadFile(a.Path)
	if err != nil {
		return nil, fmt.Errorf("load text %s: %w", a.Path, err)
	}
	a.SetPayload(&TextBlob{Content: string(data)})
	a.Record("file_size", len(data))
	return a, nil
}

func loadCSV(_ context.Context, a *attach.Attachment) (any, error) {
	f, err := os.Open(a.Path)
	if err != nil {
		return nil, fmt.Errorf("load csv %s: %w", a.Path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	if strings.HasSuffix(strings.ToLower(a.Path), ".tsv") {
		r.Comma = '\t'
	}
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("load csv %s: %w", a.Path, err)
	}

	t := &Table{}
	if len(records) > 0 {
		t.Headers = records[0]
		t.Rows = records[1:]
	}
	a.SetPayload(t)
	a.Record("rows", len(t.Rows))
	a.Record("columns", len(t.Headers))
	return a, nil
}
