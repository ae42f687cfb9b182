// CLAUDE:SUMMARY CSV and head presenters for tabular payloads.
package present

import (
	"context"
	"encoding/csv"
	"strings"

	"github.com/hazyhaar/annexe/attach"
	"github.com/hazyhaar/annexe/load"
)

func csvTable(_ context.Context, a *attach.Attachment) (*attach.Attachment, error) {
	t := a.Payload.(*load.Table)
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	_ = w.Write(t.Headers)
	for _, row := range t.Rows {
		_ = w.Write(row)
	}
	w.Flush()
	a.AppendText(sb.String())
	return a, nil
}

// headRows is how many rows the head presenter shows.
const headRows = 10

func headTable(_ context.Context, a *attach.Attachment) (*attach.Attachment, error) {
	t := a.Payload.(*load.Table)
	rows := t.Rows
	if len(rows) > headRows {
		rows = rows[:headRows]
	}
	grid := append([][]string{t.Headers}, rows...)
	a.AppendText(markdownGrid(grid, len(grid), len(t.Headers)) + "\n")
	return a, nil
}
