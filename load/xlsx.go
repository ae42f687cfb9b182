// CLAUDE:SUMMARY XLSX loader — worksheet cells via sharedStrings resolution, read-only.
package load

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/hazyhaar/annexe/attach"
)

// Sheet is one worksheet: its name and a dense row-major cell grid.
type Sheet struct {
	Name string
	Rows [][]string
}

// Dimensions returns the row and column counts.
func (s *Sheet) Dimensions() (rows, cols int) {
	rows = len(s.Rows)
	for _, r := range s.Rows {
		if len(r) > cols {
			cols = len(r)
		}
	}
	return rows, cols
}

// Workbook is the payload for XLSX inputs. Selected holds the 1-based
// sheets chosen by the pages command; nil means all.
type Workbook struct {
	Path     string
	Sheets   []Sheet
	Selected []int
}

// SheetNumbers returns the effective 1-based sheet selection.
func (w *Workbook) SheetNumbers() []int {
	if w.Selected != nil {
		return w.Selected
	}
	all := make([]int, len(w.Sheets))
	for i := range all {
		all[i] = i + 1
	}
	return all
}

// Sheet returns the sheet with the given 1-based number, or nil.
func (w *Workbook) Sheet(number int) *Sheet {
	if number < 1 || number > len(w.Sheets) {
		return nil
	}
	return &w.Sheets[number-1]
}

var sheetMemberRe = regexp.MustCompile(`^xl/worksheets/sheet(\d+)\.xml$`)

func loadXlsx(_ context.Context, a *attach.Attachment) (any, error) {
	r, err := zip.OpenReader(a.Path)
	if err != nil {
		return nil, fmt.Errorf("load xlsx %s: %w", a.Path, err)
	}
	defer r.Close()

	var shared []string
	sheetNames := map[int]string{}
	sheetsByNumber := map[int][][]string{}

	for _, f := range r.File {
		switch {
		case f.Name == "xl/sharedStrings.xml":
			if raw, err := readZipMember(f); err == nil {
				shared = parseSharedStrings(raw)
			}
		case f.Name == "xl/workbook.xml":
			if raw, err := readZipMember(f); err == nil {
				for i, name := range parseSheetNames(raw) {
					sheetNames[i+1] = name
				}
			}
		}
	}
	for _, f := range r.File {
		m := sheetMemberRe.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		num, _ := strconv.Atoi(m[1])
		raw, err := readZipMember(f)
		if err != nil {
			continue
		}
		sheetsByNumber[num] = parseWorksheet(raw, shared)
	}
	if len(sheetsByNumber) == 0 {
		return nil, fmt.Errorf("load xlsx %s: no worksheets found", a.Path)
	}

	wb := &Workbook{Path: a.Path}
	numbers := make([]int, 0, len(sheetsByNumber))
	for n := range sheetsByNumber {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	for _, n := range numbers {
		name := sheetNames[n]
		if name == "" {
			name = fmt.Sprintf("Sheet%d", n)
		}
		wb.Sheets = append(wb.Sheets, Sheet{Name: name, Rows: sheetsByNumber[n]})
	}

	a.SetPayload(wb)
	a.Record("sheets", len(wb.Sheets))
	return a, nil
}

// parseSharedStrings reads the <si><t> entries of sharedStrings.xml.
func parseSharedStrings(raw string) []string {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var strs []string
	var current strings.Builder
	inT := false

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "si":
				current.Reset()
			case "t":
				inT = true
			}
		case xml.CharData:
			if inT {
				current.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inT = false
			case "si":
				strs = append(strs, current.String())
			}
		}
	}
	return strs
}

// parseSheetNames reads the sheet name attributes from workbook.xml in
// declaration order.
func parseSheetNames(raw string) []string {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var names []string
	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		if t, ok := tok.(xml.StartElement); ok && t.Name.Local == "sheet" {
			for _, attr := range t.Attr {
				if attr.Name.Local == "name" {
					names = append(names, attr.Value)
				}
			}
		}
	}
	return names
}

type xlsxCell struct {
	R string `xml:"r,attr"`
	T string `xml:"t,attr"`
	V string `xml:"v"`
	IS struct {
		T string `xml:"t"`
	} `xml:"is"`
}

type xlsxRow struct {
	Cells []xlsxCell `xml:"c"`
}

type xlsxSheetData struct {
	Rows []xlsxRow `xml:"sheetData>row"`
}

// parseWorksheet decodes one worksheet into a dense grid, resolving shared
// strings and inline strings.
func parseWorksheet(raw string, shared []string) [][]string {
	var sheet xlsxSheetData
	if err := xml.Unmarshal([]byte(raw), &sheet); err != nil {
		return nil
	}
	var grid [][]string
	for _, row := range sheet.Rows {
		var cells []string
		for _, c := range row.Cells {
			col := columnIndex(c.R)
			for len(cells) < col {
				cells = append(cells, "")
			}
			cells = append(cells, cellValue(c, shared))
		}
		grid = append(grid, cells)
	}
	return grid
}

func cellValue(c xlsxCell, shared []string) string {
	switch c.T {
	case "s":
		idx, err := strconv.Atoi(c.V)
		if err == nil && idx >= 0 && idx < len(shared) {
			return shared[idx]
		}
		return ""
	case "inlineStr":
		return c.IS.T
	default:
		return c.V
	}
}

// columnIndex turns a cell reference like "C7" into a 0-based column index.
func columnIndex(ref string) int {
	col := 0
	for _, r := range ref {
		if r >= 'A' && r <= 'Z' {
			col = col*26 + int(r-'A') + 1
		} else {
			break
		}
	}
	if col == 0 {
		return 0
	}
	return col - 1
}
