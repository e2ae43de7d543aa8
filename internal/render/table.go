package render

import (
	"fmt"
	"strings"

	"github.com/dgallion1/reportgen/internal/doctree"
	"github.com/fumiama/go-docx"
)

func (b *Builder) table(t *doctree.TableData, mode Mode) error {
	if t == nil || len(t.Headers) == 0 {
		return fmt.Errorf("table has no headers")
	}
	if mode == ModeProse {
		b.proseTable(t)
		return nil
	}
	b.gridTable(t, mode == ModeTableHighlighted)
	return nil
}

// proseTable writes each row as one sentence. The caption, if any, is an
// unnumbered bold lead-in.
func (b *Builder) proseTable(t *doctree.TableData) {
	if c := strings.TrimSpace(t.Caption); c != "" {
		p := b.file.AddParagraph()
		p.Children = append(p.Children, spanRuns(c, true, false)...)
	}
	for _, row := range t.Rows {
		p := b.file.AddParagraph()
		p.Children = append(p.Children, spanRuns(proseRow(t.Headers, row), false, false)...)
	}
}

// proseRow formats "<first>: <H2>: <v2>; <H3>: <v3>." Empty cells are
// skipped.
func proseRow(headers, row []string) string {
	var first string
	if len(row) > 0 {
		first = strings.TrimSpace(row[0])
	}
	var parts []string
	for i := 1; i < len(row) && i < len(headers); i++ {
		v := strings.TrimSpace(row[i])
		if v == "" {
			continue
		}
		parts = append(parts, strings.TrimSpace(headers[i])+": "+v)
	}
	line := first
	if len(parts) > 0 {
		if line != "" {
			line += ": "
		}
		line += strings.Join(parts, "; ")
	}
	if !strings.HasSuffix(line, ".") {
		line += "."
	}
	return line
}

func (b *Builder) gridTable(t *doctree.TableData, highlighted bool) {
	brand := b.opts.Brand
	if strings.TrimSpace(t.Caption) != "" {
		b.caption("table", t.Caption)
	}

	cols := len(t.Headers)
	widths := columnWidths(t.ColumnWidths, cols)
	var total int64
	for _, w := range widths {
		total += w
	}

	border := "#" + brand.BorderColor
	tbl := b.file.AddTableTwips(make([]int64, len(t.Rows)+1), widths, total, &docx.APITableBorderColors{
		Top: border, Left: border, Bottom: border, Right: border, InsideH: border, InsideV: border,
	})

	for c, cell := range tbl.TableRows[0].TableCells {
		cell.Shade("clear", "auto", brand.HeaderFill)
		cell.TableCellProperties.TableBorders = cellBorders(brand.HeaderFill)
		style := "TableHeader"
		if t.IsNumeric(c) {
			style = "TableHeaderNumber"
		}
		p := styled(cell.AddParagraph(), style)
		p.Children = append(p.Children, spanRuns(t.Headers[c], false, false)...)
	}

	for r, row := range t.Rows {
		for c, cell := range tbl.TableRows[r+1].TableCells {
			cell.TableCellProperties.TableBorders = cellBorders(brand.BorderColor)
			if highlighted {
				switch t.HighlightAt(r, c) {
				case doctree.HighlightPositive:
					cell.Shade("clear", "auto", brand.PositiveFill)
				case doctree.HighlightNegative:
					cell.Shade("clear", "auto", brand.NegativeFill)
				}
			}
			style := "TableText"
			if t.IsNumeric(c) {
				style = "TableNumber"
			}
			var text string
			if c < len(row) {
				text = row[c]
			}
			p := styled(cell.AddParagraph(), style)
			p.Children = append(p.Children, spanRuns(text, false, false)...)
		}
	}

	b.file.AddParagraph()
}

// columnWidths uses explicit widths when there is one positive width per
// column, otherwise DefaultTableWidth split evenly.
func columnWidths(explicit []int64, cols int) []int64 {
	if len(explicit) == cols {
		ok := true
		for _, w := range explicit {
			if w <= 0 {
				ok = false
				break
			}
		}
		if ok {
			return append([]int64(nil), explicit...)
		}
	}
	out := make([]int64, cols)
	for i := range out {
		out[i] = DefaultTableWidth / int64(cols)
	}
	return out
}

func cellBorders(color string) *docx.WTableBorders {
	edge := func() *docx.WTableBorder {
		return &docx.WTableBorder{Val: "single", Size: 4, Color: color}
	}
	return &docx.WTableBorders{Top: edge(), Left: edge(), Bottom: edge(), Right: edge()}
}
