// Package docxread reads a .docx back into a flat outline of styled
// paragraphs and tables. It backs the inspect command and lets tests assert
// on rendered runs.
package docxread

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/reportgen/internal/inline"
	"github.com/fumiama/go-docx"
)

// Block kinds.
const (
	KindParagraph = "paragraph"
	KindTable     = "table"
)

// Run is one styled text run.
type Run struct {
	Text   string
	Bold   bool
	Italic bool
}

// Cell is one table cell.
type Cell struct {
	Style string
	Fill  string
	Runs  []Run
}

// Block is a body paragraph or table, in document order.
type Block struct {
	Kind  string
	Style string
	Runs  []Run
	Rows  [][]Cell
}

// Outline is the readable body of a document.
type Outline struct {
	Blocks []Block
}

// Parse reads a whole .docx from r.
func Parse(r io.Reader) (*Outline, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	return ParseBytes(data)
}

// ParseBytes reads a .docx held in memory.
func ParseBytes(data []byte) (*Outline, error) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	out := &Outline{}
	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			out.Blocks = append(out.Blocks, Block{
				Kind:  KindParagraph,
				Style: paragraphStyle(it),
				Runs:  paragraphRuns(it),
			})
		case *docx.Table:
			out.Blocks = append(out.Blocks, tableBlock(it))
		}
	}
	return out, nil
}

func tableBlock(t *docx.Table) Block {
	b := Block{Kind: KindTable}
	for _, row := range t.TableRows {
		cells := make([]Cell, 0, len(row.TableCells))
		for _, tc := range row.TableCells {
			var c Cell
			if tc.TableCellProperties != nil && tc.TableCellProperties.Shade != nil {
				c.Fill = tc.TableCellProperties.Shade.Fill
			}
			for i, p := range tc.Paragraphs {
				if i == 0 {
					c.Style = paragraphStyle(p)
				}
				c.Runs = append(c.Runs, paragraphRuns(p)...)
			}
			cells = append(cells, c)
		}
		b.Rows = append(b.Rows, cells)
	}
	return b
}

func paragraphStyle(p *docx.Paragraph) string {
	if p.Properties == nil || p.Properties.Style == nil {
		return ""
	}
	return p.Properties.Style.Val
}

func paragraphRuns(p *docx.Paragraph) []Run {
	var out []Run
	for _, child := range p.Children {
		switch c := child.(type) {
		case *docx.Run:
			if r, ok := runText(c); ok {
				out = append(out, r)
			}
		case *docx.Hyperlink:
			if r, ok := runText(&c.Run); ok {
				out = append(out, r)
			}
		}
	}
	return out
}

func runText(run *docx.Run) (Run, bool) {
	var buf strings.Builder
	for _, rc := range run.Children {
		switch t := rc.(type) {
		case *docx.Text:
			buf.WriteString(t.Text)
		case *docx.BarterRabbet:
			if t.Type == "" {
				buf.WriteString("\n")
			}
		}
	}
	if buf.Len() == 0 {
		return Run{}, false
	}
	r := Run{Text: buf.String()}
	if rp := run.RunProperties; rp != nil {
		r.Bold = rp.Bold != nil
		r.Italic = rp.Italic != nil
	}
	return r, true
}

// HeadingLevel returns 1-6 for heading styles and 0 otherwise. Both style
// IDs ("Heading2") and names ("heading 2") are accepted.
func HeadingLevel(style string) int {
	s := strings.ToLower(strings.ReplaceAll(style, " ", ""))
	if !strings.HasPrefix(s, "heading") || len(s) != len("heading")+1 {
		return 0
	}
	if n := int(s[len(s)-1] - '0'); n >= 1 && n <= 6 {
		return n
	}
	return 0
}

// Text concatenates the runs without markup.
func (b Block) Text() string {
	return runsText(b.Runs)
}

// Markdown restores ** and * markers from run properties. A run that is both
// bold and italic is written as bold.
func (b Block) Markdown() string {
	return runsMarkdown(b.Runs)
}

// Text returns the cell's plain text.
func (c Cell) Text() string { return runsText(c.Runs) }

// Markdown returns the cell text with markers restored.
func (c Cell) Markdown() string { return runsMarkdown(c.Runs) }

func runsText(runs []Run) string {
	var buf strings.Builder
	for _, r := range runs {
		buf.WriteString(r.Text)
	}
	return buf.String()
}

func runsMarkdown(runs []Run) string {
	spans := make([]inline.Span, 0, len(runs))
	for _, r := range runs {
		kind := inline.Plain
		switch {
		case r.Bold:
			kind = inline.Bold
		case r.Italic:
			kind = inline.Italic
		}
		spans = append(spans, inline.Span{Kind: kind, Text: r.Text})
	}
	return inline.Markdown(spans)
}

// Tables counts table blocks.
func (o *Outline) Tables() int {
	n := 0
	for _, b := range o.Blocks {
		if b.Kind == KindTable {
			n++
		}
	}
	return n
}

// WithStyle returns the paragraphs whose style ID is style.
func (o *Outline) WithStyle(style string) []Block {
	var out []Block
	for _, b := range o.Blocks {
		if b.Kind == KindParagraph && b.Style == style {
			out = append(out, b)
		}
	}
	return out
}

// Headings returns heading paragraphs in order.
func (o *Outline) Headings() []Block {
	var out []Block
	for _, b := range o.Blocks {
		if b.Kind == KindParagraph && HeadingLevel(b.Style) > 0 {
			out = append(out, b)
		}
	}
	return out
}
