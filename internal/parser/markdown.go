package parser

import (
	"bytes"
	"io"
	"regexp"
	"strings"

	"github.com/dgallion1/reportgen/internal/doctree"
	"github.com/dgallion1/reportgen/internal/inline"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var (
	fencedDocRe = regexp.MustCompile("(?s)^```(?:markdown|md)[ \t]*\r?\n(.*?)\r?\n```$")
	captionRe   = regexp.MustCompile(`(?i)^(table|figure|chart)\s+\d+\s*[:.]\s*(.+)$`)
	numericRe   = regexp.MustCompile(`^[+\-−]?[$€£]?(\d[\d,]*(\.\d+)?|\.\d+)(%|pp|x|bps)?$`)
)

// MarkdownParser handles Markdown input using goldmark. Inline emphasis
// markers are never removed from text; only a paragraph that is wholly bold
// or italic has its wrapping markers turned into the node's style flags.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, opts Options) (*doctree.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	src = unwrapFence(src)

	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	root := md.Parser().Parse(text.NewReader(src))

	b := &mdBuilder{
		src: src,
		doc: &doctree.Document{IncludeTOC: true},
	}
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		b.block(n)
	}
	b.flushCaption()

	opts.apply(b.doc)
	if strings.TrimSpace(b.doc.Title) == "" {
		b.doc.Title = DefaultTitle
	}
	return b.doc, nil
}

// unwrapFence strips a ```markdown fence wrapping the whole input.
func unwrapFence(src []byte) []byte {
	trimmed := bytes.TrimSpace(src)
	if m := fencedDocRe.FindSubmatch(trimmed); m != nil {
		return m[1]
	}
	return src
}

type mdBuilder struct {
	src []byte
	doc *doctree.Document
	cur *doctree.Section

	// caption waiting for the table or picture that follows it
	caption     string
	captionKind string
}

func (b *mdBuilder) add(n *doctree.Node) {
	if b.cur == nil {
		b.cur = &doctree.Section{Level: doctree.LevelSection}
		b.doc.Sections = append(b.doc.Sections, b.cur)
	}
	b.cur.Content = append(b.cur.Content, n)
}

func (b *mdBuilder) startSection(title string) {
	b.flushCaption()
	b.cur = &doctree.Section{Title: title, Level: doctree.LevelSection}
	b.doc.Sections = append(b.doc.Sections, b.cur)
}

// flushCaption keeps a caption line that never found its target as text.
func (b *mdBuilder) flushCaption() {
	if b.caption == "" {
		return
	}
	c := b.caption
	b.caption, b.captionKind = "", ""
	b.add(doctree.Paragraph(c))
}

func (b *mdBuilder) block(n ast.Node) {
	switch node := n.(type) {
	case *ast.Heading:
		title := rawLines(node, b.src, " ")
		switch {
		case node.Level == 1 && b.doc.Title == "":
			b.doc.Title = title
		case node.Level <= 2:
			b.startSection(title)
		case node.Level == 3:
			b.flushCaption()
			b.add(&doctree.Node{Type: doctree.TypeSubsection, Text: title})
		default:
			b.flushCaption()
			b.add(&doctree.Node{Type: doctree.TypeMinorHeading, Text: title})
		}

	case *ast.Paragraph:
		b.paragraphBlock(node)

	case *ast.TextBlock:
		b.paragraph(rawLines(node, b.src, " "))

	case *east.Table:
		b.table(node)

	case *ast.List:
		for item := node.FirstChild(); item != nil; item = item.NextSibling() {
			for c := item.FirstChild(); c != nil; c = c.NextSibling() {
				b.block(c)
			}
		}

	case *ast.Blockquote:
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			b.block(c)
		}

	case *ast.FencedCodeBlock, *ast.CodeBlock:
		code := strings.TrimRight(rawLines(node, b.src, ""), "\n")
		if code != "" {
			b.paragraph(code)
		}

	case *ast.HTMLBlock:
		raw := rawLines(node, b.src, "")
		if node.HasClosure() {
			raw += string(node.ClosureLine.Value(b.src))
		}
		for _, t := range htmlParagraphs(raw) {
			b.paragraph(t)
		}

	case *ast.ThematicBreak:
		// no counterpart in the document model

	default:
		if t := rawLines(n, b.src, " "); t != "" {
			b.paragraph(t)
		}
	}
}

// paragraphBlock handles caption lines, data-URI pictures and prose.
func (b *mdBuilder) paragraphBlock(node *ast.Paragraph) {
	if fig := b.picture(node); fig != nil {
		b.add(fig)
		return
	}

	lines := paragraphLines(node, b.src)
	if len(lines) == 0 {
		return
	}

	var caption, kind string
	if next := node.NextSibling(); isCaptionTarget(next) {
		last := lines[len(lines)-1]
		if k, c, ok := captionLine(last); ok {
			caption, kind = c, k
		} else if tbl, ok := next.(*east.Table); ok && strings.HasSuffix(last, ":") && b.adjacent(node, tbl) {
			caption = strings.TrimSpace(strings.TrimSuffix(unwrapLine(last), ":"))
			kind = doctree.TypeTable
		}
		if caption != "" {
			lines = lines[:len(lines)-1]
		}
	}

	if len(lines) > 0 {
		b.paragraph(strings.Join(lines, " "))
	}
	if caption != "" {
		b.flushCaption()
		b.caption, b.captionKind = caption, kind
	}
}

func (b *mdBuilder) paragraph(t string) {
	t = strings.TrimSpace(t)
	if t == "" {
		return
	}
	b.flushCaption()
	if inner, kind, ok := inline.Wrapped(t); ok {
		b.add(&doctree.Node{
			Type:   doctree.TypeParagraph,
			Text:   inner,
			Bold:   kind == inline.Bold,
			Italic: kind == inline.Italic,
		})
		return
	}
	b.add(doctree.Paragraph(t))
}

// picture turns a paragraph holding only a data: URI image into a figure
// or chart node. The alt text is the caption unless a caption line preceded.
func (b *mdBuilder) picture(node *ast.Paragraph) *doctree.Node {
	img, ok := node.FirstChild().(*ast.Image)
	if !ok || img.NextSibling() != nil {
		return nil
	}
	dest := string(img.Destination)
	if !strings.HasPrefix(dest, "data:image/") {
		return nil
	}

	alt := strings.TrimSpace(inlineText(img, b.src))
	pic := &doctree.FigureData{Description: alt, ImageBase64: dest}
	n := &doctree.Node{Type: doctree.TypeFigure, Figure: pic}
	if b.caption != "" {
		pic.Description = b.caption
		if b.captionKind == doctree.TypeChart {
			n = &doctree.Node{Type: doctree.TypeChart, Chart: pic}
		}
		b.caption, b.captionKind = "", ""
	}
	return n
}

func (b *mdBuilder) table(node *east.Table) {
	td := &doctree.TableData{}
	if b.caption != "" && b.captionKind == doctree.TypeTable {
		td.Caption = b.caption
		b.caption, b.captionKind = "", ""
	}
	b.flushCaption()

	// GFM folds any non-blank line under a table into a row. A row whose
	// line drops the table's pipe style ends the table; it and everything
	// after it is prose.
	piped := strings.HasPrefix(b.rowLine(node.FirstChild()), "|")
	var trailing []string
	for row := node.FirstChild(); row != nil; row = row.NextSibling() {
		if _, ok := row.(*east.TableHeader); ok {
			td.Headers = rowCells(row, b.src)
			continue
		}
		line := b.rowLine(row)
		if trailing != nil || (line != "" && !tableRowLine(line, piped)) {
			trailing = append(trailing, line)
			continue
		}
		cells := rowCells(row, b.src)
		// goldmark drops cells past the header width. Keep them so the
		// arity check reports the row instead of losing data.
		if wide := splitRow(line); len(wide) > len(cells) {
			cells = wide
		}
		td.Rows = append(td.Rows, cells)
	}

	td.NumericColumns = numericColumns(td)
	td.Highlights = inferHighlights(td)
	b.add(&doctree.Node{Type: doctree.TypeTable, Table: td})
	if len(trailing) > 0 {
		b.paragraph(strings.Join(trailing, " "))
	}
}

func rowCells(row ast.Node, src []byte) []string {
	var cells []string
	for c := row.FirstChild(); c != nil; c = c.NextSibling() {
		cells = append(cells, cellText(c, src))
	}
	return cells
}

// rowLine returns the source text of a table row from its leading pipe, if
// any, to the end of the line. Container prefixes such as "> " are skipped.
func (b *mdBuilder) rowLine(row ast.Node) string {
	if row == nil {
		return ""
	}
	for c := row.FirstChild(); c != nil; c = c.NextSibling() {
		lines := c.Lines()
		if lines == nil || lines.Len() == 0 {
			continue
		}
		pos := lines.At(0).Start
		if pos > len(b.src) {
			return ""
		}
		start := pos
		for p := pos - 1; p >= 0 && b.src[p] != '\n'; p-- {
			if b.src[p] == '|' {
				start = p
				break
			}
			if b.src[p] != ' ' && b.src[p] != '\t' {
				break
			}
		}
		end := len(b.src)
		if i := bytes.IndexByte(b.src[pos:], '\n'); i >= 0 {
			end = pos + i
		}
		return strings.TrimSpace(string(b.src[start:end]))
	}
	return ""
}

func tableRowLine(line string, piped bool) bool {
	if piped {
		return strings.HasPrefix(line, "|")
	}
	return strings.Contains(line, "|")
}

// splitRow splits a row line on unescaped pipes, dropping the outer ones.
func splitRow(line string) []string {
	line = strings.TrimPrefix(line, "|")
	if strings.HasSuffix(line, "|") && !strings.HasSuffix(line, `\|`) {
		line = line[:len(line)-1]
	}
	var cells []string
	var cur strings.Builder
	for i := 0; i < len(line); i++ {
		if line[i] == '|' && (i == 0 || line[i-1] != '\\') {
			cells = append(cells, strings.TrimSpace(strings.ReplaceAll(cur.String(), `\|`, "|")))
			cur.Reset()
			continue
		}
		cur.WriteByte(line[i])
	}
	return append(cells, strings.TrimSpace(strings.ReplaceAll(cur.String(), `\|`, "|")))
}

// adjacent reports whether the last line of para sits directly above the
// table's header row with no blank line between.
func (b *mdBuilder) adjacent(para *ast.Paragraph, tbl *east.Table) bool {
	lines := para.Lines()
	header := tbl.FirstChild()
	if lines.Len() == 0 || header == nil || header.FirstChild() == nil {
		return false
	}
	cellLines := header.FirstChild().Lines()
	if cellLines.Len() == 0 {
		return false
	}
	stop := lines.At(lines.Len() - 1).Stop
	start := cellLines.At(0).Start
	if stop > start || start > len(b.src) {
		return false
	}
	return bytes.Count(b.src[stop:start], []byte{'\n'}) <= 1
}

func isCaptionTarget(n ast.Node) bool {
	switch node := n.(type) {
	case *east.Table:
		return true
	case *ast.Paragraph:
		img, ok := node.FirstChild().(*ast.Image)
		return ok && img.NextSibling() == nil && bytes.HasPrefix(img.Destination, []byte("data:image/"))
	}
	return false
}

// captionLine matches "Table 3: Subscriber growth" style lines, returning the
// node type the caption belongs to and the caption without its number.
func captionLine(line string) (string, string, bool) {
	m := captionRe.FindStringSubmatch(unwrapLine(line))
	if m == nil {
		return "", "", false
	}
	return strings.ToLower(m[1]), strings.TrimSpace(m[2]), true
}

func unwrapLine(line string) string {
	if inner, _, ok := inline.Wrapped(line); ok {
		return inner
	}
	return line
}

func numericColumns(td *doctree.TableData) []int {
	if len(td.Rows) == 0 {
		return nil
	}
	var cols []int
	for c := range td.Headers {
		numeric := true
		for _, row := range td.Rows {
			if c >= len(row) || !IsNumericCell(row[c]) {
				numeric = false
				break
			}
		}
		if numeric {
			cols = append(cols, c)
		}
	}
	return cols
}

// IsNumericCell reports whether a cell reads as a number with an optional
// sign, currency symbol, thousands separators and %/pp/x/bps suffix. Inline
// markers and spaces are ignored.
func IsNumericCell(cell string) bool {
	plain := strings.ReplaceAll(inline.Text(inline.Tokenize(cell)), " ", "")
	return plain != "" && numericRe.MatchString(plain)
}

// inferHighlights marks signed cells in numeric columns: a leading + is
// positive, a leading - or − negative.
func inferHighlights(td *doctree.TableData) []doctree.Highlight {
	var out []doctree.Highlight
	for r, row := range td.Rows {
		for _, c := range td.NumericColumns {
			if c >= len(row) {
				continue
			}
			plain := strings.TrimSpace(inline.Text(inline.Tokenize(row[c])))
			switch {
			case strings.HasPrefix(plain, "+"):
				out = append(out, doctree.Highlight{Row: r, Col: c, Type: doctree.HighlightPositive})
			case strings.HasPrefix(plain, "-"), strings.HasPrefix(plain, "−"):
				out = append(out, doctree.Highlight{Row: r, Col: c, Type: doctree.HighlightNegative})
			}
		}
	}
	return out
}

// inlineText concatenates the text segments below an inline node.
func inlineText(n ast.Node, src []byte) string {
	var buf strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(src))
			if t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
			continue
		}
		buf.WriteString(inlineText(c, src))
	}
	return buf.String()
}

func cellText(n ast.Node, src []byte) string {
	t := rawLines(n, src, " ")
	return strings.TrimSpace(strings.ReplaceAll(t, `\|`, "|"))
}

// rawLines returns the source text of a block exactly as written, so inline
// markers survive.
func rawLines(n ast.Node, src []byte, sep string) string {
	lines := n.Lines()
	if lines == nil {
		return ""
	}
	var buf strings.Builder
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		v := string(seg.Value(src))
		if sep != "" {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			if buf.Len() > 0 {
				buf.WriteString(sep)
			}
		}
		buf.WriteString(v)
	}
	if sep != "" {
		return strings.TrimSpace(buf.String())
	}
	return buf.String()
}

func paragraphLines(n ast.Node, src []byte) []string {
	lines := n.Lines()
	var out []string
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		if v := strings.TrimSpace(string(seg.Value(src))); v != "" {
			out = append(out, v)
		}
	}
	return out
}
