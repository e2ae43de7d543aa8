// Package render turns a validated doctree.Document into WordprocessingML
// using go-docx, then packages the branded .docx.
package render

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dgallion1/reportgen/internal/doctree"
	"github.com/dgallion1/reportgen/internal/inline"
	"github.com/fumiama/go-docx"
)

// Options configures a render. The zero value is not usable; start from
// DefaultOptions.
type Options struct {
	Brand   Brand
	Routing Routing
}

// DefaultOptions returns the stock brand and routing.
func DefaultOptions() Options {
	return Options{Brand: DefaultBrand(), Routing: DefaultRouting()}
}

// Builder accumulates one document: Body first, then Finish.
type Builder struct {
	opts  Options
	file  *docx.Docx
	ctx   *Context
	tocAt int
	logo  []byte
}

// NewBuilder starts an empty document with a fresh Context.
func NewBuilder(opts Options) *Builder {
	return &Builder{
		opts:  opts,
		file:  docx.New().WithDefaultTheme(),
		ctx:   newContext(),
		tocAt: -1,
	}
}

// Context exposes the per-render counters.
func (b *Builder) Context() *Context { return b.ctx }

// Body writes the title block, the contents placeholder when requested and
// every section. It stops before the next section once ctx is done.
func (b *Builder) Body(ctx context.Context, doc *doctree.Document) error {
	b.titleBlock(doc)
	if doc.IncludeTOC {
		b.reserveTOC()
	}
	for si, s := range doc.Sections {
		if err := ctx.Err(); err != nil {
			return &doctree.Error{Kind: doctree.KindRender, Section: si, Index: -1, Msg: "cancelled", Err: err}
		}
		if err := b.Section(si, s); err != nil {
			return err
		}
	}
	return nil
}

// titleBlock writes the upper-cased title, subtitle, author and date.
func (b *Builder) titleBlock(doc *doctree.Document) {
	p := styled(b.file.AddParagraph(), "Title")
	p.Children = append(p.Children, textRun(strings.ToUpper(doc.Title), false, false))

	if doc.Subtitle != "" {
		p := styled(b.file.AddParagraph(), "Subtitle")
		p.Children = append(p.Children, spanRuns(doc.Subtitle, false, false)...)
	}
	if doc.Author != "" {
		p := styled(b.file.AddParagraph(), "TitleMeta")
		p.Children = append(p.Children, textRun("By: "+doc.Author, false, false))
	}
	if doc.Date != "" {
		p := styled(b.file.AddParagraph(), "TitleMeta")
		p.Children = append(p.Children, textRun(doc.Date, false, false))
	}
}

// reserveTOC marks the current position for the table of contents, which is
// filled in once all headings are known.
func (b *Builder) reserveTOC() {
	b.tocAt = len(b.file.Document.Body.Items)
}

// Section renders one section heading and its content. Failures carry the
// section and content index.
func (b *Builder) Section(si int, s *doctree.Section) error {
	if strings.TrimSpace(s.Title) != "" {
		b.heading(s.HeadingLevel(), s.Title)
	}
	mode := b.opts.Routing.ModeFor(s.Title)
	for ni, n := range s.Content {
		if err := b.node(n, mode); err != nil {
			return &doctree.Error{Kind: doctree.KindRender, Section: si, Index: ni, Msg: n.Type, Err: err}
		}
	}
	return nil
}

func (b *Builder) node(n *doctree.Node, mode Mode) error {
	switch n.Type {
	case doctree.TypeParagraph:
		p := b.file.AddParagraph()
		if n.Bold || n.Italic {
			// Whole-paragraph emphasis is written as one literal run.
			p.Children = append(p.Children, textRun(n.Text, n.Bold, n.Italic))
			break
		}
		p.Children = append(p.Children, spanRuns(n.Text, false, false)...)
	case doctree.TypeSubsection:
		b.heading(doctree.LevelSubsection, n.Text)
	case doctree.TypeMinorHeading:
		b.heading(doctree.LevelMinorHeading, n.Text)
	case doctree.TypeTable:
		return b.table(n.Table, mode)
	case doctree.TypeFigure, doctree.TypeChart:
		return b.picture(n.Type, n.Picture())
	default:
		return fmt.Errorf("unknown content type %q", n.Type)
	}
	return nil
}

// heading writes a bookmarked heading paragraph and records it for the
// table of contents when it is within the TOC depth.
func (b *Builder) heading(level int, text string) {
	id, name := b.ctx.nextBookmark()
	p := styled(b.file.AddParagraph(), fmt.Sprintf("Heading%d", level))
	p.Children = append(p.Children, &bookmarkStart{ID: id, Name: name})
	p.Children = append(p.Children, spanRuns(text, false, false)...)
	p.Children = append(p.Children, &bookmarkEnd{ID: id})

	if level <= 3 {
		b.ctx.toc = append(b.ctx.toc, tocEntry{
			level:    level,
			text:     inline.Text(inline.Tokenize(text)),
			bookmark: name,
		})
	}
}

// caption writes "<Label> N: text" using the per-render counter for kind.
func (b *Builder) caption(kind, text string) {
	n := b.ctx.Next(kind)
	label := strings.ToUpper(kind[:1]) + kind[1:]
	line := fmt.Sprintf("%s %d", label, n)
	if text = strings.TrimSpace(text); text != "" {
		line += ": " + text
	}
	p := styled(b.file.AddParagraph(), "Caption")
	p.Children = append(p.Children, spanRuns(line, false, false)...)
}

// materializeTOC inserts the contents block at the reserved position. The
// cached entries link to the heading bookmarks; Word refreshes the field
// (and adds page numbers) on open.
func (b *Builder) materializeTOC() {
	if b.tocAt < 0 {
		return
	}
	items := make([]interface{}, 0, len(b.ctx.toc)+4)

	head := styled(&docx.Paragraph{}, "TOCHeading")
	head.Children = append(head.Children, textRun(b.opts.Brand.TOCHeading, false, false))
	items = append(items, head)

	begin := &docx.Paragraph{}
	begin.Children = append(begin.Children, fieldRuns(` TOC \o "1-3" \h \z \u `, "", true)...)
	items = append(items, begin)

	for _, e := range b.ctx.toc {
		p := styled(&docx.Paragraph{}, fmt.Sprintf("TOC%d", e.level))
		p.Children = append(p.Children, &anchorLink{
			Anchor:  e.bookmark,
			History: 1,
			Run:     textRun(e.text, false, false),
		})
		items = append(items, p)
	}

	end := &docx.Paragraph{}
	end.Children = append(end.Children, fieldEnd())
	items = append(items, end)

	brk := &docx.Paragraph{}
	brk.AddPageBreaks()
	items = append(items, brk)

	body := &b.file.Document.Body
	body.Items = slices.Insert(body.Items, b.tocAt, items...)
	b.tocAt = -1
}
