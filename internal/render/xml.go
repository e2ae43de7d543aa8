package render

import (
	"encoding/xml"
	"strings"

	"github.com/dgallion1/reportgen/internal/inline"
	"github.com/fumiama/go-docx"
)

// WordprocessingML elements go-docx does not model. They are appended to
// paragraph and run children and marshalled by their XMLName.

type fldChar struct {
	XMLName xml.Name `xml:"w:fldChar"`
	Type    string   `xml:"w:fldCharType,attr"`
}

type instrText struct {
	XMLName xml.Name `xml:"w:instrText"`
	Space   string   `xml:"xml:space,attr"`
	Text    string   `xml:",chardata"`
}

type bookmarkStart struct {
	XMLName xml.Name `xml:"w:bookmarkStart"`
	ID      int      `xml:"w:id,attr"`
	Name    string   `xml:"w:name,attr"`
}

type bookmarkEnd struct {
	XMLName xml.Name `xml:"w:bookmarkEnd"`
	ID      int      `xml:"w:id,attr"`
}

// anchorLink is an internal hyperlink to a bookmark.
type anchorLink struct {
	XMLName xml.Name `xml:"w:hyperlink"`
	Anchor  string   `xml:"w:anchor,attr"`
	History int      `xml:"w:history,attr"`
	Run     *docx.Run
}

type hdrFtrRef struct {
	Type string `xml:"w:type,attr"`
	ID   string `xml:"r:id,attr"`
}

type sectPr struct {
	XMLName   xml.Name    `xml:"w:sectPr"`
	HeaderRef *hdrFtrRef  `xml:"w:headerReference,omitempty"`
	FooterRef *hdrFtrRef  `xml:"w:footerReference,omitempty"`
	PgSz      *docx.PgSz  `xml:"w:pgSz"`
	PgMar     *docx.PgMar `xml:"w:pgMar"`
}

func pageSection() *sectPr {
	return &sectPr{
		HeaderRef: &hdrFtrRef{Type: "default", ID: relHeader},
		FooterRef: &hdrFtrRef{Type: "default", ID: relFooter},
		PgSz:      &docx.PgSz{W: PageWidth, H: PageHeight},
		PgMar: &docx.PgMar{
			Top:    MarginTop,
			Right:  MarginRight,
			Bottom: MarginBottom,
			Left:   MarginLeft,
			Header: HeaderDist,
			Footer: FooterDist,
		},
	}
}

// fieldRuns returns the runs of a complex field whose cached result is
// result. When open is true the end marker is left off so the caller can
// close the field later.
func fieldRuns(instr, result string, open bool) []interface{} {
	out := []interface{}{
		&docx.Run{Children: []interface{}{&fldChar{Type: "begin"}}},
		&docx.Run{Children: []interface{}{&instrText{Space: "preserve", Text: instr}}},
		&docx.Run{Children: []interface{}{&fldChar{Type: "separate"}}},
	}
	if result != "" {
		out = append(out, textRun(result, false, false))
	}
	if !open {
		out = append(out, fieldEnd())
	}
	return out
}

func fieldEnd() *docx.Run {
	return &docx.Run{Children: []interface{}{&fldChar{Type: "end"}}}
}

// textRun builds one run. Embedded newlines become line breaks.
func textRun(text string, bold, italic bool) *docx.Run {
	run := &docx.Run{}
	if bold || italic {
		run.RunProperties = &docx.RunProperties{}
		if bold {
			run.RunProperties.Bold = &docx.Bold{}
		}
		if italic {
			run.RunProperties.Italic = &docx.Italic{}
		}
	}
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			run.Children = append(run.Children, &docx.BarterRabbet{})
		}
		if line != "" {
			run.Children = append(run.Children, &docx.Text{XMLSpace: "preserve", Text: line})
		}
	}
	return run
}

// spanRuns tokenizes text and returns one run per span. base flags are
// combined with each span's own style.
func spanRuns(text string, bold, italic bool) []interface{} {
	spans := inline.Tokenize(text)
	out := make([]interface{}, 0, len(spans))
	for _, s := range spans {
		out = append(out, textRun(s.Text, bold || s.Kind == inline.Bold, italic || s.Kind == inline.Italic))
	}
	return out
}

func styled(p *docx.Paragraph, style string) *docx.Paragraph {
	if style != "" {
		p.Style(style)
	}
	return p
}
