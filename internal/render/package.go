package render

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"

	"github.com/dgallion1/reportgen/internal/doctree"
	"github.com/fumiama/go-docx"
	"github.com/fumiama/imgsz"
)

// Relationship IDs added on top of the ones go-docx writes. They stay
// numeric since go-docx rejects any other rId form when reading a package
// back, and sit far above the image IDs it allocates from rId4.
const (
	relHeader   = "rId9001"
	relFooter   = "rId9002"
	relSettings = "rId9003"
	relLogo     = "rId1"
)

const (
	relTypeHeader   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/header"
	relTypeFooter   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer"
	relTypeSettings = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/settings"
)

// Footer logo placement in EMU, relative to the page.
const (
	logoOffsetY   = 9335744
	logoWidth     = 7776000
	logoHeight    = 721774
	logoDistLR    = 114300
	logoZOrder    = 251658240
	logoDrawingID = 1024
)

// Finish places logo behind the footer and packages the document. Both
// failures are render errors.
func (b *Builder) Finish(doc *doctree.Document, logo []byte) ([]byte, error) {
	if err := b.footer(logo); err != nil {
		return nil, &doctree.Error{Kind: doctree.KindRender, Section: -1, Index: -1, Msg: "footer", Err: err}
	}
	data, err := b.pack(doc)
	if err != nil {
		return nil, &doctree.Error{Kind: doctree.KindRender, Section: -1, Index: -1, Msg: "package", Err: err}
	}
	return data, nil
}

// footer sets the logo placed behind the footer. The image must be a format
// imgsz can size.
func (b *Builder) footer(logo []byte) error {
	if len(logo) == 0 {
		b.logo = nil
		return nil
	}
	if _, _, err := imgsz.DecodeSize(bytes.NewReader(logo)); err != nil {
		return fmt.Errorf("logo: %w", err)
	}
	b.logo = logo
	return nil
}

// pack finalizes the document and returns the .docx bytes. The output is
// a pure function of the builder's input: parts are written in a fixed order
// with zeroed timestamps.
func (b *Builder) pack(doc *doctree.Document) ([]byte, error) {
	b.materializeTOC()
	b.file.Document.Body.Items = append(b.file.Document.Body.Items, pageSection())

	var raw bytes.Buffer
	if _, err := b.file.WriteTo(&raw); err != nil {
		return nil, fmt.Errorf("write document: %w", err)
	}
	parts, err := readParts(raw.Bytes())
	if err != nil {
		return nil, err
	}

	if parts["word/styles.xml"], err = stylesXML(b.opts.Brand); err != nil {
		return nil, err
	}
	for name, tmpl := range map[string]string{
		"[Content_Types].xml": "content_types.xml",
		"word/settings.xml":   "settings.xml",
	} {
		if parts[name], err = staticPart(tmpl); err != nil {
			return nil, err
		}
	}
	if parts["docProps/core.xml"], err = marshalPart(newCoreProps(doc)); err != nil {
		return nil, err
	}
	if parts["word/header1.xml"], err = marshalPart(b.headerPart()); err != nil {
		return nil, err
	}

	ftr, err := b.footerPart()
	if err != nil {
		return nil, err
	}
	if parts["word/footer1.xml"], err = marshalPart(ftr); err != nil {
		return nil, err
	}
	if b.logo != nil {
		_, format, _ := imgsz.DecodeSize(bytes.NewReader(b.logo))
		target := "media/logo." + format
		parts["word/"+target] = b.logo
		rels := &docx.Relationships{
			Xmlns:        docx.XMLNS_REL,
			Relationship: []docx.Relationship{{ID: relLogo, Type: docx.REL_IMAGE, Target: target}},
		}
		if parts["word/_rels/footer1.xml.rels"], err = marshalPart(rels); err != nil {
			return nil, err
		}
	}

	if parts["word/_rels/document.xml.rels"], err = patchDocumentRels(parts["word/_rels/document.xml.rels"]); err != nil {
		return nil, err
	}
	return writeParts(parts)
}

// hdrFtr is the root of a header or footer part.
type hdrFtr struct {
	XMLName xml.Name
	XMLW    string `xml:"xmlns:w,attr"`
	XMLR    string `xml:"xmlns:r,attr"`
	XMLWP   string `xml:"xmlns:wp,attr"`
	Items   []interface{}
}

func newHdrFtr(root string, items ...interface{}) *hdrFtr {
	return &hdrFtr{
		XMLName: xml.Name{Local: root},
		XMLW:    docx.XMLNS_W,
		XMLR:    docx.XMLNS_R,
		XMLWP:   docx.XMLNS_WP,
		Items:   items,
	}
}

func (b *Builder) headerPart() *hdrFtr {
	page := styled(&docx.Paragraph{}, "Header")
	page.Children = append(page.Children, fieldRuns(` PAGE   \* MERGEFORMAT `, "1", false)...)
	return newHdrFtr("w:hdr", page, styled(&docx.Paragraph{}, "Header"))
}

// footerPart anchors the logo across the bottom of the page behind the text,
// then the brand URL line. Without a logo the footer stays empty.
func (b *Builder) footerPart() (*hdrFtr, error) {
	if b.logo == nil {
		return newHdrFtr("w:ftr", styled(&docx.Paragraph{}, "Footer")), nil
	}

	// The drawing is built against a scratch document so the logo does not
	// land in the body's media; its blip is then pointed at the footer rel.
	scratch := docx.New()
	logo := styled(scratch.AddParagraph(), "Footer")
	run, err := logo.AddAnchorDrawing(b.logo)
	if err != nil {
		return nil, fmt.Errorf("footer logo: %w", err)
	}
	a := run.Children[0].(*docx.Drawing).Anchor
	a.DistL, a.DistR = logoDistLR, logoDistLR
	a.BehindDoc = 1
	a.RelativeHeight = logoZOrder
	a.PositionH = &docx.WPPositionH{RelativeFrom: "page", PosOffset: 0}
	a.PositionV = &docx.WPPositionV{RelativeFrom: "page", PosOffset: logoOffsetY}
	a.Size(logoWidth, logoHeight)
	a.DocPr.ID = logoDrawingID
	a.DocPr.Name = "Logo"
	pic := a.Graphic.GraphicData.Pic
	pic.NonVisualPicProperties.NonVisualDrawingProperties.Name = "Logo"
	pic.BlipFill.Blip.Embed = relLogo

	spacer := styled(&docx.Paragraph{}, "FooterSpacer")
	url := styled(&docx.Paragraph{}, "FooterURL")
	url.Children = append(url.Children, textRun(b.opts.Brand.FooterText+" ", false, false))
	return newHdrFtr("w:ftr", logo, spacer, url), nil
}

type coreProps struct {
	XMLName     xml.Name `xml:"cp:coreProperties"`
	XMLCP       string   `xml:"xmlns:cp,attr"`
	XMLDC       string   `xml:"xmlns:dc,attr"`
	XMLDCTerms  string   `xml:"xmlns:dcterms,attr"`
	XMLXSI      string   `xml:"xmlns:xsi,attr"`
	Title       string   `xml:"dc:title,omitempty"`
	Subject     string   `xml:"dc:subject,omitempty"`
	Creator     string   `xml:"dc:creator,omitempty"`
	Description string   `xml:"dc:description,omitempty"`
}

func newCoreProps(doc *doctree.Document) *coreProps {
	return &coreProps{
		XMLCP:       "http://schemas.openxmlformats.org/package/2006/metadata/core-properties",
		XMLDC:       "http://purl.org/dc/elements/1.1/",
		XMLDCTerms:  "http://purl.org/dc/terms/",
		XMLXSI:      "http://www.w3.org/2001/XMLSchema-instance",
		Title:       doc.Title,
		Subject:     doc.Subtitle,
		Creator:     doc.Author,
		Description: doc.Date,
	}
}

func marshalPart(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("marshal part: %w", err)
	}
	return buf.Bytes(), nil
}

// patchDocumentRels adds the header, footer and settings relationships to the
// ones go-docx wrote for styles, theme, fonts and images.
func patchDocumentRels(data []byte) ([]byte, error) {
	var rels docx.Relationships
	if err := xml.Unmarshal(data, &rels); err != nil {
		return nil, fmt.Errorf("read document rels: %w", err)
	}
	rels.Xmlns = docx.XMLNS_REL
	rels.Relationship = append(rels.Relationship,
		docx.Relationship{ID: relHeader, Type: relTypeHeader, Target: "header1.xml"},
		docx.Relationship{ID: relFooter, Type: relTypeFooter, Target: "footer1.xml"},
		docx.Relationship{ID: relSettings, Type: relTypeSettings, Target: "settings.xml"},
	)
	return marshalPart(&rels)
}

func readParts(data []byte) (map[string][]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("reopen package: %w", err)
	}
	parts := make(map[string][]byte, len(zr.File)+8)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", f.Name, err)
		}
		body, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		parts[f.Name] = body
	}
	return parts, nil
}

// writeParts zips parts with [Content_Types].xml first and the rest sorted.
func writeParts(parts map[string][]byte) ([]byte, error) {
	names := make([]string, 0, len(parts))
	for name := range parts {
		if name != "[Content_Types].xml" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	names = append([]string{"[Content_Types].xml"}, names...)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
		if err != nil {
			return nil, fmt.Errorf("zip %s: %w", name, err)
		}
		if _, err := w.Write(parts[name]); err != nil {
			return nil, fmt.Errorf("zip %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close package: %w", err)
	}
	return buf.Bytes(), nil
}
