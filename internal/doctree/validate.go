package doctree

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/fumiama/imgsz"
)

// HeadingLevel returns the effective heading tier: 0 means unset and maps to
// 2, anything deeper than 4 collapses to 4.
func (s *Section) HeadingLevel() int {
	switch {
	case s.Level == 0:
		return LevelSection
	case s.Level > LevelMinorHeading:
		return LevelMinorHeading
	}
	return s.Level
}

// Validate checks every structural invariant the renderer depends on. It
// does not modify d. The first violation found is returned.
func Validate(d *Document) error {
	if d == nil {
		return Validationf("document is required")
	}
	if strings.TrimSpace(d.Title) == "" {
		return Validationf("title is required")
	}
	if d.LogoBase64 != "" {
		if _, err := DecodeImage(d.LogoBase64); err != nil {
			return &Error{Kind: KindValidation, Section: -1, Index: -1, Msg: "logo_base64", Err: err}
		}
	}

	for si, s := range d.Sections {
		if s == nil {
			return &Error{Kind: KindValidation, Section: si, Index: -1, Msg: "section is null"}
		}
		if s.Level < 0 || s.Level == 1 {
			return &Error{Kind: KindValidation, Section: si, Index: -1,
				Msg: fmt.Sprintf("heading level %d is not one of 2, 3, 4", s.Level)}
		}
		for ni, n := range s.Content {
			if err := validateNode(n); err != nil {
				return &Error{Kind: KindValidation, Section: si, Index: ni, Msg: err.Error()}
			}
		}
	}
	return nil
}

func validateNode(n *Node) error {
	if n == nil {
		return fmt.Errorf("content item is null")
	}
	switch n.Type {
	case TypeParagraph, TypeSubsection, TypeMinorHeading:
		return nil
	case TypeTable:
		return validateTable(n.Table)
	case TypeFigure, TypeChart:
		pic := n.Picture()
		if pic == nil {
			return fmt.Errorf("%s node has no image data", n.Type)
		}
		if pic.WidthInches < 0 {
			return fmt.Errorf("%s width_inches must not be negative", n.Type)
		}
		if _, err := DecodeImage(pic.ImageBase64); err != nil {
			return fmt.Errorf("%s image: %w", n.Type, err)
		}
		return nil
	default:
		return fmt.Errorf("unknown content type %q", n.Type)
	}
}

func validateTable(t *TableData) error {
	if t == nil {
		return fmt.Errorf("table node has no table data")
	}
	if len(t.Headers) == 0 {
		return fmt.Errorf("table has no headers")
	}
	for ri, row := range t.Rows {
		if len(row) != len(t.Headers) {
			return fmt.Errorf("table row %d has %d cells, expected %d", ri, len(row), len(t.Headers))
		}
	}
	for _, h := range t.Highlights {
		if h.Type != HighlightPositive && h.Type != HighlightNegative {
			return fmt.Errorf("highlight type %q is not positive or negative", h.Type)
		}
	}
	return nil
}

// DecodeImage decodes standard base64 (optionally a data: URI) and checks
// that the bytes are an image format the document writer can size.
func DecodeImage(b64 string) ([]byte, error) {
	s := strings.TrimSpace(b64)
	if strings.HasPrefix(s, "data:") {
		if i := strings.IndexByte(s, ','); i >= 0 {
			s = s[i+1:]
		}
	}
	if s == "" {
		return nil, fmt.Errorf("image data is empty")
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid base64: %w", err)
	}
	if _, _, err := imgsz.DecodeSize(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("unsupported image: %w", err)
	}
	return data, nil
}
