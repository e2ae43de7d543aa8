package doctree

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"
)

func tinyPNG(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 2))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func validDoc() *Document {
	return &Document{
		Title: "Quarterly Review",
		Sections: []*Section{
			{Title: "1. Overview", Level: 2, Content: []*Node{Paragraph("Intro **bold** text.")}},
			{Title: "Market Share", Level: 3, Content: []*Node{{
				Type: TypeTable,
				Table: &TableData{
					Headers: []string{"Carrier", "Share"},
					Rows:    [][]string{{"A", "+1.2pp"}, {"B", "-0.4pp"}},
					Highlights: []Highlight{
						{Row: 5, Col: 1, Type: HighlightPositive},
					},
				},
			}}},
		},
	}
}

func TestValidate_OK(t *testing.T) {
	if err := Validate(validDoc()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(d *Document)
		wantSection int
		wantIndex   int
		wantMsg     string
	}{
		{
			name:        "empty title",
			mutate:      func(d *Document) { d.Title = "  " },
			wantSection: -1, wantIndex: -1, wantMsg: "title is required",
		},
		{
			name:        "level one",
			mutate:      func(d *Document) { d.Sections[1].Level = 1 },
			wantSection: 1, wantIndex: -1, wantMsg: "heading level 1",
		},
		{
			name: "row arity",
			mutate: func(d *Document) {
				d.Sections[1].Content[0].Table.Rows[1] = []string{"B"}
			},
			wantSection: 1, wantIndex: 0, wantMsg: "row 1 has 1 cells, expected 2",
		},
		{
			name: "unknown node",
			mutate: func(d *Document) {
				d.Sections[0].Content = append(d.Sections[0].Content, &Node{Type: "quote"})
			},
			wantSection: 0, wantIndex: 1, wantMsg: `unknown content type "quote"`,
		},
		{
			name: "table without headers",
			mutate: func(d *Document) {
				d.Sections[1].Content[0].Table.Headers = nil
				d.Sections[1].Content[0].Table.Rows = nil
			},
			wantSection: 1, wantIndex: 0, wantMsg: "no headers",
		},
		{
			name: "bad highlight type",
			mutate: func(d *Document) {
				d.Sections[1].Content[0].Table.Highlights[0].Type = "neutral"
			},
			wantSection: 1, wantIndex: 0, wantMsg: `"neutral"`,
		},
		{
			name: "figure with bad base64",
			mutate: func(d *Document) {
				d.Sections[0].Content = append(d.Sections[0].Content, &Node{
					Type:   TypeFigure,
					Figure: &FigureData{ImageBase64: "not base64!"},
				})
			},
			wantSection: 0, wantIndex: 1, wantMsg: "invalid base64",
		},
		{
			name:        "logo not an image",
			mutate:      func(d *Document) { d.LogoBase64 = base64.StdEncoding.EncodeToString([]byte("hello")) },
			wantSection: -1, wantIndex: -1, wantMsg: "unsupported image",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDoc()
			tt.mutate(d)
			err := Validate(d)
			if err == nil {
				t.Fatal("expected validation error")
			}
			var de *Error
			if !errors.As(err, &de) {
				t.Fatalf("expected *Error, got %T", err)
			}
			if de.Kind != KindValidation {
				t.Errorf("expected kind %q, got %q", KindValidation, de.Kind)
			}
			if de.Section != tt.wantSection || de.Index != tt.wantIndex {
				t.Errorf("expected location (%d,%d), got (%d,%d)", tt.wantSection, tt.wantIndex, de.Section, de.Index)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("expected message to contain %q, got %q", tt.wantMsg, err.Error())
			}
		})
	}
}

func TestValidate_ImagesAccepted(t *testing.T) {
	d := validDoc()
	img := tinyPNG(t)
	d.LogoBase64 = "data:image/png;base64," + img
	d.Sections[0].Content = append(d.Sections[0].Content, &Node{
		Type:  TypeChart,
		Chart: &FigureData{Description: "Net adds", ImageBase64: img},
	})
	if err := Validate(d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSection_HeadingLevel(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, 2}, {2, 2}, {3, 3}, {4, 4}, {5, 4}, {9, 4},
	}
	for _, tt := range tests {
		s := &Section{Level: tt.in}
		if got := s.HeadingLevel(); got != tt.want {
			t.Errorf("HeadingLevel(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestTableData_HighlightBounds(t *testing.T) {
	td := validDoc().Sections[1].Content[0].Table
	h := td.Highlights[0]
	if got := td.HighlightAt(h.Row, h.Col); got != h.Type {
		t.Errorf("HighlightAt(%d, %d) = %q, want %q", h.Row, h.Col, got, h.Type)
	}
	for r := range td.Rows {
		for c := range td.Headers {
			if got := td.HighlightAt(r, c); got != "" {
				t.Errorf("expected no highlight inside the grid at (%d,%d), got %q", r, c, got)
			}
		}
	}
	if td.HighlightAt(0, 1) != "" {
		t.Error("expected no highlight at (0,1)")
	}
}

func TestError_Format(t *testing.T) {
	err := NodeError(KindRender, 2, 4, "table grid: %s", "boom")
	want := "render error: section 2, item 4: table grid: boom"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
	if KindOf(err) != KindRender {
		t.Errorf("expected kind render, got %q", KindOf(err))
	}
	if KindOf(errors.New("plain")) != KindRender {
		t.Error("expected foreign errors to classify as render")
	}
}
