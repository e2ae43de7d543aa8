// Package doctree holds the document model shared by the markdown and JSON
// inputs and consumed by the renderer.
package doctree

// Node types.
const (
	TypeParagraph    = "paragraph"
	TypeSubsection   = "subsection"
	TypeMinorHeading = "minor_heading"
	TypeTable        = "table"
	TypeFigure       = "figure"
	TypeChart        = "chart"
)

// Highlight kinds.
const (
	HighlightPositive = "positive"
	HighlightNegative = "negative"
)

// Section levels.
const (
	LevelSection      = 2
	LevelSubsection   = 3
	LevelMinorHeading = 4
)

// Document is the root of a report.
type Document struct {
	Title      string     `json:"title"`
	Subtitle   string     `json:"subtitle,omitempty"`
	Author     string     `json:"author,omitempty"`
	Date       string     `json:"date,omitempty"`
	IncludeTOC bool       `json:"include_toc"`
	Sections   []*Section `json:"sections"`
	LogoBase64 string     `json:"logo_base64,omitempty"`
}

// Section is one heading plus its content. Sections form a flat list; Level
// only selects the heading tier.
type Section struct {
	Title   string  `json:"title"`
	Level   int     `json:"level"`
	Content []*Node `json:"content"`
}

// Node is one content unit inside a section. Type selects which fields apply.
// Text keeps inline **bold** / *italic* markers verbatim.
type Node struct {
	Type   string      `json:"type"`
	Text   string      `json:"text,omitempty"`
	Bold   bool        `json:"bold,omitempty"`
	Italic bool        `json:"italic,omitempty"`
	Table  *TableData  `json:"table,omitempty"`
	Figure *FigureData `json:"figure,omitempty"`
	Chart  *FigureData `json:"chart,omitempty"`
}

// TableData is a captioned grid of cell strings.
type TableData struct {
	Caption        string      `json:"caption,omitempty"`
	Headers        []string    `json:"headers"`
	Rows           [][]string  `json:"rows"`
	NumericColumns []int       `json:"numeric_columns,omitempty"`
	Highlights     []Highlight `json:"highlights,omitempty"`
	ColumnWidths   []int64     `json:"column_widths,omitempty"` // twips
}

// Highlight marks one data cell. Row is zero-based over Rows (header excluded).
type Highlight struct {
	Row  int    `json:"row"`
	Col  int    `json:"col"`
	Type string `json:"type"`
}

// FigureData is an embedded picture used by figure and chart nodes. The
// description doubles as the numbered caption.
type FigureData struct {
	Description string  `json:"description"`
	ImageBase64 string  `json:"image_base64"`
	WidthInches float64 `json:"width_inches,omitempty"`
}

// Paragraph builds a paragraph node.
func Paragraph(text string) *Node {
	return &Node{Type: TypeParagraph, Text: text}
}

// Picture returns the image payload of a figure or chart node.
func (n *Node) Picture() *FigureData {
	if n.Type == TypeChart && n.Chart != nil {
		return n.Chart
	}
	return n.Figure
}

// IsNumeric reports whether col is listed as a numeric column.
func (t *TableData) IsNumeric(col int) bool {
	for _, c := range t.NumericColumns {
		if c == col {
			return true
		}
	}
	return false
}

// HighlightAt returns the highlight kind for a data cell, or "" when none
// applies. Entries outside the grid never match.
func (t *TableData) HighlightAt(row, col int) string {
	for _, h := range t.Highlights {
		if h.Row == row && h.Col == col {
			return h.Type
		}
	}
	return ""
}
