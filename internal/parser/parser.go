package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/reportgen/internal/doctree"
)

// DefaultTitle is used when neither the input nor the caller names the document.
const DefaultTitle = "Untitled Document"

// Parser converts raw input into a Document.
type Parser interface {
	Parse(r io.Reader, opts Options) (*doctree.Document, error)
}

// Options carries caller-supplied metadata. Non-empty fields override what
// the input itself declares.
type Options struct {
	Title      string
	Subtitle   string
	Author     string
	Date       string
	IncludeTOC *bool
	LogoBase64 string
}

func (o Options) apply(doc *doctree.Document) {
	if o.Title != "" {
		doc.Title = o.Title
	}
	if o.Subtitle != "" {
		doc.Subtitle = o.Subtitle
	}
	if o.Author != "" {
		doc.Author = o.Author
	}
	if o.Date != "" {
		doc.Date = o.Date
	}
	if o.IncludeTOC != nil {
		doc.IncludeTOC = *o.IncludeTOC
	}
	if o.LogoBase64 != "" {
		doc.LogoBase64 = o.LogoBase64
	}
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".txt":      true,
	".json":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".md", ".markdown", ".txt":
		return &MarkdownParser{}, nil
	case ".json":
		return &JSONParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}
