package render

import (
	"bytes"
	"embed"
	"encoding/xml"
	"fmt"
	"strings"
	"text/template"
)

//go:embed templates
var templateFS embed.FS

var stylesTmpl = template.Must(template.New("styles.xml.tmpl").
	Funcs(template.FuncMap{"xml": xmlEscape}).
	ParseFS(templateFS, "templates/styles.xml.tmpl"))

func xmlEscape(s string) string {
	var b strings.Builder
	if err := xml.EscapeText(&b, []byte(s)); err != nil {
		return ""
	}
	return b.String()
}

// stylesXML renders word/styles.xml for b.
func stylesXML(b Brand) ([]byte, error) {
	var buf bytes.Buffer
	if err := stylesTmpl.Execute(&buf, b); err != nil {
		return nil, fmt.Errorf("render styles: %w", err)
	}
	return buf.Bytes(), nil
}

func staticPart(name string) ([]byte, error) {
	data, err := templateFS.ReadFile("templates/" + name)
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", name, err)
	}
	return data, nil
}
