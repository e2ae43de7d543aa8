package parser

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dgallion1/reportgen/internal/doctree"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaJSON []byte

var loadSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
})

// JSONParser decodes a document description. The payload is checked against
// the embedded JSON schema before it is decoded.
type JSONParser struct{}

func (p *JSONParser) Parse(r io.Reader, opts Options) (*doctree.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	doc, err := DecodeDocument(data)
	if err != nil {
		return nil, err
	}
	opts.apply(doc)
	return doc, nil
}

// DecodeDocument validates data against the description schema and decodes
// it. include_toc defaults to true when absent.
func DecodeDocument(data []byte) (*doctree.Document, error) {
	if !json.Valid(data) {
		return nil, &doctree.Error{Kind: doctree.KindParse, Section: -1, Index: -1, Msg: "request body is not valid JSON"}
	}
	if err := CheckSchema(data); err != nil {
		return nil, err
	}

	doc := &doctree.Document{IncludeTOC: true}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, &doctree.Error{Kind: doctree.KindParse, Section: -1, Index: -1, Msg: "decode document", Err: err}
	}
	return doc, nil
}

// CheckSchema reports every schema violation in data as one validation error.
func CheckSchema(data []byte) error {
	schema, err := loadSchema()
	if err != nil {
		return fmt.Errorf("load document schema: %w", err)
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return &doctree.Error{Kind: doctree.KindParse, Section: -1, Index: -1, Msg: "schema check", Err: err}
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		msgs = append(msgs, fmt.Sprintf("%s: %s", re.Field(), re.Description()))
	}
	return doctree.Validationf("schema: %s", strings.Join(msgs, "; "))
}
