package render

import (
	"bytes"
	"fmt"

	"github.com/dgallion1/reportgen/internal/doctree"
	"github.com/fumiama/go-docx"
	"github.com/fumiama/imgsz"
)

// picture writes the numbered caption, then the centered image scaled to the
// requested width.
func (b *Builder) picture(kind string, f *doctree.FigureData) error {
	if f == nil {
		return fmt.Errorf("%s has no image", kind)
	}
	data, err := doctree.DecodeImage(f.ImageBase64)
	if err != nil {
		return err
	}
	cx, cy, err := scaledExtent(data, f.WidthInches)
	if err != nil {
		return err
	}

	b.caption(kind, f.Description)

	p := styled(b.file.AddParagraph(), "Figure")
	run, err := p.AddInlineDrawing(data)
	if err != nil {
		return fmt.Errorf("embed %s: %w", kind, err)
	}
	d := run.Children[0].(*docx.Drawing)
	d.Inline.Size(cx, cy)
	name := fmt.Sprintf("%s %d", kind, b.ctx.Count(kind))
	d.Inline.DocPr.Name = name
	d.Inline.Graphic.GraphicData.Pic.NonVisualPicProperties.NonVisualDrawingProperties.Name = name

	b.file.AddParagraph()
	return nil
}

// scaledExtent returns the picture size in EMU for a target width in inches.
// The width defaults to six inches and never exceeds the printable width;
// height follows the image's aspect ratio.
func scaledExtent(data []byte, inches float64) (int64, int64, error) {
	sz, _, err := imgsz.DecodeSize(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("read image size: %w", err)
	}
	if sz.Width <= 0 || sz.Height <= 0 {
		return 0, 0, fmt.Errorf("image has zero size")
	}
	if inches <= 0 {
		inches = defaultInch
	}
	cx := int64(inches * emuPerInch)
	if limit := int64(PrintableWidth * emuPerTwip); cx > limit {
		cx = limit
	}
	cy := cx * int64(sz.Height) / int64(sz.Width)
	return cx, cy, nil
}
