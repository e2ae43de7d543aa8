package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/dgallion1/reportgen/internal/doctree"
	"github.com/dgallion1/reportgen/internal/render"
)

// Artifact is one finished document.
type Artifact struct {
	Name    string
	Data    []byte
	SHA256  string
	Tables  int
	Figures int
	Charts  int
}

// Assembler turns a Document into a branded .docx. It holds no per-render
// state and is safe for concurrent use.
type Assembler struct {
	opts   render.Options
	prefix string
	log    *slog.Logger

	now    func() time.Time
	suffix func() string
}

func NewAssembler(opts render.Options, prefix string, log *slog.Logger) *Assembler {
	return &Assembler{
		opts:   opts,
		prefix: prefix,
		log:    log,
		now:    time.Now,
		suffix: randomSuffix,
	}
}

// Assemble validates doc and renders it. rec follows the phases; on failure
// it is left in the failed phase and no bytes are returned.
func (a *Assembler) Assemble(ctx context.Context, doc *doctree.Document, rec *Record) (*Artifact, error) {
	log := a.log.With("render_id", rec.ID, "source", rec.Source)

	// Phase 1: Validate
	rec.SetStatus(StatusValidating, "validating")
	if err := doctree.Validate(doc); err != nil {
		log.Warn("validation failed", "error", err)
		rec.Fail(string(doctree.KindOf(err)), err)
		return nil, err
	}
	rec.SetTitle(doc.Title)
	log.Info("document validated", "sections", len(doc.Sections), "toc", doc.IncludeTOC)

	var logo []byte
	if doc.LogoBase64 != "" {
		// Validate has already decoded it once.
		logo, _ = doctree.DecodeImage(doc.LogoBase64)
	}

	// Phase 2: Render title block, TOC placeholder and sections.
	rec.SetStatus(StatusRendering, "rendering")
	b := render.NewBuilder(a.opts)
	if err := b.Body(ctx, doc); err != nil {
		log.Error("render failed", "error", err)
		rec.Fail(string(doctree.KindOf(err)), err)
		return nil, err
	}
	rc := b.Context()
	log.Info("sections rendered",
		"sections", len(doc.Sections),
		"tables", rc.Count(doctree.TypeTable),
		"figures", rc.Count(doctree.TypeFigure),
		"charts", rc.Count(doctree.TypeChart),
	)

	// Phase 3: Footer and package.
	rec.SetStatus(StatusPackaging, "packaging")
	data, err := b.Finish(doc, logo)
	if err != nil {
		log.Error("packaging failed", "error", err)
		rec.Fail(string(doctree.KindOf(err)), err)
		return nil, err
	}

	art := &Artifact{
		Name:    ArtifactName(a.prefix, a.now(), a.suffix()),
		Data:    data,
		SHA256:  ContentHashHex(data),
		Tables:  rc.Count(doctree.TypeTable),
		Figures: rc.Count(doctree.TypeFigure),
		Charts:  rc.Count(doctree.TypeChart),
	}
	log.Info("document packaged", "filename", art.Name, "bytes", len(data), "logo", logo != nil)
	return art, nil
}
