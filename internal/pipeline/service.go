package pipeline

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/reportgen/internal/doctree"
	"github.com/dgallion1/reportgen/internal/metrics"
	"github.com/dgallion1/reportgen/internal/parser"
	"github.com/dgallion1/reportgen/internal/store"
)

// Input sources, also used as metric labels.
const (
	SourceJSON     = "json"
	SourceMarkdown = "markdown"
)

// ServiceConfig holds the background cleanup settings.
type ServiceConfig struct {
	ArtifactTTL     time.Duration
	CleanupInterval time.Duration
}

// Result is a finished, stored render.
type Result struct {
	Record   RecordSnapshot
	Artifact *Artifact
	Path     string
}

// Service runs renders end to end: decode, assemble, store and record.
type Service struct {
	asm     *Assembler
	store   *store.Store
	records *RecordStore
	metrics *metrics.Metrics
	log     *slog.Logger
	cfg     ServiceConfig

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewService(asm *Assembler, st *store.Store, records *RecordStore, m *metrics.Metrics, log *slog.Logger, cfg ServiceConfig) *Service {
	return &Service{
		asm:     asm,
		store:   st,
		records: records,
		metrics: m,
		log:     log,
		cfg:     cfg,
	}
}

// Start launches the cleanup loop for expired records and old artifacts.
func (s *Service) Start(ctx context.Context) {
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	if s.cfg.CleanupInterval <= 0 {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.cfg.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

// Stop halts the cleanup loop and waits for it to exit.
func (s *Service) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Service) sweep() {
	evicted := s.records.Cleanup()
	if s.cfg.ArtifactTTL <= 0 {
		return
	}
	n, err := s.Cleanup(s.cfg.ArtifactTTL)
	if err != nil {
		s.log.Error("artifact cleanup failed", "error", err)
		return
	}
	if n > 0 || evicted > 0 {
		s.log.Info("cleanup complete", "artifacts", n, "records", evicted)
	}
}

// GenerateJSON renders a document description.
func (s *Service) GenerateJSON(ctx context.Context, body []byte) (*Result, error) {
	return s.generate(ctx, SourceJSON, func() (*doctree.Document, error) {
		return (&parser.JSONParser{}).Parse(bytes.NewReader(body), parser.Options{})
	})
}

// GenerateMarkdown renders raw markdown. Non-empty opts fields override what
// the markdown declares.
func (s *Service) GenerateMarkdown(ctx context.Context, markdown string, opts parser.Options) (*Result, error) {
	return s.generate(ctx, SourceMarkdown, func() (*doctree.Document, error) {
		return (&parser.MarkdownParser{}).Parse(bytes.NewReader([]byte(markdown)), opts)
	})
}

func (s *Service) generate(ctx context.Context, source string, decode func() (*doctree.Document, error)) (*Result, error) {
	start := time.Now()
	rec := NewRecord(source)
	s.records.Put(rec)
	log := s.log.With("render_id", rec.ID, "source", source)

	rec.SetStatus(StatusParsing, "parsing")
	doc, err := decode()
	if err != nil {
		log.Warn("decode failed", "error", err)
		rec.Fail(string(doctree.KindOf(err)), err)
		s.observe(source, outcomeFor(err), start)
		return s.result(rec, nil, ""), err
	}

	art, err := s.asm.Assemble(ctx, doc, rec)
	if err != nil {
		s.observe(source, outcomeFor(err), start)
		return s.result(rec, nil, ""), err
	}

	rec.SetStatus(StatusStoring, "storing")
	path, err := s.store.Save(art.Name, art.Data)
	if err != nil {
		log.Error("store failed", "filename", art.Name, "error", err)
		rec.Fail(metrics.OutcomeStore, err)
		s.observe(source, metrics.OutcomeStore, start)
		return s.result(rec, nil, ""), err
	}

	rec.Complete(art)
	s.observe(source, metrics.OutcomeOK, start)
	if s.metrics != nil {
		s.metrics.ObserveArtifact(len(art.Data), art.Tables, art.Figures, art.Charts)
	}
	log.Info("render complete", "filename", art.Name, "duration_ms", time.Since(start).Milliseconds())
	return s.result(rec, art, path), nil
}

func (s *Service) result(rec *Record, art *Artifact, path string) *Result {
	return &Result{Record: rec.Snapshot(), Artifact: art, Path: path}
}

func (s *Service) observe(source, outcome string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveRender(source, outcome, time.Since(start))
	}
}

func outcomeFor(err error) string {
	switch doctree.KindOf(err) {
	case doctree.KindValidation:
		return metrics.OutcomeValidation
	case doctree.KindParse:
		return metrics.OutcomeParse
	default:
		return metrics.OutcomeRender
	}
}

// Cleanup removes artifacts older than maxAge.
func (s *Service) Cleanup(maxAge time.Duration) (int, error) {
	n, err := s.store.Cleanup(maxAge)
	if s.metrics != nil && n > 0 {
		s.metrics.ObserveCleanup(n)
	}
	return n, err
}

// Record returns the snapshot of a render by ID.
func (s *Service) Record(id string) (RecordSnapshot, bool) {
	r := s.records.Get(id)
	if r == nil {
		return RecordSnapshot{}, false
	}
	return r.Snapshot(), true
}

// Store exposes the artifact store for downloads.
func (s *Service) Store() *store.Store { return s.store }

// Metrics returns the service metrics, possibly nil.
func (s *Service) Metrics() *metrics.Metrics { return s.metrics }

// IsClientError reports whether err stems from the request rather than the
// server.
func IsClientError(err error) bool {
	var de *doctree.Error
	if !errors.As(err, &de) {
		return false
	}
	return de.Kind == doctree.KindValidation || de.Kind == doctree.KindParse
}
