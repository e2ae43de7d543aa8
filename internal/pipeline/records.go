package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is the state of one render.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusParsing    Status = "parsing"
	StatusValidating Status = "validating"
	StatusRendering  Status = "rendering"
	StatusPackaging  Status = "packaging"
	StatusStoring    Status = "storing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Record tracks a single render from request to stored artifact.
type Record struct {
	mu sync.Mutex

	ID     string
	Source string

	Status   Status
	Phase    string
	Filename string
	Title    string

	Counts Counts

	SHA256    string
	Bytes     int
	ErrorKind string
	errMsg    string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Counts tallies the numbered captions in a finished document.
type Counts struct {
	Tables  int `json:"tables"`
	Figures int `json:"figures"`
	Charts  int `json:"charts"`
}

// NewRecord starts a queued record with a fresh ID.
func NewRecord(source string) *Record {
	now := time.Now()
	return &Record{
		ID:        uuid.NewString(),
		Source:    source,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetStatus updates record status atomically.
func (r *Record) SetStatus(status Status, phase string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Status = status
	r.Phase = phase
	r.UpdatedAt = time.Now()
}

// SetTitle records the document title once the input is decoded.
func (r *Record) SetTitle(title string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Title = title
	r.UpdatedAt = time.Now()
}

// Fail marks the record failed in the current phase.
func (r *Record) Fail(kind string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Status = StatusFailed
	r.ErrorKind = kind
	r.errMsg = err.Error()
	r.UpdatedAt = time.Now()
}

// Complete stores the artifact summary and marks the record done.
func (r *Record) Complete(a *Artifact) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Status = StatusCompleted
	r.Phase = "done"
	r.Filename = a.Name
	r.SHA256 = a.SHA256
	r.Bytes = len(a.Data)
	r.Counts = Counts{Tables: a.Tables, Figures: a.Figures, Charts: a.Charts}
	r.UpdatedAt = time.Now()
}

// RecordSnapshot is a read-only, JSON-safe copy of record state.
type RecordSnapshot struct {
	ID        string    `json:"render_id"`
	Source    string    `json:"source"`
	Status    Status    `json:"status"`
	Phase     string    `json:"phase"`
	Filename  string    `json:"filename,omitempty"`
	Title     string    `json:"title,omitempty"`
	Counts    Counts    `json:"counts"`
	SHA256    string    `json:"sha256,omitempty"`
	Bytes     int       `json:"bytes"`
	Error     string    `json:"error,omitempty"`
	ErrorKind string    `json:"error_kind,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the record state.
func (r *Record) Snapshot() RecordSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RecordSnapshot{
		ID:        r.ID,
		Source:    r.Source,
		Status:    r.Status,
		Phase:     r.Phase,
		Filename:  r.Filename,
		Title:     r.Title,
		Counts:    r.Counts,
		SHA256:    r.SHA256,
		Bytes:     r.Bytes,
		Error:     r.errMsg,
		ErrorKind: r.ErrorKind,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// RecordStore is a thread-safe in-memory record registry with TTL eviction.
type RecordStore struct {
	mu      sync.Mutex
	records map[string]*Record
	ttl     time.Duration
}

func NewRecordStore(ttl time.Duration) *RecordStore {
	return &RecordStore{
		records: make(map[string]*Record),
		ttl:     ttl,
	}
}

func (s *RecordStore) Put(r *Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[r.ID] = r
}

func (s *RecordStore) Get(id string) *Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[id]
}

// Len returns the number of live records.
func (s *RecordStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Cleanup removes expired records and returns how many went.
func (s *RecordStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	n := 0
	for id, r := range s.records {
		r.mu.Lock()
		expired := now.Sub(r.UpdatedAt) > s.ttl
		r.mu.Unlock()
		if expired {
			delete(s.records, id)
			n++
		}
	}
	return n
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
