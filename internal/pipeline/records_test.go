package pipeline

import (
	"errors"
	"testing"
	"time"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestContentHashHex_EmptyInput(t *testing.T) {
	h := ContentHashHex([]byte{})
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if h != want {
		t.Errorf("expected hash %q, got %q", want, h)
	}
}

func TestNewRecord(t *testing.T) {
	r := NewRecord(SourceJSON)
	if r.ID == "" || r.Status != StatusQueued || r.Source != SourceJSON {
		t.Errorf("unexpected new record %+v", r.Snapshot())
	}
	if other := NewRecord(SourceJSON); other.ID == r.ID {
		t.Error("expected distinct record IDs")
	}
}

func TestRecord_StateTransitions(t *testing.T) {
	r := NewRecord(SourceMarkdown)

	transitions := []struct {
		status Status
		phase  string
	}{
		{StatusParsing, "parsing"},
		{StatusValidating, "validating"},
		{StatusRendering, "rendering"},
		{StatusPackaging, "packaging"},
		{StatusStoring, "storing"},
	}

	for _, tr := range transitions {
		before := r.UpdatedAt
		time.Sleep(time.Millisecond)
		r.SetStatus(tr.status, tr.phase)

		if r.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, r.Status)
		}
		if r.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, r.Phase)
		}
		if !r.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestRecord_FailKeepsPhase(t *testing.T) {
	r := NewRecord(SourceJSON)
	r.SetStatus(StatusRendering, "rendering")
	r.Fail("render", errors.New("boom"))

	snap := r.Snapshot()
	if snap.Status != StatusFailed {
		t.Errorf("expected status %q, got %q", StatusFailed, snap.Status)
	}
	if snap.Phase != "rendering" {
		t.Errorf("expected failed phase to stay %q, got %q", "rendering", snap.Phase)
	}
	if snap.Error != "boom" || snap.ErrorKind != "render" {
		t.Errorf("unexpected error fields %q/%q", snap.Error, snap.ErrorKind)
	}
}

func TestRecord_Complete(t *testing.T) {
	r := NewRecord(SourceJSON)
	r.Complete(&Artifact{Name: "a.docx", Data: []byte("1234"), SHA256: "abc", Tables: 2, Charts: 1})

	snap := r.Snapshot()
	if snap.Status != StatusCompleted || snap.Phase != "done" {
		t.Errorf("unexpected status %q/%q", snap.Status, snap.Phase)
	}
	if snap.Filename != "a.docx" || snap.Bytes != 4 || snap.SHA256 != "abc" {
		t.Errorf("unexpected artifact fields %+v", snap)
	}
	if snap.Counts != (Counts{Tables: 2, Charts: 1}) {
		t.Errorf("unexpected counts %+v", snap.Counts)
	}
}

func TestRecordStore_PutGet(t *testing.T) {
	store := NewRecordStore(time.Hour)
	r := NewRecord(SourceJSON)
	store.Put(r)

	got := store.Get(r.ID)
	if got == nil {
		t.Fatal("expected to get record back")
	}
	if got.ID != r.ID {
		t.Errorf("expected ID %q, got %q", r.ID, got.ID)
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 record, got %d", store.Len())
	}
}

func TestRecordStore_GetMissing(t *testing.T) {
	store := NewRecordStore(time.Hour)
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing record")
	}
}

func TestRecordStore_TTLCleanup(t *testing.T) {
	store := NewRecordStore(50 * time.Millisecond)

	expired := NewRecord(SourceJSON)
	store.Put(expired)

	time.Sleep(100 * time.Millisecond)

	fresh := NewRecord(SourceJSON)
	store.Put(fresh)

	if n := store.Cleanup(); n != 1 {
		t.Errorf("expected 1 record evicted, got %d", n)
	}
	if store.Get(expired.ID) != nil {
		t.Error("expected expired record to be cleaned up")
	}
	if store.Get(fresh.ID) == nil {
		t.Error("expected fresh record to survive cleanup")
	}
}

func TestRecordStore_CleanupEmpty(t *testing.T) {
	store := NewRecordStore(time.Hour)
	if n := store.Cleanup(); n != 0 {
		t.Errorf("expected nothing evicted, got %d", n)
	}
}
