package store

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "out"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return s
}

func TestSanitize(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"report_20240101_120000_abc123.docx", "report_20240101_120000_abc123.docx", true},
		{"../../etc/passwd.docx", "passwd.docx", true},
		{`..\..\secret.docx`, "secret.docx", true},
		{"REPORT.DOCX", "REPORT.DOCX", true},
		{"notes.txt", "", false},
		{".hidden.docx", "", false},
		{"", "", false},
		{"../", "", false},
	}
	for _, tc := range cases {
		got, err := Sanitize(tc.in)
		if !tc.ok {
			assert.ErrorIs(t, err, ErrInvalidName, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}
}

func TestSaveOpen(t *testing.T) {
	s := newStore(t)
	path, err := s.Save("a.docx", []byte("payload"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Dir(), "a.docx"), path)

	f, info, err := s.Open("a.docx")
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
	assert.EqualValues(t, 7, info.Size())

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestSaveRejectsBadName(t *testing.T) {
	s := newStore(t)
	_, err := s.Save("a.exe", []byte("x"))
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestOpenMissing(t *testing.T) {
	s := newStore(t)
	_, _, err := s.Open("missing.docx")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCleanup(t *testing.T) {
	s := newStore(t)
	_, err := s.Save("old.docx", []byte("x"))
	require.NoError(t, err)
	_, err = s.Save("new.docx", []byte("y"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "keep.txt"), []byte("z"), 0o644))

	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(s.Dir(), "old.docx"), old, old))
	require.NoError(t, os.Chtimes(filepath.Join(s.Dir(), "keep.txt"), old, old))

	n, err := s.Cleanup(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, _, err = s.Open("old.docx")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = os.Stat(filepath.Join(s.Dir(), "new.docx"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(s.Dir(), "keep.txt"))
	assert.NoError(t, err, "non-artifact files are left alone")
}

func TestCleanupSparesInFlightPartials(t *testing.T) {
	s := newStore(t)
	fresh := filepath.Join(s.Dir(), partialPrefix+"fresh")
	stale := filepath.Join(s.Dir(), partialPrefix+"stale")
	require.NoError(t, os.WriteFile(fresh, []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(stale, []byte("b"), 0o644))
	old := time.Now().Add(-2 * PartialGrace)
	require.NoError(t, os.Chtimes(stale, old, old))

	done, err := s.Save("done.docx", []byte("c"))
	require.NoError(t, err)
	minuteAgo := time.Now().Add(-time.Minute)
	require.NoError(t, os.Chtimes(done, minuteAgo, minuteAgo))

	n, err := s.Cleanup(0)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "only the finished artifact counts")

	_, err = os.Stat(fresh)
	assert.NoError(t, err, "a write younger than the grace period survives")
	_, err = os.Stat(stale)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
