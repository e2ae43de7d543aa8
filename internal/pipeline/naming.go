package pipeline

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9_-]`)
	slugRepeat  = regexp.MustCompile(`-+`)
)

// Slugify converts a string to a file-name-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugInvalid.ReplaceAllString(s, "-")
	s = slugRepeat.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-_")
	if len(s) > 50 {
		s = s[:50]
	}
	return s
}

// ArtifactName builds "<prefix>_<YYYYMMDD_HHMMSS>_<suffix>.docx". An empty
// prefix falls back to "report".
func ArtifactName(prefix string, at time.Time, suffix string) string {
	p := Slugify(prefix)
	if p == "" {
		p = "report"
	}
	return p + "_" + at.Format("20060102_150405") + "_" + suffix + ".docx"
}

// randomSuffix returns six hex characters from a random UUID.
func randomSuffix() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:6]
}
