package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRender(t *testing.T) {
	m := New(time.Hour)
	m.ObserveRender("json", OutcomeOK, 250*time.Millisecond)
	m.ObserveRender("json", OutcomeValidation, time.Millisecond)
	m.ObserveRender("markdown", OutcomeOK, 50*time.Millisecond)

	if got := testutil.ToFloat64(m.renders.WithLabelValues("json", OutcomeOK)); got != 1 {
		t.Errorf("json ok = %v", got)
	}
	if got := testutil.ToFloat64(m.renders.WithLabelValues("json", OutcomeValidation)); got != 1 {
		t.Errorf("json validation = %v", got)
	}
	st := m.Window.Stats()
	if st.Renders != 3 || st.Failures != 1 {
		t.Errorf("renders/failures = %d/%d, want 3/1", st.Renders, st.Failures)
	}
	// Failed renders stay out of the latency summary.
	if st.Latency.Count != 2 {
		t.Errorf("latency count = %d, want 2", st.Latency.Count)
	}
	if st.Sources["markdown"].MaxMs != 50 {
		t.Errorf("markdown latency = %+v", st.Sources["markdown"])
	}
}

func TestObserveArtifactAndCleanup(t *testing.T) {
	m := New(time.Hour)
	m.ObserveArtifact(20000, 3, 1, 0)
	m.ObserveCleanup(4)

	if got := testutil.ToFloat64(m.captions.WithLabelValues("table")); got != 3 {
		t.Errorf("table captions = %v", got)
	}
	if got := testutil.ToFloat64(m.cleaned); got != 4 {
		t.Errorf("cleaned = %v", got)
	}
}

func TestHandlerExposition(t *testing.T) {
	m := New(time.Hour)
	m.ObserveRender("json", OutcomeOK, time.Second)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `reportgen_renders_total{outcome="ok",source="json"} 1`) {
		t.Errorf("exposition missing render counter:\n%s", body)
	}
}
