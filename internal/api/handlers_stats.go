package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleRenderStatus(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.svc.Record(chi.URLParam(r, "renderID"))
	if !ok {
		jsonError(w, "render not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleRenderStats(w http.ResponseWriter, r *http.Request) {
	m := s.svc.Metrics()
	if m == nil || m.Window == nil {
		jsonError(w, "render stats unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"stats": m.Window.Stats(),
	})
}
