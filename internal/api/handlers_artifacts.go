package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dgallion1/reportgen/internal/store"
	"github.com/go-chi/chi/v5"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	f, info, err := s.svc.Store().Open(chi.URLParam(r, "filename"))
	switch {
	case errors.Is(err, store.ErrInvalidName):
		jsonError(w, "invalid filename", http.StatusBadRequest)
		return
	case errors.Is(err, store.ErrNotFound):
		jsonError(w, "file not found", http.StatusNotFound)
		return
	case err != nil:
		s.log.Error("download failed", "error", err)
		jsonError(w, "failed to open file", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", docxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+info.Name()+`"`)
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	hours := 24
	if v := r.URL.Query().Get("max_age_hours"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			jsonError(w, "max_age_hours must be a non-negative integer", http.StatusBadRequest)
			return
		}
		hours = n
	}

	deleted, err := s.svc.Cleanup(time.Duration(hours) * time.Hour)
	if err != nil {
		s.log.Error("cleanup failed", "error", err)
		jsonError(w, "cleanup failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"deleted_count": deleted,
		"max_age_hours": hours,
	})
}
