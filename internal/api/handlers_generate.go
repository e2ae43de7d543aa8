package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/dgallion1/reportgen/internal/doctree"
	"github.com/dgallion1/reportgen/internal/parser"
	"github.com/dgallion1/reportgen/internal/pipeline"
)

// generateResponse is the reply of both generate endpoints.
type generateResponse struct {
	Success     bool   `json:"success"`
	RenderID    string `json:"render_id,omitempty"`
	Filename    string `json:"filename"`
	DownloadURL string `json:"download_url,omitempty"`
	FileBase64  string `json:"file_base64,omitempty"`
	Error       string `json:"error,omitempty"`
	Kind        string `json:"kind,omitempty"`
}

// markdownRequest is the body of /generate-from-markdown. Set fields override
// what the markdown declares.
type markdownRequest struct {
	Markdown   string `json:"markdown"`
	Title      string `json:"title"`
	Subtitle   string `json:"subtitle"`
	Author     string `json:"author"`
	Date       string `json:"date"`
	IncludeTOC *bool  `json:"include_toc"`
	LogoBase64 string `json:"logo_base64"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	res, err := s.svc.GenerateJSON(r.Context(), body)
	s.writeResult(w, r, res, err)
}

func (s *Server) handleGenerateMarkdown(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	var req markdownRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, generateResponse{Error: "invalid JSON: " + err.Error(), Kind: string(doctree.KindParse)})
		return
	}
	if strings.TrimSpace(req.Markdown) == "" {
		writeJSON(w, http.StatusUnprocessableEntity, generateResponse{Error: "markdown is required", Kind: string(doctree.KindValidation)})
		return
	}

	res, err := s.svc.GenerateMarkdown(r.Context(), req.Markdown, parser.Options{
		Title:      req.Title,
		Subtitle:   req.Subtitle,
		Author:     req.Author,
		Date:       req.Date,
		IncludeTOC: req.IncludeTOC,
		LogoBase64: req.LogoBase64,
	})
	s.writeResult(w, r, res, err)
}

// readBody reads the request body up to the configured limit.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, "request body exceeds "+strconv.FormatInt(s.cfg.MaxBodyBytes, 10)+" bytes", http.StatusRequestEntityTooLarge)
			return nil, false
		}
		jsonError(w, "failed to read request body", http.StatusBadRequest)
		return nil, false
	}
	return body, true
}

func (s *Server) writeResult(w http.ResponseWriter, r *http.Request, res *pipeline.Result, err error) {
	resp := generateResponse{RenderID: res.Record.ID}
	if err != nil {
		resp.Error = err.Error()
		resp.Kind = res.Record.ErrorKind
		writeJSON(w, statusFor(err), resp)
		return
	}

	resp.Success = true
	resp.Filename = res.Artifact.Name
	resp.DownloadURL = s.cfg.BaseURL + "/download/" + res.Artifact.Name
	if wantBase64(r) {
		resp.FileBase64 = base64.StdEncoding.EncodeToString(res.Artifact.Data)
	}
	writeJSON(w, http.StatusOK, resp)
}

// statusFor maps an error kind to an HTTP status.
func statusFor(err error) int {
	var de *doctree.Error
	if !errors.As(err, &de) {
		return http.StatusInternalServerError
	}
	switch de.Kind {
	case doctree.KindValidation:
		return http.StatusUnprocessableEntity
	case doctree.KindParse:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func wantBase64(r *http.Request) bool {
	b, err := strconv.ParseBool(r.URL.Query().Get("return_base64"))
	return err == nil && b
}
