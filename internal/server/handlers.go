package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"complib/internal/library"
	"complib/internal/model"
)

// ExportFileName is the attachment name of GET /api/export.
const ExportFileName = "component-library-export.json"

func (s *Server) listComponents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := model.Status(q.Get("status"))
	if status != "" && status != library.StatusAll && !status.Valid() {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid status %q", status))
		return
	}

	all, err := s.lib.ListComponents()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.metrics.Components.Set(float64(len(all)))

	f := library.Filter{Query: q.Get("q"), Status: status, Author: q.Get("author"), Tag: q.Get("tag")}
	out := make([]*model.GeneratedComponent, 0, len(all))
	for _, c := range all {
		if f.Match(c) {
			out = append(out, c)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getComponent(w http.ResponseWriter, r *http.Request) {
	c, ok := s.component(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// deleteComponent is a no-op for unknown ids.
func (s *Server) deleteComponent(w http.ResponseWriter, r *http.Request) {
	if err := s.lib.DeleteAndRecord(chi.URLParam(r, "id"), library.ActionDeleted, nil); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// previewComponent always answers 200 with HTML for a known component; a
// render failure produces the error state.
func (s *Server) previewComponent(w http.ResponseWriter, r *http.Request) {
	c, ok := s.component(w, r)
	if !ok {
		return
	}
	html, renderErr := s.renderer.RenderState(c.Code)
	if html == "" && renderErr != nil {
		s.writeError(w, http.StatusInternalServerError, renderErr)
		return
	}
	if renderErr != nil {
		s.metrics.RecordPreview("error")
		s.logger.Warn("preview failed", "component", c.Metadata.ID, "error", renderErr)
	} else {
		s.metrics.RecordPreview("ok")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, string(html))
}

func (s *Server) componentCode(w http.ResponseWriter, r *http.Request) {
	c, ok := s.component(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, c.Code)
}

func (s *Server) downloadComponent(w http.ResponseWriter, r *http.Request) {
	c, ok := s.component(w, r)
	if !ok {
		return
	}
	if err := s.lib.RecordHistory(library.ActionDownloaded, c.Metadata.ID, nil); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", c.Metadata.Name+".tsx"))
	_, _ = io.WriteString(w, c.Code)
}

func (s *Server) history(w http.ResponseWriter, _ *http.Request) {
	entries, err := s.lib.History()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if entries == nil {
		entries = []model.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) export(w http.ResponseWriter, _ *http.Request) {
	data, err := s.lib.ExportAll()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ExportFileName))
	_, _ = w.Write(data)
}

func (s *Server) importLibrary(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportSize))
	if err != nil {
		s.writeError(w, http.StatusRequestEntityTooLarge, err)
		return
	}
	if err := s.lib.ImportAll(data); err != nil {
		if errors.Is(err, library.ErrInvalidImportFormat) {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
