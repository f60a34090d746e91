package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/raphaelgruber/wdtable/internal/models"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	lang := s.languages.Language(r)
	result, err := s.tables.PeriodicTable(r.Context(), lang)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.render(w, r, "index.html", newPeriodicTableView(lang, result))
}

func (s *Server) handleNuclides(w http.ResponseWriter, r *http.Request) {
	lang := s.languages.Language(r)
	result, err := s.tables.NuclideChart(r.Context(), lang)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.render(w, r, "nuclides.html", newNuclideChartView(lang, result))
}

func (s *Server) handleLicense(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "license.html", pageView{Lang: s.languages.Language(r)})
}

// handleAPI returns the requested element properties, or the API
// documentation when none are requested.
func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	props := requestedProps(r)
	if len(props) == 0 {
		s.render(w, r, "api.html", pageView{Lang: s.languages.Language(r)})
		return
	}

	result, err := s.tables.ElementProps(r.Context(), s.languages.Language(r), props)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAPINuclides(w http.ResponseWriter, r *http.Request) {
	props := requestedProps(r)
	if len(props) == 0 {
		s.render(w, r, "api.html", pageView{Lang: s.languages.Language(r)})
		return
	}

	result, err := s.tables.NuclideProps(r.Context(), s.languages.Language(r), props)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.metrics.Snapshot())
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	job := s.jobs.StartRefresh(s.languages.Language(r))
	s.writeJSON(w, http.StatusAccepted, job.Snapshot())
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	jobs := s.jobs.ListJobs()
	out := make([]any, len(jobs))
	for i, job := range jobs {
		out[i] = job.Snapshot()
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	job := s.jobs.GetJob(r.PathValue("id"))
	if job == nil {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, job.Snapshot())
}

// requestedProps collects props parameters, repeated or comma separated.
func requestedProps(r *http.Request) []string {
	var props []string
	for _, value := range r.URL.Query()["props"] {
		for prop := range strings.SplitSeq(value, ",") {
			if prop = strings.TrimSpace(prop); prop != "" {
				props = append(props, prop)
			}
		}
	}
	return props
}

// statusFor maps a table error to a response status. Contradicting or
// duplicated upstream records are the upstream's fault.
func statusFor(err error) int {
	if errors.Is(err, models.ErrAttributeConflict) || errors.Is(err, models.ErrDuplicateKey) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	s.logger.Error("table request failed",
		"path", r.URL.Path,
		"status", status,
		"request_id", RequestID(r.Context()),
		"error", err)
	http.Error(w, http.StatusText(status)+": "+err.Error(), status)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to write response", "error", err)
	}
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, page string, data any) {
	var buf bytes.Buffer
	if err := s.templates[page].ExecuteTemplate(&buf, page, data); err != nil {
		s.logger.Error("failed to render page", "page", page, "request_id", RequestID(r.Context()), "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
