// CLAUDE:SUMMARY chi HTTP control plane: session start/stop/pause/resume/status plus flow listing and deletion.
package recorder

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hazyhaar/recflow/flowstore"
)

// Service bundles the recorder and its flow store behind the HTTP and MCP
// control planes.
type Service struct {
	Rec    *Recorder
	Flows  *flowstore.Store
	Logger *slog.Logger
}

// RegisterHTTP mounts the control-plane routes.
func (s *Service) RegisterHTTP(r chi.Router) {
	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/start", s.handleStart)
		r.Post("/stop", s.handleStop)
		r.Post("/pause", s.handlePause)
		r.Post("/resume", s.handleResume)
		r.Get("/status", s.handleStatus)
	})
	r.Route("/api/flows", func(r chi.Router) {
		r.Get("/", s.handleListFlows)
		r.Get("/{id}", s.handleGetFlow)
		r.Delete("/{id}", s.handleDeleteFlow)
	})
	r.Get("/api/ping", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "pong"})
	})
}

func (s *Service) handleStart(w http.ResponseWriter, r *http.Request) {
	var opts StartOptions
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&opts); err != nil && err.Error() != "EOF" {
			writeErr(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	sid, err := s.Rec.StartSession(r.Context(), opts)
	if err != nil {
		writeErr(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "session_id": sid})
}

func (s *Service) handleStop(w http.ResponseWriter, r *http.Request) {
	f, stats, err := s.Rec.StopSession(r.Context())
	if err != nil {
		writeErr(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"stats":   stats,
		"flow":    f,
	})
}

func (s *Service) handlePause(w http.ResponseWriter, r *http.Request) {
	if err := s.Rec.PauseSession(r.Context()); err != nil {
		writeErr(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "status": s.Rec.Status().Status})
}

func (s *Service) handleResume(w http.ResponseWriter, r *http.Request) {
	if err := s.Rec.ResumeSession(r.Context()); err != nil {
		writeErr(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "status": s.Rec.Status().Status})
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Rec.Status())
}

func (s *Service) handleListFlows(w http.ResponseWriter, r *http.Request) {
	sums, err := s.Flows.List(r.Context(), 100)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	if sums == nil {
		sums = []flowstore.Summary{}
	}
	writeJSON(w, http.StatusOK, sums)
}

func (s *Service) handleGetFlow(w http.ResponseWriter, r *http.Request) {
	f, err := s.Flows.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	if f == nil {
		writeErr(w, http.StatusNotFound, "flow not found")
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Service) handleDeleteFlow(w http.ResponseWriter, r *http.Request) {
	if err := s.Flows.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"success": false, "error": msg})
}
