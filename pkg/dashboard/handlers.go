package dashboard

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
)

type errorBody struct {
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	reqID, _ := RequestIDFrom(r.Context())
	writeJSON(w, status, errorEnvelope{Error: errorBody{Message: msg, RequestID: reqID}})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleListCalls(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, r, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	calls, err := s.store.ListCalls(r.Context(), limit)
	if err != nil {
		s.logger.Error("list calls failed", "error", err)
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	if calls == nil {
		calls = []CallSummary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"calls": calls})
}

func (s *Server) handleCallDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		writeError(w, r, http.StatusBadRequest, "invalid call id")
		return
	}
	detail, err := s.store.CallDetail(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "call not found")
			return
		}
		s.logger.Error("call detail failed", "call_id", id, "error", err)
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	if detail.Actions == nil {
		detail.Actions = []ActionRow{}
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleFeedbackSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.store.FeedbackSummary(r.Context())
	if err != nil {
		s.logger.Error("feedback summary failed", "error", err)
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
