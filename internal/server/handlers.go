package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/joshu/internal/answer"
	"github.com/hyperjump/joshu/internal/models"
	"github.com/hyperjump/joshu/internal/storage"
	"github.com/hyperjump/joshu/pkg/utils"
)

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req models.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("ask request", zap.String("question", utils.Truncate(req.Question, 80)))

	resp, err := s.engine.Ask(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrEmptyQuestion):
			s.respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, answer.ErrUpstream):
			// Degrade in band: callers get a well-formed answer payload
			// carrying the failure instead of a transport error.
			s.logger.Warn("upstream failure, degrading response", zap.Error(err))
			s.respondJSON(w, http.StatusOK, &models.AskResponse{
				Answer: fmt.Sprintf("Error generating response: %v", err),
				Links:  []models.CitationLink{},
			})
		default:
			s.logger.Error("ask failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"records":         s.store.Len(),
		"dimensions":      s.store.Dimensions(),
		"sources":         s.store.CountBySource(),
		"skipped_records": s.store.Skipped(),
		"store_path":      s.store.Path(),
		"retrieval":       s.config.Ask.Retrieval,
		"version":         s.version,
	}
	if !s.started.IsZero() {
		resp["uptime_secs"] = int64(time.Since(s.started).Seconds())
	}
	if s.store.Path() != "" {
		if info, err := os.Stat(s.store.Path()); err == nil {
			resp["store_file_bytes"] = info.Size()
		}
	}
	diskBytes, err := storage.DatabaseDiskUsage(s.config.Embedding.CachePath)
	if err == nil {
		resp["cache_disk_bytes"] = diskBytes
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
