// Package http is a thin presentation adapter over the vault: JSON in, JSON
// out, no business logic.
package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	synapse "github.com/cameronkarthik/synapse-mind-vault-main"
	"github.com/cameronkarthik/synapse-mind-vault-main/store"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Server struct {
	options Options
	vault   *synapse.Vault
	srv     *http.Server
}

func NewServer(vault *synapse.Vault, opts ...Option) *Server {
	options := NewOptions(opts...)

	s := &Server{
		options: options,
		vault:   vault,
	}

	router := mux.NewRouter()
	router.HandleFunc("/api/thoughts", s.handleProcess).Methods(http.MethodPost)
	router.HandleFunc("/api/thoughts", s.handleCurrent).Methods(http.MethodGet)
	router.HandleFunc("/api/thoughts/search", s.handleSearch).Methods(http.MethodGet)
	router.HandleFunc("/api/thoughts/recent", s.handleRecent).Methods(http.MethodGet)
	router.HandleFunc("/api/history", s.handleHistory).Methods(http.MethodGet)
	router.HandleFunc("/api/history", s.handleClearHistory).Methods(http.MethodDelete)
	router.HandleFunc("/api/session", s.handleClearSession).Methods(http.MethodDelete)

	s.srv = &http.Server{
		Addr:    options.Address,
		Handler: router,
	}

	return s
}

// Handler exposes the routing table so the server can be mounted or driven
// directly in tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) Run() error {
	s.options.Logger.Info("http server listening", zap.String("address", s.options.Address))

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) Shutdown() error {
	return s.srv.Shutdown(s.options.Context)
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Input string `json:"input"`
	}

	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	thought, err := s.vault.Process(r.Context(), body.Input)
	if err != nil {
		var storageErr *store.StorageError
		if errors.As(err, &storageErr) {
			// The record is still visible in memory; report the failed
			// write alongside it.
			s.writeJSON(w, http.StatusAccepted, map[string]any{
				"thought": thought,
				"error":   err.Error(),
			})
			return
		}
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	s.writeJSON(w, http.StatusOK, thought)
}

func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.vault.Current())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.vault.History())
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if len(query) == 0 {
		s.writeError(w, http.StatusBadRequest, errors.New("query parameter q is required"))
		return
	}

	thoughts, err := s.vault.Search(r.Context(), query)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.writeJSON(w, http.StatusOK, thoughts)
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); len(raw) > 0 {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			s.writeError(w, http.StatusBadRequest, errors.New("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	thoughts, err := s.vault.Recent(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.writeJSON(w, http.StatusOK, thoughts)
}

func (s *Server) handleClearSession(w http.ResponseWriter, r *http.Request) {
	if err := s.vault.ClearSession(); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.vault.ClearHistory(r.Context()); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.options.Logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
