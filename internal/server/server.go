// Package server serves share pages, the messaging endpoint and the live
// save feed over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nikbrunner/spots/internal/messaging"
	"github.com/nikbrunner/spots/internal/model"
	"github.com/nikbrunner/spots/internal/remote"
	"github.com/nikbrunner/spots/internal/share"
	"github.com/nikbrunner/spots/internal/view"
)

// RequestIDHeader carries the per-request id.
const RequestIDHeader = "X-Request-ID"

// maxBody caps request bodies.
const maxBody = 1 << 20

// MessageHandler answers action-tagged messages.
type MessageHandler interface {
	Handle(ctx context.Context, req messaging.Request) messaging.Response
}

// ItemLister lists stored items.
type ItemLister interface {
	List() ([]model.SavedItem, error)
}

// Shares loads and reorders shared lists.
type Shares interface {
	Load(ctx context.Context, id string) (*share.List, error)
	Reorder(ctx context.Context, id string, items []model.SavedItem) error
}

// Server is the HTTP front of the background context.
type Server struct {
	messages MessageHandler
	items    ItemLister
	shares   Shares
	hub      *Hub
	logger   *zap.Logger
}

// NewServerParams holds parameters for creating a Server.
type NewServerParams struct {
	Messages MessageHandler
	Items    ItemLister
	Shares   Shares
	Hub      *Hub // optional; /ws is not routed without it
	Logger   *zap.Logger
}

// New creates a Server.
func New(params NewServerParams) *Server {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		messages: params.Messages,
		items:    params.Items,
		shares:   params.Shares,
		hub:      params.Hub,
		logger:   logger,
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /share/{id}", s.handleSharePage)
	mux.HandleFunc("GET /api/share/{id}", s.handleGetShare)
	mux.HandleFunc("PUT /api/share/{id}/reorder", s.handleReorder)
	mux.HandleFunc("POST /api/message", s.handleMessage)
	mux.HandleFunc("GET /api/saves", s.handleSaves)
	if s.hub != nil {
		mux.Handle("GET /ws", s.hub)
	}
	return s.withRequestID(mux)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if s.hub != nil {
		s.hub.Close()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			zap.String("id", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)))
	})
}

func (s *Server) handleSharePage(w http.ResponseWriter, r *http.Request) {
	list, err := s.shares.Load(r.Context(), r.PathValue("id"))
	if err != nil {
		s.logger.Warn("share page", zap.String("id", r.PathValue("id")), zap.Error(err))
		http.Error(w, "List not found", statusFor(err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := share.Render(w, list); err != nil {
		s.logger.Error("render share", zap.Error(err))
	}
}

type shareJSON struct {
	ID       string            `json:"id"`
	Category string            `json:"category"`
	Items    []model.SavedItem `json:"items"`
	Views    int               `json:"views"`
}

func (s *Server) handleGetShare(w http.ResponseWriter, r *http.Request) {
	list, err := s.shares.Load(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, shareJSON{ID: list.ID, Category: list.Category, Items: list.Items, Views: list.Views})
}

func (s *Server) handleReorder(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Items []model.SavedItem `json:"items"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.shares.Reorder(r.Context(), r.PathValue("id"), body.Items); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var req messaging.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	// Failures travel inside the response, matching the message contract.
	s.writeJSON(w, http.StatusOK, s.messages.Handle(r.Context(), req))
}

func (s *Server) handleSaves(w http.ResponseWriter, r *http.Request) {
	items, err := s.items.List()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	q := r.URL.Query()
	state := view.New()
	state.Filter = view.ParseFilter(q.Get("category"))
	if q.Get("sort") == "asc" {
		state.Sort.Ascending = true
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"items": view.Visible(items, state)})
}

func statusFor(err error) int {
	var be *remote.BackendError
	switch {
	case model.IsValidation(err):
		return http.StatusBadRequest
	case errors.As(err, &be) && be.StatusCode == http.StatusNotFound:
		return http.StatusNotFound
	case errors.As(err, &be):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("write response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
