// Package server exposes the HTTP surface: the health endpoint, the
// OpenAI-compatible chat-completion proxy consumed by the telephony
// provider's Custom LLM mode, and the telephony webhook receivers.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/frontdesk-ai/frontdesk/internal/config"
	"github.com/frontdesk-ai/frontdesk/internal/llm"
	"github.com/frontdesk-ai/frontdesk/internal/persona"
	"github.com/frontdesk-ai/frontdesk/internal/tool"
)

// CallController issues call-control actions against the telephony provider.
type CallController interface {
	AnswerCall(ctx context.Context, callControlID string) error
	StartAIAssistant(ctx context.Context, callControlID string) error
}

type Server struct {
	cfg        *config.Config
	completer  llm.Completer
	personas   *persona.Manager
	registry   *tool.Registry
	dispatcher *tool.Dispatcher
	calls      CallController

	server      *http.Server
	shutdownTTL time.Duration
	now         func() time.Time

	mu      sync.Mutex
	started bool
}

func New(cfg *config.Config, completer llm.Completer, personas *persona.Manager, registry *tool.Registry, calls CallController) (*Server, error) {
	s := &Server{
		cfg:        cfg,
		completer:  completer,
		personas:   personas,
		registry:   registry,
		dispatcher: tool.NewDispatcher(registry),
		calls:      calls,
		now:        time.Now,
	}

	readTimeout, err := config.DurationOrDefault(cfg.Server.ReadTimeout, config.DefaultServerReadTimeout)
	if err != nil {
		return nil, fmt.Errorf("parse server read timeout: %w", err)
	}
	writeTimeout, err := config.DurationOrDefault(cfg.Server.WriteTimeout, config.DefaultServerWriteTimeout)
	if err != nil {
		return nil, fmt.Errorf("parse server write timeout: %w", err)
	}
	idleTimeout, err := config.DurationOrDefault(cfg.Server.IdleTimeout, config.DefaultServerIdleTimeout)
	if err != nil {
		return nil, fmt.Errorf("parse server idle timeout: %w", err)
	}
	shutdownTimeout, err := config.DurationOrDefault(cfg.Server.ShutdownTimeout, config.DefaultServerShutdownTimeout)
	if err != nil {
		return nil, fmt.Errorf("parse server shutdown timeout: %w", err)
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      s.routes(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
	s.shutdownTTL = shutdownTimeout

	return s, nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.handleHealth)

	// Telnyx calls either the /v1-prefixed OpenAI paths or the bare ones,
	// depending on how the Custom LLM base URL was configured.
	mux.HandleFunc("/v1/chat/completions", s.handleChatCompletions)
	mux.HandleFunc("/chat/completions", s.handleChatCompletions)
	mux.HandleFunc("/v1/models", s.handleModels)
	mux.HandleFunc("/models", s.handleModels)

	mux.HandleFunc("/telnyx/call-control", s.handleCallControl)
	mux.HandleFunc("/telnyx/ai", s.handleAIWebhook)
	mux.HandleFunc("/telnyx/status", s.handleStatus)
	mux.HandleFunc("/telnyx/diagnostic", s.handleDiagnostic)

	return mux
}

// Handler exposes the route table, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server in a goroutine.
func (s *Server) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	go func() {
		slog.Info("HTTP server listening", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server failed", "error", err)
		}
	}()

	s.started = true
}

// Stop stops the HTTP server gracefully.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	slog.Info("Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTTL)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.started = false
	slog.Info("HTTP server stopped")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response body", "error", err)
	}
}
