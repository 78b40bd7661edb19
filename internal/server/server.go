// Package server exposes the HTTP surface: the prompt endpoint, the
// GitHub webhook, and static assets.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"docsbot/internal/domain"
)

// errorFragment is the single streamed fragment sent when the answer
// path fails. Callers treat stream content, not the status code, as
// the success signal.
const errorFragment = "Error with your prompt"

// Answerer is the server-facing subset of the answer service.
type Answerer interface {
	Answer(ctx context.Context, prompt string) (domain.Stream, error)
}

// Triggerer requests a reindex without blocking the caller.
type Triggerer interface {
	Trigger()
}

// Server wires the HTTP handlers to the answer service and the
// reindex coordinator.
type Server struct {
	answers   Answerer
	trigger   Triggerer
	staticDir string
	logger    *slog.Logger
}

func New(answers Answerer, trigger Triggerer, staticDir string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{answers: answers, trigger: trigger, staticDir: staticDir, logger: logger}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /prompt", s.handlePrompt)
	mux.HandleFunc("POST /webhooks/github", s.handleGithubWebhook)
	mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))
	return mux
}

type promptRequest struct {
	Prompt string `json:"prompt"`
}

// handlePrompt streams plain-text answer fragments. Failures degrade
// to a single explanatory fragment on a 200 rather than an HTTP error
// status.
func (s *Server) handlePrompt(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Warn("bad prompt body", "error", err)
		_, _ = io.WriteString(w, errorFragment)
		return
	}

	stream, err := s.answers.Answer(r.Context(), req.Prompt)
	if err != nil {
		s.logger.Warn("prompt failed", "error", err)
		_, _ = io.WriteString(w, errorFragment)
		return
	}
	defer stream.Close()

	flusher, _ := w.(http.Flusher)
	wrote := false
	for {
		token, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			s.logger.Warn("answer stream dropped", "error", err)
			if !wrote {
				_, _ = io.WriteString(w, errorFragment)
			}
			return
		}
		if token == "" {
			continue
		}
		if _, err := io.WriteString(w, token); err != nil {
			// Client went away; Close releases the provider connection.
			return
		}
		wrote = true
		if flusher != nil {
			flusher.Flush()
		}
	}
}

// handleGithubWebhook triggers a reindex on push events. Anything else
// is rejected with no side effect.
func (s *Server) handleGithubWebhook(w http.ResponseWriter, r *http.Request) {
	event := r.Header.Get("X-Github-Event")
	if event == "" {
		http.Error(w, "missing X-Github-Event header", http.StatusBadRequest)
		return
	}
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "bad webhook payload", http.StatusBadRequest)
		return
	}
	if event != "push" {
		http.Error(w, "unsupported event type", http.StatusBadRequest)
		return
	}
	s.logger.Info("push event received, scheduling reindex")
	s.trigger.Trigger()
	w.WriteHeader(http.StatusOK)
}
