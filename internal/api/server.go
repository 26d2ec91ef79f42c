package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MikeSquared-Agency/prefsd/internal/extractor"
	"github.com/MikeSquared-Agency/prefsd/internal/llm"
	"github.com/MikeSquared-Agency/prefsd/internal/locale"
	"github.com/MikeSquared-Agency/prefsd/internal/transcript"
	"github.com/MikeSquared-Agency/prefsd/internal/version"
)

// maxBodyBytes bounds analyze request bodies.
const maxBodyBytes = 4 << 20

// Runner is the extraction pipeline served by the analyze endpoint.
type Runner interface {
	Run(ctx context.Context, msgs []transcript.Message, model llm.Model) (*extractor.Result, error)
}

type Server struct {
	router *chi.Mux
	port   int
	runner Runner
	logger *slog.Logger
	srv    *http.Server
}

// AnalyzeRequest carries a transcript as structured messages or as
// "role:\ncontent" text. Model overrides the configured default.
type AnalyzeRequest struct {
	Messages []transcript.Message `json:"messages,omitempty"`
	Text     string               `json:"text,omitempty"`
	Model    string               `json:"model,omitempty"`
}

func NewServer(port int, apiToken string, runner Runner, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router: router,
		port:   port,
		runner: runner,
		logger: logger,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/prefsd/status", s.status)

	router.Route("/api/v1/preferences", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(apiToken))
		r.Post("/analyze", s.analyze)
		r.Get("/languages", s.languages)
	})

	return s
}

// Handler exposes the router for embedding and tests.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.srv = &http.Server{Addr: addr, Handler: s.router}
	s.logger.Info("API server starting", "addr", addr)
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// BearerAuthMiddleware rejects requests without "Authorization: Bearer <token>".
// An empty token disables the check.
func BearerAuthMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			if r.Header.Get("Authorization") != "Bearer "+token {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"agent":   "prefsd",
		"status":  "ok",
		"version": version.Version,
	})
}

func (s *Server) languages(w http.ResponseWriter, r *http.Request) {
	type entry struct {
		Code string `json:"code"`
		Name string `json:"name"`
	}
	langs := locale.Languages()
	out := make([]entry, 0, len(langs))
	for _, l := range langs {
		out = append(out, entry{Code: l.String(), Name: l.Name()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	msgs := req.Messages
	if len(msgs) == 0 {
		var err error
		if msgs, err = transcript.ParseText(req.Text); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	for i, m := range msgs {
		if m.Role == "" {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("message %d: missing role", i))
			return
		}
	}

	result, err := s.runner.Run(r.Context(), msgs, llm.Named(req.Model))
	if err != nil {
		status := statusFor(err)
		s.logger.Error("analyze failed", "status", status, "error", err)
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func statusFor(err error) int {
	var apiErr *llm.APIError
	switch {
	case errors.Is(err, transcript.ErrEmptyTranscript), errors.Is(err, llm.ErrEmptyPrompt):
		return http.StatusBadRequest
	case errors.As(err, &apiErr):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, extractor.ErrTemplate):
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
