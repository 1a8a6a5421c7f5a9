// Package api exposes the user-search client over a small JSON API.
// Every response uses the {data, error} envelope so UI callers never
// have to distinguish transport failures from domain failures.
package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/rubiojr/hubscout/pkg/github"
	"github.com/rubiojr/hubscout/pkg/log"
)

type Server struct {
	mu     sync.RWMutex
	client *github.Client
	logger *log.Logger
}

func NewServer(client *github.Client) *Server {
	return &Server{
		client: client,
		logger: log.ForService("api"),
	}
}

// SetClient swaps the underlying client, used by the serve command
// after a configuration reload.
func (s *Server) SetClient(client *github.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = client
}

func (s *Server) getClient() *github.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Errorf("encoding JSON response: %v", err)
	}
}

func (s *Server) writeResult(w http.ResponseWriter, data interface{}) {
	s.writeJSON(w, http.StatusOK, ResultEnvelope{Data: data})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	envelope := ResultEnvelope{Error: err.Error()}
	s.writeJSON(w, status, envelope)
}

// statusForError maps the client's error taxonomy onto HTTP statuses.
func statusForError(err error) int {
	switch github.KindOf(err) {
	case github.KindValidation:
		return http.StatusBadRequest
	case github.KindNotFound:
		return http.StatusNotFound
	case github.KindRateLimited:
		return http.StatusTooManyRequests
	case github.KindForbidden:
		return http.StatusForbidden
	case github.KindUnauthorized:
		return http.StatusUnauthorized
	case github.KindUnprocessable:
		return http.StatusUnprocessableEntity
	case github.KindCancelled:
		// The request was aborted on purpose; 499 is the de facto
		// "client closed request" status.
		return 499
	default:
		return http.StatusBadGateway
	}
}

func CorsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequestIDMiddleware tags every request with an ID for log
// correlation.
func RequestIDMiddleware(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := uuid.NewString()
			w.Header().Set("X-Request-Id", id)
			logger.Debugf("%s %s (%s)", r.Method, r.URL.Path, id)
			next.ServeHTTP(w, r)
		})
	}
}
