package api

import (
	"net/http"
)

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/search", s.HandleSearch)
	mux.HandleFunc("GET /api/users/{login}", s.HandleUser)
	mux.HandleFunc("GET /api/ratelimit", s.HandleRateLimit)
	mux.HandleFunc("POST /api/cancel", s.HandleCancel)
	mux.HandleFunc("GET /health", s.HandleHealth)
}
