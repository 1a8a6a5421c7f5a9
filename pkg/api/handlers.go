package api

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rubiojr/hubscout/pkg/github"
	"github.com/rubiojr/hubscout/pkg/version"
)

func (s *Server) HandleSearch(w http.ResponseWriter, r *http.Request) {
	params := parseSearchParams(r.URL.Query())

	page, err := s.getClient().SearchUsers(r.Context(), params)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeResult(w, page)
}

func (s *Server) HandleUser(w http.ResponseWriter, r *http.Request) {
	login := r.PathValue("login")

	profile, err := s.getClient().FetchUserData(r.Context(), login)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeResult(w, profile)
}

func (s *Server) HandleRateLimit(w http.ResponseWriter, r *http.Request) {
	rateLimit, err := s.getClient().CurrentRateLimit(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeResult(w, rateLimit)
}

func (s *Server) HandleCancel(w http.ResponseWriter, r *http.Request) {
	reason := r.URL.Query().Get("reason")
	if reason == "" {
		reason = "cancelled via API"
	}
	s.getClient().CancelAllRequests(reason)
	s.writeResult(w, map[string]string{"status": "cancelled"})
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   version.Version,
	})
}

// parseSearchParams maps URL query parameters onto SearchParams.
// Unparseable numeric values are left at zero, mirroring the query
// builder's drop-don't-fail policy.
func parseSearchParams(query url.Values) github.SearchParams {
	params := github.SearchParams{
		Username:    query.Get("q"),
		Location:    query.Get("location"),
		Language:    query.Get("language"),
		Created:     query.Get("created"),
		AccountType: query.Get("type"),
		Sort:        query.Get("sort"),
		Order:       query.Get("order"),
	}

	params.MinRepos = intParam(query, "min_repos")
	params.MaxRepos = intParam(query, "max_repos")
	params.MinFollowers = intParam(query, "min_followers")
	params.MaxFollowers = intParam(query, "max_followers")
	params.Page = intParam(query, "page")
	params.PerPage = intParam(query, "per_page")

	if hireable := query.Get("hireable"); hireable != "" {
		params.Hireable, _ = strconv.ParseBool(hireable)
	}

	return params
}

func intParam(query url.Values, name string) int {
	raw := query.Get(name)
	if raw == "" {
		return 0
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 0 {
		return 0
	}
	return parsed
}
