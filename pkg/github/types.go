package github

import (
	"time"
)

// Sort keys accepted by SearchParams.Sort. Relevance is the provider's
// default ordering and is sent as an empty sort parameter.
const (
	SortRelevance    = "relevance"
	SortFollowers    = "followers"
	SortRepositories = "repositories"
	SortJoined       = "joined"
)

// Sort orders accepted by SearchParams.Order.
const (
	OrderAscending  = "asc"
	OrderDescending = "desc"
)

// SearchParams is the caller-supplied filter set for SearchUsers.
// At least one substantive filter (anything besides Page, PerPage, Sort
// and Order) must be set; an empty filter set is rejected before any
// request is issued.
type SearchParams struct {
	// Username is a login or name fragment. A fragment matching the
	// GitHub handle grammar searches for that exact handle; anything
	// else becomes a fuzzy login match.
	Username string

	// Location limits results to users in a given location. Phrases
	// with whitespace are quoted as a single token.
	Location string

	// MinRepos and MaxRepos bound the public repository count.
	// Only positive values are used.
	MinRepos int
	MaxRepos int

	// MinFollowers and MaxFollowers bound the follower count.
	MinFollowers int
	MaxFollowers int

	// Language filters by primary repository language.
	Language string

	// Created filters by account creation date. Passed through to the
	// provider as given, e.g. ">=2020-01-01".
	Created string

	// AccountType is "user" or "org". When empty and no username
	// fragment is given, "user" is assumed so organizations are
	// excluded by default.
	AccountType string

	// Hireable keeps only users whose profile advertises hireability.
	// The provider has no search qualifier for this, so it is applied
	// client-side after enrichment; entries without profile details
	// are kept.
	Hireable bool

	// Page is 1-based. Zero means page 1.
	Page int

	// PerPage is clamped to [1, 100]. Zero means the default (10).
	PerPage int

	// Sort is one of the Sort* constants. Empty means SortFollowers.
	Sort string

	// Order is OrderAscending or OrderDescending. Empty means descending.
	Order string
}

// UserSummary is the lightweight record returned by the search endpoint.
type UserSummary struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
	HTMLURL   string `json:"html_url"`
}

// UserProfile is the full per-user record. Search results are enriched
// into this shape; when the detail lookup for a user fails the entry
// keeps its summary fields and DetailsUnavailable is set.
type UserProfile struct {
	UserSummary

	Name        string    `json:"name,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	Company     string    `json:"company,omitempty"`
	Location    string    `json:"location,omitempty"`
	Blog        string    `json:"blog,omitempty"`
	Email       string    `json:"email,omitempty"`
	PublicRepos int       `json:"public_repos"`
	Followers   int       `json:"followers"`
	Following   int       `json:"following"`
	Hireable    bool      `json:"hireable"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`

	DetailsUnavailable bool `json:"details_unavailable,omitempty"`
}

// SearchResultPage is one page of enriched search results plus the
// pagination metadata and the rate-limit snapshot observed after the
// page was assembled.
type SearchResultPage struct {
	Items []UserProfile `json:"items"`

	// TotalCount is the provider-reported estimate. GitHub caps user
	// search results at 1000 regardless of this value.
	TotalCount        int  `json:"total_count"`
	IncompleteResults bool `json:"incomplete_results"`

	Page    int  `json:"page"`
	PerPage int  `json:"per_page"`
	HasMore bool `json:"has_more"`

	RateLimit RateLimit `json:"rate_limit"`
}

// RateLimit is a point-in-time snapshot of the provider quota.
type RateLimit struct {
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	Used      int       `json:"used"`
	Reset     time.Time `json:"reset"`
}
