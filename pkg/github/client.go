// Package github implements the user-search client: query construction,
// transport with response caching and auth-token injection, rate-limit
// tracking, batched profile enrichment and session-scoped cancellation.
//
// The two entry points are SearchUsers and FetchUserData. Both return
// *Error values with user-facing messages; see errors.go for the
// taxonomy. CancelAllRequests aborts everything in flight and leaves
// the client usable for subsequent calls.
package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/go-github/v73/github"
	"github.com/rubiojr/hubscout/pkg/log"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout         = 12 * time.Second
	defaultSearchCacheTTL  = 5 * time.Minute
	defaultProfileCacheTTL = 2 * time.Minute
	defaultEnrichLimit     = 30
	defaultBatchSize       = 4
	defaultBatchInterval   = 1200 * time.Millisecond
	defaultSearchBuffer    = 3
	defaultEnrichBuffer    = 5
	defaultPerPage         = 10
	maxPerPage             = 100
)

// CredentialStore supplies the optional auth token. When the provider
// rejects the stored credentials the token is cleared so the client
// falls back to unauthenticated requests on the next run.
type CredentialStore interface {
	Token() (string, error)
	ClearToken() error
}

// Options configures a Client. The zero value is usable: every field
// falls back to a documented default.
type Options struct {
	// BaseURL overrides the provider endpoint, mainly for tests.
	// Must end with a trailing slash when set.
	BaseURL string

	// Token is used verbatim when set. Otherwise the credential
	// store, then the GITHUB_TOKEN environment variable, are tried.
	Token string

	// Credentials is the optional token store.
	Credentials CredentialStore

	// Timeout bounds each individual request. Default 12s. There is
	// deliberately no overall deadline across a whole search plus its
	// enrichment batches; callers needing one pass a context.
	Timeout time.Duration

	// SearchCacheTTL and ProfileCacheTTL bound how long successful
	// responses are served from memory. Defaults 5m and 2m.
	SearchCacheTTL  time.Duration
	ProfileCacheTTL time.Duration

	// DisableCache bypasses the response cache entirely.
	DisableCache bool

	// EnrichLimit caps how many users of a page get detail lookups
	// (default 30). BatchSize users are fetched concurrently, then
	// the client waits BatchInterval before the next batch.
	EnrichLimit   int
	BatchSize     int
	BatchInterval time.Duration

	// RateLimitBuffer is the remaining-quota floor below which a new
	// search fails fast (default 3). EnrichBuffer is the floor below
	// which enrichment stops issuing batches (default 5).
	RateLimitBuffer int
	EnrichBuffer    int

	// SupersedePrevious makes every SearchUsers call cancel whatever
	// the client had in flight. Off by default: independent searches
	// do not interfere with each other unless the caller opts in.
	SupersedePrevious bool

	// Transport overrides the base HTTP transport, mainly for tests.
	Transport http.RoundTripper
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.SearchCacheTTL <= 0 {
		o.SearchCacheTTL = defaultSearchCacheTTL
	}
	if o.ProfileCacheTTL <= 0 {
		o.ProfileCacheTTL = defaultProfileCacheTTL
	}
	if o.EnrichLimit <= 0 {
		o.EnrichLimit = defaultEnrichLimit
	}
	if o.BatchSize <= 0 {
		o.BatchSize = defaultBatchSize
	}
	if o.BatchInterval <= 0 {
		o.BatchInterval = defaultBatchInterval
	}
	if o.RateLimitBuffer <= 0 {
		o.RateLimitBuffer = defaultSearchBuffer
	}
	if o.EnrichBuffer <= 0 {
		o.EnrichBuffer = defaultEnrichBuffer
	}
	return o
}

// Client talks to the GitHub user directory. Safe for concurrent use.
type Client struct {
	gh      *github.Client
	opts    Options
	tracker *Tracker
	creds   CredentialStore
	limiter *rate.Limiter
	logger  *log.Logger

	mu      sync.Mutex
	session *session
}

func NewClient(opts Options) (*Client, error) {
	opts = opts.withDefaults()
	logger := log.ForService("github")

	token := opts.Token
	if token == "" && opts.Credentials != nil {
		stored, err := opts.Credentials.Token()
		if err != nil {
			logger.Warnf("reading stored token: %v", err)
		} else {
			token = stored
		}
	}
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}

	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	if token != "" {
		transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
			Base:   transport,
		}
	}
	if !opts.DisableCache {
		transport = newCacheTransport(transport, opts.SearchCacheTTL, opts.ProfileCacheTTL)
	}

	httpClient := &http.Client{
		Transport: transport,
		Timeout:   opts.Timeout,
	}

	gh := github.NewClient(httpClient)
	if opts.BaseURL != "" {
		baseURL, err := url.Parse(opts.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("parsing base URL: %w", err)
		}
		if !strings.HasSuffix(baseURL.Path, "/") {
			baseURL.Path += "/"
		}
		gh.BaseURL = baseURL
	}

	return &Client{
		gh:      gh,
		opts:    opts,
		tracker: NewTracker(),
		creds:   opts.Credentials,
		limiter: rate.NewLimiter(rate.Every(opts.BatchInterval), 1),
		logger:  logger,
		session: newSession(),
	}, nil
}

// FetchUserData looks up a single user profile. A blank username is
// rejected before any request is issued.
func (c *Client) FetchUserData(ctx context.Context, username string) (*UserProfile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, validationError("Please enter a valid GitHub username.")
	}

	reqCtx, done := c.currentSession().requestContext(ctx)
	defer done()

	return c.fetchProfile(reqCtx, username)
}

// SearchUsers runs a paginated user search and enriches the page with
// full profiles. The returned page carries a rate-limit snapshot taken
// after the last request settled.
func (c *Client) SearchUsers(ctx context.Context, params SearchParams) (*SearchResultPage, error) {
	if !hasSubstantiveFilters(params) {
		return nil, validationError("At least one search parameter is required.")
	}
	query := BuildQuery(params)

	if c.opts.SupersedePrevious {
		c.CancelAllRequests("superseded by a new search")
	}

	if c.tracker.IsLow(c.opts.RateLimitBuffer) {
		return nil, rateLimitedError(c.tracker.Snapshot().Reset, nil)
	}

	reqCtx, done := c.currentSession().requestContext(ctx)
	defer done()

	page := params.Page
	if page < 1 {
		page = 1
	}
	perPage := params.PerPage
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	c.logger.Debugf("searching users: %q (page %d, %d per page)", query, page, perPage)

	result, resp, err := c.gh.Search.Users(reqCtx, query, &github.SearchOptions{
		Sort:  searchSort(params.Sort),
		Order: searchOrder(params.Order),
		ListOptions: github.ListOptions{
			Page:    page,
			PerPage: perPage,
		},
	})
	if resp != nil {
		c.tracker.Update(resp.Rate)
	}
	if err != nil {
		mapped := mapError(reqCtx, err, "")
		if mapped.Kind == KindUnauthorized {
			c.clearStoredToken()
		}
		return nil, mapped
	}

	summaries := make([]UserSummary, 0, len(result.Users))
	for _, user := range result.Users {
		summaries = append(summaries, summaryFromUser(user))
	}

	profiles := c.enrich(reqCtx, summaries)
	if params.Hireable {
		profiles = filterHireable(profiles)
	}

	totalCount := result.GetTotal()
	return &SearchResultPage{
		Items:             profiles,
		TotalCount:        totalCount,
		IncompleteResults: result.GetIncompleteResults(),
		Page:              page,
		PerPage:           perPage,
		HasMore:           page*perPage < totalCount,
		RateLimit:         c.tracker.Snapshot(),
	}, nil
}

// CancelAllRequests aborts every request currently in flight and mints
// a fresh session so later calls proceed normally. In-flight calls
// settle with a cancelled outcome carrying the given reason.
func (c *Client) CancelAllRequests(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger.Infof("cancelling session %s: %s", c.session.id, reason)
	c.session.cancel(&cancelCause{reason: reason})
	c.session = newSession()
}

// RateLimit returns the most recently observed quota without issuing
// a request.
func (c *Client) RateLimit() RateLimit {
	return c.tracker.Snapshot()
}

// CurrentRateLimit asks the provider for the live quota. The endpoint
// does not consume quota itself.
func (c *Client) CurrentRateLimit(ctx context.Context) (RateLimit, error) {
	reqCtx, done := c.currentSession().requestContext(ctx)
	defer done()

	limits, resp, err := c.gh.RateLimit.Get(reqCtx)
	if err != nil {
		return RateLimit{}, mapError(reqCtx, err, "")
	}
	if resp != nil && limits.Core != nil {
		c.tracker.Update(*limits.Core)
	}
	return c.tracker.Snapshot(), nil
}

func (c *Client) currentSession() *session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *Client) fetchProfile(ctx context.Context, login string) (*UserProfile, error) {
	user, resp, err := c.gh.Users.Get(ctx, login)
	if resp != nil {
		c.tracker.Update(resp.Rate)
	}
	if err != nil {
		mapped := mapError(ctx, err, login)
		if mapped.Kind == KindUnauthorized {
			c.clearStoredToken()
		}
		return nil, mapped
	}
	return profileFromUser(user), nil
}

func (c *Client) clearStoredToken() {
	if c.creds == nil {
		return
	}
	c.logger.Warnf("provider rejected the stored token, clearing it")
	if err := c.creds.ClearToken(); err != nil {
		c.logger.Errorf("clearing stored token: %v", err)
	}
}

// hasSubstantiveFilters reports whether params contain any filter
// beyond pagination and ordering. An account-type qualifier alone does
// not count: it would produce an unbounded directory walk.
func hasSubstantiveFilters(params SearchParams) bool {
	return strings.TrimSpace(params.Username) != "" ||
		strings.TrimSpace(params.Location) != "" ||
		sanitizeLanguage(params.Language) != "" ||
		strings.TrimSpace(params.Created) != "" ||
		params.MinRepos > 0 || params.MaxRepos > 0 ||
		params.MinFollowers > 0 || params.MaxFollowers > 0
}

func searchSort(sort string) string {
	switch sort {
	case SortRelevance:
		return ""
	case SortRepositories:
		return "repositories"
	case SortJoined:
		return "joined"
	default:
		return "followers"
	}
}

func searchOrder(order string) string {
	if order == OrderAscending {
		return "asc"
	}
	return "desc"
}

func filterHireable(profiles []UserProfile) []UserProfile {
	kept := make([]UserProfile, 0, len(profiles))
	for _, p := range profiles {
		// Entries without details are kept: absence of a profile is
		// not evidence the user is unavailable for hire.
		if p.Hireable || p.DetailsUnavailable {
			kept = append(kept, p)
		}
	}
	return kept
}

func summaryFromUser(user *github.User) UserSummary {
	return UserSummary{
		ID:        user.GetID(),
		Login:     user.GetLogin(),
		AvatarURL: user.GetAvatarURL(),
		HTMLURL:   user.GetHTMLURL(),
	}
}

func profileFromUser(user *github.User) *UserProfile {
	return &UserProfile{
		UserSummary: UserSummary{
			ID:        user.GetID(),
			Login:     user.GetLogin(),
			AvatarURL: user.GetAvatarURL(),
			HTMLURL:   user.GetHTMLURL(),
		},
		Name:        user.GetName(),
		Bio:         user.GetBio(),
		Company:     user.GetCompany(),
		Location:    user.GetLocation(),
		Blog:        user.GetBlog(),
		Email:       user.GetEmail(),
		PublicRepos: user.GetPublicRepos(),
		Followers:   user.GetFollowers(),
		Following:   user.GetFollowing(),
		Hireable:    user.GetHireable(),
		CreatedAt:   user.GetCreatedAt().Time,
		UpdatedAt:   user.GetUpdatedAt().Time,
	}
}
