package cmd

import (
	"fmt"

	"github.com/rubiojr/hubscout/pkg/config"
	"github.com/rubiojr/hubscout/pkg/credstore"
	"github.com/rubiojr/hubscout/pkg/github"
)

// newClientFromConfig builds a search client from the config file. The
// returned cleanup closes the credential store and must always be
// called.
func newClientFromConfig(configPath string) (*github.Client, *config.Config, func(), error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading config: %w", err)
	}

	store, err := openCredentials(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	client, err := github.NewClient(optionsFromConfig(cfg, store))
	if err != nil {
		_ = store.Close()
		return nil, nil, nil, fmt.Errorf("creating client: %w", err)
	}

	cleanup := func() {
		_ = store.Close()
	}
	return client, cfg, cleanup, nil
}

func openCredentials(cfg *config.Config) (*credstore.Store, error) {
	path := cfg.CredentialsPath
	if path == "" {
		defaultPath, err := config.GetDefaultCredentialsPath()
		if err != nil {
			return nil, fmt.Errorf("resolving credential store path: %w", err)
		}
		path = defaultPath
	}

	store, err := credstore.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening credential store: %w", err)
	}
	return store, nil
}

func optionsFromConfig(cfg *config.Config, creds github.CredentialStore) github.Options {
	return github.Options{
		BaseURL:           cfg.BaseURL,
		Token:             cfg.Token,
		Credentials:       creds,
		Timeout:           cfg.Timeout.Duration,
		SearchCacheTTL:    cfg.SearchCacheTTL.Duration,
		ProfileCacheTTL:   cfg.ProfileCacheTTL.Duration,
		EnrichLimit:       cfg.EnrichLimit,
		BatchSize:         cfg.BatchSize,
		BatchInterval:     cfg.BatchInterval.Duration,
		RateLimitBuffer:   cfg.RateLimitBuffer,
		EnrichBuffer:      cfg.EnrichBuffer,
		SupersedePrevious: cfg.SupersedePrevious,
	}
}
