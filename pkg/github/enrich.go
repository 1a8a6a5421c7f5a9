package github

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// enrich upgrades each summary to a full profile, best effort. The
// returned slice always has the same length and order as the input: a
// user whose detail lookup fails keeps the summary fields with
// DetailsUnavailable set, and is never dropped.
//
// At most EnrichLimit users are attempted. Lookups run BatchSize at a
// time; batches are spaced by the limiter so a single search page
// cannot burst through the quota. The tracker is re-checked before
// every batch and enrichment stops early, returning what it has, when
// the remaining quota is low or the context is cancelled.
func (c *Client) enrich(ctx context.Context, summaries []UserSummary) []UserProfile {
	profiles := make([]UserProfile, len(summaries))
	for i, summary := range summaries {
		profiles[i] = UserProfile{UserSummary: summary, DetailsUnavailable: true}
	}
	if len(summaries) == 0 {
		return profiles
	}

	limit := min(len(summaries), c.opts.EnrichLimit)
	for start := 0; start < limit; start += c.opts.BatchSize {
		if err := c.limiter.Wait(ctx); err != nil {
			c.logger.Debugf("enrichment stopped: %v", err)
			break
		}
		if c.tracker.IsLow(c.opts.EnrichBuffer) {
			c.logger.Warnf("rate limit low, stopping enrichment after %d of %d users", start, limit)
			break
		}

		end := min(start+c.opts.BatchSize, limit)
		var group errgroup.Group
		for i := start; i < end; i++ {
			group.Go(func() error {
				profile, err := c.fetchProfile(ctx, summaries[i].Login)
				if err != nil {
					c.logger.Debugf("detail lookup for %s failed: %v", summaries[i].Login, err)
					return nil
				}
				profiles[i] = *profile
				return nil
			})
		}
		_ = group.Wait()

		if ctx.Err() != nil {
			break
		}
	}

	return profiles
}
