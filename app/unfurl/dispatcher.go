package unfurl

import (
	"context"
	"log/slog"

	"github.com/paperbot/paperbot/app/provider"
	"github.com/paperbot/paperbot/app/slack"
)

// Dispatcher routes a batch of shared links through an ordered provider
// list and merges the per-provider results into one url -> attachment map.
type Dispatcher struct {
	providers []provider.Provider
}

func NewDispatcher(providers ...provider.Provider) *Dispatcher {
	return &Dispatcher{providers: providers}
}

// Run partitions links by matcher and invokes each claiming provider's
// pipeline over its subset. Links no provider recognizes are dropped.
// Should two providers ever claim the same URL, the later provider in the
// configured order wins.
func (d *Dispatcher) Run(ctx context.Context, links []slack.SharedLink) slack.Unfurls {
	result := make(slack.Unfurls)

	for _, p := range d.providers {
		var matches []provider.Match
		for _, link := range links {
			if id, ok := p.Match(link.URL); ok {
				matches = append(matches, provider.Match{URL: link.URL, ID: id})
			}
		}

		if len(matches) == 0 {
			continue
		}

		slog.Debug("Provider claimed links", "provider", p.Name(), "count", len(matches))

		for url, attachment := range p.Unfurl(ctx, matches) {
			if _, exists := result[url]; exists {
				slog.Debug("Unfurl overridden by later provider", "provider", p.Name(), "url", url)
			}
			result[url] = attachment
		}
	}

	return result
}
