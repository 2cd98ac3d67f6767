package provider

import (
	"context"

	"github.com/paperbot/paperbot/app/slack"
)

// Match pairs an originally shared URL with the provider-specific
// identifier extracted from it.
type Match struct {
	URL string
	ID  string
}

// Provider recognizes URLs of one paper repository and turns them into
// chat attachments. Unfurl never fails as a whole: unreachable or unknown
// identifiers are logged and left out of the returned map.
type Provider interface {
	Name() string
	Match(url string) (string, bool)
	Unfurl(ctx context.Context, matches []Match) slack.Unfurls
}

var _ Provider = (*Arxiv)(nil)
var _ Provider = (*SSRN)(nil)
