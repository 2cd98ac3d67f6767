package unfurl

import (
	"context"
	"strings"
	"testing"

	"github.com/paperbot/paperbot/app/provider"
	"github.com/paperbot/paperbot/app/slack"
)

// fakeProvider claims every URL containing its token and serves canned
// attachments; a failing provider returns nothing, the way a real provider
// contains transport errors.
type fakeProvider struct {
	name       string
	token      string
	failing    bool
	gotMatches []provider.Match
}

func (f *fakeProvider) Name() string {
	return f.name
}

func (f *fakeProvider) Match(url string) (string, bool) {
	if !strings.Contains(url, f.token) {
		return "", false
	}
	return f.token, true
}

func (f *fakeProvider) Unfurl(ctx context.Context, matches []provider.Match) slack.Unfurls {
	f.gotMatches = append(f.gotMatches, matches...)
	if f.failing {
		return nil
	}
	unfurls := make(slack.Unfurls, len(matches))
	for _, m := range matches {
		unfurls[m.URL] = slack.Attachment{Title: f.name + ": " + m.ID}
	}
	return unfurls
}

func TestDispatcherDropsUnmatchedLinks(t *testing.T) {
	d := NewDispatcher(&fakeProvider{name: "arxiv", token: "arxiv.org"})

	result := d.Run(context.Background(), []slack.SharedLink{
		{Domain: "example.com", URL: "https://example.com/paper"},
		{Domain: "nytimes.com", URL: "https://nytimes.com/article"},
	})

	if len(result) != 0 {
		t.Errorf("Expected no unfurls for unmatched links, got %d", len(result))
	}
}

func TestDispatcherPartitionsByProvider(t *testing.T) {
	arxiv := &fakeProvider{name: "arxiv", token: "arxiv.org"}
	ssrn := &fakeProvider{name: "ssrn", token: "ssrn.com"}
	d := NewDispatcher(arxiv, ssrn)

	result := d.Run(context.Background(), []slack.SharedLink{
		{Domain: "arxiv.org", URL: "https://arxiv.org/abs/2301.12345"},
		{Domain: "papers.ssrn.com", URL: "https://papers.ssrn.com/sol3/papers.cfm?abstract_id=1"},
		{Domain: "example.com", URL: "https://example.com/other"},
	})

	if len(result) != 2 {
		t.Fatalf("Expected 2 unfurls, got %d", len(result))
	}
	if len(arxiv.gotMatches) != 1 || arxiv.gotMatches[0].URL != "https://arxiv.org/abs/2301.12345" {
		t.Errorf("arxiv provider received wrong matches: %v", arxiv.gotMatches)
	}
	if len(ssrn.gotMatches) != 1 || !strings.Contains(ssrn.gotMatches[0].URL, "ssrn.com") {
		t.Errorf("ssrn provider received wrong matches: %v", ssrn.gotMatches)
	}
}

func TestDispatcherFailureIsolation(t *testing.T) {
	arxiv := &fakeProvider{name: "arxiv", token: "arxiv.org", failing: true}
	ssrn := &fakeProvider{name: "ssrn", token: "ssrn.com"}
	d := NewDispatcher(arxiv, ssrn)

	result := d.Run(context.Background(), []slack.SharedLink{
		{Domain: "arxiv.org", URL: "https://arxiv.org/abs/2301.12345"},
		{Domain: "papers.ssrn.com", URL: "https://papers.ssrn.com/sol3/papers.cfm?abstract_id=1"},
	})

	if len(result) != 1 {
		t.Fatalf("Expected 1 unfurl despite the failing provider, got %d", len(result))
	}
	if _, ok := result["https://papers.ssrn.com/sol3/papers.cfm?abstract_id=1"]; !ok {
		t.Error("Expected the healthy provider's link to be unfurled")
	}
}

func TestDispatcherLaterProviderOverrides(t *testing.T) {
	first := &fakeProvider{name: "first", token: "shared.example"}
	second := &fakeProvider{name: "second", token: "shared.example"}
	d := NewDispatcher(first, second)

	result := d.Run(context.Background(), []slack.SharedLink{
		{Domain: "shared.example", URL: "https://shared.example/paper"},
	})

	if len(result) != 1 {
		t.Fatalf("Expected 1 unfurl, got %d", len(result))
	}
	attachment := result["https://shared.example/paper"]
	if attachment.Title != "second: shared.example" {
		t.Errorf("Expected the later provider to win, got %q", attachment.Title)
	}
}

func TestDispatcherDuplicateURLsCollapse(t *testing.T) {
	arxiv := &fakeProvider{name: "arxiv", token: "arxiv.org"}
	d := NewDispatcher(arxiv)

	result := d.Run(context.Background(), []slack.SharedLink{
		{Domain: "arxiv.org", URL: "https://arxiv.org/abs/2301.12345"},
		{Domain: "arxiv.org", URL: "https://arxiv.org/abs/2301.12345"},
	})

	if len(result) != 1 {
		t.Errorf("Expected duplicate URLs to collapse into one key, got %d", len(result))
	}
}

func TestDispatcherNoProviders(t *testing.T) {
	d := NewDispatcher()

	result := d.Run(context.Background(), []slack.SharedLink{
		{Domain: "arxiv.org", URL: "https://arxiv.org/abs/2301.12345"},
	})

	if len(result) != 0 {
		t.Errorf("Expected no unfurls without providers, got %d", len(result))
	}
}
