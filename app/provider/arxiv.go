package provider

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/paperbot/paperbot/app/slack"
)

// The arXiv API reports unknown IDs as a synthetic feed entry whose id
// carries this prefix instead of an abstract URL.
const arxivErrorIDPrefix = "http://arxiv.org/api/errors#"

var arxivLinkRe = regexp.MustCompile(`(?:https?://)?arxiv\.org/(?:abs|pdf)/(\d{4}\.\d{4,5})(?:v\d+)?(?:\.pdf)?`)

// Entry ids come back with the latest version appended (2301.12345v2)
// while the matcher extracts the bare paper number; the suffix is stripped
// so fetch results key the same way matches do.
var arxivVersionRe = regexp.MustCompile(`v\d+$`)

// Atom feed structure returned by the arXiv query API, including the
// elements from the http://arxiv.org/schemas/atom extension namespace.

type arxivFeed struct {
	XMLName xml.Name     `xml:"feed"`
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID         string          `xml:"id"`
	Title      string          `xml:"title"`
	Summary    string          `xml:"summary"`
	Updated    string          `xml:"updated"`
	Authors    []arxivAuthor   `xml:"author"`
	Categories []arxivCategory `xml:"category"`
	JournalRef string          `xml:"http://arxiv.org/schemas/atom journal_ref"`
	DOI        string          `xml:"http://arxiv.org/schemas/atom doi"`
}

type arxivAuthor struct {
	Name        string `xml:"name"`
	Affiliation string `xml:"http://arxiv.org/schemas/atom affiliation"`
}

type arxivCategory struct {
	Term string `xml:"term,attr"`
}

type Arxiv struct {
	httpClient *http.Client
	apiURL     string
	faviconURL string
	timeout    time.Duration
	userAgent  string
}

func NewArxiv(httpClient *http.Client, settings ProviderSettings, userAgent string) *Arxiv {
	return &Arxiv{
		httpClient: httpClient,
		apiURL:     settings.APIURL,
		faviconURL: settings.FaviconURL,
		timeout:    time.Duration(settings.Timeout) * time.Second,
		userAgent:  userAgent,
	}
}

func (p *Arxiv) Name() string {
	return "arxiv"
}

// Match extracts the paper number from an abs or pdf URL, stripping any
// version suffix or .pdf extension.
func (p *Arxiv) Match(url string) (string, bool) {
	m := arxivLinkRe.FindStringSubmatch(url)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Unfurl resolves all matched links through a single batched API call and
// formats each returned entry. Identifiers the API reported errors for, or
// did not return at all, are left out of the result.
func (p *Arxiv) Unfurl(ctx context.Context, matches []Match) slack.Unfurls {
	ids := make([]string, 0, len(matches))
	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		if !seen[m.ID] {
			seen[m.ID] = true
			ids = append(ids, m.ID)
		}
	}

	byID := p.fetchMany(ctx, ids)

	unfurls := make(slack.Unfurls, len(matches))
	for _, m := range matches {
		meta, ok := byID[m.ID]
		if !ok {
			continue
		}
		unfurls[m.URL] = p.format(meta)
	}
	return unfurls
}

// fetchMany requests all identifiers in one id_list call. Failures are
// logged and yield an empty map; there is no per-identifier retry.
func (p *Arxiv) fetchMany(ctx context.Context, ids []string) map[string]Metadata {
	if len(ids) == 0 {
		return nil
	}

	slog.Debug("Fetching arXiv metadata", "ids", strings.Join(ids, ", "))

	prefixed := make([]string, len(ids))
	for i, id := range ids {
		prefixed[i] = "arXiv:" + id
	}
	reqURL := p.apiURL + "?id_list=" + strings.Join(prefixed, ",") +
		"&max_results=" + strconv.Itoa(len(ids))

	data, err := p.fetch(ctx, reqURL)
	if err != nil {
		slog.Error("arXiv API call failed", "url", reqURL, "error", err)
		return nil
	}

	var feed arxivFeed
	if err := xml.Unmarshal(data, &feed); err != nil {
		slog.Error("Failed to parse arXiv feed", "url", reqURL, "error", err)
		return nil
	}

	if len(feed.Entries) == 0 {
		slog.Error("arXiv feed contains no entries", "url", reqURL)
		return nil
	}

	byID := make(map[string]Metadata, len(feed.Entries))
	for _, entry := range feed.Entries {
		meta, err := parseArxivEntry(entry)
		if err != nil {
			slog.Warn("Skipping arXiv entry", "url", reqURL, "error", err)
			continue
		}
		byID[meta.ID] = meta
	}
	return byID
}

func (p *Arxiv) fetch(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

// parseArxivEntry normalizes one feed entry. Error entries (see
// arxivErrorIDPrefix) are returned as errors carrying the API's message.
func parseArxivEntry(entry arxivEntry) (Metadata, error) {
	if strings.HasPrefix(entry.ID, arxivErrorIDPrefix) {
		return Metadata{}, fmt.Errorf("arXiv API error: %s", cleanseText(entry.Summary))
	}

	meta := Metadata{
		ID:         noID,
		URL:        noURL,
		Title:      noTitle,
		Summary:    noSummary,
		JournalRef: entry.JournalRef,
		DOI:        entry.DOI,
	}

	if entry.ID != "" {
		meta.URL = entry.ID
		// The entry id is the abstract URL; the paper number is its last
		// path segment.
		segment := entry.ID[strings.LastIndex(entry.ID, "/")+1:]
		if segment = arxivVersionRe.ReplaceAllString(segment, ""); segment != "" {
			meta.ID = segment
		}
	}

	if entry.Title != "" {
		meta.Title = cleanseText(entry.Title)
	}
	if entry.Summary != "" {
		meta.Summary = cleanseText(entry.Summary)
	}

	if len(entry.Authors) > 0 {
		meta.Authors = make([]string, 0, len(entry.Authors))
		for _, author := range entry.Authors {
			if author.Affiliation != "" {
				meta.Authors = append(meta.Authors, fmt.Sprintf("%s (%s)", author.Name, author.Affiliation))
			} else {
				meta.Authors = append(meta.Authors, author.Name)
			}
		}
	} else {
		meta.Authors = []string{noAuthors}
	}

	for _, category := range entry.Categories {
		meta.Categories = append(meta.Categories, category.Term)
	}

	if entry.Updated != "" {
		if updated, err := time.Parse(time.RFC3339, entry.Updated); err == nil {
			meta.Date = updated.Unix()
		} else {
			slog.Warn("Failed to parse arXiv updated timestamp", "id", meta.ID, "value", entry.Updated)
		}
	}

	return meta, nil
}

// format renders the attachment. Pure: the same metadata always yields the
// same attachment.
func (p *Arxiv) format(meta Metadata) slack.Attachment {
	return slack.Attachment{
		AuthorName: strings.Join(meta.Authors, ", "),
		Title:      "[" + meta.ID + "] " + meta.Title,
		TitleLink:  meta.URL,
		Text:       meta.Summary,
		Footer:     strings.Join(meta.Categories, ", "),
		FooterIcon: p.faviconURL,
		TS:         strconv.FormatInt(meta.Date, 10),
		Color:      attachmentColor,
	}
}

// cleanseText trims surrounding whitespace and collapses the hard line
// wraps arXiv inserts into abstracts.
func cleanseText(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "\n", " ")
}
