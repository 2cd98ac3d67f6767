package provider

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"

	"github.com/paperbot/paperbot/app/slack"
)

// SSRN links arrive under several subdomains (papers.ssrn.com, hq.ssrn.com,
// plain ssrn.com), so matching runs against the full URL rather than the
// event's domain field.
var ssrnLinkRe = regexp.MustCompile(`(?:https?://)?(?:[a-z]+\.)?ssrn\.com/.*?abstract(?:Id|_id)=(\d+)`)

type SSRN struct {
	httpClient *http.Client
	pageURL    string
	faviconURL string
	timeout    time.Duration
	userAgent  string
}

func NewSSRN(httpClient *http.Client, settings ProviderSettings, userAgent string) *SSRN {
	return &SSRN{
		httpClient: httpClient,
		pageURL:    settings.APIURL,
		faviconURL: settings.FaviconURL,
		timeout:    time.Duration(settings.Timeout) * time.Second,
		userAgent:  userAgent,
	}
}

func (p *SSRN) Name() string {
	return "ssrn"
}

// Match extracts the numeric abstract ID following abstractId= or
// abstract_id= in the query string.
func (p *SSRN) Match(url string) (string, bool) {
	m := ssrnLinkRe.FindStringSubmatch(url)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Unfurl fetches each matched abstract page in turn; SSRN has no batch
// API. A failed fetch drops that link only.
func (p *SSRN) Unfurl(ctx context.Context, matches []Match) slack.Unfurls {
	unfurls := make(slack.Unfurls, len(matches))
	for _, m := range matches {
		meta, err := p.fetch(ctx, m.ID)
		if err != nil {
			slog.Error("SSRN fetch failed", "abstract_id", m.ID, "error", err)
			continue
		}
		unfurls[m.URL] = p.format(*meta)
	}
	return unfurls
}

// fetch retrieves the abstract page and extracts the citation metadata
// published in its meta tags.
func (p *SSRN) fetch(ctx context.Context, abstractID string) (*Metadata, error) {
	reqURL := p.pageURL + "?abstract_id=" + abstractID

	timeoutCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch abstract page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse abstract page: %w", err)
	}

	return parseSSRNDocument(doc, reqURL)
}

func parseSSRNDocument(doc *goquery.Document, pageURL string) (*Metadata, error) {
	// SSRN serves an XML-ish document with an <error> element instead of
	// an HTTP error status for unknown IDs.
	if doc.Find("error").Length() > 0 {
		return nil, fmt.Errorf("provider returned an error document")
	}

	metas := doc.Find("meta")
	if metas.Length() == 0 {
		return nil, fmt.Errorf("no metadata found in abstract page")
	}

	meta := &Metadata{
		URL:   pageURL,
		Title: strings.TrimSpace(doc.Find("main h1").First().Text()),
	}
	var date time.Time

	metas.Each(func(_ int, s *goquery.Selection) {
		name, _ := s.Attr("name")
		content, _ := s.Attr("content")
		content = strings.TrimSpace(content)

		switch name {
		case "description":
			meta.Summary = content
		case "citation_author":
			meta.Authors = append(meta.Authors, content)
		case "citation_title":
			meta.Title = content
		case "citation_online_date", "citation_publication_date":
			// Preprint pages often carry both; the later of whichever
			// dates parse wins.
			parsed, err := dateparse.ParseAny(content)
			if err != nil {
				slog.Warn("Failed to parse SSRN citation date", "name", name, "value", content)
				return
			}
			if parsed.After(date) {
				date = parsed
			}
		case "citation_doi":
			meta.DOI = content
		case "citation_abstract_html_url":
			meta.URL = content
		case "citation_keywords":
			meta.Keywords = content
		}
	})

	// The full abstract text beats the truncated meta description when the
	// page carries one.
	var paragraphs []string
	doc.Find(".abstract-text :not(h3)").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	if len(paragraphs) > 0 {
		meta.Summary = strings.Join(paragraphs, "\n\n")
	}

	if meta.Summary == "" {
		return nil, fmt.Errorf("no abstract or description found")
	}
	if date.IsZero() {
		return nil, fmt.Errorf("no citation date found")
	}
	meta.Date = date.Unix()

	if meta.Title == "" {
		meta.Title = noTitle
	}
	if len(meta.Authors) == 0 {
		meta.Authors = []string{noAuthors}
	}

	return meta, nil
}

// format renders the attachment. Unlike arXiv the title carries no ID
// prefix; SSRN abstract numbers mean nothing to readers.
func (p *SSRN) format(meta Metadata) slack.Attachment {
	text := meta.Summary
	if meta.DOI != "" {
		text += "  \nDOI: " + meta.DOI
	}

	return slack.Attachment{
		AuthorName: strings.Join(meta.Authors, ", "),
		Title:      meta.Title,
		TitleLink:  meta.URL,
		Text:       text,
		Footer:     meta.Keywords,
		FooterIcon: p.faviconURL,
		TS:         strconv.FormatInt(meta.Date, 10),
		Color:      attachmentColor,
	}
}
