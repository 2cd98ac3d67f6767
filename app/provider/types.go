package provider

// Placeholder values used when a provider response omits a field. Kept as
// visible markers instead of empty strings so a malformed entry is obvious
// in the posted attachment.
const (
	noID      = "{No ID}"
	noURL     = "{No url}"
	noTitle   = "{No title}"
	noSummary = "{No summary}"
	noAuthors = "{No authors}"
)

// attachmentColor is the accent color shared by all paper attachments.
const attachmentColor = "#b31b1b"

// Metadata is the normalized per-paper record produced by a fetcher and
// consumed by its formatter. Categories is used by arXiv (one label per
// category element); Keywords is the single comma-separated string SSRN
// publishes instead.
type Metadata struct {
	ID         string
	URL        string
	Title      string
	Summary    string
	Authors    []string
	Categories []string
	Keywords   string
	Date       int64 // unix epoch seconds
	JournalRef string
	DOI        string
}
