package slack

import "encoding/json"

// Event envelope types, following the Events API payload shape

type EventEnvelope struct {
	Type      string          `json:"type"`
	Token     string          `json:"token,omitempty"`
	Challenge string          `json:"challenge,omitempty"`
	TeamID    string          `json:"team_id,omitempty"`
	Event     json.RawMessage `json:"event,omitempty"`
}

type SharedLink struct {
	Domain string `json:"domain"`
	URL    string `json:"url"`
}

type LinkSharedEvent struct {
	Type      string       `json:"type"`
	Channel   string       `json:"channel"`
	MessageTS string       `json:"message_ts"`
	UnfurlID  string       `json:"unfurl_id,omitempty"`
	Source    string       `json:"source,omitempty"`
	Links     []SharedLink `json:"links"`
}

// Attachment is the rich-message schema accepted by chat.unfurl.
type Attachment struct {
	AuthorName string `json:"author_name,omitempty"`
	Title      string `json:"title,omitempty"`
	TitleLink  string `json:"title_link,omitempty"`
	Text       string `json:"text,omitempty"`
	Footer     string `json:"footer,omitempty"`
	FooterIcon string `json:"footer_icon,omitempty"`
	TS         string `json:"ts,omitempty"`
	Color      string `json:"color,omitempty"`
}

// Unfurls maps each originally shared URL to its attachment.
type Unfurls map[string]Attachment
