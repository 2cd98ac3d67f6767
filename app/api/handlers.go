package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/paperbot/paperbot/app/cfg"
	"github.com/paperbot/paperbot/app/slack"
)

func NewHandler(verifier *slack.Verifier, client UnfurlPoster,
	dispatcher DispatcherInterface, providerCount int) *Handler {
	return &Handler{
		verifier:      verifier,
		client:        client,
		dispatcher:    dispatcher,
		providerCount: providerCount,
		unfurlTimeout: 60 * time.Second,
	}
}

// HandleEvent receives Events API deliveries: the one-time
// url_verification handshake and link_shared event callbacks.
func (h *Handler) HandleEvent(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		slog.Error("Failed to read request body", "error", err)
		c.Status(http.StatusBadRequest)
		return
	}

	var envelope slack.EventEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		slog.Error("Failed to parse event payload", "error", err)
		c.Status(http.StatusBadRequest)
		return
	}

	signature := c.GetHeader("X-Slack-Signature")
	timestamp := c.GetHeader("X-Slack-Request-Timestamp")
	if err := h.verifier.Verify(signature, timestamp, body, envelope.Token); err != nil {
		slog.Error("Request verification failed", "error", err)
		c.Status(http.StatusForbidden)
		return
	}

	switch envelope.Type {
	case "url_verification":
		c.String(http.StatusOK, envelope.Challenge)

	case "event_callback":
		var event slack.LinkSharedEvent
		if err := json.Unmarshal(envelope.Event, &event); err != nil {
			slog.Error("Failed to parse inner event", "error", err)
			c.Status(http.StatusBadRequest)
			return
		}

		if event.Type != "link_shared" {
			slog.Warn("Ignoring unexpected event type", "type", event.Type)
			c.Status(http.StatusOK)
			return
		}

		// Ack before fetching; the Events API retries deliveries that are
		// not answered within three seconds.
		c.Status(http.StatusOK)
		go h.ProcessLinkShared(event)

	default:
		slog.Warn("Unexpected request type", "type", envelope.Type)
		c.Status(http.StatusBadRequest)
	}
}

// ProcessLinkShared unfurls the shared links and posts the result back via
// chat.unfurl. All per-link failures have already been contained by the
// providers; an empty result simply posts nothing.
func (h *Handler) ProcessLinkShared(event slack.LinkSharedEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), h.unfurlTimeout)
	defer cancel()

	unfurls := h.dispatcher.Run(ctx, event.Links)
	if len(unfurls) == 0 {
		slog.Debug("No unfurls produced", "channel", event.Channel, "links", len(event.Links))
		return
	}

	req := slack.UnfurlRequest{
		Channel:  event.Channel,
		TS:       event.MessageTS,
		UnfurlID: event.UnfurlID,
		Source:   event.Source,
		Unfurls:  unfurls,
	}

	if err := h.client.Unfurl(ctx, req); err != nil {
		slog.Error("Unable to post unfurls", "channel", event.Channel, "error", err)
		return
	}

	slog.Info("Unfurls posted", "channel", event.Channel, "count", len(unfurls))
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"providers": h.providerCount,
		"version":   cfg.GetVersion(),
	}

	c.JSON(http.StatusOK, health)
}
