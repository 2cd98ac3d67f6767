package api

import (
	"context"
	"time"

	"github.com/paperbot/paperbot/app/slack"
	"github.com/paperbot/paperbot/app/unfurl"
)

type DispatcherInterface interface {
	Run(ctx context.Context, links []slack.SharedLink) slack.Unfurls
}

var _ DispatcherInterface = (*unfurl.Dispatcher)(nil)

type UnfurlPoster interface {
	Unfurl(ctx context.Context, req slack.UnfurlRequest) error
}

var _ UnfurlPoster = (*slack.Client)(nil)

type Handler struct {
	verifier      *slack.Verifier
	client        UnfurlPoster
	dispatcher    DispatcherInterface
	providerCount int
	unfurlTimeout time.Duration
}
