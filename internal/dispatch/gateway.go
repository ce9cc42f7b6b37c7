package dispatch

import (
	"context"

	"github.com/memohai/telepost/internal/media"
)

// Gateway is the outbound messaging capability the executor drives.
type Gateway interface {
	SendText(ctx context.Context, target, text string) error
	// SendMedia sends one image or video taken from Bytes, Path or URL, in that order of preference.
	SendMedia(ctx context.Context, target string, item MediaItem) error
	// SendMediaGroup sends items as one batch. Only the caption of items[0] is honoured
	// and the batch fails as a whole.
	SendMediaGroup(ctx context.Context, target string, items []MediaItem) error
}

// MediaItem is one media payload handed to the gateway.
type MediaItem struct {
	Kind    media.MediaType
	Bytes   []byte
	Name    string
	Path    string
	URL     string
	Caption string
}

// Spooler persists decoded media for the duration of one send.
type Spooler interface {
	Spool(ctx context.Context, scope string, mediaType media.MediaType, decoded media.Decoded) (media.Artifact, error)
	Release(ctx context.Context, arts ...media.Artifact)
}
